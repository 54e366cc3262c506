package config

import (
	"errors"
	"fmt"
	"math"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/tomz197/climber/internal/physics"
)

// Tuning holds every gameplay parameter that can be overridden from a YAML
// file. Zero-valued fields in the file keep their defaults.
type Tuning struct {
	World  World  `yaml:"world"`
	Time   Time   `yaml:"time"`
	Aim    Aim    `yaml:"aim"`
	Player Player `yaml:"player"`
	Camera Camera `yaml:"camera"`
	Level  Level  `yaml:"level"`
	Biomes Biomes `yaml:"biomes"`
}

// World is the logical playfield. Width is also the horizontal world bound.
type World struct {
	Width      float64 `yaml:"width"`
	ViewHeight float64 `yaml:"view_height"`
}

// Time configures the frame clock.
type Time struct {
	MaxDelta float64 `yaml:"max_delta"` // seconds
}

// Aim configures the slingshot controller.
type Aim struct {
	Deadzone           float64 `yaml:"deadzone"`
	MaxDrag            float64 `yaml:"max_drag"`
	MaxOutputForce     float64 `yaml:"max_output_force"`
	OverpowerThreshold float64 `yaml:"overpower_threshold"`
	SlowMotionScale    float64 `yaml:"slow_motion_scale"`
}

// Player holds the baseline physics parameters of the climber.
// Timed effects mutate a copy and restore from this baseline on expiry.
type Player struct {
	Size               float64 `yaml:"size"`
	Gravity            float64 `yaml:"gravity"`
	JumpForce          float64 `yaml:"jump_force"`
	AirResistance      float64 `yaml:"air_resistance"`
	WallBounciness     float64 `yaml:"wall_bounciness"`
	RestSpeed          float64 `yaml:"rest_speed"`
	CollisionTolerance float64 `yaml:"collision_tolerance"`
	DoubleJumpVelocity float64 `yaml:"double_jump_velocity"`
	GraceDuration      float64 `yaml:"grace_duration"` // milliseconds
	GraceVelocity      float64 `yaml:"grace_velocity"`
	DeathPop           float64 `yaml:"death_pop"`
	BouncyLaunch       float64 `yaml:"bouncy_launch"`
	FlightSpeed        float64 `yaml:"flight_speed"`
}

// Camera configures the one-directional follow camera.
type Camera struct {
	TriggerFraction float64 `yaml:"trigger_fraction"`
	FollowRate      float64 `yaml:"follow_rate"`
	DeathMargin     float64 `yaml:"death_margin"`
}

// CollectibleWeight is one entry of the collectible kind table.
type CollectibleWeight struct {
	Kind   string  `yaml:"kind"`
	Weight float64 `yaml:"weight"`
}

// Level configures the procedural generator.
type Level struct {
	RowSubdivisions       int                 `yaml:"row_subdivisions"`
	SafetyFactor          float64             `yaml:"safety_factor"`
	MinPlatformWidth      float64             `yaml:"min_platform_width"`
	MaxPlatformWidth      float64             `yaml:"max_platform_width"`
	PlatformHeight        float64             `yaml:"platform_height"`
	SecondPlatformChance  float64             `yaml:"second_platform_chance"`
	MovingAmplitude       float64             `yaml:"moving_amplitude"`
	MovingSpeed           float64             `yaml:"moving_speed"`
	BreakableShake        float64             `yaml:"breakable_shake"` // seconds
	GenerateMargin        float64             `yaml:"generate_margin"`
	RetireMargin          float64             `yaml:"retire_margin"`
	HazardMinDepth        float64             `yaml:"hazard_min_depth"`
	HazardBaseChance      float64             `yaml:"hazard_base_chance"`
	HazardChancePerUnit   float64             `yaml:"hazard_chance_per_unit"`
	HazardMaxChance       float64             `yaml:"hazard_max_chance"`
	CollectibleMinDepth   float64             `yaml:"collectible_min_depth"`
	CollectibleBaseChance float64             `yaml:"collectible_base_chance"`
	CollectibleRamp       float64             `yaml:"collectible_ramp"`
	Collectibles          []CollectibleWeight `yaml:"collectibles"`
	DecorationsPerRow     int                 `yaml:"decorations_per_row"`
}

// Biome is one depth zone. Chances maps platform type names to their
// probability; the remaining mass goes to the default platform.
type Biome struct {
	Name       string             `yaml:"name"`
	DepthLimit float64            `yaml:"depth_limit"` // exclusive upper bound, .inf for the last zone
	Chances    map[string]float64 `yaml:"chances"`
	Background string             `yaml:"background"`
}

// Biomes is the ordered zone table, shallowest first.
type Biomes struct {
	TransitionBand float64 `yaml:"transition_band"`
	Zones          []Biome `yaml:"zones"`
}

// Default returns the tuning the game ships with.
func Default() Tuning {
	return Tuning{
		World: World{
			Width:      500,
			ViewHeight: 800,
		},
		Time: Time{MaxDelta: 0.05},
		Aim: Aim{
			Deadzone:           5,
			MaxDrag:            160,
			MaxOutputForce:     26,
			OverpowerThreshold: 0.95,
			SlowMotionScale:    0.12,
		},
		Player: Player{
			Size:               32,
			Gravity:            1500,
			JumpForce:          40,
			AirResistance:      0.99,
			WallBounciness:     0.6,
			RestSpeed:          10,
			CollisionTolerance: 5,
			DoubleJumpVelocity: 950,
			GraceDuration:      300,
			GraceVelocity:      1300,
			DeathPop:           600,
			BouncyLaunch:       1600,
			FlightSpeed:        900,
		},
		Camera: Camera{
			TriggerFraction: 0.4,
			FollowRate:      5,
			DeathMargin:     16,
		},
		Level: Level{
			RowSubdivisions:       3,
			SafetyFactor:          0.55,
			MinPlatformWidth:      60,
			MaxPlatformWidth:      140,
			PlatformHeight:        20,
			SecondPlatformChance:  0.3,
			MovingAmplitude:       60,
			MovingSpeed:           1.5,
			BreakableShake:        0.5,
			GenerateMargin:        1000,
			RetireMargin:          600,
			HazardMinDepth:        1500,
			HazardBaseChance:      0.05,
			HazardChancePerUnit:   0.00003,
			HazardMaxChance:       0.35,
			CollectibleMinDepth:   400,
			CollectibleBaseChance: 0.04,
			CollectibleRamp:       0.03,
			Collectibles: []CollectibleWeight{
				{Kind: "fish", Weight: 5},
				{Kind: "strength", Weight: 2},
				{Kind: "flight", Weight: 1},
				{Kind: "grip", Weight: 1},
				{Kind: "totem", Weight: 1},
			},
			DecorationsPerRow: 2,
		},
		Biomes: Biomes{
			TransitionBand: 300,
			Zones: []Biome{
				{Name: "Grasslands", DepthLimit: 1000, Background: "#1a1a1a",
					Chances: map[string]float64{"bouncy": 0.05}},
				{Name: "Winter land", DepthLimit: 2000, Background: "#0d1b2a",
					Chances: map[string]float64{"ice": 0.9, "bouncy": 0.1}},
				{Name: "Sky city", DepthLimit: 3000, Background: "#2b0f36",
					Chances: map[string]float64{"moving_x": 0.2, "bouncy": 0.6}},
				{Name: "Volcano", DepthLimit: 11000, Background: "#3a0c0c",
					Chances: map[string]float64{"breakable": 0.5, "moving_x": 0.1, "bouncy": 0.1}},
				{Name: "Forest of death", DepthLimit: math.Inf(1), Background: "#081a08",
					Chances: map[string]float64{"breakable": 0.2, "moving_x": 0.5}},
			},
		},
	}
}

// Load reads a YAML tuning file over the defaults. An empty path returns the
// defaults unchanged.
func Load(path string) (Tuning, error) {
	t := Default()
	if path == "" {
		return t, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Tuning{}, fmt.Errorf("read tuning file: %w", err)
	}
	if err := yaml.Unmarshal(data, &t); err != nil {
		return Tuning{}, fmt.Errorf("parse tuning file %s: %w", path, err)
	}
	if err := t.Validate(); err != nil {
		return Tuning{}, fmt.Errorf("invalid tuning file %s: %w", path, err)
	}
	return t, nil
}

// Validate reports every field that is out of range.
func (t Tuning) Validate() error {
	var errs []error
	positive := func(name string, v float64) {
		if !(v > 0) {
			errs = append(errs, fmt.Errorf("%s must be positive, got %v", name, v))
		}
	}
	fraction := func(name string, v float64) {
		if v < 0 || v > 1 {
			errs = append(errs, fmt.Errorf("%s must be within [0,1], got %v", name, v))
		}
	}

	positive("world.width", t.World.Width)
	positive("world.view_height", t.World.ViewHeight)
	positive("time.max_delta", t.Time.MaxDelta)

	positive("aim.max_drag", t.Aim.MaxDrag)
	positive("aim.max_output_force", t.Aim.MaxOutputForce)
	fraction("aim.overpower_threshold", t.Aim.OverpowerThreshold)
	fraction("aim.slow_motion_scale", t.Aim.SlowMotionScale)
	if t.Aim.Deadzone < 0 || t.Aim.Deadzone >= t.Aim.MaxDrag {
		errs = append(errs, fmt.Errorf("aim.deadzone must be within [0,max_drag), got %v", t.Aim.Deadzone))
	}

	positive("player.size", t.Player.Size)
	positive("player.gravity", t.Player.Gravity)
	positive("player.jump_force", t.Player.JumpForce)
	fraction("player.air_resistance", t.Player.AirResistance)
	fraction("player.wall_bounciness", t.Player.WallBounciness)
	positive("player.grace_duration", t.Player.GraceDuration)
	positive("player.bouncy_launch", t.Player.BouncyLaunch)
	if t.Player.Size >= t.World.Width {
		errs = append(errs, fmt.Errorf("player.size %v does not fit world.width %v", t.Player.Size, t.World.Width))
	}

	fraction("camera.trigger_fraction", t.Camera.TriggerFraction)
	positive("camera.follow_rate", t.Camera.FollowRate)

	if t.Level.RowSubdivisions < 1 {
		errs = append(errs, fmt.Errorf("level.row_subdivisions must be at least 1, got %d", t.Level.RowSubdivisions))
	}
	if !(t.Level.SafetyFactor > 0 && t.Level.SafetyFactor < 1) {
		errs = append(errs, fmt.Errorf("level.safety_factor must be within (0,1), got %v", t.Level.SafetyFactor))
	}
	positive("level.min_platform_width", t.Level.MinPlatformWidth)
	positive("level.platform_height", t.Level.PlatformHeight)
	if t.Level.MaxPlatformWidth < t.Level.MinPlatformWidth || t.Level.MaxPlatformWidth > t.World.Width {
		errs = append(errs, fmt.Errorf("level.max_platform_width must be within [min_platform_width, world.width], got %v", t.Level.MaxPlatformWidth))
	}
	// A row that cannot fit its reach window is clamped toward the previous
	// center; that shift must stay inside the jump envelope.
	env := physics.JumpEnvelope(t.Aim.MaxOutputForce*t.Player.JumpForce, t.Player.Gravity, t.Level.SafetyFactor)
	if need := (t.Level.MaxPlatformWidth-t.Level.MinPlatformWidth)/2 + t.Level.MovingAmplitude; env.Distance > 0 && env.Distance < need {
		errs = append(errs, fmt.Errorf("level.moving_amplitude %v with platform widths [%v,%v] needs a jump reach of %v, the envelope gives %v",
			t.Level.MovingAmplitude, t.Level.MinPlatformWidth, t.Level.MaxPlatformWidth, need, env.Distance))
	}
	if t.Level.MovingAmplitude < 0 {
		errs = append(errs, fmt.Errorf("level.moving_amplitude must not be negative, got %v", t.Level.MovingAmplitude))
	}
	fraction("level.second_platform_chance", t.Level.SecondPlatformChance)
	fraction("level.hazard_base_chance", t.Level.HazardBaseChance)
	fraction("level.hazard_max_chance", t.Level.HazardMaxChance)
	fraction("level.collectible_base_chance", t.Level.CollectibleBaseChance)
	positive("level.breakable_shake", t.Level.BreakableShake)
	positive("level.generate_margin", t.Level.GenerateMargin)
	positive("level.retire_margin", t.Level.RetireMargin)
	for i, c := range t.Level.Collectibles {
		if c.Weight < 0 {
			errs = append(errs, fmt.Errorf("level.collectibles[%d].weight must not be negative", i))
		}
	}

	errs = append(errs, t.Biomes.validate()...)

	return errors.Join(errs...)
}

func (b Biomes) validate() []error {
	var errs []error
	if b.TransitionBand < 0 {
		errs = append(errs, fmt.Errorf("biomes.transition_band must not be negative, got %v", b.TransitionBand))
	}
	if len(b.Zones) == 0 {
		return append(errs, errors.New("biomes.zones must not be empty"))
	}
	prev := 0.0
	for i, z := range b.Zones {
		if !(z.DepthLimit > prev) {
			errs = append(errs, fmt.Errorf("biomes.zones[%d] (%s) depth_limit %v must exceed %v", i, z.Name, z.DepthLimit, prev))
		}
		prev = z.DepthLimit
		sum := 0.0
		for name, c := range z.Chances {
			if c < 0 {
				errs = append(errs, fmt.Errorf("biomes.zones[%d].chances[%s] must not be negative", i, name))
			}
			sum += c
		}
		if sum > 1+1e-9 {
			errs = append(errs, fmt.Errorf("biomes.zones[%d] (%s) chances sum to %v, above 1", i, z.Name, sum))
		}
	}
	if last := b.Zones[len(b.Zones)-1]; !math.IsInf(last.DepthLimit, 1) {
		errs = append(errs, fmt.Errorf("biomes.zones last depth_limit must be .inf, got %v", last.DepthLimit))
	}
	return errs
}
