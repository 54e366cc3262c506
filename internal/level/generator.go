// Package level generates an endless column of reachable platforms ahead of
// the camera and retires whatever falls behind it.
package level

import (
	"math"
	"math/rand"

	"github.com/charmbracelet/log"

	"github.com/tomz197/climber/internal/biome"
	"github.com/tomz197/climber/internal/config"
	"github.com/tomz197/climber/internal/object"
	"github.com/tomz197/climber/internal/physics"
)

const (
	maxSpacingJitter = 0.25
	rowHistory       = 64

	hazardThickness   = 14.0
	hazardMinLength   = 80.0
	hazardMaxLength   = 150.0
	hazardSideHeight  = 90.0
	hazardPlatformGap = 10.0
	minBridgeGap      = 3 * hazardThickness

	collectibleLift = 48.0
)

// Row records one generated row.
type Row struct {
	Y         float64
	Center    float64 // center of the primary platform at its base position
	Width     float64
	Amplitude float64 // horizontal motion of the primary platform
	Type      object.PlatformType
	Platforms int
}

type collectibleKind struct {
	fish   bool
	effect object.EffectKind
	weight float64
}

// Generator owns every gameplay entity of the current run except the player.
type Generator struct {
	cfg    config.Level
	width  float64
	biomes *biome.Table
	rng    *rand.Rand

	env     physics.Envelope
	spacing float64

	Platforms    Arena[*object.Platform]
	Hazards      Arena[*object.Hazard]
	Collectibles Arena[*object.Collectible]
	Decorations  Arena[*object.Star]

	rows          []Row
	last          Row
	collectChance float64
	kinds         []collectibleKind
	totalWeight   float64
}

// New creates a generator. The jump envelope is derived from the baseline
// launch speed so power-ups never make the level harder to traverse.
func New(t config.Tuning, biomes *biome.Table, rng *rand.Rand) *Generator {
	vMax := t.Aim.MaxOutputForce * t.Player.JumpForce
	env := physics.JumpEnvelope(vMax, t.Player.Gravity, t.Level.SafetyFactor)
	g := &Generator{
		cfg:     t.Level,
		width:   t.World.Width,
		biomes:  biomes,
		rng:     rng,
		env:     env,
		spacing: env.Height / float64(max(1, t.Level.RowSubdivisions)),
	}
	g.kinds, g.totalWeight = parseKinds(t.Level.Collectibles)
	g.Reset()
	return g
}

func parseKinds(weights []config.CollectibleWeight) ([]collectibleKind, float64) {
	var kinds []collectibleKind
	total := 0.0
	for _, w := range weights {
		if w.Weight <= 0 {
			continue
		}
		k := collectibleKind{weight: w.Weight}
		if w.Kind == "fish" {
			k.fish = true
		} else if e, ok := object.ParseEffectKind(w.Kind); ok {
			k.effect = e
		} else {
			log.Warn("unknown collectible kind, using fish", "kind", w.Kind)
			k.fish = true
		}
		kinds = append(kinds, k)
		total += w.Weight
	}
	return kinds, total
}

// Envelope returns the jump envelope the generator plans with.
func (g *Generator) Envelope() physics.Envelope { return g.env }

// Spacing returns the nominal row spacing.
func (g *Generator) Spacing() float64 { return g.spacing }

// Reset discards the level and lays a full-width floor whose top is y=0.
func (g *Generator) Reset() {
	g.Platforms.Reset()
	g.Hazards.Reset()
	g.Collectibles.Reset()
	g.Decorations.Reset()
	g.rows = g.rows[:0]
	g.collectChance = g.cfg.CollectibleBaseChance

	g.Platforms.Push(object.NewPlatform(0, 0, g.width, g.cfg.PlatformHeight, object.PlatformFloor))
	g.last = Row{Y: 0, Center: g.width / 2, Width: g.width, Type: object.PlatformFloor, Platforms: 1}
	g.recordRow(g.last)
}

// Rows returns the most recent rows, oldest first.
func (g *Generator) Rows() []Row {
	out := make([]Row, len(g.rows))
	copy(out, g.rows)
	return out
}

// Top returns the Y of the highest generated row.
func (g *Generator) Top() float64 { return g.last.Y }

// Update generates rows until the level extends GenerateMargin above
// cameraTop, then retires everything below cameraBottom+RetireMargin.
func (g *Generator) Update(cameraTop, cameraBottom float64, flightActive bool) {
	for g.last.Y > cameraTop-g.cfg.GenerateMargin {
		g.generateRow(flightActive)
	}

	cut := cameraBottom + g.cfg.RetireMargin
	g.Platforms.RetireWhile(func(pl *object.Platform) bool { return pl.Y > cut })
	g.Hazards.RetireWhile(func(h *object.Hazard) bool { return h.Y > cut })
	g.Hazards.Filter(func(h *object.Hazard) bool { return !h.Destroyed })
	g.Collectibles.RetireWhile(func(c *object.Collectible) bool { return c.BaseY > cut })
	g.Collectibles.Filter(func(c *object.Collectible) bool { return !c.Collected })
	// stars of neighboring rows interleave, so they are filtered rather than retired in order
	g.Decorations.Filter(func(s *object.Star) bool { return s.Y <= cut })
}

func (g *Generator) recordRow(r Row) {
	if len(g.rows) == rowHistory {
		copy(g.rows, g.rows[1:])
		g.rows = g.rows[:rowHistory-1]
	}
	g.rows = append(g.rows, r)
}

func (g *Generator) generateRow(flightActive bool) {
	r := g.rng
	y := g.last.Y - g.spacing*(1-maxSpacingJitter*r.Float64())
	depth := -y

	w := physics.Lerp(g.cfg.MinPlatformWidth, g.cfg.MaxPlatformWidth, r.Float64())
	typ := g.biomes.Sample(depth, r.Float64())
	amp := 0.0
	if typ == object.PlatformMovingX {
		amp = g.cfg.MovingAmplitude
		if w+2*amp > g.width {
			typ, amp = object.PlatformDefault, 0
		}
	}

	reach := math.Max(0, g.env.Distance-g.last.Amplitude)
	lo := math.Max(g.last.Center-reach, w/2+amp)
	hi := math.Min(g.last.Center+reach, g.width-w/2-amp)
	var center float64
	if lo <= hi {
		center = lo + r.Float64()*(hi-lo)
	} else {
		center = physics.Clamp(g.last.Center, w/2+amp, g.width-w/2-amp)
	}

	primary := g.newPlatform(center-w/2, y, w, typ, amp)
	row := Row{Y: y, Center: center, Width: w, Amplitude: amp, Type: typ, Platforms: 1}

	var secondary *object.Platform
	if r.Float64() < g.cfg.SecondPlatformChance {
		secondary = g.secondPlatform(primary, y, depth)
		if secondary != nil {
			row.Platforms++
		}
	}

	g.placeHazard(row, primary, secondary, depth)
	g.placeCollectible(row, depth, flightActive)
	for i := 0; i < g.cfg.DecorationsPerRow; i++ {
		g.Decorations.Push(object.NewStar(r.Float64()*g.width, y-r.Float64()*g.spacing, r))
	}

	g.last = row
	g.recordRow(row)
}

func (g *Generator) newPlatform(x, y, w float64, typ object.PlatformType, amp float64) *object.Platform {
	pl := object.NewPlatform(x, y, w, g.cfg.PlatformHeight, typ)
	switch typ {
	case object.PlatformMovingX:
		speed := g.cfg.MovingSpeed * (0.8 + 0.4*g.rng.Float64())
		pl.SetMotion(amp, speed, g.rng.Float64()*2*math.Pi)
	case object.PlatformBreakable:
		pl.SetBreakDelay(g.cfg.BreakableShake)
	}
	g.Platforms.Push(pl)
	return pl
}

// secondPlatform adds a static platform beside primary when one fits.
func (g *Generator) secondPlatform(primary *object.Platform, y, depth float64) *object.Platform {
	r := g.rng
	w := physics.Lerp(g.cfg.MinPlatformWidth, g.cfg.MaxPlatformWidth, r.Float64())
	typ := g.biomes.Sample(depth, r.Float64())
	if typ == object.PlatformMovingX {
		typ = object.PlatformDefault
	}

	left, right := primary.BaseX-primary.Amplitude, primary.BaseX+primary.W+primary.Amplitude
	gap := minBridgeGap
	var candidates [][2]float64
	if left-gap-w >= 0 {
		candidates = append(candidates, [2]float64{0, left - gap - w})
	}
	if right+gap+w <= g.width {
		candidates = append(candidates, [2]float64{right + gap, g.width - w})
	}
	if len(candidates) == 0 {
		return nil
	}
	span := candidates[r.Intn(len(candidates))]
	x := span[0] + r.Float64()*(span[1]-span[0])
	return g.newPlatform(x, y, w, typ, 0)
}

func (g *Generator) hazardChance(depth float64) float64 {
	if depth < g.cfg.HazardMinDepth {
		return 0
	}
	return math.Min(g.cfg.HazardMaxChance, g.cfg.HazardBaseChance+depth*g.cfg.HazardChancePerUnit)
}

type hazardPlacement int

const (
	placeBridge hazardPlacement = iota
	placeFloat
	placeSide
)

func (g *Generator) placeHazard(row Row, primary, secondary *object.Platform, depth float64) {
	r := g.rng
	if r.Float64() >= g.hazardChance(depth) {
		return
	}

	placements := []hazardPlacement{placeFloat}
	if secondary != nil {
		placements = append(placements, placeBridge)
	}
	if primary.Type != object.PlatformMovingX {
		placements = append(placements, placeSide)
	}

	var h *object.Hazard
	switch placements[r.Intn(len(placements))] {
	case placeBridge:
		h = g.bridgeHazard(row.Y, primary, secondary)
	case placeFloat:
		h = g.floatHazard(row, primary)
	case placeSide:
		h = g.sideHazard(row.Y, primary)
	}
	if h != nil {
		g.Hazards.Push(h)
	}
}

// bridgeHazard stands in the gap between the two platforms of a row.
func (g *Generator) bridgeHazard(y float64, a, b *object.Platform) *object.Hazard {
	if b.X < a.X {
		a, b = b, a
	}
	gapL := a.BaseX + a.W + a.Amplitude
	gapR := b.BaseX - b.Amplitude
	if gapR-gapL < minBridgeGap {
		return nil
	}
	x := (gapL+gapR)/2 - hazardThickness/2
	return object.NewHazard(x, y-hazardSideHeight+g.cfg.PlatformHeight, hazardThickness, hazardSideHeight, g.rng)
}

// floatHazard hangs horizontally halfway to the next row, on the side away
// from the primary platform so the straight path stays open.
func (g *Generator) floatHazard(row Row, primary *object.Platform) *object.Hazard {
	r := g.rng
	length := physics.Lerp(hazardMinLength, hazardMaxLength, r.Float64())
	y := row.Y - g.spacing/2 - hazardThickness/2

	var lo, hi float64
	if row.Center < g.width/2 {
		lo, hi = primary.BaseX+primary.W+primary.Amplitude+hazardPlatformGap, g.width-length
	} else {
		lo, hi = 0, primary.BaseX-primary.Amplitude-hazardPlatformGap-length
	}
	if hi < lo {
		return nil
	}
	return object.NewHazard(lo+r.Float64()*(hi-lo), y, length, hazardThickness, r)
}

// sideHazard stands upright next to a static primary platform.
func (g *Generator) sideHazard(y float64, primary *object.Platform) *object.Hazard {
	x := primary.X + primary.W + hazardPlatformGap
	if x+hazardThickness > g.width || g.rng.Intn(2) == 0 {
		x = primary.X - hazardPlatformGap - hazardThickness
	}
	if x < 0 {
		return nil
	}
	return object.NewHazard(x, y-hazardSideHeight+g.cfg.PlatformHeight, hazardThickness, hazardSideHeight, g.rng)
}

// placeCollectible rolls the pity chance: every row without a pickup raises
// the next row's chance by CollectibleRamp.
func (g *Generator) placeCollectible(row Row, depth float64, flightActive bool) {
	if depth < g.cfg.CollectibleMinDepth || flightActive || len(g.kinds) == 0 {
		return
	}
	if g.rng.Float64() >= g.collectChance {
		g.collectChance = math.Min(1, g.collectChance+g.cfg.CollectibleRamp)
		return
	}
	g.collectChance = g.cfg.CollectibleBaseChance

	k := g.pickKind()
	x := physics.Clamp(row.Center, 0, g.width)
	y := row.Y - collectibleLift
	var c *object.Collectible
	if k.fish {
		c = object.NewFish(0, y)
	} else {
		c = object.NewPowerUp(0, y, k.effect)
	}
	c.X = physics.Clamp(x-c.W/2, 0, g.width-c.W)
	g.Collectibles.Push(c)
}

func (g *Generator) pickKind() collectibleKind {
	v := g.rng.Float64() * g.totalWeight
	for _, k := range g.kinds {
		v -= k.weight
		if v < 0 {
			return k
		}
	}
	return g.kinds[len(g.kinds)-1]
}

// CollectChance returns the current pity chance.
func (g *Generator) CollectChance() float64 { return g.collectChance }
