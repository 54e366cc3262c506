package object

import (
	"math"

	"github.com/tomz197/climber/internal/config"
	"github.com/tomz197/climber/internal/draw"
	"github.com/tomz197/climber/internal/physics"
)

// Events is a bitmask of things that happened to the player since the last
// TakeEvents call.
type Events uint16

const (
	EventJump Events = 1 << iota
	EventDoubleJump
	EventBounce
	EventLand
	EventDeath
	EventCollect
	EventFish
	EventHazardDestroyed
	EventTotemSave
)

// Has reports whether every bit of f is set.
func (e Events) Has(f Events) bool { return e&f == f }

// ForceSource supplies a launch impulse that is consumed at most once.
type ForceSource interface {
	Force() physics.Vec2
	Active() bool
	ResetForce()
}

// hardLandingSpeed is the impact speed above which a landing counts as hard.
const hardLandingSpeed = 900

// deathAnimation is how long the corpse keeps falling before game over.
const deathAnimation = 1.2

// Player is the climber.
type Player struct {
	Pos, Vel physics.Vec2
	Size     float64

	Grounded            bool
	Dead                bool
	DoubleJumpAvailable bool
	Friction            float64  // surface friction of the last landing
	LastPlatform        *Platform // non-owning
	LandingSpeed        float64   // vertical speed at the last landing
	Fish                int

	// Params is mutated by effects; baseline is the untouched copy they restore from.
	Params   config.Player
	baseline config.Player

	effects          map[EffectKind]*EffectState
	frictionOverride float64
	inputDisabled    bool

	wasGrounded  bool
	djGranted    bool
	bouncyLaunch bool

	grace    float64 // milliseconds
	graceMax float64

	deathTimer float64
	events     Events
}

// NewPlayer creates a grounded-capable player whose top-left corner is (x, y).
func NewPlayer(params config.Player, x, y float64) *Player {
	return &Player{
		Pos:      physics.Vec2{X: x, Y: y},
		Size:     params.Size,
		Friction: defaultFriction,
		Params:   params,
		baseline: params,
		effects:  make(map[EffectKind]*EffectState),
	}
}

// Rect returns the player's bounding box.
func (p *Player) Rect() physics.Rect {
	return physics.Rect{X: p.Pos.X, Y: p.Pos.Y, W: p.Size, H: p.Size}
}

// Center returns the center of the bounding box.
func (p *Player) Center() physics.Vec2 {
	return p.Rect().Center()
}

// InputDisabled reports whether launches are currently ignored.
func (p *Player) InputDisabled() bool { return p.inputDisabled || p.Dead }

// TakeEvents returns and clears the accumulated events.
func (p *Player) TakeEvents() Events {
	e := p.events
	p.events = 0
	return e
}

// HandleInput applies a pending launch from src. The force is consumed in
// every case once the gesture has ended.
func (p *Player) HandleInput(src ForceSource) {
	if src.Active() {
		return
	}
	f := src.Force()
	if f.IsZero() {
		return
	}
	defer src.ResetForce()

	if p.InputDisabled() {
		return
	}
	if !p.Grounded && p.DoubleJumpAvailable {
		p.DoubleJumpAvailable = false
		p.Vel = f.Scale(p.Params.JumpForce)
		p.bouncyLaunch = false
		p.events |= EventDoubleJump
		return
	}
	if p.Grounded && math.Abs(p.Vel.X) < p.Params.RestSpeed && math.Abs(p.Vel.Y) < p.Params.RestSpeed {
		p.Vel = f.Scale(p.Params.JumpForce)
		p.Grounded = false
		p.events |= EventJump
	}
}

// Update integrates one tick. Grounded is re-derived by ResolvePlatforms.
func (p *Player) Update(dt, worldWidth float64) {
	if p.Dead {
		p.deathTimer += dt
		p.Vel.Y += p.Params.Gravity * dt
		p.Pos = p.Pos.Add(p.Vel.Scale(dt))
		return
	}

	p.wasGrounded = p.Grounded
	p.Grounded = false

	p.Vel.Y += p.Params.Gravity * dt
	p.tickEffects(dt)

	f := p.Params.AirResistance
	if p.wasGrounded {
		f = p.Friction
		if p.frictionOverride > 0 {
			f = math.Min(f, p.frictionOverride)
		}
	}
	p.Vel.X *= physics.FrameFactor(f, dt)

	p.Pos = p.Pos.Add(p.Vel.Scale(dt))

	if p.Pos.X < 0 {
		p.Pos.X = 0
		p.Vel.X *= -p.Params.WallBounciness
	} else if p.Pos.X+p.Size > worldWidth {
		p.Pos.X = worldWidth - p.Size
		p.Vel.X *= -p.Params.WallBounciness
	}

	if !p.wasGrounded {
		p.evaluateDoubleJump()
	}
	p.updateGrace(dt)
}

// ResolvePlatforms lands the player on the first accepting platform in order
// and returns it, or nil.
func (p *Player) ResolvePlatforms(platforms []*Platform, dt float64) *Platform {
	if p.Dead || p.Vel.Y < 0 {
		return nil
	}
	feet := p.Pos.Y + p.Size
	prevFeet := feet - p.Vel.Y*dt
	for _, pl := range platforms {
		if !pl.Collidable() {
			continue
		}
		if !physics.SpanOverlap(p.Pos.X, p.Pos.X+p.Size, pl.X, pl.X+pl.W) {
			continue
		}
		if feet >= pl.Y && prevFeet <= pl.Y+p.Params.CollisionTolerance {
			p.land(pl)
			return pl
		}
	}
	return nil
}

func (p *Player) land(pl *Platform) {
	impact := p.Vel.Y
	p.Pos.Y = pl.Y - p.Size
	p.Vel.Y = 0
	p.Grounded = true
	p.Friction = pl.Friction
	p.LastPlatform = pl
	p.DoubleJumpAvailable = false
	p.djGranted = false
	p.bouncyLaunch = false
	if !p.wasGrounded {
		p.LandingSpeed = impact
		p.events |= EventLand
	}
	pl.OnLand(p)
	p.Pos.X += pl.DeltaX
}

// launch turns the current tick into an upward launch at speed.
func (p *Player) launch(speed float64) {
	p.Vel.Y = -speed
	p.Grounded = false
}

// HardLanding reports whether the last landing exceeded the impact threshold.
func (p *Player) HardLanding() bool {
	return p.LandingSpeed >= hardLandingSpeed
}

// Kill ends the run unless a totem absorbs it. Returns true if the player died.
func (p *Player) Kill() bool {
	if p.Dead {
		return false
	}
	if p.consumeEffect(EffectTotem) {
		p.Vel.X = 0
		p.launch(p.Params.BouncyLaunch)
		p.bouncyLaunch = true
		p.ActivateHazardResistance(p.Params.GraceDuration)
		p.events |= EventTotemSave
		return false
	}

	for _, k := range EffectKinds {
		p.RemoveEffect(k)
	}
	p.Dead = true
	p.Grounded = false
	p.DoubleJumpAvailable = false
	p.Vel = physics.Vec2{Y: -p.Params.DeathPop}
	p.deathTimer = 0
	p.events |= EventDeath
	return true
}

// DeathAnimationDone reports whether the corpse has finished falling.
func (p *Player) DeathAnimationDone() bool {
	return p.Dead && p.deathTimer >= deathAnimation
}

// doubleJumpRule is one row of the eligibility policy table.
type doubleJumpRule struct {
	name     string
	eligible func(p *Player) bool
}

var doubleJumpRules = []doubleJumpRule{
	{"bouncy-launch", func(p *Player) bool { return p.bouncyLaunch }},
	{"upward-velocity", func(p *Player) bool { return -p.Vel.Y >= p.Params.DoubleJumpVelocity }},
	{"power-up", func(p *Player) bool {
		return p.effectFlag(func(s effectSpec) bool { return s.grantsDoubleJump })
	}},
}

// DoubleJumpRule returns the name of the first rule that currently grants a
// double jump, or "".
func (p *Player) DoubleJumpRule() string {
	for _, r := range doubleJumpRules {
		if r.eligible(p) {
			return r.name
		}
	}
	return ""
}

func (p *Player) evaluateDoubleJump() {
	if p.djGranted {
		return
	}
	if p.DoubleJumpRule() != "" {
		p.DoubleJumpAvailable = true
		p.djGranted = true
	}
}

// graceTrigger is one row of the hazard grace policy table.
type graceTrigger struct {
	name   string
	active func(p *Player) bool
}

var graceTriggers = []graceTrigger{
	{"flight", func(p *Player) bool { return p.HasEffect(EffectFlight) }},
	{"upward-velocity", func(p *Player) bool { return -p.Vel.Y >= p.Params.GraceVelocity }},
	{"power-up", func(p *Player) bool {
		return p.effectFlag(func(s effectSpec) bool { return s.grantsGrace })
	}},
	{"double-jump", func(p *Player) bool { return p.DoubleJumpAvailable && !p.Grounded }},
	{"bouncy-launch", func(p *Player) bool { return p.bouncyLaunch }},
}

func (p *Player) updateGrace(dt float64) {
	p.grace = math.Max(0, p.grace-dt*1000)
	for _, t := range graceTriggers {
		if t.active(p) {
			p.ActivateHazardResistance(p.Params.GraceDuration)
			return
		}
	}
}

// ActivateHazardResistance arms grace for ms milliseconds. A shorter request
// never cuts a longer running grace.
func (p *Player) ActivateHazardResistance(ms float64) {
	if !(ms > p.grace) {
		return
	}
	p.grace = ms
	p.graceMax = ms
}

// HazardResistant reports whether hazards are currently harmless.
func (p *Player) HazardResistant() bool { return p.grace > 0 }

// GraceRemaining returns the remaining grace in milliseconds.
func (p *Player) GraceRemaining() float64 { return p.grace }

// GraceProgress returns remaining/max grace in [0,1].
func (p *Player) GraceProgress() float64 {
	if p.graceMax <= 0 {
		return 0
	}
	return physics.Clamp(p.grace/p.graceMax, 0, 1)
}

// Draw renders the player as a square, outlined while hazard resistant.
func (p *Player) Draw(ctx DrawContext) error {
	x, y := ctx.Camera.ToScreen(p.Pos.X, p.Pos.Y)
	c := ctx.Canvas

	body := draw.ColorPlayer
	if p.Dead {
		body = body.Scale(0.4)
	}
	for _, k := range EffectKinds {
		if p.HasEffect(k) {
			body = draw.Blend(body, EffectColor(k), 0.45)
			break
		}
	}
	c.SetColor(body)
	c.FillRect(x, y, p.Size, p.Size)

	// eyes look toward the direction of travel
	eye := physics.Clamp(p.Vel.X/400, -1, 1) * p.Size * 0.12
	c.SetColor(draw.RGB(20, 20, 20))
	c.FillRect(x+p.Size*0.25+eye, y+p.Size*0.3, p.Size*0.12, p.Size*0.18)
	c.FillRect(x+p.Size*0.63+eye, y+p.Size*0.3, p.Size*0.12, p.Size*0.18)

	if p.HazardResistant() {
		if p.GraceProgress() < 0.35 && !ShouldRenderBlink(ctx.Clock, 8) {
			return nil
		}
		c.SetColor(draw.ColorPlayerGlow)
		c.StrokeRect(x-3, y-3, p.Size+6, p.Size+6)
	}
	return nil
}
