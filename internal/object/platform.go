package object

import (
	"math"

	"github.com/tomz197/climber/internal/draw"
	"github.com/tomz197/climber/internal/physics"
)

// PlatformType selects a platform's behavior entry.
type PlatformType int

const (
	PlatformDefault PlatformType = iota
	PlatformFloor
	PlatformIce
	PlatformBouncy
	PlatformMovingX
	PlatformBreakable
	platformTypeCount
)

var platformTypeNames = [platformTypeCount]string{
	PlatformDefault:   "default",
	PlatformFloor:     "floor",
	PlatformIce:       "ice",
	PlatformBouncy:    "bouncy",
	PlatformMovingX:   "moving_x",
	PlatformBreakable: "breakable",
}

func (t PlatformType) String() string {
	if t < 0 || t >= platformTypeCount {
		return "unknown"
	}
	return platformTypeNames[t]
}

// ParsePlatformType maps a configuration name to a type.
func ParsePlatformType(name string) (PlatformType, bool) {
	for t, n := range platformTypeNames {
		if n == name {
			return PlatformType(t), true
		}
	}
	return PlatformDefault, false
}

const (
	defaultFriction = 0.8
	iceFriction     = 0.985
	breakGravity    = 1200.0
)

// platformBehavior is one row of the behavior table. Nil hooks are no-ops.
type platformBehavior struct {
	friction float64
	color    draw.Color
	onLand   func(pl *Platform, p *Player)
	update   func(pl *Platform, dt float64)
}

var platformBehaviors = [platformTypeCount]platformBehavior{
	PlatformDefault: {friction: defaultFriction, color: draw.ColorPlatform},
	PlatformFloor:   {friction: defaultFriction, color: draw.ColorFloor},
	PlatformIce:     {friction: iceFriction, color: draw.ColorIce},
	PlatformBouncy: {
		friction: defaultFriction,
		color:    draw.ColorBouncy,
		onLand: func(_ *Platform, p *Player) {
			p.launch(p.Params.BouncyLaunch)
			p.DoubleJumpAvailable = true
			p.djGranted = true
			p.bouncyLaunch = true
			p.events |= EventBounce
		},
	},
	PlatformMovingX: {
		friction: defaultFriction,
		color:    draw.ColorMoving,
		update: func(pl *Platform, dt float64) {
			pl.Phase += pl.Speed * dt
			x := pl.BaseX + math.Sin(pl.Phase)*pl.Amplitude
			pl.DeltaX = x - pl.X
			pl.X = x
		},
	},
	PlatformBreakable: {
		friction: defaultFriction,
		color:    draw.ColorBreakable,
		onLand: func(pl *Platform, _ *Player) {
			pl.Triggered = true
		},
		update: func(pl *Platform, dt float64) {
			switch {
			case pl.Broken:
				pl.fallVel += breakGravity * dt
				pl.FallOffset += pl.fallVel * dt
			case pl.Triggered:
				pl.ShakeElapsed += dt
				if pl.ShakeElapsed >= pl.BreakAfter {
					pl.Broken = true
				}
			}
		},
	},
}

// Platform is a one-way surface the player can land on from above.
type Platform struct {
	X, Y, W, H float64
	Type       PlatformType
	Friction   float64

	// MovingX
	BaseX     float64
	Amplitude float64
	Speed     float64
	Phase     float64
	DeltaX    float64 // horizontal displacement during the last update

	// Breakable
	Triggered    bool
	ShakeElapsed float64
	BreakAfter   float64
	Broken       bool
	FallOffset   float64
	fallVel      float64
}

// NewPlatform creates a platform with the behavior defaults of t.
func NewPlatform(x, y, w, h float64, t PlatformType) *Platform {
	if t < 0 || t >= platformTypeCount {
		t = PlatformDefault
	}
	return &Platform{
		X: x, Y: y, W: w, H: h,
		Type:     t,
		Friction: platformBehaviors[t].friction,
		BaseX:    x,
	}
}

// SetMotion configures horizontal oscillation around the current X.
func (pl *Platform) SetMotion(amplitude, speed, phase float64) {
	pl.BaseX = pl.X
	pl.Amplitude = amplitude
	pl.Speed = speed
	pl.Phase = phase
	pl.X = pl.BaseX + math.Sin(phase)*amplitude
}

// SetBreakDelay sets how long a breakable platform shakes before it gives way.
func (pl *Platform) SetBreakDelay(seconds float64) {
	pl.BreakAfter = seconds
}

// Update advances the type-specific behavior.
func (pl *Platform) Update(dt float64) {
	if fn := platformBehaviors[pl.Type].update; fn != nil {
		fn(pl, dt)
	}
}

// Collidable reports whether the player can land on the platform.
func (pl *Platform) Collidable() bool {
	return !pl.Broken
}

// OnLand runs the landing hook of the platform's type.
func (pl *Platform) OnLand(p *Player) {
	if fn := platformBehaviors[pl.Type].onLand; fn != nil {
		fn(pl, p)
	}
}

// Rect returns the collision rectangle.
func (pl *Platform) Rect() physics.Rect {
	return physics.Rect{X: pl.X, Y: pl.Y, W: pl.W, H: pl.H}
}

// Draw renders the platform as a colored slab.
func (pl *Platform) Draw(ctx DrawContext) error {
	x, y := ctx.Camera.ToScreen(pl.X, pl.Y+pl.FallOffset)
	if pl.Triggered && !pl.Broken {
		x += math.Sin(pl.ShakeElapsed*60) * 2
	}

	base := platformBehaviors[pl.Type].color
	if pl.Broken {
		base = base.Scale(0.5)
	}
	ctx.Canvas.SetColor(base)
	ctx.Canvas.FillRect(x, y, pl.W, pl.H)

	switch pl.Type {
	case PlatformIce, PlatformBouncy:
		ctx.Canvas.SetColor(draw.Blend(base, draw.ColorPlayer, 0.5))
		ctx.Canvas.FillRect(x, y, pl.W, pl.H/4)
	case PlatformBreakable:
		ctx.Canvas.SetColor(base.Scale(0.6))
		mid := x + pl.W/2
		ctx.Canvas.DrawLine(draw.Point{X: mid - 6, Y: y}, draw.Point{X: mid + 4, Y: y + pl.H})
	}
	return nil
}
