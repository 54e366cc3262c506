package object

import (
	"github.com/tomz197/climber/internal/draw"
	"github.com/tomz197/climber/internal/physics"
)

// EffectKind identifies a timed power-up.
type EffectKind int

const (
	EffectStrength EffectKind = iota
	EffectFlight
	EffectGrip
	EffectTotem
	effectKindCount
)

// EffectKinds lists every kind in tick order.
var EffectKinds = [...]EffectKind{EffectStrength, EffectFlight, EffectGrip, EffectTotem}

var effectKindNames = [effectKindCount]string{
	EffectStrength: "strength",
	EffectFlight:   "flight",
	EffectGrip:     "grip",
	EffectTotem:    "totem",
}

func (k EffectKind) String() string {
	if k < 0 || k >= effectKindCount {
		return "unknown"
	}
	return effectKindNames[k]
}

// ParseEffectKind maps a configuration name to a kind.
func ParseEffectKind(name string) (EffectKind, bool) {
	for k, n := range effectKindNames {
		if n == name {
			return EffectKind(k), true
		}
	}
	return 0, false
}

const (
	strengthMultiplier = 1.25
	gripFriction       = 0.5
	visualSmoothTime   = 0.15
)

// effectSpec is one row of the power-up table. Hooks must be idempotent:
// OnApply runs again when a running effect is refreshed.
type effectSpec struct {
	duration         float64 // milliseconds
	color            draw.Color
	grantsDoubleJump bool
	grantsGrace      bool
	consumeOnUse     bool
	onApply          func(p *Player)
	onExpire         func(p *Player)
	onTick           func(p *Player, dt float64)
}

var effectSpecs = [effectKindCount]effectSpec{
	EffectStrength: {
		duration:         6000,
		color:            draw.ColorStrength,
		grantsDoubleJump: true,
		grantsGrace:      true,
		onApply: func(p *Player) {
			p.Params.JumpForce = p.baseline.JumpForce * strengthMultiplier
		},
		onExpire: func(p *Player) {
			p.Params.JumpForce = p.baseline.JumpForce
		},
	},
	EffectFlight: {
		duration: 2500,
		color:    draw.ColorFlight,
		onApply: func(p *Player) {
			p.inputDisabled = true
			p.Grounded = false
		},
		onTick: func(p *Player, _ float64) {
			p.Vel.Y = -p.Params.FlightSpeed
		},
		onExpire: func(p *Player) {
			p.inputDisabled = false
		},
	},
	EffectGrip: {
		duration: 8000,
		color:    draw.ColorGrip,
		onApply: func(p *Player) {
			p.frictionOverride = gripFriction
		},
		onExpire: func(p *Player) {
			p.frictionOverride = 0
		},
	},
	EffectTotem: {
		duration:     5000,
		color:        draw.ColorTotem,
		consumeOnUse: true,
	},
}

// EffectColor returns the display color of a kind.
func EffectColor(k EffectKind) draw.Color {
	if k < 0 || k >= effectKindCount {
		return draw.ColorParticle
	}
	return effectSpecs[k].color
}

// EffectState is a running timed effect.
type EffectState struct {
	Kind      EffectKind
	Remaining float64 // milliseconds
	Total     float64
	Visual    float64 // smoothed Remaining/Total for the HUD bar
	visualVel float64
}

// AddEffect starts kind with its default duration, or refreshes it.
func (p *Player) AddEffect(kind EffectKind) {
	if kind < 0 || kind >= effectKindCount {
		return
	}
	p.AddEffectFor(kind, effectSpecs[kind].duration)
}

// AddEffectFor starts kind for ms milliseconds. A running effect of the same
// kind is refreshed to the new duration.
func (p *Player) AddEffectFor(kind EffectKind, ms float64) {
	if kind < 0 || kind >= effectKindCount || !(ms > 0) || p.Dead {
		return
	}
	e, ok := p.effects[kind]
	if !ok {
		e = &EffectState{Kind: kind}
		p.effects[kind] = e
	}
	e.Remaining = ms
	e.Total = ms
	if !ok {
		e.Visual = 1
	}
	if fn := effectSpecs[kind].onApply; fn != nil {
		fn(p)
	}
}

// RemoveEffect expires kind immediately.
func (p *Player) RemoveEffect(kind EffectKind) {
	if _, ok := p.effects[kind]; !ok {
		return
	}
	delete(p.effects, kind)
	if fn := effectSpecs[kind].onExpire; fn != nil {
		fn(p)
	}
}

// HasEffect reports whether kind is running.
func (p *Player) HasEffect(kind EffectKind) bool {
	_, ok := p.effects[kind]
	return ok
}

// Effect returns a copy of the running effect state.
func (p *Player) Effect(kind EffectKind) (EffectState, bool) {
	e, ok := p.effects[kind]
	if !ok {
		return EffectState{}, false
	}
	return *e, true
}

// Effects returns the running effects in tick order.
func (p *Player) Effects() []EffectState {
	out := make([]EffectState, 0, len(p.effects))
	for _, k := range EffectKinds {
		if e, ok := p.effects[k]; ok {
			out = append(out, *e)
		}
	}
	return out
}

func (p *Player) effectFlag(flag func(effectSpec) bool) bool {
	for k := range p.effects {
		if flag(effectSpecs[k]) {
			return true
		}
	}
	return false
}

func (p *Player) tickEffects(dt float64) {
	for _, k := range EffectKinds {
		e, ok := p.effects[k]
		if !ok {
			continue
		}
		spec := effectSpecs[k]
		if spec.onTick != nil {
			spec.onTick(p, dt)
		}
		e.Remaining -= dt * 1000
		target := 0.0
		if e.Total > 0 {
			target = physics.Clamp(e.Remaining/e.Total, 0, 1)
		}
		e.Visual = physics.SmoothDamp(e.Visual, target, &e.visualVel, visualSmoothTime, dt)
		if e.Remaining <= 0 {
			p.RemoveEffect(k)
		}
	}
}

// consumeEffect uses up a consume-on-use effect. Returns false if none ran.
func (p *Player) consumeEffect(kind EffectKind) bool {
	if !effectSpecs[kind].consumeOnUse || !p.HasEffect(kind) {
		return false
	}
	p.RemoveEffect(kind)
	return true
}
