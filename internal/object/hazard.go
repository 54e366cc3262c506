package object

import (
	"math"
	"math/rand"

	"github.com/tomz197/climber/internal/draw"
	"github.com/tomz197/climber/internal/physics"
)

const (
	hazardMargin      = 6.0
	hazardZapInterval = 0.04
	hazardEndCap      = 6.0

	pulseNormal   = 8.0
	pulseBlink    = 14.0
	pulseResist   = 6.0
	telegraphEdge = 0.35
)

// Hazard is an electrified bar. Touching it kills the player unless hazard
// grace is active, in which case the hazard is destroyed.
type Hazard struct {
	X, Y, W, H float64
	Vertical   bool
	Margin     float64
	Destroyed  bool

	zap      []physics.Vec2
	zapTimer float64
	timer    float64

	// telegraph state copied from the player each update
	resist         bool
	resistProgress float64
}

// NewHazard creates a hazard; bars taller than wide run vertically.
func NewHazard(x, y, w, h float64, rng *rand.Rand) *Hazard {
	hz := &Hazard{X: x, Y: y, W: w, H: h, Vertical: h > w, Margin: hazardMargin}
	hz.regenerateZap(rng)
	return hz
}

// Rect returns the full visual rectangle.
func (h *Hazard) Rect() physics.Rect {
	return physics.Rect{X: h.X, Y: h.Y, W: h.W, H: h.H}
}

// HitBox is the rectangle that actually hurts, inset by Margin.
func (h *Hazard) HitBox() physics.Rect {
	r := h.Rect()
	if h.Vertical {
		return physics.Rect{X: r.X, Y: r.Y + h.Margin, W: r.W, H: math.Max(0, r.H-2*h.Margin)}
	}
	return physics.Rect{X: r.X + h.Margin, Y: r.Y, W: math.Max(0, r.W-2*h.Margin), H: r.H}
}

// ZapPoints returns the current lightning polyline in world coordinates.
func (h *Hazard) ZapPoints() []physics.Vec2 { return h.zap }

func (h *Hazard) regenerateZap(rng *rand.Rand) {
	h.zap = h.zap[:0]
	length, thickness := h.W, h.H
	if h.Vertical {
		length, thickness = h.H, h.W
	}

	point := func(along, across float64) physics.Vec2 {
		if h.Vertical {
			return physics.Vec2{X: h.X + h.W/2 + across, Y: h.Y + along}
		}
		return physics.Vec2{X: h.X + along, Y: h.Y + h.H/2 + across}
	}

	h.zap = append(h.zap, point(0, 0))
	for d := rng.Float64()*15 + 5; d < length; d += rng.Float64()*15 + 5 {
		h.zap = append(h.zap, point(d, (rng.Float64()-0.5)*0.8*thickness))
	}
	h.zap = append(h.zap, point(length, 0))
}

// Update animates the lightning and mirrors the player's grace for telegraphing.
func (h *Hazard) Update(ctx UpdateContext, p *Player) {
	h.timer += ctx.Delta
	h.zapTimer += ctx.Delta
	if h.zapTimer >= hazardZapInterval {
		h.zapTimer = 0
		h.regenerateZap(ctx.Rand)
	}
	h.resist = p != nil && p.HazardResistant()
	if h.resist {
		h.resistProgress = p.GraceProgress()
	}
}

// Hits reports whether the player's box intersects the hit box.
func (h *Hazard) Hits(p *Player) bool {
	if h.Destroyed || p.Dead {
		return false
	}
	return physics.RectsOverlap(h.HitBox(), p.Rect())
}

// Destroy removes the hazard with a burst of sparks.
func (h *Hazard) Destroy(ctx UpdateContext) {
	if h.Destroyed {
		return
	}
	h.Destroyed = true
	c := h.Rect().Center()
	EmitRect(ctx, PresetHazardBurst, h.Rect(), int(math.Max(h.W, h.H)/3))
	EmitBurst(ctx, PresetSparkle, c.X, c.Y, 10)
}

// ResolveHazards applies hazard contact to p. Returns true if p died.
func ResolveHazards(ctx UpdateContext, p *Player, hazards []*Hazard) bool {
	for _, h := range hazards {
		if !h.Hits(p) {
			continue
		}
		if p.HazardResistant() {
			h.Destroy(ctx)
			p.events |= EventHazardDestroyed
			continue
		}
		if p.Kill() {
			c := p.Center()
			EmitBurst(ctx, PresetDeath, c.X, c.Y, 30)
			return true
		}
	}
	return false
}

func (h *Hazard) colors() (outer, zap draw.Color, pulseSpeed float64) {
	if !h.resist {
		return draw.ColorHazardCore, draw.ColorHazard, pulseNormal
	}
	outer, zap = draw.ColorHazardSafe, draw.Blend(draw.ColorHazardSafe, draw.ColorPlayer, 0.5)
	if h.resistProgress < telegraphEdge {
		// blink back toward the lethal palette as grace runs out
		t := (math.Sin(h.timer*pulseBlink) + 1) / 2
		return draw.Blend(outer, draw.ColorHazardCore, t), draw.Blend(zap, draw.ColorHazard, t), pulseBlink
	}
	return outer, zap, pulseResist
}

// Draw renders the bar, its end caps and the lightning.
func (h *Hazard) Draw(ctx DrawContext) error {
	if h.Destroyed {
		return nil
	}
	c := ctx.Canvas
	outer, zap, pulseSpeed := h.colors()
	pulse := 0.75 + 0.25*(math.Sin(h.timer*pulseSpeed)+1)/2

	x, y := ctx.Camera.ToScreen(h.X, h.Y)
	c.SetColor(outer.Scale(0.35 * pulse))
	c.FillRect(x, y, h.W, h.H)

	c.SetColor(outer)
	if h.Vertical {
		c.FillRect(x, y, h.W, hazardEndCap)
		c.FillRect(x, y+h.H-hazardEndCap, h.W, hazardEndCap)
	} else {
		c.FillRect(x, y, hazardEndCap, h.H)
		c.FillRect(x+h.W-hazardEndCap, y, hazardEndCap, h.H)
	}

	c.SetColor(zap.Scale(pulse))
	for i := 1; i < len(h.zap); i++ {
		ax, ay := ctx.Camera.ToScreen(h.zap[i-1].X, h.zap[i-1].Y)
		bx, by := ctx.Camera.ToScreen(h.zap[i].X, h.zap[i].Y)
		c.DrawLine(draw.Point{X: ax, Y: ay}, draw.Point{X: bx, Y: by})
	}
	return nil
}
