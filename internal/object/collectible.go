package object

import (
	"math"

	"github.com/tomz197/climber/internal/draw"
	"github.com/tomz197/climber/internal/physics"
)

const (
	collectibleSize  = 32.0
	hoverSpeed       = 2.0
	hoverAmplitude   = 10.0
	fishHoverAmpl    = 5.0
	fishSize         = 24.0
	collectSparkles  = 12
	collectibleBlink = 6.0
)

// Collectible is a hovering pickup: a fish for bonus score or a power-up.
type Collectible struct {
	X, BaseY, Y float64
	W, H        float64

	HoverTimer     float64
	HoverSpeed     float64
	HoverAmplitude float64

	Fish      bool
	Effect    EffectKind // valid when !Fish
	Collected bool
}

// NewFish creates a fish pickup with its top-left at (x, y).
func NewFish(x, y float64) *Collectible {
	return &Collectible{
		X: x, BaseY: y, Y: y, W: fishSize, H: fishSize,
		HoverSpeed: hoverSpeed, HoverAmplitude: fishHoverAmpl,
		Fish: true,
	}
}

// NewPowerUp creates a power-up pickup granting kind.
func NewPowerUp(x, y float64, kind EffectKind) *Collectible {
	return &Collectible{
		X: x, BaseY: y, Y: y, W: collectibleSize, H: collectibleSize,
		HoverSpeed: hoverSpeed, HoverAmplitude: hoverAmplitude,
		Effect: kind,
	}
}

// Rect returns the current collision rectangle.
func (c *Collectible) Rect() physics.Rect {
	return physics.Rect{X: c.X, Y: c.Y, W: c.W, H: c.H}
}

// Name returns "fish" or the effect name.
func (c *Collectible) Name() string {
	if c.Fish {
		return "fish"
	}
	return c.Effect.String()
}

// Update hovers the pickup and collects it on contact. Returns true when
// collected this tick.
func (c *Collectible) Update(ctx UpdateContext, p *Player) bool {
	if c.Collected {
		return false
	}
	c.HoverTimer += ctx.Delta
	c.Y = c.BaseY + math.Sin(c.HoverTimer*c.HoverSpeed)*c.HoverAmplitude

	if p == nil || p.Dead || !physics.RectsOverlap(c.Rect(), p.Rect()) {
		return false
	}
	c.Collect(p)
	center := c.Rect().Center()
	EmitBurst(ctx, PresetSparkle, center.X, center.Y, collectSparkles)
	return true
}

// Collect applies the pickup to p.
func (c *Collectible) Collect(p *Player) {
	if c.Collected {
		return
	}
	c.Collected = true
	if c.Fish {
		p.Fish++
		p.events |= EventFish
		return
	}
	p.AddEffect(c.Effect)
	p.events |= EventCollect
}

func (c *Collectible) color() draw.Color {
	if c.Fish {
		return draw.ColorFish
	}
	return EffectColor(c.Effect)
}

// Draw renders the pickup; power-ups get a pulsing halo.
func (c *Collectible) Draw(ctx DrawContext) error {
	if c.Collected {
		return nil
	}
	cv := ctx.Canvas
	x, y := ctx.Camera.ToScreen(c.X, c.Y)
	col := c.color()

	if c.Fish {
		// body plus a triangular tail
		cv.SetColor(col)
		cv.FillRect(x+c.W*0.3, y+c.H*0.25, c.W*0.7, c.H*0.5)
		tail := cv.BorrowPoints(3)
		tail[0] = draw.Point{X: x, Y: y + c.H*0.1}
		tail[1] = draw.Point{X: x + c.W*0.35, Y: y + c.H*0.5}
		tail[2] = draw.Point{X: x, Y: y + c.H*0.9}
		cv.DrawPolygon(tail, true)
		return nil
	}

	if ShouldRenderBlink(ctx.Clock, collectibleBlink) {
		cv.SetColor(col.Scale(0.45))
		cv.StrokeRect(x-3, y-3, c.W+6, c.H+6)
	}
	cv.SetColor(col)
	cv.FillRect(x+c.W*0.15, y+c.H*0.15, c.W*0.7, c.H*0.7)
	return nil
}
