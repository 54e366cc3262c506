package object

import (
	"math"
	"math/rand"

	"github.com/tomz197/climber/internal/draw"
)

// Star is a twinkling background decoration. It never affects gameplay.
type Star struct {
	X, Y    float64
	Size    float64
	Phase   float64
	Twinkle float64 // radians per second
}

// NewStar places a star at a random phase.
func NewStar(x, y float64, rng *rand.Rand) *Star {
	return &Star{
		X:       x,
		Y:       y,
		Size:    2 + rng.Float64()*2,
		Phase:   rng.Float64() * 2 * math.Pi,
		Twinkle: 1 + rng.Float64()*2,
	}
}

// Update does nothing; twinkling is driven by the draw clock.
func (s *Star) Update(UpdateContext) (bool, error) { return false, nil }

// Draw renders the star with a time-based brightness.
func (s *Star) Draw(ctx DrawContext) error {
	b := 0.35 + 0.65*(math.Sin(s.Phase+ctx.Clock*s.Twinkle)+1)/2
	x, y := ctx.Camera.ToScreen(s.X, s.Y)
	ctx.Canvas.SetColor(draw.ColorStar.Scale(b))
	ctx.Canvas.FillRect(x, y, s.Size, s.Size)
	return nil
}
