package object

import (
	"github.com/tomz197/climber/internal/config"
	"github.com/tomz197/climber/internal/physics"
)

// Camera is a vertical viewport that only ever scrolls up. Y is the world
// coordinate of the top edge; world Y grows downward.
type Camera struct {
	Y               float64
	Height          float64
	TriggerFraction float64
	FollowRate      float64
	DeathMargin     float64
}

// NewCamera creates a camera whose top edge is at y.
func NewCamera(cfg config.Camera, height, y float64) *Camera {
	return &Camera{
		Y:               y,
		Height:          height,
		TriggerFraction: cfg.TriggerFraction,
		FollowRate:      cfg.FollowRate,
		DeathMargin:     cfg.DeathMargin,
	}
}

// TriggerLine is the world Y above which the player pulls the camera up.
func (c *Camera) TriggerLine() float64 {
	return c.Y + c.Height*c.TriggerFraction
}

// Follow eases the camera toward keeping playerY on the trigger line.
func (c *Camera) Follow(playerY, dt float64) {
	if playerY >= c.TriggerLine() {
		return
	}
	target := playerY - c.Height*c.TriggerFraction
	next := c.Y + (target-c.Y)*physics.Damp(c.FollowRate, dt)
	if next < c.Y {
		c.Y = next
	}
}

// Bottom is the world Y of the lower edge.
func (c *Camera) Bottom() float64 {
	return c.Y + c.Height
}

// DeathLine is the world Y below which a falling player dies.
func (c *Camera) DeathLine() float64 {
	return c.Bottom() + c.DeathMargin
}

// ToScreen maps world coordinates to view coordinates.
func (c *Camera) ToScreen(x, y float64) (float64, float64) {
	return x, y - c.Y
}

// ToWorld maps view coordinates to world coordinates.
func (c *Camera) ToWorld(x, y float64) (float64, float64) {
	return x, y + c.Y
}

// Visible reports whether the vertical span [top,bottom] intersects the view.
func (c *Camera) Visible(top, bottom float64) bool {
	return bottom >= c.Y && top <= c.Bottom()
}

// Reset moves the camera to y unconditionally.
func (c *Camera) Reset(y float64) {
	c.Y = y
}
