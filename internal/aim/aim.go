// Package aim converts a pointer drag into a slingshot launch impulse.
package aim

import (
	"math"

	"github.com/tomz197/climber/internal/config"
	"github.com/tomz197/climber/internal/physics"
)

// minDragCells keeps a full-power drag at least this many terminal columns
// long, so coarse terminals still resolve the power curve.
const minDragCells = 8

// TimeScaler receives the slow-motion factor while a gesture is held.
type TimeScaler interface {
	SetScale(scale float64)
}

// Gesture is the state of the current or last drag.
type Gesture struct {
	Active      bool
	Origin      physics.Vec2
	Current     physics.Vec2
	Force       physics.Vec2
	Power       float64
	Overpowered bool
}

// Controller owns one gesture at a time. The produced force is consumed at
// most once: the consumer calls ResetForce after acting on it.
type Controller struct {
	cfg     config.Aim
	maxDrag float64
	clock   TimeScaler
	g       Gesture
}

// New creates a controller. clock may be nil when no slow motion is wanted.
func New(cfg config.Aim, clock TimeScaler) *Controller {
	return &Controller{cfg: cfg, maxDrag: cfg.MaxDrag, clock: clock}
}

// Power maps a drag length to launch power in [0,1]: quadratic up to maxDrag,
// saturated beyond it.
func Power(dist, maxDrag float64) float64 {
	if maxDrag <= 0 || !(dist > 0) {
		return 0
	}
	t := math.Min(dist, maxDrag) / maxDrag
	return t * t
}

// Begin starts a gesture at p and enters slow motion.
func (c *Controller) Begin(p physics.Vec2) {
	c.g = Gesture{Active: true, Origin: p, Current: p}
	if c.clock != nil {
		c.clock.SetScale(c.cfg.SlowMotionScale)
	}
}

// Move updates the drag point of an active gesture.
func (c *Controller) Move(p physics.Vec2) {
	if c.g.Active {
		c.g.Current = p
	}
}

// End releases the gesture, restoring normal time and producing a force
// unless the drag stayed inside the deadzone.
func (c *Controller) End() {
	if !c.g.Active {
		return
	}
	c.g.Active = false
	if c.clock != nil {
		c.clock.SetScale(1)
	}

	force, power, ok := c.compute()
	if !ok {
		c.g.Force = physics.Vec2{}
		c.g.Power = 0
		c.g.Overpowered = false
		return
	}
	c.g.Force = force
	c.g.Power = power
	c.g.Overpowered = power >= c.cfg.OverpowerThreshold
}

// Cancel ends an interrupted gesture. It finalizes exactly like a release so
// a drag cut off by the terminal still launches.
func (c *Controller) Cancel() {
	c.End()
}

// Abort drops the gesture and any pending force without launching.
func (c *Controller) Abort() {
	wasActive := c.g.Active
	c.g = Gesture{}
	if wasActive && c.clock != nil {
		c.clock.SetScale(1)
	}
}

func (c *Controller) compute() (physics.Vec2, float64, bool) {
	d := c.g.Origin.Sub(c.g.Current)
	dist := d.Len()
	if dist < c.cfg.Deadzone || dist == 0 {
		return physics.Vec2{}, 0, false
	}
	power := Power(dist, c.maxDrag)
	return d.Normalize().Scale(power * c.cfg.MaxOutputForce), power, true
}

// Preview returns the force a release would produce right now.
func (c *Controller) Preview() (force physics.Vec2, power float64, ok bool) {
	if !c.g.Active {
		return physics.Vec2{}, 0, false
	}
	return c.compute()
}

// Force returns the pending launch force, zero when none.
func (c *Controller) Force() physics.Vec2 { return c.g.Force }

// Overpowered reports whether the pending force came from a near-maximal drag.
func (c *Controller) Overpowered() bool { return c.g.Overpowered }

// Active reports whether a gesture is being held.
func (c *Controller) Active() bool { return c.g.Active }

// ResetForce consumes the pending force.
func (c *Controller) ResetForce() {
	c.g.Force = physics.Vec2{}
	c.g.Power = 0
	c.g.Overpowered = false
}

// Gesture returns a copy of the gesture state.
func (c *Controller) Gesture() Gesture { return c.g }

// MaxDrag returns the drag length that yields full power.
func (c *Controller) MaxDrag() float64 { return c.maxDrag }

// Resize adapts the full-power drag length to the terminal resolution,
// given how many logical units one terminal column spans.
func (c *Controller) Resize(unitsPerCell float64) {
	c.maxDrag = math.Max(c.cfg.MaxDrag, unitsPerCell*minDragCells)
}
