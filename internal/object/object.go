package object

import (
	"math/rand"

	"github.com/tomz197/climber/internal/draw"
)

// Spawner allows objects to spawn new objects during update.
type Spawner interface {
	Spawn(obj Object)
}

// UpdateContext provides all the information an object needs during update.
type UpdateContext struct {
	Delta   float64 // scaled seconds
	Rand    *rand.Rand
	Spawner Spawner
}

// DrawContext provides drawing resources for objects.
type DrawContext struct {
	Canvas *draw.Canvas
	Camera *Camera
	Clock  float64 // unscaled seconds since the session started, for blinking
}

// Object is a drawable and updatable decorative entity (particles, stars).
// Gameplay entities have typed update methods because they interact with the player.
type Object interface {
	// Update updates the object state. Returns true if the object should be removed.
	Update(ctx UpdateContext) (remove bool, err error)

	// Draw draws the object onto ctx.Canvas.
	Draw(ctx DrawContext) error
}

// Releasable is implemented by pooled objects that can be returned to a pool.
type Releasable interface {
	Release()
}

// ReleaseObject releases an object back to its pool if it implements Releasable.
func ReleaseObject(obj Object) {
	if r, ok := obj.(Releasable); ok {
		r.Release()
	}
}

// ShouldRenderBlink reports whether something blinking at frequency Hz is
// visible at time t.
func ShouldRenderBlink(t, frequency float64) bool {
	phase := int(t * frequency)
	return phase%2 == 0
}
