package loop

import (
	"math"

	"github.com/tomz197/climber/internal/biome"
	"github.com/tomz197/climber/internal/config"
	"github.com/tomz197/climber/internal/level"
	"github.com/tomz197/climber/internal/object"
)

// State is the controller phase.
type State int

const (
	StateMenu     State = iota // Title screen
	StatePlaying               // Active gameplay
	StatePaused                // Simulation frozen, frame still drawn
	StateGameOver              // Run ended, corpse falls and the panel appears
	StateShutdown              // Server is shutting down
)

func (s State) String() string {
	switch s {
	case StateMenu:
		return "menu"
	case StatePlaying:
		return "playing"
	case StatePaused:
		return "paused"
	case StateGameOver:
		return "game-over"
	case StateShutdown:
		return "shutdown"
	default:
		return "unknown"
	}
}

// World is the object graph of one run. It is built fresh by every restart
// and owned by a single session goroutine.
type World struct {
	Player    *object.Player
	Camera    *object.Camera
	Level     *level.Generator
	Particles []object.Object
	toSpawn   []object.Object // Objects to add after current update cycle

	MaxHeight float64 // highest the player's feet have been above the floor
}

// NewWorld lays the floor, places the player on it and points the camera
// so the floor sits at the bottom of the view.
func NewWorld(t config.Tuning, biomes *biome.Table, gen *level.Generator) *World {
	gen.Reset()
	size := t.Player.Size
	p := object.NewPlayer(t.Player, t.World.Width/2-size/2, -size)
	p.Grounded = true

	camY := -t.World.ViewHeight + t.Level.PlatformHeight*2
	w := &World{
		Player: p,
		Camera: object.NewCamera(t.Camera, t.World.ViewHeight, camY),
		Level:  gen,
	}
	gen.Update(w.Camera.Y, w.Camera.Bottom(), false)
	return w
}

// Spawn queues an object to be added after the current update cycle.
// Implements object.Spawner interface.
func (w *World) Spawn(obj object.Object) {
	w.toSpawn = append(w.toSpawn, obj)
}

// FlushSpawned adds all queued objects and clears the queue.
func (w *World) FlushSpawned() {
	w.Particles = append(w.Particles, w.toSpawn...)
	clear(w.toSpawn)
	w.toSpawn = w.toSpawn[:0]
}

// UpdateParticles advances decorative objects, releasing the finished ones
// back to their pools.
func (w *World) UpdateParticles(ctx object.UpdateContext) error {
	n := 0
	for _, obj := range w.Particles {
		remove, err := obj.Update(ctx)
		if err != nil {
			return err
		}
		if remove {
			object.ReleaseObject(obj)
			continue
		}
		w.Particles[n] = obj
		n++
	}
	clear(w.Particles[n:])
	w.Particles = w.Particles[:n]
	w.FlushSpawned()
	return nil
}

// Height is the current height of the player's feet above the floor top.
func (w *World) Height() float64 {
	return math.Max(0, -(w.Player.Pos.Y + w.Player.Size))
}

// trackHeight raises MaxHeight to the current height.
func (w *World) trackHeight() {
	w.MaxHeight = math.Max(w.MaxHeight, w.Height())
}
