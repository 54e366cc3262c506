package object

import (
	"math"
	"sync"

	"github.com/tomz197/climber/internal/draw"
	"github.com/tomz197/climber/internal/physics"
)

// particlePool is a sync.Pool for reusing Particle objects to reduce allocations.
var particlePool = sync.Pool{
	New: func() any {
		return &Particle{}
	},
}

// ParticlePreset is a named emitter configuration.
type ParticlePreset struct {
	Name     string
	MinSpeed float64
	MaxSpeed float64
	// Direction is the emission angle in radians (0 = right, -pi/2 = up),
	// Spread the total cone width. A spread of 2*pi is omnidirectional.
	Direction float64
	Spread    float64
	MinLife   float64 // seconds
	MaxLife   float64
	Size      float64
	Gravity   float64
	Drag      float64 // per-frame velocity factor at 60fps (1.0 = no drag)
	Fade      bool
	Colors    []draw.Color
}

// Presets used by gameplay entities.
var (
	PresetDust = ParticlePreset{
		Name: "dust", MinSpeed: 40, MaxSpeed: 140, Direction: -math.Pi / 2, Spread: math.Pi,
		MinLife: 0.2, MaxLife: 0.45, Size: 3, Gravity: 600, Drag: 0.9, Fade: true,
		Colors: []draw.Color{draw.ColorFloor, draw.ColorPlatform},
	}
	PresetBounce = ParticlePreset{
		Name: "bounce", MinSpeed: 120, MaxSpeed: 320, Direction: math.Pi / 2, Spread: math.Pi * 0.8,
		MinLife: 0.25, MaxLife: 0.5, Size: 4, Gravity: 300, Drag: 0.92, Fade: true,
		Colors: []draw.Color{draw.ColorBouncy, draw.ColorPlayer},
	}
	PresetSparkle = ParticlePreset{
		Name: "sparkle", MinSpeed: 60, MaxSpeed: 220, Spread: 2 * math.Pi,
		MinLife: 0.3, MaxLife: 0.7, Size: 3, Gravity: -40, Drag: 0.93, Fade: true,
		Colors: []draw.Color{draw.ColorTotem, draw.ColorPlayer, draw.ColorFlight},
	}
	PresetHazardBurst = ParticlePreset{
		Name: "hazard", MinSpeed: 80, MaxSpeed: 300, Spread: 2 * math.Pi,
		MinLife: 0.2, MaxLife: 0.5, Size: 3, Gravity: 400, Drag: 0.9, Fade: true,
		Colors: []draw.Color{draw.ColorHazard, draw.ColorHazardCore, draw.ColorHazardSafe},
	}
	PresetDeath = ParticlePreset{
		Name: "death", MinSpeed: 150, MaxSpeed: 450, Spread: 2 * math.Pi,
		MinLife: 0.5, MaxLife: 1.1, Size: 5, Gravity: 900, Drag: 0.95, Fade: true,
		Colors: []draw.Color{draw.ColorPlayer, draw.ColorStrength, draw.ColorHazard},
	}
	PresetTrail = ParticlePreset{
		Name: "trail", MinSpeed: 10, MaxSpeed: 40, Direction: math.Pi / 2, Spread: math.Pi / 2,
		MinLife: 0.15, MaxLife: 0.3, Size: 3, Drag: 0.85, Fade: true,
		Colors: []draw.Color{draw.ColorFlight, draw.ColorPlayerGlow},
	}
)

// Particle is a short-lived visual effect.
type Particle struct {
	X, Y        float64 // Position
	VX, VY      float64 // Velocity
	Lifetime    float64 // Seconds remaining
	MaxLifetime float64 // Initial lifetime (for fade calculation)
	Drag        float64 // Velocity decay (1.0 = no drag)
	Gravity     float64
	Size        float64
	Color       draw.Color
	Fade        bool // Whether to fade out over lifetime
}

// NewParticle creates a single particle from the pool.
func NewParticle(x, y, vx, vy, lifetime float64, color draw.Color) *Particle {
	p := particlePool.Get().(*Particle)
	*p = Particle{
		X: x, Y: y,
		VX: vx, VY: vy,
		Lifetime:    lifetime,
		MaxLifetime: lifetime,
		Drag:        0.95,
		Size:        3,
		Color:       color,
		Fade:        true,
	}
	return p
}

// Release returns the particle to the pool for reuse.
// Should be called when the particle is removed from the game.
func (p *Particle) Release() {
	particlePool.Put(p)
}

func (pr ParticlePreset) spawn(ctx UpdateContext, x, y float64) {
	r := ctx.Rand
	angle := pr.Direction + (r.Float64()-0.5)*pr.Spread
	speed := physics.Lerp(pr.MinSpeed, pr.MaxSpeed, r.Float64())
	life := physics.Lerp(pr.MinLife, pr.MaxLife, r.Float64())
	col := draw.ColorParticle
	if len(pr.Colors) > 0 {
		col = pr.Colors[r.Intn(len(pr.Colors))]
	}

	p := NewParticle(x, y, math.Cos(angle)*speed, math.Sin(angle)*speed, life, col)
	p.Gravity = pr.Gravity
	if pr.Drag > 0 {
		p.Drag = pr.Drag
	}
	if pr.Size > 0 {
		p.Size = pr.Size
	}
	p.Fade = pr.Fade
	ctx.Spawner.Spawn(p)
}

// EmitBurst spawns count particles of preset at (x, y).
func EmitBurst(ctx UpdateContext, preset ParticlePreset, x, y float64, count int) {
	if ctx.Spawner == nil || ctx.Rand == nil {
		return
	}
	for i := 0; i < count; i++ {
		preset.spawn(ctx, x, y)
	}
}

// EmitRect spawns count particles of preset at random points inside r.
func EmitRect(ctx UpdateContext, preset ParticlePreset, r physics.Rect, count int) {
	if ctx.Spawner == nil || ctx.Rand == nil {
		return
	}
	for i := 0; i < count; i++ {
		preset.spawn(ctx, r.X+ctx.Rand.Float64()*r.W, r.Y+ctx.Rand.Float64()*r.H)
	}
}

// Update moves the particle and checks lifetime.
func (p *Particle) Update(ctx UpdateContext) (bool, error) {
	dt := ctx.Delta

	p.Lifetime -= dt
	if p.Lifetime <= 0 {
		return true, nil
	}

	dragFactor := physics.FrameFactor(p.Drag, dt) // Normalize drag to ~60fps
	p.VX *= dragFactor
	p.VY = p.VY*dragFactor + p.Gravity*dt

	p.X += p.VX * dt
	p.Y += p.VY * dt

	return false, nil
}

// Draw renders the particle as a small square that darkens as it dies.
func (p *Particle) Draw(ctx DrawContext) error {
	col := p.Color
	if p.Fade && p.MaxLifetime > 0 {
		life := p.Lifetime / p.MaxLifetime
		// Skip nearly dead particles
		if life < 0.1 {
			return nil
		}
		col = col.Scale(0.3 + 0.7*life)
	}
	x, y := ctx.Camera.ToScreen(p.X, p.Y)
	ctx.Canvas.SetColor(col)
	ctx.Canvas.FillRect(x-p.Size/2, y-p.Size/2, p.Size, p.Size)
	return nil
}
