package draw

import "math/rand"

// Translator is anything whose drawing origin can be shifted temporarily.
type Translator interface {
	Translate(dx, dy float64) (restore func())
}

// Shake is a decaying random camera offset. Overlapping triggers merge by
// taking the larger duration and magnitude and restarting the decay.
type Shake struct {
	duration  float64 // seconds
	magnitude float64 // logical units
	elapsed   float64
	rng       *rand.Rand
}

// NewShake creates an idle shake that draws offsets from rng.
func NewShake(rng *rand.Rand) *Shake {
	return &Shake{rng: rng}
}

// Trigger starts or extends the shake.
func (s *Shake) Trigger(duration, magnitude float64) {
	if !(duration > 0) || !(magnitude > 0) {
		return
	}
	s.duration = max(s.duration, duration)
	s.magnitude = max(s.magnitude, magnitude)
	s.elapsed = 0
}

// Update advances the decay. Pass unscaled time so slow motion does not
// stretch the shake.
func (s *Shake) Update(dt float64) {
	if s.duration <= 0 {
		return
	}
	s.elapsed += dt
	if s.elapsed >= s.duration {
		s.Stop()
	}
}

// Stop ends the shake immediately.
func (s *Shake) Stop() {
	s.duration = 0
	s.magnitude = 0
	s.elapsed = 0
}

// Active reports whether a shake is in progress.
func (s *Shake) Active() bool {
	return s.duration > 0
}

// Magnitude returns the current decayed amplitude.
func (s *Shake) Magnitude() float64 {
	if s.duration <= 0 {
		return 0
	}
	return s.magnitude * (1 - s.elapsed/s.duration)
}

// Offset samples a random offset within the current amplitude on both axes.
func (s *Shake) Offset() (dx, dy float64) {
	m := s.Magnitude()
	if m == 0 {
		return 0, 0
	}
	dx = (s.rng.Float64() - 0.5) * 2 * m
	dy = (s.rng.Float64() - 0.5) * 2 * m
	return dx, dy
}

// Wrap runs fn with t translated by a fresh offset and always restores the
// translation afterwards, even when fn fails.
func (s *Shake) Wrap(t Translator, fn func() error) error {
	if !s.Active() {
		return fn()
	}
	restore := t.Translate(s.Offset())
	defer restore()
	return fn()
}
