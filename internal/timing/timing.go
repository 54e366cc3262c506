// Package timing provides the per-frame clock with clamping and time scaling.
package timing

import (
	"math"
	"time"
)

// DefaultMaxDelta caps a single frame so a stalled session does not tunnel
// the player through platforms.
const DefaultMaxDelta = 0.05

// State is a snapshot of the clock after the most recent Update.
type State struct {
	RawDelta float64 // seconds between the last two updates, sanitized
	Clamped  float64 // RawDelta capped at MaxDelta
	Scale    float64 // time scale applied to Clamped
	Delta    float64 // Clamped * Scale
}

// Source converts wall-clock readings into simulation deltas.
// It is owned by one game session and is not safe for concurrent use.
type Source struct {
	maxDelta     float64
	last         float64
	started      bool
	epoch        time.Time
	scale        float64
	pendingScale float64
	state        State
}

// NewSource creates a clock. A non-positive maxDelta selects DefaultMaxDelta.
func NewSource(maxDelta float64) *Source {
	if !(maxDelta > 0) || math.IsInf(maxDelta, 1) {
		maxDelta = DefaultMaxDelta
	}
	return &Source{
		maxDelta:     maxDelta,
		scale:        1,
		pendingScale: 1,
		state:        State{Scale: 1},
	}
}

// Update advances the clock to nowMs (milliseconds). The first call only
// records the baseline and yields a zero delta.
func (s *Source) Update(nowMs float64) {
	s.scale = s.pendingScale

	if !finite(nowMs) {
		s.state = State{Scale: s.scale}
		return
	}
	if !s.started {
		s.started = true
		s.last = nowMs
		s.state = State{Scale: s.scale}
		return
	}

	raw := (nowMs - s.last) / 1000
	s.last = nowMs
	if !finite(raw) || raw < 0 {
		raw = 0
	}

	clamped := math.Min(raw, s.maxDelta)
	s.state = State{
		RawDelta: raw,
		Clamped:  clamped,
		Scale:    s.scale,
		Delta:    clamped * s.scale,
	}
}

// Tick is Update driven by a time.Time. Readings are taken relative to the
// first tick so the monotonic clock is used.
func (s *Source) Tick(now time.Time) {
	if s.epoch.IsZero() {
		s.epoch = now
	}
	s.Update(float64(now.Sub(s.epoch)) / float64(time.Millisecond))
}

// SetScale sets the time scale, clamped to [0,1]. It takes effect on the
// next Update.
func (s *Source) SetScale(scale float64) {
	switch {
	case math.IsNaN(scale) || scale < 0:
		scale = 0
	case scale > 1:
		scale = 1
	}
	s.pendingScale = scale
}

// Scale returns the scale that the next Update will apply.
func (s *Source) Scale() float64 { return s.pendingScale }

// Delta returns the scaled delta in seconds.
func (s *Source) Delta() float64 { return s.state.Delta }

// Unscaled returns the clamped delta in seconds, ignoring the time scale.
func (s *Source) Unscaled() float64 { return s.state.Clamped }

// State returns the full snapshot of the last Update.
func (s *Source) State() State { return s.state }

// MaxDelta returns the clamp applied to every frame.
func (s *Source) MaxDelta() float64 { return s.maxDelta }

// Reset forgets the baseline so the next Update yields a zero delta.
// The time scale is kept.
func (s *Source) Reset() {
	s.started = false
	s.epoch = time.Time{}
	s.state = State{Scale: s.pendingScale}
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
