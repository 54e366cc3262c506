// Package tone plays gameplay cues as short synthesized notes on the local
// audio device. Only the local binary links it; SSH players get the bell.
package tone

import (
	"math"
	"sync"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/effects"
	"github.com/gopxl/beep/speaker"

	"github.com/tomz197/climber/internal/feedback"
)

const sampleRate = beep.SampleRate(48000)

// note is one synthesized cue: a sine sweep from freq to freq+sweep.
type note struct {
	freq     float64
	sweep    float64
	duration time.Duration
	volume   float64
}

var notes = map[feedback.Kind]note{
	feedback.Jump:            {freq: 440, sweep: 220, duration: 60 * time.Millisecond, volume: 0.25},
	feedback.DoubleJump:      {freq: 660, sweep: 330, duration: 70 * time.Millisecond, volume: 0.25},
	feedback.Land:            {freq: 140, sweep: -40, duration: 40 * time.Millisecond, volume: 0.2},
	feedback.HardLand:        {freq: 110, sweep: -60, duration: 90 * time.Millisecond, volume: 0.4},
	feedback.Bounce:          {freq: 300, sweep: 600, duration: 120 * time.Millisecond, volume: 0.35},
	feedback.Collect:         {freq: 880, sweep: 440, duration: 90 * time.Millisecond, volume: 0.25},
	feedback.HazardDestroyed: {freq: 1200, sweep: -900, duration: 110 * time.Millisecond, volume: 0.3},
	feedback.Death:           {freq: 330, sweep: -280, duration: 400 * time.Millisecond, volume: 0.45},
}

// Player plays a short synthesized note per cue through the default audio device.
type Player struct {
	mu     sync.Mutex
	mixer  *beep.Mixer
	volume float64
	closed bool
}

// New initializes the speaker. volume scales every note, 0 mutes.
func New(volume float64) (*Player, error) {
	t := &Player{mixer: &beep.Mixer{}, volume: volume}
	if err := speaker.Init(sampleRate, sampleRate.N(time.Millisecond*100)); err != nil {
		return nil, err
	}
	speaker.Play(t.mixer)
	return t, nil
}

// Pulse mixes the note for k into the speaker and returns immediately.
func (t *Player) Pulse(k feedback.Kind) {
	n, ok := notes[k]
	if !ok {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return
	}

	s := newSweep(n, sampleRate)
	speaker.Lock()
	t.mixer.Add(volume(s, n.volume*t.volume))
	speaker.Unlock()
}

// Close silences pending notes.
func (t *Player) Close() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return
	}
	t.closed = true
	speaker.Lock()
	t.mixer.Clear()
	speaker.Unlock()
}

// volume wraps s with a linear gain; math.Log2(0) is -Inf so zero is silent.
func volume(s beep.Streamer, gain float64) beep.Streamer {
	if gain <= 0 {
		return &effects.Volume{Streamer: s, Base: 2, Volume: 0, Silent: true}
	}
	return &effects.Volume{Streamer: s, Base: 2, Volume: math.Log2(gain), Silent: false}
}

// sweep generates a sine with a linear pitch glide and a short fade out.
type sweep struct {
	n     note
	rate  beep.SampleRate
	total int
	pos   int
	phase float64
}

// newSweep returns a finite streamer for n.
func newSweep(n note, rate beep.SampleRate) beep.Streamer {
	total := rate.N(n.duration)
	return beep.Take(total, &sweep{n: n, rate: rate, total: total})
}

func (s *sweep) Stream(samples [][2]float64) (int, bool) {
	for i := range samples {
		progress := float64(s.pos) / float64(max(1, s.total))
		freq := s.n.freq + s.n.sweep*progress
		env := math.Min(1, float64(s.pos)/float64(s.rate.N(5*time.Millisecond)+1)) * (1 - progress)

		v := math.Sin(2*math.Pi*s.phase) * env
		samples[i][0] = v
		samples[i][1] = v

		s.phase += freq / float64(s.rate)
		s.phase -= math.Floor(s.phase)
		s.pos++
	}
	return len(samples), true
}

func (s *sweep) Err() error { return nil }
