// Package feedback turns gameplay moments into fire-and-forget physical cues:
// the terminal bell for remote players, short synthesized tones locally.
package feedback

import "sync"

// Kind is a gameplay moment worth a cue.
type Kind int

const (
	Jump Kind = iota
	DoubleJump
	Land
	HardLand
	Bounce
	Collect
	HazardDestroyed
	Death
)

func (k Kind) String() string {
	switch k {
	case Jump:
		return "jump"
	case DoubleJump:
		return "double-jump"
	case Land:
		return "land"
	case HardLand:
		return "hard-land"
	case Bounce:
		return "bounce"
	case Collect:
		return "collect"
	case HazardDestroyed:
		return "hazard-destroyed"
	case Death:
		return "death"
	default:
		return "unknown"
	}
}

// Haptics receives cues. Implementations must not block the caller.
type Haptics interface {
	Pulse(k Kind)
}

// Nop ignores every cue.
type Nop struct{}

func (Nop) Pulse(Kind) {}

// BellWriter is the part of a terminal writer the bell needs.
type BellWriter interface {
	Bell()
}

// Bell rings the terminal bell for strong cues only.
type Bell struct {
	w BellWriter
}

// NewBell creates a bell cue writing to w.
func NewBell(w BellWriter) *Bell {
	return &Bell{w: w}
}

// Pulse rings on the cues strong enough to notice.
func (b *Bell) Pulse(k Kind) {
	switch k {
	case HardLand, Bounce, Death:
		b.w.Bell()
	}
}

// Recorder keeps every cue. Safe for concurrent use.
type Recorder struct {
	mu    sync.Mutex
	kinds []Kind
}

// Pulse appends k.
func (r *Recorder) Pulse(k Kind) {
	r.mu.Lock()
	r.kinds = append(r.kinds, k)
	r.mu.Unlock()
}

// Kinds returns the recorded cues in order.
func (r *Recorder) Kinds() []Kind {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Kind, len(r.kinds))
	copy(out, r.kinds)
	return out
}
