package loop

import "time"

type task struct {
	at time.Duration
	fn func()
}

// Tasks runs callbacks once the session clock passes their deadline. It is
// driven from the tick, so callbacks never race with the simulation.
type Tasks struct {
	now     time.Duration
	pending []task
}

// After schedules fn to run delay after the current clock.
func (t *Tasks) After(delay time.Duration, fn func()) {
	t.pending = append(t.pending, task{at: t.now + delay, fn: fn})
}

// Advance moves the clock forward by dt and runs every task that is due,
// in scheduling order. Tasks scheduled by a callback wait for the next call.
func (t *Tasks) Advance(dt time.Duration) {
	t.now += dt
	due := t.pending
	t.pending = nil
	for _, tk := range due {
		if tk.at <= t.now {
			tk.fn()
		} else {
			t.pending = append(t.pending, tk)
		}
	}
}

// Cancel drops every pending task.
func (t *Tasks) Cancel() {
	t.pending = nil
}

// Len returns the number of pending tasks.
func (t *Tasks) Len() int {
	return len(t.pending)
}
