package draw

import (
	"errors"
	"math/rand"
	"testing"
)

func TestShakeMaxMerge(t *testing.T) {
	s := NewShake(rand.New(rand.NewSource(1)))
	s.Trigger(0.5, 10)
	s.Update(0.3)
	s.Trigger(0.2, 4)

	if s.duration != 0.5 {
		t.Errorf("duration = %v, want 0.5", s.duration)
	}
	if s.magnitude != 10 {
		t.Errorf("magnitude = %v, want 10", s.magnitude)
	}
	if s.elapsed != 0 {
		t.Errorf("elapsed = %v, want reset to 0", s.elapsed)
	}
}

func TestShakeExpires(t *testing.T) {
	s := NewShake(rand.New(rand.NewSource(1)))
	s.Trigger(0.1, 8)
	s.Update(0.05)
	if !s.Active() {
		t.Fatal("expected shake to still be active")
	}
	s.Update(0.05)
	if s.Active() {
		t.Fatal("expected shake to expire at its duration")
	}
	if dx, dy := s.Offset(); dx != 0 || dy != 0 {
		t.Fatalf("offset after expiry = (%v,%v), want zero", dx, dy)
	}
}

func TestShakeOffsetBoundedByDecay(t *testing.T) {
	s := NewShake(rand.New(rand.NewSource(7)))
	s.Trigger(1, 10)
	s.Update(0.75)
	bound := 10 * 0.25
	for i := 0; i < 200; i++ {
		dx, dy := s.Offset()
		if dx < -bound || dx > bound || dy < -bound || dy > bound {
			t.Fatalf("offset (%v,%v) exceeds %v", dx, dy, bound)
		}
	}
}

func TestShakeWrapRestoresTranslation(t *testing.T) {
	c := NewScaledCanvas(10, 10, 100, 100)
	s := NewShake(rand.New(rand.NewSource(3)))
	s.Trigger(1, 20)

	var inside bool
	err := s.Wrap(c, func() error {
		x, y := c.Origin()
		inside = x != 0 || y != 0
		return errors.New("draw failed")
	})
	if err == nil {
		t.Fatal("expected the inner error to propagate")
	}
	if !inside {
		t.Fatal("expected a translation inside the scope")
	}
	if x, y := c.Origin(); x != 0 || y != 0 {
		t.Fatalf("origin after Wrap = (%v,%v), want restored", x, y)
	}
}

func TestShakeWrapIdleDoesNotTranslate(t *testing.T) {
	c := NewScaledCanvas(10, 10, 100, 100)
	s := NewShake(rand.New(rand.NewSource(3)))
	_ = s.Wrap(c, func() error {
		if x, y := c.Origin(); x != 0 || y != 0 {
			t.Fatalf("idle shake translated to (%v,%v)", x, y)
		}
		return nil
	})
}
