package level

import "testing"

func TestArenaRetireFromFront(t *testing.T) {
	var a Arena[int]
	for _, v := range []int{5, 4, 2, 9} {
		a.Push(v)
	}

	n := a.RetireWhile(func(v int) bool { return v > 3 })
	if n != 2 {
		t.Fatalf("retired %d, want 2 (stops at first keeper)", n)
	}
	if got := a.Items(); len(got) != 2 || got[0] != 2 || got[1] != 9 {
		t.Fatalf("items = %v", got)
	}
}

func TestArenaFilter(t *testing.T) {
	var a Arena[int]
	for i := 0; i < 6; i++ {
		a.Push(i)
	}
	removed := a.Filter(func(v int) bool { return v%2 == 0 })
	if removed != 3 {
		t.Fatalf("removed %d, want 3", removed)
	}
	got := a.Items()
	for i, want := range []int{0, 2, 4} {
		if got[i] != want {
			t.Fatalf("items = %v", got)
		}
	}

	a.Reset()
	if a.Len() != 0 {
		t.Fatal("reset must empty the arena")
	}
}
