package level

// Arena keeps entities in generation order. The oldest entities sit at the
// front and are the first to be retired as the camera climbs.
type Arena[T any] struct {
	items []T
}

// Push appends v at the back.
func (a *Arena[T]) Push(v T) {
	a.items = append(a.items, v)
}

// Items returns the live entities, oldest first. The slice is valid until
// the next mutation.
func (a *Arena[T]) Items() []T {
	return a.items
}

// Len returns the number of live entities.
func (a *Arena[T]) Len() int {
	return len(a.items)
}

// RetireWhile drops entities from the front while retire returns true.
// Returns the number dropped.
func (a *Arena[T]) RetireWhile(retire func(T) bool) int {
	n := 0
	for n < len(a.items) && retire(a.items[n]) {
		n++
	}
	if n == 0 {
		return 0
	}
	var zero T
	for i := 0; i < n; i++ {
		a.items[i] = zero
	}
	// the dead prefix is released when append next grows the array
	a.items = a.items[n:]
	return n
}

// Filter keeps only entities for which keep returns true, preserving order.
func (a *Arena[T]) Filter(keep func(T) bool) int {
	var zero T
	j := 0
	for _, v := range a.items {
		if keep(v) {
			a.items[j] = v
			j++
		}
	}
	removed := len(a.items) - j
	for i := j; i < len(a.items); i++ {
		a.items[i] = zero
	}
	a.items = a.items[:j]
	return removed
}

// Reset drops every entity.
func (a *Arena[T]) Reset() {
	clear(a.items)
	a.items = a.items[:0]
}
