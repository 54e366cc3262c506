package loop

import (
	"sync"
	"time"
)

// Hub tracks live sessions so a server can announce shutdown and wait for
// players to leave. Sessions do not share any game state through it.
type Hub struct {
	mu       sync.RWMutex
	sessions map[int]chan struct{}
	nextID   int
	closing  bool
}

// NewHub creates an empty hub.
func NewHub() *Hub {
	return &Hub{sessions: make(map[int]chan struct{}), nextID: 1}
}

// Register adds a session. The returned channel is closed when the server
// starts shutting down.
func (h *Hub) Register() (id int, shutdown <-chan struct{}) {
	h.mu.Lock()
	defer h.mu.Unlock()
	id = h.nextID
	h.nextID++
	ch := make(chan struct{})
	if h.closing {
		close(ch)
	}
	h.sessions[id] = ch
	return id, ch
}

// Unregister removes a session.
func (h *Hub) Unregister(id int) {
	h.mu.Lock()
	delete(h.sessions, id)
	h.mu.Unlock()
}

// Len returns the number of live sessions.
func (h *Hub) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.sessions)
}

// Shutdown notifies every session and waits for all of them to disconnect,
// or until timeout.
func (h *Hub) Shutdown(timeout time.Duration) {
	h.mu.Lock()
	if !h.closing {
		h.closing = true
		for _, ch := range h.sessions {
			close(ch)
		}
	}
	h.mu.Unlock()

	deadline := time.After(timeout)
	ticker := time.NewTicker(200 * time.Millisecond)
	defer ticker.Stop()

	for {
		if h.Len() == 0 {
			return
		}
		select {
		case <-deadline:
			return
		case <-ticker.C:
		}
	}
}
