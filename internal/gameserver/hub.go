package gameserver

import "sync"

// Hub fans rendered notices out to subscribers.
type Hub struct {
	mu          sync.Mutex
	subscribers map[chan []string]struct{}
}

// NewHub creates a Hub with no subscribers.
func NewHub() *Hub {
	return &Hub{subscribers: make(map[chan []string]struct{})}
}

// Subscribe registers a new channel with the given buffer and returns it
// with a cancel func. Calling cancel is idempotent and closes the channel.
//
// Precondition: buffer >= 0.
func (h *Hub) Subscribe(buffer int) (<-chan []string, func()) {
	ch := make(chan []string, buffer)
	h.mu.Lock()
	h.subscribers[ch] = struct{}{}
	h.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			h.mu.Lock()
			delete(h.subscribers, ch)
			h.mu.Unlock()
			close(ch)
		})
	}
}

// Publish delivers lines to every subscriber. If a subscriber's channel is
// full the notice is dropped for that subscriber (non-blocking).
//
// Postcondition: Returns the number of subscribers that received lines.
func (h *Hub) Publish(lines []string) int {
	if len(lines) == 0 {
		return 0
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	delivered := 0
	for ch := range h.subscribers {
		select {
		case ch <- lines:
			delivered++
		default:
		}
	}
	return delivered
}

// Len returns the number of subscribers.
func (h *Hub) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subscribers)
}
