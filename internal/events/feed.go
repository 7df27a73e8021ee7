package events

import "sync"

// Feed keeps the most recent events in memory for the notifications endpoint.
type Feed struct {
	mu       sync.Mutex
	capacity int
	items    []Event
}

// NewFeed creates a Feed holding at most capacity events (minimum 1).
func NewFeed(capacity int) *Feed {
	if capacity < 1 {
		capacity = 1
	}
	return &Feed{capacity: capacity}
}

// Attach subscribes the feed to b.
func (f *Feed) Attach(b *Bus) (unsubscribe func()) {
	return b.Subscribe(f.add)
}

func (f *Feed) add(e Event) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.items = append(f.items, e)
	if over := len(f.items) - f.capacity; over > 0 {
		f.items = append(f.items[:0:0], f.items[over:]...)
	}
}

// Recent returns up to limit events, newest first. limit <= 0 returns all.
func (f *Feed) Recent(limit int) []Event {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := len(f.items)
	if limit <= 0 || limit > n {
		limit = n
	}
	out := make([]Event, 0, limit)
	for i := n - 1; i >= n-limit; i-- {
		out = append(out, f.items[i])
	}
	return out
}

// Clear drops all stored events.
func (f *Feed) Clear() {
	f.mu.Lock()
	f.items = nil
	f.mu.Unlock()
}
