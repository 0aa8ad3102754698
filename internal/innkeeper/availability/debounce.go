package availability

import (
	"sync"
	"time"
)

const defaultHandoffWindow = 10 * time.Minute

// HandoffDebouncer suppresses repeated "a human will follow up" announcements
// when availability checks fail back to back in one conversation. The apology
// itself is always shown; only the handoff line is debounced.
type HandoffDebouncer struct {
	mu     sync.Mutex
	window time.Duration
	last   map[string]time.Time
}

// NewHandoffDebouncer creates a debouncer. A zero window uses ten minutes.
func NewHandoffDebouncer(window time.Duration) *HandoffDebouncer {
	if window <= 0 {
		window = defaultHandoffWindow
	}
	return &HandoffDebouncer{
		window: window,
		last:   make(map[string]time.Time),
	}
}

// ShouldAnnounce reports whether the handoff line should be included for this
// conversation key at the given instant, and records the announcement when it
// should.
func (d *HandoffDebouncer) ShouldAnnounce(key string, now time.Time) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	if prev, ok := d.last[key]; ok && now.Sub(prev) < d.window {
		return false
	}
	d.last[key] = now
	return true
}
