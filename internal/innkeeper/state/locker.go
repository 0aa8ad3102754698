package state

import "sync"

// Locker serializes pipeline executions per conversation. State merges are
// last-write-wins at the field level, so two concurrent turns on the same
// conversation could silently drop each other's slot updates; holding the
// conversation's lock for the whole turn closes that window. Turns for
// different conversations run fully in parallel.
type Locker struct {
	mu    sync.Mutex
	locks map[string]*lockEntry
}

type lockEntry struct {
	mu   sync.Mutex
	refs int
}

// NewLocker creates an empty Locker.
func NewLocker() *Locker {
	return &Locker{locks: make(map[string]*lockEntry)}
}

// Lock acquires the lock for key, blocking while another turn for the same
// key is in flight. The returned func releases the lock; entries are removed
// from the table once the last waiter is gone so the map does not grow with
// conversation count.
func (l *Locker) Lock(key string) (unlock func()) {
	l.mu.Lock()
	e, ok := l.locks[key]
	if !ok {
		e = &lockEntry{}
		l.locks[key] = e
	}
	e.refs++
	l.mu.Unlock()

	e.mu.Lock()

	return func() {
		e.mu.Unlock()
		l.mu.Lock()
		e.refs--
		if e.refs == 0 {
			delete(l.locks, key)
		}
		l.mu.Unlock()
	}
}
