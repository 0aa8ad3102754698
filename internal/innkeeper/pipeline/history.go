package pipeline

import (
	"sync"

	"github.com/dmorandell/innkeeper/internal/innkeeper/consolidate"
)

// maxConversations bounds how many conversations keep history in memory at
// once. When exceeded, the least recently touched conversation is dropped.
const maxConversations = 1024

// historyBuffer keeps the last few turns of each conversation in memory.
// Only the date consolidator and the planner prompt need history, and both
// tolerate losing it on restart, so it is deliberately not persisted.
type historyBuffer struct {
	mu    sync.Mutex
	depth int
	seq   uint64
	turns map[string]*conversationHistory
}

type conversationHistory struct {
	turns []consolidate.Turn
	// touched orders conversations for eviction; higher is more recent.
	touched uint64
}

func newHistoryBuffer(depth int) *historyBuffer {
	if depth <= 0 {
		depth = 8
	}
	return &historyBuffer{
		depth: depth,
		turns: make(map[string]*conversationHistory),
	}
}

// recent returns the stored turns oldest first.
func (h *historyBuffer) recent(key string) []consolidate.Turn {
	h.mu.Lock()
	defer h.mu.Unlock()
	entry := h.turns[key]
	if entry == nil {
		return nil
	}
	out := make([]consolidate.Turn, len(entry.turns))
	copy(out, entry.turns)
	return out
}

func (h *historyBuffer) append(key string, turns ...consolidate.Turn) {
	h.mu.Lock()
	defer h.mu.Unlock()

	entry := h.turns[key]
	if entry == nil {
		if len(h.turns) >= maxConversations {
			h.evictOldestLocked()
		}
		entry = &conversationHistory{}
		h.turns[key] = entry
	}

	buf := append(entry.turns, turns...)
	if len(buf) > h.depth {
		buf = buf[len(buf)-h.depth:]
	}
	entry.turns = buf

	h.seq++
	entry.touched = h.seq
}

func (h *historyBuffer) evictOldestLocked() {
	var (
		oldestKey string
		oldest    uint64
		first     = true
	)
	for key, entry := range h.turns {
		if first || entry.touched < oldest {
			oldestKey, oldest, first = key, entry.touched, false
		}
	}
	if oldestKey != "" {
		delete(h.turns, oldestKey)
	}
}
