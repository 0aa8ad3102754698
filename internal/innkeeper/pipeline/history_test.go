package pipeline

import (
	"fmt"
	"testing"

	"github.com/dmorandell/innkeeper/internal/innkeeper/consolidate"
)

func TestHistoryBuffer_CapsDepthPerConversation(t *testing.T) {
	h := newHistoryBuffer(4)
	for i := 0; i < 10; i++ {
		h.append("conv", consolidate.Turn{Role: "user", Content: fmt.Sprintf("m%d", i)})
	}

	turns := h.recent("conv")
	if len(turns) != 4 {
		t.Fatalf("expected 4 turns, got %d", len(turns))
	}
	if turns[0].Content != "m6" || turns[3].Content != "m9" {
		t.Fatalf("expected the newest window, got %+v", turns)
	}
}

func TestHistoryBuffer_EvictsLeastRecentConversation(t *testing.T) {
	h := newHistoryBuffer(4)
	for i := 0; i < maxConversations; i++ {
		h.append(fmt.Sprintf("conv-%d", i), consolidate.Turn{Role: "user", Content: "hola"})
	}
	if len(h.turns) != maxConversations {
		t.Fatalf("expected %d conversations, got %d", maxConversations, len(h.turns))
	}

	// Touch the oldest so it survives, then push one over the cap.
	h.append("conv-0", consolidate.Turn{Role: "user", Content: "sigo aquí"})
	h.append("conv-new", consolidate.Turn{Role: "user", Content: "hola"})

	if len(h.turns) != maxConversations {
		t.Fatalf("expected the buffer to stay at %d conversations, got %d", maxConversations, len(h.turns))
	}
	if got := h.recent("conv-0"); len(got) != 2 {
		t.Fatalf("recently touched conversation was evicted: %+v", got)
	}
	if got := h.recent("conv-1"); len(got) != 0 {
		t.Fatalf("least recent conversation should have been evicted, got %+v", got)
	}
	if got := h.recent("conv-new"); len(got) != 1 {
		t.Fatalf("new conversation missing: %+v", got)
	}
}
