package state

import (
	"context"
	"sync"
	"time"

	"github.com/dmorandell/innkeeper/internal/innkeeper/domain"
)

// MemoryStore is an in-process Store used in tests and single-node dev runs.
type MemoryStore struct {
	mu     sync.RWMutex
	states map[string]*domain.ConversationState
}

// NewMemory creates an empty in-memory Store.
func NewMemory() *MemoryStore {
	return &MemoryStore{states: make(map[string]*domain.ConversationState)}
}

// Get implements Store.
func (s *MemoryStore) Get(_ context.Context, tenantID, conversationID string) (*domain.ConversationState, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	st, ok := s.states[domain.Key(tenantID, conversationID)]
	if !ok {
		return nil, false, nil
	}
	cp := *st
	return &cp, true, nil
}

// Upsert implements Store.
func (s *MemoryStore) Upsert(_ context.Context, tenantID, conversationID string, patch domain.StatePatch) (*domain.ConversationState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := domain.Key(tenantID, conversationID)
	next, err := applyPatch(s.states[key], tenantID, conversationID, patch, time.Now().UTC())
	if err != nil {
		return nil, err
	}
	s.states[key] = next

	cp := *next
	return &cp, nil
}

// Close implements Store.
func (s *MemoryStore) Close() error {
	return nil
}
