// Package state persists per-conversation mutable state with partial-field
// upsert semantics. Three drivers are provided: sqlite (durable, default),
// redis (shared between replicas, TTL-based expiry), and memory (tests, dev).
//
// All drivers implement the same contract: Get returns the state or absent,
// Upsert applies a tri-state StatePatch (absent field untouched, cleared field
// removed, set field written). Nested reservation slots merge per-subfield;
// whole-object fields replace atomically. Concurrent upserts for the same
// conversation are last-write-wins at the field level; callers that need a
// stronger guarantee must hold the per-conversation lock (see Locker) around
// the whole read-decide-write turn.
package state

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/dmorandell/innkeeper/internal/innkeeper/domain"
)

// ErrInvalidPatch is returned by Upsert when applying the patch would leave
// the slot set in violation of its invariants (e.g. checkIn >= checkOut).
var ErrInvalidPatch = errors.New("state: patch violates slot invariants")

// Store is the conversation-state persistence contract.
type Store interface {
	// Get retrieves the state for a conversation. The second return value is
	// false when no state exists yet.
	Get(ctx context.Context, tenantID, conversationID string) (*domain.ConversationState, bool, error)

	// Upsert applies patch to the stored state, creating it when absent, and
	// returns the resulting state.
	Upsert(ctx context.Context, tenantID, conversationID string, patch domain.StatePatch) (*domain.ConversationState, error)

	// Close releases the driver's resources.
	Close() error
}

// Driver names a state-store backend.
type Driver string

const (
	DriverSQLite Driver = "sqlite"
	DriverRedis  Driver = "redis"
	DriverMemory Driver = "memory"
)

// Config selects and configures a state-store driver.
type Config struct {
	Driver Driver
	// Path is the sqlite database file (sqlite driver only).
	Path string
	// RedisClient is the pre-constructed client (redis driver only).
	RedisClient *redis.Client
	// TTL is the conversation expiry for the redis driver; zero means the
	// driver default (30 days).
	TTL time.Duration
}

// New constructs a Store for the configured driver.
func New(cfg Config) (Store, error) {
	switch cfg.Driver {
	case DriverSQLite, "":
		if cfg.Path == "" {
			return nil, fmt.Errorf("state: sqlite driver requires a database path")
		}
		return NewSQLite(cfg.Path)
	case DriverRedis:
		if cfg.RedisClient == nil {
			return nil, fmt.Errorf("state: redis driver requires a client")
		}
		return NewRedis(cfg.RedisClient, cfg.TTL), nil
	case DriverMemory:
		return NewMemory(), nil
	default:
		return nil, fmt.Errorf("state: unknown driver %q", cfg.Driver)
	}
}

// applyPatch resolves a patch against prior state (nil when absent) and
// validates the result. Shared by all drivers so the merge semantics cannot
// drift between backends.
func applyPatch(prior *domain.ConversationState, tenantID, conversationID string, patch domain.StatePatch, now time.Time) (*domain.ConversationState, error) {
	next := &domain.ConversationState{
		TenantID:       tenantID,
		ConversationID: conversationID,
	}
	if prior != nil {
		*next = *prior
	}
	patch.Apply(next, now)
	if err := next.Slots.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPatch, err)
	}
	return next, nil
}
