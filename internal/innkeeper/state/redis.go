package state

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/dmorandell/innkeeper/internal/innkeeper/domain"
)

const (
	// redisKeyPrefix namespaces conversation keys in a shared Redis.
	redisKeyPrefix = "conv:"
	// defaultRedisTTL keeps idle conversations around long enough for a guest
	// to come back to an open quote.
	defaultRedisTTL = 30 * 24 * time.Hour
)

// RedisStore keeps conversation state as JSON values in Redis. Intended for
// multi-replica deployments where the sqlite file cannot be shared; expiry is
// handled by Redis TTLs, refreshed on every read and write.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedis creates a Redis-backed Store. Pass ttl 0 to use the default.
func NewRedis(client *redis.Client, ttl time.Duration) *RedisStore {
	if ttl <= 0 {
		ttl = defaultRedisTTL
	}
	return &RedisStore{client: client, ttl: ttl}
}

func (s *RedisStore) key(tenantID, conversationID string) string {
	return redisKeyPrefix + domain.Key(tenantID, conversationID)
}

// Get implements Store. Refreshes the key's TTL on every hit.
func (s *RedisStore) Get(ctx context.Context, tenantID, conversationID string) (*domain.ConversationState, bool, error) {
	key := s.key(tenantID, conversationID)
	val, err := s.client.Get(ctx, key).Result()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to get conversation state: %w", err)
	}

	var st domain.ConversationState
	if err := json.Unmarshal([]byte(val), &st); err != nil {
		return nil, false, fmt.Errorf("failed to decode conversation state: %w", err)
	}

	// Refresh TTL on read; an active conversation should not expire mid-flow.
	if err := s.client.Expire(ctx, key, s.ttl).Err(); err != nil {
		_ = err // non-fatal
	}

	return &st, true, nil
}

// Upsert implements Store. Redis has no native partial update for JSON
// values, so this is an explicit read-merge-write; concurrent writers for the
// same conversation are last-write-wins, which is why callers hold the
// per-conversation lock around the turn.
func (s *RedisStore) Upsert(ctx context.Context, tenantID, conversationID string, patch domain.StatePatch) (*domain.ConversationState, error) {
	prior, _, err := s.Get(ctx, tenantID, conversationID)
	if err != nil {
		return nil, err
	}

	next, err := applyPatch(prior, tenantID, conversationID, patch, time.Now().UTC())
	if err != nil {
		return nil, err
	}

	val, err := json.Marshal(next)
	if err != nil {
		return nil, fmt.Errorf("failed to encode conversation state: %w", err)
	}
	if err := s.client.Set(ctx, s.key(tenantID, conversationID), val, s.ttl).Err(); err != nil {
		return nil, fmt.Errorf("failed to write conversation state: %w", err)
	}

	return next, nil
}

// Close implements Store.
func (s *RedisStore) Close() error {
	return s.client.Close()
}
