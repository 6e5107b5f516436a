package cache

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/zambezimeats/backend/internal/domain/shared"
)

const idempotencyPrefix = "zm:processed:"

// RedisIdempotencyStore records processed webhook events in redis so every
// instance skips replays.
type RedisIdempotencyStore struct {
	client *redis.Client
}

// NewRedisIdempotencyStore wraps the shared redis client.
func NewRedisIdempotencyStore(client *redis.Client) *RedisIdempotencyStore {
	return &RedisIdempotencyStore{client: client}
}

// MarkProcessed uses SETNX so exactly one caller wins for an event id.
func (s *RedisIdempotencyStore) MarkProcessed(ctx context.Context, eventID string, ttl time.Duration) (bool, error) {
	ok, err := s.client.SetNX(ctx, idempotencyPrefix+eventID, "1", ttl).Result()
	if err != nil {
		return false, fmt.Errorf("failed to mark event as processed: %w", err)
	}
	return ok, nil
}

func (s *RedisIdempotencyStore) IsProcessed(ctx context.Context, eventID string) (bool, error) {
	n, err := s.client.Exists(ctx, idempotencyPrefix+eventID).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check processed event: %w", err)
	}
	return n > 0, nil
}

var _ shared.IdempotencyStore = (*RedisIdempotencyStore)(nil)

// InMemoryIdempotencyStore is the single-instance variant. Expired entries are
// dropped lazily on access.
type InMemoryIdempotencyStore struct {
	mu      sync.Mutex
	entries map[string]time.Time
	now     func() time.Time
}

// NewInMemoryIdempotencyStore creates an empty store.
func NewInMemoryIdempotencyStore() *InMemoryIdempotencyStore {
	return &InMemoryIdempotencyStore{entries: make(map[string]time.Time), now: time.Now}
}

func (s *InMemoryIdempotencyStore) MarkProcessed(_ context.Context, eventID string, ttl time.Duration) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	if exp, ok := s.entries[eventID]; ok && now.Before(exp) {
		return false, nil
	}
	s.entries[eventID] = now.Add(ttl)
	if len(s.entries)%256 == 0 {
		s.sweep(now)
	}
	return true, nil
}

func (s *InMemoryIdempotencyStore) IsProcessed(_ context.Context, eventID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	exp, ok := s.entries[eventID]
	return ok && s.now().Before(exp), nil
}

func (s *InMemoryIdempotencyStore) sweep(now time.Time) {
	for id, exp := range s.entries {
		if !now.Before(exp) {
			delete(s.entries, id)
		}
	}
}

// Size returns the number of tracked events.
func (s *InMemoryIdempotencyStore) Size() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

var _ shared.IdempotencyStore = (*InMemoryIdempotencyStore)(nil)
