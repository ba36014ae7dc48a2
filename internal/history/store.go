package history

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/redis/go-redis/v9"

	"github.com/pkordes/riderent/backend/internal/domain"
)

// MemoryStore keeps histories in process memory. Used when no external
// storage is configured and in tests.
type MemoryStore struct {
	mu      sync.Mutex
	entries map[string][]domain.RecentLocation
}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{entries: make(map[string][]domain.RecentLocation)}
}

// Load returns a copy of the history saved under key.
func (s *MemoryStore) Load(_ context.Context, key string) ([]domain.RecentLocation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]domain.RecentLocation{}, s.entries[key]...), nil
}

// Save replaces the history under key with a copy of entries.
func (s *MemoryStore) Save(_ context.Context, key string, entries []domain.RecentLocation) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[key] = append([]domain.RecentLocation(nil), entries...)
	return nil
}

// RedisStore keeps each history as one JSON string value, the same shape the
// web client used to write to localStorage.
type RedisStore struct {
	client redis.Cmdable
}

// NewRedisStore constructs a RedisStore on top of any go-redis client
// (*redis.Client, cluster client, or a pipeline in tests).
func NewRedisStore(client redis.Cmdable) *RedisStore {
	return &RedisStore{client: client}
}

// Load reads and decodes the history under key.
func (s *RedisStore) Load(ctx context.Context, key string) ([]domain.RecentLocation, error) {
	raw, err := s.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return []domain.RecentLocation{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("history.RedisStore.Load: %w", err)
	}

	var entries []domain.RecentLocation
	if err := json.Unmarshal(raw, &entries); err != nil {
		return nil, fmt.Errorf("history.RedisStore.Load: decode: %w", err)
	}
	return entries, nil
}

// Save encodes entries and writes them under key with no expiry.
func (s *RedisStore) Save(ctx context.Context, key string, entries []domain.RecentLocation) error {
	raw, err := json.Marshal(entries)
	if err != nil {
		return fmt.Errorf("history.RedisStore.Save: encode: %w", err)
	}
	if err := s.client.Set(ctx, key, raw, 0).Err(); err != nil {
		return fmt.Errorf("history.RedisStore.Save: %w", err)
	}
	return nil
}
