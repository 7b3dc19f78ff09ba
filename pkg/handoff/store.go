package handoff

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/Sternrassler/comic-catalog/pkg/comic"
	"github.com/redis/go-redis/v9"
)

// DefaultTTL is how long a handoff resolves after it was stored.
const DefaultTTL = 15 * time.Minute

var (
	// ErrNotFound indicates the token is unknown or its entry expired
	ErrNotFound = errors.New("handoff not found")

	// ErrInvalidEntry indicates the stored entry is invalid or corrupted
	ErrInvalidEntry = errors.New("invalid handoff entry")
)

// Store keeps detail handoffs in Redis.
type Store struct {
	redis *redis.Client
	ttl   time.Duration
}

// NewStore creates a new handoff store with Redis backend.
func NewStore(redisClient *redis.Client, ttl time.Duration) *Store {
	if redisClient == nil {
		panic("redis client cannot be nil")
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Store{
		redis: redisClient,
		ttl:   ttl,
	}
}

// Put stores route and returns the token that resolves it.
func (s *Store) Put(ctx context.Context, route comic.DetailRoute) (string, error) {
	if route.Path == "" {
		return "", fmt.Errorf("%w: route path is empty", ErrInvalidEntry)
	}

	now := time.Now()
	entry := Entry{
		Route:     route,
		CreatedAt: now,
		ExpiresAt: now.Add(s.ttl),
	}

	data, err := json.Marshal(entry)
	if err != nil {
		HandoffErrors.WithLabelValues("put").Inc()
		return "", fmt.Errorf("marshal handoff entry: %w", err)
	}

	key := NewKey()
	if err := s.redis.Set(ctx, key.String(), data, s.ttl).Err(); err != nil {
		HandoffErrors.WithLabelValues("put").Inc()
		return "", fmt.Errorf("redis set: %w", err)
	}

	HandoffsStored.Inc()
	return key.Token, nil
}

// Get resolves a token.
// Returns ErrInvalidToken for malformed tokens and ErrNotFound for unknown or
// expired ones.
func (s *Store) Get(ctx context.Context, token string) (*comic.DetailRoute, error) {
	key, err := ParseKey(token)
	if err != nil {
		HandoffMisses.Inc()
		return nil, err
	}

	data, err := s.redis.Get(ctx, key.String()).Bytes()
	if err != nil {
		if err == redis.Nil {
			HandoffMisses.Inc()
			return nil, ErrNotFound
		}
		HandoffErrors.WithLabelValues("get").Inc()
		return nil, fmt.Errorf("redis get: %w", err)
	}

	var entry Entry
	if err := json.Unmarshal(data, &entry); err != nil {
		HandoffErrors.WithLabelValues("get").Inc()
		return nil, fmt.Errorf("%w: %v", ErrInvalidEntry, err)
	}

	if entry.IsExpired() {
		_ = s.Delete(ctx, key.Token)
		HandoffMisses.Inc()
		return nil, ErrNotFound
	}

	HandoffsResolved.Inc()
	return &entry.Route, nil
}

// Delete removes a handoff.
func (s *Store) Delete(ctx context.Context, token string) error {
	key, err := ParseKey(token)
	if err != nil {
		return err
	}

	if err := s.redis.Del(ctx, key.String()).Err(); err != nil {
		HandoffErrors.WithLabelValues("delete").Inc()
		return fmt.Errorf("redis del: %w", err)
	}

	return nil
}

// Ping checks the Redis connection.
func (s *Store) Ping(ctx context.Context) error {
	return s.redis.Ping(ctx).Err()
}
