package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	defaultIdempotencyTTL = 24 * time.Hour

	// pendingMarker holds a reserved key until the submission is persisted.
	pendingMarker = "pending"
	// pendingTTL bounds how long a crashed request can hold a key.
	pendingTTL = 2 * time.Minute
)

// IdempotencyStore maps client Idempotency-Key values to the submission they
// created. Key format: idem:submission:<key>
type IdempotencyStore struct {
	client redis.Cmdable
	ttl    time.Duration
}

// NewIdempotencyStore creates an IdempotencyStore wrapping the given Redis client.
func NewIdempotencyStore(client redis.Cmdable, ttl time.Duration) *IdempotencyStore {
	if ttl <= 0 {
		ttl = defaultIdempotencyTTL
	}
	return &IdempotencyStore{client: client, ttl: ttl}
}

// Reserve claims key with SETNX. When the key is taken it returns the stored
// submission id, or "" while the first request is still pending.
func (s *IdempotencyStore) Reserve(ctx context.Context, key string) (bool, string, error) {
	k := s.key(key)
	// Two attempts: the existing entry may expire between SETNX and GET.
	for range 2 {
		ok, err := s.client.SetNX(ctx, k, pendingMarker, pendingTTL).Result()
		if err != nil {
			return false, "", fmt.Errorf("idempotency reserve: %w", err)
		}
		if ok {
			return true, "", nil
		}

		val, err := s.client.Get(ctx, k).Result()
		if errors.Is(err, redis.Nil) {
			continue
		}
		if err != nil {
			return false, "", fmt.Errorf("idempotency reserve: %w", err)
		}
		if val == pendingMarker {
			return false, "", nil
		}
		return false, val, nil
	}
	return false, "", nil
}

// Complete replaces the pending marker with the submission id for the full TTL.
func (s *IdempotencyStore) Complete(ctx context.Context, key, submissionID string) error {
	if err := s.client.Set(ctx, s.key(key), submissionID, s.ttl).Err(); err != nil {
		return fmt.Errorf("idempotency complete: %w", err)
	}
	return nil
}

// Release deletes the key so a failed request can be retried with it.
func (s *IdempotencyStore) Release(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, s.key(key)).Err(); err != nil {
		return fmt.Errorf("idempotency release: %w", err)
	}
	return nil
}

func (s *IdempotencyStore) key(key string) string {
	return "idem:submission:" + key
}
