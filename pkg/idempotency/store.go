// Package idempotency deduplicates stream records on the consumer side.
// Delivery is at-least-once; consumers check Seen before handling a record
// and Mark it only once it has been handled, so a failed handling attempt
// stays re-deliverable.
package idempotency

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Client is the slice of the Redis client the store needs.
type Client interface {
	Exists(ctx context.Context, keys ...string) *redis.IntCmd
	SetNX(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.BoolCmd
}

type Store struct {
	rdb Client
	ttl time.Duration
}

func NewStore(rdb Client, ttl time.Duration) *Store {
	return &Store{rdb: rdb, ttl: ttl}
}

// Key derives the dedup key for one stream record.
func (s *Store) Key(stream, recordID string) string {
	return fmt.Sprintf("seen:%s:%s", stream, recordID)
}

// Seen reports whether the key has been marked.
func (s *Store) Seen(ctx context.Context, key string) (bool, error) {
	n, err := s.rdb.Exists(ctx, key).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// Mark records the key so later Seen calls suppress the record.
func (s *Store) Mark(ctx context.Context, key string) error {
	return s.rdb.SetNX(ctx, key, "1", s.ttl).Err()
}
