// Package redisstore implements repository.EphemeralStore on Redis.
package redisstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/and161185/bliss-auth/internal/errs"
	"github.com/and161185/bliss-auth/internal/repository"
)

// DefaultPrefix namespaces transient registration records.
const DefaultPrefix = "bliss:transient:"

// TransientStore keeps TTL-bound values under a key prefix. Expiry is
// enforced by Redis.
type TransientStore struct {
	client *redis.Client
	prefix string
}

var _ repository.EphemeralStore = (*TransientStore)(nil)

// NewTransientStore creates a Redis-backed ephemeral store.
func NewTransientStore(client *redis.Client, prefix string) *TransientStore {
	if prefix == "" {
		prefix = DefaultPrefix
	}
	return &TransientStore{client: client, prefix: prefix}
}

func (s *TransientStore) key(k string) string { return s.prefix + k }

// Get returns (nil, nil) when no live value exists.
func (s *TransientStore) Get(ctx context.Context, key string) ([]byte, error) {
	b, err := s.client.Get(ctx, s.key(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: redis get: %w", errs.ErrStoreUnavailable, err)
	}
	return b, nil
}

// SetWithTTL overwrites the value under key.
func (s *TransientStore) SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if err := s.client.Set(ctx, s.key(key), value, ttl).Err(); err != nil {
		return fmt.Errorf("%w: redis set: %w", errs.ErrStoreUnavailable, err)
	}
	return nil
}

// CreateIfAbsent issues SET NX EX so that exactly one concurrent writer wins.
func (s *TransientStore) CreateIfAbsent(ctx context.Context, key string, value []byte, ttl time.Duration) (bool, error) {
	ok, err := s.client.SetNX(ctx, s.key(key), value, ttl).Result()
	if err != nil {
		return false, fmt.Errorf("%w: redis setnx: %w", errs.ErrStoreUnavailable, err)
	}
	return ok, nil
}
