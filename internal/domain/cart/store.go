package cart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/rently/rently-api/internal/pkg/marketplace"
)

// LocalStore persists the offline cart: the cart a visitor builds before
// logging in. The reconciliation service is its only reader and writer.
type LocalStore interface {
	Get(ctx context.Context, owner uuid.UUID) (*marketplace.Cart, error)
	Set(ctx context.Context, owner uuid.UUID, cart marketplace.Cart) error
	Clear(ctx context.Context, owner uuid.UUID) error
}

const offlineCartKeyPrefix = "offline_cart:"

// RedisStore is the Redis-backed LocalStore. One serialized cart per owner
// key, expiring after the configured TTL of inactivity.
type RedisStore struct {
	redis *redis.Client
	ttl   time.Duration
}

// NewRedisStore creates a Redis-backed offline cart store
func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{redis: client, ttl: ttl}
}

func offlineCartKey(owner uuid.UUID) string {
	return offlineCartKeyPrefix + owner.String()
}

// Get returns the stored cart, or nil when the owner has none.
func (s *RedisStore) Get(ctx context.Context, owner uuid.UUID) (*marketplace.Cart, error) {
	data, err := s.redis.Get(ctx, offlineCartKey(owner)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("offline cart read: %w", err)
	}

	var cart marketplace.Cart
	if err := json.Unmarshal(data, &cart); err != nil {
		return nil, fmt.Errorf("offline cart decode: %w", err)
	}
	return &cart, nil
}

// Set persists the cart and refreshes its TTL.
func (s *RedisStore) Set(ctx context.Context, owner uuid.UUID, cart marketplace.Cart) error {
	data, err := json.Marshal(cart)
	if err != nil {
		return fmt.Errorf("offline cart encode: %w", err)
	}
	if err := s.redis.Set(ctx, offlineCartKey(owner), data, s.ttl).Err(); err != nil {
		return fmt.Errorf("offline cart write: %w", err)
	}
	return nil
}

// Clear removes the owner's stored cart.
func (s *RedisStore) Clear(ctx context.Context, owner uuid.UUID) error {
	if err := s.redis.Del(ctx, offlineCartKey(owner)).Err(); err != nil {
		return fmt.Errorf("offline cart clear: %w", err)
	}
	return nil
}
