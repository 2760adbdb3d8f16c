// internal/domain/cart/redis_store.go
package cart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// SessionStore persists a shopper's cart between requests. Implementations
// only serialize; all cart rules live in Service.
type SessionStore interface {
	Load(ctx context.Context, sessionID string) (*Cart, error)
	Save(ctx context.Context, sessionID string, c *Cart) error
	Delete(ctx context.Context, sessionID string) error
}

// RedisStore keeps carts as JSON under cart:session:<id> with a sliding TTL
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisStore creates a redis backed session store
func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, ttl: ttl}
}

// SessionKey returns the redis key holding a session's cart
func SessionKey(sessionID string) string {
	return fmt.Sprintf("cart:session:%s", sessionID)
}

// Load returns the stored cart, or an empty cart when none exists
func (s *RedisStore) Load(ctx context.Context, sessionID string) (*Cart, error) {
	data, err := s.client.Get(ctx, SessionKey(sessionID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return New(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load cart: %w", err)
	}

	c := New()
	if err := json.Unmarshal(data, c); err != nil {
		return nil, fmt.Errorf("failed to decode cart: %w", err)
	}
	return c, nil
}

// Save writes the cart and refreshes its TTL. An empty cart deletes the key.
func (s *RedisStore) Save(ctx context.Context, sessionID string, c *Cart) error {
	if c.IsEmpty() {
		return s.Delete(ctx, sessionID)
	}

	data, err := json.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to encode cart: %w", err)
	}
	if err := s.client.Set(ctx, SessionKey(sessionID), data, s.ttl).Err(); err != nil {
		return fmt.Errorf("failed to save cart: %w", err)
	}
	return nil
}

// Delete removes the session's cart
func (s *RedisStore) Delete(ctx context.Context, sessionID string) error {
	if err := s.client.Del(ctx, SessionKey(sessionID)).Err(); err != nil {
		return fmt.Errorf("failed to delete cart: %w", err)
	}
	return nil
}
