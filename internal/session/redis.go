package session

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/redis/go-redis/v9"
)

const keyPrefix = "session:order:"

var _ Store = (*RedisStore)(nil)

// RedisStore keeps session bindings in Redis with a sliding TTL: every
// successful Lookup pushes the expiry forward, so an active shopper keeps
// their cart.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisStore creates a RedisStore. ttl must be positive.
func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, ttl: ttl}
}

// Lookup resolves token to its order id and refreshes the TTL.
func (s *RedisStore) Lookup(ctx context.Context, token string) (string, error) {
	orderID, err := s.client.GetEx(ctx, keyPrefix+token, s.ttl).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", ErrNoBinding
		}
		return "", errors.Wrap(err, "lookup session")
	}
	return orderID, nil
}

// Bind associates token with orderID for the store's TTL.
func (s *RedisStore) Bind(ctx context.Context, token, orderID string) error {
	if err := s.client.Set(ctx, keyPrefix+token, orderID, s.ttl).Err(); err != nil {
		return errors.Wrap(err, "bind session")
	}
	return nil
}

// Clear removes the binding for token.
func (s *RedisStore) Clear(ctx context.Context, token string) error {
	if err := s.client.Del(ctx, keyPrefix+token).Err(); err != nil {
		return errors.Wrap(err, "clear session")
	}
	return nil
}
