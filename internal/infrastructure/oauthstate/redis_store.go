package oauthstate

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"seoforge/internal/ports"
)

const noncePrefix = "oauth:nonce:"

// RedisStore holds one-shot OAuth nonces in Redis. Each nonce lives for the
// duration of the handshake and is deleted on first use, so a replayed
// callback can never pass state verification.
type RedisStore struct {
	client *redis.Client
	logger zerolog.Logger
}

// NewRedisStore creates a Redis-backed nonce store.
func NewRedisStore(client *redis.Client, logger zerolog.Logger) ports.StateStore {
	return &RedisStore{client: client, logger: logger}
}

// Save stores a nonce with the given TTL.
func (s *RedisStore) Save(ctx context.Context, nonce string, ttl time.Duration) error {
	if err := s.client.Set(ctx, noncePrefix+nonce, "1", ttl).Err(); err != nil {
		return fmt.Errorf("failed to save oauth nonce: %w", err)
	}
	return nil
}

// Consume deletes the nonce and reports whether it existed. GETDEL makes the
// check-and-delete a single round trip, so two concurrent callbacks with the
// same nonce cannot both succeed.
func (s *RedisStore) Consume(ctx context.Context, nonce string) (bool, error) {
	err := s.client.GetDel(ctx, noncePrefix+nonce).Err()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to consume oauth nonce: %w", err)
	}
	return true, nil
}
