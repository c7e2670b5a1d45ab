package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisBackend adapts a Redis server to the Backend interface. Redis is
// externally synchronized, so concurrent operations on different keys need
// no in-process locking beyond what the client provides.
type RedisBackend struct {
	client *redis.Client
}

// NewRedisBackend creates a backend from a Redis URL
// (e.g. redis://localhost:6379/1).
func NewRedisBackend(url string) (*RedisBackend, error) {
	opt, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	return &RedisBackend{client: redis.NewClient(opt)}, nil
}

// NewRedisBackendFromClient wraps an existing client.
func NewRedisBackendFromClient(client *redis.Client) *RedisBackend {
	return &RedisBackend{client: client}
}

// Connect verifies the server is reachable.
func (b *RedisBackend) Connect(ctx context.Context) error {
	if err := b.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping: %w", err)
	}
	return nil
}

// Close releases the client connection.
func (b *RedisBackend) Close() error {
	return b.client.Close()
}

// Get returns the raw payload for a key or ErrNotFound.
func (b *RedisBackend) Get(ctx context.Context, key string) ([]byte, error) {
	data, err := b.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return data, nil
}

// Set stores a payload with a TTL. Non-positive TTLs store nothing; Redis
// expires the rest server-side.
func (b *RedisBackend) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	return b.client.Set(ctx, key, value, ttl).Err()
}

// Del removes keys and reports how many existed.
func (b *RedisBackend) Del(ctx context.Context, keys ...string) (int, error) {
	if len(keys) == 0 {
		return 0, nil
	}
	n, err := b.client.Del(ctx, keys...).Result()
	return int(n), err
}

// Keys lists keys matching a glob pattern.
func (b *RedisBackend) Keys(ctx context.Context, pattern string) ([]string, error) {
	return b.client.Keys(ctx, pattern).Result()
}
