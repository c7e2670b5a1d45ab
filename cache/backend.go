package cache

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned by Backend.Get when a key is absent. The Cache
// translates it into a plain miss; any other backend error is absorbed the
// same way but logged at warning level.
var ErrNotFound = errors.New("cache: key not found")

// Backend is the boundary to the underlying key/value store. Any store
// offering connect/close, get, set-with-TTL, delete and keys-by-pattern is
// substitutable; implementations must be safe for concurrent use.
type Backend interface {
	// Connect establishes the connection to the store.
	Connect(ctx context.Context) error

	// Close releases the connection.
	Close() error

	// Get returns the raw payload for a key or ErrNotFound.
	Get(ctx context.Context, key string) ([]byte, error)

	// Set stores a payload under a key with the given TTL. A TTL of zero
	// or below must not store anything.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Del removes keys, returning how many existed.
	Del(ctx context.Context, keys ...string) (int, error)

	// Keys lists keys matching a glob pattern.
	Keys(ctx context.Context, pattern string) ([]string, error)
}
