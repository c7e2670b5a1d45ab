package cache

import (
	"context"
	"path"
	"sync"
	"time"
)

// MemoryBackend is a TTL-aware in-memory Backend, suitable for development
// and tests. Expiry is checked lazily on access.
type MemoryBackend struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
	now     func() time.Time
}

type memoryEntry struct {
	value     []byte
	expiresAt time.Time
}

// NewMemoryBackend creates an empty in-memory backend.
func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{entries: map[string]memoryEntry{}, now: time.Now}
}

// Connect is a no-op for the in-memory backend.
func (b *MemoryBackend) Connect(context.Context) error { return nil }

// Close drops all entries.
func (b *MemoryBackend) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.entries = map[string]memoryEntry{}
	return nil
}

// Get returns the raw payload for a key or ErrNotFound.
func (b *MemoryBackend) Get(_ context.Context, key string) ([]byte, error) {
	b.mu.RLock()
	entry, ok := b.entries[key]
	b.mu.RUnlock()

	if !ok || b.now().After(entry.expiresAt) {
		return nil, ErrNotFound
	}
	cp := make([]byte, len(entry.value))
	copy(cp, entry.value)
	return cp, nil
}

// Set stores a payload with a TTL. Non-positive TTLs store nothing.
func (b *MemoryBackend) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	cp := make([]byte, len(value))
	copy(cp, value)

	b.mu.Lock()
	defer b.mu.Unlock()
	b.entries[key] = memoryEntry{value: cp, expiresAt: b.now().Add(ttl)}
	return nil
}

// Del removes keys and reports how many existed.
func (b *MemoryBackend) Del(_ context.Context, keys ...string) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	deleted := 0
	for _, key := range keys {
		if _, ok := b.entries[key]; ok {
			delete(b.entries, key)
			deleted++
		}
	}
	return deleted, nil
}

// Keys lists unexpired keys matching a glob pattern.
func (b *MemoryBackend) Keys(_ context.Context, pattern string) ([]string, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	var keys []string
	now := b.now()
	for key, entry := range b.entries {
		if now.After(entry.expiresAt) {
			continue
		}
		if ok, _ := path.Match(pattern, key); ok {
			keys = append(keys, key)
		}
	}
	return keys, nil
}
