package cache

import (
	"bytes"
	"compress/gzip"
	"context"
	"encoding/gob"
	"encoding/json"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/entigraph/enrichmesh/logging"
)

// Format markers prefixed to every encoded payload so reads can round-trip
// the value back to the family it was written from.
const (
	formatJSON byte = 'J'
	formatGob  byte = 'G'
)

// Stats aggregates cache traffic counters.
type Stats struct {
	Hits    uint64  `json:"hits"`
	Misses  uint64  `json:"misses"`
	HitRate float64 `json:"hit_rate"`
	Sets    uint64  `json:"sets"`
	Deletes uint64  `json:"deletes"`
}

// Options configures a Cache instance.
type Options struct {
	// Policies maps categories to their TTL/compression policy. Categories
	// not listed fall back to DefaultPolicy.
	Policies map[string]Policy

	// Prefixes maps categories to their key prefix. Categories not listed
	// get "<category>:".
	Prefixes map[string]string

	// Logger receives warn-level entries for absorbed backend errors.
	Logger logging.Logger
}

// Cache memoizes values in a Backend under per-category policies.
// All operations are best-effort; see the package documentation.
type Cache struct {
	backend  Backend
	policies map[string]Policy
	prefixes map[string]string
	logger   logging.Logger

	mu      sync.Mutex
	hits    uint64
	misses  uint64
	sets    uint64
	deletes uint64
}

// New creates a Cache over a backend with optional overrides. Defaults are
// the shipped category policies and prefixes and a no-op logger.
func New(backend Backend, optFns ...func(o *Options)) *Cache {
	opts := Options{
		Policies: DefaultPolicies(),
		Prefixes: defaultPrefixes(),
		Logger:   logging.NoOpLogger{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Cache{
		backend:  backend,
		policies: opts.Policies,
		prefixes: opts.Prefixes,
		logger:   opts.Logger,
	}
}

// Connect establishes the backend connection.
func (c *Cache) Connect(ctx context.Context) error { return c.backend.Connect(ctx) }

// Close releases the backend connection.
func (c *Cache) Close() error { return c.backend.Close() }

func (c *Cache) policyFor(category string) Policy {
	if p, ok := c.policies[category]; ok {
		return p
	}
	return DefaultPolicy()
}

func (c *Cache) buildKey(category, key string) string {
	if prefix, ok := c.prefixes[category]; ok {
		return prefix + key
	}
	return category + ":" + key
}

// Get retrieves a value. A miss, an expired entry and a backend error all
// yield (nil, false); the cache never propagates a backend failure.
func (c *Cache) Get(ctx context.Context, category, key string) (interface{}, bool) {
	cacheKey := c.buildKey(category, key)

	data, err := c.backend.Get(ctx, cacheKey)
	if err != nil {
		if err != ErrNotFound {
			c.logger.Warn("cache get failed", "key", cacheKey, "error", err)
		}
		c.countMiss()
		return nil, false
	}

	value, err := decode(decompress(data))
	if err != nil {
		c.logger.Warn("cache payload undecodable", "key", cacheKey, "error", err)
		c.countMiss()
		return nil, false
	}

	c.countHit()
	return value, true
}

// Set stores a value, returning whether it was written. The TTL resolves
// from the explicit argument, or from the category policy when DefaultTTL
// is passed. An explicit TTL of zero expires the entry immediately: any
// existing entry is deleted and nothing is stored.
func (c *Cache) Set(ctx context.Context, category, key string, value interface{}, ttl time.Duration) bool {
	cacheKey := c.buildKey(category, key)
	policy := c.policyFor(category)

	if ttl == DefaultTTL {
		ttl = policy.TTL
	}
	if ttl == 0 {
		if _, err := c.backend.Del(ctx, cacheKey); err != nil {
			c.logger.Warn("cache expire-on-set failed", "key", cacheKey, "error", err)
			return false
		}
		return true
	}
	if ttl < 0 {
		c.logger.Warn("cache set with negative ttl ignored", "key", cacheKey, "ttl", ttl)
		return false
	}

	data, err := encode(value)
	if err != nil {
		c.logger.Warn("cache value unencodable", "key", cacheKey, "error", err)
		return false
	}
	if policy.Compress && len(data) > policy.CompressionThreshold {
		data = compress(data)
	}

	if err := c.backend.Set(ctx, cacheKey, data, ttl); err != nil {
		c.logger.Warn("cache set failed", "key", cacheKey, "error", err)
		return false
	}

	c.countSet()
	return true
}

// Delete removes one key, returning how many entries were removed.
func (c *Cache) Delete(ctx context.Context, category, key string) int {
	cacheKey := c.buildKey(category, key)
	n, err := c.backend.Del(ctx, cacheKey)
	if err != nil {
		c.logger.Warn("cache delete failed", "key", cacheKey, "error", err)
		return 0
	}
	c.countDeletes(n)
	return n
}

// InvalidatePattern removes every key in a category matching a glob
// pattern, returning how many were removed.
func (c *Cache) InvalidatePattern(ctx context.Context, category, pattern string) int {
	cachePattern := c.buildKey(category, pattern)

	keys, err := c.backend.Keys(ctx, cachePattern)
	if err != nil {
		c.logger.Warn("cache key scan failed", "pattern", cachePattern, "error", err)
		return 0
	}
	if len(keys) == 0 {
		return 0
	}

	n, err := c.backend.Del(ctx, keys...)
	if err != nil {
		c.logger.Warn("cache invalidation failed", "pattern", cachePattern, "error", err)
		return 0
	}
	c.countDeletes(n)
	return n
}

// Stats returns a snapshot of the traffic counters. The hit rate is zero
// before any Get traffic.
func (c *Cache) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()

	stats := Stats{Hits: c.hits, Misses: c.misses, Sets: c.sets, Deletes: c.deletes}
	if total := c.hits + c.misses; total > 0 {
		stats.HitRate = float64(c.hits) / float64(total)
	}
	return stats
}

func (c *Cache) countHit() {
	c.mu.Lock()
	c.hits++
	c.mu.Unlock()
}

func (c *Cache) countMiss() {
	c.mu.Lock()
	c.misses++
	c.mu.Unlock()
}

func (c *Cache) countSet() {
	c.mu.Lock()
	c.sets++
	c.mu.Unlock()
}

func (c *Cache) countDeletes(n int) {
	c.mu.Lock()
	c.deletes += uint64(n)
	c.mu.Unlock()
}

// gobValue wraps arbitrary values for the gob fallback path. Callers caching
// custom struct types through this path must gob.Register them.
type gobValue struct {
	V interface{}
}

func encode(value interface{}) ([]byte, error) {
	if data, err := json.Marshal(value); err == nil {
		return append([]byte{formatJSON}, data...), nil
	}

	var buf bytes.Buffer
	buf.WriteByte(formatGob)
	if err := gob.NewEncoder(&buf).Encode(&gobValue{V: value}); err != nil {
		return nil, fmt.Errorf("gob encode: %w", err)
	}
	return buf.Bytes(), nil
}

func decode(data []byte) (interface{}, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("empty payload")
	}
	switch data[0] {
	case formatJSON:
		var value interface{}
		if err := json.Unmarshal(data[1:], &value); err != nil {
			return nil, fmt.Errorf("json decode: %w", err)
		}
		return value, nil
	case formatGob:
		var wrapped gobValue
		if err := gob.NewDecoder(bytes.NewReader(data[1:])).Decode(&wrapped); err != nil {
			return nil, fmt.Errorf("gob decode: %w", err)
		}
		return wrapped.V, nil
	default:
		return nil, fmt.Errorf("unknown format marker %#x", data[0])
	}
}

func compress(data []byte) []byte {
	var buf bytes.Buffer
	w := gzip.NewWriter(&buf)
	if _, err := w.Write(data); err != nil {
		return data
	}
	if err := w.Close(); err != nil {
		return data
	}
	return buf.Bytes()
}

// decompress attempts a gzip read and falls back to the raw payload, so
// compressed and uncompressed entries coexist across policy changes.
func decompress(data []byte) []byte {
	if len(data) < 2 || data[0] != 0x1f || data[1] != 0x8b {
		return data
	}
	r, err := gzip.NewReader(bytes.NewReader(data))
	if err != nil {
		return data
	}
	defer r.Close()

	out, err := io.ReadAll(r)
	if err != nil {
		return data
	}
	return out
}
