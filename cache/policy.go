package cache

import (
	"fmt"
	"strconv"
	"time"
)

// Built-in cache categories. Unknown categories are served with the default
// policy and a prefix derived from the category name.
const (
	CategoryEntity      = "entity"
	CategoryAgentResult = "agent_result"
	CategorySession     = "session"
	CategoryValidation  = "validation"
)

// DefaultTTL tells Set to resolve the TTL from the category policy.
const DefaultTTL time.Duration = -1

// Policy configures one cache category.
type Policy struct {
	// TTL applied to entries of this category when Set receives DefaultTTL.
	TTL time.Duration

	// Compress enables gzip for payloads above CompressionThreshold bytes.
	Compress bool

	// CompressionThreshold is the encoded-size cutoff in bytes above which
	// a compressible payload is gzipped.
	CompressionThreshold int
}

// DefaultPolicy is applied to categories without an explicit policy.
func DefaultPolicy() Policy {
	return Policy{TTL: time.Hour, Compress: false, CompressionThreshold: 1024}
}

// DefaultPolicies mirrors the shipped per-category configuration.
func DefaultPolicies() map[string]Policy {
	return map[string]Policy{
		CategoryEntity:      {TTL: 7 * 24 * time.Hour, Compress: true, CompressionThreshold: 1024},
		CategoryAgentResult: {TTL: 12 * time.Hour, Compress: true, CompressionThreshold: 1024},
		CategorySession:     {TTL: 24 * time.Hour, Compress: true, CompressionThreshold: 1024},
		CategoryValidation:  {TTL: 6 * time.Hour, Compress: false, CompressionThreshold: 1024},
	}
}

func defaultPrefixes() map[string]string {
	return map[string]string{
		CategoryEntity:      "ent:",
		CategoryAgentResult: "agent:",
		CategorySession:     "sess:",
		CategoryValidation:  "valid:",
	}
}

// ParseTTL converts a suffix-qualified duration string (s, m, h, d) or a
// bare integer (seconds) into a duration. The result must round to a
// positive whole number of seconds.
func ParseTTL(s string) (time.Duration, error) {
	if s == "" {
		return 0, fmt.Errorf("empty ttl")
	}

	multiplier := time.Second
	digits := s
	switch s[len(s)-1] {
	case 's':
		digits = s[:len(s)-1]
	case 'm':
		digits, multiplier = s[:len(s)-1], time.Minute
	case 'h':
		digits, multiplier = s[:len(s)-1], time.Hour
	case 'd':
		digits, multiplier = s[:len(s)-1], 24*time.Hour
	}

	n, err := strconv.Atoi(digits)
	if err != nil {
		return 0, fmt.Errorf("invalid ttl %q: %w", s, err)
	}
	d := time.Duration(n) * multiplier
	if d < time.Second {
		return 0, fmt.Errorf("ttl %q must resolve to a positive number of seconds", s)
	}
	return d, nil
}
