package core

import (
	"fmt"
	"hash/fnv"
	"sort"
	"time"
)

// RunConfig tunes a single enrichment run.
type RunConfig struct {
	// MaxConcurrentTasks bounds how many agent tasks may execute
	// simultaneously. Values below 1 are normalized to the default.
	MaxConcurrentTasks int

	// SessionTimeout cancels all outstanding tasks when exceeded.
	// Negative disables the timeout; zero expires immediately.
	SessionTimeout time.Duration

	// MaxDepth bounds recursion into entities discovered during
	// reconciliation (e.g. subsidiaries).
	MaxDepth int

	// CacheResults enables memoization of agent results for agents that
	// expose a cache key.
	CacheResults bool

	// Extra carries free-form per-run settings; it participates in the
	// cache key fingerprint so differently configured runs never share
	// cached results.
	Extra map[string]string
}

// DefaultRunConfig returns the baseline run configuration.
func DefaultRunConfig() RunConfig {
	return RunConfig{
		MaxConcurrentTasks: 5,
		SessionTimeout:     5 * time.Minute,
		MaxDepth:           3,
		CacheResults:       true,
	}
}

// Normalize returns a copy with out-of-range values replaced by defaults.
func (c RunConfig) Normalize() RunConfig {
	if c.MaxConcurrentTasks < 1 {
		c.MaxConcurrentTasks = DefaultRunConfig().MaxConcurrentTasks
	}
	if c.MaxDepth < 0 {
		c.MaxDepth = 0
	}
	return c
}

// Fingerprint returns a stable hash of the configuration fields that affect
// agent output. Two configs with the same fingerprint may share cached
// agent results.
func (c RunConfig) Fingerprint() string {
	h := fnv.New64a()
	fmt.Fprintf(h, "depth=%d;", c.MaxDepth)

	keys := make([]string, 0, len(c.Extra))
	for k := range c.Extra {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(h, "%s=%s;", k, c.Extra[k])
	}
	return fmt.Sprintf("%016x", h.Sum64())
}
