// Package cache provides namespaced, TTL'd, optionally compressed
// memoization backed by a pluggable key/value store.
//
// Entries are grouped into categories, each with its own TTL and
// compression policy and key prefix. Values travel through a
// self-describing encoding (JSON first, gob for payloads JSON cannot
// express) and are gzip-compressed when a category's policy enables it and
// the encoded size exceeds the policy threshold.
//
// The cache is strictly best-effort: every backend error is absorbed and
// converted into a miss (Get) or a false/zero return (Set, Delete,
// InvalidatePattern). A broken backend degrades callers to
// always-recompute, never to a crash.
package cache
