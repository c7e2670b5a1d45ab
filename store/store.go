// Package store is the persistence boundary for completed enrichment
// sessions. The engine itself never writes durable storage; callers hand a
// session summary over to a SummaryStore once the run finishes.
package store

import (
	"context"
	"errors"

	"github.com/entigraph/enrichmesh/core"
)

// ErrNotFound is returned when no summary exists for a session id.
var ErrNotFound = errors.New("store: summary not found")

// SummaryStore persists and retrieves completed session summaries.
type SummaryStore interface {
	// Save persists one summary. Saving the same session id twice
	// overwrites the earlier record.
	Save(ctx context.Context, summary core.Summary) error

	// Get retrieves a summary by session id. ErrNotFound when absent.
	Get(ctx context.Context, sessionID string) (core.Summary, error)

	// ListByEntity returns the most recent summaries for an entity,
	// newest first, at most limit entries (0 means no limit).
	ListByEntity(ctx context.Context, entityName string, limit int) ([]core.Summary, error)
}
