package store

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/entigraph/enrichmesh/core"
)

// MemoryStore is an in-memory SummaryStore for tests and single-process
// deployments without a database.
type MemoryStore struct {
	mu        sync.RWMutex
	summaries map[string]core.Summary
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{summaries: map[string]core.Summary{}}
}

// Save implements SummaryStore.
func (s *MemoryStore) Save(_ context.Context, summary core.Summary) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.summaries[summary.SessionID] = summary
	return nil
}

// Get implements SummaryStore.
func (s *MemoryStore) Get(_ context.Context, sessionID string) (core.Summary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	summary, ok := s.summaries[sessionID]
	if !ok {
		return core.Summary{}, fmt.Errorf("%w: %s", ErrNotFound, sessionID)
	}
	return summary, nil
}

// ListByEntity implements SummaryStore.
func (s *MemoryStore) ListByEntity(_ context.Context, entityName string, limit int) ([]core.Summary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []core.Summary
	for _, summary := range s.summaries {
		if summary.EntityName == entityName {
			out = append(out, summary)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartTime.After(out[j].StartTime) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}
