package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/entigraph/enrichmesh/core"
)

func sampleSummary(sessionID, entity string, start time.Time) core.Summary {
	return core.Summary{
		SessionID:  sessionID,
		EntityName: entity,
		CollectedData: map[string]map[string]interface{}{
			"identification": {"siren": "552100554"},
		},
		Metrics:   map[string]float64{"identification_confidence": 0.9},
		Errors:    []string{},
		Warnings:  []string{"website not verified"},
		StartTime: start,
		Duration:  250 * time.Millisecond,
	}
}

func TestMemoryStore_SaveGet(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	summary := sampleSummary("sess-1", "ACME", time.Now())
	require.NoError(t, s.Save(ctx, summary))

	got, err := s.Get(ctx, "sess-1")
	require.NoError(t, err)
	assert.Equal(t, summary, got)

	_, err = s.Get(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStore_SaveOverwrites(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	first := sampleSummary("sess-1", "ACME", time.Now())
	require.NoError(t, s.Save(ctx, first))

	second := first
	second.Metrics = map[string]float64{"identification_confidence": 0.95}
	require.NoError(t, s.Save(ctx, second))

	got, err := s.Get(ctx, "sess-1")
	require.NoError(t, err)
	assert.Equal(t, 0.95, got.Metrics["identification_confidence"])
}

func TestMemoryStore_ListByEntity(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	base := time.Now()

	require.NoError(t, s.Save(ctx, sampleSummary("sess-1", "ACME", base.Add(-2*time.Hour))))
	require.NoError(t, s.Save(ctx, sampleSummary("sess-2", "ACME", base)))
	require.NoError(t, s.Save(ctx, sampleSummary("sess-3", "Globex", base)))

	out, err := s.ListByEntity(ctx, "ACME", 0)
	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.Equal(t, "sess-2", out[0].SessionID, "newest first")

	out, err = s.ListByEntity(ctx, "ACME", 1)
	require.NoError(t, err)
	assert.Len(t, out, 1)

	out, err = s.ListByEntity(ctx, "Initech", 0)
	require.NoError(t, err)
	assert.Empty(t, out)
}

func TestSummaryRecordRoundTrip(t *testing.T) {
	summary := sampleSummary("sess-1", "ACME", time.Now().Truncate(time.Second))

	record, err := toRecord(summary)
	require.NoError(t, err)
	assert.Equal(t, "sess-1", record.SessionID)
	assert.Equal(t, int64(summary.Duration), record.DurationNS)

	got, err := fromRecord(record)
	require.NoError(t, err)
	assert.Equal(t, summary, got)
}
