package core

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionContext_RecordResult(t *testing.T) {
	sc := NewSessionContext("sess-1", "ACME SA", DefaultRunConfig())

	res, err := NewAgentResult("normalization", true,
		map[string]interface{}{"normalized_name": "ACME"},
		0.8, 250*time.Millisecond,
		WithErrors("partial match"), WithWarnings("ambiguous suffix"))
	require.NoError(t, err)

	sc.RecordResult(res)

	data, ok := sc.DataFor("normalization")
	require.True(t, ok)
	assert.Equal(t, "ACME", data["normalized_name"])

	metrics := sc.Metrics()
	assert.Equal(t, 0.8, metrics["normalization_confidence"])
	assert.InDelta(t, 0.25, metrics["normalization_execution_time"], 1e-9)

	assert.Equal(t, []string{"partial match"}, sc.Errors())
	assert.Equal(t, []string{"ambiguous suffix"}, sc.Warnings())
	assert.Equal(t, 1, sc.SourceCount())
}

func TestSessionContext_ConcurrentRecording(t *testing.T) {
	sc := NewSessionContext("sess-2", "ACME", DefaultRunConfig())

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			res, err := NewAgentResult(fmt.Sprintf("agent-%d", i), true,
				map[string]interface{}{"i": i}, 0.5, time.Millisecond)
			require.NoError(t, err)
			sc.RecordResult(res)
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 20, sc.SourceCount())
	assert.Len(t, sc.Metrics(), 40) // one confidence and one timing entry each
}

func TestSessionContext_DefensiveCopies(t *testing.T) {
	sc := NewSessionContext("sess-3", "ACME", DefaultRunConfig())
	res, err := NewAgentResult("a", true, map[string]interface{}{"k": "v"}, 0.5, 0)
	require.NoError(t, err)
	sc.RecordResult(res)

	collected := sc.CollectedData()
	collected["a"]["k"] = "mutated"

	fresh, _ := sc.DataFor("a")
	assert.Equal(t, "v", fresh["k"])
}

func TestSessionContext_Summary(t *testing.T) {
	sc := NewSessionContext("sess-4", "ACME", DefaultRunConfig())
	res, err := NewAgentResult("identification", false,
		map[string]interface{}{}, 0.0, time.Millisecond, WithErrors("no match"))
	require.NoError(t, err)
	sc.RecordResult(res)

	sum := sc.Summary()
	assert.Equal(t, "sess-4", sum.SessionID)
	assert.Equal(t, "ACME", sum.EntityName)
	assert.Contains(t, sum.CollectedData, "identification")
	assert.Equal(t, []string{"no match"}, sum.Errors)
	assert.GreaterOrEqual(t, sum.Duration, time.Duration(0))
}

func TestRunConfig_Fingerprint(t *testing.T) {
	a := RunConfig{MaxDepth: 2, Extra: map[string]string{"locale": "fr", "mode": "full"}}
	b := RunConfig{MaxDepth: 2, Extra: map[string]string{"mode": "full", "locale": "fr"}}
	c := RunConfig{MaxDepth: 3, Extra: map[string]string{"locale": "fr", "mode": "full"}}

	assert.Equal(t, a.Fingerprint(), b.Fingerprint(), "fingerprint is order independent")
	assert.NotEqual(t, a.Fingerprint(), c.Fingerprint())
}

func TestSourceRanking_PriorityOf(t *testing.T) {
	ranking := DefaultSourceRanking()

	assert.Greater(t, ranking.PriorityOf(SourceRegistry), ranking.PriorityOf(SourceAPI))
	assert.Greater(t, ranking.PriorityOf(SourceAPI), ranking.PriorityOf(SourceWeb))
	assert.Equal(t, ranking.PriorityOf(SourceUnknown), ranking.PriorityOf("never-seen"))
}
