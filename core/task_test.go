package core

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type noopAgent struct{ BaseAgent }

func (a *noopAgent) ValidateInput(*SessionContext) bool { return true }
func (a *noopAgent) Execute(context.Context, *SessionContext) (*AgentResult, error) {
	return NewAgentResult(a.Name(), true, nil, 1.0, 0)
}

func TestTask_Lifecycle(t *testing.T) {
	task := NewTask("t1", &noopAgent{BaseAgent: NewBaseAgent("noop")}, PriorityMedium, "t0")

	assert.Equal(t, StatePending, task.State())
	assert.Equal(t, []string{"t0"}, task.Dependencies())

	require.NoError(t, task.SetState(StateRunning))
	assert.False(t, task.StartedAt().IsZero())

	require.NoError(t, task.SetState(StateCompleted))
	assert.False(t, task.EndedAt().IsZero())
	assert.True(t, task.State().Terminal())
}

func TestTask_RejectsBackwardTransitions(t *testing.T) {
	task := NewTask("t1", &noopAgent{BaseAgent: NewBaseAgent("noop")}, PriorityMedium)

	require.NoError(t, task.SetState(StateRunning))
	require.NoError(t, task.SetState(StateFailed))

	assert.Error(t, task.SetState(StateRunning))
	assert.Error(t, task.SetState(StateCompleted))
	assert.Error(t, task.SetState(StateCancelled))
}

func TestTask_CancelledFromPendingOrRunningOnly(t *testing.T) {
	pending := NewTask("p", &noopAgent{BaseAgent: NewBaseAgent("noop")}, PriorityLow)
	assert.NoError(t, pending.SetState(StateCancelled))

	running := NewTask("r", &noopAgent{BaseAgent: NewBaseAgent("noop")}, PriorityLow)
	require.NoError(t, running.SetState(StateRunning))
	assert.NoError(t, running.SetState(StateCancelled))

	done := NewTask("d", &noopAgent{BaseAgent: NewBaseAgent("noop")}, PriorityLow)
	require.NoError(t, done.SetState(StateRunning))
	require.NoError(t, done.SetState(StateCompleted))
	assert.Error(t, done.SetState(StateCancelled))
}

func TestTask_PendingCannotComplete(t *testing.T) {
	task := NewTask("t1", &noopAgent{BaseAgent: NewBaseAgent("noop")}, PriorityMedium)
	assert.Error(t, task.SetState(StateCompleted))
	assert.Error(t, task.SetState(StateFailed))
}

func TestPriorityOrdering(t *testing.T) {
	assert.Less(t, PriorityLow, PriorityMedium)
	assert.Less(t, PriorityMedium, PriorityHigh)
	assert.Less(t, PriorityHigh, PriorityCritical)
}

func TestAgentCacheKey(t *testing.T) {
	cfg := DefaultRunConfig()
	sc := NewSessionContext("s", "ACME SA", cfg)

	key := AgentCacheKey("normalization", sc)
	assert.Contains(t, key, "normalization:ACME SA:")
	assert.Contains(t, key, cfg.Fingerprint())
}
