package scheduler

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/entigraph/enrichmesh/core"
)

// noopAgent is the minimal agent used by graph tests.
type noopAgent struct {
	core.BaseAgent
}

func newNoopAgent(name string) *noopAgent {
	return &noopAgent{BaseAgent: core.NewBaseAgent(name)}
}

func (a *noopAgent) ValidateInput(*core.SessionContext) bool { return true }

func (a *noopAgent) Execute(_ context.Context, _ *core.SessionContext) (*core.AgentResult, error) {
	return core.NewAgentResult(a.Name(), true, map[string]interface{}{}, 1.0, time.Millisecond)
}

func TestBuildGraph(t *testing.T) {
	g, err := BuildGraph([]TaskSpec{
		{TaskID: "normalize", Agent: newNoopAgent("normalization"), Priority: core.PriorityHigh},
		{TaskID: "identify", Agent: newNoopAgent("identification"), Dependencies: []string{"normalize"}},
	})
	require.NoError(t, err)
	require.Equal(t, 2, g.Len())

	tasks := g.Tasks()
	assert.Equal(t, "normalize", tasks[0].TaskID)
	assert.Equal(t, "identify", tasks[1].TaskID)

	// Unset priority defaults to medium.
	assert.Equal(t, core.PriorityMedium, tasks[1].Priority)

	task, ok := g.Task("identify")
	require.True(t, ok)
	assert.Equal(t, []string{"normalize"}, task.Dependencies())
	assert.Equal(t, core.StatePending, task.State())
}

func TestBuildGraph_EmptyTaskID(t *testing.T) {
	_, err := BuildGraph([]TaskSpec{{TaskID: "", Agent: newNoopAgent("normalization")}})
	assert.Error(t, err)
}

func TestBuildGraph_DuplicateTaskID(t *testing.T) {
	_, err := BuildGraph([]TaskSpec{
		{TaskID: "normalize", Agent: newNoopAgent("normalization")},
		{TaskID: "normalize", Agent: newNoopAgent("identification")},
	})
	assert.ErrorIs(t, err, ErrDuplicateTask)
}

func TestBuildGraph_UnknownDependency(t *testing.T) {
	_, err := BuildGraph([]TaskSpec{
		{TaskID: "identify", Agent: newNoopAgent("identification"), Dependencies: []string{"missing"}},
	})
	assert.ErrorIs(t, err, ErrUnknownDependency)
}

func TestBuildGraph_SelfDependency(t *testing.T) {
	_, err := BuildGraph([]TaskSpec{
		{TaskID: "identify", Agent: newNoopAgent("identification"), Dependencies: []string{"identify"}},
	})
	assert.ErrorIs(t, err, ErrCycle)
}

func TestBuildGraph_Cycle(t *testing.T) {
	_, err := BuildGraph([]TaskSpec{
		{TaskID: "a", Agent: newNoopAgent("a"), Dependencies: []string{"c"}},
		{TaskID: "b", Agent: newNoopAgent("b"), Dependencies: []string{"a"}},
		{TaskID: "c", Agent: newNoopAgent("c"), Dependencies: []string{"b"}},
	})
	require.ErrorIs(t, err, ErrCycle)
	assert.Contains(t, err.Error(), "a")
}
