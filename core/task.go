package core

import (
	"fmt"
	"sync"
	"time"
)

// ExecutionState tracks a task through its lifecycle.
type ExecutionState int

const (
	// StatePending marks a task waiting for its dependencies.
	StatePending ExecutionState = iota
	// StateRunning marks a task currently executing.
	StateRunning
	// StateCompleted marks a task that finished successfully.
	StateCompleted
	// StateFailed marks a task whose agent failed or rejected its input.
	StateFailed
	// StateCancelled marks a task abandoned before completion.
	StateCancelled
)

// String returns the lowercase name of the state.
func (s ExecutionState) String() string {
	switch s {
	case StatePending:
		return "pending"
	case StateRunning:
		return "running"
	case StateCompleted:
		return "completed"
	case StateFailed:
		return "failed"
	case StateCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// Terminal reports whether no further transitions are possible.
func (s ExecutionState) Terminal() bool {
	return s == StateCompleted || s == StateFailed || s == StateCancelled
}

// Priority orders ready tasks when more are runnable than the concurrency
// ceiling allows. It is a scheduling hint, not a correctness guarantee.
type Priority int

const (
	// PriorityLow is the lowest scheduling priority.
	PriorityLow Priority = iota + 1
	// PriorityMedium is the default scheduling priority.
	PriorityMedium
	// PriorityHigh schedules ahead of medium and low tasks.
	PriorityHigh
	// PriorityCritical schedules ahead of everything else.
	PriorityCritical
)

// String returns the lowercase name of the priority.
func (p Priority) String() string {
	switch p {
	case PriorityLow:
		return "low"
	case PriorityMedium:
		return "medium"
	case PriorityHigh:
		return "high"
	case PriorityCritical:
		return "critical"
	default:
		return "unknown"
	}
}

// Task binds an Agent to scheduling metadata for one session: identity,
// priority, declared dependencies and lifecycle state.
//
// Dependencies are fixed at construction. State transitions are monotonic:
// PENDING -> RUNNING -> {COMPLETED | FAILED}, with CANCELLED reachable from
// PENDING or RUNNING only. Any other transition is rejected.
type Task struct {
	TaskID    string
	AgentName string
	Agent     Agent
	Priority  Priority

	deps []string

	mu        sync.Mutex
	state     ExecutionState
	result    *AgentResult
	err       error
	startedAt time.Time
	endedAt   time.Time
}

// NewTask wraps an agent into a schedulable task.
func NewTask(taskID string, agent Agent, priority Priority, dependencies ...string) *Task {
	deps := make([]string, len(dependencies))
	copy(deps, dependencies)
	return &Task{
		TaskID:    taskID,
		AgentName: agent.Name(),
		Agent:     agent,
		Priority:  priority,
		deps:      deps,
		state:     StatePending,
	}
}

// Dependencies returns a copy of the task ids this task waits for.
func (t *Task) Dependencies() []string {
	cp := make([]string, len(t.deps))
	copy(cp, t.deps)
	return cp
}

// State returns the current lifecycle state.
func (t *Task) State() ExecutionState {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state
}

// SetState performs a lifecycle transition, rejecting any move the state
// machine does not allow.
func (t *Task) SetState(next ExecutionState) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if !validTransition(t.state, next) {
		return fmt.Errorf("invalid task transition %s -> %s for task %s", t.state, next, t.TaskID)
	}

	now := time.Now()
	switch next {
	case StateRunning:
		t.startedAt = now
	case StateCompleted, StateFailed, StateCancelled:
		t.endedAt = now
	}
	t.state = next
	return nil
}

func validTransition(from, to ExecutionState) bool {
	switch from {
	case StatePending:
		return to == StateRunning || to == StateCancelled
	case StateRunning:
		return to == StateCompleted || to == StateFailed || to == StateCancelled
	default:
		return false
	}
}

// SetResult records the agent's result on the task.
func (t *Task) SetResult(result *AgentResult) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.result = result
}

// Result returns the recorded result, if any.
func (t *Task) Result() *AgentResult {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.result
}

// SetErr records a terminal error on the task.
func (t *Task) SetErr(err error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.err = err
}

// Err returns the recorded terminal error, if any.
func (t *Task) Err() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.err
}

// StartedAt returns when the task entered RUNNING (zero if never started).
func (t *Task) StartedAt() time.Time {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.startedAt
}

// EndedAt returns when the task reached a terminal state (zero if still live).
func (t *Task) EndedAt() time.Time {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.endedAt
}
