package core

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
)

// Agent is the polymorphic unit of enrichment work. Named variants
// (normalization, identification, validation, ...) share this contract and
// differ only in their ValidateInput and Execute bodies.
//
// Execute must not return an error for expected failure modes: missing
// upstream data or an unreachable external source become a result with
// Success=false, a populated error list and zero confidence. Only
// programming errors propagate. Agents never write into the SessionContext
// themselves; the scheduler records results, which keeps agents testable in
// isolation.
type Agent interface {
	// Name returns the agent's identifier, used as the collected_data key.
	Name() string

	// ValidateInput is a pure predicate over the context; it must not
	// mutate anything. An agent returning false is failed without Execute
	// ever being called.
	ValidateInput(sc *SessionContext) bool

	// Execute performs the agent's unit of work against the shared context.
	Execute(ctx context.Context, sc *SessionContext) (*AgentResult, error)
}

// CacheKeyer is the memoization capability. Agents implementing it have
// their results cached under the "agent_result" category and short-circuited
// on a hit; caching is transparent to correctness and only affects latency.
type CacheKeyer interface {
	CacheKey(sc *SessionContext) string
}

// AgentCacheKey derives the canonical cache key for an agent run:
// agent name, entity name and the run-config fingerprint.
func AgentCacheKey(agentName string, sc *SessionContext) string {
	return fmt.Sprintf("%s:%s:%s", agentName, sc.EntityName, sc.Config.Fingerprint())
}

// DecodeResult rebuilds an AgentResult from a cached value. Cached results
// travel through the cache's self-describing encoding and come back as
// generic maps; decoding re-runs the construction invariants so a corrupted
// entry can never smuggle an invalid result into a session.
func DecodeResult(v interface{}) (*AgentResult, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode cached value: %w", err)
	}
	var decoded AgentResult
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return nil, fmt.Errorf("decode cached result: %w", err)
	}
	return NewAgentResult(
		decoded.AgentName,
		decoded.Success,
		decoded.Data,
		decoded.ConfidenceScore,
		decoded.ExecutionTime,
		WithErrors(decoded.Errors...),
		WithWarnings(decoded.Warnings...),
		WithMetadata(decoded.Metadata),
	)
}

// AgentState tracks an agent's processing lifecycle for observability.
type AgentState int

const (
	// AgentIdle means the agent has not started processing.
	AgentIdle AgentState = iota
	// AgentProcessing means the agent is executing.
	AgentProcessing
	// AgentCompleted means the last execution succeeded.
	AgentCompleted
	// AgentError means the last execution failed.
	AgentError
)

// String returns the lowercase name of the agent state.
func (s AgentState) String() string {
	switch s {
	case AgentIdle:
		return "idle"
	case AgentProcessing:
		return "processing"
	case AgentCompleted:
		return "completed"
	case AgentError:
		return "error"
	default:
		return "unknown"
	}
}

// BaseAgent bundles the identity and lifecycle-state bookkeeping shared by
// concrete agents. Embed it and supply ValidateInput and Execute to satisfy
// the Agent interface. All exported methods are goroutine-safe.
type BaseAgent struct {
	name string

	mu    sync.Mutex
	state AgentState
}

// NewBaseAgent constructs the embeddable agent base.
func NewBaseAgent(name string) BaseAgent {
	return BaseAgent{name: name, state: AgentIdle}
}

// Name returns the agent identifier.
func (b *BaseAgent) Name() string { return b.name }

// State returns the agent's current lifecycle state.
func (b *BaseAgent) State() AgentState {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}

// SetAgentState updates the lifecycle state. The scheduler drives this
// through its pre/post execution hooks.
func (b *BaseAgent) SetAgentState(s AgentState) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.state = s
}

// StateTracker is implemented by agents whose lifecycle state the scheduler
// maintains (PROCESSING before Execute, COMPLETED or ERROR after).
type StateTracker interface {
	SetAgentState(s AgentState)
}
