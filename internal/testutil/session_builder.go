package testutil

import (
	"fmt"
	"time"

	"github.com/entigraph/enrichmesh/core"
)

// SessionBuilder provides a fluent helper for constructing session contexts
// pre-populated with agent payloads in tests.
// Example:
//
//	sc := NewSessionBuilder("ACME").
//		Payload("normalization", 0.9, map[string]interface{}{"name": "ACME"}).
//		Build()
//
// Chain only the parts you need; sensible defaults are applied.
type SessionBuilder struct {
	sessionID string
	entity    string
	depth     int
	cfg       core.RunConfig
	results   []*core.AgentResult
}

// NewSessionBuilder creates a builder for a session enriching the given
// entity, with id "sess-test" and the default run configuration.
func NewSessionBuilder(entity string) *SessionBuilder {
	return &SessionBuilder{sessionID: "sess-test", entity: entity, cfg: core.DefaultRunConfig()}
}

// ID overrides the session id (chainable).
func (b *SessionBuilder) ID(id string) *SessionBuilder { b.sessionID = id; return b }

// Config overrides the run configuration (chainable).
func (b *SessionBuilder) Config(cfg core.RunConfig) *SessionBuilder { b.cfg = cfg; return b }

// Depth sets the recursion depth the session starts at (chainable).
func (b *SessionBuilder) Depth(d int) *SessionBuilder { b.depth = d; return b }

// Payload records a successful agent result with the given confidence and
// data into the session being built (chainable).
func (b *SessionBuilder) Payload(agent string, confidence float64, data map[string]interface{}) *SessionBuilder {
	b.results = append(b.results, MustResult(agent, confidence, data))
	return b
}

// Result records a pre-built agent result (chainable).
func (b *SessionBuilder) Result(result *core.AgentResult) *SessionBuilder {
	b.results = append(b.results, result)
	return b
}

// Build returns a *core.SessionContext with all payloads recorded.
func (b *SessionBuilder) Build() *core.SessionContext {
	sc := core.NewSessionContext(b.sessionID, b.entity, b.cfg)
	sc.CurrentDepth = b.depth
	for _, result := range b.results {
		sc.RecordResult(result)
	}
	return sc
}

// MustResult builds a successful AgentResult with a nominal execution time,
// panicking on construction errors. Use only in tests, where an invalid
// fixture is a programming error.
func MustResult(agent string, confidence float64, data map[string]interface{}) *core.AgentResult {
	result, err := core.NewAgentResult(agent, true, data, confidence, time.Millisecond)
	if err != nil {
		panic(fmt.Sprintf("testutil: invalid fixture result for %s: %v", agent, err))
	}
	return result
}
