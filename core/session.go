package core

import (
	"context"
	"sync"
	"time"
)

// ResultCache is the slice of the cache surface the core needs: best-effort,
// category-namespaced get/set. The cache package provides the production
// implementation; the context merely borrows a reference (the cache outlives
// any single session).
type ResultCache interface {
	Get(ctx context.Context, category, key string) (interface{}, bool)
	Set(ctx context.Context, category, key string, value interface{}, ttl time.Duration) bool
}

// SessionContext is the run-scoped shared state passed to every agent.
//
// It is created once per run by the scheduler and mutated only through
// RecordResult / AddError / AddWarning, which the scheduler invokes from a
// single completion path. All accessors return defensive copies, so agents
// running concurrently can read collected data safely.
type SessionContext struct {
	SessionID    string
	EntityName   string
	CurrentDepth int
	MaxDepth     int
	Config       RunConfig
	Cache        ResultCache
	StartTime    time.Time

	mu        sync.RWMutex
	collected map[string]map[string]interface{}
	metrics   map[string]float64
	errors    []string
	warnings  []string
}

// NewSessionContext creates a fresh context for one enrichment run.
func NewSessionContext(sessionID, entityName string, cfg RunConfig) *SessionContext {
	return &SessionContext{
		SessionID:  sessionID,
		EntityName: entityName,
		MaxDepth:   cfg.MaxDepth,
		Config:     cfg,
		StartTime:  time.Now(),
		collected:  map[string]map[string]interface{}{},
		metrics:    map[string]float64{},
	}
}

// RecordResult stores an agent's result into the context: the payload under
// the agent name plus one confidence and one timing metric. Errors and
// warnings carried by the result are accumulated session-wide.
func (s *SessionContext) RecordResult(result *AgentResult) {
	if result == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	s.collected[result.AgentName] = copyMap(result.Data)
	s.metrics[result.AgentName+"_confidence"] = result.ConfidenceScore
	s.metrics[result.AgentName+"_execution_time"] = result.ExecutionTime.Seconds()
	s.errors = append(s.errors, result.Errors...)
	s.warnings = append(s.warnings, result.Warnings...)
}

// CollectedData returns a copy of all recorded agent payloads keyed by agent name.
func (s *SessionContext) CollectedData() map[string]map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()
	cp := make(map[string]map[string]interface{}, len(s.collected))
	for name, data := range s.collected {
		cp[name] = copyMap(data)
	}
	return cp
}

// DataFor returns the payload recorded by one agent, if any.
func (s *SessionContext) DataFor(agentName string) (map[string]interface{}, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	data, ok := s.collected[agentName]
	if !ok {
		return nil, false
	}
	return copyMap(data), true
}

// SourceCount reports how many agents have recorded a payload so far.
func (s *SessionContext) SourceCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.collected)
}

// Metrics returns a copy of the accumulated per-agent metrics.
func (s *SessionContext) Metrics() map[string]float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	cp := make(map[string]float64, len(s.metrics))
	for k, v := range s.metrics {
		cp[k] = v
	}
	return cp
}

// AddError appends a session-level error.
func (s *SessionContext) AddError(msg string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.errors = append(s.errors, msg)
}

// AddWarning appends a session-level warning.
func (s *SessionContext) AddWarning(msg string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.warnings = append(s.warnings, msg)
}

// Errors returns a copy of all accumulated errors.
func (s *SessionContext) Errors() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return copyStrings(s.errors)
}

// Warnings returns a copy of all accumulated warnings.
func (s *SessionContext) Warnings() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return copyStrings(s.warnings)
}

// Elapsed returns the time since the session started.
func (s *SessionContext) Elapsed() time.Duration {
	return time.Since(s.StartTime)
}

// Summary is the serializable hand-off of a completed session for an
// external persistence layer. The core never writes durable storage itself.
type Summary struct {
	SessionID     string                            `json:"session_id"`
	EntityName    string                            `json:"entity_name"`
	CollectedData map[string]map[string]interface{} `json:"collected_data"`
	Metrics       map[string]float64                `json:"metrics"`
	Errors        []string                          `json:"errors,omitempty"`
	Warnings      []string                          `json:"warnings,omitempty"`
	StartTime     time.Time                         `json:"start_time"`
	Duration      time.Duration                     `json:"duration"`
}

// Summary snapshots the context into its persistence hand-off form.
func (s *SessionContext) Summary() Summary {
	return Summary{
		SessionID:     s.SessionID,
		EntityName:    s.EntityName,
		CollectedData: s.CollectedData(),
		Metrics:       s.Metrics(),
		Errors:        s.Errors(),
		Warnings:      s.Warnings(),
		StartTime:     s.StartTime,
		Duration:      s.Elapsed(),
	}
}
