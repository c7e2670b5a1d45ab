package core

import (
	"fmt"
	"time"
)

// AgentResult is the immutable output of a single agent invocation.
//
// Results are created once via NewAgentResult (or FailureResult) and never
// mutated afterwards; the SessionContext owns a result once it has been
// recorded. The constructor enforces the confidence and timing invariants
// up front so an out-of-range result can never enter the system.
type AgentResult struct {
	AgentName       string                 `json:"agent_name"`
	Success         bool                   `json:"success"`
	Data            map[string]interface{} `json:"data"`
	ConfidenceScore float64                `json:"confidence_score"`
	ExecutionTime   time.Duration          `json:"execution_time"`
	Errors          []string               `json:"errors,omitempty"`
	Warnings        []string               `json:"warnings,omitempty"`
	Metadata        map[string]interface{} `json:"metadata,omitempty"`
}

// ResultOptions carries the optional fields of an AgentResult.
type ResultOptions struct {
	Errors   []string
	Warnings []string
	Metadata map[string]interface{}
}

// NewAgentResult constructs a validated AgentResult.
//
// It fails fast when the confidence score falls outside [0, 1] or the
// execution time is negative; values are never silently clamped. Maps and
// slices are copied defensively so callers cannot mutate a result after
// construction.
func NewAgentResult(
	agentName string,
	success bool,
	data map[string]interface{},
	confidence float64,
	executionTime time.Duration,
	optFns ...func(o *ResultOptions),
) (*AgentResult, error) {
	if agentName == "" {
		return nil, fmt.Errorf("agent name must not be empty")
	}
	if confidence < 0.0 || confidence > 1.0 {
		return nil, fmt.Errorf("confidence score %v out of range [0.0, 1.0]", confidence)
	}
	if executionTime < 0 {
		return nil, fmt.Errorf("execution time %v must not be negative", executionTime)
	}

	opts := ResultOptions{}
	for _, fn := range optFns {
		fn(&opts)
	}

	return &AgentResult{
		AgentName:       agentName,
		Success:         success,
		Data:            copyMap(data),
		ConfidenceScore: confidence,
		ExecutionTime:   executionTime,
		Errors:          copyStrings(opts.Errors),
		Warnings:        copyStrings(opts.Warnings),
		Metadata:        copyMap(opts.Metadata),
	}, nil
}

// WithErrors sets the error list of a result under construction.
func WithErrors(errs ...string) func(o *ResultOptions) {
	return func(o *ResultOptions) { o.Errors = errs }
}

// WithWarnings sets the warning list of a result under construction.
func WithWarnings(warnings ...string) func(o *ResultOptions) {
	return func(o *ResultOptions) { o.Warnings = warnings }
}

// WithMetadata sets free-form diagnostic metadata of a result under construction.
func WithMetadata(metadata map[string]interface{}) func(o *ResultOptions) {
	return func(o *ResultOptions) { o.Metadata = metadata }
}

// FailureResult builds an unsuccessful result with zero confidence from a
// set of error messages. It is used at the scheduler boundary to convert
// expected failures (invalid input, execution errors, panics) into
// structured results and therefore cannot itself fail.
func FailureResult(agentName string, executionTime time.Duration, errs ...string) *AgentResult {
	if executionTime < 0 {
		executionTime = 0
	}
	return &AgentResult{
		AgentName:       agentName,
		Success:         false,
		Data:            map[string]interface{}{},
		ConfidenceScore: 0.0,
		ExecutionTime:   executionTime,
		Errors:          copyStrings(errs),
	}
}

func copyMap(m map[string]interface{}) map[string]interface{} {
	cp := make(map[string]interface{}, len(m))
	for k, v := range m {
		cp[k] = v
	}
	return cp
}

func copyStrings(s []string) []string {
	if len(s) == 0 {
		return nil
	}
	cp := make([]string, len(s))
	copy(cp, s)
	return cp
}
