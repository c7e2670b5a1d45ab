package reconcile

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/entigraph/enrichmesh/core"
	"github.com/entigraph/enrichmesh/logging"
)

// AgentName is the collected_data key the reconciliation result lands under.
const AgentName = "validation"

// sourceKey is the payload annotation carrying a source's provenance label.
const sourceKey = "_source"

// AgentOptions configures the validation agent.
type AgentOptions struct {
	// Ranking orders sources by trust for priority-based resolution.
	Ranking core.SourceRanking

	// Weights tunes the consistency score.
	Weights ScoreWeights

	// SourceTypes maps agent names to a default provenance label, used when
	// a payload carries no "_source" annotation.
	SourceTypes map[string]string

	// Logger receives reconciliation telemetry. Defaults to a no-op logger.
	Logger logging.Logger
}

// Agent is the reconciliation pass packaged as a regular agent: it reads the
// outputs of every producer that ran before it, detects and resolves
// conflicts, and records its consolidated report under
// collected_data["validation"]. Scheduling-wise it must depend on all
// producer tasks; data-wise it has no special status.
type Agent struct {
	core.BaseAgent

	detector    *Detector
	resolver    *Resolver
	weights     ScoreWeights
	sourceTypes map[string]string
	logger      logging.Logger
}

// NewAgent creates the validation agent.
func NewAgent(optFns ...func(o *AgentOptions)) *Agent {
	opts := AgentOptions{
		Weights: DefaultScoreWeights(),
		SourceTypes: map[string]string{
			"identification": core.SourceRegistry,
			"normalization":  core.SourceAPI,
			"website":        core.SourceWeb,
		},
		Logger: logging.NoOpLogger{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Agent{
		BaseAgent:   core.NewBaseAgent(AgentName),
		detector:    NewDetector(),
		resolver:    NewResolver(opts.Ranking),
		weights:     opts.Weights,
		sourceTypes: opts.SourceTypes,
		logger:      opts.Logger,
	}
}

// ValidateInput requires at least two producer payloads; reconciling a
// single source is meaningless.
func (a *Agent) ValidateInput(sc *core.SessionContext) bool {
	return a.producerCount(sc) >= 2
}

func (a *Agent) producerCount(sc *core.SessionContext) int {
	n := sc.SourceCount()
	if _, ok := sc.DataFor(a.Name()); ok {
		n--
	}
	return n
}

// Execute runs detection, resolution and scoring over everything collected
// so far.
func (a *Agent) Execute(ctx context.Context, sc *core.SessionContext) (*core.AgentResult, error) {
	start := time.Now()

	sources := sc.CollectedData()
	delete(sources, a.Name())
	if len(sources) < 2 {
		return core.FailureResult(a.Name(), time.Since(start),
			"need at least 2 data sources to validate"), nil
	}

	metrics := sc.Metrics()

	conflicts := a.detector.Detect(sources)
	resolutions := a.resolve(conflicts, sources, metrics)

	resolvedFields := make(map[string]interface{}, len(resolutions))
	for _, res := range resolutions {
		resolvedFields[res.Field] = res.ResolvedValue
	}

	consistency := a.weights.Consistency(len(sources), conflicts, len(resolutions))
	quality := QualityScore(sourceConfidences(sources, metrics))
	linked := a.linkedEntities(sources, sc)

	a.logger.Info("reconciliation completed",
		"session_id", sc.SessionID,
		"sources", len(sources),
		"conflicts", len(conflicts),
		"resolutions", len(resolutions),
		"consistency_score", consistency,
		"data_quality_score", quality)

	data := map[string]interface{}{
		"conflicts_detected": conflicts,
		"conflicts_resolved": resolutions,
		"resolved_fields":    resolvedFields,
		"consistency_score":  consistency,
		"data_quality_score": quality,
		"is_consistent":      len(conflicts) == 0,
		"sources_validated":  len(sources),
		"linked_entities":    linked,
		"validation_summary": summarize(len(conflicts), len(resolutions)),
		"recommendations":    recommend(conflicts, consistency),
	}

	return core.NewAgentResult(a.Name(), true, data, consistency, time.Since(start),
		core.WithMetadata(map[string]interface{}{
			"conflicts_found":    len(conflicts),
			"conflicts_resolved": len(resolutions),
		}))
}

// resolve settles each conflicted field once, in first-detection order, with
// candidates gathered from every source claiming the field in sorted source
// order. Same inputs, same output.
func (a *Agent) resolve(conflicts []Conflict, sources map[string]map[string]interface{}, metrics map[string]float64) []Resolution {
	names := make([]string, 0, len(sources))
	for name := range sources {
		names = append(names, name)
	}
	sort.Strings(names)

	seen := map[string]bool{}
	var resolutions []Resolution
	for _, conflict := range conflicts {
		if seen[conflict.Field] {
			continue
		}
		seen[conflict.Field] = true

		var candidates []Candidate
		for _, name := range names {
			value, ok := sources[name][conflict.Field]
			if !ok {
				continue
			}
			candidates = append(candidates, Candidate{
				Source:     name,
				SourceType: a.sourceTypeOf(name, sources[name]),
				Value:      value,
				Confidence: sourceConfidence(name, metrics),
			})
		}

		if res, ok := a.resolver.Resolve(conflict.Field, candidates); ok {
			resolutions = append(resolutions, res)
		}
	}
	return resolutions
}

// sourceTypeOf resolves a payload's provenance label: an explicit "_source"
// annotation wins, then the configured per-agent default, then unknown.
func (a *Agent) sourceTypeOf(agentName string, data map[string]interface{}) string {
	if label, ok := data[sourceKey].(string); ok && label != "" {
		return label
	}
	if label, ok := a.sourceTypes[agentName]; ok {
		return label
	}
	return core.SourceUnknown
}

func sourceConfidence(agentName string, metrics map[string]float64) float64 {
	if c, ok := metrics[agentName+"_confidence"]; ok {
		return c
	}
	return 0.5
}

func sourceConfidences(sources map[string]map[string]interface{}, metrics map[string]float64) []float64 {
	var out []float64
	for name := range sources {
		if c, ok := metrics[name+"_confidence"]; ok {
			out = append(out, c)
		}
	}
	return out
}

// linkedEntities aggregates the related entities producers reported (parent
// companies, subsidiaries) so the caller can recurse into them. Suppressed
// once the session's depth bound is reached.
func (a *Agent) linkedEntities(sources map[string]map[string]interface{}, sc *core.SessionContext) []interface{} {
	linked := []interface{}{}
	if sc.CurrentDepth >= sc.MaxDepth {
		return linked
	}

	names := make([]string, 0, len(sources))
	for name := range sources {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		entities, ok := sources[name]["linked_entities"].([]interface{})
		if !ok {
			continue
		}
		linked = append(linked, entities...)
	}
	return linked
}

func summarize(conflicts, resolutions int) string {
	switch {
	case conflicts == 0:
		return "validation completed: no conflicts detected, data is consistent"
	case resolutions >= conflicts:
		return fmt.Sprintf("validation completed: %d conflict(s) detected, all resolved automatically", conflicts)
	default:
		return fmt.Sprintf("validation completed: %d conflict(s) detected, %d unresolved", conflicts, conflicts-resolutions)
	}
}

func recommend(conflicts []Conflict, consistency float64) []string {
	var recs []string
	if consistency < 0.5 {
		recs = append(recs, "low consistency score: review source quality")
	}
	if len(conflicts) > 3 {
		recs = append(recs, "many conflicts detected: review the collection strategy")
	}
	for _, c := range conflicts {
		if c.Severity >= SeverityHigh {
			recs = append(recs, fmt.Sprintf("review %s conflict on field %q manually", c.Severity, c.Field))
		}
	}
	if len(recs) == 0 {
		recs = append(recs, "data quality is good, no action required")
	}
	return recs
}
