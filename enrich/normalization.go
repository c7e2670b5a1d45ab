package enrich

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/entigraph/enrichmesh/core"
	"github.com/entigraph/enrichmesh/logging"
)

// NormalizationAgentName is the collected_data key for normalization output.
const NormalizationAgentName = "normalization"

// NormalizationAgentOptions configures a NormalizationAgent.
type NormalizationAgentOptions struct {
	// SourceType is the provenance label stamped into the payload for
	// conflict resolution. Defaults to "api".
	SourceType string

	// Logger defaults to a no-op logger.
	Logger logging.Logger
}

// NormalizationAgent canonicalizes the session's entity name and matches it
// against reference data. It is the root of the task graph; everything else
// consumes its normalized_name. Results are memoized: the same entity under
// the same run fingerprint never re-normalizes.
type NormalizationAgent struct {
	core.BaseAgent

	normalizer Normalizer
	sourceType string
	logger     logging.Logger
}

// NewNormalizationAgent creates the agent over a Normalizer strategy.
func NewNormalizationAgent(normalizer Normalizer, optFns ...func(o *NormalizationAgentOptions)) *NormalizationAgent {
	opts := NormalizationAgentOptions{
		SourceType: core.SourceAPI,
		Logger:     logging.NoOpLogger{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &NormalizationAgent{
		BaseAgent:  core.NewBaseAgent(NormalizationAgentName),
		normalizer: normalizer,
		sourceType: opts.SourceType,
		logger:     opts.Logger,
	}
}

// ValidateInput requires a non-blank entity name.
func (a *NormalizationAgent) ValidateInput(sc *core.SessionContext) bool {
	return strings.TrimSpace(sc.EntityName) != ""
}

// CacheKey memoizes by agent, entity and run fingerprint.
func (a *NormalizationAgent) CacheKey(sc *core.SessionContext) string {
	return core.AgentCacheKey(a.Name(), sc)
}

// Execute normalizes the entity name, derives variants and matches them.
// A name the normalizer cannot handle is an expected failure, not an error.
func (a *NormalizationAgent) Execute(ctx context.Context, sc *core.SessionContext) (*core.AgentResult, error) {
	start := time.Now()

	norm, err := a.normalizer.Normalize(ctx, sc.EntityName)
	if err != nil {
		return core.FailureResult(a.Name(), time.Since(start),
			fmt.Sprintf("normalize %q: %v", sc.EntityName, err)), nil
	}

	data := map[string]interface{}{
		"original_name":   sc.EntityName,
		"normalized_name": norm.Normalized,
		"variants":        norm.Variants,
		"_source":         a.sourceType,
	}
	confidence := norm.Confidence

	matches, err := a.normalizer.Match(ctx, norm.Variants)
	switch {
	case err == nil && len(matches) > 0:
		best := matches[0]
		data["matched_entities"] = matches
		data["best_match"] = best
		data["siren"] = best.Identifier
		confidence = best.Score
	case err != nil && !errors.Is(err, ErrNoMatch):
		return core.FailureResult(a.Name(), time.Since(start),
			fmt.Sprintf("match %q: %v", norm.Normalized, err)), nil
	}

	a.logger.Info("normalization completed",
		"session_id", sc.SessionID,
		"original_name", sc.EntityName,
		"normalized_name", norm.Normalized,
		"variants", len(norm.Variants),
		"matched", len(matches) > 0,
		"confidence", confidence)

	return core.NewAgentResult(a.Name(), true, data, confidence, time.Since(start),
		core.WithMetadata(map[string]interface{}{
			"variants_found": len(norm.Variants),
			"matches_found":  len(matches),
		}))
}
