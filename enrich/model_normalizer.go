package enrich

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/entigraph/enrichmesh/logging"
	"github.com/entigraph/enrichmesh/model"
)

// TaskNormalizeName is the router task under which name-normalization
// completions run.
const TaskNormalizeName = "normalize_name"

// normalizeSystem instructs the model to answer with machine-readable JSON
// only; anything else falls through to the rule-based path.
const normalizeSystem = `You normalize raw company names into their canonical legal form.
Reply with a single JSON object and nothing else:
{"normalized_name": "<uppercase canonical name without legal form>",
 "variants": ["<lookup variants, canonical form first>"],
 "confidence": <0.0-1.0>}`

// Completer is the slice of the routing surface the normalizer needs. It is
// satisfied by *model.Router.
type Completer interface {
	Complete(ctx context.Context, task string, req model.Request) (*model.Response, error)
}

// ModelNormalizerOptions configures a ModelNormalizer.
type ModelNormalizerOptions struct {
	// Fallback normalizes when the model errors or answers unparseably, and
	// serves reference matching. Defaults to a RuleNormalizer without
	// reference data.
	Fallback Normalizer

	// Logger defaults to a no-op logger.
	Logger logging.Logger
}

// ModelNormalizer is a Normalizer backed by a routed language model, with a
// deterministic fallback so enrichment still completes when no provider is
// reachable. Reference matching always delegates to the fallback: matching
// is a lookup problem, not a language problem.
type ModelNormalizer struct {
	completer Completer
	fallback  Normalizer
	logger    logging.Logger
}

// NewModelNormalizer creates the normalizer over a task-routing completer.
func NewModelNormalizer(completer Completer, optFns ...func(o *ModelNormalizerOptions)) *ModelNormalizer {
	opts := ModelNormalizerOptions{
		Fallback: NewRuleNormalizer(nil),
		Logger:   logging.NoOpLogger{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &ModelNormalizer{
		completer: completer,
		fallback:  opts.Fallback,
		logger:    opts.Logger,
	}
}

// modelAnswer is the JSON shape the model is instructed to reply with.
type modelAnswer struct {
	NormalizedName string   `json:"normalized_name"`
	Variants       []string `json:"variants"`
	Confidence     float64  `json:"confidence"`
}

// Normalize implements Normalizer. Model errors and malformed answers are
// absorbed into the fallback path, never surfaced to the agent.
func (n *ModelNormalizer) Normalize(ctx context.Context, rawName string) (NormalizedName, error) {
	if strings.TrimSpace(rawName) == "" {
		return NormalizedName{}, ErrNoMatch
	}

	resp, err := n.completer.Complete(ctx, TaskNormalizeName, model.Request{
		System: normalizeSystem,
		Prompt: rawName,
	})
	if err != nil {
		n.logger.Warn("model normalization failed, using fallback", "name", rawName, "error", err)
		return n.fallback.Normalize(ctx, rawName)
	}

	answer, ok := parseAnswer(resp.Text)
	if !ok || strings.TrimSpace(answer.NormalizedName) == "" {
		n.logger.Warn("model answer unparseable, using fallback", "name", rawName, "answer", resp.Text)
		return n.fallback.Normalize(ctx, rawName)
	}

	normalized := strings.ToUpper(strings.TrimSpace(answer.NormalizedName))
	variants := answer.Variants
	if len(variants) == 0 {
		variants = []string{normalized}
	}
	confidence := answer.Confidence
	if confidence <= 0 || confidence > 1 {
		confidence = 0.7
	}

	return NormalizedName{
		Normalized: normalized,
		Variants:   variants,
		Confidence: confidence,
	}, nil
}

// Match implements Normalizer by delegating to the fallback's reference data.
func (n *ModelNormalizer) Match(ctx context.Context, variants []string) ([]Match, error) {
	return n.fallback.Match(ctx, variants)
}

// parseAnswer extracts the JSON object from a completion, tolerating code
// fences and prose around it.
func parseAnswer(text string) (modelAnswer, bool) {
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start < 0 || end <= start {
		return modelAnswer{}, false
	}

	var answer modelAnswer
	if err := json.Unmarshal([]byte(text[start:end+1]), &answer); err != nil {
		return modelAnswer{}, false
	}
	return answer, true
}
