package enrich

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/entigraph/enrichmesh/core"
	"github.com/entigraph/enrichmesh/logging"
)

// IdentificationAgentName is the collected_data key for identification output.
const IdentificationAgentName = "identification"

// IdentificationAgentOptions configures an IdentificationAgent.
type IdentificationAgentOptions struct {
	// SourceType is the provenance label stamped into the payload.
	// Defaults to "registry".
	SourceType string

	// Logger defaults to a no-op logger.
	Logger logging.Logger
}

// IdentificationAgent finds the entity's registry identifier and official
// website. It consumes the normalization payload: an identifier the
// normalizer already matched is reused at 0.9 confidence, otherwise the
// registry is searched.
type IdentificationAgent struct {
	core.BaseAgent

	registry   RegistrySearcher
	websites   WebsiteLocator
	sourceType string
	logger     logging.Logger
}

// NewIdentificationAgent creates the agent over its lookup strategies.
func NewIdentificationAgent(registry RegistrySearcher, websites WebsiteLocator, optFns ...func(o *IdentificationAgentOptions)) *IdentificationAgent {
	opts := IdentificationAgentOptions{
		SourceType: core.SourceRegistry,
		Logger:     logging.NoOpLogger{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &IdentificationAgent{
		BaseAgent:  core.NewBaseAgent(IdentificationAgentName),
		registry:   registry,
		websites:   websites,
		sourceType: opts.SourceType,
		logger:     opts.Logger,
	}
}

// ValidateInput requires a normalized name from the normalization agent.
func (a *IdentificationAgent) ValidateInput(sc *core.SessionContext) bool {
	data, ok := sc.DataFor(NormalizationAgentName)
	if !ok {
		return false
	}
	name, _ := data["normalized_name"].(string)
	return name != ""
}

// Execute resolves the identifier then the website. Missing registry
// entries are expected failures; only the website may be absent from a
// successful result.
func (a *IdentificationAgent) Execute(ctx context.Context, sc *core.SessionContext) (*core.AgentResult, error) {
	start := time.Now()

	normData, _ := sc.DataFor(NormalizationAgentName)
	normalizedName, _ := normData["normalized_name"].(string)
	originalName, _ := normData["original_name"].(string)

	var (
		identifier   string
		idConfidence float64
		method       string
	)
	if upstream, _ := normData["siren"].(string); upstream != "" {
		identifier = upstream
		idConfidence = 0.9
		method = "from_normalization"
	} else {
		rec, err := a.registry.SearchIdentifier(ctx, normalizedName)
		if errors.Is(err, ErrNoMatch) {
			return core.FailureResult(a.Name(), time.Since(start),
				fmt.Sprintf("no registry match for %q", normalizedName)), nil
		}
		if err != nil {
			return core.FailureResult(a.Name(), time.Since(start),
				fmt.Sprintf("registry search for %q: %v", normalizedName, err)), nil
		}
		identifier = rec.Identifier
		idConfidence = rec.Confidence
		method = "registry_search"
	}

	var warnings []string
	confidence := idConfidence
	url, urlMethod := "", ""
	site, err := a.websites.Locate(ctx, normalizedName, identifier)
	switch {
	case err == nil:
		url = site.URL
		urlMethod = site.Method
		if site.Confidence < confidence {
			confidence = site.Confidence
		}
	case errors.Is(err, ErrNoMatch):
		warnings = append(warnings, fmt.Sprintf("official website not found for %q", normalizedName))
	default:
		warnings = append(warnings, fmt.Sprintf("website lookup for %q: %v", normalizedName, err))
	}

	data := map[string]interface{}{
		"siren":                 identifier,
		"url":                   url,
		"normalized_name":       normalizedName,
		"original_name":         originalName,
		"identification_method": method,
		"url_method":            urlMethod,
		"verified":              identifier != "" && url != "",
		"_source":               a.sourceType,
	}

	a.logger.Info("identification completed",
		"session_id", sc.SessionID,
		"siren", identifier,
		"url", url,
		"method", method,
		"confidence", confidence)

	return core.NewAgentResult(a.Name(), identifier != "", data, confidence, time.Since(start),
		core.WithWarnings(warnings...),
		core.WithMetadata(map[string]interface{}{
			"siren_found": identifier != "",
			"url_found":   url != "",
		}))
}
