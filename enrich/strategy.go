// Package enrich holds the producer agents of an enrichment run: name
// normalization, registry identification and website location. Each agent
// delegates its domain lookups to a small strategy interface so deployments
// can plug real registries and search backends; deterministic in-memory
// implementations ship for tests and demos.
package enrich

import (
	"context"
	"errors"
)

// ErrNoMatch is the expected-failure sentinel for lookups that complete but
// find nothing. Agents convert it into an unsuccessful result, never into a
// returned error.
var ErrNoMatch = errors.New("enrich: no match")

// NormalizedName is a Normalizer's output: the canonical form, the lookup
// variants derived from it and the normalizer's own confidence.
type NormalizedName struct {
	Normalized string
	Variants   []string
	Confidence float64
}

// Match is one candidate record a normalizer matched against its reference
// data.
type Match struct {
	Name       string  `json:"name"`
	Identifier string  `json:"identifier"`
	Score      float64 `json:"score"`
}

// Normalizer canonicalizes raw entity names and matches the variants
// against reference data.
type Normalizer interface {
	Normalize(ctx context.Context, rawName string) (NormalizedName, error)

	// Match returns candidate records for the variants, best first.
	// ErrNoMatch when reference data holds none of them.
	Match(ctx context.Context, variants []string) ([]Match, error)
}

// RegistryRecord is an identifier lookup outcome from an authoritative
// registry.
type RegistryRecord struct {
	Identifier string
	Source     string
	Confidence float64
}

// RegistrySearcher finds an entity's registry identifier by name.
type RegistrySearcher interface {
	SearchIdentifier(ctx context.Context, name string) (RegistryRecord, error)
}

// WebsiteRecord is a located official website.
type WebsiteRecord struct {
	URL        string
	Method     string
	Confidence float64
}

// WebsiteLocator finds an entity's official website.
type WebsiteLocator interface {
	Locate(ctx context.Context, name, identifier string) (WebsiteRecord, error)
}
