package reconcile

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/entigraph/enrichmesh/core"
)

func TestResolver_IdentifierBySourcePriority(t *testing.T) {
	r := NewResolver(nil)

	res, ok := r.Resolve("siren", []Candidate{
		{Source: "website", SourceType: core.SourceWeb, Value: "123456789", Confidence: 0.95},
		{Source: "identification", SourceType: core.SourceRegistry, Value: "552100554", Confidence: 0.6},
	})
	require.True(t, ok)

	// The registry wins on priority even against a higher self-reported confidence.
	assert.Equal(t, MethodSourcePriority, res.Method)
	assert.Equal(t, "552100554", res.ResolvedValue)
	assert.Equal(t, "identification", res.ChosenSource)
	assert.Equal(t, 0.9, res.Confidence)
}

func TestResolver_URLPrefersHTTPS(t *testing.T) {
	r := NewResolver(nil)

	res, ok := r.Resolve("url", []Candidate{
		{Source: "a", SourceType: core.SourceRegistry, Value: "http://acme.fr"},
		{Source: "b", SourceType: core.SourceWeb, Value: "https://acme.fr"},
	})
	require.True(t, ok)
	assert.Equal(t, MethodURLPreference, res.Method)
	assert.Equal(t, "https://acme.fr", res.ResolvedValue)
}

func TestResolver_URLFallsBackToPriority(t *testing.T) {
	r := NewResolver(nil)

	res, ok := r.Resolve("url", []Candidate{
		{Source: "a", SourceType: core.SourceWeb, Value: "http://acme.fr"},
		{Source: "b", SourceType: core.SourceRegistry, Value: "http://acme.com"},
	})
	require.True(t, ok)
	assert.Equal(t, MethodSourcePriority, res.Method)
	assert.Equal(t, "http://acme.com", res.ResolvedValue)
}

func TestResolver_NamePrefersLegalForm(t *testing.T) {
	r := NewResolver(nil)

	res, ok := r.Resolve("name", []Candidate{
		{Source: "a", SourceType: core.SourceRegistry, Value: "Acme"},
		{Source: "b", SourceType: core.SourceWeb, Value: "Acme SA"},
	})
	require.True(t, ok)
	assert.Equal(t, MethodNamePreference, res.Method)
	assert.Equal(t, "Acme SA", res.ResolvedValue)
}

func TestResolver_GenericByConfidenceWithPriorityTieBreak(t *testing.T) {
	r := NewResolver(nil)

	res, ok := r.Resolve("employee_count", []Candidate{
		{Source: "a", SourceType: core.SourceWeb, Value: 120, Confidence: 0.6},
		{Source: "b", SourceType: core.SourceManual, Value: 140, Confidence: 0.9},
	})
	require.True(t, ok)
	assert.Equal(t, MethodConfidence, res.Method)
	assert.Equal(t, 140, res.ResolvedValue)

	// Equal confidence: the higher priority source wins.
	res, ok = r.Resolve("employee_count", []Candidate{
		{Source: "a", SourceType: core.SourceManual, Value: 120, Confidence: 0.7},
		{Source: "b", SourceType: core.SourceAPI, Value: 140, Confidence: 0.7},
	})
	require.True(t, ok)
	assert.Equal(t, 140, res.ResolvedValue)
}

func TestResolver_Deterministic(t *testing.T) {
	r := NewResolver(nil)
	candidates := []Candidate{
		{Source: "a", SourceType: core.SourceWeb, Value: "x", Confidence: 0.5},
		{Source: "b", SourceType: core.SourceWeb, Value: "y", Confidence: 0.5},
	}

	first, ok := r.Resolve("free_text", candidates)
	require.True(t, ok)
	for i := 0; i < 10; i++ {
		again, ok := r.Resolve("free_text", candidates)
		require.True(t, ok)
		assert.Equal(t, first, again, "resolution must be idempotent")
	}
}

func TestResolver_NoCandidates(t *testing.T) {
	r := NewResolver(nil)
	_, ok := r.Resolve("siren", nil)
	assert.False(t, ok)
}

func TestHasLegalSuffix(t *testing.T) {
	assert.True(t, hasLegalSuffix("ACME SA"))
	assert.True(t, hasLegalSuffix("Acme Industries Inc."))
	assert.True(t, hasLegalSuffix("Globex GmbH"))
	assert.False(t, hasLegalSuffix("Acme"))
	assert.False(t, hasLegalSuffix("Saline Works")) // "SA" must be a standalone token
}
