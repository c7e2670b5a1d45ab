package enrich

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/entigraph/enrichmesh/core"
)

func newSession(entity string) *core.SessionContext {
	return core.NewSessionContext("sess-1", entity, core.DefaultRunConfig())
}

func fixtureRegistry() *StaticRegistry {
	return NewStaticRegistry(map[string]RegistryRecord{
		"ACME": {Identifier: "552100554", Source: core.SourceRegistry, Confidence: 0.95},
	})
}

func fixtureWebsites() *StaticWebsiteLocator {
	return NewStaticWebsiteLocator(map[string]WebsiteRecord{
		"ACME": {URL: "https://www.acme.fr", Method: "fixture", Confidence: 0.95},
	})
}

func TestNormalizationAgent_ValidateInput(t *testing.T) {
	a := NewNormalizationAgent(NewRuleNormalizer(nil))

	assert.True(t, a.ValidateInput(newSession("Acme SA")))
	assert.False(t, a.ValidateInput(newSession("   ")))
	assert.False(t, a.ValidateInput(newSession("")))
}

func TestNormalizationAgent_Execute(t *testing.T) {
	a := NewNormalizationAgent(NewRuleNormalizer(map[string]string{"Acme SA": "552100554"}))
	sc := newSession("Acme SA")

	result, err := a.Execute(context.Background(), sc)
	require.NoError(t, err)
	require.True(t, result.Success)

	assert.Equal(t, "Acme SA", result.Data["original_name"])
	assert.Equal(t, "ACME", result.Data["normalized_name"])
	assert.Equal(t, "552100554", result.Data["siren"])
	assert.Equal(t, core.SourceAPI, result.Data["_source"])
	assert.Equal(t, 0.95, result.ConfidenceScore, "matched names take the match score")
}

func TestNormalizationAgent_NoMatchStillSucceeds(t *testing.T) {
	a := NewNormalizationAgent(NewRuleNormalizer(nil))
	sc := newSession("Obscure Ventures SARL")

	result, err := a.Execute(context.Background(), sc)
	require.NoError(t, err)
	require.True(t, result.Success, "an unmatched name is still a valid normalization")

	assert.Equal(t, "OBSCURE VENTURES", result.Data["normalized_name"])
	_, hasSiren := result.Data["siren"]
	assert.False(t, hasSiren)
}

func TestNormalizationAgent_CacheKeyVariesByEntityAndConfig(t *testing.T) {
	a := NewNormalizationAgent(NewRuleNormalizer(nil))

	k1 := a.CacheKey(newSession("Acme"))
	k2 := a.CacheKey(newSession("Globex"))
	assert.NotEqual(t, k1, k2)

	cfg := core.DefaultRunConfig()
	cfg.Extra = map[string]string{"locale": "fr"}
	other := core.NewSessionContext("sess-2", "Acme", cfg)
	assert.NotEqual(t, k1, a.CacheKey(other), "config fingerprint must split the cache")
}

func recordNormalization(t *testing.T, sc *core.SessionContext, data map[string]interface{}) {
	t.Helper()
	result, err := core.NewAgentResult(NormalizationAgentName, true, data, 0.9, time.Millisecond)
	require.NoError(t, err)
	sc.RecordResult(result)
}

func TestIdentificationAgent_ValidateInput(t *testing.T) {
	a := NewIdentificationAgent(fixtureRegistry(), fixtureWebsites())
	sc := newSession("Acme SA")

	assert.False(t, a.ValidateInput(sc), "no normalization payload yet")

	recordNormalization(t, sc, map[string]interface{}{"normalized_name": ""})
	assert.False(t, a.ValidateInput(sc), "empty normalized name")

	sc = newSession("Acme SA")
	recordNormalization(t, sc, map[string]interface{}{"normalized_name": "ACME"})
	assert.True(t, a.ValidateInput(sc))
}

func TestIdentificationAgent_ReusesUpstreamIdentifier(t *testing.T) {
	a := NewIdentificationAgent(fixtureRegistry(), fixtureWebsites())
	sc := newSession("Acme SA")
	recordNormalization(t, sc, map[string]interface{}{
		"normalized_name": "ACME",
		"original_name":   "Acme SA",
		"siren":           "552100554",
	})

	result, err := a.Execute(context.Background(), sc)
	require.NoError(t, err)
	require.True(t, result.Success)

	assert.Equal(t, "552100554", result.Data["siren"])
	assert.Equal(t, "from_normalization", result.Data["identification_method"])
	assert.Equal(t, "https://www.acme.fr", result.Data["url"])
	assert.Equal(t, true, result.Data["verified"])
	// min(identifier confidence 0.9, website confidence 0.95)
	assert.Equal(t, 0.9, result.ConfidenceScore)
}

func TestIdentificationAgent_SearchesRegistryWhenNoUpstreamIdentifier(t *testing.T) {
	a := NewIdentificationAgent(fixtureRegistry(), fixtureWebsites())
	sc := newSession("Acme SA")
	recordNormalization(t, sc, map[string]interface{}{
		"normalized_name": "ACME",
		"original_name":   "Acme SA",
	})

	result, err := a.Execute(context.Background(), sc)
	require.NoError(t, err)
	require.True(t, result.Success)

	assert.Equal(t, "552100554", result.Data["siren"])
	assert.Equal(t, "registry_search", result.Data["identification_method"])
	assert.Equal(t, core.SourceRegistry, result.Data["_source"])
}

func TestIdentificationAgent_NoRegistryMatchFails(t *testing.T) {
	a := NewIdentificationAgent(fixtureRegistry(), fixtureWebsites())
	sc := newSession("Globex")
	recordNormalization(t, sc, map[string]interface{}{"normalized_name": "GLOBEX"})

	result, err := a.Execute(context.Background(), sc)
	require.NoError(t, err, "a missing registry entry is an expected failure")
	assert.False(t, result.Success)
	assert.Zero(t, result.ConfidenceScore)
	assert.NotEmpty(t, result.Errors)
}

type noWebsite struct{}

func (noWebsite) Locate(context.Context, string, string) (WebsiteRecord, error) {
	return WebsiteRecord{}, ErrNoMatch
}

func TestIdentificationAgent_MissingWebsiteIsWarning(t *testing.T) {
	a := NewIdentificationAgent(fixtureRegistry(), noWebsite{})
	sc := newSession("Acme SA")
	recordNormalization(t, sc, map[string]interface{}{"normalized_name": "ACME", "siren": "552100554"})

	result, err := a.Execute(context.Background(), sc)
	require.NoError(t, err)
	require.True(t, result.Success, "the identifier alone is a success")

	assert.Equal(t, "", result.Data["url"])
	assert.Equal(t, false, result.Data["verified"])
	assert.NotEmpty(t, result.Warnings)
	assert.Equal(t, 0.9, result.ConfidenceScore, "website confidence only lowers when present")
}
