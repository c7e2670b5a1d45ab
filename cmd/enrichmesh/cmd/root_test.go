package cmd

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/entigraph/enrichmesh/config"
	"github.com/entigraph/enrichmesh/logging"
)

func TestModelFor_SelectsProviderByName(t *testing.T) {
	assert.Equal(t, "anthropic", modelFor("claude-3-5-sonnet-20241022").Info().Provider)
	assert.Equal(t, "openai", modelFor("gpt-4o").Info().Provider)
}

func TestNewRouter_BuildsRoutesFromConfig(t *testing.T) {
	cfg := &config.Config{Models: config.ModelConfig{
		Default:  "gpt-4o",
		Fallback: "gpt-4o-mini",
		PerTask:  map[string]string{"normalize_name": "claude-3-5-sonnet-20241022"},
	}}

	router := newRouter(cfg, logging.NoOpLogger{})

	assert.Equal(t, "claude-3-5-sonnet-20241022", router.ForTask("normalize_name").Info().Name)
	assert.Equal(t, "gpt-4o", router.ForTask("validate_consistency").Info().Name, "unrouted tasks use the default")
}
