package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTTL(t *testing.T) {
	tests := []struct {
		in   string
		want time.Duration
	}{
		{"30s", 30 * time.Second},
		{"5m", 5 * time.Minute},
		{"12h", 12 * time.Hour},
		{"7d", 7 * 24 * time.Hour},
		{"90", 90 * time.Second}, // bare integers are seconds
	}
	for _, tt := range tests {
		got, err := ParseTTL(tt.in)
		require.NoErrorf(t, err, "ParseTTL(%q)", tt.in)
		assert.Equalf(t, tt.want, got, "ParseTTL(%q)", tt.in)
	}
}

func TestParseTTL_Invalid(t *testing.T) {
	for _, in := range []string{"", "abc", "-5m", "0s", "0"} {
		_, err := ParseTTL(in)
		assert.Errorf(t, err, "ParseTTL(%q) must fail", in)
	}
}

func TestDefaultPolicies(t *testing.T) {
	policies := DefaultPolicies()

	require.Contains(t, policies, CategoryAgentResult)
	assert.Equal(t, 12*time.Hour, policies[CategoryAgentResult].TTL)
	assert.True(t, policies[CategoryAgentResult].Compress)

	assert.False(t, policies[CategoryValidation].Compress)

	def := DefaultPolicy()
	assert.Equal(t, time.Hour, def.TTL)
	assert.Equal(t, 1024, def.CompressionThreshold)
}
