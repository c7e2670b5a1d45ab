package enrich

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/entigraph/enrichmesh/model"
)

func newModelNormalizer(t *testing.T) (*ModelNormalizer, *model.MockModel) {
	t.Helper()
	mock := model.NewMockModel("gpt-4o", "openai")
	router := model.NewRouter(mock)
	return NewModelNormalizer(router), mock
}

func TestModelNormalizer_ParsesModelAnswer(t *testing.T) {
	n, mock := newModelNormalizer(t)
	mock.AddResponse("Acme SA", `{"normalized_name":"acme","variants":["ACME","ACME SA"],"confidence":0.9}`)

	got, err := n.Normalize(context.Background(), "Acme SA")
	require.NoError(t, err)
	assert.Equal(t, "ACME", got.Normalized, "canonical form is uppercased")
	assert.Equal(t, []string{"ACME", "ACME SA"}, got.Variants)
	assert.Equal(t, 0.9, got.Confidence)
	assert.Equal(t, []string{"Acme SA"}, mock.Calls())
}

func TestModelNormalizer_ToleratesFencedAnswer(t *testing.T) {
	n, mock := newModelNormalizer(t)
	mock.AddResponse("Globex Corp", "```json\n{\"normalized_name\":\"GLOBEX\",\"confidence\":0.8}\n```")

	got, err := n.Normalize(context.Background(), "Globex Corp")
	require.NoError(t, err)
	assert.Equal(t, "GLOBEX", got.Normalized)
	assert.Equal(t, []string{"GLOBEX"}, got.Variants, "missing variants default to the canonical form")
}

func TestModelNormalizer_FallsBackOnModelError(t *testing.T) {
	n, mock := newModelNormalizer(t)
	mock.Fail(errors.New("api unreachable"))

	got, err := n.Normalize(context.Background(), "Acme SA")
	require.NoError(t, err)
	assert.Equal(t, "ACME", got.Normalized, "rule normalization takes over")
}

func TestModelNormalizer_FallsBackOnUnparseableAnswer(t *testing.T) {
	n, mock := newModelNormalizer(t)
	mock.AddResponse("Acme SA", "Sure! The normalized name is ACME.")

	got, err := n.Normalize(context.Background(), "Acme SA")
	require.NoError(t, err)
	assert.Equal(t, "ACME", got.Normalized)
}

func TestModelNormalizer_ClampsBadConfidence(t *testing.T) {
	n, mock := newModelNormalizer(t)
	mock.AddResponse("Acme SA", `{"normalized_name":"ACME","variants":["ACME"],"confidence":7}`)

	got, err := n.Normalize(context.Background(), "Acme SA")
	require.NoError(t, err)
	assert.Equal(t, 0.7, got.Confidence)
}

func TestModelNormalizer_EmptyNameIsNoMatch(t *testing.T) {
	n, _ := newModelNormalizer(t)

	_, err := n.Normalize(context.Background(), "   ")
	assert.ErrorIs(t, err, ErrNoMatch)
}

func TestModelNormalizer_MatchDelegatesToFallback(t *testing.T) {
	mock := model.NewMockModel("gpt-4o", "openai")
	router := model.NewRouter(mock)
	n := NewModelNormalizer(router, func(o *ModelNormalizerOptions) {
		o.Fallback = NewRuleNormalizer(map[string]string{"ACME": "552100554"})
	})

	matches, err := n.Match(context.Background(), []string{"ACME"})
	require.NoError(t, err)
	require.NotEmpty(t, matches)
	assert.Equal(t, "552100554", matches[0].Identifier)
	assert.Empty(t, mock.Calls(), "matching never consults the model")
}
