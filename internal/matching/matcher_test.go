package matching

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMatchLabelsExactMatchScoresOne(t *testing.T) {
	matches := MatchLabels("Muro de albañilería", []string{"Muro de albañilería"}, 0.5, nil)
	require.Len(t, matches, 1)
	assert.Equal(t, 1.0, matches[0].Score)
}

func TestMatchLabelsSynonymHit(t *testing.T) {
	matches := MatchLabels("tabique interior", []string{"muro interior"}, 0.5, nil)
	require.Len(t, matches, 1)
	assert.InDelta(t, 0.95, matches[0].Score, 1e-9)
}

func TestMatchLabelsRejectsBelowThreshold(t *testing.T) {
	matches := MatchLabels("ventana de aluminio", []string{"gimnasio cubierto"}, 0.5, nil)
	assert.Empty(t, matches)
}

func TestMatchLabelsSortedDescending(t *testing.T) {
	matches := MatchLabels("losa de piso", []string{"losa de piso", "piso"}, 0.4, nil)
	require.GreaterOrEqual(t, len(matches), 1)
	for i := 1; i < len(matches); i++ {
		assert.GreaterOrEqual(t, matches[i-1].Score, matches[i].Score)
	}
}

func TestMatchLabelsLLMFallbackOnlyWhenNoneMatch(t *testing.T) {
	called := false
	llm := func(description string, candidates []string) (string, bool) {
		called = true
		return candidates[0], true
	}
	matches := MatchLabels("xyz completely unrelated text", []string{"gimnasio"}, 0.9, llm)
	require.True(t, called)
	require.Len(t, matches, 1)
	assert.Equal(t, "gimnasio", matches[0].Label)
}

func TestNormalizeCollapsesWhitespaceAndPunctuation(t *testing.T) {
	assert.Equal(t, "muro exterior", Normalize("  Muro,  EXTERIOR!! "))
}
