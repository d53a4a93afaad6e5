package ranker

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kraklabs/codectx/pkg/types"
)

func TestHybridScorer_BlendsLexicalOverlapIntoDistance(t *testing.T) {
	h := NewHybridScorer(0.5)
	candidates := []types.Candidate{
		{Entity: types.Entity{ID: "no-match", Name: "helper", FilePath: "x.py", Code: "irrelevant"}, Distance: 0.2},
		{Entity: types.Entity{ID: "match", Name: "parseConfig", FilePath: "config.py", Code: "def parseConfig(): pass"}, Distance: 0.2},
	}

	scored := h.Score("parse config settings", candidates)
	require.Len(t, scored, 2)
	assert.Equal(t, "match", scored[0].Entity.ID, "lexical overlap should pull the matching candidate ahead despite equal semantic distance")
}

func TestHybridScorer_DefaultAlphaOnInvalidInput(t *testing.T) {
	h := NewHybridScorer(5)
	assert.Equal(t, DefaultAlpha, h.Alpha)

	h2 := NewHybridScorer(-1)
	assert.Equal(t, DefaultAlpha, h2.Alpha)
}

func TestQueryTerms_ExcludesShortTerms(t *testing.T) {
	terms := queryTerms("to a or parse it now")
	assert.Contains(t, terms, "parse")
	assert.NotContains(t, terms, "to")
	assert.NotContains(t, terms, "or")
	assert.NotContains(t, terms, "it")
}
