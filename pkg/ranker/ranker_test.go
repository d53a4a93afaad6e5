package ranker

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kraklabs/codectx/pkg/types"
)

func TestRanker_Rank_WeightedScoreAndReasons(t *testing.T) {
	r := New(types.DefaultLTRWeights())
	signals := types.NewSignals()
	signals.Centrality["a.py"] = 0.8
	signals.History["a.py"] = 0.5
	signals.Recency["a.py"] = 0.9

	candidates := []types.Candidate{
		{Entity: types.Entity{ID: "low", FilePath: "b.py"}, Distance: 0.9},
		{Entity: types.Entity{ID: "high", FilePath: "a.py"}, Distance: 0.1},
	}

	ranked := r.Rank(candidates, signals)
	require.Len(t, ranked, 2)
	assert.Equal(t, "high", ranked[0].Entity.ID)
	assert.Greater(t, ranked[0].Score, ranked[1].Score)
	assert.NotEmpty(t, ranked[0].Reasons)

	var sawDependency bool
	for _, reason := range ranked[0].Reasons {
		if reason.Type == "dependency" {
			sawDependency = true
		}
	}
	assert.True(t, sawDependency)
}

func TestRanker_Rank_ConfidenceClampedToPercentRange(t *testing.T) {
	r := New(types.LTRWeights{Semantic: 0.8, Dependency: 0.05, History: 0.05, Recency: 0.1})
	candidates := []types.Candidate{
		{Entity: types.Entity{ID: "perfect", FilePath: "x.py"}, Distance: 0},
	}
	ranked := r.Rank(candidates, types.NewSignals())
	assert.LessOrEqual(t, ranked[0].Confidence, 100)
	assert.GreaterOrEqual(t, ranked[0].Confidence, 0)
}

func TestRanker_Rank_IsAPermutationNoInsertOrDelete(t *testing.T) {
	r := New(types.DefaultLTRWeights())
	candidates := []types.Candidate{
		{Entity: types.Entity{ID: "a"}, Distance: 0.5},
		{Entity: types.Entity{ID: "b"}, Distance: 0.2},
		{Entity: types.Entity{ID: "c"}, Distance: 0.9},
	}
	ranked := r.Rank(candidates, types.NewSignals())
	assert.Len(t, ranked, 3)

	seen := make(map[string]bool)
	for _, c := range ranked {
		seen[c.Entity.ID] = true
	}
	assert.True(t, seen["a"] && seen["b"] && seen["c"])
}
