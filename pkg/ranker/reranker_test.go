package ranker

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kraklabs/codectx/pkg/llm"
	"github.com/kraklabs/codectx/pkg/types"
)

// scoreProvider is a deterministic stand-in for a real LLM provider: it
// returns a fixed relevance score per candidate name, keyed by the
// "Candidate: <name>" text embedded in the pairwise prompt.
type scoreProvider struct {
	scores map[string]string
	failOn string
}

func (p *scoreProvider) Name() string { return "fake" }
func (p *scoreProvider) Models(_ context.Context) ([]string, error) { return []string{"fake"}, nil }
func (p *scoreProvider) Generate(_ context.Context, _ llm.GenerateRequest) (*llm.GenerateResponse, error) {
	return nil, fmt.Errorf("not used")
}
func (p *scoreProvider) Chat(_ context.Context, req llm.ChatRequest) (*llm.ChatResponse, error) {
	text := req.Messages[len(req.Messages)-1].Content
	for name, score := range p.scores {
		if name == p.failOn {
			continue
		}
		if containsName(text, name) {
			return &llm.ChatResponse{Message: llm.Message{Role: "assistant", Content: score}}, nil
		}
	}
	if p.failOn != "" && containsName(text, p.failOn) {
		return nil, fmt.Errorf("simulated provider failure")
	}
	return &llm.ChatResponse{Message: llm.Message{Role: "assistant", Content: "0.0"}}, nil
}

func containsName(haystack, name string) bool {
	return len(haystack) > 0 && len(name) > 0 && (len(haystack) >= len(name)) && (indexOf(haystack, name) >= 0)
}

func indexOf(haystack, needle string) int {
	for i := 0; i+len(needle) <= len(haystack); i++ {
		if haystack[i:i+len(needle)] == needle {
			return i
		}
	}
	return -1
}

func TestNoOpReranker_LeavesOrderUnchanged(t *testing.T) {
	r := NoOpReranker{}
	assert.False(t, r.Available())

	candidates := []types.Candidate{
		{Entity: types.Entity{ID: "a"}},
		{Entity: types.Entity{ID: "b"}},
	}
	out, err := r.Rerank(context.Background(), "query", candidates)
	require.NoError(t, err)
	assert.Equal(t, "a", out[0].Entity.ID)
	assert.Equal(t, "b", out[1].Entity.ID)
}

func TestCrossEncoderReranker_ReordersByPairwiseScore(t *testing.T) {
	provider := &scoreProvider{scores: map[string]string{
		"low":  "0.1",
		"high": "0.9",
	}}
	r := NewCrossEncoderReranker(provider, "fake-model", 10, nil)
	assert.True(t, r.Available())

	candidates := []types.Candidate{
		{Entity: types.Entity{ID: "1", Name: "low", FilePath: "x.py"}},
		{Entity: types.Entity{ID: "2", Name: "high", FilePath: "y.py"}},
	}
	out, err := r.Rerank(context.Background(), "query", candidates)
	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.Equal(t, "high", out[0].Entity.Name)
}

func TestCrossEncoderReranker_FallsBackOnScoringFailure(t *testing.T) {
	provider := &scoreProvider{scores: map[string]string{"bad": "0.5"}, failOn: "bad"}
	r := NewCrossEncoderReranker(provider, "fake-model", 10, nil)

	candidates := []types.Candidate{
		{Entity: types.Entity{ID: "1", Name: "bad", FilePath: "x.py"}},
		{Entity: types.Entity{ID: "2", Name: "fine", FilePath: "y.py"}},
	}
	out, err := r.Rerank(context.Background(), "query", candidates)
	require.NoError(t, err)
	assert.Equal(t, candidates, out, "a scoring failure should leave the original order untouched")
}

func TestCrossEncoderReranker_RespectsTopKBoundary(t *testing.T) {
	provider := &scoreProvider{scores: map[string]string{"first": "0.1", "second": "0.9"}}
	r := NewCrossEncoderReranker(provider, "fake-model", 1, nil)

	candidates := []types.Candidate{
		{Entity: types.Entity{ID: "1", Name: "first", FilePath: "x.py"}},
		{Entity: types.Entity{ID: "2", Name: "second", FilePath: "y.py"}},
	}
	out, err := r.Rerank(context.Background(), "query", candidates)
	require.NoError(t, err)
	// Only the head (topK=1) is scored; the tail passes through untouched.
	assert.Equal(t, "first", out[0].Entity.Name)
	assert.Equal(t, "second", out[1].Entity.Name)
}

func TestParseScore_ClampsAndRejectsGarbage(t *testing.T) {
	v, err := parseScore("1.5")
	require.NoError(t, err)
	assert.Equal(t, 1.0, v)

	_, err = parseScore("not a number")
	assert.Error(t, err)
}
