// Copyright 2025 KrakLabs
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.
//
// SPDX-License-Identifier: Apache-2.0

package retriever

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kraklabs/codectx/pkg/graph"
	"github.com/kraklabs/codectx/pkg/llm"
	"github.com/kraklabs/codectx/pkg/types"
	"github.com/kraklabs/codectx/pkg/vectorstore"
)

func TestParseBulletResponse_ParsesDashStarAndNumberedLists(t *testing.T) {
	text := "Here are some suggestions:\n- pkg/auth/login.go\n* ValidateToken\n1. pkg/session/store.go\nnot a bullet line"
	got := parseBulletResponse(text)
	assert.Equal(t, []string{"pkg/auth/login.go", "ValidateToken", "pkg/session/store.go"}, got)
}

func TestParseBulletResponse_CapsAtMaxSuggestions(t *testing.T) {
	text := ""
	for i := 0; i < maxBulletSuggestions+5; i++ {
		text += "- item\n"
	}
	got := parseBulletResponse(text)
	assert.Len(t, got, maxBulletSuggestions)
}

func TestParseBulletResponse_NoBulletsReturnsEmpty(t *testing.T) {
	got := parseBulletResponse("This is just prose with no list markers at all.")
	assert.Empty(t, got)
}

func TestLooksLikePath_DistinguishesPathsFromSymbols(t *testing.T) {
	assert.True(t, looksLikePath("pkg/auth/login.go"))
	assert.False(t, looksLikePath("ValidateToken"))
}

func TestMergeNew_SkipsAlreadyPresentAndAppliesBoost(t *testing.T) {
	base := []types.Candidate{{Entity: types.Entity{ID: "c1", ChunkID: "c1"}, Distance: 0.5}}
	added := []types.Candidate{
		{Entity: types.Entity{ID: "c1", ChunkID: "c1"}, Distance: 0.1},
		{Entity: types.Entity{ID: "c2", ChunkID: "c2"}, Distance: 0.5},
	}

	merged := mergeNew(base, added, agenticPromotionBoost)
	require.Len(t, merged, 2)
	assert.Equal(t, "c2", merged[1].Entity.ID)
	assert.InDelta(t, 0.5-agenticPromotionBoost, merged[1].Distance, 1e-9)
}

func TestMergeNew_FloorsDistanceAtZero(t *testing.T) {
	base := []types.Candidate{}
	added := []types.Candidate{{Entity: types.Entity{ID: "c1", ChunkID: "c1"}, Distance: 0.01}}
	merged := mergeNew(base, added, agenticPromotionBoost)
	assert.Equal(t, float64(0), merged[0].Distance)
}

func TestCosine_IdenticalVectorsScoreOne(t *testing.T) {
	assert.InDelta(t, 1.0, cosine([]float32{1, 2, 3}, []float32{1, 2, 3}), 1e-9)
}

func TestCosine_MismatchedLengthScoresZero(t *testing.T) {
	assert.Equal(t, float64(0), cosine([]float32{1, 2}, []float32{1}))
}

// agenticFakeProvider always suggests the same file, so the expansion
// loop's termination depends only on whether that suggestion resolves
// to anything new.
type agenticFakeProvider struct {
	calls     int
	bulletRef string
}

func (p *agenticFakeProvider) Name() string                               { return "fake" }
func (p *agenticFakeProvider) Models(_ context.Context) ([]string, error) { return []string{"fake"}, nil }
func (p *agenticFakeProvider) Generate(_ context.Context, _ llm.GenerateRequest) (*llm.GenerateResponse, error) {
	return nil, nil
}

func (p *agenticFakeProvider) Chat(_ context.Context, _ llm.ChatRequest) (*llm.ChatResponse, error) {
	p.calls++
	return &llm.ChatResponse{Message: llm.Message{Role: "assistant", Content: "- " + p.bulletRef}}, nil
}

func TestRetriever_ResolveSuggestions_PathSuggestionPullsChunksFromFile(t *testing.T) {
	store := vectorstore.NewMemoryBackend()
	ctx := context.Background()
	require.NoError(t, store.Upsert(ctx, "repo1", []types.Entity{
		chunkEntity("c1", "repo1", "a.go", "Handler", 1, 10, []float32{1, 0, 0}),
		chunkEntity("c2", "repo1", "pkg/b.go", "Related", 1, 10, []float32{0.9, 0.1, 0}),
	}))

	r := New(Config{Store: store, Embedder: fakeEmbedder{vector: []float32{1, 0, 0}}, CallGraph: graph.NewGraph()})

	added, err := r.resolveSuggestions(ctx, "repo1", []float32{1, 0, 0}, []string{"pkg/b.go"})
	require.NoError(t, err)
	require.Len(t, added, 1)
	assert.Equal(t, "c2", added[0].Entity.ID)
}

func TestRetriever_ResolveSuggestions_UnresolvableSymbolYieldsNothing(t *testing.T) {
	store := vectorstore.NewMemoryBackend()
	r := New(Config{Store: store, Embedder: fakeEmbedder{vector: []float32{1, 0, 0}}, CallGraph: graph.NewGraph()})

	added, err := r.resolveSuggestions(context.Background(), "repo1", []float32{1, 0, 0}, []string{"NoSuchSymbol"})
	require.NoError(t, err)
	assert.Empty(t, added)
}

func TestRetriever_AgenticExpand_StopsWhenSuggestionAddsNothingNew(t *testing.T) {
	store := vectorstore.NewMemoryBackend()
	ctx := context.Background()
	require.NoError(t, store.Upsert(ctx, "repo1", []types.Entity{
		chunkEntity("c1", "repo1", "a.go", "Handler", 1, 10, []float32{1, 0, 0}),
	}))

	provider := &agenticFakeProvider{bulletRef: "a.go"} // no "/", so looked up as a symbol; the empty call graph resolves nothing
	r := New(Config{
		Store:       store,
		Embedder:    fakeEmbedder{vector: []float32{1, 0, 0}},
		LLMProvider: provider,
		CallGraph:   graph.NewGraph(),
	})

	result, err := r.Query(ctx, Request{
		RepoID:           "repo1",
		Query:            "Handler",
		Mode:             ModeVector,
		AgenticExpansion: true,
		AgenticMaxIters:  2,
	})
	require.NoError(t, err)
	assert.Len(t, result.Chunks, 1)
	assert.Equal(t, 1, provider.calls) // nothing new resolved, loop stops after the first round
}

func TestRetriever_AgenticExpand_NilProviderIsNoop(t *testing.T) {
	store := vectorstore.NewMemoryBackend()
	ctx := context.Background()
	require.NoError(t, store.Upsert(ctx, "repo1", []types.Entity{
		chunkEntity("c1", "repo1", "a.go", "Handler", 1, 10, []float32{1, 0, 0}),
	}))

	r := New(Config{Store: store, Embedder: fakeEmbedder{vector: []float32{1, 0, 0}}})
	result, err := r.Query(ctx, Request{RepoID: "repo1", Query: "Handler", Mode: ModeVector, AgenticExpansion: true})
	require.NoError(t, err)
	assert.Len(t, result.Chunks, 1)
}
