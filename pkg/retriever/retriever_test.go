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
	"github.com/kraklabs/codectx/pkg/signature"
	"github.com/kraklabs/codectx/pkg/types"
	"github.com/kraklabs/codectx/pkg/vectorstore"
)

// fakeEmbedder returns a fixed vector for any text, so tests are
// deterministic without a real embedding model.
type fakeEmbedder struct {
	vector []float32
}

func (f fakeEmbedder) EmbedText(_ context.Context, _ string) ([]float32, error) {
	return f.vector, nil
}

func (f fakeEmbedder) EmbedCodeEntity(_ context.Context, _ types.Entity) ([]float32, error) {
	return f.vector, nil
}

func chunkEntity(id, repoID, filePath, name string, start, end int, embedding []float32) types.Entity {
	return types.Entity{
		ID:        id,
		RepoID:    repoID,
		FilePath:  filePath,
		Type:      types.EntityChunk,
		Name:      name,
		Code:      "func " + name + "() {}",
		StartLine: start,
		EndLine:   end,
		ChunkID:   id,
		Embedding: embedding,
	}
}

func TestRetriever_Query_VectorModeReturnsRankedChunks(t *testing.T) {
	store := vectorstore.NewMemoryBackend()
	ctx := context.Background()
	require.NoError(t, store.Upsert(ctx, "repo1", []types.Entity{
		chunkEntity("c1", "repo1", "a.go", "Handler", 1, 10, []float32{1, 0, 0}),
		chunkEntity("c2", "repo1", "b.go", "Other", 1, 10, []float32{0, 1, 0}),
	}))

	r := New(Config{
		Store:    store,
		Embedder: fakeEmbedder{vector: []float32{1, 0, 0}},
	})

	result, err := r.Query(ctx, Request{RepoID: "repo1", Query: "Handler", Mode: ModeVector})
	require.NoError(t, err)
	require.NotEmpty(t, result.Chunks)
	assert.Equal(t, "c1", result.Chunks[0].Entity.ID)
	assert.Equal(t, "vector", result.Summary.RetrievalMode)
}

func TestRetriever_Query_CallgraphModeBoostsPreferredFile(t *testing.T) {
	store := vectorstore.NewMemoryBackend()
	ctx := context.Background()
	require.NoError(t, store.Upsert(ctx, "repo1", []types.Entity{
		{ID: "fn1", RepoID: "repo1", FilePath: "a.go", Type: types.EntityFunction, Name: "Handler", Embedding: []float32{1, 0, 0}},
		chunkEntity("c1", "repo1", "a.go", "Handler", 1, 10, []float32{0.9, 0.1, 0}),
		chunkEntity("c2", "repo1", "b.go", "Unrelated", 1, 10, []float32{0.9, 0.1, 0}),
	}))

	r := New(Config{
		Store:    store,
		Embedder: fakeEmbedder{vector: []float32{1, 0, 0}},
	})

	result, err := r.Query(ctx, Request{RepoID: "repo1", Query: "Handler", Mode: ModeCallgraph})
	require.NoError(t, err)
	require.NotEmpty(t, result.Chunks)
	assert.Equal(t, "a.go", result.Chunks[0].Entity.FilePath)
}

func TestRetriever_Query_CallgraphModeWalksCallGraphAndEmitsArtifact(t *testing.T) {
	store := vectorstore.NewMemoryBackend()
	ctx := context.Background()
	require.NoError(t, store.Upsert(ctx, "repo1", []types.Entity{
		{ID: "repo1:fn_login", RepoID: "repo1", FilePath: "auth.go", Type: types.EntityFunction, Name: "login", Embedding: []float32{1, 0, 0}},
		{ID: "repo1:fn_hash", RepoID: "repo1", FilePath: "hash.go", Type: types.EntityFunction, Name: "hash_pw", Embedding: []float32{0, 1, 0}},
		{ID: "repo1:fn_token", RepoID: "repo1", FilePath: "token.go", Type: types.EntityFunction, Name: "issue_token", Embedding: []float32{0, 0, 1}},
		chunkEntity("c1", "repo1", "auth.go", "login", 1, 10, []float32{1, 0, 0}),
	}))

	g := graph.NewGraph()
	g.AddNode("fn_login", "login", "function")
	g.AddNode("fn_hash", "hash_pw", "function")
	g.AddNode("fn_token", "issue_token", "function")
	g.AddEdge("fn_login", "fn_hash", "calls", 1)
	g.AddEdge("fn_login", "fn_token", "calls", 1)

	r := New(Config{
		Store:     store,
		Embedder:  fakeEmbedder{vector: []float32{1, 0, 0}},
		CallGraph: g,
	})

	result, err := r.Query(ctx, Request{
		RepoID:         "repo1",
		Query:          "login",
		Mode:           ModeCallgraph,
		CallGraphDepth: 2,
		RerankerTopK:   1,
	})
	require.NoError(t, err)
	require.Len(t, result.Artifacts, 1)
	artifact := result.Artifacts[0]
	assert.Contains(t, artifact, "login")
	assert.Contains(t, artifact, "hash_pw")
	assert.Contains(t, artifact, "issue_token")
	assert.Contains(t, artifact, "login -> hash_pw")
	assert.Contains(t, artifact, "login -> issue_token")

	found := false
	for _, c := range result.Chunks {
		if c.Entity.FilePath == "auth.go" {
			found = true
		}
	}
	assert.True(t, found, "expected the seed function's file to remain in the preferred-boosted results")
}

func TestRetriever_Query_SliceModeWalksCallGraph(t *testing.T) {
	store := vectorstore.NewMemoryBackend()
	ctx := context.Background()
	require.NoError(t, store.Upsert(ctx, "repo1", []types.Entity{
		{ID: "fn_root", RepoID: "repo1", FilePath: "a.go", Type: types.EntityFunction, Name: "Root"},
		{ID: "fn_child", RepoID: "repo1", FilePath: "b.go", Type: types.EntityFunction, Name: "Child"},
	}))

	g := graph.NewGraph()
	g.AddNode("fn_root", "Root", "function")
	g.AddNode("fn_child", "Child", "function")
	g.AddEdge("fn_root", "fn_child", "calls", 1)

	r := New(Config{
		Store:     store,
		Embedder:  fakeEmbedder{vector: []float32{1, 0, 0}},
		CallGraph: g,
	})

	result, err := r.Query(ctx, Request{
		RepoID:       "repo1",
		Query:        "Root",
		Mode:         ModeSlice,
		SeedFunction: "Root",
		SliceDepth:   1,
		SliceForward: true,
	})
	require.NoError(t, err)
	assert.Len(t, result.Chunks, 2)
	assert.Len(t, result.Artifacts, 1)
}

func TestRetriever_Query_SliceModeUnknownSeedErrors(t *testing.T) {
	store := vectorstore.NewMemoryBackend()
	r := New(Config{
		Store:     store,
		Embedder:  fakeEmbedder{vector: []float32{1, 0, 0}},
		CallGraph: graph.NewGraph(),
	})

	_, err := r.Query(context.Background(), Request{
		RepoID: "repo1", Query: "DoesNotExist", Mode: ModeSlice,
	})
	assert.Error(t, err)
}

func TestRetriever_Query_NeighborExpansionAddsSameFileChunks(t *testing.T) {
	store := vectorstore.NewMemoryBackend()
	ctx := context.Background()
	require.NoError(t, store.Upsert(ctx, "repo1", []types.Entity{
		chunkEntity("c1", "repo1", "a.go", "Handler", 1, 10, []float32{1, 0, 0}),
		chunkEntity("c2", "repo1", "a.go", "Neighbor", 11, 20, []float32{0, 0, 1}),
	}))

	r := New(Config{
		Store:    store,
		Embedder: fakeEmbedder{vector: []float32{1, 0, 0}},
	})

	result, err := r.Query(ctx, Request{
		RepoID:            "repo1",
		Query:             "Handler",
		Mode:              ModeVector,
		NeighborExpansion: true,
		MaxChunks:         5,
	})
	require.NoError(t, err)
	ids := make([]string, 0, len(result.Chunks))
	for _, c := range result.Chunks {
		ids = append(ids, c.Entity.ID)
	}
	assert.Contains(t, ids, "c1")
	assert.Contains(t, ids, "c2")
}

func TestRetriever_Query_DedupsDuplicateSignatures(t *testing.T) {
	store := vectorstore.NewMemoryBackend()
	ctx := context.Background()
	require.NoError(t, store.Upsert(ctx, "repo1", []types.Entity{
		chunkEntity("c1", "repo1", "a.go", "Handler", 1, 10, []float32{1, 0, 0}),
		chunkEntity("c2", "repo1", "b.go", "Handler", 1, 10, []float32{1, 0, 0}),
	}))

	sigStore := signature.NewStore()
	r := New(Config{Store: store, Embedder: fakeEmbedder{vector: []float32{1, 0, 0}}, SigStore: sigStore})

	result, err := r.Query(ctx, Request{RepoID: "repo1", Query: "Handler", Mode: ModeVector})
	require.NoError(t, err)
	assert.Len(t, result.Chunks, 1)
}

func TestSummarize_EmptyCandidatesReportsZero(t *testing.T) {
	s := summarize(nil, "vector")
	assert.Equal(t, 0, s.Total)
	assert.Equal(t, float64(0), s.AvgConfidence)
}
