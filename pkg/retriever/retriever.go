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

// Package retriever implements the hybrid retrieval core: it turns a
// natural-language or call-graph query into a ranked, deduplicated set
// of code chunks.
//
// Pipeline order (fixed from the point candidates are normalized
// onward, so results are reproducible given the same index state):
//
//  1. Gather base candidates for the requested Mode (vector search,
//     callgraph-promoted vector search, or a call-graph slice walk).
//  2. Normalize raw backend scores to a bounded Distance.
//  3. Drop candidates whose file matches an excluded Role (test/
//     generated/vendor), if Request.ExcludeRoles is set.
//  4. Boost candidates whose file is in the Mode's preferred-file set.
//  5. Hybrid lexical/semantic rerank (pkg/ranker.HybridScorer).
//  6. Cross-encoder rerank, if configured and available.
//  7. Weighted multi-signal ranking (pkg/ranker.Ranker).
//  8. Dedup by (name, code) signature.
//  9. Truncate to MaxChunks.
//  10. Optional same-file neighbor expansion.
//  11. Optional bounded agentic (LLM-driven) expansion.
package retriever

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/kraklabs/codectx/pkg/embed"
	"github.com/kraklabs/codectx/pkg/graph"
	"github.com/kraklabs/codectx/pkg/llm"
	"github.com/kraklabs/codectx/pkg/ranker"
	"github.com/kraklabs/codectx/pkg/signature"
	"github.com/kraklabs/codectx/pkg/types"
	"github.com/kraklabs/codectx/pkg/vectorstore"
)

// Retriever holds every dependency the pipeline needs: a vector index,
// an embedder for turning queries into vectors, the ranking stages, the
// call graph for callgraph/slice modes, and (optionally) an LLM
// provider for agentic expansion.
type Retriever struct {
	store     vectorstore.Backend
	embedder  embed.Embedder
	hybrid    *ranker.HybridScorer
	reranker  ranker.Reranker
	ranker    *ranker.Ranker
	sigStore  *signature.Store
	callGraph *graph.Graph

	llmProvider llm.Provider // nil disables agentic expansion regardless of Request.AgenticExpansion
	logger      *slog.Logger
}

// Config collects the Retriever's dependencies.
type Config struct {
	Store     vectorstore.Backend
	Embedder  embed.Embedder
	Reranker  ranker.Reranker // nil defaults to ranker.NoOpReranker{}
	SigStore  *signature.Store
	CallGraph *graph.Graph

	LLMProvider llm.Provider // optional, enables agentic expansion
	Logger      *slog.Logger
}

// New builds a Retriever from cfg, filling in safe defaults for any
// dependency that has a reasonable zero-dependency fallback.
func New(cfg Config) *Retriever {
	r := &Retriever{
		store:       cfg.Store,
		embedder:    cfg.Embedder,
		hybrid:      ranker.NewHybridScorer(ranker.DefaultAlpha),
		reranker:    cfg.Reranker,
		ranker:      ranker.New(types.DefaultLTRWeights()),
		sigStore:    cfg.SigStore,
		callGraph:   cfg.CallGraph,
		llmProvider: cfg.LLMProvider,
		logger:      cfg.Logger,
	}
	if r.reranker == nil {
		r.reranker = ranker.NoOpReranker{}
	}
	if r.sigStore == nil {
		r.sigStore = signature.NewStore()
	}
	if r.callGraph == nil {
		r.callGraph = graph.NewGraph()
	}
	if r.logger == nil {
		r.logger = slog.Default()
	}
	return r
}

// Query runs the full retrieval pipeline for req.
func (r *Retriever) Query(ctx context.Context, req Request) (*Result, error) {
	req = req.withDefaults()
	if req.Weights == nil {
		w := types.DefaultLTRWeights()
		req.Weights = &w
		r.ranker = ranker.New(w)
	} else {
		r.ranker = ranker.New(*req.Weights)
	}

	queryVector, err := r.embedder.EmbedText(ctx, req.Query)
	if err != nil {
		return nil, fmt.Errorf("retriever: embed query: %w", err)
	}

	var candidates []types.Candidate
	var preferredFiles map[string]bool
	var artifacts []string

	switch req.Mode {
	case ModeSlice:
		candidates, artifacts, err = r.sliceCandidates(ctx, req, queryVector)
	case ModeCallgraph:
		candidates, preferredFiles, artifacts, err = r.callgraphCandidates(ctx, req, queryVector)
	default:
		candidates, err = r.vectorCandidates(ctx, req, queryVector)
	}
	if err != nil {
		return nil, err
	}

	candidates = filterByRole(candidates, req.ExcludeRoles)

	if preferredFiles != nil {
		for i := range candidates {
			if preferredFiles[candidates[i].Entity.FilePath] {
				candidates[i].Distance -= preferredFileDistanceBoost
				if candidates[i].Distance < 0 {
					candidates[i].Distance = 0
				}
				candidates[i].Reasons = append(candidates[i].Reasons, types.Reason{
					Type:        "preferred_file",
					Score:       preferredFileDistanceBoost,
					Explanation: "File reached via call-graph seed",
				})
			}
		}
	}

	candidates = r.hybrid.Score(req.Query, candidates)

	if r.reranker.Available() {
		candidates, err = r.reranker.Rerank(ctx, req.Query, candidates)
		if err != nil {
			return nil, fmt.Errorf("retriever: rerank: %w", err)
		}
	}

	signals := types.NewSignals()
	candidates = r.ranker.Rank(candidates, signals)
	candidates = dedupChunks(candidates, r.sigStore)

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Score > candidates[j].Score
	})
	if len(candidates) > req.MaxChunks {
		candidates = candidates[:req.MaxChunks]
	}

	if req.NeighborExpansion {
		candidates, err = r.expandNeighbors(ctx, req.RepoID, candidates, req.MaxChunks)
		if err != nil {
			return nil, fmt.Errorf("retriever: expand neighbors: %w", err)
		}
	}

	if req.AgenticExpansion {
		candidates, err = r.agenticExpand(ctx, req, queryVector, candidates, signals)
		if err != nil {
			return nil, fmt.Errorf("retriever: agentic expand: %w", err)
		}
	}

	return &Result{
		Chunks:    candidates,
		Summary:   summarize(candidates, string(req.Mode)),
		Artifacts: artifacts,
	}, nil
}

func (r *Retriever) vectorCandidates(ctx context.Context, req Request, queryVector []float32) ([]types.Candidate, error) {
	topK := req.RerankerTopK
	if req.MaxChunks > topK {
		topK = req.MaxChunks
	}
	raw, err := r.store.Query(ctx, req.RepoID, queryVector, topK, []types.EntityType{types.EntityChunk})
	if err != nil {
		return nil, fmt.Errorf("retriever: vector query: %w", err)
	}
	return normalizeAll(raw), nil
}

// callgraphCandidates runs a function-level vector search to find the
// functions most relevant to the query, walks the call graph forward
// (callees) from each of them up to CallGraphDepth hops, then retrieves
// chunks as usual with the files touched by that walk marked for a
// distance boost. The walked nodes/edges are rendered into a call-graph
// artifact.
func (r *Retriever) callgraphCandidates(ctx context.Context, req Request, queryVector []float32) ([]types.Candidate, map[string]bool, []string, error) {
	funcMatches, err := r.store.Query(ctx, req.RepoID, queryVector, req.RerankerTopK, []types.EntityType{types.EntityFunction})
	if err != nil {
		return nil, nil, nil, fmt.Errorf("retriever: callgraph function query: %w", err)
	}

	prefix := req.RepoID + ":"
	idSet := make(map[string]bool)
	for _, m := range funcMatches {
		nodeID := strings.TrimPrefix(m.Entity.ID, prefix)
		if !r.callGraph.HasNode(nodeID) {
			continue
		}
		idSet[nodeID] = true
		for _, id := range r.callGraph.Slice(nodeID, req.CallGraphDepth, true) {
			idSet[id] = true
		}
	}

	ids := make([]string, 0, len(idSet))
	for id := range idSet {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	preferred := make(map[string]bool, len(funcMatches))
	for _, m := range funcMatches {
		preferred[m.Entity.FilePath] = true
	}
	if len(ids) > 0 {
		prefixedIDs := make([]string, len(ids))
		for i, id := range ids {
			prefixedIDs[i] = prefix + id
		}
		walked, err := r.store.GetByIDs(ctx, req.RepoID, prefixedIDs)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("retriever: resolve call-graph walk: %w", err)
		}
		for _, e := range walked {
			preferred[e.FilePath] = true
		}
	}

	chunks, err := r.vectorCandidates(ctx, req, queryVector)
	if err != nil {
		return nil, nil, nil, err
	}

	var artifacts []string
	if len(ids) > 0 {
		sub := r.callGraph.Subgraph(ids)
		artifacts = []string{renderCallGraphArtifact(sub, req.CallGraphDepth)}
	}
	return chunks, preferred, artifacts, nil
}

// renderCallGraphArtifact renders a walked call-graph subgraph as a short
// text block naming its nodes and "caller -> callee" edges.
func renderCallGraphArtifact(sub types.NamedGraph, depth int) string {
	labels := make([]string, 0, len(sub.Nodes))
	labelByID := make(map[string]string, len(sub.Nodes))
	for _, n := range sub.Nodes {
		labels = append(labels, n.Label)
		labelByID[n.ID] = n.Label
	}

	edges := make([]string, 0, len(sub.Edges))
	for _, e := range sub.Edges {
		edges = append(edges, fmt.Sprintf("%s -> %s", labelByID[e.Source], labelByID[e.Target]))
	}

	return fmt.Sprintf("callgraph(depth=%d): nodes=[%s] edges=[%s]",
		depth, strings.Join(labels, ", "), strings.Join(edges, ", "))
}

// sliceCandidates resolves the seed function (SeedFunction, or Query if
// unset) to graph nodes, walks the call graph from each, and resolves
// the walked node IDs back to full entities via the store. A text
// rendering of the walked node IDs is returned as an artifact.
func (r *Retriever) sliceCandidates(ctx context.Context, req Request, queryVector []float32) ([]types.Candidate, []string, error) {
	seed := req.SeedFunction
	if seed == "" {
		seed = req.Query
	}

	seedNodes := r.callGraph.NodesByLabel(seed)
	if len(seedNodes) == 0 {
		return nil, nil, fmt.Errorf("retriever: no call-graph node labeled %q", seed)
	}

	idSet := make(map[string]bool)
	for _, n := range seedNodes {
		idSet[n.ID] = true
		for _, id := range r.callGraph.Slice(n.ID, req.SliceDepth, req.SliceForward) {
			idSet[id] = true
		}
	}

	ids := make([]string, 0, len(idSet))
	for id := range idSet {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	entities, err := r.store.GetByIDs(ctx, req.RepoID, ids)
	if err != nil {
		return nil, nil, fmt.Errorf("retriever: resolve slice nodes: %w", err)
	}

	candidates := make([]types.Candidate, 0, len(entities))
	for _, e := range entities {
		dist := 1.0
		if len(e.Embedding) == len(queryVector) && len(queryVector) > 0 {
			dist = 1 - cosine(queryVector, e.Embedding)
		}
		candidates = append(candidates, types.Candidate{Entity: e, Distance: dist})
	}

	direction := "callers"
	if req.SliceForward {
		direction = "callees"
	}
	artifact := fmt.Sprintf("slice(seed=%s, depth=%d, direction=%s): %d nodes [%s]", seed, req.SliceDepth, direction, len(ids), strings.Join(ids, ", "))
	return candidates, []string{artifact}, nil
}

func summarize(candidates []types.Candidate, mode string) Summary {
	s := Summary{Total: len(candidates), RetrievalMode: mode}
	if len(candidates) == 0 {
		return s
	}
	total := 0
	for _, c := range candidates {
		total += c.Confidence
	}
	s.AvgConfidence = float64(total) / float64(len(candidates))
	return s
}
