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

package ranker

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strconv"
	"strings"

	"github.com/kraklabs/codectx/pkg/llm"
	"github.com/kraklabs/codectx/pkg/types"
)

// pairTextMaxCode bounds how much of a candidate's code is fed into the
// pairwise scoring prompt, matching spec.md's {code|snippet[:512]} pair.
const pairTextMaxCode = 512

// Reranker is the capability-set interface both rerank variants satisfy.
// Callers never branch on which concrete type they hold (a tagged union,
// not an inheritance hierarchy) — Available reports whether Rerank is
// worth calling at all.
type Reranker interface {
	Available() bool
	Rerank(ctx context.Context, query string, candidates []types.Candidate) ([]types.Candidate, error)
}

// NoOpReranker leaves candidate order untouched. It is the fallback
// variant used whenever a cross-encoder cannot load or is disabled by
// configuration, and is itself a valid Reranker — never a special case
// callers must detect.
type NoOpReranker struct{}

var _ Reranker = NoOpReranker{}

func (NoOpReranker) Available() bool { return false }

func (NoOpReranker) Rerank(_ context.Context, _ string, candidates []types.Candidate) ([]types.Candidate, error) {
	return candidates, nil
}

// CrossEncoderReranker re-scores the top N candidates against the query
// text using pairwise relevance judgments. No ONNX/sentence-transformers
// binding exists anywhere in the retrieved example pack, so the "cross
// encoder" here is the provider abstraction's chat model asked to return
// a single relevance score per pair — the same substitution sevigo's
// RAG pipeline makes when no embedding-tier reranker service is
// configured for a repo.
type CrossEncoderReranker struct {
	provider llm.Provider
	model    string
	topK     int
	logger   *slog.Logger
}

var _ Reranker = (*CrossEncoderReranker)(nil)

// NewCrossEncoderReranker builds a reranker over topK candidates (config
// reranker_topk). logger defaults to slog.Default() when nil.
func NewCrossEncoderReranker(provider llm.Provider, model string, topK int, logger *slog.Logger) *CrossEncoderReranker {
	if logger == nil {
		logger = slog.Default()
	}
	if topK <= 0 {
		topK = 20
	}
	return &CrossEncoderReranker{provider: provider, model: model, topK: topK, logger: logger}
}

func (r *CrossEncoderReranker) Available() bool {
	return r != nil && r.provider != nil
}

// Rerank scores the top r.topK candidates (by current order) against
// query and moves them to the front in score order; candidates beyond
// topK are left in place, appended unchanged. On any scoring failure the
// reranker falls back to the original order for the whole slice — a
// partial reorder would be more misleading than none.
func (r *CrossEncoderReranker) Rerank(ctx context.Context, query string, candidates []types.Candidate) ([]types.Candidate, error) {
	if !r.Available() || len(candidates) == 0 {
		return candidates, nil
	}

	head := candidates
	tail := []types.Candidate(nil)
	if len(candidates) > r.topK {
		head = candidates[:r.topK]
		tail = candidates[r.topK:]
	}

	type scored struct {
		c     types.Candidate
		score float64
	}
	out := make([]scored, len(head))
	for i, c := range head {
		score, err := r.scorePair(ctx, query, c)
		if err != nil {
			r.logger.Warn("reranker.pair.failed", "error", err, "entity_id", c.Entity.ID)
			return candidates, nil
		}
		out[i] = scored{c: c, score: score}
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].score > out[j].score })

	reranked := make([]types.Candidate, 0, len(candidates))
	for _, s := range out {
		reranked = append(reranked, s.c)
	}
	return append(reranked, tail...), nil
}

func (r *CrossEncoderReranker) scorePair(ctx context.Context, query string, c types.Candidate) (float64, error) {
	code := c.Entity.Code
	if len(code) > pairTextMaxCode {
		code = code[:pairTextMaxCode]
	}
	pairText := fmt.Sprintf("%s %s %s", c.Entity.Name, c.Entity.FilePath, code)

	resp, err := r.provider.Chat(ctx, llm.ChatRequest{
		Model: r.model,
		Messages: []llm.Message{
			{Role: "system", Content: "Rate how relevant the candidate is to the query on a scale from 0.0 to 1.0. Reply with only the number."},
			{Role: "user", Content: fmt.Sprintf("Query: %s\n\nCandidate: %s", query, pairText)},
		},
	})
	if err != nil {
		return 0, err
	}
	return parseScore(resp.Message.Content)
}

func parseScore(text string) (float64, error) {
	text = strings.TrimSpace(text)
	fields := strings.Fields(text)
	if len(fields) == 0 {
		return 0, fmt.Errorf("empty rerank score response")
	}
	v, err := strconv.ParseFloat(strings.Trim(fields[0], "., "), 64)
	if err != nil {
		return 0, fmt.Errorf("parse rerank score %q: %w", fields[0], err)
	}
	return clamp01(v), nil
}
