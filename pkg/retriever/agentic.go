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
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/kraklabs/codectx/pkg/llm"
	"github.com/kraklabs/codectx/pkg/types"
)

const maxSuggestionsPerIteration = 3
const maxChunksFromPathSuggestion = 3
const maxChunksFromSymbolSuggestion = 2
const maxBulletSuggestions = 10

// bulletLineRe matches "-", "*", or "1." style list-item prefixes. Lines
// that don't match this shape (non-English punctuation, prose without a
// list marker) yield no suggestions for that line — not an error, just
// nothing extracted from it.
var bulletLineRe = regexp.MustCompile(`^\s*(?:[-*]|\d+\.)\s+(.+)$`)

// parseBulletResponse extracts candidate file paths or symbol names from
// an LLM's plain-text bullet response, capped at maxBulletSuggestions.
func parseBulletResponse(text string) []string {
	var out []string
	for _, line := range strings.Split(text, "\n") {
		if len(out) >= maxBulletSuggestions {
			break
		}
		m := bulletLineRe.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		suggestion := strings.TrimSpace(m[1])
		if suggestion == "" {
			continue
		}
		out = append(out, suggestion)
	}
	return out
}

// looksLikePath reports whether a suggestion reads as a file path rather
// than a bare symbol name.
func looksLikePath(s string) bool {
	return strings.Contains(s, "/") && strings.Contains(s, ".")
}

// agenticExpand runs up to req.AgenticMaxIters rounds of LLM-suggested
// expansion. Each round asks the model for more relevant files/symbols
// given the current query and file list, fetches a few chunks for each
// suggestion, and merges them into the working set with a small
// promotion bias. An iteration that adds nothing new ends the loop.
func (r *Retriever) agenticExpand(ctx context.Context, req Request, queryVector []float32, current []types.Candidate, signals *types.Signals) ([]types.Candidate, error) {
	if r.llmProvider == nil {
		return current, nil
	}

	for iter := 0; iter < req.AgenticMaxIters; iter++ {
		files := currentFileList(current)
		resp, err := r.llmProvider.Chat(ctx, llm.ChatRequest{
			Messages: []llm.Message{
				{Role: "system", Content: "Given a code search query and the files already retrieved, suggest additional relevant file paths or function/class names as a bullet list. Reply with only the list."},
				{Role: "user", Content: fmt.Sprintf("Query: %s\n\nAlready retrieved files:\n%s", req.Query, strings.Join(files, "\n"))},
			},
		})
		if err != nil {
			r.logger.Warn("retriever.agentic.llm_failed", "error", err, "iteration", iter)
			break
		}

		suggestions := parseBulletResponse(resp.Message.Content)
		added, err := r.resolveSuggestions(ctx, req.RepoID, queryVector, suggestions)
		if err != nil {
			return nil, err
		}
		if len(added) == 0 {
			break
		}

		merged := mergeNew(current, added, agenticPromotionBoost)
		if len(merged) == len(current) {
			break // nothing actually new after dedup against the existing set
		}
		current = merged

		current = r.hybrid.Score(req.Query, current)
		current = r.ranker.Rank(current, signals)
		current = dedupChunks(current, r.sigStore)
		if len(current) > req.MaxChunks {
			current = current[:req.MaxChunks]
		}
	}
	return current, nil
}

func currentFileList(candidates []types.Candidate) []string {
	seen := make(map[string]bool)
	var files []string
	for _, c := range candidates {
		if !seen[c.Entity.FilePath] {
			seen[c.Entity.FilePath] = true
			files = append(files, c.Entity.FilePath)
		}
	}
	sort.Strings(files)
	return files
}

func (r *Retriever) resolveSuggestions(ctx context.Context, repoID string, queryVector []float32, suggestions []string) ([]types.Candidate, error) {
	var out []types.Candidate
	for i, s := range suggestions {
		if i >= maxSuggestionsPerIteration {
			break
		}
		if looksLikePath(s) {
			chunks, err := r.chunksFromFile(ctx, repoID, s, queryVector, maxChunksFromPathSuggestion)
			if err != nil {
				return nil, err
			}
			out = append(out, chunks...)
			continue
		}

		nodes := r.callGraph.NodesByLabel(s)
		if len(nodes) == 0 {
			continue
		}
		entities, err := r.store.GetByIDs(ctx, repoID, []string{nodes[0].ID})
		if err != nil {
			return nil, err
		}
		if len(entities) == 0 {
			continue
		}
		chunks, err := r.chunksFromFile(ctx, repoID, entities[0].FilePath, queryVector, maxChunksFromSymbolSuggestion)
		if err != nil {
			return nil, err
		}
		out = append(out, chunks...)
	}
	return out, nil
}

func (r *Retriever) chunksFromFile(ctx context.Context, repoID, filePath string, queryVector []float32, limit int) ([]types.Candidate, error) {
	entities, err := r.store.GetByFile(ctx, repoID, filePath)
	if err != nil {
		return nil, err
	}
	var chunks []types.Entity
	for _, e := range entities {
		if e.Type == types.EntityChunk && len(e.Embedding) > 0 {
			chunks = append(chunks, e)
		}
	}
	sort.Slice(chunks, func(i, j int) bool {
		return cosine(queryVector, chunks[i].Embedding) > cosine(queryVector, chunks[j].Embedding)
	})
	if len(chunks) > limit {
		chunks = chunks[:limit]
	}

	out := make([]types.Candidate, len(chunks))
	for i, c := range chunks {
		out[i] = types.Candidate{Entity: c, Distance: 1 - cosine(queryVector, c.Embedding)}
	}
	return out, nil
}

// mergeNew appends candidates from added that aren't already present (by
// chunk key) in base, after subtracting boost from their distance
// (floored at 0) as the agentic-promotion bias.
func mergeNew(base, added []types.Candidate, boost float64) []types.Candidate {
	present := make(map[string]bool, len(base))
	for _, c := range base {
		present[chunkKey(c.Entity)] = true
	}

	out := append([]types.Candidate(nil), base...)
	for _, c := range added {
		key := chunkKey(c.Entity)
		if present[key] {
			continue
		}
		present[key] = true
		c.Distance -= boost
		if c.Distance < 0 {
			c.Distance = 0
		}
		out = append(out, c)
	}
	return out
}

func cosine(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, na, nb float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (sqrt(na) * sqrt(nb))
}

func sqrt(v float64) float64 {
	if v <= 0 {
		return 0
	}
	x := v
	for range 20 {
		x = 0.5 * (x + v/x)
	}
	return x
}
