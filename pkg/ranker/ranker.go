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
	"fmt"
	"math"
	"sort"

	"github.com/kraklabs/codectx/pkg/types"
)

// Ranker computes the weighted multi-signal score for each candidate.
type Ranker struct {
	weights types.LTRWeights
}

// New builds a Ranker with the given weights. Pass types.DefaultLTRWeights()
// when no per-repo LTR override is on file.
func New(weights types.LTRWeights) *Ranker {
	return &Ranker{weights: weights}
}

// Rank scores every candidate against signals and sorts descending by
// score. It returns a permutation of the input slice — candidates are
// never added or dropped here, only reordered and annotated.
func (r *Ranker) Rank(candidates []types.Candidate, signals *types.Signals) []types.Candidate {
	if signals == nil {
		signals = types.NewSignals()
	}
	for i := range candidates {
		r.score(&candidates[i], signals)
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Score > candidates[j].Score
	})
	return candidates
}

func (r *Ranker) score(c *types.Candidate, signals *types.Signals) {
	path := c.Entity.FilePath

	semantic := 1 - clamp01(c.Distance)
	dependency := signals.Centrality[path]
	history := signals.History[path]
	recency := signals.Recency[path]

	score := r.weights.Semantic*semantic +
		r.weights.Dependency*dependency +
		r.weights.History*history +
		r.weights.Recency*recency

	reasons := c.Reasons // preserve whatever upstream stages (dedup, etc.) already attached
	if semantic != 0 {
		reasons = append(reasons, types.Reason{Type: "semantic", Score: semantic, Explanation: fmt.Sprintf("semantic similarity %.2f weighted %.2f", semantic, r.weights.Semantic)})
	}
	if dependency != 0 {
		reasons = append(reasons, types.Reason{Type: "dependency", Score: dependency, Explanation: fmt.Sprintf("dependency centrality %.2f weighted %.2f", dependency, r.weights.Dependency)})
	}
	if history != 0 {
		reasons = append(reasons, types.Reason{Type: "history", Score: history, Explanation: fmt.Sprintf("change history %.2f weighted %.2f", history, r.weights.History)})
	}
	if recency != 0 {
		reasons = append(reasons, types.Reason{Type: "recency", Score: recency, Explanation: fmt.Sprintf("recency %.2f weighted %.2f", recency, r.weights.Recency)})
	}

	c.Score = score
	c.Confidence = clampInt(int(math.Round(score*100)), 0, 100)
	c.Reasons = reasons
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
