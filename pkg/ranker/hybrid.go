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
	"sort"
	"strings"

	"github.com/kraklabs/codectx/pkg/types"
)

// lexicalCodeWindow bounds how much of a candidate's code is scanned for
// term hits, matching spec.md's code[:4000] window.
const lexicalCodeWindow = 4000

// minTermLength excludes short, noisy terms (articles, operators) from
// the lexical overlap count: only terms longer than 2 characters count.
const minTermLength = 2

// DefaultAlpha is the default hybrid blend weight for the lexical signal.
const DefaultAlpha = 0.2

// HybridScorer blends semantic similarity with lexical term overlap
// before a candidate reaches the weighted Ranker.
type HybridScorer struct {
	Alpha float64
}

// NewHybridScorer builds a HybridScorer; an alpha outside [0,1] is
// replaced by DefaultAlpha.
func NewHybridScorer(alpha float64) *HybridScorer {
	if alpha < 0 || alpha > 1 {
		alpha = DefaultAlpha
	}
	return &HybridScorer{Alpha: alpha}
}

// Score blends each candidate's semantic score (derived from Distance)
// with a lexical overlap score against query, sorting descending by the
// blended value. It mutates Distance so downstream ranking sees the
// blended result as the candidate's effective semantic signal.
func (h *HybridScorer) Score(query string, candidates []types.Candidate) []types.Candidate {
	terms := queryTerms(query)

	for i := range candidates {
		c := &candidates[i]
		semantic := 1 - clamp01(c.Distance)
		lexical := lexicalOverlap(terms, c.Entity)
		hybrid := (1-h.Alpha)*semantic + h.Alpha*lexical
		c.Distance = 1 - clamp01(hybrid)
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Distance < candidates[j].Distance
	})
	return candidates
}

func queryTerms(query string) []string {
	fields := strings.Fields(strings.ToLower(query))
	terms := make([]string, 0, len(fields))
	for _, f := range fields {
		if len(f) > minTermLength {
			terms = append(terms, f)
		}
	}
	return terms
}

func lexicalOverlap(terms []string, e types.Entity) float64 {
	if len(terms) == 0 {
		return 0
	}
	code := e.Code
	if len(code) > lexicalCodeWindow {
		code = code[:lexicalCodeWindow]
	}
	haystack := strings.ToLower(e.Name + " " + e.FilePath + " " + code)

	var hits int
	for _, t := range terms {
		if strings.Contains(haystack, t) {
			hits++
		}
	}
	return float64(hits) / float64(len(terms))
}
