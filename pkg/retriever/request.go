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

import "github.com/kraklabs/codectx/pkg/types"

// Mode selects how the Retriever gathers its initial candidate set.
type Mode string

const (
	// ModeVector searches chunks directly against the query embedding.
	ModeVector Mode = "vector"
	// ModeCallgraph searches functions first, promotes their files to a
	// preferred set, then does vector chunk retrieval with a boost for
	// those files.
	ModeCallgraph Mode = "callgraph"
	// ModeSlice resolves a seed function and walks the call graph from
	// it instead of running a vector search for the base candidate set.
	ModeSlice Mode = "slice"
)

const (
	defaultMaxChunks           = 20
	defaultRerankerTopK        = 20
	defaultAgenticMaxIters     = 2
	defaultSliceDepth          = 2
	defaultCallGraphDepth      = 1
	preferredFileDistanceBoost = 0.07
	agenticPromotionBoost      = 0.03
	neighborsPerChunk          = 2
)

// Request is one retrieval call.
type Request struct {
	RepoID   string
	Query    string
	Mode     Mode
	Language string // optional; empty means no language filter

	MaxChunks       int // default defaultMaxChunks
	RerankerTopK    int // default defaultRerankerTopK
	AgenticMaxIters int // default defaultAgenticMaxIters, hard-capped there

	// SeedFunction names the entry point for ModeSlice; when empty, Query
	// is used as the seed name instead.
	SeedFunction string
	SliceDepth   int  // default defaultSliceDepth
	SliceForward bool // true: callees (forward); false: callers (backward)

	// CallGraphDepth bounds the call-graph walk ModeCallgraph performs from
	// each vector-matched function, in both the preferred-file boost and the
	// rendered call-graph artifact. Must be >= 1; default defaultCallGraphDepth.
	CallGraphDepth int

	NeighborExpansion bool
	AgenticExpansion  bool

	// ExcludeRoles drops candidates whose file classifies into one of
	// these roles (e.g. []Role{RoleTest, RoleGenerated} for an
	// implementation-focused search). Empty means no filtering.
	ExcludeRoles []Role

	Weights *types.LTRWeights // nil means types.DefaultLTRWeights()
}

func (r Request) withDefaults() Request {
	if r.MaxChunks <= 0 {
		r.MaxChunks = defaultMaxChunks
	}
	if r.RerankerTopK <= 0 {
		r.RerankerTopK = defaultRerankerTopK
	}
	if r.AgenticMaxIters <= 0 {
		r.AgenticMaxIters = defaultAgenticMaxIters
	}
	if r.AgenticMaxIters > defaultAgenticMaxIters {
		r.AgenticMaxIters = defaultAgenticMaxIters
	}
	if r.SliceDepth <= 0 {
		r.SliceDepth = defaultSliceDepth
	}
	if r.CallGraphDepth <= 0 {
		r.CallGraphDepth = defaultCallGraphDepth
	}
	return r
}

// Summary reports aggregate stats for the returned chunk set.
type Summary struct {
	Total         int     `json:"total"`
	AvgConfidence float64 `json:"avg_confidence"`
	RetrievalMode string  `json:"retrieval_mode"`
}

// Result is the Retriever's output.
type Result struct {
	Chunks    []types.Candidate `json:"chunks"`
	Summary   Summary           `json:"summary"`
	Artifacts []string          `json:"artifacts,omitempty"`
}
