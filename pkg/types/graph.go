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

package types

// GraphNode is one node of a serialized CallGraph/ClassGraph/ModuleGraph.
type GraphNode struct {
	ID    string `json:"id"`
	Label string `json:"label"`
	Type  string `json:"type"`
}

// GraphEdge is one edge of a serialized CallGraph/ClassGraph/ModuleGraph.
// Weight accumulates across ingests and dynamic traces for call edges.
type GraphEdge struct {
	Source string `json:"source"`
	Target string `json:"target"`
	Type   string `json:"type"`
	Weight int    `json:"weight,omitempty"`
}

// NamedGraph is the wire format for CallGraph/ClassGraph/ModuleGraph:
// "{nodes: [{id,label,type}], edges: [{source,target,type,weight?}]}".
// An empty NamedGraph (nil/zero-length Nodes and Edges) means "no additional
// signal available" for graphs produced by external tooling that isn't
// present — callers must treat it that way, never as an error.
type NamedGraph struct {
	Nodes []GraphNode `json:"nodes"`
	Edges []GraphEdge `json:"edges"`
}

// IsEmpty reports whether the graph carries no signal.
func (g *NamedGraph) IsEmpty() bool {
	return g == nil || (len(g.Nodes) == 0 && len(g.Edges) == 0)
}

// Signals holds the per-repo, per-file signal maps used by the Ranker.
type Signals struct {
	// Centrality is PageRank over the DependencyGraph (degree centrality
	// fallback), normalized to [0,1].
	Centrality map[string]float64 `json:"centrality"`
	// Recency is 1 - min(1, days_since_last_commit/365); 0.5 when git is
	// unavailable.
	Recency map[string]float64 `json:"recency"`
	// History is change count / max change count in the last 12 months.
	History map[string]float64 `json:"history"`
	// Comodification lists, per path, the top-10 co-committed paths over a
	// 6-month window, ordered by frequency.
	Comodification map[string][]string `json:"comodification"`
}

// NewSignals returns an empty, ready-to-fill Signals value.
func NewSignals() *Signals {
	return &Signals{
		Centrality:     make(map[string]float64),
		Recency:        make(map[string]float64),
		History:        make(map[string]float64),
		Comodification: make(map[string][]string),
	}
}

// LTRWeights are the per-repo ranker weights, always summing to 1 and each
// clamped to [0.05, 0.8].
type LTRWeights struct {
	Semantic   float64 `json:"semantic"`
	Dependency float64 `json:"dependency"`
	History    float64 `json:"history"`
	Recency    float64 `json:"recency"`
}

// DefaultLTRWeights returns the spec-mandated default weights.
func DefaultLTRWeights() LTRWeights {
	return LTRWeights{Semantic: 0.4, Dependency: 0.3, History: 0.2, Recency: 0.1}
}

// SignatureIndex is the per-repo signature dedup table (spec.md §3, §4.3).
type SignatureIndex struct {
	// OccurrenceCount maps signature -> number of occurrences seen.
	OccurrenceCount map[string]int `json:"occurrence_count"`
	// Representative maps signature -> the entity id that was upserted
	// (the first-seen occurrence).
	Representative map[string]string `json:"representative"`
}

// NewSignatureIndex returns an empty SignatureIndex.
func NewSignatureIndex() *SignatureIndex {
	return &SignatureIndex{
		OccurrenceCount: make(map[string]int),
		Representative:  make(map[string]string),
	}
}
