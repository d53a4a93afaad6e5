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

package graph

import (
	"sort"
	"sync"

	"github.com/kraklabs/codectx/pkg/types"
)

// edgeKey identifies one (from,to,type) edge so repeated AddEdge calls for
// the same relationship accumulate weight instead of duplicating.
type edgeKey struct {
	from, to, typ string
}

// Graph is a directed, possibly-cyclic node/edge arena shared by the
// DependencyGraph, CallGraph, ClassGraph, and ModuleGraph views described
// in the data model: each view is this same structure, populated with a
// different subset of node IDs and edge types.
type Graph struct {
	mu    sync.RWMutex
	nodes map[string]types.GraphNode
	edges map[edgeKey]*types.GraphEdge
	out   map[string]map[string]bool // from -> set of to (across all edge types)
	in    map[string]map[string]bool // to -> set of from
}

// NewGraph returns an empty graph.
func NewGraph() *Graph {
	return &Graph{
		nodes: make(map[string]types.GraphNode),
		edges: make(map[edgeKey]*types.GraphEdge),
		out:   make(map[string]map[string]bool),
		in:    make(map[string]map[string]bool),
	}
}

// AddNode registers a node, overwriting label/type if the ID was already
// present (later, more complete metadata wins).
func (g *Graph) AddNode(id, label, typ string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.nodes[id] = types.GraphNode{ID: id, Label: label, Type: typ}
}

// HasNode reports whether id has been registered.
func (g *Graph) HasNode(id string) bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	_, ok := g.nodes[id]
	return ok
}

// AddEdge adds a directed edge, auto-vivifying endpoint nodes with an
// empty label/type if they are not already present. A repeated
// (from,to,typ) triple accumulates weight rather than duplicating the
// edge — this is how dynamic call-graph traces merge into the static
// call graph built from source.
func (g *Graph) AddEdge(from, to, typ string, weight int) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if _, ok := g.nodes[from]; !ok {
		g.nodes[from] = types.GraphNode{ID: from}
	}
	if _, ok := g.nodes[to]; !ok {
		g.nodes[to] = types.GraphNode{ID: to}
	}

	key := edgeKey{from, to, typ}
	if existing, ok := g.edges[key]; ok {
		existing.Weight += weight
	} else {
		g.edges[key] = &types.GraphEdge{Source: from, Target: to, Type: typ, Weight: weight}
	}

	if g.out[from] == nil {
		g.out[from] = make(map[string]bool)
	}
	g.out[from][to] = true
	if g.in[to] == nil {
		g.in[to] = make(map[string]bool)
	}
	g.in[to][from] = true
}

// Out returns the distinct neighbors reachable by one outbound edge from
// id, across all edge types.
func (g *Graph) Out(id string) []string {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return setToSortedSlice(g.out[id])
}

// In returns the distinct neighbors with an inbound edge into id, across
// all edge types.
func (g *Graph) In(id string) []string {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return setToSortedSlice(g.in[id])
}

// NodeIDs returns every registered node ID, sorted for determinism.
func (g *Graph) NodeIDs() []string {
	g.mu.RLock()
	defer g.mu.RUnlock()
	ids := make([]string, 0, len(g.nodes))
	for id := range g.nodes {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// NodesByLabel returns every node whose Label exactly matches label,
// sorted by ID. Used to resolve a free-text seed name (e.g. a function
// name typed by a caller) to the graph node(s) it refers to.
func (g *Graph) NodesByLabel(label string) []types.GraphNode {
	g.mu.RLock()
	defer g.mu.RUnlock()

	var out []types.GraphNode
	for _, n := range g.nodes {
		if n.Label == label {
			out = append(out, n)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// IsEmpty reports whether the graph has no nodes at all.
func (g *Graph) IsEmpty() bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.nodes) == 0
}

// ToNamedGraph serializes the graph to its wire format.
func (g *Graph) ToNamedGraph() types.NamedGraph {
	g.mu.RLock()
	defer g.mu.RUnlock()

	out := types.NamedGraph{
		Nodes: make([]types.GraphNode, 0, len(g.nodes)),
		Edges: make([]types.GraphEdge, 0, len(g.edges)),
	}
	ids := make([]string, 0, len(g.nodes))
	for id := range g.nodes {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		out.Nodes = append(out.Nodes, g.nodes[id])
	}
	for _, e := range g.edges {
		out.Edges = append(out.Edges, *e)
	}
	sort.Slice(out.Edges, func(i, j int) bool {
		if out.Edges[i].Source != out.Edges[j].Source {
			return out.Edges[i].Source < out.Edges[j].Source
		}
		return out.Edges[i].Target < out.Edges[j].Target
	})
	return out
}

// Subgraph serializes the induced subgraph over the given node IDs: every
// node present in ids, and every edge whose Source and Target are both in
// ids. Unknown IDs are silently skipped. Grounded on ToNamedGraph's
// locking/sorting pattern, scoped to a node set instead of the whole graph.
func (g *Graph) Subgraph(ids []string) types.NamedGraph {
	g.mu.RLock()
	defer g.mu.RUnlock()

	keep := make(map[string]bool, len(ids))
	for _, id := range ids {
		if _, ok := g.nodes[id]; ok {
			keep[id] = true
		}
	}

	sorted := make([]string, 0, len(keep))
	for id := range keep {
		sorted = append(sorted, id)
	}
	sort.Strings(sorted)

	out := types.NamedGraph{
		Nodes: make([]types.GraphNode, 0, len(sorted)),
		Edges: make([]types.GraphEdge, 0),
	}
	for _, id := range sorted {
		out.Nodes = append(out.Nodes, g.nodes[id])
	}
	for _, e := range g.edges {
		if keep[e.Source] && keep[e.Target] {
			out.Edges = append(out.Edges, *e)
		}
	}
	sort.Slice(out.Edges, func(i, j int) bool {
		if out.Edges[i].Source != out.Edges[j].Source {
			return out.Edges[i].Source < out.Edges[j].Source
		}
		return out.Edges[i].Target < out.Edges[j].Target
	})
	return out
}

func setToSortedSlice(set map[string]bool) []string {
	if len(set) == 0 {
		return nil
	}
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
