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

import "sort"

// SimpleCycles reports one representative cycle per strongly connected
// component with more than one node, plus any single-node self loop
// (id -> id). It is Tarjan's SCC algorithm, not Johnson's elementary-cycle
// enumeration: for dependency-graph-sized inputs, knowing which node sets
// are mutually reachable is what the ranker and impact analysis need, and
// it is far cheaper than enumerating every individual cycle in a dense SCC.
func (g *Graph) SimpleCycles() [][]string {
	ids := g.NodeIDs()

	index := make(map[string]int, len(ids))
	lowlink := make(map[string]int, len(ids))
	onStack := make(map[string]bool, len(ids))
	var stack []string
	counter := 0
	var sccs [][]string

	var strongconnect func(v string)
	strongconnect = func(v string) {
		index[v] = counter
		lowlink[v] = counter
		counter++
		stack = append(stack, v)
		onStack[v] = true

		for _, w := range g.Out(v) {
			if _, seen := index[w]; !seen {
				strongconnect(w)
				if lowlink[w] < lowlink[v] {
					lowlink[v] = lowlink[w]
				}
			} else if onStack[w] {
				if index[w] < lowlink[v] {
					lowlink[v] = index[w]
				}
			}
		}

		if lowlink[v] == index[v] {
			var component []string
			for {
				n := len(stack) - 1
				w := stack[n]
				stack = stack[:n]
				onStack[w] = false
				component = append(component, w)
				if w == v {
					break
				}
			}
			sccs = append(sccs, component)
		}
	}

	for _, id := range ids {
		if _, seen := index[id]; !seen {
			strongconnect(id)
		}
	}

	var cycles [][]string
	for _, comp := range sccs {
		if len(comp) > 1 {
			sort.Strings(comp)
			cycles = append(cycles, comp)
			continue
		}
		// single-node SCC: only a cycle if it has a self-loop
		node := comp[0]
		for _, out := range g.Out(node) {
			if out == node {
				cycles = append(cycles, []string{node})
				break
			}
		}
	}

	return cycles
}
