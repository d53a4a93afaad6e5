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

// Impacted returns every node that transitively depends on id — i.e.
// every node reachable by walking inbound edges — up to maxDepth hops.
// maxDepth <= 0 means unbounded. This answers "what breaks if I change
// this file/function": a change to id can ripple into anything that
// imports or calls it.
func (g *Graph) Impacted(id string, maxDepth int) []string {
	if !g.HasNode(id) {
		return nil
	}

	visited := map[string]int{id: 0}
	queue := []string{id}
	var impacted []string

	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		depth := visited[cur]
		if maxDepth > 0 && depth >= maxDepth {
			continue
		}
		for _, dependent := range g.In(cur) {
			if _, seen := visited[dependent]; seen {
				continue
			}
			visited[dependent] = depth + 1
			impacted = append(impacted, dependent)
			queue = append(queue, dependent)
		}
	}

	sort.Strings(impacted)
	return impacted
}
