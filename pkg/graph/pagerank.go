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

const (
	pagerankDamping    = 0.85
	pagerankIterations = 50
	pagerankEpsilon    = 1e-6
)

// Centrality computes per-node PageRank over g, normalized to [0,1] by
// dividing by the maximum score. Graphs with no edges carry no
// distinguishing link signal for PageRank to work with, so Centrality
// falls back to degree centrality (in-degree + out-degree, normalized
// the same way) in that case.
func (g *Graph) Centrality() map[string]float64 {
	g.mu.RLock()
	ids := make([]string, 0, len(g.nodes))
	for id := range g.nodes {
		ids = append(ids, id)
	}
	edgeCount := len(g.edges)
	g.mu.RUnlock()

	if len(ids) == 0 {
		return map[string]float64{}
	}
	if edgeCount == 0 {
		return g.degreeCentrality(ids)
	}
	return normalize(g.pageRank(ids))
}

func (g *Graph) pageRank(ids []string) map[string]float64 {
	n := len(ids)
	rank := make(map[string]float64, n)
	for _, id := range ids {
		rank[id] = 1.0 / float64(n)
	}

	outDegree := make(map[string]int, n)
	for _, id := range ids {
		outDegree[id] = len(g.Out(id))
	}

	for iter := 0; iter < pagerankIterations; iter++ {
		next := make(map[string]float64, n)
		base := (1 - pagerankDamping) / float64(n)
		for _, id := range ids {
			next[id] = base
		}

		// Dangling mass (nodes with no outbound edges) is redistributed
		// uniformly, keeping the rank vector a proper distribution.
		var danglingMass float64
		for _, id := range ids {
			if outDegree[id] == 0 {
				danglingMass += rank[id]
			}
		}
		if danglingMass > 0 {
			share := pagerankDamping * danglingMass / float64(n)
			for _, id := range ids {
				next[id] += share
			}
		}

		for _, id := range ids {
			if outDegree[id] == 0 {
				continue
			}
			contribution := pagerankDamping * rank[id] / float64(outDegree[id])
			for _, target := range g.Out(id) {
				next[target] += contribution
			}
		}

		var delta float64
		for _, id := range ids {
			delta += abs(next[id] - rank[id])
		}
		rank = next
		if delta < pagerankEpsilon {
			break
		}
	}

	return rank
}

func (g *Graph) degreeCentrality(ids []string) map[string]float64 {
	scores := make(map[string]float64, len(ids))
	for _, id := range ids {
		scores[id] = float64(len(g.Out(id)) + len(g.In(id)))
	}
	return normalize(scores)
}

func normalize(scores map[string]float64) map[string]float64 {
	var max float64
	for _, v := range scores {
		if v > max {
			max = v
		}
	}
	if max == 0 {
		return scores
	}
	out := make(map[string]float64, len(scores))
	for k, v := range scores {
		out[k] = v / max
	}
	return out
}

func abs(f float64) float64 {
	if f < 0 {
		return -f
	}
	return f
}
