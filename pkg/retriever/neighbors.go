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
	"sort"

	"github.com/kraklabs/codectx/pkg/types"
)

// expandNeighbors pulls up to neighborsPerChunk additional chunks from
// the same file as each already-selected chunk, ordered by line-distance
// to the center of that chunk, until maxChunks is reached overall.
// Chunks already present (by ID) are skipped.
func (r *Retriever) expandNeighbors(ctx context.Context, repoID string, selected []types.Candidate, maxChunks int) ([]types.Candidate, error) {
	present := make(map[string]bool, len(selected))
	for _, c := range selected {
		present[chunkKey(c.Entity)] = true
	}

	out := append([]types.Candidate(nil), selected...)
	for _, c := range selected {
		if len(out) >= maxChunks {
			break
		}
		center := (c.Entity.StartLine + c.Entity.EndLine) / 2

		fileEntities, err := r.store.GetByFile(ctx, repoID, c.Entity.FilePath)
		if err != nil {
			return nil, err
		}
		candidates := make([]types.Entity, 0, len(fileEntities))
		for _, e := range fileEntities {
			if e.Type != types.EntityChunk || present[chunkKey(e)] {
				continue
			}
			candidates = append(candidates, e)
		}
		sort.Slice(candidates, func(i, j int) bool {
			di := lineDistance(candidates[i], center)
			dj := lineDistance(candidates[j], center)
			return di < dj
		})

		added := 0
		for _, e := range candidates {
			if added >= neighborsPerChunk || len(out) >= maxChunks {
				break
			}
			out = append(out, types.Candidate{Entity: e, Distance: c.Distance})
			present[chunkKey(e)] = true
			added++
		}
	}
	return out, nil
}

func chunkKey(e types.Entity) string {
	if e.ChunkID != "" {
		return e.ChunkID
	}
	return e.ID
}

func lineDistance(e types.Entity, center int) int {
	mid := (e.StartLine + e.EndLine) / 2
	d := mid - center
	if d < 0 {
		return -d
	}
	return d
}
