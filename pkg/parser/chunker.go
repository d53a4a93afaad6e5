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

package parser

import "sort"

// Default sliding-window chunking parameters (spec.md §4.1).
const (
	FixedWindowSize    = 200
	FixedWindowOverlap = 40
)

// Chunk is a line-bounded code region, either derived from one or more AST
// entities (ast_region, possibly merging touching/overlapping spans) or a
// fixed sliding window over residual lines.
type Chunk struct {
	Kind      ChunkKindWire
	StartLine int // 0-based, inclusive
	EndLine   int // 0-based, inclusive
}

// ChunkKindWire mirrors types.ChunkKind without importing pkg/types, keeping
// pkg/parser dependency-free of the shared model package.
type ChunkKindWire string

const (
	ChunkKindASTRegion ChunkKindWire = "ast_region"
	ChunkKindFixed     ChunkKindWire = "fixed"
)

type span struct {
	start, end int
}

// ChunkFile computes the AST-region + fixed-window chunk set for a file
// with totalLines lines (0-based line count), given the 0-based inclusive
// spans of every extracted function/class entity. When spans is empty (no
// entities, or an unsupported language), the whole file is chunked as fixed
// windows.
func ChunkFile(totalLines int, spans [][2]int) []Chunk {
	if totalLines <= 0 {
		return nil
	}

	if len(spans) == 0 {
		return fixedWindows(0, totalLines-1)
	}

	clamped := make([]span, 0, len(spans))
	for _, s := range spans {
		start, end := s[0], s[1]
		if start < 0 {
			start = 0
		}
		if end > totalLines-1 {
			end = totalLines - 1
		}
		if start > end {
			continue
		}
		clamped = append(clamped, span{start, end})
	}
	if len(clamped) == 0 {
		return fixedWindows(0, totalLines-1)
	}

	sort.Slice(clamped, func(i, j int) bool {
		if clamped[i].start != clamped[j].start {
			return clamped[i].start < clamped[j].start
		}
		return clamped[i].end < clamped[j].end
	})

	// Merge adjacent/overlapping spans: start <= previous_end + 1.
	merged := make([]span, 0, len(clamped))
	cur := clamped[0]
	for _, s := range clamped[1:] {
		if s.start <= cur.end+1 {
			if s.end > cur.end {
				cur.end = s.end
			}
			continue
		}
		merged = append(merged, cur)
		cur = s
	}
	merged = append(merged, cur)

	var chunks []Chunk
	prevEnd := -1
	for _, m := range merged {
		if m.start > prevEnd+1 {
			chunks = append(chunks, fixedWindows(prevEnd+1, m.start-1)...)
		}
		chunks = append(chunks, Chunk{Kind: ChunkKindASTRegion, StartLine: m.start, EndLine: m.end})
		prevEnd = m.end
	}
	if prevEnd < totalLines-1 {
		chunks = append(chunks, fixedWindows(prevEnd+1, totalLines-1)...)
	}

	return chunks
}

// fixedWindows emits fixed-size sliding windows of size FixedWindowSize
// with FixedWindowOverlap overlap over the inclusive [start,end] range.
// Returns nil for an empty or invalid range.
func fixedWindows(start, end int) []Chunk {
	if start > end {
		return nil
	}
	step := FixedWindowSize - FixedWindowOverlap
	if step < 1 {
		step = 1
	}

	var chunks []Chunk
	for lo := start; lo <= end; lo += step {
		hi := lo + FixedWindowSize - 1
		if hi > end {
			hi = end
		}
		chunks = append(chunks, Chunk{Kind: ChunkKindFixed, StartLine: lo, EndLine: hi})
		if hi == end {
			break
		}
	}
	return chunks
}
