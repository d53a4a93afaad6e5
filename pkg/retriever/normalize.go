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
	"github.com/kraklabs/codectx/pkg/types"
	"github.com/kraklabs/codectx/pkg/vectorstore"
)

// normalizationAmbiguous is attached when a backend reported a raw score
// greater than 1 — that can only be a distance, never a [0,1] similarity,
// but the Backend contract leaves it to the caller to decide. Recorded
// here so the ambiguity is visible in the response instead of silently
// resolved.
const normalizationAmbiguous = "score>1 treated as raw distance"

// normalize converts a vectorstore.Candidate (whose RawScore meaning
// varies by backend) into a types.Candidate with a bounded Distance:
// smaller is always closer, regardless of what the backend reported.
//
// If RawScore looks like a [0,1] similarity (the common case for cosine
// backends), distance = 1 - score. If RawScore > 1, it can't be a
// similarity, so it is treated as a raw distance value directly and the
// candidate is flagged for transparency.
func normalize(c vectorstore.Candidate) types.Candidate {
	out := types.Candidate{Entity: c.Entity}

	switch {
	case c.RawScore > 1:
		out.Distance = c.RawScore
		out.Reasons = append(out.Reasons, types.Reason{
			Type:        "normalization",
			Score:       c.RawScore,
			Explanation: normalizationAmbiguous,
		})
	case c.RawScore < 0:
		out.Distance = 1
	default:
		out.Distance = 1 - c.RawScore
	}
	return out
}

func normalizeAll(candidates []vectorstore.Candidate) []types.Candidate {
	out := make([]types.Candidate, len(candidates))
	for i, c := range candidates {
		out[i] = normalize(c)
	}
	return out
}
