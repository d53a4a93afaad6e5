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
	"fmt"

	"github.com/kraklabs/codectx/pkg/signature"
	"github.com/kraklabs/codectx/pkg/types"
)

// dedupChunks drops candidates whose (name, code) signature has already
// been seen earlier in candidates, in order: first occurrence wins. When
// sigStore reports the signature occurs more than once across the repo
// (not just within this result set), the kept candidate's reasons record
// how many duplicates were collapsed.
func dedupChunks(candidates []types.Candidate, sigStore *signature.Store) []types.Candidate {
	seen := make(map[string]bool)
	out := make([]types.Candidate, 0, len(candidates))

	for _, c := range candidates {
		sig := signature.Sign(c.Entity.Name, c.Entity.Code)
		if seen[sig] {
			continue
		}
		seen[sig] = true
		out = append(out, c)
	}

	if sigStore == nil {
		return out
	}
	for i := range out {
		sig := signature.Sign(out[i].Entity.Name, out[i].Entity.Code)
		if n := sigStore.OccurrenceCount(sig); n > 1 {
			out[i].Reasons = append(out[i].Reasons, types.Reason{
				Type:        "dedup",
				Score:       1.0,
				Explanation: fmt.Sprintf("Deduplicated %d similar definitions", n-1),
			})
		}
	}
	return out
}
