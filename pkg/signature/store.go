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

package signature

import (
	"crypto/sha1" //nolint:gosec // content-addressing, not a security boundary
	"encoding/hex"
	"strings"
	"sync"

	"github.com/kraklabs/codectx/pkg/types"
)

// Store is a concurrency-safe wrapper around types.SignatureIndex.
type Store struct {
	mu    sync.Mutex
	index *types.SignatureIndex
}

// NewStore returns an empty Store.
func NewStore() *Store {
	return &Store{index: types.NewSignatureIndex()}
}

// Sign computes the dedup signature for a function: sha1 of its name
// joined with its code with all whitespace stripped, so reformatting
// (indentation, blank lines) doesn't produce a distinct signature.
func Sign(name, code string) string {
	stripped := stripWhitespace(code)
	h := sha1.Sum([]byte(name + "|" + stripped)) //nolint:gosec
	return hex.EncodeToString(h[:])
}

// Upsert records one occurrence of entityID under signature sig. It
// returns (representativeID, isNew): isNew is true the first time sig is
// seen, in which case entityID itself is the representative; otherwise
// the previously recorded representative is returned and entityID should
// be dropped from the vector store upsert batch.
func (s *Store) Upsert(sig, entityID string) (representativeID string, isNew bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.index.OccurrenceCount[sig]++
	if rep, ok := s.index.Representative[sig]; ok {
		return rep, false
	}
	s.index.Representative[sig] = entityID
	return entityID, true
}

// OccurrenceCount returns how many times sig has been seen.
func (s *Store) OccurrenceCount(sig string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.index.OccurrenceCount[sig]
}

// Snapshot returns a copy of the underlying index, safe for callers to
// mutate or persist independently.
func (s *Store) Snapshot() *types.SignatureIndex {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := types.NewSignatureIndex()
	for k, v := range s.index.OccurrenceCount {
		out.OccurrenceCount[k] = v
	}
	for k, v := range s.index.Representative {
		out.Representative[k] = v
	}
	return out
}

// LoadSnapshot replaces the store's contents, used when resuming a
// partially-completed ingest from persisted state.
func (s *Store) LoadSnapshot(snap *types.SignatureIndex) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if snap == nil {
		s.index = types.NewSignatureIndex()
		return
	}
	s.index = snap
}

func stripWhitespace(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		switch r {
		case ' ', '\t', '\n', '\r':
			continue
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}
