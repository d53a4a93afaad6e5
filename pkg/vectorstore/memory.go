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

package vectorstore

import (
	"context"
	"math"
	"sort"
	"sync"

	"github.com/kraklabs/codectx/pkg/types"
)

// MemoryBackend is a brute-force cosine-similarity index held entirely in
// process memory, per repo. It is the default backend: fine for
// repositories up to a few hundred thousand entities, with none of a
// remote ANN service's operational cost.
type MemoryBackend struct {
	mu    sync.RWMutex
	repos map[string]map[string]types.Entity // repoID -> entityID -> entity
}

var _ Backend = (*MemoryBackend)(nil)

// NewMemoryBackend returns an empty MemoryBackend.
func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{repos: make(map[string]map[string]types.Entity)}
}

func (m *MemoryBackend) Upsert(_ context.Context, repoID string, entities []types.Entity) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	repo, ok := m.repos[repoID]
	if !ok {
		repo = make(map[string]types.Entity)
		m.repos[repoID] = repo
	}
	for _, e := range entities {
		repo[e.ID] = e
	}
	return nil
}

func (m *MemoryBackend) Query(_ context.Context, repoID string, vector []float32, topK int, entityTypes []types.EntityType) ([]Candidate, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	repo, ok := m.repos[repoID]
	if !ok || topK <= 0 {
		return nil, nil
	}

	var typeFilter map[types.EntityType]bool
	if len(entityTypes) > 0 {
		typeFilter = make(map[types.EntityType]bool, len(entityTypes))
		for _, t := range entityTypes {
			typeFilter[t] = true
		}
	}

	candidates := make([]Candidate, 0, len(repo))
	for _, e := range repo {
		if typeFilter != nil && !typeFilter[e.Type] {
			continue
		}
		if len(e.Embedding) == 0 {
			continue
		}
		candidates = append(candidates, Candidate{Entity: e, RawScore: cosineSimilarity(vector, e.Embedding)})
	}

	sort.Slice(candidates, func(i, j int) bool {
		return candidates[i].RawScore > candidates[j].RawScore
	})
	if len(candidates) > topK {
		candidates = candidates[:topK]
	}
	return candidates, nil
}

func (m *MemoryBackend) GetByFile(_ context.Context, repoID string, filePath string) ([]types.Entity, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	repo, ok := m.repos[repoID]
	if !ok {
		return nil, nil
	}
	var out []types.Entity
	for _, e := range repo {
		if e.FilePath == filePath {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartLine < out[j].StartLine })
	return out, nil
}

func (m *MemoryBackend) GetByIDs(_ context.Context, repoID string, ids []string) ([]types.Entity, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	repo, ok := m.repos[repoID]
	if !ok {
		return nil, nil
	}
	out := make([]types.Entity, 0, len(ids))
	for _, id := range ids {
		if e, ok := repo[id]; ok {
			out = append(out, e)
		}
	}
	return out, nil
}

func (m *MemoryBackend) Delete(_ context.Context, repoID string, entityIDs []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	repo, ok := m.repos[repoID]
	if !ok {
		return nil
	}
	for _, id := range entityIDs {
		delete(repo, id)
	}
	return nil
}

func (m *MemoryBackend) DeleteByFile(_ context.Context, repoID string, filePath string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	repo, ok := m.repos[repoID]
	if !ok {
		return nil
	}
	for id, e := range repo {
		if e.FilePath == filePath {
			delete(repo, id)
		}
	}
	return nil
}

func (m *MemoryBackend) DeleteRepository(_ context.Context, repoID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.repos, repoID)
	return nil
}

func (m *MemoryBackend) CountEntities(_ context.Context, repoID string) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.repos[repoID]), nil
}

func (m *MemoryBackend) Close() error { return nil }

func cosineSimilarity(a []float32, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
