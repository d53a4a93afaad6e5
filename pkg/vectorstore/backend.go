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

	"github.com/kraklabs/codectx/pkg/types"
)

// Backend is the storage abstraction every vector index implementation
// satisfies: an in-memory brute-force index for small/medium repos, or a
// remote ANN service for large ones.
type Backend interface {
	// Upsert writes or replaces entities for repoID. Entities without an
	// Embedding are rejected by the caller before reaching Upsert.
	Upsert(ctx context.Context, repoID string, entities []types.Entity) error

	// Query returns the topK nearest entities to vector, optionally
	// restricted to entityTypes (nil/empty means no restriction).
	Query(ctx context.Context, repoID string, vector []float32, topK int, entityTypes []types.EntityType) ([]Candidate, error)

	// GetByFile returns every entity indexed for filePath, used by the
	// Retriever for neighbor expansion and for pulling chunks from files
	// named during agentic expansion.
	GetByFile(ctx context.Context, repoID string, filePath string) ([]types.Entity, error)

	// GetByIDs returns the entities matching ids, in no particular order;
	// missing IDs are silently omitted. Used by the Retriever to resolve
	// call-graph/slice node IDs back to their full entity records.
	GetByIDs(ctx context.Context, repoID string, ids []string) ([]types.Entity, error)

	// Delete removes entities by ID, used when a file is deleted or
	// re-indexed with different chunk boundaries.
	Delete(ctx context.Context, repoID string, entityIDs []string) error

	// DeleteByFile removes every entity indexed for filePath.
	DeleteByFile(ctx context.Context, repoID string, filePath string) error

	// DeleteRepository removes every entity indexed for repoID, used
	// when a repository is deregistered or fully re-indexed from scratch.
	DeleteRepository(ctx context.Context, repoID string) error

	// CountEntities reports how many entities are currently indexed for
	// repoID.
	CountEntities(ctx context.Context, repoID string) (int, error)

	// Close releases any held resources (connections, file handles).
	Close() error
}

// Candidate is one nearest-neighbor result. RawScore is whatever the
// backend natively reports — cosine similarity for Memory, Qdrant's
// configured distance metric for Qdrant — left un-normalized so the
// Retriever can apply spec.md's documented score>1-means-distance rule.
type Candidate struct {
	Entity   types.Entity
	RawScore float64
}
