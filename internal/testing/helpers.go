// Copyright 2025 KrakLabs
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published
// by the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program. If not, see <https://www.gnu.org/licenses/>.
//
// For commercial licensing, contact: licensing@kraklabs.com
//
// SPDX-License-Identifier: AGPL-3.0-or-later

package testing

import (
	"context"
	"testing"

	"github.com/kraklabs/codectx/internal/bootstrap"
	"github.com/kraklabs/codectx/pkg/embed"
	"github.com/kraklabs/codectx/pkg/llm"
	"github.com/kraklabs/codectx/pkg/types"
	"github.com/kraklabs/codectx/pkg/vectorstore"
)

// NewEnvironment builds a bootstrap.Environment rooted at a temp
// directory, with an in-memory vector store and a deterministic fake
// embedder/LLM provider so tests never reach the network. The
// environment (and its data dir) are cleaned up automatically.
func NewEnvironment(t *testing.T) *bootstrap.Environment {
	t.Helper()

	env, err := bootstrap.New(bootstrap.Config{
		DataDir:     t.TempDir(),
		VectorStore: bootstrap.VectorStoreConfig{Backend: "memory"},
	}, nil)
	if err != nil {
		t.Fatalf("failed to build test environment: %v", err)
	}

	// Swap in deterministic stand-ins so tests don't depend on a
	// reachable embedding server or LLM gateway.
	env.Embedder = FakeEmbedder{Dim: 8}
	provider, err := llm.NewProvider(llm.ProviderConfig{Type: "mock"})
	if err != nil {
		t.Fatalf("failed to build mock llm provider: %v", err)
	}
	env.LLM = provider

	return env
}

// FakeEmbedder returns a fixed-dimension, content-independent vector
// for every call, letting tests exercise the embedding-consuming
// pipeline without a real model.
type FakeEmbedder struct {
	Dim int
}

var _ embed.Embedder = FakeEmbedder{}

func (f FakeEmbedder) EmbedText(_ context.Context, _ string) ([]float32, error) {
	return f.vector(), nil
}

func (f FakeEmbedder) EmbedCodeEntity(_ context.Context, _ types.Entity) ([]float32, error) {
	return f.vector(), nil
}

func (f FakeEmbedder) vector() []float32 {
	dim := f.Dim
	if dim <= 0 {
		dim = 4
	}
	v := make([]float32, dim)
	v[0] = 1
	return v
}

// NewFunctionEntity builds a types.Entity for a function, the shape
// Indexer.buildEntities produces for a parsed function node.
func NewFunctionEntity(repoID, id, name, filePath string, startLine, endLine int) types.Entity {
	return types.Entity{
		ID:        repoID + ":" + id,
		RepoID:    repoID,
		FilePath:  filePath,
		Type:      types.EntityFunction,
		Name:      name,
		Code:      "func " + name + "() {}",
		Language:  "go",
		StartLine: startLine,
		EndLine:   endLine,
	}
}

// NewFileEntity builds a types.Entity for a whole-file summary unit.
func NewFileEntity(repoID, id, filePath string) types.Entity {
	return types.Entity{
		ID:       repoID + ":" + id,
		RepoID:   repoID,
		FilePath: filePath,
		Type:     types.EntityFile,
		Name:     filePath,
		Language: "go",
	}
}

// NewClassEntity builds a types.Entity for a class/struct/interface.
func NewClassEntity(repoID, id, name, filePath string, startLine, endLine int) types.Entity {
	return types.Entity{
		ID:        repoID + ":" + id,
		RepoID:    repoID,
		FilePath:  filePath,
		Type:      types.EntityClass,
		Name:      name,
		Language:  "go",
		StartLine: startLine,
		EndLine:   endLine,
	}
}

// SeedEntities embeds (via env.Embedder) and upserts entities into
// env.VectorStore for repoID, failing the test on any error. Entities
// without an Embedding are filled in first since most backends reject
// them otherwise.
func SeedEntities(t *testing.T, env *bootstrap.Environment, repoID string, entities []types.Entity) {
	t.Helper()
	ctx := context.Background()

	for i := range entities {
		if len(entities[i].Embedding) > 0 {
			continue
		}
		vec, err := env.Embedder.EmbedCodeEntity(ctx, entities[i])
		if err != nil {
			t.Fatalf("failed to embed test entity %s: %v", entities[i].ID, err)
		}
		entities[i].Embedding = vec
	}

	if err := env.VectorStore.Upsert(ctx, repoID, entities); err != nil {
		t.Fatalf("failed to seed test entities: %v", err)
	}
}

// NewMemoryVectorStore is a convenience for tests that only need a
// bare vector backend, not a full Environment.
func NewMemoryVectorStore() vectorstore.Backend {
	return vectorstore.NewMemoryBackend()
}
