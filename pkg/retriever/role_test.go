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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kraklabs/codectx/pkg/types"
	"github.com/kraklabs/codectx/pkg/vectorstore"
)

func TestClassifyRole(t *testing.T) {
	cases := map[string]Role{
		"pkg/foo/bar_test.go":           RoleTest,
		"src/component.test.tsx":        RoleTest,
		"api/v1.pb.go":                  RoleGenerated,
		"internal/gen/schema.gen.go":    RoleGenerated,
		"vendor/github.com/x/y/y.go":    RoleVendor,
		"frontend/node_modules/a/b.js":  RoleVendor,
		"pkg/retriever/retriever.go":    RoleSource,
	}
	for path, want := range cases {
		assert.Equal(t, want, ClassifyRole(path), path)
	}
}

func TestRetriever_Query_ExcludeRolesDropsTestFiles(t *testing.T) {
	store := vectorstore.NewMemoryBackend()
	ctx := context.Background()
	require.NoError(t, store.Upsert(ctx, "repo1", []types.Entity{
		chunkEntity("c1", "repo1", "a.go", "Handler", 1, 10, []float32{1, 0, 0}),
		chunkEntity("c2", "repo1", "a_test.go", "TestHandler", 1, 10, []float32{1, 0, 0}),
	}))

	r := New(Config{
		Store:    store,
		Embedder: fakeEmbedder{vector: []float32{1, 0, 0}},
	})

	result, err := r.Query(ctx, Request{
		RepoID:       "repo1",
		Query:        "handler",
		ExcludeRoles: []Role{RoleTest},
	})
	require.NoError(t, err)

	for _, c := range result.Chunks {
		assert.NotEqual(t, "a_test.go", c.Entity.FilePath)
	}
	assert.Len(t, result.Chunks, 1)
}
