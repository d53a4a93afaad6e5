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

package ingestion

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kraklabs/codectx/pkg/types"
	"github.com/kraklabs/codectx/pkg/vectorstore"
)

// stubEmbedder returns a fixed-length zero vector for every call, except
// for the entity named "willFail", which always errors, letting tests exercise
// the partial-failure path without a real embedding server.
type stubEmbedder struct{ dim int }

func (s *stubEmbedder) EmbedText(_ context.Context, _ string) ([]float32, error) {
	return make([]float32, s.dim), nil
}

func (s *stubEmbedder) EmbedCodeEntity(_ context.Context, entity types.Entity) ([]float32, error) {
	if entity.Name == "willFail" {
		return nil, assert.AnError
	}
	return make([]float32, s.dim), nil
}

func writeTestRepo(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "app.py"), []byte(
		"def willFail():\n    pass\n\n\ndef greet(name):\n    return \"hi \" + name\n",
	), 0o644))
	return root
}

func TestIndexer_RunProducesEntitiesAndSignals(t *testing.T) {
	repoPath := writeTestRepo(t)
	store := vectorstore.NewMemoryBackend()
	ix := NewIndexer(&stubEmbedder{dim: 4}, store, nil)

	result, err := ix.Run(context.Background(), "repo-a", repoPath)
	require.NoError(t, err)

	assert.Equal(t, 1, result.FilesProcessed)
	assert.Equal(t, 2, result.FunctionsExtracted)
	assert.Equal(t, 1, result.EmbeddingErrors)
	// Every file, function, class and chunk entity is upserted except the
	// one whose embedding failed.
	assert.Equal(t, result.FilesProcessed+result.FunctionsExtracted+result.ClassesExtracted+result.ChunksExtracted-result.EmbeddingErrors, result.EntitiesUpserted)

	count, err := store.CountEntities(context.Background(), "repo-a")
	require.NoError(t, err)
	assert.Equal(t, result.EntitiesUpserted, count)

	signals, ok := ix.Signals("repo-a")
	require.True(t, ok)
	assert.NotNil(t, signals.Centrality)

	_, ok = ix.Graphs("repo-a")
	assert.True(t, ok)

	_, ok = ix.SignatureStore("repo-a")
	assert.True(t, ok)
}

func TestIndexer_ForgetReleasesStateAndVectorEntries(t *testing.T) {
	repoPath := writeTestRepo(t)
	store := vectorstore.NewMemoryBackend()
	ix := NewIndexer(&stubEmbedder{dim: 4}, store, nil)

	_, err := ix.Run(context.Background(), "repo-a", repoPath)
	require.NoError(t, err)

	require.NoError(t, ix.Forget(context.Background(), "repo-a"))

	_, ok := ix.Signals("repo-a")
	assert.False(t, ok)

	count, err := store.CountEntities(context.Background(), "repo-a")
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestIndexer_RunOnUnknownRepoStillSucceedsWithDefaultSignals(t *testing.T) {
	// Not a git repository: gitanalyzer.Analyze degrades gracefully rather
	// than erroring, and the Indexer must too.
	repoPath := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(repoPath, "util.py"), []byte(
		"def helper():\n    return 1\n",
	), 0o644))

	store := vectorstore.NewMemoryBackend()
	ix := NewIndexer(&stubEmbedder{dim: 4}, store, nil)

	result, err := ix.Run(context.Background(), "repo-b", repoPath)
	require.NoError(t, err)
	assert.Equal(t, 1, result.FunctionsExtracted)

	signals, ok := ix.Signals("repo-b")
	require.True(t, ok)
	assert.Equal(t, 0.5, signals.Recency["util.py"])
}
