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

package bootstrap

import (
	"path/filepath"
	"testing"

	"github.com/kraklabs/codectx/pkg/llm"
	"github.com/kraklabs/codectx/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_DefaultsToMemoryVectorStore(t *testing.T) {
	env, err := New(Config{
		DataDir: t.TempDir(),
		LLM:     llm.ProviderConfig{Type: "mock"},
	}, nil)
	require.NoError(t, err)
	assert.NotNil(t, env.VectorStore)
	assert.NotNil(t, env.Embedder)
	assert.NotNil(t, env.LLM)
	assert.NotNil(t, env.Repos)
	assert.NotNil(t, env.Jobs)
}

func TestNew_UnknownVectorStoreBackendFails(t *testing.T) {
	_, err := New(Config{
		DataDir:     t.TempDir(),
		VectorStore: VectorStoreConfig{Backend: "cosmicdb"},
		LLM:         llm.ProviderConfig{Type: "mock"},
	}, nil)
	require.Error(t, err)
}

func TestNew_CreatesRepoAndJobSubdirectories(t *testing.T) {
	dataDir := t.TempDir()
	env, err := New(Config{DataDir: dataDir, LLM: llm.ProviderConfig{Type: "mock"}}, nil)
	require.NoError(t, err)

	_, err = env.Repos.Register(types.Repository{ID: "repo-a"})
	require.NoError(t, err)

	_, err = env.Jobs.Create(types.Job{ID: "job-1", RepoID: "repo-a"})
	require.NoError(t, err)

	assert.FileExists(t, filepath.Join(dataDir, "repos", "repo-a.json"))
	assert.FileExists(t, filepath.Join(dataDir, "jobs", "job-1.json"))
}
