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
	"testing"

	"github.com/kraklabs/codectx/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRepoStore_RegisterThenGetRoundTrips(t *testing.T) {
	store := NewRepoStore(t.TempDir())

	got, err := store.Register(types.Repository{ID: "repo-a", Name: "Repo A", LocalPath: "/src/a"})
	require.NoError(t, err)
	assert.Equal(t, "registered", got.Status)

	fetched, err := store.Get("repo-a")
	require.NoError(t, err)
	assert.Equal(t, "Repo A", fetched.Name)
	assert.Equal(t, "/src/a", fetched.LocalPath)
}

func TestRepoStore_RegisterDuplicateFails(t *testing.T) {
	store := NewRepoStore(t.TempDir())

	_, err := store.Register(types.Repository{ID: "repo-a"})
	require.NoError(t, err)

	_, err = store.Register(types.Repository{ID: "repo-a"})
	require.ErrorIs(t, err, ErrRepoExists)
}

func TestRepoStore_GetMissingReturnsNotFound(t *testing.T) {
	store := NewRepoStore(t.TempDir())

	_, err := store.Get("ghost")
	require.ErrorIs(t, err, ErrRepoNotFound)
}

func TestRepoStore_BumpVersionIncrementsAndPersists(t *testing.T) {
	store := NewRepoStore(t.TempDir())
	_, err := store.Register(types.Repository{ID: "repo-a"})
	require.NoError(t, err)

	v1, err := store.BumpVersion("repo-a")
	require.NoError(t, err)
	assert.Equal(t, 1, v1)

	v2, err := store.BumpVersion("repo-a")
	require.NoError(t, err)
	assert.Equal(t, 2, v2)

	fetched, err := store.Get("repo-a")
	require.NoError(t, err)
	assert.Equal(t, 2, fetched.Version)
}

func TestRepoStore_ListReturnsAllRegistered(t *testing.T) {
	store := NewRepoStore(t.TempDir())
	_, err := store.Register(types.Repository{ID: "repo-a"})
	require.NoError(t, err)
	_, err = store.Register(types.Repository{ID: "repo-b"})
	require.NoError(t, err)

	repos, err := store.List()
	require.NoError(t, err)
	ids := []string{repos[0].ID, repos[1].ID}
	assert.ElementsMatch(t, []string{"repo-a", "repo-b"}, ids)
}

func TestRepoStore_ListOnEmptyDirReturnsNil(t *testing.T) {
	store := NewRepoStore(t.TempDir() + "/does-not-exist")

	repos, err := store.List()
	require.NoError(t, err)
	assert.Empty(t, repos)
}
