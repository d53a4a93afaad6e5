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
	"os"
	"testing"

	"github.com/kraklabs/codectx/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJobStore_CreateThenGetRoundTrips(t *testing.T) {
	store := NewJobStore(t.TempDir())

	got, err := store.Create(types.Job{ID: "job-1", RepoID: "repo-a"})
	require.NoError(t, err)
	assert.Equal(t, types.JobQueued, got.Status)

	fetched, err := store.Get("job-1")
	require.NoError(t, err)
	assert.Equal(t, "repo-a", fetched.RepoID)
}

func TestJobStore_GetMissingReturnsNotFound(t *testing.T) {
	store := NewJobStore(t.TempDir())

	_, err := store.Get("ghost")
	require.ErrorIs(t, err, ErrJobNotFound)
}

func TestJobStore_SaveUpdatesProgress(t *testing.T) {
	store := NewJobStore(t.TempDir())
	job, err := store.Create(types.Job{ID: "job-1", RepoID: "repo-a"})
	require.NoError(t, err)

	job.Status = types.JobRunning
	job.Progress = types.Progress{Current: 5, Total: 10, Pct: 50}
	require.NoError(t, store.Save(job))

	fetched, err := store.Get("job-1")
	require.NoError(t, err)
	assert.Equal(t, types.JobRunning, fetched.Status)
	assert.Equal(t, 50.0, fetched.Progress.Pct)
}

func TestJobStore_ListForRepoFiltersByRepoID(t *testing.T) {
	store := NewJobStore(t.TempDir())
	_, err := store.Create(types.Job{ID: "job-1", RepoID: "repo-a"})
	require.NoError(t, err)
	_, err = store.Create(types.Job{ID: "job-2", RepoID: "repo-b"})
	require.NoError(t, err)
	_, err = store.Create(types.Job{ID: "job-3", RepoID: "repo-a"})
	require.NoError(t, err)

	jobs, err := store.ListForRepo("repo-a")
	require.NoError(t, err)
	require.Len(t, jobs, 2)
}

func TestJobStore_TryAcquireJobLockSerializesPerRepo(t *testing.T) {
	store := NewJobStore(t.TempDir())

	release, err := store.TryAcquireJobLock("repo-a")
	require.NoError(t, err)
	require.NotNil(t, release)

	_, err = store.TryAcquireJobLock("repo-a")
	require.ErrorIs(t, err, ErrJobLocked)

	release()

	release2, err := store.TryAcquireJobLock("repo-a")
	require.NoError(t, err)
	release2()
}

func TestJobStore_TryAcquireJobLockIsPerRepoIndependent(t *testing.T) {
	store := NewJobStore(t.TempDir())

	releaseA, err := store.TryAcquireJobLock("repo-a")
	require.NoError(t, err)
	defer releaseA()

	releaseB, err := store.TryAcquireJobLock("repo-b")
	require.NoError(t, err)
	defer releaseB()
}

func TestJobStore_ReadLockInfoReflectsHolder(t *testing.T) {
	store := NewJobStore(t.TempDir())

	info, err := store.ReadLockInfo("repo-a")
	require.NoError(t, err)
	assert.Nil(t, info)

	release, err := store.TryAcquireJobLock("repo-a")
	require.NoError(t, err)
	defer release()

	info, err = store.ReadLockInfo("repo-a")
	require.NoError(t, err)
	require.NotNil(t, info)
	assert.Equal(t, os.Getpid(), info.PID)
}
