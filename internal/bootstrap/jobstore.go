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
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/kraklabs/codectx/pkg/persistence"
	"github.com/kraklabs/codectx/pkg/types"
)

// ErrJobNotFound is returned when a job ID has no persisted record.
var ErrJobNotFound = errors.New("bootstrap: job not found")

// ErrJobLocked is returned by TryAcquireJobLock when another process
// already holds repoID's index lock.
var ErrJobLocked = errors.New("bootstrap: an index job is already running for this repo")

// JobStore persists one types.Job record per job as JSON under
// baseDir, and enforces that at most one index job runs per repo at a
// time via a non-blocking flock, grounded on the CLI's own index
// queue (cmd/cie/queue.go's TryAcquireLock): the lock file stores the
// holder's PID and start time so a stuck lock can be diagnosed rather
// than only ever forcibly removed.
type JobStore struct {
	baseDir string
}

// LockInfo is the JSON payload written into a repo's lock file while
// an index job holds it.
type LockInfo struct {
	PID       int       `json:"pid"`
	StartedAt time.Time `json:"started_at"`
}

// NewJobStore returns a JobStore rooted at baseDir.
func NewJobStore(baseDir string) *JobStore {
	return &JobStore{baseDir: baseDir}
}

func (s *JobStore) path(jobID string) string {
	return filepath.Join(s.baseDir, jobID+".json")
}

func (s *JobStore) lockPath(repoID string) string {
	return filepath.Join(s.baseDir, "."+repoID+".lock")
}

// Create persists a new job record.
func (s *JobStore) Create(job types.Job) (*types.Job, error) {
	if job.ID == "" {
		return nil, fmt.Errorf("bootstrap: job ID is required")
	}
	if job.Status == "" {
		job.Status = types.JobQueued
	}
	if err := persistence.WriteJSON(s.path(job.ID), job); err != nil {
		return nil, fmt.Errorf("bootstrap: create job %s: %w", job.ID, err)
	}
	return &job, nil
}

// Get returns jobID's persisted record, or ErrJobNotFound.
func (s *JobStore) Get(jobID string) (*types.Job, error) {
	var j types.Job
	err := persistence.ReadJSON(s.path(jobID), &j)
	if persistence.IsNotExist(err) {
		return nil, fmt.Errorf("%w: %s", ErrJobNotFound, jobID)
	}
	if err != nil {
		return nil, fmt.Errorf("bootstrap: read job %s: %w", jobID, err)
	}
	return &j, nil
}

// Save overwrites job's persisted record, used to report progress and
// terminal status as the indexer runs.
func (s *JobStore) Save(job *types.Job) error {
	if err := persistence.WriteJSON(s.path(job.ID), job); err != nil {
		return fmt.Errorf("bootstrap: save job %s: %w", job.ID, err)
	}
	return nil
}

// ListForRepo returns every job record for repoID, in no particular
// order.
func (s *JobStore) ListForRepo(repoID string) ([]types.Job, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("bootstrap: list jobs: %w", err)
	}

	var jobs []types.Job
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		jobID := strings.TrimSuffix(entry.Name(), ".json")
		job, err := s.Get(jobID)
		if err != nil {
			continue
		}
		if job.RepoID == repoID {
			jobs = append(jobs, *job)
		}
	}
	return jobs, nil
}

// TryAcquireJobLock attempts to acquire repoID's index lock without
// blocking. On success it returns a release function the caller must
// call when the job finishes (success or failure). On failure it
// returns ErrJobLocked; the lock file's contents (readable via
// ReadLockInfo) identify the holder.
func (s *JobStore) TryAcquireJobLock(repoID string) (func(), error) {
	if err := os.MkdirAll(s.baseDir, 0750); err != nil {
		return nil, fmt.Errorf("bootstrap: create job lock dir: %w", err)
	}

	f, err := os.OpenFile(s.lockPath(repoID), os.O_CREATE|os.O_RDWR, 0600)
	if err != nil {
		return nil, fmt.Errorf("bootstrap: open lock file: %w", err)
	}

	if err := syscall.Flock(int(f.Fd()), syscall.LOCK_EX|syscall.LOCK_NB); err != nil {
		_ = f.Close()
		if err == syscall.EWOULDBLOCK {
			return nil, fmt.Errorf("%w: %s", ErrJobLocked, repoID)
		}
		return nil, fmt.Errorf("bootstrap: flock: %w", err)
	}

	if err := f.Truncate(0); err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("bootstrap: truncate lock file: %w", err)
	}
	if _, err := f.Seek(0, 0); err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("bootstrap: seek lock file: %w", err)
	}
	info := LockInfo{PID: os.Getpid(), StartedAt: time.Now()}
	data, err := json.Marshal(info)
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("bootstrap: marshal lock info: %w", err)
	}
	if _, err := f.Write(data); err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("bootstrap: write lock info: %w", err)
	}

	return func() {
		_ = syscall.Flock(int(f.Fd()), syscall.LOCK_UN)
		_ = f.Close()
	}, nil
}

// ReadLockInfo returns the PID and start time recorded by whichever
// process currently holds (or last held) repoID's index lock, or nil
// if no lock file exists yet.
func (s *JobStore) ReadLockInfo(repoID string) (*LockInfo, error) {
	data, err := os.ReadFile(s.lockPath(repoID))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("bootstrap: read lock info: %w", err)
	}
	var info LockInfo
	if err := json.Unmarshal(data, &info); err != nil {
		return nil, fmt.Errorf("bootstrap: parse lock info: %w", err)
	}
	return &info, nil
}
