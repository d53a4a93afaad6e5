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
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/kraklabs/codectx/pkg/persistence"
	"github.com/kraklabs/codectx/pkg/types"
)

// ErrRepoExists is returned by RepoStore.Register when the repo ID is
// already registered.
var ErrRepoExists = errors.New("bootstrap: repository already registered")

// ErrRepoNotFound is returned when a repo ID has no persisted record.
var ErrRepoNotFound = errors.New("bootstrap: repository not found")

// RepoStore persists one types.Repository record per repo as JSON
// under baseDir, following the same atomic-write discipline as
// pkg/persistence and pkg/ltr's weight store.
type RepoStore struct {
	baseDir string
}

// NewRepoStore returns a RepoStore rooted at baseDir.
func NewRepoStore(baseDir string) *RepoStore {
	return &RepoStore{baseDir: baseDir}
}

func (s *RepoStore) path(repoID string) string {
	return filepath.Join(s.baseDir, repoID+".json")
}

// Register creates a new repo record. It fails with ErrRepoExists if
// repo.ID is already registered; callers that want to re-index an
// existing repo should use Get followed by Save instead.
func (s *RepoStore) Register(repo types.Repository) (*types.Repository, error) {
	if repo.ID == "" {
		return nil, fmt.Errorf("bootstrap: repository ID is required")
	}
	if _, err := os.Stat(s.path(repo.ID)); err == nil {
		return nil, fmt.Errorf("%w: %s", ErrRepoExists, repo.ID)
	}
	if repo.Status == "" {
		repo.Status = "registered"
	}
	if err := persistence.WriteJSON(s.path(repo.ID), repo); err != nil {
		return nil, fmt.Errorf("bootstrap: register repo %s: %w", repo.ID, err)
	}
	return &repo, nil
}

// Get returns repoID's persisted record, or ErrRepoNotFound if none
// exists.
func (s *RepoStore) Get(repoID string) (*types.Repository, error) {
	var r types.Repository
	err := persistence.ReadJSON(s.path(repoID), &r)
	if persistence.IsNotExist(err) {
		return nil, fmt.Errorf("%w: %s", ErrRepoNotFound, repoID)
	}
	if err != nil {
		return nil, fmt.Errorf("bootstrap: read repo %s: %w", repoID, err)
	}
	return &r, nil
}

// Save overwrites repo's persisted record. Used after a field update
// (status, branch, last-indexed timestamp) or a version bump.
func (s *RepoStore) Save(repo *types.Repository) error {
	if err := persistence.WriteJSON(s.path(repo.ID), repo); err != nil {
		return fmt.Errorf("bootstrap: save repo %s: %w", repo.ID, err)
	}
	return nil
}

// BumpVersion increments repoID's Version and persists it, called when
// an index job completes so cached retrieval responses keyed on the
// old version miss and get recomputed. Returns the new version.
func (s *RepoStore) BumpVersion(repoID string) (int, error) {
	repo, err := s.Get(repoID)
	if err != nil {
		return 0, err
	}
	repo.Version++
	if err := s.Save(repo); err != nil {
		return 0, err
	}
	return repo.Version, nil
}

// List returns every registered repo, in no particular order.
func (s *RepoStore) List() ([]types.Repository, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("bootstrap: list repos: %w", err)
	}

	repos := make([]types.Repository, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		repoID := strings.TrimSuffix(entry.Name(), ".json")
		repo, err := s.Get(repoID)
		if err != nil {
			continue
		}
		repos = append(repos, *repo)
	}
	return repos, nil
}
