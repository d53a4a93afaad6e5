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

package ltr

import (
	"fmt"
	"os"
	"path/filepath"
	"syscall"

	"github.com/kraklabs/codectx/pkg/persistence"
	"github.com/kraklabs/codectx/pkg/types"
)

const (
	nudgeRate = 0.05
	minWeight = 0.05
	maxWeight = 0.8
)

// Feedback names files the caller judged relevant or irrelevant to a
// past retrieval, used to nudge the dependency and recency weights
// toward whichever signal better distinguished the two groups.
type Feedback struct {
	RelevantFiles   []string
	IrrelevantFiles []string
}

// Store persists one LTRWeights value per repo as JSON, guarded by a
// flock-based file lock so concurrent feedback calls for the same repo
// (from separate processes, not just goroutines) serialize instead of
// racing to read-modify-write.
type Store struct {
	baseDir string
}

// NewStore returns a Store rooted at baseDir (one subdirectory per repo).
func NewStore(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) weightsPath(repoID string) string {
	return filepath.Join(s.baseDir, repoID, "ltr_weights.json")
}

func (s *Store) lockPath(repoID string) string {
	return filepath.Join(s.baseDir, repoID, "ltr_weights.lock")
}

// Load returns repoID's weights, or the spec-mandated default if none
// have been persisted yet.
func (s *Store) Load(repoID string) (types.LTRWeights, error) {
	var w types.LTRWeights
	err := persistence.ReadJSON(s.weightsPath(repoID), &w)
	if persistence.IsNotExist(err) {
		return types.DefaultLTRWeights(), nil
	}
	if err != nil {
		return types.LTRWeights{}, fmt.Errorf("ltr: load weights for %s: %w", repoID, err)
	}
	return w, nil
}

// ApplyFeedback nudges repoID's dependency and recency weights from fb
// using signals, renormalizes to sum 1, persists atomically, and
// returns the new weights.
func (s *Store) ApplyFeedback(repoID string, fb Feedback, signals *types.Signals) (types.LTRWeights, error) {
	unlock, err := s.lock(repoID)
	if err != nil {
		return types.LTRWeights{}, err
	}
	defer unlock()

	current, err := s.Load(repoID)
	if err != nil {
		return types.LTRWeights{}, err
	}

	posCent := meanSignal(signals.Centrality, fb.RelevantFiles)
	negCent := meanSignal(signals.Centrality, fb.IrrelevantFiles)
	posRec := meanSignal(signals.Recency, fb.RelevantFiles)
	negRec := meanSignal(signals.Recency, fb.IrrelevantFiles)

	current.Dependency = clamp(current.Dependency+nudgeRate*(posCent-negCent), minWeight, maxWeight)
	current.Recency = clamp(current.Recency+nudgeRate*(posRec-negRec), minWeight, maxWeight)
	current = renormalize(current)

	if err := persistence.WriteJSON(s.weightsPath(repoID), current); err != nil {
		return types.LTRWeights{}, fmt.Errorf("ltr: persist weights for %s: %w", repoID, err)
	}
	return current, nil
}

func meanSignal(signal map[string]float64, paths []string) float64 {
	if len(paths) == 0 {
		return 0
	}
	sum := 0.0
	for _, p := range paths {
		sum += signal[p]
	}
	return sum / float64(len(paths))
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func renormalize(w types.LTRWeights) types.LTRWeights {
	sum := w.Semantic + w.Dependency + w.History + w.Recency
	if sum == 0 {
		return types.DefaultLTRWeights()
	}
	if sum > 1-1e-12 && sum < 1+1e-12 {
		// Already normalized; dividing by a float sum like
		// 0.9999999999999999 would only add rounding noise.
		return w
	}
	return types.LTRWeights{
		Semantic:   w.Semantic / sum,
		Dependency: w.Dependency / sum,
		History:    w.History / sum,
		Recency:    w.Recency / sum,
	}
}

// lock acquires an exclusive, blocking flock on repoID's lock file and
// returns a function that releases it. Grounded directly on the
// teacher's index-job lock (cmd/cie/queue.go's TryAcquireLock), but
// blocking rather than non-blocking: feedback writes are quick and
// should wait their turn rather than fail outright.
func (s *Store) lock(repoID string) (func(), error) {
	dir := filepath.Dir(s.lockPath(repoID))
	if err := os.MkdirAll(dir, 0750); err != nil {
		return nil, fmt.Errorf("ltr: create lock dir: %w", err)
	}

	f, err := os.OpenFile(s.lockPath(repoID), os.O_CREATE|os.O_RDWR, 0600)
	if err != nil {
		return nil, fmt.Errorf("ltr: open lock file: %w", err)
	}
	if err := syscall.Flock(int(f.Fd()), syscall.LOCK_EX); err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("ltr: flock: %w", err)
	}

	return func() {
		_ = syscall.Flock(int(f.Fd()), syscall.LOCK_UN)
		_ = f.Close()
	}, nil
}
