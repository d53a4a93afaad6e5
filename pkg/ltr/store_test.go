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
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kraklabs/codectx/pkg/types"
)

func TestStore_Load_ReturnsDefaultWeightsWhenUnset(t *testing.T) {
	s := NewStore(t.TempDir())
	w, err := s.Load("repo1")
	require.NoError(t, err)
	assert.Equal(t, types.DefaultLTRWeights(), w)
}

func TestStore_ApplyFeedback_PersistsAndRoundTrips(t *testing.T) {
	s := NewStore(t.TempDir())
	signals := &types.Signals{
		Centrality: map[string]float64{"a.go": 0.9, "b.go": 0.1},
		Recency:    map[string]float64{"a.go": 0.8, "b.go": 0.2},
	}

	got, err := s.ApplyFeedback("repo1", Feedback{
		RelevantFiles:   []string{"a.go"},
		IrrelevantFiles: []string{"b.go"},
	}, signals)
	require.NoError(t, err)

	sum := got.Semantic + got.Dependency + got.History + got.Recency
	assert.InDelta(t, 1.0, sum, 1e-9)

	reloaded, err := s.Load("repo1")
	require.NoError(t, err)
	assert.Equal(t, got, reloaded)
}

func TestStore_ApplyFeedback_NudgesDependencyTowardHigherCentralityFiles(t *testing.T) {
	s := NewStore(t.TempDir())
	signals := &types.Signals{
		Centrality: map[string]float64{"a.go": 1.0, "b.go": 0.0},
		Recency:    map[string]float64{"a.go": 0.5, "b.go": 0.5},
	}

	before := types.DefaultLTRWeights()
	got, err := s.ApplyFeedback("repo1", Feedback{
		RelevantFiles:   []string{"a.go"},
		IrrelevantFiles: []string{"b.go"},
	}, signals)
	require.NoError(t, err)

	assert.Greater(t, got.Dependency/(got.Semantic+got.Dependency+got.History+got.Recency),
		before.Dependency/(before.Semantic+before.Dependency+before.History+before.Recency))
}

func TestStore_ApplyFeedback_ClampsWeightsWithinBounds(t *testing.T) {
	s := NewStore(t.TempDir())
	signals := &types.Signals{
		Centrality: map[string]float64{"a.go": 1.0, "b.go": 0.0},
		Recency:    map[string]float64{"a.go": 1.0, "b.go": 0.0},
	}

	var got types.LTRWeights
	var err error
	for i := 0; i < 50; i++ {
		got, err = s.ApplyFeedback("repo1", Feedback{
			RelevantFiles:   []string{"a.go"},
			IrrelevantFiles: []string{"b.go"},
		}, signals)
		require.NoError(t, err)
	}

	assert.GreaterOrEqual(t, got.Dependency, minWeight)
	assert.LessOrEqual(t, got.Dependency, maxWeight)
	assert.GreaterOrEqual(t, got.Recency, minWeight)
	assert.LessOrEqual(t, got.Recency, maxWeight)
}

func TestStore_ApplyFeedback_EmptyFileListsLeaveWeightsRenormalizedOnly(t *testing.T) {
	s := NewStore(t.TempDir())
	got, err := s.ApplyFeedback("repo1", Feedback{}, &types.Signals{
		Centrality: map[string]float64{}, Recency: map[string]float64{},
	})
	require.NoError(t, err)
	assert.Equal(t, types.DefaultLTRWeights(), got)
}

func TestStore_ApplyFeedback_ConcurrentCallsDoNotCorruptFile(t *testing.T) {
	s := NewStore(t.TempDir())
	signals := &types.Signals{
		Centrality: map[string]float64{"a.go": 0.7, "b.go": 0.3},
		Recency:    map[string]float64{"a.go": 0.6, "b.go": 0.4},
	}

	var wg sync.WaitGroup
	errs := make(chan error, 10)
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.ApplyFeedback("repo1", Feedback{
				RelevantFiles:   []string{"a.go"},
				IrrelevantFiles: []string{"b.go"},
			}, signals)
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	w, err := s.Load("repo1")
	require.NoError(t, err)
	sum := w.Semantic + w.Dependency + w.History + w.Recency
	assert.InDelta(t, 1.0, sum, 1e-9)
}
