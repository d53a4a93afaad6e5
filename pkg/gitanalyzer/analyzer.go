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

package gitanalyzer

import (
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"

	"github.com/kraklabs/codectx/pkg/types"
)

const (
	recencyWindow       = 365 * 24 * time.Hour
	historyWindow       = 365 * 24 * time.Hour
	comodificationWindow = 182 * 24 * time.Hour // ~6 months
	comodificationTopN  = 10

	// noGitDefaultSignal is the recency/history value assigned when a
	// path has no git history to derive one from.
	noGitDefaultSignal = 0.5
)

// GitAnalyzer computes Signals from a repository's commit log.
type GitAnalyzer struct {
	logger *slog.Logger
}

// NewGitAnalyzer returns a GitAnalyzer. logger may be nil.
func NewGitAnalyzer(logger *slog.Logger) *GitAnalyzer {
	if logger == nil {
		logger = slog.Default()
	}
	return &GitAnalyzer{logger: logger}
}

// Analyze opens repoPath as a git working copy and computes recency,
// history, and comodification signals for every file touched by a commit
// in the relevant lookback window. now is the reference time for the
// recency/history decay windows (callers pass time.Now() in production;
// tests can pin it). knownPaths lists every file the indexer otherwise
// knows about; when repoPath isn't a git working copy, Recency and
// History default to 0.5 for each of them rather than silently
// map-missing to the zero value.
func (a *GitAnalyzer) Analyze(repoPath string, now time.Time, knownPaths []string) (*types.Signals, error) {
	repo, err := git.PlainOpen(repoPath)
	if err != nil {
		a.logger.Warn("gitanalyzer.not_a_repo", "path", repoPath, "err", err)
		signals := types.NewSignals()
		for _, path := range knownPaths {
			signals.Recency[path] = noGitDefaultSignal
			signals.History[path] = noGitDefaultSignal
		}
		return signals, nil
	}

	iter, err := repo.Log(&git.LogOptions{})
	if err != nil {
		return nil, fmt.Errorf("git log: %w", err)
	}
	defer iter.Close()

	signals := types.NewSignals()
	lastSeen := make(map[string]time.Time)
	changeCount := make(map[string]int)
	comodCount := make(map[string]map[string]int)

	err = iter.ForEach(func(c *object.Commit) error {
		when := c.Author.When
		stats, statErr := c.Stats()
		if statErr != nil {
			// Root commits and merge commits can fail stat diffing; skip
			// rather than abort the whole walk.
			return nil
		}

		var files []string
		for _, st := range stats {
			files = append(files, st.Name)
			if _, seen := lastSeen[st.Name]; !seen {
				lastSeen[st.Name] = when
			}
			if now.Sub(when) <= historyWindow {
				changeCount[st.Name]++
			}
		}

		if now.Sub(when) <= comodificationWindow && len(files) > 1 {
			for _, f := range files {
				if comodCount[f] == nil {
					comodCount[f] = make(map[string]int)
				}
				for _, other := range files {
					if other == f {
						continue
					}
					comodCount[f][other]++
				}
			}
		}

		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk commits: %w", err)
	}

	for path, when := range lastSeen {
		days := now.Sub(when).Hours() / 24
		recency := 1 - days/float64(recencyWindow/(24*time.Hour))
		if recency < 0 {
			recency = 0
		}
		if recency > 1 {
			recency = 1
		}
		signals.Recency[path] = recency
	}

	var maxChanges int
	for _, n := range changeCount {
		if n > maxChanges {
			maxChanges = n
		}
	}
	for path, n := range changeCount {
		if maxChanges == 0 {
			signals.History[path] = 0
			continue
		}
		signals.History[path] = float64(n) / float64(maxChanges)
	}

	for path, counts := range comodCount {
		type pair struct {
			path  string
			count int
		}
		pairs := make([]pair, 0, len(counts))
		for other, n := range counts {
			pairs = append(pairs, pair{other, n})
		}
		sort.Slice(pairs, func(i, j int) bool {
			if pairs[i].count != pairs[j].count {
				return pairs[i].count > pairs[j].count
			}
			return pairs[i].path < pairs[j].path
		})
		if len(pairs) > comodificationTopN {
			pairs = pairs[:comodificationTopN]
		}
		top := make([]string, len(pairs))
		for i, p := range pairs {
			top[i] = p.path
		}
		signals.Comodification[path] = top
	}

	return signals, nil
}
