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
	"bufio"
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/kraklabs/codectx/pkg/embed"
	"github.com/kraklabs/codectx/pkg/gitanalyzer"
	"github.com/kraklabs/codectx/pkg/graph"
	"github.com/kraklabs/codectx/pkg/parser"
	"github.com/kraklabs/codectx/pkg/signature"
	"github.com/kraklabs/codectx/pkg/types"
	"github.com/kraklabs/codectx/pkg/vectorstore"
)

const defaultEmbedWorkers = 8

// IndexResult summarizes one Indexer.Run call.
type IndexResult struct {
	RepoID             string                   `json:"repo_id"`
	FilesProcessed     int                      `json:"files_processed"`
	FunctionsExtracted int                      `json:"functions_extracted"`
	ClassesExtracted   int                      `json:"classes_extracted"`
	ChunksExtracted    int                      `json:"chunks_extracted"`
	DuplicatesSkipped  int                      `json:"duplicates_skipped"`
	EntitiesUpserted   int                      `json:"entities_upserted"`
	EmbeddingErrors    int                      `json:"embedding_errors"`
	LanguageStats      map[parser.Language]int  `json:"language_stats"`
	ParseDuration      time.Duration            `json:"parse_duration"`
	EmbedDuration      time.Duration            `json:"embed_duration"`
	WriteDuration      time.Duration            `json:"write_duration"`
	TotalDuration      time.Duration            `json:"total_duration"`
}

// repoState is the immutable-per-completed-run snapshot an Indexer keeps
// for a repo: the dependency/call/class/module graphs, the signal maps a
// ranker scores against, and the signature store used for duplicate
// detection across repeated or near-identical functions.
type repoState struct {
	graphs   graph.Graphs
	signals  *types.Signals
	sigStore *signature.Store
}

// Indexer orchestrates Parser -> GraphBuilder -> GitAnalyzer -> VectorStore
// for one repository at a time and owns the resulting in-memory graphs,
// signals, and signature store keyed by repo ID (spec.md §2, §4.3's
// "Indexer exclusively owns graphs, signatures, and signal maps").
//
// State is published per repo as a single atomic pointer swap on
// completion: concurrent retrieval reads either the previous snapshot or
// the new one, never a partially updated one, matching the single-writer
// multi-reader policy in spec.md §5.
type Indexer struct {
	embedder     embed.Embedder
	store        vectorstore.Backend
	logger       *slog.Logger
	embedWorkers int

	mu    sync.RWMutex
	state map[string]*repoState
}

// NewIndexer returns an Indexer that embeds entities with embedder and
// writes them to store. logger may be nil.
func NewIndexer(embedder embed.Embedder, store vectorstore.Backend, logger *slog.Logger) *Indexer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Indexer{
		embedder:     embedder,
		store:        store,
		logger:       logger,
		embedWorkers: defaultEmbedWorkers,
		state:        make(map[string]*repoState),
	}
}

// Graphs returns repoID's most recently published dependency/call/class/
// module graphs, or false if no index run has completed for it yet.
func (ix *Indexer) Graphs(repoID string) (graph.Graphs, bool) {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	st, ok := ix.state[repoID]
	if !ok {
		return graph.Graphs{}, false
	}
	return st.graphs, true
}

// Signals returns repoID's most recently published Signals, or false if
// no index run has completed for it yet.
func (ix *Indexer) Signals(repoID string) (*types.Signals, bool) {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	st, ok := ix.state[repoID]
	if !ok {
		return nil, false
	}
	return st.signals, true
}

// SignatureStore returns repoID's signature store, or false if no index
// run has completed for it yet.
func (ix *Indexer) SignatureStore(repoID string) (*signature.Store, bool) {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	st, ok := ix.state[repoID]
	if !ok {
		return nil, false
	}
	return st.sigStore, true
}

// Forget drops repoID's published graphs/signals/signature store and its
// vector store entries, releasing everything the Indexer owns for it
// (spec.md §4.3: "deletion of a repo transitively releases them and
// vector entries").
func (ix *Indexer) Forget(ctx context.Context, repoID string) error {
	ix.mu.Lock()
	delete(ix.state, repoID)
	ix.mu.Unlock()

	if err := ix.store.DeleteRepository(ctx, repoID); err != nil {
		return fmt.Errorf("ingestion: delete vector entries for %s: %w", repoID, err)
	}
	return nil
}

// Run parses repoPath, builds its graphs and git-derived signals, embeds
// every extracted file/class/function/chunk entity, deduplicates
// near-identical functions via a signature store, and upserts the
// survivors into the vector store. It publishes the new graphs/signals/
// signature store for repoID only after every step succeeds.
func (ix *Indexer) Run(ctx context.Context, repoID, repoPath string) (*IndexResult, error) {
	runStart := time.Now()
	ix.logger.Info("indexer.run.start", "repo_id", repoID, "repo_path", repoPath)

	parseStart := time.Now()
	parsed, err := parser.ParseRepository(repoPath, parser.NewTreeSitterParser(ix.logger), ix.logger)
	if err != nil {
		ingMetrics.recordFailure()
		return nil, fmt.Errorf("ingestion: parse repository: %w", err)
	}
	parseDuration := time.Since(parseStart)

	graphs := graph.NewGraphBuilder().Build(parsed.Files)

	knownPaths := make([]string, 0, len(parsed.Files))
	for _, f := range parsed.Files {
		knownPaths = append(knownPaths, f.FilePath)
	}
	signals, err := gitanalyzer.NewGitAnalyzer(ix.logger).Analyze(repoPath, time.Now(), knownPaths)
	if err != nil {
		ingMetrics.recordFailure()
		return nil, fmt.Errorf("ingestion: analyze git history: %w", err)
	}
	signals.Centrality = graphs.Dependency.Centrality()

	sigStore := signature.NewStore()
	entities, classCount, funcCount, chunkCount, duplicatesSkipped := ix.buildEntities(repoID, repoPath, parsed, sigStore)

	embedStart := time.Now()
	embeddingErrors := ix.embedEntities(ctx, entities)
	embedDuration := time.Since(embedStart)

	upsertable := entities[:0:0] //nolint:staticcheck // explicit zero-cap slice: append allocates fresh storage, leaving entities untouched
	for _, e := range entities {
		if len(e.Embedding) > 0 {
			upsertable = append(upsertable, e)
		}
	}

	writeStart := time.Now()
	if err := ix.store.Upsert(ctx, repoID, upsertable); err != nil {
		ingMetrics.recordFailure()
		return nil, fmt.Errorf("ingestion: upsert entities: %w", err)
	}
	writeDuration := time.Since(writeStart)

	ix.mu.Lock()
	ix.state[repoID] = &repoState{graphs: graphs, signals: signals, sigStore: sigStore}
	ix.mu.Unlock()

	result := &IndexResult{
		RepoID:             repoID,
		FilesProcessed:     len(parsed.Files),
		FunctionsExtracted: funcCount,
		ClassesExtracted:   classCount,
		ChunksExtracted:    chunkCount,
		DuplicatesSkipped:  duplicatesSkipped,
		EntitiesUpserted:   len(upsertable),
		EmbeddingErrors:    embeddingErrors,
		LanguageStats:      parsed.Stats.Counts,
		ParseDuration:      parseDuration,
		EmbedDuration:      embedDuration,
		WriteDuration:      writeDuration,
		TotalDuration:      time.Since(runStart),
	}

	ix.logger.Info("indexer.run.complete",
		"repo_id", repoID,
		"files", result.FilesProcessed,
		"functions", result.FunctionsExtracted,
		"classes", result.ClassesExtracted,
		"chunks", result.ChunksExtracted,
		"entities_upserted", result.EntitiesUpserted,
		"duplicates_skipped", result.DuplicatesSkipped,
		"embedding_errors", result.EmbeddingErrors,
		"total_duration_ms", result.TotalDuration.Milliseconds(),
	)
	ingMetrics.record(result)
	return result, nil
}

// buildEntities converts one repository's parse output into the flat
// types.Entity list the vector store indexes, deduplicating functions
// whose body-and-name signature has already been seen (e.g. generated
// boilerplate repeated across files) via sigStore.
func (ix *Indexer) buildEntities(repoID, repoPath string, parsed *parser.RepoParseResult, sigStore *signature.Store) (entities []types.Entity, classCount, funcCount, chunkCount, duplicatesSkipped int) {
	for _, f := range parsed.Files {
		lang := string(f.Language)

		entities = append(entities, types.Entity{
			ID:       repoID + ":" + parser.GenerateFileID(f.FilePath),
			RepoID:   repoID,
			FilePath: f.FilePath,
			Type:     types.EntityFile,
			Name:     filepath.Base(f.FilePath),
			Language: lang,
		})

		for _, fn := range f.Functions {
			funcCount++
			sig := signature.Sign(fn.Name, fn.Code)
			entityID := repoID + ":" + fn.ID
			rep, isNew := sigStore.Upsert(sig, entityID)
			if !isNew {
				duplicatesSkipped++
				ix.logger.Debug("indexer.function.duplicate", "entity_id", entityID, "representative", rep)
				continue
			}
			entities = append(entities, types.Entity{
				ID:        entityID,
				RepoID:    repoID,
				FilePath:  fn.FilePath,
				Type:      types.EntityFunction,
				Name:      fn.Name,
				Code:      fn.Code,
				Language:  lang,
				StartLine: fn.StartLine,
				EndLine:   fn.EndLine,
			})
		}

		for _, cls := range f.Classes {
			classCount++
			entities = append(entities, types.Entity{
				ID:        repoID + ":" + cls.ID,
				RepoID:    repoID,
				FilePath:  cls.FilePath,
				Type:      types.EntityClass,
				Name:      cls.Name,
				Code:      cls.Code,
				Language:  lang,
				StartLine: cls.StartLine,
				EndLine:   cls.EndLine,
			})
		}

		for i, chunk := range f.Chunks {
			chunkCount++
			code, err := readLines(repoPath, f.FilePath, chunk.StartLine, chunk.EndLine)
			if err != nil {
				ix.logger.Warn("indexer.chunk.read_error", "file", f.FilePath, "err", err)
				continue
			}
			chunkID := fmt.Sprintf("%s:chunk:%s:%d", repoID, f.FilePath, i)
			entities = append(entities, types.Entity{
				ID:        chunkID,
				RepoID:    repoID,
				FilePath:  f.FilePath,
				Type:      types.EntityChunk,
				Name:      fmt.Sprintf("%s:%d-%d", filepath.Base(f.FilePath), chunk.StartLine, chunk.EndLine),
				Code:      code,
				Language:  lang,
				StartLine: chunk.StartLine,
				EndLine:   chunk.EndLine,
				ChunkID:   chunkID,
				ChunkKind: types.ChunkKind(chunk.Kind),
			})
		}
	}
	return entities, classCount, funcCount, chunkCount, duplicatesSkipped
}

// embedEntities fills in Embedding for every entity using up to
// ix.embedWorkers concurrent calls, via golang.org/x/sync/errgroup's
// bounded group so a slow or rate-limited embedding server can't spawn
// one goroutine per entity. A single entity's embedding failure is
// logged and counted, not propagated: a partially embedded repo (minus
// the failed entities) is still useful, unlike aborting the whole run.
func (ix *Indexer) embedEntities(ctx context.Context, entities []types.Entity) int {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(ix.embedWorkers)

	var mu sync.Mutex
	errorCount := 0

	for i := range entities {
		i := i
		g.Go(func() error {
			vec, err := ix.embedder.EmbedCodeEntity(gctx, entities[i])
			if err != nil {
				mu.Lock()
				errorCount++
				mu.Unlock()
				ix.logger.Warn("indexer.embed.error", "entity_id", entities[i].ID, "err", err)
				return nil
			}
			entities[i].Embedding = vec
			return nil
		})
	}
	_ = g.Wait() // no Go call above ever returns a non-nil error
	return errorCount
}

// readLines returns the text of [startLine, endLine] (0-based, inclusive)
// from repoPath/relPath. Chunks carry only their line span, not their
// text, so the Indexer re-reads the file rather than threading raw file
// content through the parser's output structs.
func readLines(repoPath, relPath string, startLine, endLine int) (string, error) {
	data, err := os.ReadFile(filepath.Join(repoPath, filepath.FromSlash(relPath)))
	if err != nil {
		return "", fmt.Errorf("read %s: %w", relPath, err)
	}

	var buf bytes.Buffer
	scanner := bufio.NewScanner(bytes.NewReader(data))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	line := 0
	for scanner.Scan() {
		if line >= startLine && line <= endLine {
			buf.Write(scanner.Bytes())
			buf.WriteByte('\n')
		}
		line++
		if line > endLine {
			break
		}
	}
	return buf.String(), scanner.Err()
}
