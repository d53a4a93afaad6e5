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
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/kraklabs/codectx/pkg/embed"
	"github.com/kraklabs/codectx/pkg/ingestion"
	"github.com/kraklabs/codectx/pkg/llm"
	"github.com/kraklabs/codectx/pkg/ltr"
	"github.com/kraklabs/codectx/pkg/patch"
	"github.com/kraklabs/codectx/pkg/vectorstore"
)

// VectorStoreConfig selects and configures the entity vector backend.
type VectorStoreConfig struct {
	// Backend is "memory" or "qdrant". Defaults to "memory".
	Backend string
	Qdrant  vectorstore.QdrantConfig
}

// Config controls Environment construction. Every field has a usable
// zero value except Embedder.URL, which must point at a running
// embedding server before EmbedText/EmbedCodeEntity calls will succeed.
type Config struct {
	// DataDir is where repo records, job records, LTR weights, and
	// locks are stored. Defaults to ~/.codectx/data.
	DataDir string

	VectorStore VectorStoreConfig
	Embedder    embed.HTTPConfig
	LLM         llm.ProviderConfig
}

// Environment bundles the services a codectx command needs: storage
// for entities, embeddings, text generation, and the repo/job
// registries that track what has been indexed.
type Environment struct {
	DataDir     string
	VectorStore vectorstore.Backend
	Embedder    embed.Embedder
	LLM         llm.Provider
	Repos       *RepoStore
	Jobs        *JobStore
	Indexer     *ingestion.Indexer
	LTR         *ltr.Store
	Patcher     *patch.Applier

	logger *slog.Logger
}

// New builds an Environment from cfg, creating DataDir if it doesn't
// already exist; the subdirectories beneath it are created by the
// stores on their first write. This is idempotent:
// calling it repeatedly against the same DataDir is safe.
func New(cfg Config, logger *slog.Logger) (*Environment, error) {
	if logger == nil {
		logger = slog.Default()
	}

	dataDir := cfg.DataDir
	if dataDir == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("bootstrap: get home dir: %w", err)
		}
		dataDir = filepath.Join(homeDir, ".codectx", "data")
	}
	if err := os.MkdirAll(dataDir, 0750); err != nil {
		return nil, fmt.Errorf("bootstrap: create data dir: %w", err)
	}

	logger.Info("bootstrap.env.init", "data_dir", dataDir, "vector_store", cfg.VectorStore.Backend)

	store, err := newVectorBackend(cfg.VectorStore)
	if err != nil {
		return nil, fmt.Errorf("bootstrap: vector store: %w", err)
	}

	provider, err := llm.NewProvider(cfg.LLM)
	if err != nil {
		return nil, fmt.Errorf("bootstrap: llm provider: %w", err)
	}

	embedder := embed.NewHTTPEmbedder(cfg.Embedder)

	return &Environment{
		DataDir:     dataDir,
		VectorStore: store,
		Embedder:    embedder,
		LLM:         provider,
		Repos:       NewRepoStore(filepath.Join(dataDir, "repos")),
		Jobs:        NewJobStore(filepath.Join(dataDir, "jobs")),
		Indexer:     ingestion.NewIndexer(embedder, store, logger),
		LTR:         ltr.NewStore(filepath.Join(dataDir, "ltr")),
		Patcher:     patch.NewApplier(nil, logger),
		logger:      logger,
	}, nil
}

func newVectorBackend(cfg VectorStoreConfig) (vectorstore.Backend, error) {
	switch strings.ToLower(cfg.Backend) {
	case "", "memory", "mem":
		return vectorstore.NewMemoryBackend(), nil
	case "qdrant":
		return vectorstore.NewQdrantBackend(cfg.Qdrant)
	default:
		return nil, fmt.Errorf("unknown vector store backend %q", cfg.Backend)
	}
}
