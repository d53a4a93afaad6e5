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

// Package bootstrap wires a codectx Environment: the vector store
// backend, embedder, LLM provider, the Indexer, the LTR weight store,
// the patch applier, and the on-disk repository and job registries that
// the CLI and any long-running server share.
//
// # Initialization workflow
//
//	env, err := bootstrap.New(bootstrap.Config{
//	    DataDir: "~/.codectx/data",
//	    VectorStore: bootstrap.VectorStoreConfig{Backend: "memory"},
//	    Embedder:    embed.HTTPConfig{URL: "http://localhost:11434", Model: "nomic-embed-text"},
//	    LLM:         llm.ProviderConfig{Type: "ollama"},
//	}, logger)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	repo, err := env.Repos.Register(types.Repository{ID: "myrepo", LocalPath: "/src/myrepo"})
//
// # Repository and job registries
//
// RepoStore and JobStore each persist one JSON file per record under
// DataDir through pkg/persistence's atomic write-and-rename; no file
// lock is held around those record writes. JobStore additionally
// enforces the "at most one active index job per repo" constraint via a
// non-blocking flock, mirroring the CLI's own index queue.
//
// # Vector store selection
//
// VectorStoreConfig.Backend selects "memory" (pkg/vectorstore's
// in-process backend, suitable for small repos and tests) or "qdrant"
// (a remote collection per repo, for larger corpora).
package bootstrap
