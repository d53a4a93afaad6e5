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

// Package ingestion implements the Indexer: the orchestrator that turns a
// repository on disk into the entities a Retriever can query.
//
// One Indexer.Run call performs, per repository:
//
//  1. Parser: pkg/parser.ParseRepository walks the tree and extracts
//     functions, classes, imports, and chunks per file.
//  2. GraphBuilder: pkg/graph.NewGraphBuilder().Build turns those files
//     into dependency, call, class, and module graphs.
//  3. GitAnalyzer: pkg/gitanalyzer.NewGitAnalyzer().Analyze mines git log
//     for recency/history/comodification signals; the Indexer then fills
//     in the centrality signal from the dependency graph's PageRank.
//  4. SignatureStore: pkg/signature.Store deduplicates functions whose
//     name+body signature has already been seen in this run.
//  5. Embedding: every surviving entity is embedded concurrently, bounded
//     by a golang.org/x/sync/errgroup worker pool so a slow embedding
//     server can't spawn unbounded goroutines.
//  6. VectorStore: the embedded entities are upserted in one call.
//
// The Indexer owns the resulting graphs, signals, and signature store per
// repo, publishing a new snapshot only after every step above succeeds so
// a concurrent reader (the Retriever) always sees either the previous or
// the new snapshot, never a partial one.
package ingestion
