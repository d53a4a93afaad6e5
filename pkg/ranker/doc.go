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

// Package ranker scores and orders retrieval candidates. It has three
// pieces that the Retriever composes in sequence:
//
//   - HybridScorer blends semantic similarity with a cheap lexical term
//     overlap signal, producing the order candidates enter weighted
//     ranking in.
//   - Reranker is a capability-set interface (tagged-union polymorphism,
//     not inheritance): a CrossEncoderReranker variant that re-scores
//     pairs against the query text, and a NoOpReranker variant used when
//     no model is loaded or reranking is disabled. Both satisfy the same
//     interface so callers never branch on which one they hold.
//   - Ranker applies the weighted multi-signal formula (semantic,
//     dependency centrality, history, recency) and attaches a reasons
//     list documenting every non-zero signal.
package ranker
