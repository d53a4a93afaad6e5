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

// Package retriever implements the Retriever: it turns a query plus a
// retrieval mode into a ranked, deduplicated set of chunks.
//
// Pipeline, always in this order within one request: candidate
// normalization -> preferred-file adjustment -> hybrid rerank ->
// cross-encoder rerank -> weighted rank -> dedup -> selection ->
// (optional) neighbor expansion -> (optional) agentic expansion. Every
// step from cross-encoder rerank onward is deterministic given the same
// upstream candidates — neighbor and agentic expansion are the only
// steps that can add candidates outside the initial vector search.
package retriever
