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

// Package embed implements the Embedder external interface: the
// capability set {embed_text, embed_code_entity}. HTTPEmbedder talks to
// whichever local or hosted embedding server is configured — Ollama,
// llama.cpp, or an OpenAI-compatible endpoint (TEI, vLLM) — detected
// from the endpoint URL shape, the same heuristic the indexing pipeline
// this package is adapted from already used for query-time embeddings.
package embed
