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

// Package vectorstore defines the Backend abstraction over an entity
// embedding index and ships two implementations: an in-process
// brute-force Memory backend (the default — no external service
// required) and a Qdrant-backed remote backend for larger repositories.
//
// Backend.Query returns a RawScore as reported by the underlying index
// without normalizing it to [0,1]: some backends report cosine
// similarity, others report a distance that can exceed 1. Resolving that
// ambiguity is the Retriever's job, not the Backend's — see pkg/retriever.
package vectorstore
