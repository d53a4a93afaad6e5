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

// Package prompt assembles an LLM chat request from retrieval results
// under a caller-supplied token budget: a system prompt, the task
// description, optional per-file header blocks, and then as many base
// and neighbor code chunks as fit — greedily, in order, skipping
// whatever would overflow the budget rather than failing the whole
// request.
package prompt
