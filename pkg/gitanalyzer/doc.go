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

// Package gitanalyzer derives per-file ranking signals from a
// repository's commit history: recency, change frequency, and
// co-modification. When a path isn't a git working copy, Analyze
// returns, rather than an error, Signals whose recency and history are
// the neutral 0.5 for every known path.
package gitanalyzer
