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

// Package graph builds and queries the repository's dependency, call,
// class, and module graphs.
//
// All four graphs share the same underlying arena (Graph): a set of
// nodes plus typed, weighted directed edges. Callers distinguish the
// graphs by the edge Type they add ("imports", "calls", "inherits",
// "module_calls") and by which node IDs they populate, not by any
// separate Go type — cyclic, possibly-disconnected graphs are easiest to
// reason about as one arena with tagged edges rather than four bespoke
// structures.
//
// CallResolver turns the UnresolvedCall values produced by pkg/parser
// into CallEdge values once every file in a repo has been parsed and a
// global function-name index can be built.
package graph
