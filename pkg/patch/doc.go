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

// Package patch parses and validates unified diffs and applies them to a
// repository through an isolated git worktree: fetch, create a
// fresh-branch worktree off a base ref, dry-run apply with a -p1/-p0
// fallback, commit, and optionally push and open a pull request. A
// failed apply leaves the worktree's files on disk for forensic
// inspection; git's administrative entry for the worktree is not pruned
// either and stays registered until removed by hand.
package patch
