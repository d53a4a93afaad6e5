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

// Package cache is the process-wide retrieval response cache: a
// TTL-evicted in-memory cache keyed by a hash of the repo's version and
// the request itself, so repeated identical requests against an
// unchanged index skip the retrieval pipeline entirely. A repo's
// version bump on index completion naturally invalidates every entry
// keyed against the old version without an explicit sweep.
package cache
