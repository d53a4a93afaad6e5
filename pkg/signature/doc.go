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

// Package signature collapses duplicate functions within a repository.
// A signature is sha1(name + whitespace-stripped code). The first
// occurrence seen becomes the representative entity upserted into the
// vector store; later occurrences of the same signature (including
// across files — a moved or copy-pasted function collapses deliberately,
// not as a bug) only bump the occurrence count.
package signature
