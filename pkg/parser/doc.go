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

// Package parser extracts syntactic entities (functions, classes, imports)
// and line-bounded chunks from source files using Tree-sitter.
//
// Supported languages are detected by file extension: .py (python),
// .js/.jsx/.ts/.tsx (javascript), .java (java). Other files are excluded
// from AST parsing but can still be chunked as fixed sliding windows.
//
// ParseRepository walks a directory tree, skipping hidden directories and
// node_modules/vendor/dist/build, and returns one ParseResult per file plus
// aggregate language statistics.
package parser
