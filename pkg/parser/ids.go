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

package parser

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"path/filepath"
)

// GenerateFunctionID builds a stable function entity ID from
// path|name|startLine|endLine|startCol|endCol. Signature is deliberately
// excluded so IDs stay stable across parser refinements that change
// signature formatting.
func GenerateFunctionID(filePath, name string, startLine, endLine, startCol, endCol int) string {
	idStr := fmt.Sprintf("%s|%s|%d|%d|%d|%d", normalizePath(filePath), name, startLine, endLine, startCol, endCol)
	hash := sha256.Sum256([]byte(idStr))
	return fmt.Sprintf("func:%s", hex.EncodeToString(hash[:]))
}

// GenerateClassID builds a stable class/type entity ID the same way
// GenerateFunctionID does, under a "class:" prefix.
func GenerateClassID(filePath, name string, startLine, endLine, startCol, endCol int) string {
	idStr := fmt.Sprintf("%s|%s|%d|%d|%d|%d", normalizePath(filePath), name, startLine, endLine, startCol, endCol)
	hash := sha256.Sum256([]byte(idStr))
	return fmt.Sprintf("class:%s", hex.EncodeToString(hash[:]))
}

// GenerateFileID hashes long paths and uses short ones directly, keeping
// IDs both stable and legible for common repo layouts.
func GenerateFileID(filePath string) string {
	normalized := normalizePath(filePath)
	if len(normalized) <= 256 {
		return fmt.Sprintf("file:%s", normalized)
	}
	hash := sha256.Sum256([]byte(normalized))
	return fmt.Sprintf("file:%s", hex.EncodeToString(hash[:16]))
}

// normalizePath strips a leading "./", cleans the path, forces forward
// slashes, and drops a leading "/" so IDs are stable across platforms.
func normalizePath(path string) string {
	if len(path) >= 2 && path[0:2] == "./" {
		path = path[2:]
	}
	path = filepath.Clean(path)
	path = filepath.ToSlash(path)
	if len(path) > 0 && path[0] == '/' {
		path = path[1:]
	}
	return path
}
