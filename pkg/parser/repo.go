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
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
)

// skippedDirs names directories ParseRepository never descends into,
// regardless of language: build artifacts and vendored dependencies
// carry no signal worth indexing and can be enormous.
var skippedDirs = map[string]bool{
	"node_modules": true,
	"vendor":       true,
	"dist":         true,
	"build":        true,
}

// ParseRepository walks root, parsing every file whose extension maps to
// a supported Language and skipping hidden directories plus
// node_modules/vendor/dist/build. Per-file parse errors are logged and
// that file is omitted from the result rather than aborting the walk.
func ParseRepository(root string, p CodeParser, logger *slog.Logger) (*RepoParseResult, error) {
	if logger == nil {
		logger = slog.Default()
	}

	result := &RepoParseResult{
		Stats: LanguageStats{Counts: make(map[Language]int)},
	}

	err := filepath.WalkDir(root, func(fullPath string, d fs.DirEntry, err error) error {
		if err != nil {
			logger.Warn("parser.walk.error", "path", fullPath, "err", err)
			return nil
		}

		rel, relErr := filepath.Rel(root, fullPath)
		if relErr != nil {
			return nil
		}
		rel = filepath.ToSlash(rel)

		if d.IsDir() {
			name := d.Name()
			if fullPath != root && (isHidden(name) || skippedDirs[name]) {
				return filepath.SkipDir
			}
			return nil
		}

		if isHidden(d.Name()) {
			return nil
		}

		lang := DetectLanguage(rel)
		result.Stats.Total++
		result.Stats.Counts[lang]++
		if lang == LangUnknown {
			return nil
		}

		content, readErr := os.ReadFile(fullPath)
		if readErr != nil {
			logger.Warn("parser.walk.read_error", "path", rel, "err", readErr)
			return nil
		}

		pr, parseErr := p.ParseFile(FileInfo{RepoRoot: root, Path: rel, Content: content})
		if parseErr != nil {
			logger.Warn("parser.walk.parse_error", "path", rel, "err", parseErr)
			return nil
		}
		if pr != nil {
			result.Files = append(result.Files, *pr)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return result, nil
}

func isHidden(name string) bool {
	return len(name) > 1 && name[0] == '.'
}
