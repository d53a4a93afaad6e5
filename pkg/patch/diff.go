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

package patch

import (
	"regexp"
	"strings"
)

const (
	maxPatchChars = 300000
	maxFiles      = 50
)

var (
	sourceHeaderRe = regexp.MustCompile(`^--- (\S+)`)
	destHeaderRe   = regexp.MustCompile(`^\+\+\+ (\S+)`)
	hunkHeaderRe   = regexp.MustCompile(`^@@ -\d+(?:,\d+)? \+\d+(?:,\d+)? @@`)
)

// ParsedDiff is the result of parsing a unified-diff blob.
type ParsedDiff struct {
	Files     []string
	HunkCount int
}

// ParseDiff extracts destination file paths from "+++" headers (falling
// back to the paired "---" source path for deletions, where the
// destination is "/dev/null") and counts "@@" hunk headers.
func ParseDiff(diff string) *ParsedDiff {
	var lastSource string
	seen := make(map[string]bool)
	result := &ParsedDiff{}

	for _, line := range strings.Split(diff, "\n") {
		if m := sourceHeaderRe.FindStringSubmatch(line); m != nil {
			lastSource = stripGitPrefix(m[1])
			continue
		}
		if m := destHeaderRe.FindStringSubmatch(line); m != nil {
			dest := stripGitPrefix(m[1])
			path := dest
			if dest == "/dev/null" {
				path = lastSource
			}
			if path != "" && path != "/dev/null" && !seen[path] {
				seen[path] = true
				result.Files = append(result.Files, path)
			}
			continue
		}
		if hunkHeaderRe.MatchString(line) {
			result.HunkCount++
		}
	}
	return result
}

func stripGitPrefix(path string) string {
	switch {
	case strings.HasPrefix(path, "a/"), strings.HasPrefix(path, "b/"):
		return path[2:]
	default:
		return path
	}
}

// ValidateOptions configures Validate beyond the fixed structural rules
// (size, path safety, file-count ceiling) that always apply.
type ValidateOptions struct {
	// RestrictToFiles, when EnforceRestriction is set, is the only set of
	// paths the patch is allowed to touch.
	RestrictToFiles    []string
	EnforceRestriction bool
}

// ValidationResult mirrors the spec's {ok, issues[], files[]} contract.
type ValidationResult struct {
	OK     bool
	Issues []string
	Files  []string
}

// Validate checks a unified-diff blob against the fixed safety rules
// plus any restriction in opts, returning every file path the patch
// touches (repo-root-relative, "..-free) regardless of whether it is
// later rejected for restriction violations — callers that need just
// the allowed subset should intersect Files with opts.RestrictToFiles.
func Validate(diffText string, opts ValidateOptions) ValidationResult {
	var issues []string

	if strings.TrimSpace(diffText) == "" {
		return ValidationResult{OK: false, Issues: []string{"patch is empty"}}
	}
	if len(diffText) > maxPatchChars {
		issues = append(issues, "patch exceeds maximum size of 300000 characters")
	}

	parsed := ParseDiff(diffText)
	files := make([]string, 0, len(parsed.Files))
	allowed := restrictionSet(opts)

	for _, f := range parsed.Files {
		if filepathIsAbsolute(f) {
			issues = append(issues, "absolute path not allowed: "+f)
			continue
		}
		if containsDotDot(f) {
			issues = append(issues, "path escapes repository root: "+f)
			continue
		}
		files = append(files, f)
		if opts.EnforceRestriction && !allowed[f] {
			issues = append(issues, "File not allowed by restriction: "+f)
		}
	}

	if len(files) > maxFiles {
		issues = append(issues, "patch touches more than 50 files")
	}

	return ValidationResult{
		OK:     len(issues) == 0,
		Issues: issues,
		Files:  files,
	}
}

func restrictionSet(opts ValidateOptions) map[string]bool {
	set := make(map[string]bool, len(opts.RestrictToFiles))
	for _, f := range opts.RestrictToFiles {
		set[f] = true
	}
	return set
}

func filepathIsAbsolute(p string) bool {
	return strings.HasPrefix(p, "/") || strings.HasPrefix(p, "\\")
}

func containsDotDot(p string) bool {
	for _, seg := range strings.Split(p, "/") {
		if seg == ".." {
			return true
		}
	}
	return false
}
