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

package retriever

import (
	"regexp"

	"github.com/kraklabs/codectx/pkg/types"
)

// Role classifies a file by what it's for, letting a caller exclude
// noise (tests, generated code, vendored dependencies) from a search
// focused on hand-written implementation.
type Role string

const (
	RoleSource    Role = "source"
	RoleTest      Role = "test"
	RoleGenerated Role = "generated"
	RoleVendor    Role = "vendor"
)

var (
	testFilePattern = regexp.MustCompile(
		`(?i)(_test\.go|test\.ts|test\.tsx|test\.js|\.test\.|_test\.py|tests/|__tests__/)`)
	generatedFilePattern = regexp.MustCompile(
		`(?i)(\.pb\.go|_generated\.go|\.gen\.go|_gen\.go|\.generated\.|/generated/)`)
	vendorFilePattern = regexp.MustCompile(
		`(?i)(^|/)(vendor|node_modules)/`)
)

// ClassifyRole returns the Role a file path belongs to. A path matching
// more than one pattern (e.g. a generated test fixture) resolves to the
// first match in vendor > generated > test > source priority order,
// since vendored/generated code is the strongest signal of non-authored
// content.
func ClassifyRole(filePath string) Role {
	switch {
	case vendorFilePattern.MatchString(filePath):
		return RoleVendor
	case generatedFilePattern.MatchString(filePath):
		return RoleGenerated
	case testFilePattern.MatchString(filePath):
		return RoleTest
	default:
		return RoleSource
	}
}

// filterByRole drops every candidate whose file classifies into one of
// excluded. A nil or empty excluded list is a no-op.
func filterByRole(candidates []types.Candidate, excluded []Role) []types.Candidate {
	if len(excluded) == 0 {
		return candidates
	}
	excludedSet := make(map[Role]bool, len(excluded))
	for _, r := range excluded {
		excludedSet[r] = true
	}

	kept := candidates[:0]
	for _, c := range candidates {
		if !excludedSet[ClassifyRole(c.Entity.FilePath)] {
			kept = append(kept, c)
		}
	}
	return kept
}
