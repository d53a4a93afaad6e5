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
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

const sampleDiff = `diff --git a/src/auth.py b/src/auth.py
index 1111111..2222222 100644
--- a/src/auth.py
+++ b/src/auth.py
@@ -1,3 +1,4 @@
 def login(user, pw):
+    audit(user)
     return check(user, pw)
`

const twoFileDiff = sampleDiff + `diff --git a/src/db.py b/src/db.py
index 3333333..4444444 100644
--- a/src/db.py
+++ b/src/db.py
@@ -10,2 +10,3 @@
 def connect():
+    retry()
     return pool.get()
`

func TestParseDiff_ExtractsDestinationFileAndHunkCount(t *testing.T) {
	parsed := ParseDiff(sampleDiff)
	assert.Equal(t, []string{"src/auth.py"}, parsed.Files)
	assert.Equal(t, 1, parsed.HunkCount)
}

func TestParseDiff_MultipleFilesAndHunks(t *testing.T) {
	parsed := ParseDiff(twoFileDiff)
	assert.Equal(t, []string{"src/auth.py", "src/db.py"}, parsed.Files)
	assert.Equal(t, 2, parsed.HunkCount)
}

func TestParseDiff_DeletionFallsBackToSourcePath(t *testing.T) {
	diff := `diff --git a/src/old.py b/src/old.py
deleted file mode 100644
index 1111111..0000000
--- a/src/old.py
+++ /dev/null
@@ -1,2 +0,0 @@
-def unused():
-    pass
`
	parsed := ParseDiff(diff)
	assert.Equal(t, []string{"src/old.py"}, parsed.Files)
}

func TestValidate_EmptyPatchRejected(t *testing.T) {
	result := Validate("", ValidateOptions{})
	assert.False(t, result.OK)
	assert.Contains(t, result.Issues, "patch is empty")
}

func TestValidate_OversizedPatchRejected(t *testing.T) {
	huge := strings.Repeat("a", maxPatchChars+1)
	result := Validate(huge, ValidateOptions{})
	assert.False(t, result.OK)
	assert.Contains(t, result.Issues[0], "maximum size")
}

func TestValidate_AbsolutePathRejected(t *testing.T) {
	diff := `--- /etc/passwd
+++ /etc/passwd
@@ -1,1 +1,1 @@
-root
+toor
`
	result := Validate(diff, ValidateOptions{})
	assert.False(t, result.OK)
	assert.True(t, anyContains(result.Issues, "absolute path"))
}

func TestValidate_DotDotPathRejected(t *testing.T) {
	diff := `--- a/../../etc/passwd
+++ b/../../etc/passwd
@@ -1,1 +1,1 @@
-root
+toor
`
	result := Validate(diff, ValidateOptions{})
	assert.False(t, result.OK)
	assert.True(t, anyContains(result.Issues, "escapes repository root"))
}

func TestValidate_WellFormedPatchPasses(t *testing.T) {
	result := Validate(sampleDiff, ValidateOptions{})
	assert.True(t, result.OK)
	assert.Empty(t, result.Issues)
	assert.Equal(t, []string{"src/auth.py"}, result.Files)
}

func TestValidate_RestrictionAllowsListedFile(t *testing.T) {
	result := Validate(sampleDiff, ValidateOptions{
		RestrictToFiles:    []string{"src/auth.py"},
		EnforceRestriction: true,
	})
	assert.True(t, result.OK)
	assert.Equal(t, []string{"src/auth.py"}, result.Files)
}

func TestValidate_RestrictionRejectsUnlistedFile(t *testing.T) {
	result := Validate(twoFileDiff, ValidateOptions{
		RestrictToFiles:    []string{"src/auth.py"},
		EnforceRestriction: true,
	})
	assert.False(t, result.OK)
	assert.Contains(t, result.Issues, "File not allowed by restriction: src/db.py")
}

func TestValidate_MoreThan50FilesRejected(t *testing.T) {
	var sb strings.Builder
	for i := 0; i < 51; i++ {
		n := strconv.Itoa(i)
		sb.WriteString("--- a/file")
		sb.WriteString(n)
		sb.WriteString(".py\n+++ b/file")
		sb.WriteString(n)
		sb.WriteString(".py\n@@ -1,1 +1,1 @@\n-a\n+b\n")
	}
	result := Validate(sb.String(), ValidateOptions{})
	assert.False(t, result.OK)
	assert.True(t, anyContains(result.Issues, "more than 50 files"))
}

func anyContains(haystack []string, substr string) bool {
	for _, s := range haystack {
		if strings.Contains(s, substr) {
			return true
		}
	}
	return false
}

