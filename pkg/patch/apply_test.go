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
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/stretchr/testify/require"
)

// requireGit skips tests that need the real git binary's worktree/apply
// subcommands, which go-git does not implement natively.
func requireGit(t *testing.T) {
	t.Helper()
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git binary not available")
	}
}

func initRepoWithFile(t *testing.T, path, contents string) string {
	t.Helper()
	dir := t.TempDir()
	repo, err := git.PlainInit(dir, false)
	require.NoError(t, err)

	fullPath := filepath.Join(dir, path)
	require.NoError(t, os.MkdirAll(filepath.Dir(fullPath), 0750))
	require.NoError(t, os.WriteFile(fullPath, []byte(contents), 0640))

	wt, err := repo.Worktree()
	require.NoError(t, err)
	_, err = wt.Add(path)
	require.NoError(t, err)
	_, err = wt.Commit("initial commit", &git.CommitOptions{
		Author: &object.Signature{Name: "seed", Email: "seed@codectx.local"},
	})
	require.NoError(t, err)

	return dir
}

func TestApplier_Apply_AppliesCommitsOnFreshBranch(t *testing.T) {
	requireGit(t)

	repoPath := initRepoWithFile(t, "src/auth.py", "def login(user, pw):\n    return check(user, pw)\n")

	diff := `diff --git a/src/auth.py b/src/auth.py
index 1111111..2222222 100644
--- a/src/auth.py
+++ b/src/auth.py
@@ -1,2 +1,3 @@
 def login(user, pw):
+    audit(user)
     return check(user, pw)
`
	applier := NewApplier(nil, nil)
	result, err := applier.Apply(context.Background(), repoPath, ApplyRequest{
		Patch:         diff,
		BaseBranch:    "master",
		CommitMessage: "add audit call",
	})
	require.NoError(t, err)
	require.NotEmpty(t, result.Commit)
	require.True(t, result.Validation.OK)
}

func TestApplier_Apply_InvalidPatchNeverCreatesWorktree(t *testing.T) {
	requireGit(t)

	repoPath := initRepoWithFile(t, "src/auth.py", "def login(user, pw):\n    return check(user, pw)\n")

	applier := NewApplier(nil, nil)
	_, err := applier.Apply(context.Background(), repoPath, ApplyRequest{Patch: ""})
	require.ErrorIs(t, err, ErrPatchInvalid)
}

func TestApplier_Apply_RestrictionViolationRejectsBeforeApply(t *testing.T) {
	requireGit(t)

	repoPath := initRepoWithFile(t, "src/db.py", "def connect():\n    return pool.get()\n")

	diff := `diff --git a/src/db.py b/src/db.py
index 1111111..2222222 100644
--- a/src/db.py
+++ b/src/db.py
@@ -1,2 +1,3 @@
 def connect():
+    retry()
     return pool.get()
`
	applier := NewApplier(nil, nil)
	_, err := applier.Apply(context.Background(), repoPath, ApplyRequest{
		Patch:              diff,
		BaseBranch:         "master",
		RestrictToFiles:    []string{"src/auth.py"},
		EnforceRestriction: true,
	})
	require.ErrorIs(t, err, ErrPatchInvalid)
}
