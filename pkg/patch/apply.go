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
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/google/uuid"
)

const (
	defaultSubprocessTimeout = 180 * time.Second
	defaultGitHostTimeout    = 30 * time.Second

	commitAuthorName  = "codectx-patch"
	commitAuthorEmail = "patch-bot@codectx.local"
)

// ApplyRequest mirrors the spec's patch apply contract.
type ApplyRequest struct {
	Patch              string
	BaseBranch         string
	NewBranch          string
	CommitMessage      string
	Push               bool
	CreatePR           bool
	PRTitle            string
	PRBody             string
	PRDraft            bool
	DryRun             bool
	RestrictToFiles    []string
	EnforceRestriction bool
}

// ApplyResult mirrors the spec's patch apply response.
type ApplyResult struct {
	BaseBranch string
	NewBranch  string
	Commit     string
	Pushed     bool
	PRCreated  bool
	PR         *PullRequestResult
	Validation ValidationResult
	Logs       []string
	Summary    string
}

// Applier validates and applies unified diffs through an isolated git
// worktree. The worktree mechanics (add/apply) shell out to the git
// binary, since go-git has no native equivalent for either; fetch,
// commit, and push use go-git directly.
type Applier struct {
	gitHost GitHost
	logger  *slog.Logger

	subprocessTimeout time.Duration
	gitHostTimeout    time.Duration
}

// NewApplier returns an Applier. gitHost may be nil, in which case
// CreatePR requests fail with errNoGitHost. logger may be nil.
func NewApplier(gitHost GitHost, logger *slog.Logger) *Applier {
	if gitHost == nil {
		gitHost = NoopGitHost{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Applier{
		gitHost:           gitHost,
		logger:            logger,
		subprocessTimeout: defaultSubprocessTimeout,
		gitHostTimeout:    defaultGitHostTimeout,
	}
}

// Apply validates req.Patch and, if it passes, applies it to repoPath
// through an isolated worktree on a fresh branch off req.BaseBranch.
func (a *Applier) Apply(ctx context.Context, repoPath string, req ApplyRequest) (*ApplyResult, error) {
	validation := Validate(req.Patch, ValidateOptions{
		RestrictToFiles:    req.RestrictToFiles,
		EnforceRestriction: req.EnforceRestriction,
	})
	if !validation.OK {
		return &ApplyResult{Validation: validation, Summary: "patch rejected by validator"}, ErrPatchInvalid
	}

	baseBranch := req.BaseBranch
	if baseBranch == "" {
		baseBranch = "main"
	}
	newBranch := req.NewBranch
	if newBranch == "" {
		newBranch = fmt.Sprintf("patch/%s", uuid.NewString()[:8])
	}

	result := &ApplyResult{BaseBranch: baseBranch, NewBranch: newBranch, Validation: validation}
	logf := func(format string, args ...any) {
		result.Logs = append(result.Logs, fmt.Sprintf(format, args...))
	}

	repo, err := git.PlainOpen(repoPath)
	if err != nil {
		return result, fmt.Errorf("patch: open repository: %w", err)
	}

	fetchCtx, cancel := context.WithTimeout(ctx, a.subprocessTimeout)
	err = repo.FetchContext(fetchCtx, &git.FetchOptions{RemoteName: "origin"})
	cancel()
	if err != nil && err != git.NoErrAlreadyUpToDate {
		return result, fmt.Errorf("patch: fetch origin: %w", err)
	}
	logf("fetched origin")

	worktreeDir := filepath.Join(os.TempDir(), fmt.Sprintf("codectx-patch-%s", uuid.NewString()))
	if _, _, err := a.runGit(ctx, repoPath, "worktree", "add", "-b", newBranch, worktreeDir, baseBranch); err != nil {
		return result, fmt.Errorf("patch: create worktree: %w", err)
	}
	logf("created worktree at %s on branch %s", worktreeDir, newBranch)

	patchFile, err := writePatchFile(req.Patch)
	if err != nil {
		a.abandonWorktree(repoPath, worktreeDir, logf)
		return result, fmt.Errorf("patch: write patch file: %w", err)
	}
	defer os.Remove(patchFile)

	strip, err := a.probeApply(ctx, worktreeDir, patchFile)
	if err != nil {
		a.abandonWorktree(repoPath, worktreeDir, logf)
		return result, err
	}
	logf("patch applies cleanly with %s", strip)

	if req.DryRun {
		result.Summary = fmt.Sprintf("dry run: patch applies cleanly using %s", strip)
		a.cleanWorktree(repoPath, worktreeDir, logf)
		return result, nil
	}

	if _, _, err := a.runGit(ctx, worktreeDir, "apply", strip, patchFile); err != nil {
		a.abandonWorktree(repoPath, worktreeDir, logf)
		return result, fmt.Errorf("patch: apply %s: %w", strip, err)
	}

	commit, err := a.commit(worktreeDir, req.CommitMessage)
	if err != nil {
		a.abandonWorktree(repoPath, worktreeDir, logf)
		return result, fmt.Errorf("patch: commit: %w", err)
	}
	result.Commit = commit
	logf("committed %s", commit)

	if req.Push {
		if err := a.push(ctx, worktreeDir, newBranch); err != nil {
			a.abandonWorktree(repoPath, worktreeDir, logf)
			return result, fmt.Errorf("patch: push: %w", err)
		}
		result.Pushed = true
		logf("pushed %s", newBranch)
	}

	if req.CreatePR {
		prCtx, cancel := context.WithTimeout(ctx, a.gitHostTimeout)
		pr, err := a.gitHost.CreatePR(prCtx, PullRequestRequest{
			Title: req.PRTitle,
			Head:  newBranch,
			Base:  baseBranch,
			Body:  req.PRBody,
			Draft: req.PRDraft,
		})
		cancel()
		if err != nil {
			a.abandonWorktree(repoPath, worktreeDir, logf)
			return result, fmt.Errorf("patch: create pull request: %w", err)
		}
		result.PR = pr
		result.PRCreated = true
		logf("opened pull request %s", pr.URL)
	}

	result.Summary = fmt.Sprintf("applied patch to %s on branch %s", baseBranch, newBranch)
	return result, nil
}

func (a *Applier) probeApply(ctx context.Context, worktreeDir, patchFile string) (string, error) {
	if _, _, err := a.runGit(ctx, worktreeDir, "apply", "--check", "-p1", patchFile); err == nil {
		return "-p1", nil
	}
	if _, _, err := a.runGit(ctx, worktreeDir, "apply", "--check", "-p0", patchFile); err == nil {
		return "-p0", nil
	}
	return "", ErrApplyFailed
}

func (a *Applier) commit(worktreeDir, message string) (string, error) {
	if message == "" {
		message = "apply patch"
	}
	repo, err := git.PlainOpen(worktreeDir)
	if err != nil {
		return "", err
	}
	wt, err := repo.Worktree()
	if err != nil {
		return "", err
	}
	if err := wt.AddGlob("."); err != nil {
		return "", err
	}
	hash, err := wt.Commit(message, &git.CommitOptions{
		Author: &object.Signature{
			Name:  commitAuthorName,
			Email: commitAuthorEmail,
			When:  time.Now(),
		},
	})
	if err != nil {
		return "", err
	}
	return hash.String(), nil
}

func (a *Applier) push(ctx context.Context, worktreeDir, branch string) error {
	repo, err := git.PlainOpen(worktreeDir)
	if err != nil {
		return err
	}
	pushCtx, cancel := context.WithTimeout(ctx, a.subprocessTimeout)
	defer cancel()
	refSpec := config.RefSpec(fmt.Sprintf("refs/heads/%s:refs/heads/%s", branch, branch))
	err = repo.PushContext(pushCtx, &git.PushOptions{
		RemoteName: "origin",
		RefSpecs:   []config.RefSpec{refSpec},
	})
	if err != nil && err != git.NoErrAlreadyUpToDate {
		return err
	}
	return nil
}

// abandonWorktree leaves the worktree's files on disk for forensic
// inspection after a failure; git's administrative entry under
// repoPath/.git/worktrees is intentionally left in place too, since
// removing it cleanly requires deleting the working directory, which
// would destroy the evidence this is meant to preserve. A later manual
// `git worktree remove --force` (or `prune`, once the caller has
// finished inspecting and deleted the directory) reclaims it.
func (a *Applier) abandonWorktree(repoPath, worktreeDir string, logf func(string, ...any)) {
	logf("worktree %s left in place for forensic inspection after failure", worktreeDir)
	a.logger.Warn("patch.worktree_abandoned", "repo", repoPath, "worktree", worktreeDir)
}

// cleanWorktree removes a worktree that produced no durable change
// (the dry-run path), unlike abandonWorktree which preserves evidence.
func (a *Applier) cleanWorktree(repoPath, worktreeDir string, logf func(string, ...any)) {
	ctx, cancel := context.WithTimeout(context.Background(), a.subprocessTimeout)
	defer cancel()
	if _, _, err := a.runGit(ctx, repoPath, "worktree", "remove", "--force", worktreeDir); err != nil {
		a.logger.Warn("patch.worktree_cleanup_failed", "worktree", worktreeDir, "err", err)
		logf("failed to clean up dry-run worktree %s: %v", worktreeDir, err)
		return
	}
	logf("removed dry-run worktree %s", worktreeDir)
}

func (a *Applier) runGit(ctx context.Context, dir string, args ...string) (string, string, error) {
	runCtx, cancel := context.WithTimeout(ctx, a.subprocessTimeout)
	defer cancel()

	cmd := exec.CommandContext(runCtx, "git", args...)
	cmd.Dir = dir
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	err := cmd.Run()
	if err != nil {
		return stdout.String(), stderr.String(), fmt.Errorf("git %v: %w: %s", args, err, stderr.String())
	}
	return stdout.String(), stderr.String(), nil
}

// writePatchFile stores the diff outside the worktree directory so a
// later `git add -A` inside the worktree can't pick it up as an
// untracked file.
func writePatchFile(content string) (string, error) {
	f, err := os.CreateTemp("", "codectx-*.patch")
	if err != nil {
		return "", err
	}
	defer f.Close()
	if _, err := f.WriteString(content); err != nil {
		return "", err
	}
	return f.Name(), nil
}
