// Copyright 2025 KrakLabs
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published
// by the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program. If not, see <https://www.gnu.org/licenses/>.
//
// For commercial licensing, contact: licensing@kraklabs.com
//
// SPDX-License-Identifier: AGPL-3.0-or-later

package main

import (
	"context"
	"fmt"
	"os"

	flag "github.com/spf13/pflag"

	ctxerrors "github.com/kraklabs/codectx/internal/errors"
	"github.com/kraklabs/codectx/internal/output"
	"github.com/kraklabs/codectx/internal/ui"
	"github.com/kraklabs/codectx/pkg/patch"
)

func runPatch(args []string, globals GlobalFlags) {
	fs := flag.NewFlagSet("patch", flag.ExitOnError)
	baseBranch := fs.String("base", "main", "Branch to apply the patch on top of")
	newBranch := fs.String("branch", "", "New branch name (default: a generated patch/<random-suffix> name)")
	message := fs.String("message", "Apply patch via codectx", "Commit message")
	push := fs.Bool("push", false, "Push the new branch after committing")
	dryRun := fs.Bool("dry-run", false, "Validate and check that the patch applies, without committing or pushing")
	restrictTo := fs.StringArray("restrict-to", nil, "Only allow the patch to touch this file (repeatable)")
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `Validate and apply a unified-diff patch through an isolated git worktree.

Usage:
  codectx patch <repo-id> <patch-file> [options]

Options:
`)
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		os.Exit(ctxerrors.ExitInput)
	}
	if fs.NArg() < 2 {
		ctxerrors.FatalError(ctxerrors.NewInputError(
			"missing repository id or patch file",
			"patch requires a repository id and a path to a unified-diff file",
			"run: codectx patch <repo-id> fix.diff",
		), globals.JSON)
		return
	}
	repoID, patchPath := fs.Arg(0), fs.Arg(1)

	diffBytes, err := os.ReadFile(patchPath)
	if err != nil {
		ctxerrors.FatalError(ctxerrors.NewInputError(
			"could not read patch file",
			err.Error(),
			"check that the path exists and is readable",
		), globals.JSON)
		return
	}

	env, err := newEnvironment(globals)
	if err != nil {
		ctxerrors.FatalError(err, globals.JSON)
		return
	}

	repo, err := env.Repos.Get(repoID)
	if err != nil {
		ctxerrors.FatalError(ctxerrors.NewNotFoundError(
			"repository not found",
			err.Error(),
			"run `codectx init <path> --id "+repoID+"` first",
		), globals.JSON)
		return
	}

	result, err := env.Patcher.Apply(context.Background(), repo.LocalPath, patch.ApplyRequest{
		Patch:              string(diffBytes),
		BaseBranch:         *baseBranch,
		NewBranch:          *newBranch,
		CommitMessage:      *message,
		Push:               *push && !*dryRun,
		DryRun:             *dryRun,
		RestrictToFiles:    *restrictTo,
		EnforceRestriction: len(*restrictTo) > 0,
	})
	if err != nil {
		if !result.Validation.OK {
			ctxerrors.FatalError(ctxerrors.NewPatchError(
				"patch rejected by validator",
				result.Summary,
				"fix the issues below and retry",
				result.Validation.Issues,
			), globals.JSON)
			return
		}
		ctxerrors.FatalError(ctxerrors.NewDatabaseError(
			"patch apply failed",
			err.Error(),
			"check that the repository is a clean git working tree",
			err,
		), globals.JSON)
		return
	}

	if globals.JSON {
		_ = output.JSON(result)
		return
	}

	ui.Header("Patch applied")
	ui.Infof("branch: %s (from %s)", result.NewBranch, result.BaseBranch)
	ui.Infof("commit: %s", result.Commit)
	if result.Pushed {
		ui.Success("pushed to origin")
	}
	for _, line := range result.Logs {
		ui.Info(ui.DimText(line))
	}
}
