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
	"time"

	flag "github.com/spf13/pflag"

	ctxerrors "github.com/kraklabs/codectx/internal/errors"
	"github.com/kraklabs/codectx/internal/output"
	"github.com/kraklabs/codectx/internal/ui"
	"github.com/kraklabs/codectx/pkg/types"
)

func runIndex(args []string, globals GlobalFlags) {
	fs := flag.NewFlagSet("index", flag.ExitOnError)
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `Run an index job for a registered repository.

Usage:
  codectx index <repo-id>
`)
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		os.Exit(ctxerrors.ExitInput)
	}
	if fs.NArg() < 1 {
		ctxerrors.FatalError(ctxerrors.NewInputError(
			"missing repository id",
			"index requires a registered repository id",
			"run: codectx index <repo-id>",
		), globals.JSON)
		return
	}
	repoID := fs.Arg(0)

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

	release, err := env.Jobs.TryAcquireJobLock(repoID)
	if err != nil {
		ctxerrors.FatalError(ctxerrors.NewConflictError(
			"an index job is already running for this repository",
			err.Error(),
			"wait for the running job to finish, or check `codectx status "+repoID+"`",
			err,
		), globals.JSON)
		return
	}
	defer release()

	job := types.Job{
		ID:        fmt.Sprintf("%s-%d", repoID, time.Now().UnixNano()),
		RepoID:    repoID,
		Status:    types.JobRunning,
		StartedAt: time.Now().Unix(),
	}
	if _, err := env.Jobs.Create(job); err != nil {
		ctxerrors.FatalError(ctxerrors.NewDatabaseError(
			"could not create job record",
			err.Error(),
			"check permissions on the data directory",
			err,
		), globals.JSON)
		return
	}

	var spinner *spinnerHandle
	if !globals.Quiet {
		spinner = newSpinner("Indexing " + repoID + "...")
		spinner.Start()
	}

	result, runErr := env.Indexer.Run(context.Background(), repoID, repo.LocalPath)

	if spinner != nil {
		spinner.Stop()
	}

	if runErr != nil {
		job.Status = types.JobFailed
		job.Error = runErr.Error()
		job.CompletedAt = time.Now().Unix()
		_ = env.Jobs.Save(&job)

		ctxerrors.FatalError(ctxerrors.NewDatabaseError(
			"index job failed",
			runErr.Error(),
			"check that the repository path is readable and the embedding server is reachable",
			runErr,
		), globals.JSON)
		return
	}

	job.Status = types.JobCompleted
	job.CompletedAt = time.Now().Unix()
	job.Progress = types.Progress{Current: result.EntitiesUpserted, Total: result.EntitiesUpserted, Pct: 100}
	if err := env.Jobs.Save(&job); err != nil {
		ctxerrors.FatalError(ctxerrors.NewDatabaseError(
			"indexed but failed to persist job record",
			err.Error(),
			"retry `codectx index "+repoID+"`",
			err,
		), globals.JSON)
		return
	}

	repo.LastIndexedAt = time.Now().Unix()
	if err := env.Repos.Save(repo); err != nil {
		ctxerrors.FatalError(ctxerrors.NewDatabaseError(
			"indexed but failed to update repository record",
			err.Error(),
			"retry `codectx index "+repoID+"`",
			err,
		), globals.JSON)
		return
	}
	if _, err := env.Repos.BumpVersion(repoID); err != nil {
		ctxerrors.FatalError(ctxerrors.NewDatabaseError(
			"indexed but failed to bump repository version",
			err.Error(),
			"retry `codectx index "+repoID+"`",
			err,
		), globals.JSON)
		return
	}

	if globals.JSON {
		_ = output.JSON(result)
		return
	}

	ui.Header("Index complete")
	ui.Infof("files:      %s", ui.CountText(result.FilesProcessed))
	ui.Infof("functions:  %s", ui.CountText(result.FunctionsExtracted))
	ui.Infof("classes:    %s", ui.CountText(result.ClassesExtracted))
	ui.Infof("chunks:     %s", ui.CountText(result.ChunksExtracted))
	ui.Infof("duplicates: %s", ui.CountText(result.DuplicatesSkipped))
	ui.Infof("upserted:   %s", ui.CountText(result.EntitiesUpserted))
	if result.EmbeddingErrors > 0 {
		ui.Warningf("%d entities failed to embed", result.EmbeddingErrors)
	}
	ui.Successf("Indexed %s in %s", repoID, result.TotalDuration.Round(time.Millisecond))
}
