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
	"fmt"
	"os"
	"sort"
	"time"

	flag "github.com/spf13/pflag"

	ctxerrors "github.com/kraklabs/codectx/internal/errors"
	"github.com/kraklabs/codectx/internal/output"
	"github.com/kraklabs/codectx/internal/ui"
	"github.com/kraklabs/codectx/pkg/types"
)

// statusView is the JSON shape of `codectx status`.
type statusView struct {
	Repo      types.Repository `json:"repo"`
	LatestJob *types.Job       `json:"latest_job,omitempty"`
	JobCount  int              `json:"job_count"`
}

func runStatus(args []string, globals GlobalFlags) {
	fs := flag.NewFlagSet("status", flag.ExitOnError)
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `Show a repository's registration and latest index job.

Usage:
  codectx status <repo-id>
`)
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		os.Exit(ctxerrors.ExitInput)
	}
	if fs.NArg() < 1 {
		ctxerrors.FatalError(ctxerrors.NewInputError(
			"missing repository id",
			"status requires a registered repository id",
			"run: codectx status <repo-id>",
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

	jobs, err := env.Jobs.ListForRepo(repoID)
	if err != nil {
		ctxerrors.FatalError(ctxerrors.NewDatabaseError(
			"could not list jobs",
			err.Error(),
			"check permissions on the data directory",
			err,
		), globals.JSON)
		return
	}
	sort.Slice(jobs, func(i, j int) bool { return jobs[i].StartedAt > jobs[j].StartedAt })

	view := statusView{Repo: *repo, JobCount: len(jobs)}
	if len(jobs) > 0 {
		view.LatestJob = &jobs[0]
	}

	if globals.JSON {
		_ = output.JSON(view)
		return
	}

	ui.Header("Repository " + repo.ID)
	ui.Infof("path:    %s", repo.LocalPath)
	ui.Infof("branch:  %s", repo.Branch)
	ui.Infof("status:  %s", repo.Status)
	ui.Infof("version: %d", repo.Version)
	if repo.LastIndexedAt > 0 {
		ui.Infof("last indexed: %s", time.Unix(repo.LastIndexedAt, 0).Format(time.RFC3339))
	} else {
		ui.Infof("last indexed: never")
	}

	if view.LatestJob == nil {
		ui.Info("no index jobs recorded")
		return
	}

	job := view.LatestJob
	ui.SubHeader("Latest job")
	ui.Infof("id:     %s", job.ID)
	ui.Infof("status: %s", job.Status)
	if job.Status == types.JobFailed {
		ui.Errorf("error: %s", job.Error)
	}
	if job.IsTerminal() {
		elapsed := time.Unix(job.CompletedAt, 0).Sub(time.Unix(job.StartedAt, 0))
		ui.Infof("duration: %s", elapsed.Round(time.Second))
	}
}
