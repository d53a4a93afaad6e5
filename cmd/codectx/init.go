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
	"path/filepath"
	"time"

	flag "github.com/spf13/pflag"

	"github.com/kraklabs/codectx/internal/errors"
	"github.com/kraklabs/codectx/internal/output"
	"github.com/kraklabs/codectx/internal/ui"
	"github.com/kraklabs/codectx/pkg/types"
)

func runInit(args []string, globals GlobalFlags) {
	fs := flag.NewFlagSet("init", flag.ExitOnError)
	id := fs.String("id", "", "Repository ID (default: the directory's base name)")
	branch := fs.String("branch", "", "Branch to associate with this repository")
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `Register a repository for indexing.

Usage:
  codectx init <path> [options]

Options:
`)
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		os.Exit(errors.ExitInput)
	}

	if fs.NArg() < 1 {
		errors.FatalError(errors.NewInputError(
			"missing repository path",
			"init requires a path to a local repository",
			"run: codectx init <path> --id <repo-id>",
		), globals.JSON)
		return
	}

	path, err := filepath.Abs(fs.Arg(0))
	if err != nil {
		errors.FatalError(errors.NewInputError(
			"could not resolve repository path",
			err.Error(),
			"pass an existing directory",
		), globals.JSON)
		return
	}
	if info, statErr := os.Stat(path); statErr != nil || !info.IsDir() {
		errors.FatalError(errors.NewInputError(
			"repository path does not exist or is not a directory",
			path,
			"pass an existing directory",
		), globals.JSON)
		return
	}

	repoID := *id
	if repoID == "" {
		repoID = filepath.Base(path)
	}

	env, err := newEnvironment(globals)
	if err != nil {
		errors.FatalError(err, globals.JSON)
		return
	}

	repo, err := env.Repos.Register(types.Repository{
		ID:         repoID,
		Name:       filepath.Base(path),
		SourceType: "local",
		LocalPath:  path,
		Branch:     *branch,
		CreatedAt:  time.Now().Unix(),
	})
	if err != nil {
		errors.FatalError(errors.NewConflictError(
			"could not register repository",
			err.Error(),
			"pick a different --id, or run `codectx status` to see the existing registration",
			err,
		), globals.JSON)
		return
	}

	if globals.JSON {
		_ = output.JSON(repo)
		return
	}

	ui.Header("Repository registered")
	ui.Infof("id:   %s", repo.ID)
	ui.Infof("path: %s", repo.LocalPath)
	ui.Success("Run `codectx index " + repo.ID + "` to build its index.")
}
