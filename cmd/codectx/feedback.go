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

	flag "github.com/spf13/pflag"

	ctxerrors "github.com/kraklabs/codectx/internal/errors"
	"github.com/kraklabs/codectx/internal/output"
	"github.com/kraklabs/codectx/internal/ui"
	"github.com/kraklabs/codectx/pkg/ltr"
)

func runFeedback(args []string, globals GlobalFlags) {
	fs := flag.NewFlagSet("feedback", flag.ExitOnError)
	relevant := fs.StringArray("relevant", nil, "A file that was relevant to the last retrieval (repeatable)")
	irrelevant := fs.StringArray("irrelevant", nil, "A file that was not relevant to the last retrieval (repeatable)")
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `Submit relevance feedback to nudge this repository's ranker weights.

Usage:
  codectx feedback <repo-id> --relevant <file> [--relevant <file> ...] --irrelevant <file> [...]

Options:
`)
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		os.Exit(ctxerrors.ExitInput)
	}
	if fs.NArg() < 1 {
		ctxerrors.FatalError(ctxerrors.NewInputError(
			"missing repository id",
			"feedback requires a registered repository id",
			"run: codectx feedback <repo-id> --relevant <file>",
		), globals.JSON)
		return
	}
	repoID := fs.Arg(0)
	if len(*relevant) == 0 && len(*irrelevant) == 0 {
		ctxerrors.FatalError(ctxerrors.NewInputError(
			"no feedback given",
			"feedback requires at least one --relevant or --irrelevant file",
			"run: codectx feedback <repo-id> --relevant path/to/file.go",
		), globals.JSON)
		return
	}

	env, err := newEnvironment(globals)
	if err != nil {
		ctxerrors.FatalError(err, globals.JSON)
		return
	}

	if _, err := env.Repos.Get(repoID); err != nil {
		ctxerrors.FatalError(ctxerrors.NewNotFoundError(
			"repository not found",
			err.Error(),
			"run `codectx init <path> --id "+repoID+"` first",
		), globals.JSON)
		return
	}

	signals, ok := env.Indexer.Signals(repoID)
	if !ok {
		ctxerrors.FatalError(ctxerrors.NewNotFoundError(
			"no index signals for this repository",
			"repo "+repoID+" has not completed an index run",
			"run `codectx index "+repoID+"` first",
		), globals.JSON)
		return
	}

	weights, err := env.LTR.ApplyFeedback(repoID, ltr.Feedback{
		RelevantFiles:   *relevant,
		IrrelevantFiles: *irrelevant,
	}, signals)
	if err != nil {
		ctxerrors.FatalError(ctxerrors.NewDatabaseError(
			"could not apply feedback",
			err.Error(),
			"check permissions on the data directory",
			err,
		), globals.JSON)
		return
	}

	if globals.JSON {
		_ = output.JSON(weights)
		return
	}

	ui.Header("Ranker weights updated")
	ui.Infof("semantic:   %.3f", weights.Semantic)
	ui.Infof("dependency: %.3f", weights.Dependency)
	ui.Infof("history:    %.3f", weights.History)
	ui.Infof("recency:    %.3f", weights.Recency)
	ui.Success("Subsequent `codectx retrieve` calls for this repo will use the updated weights.")
}
