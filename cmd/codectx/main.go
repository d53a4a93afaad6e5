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

// Package main implements the codectx CLI: register and index
// repositories, retrieve ranked code context, submit relevance
// feedback, and validate/apply unified-diff patches.
//
// Usage:
//
//	codectx init <path> --id <repo-id>           Register a repository
//	codectx index <repo-id>                      Run an index job
//	codectx status <repo-id>                     Show repo/job status
//	codectx retrieve <repo-id> <query>           Retrieve ranked chunks
//	codectx feedback <repo-id>                   Nudge ranker weights
//	codectx patch <repo-id> <patch-file>         Validate/apply a patch
package main

import (
	"fmt"
	"os"

	flag "github.com/spf13/pflag"

	"github.com/kraklabs/codectx/internal/errors"
	"github.com/kraklabs/codectx/internal/ui"
)

var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

// GlobalFlags carries the flags every subcommand respects.
type GlobalFlags struct {
	JSON    bool
	Quiet   bool
	NoColor bool
	DataDir string
}

func main() {
	var (
		showVersion = flag.Bool("version", false, "Show version and exit")
		jsonOutput  = flag.Bool("json", false, "Output machine-readable JSON")
		quiet       = flag.BoolP("quiet", "q", false, "Suppress progress output")
		noColor     = flag.Bool("no-color", false, "Disable colored output")
		dataDir     = flag.String("data-dir", "", "Override the data directory (default: ~/.codectx/data)")
	)

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, `codectx - Retrieval-Augmented Code Context CLI

Usage:
  codectx <command> [options]

Commands:
  init       Register a repository
  index      Run an index job for a registered repository
  status     Show a repository's and its latest job's status
  retrieve   Retrieve ranked code context for a query
  feedback   Submit relevance feedback to nudge ranker weights
  patch      Validate and apply a unified-diff patch

Global Options:
`)
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, `
Examples:
  codectx init . --id myrepo
  codectx index myrepo
  codectx retrieve myrepo "how is auth handled"
  codectx feedback myrepo --relevant auth/login.go --irrelevant auth/legacy.go
  codectx patch myrepo fix.diff --dry-run
`)
	}

	flag.Parse()

	if *showVersion {
		fmt.Printf("codectx version %s\ncommit: %s\nbuilt: %s\n", version, commit, date)
		os.Exit(errors.ExitSuccess)
	}

	ui.InitColors(*noColor)
	globals := GlobalFlags{JSON: *jsonOutput, Quiet: *quiet || *jsonOutput, NoColor: *noColor, DataDir: *dataDir}

	args := flag.Args()
	if len(args) == 0 {
		flag.Usage()
		os.Exit(errors.ExitInput)
	}

	command, cmdArgs := args[0], args[1:]
	switch command {
	case "init":
		runInit(cmdArgs, globals)
	case "index":
		runIndex(cmdArgs, globals)
	case "status":
		runStatus(cmdArgs, globals)
	case "retrieve":
		runRetrieve(cmdArgs, globals)
	case "feedback":
		runFeedback(cmdArgs, globals)
	case "patch":
		runPatch(cmdArgs, globals)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		flag.Usage()
		os.Exit(errors.ExitInput)
	}
}
