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
	"strings"

	flag "github.com/spf13/pflag"

	ctxerrors "github.com/kraklabs/codectx/internal/errors"
	"github.com/kraklabs/codectx/internal/output"
	"github.com/kraklabs/codectx/internal/ui"
	"github.com/kraklabs/codectx/pkg/graph"
	"github.com/kraklabs/codectx/pkg/retriever"
)

func runRetrieve(args []string, globals GlobalFlags) {
	fs := flag.NewFlagSet("retrieve", flag.ExitOnError)
	mode := fs.String("mode", "vector", "Retrieval mode: vector, callgraph, slice")
	maxChunks := fs.Int("max-chunks", 0, "Max chunks to return (0 uses the default)")
	language := fs.String("language", "", "Restrict results to this language")
	excludeTests := fs.Bool("exclude-tests", false, "Drop test-file candidates")
	excludeGenerated := fs.Bool("exclude-generated", false, "Drop generated-file candidates")
	excludeVendor := fs.Bool("exclude-vendor", true, "Drop vendor/node_modules candidates")
	neighbors := fs.Bool("neighbors", false, "Expand results with same-file neighbors")
	agentic := fs.Bool("agentic", false, "Allow bounded LLM-driven expansion")
	seed := fs.String("seed", "", "Seed function name for slice mode (default: the query)")
	sliceDepth := fs.Int("slice-depth", 0, "Call-graph walk depth for slice mode (0 uses the default)")
	sliceForward := fs.Bool("slice-forward", true, "Walk callees (true) or callers (false)")
	callGraphDepth := fs.Int("call-graph-depth", 0, "Call-graph walk depth for callgraph mode (0 uses the default)")
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `Retrieve ranked code context for a query.

Usage:
  codectx retrieve <repo-id> <query...>

Options:
`)
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		os.Exit(ctxerrors.ExitInput)
	}
	if fs.NArg() < 2 {
		ctxerrors.FatalError(ctxerrors.NewInputError(
			"missing repository id or query",
			"retrieve requires a repository id and a query",
			"run: codectx retrieve <repo-id> \"how is auth handled\"",
		), globals.JSON)
		return
	}
	repoID := fs.Arg(0)
	query := strings.Join(fs.Args()[1:], " ")

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

	graphs, ok := env.Indexer.Graphs(repoID)
	callGraph := graphs.Call
	if !ok {
		callGraph = graph.NewGraph()
	}
	sigStore, _ := env.Indexer.SignatureStore(repoID)

	weights, err := env.LTR.Load(repoID)
	if err != nil {
		ctxerrors.FatalError(ctxerrors.NewDatabaseError(
			"could not load ranker weights",
			err.Error(),
			"check permissions on the data directory",
			err,
		), globals.JSON)
		return
	}

	r := retriever.New(retriever.Config{
		Store:       env.VectorStore,
		Embedder:    env.Embedder,
		SigStore:    sigStore,
		CallGraph:   callGraph,
		LLMProvider: env.LLM,
	})

	var excludeRoles []retriever.Role
	if *excludeTests {
		excludeRoles = append(excludeRoles, retriever.RoleTest)
	}
	if *excludeGenerated {
		excludeRoles = append(excludeRoles, retriever.RoleGenerated)
	}
	if *excludeVendor {
		excludeRoles = append(excludeRoles, retriever.RoleVendor)
	}

	result, err := r.Query(context.Background(), retriever.Request{
		RepoID:            repoID,
		Query:             query,
		Mode:              retriever.Mode(*mode),
		Language:          *language,
		MaxChunks:         *maxChunks,
		SeedFunction:      *seed,
		SliceDepth:        *sliceDepth,
		SliceForward:      *sliceForward,
		CallGraphDepth:    *callGraphDepth,
		NeighborExpansion: *neighbors,
		AgenticExpansion:  *agentic,
		ExcludeRoles:      excludeRoles,
		Weights:           &weights,
	})
	if err != nil {
		ctxerrors.FatalError(ctxerrors.NewDatabaseError(
			"retrieval failed",
			err.Error(),
			"check that the repository has been indexed with `codectx index "+repoID+"`",
			err,
		), globals.JSON)
		return
	}

	if globals.JSON {
		_ = output.JSON(result)
		return
	}

	ui.Header(fmt.Sprintf("%d chunks (mode=%s)", result.Summary.Total, result.Summary.RetrievalMode))
	for i, c := range result.Chunks {
		ui.Infof("%d. %s  %s  score=%.3f conf=%d", i+1, c.Entity.FilePath, ui.Label(string(c.Entity.Type)), c.Score, c.Confidence)
	}
	if len(result.Artifacts) > 0 {
		ui.SubHeader("Artifacts")
		for _, a := range result.Artifacts {
			ui.Info(ui.DimText(a))
		}
	}
}
