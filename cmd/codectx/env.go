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
	"io"
	"log/slog"
	"os"

	"github.com/kraklabs/codectx/internal/bootstrap"
	"github.com/kraklabs/codectx/pkg/embed"
)

// newEnvironment builds the shared bootstrap.Environment for a CLI
// invocation. Logging is routed to stderr so it never corrupts --json
// stdout output, and is silenced to errors-only under --quiet/--json.
func newEnvironment(globals GlobalFlags) (*bootstrap.Environment, error) {
	level := slog.LevelInfo
	if globals.Quiet {
		level = slog.LevelError
	}

	var handlerOut io.Writer = os.Stderr
	logger := slog.New(slog.NewTextHandler(handlerOut, &slog.HandlerOptions{Level: level}))

	return bootstrap.New(bootstrap.Config{
		DataDir:     globals.DataDir,
		VectorStore: bootstrap.VectorStoreConfig{Backend: os.Getenv("CODECTX_VECTOR_STORE")},
		Embedder: embed.HTTPConfig{
			URL:   envOr("CODECTX_EMBED_URL", "http://localhost:11434"),
			Model: envOr("CODECTX_EMBED_MODEL", "nomic-embed-text"),
		},
	}, logger)
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
