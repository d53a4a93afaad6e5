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

// Package testing provides shared test fixtures for codectx packages:
// an in-memory bootstrap.Environment, and builders for the
// types.Entity values a Retriever or Indexer test seeds a
// vectorstore.Backend with.
//
// # Quick start
//
//	func TestMyFeature(t *testing.T) {
//	    env := testing.NewEnvironment(t)
//	    testing.SeedEntities(t, env, "repo1", []types.Entity{testing.NewFunctionEntity("repo1", "func1", "HandleAuth", "auth.go", 10, 25)})
//	    // query env.VectorStore / env.Indexer / build a retriever.Retriever against it
//	}
package testing
