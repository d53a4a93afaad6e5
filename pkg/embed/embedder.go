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

package embed

import (
	"context"

	"github.com/kraklabs/codectx/pkg/types"
)

// Embedder is the external embedding-service interface. A query string
// and a code entity take the same underlying call; EmbedCodeEntity exists
// separately so a future implementation can apply entity-specific
// preprocessing (e.g. prefixing with signature/docstring) without
// changing the query path.
type Embedder interface {
	EmbedText(ctx context.Context, text string) ([]float32, error)
	EmbedCodeEntity(ctx context.Context, entity types.Entity) ([]float32, error)
}
