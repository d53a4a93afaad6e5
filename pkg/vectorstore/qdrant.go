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

package vectorstore

import (
	"context"
	"fmt"
	"hash/fnv"

	"github.com/qdrant/go-client/qdrant"

	"github.com/kraklabs/codectx/pkg/types"
)

// pointID maps an entity's string ID to a stable numeric Qdrant point ID.
// Qdrant points take a UUID or an unsigned integer, never an arbitrary
// string, so the entity ID is kept in the payload instead and used as
// the only identifier callers deal with.
func pointID(entityID string) uint64 {
	h := fnv.New64a()
	h.Write([]byte(entityID))
	return h.Sum64()
}

// QdrantConfig configures a QdrantBackend connection.
type QdrantConfig struct {
	Host           string
	Port           int
	APIKey         string
	UseTLS         bool
	EmbeddingDim   uint64
	CollectionBase string // collections are named "<CollectionBase>_<repoID>"
}

// QdrantBackend stores entities in a remote Qdrant collection per repo,
// used in place of MemoryBackend once a repository's entity count
// outgrows a brute-force in-process scan.
type QdrantBackend struct {
	client  *qdrant.Client
	cfg     QdrantConfig
	ensured map[string]bool
}

var _ Backend = (*QdrantBackend)(nil)

// NewQdrantBackend connects to a Qdrant instance. The connection is
// lazy about collections: each repo's collection is created on first
// Upsert rather than eagerly for every repo the process might ever see.
func NewQdrantBackend(cfg QdrantConfig) (*QdrantBackend, error) {
	client, err := qdrant.NewClient(&qdrant.Config{
		Host:   cfg.Host,
		Port:   cfg.Port,
		APIKey: cfg.APIKey,
		UseTLS: cfg.UseTLS,
	})
	if err != nil {
		return nil, fmt.Errorf("connect to qdrant: %w", err)
	}
	return &QdrantBackend{client: client, cfg: cfg, ensured: make(map[string]bool)}, nil
}

func (q *QdrantBackend) collectionName(repoID string) string {
	return q.cfg.CollectionBase + "_" + repoID
}

func (q *QdrantBackend) ensureCollection(ctx context.Context, repoID string) error {
	if q.ensured[repoID] {
		return nil
	}
	name := q.collectionName(repoID)
	exists, err := q.client.CollectionExists(ctx, name)
	if err != nil {
		return fmt.Errorf("check collection %s: %w", name, err)
	}
	if !exists {
		err = q.client.CreateCollection(ctx, &qdrant.CreateCollection{
			CollectionName: name,
			VectorsConfig: qdrant.NewVectorsConfig(&qdrant.VectorParams{
				Size:     q.cfg.EmbeddingDim,
				Distance: qdrant.Distance_Cosine,
			}),
		})
		if err != nil {
			return fmt.Errorf("create collection %s: %w", name, err)
		}
	}
	q.ensured[repoID] = true
	return nil
}

func (q *QdrantBackend) Upsert(ctx context.Context, repoID string, entities []types.Entity) error {
	if err := q.ensureCollection(ctx, repoID); err != nil {
		return err
	}

	points := make([]*qdrant.PointStruct, 0, len(entities))
	for _, e := range entities {
		vec := make([]float32, len(e.Embedding))
		copy(vec, e.Embedding)
		points = append(points, &qdrant.PointStruct{
			Id:      qdrant.NewIDNum(pointID(e.ID)),
			Vectors: qdrant.NewVectors(vec...),
			Payload: qdrant.NewValueMap(map[string]any{
				"entity_id":  e.ID,
				"repo_id":    e.RepoID,
				"file_path":  e.FilePath,
				"type":       string(e.Type),
				"name":       e.Name,
				"language":   e.Language,
				"start_line": e.StartLine,
				"end_line":   e.EndLine,
			}),
		})
	}

	_, err := q.client.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: q.collectionName(repoID),
		Points:         points,
	})
	if err != nil {
		return fmt.Errorf("qdrant upsert: %w", err)
	}
	return nil
}

func (q *QdrantBackend) Query(ctx context.Context, repoID string, vector []float32, topK int, entityTypes []types.EntityType) ([]Candidate, error) {
	if topK <= 0 {
		return nil, nil
	}
	limit := uint64(topK)

	queryPoints := &qdrant.QueryPoints{
		CollectionName: q.collectionName(repoID),
		Query:          qdrant.NewQuery(vector...),
		Limit:          &limit,
		WithPayload:    qdrant.NewWithPayload(true),
	}
	if len(entityTypes) > 0 {
		values := make([]string, len(entityTypes))
		for i, t := range entityTypes {
			values[i] = string(t)
		}
		queryPoints.Filter = &qdrant.Filter{
			Must: []*qdrant.Condition{
				qdrant.NewMatchKeywords("type", values...),
			},
		}
	}

	resp, err := q.client.Query(ctx, queryPoints)
	if err != nil {
		return nil, fmt.Errorf("qdrant query: %w", err)
	}

	candidates := make([]Candidate, 0, len(resp))
	for _, point := range resp {
		candidates = append(candidates, Candidate{
			Entity:   entityFromPayload(point.GetPayload()),
			RawScore: float64(point.GetScore()),
		})
	}
	return candidates, nil
}

// GetByFile scrolls the collection filtered by file_path. Qdrant has no
// direct "all points matching a payload field" call outside Scroll, so
// this pages through matches with a fixed batch size.
func (q *QdrantBackend) GetByFile(ctx context.Context, repoID string, filePath string) ([]types.Entity, error) {
	const batchSize = 256

	filter := &qdrant.Filter{
		Must: []*qdrant.Condition{qdrant.NewMatch("file_path", filePath)},
	}

	var out []types.Entity
	var offset *qdrant.PointId
	for {
		limit := uint32(batchSize)
		resp, err := q.client.Scroll(ctx, &qdrant.ScrollPoints{
			CollectionName: q.collectionName(repoID),
			Filter:         filter,
			Limit:          &limit,
			Offset:         offset,
			WithPayload:    qdrant.NewWithPayload(true),
		})
		if err != nil {
			return nil, fmt.Errorf("qdrant scroll: %w", err)
		}
		for _, point := range resp {
			out = append(out, entityFromPayload(point.GetPayload()))
		}
		if len(resp) < batchSize {
			break
		}
		offset = resp[len(resp)-1].GetId()
	}
	return out, nil
}

func (q *QdrantBackend) GetByIDs(ctx context.Context, repoID string, ids []string) ([]types.Entity, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	pointIDs := make([]*qdrant.PointId, len(ids))
	for i, id := range ids {
		pointIDs[i] = qdrant.NewIDNum(pointID(id))
	}

	points, err := q.client.Get(ctx, &qdrant.GetPoints{
		CollectionName: q.collectionName(repoID),
		Ids:            pointIDs,
		WithPayload:    qdrant.NewWithPayload(true),
	})
	if err != nil {
		return nil, fmt.Errorf("qdrant get: %w", err)
	}

	out := make([]types.Entity, 0, len(points))
	for _, p := range points {
		out = append(out, entityFromPayload(p.GetPayload()))
	}
	return out, nil
}

func (q *QdrantBackend) Delete(ctx context.Context, repoID string, entityIDs []string) error {
	ids := make([]*qdrant.PointId, len(entityIDs))
	for i, id := range entityIDs {
		ids[i] = qdrant.NewIDNum(pointID(id))
	}
	_, err := q.client.Delete(ctx, &qdrant.DeletePoints{
		CollectionName: q.collectionName(repoID),
		Points:         qdrant.NewPointsSelector(ids...),
	})
	if err != nil {
		return fmt.Errorf("qdrant delete: %w", err)
	}
	return nil
}

func (q *QdrantBackend) DeleteByFile(ctx context.Context, repoID string, filePath string) error {
	_, err := q.client.Delete(ctx, &qdrant.DeletePoints{
		CollectionName: q.collectionName(repoID),
		Points: qdrant.NewPointsSelectorFilter(&qdrant.Filter{
			Must: []*qdrant.Condition{qdrant.NewMatch("file_path", filePath)},
		}),
	})
	if err != nil {
		return fmt.Errorf("qdrant delete by file: %w", err)
	}
	return nil
}

func (q *QdrantBackend) DeleteRepository(ctx context.Context, repoID string) error {
	name := q.collectionName(repoID)
	if err := q.client.DeleteCollection(ctx, name); err != nil {
		return fmt.Errorf("qdrant delete collection %s: %w", name, err)
	}
	delete(q.ensured, repoID)
	return nil
}

func (q *QdrantBackend) CountEntities(ctx context.Context, repoID string) (int, error) {
	count, err := q.client.Count(ctx, &qdrant.CountPoints{CollectionName: q.collectionName(repoID)})
	if err != nil {
		return 0, fmt.Errorf("qdrant count: %w", err)
	}
	return int(count), nil
}

func (q *QdrantBackend) Close() error {
	return q.client.Close()
}

func entityFromPayload(payload map[string]*qdrant.Value) types.Entity {
	get := func(key string) string {
		if v, ok := payload[key]; ok {
			return v.GetStringValue()
		}
		return ""
	}
	getInt := func(key string) int {
		if v, ok := payload[key]; ok {
			return int(v.GetIntegerValue())
		}
		return 0
	}
	return types.Entity{
		ID:        get("entity_id"),
		RepoID:    get("repo_id"),
		FilePath:  get("file_path"),
		Type:      types.EntityType(get("type")),
		Name:      get("name"),
		Language:  get("language"),
		StartLine: getInt("start_line"),
		EndLine:   getInt("end_line"),
	}
}
