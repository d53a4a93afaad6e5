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
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/kraklabs/codectx/pkg/types"
)

const requestTimeout = 60 * time.Second

// HTTPConfig configures an HTTPEmbedder.
type HTTPConfig struct {
	URL    string // base URL of the embedding server
	Model  string
	Client *http.Client // optional; defaults to a client with requestTimeout
}

// HTTPEmbedder calls out to a local or hosted embedding server. The API
// shape (Ollama, llama.cpp, or an OpenAI-compatible endpoint) is detected
// from the configured URL, mirroring the ingestion pipeline's own
// query-time embedding call.
type HTTPEmbedder struct {
	url    string
	model  string
	client *http.Client
}

var _ Embedder = (*HTTPEmbedder)(nil)

// NewHTTPEmbedder builds an HTTPEmbedder from cfg.
func NewHTTPEmbedder(cfg HTTPConfig) *HTTPEmbedder {
	client := cfg.Client
	if client == nil {
		client = &http.Client{Timeout: requestTimeout}
	}
	return &HTTPEmbedder{url: cfg.URL, model: cfg.Model, client: client}
}

// EmbedText embeds a free-text query, applying the same asymmetric
// search-query prefix the ingestion pipeline applies to keep query and
// document embeddings in the same instruction-tuned space.
func (h *HTTPEmbedder) EmbedText(ctx context.Context, text string) ([]float32, error) {
	return h.embed(ctx, preprocessQuery(text, h.model))
}

// EmbedCodeEntity embeds a code entity's name plus code text.
func (h *HTTPEmbedder) EmbedCodeEntity(ctx context.Context, entity types.Entity) ([]float32, error) {
	text := entity.Name
	if entity.Code != "" {
		text = entity.Name + "\n" + entity.Code
	}
	return h.embed(ctx, text)
}

func preprocessQuery(query, model string) string {
	if model == "" || strings.Contains(strings.ToLower(model), "qodo") {
		return "Instruct: Given a code search query, retrieve relevant code that matches the query\nQuery: " + query
	}
	return "search_query: " + query
}

func (h *HTTPEmbedder) embed(ctx context.Context, text string) ([]float32, error) {
	isLlamaCpp := strings.Contains(h.url, ":8090") || h.model == ""
	isOpenAI := strings.Contains(h.url, "/v1") || strings.Contains(h.url, ":30090")

	var endpoint string
	var body []byte

	switch {
	case isOpenAI:
		endpoint = openAIEndpoint(h.url)
		body, _ = json.Marshal(map[string]any{"input": text, "model": h.model})
	case isLlamaCpp:
		endpoint = h.url + "/embedding"
		body, _ = json.Marshal(map[string]any{"content": text})
	default:
		endpoint = h.url + "/api/embeddings"
		body, _ = json.Marshal(map[string]any{"model": h.model, "prompt": text})
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create embedding request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := h.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("embedding http request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read embedding response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("embedding API error (status %d): %s", resp.StatusCode, string(respBody))
	}

	switch {
	case isOpenAI:
		return parseOpenAIEmbedding(respBody)
	case isLlamaCpp:
		return parseLlamaCppEmbedding(respBody)
	default:
		return parseOllamaEmbedding(respBody)
	}
}

func openAIEndpoint(base string) string {
	switch {
	case strings.HasSuffix(base, "/v1"):
		return base + "/embeddings"
	case strings.Contains(base, "/v1/"):
		if strings.HasSuffix(base, "/embeddings") {
			return base
		}
		return strings.TrimSuffix(base, "/") + "/embeddings"
	default:
		return strings.TrimSuffix(base, "/") + "/v1/embeddings"
	}
}

func parseOpenAIEmbedding(body []byte) ([]float32, error) {
	var result struct {
		Data []struct {
			Embedding []float32 `json:"embedding"`
		} `json:"data"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("parse OpenAI embedding response: %w", err)
	}
	if len(result.Data) == 0 || len(result.Data[0].Embedding) == 0 {
		return nil, fmt.Errorf("empty embedding returned from OpenAI-compatible API")
	}
	return result.Data[0].Embedding, nil
}

func parseLlamaCppEmbedding(body []byte) ([]float32, error) {
	var results []struct {
		Index     int         `json:"index"`
		Embedding [][]float32 `json:"embedding"`
	}
	if err := json.Unmarshal(body, &results); err != nil {
		return nil, fmt.Errorf("parse llama.cpp embedding response: %w", err)
	}
	if len(results) == 0 || len(results[0].Embedding) == 0 || len(results[0].Embedding[0]) == 0 {
		return nil, fmt.Errorf("empty embedding returned")
	}
	return results[0].Embedding[0], nil
}

func parseOllamaEmbedding(body []byte) ([]float32, error) {
	var result struct {
		Embedding []float32 `json:"embedding"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("parse ollama embedding response: %w", err)
	}
	if len(result.Embedding) == 0 {
		return nil, fmt.Errorf("empty embedding returned")
	}
	return result.Embedding, nil
}
