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

package prompt

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/kraklabs/codectx/pkg/llm"
	"github.com/kraklabs/codectx/pkg/types"
)

const (
	defaultSystemPrompt = "Use only the provided context. Propose minimal patches."
	maxClassesPerFile   = 8
	maxFunctionsPerFile = 12
	codeFenceMaxChars   = 2000
)

// FileHeader summarizes one file's top-level shape: its class and
// function names, capped when formatted (maxClassesPerFile,
// maxFunctionsPerFile).
type FileHeader struct {
	FilePath  string
	Classes   []string
	Functions []string
}

// BuildFileHeaders groups function/class entities by file path into
// FileHeaders, sorted by path. Entities of other types add no names, but
// their file still gets a header.
func BuildFileHeaders(entities []types.Entity) []FileHeader {
	byFile := make(map[string]*FileHeader)
	var order []string

	for _, e := range entities {
		h, ok := byFile[e.FilePath]
		if !ok {
			h = &FileHeader{FilePath: e.FilePath}
			byFile[e.FilePath] = h
			order = append(order, e.FilePath)
		}
		switch e.Type {
		case types.EntityClass:
			h.Classes = append(h.Classes, e.Name)
		case types.EntityFunction:
			h.Functions = append(h.Functions, e.Name)
		}
	}

	sort.Strings(order)
	out := make([]FileHeader, 0, len(order))
	for _, path := range order {
		out = append(out, *byFile[path])
	}
	return out
}

// Request is one assembly call.
type Request struct {
	Task           string
	SystemPrompt   string // default: defaultSystemPrompt
	FileHeaders    []FileHeader
	BaseChunks     []types.Candidate
	NeighborChunks []types.Candidate
	Budget         int // max tokens; required, > 0
	Model          string
}

// TokenUsage reports how the budget was spent.
type TokenUsage struct {
	Budget          int    `json:"budget"`
	EstimatedTokens int    `json:"estimated_tokens"`
	Model           string `json:"model"`
	ChunksIncluded  int    `json:"chunks_included"`
}

// Result is the assembled prompt.
type Result struct {
	Messages       []llm.Message     `json:"messages"`
	SelectedChunks []types.Candidate `json:"selected_chunks"`
	TokenUsage     TokenUsage        `json:"token_usage"`
}

// Assembler packs retrieval results into a chat request under a token
// budget. Counter is optional; when present it's used as an accurate
// final check on the already-packed content, not during the greedy
// packing loop itself (which always uses the cheap heuristic, since
// checking a remote endpoint once per candidate chunk would be far too
// slow for a tight request loop).
type Assembler struct {
	Counter llm.TokenCounter
}

// New returns an Assembler that uses counter for its final accurate
// token check. counter may be nil, in which case only the heuristic
// estimate is ever reported.
func New(counter llm.TokenCounter) *Assembler {
	return &Assembler{Counter: counter}
}

// Assemble runs the greedy packing described in doc.go.
func (a *Assembler) Assemble(ctx context.Context, req Request) (*Result, error) {
	if req.Budget <= 0 {
		return nil, fmt.Errorf("prompt: budget must be positive, got %d", req.Budget)
	}
	systemPrompt := req.SystemPrompt
	if systemPrompt == "" {
		systemPrompt = defaultSystemPrompt
	}

	estimate := llm.EstimateTokens(systemPrompt)

	var sb strings.Builder
	write := func(s string) {
		if sb.Len() > 0 {
			sb.WriteString("\n\n")
		}
		sb.WriteString(s)
		estimate += llm.EstimateTokens(s)
	}
	write(req.Task)

	for _, h := range req.FileHeaders {
		block := formatFileHeader(h)
		cost := llm.EstimateTokens(block)
		if estimate+cost > req.Budget {
			continue
		}
		write(block)
	}

	var selected []types.Candidate
	for _, c := range append(append([]types.Candidate{}, req.BaseChunks...), req.NeighborChunks...) {
		block := formatChunk(c.Entity)
		cost := llm.EstimateTokens(block)
		if estimate+cost > req.Budget {
			continue
		}
		write(block)
		selected = append(selected, c)
	}

	messages := []llm.Message{
		{Role: "system", Content: systemPrompt},
		{Role: "user", Content: sb.String()},
	}

	usage := TokenUsage{
		Budget:          req.Budget,
		EstimatedTokens: estimate,
		Model:           req.Model,
		ChunksIncluded:  len(selected),
	}
	if a.Counter != nil {
		if n, err := a.Counter.CountTokens(ctx, req.Model, systemPrompt+"\n\n"+sb.String()); err == nil {
			usage.EstimatedTokens = n
		}
	}

	return &Result{Messages: messages, SelectedChunks: selected, TokenUsage: usage}, nil
}

func formatFileHeader(h FileHeader) string {
	classes := h.Classes
	if len(classes) > maxClassesPerFile {
		classes = classes[:maxClassesPerFile]
	}
	functions := h.Functions
	if len(functions) > maxFunctionsPerFile {
		functions = functions[:maxFunctionsPerFile]
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "File: %s\n", h.FilePath)
	if len(classes) > 0 {
		fmt.Fprintf(&sb, "Classes: %s\n", strings.Join(classes, ", "))
	}
	if len(functions) > 0 {
		fmt.Fprintf(&sb, "Functions: %s\n", strings.Join(functions, ", "))
	}
	return sb.String()
}

func formatChunk(e types.Entity) string {
	code := e.Code
	if len(code) > codeFenceMaxChars {
		code = code[:codeFenceMaxChars]
	}
	return fmt.Sprintf("File: %s\nLines: %d-%d\nLanguage: %s\n```%s\n%s\n```",
		e.FilePath, e.StartLine, e.EndLine, e.Language, e.Language, code)
}
