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
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kraklabs/codectx/pkg/types"
)

func candidate(path string, start, end int, code string) types.Candidate {
	return types.Candidate{Entity: types.Entity{
		FilePath: path, StartLine: start, EndLine: end, Language: "go", Code: code,
	}}
}

func TestBuildFileHeaders_GroupsByFileSortedAndTyped(t *testing.T) {
	headers := BuildFileHeaders([]types.Entity{
		{FilePath: "b.go", Type: types.EntityFunction, Name: "Beta"},
		{FilePath: "a.go", Type: types.EntityClass, Name: "Widget"},
		{FilePath: "a.go", Type: types.EntityFunction, Name: "Alpha"},
		{FilePath: "a.go", Type: types.EntityChunk, Name: "ignored"},
	})
	require.Len(t, headers, 2)
	assert.Equal(t, "a.go", headers[0].FilePath)
	assert.Equal(t, []string{"Widget"}, headers[0].Classes)
	assert.Equal(t, []string{"Alpha"}, headers[0].Functions)
	assert.Equal(t, "b.go", headers[1].FilePath)
}

func TestAssemble_RejectsNonPositiveBudget(t *testing.T) {
	a := New(nil)
	_, err := a.Assemble(context.Background(), Request{Task: "do thing", Budget: 0})
	assert.Error(t, err)
}

func TestAssemble_DefaultsSystemPromptAndIncludesTask(t *testing.T) {
	a := New(nil)
	result, err := a.Assemble(context.Background(), Request{Task: "fix the bug", Budget: 10000})
	require.NoError(t, err)
	require.Len(t, result.Messages, 2)
	assert.Equal(t, defaultSystemPrompt, result.Messages[0].Content)
	assert.Contains(t, result.Messages[1].Content, "fix the bug")
}

func TestAssemble_IncludesChunksWithinBudget(t *testing.T) {
	a := New(nil)
	result, err := a.Assemble(context.Background(), Request{
		Task:       "explain",
		BaseChunks: []types.Candidate{candidate("a.go", 1, 5, "func A() {}")},
		Budget:     10000,
	})
	require.NoError(t, err)
	assert.Len(t, result.SelectedChunks, 1)
	assert.Equal(t, 1, result.TokenUsage.ChunksIncluded)
	assert.Contains(t, result.Messages[1].Content, "func A() {}")
}

func TestAssemble_SkipsChunksThatWouldOverflowBudgetButTriesLaterOnes(t *testing.T) {
	a := New(nil)
	big := strings.Repeat("x", 4000) // far larger than a tiny budget allows
	small := "func Small() {}"

	result, err := a.Assemble(context.Background(), Request{
		Task: "t",
		BaseChunks: []types.Candidate{
			candidate("big.go", 1, 1, big),
			candidate("small.go", 1, 1, small),
		},
		Budget: 50, // enough for task + small chunk, not the big one
	})
	require.NoError(t, err)
	require.Len(t, result.SelectedChunks, 1)
	assert.Equal(t, "small.go", result.SelectedChunks[0].Entity.FilePath)
}

func TestAssemble_TruncatesCodeFenceAt2000Chars(t *testing.T) {
	a := New(nil)
	longCode := strings.Repeat("a", 3000)
	result, err := a.Assemble(context.Background(), Request{
		Task:       "t",
		BaseChunks: []types.Candidate{candidate("a.go", 1, 1, longCode)},
		Budget:     1000000,
	})
	require.NoError(t, err)
	require.Len(t, result.SelectedChunks, 1)
	assert.LessOrEqual(t, strings.Count(result.Messages[1].Content, "a"), codeFenceMaxChars+10)
}

func TestAssemble_CapsClassesAndFunctionsPerFileHeader(t *testing.T) {
	a := New(nil)
	var classes, functions []string
	for i := 0; i < 20; i++ {
		classes = append(classes, "Cls")
		functions = append(functions, "Fn")
	}

	result, err := a.Assemble(context.Background(), Request{
		Task:        "t",
		FileHeaders: []FileHeader{{FilePath: "a.go", Classes: classes, Functions: functions}},
		Budget:      1000000,
	})
	require.NoError(t, err)
	content := result.Messages[1].Content
	assert.Equal(t, maxClassesPerFile, strings.Count(content, "Cls"))
	assert.Equal(t, maxFunctionsPerFile, strings.Count(content, "Fn"))
}

type fakeCounter struct{ n int }

func (f fakeCounter) CountTokens(_ context.Context, _, _ string) (int, error) { return f.n, nil }

func TestAssemble_UsesCounterForFinalAccurateCheck(t *testing.T) {
	a := New(fakeCounter{n: 42})
	result, err := a.Assemble(context.Background(), Request{Task: "t", Budget: 10000})
	require.NoError(t, err)
	assert.Equal(t, 42, result.TokenUsage.EstimatedTokens)
}
