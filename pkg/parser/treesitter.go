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

package parser

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/java"
	"github.com/smacker/go-tree-sitter/javascript"
	"github.com/smacker/go-tree-sitter/python"
	tstypescript "github.com/smacker/go-tree-sitter/typescript/typescript"
)

// TreeSitterParser is the accurate, AST-based CodeParser implementation.
// One sitter.Parser is kept per language to avoid re-allocating grammars
// on every file.
type TreeSitterParser struct {
	pyParser   *sitter.Parser
	jsParser   *sitter.Parser
	tsParser   *sitter.Parser
	javaParser *sitter.Parser
	logger     *slog.Logger

	maxCodeTextSize int64
	truncatedCount  int
}

var _ CodeParser = (*TreeSitterParser)(nil)

// NewTreeSitterParser builds a parser with one sitter.Parser per supported
// language. logger may be nil, in which case slog.Default() is used.
func NewTreeSitterParser(logger *slog.Logger) *TreeSitterParser {
	if logger == nil {
		logger = slog.Default()
	}

	py := sitter.NewParser()
	py.SetLanguage(python.GetLanguage())

	js := sitter.NewParser()
	js.SetLanguage(javascript.GetLanguage())

	ts := sitter.NewParser()
	ts.SetLanguage(tstypescript.GetLanguage())

	jv := sitter.NewParser()
	jv.SetLanguage(java.GetLanguage())

	return &TreeSitterParser{
		pyParser:        py,
		jsParser:        js,
		tsParser:        ts,
		javaParser:      jv,
		logger:          logger,
		maxCodeTextSize: 1 << 20,
	}
}

// SetMaxCodeTextSize caps the number of bytes kept in an entity's Code
// field; longer bodies are truncated with a marker and counted.
func (p *TreeSitterParser) SetMaxCodeTextSize(size int64) {
	p.maxCodeTextSize = size
}

// TruncatedCount returns how many code bodies have been truncated so far.
func (p *TreeSitterParser) TruncatedCount() int { return p.truncatedCount }

// ParseFile dispatches to the language-specific extractor selected by file
// extension, then computes chunks over the merged entity spans. Files in
// an unsupported language return a result with only LinesOfCode and fixed
// chunks set (entities empty, nil error).
func (p *TreeSitterParser) ParseFile(info FileInfo) (*ParseResult, error) {
	lang := DetectLanguage(info.Path)
	totalLines := bytes.Count(info.Content, []byte("\n")) + 1

	result := &ParseResult{
		FilePath:    info.Path,
		Language:    lang,
		LinesOfCode: totalLines,
	}

	var tree *sitter.Tree
	var err error

	switch lang {
	case LangPython:
		tree, err = p.pyParser.ParseCtx(context.Background(), nil, info.Content)
		if err == nil {
			p.extractPython(tree.RootNode(), info, result)
		}
	case LangJavaScript:
		sitterParser := p.jsParser
		if looksLikeTypeScript(info.Path) {
			sitterParser = p.tsParser
		}
		tree, err = sitterParser.ParseCtx(context.Background(), nil, info.Content)
		if err == nil {
			p.extractJavaScript(tree.RootNode(), info, result)
		}
	case LangJava:
		tree, err = p.javaParser.ParseCtx(context.Background(), nil, info.Content)
		if err == nil {
			p.extractJava(tree.RootNode(), info, result)
		}
	default:
		result.Chunks = ChunkFile(totalLines, nil)
		return result, nil
	}
	if err != nil {
		return nil, fmt.Errorf("tree-sitter parse %s: %w", info.Path, err)
	}
	defer tree.Close()

	if tree.RootNode().HasError() {
		if n := countErrors(tree.RootNode()); n > 0 {
			p.logger.Warn("parser.treesitter.syntax_errors",
				"path", info.Path, "language", string(lang), "error_count", n)
		}
	}

	spans := make([][2]int, 0, len(result.Functions)+len(result.Classes))
	for _, fn := range result.Functions {
		spans = append(spans, [2]int{fn.StartLine, fn.EndLine})
	}
	for _, cls := range result.Classes {
		spans = append(spans, [2]int{cls.StartLine, cls.EndLine})
	}
	result.Chunks = ChunkFile(totalLines, spans)

	return result, nil
}

func looksLikeTypeScript(path string) bool {
	ext := extOf(path)
	return ext == ".ts" || ext == ".tsx"
}

// countErrors counts ERROR nodes in a parse tree, used only for logging;
// tree-sitter parsing itself is error-tolerant and still yields usable
// entities around the damaged region.
func countErrors(node *sitter.Node) int {
	if node == nil {
		return 0
	}
	count := 0
	if node.IsError() {
		count++
	}
	for i := 0; i < int(node.ChildCount()); i++ {
		count += countErrors(node.Child(i))
	}
	return count
}

// truncateCodeText clamps code to maxCodeTextSize bytes, counting the
// truncation so callers can surface it in ingest summaries.
func (p *TreeSitterParser) truncateCodeText(code string) string {
	if int64(len(code)) <= p.maxCodeTextSize {
		return code
	}
	p.truncatedCount++
	return code[:p.maxCodeTextSize] + "...[truncated]"
}
