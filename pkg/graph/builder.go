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

package graph

import (
	"regexp"

	"github.com/kraklabs/codectx/pkg/parser"
)

// Graphs bundles the four views produced by one Build call.
type Graphs struct {
	Dependency *Graph // file -> file, edge type "imports"
	Call       *Graph // function id -> function id, edge type "calls"
	Class      *Graph // class id -> class id, edge type "inherits"
	Module     *Graph // file -> file, edge type "module_calls", weight = call count
}

// GraphBuilder constructs the dependency/call/class/module graphs from a
// repository's parsed files.
type GraphBuilder struct{}

// NewGraphBuilder returns a GraphBuilder.
func NewGraphBuilder() *GraphBuilder { return &GraphBuilder{} }

// Build runs dependency-edge resolution, call resolution, and a
// lightweight class-inheritance scan over every parsed file, then derives
// the module graph from the resolved call graph.
func (b *GraphBuilder) Build(parsed []parser.ParseResult) Graphs {
	files := make(map[string]bool, len(parsed))
	funcFileByID := make(map[string]string)
	classByFileAndName := make(map[string]map[string]parser.ClassEntity)

	for _, f := range parsed {
		files[f.FilePath] = true
		for _, fn := range f.Functions {
			funcFileByID[fn.ID] = fn.FilePath
		}
		if classByFileAndName[f.FilePath] == nil {
			classByFileAndName[f.FilePath] = make(map[string]parser.ClassEntity)
		}
		for _, cls := range f.Classes {
			classByFileAndName[f.FilePath][cls.Name] = cls
		}
	}

	dependency := NewGraph()
	class := NewGraph()
	var allFunctions []parser.FunctionEntity
	var allCalls []parser.UnresolvedCall

	for _, f := range parsed {
		dependency.AddNode(f.FilePath, f.FilePath, "file")
		for _, imp := range f.Imports {
			target, ok := parser.ResolveImport(files, imp, f.Language)
			if !ok {
				continue
			}
			dependency.AddEdge(f.FilePath, target, "imports", 1)
		}

		for _, cls := range f.Classes {
			class.AddNode(cls.ID, cls.Name, "class")
			for _, base := range extractBaseNames(cls, f.Language) {
				targetID := resolveClassName(classByFileAndName, f.FilePath, base)
				if targetID == "" {
					continue
				}
				class.AddEdge(cls.ID, targetID, "inherits", 1)
			}
		}

		allFunctions = append(allFunctions, f.Functions...)
		allCalls = append(allCalls, f.UnresolvedCalls...)
	}

	resolver := NewCallResolver()
	resolver.BuildIndex(allFunctions)
	callEdges := resolver.ResolveCalls(allCalls)

	call := NewGraph()
	for _, fn := range allFunctions {
		call.AddNode(fn.ID, fn.Name, "function")
	}
	module := NewGraph()
	for path := range files {
		module.AddNode(path, path, "file")
	}

	for _, e := range callEdges {
		call.AddEdge(e.CallerID, e.CalleeID, "calls", 1)

		callerFile, ok1 := funcFileByID[e.CallerID]
		calleeFile, ok2 := funcFileByID[e.CalleeID]
		if ok1 && ok2 && callerFile != calleeFile {
			module.AddEdge(callerFile, calleeFile, "module_calls", 1)
		}
	}

	return Graphs{Dependency: dependency, Call: call, Class: class, Module: module}
}

var (
	pyBaseListRe  = regexp.MustCompile(`class\s+\w+\s*\(([^)]*)\)`)
	jsExtendsRe   = regexp.MustCompile(`class\s+\w+\s+extends\s+([A-Za-z_$][\w$.]*)`)
	javaExtendsRe = regexp.MustCompile(`class\s+\w+[^{]*?extends\s+([A-Za-z_$][\w$.<>]*)`)
)

// extractBaseNames runs a regex over a class's own source text to recover
// its declared base class names. This is a heuristic, not an AST walk: it
// is good enough to wire class-hierarchy signal into the ranker without a
// second full per-language grammar pass dedicated to inheritance alone.
func extractBaseNames(cls parser.ClassEntity, lang parser.Language) []string {
	switch lang {
	case parser.LangPython:
		m := pyBaseListRe.FindStringSubmatch(cls.Code)
		if m == nil {
			return nil
		}
		var bases []string
		for _, part := range splitAndTrim(m[1], ',') {
			if part == "" || part == "object" || containsRune(part, '=') {
				continue
			}
			bases = append(bases, part)
		}
		return bases
	case parser.LangJavaScript:
		if m := jsExtendsRe.FindStringSubmatch(cls.Code); m != nil {
			return []string{m[1]}
		}
	case parser.LangJava:
		if m := javaExtendsRe.FindStringSubmatch(cls.Code); m != nil {
			return []string{stripGenerics(m[1])}
		}
	}
	return nil
}

func resolveClassName(byFileAndName map[string]map[string]parser.ClassEntity, fromFile, name string) string {
	if local, ok := byFileAndName[fromFile]; ok {
		if cls, ok := local[name]; ok {
			return cls.ID
		}
	}
	var found string
	matches := 0
	for _, classes := range byFileAndName {
		if cls, ok := classes[name]; ok {
			found = cls.ID
			matches++
		}
	}
	if matches == 1 {
		return found
	}
	return ""
}

func splitAndTrim(s string, sep rune) []string {
	var out []string
	cur := ""
	for _, r := range s {
		if r == sep {
			out = append(out, trimSpace(cur))
			cur = ""
			continue
		}
		cur += string(r)
	}
	out = append(out, trimSpace(cur))
	return out
}

func trimSpace(s string) string {
	start, end := 0, len(s)
	for start < end && (s[start] == ' ' || s[start] == '\t' || s[start] == '\n') {
		start++
	}
	for end > start && (s[end-1] == ' ' || s[end-1] == '\t' || s[end-1] == '\n') {
		end--
	}
	return s[start:end]
}

func containsRune(s string, r rune) bool {
	for _, c := range s {
		if c == r {
			return true
		}
	}
	return false
}

func stripGenerics(s string) string {
	if idx := indexRune(s, '<'); idx >= 0 {
		return s[:idx]
	}
	return s
}

func indexRune(s string, r rune) int {
	for i, c := range s {
		if c == r {
			return i
		}
	}
	return -1
}
