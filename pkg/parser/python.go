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
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
)

// extractPython walks a Python AST and fills result's Functions, Classes,
// Imports, and UnresolvedCalls. Functions nested inside a class_definition
// are still emitted as top-level FunctionEntity values (the class/function
// relationship is not recorded anywhere, matching how the teacher's Go
// extractor treats methods as ordinary functions).
func (p *TreeSitterParser) extractPython(root *sitter.Node, info FileInfo, result *ParseResult) {
	content := info.Content
	nameToID := make(map[string]string)

	var walkDefs func(n *sitter.Node)
	walkDefs = func(n *sitter.Node) {
		if n == nil {
			return
		}
		switch n.Type() {
		case "function_definition":
			fn := p.pyFunction(n, content, info.Path)
			if fn != nil {
				result.Functions = append(result.Functions, *fn)
				nameToID[fn.Name] = fn.ID
			}
		case "class_definition":
			cls := p.pyClass(n, content, info.Path)
			if cls != nil {
				result.Classes = append(result.Classes, *cls)
			}
		case "import_statement", "import_from_statement":
			result.Imports = append(result.Imports, pyImports(n, content, info.Path)...)
		}
		for i := 0; i < int(n.ChildCount()); i++ {
			walkDefs(n.Child(i))
		}
	}
	walkDefs(root)

	for _, fn := range result.Functions {
		node := findNodeByRange(root, fn.StartLine, fn.EndLine)
		if node == nil {
			continue
		}
		result.UnresolvedCalls = append(result.UnresolvedCalls, pyCalls(node, fn.ID, info.Path, content)...)
	}
}

func (p *TreeSitterParser) pyFunction(n *sitter.Node, content []byte, path string) *FunctionEntity {
	nameNode := n.ChildByFieldName("name")
	if nameNode == nil {
		return nil
	}
	name := nameNode.Content(content)
	paramsNode := n.ChildByFieldName("parameters")
	signature := "def " + name
	if paramsNode != nil {
		signature += paramsNode.Content(content)
	}

	startLine := int(n.StartPoint().Row)
	endLine := int(n.EndPoint().Row)
	startCol := int(n.StartPoint().Column)
	endCol := int(n.EndPoint().Column)

	return &FunctionEntity{
		ID:        GenerateFunctionID(path, name, startLine, endLine, startCol, endCol),
		Name:      name,
		Signature: signature,
		FilePath:  path,
		Code:      p.truncateCodeText(n.Content(content)),
		StartLine: startLine,
		EndLine:   endLine,
		StartCol:  startCol,
		EndCol:    endCol,
	}
}

func (p *TreeSitterParser) pyClass(n *sitter.Node, content []byte, path string) *ClassEntity {
	nameNode := n.ChildByFieldName("name")
	if nameNode == nil {
		return nil
	}
	name := nameNode.Content(content)
	startLine := int(n.StartPoint().Row)
	endLine := int(n.EndPoint().Row)
	startCol := int(n.StartPoint().Column)
	endCol := int(n.EndPoint().Column)

	return &ClassEntity{
		ID:        GenerateClassID(path, name, startLine, endLine, startCol, endCol),
		Name:      name,
		Kind:      "class",
		FilePath:  path,
		Code:      p.truncateCodeText(n.Content(content)),
		StartLine: startLine,
		EndLine:   endLine,
		StartCol:  startCol,
		EndCol:    endCol,
	}
}

// pyImports extracts dotted module names from an import/import-from
// statement. "import a.b.c as d" and "from a.b import c, d as e" both
// resolve to the dotted module path; aliases are recorded when present.
func pyImports(n *sitter.Node, content []byte, path string) []ImportEntity {
	var imports []ImportEntity
	line := int(n.StartPoint().Row)

	var moduleName string
	if n.Type() == "import_from_statement" {
		if mod := n.ChildByFieldName("module_name"); mod != nil {
			moduleName = mod.Content(content)
		}
	}

	for i := 0; i < int(n.NamedChildCount()); i++ {
		child := n.NamedChild(i)
		switch child.Type() {
		case "dotted_name":
			name := child.Content(content)
			if n.Type() == "import_from_statement" && moduleName != "" && name == moduleName {
				continue
			}
			imp := ImportEntity{FilePath: path, StartLine: line}
			if moduleName != "" {
				imp.ImportPath = joinModuleName(moduleName, name)
			} else {
				imp.ImportPath = name
			}
			imports = append(imports, imp)
		case "aliased_import":
			nameNode := child.ChildByFieldName("name")
			aliasNode := child.ChildByFieldName("alias")
			if nameNode == nil {
				continue
			}
			imp := ImportEntity{FilePath: path, StartLine: line, ImportPath: nameNode.Content(content)}
			if moduleName != "" {
				imp.ImportPath = joinModuleName(moduleName, imp.ImportPath)
			}
			if aliasNode != nil {
				imp.Alias = aliasNode.Content(content)
			}
			imports = append(imports, imp)
		}
	}

	if moduleName != "" && len(imports) == 0 {
		imports = append(imports, ImportEntity{FilePath: path, ImportPath: moduleName, StartLine: line})
	}

	return imports
}

// joinModuleName appends name to moduleName, without doubling up a "."
// when moduleName is a bare run of relative-import dots (".", "..", ...).
func joinModuleName(moduleName, name string) string {
	if strings.HasSuffix(moduleName, ".") {
		return moduleName + name
	}
	return moduleName + "." + name
}

// pyCalls walks a function body collecting "call" node targets, resolved
// later against the repo-wide function name index.
func pyCalls(fnNode *sitter.Node, callerID, path string, content []byte) []UnresolvedCall {
	var calls []UnresolvedCall
	var walk func(n *sitter.Node)
	walk = func(n *sitter.Node) {
		if n == nil {
			return
		}
		if n.Type() == "call" {
			if fnExpr := n.ChildByFieldName("function"); fnExpr != nil {
				name := calleeName(fnExpr, content)
				if name != "" {
					calls = append(calls, UnresolvedCall{CallerID: callerID, CalleeName: name, FilePath: path})
				}
			}
		}
		for i := 0; i < int(n.ChildCount()); i++ {
			walk(n.Child(i))
		}
	}
	for i := 0; i < int(fnNode.ChildCount()); i++ {
		walk(fnNode.Child(i))
	}
	return calls
}

// calleeName extracts the simple callee name from a call's function
// expression: a bare identifier, or the rightmost attribute of a
// dotted/member access (obj.method() -> "method").
func calleeName(n *sitter.Node, content []byte) string {
	switch n.Type() {
	case "identifier":
		return n.Content(content)
	case "attribute":
		if attr := n.ChildByFieldName("attribute"); attr != nil {
			return attr.Content(content)
		}
	case "member_expression":
		if prop := n.ChildByFieldName("property"); prop != nil {
			return prop.Content(content)
		}
	}
	return ""
}

// findNodeByRange returns the smallest node whose 0-based line span
// exactly matches [startLine, endLine], used to re-locate a function's
// AST node for call extraction after the initial entity pass.
func findNodeByRange(root *sitter.Node, startLine, endLine int) *sitter.Node {
	var best *sitter.Node
	var walk func(n *sitter.Node)
	walk = func(n *sitter.Node) {
		if n == nil {
			return
		}
		ns, ne := int(n.StartPoint().Row), int(n.EndPoint().Row)
		if ns == startLine && ne == endLine {
			if n.Type() == "function_definition" || n.Type() == "method_definition" ||
				n.Type() == "function_declaration" || n.Type() == "method_declaration" ||
				n.Type() == "arrow_function" || n.Type() == "function_expression" {
				best = n
			}
		}
		for i := 0; i < int(n.ChildCount()); i++ {
			walk(n.Child(i))
		}
	}
	walk(root)
	return best
}
