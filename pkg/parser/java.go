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
	sitter "github.com/smacker/go-tree-sitter"
)

// extractJava walks a Java AST, collecting methods/constructors, classes
// and interfaces, and single-type/on-demand imports.
func (p *TreeSitterParser) extractJava(root *sitter.Node, info FileInfo, result *ParseResult) {
	content := info.Content

	var walk func(n *sitter.Node)
	walk = func(n *sitter.Node) {
		if n == nil {
			return
		}
		switch n.Type() {
		case "method_declaration", "constructor_declaration":
			if fn := p.javaMethod(n, content, info.Path); fn != nil {
				result.Functions = append(result.Functions, *fn)
			}
		case "class_declaration", "interface_declaration", "enum_declaration":
			if cls := p.javaType(n, content, info.Path); cls != nil {
				result.Classes = append(result.Classes, *cls)
			}
		case "import_declaration":
			result.Imports = append(result.Imports, javaImport(n, content, info.Path))
		}
		for i := 0; i < int(n.ChildCount()); i++ {
			walk(n.Child(i))
		}
	}
	walk(root)

	for _, fn := range result.Functions {
		node := findJavaNodeByRange(root, fn.StartLine, fn.EndLine)
		if node == nil {
			continue
		}
		result.UnresolvedCalls = append(result.UnresolvedCalls, javaCalls(node, fn.ID, info.Path, content)...)
	}
}

func (p *TreeSitterParser) javaMethod(n *sitter.Node, content []byte, path string) *FunctionEntity {
	nameNode := n.ChildByFieldName("name")
	if nameNode == nil {
		return nil
	}
	name := nameNode.Content(content)
	paramsNode := n.ChildByFieldName("parameters")
	signature := name
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

func (p *TreeSitterParser) javaType(n *sitter.Node, content []byte, path string) *ClassEntity {
	nameNode := n.ChildByFieldName("name")
	if nameNode == nil {
		return nil
	}
	name := nameNode.Content(content)
	kind := "class"
	switch n.Type() {
	case "interface_declaration":
		kind = "interface"
	case "enum_declaration":
		kind = "enum"
	}

	startLine := int(n.StartPoint().Row)
	endLine := int(n.EndPoint().Row)
	startCol := int(n.StartPoint().Column)
	endCol := int(n.EndPoint().Column)

	return &ClassEntity{
		ID:        GenerateClassID(path, name, startLine, endLine, startCol, endCol),
		Name:      name,
		Kind:      kind,
		FilePath:  path,
		Code:      p.truncateCodeText(n.Content(content)),
		StartLine: startLine,
		EndLine:   endLine,
		StartCol:  startCol,
		EndCol:    endCol,
	}
}

// javaImport extracts the dotted path from "import a.b.C;" or
// "import static a.b.C.method;", dropping the trailing semicolon.
func javaImport(n *sitter.Node, content []byte, path string) ImportEntity {
	text := n.Content(content)
	start, end := 0, len(text)
	for start < end && (text[start] == ' ' || text[start] == '\t') {
		start++
	}
	trimmed := text
	if len(text) > 0 && text[len(text)-1] == ';' {
		trimmed = text[:len(text)-1]
	}
	const prefix = "import "
	if len(trimmed) > len(prefix) && trimmed[:len(prefix)] == prefix {
		trimmed = trimmed[len(prefix):]
	}
	const staticPrefix = "static "
	if len(trimmed) > len(staticPrefix) && trimmed[:len(staticPrefix)] == staticPrefix {
		trimmed = trimmed[len(staticPrefix):]
	}
	return ImportEntity{FilePath: path, ImportPath: trimmed, StartLine: int(n.StartPoint().Row)}
}

func findJavaNodeByRange(root *sitter.Node, startLine, endLine int) *sitter.Node {
	var best *sitter.Node
	var walk func(n *sitter.Node)
	walk = func(n *sitter.Node) {
		if n == nil {
			return
		}
		if int(n.StartPoint().Row) == startLine && int(n.EndPoint().Row) == endLine {
			if n.Type() == "method_declaration" || n.Type() == "constructor_declaration" {
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

// javaCalls walks a method body collecting method_invocation and
// object_creation_expression targets.
func javaCalls(fnNode *sitter.Node, callerID, path string, content []byte) []UnresolvedCall {
	var calls []UnresolvedCall
	var walk func(n *sitter.Node)
	walk = func(n *sitter.Node) {
		if n == nil {
			return
		}
		switch n.Type() {
		case "method_invocation":
			if nameNode := n.ChildByFieldName("name"); nameNode != nil {
				calls = append(calls, UnresolvedCall{CallerID: callerID, CalleeName: nameNode.Content(content), FilePath: path})
			}
		case "object_creation_expression":
			if typeNode := n.ChildByFieldName("type"); typeNode != nil {
				calls = append(calls, UnresolvedCall{CallerID: callerID, CalleeName: typeNode.Content(content), FilePath: path})
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
