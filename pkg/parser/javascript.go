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
	"fmt"

	sitter "github.com/smacker/go-tree-sitter"
)

// extractJavaScript walks a JavaScript/JSX/TypeScript/TSX AST. The same
// grammar-family node types cover plain functions, arrow functions bound
// to a const/let/var, class methods, and (when parsed with the
// TypeScript grammar) interface/method/function signatures.
func (p *TreeSitterParser) extractJavaScript(root *sitter.Node, info FileInfo, result *ParseResult) {
	content := info.Content
	anonCounter := 0

	var walk func(n *sitter.Node)
	walk = func(n *sitter.Node) {
		if n == nil {
			return
		}
		switch n.Type() {
		case "function_declaration":
			if fn := p.jsNamedFunction(n, content, info.Path); fn != nil {
				result.Functions = append(result.Functions, *fn)
			}
		case "variable_declarator":
			nameNode := n.ChildByFieldName("name")
			valueNode := n.ChildByFieldName("value")
			if nameNode != nil && valueNode != nil {
				switch valueNode.Type() {
				case "arrow_function", "function_expression", "function":
					if fn := p.jsBoundFunction(nameNode, valueNode, content, info.Path); fn != nil {
						result.Functions = append(result.Functions, *fn)
					}
				}
			}
		case "method_definition", "method_signature", "function_signature":
			if fn := p.jsNamedFunction(n, content, info.Path); fn != nil {
				result.Functions = append(result.Functions, *fn)
			}
		case "arrow_function":
			parent := n.Parent()
			if parent == nil || parent.Type() != "variable_declarator" {
				anonCounter++
				if fn := p.jsAnonymousFunction(n, content, info.Path, anonCounter); fn != nil {
					result.Functions = append(result.Functions, *fn)
				}
			}
		case "class_declaration", "interface_declaration":
			if cls := p.jsClass(n, content, info.Path); cls != nil {
				result.Classes = append(result.Classes, *cls)
			}
		case "import_statement":
			if imp := jsImport(n, content, info.Path); imp != nil {
				result.Imports = append(result.Imports, *imp)
			}
		}
		for i := 0; i < int(n.ChildCount()); i++ {
			walk(n.Child(i))
		}
	}
	walk(root)

	for _, fn := range result.Functions {
		node := findNodeByRange(root, fn.StartLine, fn.EndLine)
		if node == nil {
			continue
		}
		result.UnresolvedCalls = append(result.UnresolvedCalls, jsCalls(node, fn.ID, info.Path, content)...)
	}
}

func (p *TreeSitterParser) jsNamedFunction(n *sitter.Node, content []byte, path string) *FunctionEntity {
	nameNode := n.ChildByFieldName("name")
	if nameNode == nil {
		return nil
	}
	return p.jsFunctionEntity(n, nameNode.Content(content), n.Content(content), content, path)
}

func (p *TreeSitterParser) jsBoundFunction(nameNode, valueNode *sitter.Node, content []byte, path string) *FunctionEntity {
	name := nameNode.Content(content)
	return p.jsFunctionEntity(valueNode, name, valueNode.Content(content), content, path)
}

func (p *TreeSitterParser) jsAnonymousFunction(n *sitter.Node, content []byte, path string, counter int) *FunctionEntity {
	name := fmt.Sprintf("<anonymous_%d>", counter)
	return p.jsFunctionEntity(n, name, n.Content(content), content, path)
}

func (p *TreeSitterParser) jsFunctionEntity(n *sitter.Node, name, signature string, content []byte, path string) *FunctionEntity {
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

func (p *TreeSitterParser) jsClass(n *sitter.Node, content []byte, path string) *ClassEntity {
	nameNode := n.ChildByFieldName("name")
	if nameNode == nil {
		return nil
	}
	name := nameNode.Content(content)
	kind := "class"
	if n.Type() == "interface_declaration" {
		kind = "interface"
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

// jsImport extracts the module specifier string from an ES import
// statement, stripping the surrounding quotes.
func jsImport(n *sitter.Node, content []byte, path string) *ImportEntity {
	sourceNode := n.ChildByFieldName("source")
	if sourceNode == nil {
		return nil
	}
	raw := sourceNode.Content(content)
	spec := raw
	if len(raw) >= 2 {
		spec = raw[1 : len(raw)-1]
	}
	return &ImportEntity{FilePath: path, ImportPath: spec, StartLine: int(n.StartPoint().Row)}
}

// jsCalls walks a function node collecting call_expression targets.
func jsCalls(fnNode *sitter.Node, callerID, path string, content []byte) []UnresolvedCall {
	var calls []UnresolvedCall
	var walk func(n *sitter.Node)
	walk = func(n *sitter.Node) {
		if n == nil {
			return
		}
		if n.Type() == "call_expression" || n.Type() == "new_expression" {
			if fnExpr := n.ChildByFieldName("function"); fnExpr != nil {
				if name := calleeName(fnExpr, content); name != "" {
					calls = append(calls, UnresolvedCall{CallerID: callerID, CalleeName: name, FilePath: path})
				}
			} else if ctor := n.ChildByFieldName("constructor"); ctor != nil {
				if name := calleeName(ctor, content); name != "" {
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
