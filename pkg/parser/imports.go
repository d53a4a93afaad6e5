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
	"path"
	"strings"
)

// ResolveImport maps a raw ImportEntity to the repo-relative path of the
// file it names, using files (the set of every parsed file path) as the
// universe of resolution candidates. Returns ok=false when no candidate
// file exists in the repo (the import is external/third-party).
func ResolveImport(files map[string]bool, imp ImportEntity, lang Language) (string, bool) {
	switch lang {
	case LangPython:
		return resolvePythonImport(files, imp.FilePath, imp.ImportPath)
	case LangJavaScript:
		return resolveJSImport(files, imp.FilePath, imp.ImportPath)
	case LangJava:
		return resolveJavaImport(files, imp.ImportPath)
	default:
		return "", false
	}
}

// resolvePythonImport tries "a.b.c" -> "a/b/c.py" then "a/b/c/__init__.py",
// checking progressively shorter prefixes so "from a.b import c" resolves
// even when c is a name defined inside b.py rather than its own module.
//
// Leading dots make the import relative: one dot means "fromPath's own
// directory", and each additional dot climbs one more directory above
// it, matching CPython's relative-import level semantics. The search
// then proceeds exactly as the absolute case, rooted at that directory
// instead of the repo root.
func resolvePythonImport(files map[string]bool, fromPath, dotted string) (string, bool) {
	level := 0
	for level < len(dotted) && dotted[level] == '.' {
		level++
	}
	rest := dotted[level:]

	base := "."
	if level > 0 {
		base = path.Dir(fromPath)
		for i := 1; i < level; i++ {
			base = path.Dir(base)
		}
	}

	if rest == "" {
		if files[path.Join(base, "__init__.py")] {
			return path.Join(base, "__init__.py"), true
		}
		return "", false
	}

	parts := strings.Split(rest, ".")
	for n := len(parts); n > 0; n-- {
		candidate := path.Join(base, strings.Join(parts[:n], "/"))
		if files[candidate+".py"] {
			return candidate + ".py", true
		}
		if files[candidate+"/__init__.py"] {
			return candidate + "/__init__.py", true
		}
	}
	return "", false
}

// jsExtensions is the order in which extensionless/relative JS imports are
// probed against the repo's file set.
var jsExtensions = []string{".ts", ".tsx", ".js", ".jsx"}

// resolveJSImport resolves a relative import ("./x", "../x/y") against
// the importing file's directory. Bare specifiers (package imports) are
// left unresolved.
func resolveJSImport(files map[string]bool, fromPath, spec string) (string, bool) {
	if !strings.HasPrefix(spec, ".") {
		return "", false
	}
	dir := path.Dir(fromPath)
	joined := path.Clean(path.Join(dir, spec))

	for _, ext := range jsExtensions {
		if files[joined+ext] {
			return joined + ext, true
		}
	}
	for _, ext := range jsExtensions {
		candidate := joined + "/index" + ext
		if files[candidate] {
			return candidate, true
		}
	}
	if files[joined] {
		return joined, true
	}
	return "", false
}

// resolveJavaImport maps "a.b.C" to "a/b/C.java". Wildcard imports
// ("a.b.*") are left unresolved since they name a package, not a file.
func resolveJavaImport(files map[string]bool, dotted string) (string, bool) {
	if strings.HasSuffix(dotted, ".*") {
		return "", false
	}
	candidate := strings.ReplaceAll(dotted, ".", "/") + ".java"
	if files[candidate] {
		return candidate, true
	}
	return "", false
}
