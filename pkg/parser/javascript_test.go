package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const jsFixture = `import { helper } from "./helper";

export class Widget {
  render() {
    return helper(this.id);
  }
}

const build = (id) => {
  return new Widget(id);
};

function main() {
  return build(1);
}
`

func parseJS(t *testing.T, path, src string) *ParseResult {
	t.Helper()
	p := NewTreeSitterParser(nil)
	result, err := p.ParseFile(FileInfo{Path: path, Content: []byte(src)})
	require.NoError(t, err)
	return result
}

func TestJavaScriptParser_ExtractsFunctionsAndClasses(t *testing.T) {
	result := parseJS(t, "widget.js", jsFixture)

	require.Len(t, result.Classes, 1)
	assert.Equal(t, "Widget", result.Classes[0].Name)

	names := make(map[string]bool)
	for _, fn := range result.Functions {
		names[fn.Name] = true
	}
	assert.True(t, names["render"])
	assert.True(t, names["build"])
	assert.True(t, names["main"])
}

func TestJavaScriptParser_ExtractsRelativeImport(t *testing.T) {
	result := parseJS(t, "widget.js", jsFixture)
	require.Len(t, result.Imports, 1)
	assert.Equal(t, "./helper", result.Imports[0].ImportPath)
}

func TestJavaScriptParser_ExtractsCalls(t *testing.T) {
	result := parseJS(t, "widget.js", jsFixture)

	names := make(map[string]bool)
	for _, c := range result.UnresolvedCalls {
		names[c.CalleeName] = true
	}
	assert.True(t, names["helper"])
	assert.True(t, names["build"])
	assert.True(t, names["Widget"])
}

func TestResolveJSImport(t *testing.T) {
	files := map[string]bool{
		"src/helper.js":       true,
		"src/utils/index.ts": true,
	}

	resolved, ok := resolveJSImport(files, "src/widget.js", "./helper")
	assert.True(t, ok)
	assert.Equal(t, "src/helper.js", resolved)

	resolved, ok = resolveJSImport(files, "src/widget.js", "./utils")
	assert.True(t, ok)
	assert.Equal(t, "src/utils/index.ts", resolved)

	_, ok = resolveJSImport(files, "src/widget.js", "react")
	assert.False(t, ok)
}
