package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const javaFixture = `package com.example.widgets;

import java.util.List;
import static java.util.Collections.emptyList;

public class Widget {
    private final String id;

    public Widget(String id) {
        this.id = id;
    }

    public String render() {
        return Helper.format(this.id);
    }
}
`

func parseJava(t *testing.T, path, src string) *ParseResult {
	t.Helper()
	p := NewTreeSitterParser(nil)
	result, err := p.ParseFile(FileInfo{Path: path, Content: []byte(src)})
	require.NoError(t, err)
	return result
}

func TestJavaParser_ExtractsClassAndMembers(t *testing.T) {
	result := parseJava(t, "Widget.java", javaFixture)

	require.Len(t, result.Classes, 1)
	assert.Equal(t, "Widget", result.Classes[0].Name)
	assert.Equal(t, "class", result.Classes[0].Kind)

	names := make(map[string]bool)
	for _, fn := range result.Functions {
		names[fn.Name] = true
	}
	assert.True(t, names["Widget"], "constructor should be extracted")
	assert.True(t, names["render"])
}

func TestJavaParser_ExtractsImports(t *testing.T) {
	result := parseJava(t, "Widget.java", javaFixture)
	require.Len(t, result.Imports, 2)
	assert.Equal(t, "java.util.List", result.Imports[0].ImportPath)
	assert.Equal(t, "java.util.Collections.emptyList", result.Imports[1].ImportPath)
}

func TestJavaParser_ExtractsCalls(t *testing.T) {
	result := parseJava(t, "Widget.java", javaFixture)

	var sawFormat bool
	for _, c := range result.UnresolvedCalls {
		if c.CalleeName == "format" {
			sawFormat = true
		}
	}
	assert.True(t, sawFormat)
}

func TestResolveJavaImport(t *testing.T) {
	files := map[string]bool{"com/example/widgets/Helper.java": true}

	resolved, ok := resolveJavaImport(files, "com.example.widgets.Helper")
	assert.True(t, ok)
	assert.Equal(t, "com/example/widgets/Helper.java", resolved)

	_, ok = resolveJavaImport(files, "com.example.widgets.*")
	assert.False(t, ok)
}
