package graph

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGraph_AddEdgeAccumulatesWeight(t *testing.T) {
	g := NewGraph()
	g.AddEdge("a", "b", "calls", 1)
	g.AddEdge("a", "b", "calls", 2)

	named := g.ToNamedGraph()
	assert.Len(t, named.Edges, 1)
	assert.Equal(t, 3, named.Edges[0].Weight)
}

func TestGraph_OutAndIn(t *testing.T) {
	g := NewGraph()
	g.AddEdge("a", "b", "calls", 1)
	g.AddEdge("a", "c", "calls", 1)
	g.AddEdge("b", "c", "calls", 1)

	assert.ElementsMatch(t, []string{"b", "c"}, g.Out("a"))
	assert.ElementsMatch(t, []string{"a", "b"}, g.In("c"))
}

func TestGraph_IsEmpty(t *testing.T) {
	g := NewGraph()
	assert.True(t, g.IsEmpty())
	g.AddNode("a", "a", "file")
	assert.False(t, g.IsEmpty())
}

func TestCentrality_FallsBackToDegreeWhenNoEdges(t *testing.T) {
	g := NewGraph()
	g.AddNode("a", "a", "file")
	g.AddNode("b", "b", "file")

	c := g.Centrality()
	assert.Equal(t, float64(0), c["a"])
	assert.Equal(t, float64(0), c["b"])
}

func TestCentrality_PageRankRanksHubHigher(t *testing.T) {
	g := NewGraph()
	g.AddEdge("a", "hub", "imports", 1)
	g.AddEdge("b", "hub", "imports", 1)
	g.AddEdge("c", "hub", "imports", 1)
	g.AddEdge("hub", "leaf", "imports", 1)

	c := g.Centrality()
	assert.Greater(t, c["hub"], c["a"])
	assert.Greater(t, c["hub"], c["leaf"])
}

func TestSimpleCycles_DetectsMutualRecursion(t *testing.T) {
	g := NewGraph()
	g.AddEdge("a", "b", "calls", 1)
	g.AddEdge("b", "a", "calls", 1)
	g.AddEdge("c", "d", "calls", 1)

	cycles := g.SimpleCycles()
	require := assert.New(t)
	require.Len(cycles, 1)
	require.ElementsMatch([]string{"a", "b"}, cycles[0])
}

func TestSimpleCycles_DetectsSelfLoop(t *testing.T) {
	g := NewGraph()
	g.AddEdge("a", "a", "calls", 1)

	cycles := g.SimpleCycles()
	assert.Equal(t, [][]string{{"a"}}, cycles)
}

func TestImpacted_ReverseReachabilityWithDepthLimit(t *testing.T) {
	g := NewGraph()
	g.AddEdge("caller1", "target", "calls", 1)
	g.AddEdge("caller2", "caller1", "calls", 1)
	g.AddEdge("caller3", "caller2", "calls", 1)

	assert.ElementsMatch(t, []string{"caller1", "caller2", "caller3"}, g.Impacted("target", 0))
	assert.ElementsMatch(t, []string{"caller1"}, g.Impacted("target", 1))
}

func TestImpacted_UnknownNode(t *testing.T) {
	g := NewGraph()
	assert.Nil(t, g.Impacted("missing", 0))
}

func TestSlice_ForwardWalksCallees(t *testing.T) {
	g := NewGraph()
	g.AddEdge("root", "mid", "calls", 1)
	g.AddEdge("mid", "leaf", "calls", 1)

	assert.ElementsMatch(t, []string{"mid", "leaf"}, g.Slice("root", 0, true))
	assert.ElementsMatch(t, []string{"mid"}, g.Slice("root", 1, true))
}

func TestSlice_BackwardWalksCallers(t *testing.T) {
	g := NewGraph()
	g.AddEdge("caller", "root", "calls", 1)

	assert.ElementsMatch(t, []string{"caller"}, g.Slice("root", 0, false))
}

func TestNodesByLabel_MatchesExactLabel(t *testing.T) {
	g := NewGraph()
	g.AddNode("func:a:parseConfig", "parseConfig", "function")
	g.AddNode("func:b:parseConfig", "parseConfig", "function")
	g.AddNode("func:c:other", "other", "function")

	matches := g.NodesByLabel("parseConfig")
	assert.Len(t, matches, 2)

	assert.Empty(t, g.NodesByLabel("missing"))
}
