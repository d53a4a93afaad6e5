package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestChunkFile_NoSpansProducesFixedWindows(t *testing.T) {
	chunks := ChunkFile(500, nil)
	assert.NotEmpty(t, chunks)
	for _, c := range chunks {
		assert.Equal(t, ChunkKindFixed, c.Kind)
	}
	assert.Equal(t, 0, chunks[0].StartLine)
	assert.Equal(t, 499, chunks[len(chunks)-1].EndLine)
}

func TestChunkFile_MergesAdjacentSpans(t *testing.T) {
	// two spans touching at 10/11 should merge into one ast_region; the
	// residual lines 21-49 become one fixed window
	chunks := ChunkFile(50, [][2]int{{0, 10}, {11, 20}})
	assert.Len(t, chunks, 2)
	assert.Equal(t, ChunkKindASTRegion, chunks[0].Kind)
	assert.Equal(t, 0, chunks[0].StartLine)
	assert.Equal(t, 20, chunks[0].EndLine)
	assert.Equal(t, ChunkKindFixed, chunks[1].Kind)
	assert.Equal(t, 21, chunks[1].StartLine)
}

func TestChunkFile_FillsResidualGapsWithFixedWindows(t *testing.T) {
	chunks := ChunkFile(100, [][2]int{{40, 59}})
	var kinds []ChunkKindWire
	for _, c := range chunks {
		kinds = append(kinds, c.Kind)
	}
	assert.Contains(t, kinds, ChunkKindASTRegion)
	assert.Contains(t, kinds, ChunkKindFixed)

	// gap before the region and after it must both be covered
	covered := make([]bool, 100)
	for _, c := range chunks {
		for l := c.StartLine; l <= c.EndLine; l++ {
			covered[l] = true
		}
	}
	for l := 0; l < 100; l++ {
		assert.Truef(t, covered[l], "line %d not covered by any chunk", l)
	}
}

func TestChunkFile_ClampsOutOfBoundsSpans(t *testing.T) {
	chunks := ChunkFile(10, [][2]int{{-5, 3}, {8, 999}})
	assert.NotEmpty(t, chunks)
	for _, c := range chunks {
		assert.GreaterOrEqual(t, c.StartLine, 0)
		assert.Less(t, c.EndLine, 10)
	}
}

func TestChunkFile_EmptyFile(t *testing.T) {
	assert.Nil(t, ChunkFile(0, nil))
}

func TestFixedWindows_OverlapStep(t *testing.T) {
	chunks := fixedWindows(0, 999)
	assert.Equal(t, 0, chunks[0].StartLine)
	assert.Equal(t, FixedWindowSize-1, chunks[0].EndLine)
	assert.Equal(t, FixedWindowSize-FixedWindowOverlap, chunks[1].StartLine)
}
