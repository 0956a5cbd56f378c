package minidb

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLeafNode_Capacity(t *testing.T) {
	t.Parallel()

	// 4096 byte page, 14 byte header, 295 byte cells
	assert.Equal(t, 13, LeafNodeMaxCells)
	assert.Equal(t, 295, LeafNodeCellSize)
}

func TestLeafNode_MarshalUnmarshal(t *testing.T) {
	t.Parallel()

	aLeaf := NewLeafNode()
	aLeaf.Header.IsRoot = true
	aLeaf.Header.Parent = InvalidPageNum
	aLeaf.Header.NextLeaf = 7
	aLeaf.Header.Cells = 3

	for i, aRow := range gen.Rows(3) {
		require.NoError(t, saveToCell(&aLeaf.Cells[i], uint32(i+1), aRow))
	}

	buf := make([]byte, PageSize)
	data, err := aLeaf.Marshal(buf)
	require.NoError(t, err)
	assert.Len(t, data, leafNodeHeaderSize+3*LeafNodeCellSize)

	// Page type byte and root flag
	assert.Equal(t, PageTypeLeaf, buf[0])
	assert.Equal(t, byte(1), buf[1])

	actual := NewLeafNode()
	_, err = actual.Unmarshal(buf)
	require.NoError(t, err)

	assert.Equal(t, aLeaf.Header, actual.Header)
	assert.Equal(t, aLeaf.Cells, actual.Cells)
	assert.Equal(t, []uint32{1, 2, 3}, actual.Keys())
}

func TestLeafNode_Marshal_OnlyStoredCells(t *testing.T) {
	t.Parallel()

	aLeaf := NewLeafNode()
	aLeaf.Header.Cells = 1
	require.NoError(t, saveToCell(&aLeaf.Cells[0], 5, gen.Row()))
	// Stale data beyond the cell count must not be serialized
	require.NoError(t, saveToCell(&aLeaf.Cells[1], 6, gen.Row()))

	data, err := aLeaf.Marshal(make([]byte, PageSize))
	require.NoError(t, err)
	assert.Len(t, data, leafNodeHeaderSize+LeafNodeCellSize)
}
