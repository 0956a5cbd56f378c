package minidb

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpen_NewFile(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	aTable := newTestTable(t)

	assert.Equal(t, PageIndex(0), aTable.RootPageIdx)

	aRootPage, err := aTable.pager.GetPage(ctx, aTable.RootPageIdx)
	require.NoError(t, err)
	require.NotNil(t, aRootPage.LeafNode)
	assert.True(t, aRootPage.LeafNode.Header.IsRoot)
	assert.Equal(t, InvalidPageNum, aRootPage.LeafNode.Header.Parent)
	assert.Equal(t, uint32(0), aRootPage.LeafNode.Header.Cells)
}

func TestTable_CloseAndReopen(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	dbPath := filepath.Join(t.TempDir(), "db")

	dbFile, err := os.OpenFile(dbPath, os.O_RDWR|os.O_CREATE, 0600)
	require.NoError(t, err)

	aTable, err := Open(ctx, testLogger, dbFile)
	require.NoError(t, err)

	rows := gen.Rows(40)
	for _, aRow := range rows {
		_, err := aTable.Insert(ctx, Statement{Kind: Insert, Row: aRow})
		require.NoError(t, err)
	}
	require.NoError(t, aTable.Close(ctx))

	// Reopen the same file, every row must come back from disk
	dbFile, err = os.OpenFile(dbPath, os.O_RDWR, 0600)
	require.NoError(t, err)

	reopened, err := Open(ctx, testLogger, dbFile)
	require.NoError(t, err)
	defer reopened.Close(ctx)

	stored := selectAllRows(ctx, t, reopened)
	require.Len(t, stored, len(rows))

	byID := make(map[uint32]Row, len(rows))
	for _, aRow := range rows {
		byID[aRow.ID] = aRow
	}
	for _, aRow := range stored {
		assert.Equal(t, byID[aRow.ID], aRow)
	}
}

func TestTable_ExecuteStatement_UnknownKind(t *testing.T) {
	t.Parallel()

	aTable := newTestTable(t)

	_, err := aTable.ExecuteStatement(context.Background(), Statement{})
	assert.Error(t, err)
}

// Inserting a few thousand ascending keys grows the tree to three levels,
// the root internal node itself has to split along the way.
func TestTable_Insert_DeepTree(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	aTable := newTestTable(t)

	const total = 4000
	for id := uint32(1); id <= total; id++ {
		_, err := aTable.Insert(ctx, Statement{Kind: Insert, Row: Row{
			ID:       id,
			Username: "u",
			Email:    "e",
		}})
		require.NoError(t, err)
	}

	aRootPage, err := aTable.pager.GetPage(ctx, aTable.RootPageIdx)
	require.NoError(t, err)
	require.NotNil(t, aRootPage.InternalNode)

	// Root children are internal nodes as well
	firstChildIdx, err := aRootPage.InternalNode.Child(0)
	require.NoError(t, err)
	firstChild, err := aTable.pager.GetPage(ctx, firstChildIdx)
	require.NoError(t, err)
	assert.NotNil(t, firstChild.InternalNode)

	assertTreeInvariants(ctx, t, aTable)

	rows := selectAllRows(ctx, t, aTable)
	require.Len(t, rows, total)
	for i, aRow := range rows {
		assert.Equal(t, uint32(i+1), aRow.ID)
	}
}

// assertTreeInvariants walks the whole tree checking that separator keys
// match child subtree max keys, keys are strictly ascending within each
// node and every child points back at its parent.
func assertTreeInvariants(ctx context.Context, t *testing.T, aTable *Table) {
	t.Helper()

	err := aTable.BFS(ctx, func(aPage *Page) {
		if aPage.InternalNode == nil {
			keys := aPage.LeafNode.Keys()
			for i := 1; i < len(keys); i++ {
				assert.Greater(t, keys[i], keys[i-1])
			}
			return
		}

		aNode := aPage.InternalNode
		keys := aNode.Keys()
		for i := 1; i < len(keys); i++ {
			assert.Greater(t, keys[i], keys[i-1])
		}

		for idx := uint32(0); idx <= aNode.Header.KeysNum; idx++ {
			childPageIdx, err := aNode.Child(idx)
			require.NoError(t, err)

			aChildPage, err := aTable.pager.GetPage(ctx, childPageIdx)
			require.NoError(t, err)
			assert.Equal(t, aPage.Index, aChildPage.parent())

			childMaxKey, err := aTable.GetMaxKey(ctx, aChildPage)
			require.NoError(t, err)
			if idx < aNode.Header.KeysNum {
				assert.Equal(t, aNode.ICells[idx].Key, childMaxKey,
					"separator key mismatch, page %d child %d", aPage.Index, idx)
			}
		}
	})
	require.NoError(t, err)
}

func TestTable_Insert_MaxPagesReached(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	aTable := newTestTable(t)

	var lastErr error
	for id := uint32(1); id <= 20000; id++ {
		_, err := aTable.Insert(ctx, Statement{Kind: Insert, Row: Row{
			ID:       id,
			Username: "u",
			Email:    "e",
		}})
		if err != nil {
			lastErr = err
			break
		}
	}

	require.Error(t, lastErr)
	assert.ErrorIs(t, lastErr, ErrMaxPagesReached)
}
