package minidb

import (
	"context"
	"fmt"
)

// Insert adds a single row to the table, the row id is the B-tree key.
// Duplicate keys are rejected before any page is mutated.
func (t *Table) Insert(ctx context.Context, stmt Statement) (StatementResult, error) {
	key := stmt.Row.ID

	aCursor, err := t.Seek(ctx, key)
	if err != nil {
		return StatementResult{}, err
	}

	aPage, err := t.pager.GetPage(ctx, aCursor.PageIdx)
	if err != nil {
		return StatementResult{}, fmt.Errorf("insert: %w", err)
	}
	if aPage.LeafNode == nil {
		return StatementResult{}, fmt.Errorf("trying to insert into non leaf node")
	}

	if aCursor.CellIdx < aPage.LeafNode.Header.Cells {
		if aPage.LeafNode.Cells[aCursor.CellIdx].Key == key {
			return StatementResult{}, fmt.Errorf("key %d: %w", key, ErrDuplicateKey)
		}
	}

	t.logger.Sugar().With(
		"page_index", int(aCursor.PageIdx),
		"cell_index", int(aCursor.CellIdx),
		"key", int(key),
	).Debug("inserting row")

	if err := aCursor.LeafNodeInsert(ctx, key, stmt.Row); err != nil {
		return StatementResult{}, err
	}

	return StatementResult{RowsAffected: 1}, nil
}
