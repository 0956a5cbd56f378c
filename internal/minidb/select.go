package minidb

import (
	"context"
	"errors"
	"fmt"
)

var (
	ErrNoMoreRows = errors.New("no more rows")
)

// Select returns a lazy, forward only stream of all rows in ascending key
// order. The scan starts at the leftmost leaf and follows sibling pointers,
// it never revisits the tree from the root.
func (t *Table) Select(ctx context.Context, stmt Statement) (StatementResult, error) {
	var (
		rowsPipe   = make(chan Row)
		errorsPipe = make(chan error, 1)
	)

	go t.sequentialScan(ctx, rowsPipe, errorsPipe)

	aResult := StatementResult{
		Rows: func(ctx context.Context) (Row, error) {
			select {
			case <-ctx.Done():
				return Row{}, fmt.Errorf("context done: %w", ctx.Err())
			case err := <-errorsPipe:
				return Row{}, err
			case aRow, open := <-rowsPipe:
				if !open {
					return Row{}, ErrNoMoreRows
				}
				return aRow, nil
			}
		},
	}

	return aResult, nil
}

func (t *Table) sequentialScan(ctx context.Context, out chan<- Row, errorsPipe chan<- error) {
	defer close(out)

	aCursor, err := t.SeekFirst(ctx)
	if err != nil {
		errorsPipe <- err
		return
	}

	for !aCursor.EndOfTable {
		aRow, err := aCursor.fetchRow(ctx)
		if err != nil {
			errorsPipe <- err
			return
		}

		select {
		case <-ctx.Done():
			return
		case out <- aRow:
			continue
		}
	}
}
