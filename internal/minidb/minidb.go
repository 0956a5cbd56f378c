package minidb

import (
	"context"
	"errors"
	"fmt"
	"io"
)

const (
	PageSize = 4096 // 4 kilobytes
	MaxPages = 1024 // fixed page table capacity
)

const (
	UsernameSize = 32
	EmailSize    = 255

	// Serialized row: 4 byte id + fixed width, null padded text fields
	RowSize = 4 + UsernameSize + EmailSize

	// Leaf cell: 4 byte key followed by the serialized row
	LeafNodeCellSize = 4 + RowSize
	LeafNodeMaxCells = (PageSize - leafNodeHeaderSize) / LeafNodeCellSize

	// Internal cell: 4 byte child page number followed by 4 byte max key
	ICellSize            = 8
	InternalNodeMaxCells = (PageSize - internalNodeHeaderSize) / ICellSize
)

var (
	ErrDuplicateKey    = errors.New("duplicate key")
	ErrMaxPagesReached = errors.New("maximum pages reached")

	errUnrecognizedStatementType = errors.New("unrecognised statement type")
)

type StatementKind int

const (
	Insert StatementKind = iota + 1
	Select
)

type Statement struct {
	Kind StatementKind
	Row  Row
}

type StatementResult struct {
	RowsAffected int
	// Rows returns the next row of a SELECT result until ErrNoMoreRows
	Rows func(ctx context.Context) (Row, error)
}

// PrintConstants writes the in-page layout constants, useful when
// inspecting database files by hand.
func PrintConstants(w io.Writer) {
	fmt.Fprintln(w, "Constants:")
	fmt.Fprintln(w, "PageSize:", PageSize)
	fmt.Fprintln(w, "MaxPages:", MaxPages)
	fmt.Fprintln(w, "RowSize:", RowSize)
	fmt.Fprintln(w, "LeafNodeHeaderSize:", leafNodeHeaderSize)
	fmt.Fprintln(w, "LeafNodeCellSize:", LeafNodeCellSize)
	fmt.Fprintln(w, "LeafNodeMaxCells:", LeafNodeMaxCells)
	fmt.Fprintln(w, "InternalNodeHeaderSize:", internalNodeHeaderSize)
	fmt.Fprintln(w, "InternalNodeMaxCells:", InternalNodeMaxCells)
}
