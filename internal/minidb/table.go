package minidb

import (
	"context"
	"fmt"

	"go.uber.org/zap"
)

type Pager interface {
	GetPage(context.Context, PageIndex) (*Page, error)
	TotalPages() uint32
	Flush(context.Context, PageIndex) error
	Close() error
}

// Table is the engine's public handle, it wraps a pager and tracks the
// root page number.
type Table struct {
	RootPageIdx PageIndex
	pager       Pager
	logger      *zap.Logger
}

// Open initializes a table over the given database file, creating the
// root leaf page if the file is empty.
func Open(ctx context.Context, logger *zap.Logger, file DBFile) (*Table, error) {
	aPager, err := NewPager(file)
	if err != nil {
		return nil, err
	}

	aTable := &Table{
		RootPageIdx: 0,
		pager:       aPager,
		logger:      logger,
	}

	if aPager.TotalPages() == 0 {
		// New database file, initialize page 0 as the root leaf node
		aRootPage, err := aPager.GetPage(ctx, aTable.RootPageIdx)
		if err != nil {
			return nil, err
		}
		aRootPage.LeafNode.Header.IsRoot = true
		aRootPage.LeafNode.Header.Parent = InvalidPageNum
	}

	logger.Sugar().With(
		"total_pages", int(aPager.TotalPages()),
	).Debug("table opened")

	return aTable, nil
}

// Close flushes every resident page to disk and releases the file handle.
// All cached pages are considered dirty, there is no dirty bit tracking.
func (t *Table) Close(ctx context.Context) error {
	for pageIdx := uint32(0); pageIdx < t.pager.TotalPages(); pageIdx++ {
		if err := t.pager.Flush(ctx, PageIndex(pageIdx)); err != nil {
			return fmt.Errorf("close: %w", err)
		}
	}
	return t.pager.Close()
}

func (t *Table) ExecuteStatement(ctx context.Context, stmt Statement) (StatementResult, error) {
	switch stmt.Kind {
	case Insert:
		return t.Insert(ctx, stmt)
	case Select:
		return t.Select(ctx, stmt)
	}
	return StatementResult{}, errUnrecognizedStatementType
}

// SeekFirst returns a cursor pointing at the first cell of the leftmost
// leaf node.
func (t *Table) SeekFirst(ctx context.Context) (*Cursor, error) {
	pageIdx := t.RootPageIdx
	aPage, err := t.pager.GetPage(ctx, pageIdx)
	if err != nil {
		return nil, fmt.Errorf("seek first: %w", err)
	}
	for aPage.LeafNode == nil {
		pageIdx = aPage.InternalNode.ICells[0].Child
		aPage, err = t.pager.GetPage(ctx, pageIdx)
		if err != nil {
			return nil, fmt.Errorf("seek first: %w", err)
		}
	}
	return &Cursor{
		Table:      t,
		PageIdx:    pageIdx,
		CellIdx:    0,
		EndOfTable: aPage.LeafNode.Header.Cells == 0,
	}, nil
}

// Seek the cursor for a key, if it does not exist then return the cursor
// for the page and cell where it should be inserted.
func (t *Table) Seek(ctx context.Context, key uint32) (*Cursor, error) {
	aRootPage, err := t.pager.GetPage(ctx, t.RootPageIdx)
	if err != nil {
		return nil, fmt.Errorf("seek: %w", err)
	}
	if aRootPage.LeafNode != nil {
		return t.leafNodeSeek(t.RootPageIdx, aRootPage, key)
	}
	return t.internalNodeSeek(ctx, aRootPage, key)
}

func (t *Table) leafNodeSeek(pageIdx PageIndex, aPage *Page, key uint32) (*Cursor, error) {
	var (
		minIdx uint32
		maxIdx = aPage.LeafNode.Header.Cells

		aCursor = Cursor{
			Table:   t,
			PageIdx: pageIdx,
		}
	)

	// Binary search for the first cell with key >= the search key
	for i := maxIdx; i != minIdx; {
		index := (minIdx + i) / 2
		keyAtIdx := aPage.LeafNode.Cells[index].Key
		if key == keyAtIdx {
			aCursor.CellIdx = index
			return &aCursor, nil
		}
		if key < keyAtIdx {
			i = index
		} else {
			minIdx = index + 1
		}
	}

	aCursor.CellIdx = minIdx

	return &aCursor, nil
}

func (t *Table) internalNodeSeek(ctx context.Context, aPage *Page, key uint32) (*Cursor, error) {
	childIdx := aPage.InternalNode.IndexOfChild(key)
	childPageIdx, err := aPage.InternalNode.Child(childIdx)
	if err != nil {
		return nil, err
	}

	aChildPage, err := t.pager.GetPage(ctx, childPageIdx)
	if err != nil {
		return nil, fmt.Errorf("internal node seek: %w", err)
	}

	if aChildPage.InternalNode != nil {
		return t.internalNodeSeek(ctx, aChildPage, key)
	}
	return t.leafNodeSeek(childPageIdx, aChildPage, key)
}

// CreateNewRoot handles splitting the root. The old root is copied to a
// new page and becomes the left child, the page number of the right child
// is passed in. Page 0 is re-initialized to contain the new internal root
// node pointing at the two children.
func (t *Table) CreateNewRoot(ctx context.Context, rightChildPageIdx PageIndex) (*Page, error) {
	oldRootPage, err := t.pager.GetPage(ctx, t.RootPageIdx)
	if err != nil {
		return nil, fmt.Errorf("create new root: %w", err)
	}

	rightChildPage, err := t.pager.GetPage(ctx, rightChildPageIdx)
	if err != nil {
		return nil, fmt.Errorf("create new root: %w", err)
	}

	leftChildPageIdx := PageIndex(t.pager.TotalPages())
	leftChildPage, err := t.pager.GetPage(ctx, leftChildPageIdx)
	if err != nil {
		return nil, fmt.Errorf("create new root: %w", err)
	}

	t.logger.Sugar().With(
		"left_child_index", int(leftChildPageIdx),
		"right_child_index", int(rightChildPageIdx),
	).Debug("create new root")

	// Copy all old root contents to the left child
	if oldRootPage.LeafNode != nil {
		*leftChildPage.LeafNode = *oldRootPage.LeafNode
		leftChildPage.LeafNode.Header.IsRoot = false
	} else {
		// New pages start out as leafs so we need to reset the left
		// child page as an internal node here
		leftChildPage.InternalNode = NewInternalNode()
		leftChildPage.LeafNode = nil
		*leftChildPage.InternalNode = *oldRootPage.InternalNode
		leftChildPage.InternalNode.Header.IsRoot = false
		// Moved children need their parent pointers updated
		for i := uint32(0); i <= leftChildPage.InternalNode.Header.KeysNum; i++ {
			childPageIdx, err := leftChildPage.InternalNode.Child(i)
			if err != nil {
				return nil, fmt.Errorf("create new root: %w", err)
			}
			aChildPage, err := t.pager.GetPage(ctx, childPageIdx)
			if err != nil {
				return nil, fmt.Errorf("create new root: %w", err)
			}
			aChildPage.setParent(leftChildPageIdx)
		}
	}

	// Change root node to a new internal node with a single key
	newRootNode := NewInternalNode()
	oldRootPage.LeafNode = nil
	oldRootPage.InternalNode = newRootNode
	newRootNode.Header.IsRoot = true
	newRootNode.Header.Parent = InvalidPageNum
	newRootNode.Header.KeysNum = 1

	newRootNode.Header.RightChild = rightChildPageIdx
	if err := newRootNode.SetChild(0, leftChildPageIdx); err != nil {
		return nil, err
	}
	leftChildMaxKey, err := t.GetMaxKey(ctx, leftChildPage)
	if err != nil {
		return nil, fmt.Errorf("create new root: %w", err)
	}
	newRootNode.ICells[0].Key = leftChildMaxKey

	leftChildPage.setParent(t.RootPageIdx)
	rightChildPage.setParent(t.RootPageIdx)

	return leftChildPage, nil
}

// InternalNodeInsert adds a new child/key pair to parent that corresponds
// to child.
func (t *Table) InternalNodeInsert(ctx context.Context, parentPageIdx, childPageIdx PageIndex) error {
	aParentPage, err := t.pager.GetPage(ctx, parentPageIdx)
	if err != nil {
		return fmt.Errorf("internal node insert: %w", err)
	}

	aChildPage, err := t.pager.GetPage(ctx, childPageIdx)
	if err != nil {
		return fmt.Errorf("internal node insert: %w", err)
	}
	aChildPage.setParent(parentPageIdx)

	childMaxKey, err := t.GetMaxKey(ctx, aChildPage)
	if err != nil {
		return fmt.Errorf("internal node insert: %w", err)
	}
	var (
		index            = aParentPage.InternalNode.IndexOfChild(childMaxKey)
		originalKeyCount = aParentPage.InternalNode.Header.KeysNum
	)

	if aParentPage.InternalNode.Header.KeysNum >= InternalNodeMaxCells {
		return t.InternalNodeSplitInsert(ctx, parentPageIdx, childPageIdx)
	}

	// An internal node with a right child of InvalidPageNum is empty
	if aParentPage.InternalNode.Header.RightChild == InvalidPageNum {
		aParentPage.InternalNode.Header.RightChild = childPageIdx
		return nil
	}

	aParentPage.InternalNode.Header.KeysNum += 1

	rightChildPageIdx := aParentPage.InternalNode.Header.RightChild
	rightChildPage, err := t.pager.GetPage(ctx, rightChildPageIdx)
	if err != nil {
		return fmt.Errorf("internal node insert: %w", err)
	}

	rightChildMaxKey, err := t.GetMaxKey(ctx, rightChildPage)
	if err != nil {
		return fmt.Errorf("internal node insert: %w", err)
	}
	if childMaxKey > rightChildMaxKey {
		// Replace right child
		aParentPage.InternalNode.SetChild(originalKeyCount, rightChildPageIdx)
		aParentPage.InternalNode.ICells[originalKeyCount].Key = rightChildMaxKey
		aParentPage.InternalNode.Header.RightChild = childPageIdx
		return nil
	}

	// Make room for the new cell
	for i := originalKeyCount; i > index; i-- {
		aParentPage.InternalNode.ICells[i] = aParentPage.InternalNode.ICells[i-1]
	}
	aParentPage.InternalNode.SetChild(index, childPageIdx)
	aParentPage.InternalNode.ICells[index].Key = childMaxKey

	return nil
}

// InternalNodeSplitInsert splits an internal node. First, create a sibling
// node and move half the keys from the original node over. Second, update
// the original node's parent to reflect its new max key after splitting.
// Insert the sibling node into the parent, this could cause the parent to
// be split as well. If the original node is root, create a new root.
func (t *Table) InternalNodeSplitInsert(ctx context.Context, pageIdx, childPageIdx PageIndex) error {
	aSplitPage, err := t.pager.GetPage(ctx, pageIdx)
	if err != nil {
		return fmt.Errorf("internal node split insert: %w", err)
	}
	splittingRoot := aSplitPage.InternalNode.Header.IsRoot
	oldMaxKey, err := t.GetMaxKey(ctx, aSplitPage)
	if err != nil {
		return fmt.Errorf("internal node split insert: %w", err)
	}

	childPage, err := t.pager.GetPage(ctx, childPageIdx)
	if err != nil {
		return fmt.Errorf("internal node split insert: %w", err)
	}
	childMaxKey, err := t.GetMaxKey(ctx, childPage)
	if err != nil {
		return fmt.Errorf("internal node split insert: %w", err)
	}

	// Create a new page, it will be on the same level as the original node
	// and to the right of it
	newPageIdx := PageIndex(t.pager.TotalPages())
	aNewPage, err := t.pager.GetPage(ctx, newPageIdx)
	if err != nil {
		return fmt.Errorf("internal node split insert: %w", err)
	}
	aNewPage.InternalNode = NewInternalNode()
	aNewPage.LeafNode = nil

	t.logger.Sugar().With(
		"page_index", int(pageIdx),
		"new_page_index", int(newPageIdx),
	).Debug("internal node split insert")

	if splittingRoot {
		// If we are splitting the root, the old node is copied into the
		// new root's left child and we continue the split there
		aSplitPage, err = t.CreateNewRoot(ctx, newPageIdx)
		if err != nil {
			return err
		}
	}
	aNewPage.InternalNode.Header.Parent = aSplitPage.InternalNode.Header.Parent

	// First move the right child into the new node and mark the right
	// child of the old node as not set
	aNewPage.InternalNode.Header.RightChild = aSplitPage.InternalNode.Header.RightChild
	newPageRightChild, err := t.pager.GetPage(ctx, aNewPage.InternalNode.Header.RightChild)
	if err != nil {
		return fmt.Errorf("internal node split insert: %w", err)
	}
	newPageRightChild.setParent(newPageIdx)
	aSplitPage.InternalNode.Header.RightChild = InvalidPageNum

	// For each key until you get to the middle key, move the key and the
	// child to the new node
	for i := uint32(InternalNodeMaxCells) - 1; i > InternalNodeMaxCells/2; i-- {
		if err := t.InternalNodeInsert(ctx, newPageIdx, aSplitPage.InternalNode.ICells[i].Child); err != nil {
			return fmt.Errorf("internal node split insert: %w", err)
		}
		aSplitPage.InternalNode.ICells[i] = ICell{}
		aSplitPage.InternalNode.Header.KeysNum -= 1
	}

	// The child before the middle key becomes the old node's right child
	aSplitPage.InternalNode.Header.RightChild, _ = aSplitPage.InternalNode.Child(aSplitPage.InternalNode.Header.KeysNum - 1)
	aSplitPage.InternalNode.RemoveLastCell()

	maxAfterSplit, err := t.GetMaxKey(ctx, aSplitPage)
	if err != nil {
		return fmt.Errorf("internal node split insert: %w", err)
	}

	// Determine which of the two nodes after the split should contain the
	// child to be inserted, and insert the child
	if childMaxKey < maxAfterSplit {
		if err := t.InternalNodeInsert(ctx, aSplitPage.Index, childPageIdx); err != nil {
			return fmt.Errorf("internal node split insert: %w", err)
		}
		childPage.setParent(aSplitPage.Index)
	} else {
		if err := t.InternalNodeInsert(ctx, newPageIdx, childPageIdx); err != nil {
			return fmt.Errorf("internal node split insert: %w", err)
		}
		childPage.setParent(newPageIdx)
	}

	aParentPage, err := t.pager.GetPage(ctx, aSplitPage.InternalNode.Header.Parent)
	if err != nil {
		return fmt.Errorf("internal node split insert: %w", err)
	}
	aParentPage.InternalNode.ICells[aParentPage.InternalNode.IndexOfChild(oldMaxKey)].Key = maxAfterSplit

	if splittingRoot {
		return nil
	}

	return t.InternalNodeInsert(ctx, aSplitPage.InternalNode.Header.Parent, newPageIdx)
}

// GetMaxKey derives the maximum key of a node, for a leaf that is the key
// of its last cell, for an internal node the max key of its rightmost
// child's subtree resolved through the pager.
func (t *Table) GetMaxKey(ctx context.Context, aPage *Page) (uint32, error) {
	if aPage.LeafNode != nil {
		if aPage.LeafNode.Header.Cells == 0 {
			return 0, fmt.Errorf("get max key: leaf node has no cells")
		}
		return aPage.LeafNode.Cells[aPage.LeafNode.Header.Cells-1].Key, nil
	}
	rightChild, err := t.pager.GetPage(ctx, aPage.InternalNode.Header.RightChild)
	if err != nil {
		return 0, err
	}
	return t.GetMaxKey(ctx, rightChild)
}

// refreshAncestorKeys re-derives the separator key for every ancestor on
// the path from the given page up to the root. Fixing up only the
// immediate parent after a split leaves stale max keys higher up the tree.
func (t *Table) refreshAncestorKeys(ctx context.Context, pageIdx PageIndex) error {
	for {
		aPage, err := t.pager.GetPage(ctx, pageIdx)
		if err != nil {
			return fmt.Errorf("refresh ancestor keys: %w", err)
		}
		if aPage.isRoot() {
			return nil
		}

		parentIdx := aPage.parent()
		aParentPage, err := t.pager.GetPage(ctx, parentIdx)
		if err != nil {
			return fmt.Errorf("refresh ancestor keys: %w", err)
		}

		childIdx, err := aParentPage.InternalNode.IndexOfPage(pageIdx)
		if err != nil {
			return fmt.Errorf("refresh ancestor keys: %w", err)
		}
		if childIdx < aParentPage.InternalNode.Header.KeysNum {
			maxKey, err := t.GetMaxKey(ctx, aPage)
			if err != nil {
				return fmt.Errorf("refresh ancestor keys: %w", err)
			}
			aParentPage.InternalNode.ICells[childIdx].Key = maxKey
		}

		pageIdx = parentIdx
	}
}
