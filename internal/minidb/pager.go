package minidb

import (
	"context"
	"fmt"
	"io"
)

type DBFile interface {
	io.ReadSeeker
	io.ReaderAt
	io.WriterAt
	io.Closer
}

type pagerImpl struct {
	totalPages uint32 // total number of pages

	// pages is a capacity bounded page table, index = page number.
	// Nil entries are pages that have not been requested yet.
	pages []*Page

	file     DBFile
	fileSize int64
}

// NewPager opens the database file and computes the page count from
// its length.
func NewPager(file DBFile) (*pagerImpl, error) {
	aPager := &pagerImpl{
		file:  file,
		pages: make([]*Page, MaxPages),
	}

	fileSize, err := aPager.file.Seek(0, io.SeekEnd)
	if err != nil {
		return nil, err
	}
	aPager.fileSize = fileSize

	// Basic check to verify file size is a multiple of page size (4096B),
	// anything else means a corrupt or truncated file
	if fileSize%PageSize != 0 {
		return nil, fmt.Errorf("db file size is not divisible by page size: %d", fileSize)
	}

	totalPages := fileSize / PageSize
	if totalPages > MaxPages {
		return nil, fmt.Errorf("db file has %d pages: %w", totalPages, ErrMaxPagesReached)
	}
	aPager.totalPages = uint32(totalPages)

	return aPager, nil
}

func (p *pagerImpl) Close() error {
	return p.file.Close()
}

func (p *pagerImpl) TotalPages() uint32 {
	return p.totalPages
}

// GetPage returns the cached page if resident, otherwise either reads it
// from the file or, when the page number equals the current page count,
// extends the table with a fresh zero leaf page.
func (p *pagerImpl) GetPage(ctx context.Context, pageIdx PageIndex) (*Page, error) {
	if pageIdx >= MaxPages {
		return nil, fmt.Errorf("page index %d: %w", pageIdx, ErrMaxPagesReached)
	}

	if aPage := p.pages[pageIdx]; aPage != nil {
		return aPage, nil
	}

	if uint32(pageIdx) > p.totalPages {
		return nil, fmt.Errorf("cannot skip index when getting page, index: %d, number of pages: %d", pageIdx, p.totalPages)
	}

	if uint32(pageIdx) == p.totalPages {
		// Brand new page, pages start out as empty leaf nodes
		p.pages[pageIdx] = &Page{Index: pageIdx, LeafNode: NewLeafNode()}
		p.totalPages = uint32(pageIdx) + 1
		return p.pages[pageIdx], nil
	}

	// Page exists on disk, load it
	buf := make([]byte, PageSize)
	offset := int64(pageIdx) * int64(PageSize)
	if _, err := p.file.ReadAt(buf, offset); err != nil {
		return nil, fmt.Errorf("reading page %d: %w", pageIdx, err)
	}

	// First byte is the node type tag
	if buf[0] == PageTypeLeaf {
		leaf := NewLeafNode()
		if _, err := leaf.Unmarshal(buf); err != nil {
			return nil, err
		}
		p.pages[pageIdx] = &Page{Index: pageIdx, LeafNode: leaf}
	} else {
		internal := new(InternalNode)
		if _, err := internal.Unmarshal(buf); err != nil {
			return nil, err
		}
		p.pages[pageIdx] = &Page{Index: pageIdx, InternalNode: internal}
	}

	return p.pages[pageIdx], nil
}

// Flush writes the full page back to disk at its offset. Pages that were
// never loaded are skipped.
func (p *pagerImpl) Flush(ctx context.Context, pageIdx PageIndex) error {
	if pageIdx >= MaxPages || p.pages[pageIdx] == nil {
		return nil
	}

	aPage := p.pages[pageIdx]

	buf := make([]byte, PageSize)
	if _, err := marshalPage(aPage, buf); err != nil {
		return fmt.Errorf("error flushing page %d: %w", pageIdx, err)
	}

	n, err := p.file.WriteAt(buf, int64(pageIdx)*int64(PageSize))
	if err != nil {
		return err
	}
	if n != PageSize {
		return fmt.Errorf("short write flushing page %d: %d bytes", pageIdx, n)
	}

	return nil
}

func marshalPage(aPage *Page, buf []byte) ([]byte, error) {
	if aPage.LeafNode != nil {
		data, err := aPage.LeafNode.Marshal(buf)
		if err != nil {
			return nil, fmt.Errorf("error marshaling leaf node: %w", err)
		}
		return data, nil
	} else if aPage.InternalNode != nil {
		data, err := aPage.InternalNode.Marshal(buf)
		if err != nil {
			return nil, fmt.Errorf("error marshaling internal node: %w", err)
		}
		return data, nil
	}
	return nil, fmt.Errorf("page %d is neither internal nor leaf node", aPage.Index)
}
