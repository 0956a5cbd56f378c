package minidb

import (
	"fmt"
	"math"
)

const (
	PageTypeLeaf     = byte(0)
	PageTypeInternal = byte(1)
)

// InvalidPageNum marks a page number field as not set, it is stored
// in the parent field of the root node and in the right child field
// of a freshly created internal node.
const InvalidPageNum = PageIndex(math.MaxUint32)

type Header struct {
	IsInternal bool
	IsRoot     bool
	Parent     PageIndex
}

func (h *Header) Size() uint64 {
	return 1 + 1 + 4
}

func (h *Header) Marshal(buf []byte) ([]byte, error) {
	size := h.Size()
	if uint64(cap(buf)) >= size {
		buf = buf[:size]
	} else {
		buf = make([]byte, size)
	}

	if h.IsInternal {
		buf[0] = PageTypeInternal
	} else {
		buf[0] = PageTypeLeaf
	}

	if h.IsRoot {
		buf[1] = 1
	} else {
		buf[1] = 0
	}

	marshalUint32(buf, uint32(h.Parent), 2)

	return buf[:size], nil
}

func (h *Header) Unmarshal(buf []byte) (uint64, error) {
	if buf[0] != PageTypeLeaf && buf[0] != PageTypeInternal {
		return 0, fmt.Errorf("unrecognised page type byte %d", buf[0])
	}
	h.IsInternal = buf[0] == PageTypeInternal
	h.IsRoot = buf[1] == 1
	h.Parent = PageIndex(unmarshalUint32(buf, 2))

	return h.Size(), nil
}

func marshalUint32(buf []byte, n uint32, i uint64) []byte {
	buf[i+0] = byte(n >> 0)
	buf[i+1] = byte(n >> 8)
	buf[i+2] = byte(n >> 16)
	buf[i+3] = byte(n >> 24)
	return buf
}

func unmarshalUint32(buf []byte, i uint64) uint32 {
	return 0 |
		(uint32(buf[i+0]) << 0) |
		(uint32(buf[i+1]) << 8) |
		(uint32(buf[i+2]) << 16) |
		(uint32(buf[i+3]) << 24)
}
