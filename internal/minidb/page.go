package minidb

type PageIndex uint32

type Page struct {
	Index        PageIndex
	InternalNode *InternalNode
	LeafNode     *LeafNode
}

const (
	baseHeaderSize = 6 // type byte + root flag + parent page number

	// Base header plus cell count and next leaf pointer
	leafNodeHeaderSize = baseHeaderSize + 8
	// Base header plus key count and right child pointer
	internalNodeHeaderSize = baseHeaderSize + 8
)

func (p *Page) setParent(parentIdx PageIndex) {
	if p.LeafNode != nil {
		p.LeafNode.Header.Parent = parentIdx
	} else if p.InternalNode != nil {
		p.InternalNode.Header.Parent = parentIdx
	}
}

func (p *Page) isRoot() bool {
	if p.LeafNode != nil {
		return p.LeafNode.Header.IsRoot
	}
	if p.InternalNode != nil {
		return p.InternalNode.Header.IsRoot
	}
	return false
}

func (p *Page) parent() PageIndex {
	if p.LeafNode != nil {
		return p.LeafNode.Header.Parent
	}
	return p.InternalNode.Header.Parent
}
