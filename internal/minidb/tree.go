package minidb

import (
	"context"
	"fmt"
	"io"
)

type pageCallback func(page *Page)

// BFS visits every page in the tree starting from the root, breadth first.
func (t *Table) BFS(ctx context.Context, f pageCallback) error {
	rootPage, err := t.pager.GetPage(ctx, t.RootPageIdx)
	if err != nil {
		return err
	}

	queue := make([]*Page, 0, 1)
	queue = append(queue, rootPage)

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]

		f(current)

		if current.InternalNode == nil {
			continue
		}
		for _, childPageIdx := range current.InternalNode.Children() {
			aPage, err := t.pager.GetPage(ctx, childPageIdx)
			if err != nil {
				return err
			}
			queue = append(queue, aPage)
		}
	}

	return nil
}

// PrintTree writes a breadth first dump of all nodes, used by the
// interpreter's tree meta command.
func (t *Table) PrintTree(ctx context.Context, w io.Writer) error {
	return t.BFS(ctx, func(aPage *Page) {
		if aPage.InternalNode != nil {
			fmt.Fprintln(w, "Internal node,", "page:", aPage.Index, "number of keys:", aPage.InternalNode.Header.KeysNum, "parent:", aPage.InternalNode.Header.Parent)
			fmt.Fprintln(w, "Keys:", aPage.InternalNode.Keys())
			fmt.Fprintln(w, "Children:", aPage.InternalNode.Children())
		} else {
			fmt.Fprintln(w, "Leaf node,", "page:", aPage.Index, "number of cells:", aPage.LeafNode.Header.Cells, "parent:", aPage.LeafNode.Header.Parent, "next leaf:", aPage.LeafNode.Header.NextLeaf)
			fmt.Fprintln(w, "Keys:", aPage.LeafNode.Keys())
		}
		fmt.Fprintln(w, "---------")
	})
}
