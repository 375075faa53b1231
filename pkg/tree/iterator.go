package tree

// TreeIterator is a pre-order iterator over the nodes of a tree.
type TreeIterator struct {
	t           *Tree
	nodeIndex   uint
	depth       int
	nodeHistory []iterPos // nodes still to visit
}

type iterPos struct {
	nodeIndex uint
	depth     int
}

// Iterate returns an iterator over all nodes of the tree, root first.
func (r *Tree) Iterate() *TreeIterator {
	iter := &TreeIterator{t: r}
	if r.root != 0 {
		iter.nodeHistory = []iterPos{{nodeIndex: r.root}}
	}
	return iter
}

// Next moves to the next node. It returns false if there is none.
func (iter *TreeIterator) Next() bool {
	n := len(iter.nodeHistory)
	if n == 0 {
		return false
	}
	pos := iter.nodeHistory[n-1]
	iter.nodeHistory = iter.nodeHistory[:n-1]
	iter.nodeIndex, iter.depth = pos.nodeIndex, pos.depth

	node := iter.node()
	if node.Right != 0 {
		iter.nodeHistory = append(iter.nodeHistory, iterPos{nodeIndex: node.Right, depth: pos.depth + 1})
	}
	if node.Left != 0 {
		iter.nodeHistory = append(iter.nodeHistory, iterPos{nodeIndex: node.Left, depth: pos.depth + 1})
	}
	return true
}

func (iter *TreeIterator) node() *treeNode {
	return &iter.t.nodes[iter.nodeIndex]
}

func (iter *TreeIterator) Split() float64    { return iter.node().Split }
func (iter *TreeIterator) MinSplit() float64 { return iter.node().MinSplit }
func (iter *TreeIterator) MaxSplit() float64 { return iter.node().MaxSplit }
func (iter *TreeIterator) IsLeaf() bool      { return iter.node().IsLeaf() }

// Depth returns the distance of the current node from the root.
func (iter *TreeIterator) Depth() int { return iter.depth }

// LeftEntries returns the entries stored at the current node, ascending by
// left endpoint.
func (iter *TreeIterator) LeftEntries() Entries {
	return iter.entries(iter.node().LeftEntries)
}

// RightEntries returns the entries stored at the current node, descending by
// right endpoint.
func (iter *TreeIterator) RightEntries() Entries {
	return iter.entries(iter.node().RightEntries)
}

func (iter *TreeIterator) entries(idxs []int) Entries {
	entries := make(Entries, 0, len(idxs))
	for _, idx := range idxs {
		entries = append(entries, iter.t.entries[idx])
	}
	return entries
}
