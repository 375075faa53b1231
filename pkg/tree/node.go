package tree

import "math"

type treeNode struct {
	Left     uint // left child index: 0 for not set
	Right    uint // right child index: 0 for not set
	Split    float64
	MinSplit float64
	MaxSplit float64

	// entry indexes of the intervals containing Split
	LeftEntries  []int // ascending by left endpoint
	RightEntries []int // descending by right endpoint
}

func newLeaf(endpoint float64) treeNode {
	return treeNode{Split: endpoint, MinSplit: endpoint, MaxSplit: endpoint}
}

// newParent joins two consecutive nodes; the split sits halfway between the
// largest endpoint under left and the smallest endpoint under right.
func newParent(leftIndex uint, left *treeNode, rightIndex uint, right *treeNode) treeNode {
	return treeNode{
		Left:     leftIndex,
		Right:    rightIndex,
		Split:    midpoint(left.MaxSplit, right.MinSplit),
		MinSplit: left.MinSplit,
		MaxSplit: right.MaxSplit,
	}
}

// midpoint returns a value in [a, b] halfway between a <= b. The sum of two
// large finite endpoints can overflow, in which case the halves are added.
func midpoint(a, b float64) float64 {
	m := (a + b) / 2
	if math.IsInf(m, 0) {
		m = a/2 + b/2
	}
	// rounding may push the result just outside the bounds
	return math.Min(math.Max(m, a), b)
}

func (n *treeNode) IsLeaf() bool {
	return n.Left == 0 && n.Right == 0
}
