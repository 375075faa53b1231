package tree

import (
	"errors"
	"fmt"
	"io"
	"sort"

	"github.com/go-logr/logr"
	"github.com/henderiw/intervaltree/pkg/interval"
	"k8s.io/apimachinery/pkg/labels"
)

// FilterFunc is called on each result to see if it belongs in the resulting set
type FilterFunc func(e Entry) bool

// Tree is a static interval tree. It is built once by New and is read-only
// afterwards, so concurrent queries need no locking.
type Tree struct {
	nodes     []treeNode // [0] is unused so a 0 child index means not set
	root      uint       // 0 for an empty tree
	entries   Entries
	endpoints []float64
	height    int
	l         logr.Logger
}

type Option func(*Tree)

// WithLogger sets the logger used to report build statistics.
func WithLogger(l logr.Logger) Option {
	return func(r *Tree) {
		r.l = l
	}
}

// NewFromIntervals builds a tree over bare intervals.
func NewFromIntervals(intervals interval.Intervals, opts ...Option) (*Tree, error) {
	return New(entriesFromIntervals(intervals), opts...)
}

// New builds a tree over the entries. The entries may come in any order and may
// hold duplicates; every entry is stored and reported on its own. Invalid
// intervals are all reported in the returned error and no tree is built.
func New(entries Entries, opts ...Option) (*Tree, error) {
	r := &Tree{
		nodes: make([]treeNode, 1),
		l:     logr.Discard(),
	}
	for _, opt := range opts {
		opt(r)
	}

	// nil entries keep the zero interval so Validate reports the same indexes
	var errm error
	intervals := make(interval.Intervals, len(entries))
	for idx, e := range entries {
		if e == nil {
			errm = errors.Join(errm, fmt.Errorf("nil entry at index %d", idx))
			continue
		}
		intervals[idx] = e.Interval()
	}
	if err := errors.Join(errm, intervals.Validate()); err != nil {
		return nil, err
	}

	r.entries = make(Entries, len(entries))
	copy(r.entries, entries)

	leftOrder := r.sortedOrder(func(a, b interval.Interval) bool { return a.Left < b.Left })
	rightOrder := r.sortedOrder(func(a, b interval.Interval) bool { return a.Right < b.Right })

	r.endpoints = SortedEndpoints(r.intervalsInOrder(leftOrder), r.intervalsInOrder(rightOrder))
	r.buildNodes()
	r.mapEntries(leftOrder, rightOrder)

	r.l.V(1).Info("built interval tree",
		"entries", len(r.entries),
		"endpoints", len(r.endpoints),
		"nodes", len(r.nodes)-1,
		"height", r.height)
	return r, nil
}

// sortedOrder returns the entry indexes stably sorted by less.
func (r *Tree) sortedOrder(less func(a, b interval.Interval) bool) []int {
	order := make([]int, len(r.entries))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(i, j int) bool {
		return less(r.entries[order[i]].Interval(), r.entries[order[j]].Interval())
	})
	return order
}

func (r *Tree) intervalsInOrder(order []int) interval.Intervals {
	intervals := make(interval.Intervals, 0, len(order))
	for _, idx := range order {
		intervals = append(intervals, r.entries[idx].Interval())
	}
	return intervals
}

// buildNodes builds the tree bottom up: one leaf per endpoint, then consecutive
// nodes of a level are paired under a new parent until a single node is left.
// An odd node at the end of a level is carried to the next level as is.
func (r *Tree) buildNodes() {
	if len(r.endpoints) == 0 {
		return
	}
	r.nodes = make([]treeNode, 1, 2*len(r.endpoints))

	level := make([]uint, 0, len(r.endpoints))
	for _, p := range r.endpoints {
		r.nodes = append(r.nodes, newLeaf(p))
		level = append(level, uint(len(r.nodes)-1))
	}

	for len(level) > 1 {
		next := make([]uint, 0, (len(level)+1)/2)
		for i := 0; i+1 < len(level); i += 2 {
			leftIndex, rightIndex := level[i], level[i+1]
			r.nodes = append(r.nodes, newParent(leftIndex, &r.nodes[leftIndex], rightIndex, &r.nodes[rightIndex]))
			next = append(next, uint(len(r.nodes)-1))
		}
		if len(level)%2 == 1 {
			next = append(next, level[len(level)-1])
		}
		level = next
		r.height++
	}
	r.root = level[0]
}

// mapEntries attaches every entry to the node whose split value it contains:
// once in left endpoint order and once in descending right endpoint order, so
// both node lists come out sorted.
func (r *Tree) mapEntries(leftOrder, rightOrder []int) {
	for _, idx := range leftOrder {
		nodeIndex := r.splitNode(r.entries[idx].Interval())
		r.nodes[nodeIndex].LeftEntries = append(r.nodes[nodeIndex].LeftEntries, idx)
	}
	for i := len(rightOrder) - 1; i >= 0; i-- {
		idx := rightOrder[i]
		nodeIndex := r.splitNode(r.entries[idx].Interval())
		r.nodes[nodeIndex].RightEntries = append(r.nodes[nodeIndex].RightEntries, idx)
	}
}

// splitNode returns the highest node whose split value lies within i.
func (r *Tree) splitNode(i interval.Interval) uint {
	nodeIndex := r.root
	for nodeIndex != 0 {
		node := &r.nodes[nodeIndex]
		switch {
		case i.Contains(node.Split):
			return nodeIndex
		case i.Right < node.Split:
			nodeIndex = node.Left
		default:
			nodeIndex = node.Right
		}
	}
	// every endpoint is a leaf split value, so this cannot happen on a tree built
	// from the same intervals
	panic(fmt.Sprintf("no split value found within interval %s - should be impossible", i.String()))
}

// FindIntersecting returns the intervals of all entries intersecting q. The
// order of the result is unspecified.
func (r *Tree) FindIntersecting(q interval.Interval) (interval.Intervals, error) {
	entries, err := r.FindIntersectingEntries(q)
	if err != nil {
		return nil, err
	}
	return entries.Intervals(), nil
}

// FindIntersectingEntries returns all entries whose interval intersects q.
func (r *Tree) FindIntersectingEntries(q interval.Interval) (Entries, error) {
	return r.find(q, nil)
}

// Stab returns all entries whose interval contains point.
func (r *Tree) Stab(point float64) (Entries, error) {
	return r.find(interval.Point(point), nil)
}

// GetByLabel returns the entries intersecting q whose labels match the selector.
func (r *Tree) GetByLabel(q interval.Interval, selector labels.Selector) (Entries, error) {
	return r.find(q, func(e Entry) bool {
		return selector.Matches(e.Labels())
	})
}

func (r *Tree) find(q interval.Interval, filterFunc FilterFunc) (Entries, error) {
	if !q.IsValid() {
		return nil, fmt.Errorf("%w: query %s", interval.ErrInvalidInterval, q.String())
	}
	return r.appendIntersecting(Entries{}, q, filterFunc), nil
}

// appendIntersecting walks the tree with an explicit stack. A node whose split
// lies in q contributes all its entries and both children are visited. Otherwise
// q lies on one side of the split: only that child is visited, and the node list
// ordered towards q is scanned until the first entry that misses q.
// - ret is only appended to
func (r *Tree) appendIntersecting(ret Entries, q interval.Interval, filterFunc FilterFunc) Entries {
	if r.root == 0 {
		return ret
	}
	stack := make([]uint, 0, r.height+1)
	stack = append(stack, r.root)
	for len(stack) > 0 {
		nodeIndex := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		node := &r.nodes[nodeIndex]

		switch {
		case q.Contains(node.Split):
			// both lists hold the same entries, report them once
			for _, idx := range node.LeftEntries {
				ret = r.appendEntry(ret, idx, filterFunc)
			}
			if node.Left != 0 {
				stack = append(stack, node.Left)
			}
			if node.Right != 0 {
				stack = append(stack, node.Right)
			}
		case node.Split < q.Left:
			for _, idx := range node.RightEntries {
				if !r.entries[idx].Interval().Intersects(q) {
					break
				}
				ret = r.appendEntry(ret, idx, filterFunc)
			}
			if node.Right != 0 {
				stack = append(stack, node.Right)
			}
		default:
			for _, idx := range node.LeftEntries {
				if !r.entries[idx].Interval().Intersects(q) {
					break
				}
				ret = r.appendEntry(ret, idx, filterFunc)
			}
			if node.Left != 0 {
				stack = append(stack, node.Left)
			}
		}
	}
	return ret
}

func (r *Tree) appendEntry(ret Entries, idx int, filterFunc FilterFunc) Entries {
	e := r.entries[idx]
	if filterFunc == nil || filterFunc(e) {
		ret = append(ret, e)
	}
	return ret
}

// GetAll returns all entries in the order they were provided.
func (r *Tree) GetAll() Entries {
	entries := make(Entries, len(r.entries))
	copy(entries, r.entries)
	return entries
}

// Size returns the number of stored entries.
func (r *Tree) Size() int {
	return len(r.entries)
}

// Height returns the number of edges from the root to the deepest leaf.
func (r *Tree) Height() int {
	return r.height
}

func (r *Tree) IsEmpty() bool {
	return r.root == 0
}

// Endpoints returns the distinct endpoints the tree was built from, ascending.
func (r *Tree) Endpoints() []float64 {
	points := make([]float64, len(r.endpoints))
	copy(points, r.endpoints)
	return points
}

// PrintNodes writes one line per node in pre-order.
func (r *Tree) PrintNodes(w io.Writer) {
	iter := r.Iterate()
	for iter.Next() {
		fmt.Fprintf(w, "%*snode split=%g min=%g max=%g left=%v right=%v\n",
			2*iter.Depth(), "",
			iter.Split(), iter.MinSplit(), iter.MaxSplit(),
			iter.LeftEntries().Intervals().Strings(),
			iter.RightEntries().Intervals().Strings())
	}
}
