package pathfinding

import (
	"container/heap"

	"github.com/udisondev/navgrid/internal/grid"
)

// openSet is the A* frontier: a min-heap ordered by F, then H, then the order
// nodes were first inserted. That ordering picks exactly the node a linear scan
// over an insertion-ordered list would pick when keeping the first of equals.
type openSet struct {
	items []*grid.Node
	pos   []int    // heap position + 1 by node index, 0 when absent
	seq   []uint64 // insertion sequence by node index
	next  uint64
}

func newOpenSet(capacity int) *openSet {
	return &openSet{
		items: make([]*grid.Node, 0, 64),
		pos:   make([]int, capacity),
		seq:   make([]uint64, capacity),
	}
}

func (s *openSet) reset() {
	s.items = s.items[:0]
	clear(s.pos)
	s.next = 0
}

func (s *openSet) Len() int { return len(s.items) }

func (s *openSet) Less(i, j int) bool {
	a, b := s.items[i], s.items[j]
	if a.F != b.F {
		return a.F < b.F
	}
	if a.H != b.H {
		return a.H < b.H
	}
	return s.seq[a.Index] < s.seq[b.Index]
}

func (s *openSet) Swap(i, j int) {
	s.items[i], s.items[j] = s.items[j], s.items[i]
	s.pos[s.items[i].Index] = i + 1
	s.pos[s.items[j].Index] = j + 1
}

func (s *openSet) Push(x any) {
	n := x.(*grid.Node)
	s.pos[n.Index] = len(s.items) + 1
	s.items = append(s.items, n)
}

func (s *openSet) Pop() any {
	old := s.items
	last := len(old) - 1
	n := old[last]
	old[last] = nil
	s.pos[n.Index] = 0
	s.items = old[:last]
	return n
}

func (s *openSet) contains(n *grid.Node) bool {
	return s.pos[n.Index] != 0
}

func (s *openSet) add(n *grid.Node) {
	s.seq[n.Index] = s.next
	s.next++
	heap.Push(s, n)
}

// update restores heap order after n's costs changed.
func (s *openSet) update(n *grid.Node) {
	heap.Fix(s, s.pos[n.Index]-1)
}

func (s *openSet) popMin() *grid.Node {
	return heap.Pop(s).(*grid.Node)
}
