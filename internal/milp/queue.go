package milp

import (
	"container/heap"
	"math"
)

// node is an open subproblem. It stores only the bound it adds to its
// parent; the full bounds are rebuilt by walking up the chain.
type node struct {
	parent *node
	j      int
	up     bool
	value  float64
	// bound is the relaxation objective of the parent.
	bound float64
	depth int
	seq   int
}

// bounds writes the variable bounds of nd into lower and upper.
func (nd *node) bounds(p *problem, lower, upper []float64) {
	copy(lower, p.lower)
	copy(upper, p.upper)
	for n := nd; n != nil && n.j >= 0; n = n.parent {
		if n.up {
			lower[n.j] = math.Max(lower[n.j], n.value)
		} else {
			upper[n.j] = math.Min(upper[n.j], n.value)
		}
	}
}

// nodeQueue orders open nodes deepest first while diving and lowest bound
// first afterwards. Remaining ties go to the newest node.
type nodeQueue struct {
	nodes []*node
	best  bool
	next  int
}

func (q *nodeQueue) Len() int { return len(q.nodes) }

func (q *nodeQueue) Less(a, b int) bool {
	x, y := q.nodes[a], q.nodes[b]
	if q.best && x.bound != y.bound {
		return x.bound < y.bound
	}
	if x.depth != y.depth {
		return x.depth > y.depth
	}
	return x.seq > y.seq
}

func (q *nodeQueue) Swap(a, b int) { q.nodes[a], q.nodes[b] = q.nodes[b], q.nodes[a] }

func (q *nodeQueue) Push(v any) { q.nodes = append(q.nodes, v.(*node)) }

func (q *nodeQueue) Pop() any {
	last := q.nodes[len(q.nodes)-1]
	q.nodes[len(q.nodes)-1] = nil
	q.nodes = q.nodes[:len(q.nodes)-1]
	return last
}

func (q *nodeQueue) push(nd *node) {
	nd.seq = q.next
	q.next++
	heap.Push(q, nd)
}

func (q *nodeQueue) pop() *node {
	return heap.Pop(q).(*node)
}

// bestFirst switches to lowest-bound ordering.
func (q *nodeQueue) bestFirst() {
	if q.best {
		return
	}
	q.best = true
	heap.Init(q)
}
