package planner

import "container/heap"

// frontier is a min-heap on F, then G, then insertion order, which makes the
// expansion order fully deterministic.
type frontier struct {
	nodes   []*Node
	nextSeq uint64
}

func (q *frontier) Len() int { return len(q.nodes) }

func (q *frontier) Less(i, j int) bool {
	a, b := q.nodes[i], q.nodes[j]
	if a.F != b.F {
		return a.F < b.F
	}
	if a.G != b.G {
		return a.G < b.G
	}
	return a.seq < b.seq
}

func (q *frontier) Swap(i, j int) {
	q.nodes[i], q.nodes[j] = q.nodes[j], q.nodes[i]
}

func (q *frontier) Push(x any) {
	q.nodes = append(q.nodes, x.(*Node))
}

func (q *frontier) Pop() any {
	old := q.nodes
	n := len(old)
	item := old[n-1]
	old[n-1] = nil
	q.nodes = old[:n-1]
	return item
}

func (q *frontier) push(n *Node) {
	n.seq = q.nextSeq
	q.nextSeq++
	heap.Push(q, n)
}

func (q *frontier) pop() *Node {
	return heap.Pop(q).(*Node)
}
