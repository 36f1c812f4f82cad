package planner

// Node is one entry of the search frontier. Nodes are not mutated after they
// are pushed, except for the goal node which appends its own assignment to its
// private ancestry.
type Node struct {
	Assignment Assignment
	G          float64
	H          float64
	F          float64
	// Ancestry holds every prior assignment, oldest first.
	Ancestry []Assignment

	seq uint64
}

func newNode(a Assignment, g, h float64, ancestry []Assignment) *Node {
	return &Node{
		Assignment: a,
		G:          g,
		H:          h,
		F:          g + h,
		Ancestry:   ancestry,
	}
}

// childAncestry copies the parent's history and appends the parent itself, so
// siblings never share a backing array.
func (n *Node) childAncestry() []Assignment {
	ancestry := make([]Assignment, len(n.Ancestry), len(n.Ancestry)+1)
	copy(ancestry, n.Ancestry)
	return append(ancestry, n.Assignment)
}

// finish appends the node's own assignment and returns the full path.
func (n *Node) finish() []Assignment {
	n.Ancestry = append(n.Ancestry, n.Assignment)
	return n.Ancestry
}
