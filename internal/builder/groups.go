package builder

import "github.com/roach88/rdfsql/internal/queryir"

// groupNode is one group graph pattern under construction. Every node
// owns a leading BGP that receives its required triples, so triples are
// always evaluated before the node's OPTIONAL children.
type groupNode struct {
	group  *queryir.Group
	bgp    *queryir.BGP
	parent *groupNode

	// index is the position of this node's OPTIONAL block in the parent
	// group.
	index int
	depth int
}

func newGroupNode() *groupNode {
	bgp := &queryir.BGP{}
	return &groupNode{
		group: &queryir.Group{Blocks: []queryir.Block{bgp}},
		bgp:   bgp,
	}
}

// optional appends a new OPTIONAL child group.
func (n *groupNode) optional() *groupNode {
	child := newGroupNode()
	child.parent = n
	child.depth = n.depth + 1
	child.index = len(n.group.Blocks)
	n.group.Blocks = append(n.group.Blocks, &queryir.Optional{Group: child.group})
	return child
}

func (n *groupNode) append(b queryir.Block) {
	n.group.Blocks = append(n.group.Blocks, b)
}

// contains reports whether m is n or a descendant of n.
func (n *groupNode) contains(m *groupNode) bool {
	for ; m != nil; m = m.parent {
		if m == n {
			return true
		}
	}
	return false
}

// sees reports whether a variable homed at h is visible to a filter placed
// directly in n.
//
// OPTIONAL groups are evaluated bottom-up: a filter at the top of an
// OPTIONAL becomes the left-join condition and sees n's own subtree plus
// whatever the parent group binds before n. Groups further out are not
// visible.
func (n *groupNode) sees(h *groupNode) bool {
	if n.contains(h) {
		return true
	}
	p := n.parent
	if p == nil {
		return false
	}
	if h == p {
		return true
	}
	for a := h; a.parent != nil; a = a.parent {
		if a.parent == p {
			return a.index < n.index
		}
	}
	return false
}

// placement returns the innermost node that holds at least one of homes
// and sees all of them. The root always qualifies.
func placement(root *groupNode, homes []*groupNode) *groupNode {
	best := root
	for _, h := range homes {
		for n := h; n != nil; n = n.parent {
			if n.depth <= best.depth {
				continue
			}
			if qualifies(n, homes) {
				best = n
			}
		}
	}
	return best
}

func qualifies(n *groupNode, homes []*groupNode) bool {
	holds := false
	for _, h := range homes {
		if !n.sees(h) {
			return false
		}
		if n.contains(h) {
			holds = true
		}
	}
	return holds
}

// lca returns the innermost node that contains every one of homes. It is
// the root when homes is empty.
func lca(root *groupNode, homes []*groupNode) *groupNode {
	if len(homes) == 0 {
		return root
	}
	best := homes[0]
	for _, h := range homes[1:] {
		for !best.contains(h) {
			best = best.parent
		}
	}
	return best
}
