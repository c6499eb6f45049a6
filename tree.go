package den

// WalkFunc is called for each node visited by Walk. Returning false stops
// descent into that node's children.
type WalkFunc func(n Node, depth int) bool

// Walk visits node and its descendants depth-first, pre-order.
func Walk(node Node, fn WalkFunc) {
	if node == nil {
		return
	}
	walk(node, 0, fn)
}

func walk(n Node, depth int, fn WalkFunc) {
	if !fn(n, depth) {
		return
	}
	for _, c := range n.Children() {
		walk(c, depth+1, fn)
	}
}

// FindChild returns the first descendant of node titled title, searching
// depth-first, pre-order. Returns nil if there is none.
func FindChild(node Node, title string) *ChildNode {
	var found *ChildNode
	Walk(node, func(n Node, _ int) bool {
		if found != nil {
			return false
		}
		if c, ok := n.(*ChildNode); ok && c.Title() == title {
			found = c
			return false
		}
		return true
	})
	return found
}

// Depth returns the number of parent hops from n to its root.
func Depth(n Node) int {
	depth := 0
	for {
		c, ok := n.(*ChildNode)
		if !ok || c.Parent() == nil {
			return depth
		}
		depth++
		n = c.Parent()
	}
}

// CountNodes returns the number of nodes in the tree under node, inclusive.
func CountNodes(node Node) int {
	count := 0
	Walk(node, func(Node, int) bool {
		count++
		return true
	})
	return count
}
