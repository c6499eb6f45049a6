package layout

import (
	"strconv"

	"github.com/isaacchacko/den"
)

// view is a read-only copy of a den tree's shape, optionally cut off at a
// maximum depth. Building it never touches the tree.
type view struct {
	node     den.Node
	id       string
	depth    int
	children []*view
}

// newView returns the view of root. A negative maxDepth keeps every level.
func newView(root *den.RootNode, maxDepth int) *view {
	if root == nil {
		return nil
	}
	return buildView(root, "root", 0, maxDepth)
}

func buildView(n den.Node, id string, depth, maxDepth int) *view {
	v := &view{node: n, id: id, depth: depth}
	if maxDepth >= 0 && depth >= maxDepth {
		return v
	}
	for i, c := range n.Children() {
		v.children = append(v.children, buildView(c, id+"."+strconv.Itoa(i), depth+1, maxDepth))
	}
	return v
}

// originScore is the relevance of v to the root query. The root itself is 1.
func (v *view) originScore() float64 {
	if c, ok := v.node.(*den.ChildNode); ok {
		return c.ComparisonScoreToOrigin()
	}
	return 1
}
