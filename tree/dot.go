package tree

import (
	"fmt"

	"github.com/emicklei/dot"
)

/*
RenderDot takes a tree and returns its Graphviz DOT representation. Decision
nodes show their criterion and leaves their predicted label and the number
of records on them. Edges to left children are labeled "yes" and edges to
right children "no".
*/
func RenderDot(t *Tree) string {
	graph := dot.NewGraph(dot.Directed)
	if t == nil {
		return graph.String()
	}
	t.Traverse(false, func(id NodeID, n Node) error {
		gn := graph.Node(id.String())
		switch n := n.(type) {
		case *DecisionNode:
			gn.Label(n.String())
		case *LeafNode:
			gn.Label(fmt.Sprintf("%v\n%d records", n, len(n.records))).Attr("shape", "box")
		}
		if n.ParentID().Valid() {
			parent := graph.Node(n.ParentID().String())
			direction := "no"
			if dn, ok := t.Node(n.ParentID()).(*DecisionNode); ok && dn.left == id {
				direction = "yes"
			}
			parent.Edge(gn, direction)
		}
		return nil
	})
	return graph.String()
}
