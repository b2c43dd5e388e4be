package mdast

// FlatRow is one node of a flattened tree. IDs are dense from 0 in preorder and
// only meaningful within the slice they came from. The root is its own parent.
type FlatRow struct {
	ID       int64
	ParentID int64
	Node     Node
}

type pending struct {
	parent int64
	node   Node
}

// Flatten walks the tree rooted at root in preorder, children left to right,
// and returns one row per node. The root is row (0, 0).
func Flatten(root Node) []FlatRow {
	if root == nil {
		return nil
	}

	rows := make([]FlatRow, 0, Count(root))
	stack := []pending{{parent: 0, node: root}}
	var next int64

	for len(stack) > 0 {
		top := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		id := next
		next++
		rows = append(rows, FlatRow{ID: id, ParentID: top.parent, Node: top.node})

		// Reverse push keeps the leftmost child on top.
		kids := Children(top.node)
		for i := len(kids) - 1; i >= 0; i-- {
			stack = append(stack, pending{parent: id, node: kids[i]})
		}
	}

	return rows
}
