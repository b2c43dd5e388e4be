// Package mdast defines the closed set of Markdown syntax tree nodes that the
// md_ast table projects, and the preorder flattener that turns a tree into
// rows.
package mdast

// Point is a single place in a source document. Line and Column are 1-based,
// Column counts bytes; Offset is the 0-based byte offset.
type Point struct {
	Line   int
	Column int
	Offset int
}

// Position is the half-open source range [Start, End) of a node.
type Position struct {
	Start Point
	End   Point
}

// Node is implemented by every kind in this package and by nothing else.
type Node interface {
	Kind() Kind
	// Pos returns the node's source range, or nil when it is unknown.
	Pos() *Position
	Accept(v Visitor)
	node()
}

// Base carries the optional position shared by every node.
type Base struct {
	Position *Position
}

func (b *Base) Pos() *Position { return b.Position }

// SetPosition replaces the node's position. A nil position marks it unknown.
func (b *Base) SetPosition(p *Position) { b.Position = p }

func (*Base) node() {}

// Parent is embedded by kinds that hold child nodes.
type Parent struct {
	Children []Node
}

func (p *Parent) childNodes() []Node { return p.Children }

// Append adds children in document order.
func (p *Parent) Append(children ...Node) { p.Children = append(p.Children, children...) }

type parent interface {
	childNodes() []Node
}

// Children returns the ordered children of n, or nil for leaf kinds.
func Children(n Node) []Node {
	if p, ok := n.(parent); ok {
		return p.childNodes()
	}
	return nil
}

// Count returns the number of nodes in the tree rooted at n.
func Count(n Node) int {
	if n == nil {
		return 0
	}
	total := 0
	stack := []Node{n}
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		total++
		stack = append(stack, Children(cur)...)
	}
	return total
}

// ReferenceKind tells how a reference names its definition.
type ReferenceKind uint8

const (
	ReferenceShortcut ReferenceKind = iota
	ReferenceCollapsed
	ReferenceFull
)

func (k ReferenceKind) String() string {
	switch k {
	case ReferenceCollapsed:
		return "collapsed"
	case ReferenceFull:
		return "full"
	default:
		return "shortcut"
	}
}

// AlignKind is the alignment of one table column.
type AlignKind uint8

const (
	AlignNone AlignKind = iota
	AlignLeft
	AlignRight
	AlignCenter
)

func (a AlignKind) String() string {
	switch a {
	case AlignLeft:
		return "left"
	case AlignRight:
		return "right"
	case AlignCenter:
		return "center"
	default:
		return "none"
	}
}
