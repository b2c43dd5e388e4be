// Package projection computes md_ast column values for flattened rows.
//
// Values are Go-native (int64, string, bool, map[string]any, nil); encoding
// for the host database happens in the virtual table adapter.
package projection

import (
	"fmt"
	"strings"

	"github.com/agentic-research/mdsql/internal/mdast"
)

// Column indexes follow the declared schema order.
type Column int

const (
	ColParent Column = iota
	ColNodeType
	ColValue
	ColDetails
	ColStartOffset
	ColStartLine
	ColStartColumn
	ColEndOffset
	ColEndLine
	ColEndColumn
	ColInputText
	ColRaw

	numColumns
)

var columnNames = [...]string{
	ColParent:      "parent",
	ColNodeType:    "node_type",
	ColValue:       "value",
	ColDetails:     "details",
	ColStartOffset: "start_offset",
	ColStartLine:   "start_line",
	ColStartColumn: "start_column",
	ColEndOffset:   "end_offset",
	ColEndLine:     "end_line",
	ColEndColumn:   "end_column",
	ColInputText:   "input_text",
	ColRaw:         "raw",
}

func (c Column) String() string {
	if c < 0 || c >= numColumns {
		return fmt.Sprintf("column(%d)", int(c))
	}
	return columnNames[c]
}

// Columns lists every column in schema order.
func Columns() []Column {
	cols := make([]Column, numColumns)
	for i := range cols {
		cols[i] = Column(i)
	}
	return cols
}

// Schema is the CREATE TABLE statement declared for the virtual table.
func Schema() string {
	defs := make([]string, 0, numColumns)
	for _, c := range Columns() {
		if c == ColInputText {
			defs = append(defs, c.String()+" HIDDEN")
			continue
		}
		defs = append(defs, c.String())
	}
	return "CREATE TABLE x(" + strings.Join(defs, ", ") + ")"
}

// Project returns the value of col for row. source is the text the row was
// parsed from.
func Project(row mdast.FlatRow, source string, col Column) any {
	switch col {
	case ColParent:
		return row.ParentID
	case ColNodeType:
		return row.Node.Kind().String()
	case ColValue:
		if v, ok := Value(row.Node); ok {
			return v
		}
		return nil
	case ColDetails:
		if d := Details(row.Node); d != nil {
			return d
		}
		return nil
	case ColStartOffset, ColStartLine, ColStartColumn, ColEndOffset, ColEndLine, ColEndColumn:
		return position(row.Node.Pos(), col)
	case ColRaw:
		return Raw(row.Node, source)
	}
	return nil
}

func position(p *mdast.Position, col Column) any {
	if p == nil {
		return nil
	}
	switch col {
	case ColStartOffset:
		return int64(p.Start.Offset)
	case ColStartLine:
		return int64(p.Start.Line)
	case ColStartColumn:
		return int64(p.Start.Column)
	case ColEndOffset:
		return int64(p.End.Offset)
	case ColEndLine:
		return int64(p.End.Line)
	case ColEndColumn:
		return int64(p.End.Column)
	}
	return nil
}

// Raw is the source text covered by n, or nil when n has no usable position.
func Raw(n mdast.Node, source string) any {
	p := n.Pos()
	if p == nil {
		return nil
	}
	start, end := p.Start.Offset, p.End.Offset
	if start < 0 || end < start || end > len(source) {
		return nil
	}
	return source[start:end]
}
