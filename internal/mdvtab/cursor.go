package mdvtab

import (
	"fmt"
	"strconv"

	"github.com/agentic-research/mdsql/internal/mdast"
	"github.com/agentic-research/mdsql/internal/projection"
	"github.com/ohler55/ojg"
	"github.com/ohler55/ojg/oj"
	"modernc.org/sqlite/vtab"
)

// scanState is one bound scan: the flattened rows of a single document and
// the text they came from. It is built bound and never rebound.
type scanState struct {
	source string
	rows   []mdast.FlatRow
	pos    int
}

func newScanState(source string, rows []mdast.FlatRow) *scanState {
	return &scanState{source: source, rows: rows}
}

func (s *scanState) eof() bool { return s.pos >= len(s.rows) }

type cursor struct {
	table *table
	scan  *scanState
}

func (c *cursor) Filter(idxNum int, idxStr string, vals []vtab.Value) error {
	c.scan = nil
	if idxNum != planInput || len(vals) == 0 {
		return &PlanningError{Reason: ErrNoInput}
	}

	source, ok := inputText(vals[0])
	if !ok {
		// NULL input yields no rows.
		c.scan = newScanState("", nil)
		return nil
	}

	root, err := c.table.parser.Parse(source)
	if err != nil {
		return fmt.Errorf("md_ast: %w", err)
	}
	c.scan = newScanState(source, mdast.Flatten(root))
	return nil
}

// inputText converts a bound value to document text the way SQLite would
// cast it to TEXT. ok is false for NULL.
func inputText(v vtab.Value) (string, bool) {
	switch x := v.(type) {
	case nil:
		return "", false
	case string:
		return x, true
	case []byte:
		return string(x), true
	case int64:
		return strconv.FormatInt(x, 10), true
	case float64:
		return strconv.FormatFloat(x, 'g', -1, 64), true
	default:
		return fmt.Sprint(x), true
	}
}

func (c *cursor) Next() error {
	if c.scan != nil {
		c.scan.pos++
	}
	return nil
}

func (c *cursor) Eof() bool {
	return c.scan == nil || c.scan.eof()
}

func (c *cursor) Column(col int) (vtab.Value, error) {
	if c.Eof() {
		return nil, nil
	}
	row := c.scan.rows[c.scan.pos]
	return encode(projection.Project(row, c.scan.source, projection.Column(col)))
}

// encode maps projected values onto SQLite storage classes. Details become
// JSON text.
func encode(v any) (vtab.Value, error) {
	switch x := v.(type) {
	case nil, int64, string:
		return x, nil
	case map[string]any:
		return oj.JSON(x, &ojg.Options{Sort: true, HTMLUnsafe: true}), nil
	default:
		return nil, fmt.Errorf("md_ast: unexpected column value %T", v)
	}
}

func (c *cursor) Rowid() (int64, error) {
	if c.Eof() {
		return 0, nil
	}
	return c.scan.rows[c.scan.pos].ID, nil
}

func (c *cursor) Close() error {
	c.scan = nil
	return nil
}
