// Package mdvtab exposes the md_ast table-valued function and the md_*
// scalar functions to modernc.org/sqlite.
package mdvtab

import (
	"errors"
	"fmt"
	"sync"

	"github.com/agentic-research/mdsql/internal/config"
	"github.com/agentic-research/mdsql/internal/markdown"
	"github.com/agentic-research/mdsql/internal/projection"
	"modernc.org/sqlite/vtab"
)

const (
	// ModuleName is the name registered with the driver.
	ModuleName = "md_ast"
	// TableName is the temp table Attach creates.
	TableName = "md_ast"
)

var (
	once    sync.Once
	initErr error
)

// Register installs the md_ast module and the scalar functions with the
// global SQLite driver. Only the first call registers; later calls return the
// first call's error. Connections opened afterwards see the module.
func Register() error {
	once.Do(func() {
		// db parameter is unused by the engine; pass nil.
		if err := vtab.RegisterModule(nil, ModuleName, &Module{}); err != nil {
			initErr = fmt.Errorf("mdvtab: register module: %w", err)
			return
		}
		if err := registerFunctions(); err != nil {
			initErr = fmt.Errorf("mdvtab: register functions: %w", err)
		}
	})
	return initErr
}

// Planning failures. Test with errors.Is.
var (
	ErrNoInput            = errors.New("cannot plan without input")
	ErrUnsupportedInputOp = errors.New("unsupported operator on input_text")
)

// PlanningError is returned from BestIndex when a query cannot bind the
// document text.
type PlanningError struct {
	Reason error
}

func (e *PlanningError) Error() string { return "md_ast: " + e.Reason.Error() }

func (e *PlanningError) Unwrap() error { return e.Reason }

// ---------------------------------------------------------------------------
// vtab.Module
// ---------------------------------------------------------------------------

// Module implements vtab.Module. Each table gets its parser options from its
// module arguments: USING md_ast(gfm, math).
type Module struct{}

// Create declares the md_ast schema and builds a table whose parser uses the
// options named in the module arguments.
func (m *Module) Create(ctx vtab.Context, args []string) (vtab.Table, error) {
	// args[0] module, args[1] database, args[2] table, args[3:] arguments.
	var userArgs []string
	if len(args) > 3 {
		userArgs = args[3:]
	}
	opts, err := config.ParseModuleArgs(userArgs)
	if err != nil {
		return nil, fmt.Errorf("md_ast: %w", err)
	}

	if err := ctx.Declare(projection.Schema()); err != nil {
		return nil, err
	}
	return &table{parser: markdown.New(opts)}, nil
}

// Connect reattaches an existing table. md_ast keeps no state of its own, so
// it is the same as Create.
func (m *Module) Connect(ctx vtab.Context, args []string) (vtab.Table, error) {
	return m.Create(ctx, args)
}

// ---------------------------------------------------------------------------
// vtab.Table
// ---------------------------------------------------------------------------

// Plan numbers passed from BestIndex to Filter.
const (
	planUnbound = 0
	planInput   = 1
)

type table struct {
	parser *markdown.Parser
}

func (t *table) BestIndex(info *vtab.IndexInfo) error {
	input := -1
	unusable := false
	for i := range info.Constraints {
		c := &info.Constraints[i]
		if c.Column != int(projection.ColInputText) {
			continue
		}
		if c.Op != vtab.OpEQ {
			return &PlanningError{Reason: ErrUnsupportedInputOp}
		}
		if !c.Usable {
			unusable = true
			continue
		}
		if input < 0 {
			input = i
		}
	}

	switch {
	case input >= 0:
		c := &info.Constraints[input]
		c.ArgIndex = 0
		c.Omit = true
		info.IdxNum = planInput
		info.EstimatedCost = 100000
		info.EstimatedRows = 100000
		return nil
	case unusable:
		// The input comes from a table SQLite has not reached yet in this
		// ordering. Price the plan out so the other ordering wins.
		info.IdxNum = planUnbound
		info.EstimatedCost = 1e300
		info.EstimatedRows = 1 << 62
		return nil
	}
	return &PlanningError{Reason: ErrNoInput}
}

func (t *table) Open() (vtab.Cursor, error) {
	return &cursor{table: t}, nil
}

func (t *table) Disconnect() error { return nil }
func (t *table) Destroy() error    { return nil }
