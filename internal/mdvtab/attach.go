package mdvtab

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/agentic-research/mdsql/internal/config"
)

// Execer is satisfied by *sql.DB, *sql.Conn and *sql.Tx.
type Execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// Attach creates the md_ast table in the temp schema of the connection behind
// db. Temp tables are per connection, so db should be a *sql.Conn or a pool
// limited to one connection. An existing md_ast table is kept as is.
func Attach(ctx context.Context, db Execer, opts config.Options) error {
	if err := Register(); err != nil {
		return err
	}
	if _, err := db.ExecContext(ctx, createStatement(opts)); err != nil {
		return fmt.Errorf("create %s vtab: %w", TableName, err)
	}
	return nil
}

func createStatement(opts config.Options) string {
	stmt := fmt.Sprintf("CREATE VIRTUAL TABLE IF NOT EXISTS temp.%s USING %s", TableName, ModuleName)
	if args := opts.ModuleArgs(); len(args) > 0 {
		stmt += "(" + strings.Join(args, ", ") + ")"
	}
	return stmt
}

// Open opens a single-connection database at dsn with md_ast attached.
func Open(ctx context.Context, dsn string, opts config.Options) (*sql.DB, error) {
	// Register before the first connection exists so it sees the module.
	if err := Register(); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", dsn, err)
	}
	// md_ast lives in the temp schema, which is private to one connection.
	db.SetMaxOpenConns(1)

	if err := Attach(ctx, db, opts); err != nil {
		_ = db.Close() // ignore error
		return nil, err
	}
	return db, nil
}
