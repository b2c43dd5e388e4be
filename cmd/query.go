package cmd

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/agentic-research/mdsql/internal/mdvtab"
	"github.com/spf13/cobra"
)

var (
	queryDB   string
	queryBind string
)

func init() {
	queryCmd.Flags().StringVar(&queryDB, "db", ":memory:", "SQLite database to query (e.g. one written by 'mdsql load')")
	queryCmd.Flags().StringVar(&queryBind, "bind", "", "Bind the text of this file (or - for stdin) as ?1")
	rootCmd.AddCommand(queryCmd)
}

var queryCmd = &cobra.Command{
	Use:   "query <sql>",
	Short: "Run SQL with the md_ast table and md_* functions available",
	Example: `  mdsql query --bind README.md "SELECT node_type, count(*) FROM md_ast(?1) GROUP BY 1"
  mdsql query --db docs.db "SELECT d.path, a.value FROM documents d, md_ast(d.content) a WHERE a.node_type = 'Heading'"`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		opts, err := loadOptions(cmd)
		if err != nil {
			return err
		}

		var binds []any
		if queryBind != "" {
			text, err := readInput(cmd, []string{queryBind})
			if err != nil {
				return err
			}
			binds = append(binds, text)
		}

		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}
		db, err := mdvtab.Open(ctx, queryDB, opts)
		if err != nil {
			return err
		}
		defer func() { _ = db.Close() }()

		return runQuery(ctx, cmd.OutOrStdout(), db, args[0], binds...)
	},
}

// runQuery prints the result set of query as a tab-aligned table.
func runQuery(ctx context.Context, w io.Writer, db *sql.DB, query string, args ...any) error {
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("query: %w", err)
	}
	defer func() { _ = rows.Close() }()

	cols, err := rows.Columns()
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, strings.Join(cols, "\t"))

	vals := make([]any, len(cols))
	ptrs := make([]any, len(cols))
	for i := range vals {
		ptrs[i] = &vals[i]
	}
	cells := make([]string, len(cols))
	for rows.Next() {
		if err := rows.Scan(ptrs...); err != nil {
			return err
		}
		for i, v := range vals {
			cells[i] = formatCell(v)
		}
		fmt.Fprintln(tw, strings.Join(cells, "\t"))
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("query: %w", err)
	}
	return tw.Flush()
}

func formatCell(v any) string {
	switch x := v.(type) {
	case nil:
		return "NULL"
	case string:
		return escapeCell(x)
	case []byte:
		return escapeCell(string(x))
	case int64:
		return strconv.FormatInt(x, 10)
	case float64:
		return strconv.FormatFloat(x, 'g', -1, 64)
	default:
		return fmt.Sprint(x)
	}
}

// escapeCell keeps multi-line values on one table row.
func escapeCell(s string) string {
	return strings.NewReplacer("\n", `\n`, "\t", `\t`).Replace(s)
}
