package cmd

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"

	"github.com/agentic-research/mdsql/internal/mdvtab"
	"github.com/ohler55/ojg"
	"github.com/ohler55/ojg/jp"
	"github.com/ohler55/ojg/oj"
	"github.com/spf13/cobra"
)

var (
	astJSON    bool
	astDetails string
)

func init() {
	astCmd.Flags().BoolVar(&astJSON, "json", false, "Print rows as a JSON array")
	astCmd.Flags().StringVar(&astDetails, "details", "", "Print a JSONPath selection of each row's details, e.g. '$.url'")
	rootCmd.AddCommand(astCmd)
}

var astCmd = &cobra.Command{
	Use:   "ast [file|-]",
	Short: "Print the md_ast rows of a Markdown document",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		opts, err := loadOptions(cmd)
		if err != nil {
			return err
		}
		text, err := readInput(cmd, args)
		if err != nil {
			return err
		}

		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}
		db, err := mdvtab.Open(ctx, ":memory:", opts)
		if err != nil {
			return err
		}
		defer func() { _ = db.Close() }()

		rows, err := queryAST(ctx, db, text)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		switch {
		case astDetails != "":
			return printDetails(out, rows, astDetails)
		case astJSON:
			return printJSON(out, rows)
		default:
			return printTable(out, rows)
		}
	},
}

// astRow is one md_ast row as the CLI prints it.
type astRow struct {
	ID       int64
	Parent   int64
	NodeType string
	Value    sql.NullString
	Details  sql.NullString
	Start    [2]sql.NullInt64
	End      [2]sql.NullInt64
}

const astQuery = `
SELECT rowid, parent, node_type, value, details, start_line, start_column, end_line, end_column
FROM md_ast(?)`

func queryAST(ctx context.Context, db *sql.DB, text string) ([]astRow, error) {
	rows, err := db.QueryContext(ctx, astQuery, text)
	if err != nil {
		return nil, fmt.Errorf("query md_ast: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []astRow
	for rows.Next() {
		var r astRow
		if err := rows.Scan(&r.ID, &r.Parent, &r.NodeType, &r.Value, &r.Details,
			&r.Start[0], &r.Start[1], &r.End[0], &r.End[1]); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("query md_ast: %w", err)
	}
	return out, nil
}

func (r astRow) span() string {
	if !r.Start[0].Valid {
		return "-"
	}
	return fmt.Sprintf("%d:%d-%d:%d", r.Start[0].Int64, r.Start[1].Int64, r.End[0].Int64, r.End[1].Int64)
}

func printTable(w io.Writer, rows []astRow) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tPARENT\tTYPE\tSPAN\tVALUE\tDETAILS")
	for _, r := range rows {
		value := ""
		if r.Value.Valid {
			value = strconv.Quote(r.Value.String)
		}
		fmt.Fprintf(tw, "%d\t%d\t%s\t%s\t%s\t%s\n", r.ID, r.Parent, r.NodeType, r.span(), value, r.Details.String)
	}
	return tw.Flush()
}

func printJSON(w io.Writer, rows []astRow) error {
	list := make([]any, 0, len(rows))
	for _, r := range rows {
		obj := map[string]any{
			"id":        r.ID,
			"parent":    r.Parent,
			"node_type": r.NodeType,
			"value":     nil,
			"details":   nil,
			"position":  nil,
		}
		if r.Value.Valid {
			obj["value"] = r.Value.String
		}
		if r.Details.Valid {
			details, err := oj.ParseString(r.Details.String)
			if err != nil {
				return fmt.Errorf("row %d details: %w", r.ID, err)
			}
			obj["details"] = details
		}
		if r.Start[0].Valid {
			obj["position"] = map[string]any{
				"start": map[string]any{"line": r.Start[0].Int64, "column": r.Start[1].Int64},
				"end":   map[string]any{"line": r.End[0].Int64, "column": r.End[1].Int64},
			}
		}
		list = append(list, obj)
	}
	_, err := fmt.Fprintln(w, oj.JSON(list, &ojg.Options{Indent: 2, Sort: true, HTMLUnsafe: true}))
	return err
}

// printDetails prints one line per JSONPath match: row id, node type and the
// matched value as JSON.
func printDetails(w io.Writer, rows []astRow, expr string) error {
	x, err := jp.ParseString(expr)
	if err != nil {
		return fmt.Errorf("invalid JSONPath %q: %w", expr, err)
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	for _, r := range rows {
		if !r.Details.Valid {
			continue
		}
		data, err := oj.ParseString(r.Details.String)
		if err != nil {
			return fmt.Errorf("row %d details: %w", r.ID, err)
		}
		for _, v := range x.Get(data) {
			fmt.Fprintf(tw, "%d\t%s\t%s\n", r.ID, r.NodeType, oj.JSON(v, &ojg.Options{Sort: true, HTMLUnsafe: true}))
		}
	}
	return tw.Flush()
}
