package mdvtab

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/agentic-research/mdsql/internal/config"
	"github.com/agentic-research/mdsql/internal/markdown"
	"github.com/agentic-research/mdsql/internal/projection"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"modernc.org/sqlite/vtab"
)

func openDB(t *testing.T, opts config.Options) *sql.DB {
	t.Helper()
	db, err := Open(context.Background(), ":memory:", opts)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

type astRow struct {
	id       int64
	parent   int64
	nodeType string
	value    sql.NullString
	details  sql.NullString
}

func queryRows(t *testing.T, db *sql.DB, query string, args ...any) []astRow {
	t.Helper()
	rows, err := db.Query(query, args...)
	require.NoError(t, err)
	defer func() { _ = rows.Close() }()

	var out []astRow
	for rows.Next() {
		var r astRow
		require.NoError(t, rows.Scan(&r.id, &r.parent, &r.nodeType, &r.value, &r.details))
		out = append(out, r)
	}
	require.NoError(t, rows.Err())
	return out
}

func TestHeadingDocument(t *testing.T) {
	db := openDB(t, config.Default())

	for _, query := range []string{
		"SELECT rowid, parent, node_type, value, details FROM md_ast(?)",
		"SELECT rowid, parent, node_type, value, details FROM md_ast WHERE input_text = ?",
	} {
		t.Run(query, func(t *testing.T) {
			rows := queryRows(t, db, query, "# Hi\n\nworld")
			require.Len(t, rows, 5)

			assert.Equal(t, astRow{id: 0, parent: 0, nodeType: "Root"}, rows[0])
			assert.Equal(t, int64(1), rows[1].id)
			assert.Equal(t, "Heading", rows[1].nodeType)
			assert.JSONEq(t, `{"depth":1}`, rows[1].details.String)
			assert.Equal(t, astRow{id: 2, parent: 1, nodeType: "Text", value: sql.NullString{String: "Hi", Valid: true}}, rows[2])
			assert.Equal(t, astRow{id: 3, parent: 0, nodeType: "Paragraph"}, rows[3])
			assert.Equal(t, astRow{id: 4, parent: 3, nodeType: "Text", value: sql.NullString{String: "world", Valid: true}}, rows[4])
		})
	}
}

func TestLinkDetails(t *testing.T) {
	db := openDB(t, config.Default())

	var url, title string
	err := db.QueryRow(
		"SELECT details ->> '$.url', details ->> '$.title' FROM md_ast(?) WHERE node_type = 'Link'",
		`[a](b "c")`,
	).Scan(&url, &title)
	require.NoError(t, err)
	assert.Equal(t, "b", url)
	assert.Equal(t, "c", title)
}

func TestPositionsAndRaw(t *testing.T) {
	db := openDB(t, config.Default())
	src := "# Hi\n\nworld"

	var startOff, startLine, startCol, endOff, endLine, endCol int64
	var raw string
	err := db.QueryRow(`
		SELECT start_offset, start_line, start_column, end_offset, end_line, end_column, raw
		FROM md_ast(?) WHERE node_type = 'Paragraph'`, src,
	).Scan(&startOff, &startLine, &startCol, &endOff, &endLine, &endCol, &raw)
	require.NoError(t, err)
	assert.Equal(t, []int64{6, 3, 1, 11, 3, 6}, []int64{startOff, startLine, startCol, endOff, endLine, endCol})
	assert.Equal(t, "world", raw)

	var mismatches int
	err = db.QueryRow(`
		SELECT count(*) FROM md_ast(?1)
		WHERE raw IS NOT substr(?1, start_offset + 1, end_offset - start_offset)`, src,
	).Scan(&mismatches)
	require.NoError(t, err)
	assert.Zero(t, mismatches)
}

func TestInputTextReadsNull(t *testing.T) {
	db := openDB(t, config.Default())

	var n int
	require.NoError(t, db.QueryRow("SELECT count(*) FROM md_ast(?) WHERE typeof(input_text) = 'null'", "a").Scan(&n))
	assert.Equal(t, 3, n)
}

func TestNullInput(t *testing.T) {
	db := openDB(t, config.Default())

	var n int
	require.NoError(t, db.QueryRow("SELECT count(*) FROM md_ast(?)", nil).Scan(&n))
	assert.Zero(t, n)
}

func TestBlobInput(t *testing.T) {
	db := openDB(t, config.Default())

	var n int
	require.NoError(t, db.QueryRow("SELECT count(*) FROM md_ast(?)", []byte("*a*")).Scan(&n))
	assert.Equal(t, 4, n)
}

func TestPlanningErrors(t *testing.T) {
	db := openDB(t, config.Default())

	_, err := db.Query("SELECT * FROM md_ast")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cannot plan without input")

	_, err = db.Query("SELECT * FROM md_ast WHERE input_text > 'a'")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported operator on input_text")
}

func TestInvalidUTF8(t *testing.T) {
	db := openDB(t, config.Default())

	var n int
	err := db.QueryRow("SELECT count(*) FROM md_ast(?)", []byte{'a', 0xff}).Scan(&n)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid UTF-8")
}

func TestJoinRebindsPerDocument(t *testing.T) {
	db := openDB(t, config.Default())

	_, err := db.Exec(`
		CREATE TABLE documents(path TEXT PRIMARY KEY, content TEXT);
		INSERT INTO documents VALUES ('a.md', '# A'), ('b.md', 'one *two*'), ('c.md', NULL);`)
	require.NoError(t, err)

	rows, err := db.Query(`
		SELECT d.path, count(a.node_type), sum(a.node_type = 'Heading')
		FROM documents d, md_ast(d.content) a
		GROUP BY d.path ORDER BY d.path`)
	require.NoError(t, err)
	defer func() { _ = rows.Close() }()

	type count struct {
		path     string
		nodes    int
		headings int
	}
	var got []count
	for rows.Next() {
		var c count
		require.NoError(t, rows.Scan(&c.path, &c.nodes, &c.headings))
		got = append(got, c)
	}
	require.NoError(t, rows.Err())
	assert.Equal(t, []count{{"a.md", 3, 1}, {"b.md", 5, 0}}, got)
}

func TestModuleArguments(t *testing.T) {
	opts := config.Default()
	opts.Extensions.GFM = true
	db := openDB(t, opts)

	var n int
	require.NoError(t, db.QueryRow("SELECT count(*) FROM md_ast(?) WHERE node_type = 'Delete'", "~~x~~").Scan(&n))
	assert.Equal(t, 1, n)

	_, err := db.Exec("CREATE VIRTUAL TABLE temp.md_math USING md_ast(math, gfm=false)")
	require.NoError(t, err)
	require.NoError(t, db.QueryRow("SELECT count(*) FROM md_math(?) WHERE node_type = 'Delete'", "~~x~~").Scan(&n))
	assert.Zero(t, n)
	require.NoError(t, db.QueryRow("SELECT count(*) FROM md_math(?) WHERE node_type = 'InlineMath'", "$x$").Scan(&n))
	assert.Equal(t, 1, n)

	_, err = db.Exec("CREATE VIRTUAL TABLE temp.md_bad USING md_ast(bogus)")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown option")
}

func TestAttachIsIdempotent(t *testing.T) {
	db := openDB(t, config.Default())
	require.NoError(t, Attach(context.Background(), db, config.Default()))
}

func TestCreateStatement(t *testing.T) {
	assert.Equal(t, "CREATE VIRTUAL TABLE IF NOT EXISTS temp.md_ast USING md_ast", createStatement(config.Default()))

	opts := config.Default()
	opts.Extensions.GFM = true
	opts.Extensions.Math = true
	assert.Equal(t, "CREATE VIRTUAL TABLE IF NOT EXISTS temp.md_ast USING md_ast(gfm, math)", createStatement(opts))
}

func TestScalarFunctions(t *testing.T) {
	db := openDB(t, config.Default())

	var html sql.NullString
	require.NoError(t, db.QueryRow("SELECT md_to_html('**bold**')").Scan(&html))
	assert.Equal(t, "<p><strong>bold</strong></p>", html.String)

	require.NoError(t, db.QueryRow("SELECT md_to_html('~~x~~', 'gfm')").Scan(&html))
	assert.Equal(t, "<p><del>x</del></p>", html.String)

	require.NoError(t, db.QueryRow("SELECT md_to_html(NULL)").Scan(&html))
	assert.False(t, html.Valid)

	err := db.QueryRow("SELECT md_to_html('x', 'nope')").Scan(&html)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown option")

	var v, debug string
	require.NoError(t, db.QueryRow("SELECT md_version(), md_debug()").Scan(&v, &debug))
	assert.Regexp(t, `^v`, v)
	assert.Contains(t, debug, "Version: "+v+"\nSource: ")
}

func TestRendererCacheKeyedByOptions(t *testing.T) {
	a, err := renderer("gfm")
	require.NoError(t, err)
	for _, spelling := range []string{" gfm", "gfm,", "GFM", "gfm=true"} {
		b, err := renderer(spelling)
		require.NoError(t, err)
		assert.Same(t, a, b, "%q", spelling)
	}

	plain, err := renderer("")
	require.NoError(t, err)
	assert.NotSame(t, a, plain)

	n := 0
	renderers.Range(func(_, _ any) bool {
		n++
		return true
	})
	assert.LessOrEqual(t, n, 1<<6)
}

func TestBestIndex(t *testing.T) {
	tbl := &table{}
	input := int(projection.ColInputText)

	t.Run("usable equality", func(t *testing.T) {
		info := &vtab.IndexInfo{Constraints: []vtab.Constraint{
			{Column: int(projection.ColNodeType), Op: vtab.OpEQ, Usable: true, ArgIndex: -1},
			{Column: input, Op: vtab.OpEQ, Usable: true, ArgIndex: -1},
		}}
		require.NoError(t, tbl.BestIndex(info))
		assert.Equal(t, int64(planInput), info.IdxNum)
		assert.Equal(t, 0, info.Constraints[1].ArgIndex)
		assert.True(t, info.Constraints[1].Omit)
		assert.Equal(t, -1, info.Constraints[0].ArgIndex)
		assert.False(t, info.Constraints[0].Omit)
		assert.Equal(t, float64(100000), info.EstimatedCost)
		assert.Equal(t, int64(100000), info.EstimatedRows)
	})

	t.Run("no input", func(t *testing.T) {
		info := &vtab.IndexInfo{Constraints: []vtab.Constraint{
			{Column: int(projection.ColNodeType), Op: vtab.OpEQ, Usable: true, ArgIndex: -1},
		}}
		err := tbl.BestIndex(info)
		var pe *PlanningError
		require.True(t, errors.As(err, &pe))
		assert.ErrorIs(t, err, ErrNoInput)
	})

	t.Run("unsupported operator", func(t *testing.T) {
		for _, op := range []vtab.ConstraintOp{vtab.OpGT, vtab.OpLIKE, vtab.OpNE, vtab.OpISNULL} {
			info := &vtab.IndexInfo{Constraints: []vtab.Constraint{
				{Column: input, Op: op, Usable: true, ArgIndex: -1},
			}}
			assert.ErrorIs(t, tbl.BestIndex(info), ErrUnsupportedInputOp)
		}
	})

	t.Run("unusable equality is priced out", func(t *testing.T) {
		info := &vtab.IndexInfo{Constraints: []vtab.Constraint{
			{Column: input, Op: vtab.OpEQ, Usable: false, ArgIndex: -1},
		}}
		require.NoError(t, tbl.BestIndex(info))
		assert.Equal(t, int64(planUnbound), info.IdxNum)
		assert.Greater(t, info.EstimatedCost, float64(1e12))
		assert.Equal(t, -1, info.Constraints[0].ArgIndex)
	})
}

func TestFilterWithoutInputPlan(t *testing.T) {
	c := &cursor{table: &table{}}
	assert.ErrorIs(t, c.Filter(planUnbound, "", nil), ErrNoInput)
	assert.True(t, c.Eof())
}

func TestCursorRebind(t *testing.T) {
	tbl := &table{parser: newTestParser()}
	cur, err := tbl.Open()
	require.NoError(t, err)
	c := cur.(*cursor)

	require.NoError(t, c.Filter(planInput, "", []vtab.Value{"# a"}))
	first := c.scan
	var kinds []any
	for ; !c.Eof(); require.NoError(t, c.Next()) {
		v, err := c.Column(int(projection.ColNodeType))
		require.NoError(t, err)
		kinds = append(kinds, v)
	}
	assert.Equal(t, []any{"Root", "Heading", "Text"}, kinds)

	require.NoError(t, c.Filter(planInput, "", []vtab.Value{"b"}))
	assert.NotSame(t, first, c.scan)
	id, err := c.Rowid()
	require.NoError(t, err)
	assert.Equal(t, int64(0), id)
	v, err := c.Column(int(projection.ColRaw))
	require.NoError(t, err)
	assert.Equal(t, "b", v)

	require.NoError(t, c.Close())
	assert.True(t, c.Eof())
}

func TestEncode(t *testing.T) {
	v, err := encode(map[string]any{"url": "<a&b>", "title": nil})
	require.NoError(t, err)
	assert.JSONEq(t, `{"url":"<a&b>","title":null}`, v.(string))

	_, err = encode(3.5)
	assert.Error(t, err)
}

func newTestParser() *markdown.Parser { return markdown.New(config.Default()) }
