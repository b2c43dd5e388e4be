package projection

import (
	"testing"

	"github.com/agentic-research/mdsql/internal/config"
	"github.com/agentic-research/mdsql/internal/markdown"
	"github.com/agentic-research/mdsql/internal/mdast"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strp(s string) *string { return &s }

func rowsOf(t *testing.T, opts config.Options, src string) []mdast.FlatRow {
	t.Helper()
	root, err := markdown.New(opts).Parse(src)
	require.NoError(t, err)
	return mdast.Flatten(root)
}

func TestSchema(t *testing.T) {
	assert.Equal(t,
		"CREATE TABLE x(parent, node_type, value, details, start_offset, start_line, start_column, "+
			"end_offset, end_line, end_column, input_text HIDDEN, raw)",
		Schema())
	assert.Len(t, Columns(), 12)
	assert.Equal(t, "raw", ColRaw.String())
	assert.Equal(t, "column(99)", Column(99).String())
}

func TestProjectHeadingDoc(t *testing.T) {
	src := "# Hi\n\nworld"
	rows := rowsOf(t, config.Default(), src)
	require.Len(t, rows, 5)

	type want struct {
		parent   int64
		nodeType string
		value    any
		raw      string
	}
	expected := []want{
		{0, "Root", nil, src},
		{0, "Heading", nil, "# Hi"},
		{1, "Text", "Hi", "Hi"},
		{0, "Paragraph", nil, "world"},
		{3, "Text", "world", "world"},
	}
	for i, w := range expected {
		row := rows[i]
		assert.Equal(t, int64(i), row.ID)
		assert.Equal(t, w.parent, Project(row, src, ColParent), "row %d", i)
		assert.Equal(t, w.nodeType, Project(row, src, ColNodeType), "row %d", i)
		assert.Equal(t, w.value, Project(row, src, ColValue), "row %d", i)
		assert.Equal(t, w.raw, Project(row, src, ColRaw), "row %d", i)
		assert.Nil(t, Project(row, src, ColInputText))
	}

	assert.Equal(t, map[string]any{"depth": int64(1)}, Project(rows[1], src, ColDetails))
	assert.Nil(t, Project(rows[0], src, ColDetails))
	assert.Nil(t, Project(rows[2], src, ColDetails))

	para := rows[3]
	assert.Equal(t, int64(6), Project(para, src, ColStartOffset))
	assert.Equal(t, int64(3), Project(para, src, ColStartLine))
	assert.Equal(t, int64(1), Project(para, src, ColStartColumn))
	assert.Equal(t, int64(11), Project(para, src, ColEndOffset))
	assert.Equal(t, int64(3), Project(para, src, ColEndLine))
	assert.Equal(t, int64(6), Project(para, src, ColEndColumn))
}

func TestProjectLinkDetails(t *testing.T) {
	src := `[a](b "c")`
	rows := rowsOf(t, config.Default(), src)
	require.Len(t, rows, 4)
	assert.Equal(t, "Link", Project(rows[2], src, ColNodeType))
	assert.Equal(t, map[string]any{"url": "b", "title": "c"}, Project(rows[2], src, ColDetails))
}

func TestProjectUnpositioned(t *testing.T) {
	row := mdast.FlatRow{ID: 0, ParentID: 0, Node: &mdast.Text{Value: "x"}}
	for _, col := range []Column{ColStartOffset, ColStartLine, ColStartColumn, ColEndOffset, ColEndLine, ColEndColumn, ColRaw} {
		assert.Nil(t, Project(row, "x", col), col.String())
	}
	assert.Equal(t, "x", Project(row, "x", ColValue))
}

func TestRawOutOfRange(t *testing.T) {
	n := &mdast.Text{}
	n.SetPosition(&mdast.Position{Start: mdast.Point{Offset: 2}, End: mdast.Point{Offset: 9}})
	assert.Nil(t, Raw(n, "short"))
}

func TestRawRoundTrip(t *testing.T) {
	src := "# T\n\n- a\n- *b*\n\n```go\nx\n```\n\n> q [l](u)\n"
	for _, row := range rowsOf(t, config.Default(), src) {
		p := row.Node.Pos()
		if p == nil {
			continue
		}
		assert.Equal(t, src[p.Start.Offset:p.End.Offset], Raw(row.Node, src), row.Node.Kind().String())
	}
}

// sample returns one node of every kind with attributes filled in.
func sample() []mdast.Node {
	yes := true
	start := 3
	return []mdast.Node{
		&mdast.Root{},
		&mdast.BlockQuote{},
		&mdast.FootnoteDefinition{Identifier: "n", Label: strp("N")},
		&mdast.MdxJsxFlowElement{Name: strp("div")},
		&mdast.List{Ordered: true, Start: &start, Spread: true},
		&mdast.MdxjsEsm{Value: "import x from 'y'"},
		&mdast.Toml{Value: "a = 1"},
		&mdast.Yaml{Value: "a: 1"},
		&mdast.Break{},
		&mdast.InlineCode{Value: "code"},
		&mdast.InlineMath{Value: "x^2"},
		&mdast.Delete{},
		&mdast.Emphasis{},
		&mdast.MdxTextExpression{Value: "a + b"},
		&mdast.FootnoteReference{Identifier: "n", Label: strp("N")},
		&mdast.Html{Value: "<b>"},
		&mdast.Image{Alt: "alt", URL: "i.png", Title: strp("t")},
		&mdast.ImageReference{Alt: "alt", Identifier: "r", Label: strp("R"), ReferenceKind: mdast.ReferenceFull},
		&mdast.MdxJsxTextElement{Name: strp("span")},
		&mdast.Link{URL: "u"},
		&mdast.LinkReference{Identifier: "r", Label: strp("R"), ReferenceKind: mdast.ReferenceCollapsed},
		&mdast.Strong{},
		&mdast.Text{Value: "t"},
		&mdast.Code{Value: "x", Lang: strp("go"), Meta: strp("title=a")},
		&mdast.Math{Value: "a + b"},
		&mdast.MdxFlowExpression{Value: "1"},
		&mdast.Heading{Depth: 2},
		&mdast.Table{Align: []mdast.AlignKind{mdast.AlignLeft, mdast.AlignNone, mdast.AlignCenter}},
		&mdast.ThematicBreak{},
		&mdast.TableRow{},
		&mdast.TableCell{},
		&mdast.ListItem{Checked: &yes},
		&mdast.Definition{URL: "u", Identifier: "r", Label: strp("R")},
		&mdast.Paragraph{},
	}
}

func TestSampleCoversEveryKind(t *testing.T) {
	nodes := sample()
	require.Len(t, nodes, len(mdast.Kinds()))
	for i, k := range mdast.Kinds() {
		assert.Equal(t, k, nodes[i].Kind())
	}
}

func TestValueByKind(t *testing.T) {
	literal := map[mdast.Kind]string{
		mdast.KindMdxjsEsm:          "import x from 'y'",
		mdast.KindToml:              "a = 1",
		mdast.KindYaml:              "a: 1",
		mdast.KindInlineCode:        "code",
		mdast.KindInlineMath:        "x^2",
		mdast.KindMdxTextExpression: "a + b",
		mdast.KindHtml:              "<b>",
		mdast.KindText:              "t",
		mdast.KindCode:              "x",
		mdast.KindMath:              "a + b",
		mdast.KindMdxFlowExpression: "1",
	}
	for _, n := range sample() {
		t.Run(n.Kind().String(), func(t *testing.T) {
			v, ok := Value(n)
			want, has := literal[n.Kind()]
			assert.Equal(t, has, ok)
			assert.Equal(t, want, v)
		})
	}
}

func TestDetailsByKind(t *testing.T) {
	expected := map[mdast.Kind]map[string]any{
		mdast.KindHeading:  {"depth": int64(2)},
		mdast.KindList:     {"ordered": true, "start": int64(3), "spread": true},
		mdast.KindListItem: {"spread": false, "checked": true},
		mdast.KindLink:     {"url": "u", "title": nil},
		mdast.KindDefinition: {
			"url": "u", "title": nil, "identifier": "r", "label": "R",
		},
		mdast.KindLinkReference: {
			"identifier": "r", "label": "R", "reference_kind": "collapsed",
		},
		mdast.KindImageReference: {
			"alt": "alt", "identifier": "r", "label": "R", "reference_kind": "full",
		},
		mdast.KindImage:             {"alt": "alt", "url": "i.png", "title": "t"},
		mdast.KindCode:              {"language": "go", "meta": "title=a"},
		mdast.KindMath:              {"meta": nil},
		mdast.KindFootnoteReference: {"identifier": "n", "label": "N"},
		mdast.KindTable:             {"align": []any{"left", nil, "center"}},
	}
	for _, n := range sample() {
		t.Run(n.Kind().String(), func(t *testing.T) {
			want, ok := expected[n.Kind()]
			if !ok {
				assert.Nil(t, Details(n))
				return
			}
			assert.Equal(t, want, Details(n))
		})
	}
}

func TestDetailsFromParse(t *testing.T) {
	opts := config.Default()
	opts.Extensions.GFM = true

	t.Run("unordered list has no start", func(t *testing.T) {
		rows := rowsOf(t, opts, "- [ ] todo\n- b\n")
		assert.Equal(t, map[string]any{"ordered": false, "start": nil, "spread": false}, Details(rows[1].Node))
		assert.Equal(t, map[string]any{"spread": false, "checked": false}, Details(rows[2].Node))
		assert.Equal(t, map[string]any{"spread": false, "checked": nil}, Details(rows[5].Node))
	})

	t.Run("code without info", func(t *testing.T) {
		rows := rowsOf(t, opts, "```\nx\n```")
		assert.Equal(t, map[string]any{"language": nil, "meta": nil}, Details(rows[1].Node))
	})

	t.Run("shortcut reference", func(t *testing.T) {
		rows := rowsOf(t, opts, "[Foo]\n\n[foo]: /u")
		require.Equal(t, "LinkReference", rows[2].Node.Kind().String())
		assert.Equal(t, map[string]any{
			"identifier": "foo", "label": "Foo", "reference_kind": "shortcut",
		}, Details(rows[2].Node))
	})
}
