package markdown

import (
	"bytes"

	"github.com/agentic-research/mdsql/internal/mdast"
	gast "github.com/yuin/goldmark/ast"
	east "github.com/yuin/goldmark/extension/ast"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/text"
	"github.com/yuin/goldmark/util"
)

// converter turns one goldmark document into mdast. Nodes are converted in
// document order, children before their parent's position is fixed, and cursor
// tracks the furthest offset covered so far. Nodes goldmark records no
// segments for are located by scanning forward from the cursor.
type converter struct {
	*source
	refs   map[string]bool
	notes  map[int]*east.Footnote
	cursor int
}

func newConverter(src []byte, defs []parser.Reference) *converter {
	refs := make(map[string]bool, len(defs))
	for _, d := range defs {
		refs[util.ToLinkReference(d.Label())] = true
	}
	return &converter{
		source: newSource(src),
		refs:   refs,
		notes:  map[int]*east.Footnote{},
	}
}

func (c *converter) set(n mdast.Node, start, end int) {
	p := c.position(start, end)
	if p == nil {
		return
	}
	n.(interface{ SetPosition(*mdast.Position) }).SetPosition(p)
	if end > c.cursor {
		c.cursor = end
	}
}

func (c *converter) seek(off int) {
	if off > c.cursor {
		c.cursor = off
	}
}

// span is the extent of the first through last positioned node.
func span(nodes []mdast.Node) (start, end int, ok bool) {
	start, end = -1, -1
	for _, n := range nodes {
		p := n.Pos()
		if p == nil {
			continue
		}
		if start < 0 {
			start = p.Start.Offset
		}
		end = p.End.Offset
	}
	return start, end, start >= 0
}

func (c *converter) document(doc gast.Node) *mdast.Root {
	root := &mdast.Root{}

	for n := doc.FirstChild(); n != nil; n = n.NextSibling() {
		if l, ok := n.(*east.FootnoteList); ok {
			for f := l.FirstChild(); f != nil; f = f.NextSibling() {
				if fn, ok := f.(*east.Footnote); ok {
					c.notes[fn.Index] = fn
				}
			}
		}
	}

	for n := doc.FirstChild(); n != nil; n = n.NextSibling() {
		if b := c.block(n); b != nil {
			root.Append(b)
		}
	}

	root.SetPosition(c.position(0, len(c.src)))
	return root
}

func (c *converter) blocks(parent gast.Node) []mdast.Node {
	var out []mdast.Node
	for n := parent.FirstChild(); n != nil; n = n.NextSibling() {
		if b := c.block(n); b != nil {
			out = append(out, b)
		}
	}
	return out
}

func (c *converter) block(n gast.Node) mdast.Node {
	switch v := n.(type) {
	case *gast.Paragraph, *gast.TextBlock:
		if v.Lines().Len() == 0 && !v.HasChildren() {
			return nil
		}
		return c.paragraph(v)
	case *gast.Heading:
		return c.heading(v)
	case *gast.ThematicBreak:
		return c.thematicBreak()
	case *gast.CodeBlock:
		return c.indentedCode(v)
	case *gast.FencedCodeBlock:
		return c.fencedCode(v)
	case *gast.Blockquote:
		return c.blockquote(v)
	case *gast.List:
		return c.list(v)
	case *gast.ListItem:
		return c.listItem(v)
	case *gast.HTMLBlock:
		return c.htmlBlock(v)
	case *east.Table:
		return c.table(v)
	case *MathBlock:
		return c.mathBlock(v)
	case *linkDefinition:
		return c.definition(v)
	case *noteDefinition:
		if v.Footnote != nil {
			return c.footnoteDefinition(v)
		}
	case *frontMatterBlock:
		return c.frontMatter(v)
	}
	return nil
}

func (c *converter) paragraph(n gast.Node) mdast.Node {
	p := &mdast.Paragraph{}
	lines := n.Lines()
	if lines.Len() > 0 {
		c.seek(lines.At(0).Start)
	}
	p.Children = c.inlines(n)

	if lines.Len() == 0 {
		if s, e, ok := span(p.Children); ok {
			c.set(p, s, e)
		}
		return p
	}

	start := lines.At(0).Start
	if _, ok := n.FirstChild().(*east.TaskCheckBox); ok {
		if s, _, ok := span(p.Children); ok {
			start = s
		}
	}
	last := lines.At(lines.Len() - 1)
	c.set(p, start, c.trimEnd(start, last.Stop))
	return p
}

func (c *converter) heading(n *gast.Heading) mdast.Node {
	h := &mdast.Heading{Depth: n.Level}
	from := c.cursor
	h.Children = c.inlines(n)

	lines := n.Lines()
	if lines.Len() == 0 {
		if at := c.index(from, []byte("#")); at >= 0 {
			c.set(h, at, c.trimmedLineEnd(at))
		}
		return h
	}

	first := lines.At(0).Start
	back := c.backOver(first, " \t")
	if back > 0 && c.src[back-1] == '#' {
		c.set(h, c.backOver(back, "#"), c.trimmedLineEnd(first))
		return h
	}

	// Setext: the underline is the line after the content.
	last := lines.At(lines.Len() - 1)
	end := c.trimEnd(first, last.Stop)
	if under := c.nextLine(last.Start); under >= 0 {
		end = c.trimmedLineEnd(under)
	}
	c.set(h, first, end)
	return h
}

func (c *converter) thematicBreak() mdast.Node {
	t := &mdast.ThematicBreak{}
	for off := c.cursor; off < len(c.src); off++ {
		ch := c.src[off]
		if ch != '-' && ch != '*' && ch != '_' {
			continue
		}
		end := c.trimmedLineEnd(off)
		if isThematicBreak(c.src[off:end], ch) {
			c.set(t, off, end)
			break
		}
	}
	return t
}

func isThematicBreak(line []byte, ch byte) bool {
	count := 0
	for _, b := range line {
		switch b {
		case ch:
			count++
		case ' ', '\t':
		default:
			return false
		}
	}
	return count >= 3
}

func (c *converter) linesValue(lines *text.Segments) string {
	var b bytes.Buffer
	for i := 0; i < lines.Len(); i++ {
		seg := lines.At(i)
		b.Write(seg.Value(c.src))
	}
	return b.String()
}

func (c *converter) indentedCode(n *gast.CodeBlock) mdast.Node {
	code := &mdast.Code{Value: trimNewlines(c.linesValue(n.Lines()))}
	lines := n.Lines()
	if lines.Len() == 0 {
		return code
	}
	start := c.backOver(lines.At(0).Start, " \t")
	c.set(code, start, c.trimEnd(start, lines.At(lines.Len()-1).Stop))
	return code
}

func (c *converter) fencedCode(n *gast.FencedCodeBlock) mdast.Node {
	value := c.linesValue(n.Lines())
	if len(value) > 0 && value[len(value)-1] == '\n' {
		value = value[:len(value)-1]
	}
	code := &mdast.Code{Value: value}
	if n.Info != nil {
		code.Lang, code.Meta = splitInfo(decode(n.Info.Segment.Value(c.src)))
	}

	lines := n.Lines()
	fenceLine := -1
	switch {
	case n.Info != nil:
		fenceLine = c.lineStart(n.Info.Segment.Start)
	case lines.Len() > 0:
		if ls := c.lineStart(lines.At(0).Start); ls > 0 {
			fenceLine = c.lineStart(ls - 1)
		}
	default:
		if at := c.indexAny(c.cursor, "`~"); at >= 0 {
			fenceLine = c.lineStart(at)
		}
	}
	if fenceLine < 0 {
		return code
	}

	start := c.indexAny(fenceLine, "`~")
	if start < 0 {
		return code
	}
	fence := c.src[start]
	width := c.forwardOver(start, string(fence)) - start

	lastLine := start
	if lines.Len() > 0 {
		lastLine = lines.At(lines.Len() - 1).Start
	}
	end := c.trimmedLineEnd(lastLine)
	if lastLine == start {
		end = c.trimmedLineEnd(start)
	}
	if next := c.nextLine(lastLine); next >= 0 {
		if closeEnd, ok := c.closingFence(next, fence, width); ok {
			end = closeEnd
		}
	}
	c.set(code, start, end)
	return code
}

// closingFence checks whether the line at off closes a fence of width runs of
// ch, allowing container prefixes before it.
func (c *converter) closingFence(off int, ch byte, width int) (int, bool) {
	lineEnd := c.trimmedLineEnd(off)
	i := c.forwardOver(off, " \t>")
	if i >= lineEnd || c.src[i] != ch {
		return 0, false
	}
	j := c.forwardOver(i, string(ch))
	if j-i < width || j > lineEnd {
		return 0, false
	}
	if !util.IsBlank(c.src[j:lineEnd]) {
		return 0, false
	}
	return lineEnd, true
}

func (c *converter) indexAny(from int, chars string) int {
	if from < 0 || from >= len(c.src) {
		return -1
	}
	i := bytes.IndexAny(c.src[from:], chars)
	if i < 0 {
		return -1
	}
	return from + i
}

func splitInfo(info string) (lang, meta *string) {
	info = string(util.TrimRightSpace(util.TrimLeftSpace([]byte(info))))
	if info == "" {
		return nil, nil
	}
	l := info
	rest := ""
	if i := bytes.IndexAny([]byte(info), " \t"); i >= 0 {
		l = info[:i]
		rest = string(util.TrimLeftSpace([]byte(info[i:])))
	}
	lang = &l
	if rest != "" {
		meta = &rest
	}
	return lang, meta
}

func trimNewlines(s string) string {
	for len(s) > 0 && s[len(s)-1] == '\n' {
		s = s[:len(s)-1]
	}
	return s
}

func (c *converter) htmlBlock(n *gast.HTMLBlock) mdast.Node {
	value := c.linesValue(n.Lines())
	if n.HasClosure() {
		value += string(n.ClosureLine.Value(c.src))
	}
	h := &mdast.Html{Value: trimNewlines(value)}

	lines := n.Lines()
	if lines.Len() == 0 {
		return h
	}
	start := lines.At(0).Start
	last := lines.At(lines.Len() - 1)
	if n.HasClosure() {
		last = n.ClosureLine
	}
	c.set(h, start, c.trimEnd(start, last.Stop))
	return h
}

func (c *converter) blockquote(n *gast.Blockquote) mdast.Node {
	bq := &mdast.BlockQuote{}
	from := c.cursor
	bq.Children = c.blocks(n)

	s, e, ok := span(bq.Children)
	if !ok {
		if at := c.index(from, []byte(">")); at >= 0 {
			c.set(bq, at, c.trimmedLineEnd(at))
		}
		return bq
	}
	start := c.backOver(s, " \t")
	if start > 0 && c.src[start-1] == '>' {
		start--
	}
	c.set(bq, start, e)
	return bq
}

func (c *converter) list(n *gast.List) mdast.Node {
	l := &mdast.List{Ordered: n.IsOrdered(), Spread: !n.IsTight}
	if l.Ordered {
		start := n.Start
		l.Start = &start
	}
	l.Children = c.blocks(n)
	if s, e, ok := span(l.Children); ok {
		c.set(l, s, e)
	}
	return l
}

func (c *converter) listItem(n *gast.ListItem) mdast.Node {
	li := &mdast.ListItem{}
	from := c.cursor

	first := n.FirstChild()
	if first != nil {
		if box, ok := first.FirstChild().(*east.TaskCheckBox); ok {
			checked := box.IsChecked
			li.Checked = &checked
		}
		for ch := first.NextSibling(); ch != nil; ch = ch.NextSibling() {
			if ch.HasBlankPreviousLines() {
				li.Spread = true
			}
		}
	}

	li.Children = c.blocks(n)

	s, e, ok := span(li.Children)
	if !ok {
		at := c.forwardOver(from, " \t\n>")
		if at < len(c.src) {
			c.set(li, at, c.trimmedLineEnd(at))
		}
		return li
	}

	anchor := s
	if first != nil && first.Type() == gast.TypeBlock && first.Lines().Len() > 0 {
		anchor = first.Lines().At(0).Start
	}
	start := anchor
	if m := c.listMarker(anchor); m >= 0 {
		start = m
	}
	c.set(li, start, e)
	return li
}

// listMarker finds the bullet or ordinal marker before an item's content.
func (c *converter) listMarker(content int) int {
	off := c.backOver(content, " \t\n")
	if off == 0 {
		return -1
	}
	switch ch := c.src[off-1]; ch {
	case '-', '+', '*':
		return off - 1
	case '.', ')':
		if d := c.backOver(off-1, "0123456789"); d < off-1 {
			return d
		}
	}
	return -1
}

func (c *converter) table(n *east.Table) mdast.Node {
	t := &mdast.Table{}
	for _, a := range n.Alignments {
		t.Align = append(t.Align, alignKind(a))
	}
	for r := n.FirstChild(); r != nil; r = r.NextSibling() {
		switch r.(type) {
		case *east.TableHeader, *east.TableRow:
			t.Append(c.tableRow(r))
		}
	}
	if s, e, ok := span(t.Children); ok {
		c.set(t, s, e)
	}
	return t
}

func alignKind(a east.Alignment) mdast.AlignKind {
	switch a {
	case east.AlignLeft:
		return mdast.AlignLeft
	case east.AlignRight:
		return mdast.AlignRight
	case east.AlignCenter:
		return mdast.AlignCenter
	}
	return mdast.AlignNone
}

func (c *converter) tableRow(n gast.Node) mdast.Node {
	row := &mdast.TableRow{}
	anchor := -1
	for cell := n.FirstChild(); cell != nil; cell = cell.NextSibling() {
		tc := &mdast.TableCell{}
		lines := cell.Lines()
		if lines.Len() > 0 {
			seg := lines.At(0)
			if anchor < 0 {
				anchor = seg.Start
			}
			c.seek(seg.Start)
			tc.Children = c.inlines(cell)
			stop := seg.Stop
			if stop < seg.Start {
				stop = seg.Start
			}
			c.set(tc, seg.Start, stop)
		}
		row.Append(tc)
	}
	if anchor >= 0 {
		start := c.forwardOver(c.lineStart(anchor), " \t")
		c.set(row, start, c.trimmedLineEnd(start))
	}
	return row
}

func (c *converter) mathBlock(n *MathBlock) mdast.Node {
	value := c.linesValue(n.Lines())
	if len(value) > 0 && value[len(value)-1] == '\n' {
		value = value[:len(value)-1]
	}
	m := &mdast.Math{Value: value}
	if n.HasMeta {
		meta := string(n.Meta.Value(c.src))
		m.Meta = &meta
	}
	c.set(m, n.Start, n.Stop)
	return m
}

func (c *converter) definition(n *linkDefinition) mdast.Node {
	ref := n.Reference
	label := string(ref.Label())
	d := &mdast.Definition{
		URL:        decode(ref.Destination()),
		Identifier: util.ToLinkReference(ref.Label()),
		Label:      &label,
	}
	if title := ref.Title(); len(title) > 0 {
		t := decode(title)
		d.Title = &t
	}
	if n.Start >= 0 {
		c.set(d, n.Start, n.Stop)
	}
	return d
}

func (c *converter) footnoteDefinition(n *noteDefinition) mdast.Node {
	fn := n.Footnote
	label := string(fn.Ref)
	def := &mdast.FootnoteDefinition{
		Identifier: util.ToLinkReference(fn.Ref),
		Label:      &label,
	}

	end := -1
	if n.Start >= 0 {
		if rb := c.closeBracket(n.Start, '[', ']'); rb >= 0 {
			end = rb + 2
			c.seek(end)
		}
	}
	def.Children = c.blocks(fn)
	if end < 0 {
		return def
	}
	if _, e, ok := span(def.Children); ok && e > end {
		end = e
	}
	c.set(def, n.Start, end)
	return def
}

func (c *converter) frontMatter(n *frontMatterBlock) mdast.Node {
	value := string(n.Content.Value(c.src))
	var meta mdast.Node
	if n.Toml {
		meta = &mdast.Toml{Value: value}
	} else {
		meta = &mdast.Yaml{Value: value}
	}
	c.set(meta, n.Start, n.Stop)
	return meta
}

func decode(b []byte) string {
	b = util.UnescapePunctuations(b)
	b = util.ResolveNumericReferences(b)
	b = util.ResolveEntityNames(b)
	return string(b)
}
