package markdown

import (
	"bytes"
	"strings"

	"github.com/agentic-research/mdsql/internal/mdast"
	gast "github.com/yuin/goldmark/ast"
	east "github.com/yuin/goldmark/extension/ast"
	"github.com/yuin/goldmark/util"
)

// textRun accumulates adjacent goldmark text segments into one mdast Text.
type textRun struct {
	value   bytes.Buffer
	start   int
	stop    int
	started bool
	// soft is set while the run ends in a soft line break; bare is the
	// run's end without it.
	soft bool
	bare int
}

func (c *converter) inlines(parent gast.Node) []mdast.Node {
	var out []mdast.Node
	var run textRun

	flush := func() {
		if t := c.flushText(&run); t != nil {
			out = append(out, t)
		}
	}

	for n := parent.FirstChild(); n != nil; n = n.NextSibling() {
		switch v := n.(type) {
		case *gast.Text:
			c.addText(&run, v)
			if v.HardLineBreak() {
				flush()
				out = append(out, c.hardBreak(v))
			}
		case *gast.String:
			run.value.Write(v.Value)
			run.soft = false
		case *east.TaskCheckBox, *east.FootnoteBacklink:
			// The checkbox is recorded on the list item; backlinks are rendering
			// artifacts.
		default:
			flush()
			if m := c.inline(n); m != nil {
				out = append(out, m)
			}
		}
	}
	if run.soft && parent.Type() == gast.TypeBlock {
		run.value.Truncate(run.value.Len() - 1)
		run.stop = run.bare
	}
	flush()
	return out
}

func (c *converter) addText(r *textRun, t *gast.Text) {
	seg := t.Segment
	if !r.started {
		r.start = seg.Start
		r.started = true
	}

	var v []byte
	if t.IsRaw() {
		v = seg.Value(c.src)
	} else {
		v = []byte(decode(seg.Value(c.src)))
	}
	stop := seg.Stop
	r.soft = false

	switch {
	case t.HardLineBreak():
		v = bytes.TrimRight(v, " \t")
	case t.SoftLineBreak():
		v = append(bytes.TrimRight(v, " \t"), '\n')
		r.soft = true
		r.bare = seg.Stop
		if end := c.lineEnd(seg.Stop); end < len(c.src) {
			stop = end + 1
		}
	}
	r.value.Write(v)
	r.stop = stop
}

func (c *converter) flushText(r *textRun) mdast.Node {
	defer func() { *r = textRun{} }()
	if r.value.Len() == 0 {
		return nil
	}
	t := &mdast.Text{Value: r.value.String()}
	if r.started {
		c.set(t, r.start, r.stop)
	}
	return t
}

func (c *converter) hardBreak(t *gast.Text) mdast.Node {
	br := &mdast.Break{}
	start := t.Segment.Stop
	if start >= len(c.src) || c.src[start] != '\\' {
		start = c.backOver(start, " \t")
	}
	end := c.lineEnd(t.Segment.Stop)
	if end < len(c.src) {
		end++
	}
	c.set(br, start, end)
	return br
}

func (c *converter) inline(n gast.Node) mdast.Node {
	switch v := n.(type) {
	case *gast.CodeSpan:
		return c.codeSpan(v)
	case *gast.Emphasis:
		return c.emphasis(v)
	case *gast.Link:
		return c.link(v)
	case *gast.Image:
		return c.image(v)
	case *gast.AutoLink:
		return c.autoLink(v)
	case *gast.RawHTML:
		return c.rawHTML(v)
	case *east.Strikethrough:
		return c.strikethrough(v)
	case *east.FootnoteLink:
		return c.footnoteReference(v)
	case *InlineMath:
		m := &mdast.InlineMath{Value: string(v.Value(c.src))}
		c.set(m, v.Start, v.Stop)
		return m
	}
	return nil
}

func (c *converter) codeSpan(n *gast.CodeSpan) mdast.Node {
	var b bytes.Buffer
	start, stop := -1, -1
	for ch := n.FirstChild(); ch != nil; ch = ch.NextSibling() {
		switch t := ch.(type) {
		case *gast.Text:
			if start < 0 {
				start = t.Segment.Start
			}
			stop = t.Segment.Stop
			b.Write(t.Segment.Value(c.src))
		case *gast.String:
			b.Write(t.Value)
		}
	}
	code := &mdast.InlineCode{Value: strings.ReplaceAll(b.String(), "\n", " ")}
	if start < 0 {
		return code
	}

	if start > 1 && isBlankByte(c.src[start-1]) && c.src[start-2] == '`' {
		start--
	}
	start = c.backOver(start, "`")
	if stop < len(c.src)-1 && isBlankByte(c.src[stop]) && c.src[stop+1] == '`' {
		stop++
	}
	stop = c.forwardOver(stop, "`")
	c.set(code, start, stop)
	return code
}

func (c *converter) emphasis(n *gast.Emphasis) mdast.Node {
	var node mdast.Node
	kids := c.inlines(n)
	if n.Level >= 2 {
		node = &mdast.Strong{Parent: mdast.Parent{Children: kids}}
	} else {
		node = &mdast.Emphasis{Parent: mdast.Parent{Children: kids}}
	}

	s, e, ok := span(kids)
	if !ok {
		return node
	}
	start, end := s-n.Level, e+n.Level
	if start < 0 || end > len(c.src) {
		return node
	}
	if !isDelimiterRun(c.src[start:s]) || !isDelimiterRun(c.src[e:end]) {
		return node
	}
	c.set(node, start, end)
	return node
}

func isDelimiterRun(b []byte) bool {
	for _, ch := range b {
		if ch != '*' && ch != '_' {
			return false
		}
	}
	return true
}

func (c *converter) strikethrough(n *east.Strikethrough) mdast.Node {
	del := &mdast.Delete{}
	del.Children = c.inlines(n)
	s, e, ok := span(del.Children)
	if !ok {
		return del
	}
	start, end := c.backOver(s, "~"), c.forwardOver(e, "~")
	if start == s || end == e {
		return del
	}
	c.set(del, start, end)
	return del
}

// linkTail describes what follows a link label.
type linkTail struct {
	end    int
	inline bool
	kind   mdast.ReferenceKind
	label  string
}

// labelBounds finds the [ and ] around a link label whose children span
// [s, e), or scans forward from from when the label is empty.
func (c *converter) labelBounds(from, s, e int, ok bool) (open, close int) {
	if ok && s > 0 && c.src[s-1] == '[' {
		open = s - 1
	} else {
		open = c.index(from, []byte("["))
		if open < 0 {
			return -1, -1
		}
	}
	if ok && e < len(c.src) && c.src[e] == ']' && e > open {
		return open, e
	}
	return open, c.closeBracket(open, '[', ']')
}

func (c *converter) tail(open, close int) linkTail {
	next := close + 1
	if next < len(c.src) && c.src[next] == '(' {
		if p := c.closeParen(next); p >= 0 {
			return linkTail{end: p + 1, inline: true}
		}
	}
	label := string(c.src[open+1 : close])
	if next < len(c.src) && c.src[next] == '[' {
		if rb := c.closeBracket(next, '[', ']'); rb >= 0 {
			second := c.src[next+1 : rb]
			if util.IsBlank(second) {
				return linkTail{end: rb + 1, kind: mdast.ReferenceCollapsed, label: label}
			}
			if c.refs[util.ToLinkReference(second)] {
				return linkTail{end: rb + 1, kind: mdast.ReferenceFull, label: string(second)}
			}
		}
	}
	return linkTail{end: close + 1, kind: mdast.ReferenceShortcut, label: label}
}

// closeParen finds the ) ending an inline link destination and title.
func (c *converter) closeParen(open int) int {
	depth := 0
	var quote byte
	angle := false
	for i := open; i < len(c.src); i++ {
		ch := c.src[i]
		switch {
		case ch == '\\':
			i++
		case quote != 0:
			if ch == quote {
				quote = 0
			}
		case angle:
			if ch == '>' {
				angle = false
			}
		case ch == '<' && util.IsBlank(c.src[open+1:i]):
			angle = true
		case (ch == '"' || ch == '\'') && isBlankByte(c.src[i-1]):
			quote = ch
		case ch == '(':
			depth++
		case ch == ')':
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}

func optional(b []byte) *string {
	if len(b) == 0 {
		return nil
	}
	s := decode(b)
	return &s
}

func (c *converter) link(n *gast.Link) mdast.Node {
	from := c.cursor
	kids := c.inlines(n)
	s, e, ok := span(kids)

	open, close := c.labelBounds(from, s, e, ok)
	if open < 0 || close < 0 {
		return &mdast.Link{URL: decode(n.Destination), Title: optional(n.Title), Parent: mdast.Parent{Children: kids}}
	}

	t := c.tail(open, close)
	var node mdast.Node
	if t.inline {
		node = &mdast.Link{URL: decode(n.Destination), Title: optional(n.Title), Parent: mdast.Parent{Children: kids}}
	} else {
		label := t.label
		node = &mdast.LinkReference{
			Identifier:    util.ToLinkReference([]byte(label)),
			Label:         &label,
			ReferenceKind: t.kind,
			Parent:        mdast.Parent{Children: kids},
		}
	}
	c.set(node, open, t.end)
	return node
}

func (c *converter) image(n *gast.Image) mdast.Node {
	from := c.cursor
	kids := c.inlines(n)
	alt := plainText(kids)
	s, e, ok := span(kids)

	open, close := c.labelBounds(from, s, e, ok)
	if open < 1 || close < 0 || c.src[open-1] != '!' {
		return &mdast.Image{Alt: alt, URL: decode(n.Destination), Title: optional(n.Title)}
	}

	t := c.tail(open, close)
	var node mdast.Node
	if t.inline {
		node = &mdast.Image{Alt: alt, URL: decode(n.Destination), Title: optional(n.Title)}
	} else {
		label := t.label
		node = &mdast.ImageReference{
			Alt:           alt,
			Identifier:    util.ToLinkReference([]byte(label)),
			Label:         &label,
			ReferenceKind: t.kind,
		}
	}
	c.set(node, open-1, t.end)
	return node
}

// plainText is the textual content of nodes, as used for image alt text.
func plainText(nodes []mdast.Node) string {
	var b strings.Builder
	stack := make([]mdast.Node, 0, len(nodes))
	for i := len(nodes) - 1; i >= 0; i-- {
		stack = append(stack, nodes[i])
	}
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		switch v := n.(type) {
		case *mdast.Text:
			b.WriteString(v.Value)
		case *mdast.InlineCode:
			b.WriteString(v.Value)
		case *mdast.InlineMath:
			b.WriteString(v.Value)
		case *mdast.Image:
			b.WriteString(v.Alt)
		case *mdast.ImageReference:
			b.WriteString(v.Alt)
		}
		kids := mdast.Children(n)
		for i := len(kids) - 1; i >= 0; i-- {
			stack = append(stack, kids[i])
		}
	}
	return b.String()
}

func (c *converter) autoLink(n *gast.AutoLink) mdast.Node {
	label := n.Label(c.src)
	link := &mdast.Link{URL: string(n.URL(c.src))}
	text := &mdast.Text{Value: string(label)}
	link.Append(text)

	at := c.index(c.cursor, label)
	if at < 0 {
		return link
	}
	start, end := at, at+len(label)
	c.set(text, start, end)
	if start > 0 && end < len(c.src) && c.src[start-1] == '<' && c.src[end] == '>' {
		start--
		end++
	}
	c.set(link, start, end)
	return link
}

func (c *converter) rawHTML(n *gast.RawHTML) mdast.Node {
	segs := n.Segments
	var b bytes.Buffer
	for i := 0; i < segs.Len(); i++ {
		seg := segs.At(i)
		b.Write(seg.Value(c.src))
	}
	h := &mdast.Html{Value: b.String()}
	if segs.Len() > 0 {
		c.set(h, segs.At(0).Start, segs.At(segs.Len()-1).Stop)
	}
	return h
}

func (c *converter) footnoteReference(n *east.FootnoteLink) mdast.Node {
	ref := &mdast.FootnoteReference{}
	fn := c.notes[n.Index]
	if fn == nil {
		return ref
	}
	label := string(fn.Ref)
	ref.Identifier = util.ToLinkReference(fn.Ref)
	ref.Label = &label

	needle := []byte("[^" + label + "]")
	if at := c.index(c.cursor, needle); at >= 0 {
		c.set(ref, at, at+len(needle))
	}
	return ref
}
