package markdown

import (
	"github.com/yuin/goldmark"
	gast "github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer"
	"github.com/yuin/goldmark/renderer/html"
	"github.com/yuin/goldmark/text"
	"github.com/yuin/goldmark/util"
)

// MathBlock is a $$-fenced block. Start and Stop bound the whole construct
// including fences; Meta is the text after the opening fence.
type MathBlock struct {
	gast.BaseBlock
	Meta    text.Segment
	HasMeta bool
	Start   int
	Stop    int

	fence  int
	indent int
	closed bool
}

var KindMathBlock = gast.NewNodeKind("MathBlock")

func (n *MathBlock) Kind() gast.NodeKind { return KindMathBlock }

func (n *MathBlock) IsRaw() bool { return true }

func (n *MathBlock) Dump(source []byte, level int) {
	gast.DumpHelper(n, source, level, nil, nil)
}

// InlineMath is $...$ text. Content is the span between the dollar runs.
type InlineMath struct {
	gast.BaseInline
	Content text.Segment
	Start   int
	Stop    int
}

var KindInlineMath = gast.NewNodeKind("InlineMath")

func (n *InlineMath) Kind() gast.NodeKind { return KindInlineMath }

func (n *InlineMath) Dump(source []byte, level int) {
	gast.DumpHelper(n, source, level, nil, nil)
}

// Value is the literal math, with one space stripped from each side when both
// sides have one, as for code spans.
func (n *InlineMath) Value(source []byte) []byte {
	v := n.Content.Value(source)
	if len(v) >= 2 && v[0] == ' ' && v[len(v)-1] == ' ' && !util.IsBlank(v) {
		v = v[1 : len(v)-1]
	}
	return v
}

// ---------------------------------------------------------------------------
// block parser
// ---------------------------------------------------------------------------

type mathBlockParser struct{}

func (b *mathBlockParser) Trigger() []byte { return []byte{'$'} }

func (b *mathBlockParser) Open(parent gast.Node, reader text.Reader, pc parser.Context) (gast.Node, parser.State) {
	line, segment := reader.PeekLine()
	pos := pc.BlockOffset()
	if pos < 0 || pos >= len(line) || line[pos] != '$' {
		return nil, parser.NoChildren
	}
	i := pos
	for i < len(line) && line[i] == '$' {
		i++
	}
	if i-pos < 2 {
		return nil, parser.NoChildren
	}

	node := &MathBlock{fence: i - pos, indent: pos, Start: segment.Start + pos}
	rest := line[i:]
	meta := util.TrimRightSpace(util.TrimLeftSpace(rest))
	if len(meta) > 0 {
		// "$$x$$" on one line is inline math, not a block.
		for _, c := range meta {
			if c == '$' {
				return nil, parser.NoChildren
			}
		}
		start := segment.Start + i + util.TrimLeftSpaceLength(rest)
		node.Meta = text.NewSegment(start, start+len(meta))
		node.HasMeta = true
	}
	node.Stop = segment.Start + len(util.TrimRightSpace(line))
	return node, parser.NoChildren
}

func (b *mathBlockParser) Continue(node gast.Node, reader text.Reader, pc parser.Context) parser.State {
	n := node.(*MathBlock)
	line, segment := reader.PeekLine()
	if line == nil {
		return parser.Close
	}

	w, pos := util.IndentWidth(line, reader.LineOffset())
	if w < 4 {
		i := pos
		for i < len(line) && line[i] == '$' {
			i++
		}
		if i-pos >= n.fence && util.IsBlank(line[i:]) {
			n.closed = true
			n.Stop = segment.Start + i
			newline := 1
			if line[len(line)-1] != '\n' {
				newline = 0
			}
			reader.Advance(segment.Stop - segment.Start - newline + segment.Padding)
			return parser.Close
		}
	}

	skip := 0
	for skip < n.indent && skip < len(line) && line[skip] == ' ' {
		skip++
	}
	seg := text.NewSegment(segment.Start+skip, segment.Stop)
	seg.ForceNewline = true
	node.Lines().Append(seg)
	n.Stop = segment.Start + len(util.TrimRightSpace(line))
	reader.AdvanceToEOL()
	return parser.Continue | parser.NoChildren
}

func (b *mathBlockParser) Close(node gast.Node, reader text.Reader, pc parser.Context) {}

func (b *mathBlockParser) CanInterruptParagraph() bool { return true }

func (b *mathBlockParser) CanAcceptIndentedLine() bool { return false }

// ---------------------------------------------------------------------------
// inline parser
// ---------------------------------------------------------------------------

type inlineMathParser struct{}

func (p *inlineMathParser) Trigger() []byte { return []byte{'$'} }

func (p *inlineMathParser) Parse(parent gast.Node, block text.Reader, pc parser.Context) gast.Node {
	line, segment := block.PeekLine()
	opener := 0
	for opener < len(line) && line[opener] == '$' {
		opener++
	}

	for i := opener; i < len(line); {
		if line[i] == '\\' && i+1 < len(line) {
			i += 2
			continue
		}
		if line[i] != '$' {
			i++
			continue
		}
		j := i
		for j < len(line) && line[j] == '$' {
			j++
		}
		if j-i == opener && i > opener {
			node := &InlineMath{
				Content: text.NewSegment(segment.Start+opener, segment.Start+i),
				Start:   segment.Start,
				Stop:    segment.Start + j,
			}
			block.Advance(j)
			return node
		}
		i = j
	}
	return nil
}

// ---------------------------------------------------------------------------
// renderer
// ---------------------------------------------------------------------------

type mathRenderer struct {
	html.Config
}

func (r *mathRenderer) RegisterFuncs(reg renderer.NodeRendererFuncRegisterer) {
	reg.Register(KindMathBlock, r.renderBlock)
	reg.Register(KindInlineMath, r.renderInline)
}

func (r *mathRenderer) renderBlock(w util.BufWriter, source []byte, node gast.Node, entering bool) (gast.WalkStatus, error) {
	if !entering {
		return gast.WalkContinue, nil
	}
	_, _ = w.WriteString(`<pre><code class="language-math math-display">`)
	lines := node.Lines()
	for i := 0; i < lines.Len(); i++ {
		line := lines.At(i)
		html.DefaultWriter.RawWrite(w, line.Value(source))
	}
	_, _ = w.WriteString("</code></pre>\n")
	return gast.WalkSkipChildren, nil
}

func (r *mathRenderer) renderInline(w util.BufWriter, source []byte, node gast.Node, entering bool) (gast.WalkStatus, error) {
	if !entering {
		return gast.WalkContinue, nil
	}
	_, _ = w.WriteString(`<code class="language-math math-inline">`)
	html.DefaultWriter.RawWrite(w, node.(*InlineMath).Value(source))
	_, _ = w.WriteString("</code>")
	return gast.WalkSkipChildren, nil
}

// ---------------------------------------------------------------------------
// extension
// ---------------------------------------------------------------------------

type mathExtension struct{}

// Math adds $inline$ and $$block$$ math to a goldmark instance.
var Math goldmark.Extender = &mathExtension{}

func (e *mathExtension) Extend(m goldmark.Markdown) {
	m.Parser().AddOptions(
		parser.WithBlockParsers(util.Prioritized(&mathBlockParser{}, 710)),
		parser.WithInlineParsers(util.Prioritized(&inlineMathParser{}, 150)),
	)
	m.Renderer().AddOptions(
		renderer.WithNodeRenderers(util.Prioritized(&mathRenderer{Config: html.NewConfig()}, 500)),
	)
}
