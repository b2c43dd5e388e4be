package markdown

import (
	"github.com/yuin/goldmark"
	gast "github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	east "github.com/yuin/goldmark/extension/ast"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer"
	"github.com/yuin/goldmark/text"
	"github.com/yuin/goldmark/util"
)

// linkDefinition marks where a link reference definition was written. goldmark
// lifts definitions out of paragraphs into the parser context; this node keeps
// their place in the tree. Start and Stop are -1 when the text could not be
// located.
type linkDefinition struct {
	gast.BaseBlock
	Reference parser.Reference
	Start     int
	Stop      int
}

var kindLinkDefinition = gast.NewNodeKind("LinkDefinition")

func (n *linkDefinition) Kind() gast.NodeKind { return kindLinkDefinition }

func (n *linkDefinition) Dump(source []byte, level int) {
	gast.DumpHelper(n, source, level, map[string]string{
		"Label": string(n.Reference.Label()),
	}, nil)
}

// noteDefinition marks where a footnote definition was written. goldmark moves
// footnotes into a list at the end of the document and drops the ones nothing
// references.
type noteDefinition struct {
	gast.BaseBlock
	Footnote *east.Footnote
	Start    int
}

var kindNoteDefinition = gast.NewNodeKind("NoteDefinition")

func (n *noteDefinition) Kind() gast.NodeKind { return kindNoteDefinition }

func (n *noteDefinition) Dump(source []byte, level int) {
	gast.DumpHelper(n, source, level, map[string]string{
		"Ref": string(n.Footnote.Ref),
	}, nil)
}

// referenceRecorder sees every definition goldmark parses, duplicates
// included, in source order.
type referenceRecorder struct {
	parser.Context
	refs []parser.Reference
}

func (r *referenceRecorder) AddReference(ref parser.Reference) {
	r.refs = append(r.refs, ref)
	r.Context.AddReference(ref)
}

// definitionTransformer runs goldmark's link reference transformer and leaves
// a linkDefinition in place of each definition it removes.
type definitionTransformer struct{}

func (t *definitionTransformer) Transform(node *gast.Paragraph, reader text.Reader, pc parser.Context) {
	lines := node.Lines()
	if lines.Len() == 0 {
		return
	}
	segs := make([]text.Segment, lines.Len())
	for i := range segs {
		segs[i] = lines.At(i)
	}
	parent, prev := node.Parent(), node.PreviousSibling()
	blank := node.HasBlankPreviousLines()

	rec := &referenceRecorder{Context: pc}
	parser.LinkReferenceParagraphTransformer.Transform(node, reader, rec)
	if len(rec.refs) == 0 {
		return
	}

	// A paragraph of nothing but definitions comes back as an empty
	// TextBlock standing where the paragraph was.
	var anchor gast.Node = node
	emptied := node.Parent() == nil
	if emptied {
		if prev != nil {
			anchor = prev.NextSibling()
		} else {
			anchor = parent.FirstChild()
		}
	}

	spans := definitionSpans(reader.Source(), segs, rec.refs)
	for i, ref := range rec.refs {
		d := &linkDefinition{Reference: ref, Start: spans[i][0], Stop: spans[i][1]}
		if i == 0 {
			d.SetBlankPreviousLines(blank)
		}
		if anchor != nil {
			parent.InsertBefore(parent, anchor, d)
		} else {
			parent.AppendChild(parent, d)
		}
	}
	if emptied && anchor != nil {
		parent.RemoveChild(parent, anchor)
	}
}

// definitionSpans locates each definition in the paragraph lines it was
// parsed from. Definitions fill the leading lines, one after another.
func definitionSpans(src []byte, lines []text.Segment, refs []parser.Reference) [][2]int {
	var buf []byte
	var offs []int
	for _, seg := range lines {
		for i := seg.Start; i < seg.Stop && i < len(src); i++ {
			buf = append(buf, src[i])
			offs = append(offs, i)
		}
	}

	out := make([][2]int, len(refs))
	pos := 0
	for i, ref := range refs {
		out[i] = [2]int{-1, -1}
		pos = skipBlank(buf, pos)
		if pos >= len(buf) || buf[pos] != '[' {
			continue
		}
		end := scanDefinition(buf, pos, len(ref.Title()) > 0)
		if end <= pos {
			continue
		}
		out[i] = [2]int{offs[pos], offs[end-1] + 1}
		pos = end
		for pos < len(buf) && buf[pos] != '\n' {
			pos++
		}
	}
	return out
}

// scanDefinition returns the end of the definition whose label opens at pos,
// or -1.
func scanDefinition(buf []byte, pos int, titled bool) int {
	i := scanClosure(buf, pos+1, ']')
	if i < 0 || i+1 >= len(buf) || buf[i+1] != ':' {
		return -1
	}

	i = skipBlank(buf, i+2)
	switch {
	case i >= len(buf):
		return -1
	case buf[i] == '<':
		j := scanClosure(buf, i+1, '>')
		if j < 0 {
			return -1
		}
		i = j + 1
	default:
		for i < len(buf) && buf[i] > ' ' {
			if buf[i] == '\\' {
				i++
			}
			i++
		}
		if i > len(buf) {
			i = len(buf)
		}
	}
	end := i
	if !titled {
		return end
	}

	i = skipBlank(buf, end)
	if i >= len(buf) {
		return end
	}
	closer := buf[i]
	if closer == '(' {
		closer = ')'
	}
	if j := scanClosure(buf, i+1, closer); j >= 0 {
		return j + 1
	}
	return end
}

// scanClosure finds the first unescaped close at or after pos.
func scanClosure(buf []byte, pos int, close byte) int {
	for i := pos; i < len(buf); i++ {
		switch buf[i] {
		case '\\':
			i++
		case close:
			return i
		}
	}
	return -1
}

func skipBlank(buf []byte, pos int) int {
	for pos < len(buf) && isBlankByte(buf[pos]) {
		pos++
	}
	return pos
}

var noteStartsKey = parser.NewContextKey()

func noteStarts(pc parser.Context) map[gast.Node]int {
	return pc.ComputeIfAbsent(noteStartsKey, func() any {
		return map[gast.Node]int{}
	}).(map[gast.Node]int)
}

// noteBlockParser wraps goldmark's footnote block parser, remembering where
// each definition opens and leaving a noteDefinition behind when goldmark
// moves the footnote away.
type noteBlockParser struct {
	parser.BlockParser
}

func (b *noteBlockParser) Open(parent gast.Node, reader text.Reader, pc parser.Context) (gast.Node, parser.State) {
	_, seg := reader.PeekLine()
	pos := pc.BlockOffset()
	node, state := b.BlockParser.Open(parent, reader, pc)
	if node == nil {
		return nil, state
	}
	start := seg.Start + pos - seg.Padding
	if start < seg.Start {
		start = seg.Start
	}
	noteStarts(pc)[node] = start
	return node, state
}

func (b *noteBlockParser) Close(node gast.Node, reader text.Reader, pc parser.Context) {
	if fn, ok := node.(*east.Footnote); ok && node.Parent() != nil {
		def := &noteDefinition{Footnote: fn, Start: -1}
		if start, ok := noteStarts(pc)[node]; ok {
			def.Start = start
		}
		def.SetBlankPreviousLines(node.HasBlankPreviousLines())
		parent := node.Parent()
		parent.InsertBefore(parent, node, def)
	}
	b.BlockParser.Close(node, reader, pc)
}

type footnoteExtension struct{}

// Footnotes is goldmark's footnote extension with definitions kept in place.
var Footnotes = &footnoteExtension{}

func (e *footnoteExtension) Extend(m goldmark.Markdown) {
	m.Parser().AddOptions(
		parser.WithBlockParsers(
			util.Prioritized(&noteBlockParser{BlockParser: extension.NewFootnoteBlockParser()}, 999),
		),
		parser.WithInlineParsers(
			util.Prioritized(extension.NewFootnoteParser(), 101),
		),
		parser.WithASTTransformers(
			util.Prioritized(extension.NewFootnoteASTTransformer(), 999),
		),
	)
	m.Renderer().AddOptions(renderer.WithNodeRenderers(
		util.Prioritized(extension.NewFootnoteHTMLRenderer(), 500),
	))
}

// markerRenderer renders nothing for the nodes that only carry positions.
type markerRenderer struct{}

func (r *markerRenderer) RegisterFuncs(reg renderer.NodeRendererFuncRegisterer) {
	for _, k := range []gast.NodeKind{kindLinkDefinition, kindNoteDefinition, kindFrontMatter} {
		reg.Register(k, r.skip)
	}
}

func (r *markerRenderer) skip(w util.BufWriter, source []byte, n gast.Node, entering bool) (gast.WalkStatus, error) {
	return gast.WalkSkipChildren, nil
}
