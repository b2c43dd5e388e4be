package markdown

import (
	"bytes"

	"github.com/yuin/goldmark"
	gast "github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/text"
	"github.com/yuin/goldmark/util"
	"go.abhg.dev/goldmark/frontmatter"
)

// frontMatterBlock is a YAML (---) or TOML (+++) block at the very start of a
// document. Start and Stop cover both fences; Content is the text between
// them without its final newline.
type frontMatterBlock struct {
	gast.BaseBlock
	Toml    bool
	Content text.Segment
	Start   int
	Stop    int
}

var kindFrontMatter = gast.NewNodeKind("FrontMatter")

func (n *frontMatterBlock) Kind() gast.NodeKind { return kindFrontMatter }

func (n *frontMatterBlock) IsRaw() bool { return true }

func (n *frontMatterBlock) Dump(source []byte, level int) {
	gast.DumpHelper(n, source, level, map[string]string{
		"Content": string(n.Content.Value(source)),
	}, nil)
}

var frontMatterKey = parser.NewContextKey()

// frontMatterParser lets go.abhg.dev/goldmark/frontmatter claim the block and
// leaves a frontMatterBlock where it stood, since the library removes its own
// node from the tree. Fences are exactly three characters and the block must
// be closed.
type frontMatterParser struct {
	*frontmatter.Parser
}

func (p *frontMatterParser) Open(parent gast.Node, reader text.Reader, pc parser.Context) (gast.Node, parser.State) {
	if _, ok := parent.(*gast.Document); !ok {
		return nil, parser.NoChildren
	}
	line, seg := reader.PeekLine()
	if seg.Start != 0 || len(line) == 0 || !isFenceLine(line, line[0]) {
		return nil, parser.NoChildren
	}
	src := reader.Source()
	fence := line[0]
	closing := closingFence(src, seg.Stop, fence)
	if closing < 0 {
		return nil, parser.NoChildren
	}

	node, state := p.Parser.Open(parent, reader, pc)
	if node == nil {
		return nil, state
	}
	stop := seg.Stop
	if closing > seg.Stop {
		stop = closing - 1
	}
	pc.Set(frontMatterKey, &frontMatterBlock{
		Toml:    fence == '+',
		Content: text.NewSegment(seg.Stop, stop),
		Start:   seg.Start,
		Stop:    lineEnd(src, closing),
	})
	return node, state
}

func (p *frontMatterParser) Close(node gast.Node, reader text.Reader, pc parser.Context) {
	if fm, ok := pc.Get(frontMatterKey).(*frontMatterBlock); ok && node.Parent() != nil {
		parent := node.Parent()
		parent.InsertBefore(parent, node, fm)
		pc.Set(frontMatterKey, nil)
	}
	p.Parser.Close(node, reader, pc)
}

// closingFence is the start of the first fence line at or after from, or -1.
func closingFence(src []byte, from int, fence byte) int {
	for start := from; start < len(src); {
		end := lineEnd(src, start)
		if isFenceLine(src[start:end], fence) {
			return start
		}
		if end >= len(src) {
			break
		}
		start = end + 1
	}
	return -1
}

func isFenceLine(line []byte, fence byte) bool {
	if fence != '-' && fence != '+' {
		return false
	}
	line = bytes.TrimSuffix(line, []byte("\n"))
	line = bytes.TrimSuffix(line, []byte("\r"))
	return len(line) == 3 && line[0] == fence && line[1] == fence && line[2] == fence
}

type frontMatterExtension struct{}

// FrontMatter recognizes YAML and TOML front matter.
var FrontMatter = &frontMatterExtension{}

func (e *frontMatterExtension) Extend(m goldmark.Markdown) {
	m.Parser().AddOptions(parser.WithBlockParsers(
		util.Prioritized(&frontMatterParser{Parser: &frontmatter.Parser{}}, 0),
	))
}
