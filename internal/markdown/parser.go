// Package markdown parses Markdown with goldmark and converts the result into
// the mdast node union, deriving source positions for every node it can.
package markdown

import (
	"bytes"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/agentic-research/mdsql/internal/config"
	"github.com/agentic-research/mdsql/internal/mdast"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer"
	"github.com/yuin/goldmark/renderer/html"
	"github.com/yuin/goldmark/text"
	"github.com/yuin/goldmark/util"
)

// ParseError reports input the parser refuses.
type ParseError struct {
	Offset int
	Reason string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("markdown: %s at byte %d", e.Reason, e.Offset)
}

// Parser turns Markdown into mdast trees. It is safe for concurrent use.
type Parser struct {
	opts config.Options
	md   goldmark.Markdown
}

// New builds a Parser with the extensions and HTML rendering settings in opts.
func New(opts config.Options) *Parser {
	var exts []goldmark.Extender
	if opts.Extensions.GFM {
		exts = append(exts, extension.GFM)
	}
	if opts.Extensions.Footnotes {
		exts = append(exts, Footnotes)
	}
	if opts.Extensions.FrontMatter {
		exts = append(exts, FrontMatter)
	}
	if opts.Extensions.Math {
		exts = append(exts, Math)
	}

	ropts := []renderer.Option{
		renderer.WithNodeRenderers(util.Prioritized(&markerRenderer{}, 500)),
	}
	if opts.HTML.Unsafe {
		ropts = append(ropts, html.WithUnsafe())
	}
	if opts.HTML.HardWraps {
		ropts = append(ropts, html.WithHardWraps())
	}

	return &Parser{
		opts: opts,
		md: goldmark.New(
			goldmark.WithExtensions(exts...),
			goldmark.WithParserOptions(
				parser.WithParagraphTransformers(util.Prioritized(&definitionTransformer{}, 99)),
			),
			goldmark.WithRendererOptions(ropts...),
		),
	}
}

// Options reports the settings the parser was built with.
func (p *Parser) Options() config.Options { return p.opts }

// Parse returns the syntax tree of input. It fails only on invalid UTF-8.
func (p *Parser) Parse(input string) (*mdast.Root, error) {
	if err := checkUTF8(input); err != nil {
		return nil, err
	}

	src := []byte(input)
	pc := parser.NewContext()
	doc := p.md.Parser().Parse(text.NewReader(src), parser.WithContext(pc))

	c := newConverter(src, pc.References())
	return c.document(doc), nil
}

// RenderHTML renders input as HTML. Front matter is dropped from the output.
func (p *Parser) RenderHTML(input string) (string, error) {
	if err := checkUTF8(input); err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := p.md.Convert([]byte(input), &buf); err != nil {
		return "", fmt.Errorf("render html: %w", err)
	}
	return strings.TrimSuffix(buf.String(), "\n"), nil
}

func checkUTF8(s string) error {
	if utf8.ValidString(s) {
		return nil
	}
	for i := 0; i < len(s); {
		r, size := utf8.DecodeRuneInString(s[i:])
		if r == utf8.RuneError && size == 1 {
			return &ParseError{Offset: i, Reason: "invalid UTF-8"}
		}
		i += size
	}
	return &ParseError{Offset: 0, Reason: "invalid UTF-8"}
}
