package projection

import "github.com/agentic-research/mdsql/internal/mdast"

// Details returns the attributes of n keyed by their column-facing names, or
// nil when the kind has none. Unset optional attributes map to nil.
func Details(n mdast.Node) map[string]any {
	var dv detailsVisitor
	n.Accept(&dv)
	return dv.out
}

type detailsVisitor struct {
	out map[string]any
}

func str(p *string) any {
	if p == nil {
		return nil
	}
	return *p
}

func (v *detailsVisitor) VisitHeading(n *mdast.Heading) {
	v.out = map[string]any{"depth": int64(n.Depth)}
}

func (v *detailsVisitor) VisitList(n *mdast.List) {
	var start any
	if n.Start != nil {
		start = int64(*n.Start)
	}
	v.out = map[string]any{"ordered": n.Ordered, "start": start, "spread": n.Spread}
}

func (v *detailsVisitor) VisitListItem(n *mdast.ListItem) {
	var checked any
	if n.Checked != nil {
		checked = *n.Checked
	}
	v.out = map[string]any{"spread": n.Spread, "checked": checked}
}

func (v *detailsVisitor) VisitLink(n *mdast.Link) {
	v.out = map[string]any{"url": n.URL, "title": str(n.Title)}
}

func (v *detailsVisitor) VisitDefinition(n *mdast.Definition) {
	v.out = map[string]any{
		"url":        n.URL,
		"title":      str(n.Title),
		"identifier": n.Identifier,
		"label":      str(n.Label),
	}
}

func (v *detailsVisitor) VisitLinkReference(n *mdast.LinkReference) {
	v.out = map[string]any{
		"identifier":     n.Identifier,
		"label":          str(n.Label),
		"reference_kind": n.ReferenceKind.String(),
	}
}

func (v *detailsVisitor) VisitImageReference(n *mdast.ImageReference) {
	v.out = map[string]any{
		"alt":            n.Alt,
		"identifier":     n.Identifier,
		"label":          str(n.Label),
		"reference_kind": n.ReferenceKind.String(),
	}
}

func (v *detailsVisitor) VisitImage(n *mdast.Image) {
	v.out = map[string]any{"alt": n.Alt, "url": n.URL, "title": str(n.Title)}
}

func (v *detailsVisitor) VisitCode(n *mdast.Code) {
	v.out = map[string]any{"language": str(n.Lang), "meta": str(n.Meta)}
}

func (v *detailsVisitor) VisitMath(n *mdast.Math) {
	v.out = map[string]any{"meta": str(n.Meta)}
}

func (v *detailsVisitor) VisitFootnoteReference(n *mdast.FootnoteReference) {
	v.out = map[string]any{"identifier": n.Identifier, "label": str(n.Label)}
}

// Cells without an alignment report null.
func (v *detailsVisitor) VisitTable(n *mdast.Table) {
	align := make([]any, len(n.Align))
	for i, a := range n.Align {
		if a != mdast.AlignNone {
			align[i] = a.String()
		}
	}
	v.out = map[string]any{"align": align}
}

func (v *detailsVisitor) VisitRoot(*mdast.Root)                             {}
func (v *detailsVisitor) VisitBlockQuote(*mdast.BlockQuote)                 {}
func (v *detailsVisitor) VisitFootnoteDefinition(*mdast.FootnoteDefinition) {}
func (v *detailsVisitor) VisitMdxJsxFlowElement(*mdast.MdxJsxFlowElement)   {}
func (v *detailsVisitor) VisitMdxjsEsm(*mdast.MdxjsEsm)                     {}
func (v *detailsVisitor) VisitToml(*mdast.Toml)                             {}
func (v *detailsVisitor) VisitYaml(*mdast.Yaml)                             {}
func (v *detailsVisitor) VisitBreak(*mdast.Break)                           {}
func (v *detailsVisitor) VisitInlineCode(*mdast.InlineCode)                 {}
func (v *detailsVisitor) VisitInlineMath(*mdast.InlineMath)                 {}
func (v *detailsVisitor) VisitDelete(*mdast.Delete)                         {}
func (v *detailsVisitor) VisitEmphasis(*mdast.Emphasis)                     {}
func (v *detailsVisitor) VisitMdxTextExpression(*mdast.MdxTextExpression)   {}
func (v *detailsVisitor) VisitHtml(*mdast.Html)                             {}
func (v *detailsVisitor) VisitMdxJsxTextElement(*mdast.MdxJsxTextElement)   {}
func (v *detailsVisitor) VisitStrong(*mdast.Strong)                         {}
func (v *detailsVisitor) VisitText(*mdast.Text)                             {}
func (v *detailsVisitor) VisitMdxFlowExpression(*mdast.MdxFlowExpression)   {}
func (v *detailsVisitor) VisitThematicBreak(*mdast.ThematicBreak)           {}
func (v *detailsVisitor) VisitTableRow(*mdast.TableRow)                     {}
func (v *detailsVisitor) VisitTableCell(*mdast.TableCell)                   {}
func (v *detailsVisitor) VisitParagraph(*mdast.Paragraph)                   {}
