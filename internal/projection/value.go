package projection

import "github.com/agentic-research/mdsql/internal/mdast"

// Value returns the literal text of n. ok is false for kinds without one.
func Value(n mdast.Node) (v string, ok bool) {
	var lv literalVisitor
	n.Accept(&lv)
	return lv.value, lv.ok
}

type literalVisitor struct {
	value string
	ok    bool
}

func (v *literalVisitor) set(s string) { v.value, v.ok = s, true }

func (v *literalVisitor) VisitText(n *mdast.Text)                           { v.set(n.Value) }
func (v *literalVisitor) VisitHtml(n *mdast.Html)                           { v.set(n.Value) }
func (v *literalVisitor) VisitCode(n *mdast.Code)                           { v.set(n.Value) }
func (v *literalVisitor) VisitMath(n *mdast.Math)                           { v.set(n.Value) }
func (v *literalVisitor) VisitInlineCode(n *mdast.InlineCode)               { v.set(n.Value) }
func (v *literalVisitor) VisitInlineMath(n *mdast.InlineMath)               { v.set(n.Value) }
func (v *literalVisitor) VisitYaml(n *mdast.Yaml)                           { v.set(n.Value) }
func (v *literalVisitor) VisitToml(n *mdast.Toml)                           { v.set(n.Value) }
func (v *literalVisitor) VisitMdxjsEsm(n *mdast.MdxjsEsm)                   { v.set(n.Value) }
func (v *literalVisitor) VisitMdxFlowExpression(n *mdast.MdxFlowExpression) { v.set(n.Value) }
func (v *literalVisitor) VisitMdxTextExpression(n *mdast.MdxTextExpression) { v.set(n.Value) }

func (v *literalVisitor) VisitRoot(*mdast.Root)                             {}
func (v *literalVisitor) VisitBlockQuote(*mdast.BlockQuote)                 {}
func (v *literalVisitor) VisitFootnoteDefinition(*mdast.FootnoteDefinition) {}
func (v *literalVisitor) VisitMdxJsxFlowElement(*mdast.MdxJsxFlowElement)   {}
func (v *literalVisitor) VisitList(*mdast.List)                             {}
func (v *literalVisitor) VisitBreak(*mdast.Break)                           {}
func (v *literalVisitor) VisitDelete(*mdast.Delete)                         {}
func (v *literalVisitor) VisitEmphasis(*mdast.Emphasis)                     {}
func (v *literalVisitor) VisitFootnoteReference(*mdast.FootnoteReference)   {}
func (v *literalVisitor) VisitImage(*mdast.Image)                           {}
func (v *literalVisitor) VisitImageReference(*mdast.ImageReference)         {}
func (v *literalVisitor) VisitMdxJsxTextElement(*mdast.MdxJsxTextElement)   {}
func (v *literalVisitor) VisitLink(*mdast.Link)                             {}
func (v *literalVisitor) VisitLinkReference(*mdast.LinkReference)           {}
func (v *literalVisitor) VisitStrong(*mdast.Strong)                         {}
func (v *literalVisitor) VisitHeading(*mdast.Heading)                       {}
func (v *literalVisitor) VisitTable(*mdast.Table)                           {}
func (v *literalVisitor) VisitThematicBreak(*mdast.ThematicBreak)           {}
func (v *literalVisitor) VisitTableRow(*mdast.TableRow)                     {}
func (v *literalVisitor) VisitTableCell(*mdast.TableCell)                   {}
func (v *literalVisitor) VisitListItem(*mdast.ListItem)                     {}
func (v *literalVisitor) VisitDefinition(*mdast.Definition)                 {}
func (v *literalVisitor) VisitParagraph(*mdast.Paragraph)                   {}
