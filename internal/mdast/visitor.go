package mdast

// Visitor has one method per node kind. Adding a kind to the union breaks every
// implementation until it handles the new kind.
type Visitor interface {
	VisitRoot(*Root)
	VisitBlockQuote(*BlockQuote)
	VisitFootnoteDefinition(*FootnoteDefinition)
	VisitMdxJsxFlowElement(*MdxJsxFlowElement)
	VisitList(*List)
	VisitMdxjsEsm(*MdxjsEsm)
	VisitToml(*Toml)
	VisitYaml(*Yaml)
	VisitBreak(*Break)
	VisitInlineCode(*InlineCode)
	VisitInlineMath(*InlineMath)
	VisitDelete(*Delete)
	VisitEmphasis(*Emphasis)
	VisitMdxTextExpression(*MdxTextExpression)
	VisitFootnoteReference(*FootnoteReference)
	VisitHtml(*Html)
	VisitImage(*Image)
	VisitImageReference(*ImageReference)
	VisitMdxJsxTextElement(*MdxJsxTextElement)
	VisitLink(*Link)
	VisitLinkReference(*LinkReference)
	VisitStrong(*Strong)
	VisitText(*Text)
	VisitCode(*Code)
	VisitMath(*Math)
	VisitMdxFlowExpression(*MdxFlowExpression)
	VisitHeading(*Heading)
	VisitTable(*Table)
	VisitThematicBreak(*ThematicBreak)
	VisitTableRow(*TableRow)
	VisitTableCell(*TableCell)
	VisitListItem(*ListItem)
	VisitDefinition(*Definition)
	VisitParagraph(*Paragraph)
}
