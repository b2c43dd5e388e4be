package mdast

// Kind discriminates the node union. Its String form is the node_type column.
type Kind uint8

const (
	KindRoot Kind = iota
	KindBlockQuote
	KindFootnoteDefinition
	KindMdxJsxFlowElement
	KindList
	KindMdxjsEsm
	KindToml
	KindYaml
	KindBreak
	KindInlineCode
	KindInlineMath
	KindDelete
	KindEmphasis
	KindMdxTextExpression
	KindFootnoteReference
	KindHtml
	KindImage
	KindImageReference
	KindMdxJsxTextElement
	KindLink
	KindLinkReference
	KindStrong
	KindText
	KindCode
	KindMath
	KindMdxFlowExpression
	KindHeading
	KindTable
	KindThematicBreak
	KindTableRow
	KindTableCell
	KindListItem
	KindDefinition
	KindParagraph

	numKinds
)

var kindNames = [numKinds]string{
	KindRoot:               "Root",
	KindBlockQuote:         "BlockQuote",
	KindFootnoteDefinition: "FootnoteDefinition",
	KindMdxJsxFlowElement:  "MdxJsxFlowElement",
	KindList:               "List",
	KindMdxjsEsm:           "MdxjsEsm",
	KindToml:               "Toml",
	KindYaml:               "Yaml",
	KindBreak:              "Break",
	KindInlineCode:         "InlineCode",
	KindInlineMath:         "InlineMath",
	KindDelete:             "Delete",
	KindEmphasis:           "Emphasis",
	KindMdxTextExpression:  "MdxTextExpression",
	KindFootnoteReference:  "FootnoteReference",
	KindHtml:               "Html",
	KindImage:              "Image",
	KindImageReference:     "ImageReference",
	KindMdxJsxTextElement:  "MdxJsxTextElement",
	KindLink:               "Link",
	KindLinkReference:      "LinkReference",
	KindStrong:             "Strong",
	KindText:               "Text",
	KindCode:               "Code",
	KindMath:               "Math",
	KindMdxFlowExpression:  "MdxFlowExpression",
	KindHeading:            "Heading",
	KindTable:              "Table",
	KindThematicBreak:      "ThematicBreak",
	KindTableRow:           "TableRow",
	KindTableCell:          "TableCell",
	KindListItem:           "ListItem",
	KindDefinition:         "Definition",
	KindParagraph:          "Paragraph",
}

func (k Kind) String() string {
	if k < numKinds {
		return kindNames[k]
	}
	return "Unknown"
}

// Kinds lists every kind in declaration order.
func Kinds() []Kind {
	out := make([]Kind, numKinds)
	for i := range out {
		out[i] = Kind(i)
	}
	return out
}
