package mdast

// Root is the document.
type Root struct {
	Base
	Parent
}

type BlockQuote struct {
	Base
	Parent
}

// FootnoteDefinition is the content of a footnote, `[^id]: ...`.
type FootnoteDefinition struct {
	Base
	Parent
	Identifier string
	Label      *string
}

type MdxJsxFlowElement struct {
	Base
	Parent
	Name *string
}

// List is an ordered or bullet list. Start is set for ordered lists only.
type List struct {
	Base
	Parent
	Ordered bool
	Start   *int
	Spread  bool
}

type MdxjsEsm struct {
	Base
	Value string
}

// Toml is `+++` delimited front matter.
type Toml struct {
	Base
	Value string
}

// Yaml is `---` delimited front matter.
type Yaml struct {
	Base
	Value string
}

// Break is a hard line break.
type Break struct {
	Base
}

type InlineCode struct {
	Base
	Value string
}

type InlineMath struct {
	Base
	Value string
}

// Delete is GFM strikethrough.
type Delete struct {
	Base
	Parent
}

type Emphasis struct {
	Base
	Parent
}

type MdxTextExpression struct {
	Base
	Value string
}

type FootnoteReference struct {
	Base
	Identifier string
	Label      *string
}

// Html is raw HTML, either a block or inline.
type Html struct {
	Base
	Value string
}

type Image struct {
	Base
	Alt   string
	URL   string
	Title *string
}

type ImageReference struct {
	Base
	Alt           string
	Identifier    string
	Label         *string
	ReferenceKind ReferenceKind
}

type MdxJsxTextElement struct {
	Base
	Parent
	Name *string
}

type Link struct {
	Base
	Parent
	URL   string
	Title *string
}

// LinkReference is a link whose destination comes from a Definition.
type LinkReference struct {
	Base
	Parent
	Identifier    string
	Label         *string
	ReferenceKind ReferenceKind
}

type Strong struct {
	Base
	Parent
}

type Text struct {
	Base
	Value string
}

// Code is a fenced or indented code block. Lang is the first word of the info
// string, Meta the rest.
type Code struct {
	Base
	Value string
	Lang  *string
	Meta  *string
}

type Math struct {
	Base
	Value string
	Meta  *string
}

type MdxFlowExpression struct {
	Base
	Value string
}

// Heading is an ATX or setext heading; Depth is 1 to 6.
type Heading struct {
	Base
	Parent
	Depth int
}

type Table struct {
	Base
	Parent
	Align []AlignKind
}

type ThematicBreak struct {
	Base
}

type TableRow struct {
	Base
	Parent
}

type TableCell struct {
	Base
	Parent
}

// ListItem is one item of a List. Checked is set for task list items.
type ListItem struct {
	Base
	Parent
	Spread  bool
	Checked *bool
}

// Definition is a link reference definition, `[label]: url "title"`.
type Definition struct {
	Base
	URL        string
	Title      *string
	Identifier string
	Label      *string
}

type Paragraph struct {
	Base
	Parent
}

func (*Root) Kind() Kind               { return KindRoot }
func (*BlockQuote) Kind() Kind         { return KindBlockQuote }
func (*FootnoteDefinition) Kind() Kind { return KindFootnoteDefinition }
func (*MdxJsxFlowElement) Kind() Kind  { return KindMdxJsxFlowElement }
func (*List) Kind() Kind               { return KindList }
func (*MdxjsEsm) Kind() Kind           { return KindMdxjsEsm }
func (*Toml) Kind() Kind               { return KindToml }
func (*Yaml) Kind() Kind               { return KindYaml }
func (*Break) Kind() Kind              { return KindBreak }
func (*InlineCode) Kind() Kind         { return KindInlineCode }
func (*InlineMath) Kind() Kind         { return KindInlineMath }
func (*Delete) Kind() Kind             { return KindDelete }
func (*Emphasis) Kind() Kind           { return KindEmphasis }
func (*MdxTextExpression) Kind() Kind  { return KindMdxTextExpression }
func (*FootnoteReference) Kind() Kind  { return KindFootnoteReference }
func (*Html) Kind() Kind               { return KindHtml }
func (*Image) Kind() Kind              { return KindImage }
func (*ImageReference) Kind() Kind     { return KindImageReference }
func (*MdxJsxTextElement) Kind() Kind  { return KindMdxJsxTextElement }
func (*Link) Kind() Kind               { return KindLink }
func (*LinkReference) Kind() Kind      { return KindLinkReference }
func (*Strong) Kind() Kind             { return KindStrong }
func (*Text) Kind() Kind               { return KindText }
func (*Code) Kind() Kind               { return KindCode }
func (*Math) Kind() Kind               { return KindMath }
func (*MdxFlowExpression) Kind() Kind  { return KindMdxFlowExpression }
func (*Heading) Kind() Kind            { return KindHeading }
func (*Table) Kind() Kind              { return KindTable }
func (*ThematicBreak) Kind() Kind      { return KindThematicBreak }
func (*TableRow) Kind() Kind           { return KindTableRow }
func (*TableCell) Kind() Kind          { return KindTableCell }
func (*ListItem) Kind() Kind           { return KindListItem }
func (*Definition) Kind() Kind         { return KindDefinition }
func (*Paragraph) Kind() Kind          { return KindParagraph }

func (r *Root) Accept(v Visitor)               { v.VisitRoot(r) }
func (b *BlockQuote) Accept(v Visitor)         { v.VisitBlockQuote(b) }
func (f *FootnoteDefinition) Accept(v Visitor) { v.VisitFootnoteDefinition(f) }
func (m *MdxJsxFlowElement) Accept(v Visitor)  { v.VisitMdxJsxFlowElement(m) }
func (l *List) Accept(v Visitor)               { v.VisitList(l) }
func (m *MdxjsEsm) Accept(v Visitor)           { v.VisitMdxjsEsm(m) }
func (t *Toml) Accept(v Visitor)               { v.VisitToml(t) }
func (y *Yaml) Accept(v Visitor)               { v.VisitYaml(y) }
func (b *Break) Accept(v Visitor)              { v.VisitBreak(b) }
func (i *InlineCode) Accept(v Visitor)         { v.VisitInlineCode(i) }
func (i *InlineMath) Accept(v Visitor)         { v.VisitInlineMath(i) }
func (d *Delete) Accept(v Visitor)             { v.VisitDelete(d) }
func (e *Emphasis) Accept(v Visitor)           { v.VisitEmphasis(e) }
func (m *MdxTextExpression) Accept(v Visitor)  { v.VisitMdxTextExpression(m) }
func (f *FootnoteReference) Accept(v Visitor)  { v.VisitFootnoteReference(f) }
func (h *Html) Accept(v Visitor)               { v.VisitHtml(h) }
func (i *Image) Accept(v Visitor)              { v.VisitImage(i) }
func (i *ImageReference) Accept(v Visitor)     { v.VisitImageReference(i) }
func (m *MdxJsxTextElement) Accept(v Visitor)  { v.VisitMdxJsxTextElement(m) }
func (l *Link) Accept(v Visitor)               { v.VisitLink(l) }
func (l *LinkReference) Accept(v Visitor)      { v.VisitLinkReference(l) }
func (s *Strong) Accept(v Visitor)             { v.VisitStrong(s) }
func (t *Text) Accept(v Visitor)               { v.VisitText(t) }
func (c *Code) Accept(v Visitor)               { v.VisitCode(c) }
func (m *Math) Accept(v Visitor)               { v.VisitMath(m) }
func (m *MdxFlowExpression) Accept(v Visitor)  { v.VisitMdxFlowExpression(m) }
func (h *Heading) Accept(v Visitor)            { v.VisitHeading(h) }
func (t *Table) Accept(v Visitor)              { v.VisitTable(t) }
func (t *ThematicBreak) Accept(v Visitor)      { v.VisitThematicBreak(t) }
func (t *TableRow) Accept(v Visitor)           { v.VisitTableRow(t) }
func (t *TableCell) Accept(v Visitor)          { v.VisitTableCell(t) }
func (l *ListItem) Accept(v Visitor)           { v.VisitListItem(l) }
func (d *Definition) Accept(v Visitor)         { v.VisitDefinition(d) }
func (p *Paragraph) Accept(v Visitor)          { v.VisitParagraph(p) }
