// Package tree implements the ftml SyntaxTree and Element data model
// described in the specification's data model section, plus the post-parse
// assembly pass (TOC/footnote promotion, depth assembly, line-break
// collapsing).
package tree

import "github.com/dpotapov/ftml-go/pageref"

// Element is the tagged-variant node type of a SyntaxTree. Each concrete
// type below is one variant; a type switch over Element dispatches on
// variant the way a Rust match would dispatch on an enum case. This mirrors
// the teacher's Node type but splits it into one struct per shape, since
// ftml's variants carry disjoint attribute sets where the teacher's single
// HTML Node shape does not need to.
type Element interface {
	// ftmlElement is a marker method: only types in this package implement
	// Element, closing the variant set the way a sum type would.
	ftmlElement()
}

// ContainerType enumerates the block/inline wrapper kinds that share the
// Container shape (an ordered child list plus an AttributeMap).
type ContainerType int

const (
	ContainerDiv ContainerType = iota
	ContainerSpan
	ContainerParagraph
	ContainerHeader // Level holds 1..6
	ContainerBold
	ContainerItalics
	ContainerUnderline
	ContainerStrikethrough
	ContainerSuperscript
	ContainerSubscript
	ContainerMonospace
	ContainerBlockquote
	ContainerMark
	ContainerInsertion
	ContainerDeletion
	ContainerHidden
	ContainerSize
	ContainerRuby
	ContainerRubyText
)

// Container is a paragraph-safe node that owns an ordered list of children
// and an attribute map.
type Container struct {
	Type       ContainerType
	Level      int       // heading level 1..6 when Type == ContainerHeader
	Align      AlignType // paragraph alignment when Type == ContainerParagraph and HasAlign
	HasAlign   bool
	Attributes *AttributeMap
	Children   []Element
}

func (Container) ftmlElement() {}

// AlignType enumerates the "= text" style paragraph alignment markers.
type AlignType int

const (
	AlignLeft AlignType = iota
	AlignCenter
	AlignRight
	AlignJustify
)

// AlignMarker wraps a run of content whose containing paragraph should be
// aligned per Align (spec.md end-to-end scenario 2: "= centered text").
type AlignMarker struct {
	Align    AlignType
	Children []Element
}

func (AlignMarker) ftmlElement() {}

// Module references a host-rendered module block.
type Module struct {
	Name   string
	Params *AttributeMap
	Body   []Element
}

func (Module) ftmlElement() {}

// Text is a literal run of text.
type Text struct {
	Content string
}

func (Text) ftmlElement() {}

// Raw is an "@@...@@" escaped run: rendered verbatim, no further parsing.
type Raw struct {
	Content string
}

func (Raw) ftmlElement() {}

// HTMLEntity is a preserved "&amp;"-style entity.
type HTMLEntity struct {
	Entity string
}

func (HTMLEntity) ftmlElement() {}

// Email is a mailto: reference.
type Email struct {
	Address string
}

func (Email) ftmlElement() {}

// TableCell is one cell of a Table row.
type TableCell struct {
	Header   bool
	Align    AlignType
	HasAlign bool
	ColSpan  int
	RowSpan  int
	Children []Element
}

// TableRow is one row of a Table.
type TableRow struct {
	Cells []TableCell
}

// Table is a full table block.
type Table struct {
	Attributes *AttributeMap
	Rows       []TableRow
}

func (Table) ftmlElement() {}

// FormInput represents a "[[form]]"/"[[input]]" field.
type FormInput struct {
	Kind        string // text, textarea, checkbox, radio, select, button ...
	Name        string
	Value       string
	Placeholder string
	Attributes  *AttributeMap
}

func (FormInput) ftmlElement() {}

// Tab is one tab of a TabView.
type Tab struct {
	Label    string
	Children []Element
}

// TabView is a "[[tabview]]" block.
type TabView struct {
	Tabs []Tab
}

func (TabView) ftmlElement() {}

// Anchor is a hyperlink-free "<a name=...>" style jump target created with
// "[[# name]]".
type AnchorName struct {
	Name string
}

func (AnchorName) ftmlElement() {}

// Anchor is an in-page jump link ("[#name label]").
type Anchor struct {
	Name     string
	Children []Element
}

func (Anchor) ftmlElement() {}

// Link is a hyperlink: external URL, in-wiki PageRef, or both absent
// (fragment-only anchor jump).
type Link struct {
	URL      string // set for "[URL label]" forms
	PageRef  *pageref.PageRef
	Fragment string // "#anchor" suffix, without the leading '#'
	NewTab   bool
	Children []Element
}

func (Link) ftmlElement() {}

// Image is an "[[image ...]]" block.
type Image struct {
	Source     string
	Float      string // "", "left", "right"
	Align      string // "", "left", "center", "right"
	Attributes *AttributeMap
}

func (Image) ftmlElement() {}

// List is a "*"/"#" bulleted or numbered list, possibly nested via Items'
// own child List elements (see depth.go's ProcessDepths).
type List struct {
	Ordered bool
	Items   [][]Element
}

func (List) ftmlElement() {}

// DefinitionItem is one term/definition pair of a DefinitionList.
type DefinitionItem struct {
	Term       []Element
	Definition []Element
}

// DefinitionList is a ";term:definition" style block.
type DefinitionList struct {
	Items []DefinitionItem
}

func (DefinitionList) ftmlElement() {}

// Collapsible is a "[[collapsible]]" block.
type Collapsible struct {
	Title     string
	ShowText  string
	HideText  string
	TextAlign string // optional, per spec.md §9 note
	StartOpen bool
	Children  []Element
}

func (Collapsible) ftmlElement() {}

// TOCEntry is one promoted heading in the table of contents.
type TOCEntry struct {
	Level        int
	RenderedName string
	Children     []TOCEntry
}

// TableOfContents is the promoted "[[toc]]" element.
type TableOfContents struct {
	Entries []TOCEntry
}

func (TableOfContents) ftmlElement() {}

// Footnote is a reference to footnotes[Index-1] in the owning SyntaxTree;
// its 1-based Index is assigned by encounter order during parsing.
type Footnote struct {
	Index int
}

func (Footnote) ftmlElement() {}

// FootnoteBlock is the "[[footnoteblock]]" element, or the default one
// synthesized when footnotes exist but no explicit block was written.
type FootnoteBlock struct {
	Title *string
	Hide  bool
}

func (FootnoteBlock) ftmlElement() {}

// User is a "[[user name]]" reference.
type User struct {
	Name       string
	ShowAvatar bool
}

func (User) ftmlElement() {}

// Date is a "[[date ...]]" timestamp reference.
type Date struct {
	Unix   int64
	Format string
	Fuzzy  bool
}

func (Date) ftmlElement() {}

// Color wraps children in a named or hex foreground color.
type Color struct {
	Name     string
	Children []Element
}

func (Color) ftmlElement() {}

// Code is a "[[code]]" block.
type Code struct {
	Language string
	Content  string
}

func (Code) ftmlElement() {}

// Math is a named, numbered equation block.
type Math struct {
	Name  string
	Latex string
}

func (Math) ftmlElement() {}

// MathInline is an inline "%%...%%" expression.
type MathInline struct {
	Latex string
}

func (MathInline) ftmlElement() {}

// EquationReference points at a named Math block.
type EquationReference struct {
	Name string
}

func (EquationReference) ftmlElement() {}

// HTML is a "[[html]]" raw HTML block.
type HTML struct {
	Content string
}

func (HTML) ftmlElement() {}

// Iframe is an "[[iframe]]" block.
type Iframe struct {
	Source     string
	Attributes *AttributeMap
}

func (Iframe) ftmlElement() {}

// LineBreak is a single manual line break ("\\" or a lone newline).
type LineBreak struct{}

func (LineBreak) ftmlElement() {}

// LineBreaks collapses N>1 consecutive LineBreaks at the same nesting
// level into one element.
type LineBreaks struct {
	Count int
}

func (LineBreaks) ftmlElement() {}

// ClearFloat is a "[[clearfloat]]" marker.
type ClearFloat struct {
	Direction string // "", "left", "right", "both"
}

func (ClearFloat) ftmlElement() {}

// HorizontalRule is a "----" rule.
type HorizontalRule struct{}

func (HorizontalRule) ftmlElement() {}

// Fragment is a transparent grouping of children with no wrapper tag of
// its own; used by rules that need to return more than one sibling.
type Fragment struct {
	Children []Element
}

func (Fragment) ftmlElement() {}

// PartialKind enumerates the transient Partial element kinds. A Partial
// must never survive into a final SyntaxTree; the enclosing rule always
// extracts and reassembles it.
type PartialKind int

const (
	PartialListItem PartialKind = iota
	PartialTab
	PartialTableRow
	PartialTableCell
	PartialRubyText
	PartialElse
)

// Partial is the transient element used to pass a fragment up through
// consume() to the rule that assembles the concrete container
// (list/tabview/table/ruby/if-else).
type Partial struct {
	Kind     PartialKind
	Children []Element
	// Extra carries kind-specific ancillary data (e.g. TableCell's
	// colspan, decoded by the assembling rule).
	Extra any
}

func (Partial) ftmlElement() {}

// Void is an element that renders nothing (used for e.g. a consumed
// block whose only effect was a side channel update, like [[declare]]).
type Void struct{}

func (Void) ftmlElement() {}
