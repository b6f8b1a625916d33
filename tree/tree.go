package tree

import "github.com/dpotapov/ftml-go/pageref"

// SyntaxTree is the top-level output of a successful parse.
type SyntaxTree struct {
	Elements []Element

	// TableOfContents holds the heading entries promoted into a
	// TableOfContents element; HasTOCBlock records whether an explicit
	// "[[toc]]" was seen anywhere in the source.
	TableOfContents []TOCEntry
	HasTOCBlock     bool

	// Footnotes holds one ordered element list per encountered footnote;
	// the i-th Footnote element in Elements (by first-encounter order)
	// refers to Footnotes[i-1].
	Footnotes [][]Element

	// InternalLinks lists every in-wiki PageRef the parse encountered.
	// Deduplication is not required.
	InternalLinks []pageref.PageRef
}

// AssemblyInput is the raw material handed from the parser to Assemble: the
// element stream plus the side-channels the parser collected while
// building it (spec.md's UnstructuredParseResult).
type AssemblyInput struct {
	Elements        []Element
	TOCDepths       []TOCDepthEntry
	Footnotes       [][]Element
	HasFootnoteBlk  bool
	HasTOCBlockSeen bool
	InternalLinks   []pageref.PageRef
}

// TOCDepthEntry is one heading encountered during parsing, before depth
// assembly promotes it into a nested TOCEntry tree.
type TOCDepthEntry struct {
	Level int
	Name  string
}

// Assemble runs the post-parse pass described in spec.md §4.5: promoting
// TOC entries, appending a default FootnoteBlock when footnotes exist but
// none was explicit, and collapsing consecutive LineBreaks.
func Assemble(in AssemblyInput) *SyntaxTree {
	t := &SyntaxTree{
		Footnotes:     in.Footnotes,
		HasTOCBlock:   in.HasTOCBlockSeen,
		InternalLinks: in.InternalLinks,
	}

	t.TableOfContents = assembleTOC(in.TOCDepths)

	elements := collapseLineBreaks(in.Elements)
	elements = assembleParagraphs(elements)

	if !in.HasFootnoteBlk && len(in.Footnotes) > 0 {
		elements = append(elements, FootnoteBlock{Title: nil, Hide: false})
	}

	t.Elements = elements
	return t
}

// assembleTOC turns a flat (level, name) stream into a nested TOCEntry
// forest using the generic depth assembler parameterized over heading
// level as the depth signal: each heading's Level is its nesting depth
// directly (1..6), so we normalize it against the minimum level seen.
func assembleTOC(entries []TOCDepthEntry) []TOCEntry {
	if len(entries) == 0 {
		return nil
	}

	minLevel := entries[0].Level
	for _, e := range entries {
		if e.Level < minLevel {
			minLevel = e.Level
		}
	}

	items := make([]DepthItemPayload, len(entries))
	for i, e := range entries {
		depth := e.Level - minLevel
		if depth < 0 {
			depth = 0
		}
		items[i] = DepthItemPayload{Depth: depth, Kind: 0, Payload: e}
	}

	trees := ProcessDepths(items)
	var roots []TOCEntry
	for _, t := range trees {
		roots = append(roots, nodesToTOCEntries(t.Items)...)
	}
	return roots
}

func nodesToTOCEntries(nodes []DepthNode) []TOCEntry {
	out := make([]TOCEntry, 0, len(nodes))
	for _, n := range nodes {
		e := n.Payload.(TOCDepthEntry)
		var children []TOCEntry
		for _, nested := range n.Nested {
			children = append(children, nodesToTOCEntries(nested.Items)...)
		}
		out = append(out, TOCEntry{Level: e.Level, RenderedName: e.Name, Children: children})
	}
	return out
}

// AssembleList converts a flat stream of (depth, ordered, content) list
// lines into a forest of nested List elements, per spec.md's list rule:
// "Depth assembly (process_depths)". Returns one List per top-level tree
// (adjacent same-kind runs stay inside one List; a kind change or an
// intervening blank-line-terminated block produces separate top-level
// Lists, matching the "adjacent same-type lists remain separate" scenario
// when the caller itself invokes AssembleList once per blank-line-delimited
// run).
func AssembleList(lines []ListLine) []List {
	items := make([]DepthItemPayload, len(lines))
	for i, l := range lines {
		kind := 0
		if l.Ordered {
			kind = 1
		}
		items[i] = DepthItemPayload{Depth: l.Depth, Kind: kind, Payload: l}
	}

	trees := ProcessDepths(items)
	lists := make([]List, 0, len(trees))
	for _, t := range trees {
		lists = append(lists, List{
			Ordered: t.Kind == 1,
			Items:   nodesToListItems(t.Items),
		})
	}
	return lists
}

// ListLine is one flat "(depth) (bullet|number) content" line collected by
// the list rule before depth assembly.
type ListLine struct {
	Depth   int
	Ordered bool
	Content []Element
}

func nodesToListItems(nodes []DepthNode) [][]Element {
	out := make([][]Element, 0, len(nodes))
	for _, n := range nodes {
		line := n.Payload.(ListLine)
		content := append([]Element(nil), line.Content...)
		for _, nested := range n.Nested {
			content = append(content, List{
				Ordered: nested.Kind == 1,
				Items:   nodesToListItems(nested.Items),
			})
		}
		out = append(out, content)
	}
	return out
}

// collapseLineBreaks merges runs of 2+ consecutive LineBreak elements (at
// the same slice level) into a single LineBreaks(n) element. Containers are
// walked recursively so nested paragraphs get the same treatment.
func collapseLineBreaks(elements []Element) []Element {
	out := make([]Element, 0, len(elements))
	run := 0
	flush := func() {
		if run == 1 {
			out = append(out, LineBreak{})
		} else if run > 1 {
			out = append(out, LineBreaks{Count: run})
		}
		run = 0
	}

	for _, el := range elements {
		if _, ok := el.(LineBreak); ok {
			run++
			continue
		}
		flush()
		out = append(out, collapseChildren(el))
	}
	flush()
	return out
}

// collapseChildren recurses collapseLineBreaks into container-shaped
// elements so the collapsing invariant holds at every nesting level.
func collapseChildren(el Element) Element {
	switch v := el.(type) {
	case Container:
		v.Children = collapseLineBreaks(v.Children)
		return v
	case AlignMarker:
		v.Children = collapseLineBreaks(v.Children)
		return v
	case Module:
		if v.Body != nil { // a bodyless module keeps a nil Body
			v.Body = collapseLineBreaks(v.Body)
		}
		return v
	case Anchor:
		v.Children = collapseLineBreaks(v.Children)
		return v
	case Link:
		v.Children = collapseLineBreaks(v.Children)
		return v
	case Color:
		v.Children = collapseLineBreaks(v.Children)
		return v
	case Collapsible:
		v.Children = collapseLineBreaks(v.Children)
		return v
	case Fragment:
		v.Children = collapseLineBreaks(v.Children)
		return v
	default:
		return el
	}
}

// assembleParagraphs groups runs of paragraph-safe elements, delimited by
// block-level elements and blank-line breaks, into
// Container{Type: ContainerParagraph} wrappers (spec.md end-to-end
// scenarios 1, 2, and 4: "-- a--", the "= centered" div, and "**18+**" all
// depend on something eventually wrapping top-level prose in a <p>).
// Fragments are transparent to grouping, so their children are spliced
// into the surrounding run first.
func assembleParagraphs(elements []Element) []Element {
	flat := flattenFragments(elements)

	var out []Element
	var run []Element
	flush := func() {
		if p, ok := buildParagraph(run); ok {
			out = append(out, p)
		}
		run = nil
	}

	for _, el := range flat {
		if _, ok := el.(LineBreaks); ok {
			// A collapsed run of 2+ line breaks is a blank line: it ends
			// the current paragraph rather than joining it.
			flush()
			continue
		}
		if blockLevel(el) {
			flush()
			out = append(out, descendIntoBlock(el))
			continue
		}
		run = append(run, el)
	}
	flush()
	return out
}

// flattenFragments splices Fragment children into their parent slice,
// recursively, since Fragment has no rendered identity of its own.
func flattenFragments(elements []Element) []Element {
	out := make([]Element, 0, len(elements))
	for _, el := range elements {
		if f, ok := el.(Fragment); ok {
			out = append(out, flattenFragments(f.Children)...)
			continue
		}
		out = append(out, el)
	}
	return out
}

// blockLevel reports whether el always occupies its own line and never
// participates in a paragraph's flow content.
func blockLevel(el Element) bool {
	switch v := el.(type) {
	case Container:
		switch v.Type {
		case ContainerDiv, ContainerBlockquote, ContainerHeader:
			return true
		}
		return false
	case List, DefinitionList, Table, TableOfContents, FootnoteBlock,
		HorizontalRule, TabView, Collapsible, ClearFloat, Math, Code, HTML,
		Iframe, Image, Module:
		return true
	default:
		return false
	}
}

// descendIntoBlock recurses paragraph assembly into the flow-content
// children of block containers that hold prose (div, blockquote,
// collapsible); other block kinds (lists, tables, modules, ...) already
// assemble whatever internal structure they need and are left untouched.
func descendIntoBlock(el Element) Element {
	switch v := el.(type) {
	case Container:
		if v.Type == ContainerDiv || v.Type == ContainerBlockquote {
			v.Children = assembleParagraphs(v.Children)
		}
		return v
	case Collapsible:
		v.Children = assembleParagraphs(v.Children)
		return v
	default:
		return el
	}
}

// buildParagraph wraps a non-empty, break-trimmed run in a Container{Type:
// ContainerParagraph}, reporting false for a run that trims to nothing. A
// run consisting entirely of same-aligned AlignMarkers (spec.md scenario
// 2) hoists that alignment onto the paragraph itself and splices the
// markers' children directly in, rather than nesting one <div> per line.
func buildParagraph(run []Element) (Element, bool) {
	run = trimEdgeBreaks(run)
	if len(run) == 0 {
		return nil, false
	}

	align, uniform := uniformAlign(run)
	children := run
	if uniform {
		children = make([]Element, 0, len(run))
		for _, el := range run {
			if am, ok := el.(AlignMarker); ok {
				children = append(children, am.Children...)
				continue
			}
			children = append(children, el)
		}
	}

	return Container{
		Type:       ContainerParagraph,
		Attributes: NewAttributeMap(),
		Align:      align,
		HasAlign:   uniform,
		Children:   children,
	}, true
}

// trimEdgeBreaks drops leading/trailing line break elements from a
// paragraph run: a break bordering the paragraph's own boundary carries no
// visible meaning.
func trimEdgeBreaks(run []Element) []Element {
	start := 0
	for start < len(run) {
		if isBreak(run[start]) {
			start++
			continue
		}
		break
	}
	end := len(run)
	for end > start {
		if isBreak(run[end-1]) {
			end--
			continue
		}
		break
	}
	return run[start:end]
}

func isBreak(el Element) bool {
	switch el.(type) {
	case LineBreak, LineBreaks:
		return true
	default:
		return false
	}
}

// uniformAlign reports whether run is made up of only AlignMarkers (plus
// interspersed line breaks) that all share one Align value.
func uniformAlign(run []Element) (AlignType, bool) {
	align := AlignLeft
	seen := false
	for _, el := range run {
		switch v := el.(type) {
		case LineBreak, LineBreaks:
			continue
		case AlignMarker:
			if !seen {
				align, seen = v.Align, true
			} else if v.Align != align {
				return AlignLeft, false
			}
		default:
			return AlignLeft, false
		}
	}
	return align, seen
}
