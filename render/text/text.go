// Package text renders a *tree.SyntaxTree to plain text: every markup
// element is flattened to its visible content, the way a search indexer or
// a notification preview would want it. Carried as an ambient rendering
// target alongside render/html even though spec.md's distillation treats
// only HTML as in scope, per SPEC_FULL.md's renderer pairing.
package text

import (
	"strconv"
	"strings"

	"github.com/dpotapov/ftml-go/tree"
)

// Render flattens st to plain text.
func Render(st *tree.SyntaxTree) string {
	var sb strings.Builder
	renderElements(&sb, st.Elements)
	return strings.TrimRight(sb.String(), "\n")
}

func renderElements(sb *strings.Builder, elements []tree.Element) {
	for _, el := range elements {
		renderElement(sb, el)
	}
}

func renderElement(sb *strings.Builder, el tree.Element) {
	switch v := el.(type) {
	case tree.Text:
		sb.WriteString(v.Content)
	case tree.Raw:
		sb.WriteString(v.Content)
	case tree.HTMLEntity:
		sb.WriteString(v.Entity)
	case tree.Email:
		sb.WriteString(v.Address)
	case tree.LineBreak:
		sb.WriteByte('\n')
	case tree.LineBreaks:
		for i := 0; i < v.Count; i++ {
			sb.WriteByte('\n')
		}
	case tree.HorizontalRule:
		sb.WriteString("----\n")
	case tree.ClearFloat, tree.Void, tree.Partial:
		// renders nothing
	case tree.Fragment:
		renderElements(sb, v.Children)
	case tree.AlignMarker:
		renderElements(sb, v.Children)
		sb.WriteByte('\n')
	case tree.Container:
		renderContainer(sb, v)
	case tree.Color:
		renderElements(sb, v.Children)
	case tree.Anchor:
		renderElements(sb, v.Children)
	case tree.AnchorName:
		// no visible text
	case tree.Link:
		renderLink(sb, v)
	case tree.Image:
		// images have no plain-text representation beyond an optional alt.
		if alt, ok := v.Attributes.Get("alt"); ok {
			sb.WriteString(alt)
		}
	case tree.List:
		renderList(sb, v)
	case tree.DefinitionList:
		for _, item := range v.Items {
			renderElements(sb, item.Term)
			sb.WriteString(": ")
			renderElements(sb, item.Definition)
			sb.WriteByte('\n')
		}
	case tree.Table:
		renderTable(sb, v)
	case tree.FormInput:
		sb.WriteString(v.Value)
	case tree.TabView:
		for _, tab := range v.Tabs {
			sb.WriteString(tab.Label)
			sb.WriteString(":\n")
			renderElements(sb, tab.Children)
			sb.WriteByte('\n')
		}
	case tree.Collapsible:
		renderElements(sb, v.Children)
	case tree.TableOfContents:
		renderTOC(sb, v.Entries, 0)
	case tree.Footnote:
		sb.WriteString("[" + strconv.Itoa(v.Index) + "]")
	case tree.FootnoteBlock:
		// footnote content is rendered out-of-band by the caller iterating
		// SyntaxTree.Footnotes; the block itself carries no inline text.
	case tree.User:
		sb.WriteString(v.Name)
	case tree.Date:
		sb.WriteString(strconv.FormatInt(v.Unix, 10))
	case tree.Code:
		sb.WriteString(v.Content)
		sb.WriteByte('\n')
	case tree.Math:
		sb.WriteString(v.Latex)
		sb.WriteByte('\n')
	case tree.MathInline:
		sb.WriteString(v.Latex)
	case tree.EquationReference:
		sb.WriteString("(" + v.Name + ")")
	case tree.HTML:
		// raw HTML has no plain-text form; omitted entirely.
	case tree.Iframe:
		sb.WriteString(v.Source)
	case tree.Module:
		if len(v.Body) == 1 {
			if raw, ok := v.Body[0].(tree.Raw); ok {
				sb.WriteString(raw.Content)
			}
		}
	default:
		// unknown element kind: no text contribution.
	}
}

func renderContainer(sb *strings.Builder, c tree.Container) {
	renderElements(sb, c.Children)
	if c.Type == tree.ContainerHeader || c.Type == tree.ContainerParagraph || c.Type == tree.ContainerBlockquote {
		sb.WriteByte('\n')
	}
}

func renderLink(sb *strings.Builder, l tree.Link) {
	if len(l.Children) > 0 {
		renderElements(sb, l.Children)
		return
	}
	if l.PageRef != nil {
		sb.WriteString(l.PageRef.String())
		return
	}
	sb.WriteString(l.URL)
}

func renderList(sb *strings.Builder, l tree.List) {
	for i, item := range l.Items {
		if l.Ordered {
			sb.WriteString(strconv.Itoa(i+1) + ". ")
		} else {
			sb.WriteString("- ")
		}
		renderElements(sb, item)
		sb.WriteByte('\n')
	}
}

func renderTable(sb *strings.Builder, t tree.Table) {
	for _, row := range t.Rows {
		var cells []string
		for _, cell := range row.Cells {
			var cb strings.Builder
			renderElements(&cb, cell.Children)
			cells = append(cells, cb.String())
		}
		sb.WriteString(strings.Join(cells, "\t"))
		sb.WriteByte('\n')
	}
}

func renderTOC(sb *strings.Builder, entries []tree.TOCEntry, depth int) {
	for _, e := range entries {
		sb.WriteString(strings.Repeat("  ", depth))
		sb.WriteString(e.RenderedName)
		sb.WriteByte('\n')
		renderTOC(sb, e.Children, depth+1)
	}
}
