// Package html renders a *tree.SyntaxTree to an HTML fragment string. It is
// a pure string-assembly visitor, not a DOM builder: golang.org/x/net/html
// is used only for escaping text/attribute values and for looking up
// whether a tag is a void element via the atom table, mirroring the
// narrowed role the teacher's own chtml/html fork gives the same library.
package html

import (
	"fmt"
	"strconv"
	"strings"

	nethtml "golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/dpotapov/ftml-go/callbacks"
	"github.com/dpotapov/ftml-go/pageref"
	"github.com/dpotapov/ftml-go/tree"
)

// PageInfo is the page metadata the renderer needs; field-for-field
// identical to parser.PageInfo so callers can convert between the two with
// a plain type conversion.
type PageInfo struct {
	Site     string
	Category string
	PageName string
	Title    string
}

// Options tunes the renderer.
type Options struct {
	// IDGenerator supplies fresh DOM ids for elements with no natural name
	// (collapsible blocks). Defaults to defaultIDGenerator.
	IDGenerator IDGenerator
	// EnableTOCLinks is not read by the renderer: heading containers are
	// rendered without anchor ids whatever its value. Its zero value is
	// false.
	EnableTOCLinks bool
}

func (o Options) idGen() IDGenerator {
	if o.IDGenerator != nil {
		return o.IDGenerator
	}
	return defaultIDGenerator
}

// Output is the result of a render: the body fragment plus side artifacts
// the host may want to place elsewhere in the page (meta key/values and the
// set of in-wiki pages linked from the body). Styles is always empty: no
// construct adds style blocks to it.
type Output struct {
	Body      string
	Styles    []string
	Meta      map[string]string
	Backlinks []pageref.PageRef
}

type renderer struct {
	pageInfo PageInfo
	cb       callbacks.PageCallbacks
	opts     Options
	tree     *tree.SyntaxTree
}

// Render walks st and produces an HTML fragment.
func Render(st *tree.SyntaxTree, pageInfo PageInfo, cb callbacks.PageCallbacks, opts Options) (Output, error) {
	if cb == nil {
		cb = callbacks.Null{}
	}
	r := &renderer{pageInfo: pageInfo, cb: cb, opts: opts, tree: st}

	var sb strings.Builder
	r.renderElements(&sb, st.Elements)

	return Output{
		Body:      sb.String(),
		Meta:      map[string]string{"title": pageInfo.Title},
		Backlinks: st.InternalLinks,
	}, nil
}

func escape(s string) string {
	return nethtml.EscapeString(s)
}

// isVoidTag reports whether name is one of the HTML5 void elements this
// renderer ever emits, consulting the atom table the way a DOM-aware
// encoder would rather than hand-rolling a string set.
func isVoidTag(name string) bool {
	switch atom.Lookup([]byte(name)) {
	case atom.Br, atom.Img, atom.Hr, atom.Input:
		return true
	default:
		return false
	}
}

func writeTag(sb *strings.Builder, name string, attrs map[string]string, children func()) {
	sb.WriteByte('<')
	sb.WriteString(name)
	for _, k := range sortedKeys(attrs) {
		fmt.Fprintf(sb, ` %s="%s"`, k, escape(attrs[k]))
	}
	if isVoidTag(name) {
		sb.WriteString(" />")
		return
	}
	sb.WriteByte('>')
	if children != nil {
		children()
	}
	sb.WriteString("</")
	sb.WriteString(name)
	sb.WriteByte('>')
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	for i := 1; i < len(keys); i++ {
		for j := i; j > 0 && keys[j-1] > keys[j]; j-- {
			keys[j-1], keys[j] = keys[j], keys[j-1]
		}
	}
	return keys
}

func (r *renderer) renderElements(sb *strings.Builder, elements []tree.Element) {
	for _, el := range elements {
		r.renderElement(sb, el)
	}
}

func attrsToMap(a *tree.AttributeMap) map[string]string {
	out := make(map[string]string, a.Len())
	for _, k := range a.Keys() {
		v, _ := a.Get(k)
		out[k] = v
	}
	return out
}

func (r *renderer) renderElement(sb *strings.Builder, el tree.Element) {
	switch v := el.(type) {
	case tree.Text:
		sb.WriteString(escape(v.Content))
	case tree.Raw:
		sb.WriteString(escape(v.Content))
	case tree.HTMLEntity:
		sb.WriteString(v.Entity)
	case tree.Email:
		writeTag(sb, "a", map[string]string{"href": "mailto:" + v.Address}, func() {
			sb.WriteString(escape(v.Address))
		})
	case tree.LineBreak:
		sb.WriteString("<br />")
	case tree.LineBreaks:
		for i := 0; i < v.Count; i++ {
			sb.WriteString("<br />")
		}
	case tree.HorizontalRule:
		sb.WriteString("<hr />")
	case tree.ClearFloat:
		style := "clear: both;"
		if v.Direction != "" {
			style = "clear: " + v.Direction + ";"
		}
		writeTag(sb, "div", map[string]string{"style": style}, nil)
	case tree.Void:
		// renders nothing
	case tree.Fragment:
		r.renderElements(sb, v.Children)
	case tree.AlignMarker:
		class := [...]string{"left", "center", "right", "justify"}[v.Align]
		writeTag(sb, "div", map[string]string{"style": "text-align: " + class + ";"}, func() {
			r.renderElements(sb, v.Children)
		})
	case tree.Container:
		r.renderContainer(sb, v)
	case tree.Color:
		writeTag(sb, "span", map[string]string{"style": "color: " + v.Name + ";"}, func() {
			r.renderElements(sb, v.Children)
		})
	case tree.Anchor:
		writeTag(sb, "a", map[string]string{"href": "#" + v.Name}, func() {
			r.renderElements(sb, v.Children)
		})
	case tree.AnchorName:
		writeTag(sb, "a", map[string]string{"name": v.Name, "id": v.Name}, nil)
	case tree.Link:
		r.renderLink(sb, v)
	case tree.Image:
		r.renderImage(sb, v)
	case tree.List:
		r.renderList(sb, v)
	case tree.DefinitionList:
		r.renderDefinitionList(sb, v)
	case tree.Table:
		r.renderTable(sb, v)
	case tree.FormInput:
		r.renderFormInput(sb, v)
	case tree.TabView:
		r.renderTabView(sb, v)
	case tree.Collapsible:
		r.renderCollapsible(sb, v)
	case tree.TableOfContents:
		r.renderTOC(sb)
	case tree.Footnote:
		fmt.Fprintf(sb, `<sup id="footnote-ref-%d"><a href="#footnote-%d">%d</a></sup>`, v.Index, v.Index, v.Index)
	case tree.FootnoteBlock:
		r.renderFootnoteBlock(sb, v)
	case tree.User:
		r.renderUser(sb, v)
	case tree.Date:
		r.renderDate(sb, v)
	case tree.Code:
		writeTag(sb, "pre", map[string]string{"class": "code " + v.Language}, func() {
			writeTag(sb, "code", nil, func() { sb.WriteString(escape(v.Content)) })
		})
	case tree.Math:
		writeTag(sb, "div", map[string]string{"class": "math-block", "id": "math-" + v.Name}, func() {
			sb.WriteString(escape(v.Latex))
		})
	case tree.MathInline:
		writeTag(sb, "span", map[string]string{"class": "math-inline"}, func() {
			sb.WriteString(escape(v.Latex))
		})
	case tree.EquationReference:
		writeTag(sb, "a", map[string]string{"href": "#math-" + v.Name, "class": "eqref"}, func() {
			sb.WriteString("(" + escape(v.Name) + ")")
		})
	case tree.HTML:
		sb.WriteString(v.Content)
	case tree.Iframe:
		attrs := attrsToMap(v.Attributes)
		attrs["src"] = v.Source
		writeTag(sb, "iframe", attrs, nil)
	case tree.Module:
		var body string
		if len(v.Body) == 1 {
			if raw, ok := v.Body[0].(tree.Raw); ok {
				body = raw.Content
			}
		}
		out, err := r.cb.RenderModule(v.Name, attrMapToParams(v.Params), body)
		if err == nil {
			sb.WriteString(out)
		}
	case tree.Partial:
		// a Partial surviving to render time is a parser defect: the
		// enclosing rule should always have consumed it into a concrete
		// element. Render nothing rather than leaking internal state.
	default:
		// unknown element kind: render nothing rather than panic on a
		// future tree.Element variant this visitor hasn't been taught yet.
	}
}

func attrMapToParams(a *tree.AttributeMap) map[string]string {
	if a == nil {
		return nil
	}
	return attrsToMap(a)
}

var containerTags = map[tree.ContainerType]string{
	tree.ContainerDiv:           "div",
	tree.ContainerSpan:          "span",
	tree.ContainerParagraph:     "p",
	tree.ContainerBold:          "strong",
	tree.ContainerItalics:       "em",
	tree.ContainerUnderline:     "u",
	tree.ContainerStrikethrough: "s",
	tree.ContainerSuperscript:   "sup",
	tree.ContainerSubscript:     "sub",
	tree.ContainerMonospace:     "tt",
	tree.ContainerBlockquote:    "blockquote",
	tree.ContainerMark:         "mark",
	tree.ContainerInsertion:    "ins",
	tree.ContainerDeletion:     "del",
	tree.ContainerHidden:       "span",
	tree.ContainerSize:         "span",
	tree.ContainerRuby:         "ruby",
	tree.ContainerRubyText:     "rt",
}

func (r *renderer) renderContainer(sb *strings.Builder, c tree.Container) {
	if c.Type == tree.ContainerHeader {
		tag := "h" + strconv.Itoa(c.Level)
		attrs := attrsToMap(c.Attributes)
		writeTag(sb, tag, attrs, func() { r.renderElements(sb, c.Children) })
		return
	}

	tag, ok := containerTags[c.Type]
	if !ok {
		tag = "div"
	}
	attrs := attrsToMap(c.Attributes)
	switch c.Type {
	case tree.ContainerHidden:
		attrs["style"] = strings.TrimSpace(attrs["style"] + "; display: none;")
	case tree.ContainerSize:
		if size, ok := attrs["size"]; ok {
			delete(attrs, "size")
			attrs["style"] = strings.TrimSpace(attrs["style"] + "; font-size: " + size + ";")
		}
	case tree.ContainerParagraph:
		if c.HasAlign {
			class := [...]string{"left", "center", "right", "justify"}[c.Align]
			attrs["style"] = "text-align: " + class + ";"
		}
	}
	writeTag(sb, tag, attrs, func() { r.renderElements(sb, c.Children) })
}

func (r *renderer) renderLink(sb *strings.Builder, l tree.Link) {
	href := l.URL
	if l.PageRef != nil {
		href = "/" + l.PageRef.String()
	}
	if l.Fragment != "" {
		href += "#" + l.Fragment
	}
	attrs := map[string]string{"href": href}
	if l.NewTab {
		attrs["target"] = "_blank"
		attrs["rel"] = "noopener"
	}
	writeTag(sb, "a", attrs, func() { r.renderElements(sb, l.Children) })
}

func (r *renderer) renderImage(sb *strings.Builder, img tree.Image) {
	attrs := attrsToMap(img.Attributes)
	attrs["src"] = img.Source
	var style string
	if img.Float != "" {
		style += "float: " + img.Float + ";"
	}
	if img.Align != "" {
		style += "display: block; margin: 0 auto; text-align: " + img.Align + ";"
	}
	if style != "" {
		attrs["style"] = strings.TrimSpace(attrs["style"] + " " + style)
	}
	writeTag(sb, "img", attrs, nil)
}

func (r *renderer) renderList(sb *strings.Builder, l tree.List) {
	tag := "ul"
	if l.Ordered {
		tag = "ol"
	}
	writeTag(sb, tag, nil, func() {
		for _, item := range l.Items {
			writeTag(sb, "li", nil, func() { r.renderElements(sb, item) })
		}
	})
}

func (r *renderer) renderDefinitionList(sb *strings.Builder, dl tree.DefinitionList) {
	writeTag(sb, "dl", nil, func() {
		for _, item := range dl.Items {
			writeTag(sb, "dt", nil, func() { r.renderElements(sb, item.Term) })
			writeTag(sb, "dd", nil, func() { r.renderElements(sb, item.Definition) })
		}
	})
}

func (r *renderer) renderTable(sb *strings.Builder, t tree.Table) {
	attrs := attrsToMap(t.Attributes)
	writeTag(sb, "table", attrs, func() {
		for _, row := range t.Rows {
			writeTag(sb, "tr", nil, func() {
				for _, cell := range row.Cells {
					tag := "td"
					if cell.Header {
						tag = "th"
					}
					cellAttrs := map[string]string{}
					if cell.ColSpan > 1 {
						cellAttrs["colspan"] = strconv.Itoa(cell.ColSpan)
					}
					if cell.RowSpan > 1 {
						cellAttrs["rowspan"] = strconv.Itoa(cell.RowSpan)
					}
					if cell.HasAlign {
						cellAttrs["style"] = "text-align: " + [...]string{"left", "center", "right", "justify"}[cell.Align] + ";"
					}
					writeTag(sb, tag, cellAttrs, func() { r.renderElements(sb, cell.Children) })
				}
			})
		}
	})
}

func (r *renderer) renderFormInput(sb *strings.Builder, f tree.FormInput) {
	attrs := attrsToMap(f.Attributes)
	attrs["type"] = f.Kind
	if f.Name != "" {
		attrs["name"] = f.Name
	}
	if f.Value != "" {
		attrs["value"] = f.Value
	}
	if f.Placeholder != "" {
		attrs["placeholder"] = f.Placeholder
	}
	if f.Kind == "textarea" {
		delete(attrs, "type")
		writeTag(sb, "textarea", attrs, func() { sb.WriteString(escape(f.Value)) })
		return
	}
	writeTag(sb, "input", attrs, nil)
}

func (r *renderer) renderTabView(sb *strings.Builder, tv tree.TabView) {
	writeTag(sb, "div", map[string]string{"class": "tabview"}, func() {
		writeTag(sb, "div", map[string]string{"class": "tabview-tabs"}, func() {
			for _, tab := range tv.Tabs {
				writeTag(sb, "span", map[string]string{"class": "tabview-tab-label"}, func() {
					sb.WriteString(escape(tab.Label))
				})
			}
		})
		for _, tab := range tv.Tabs {
			writeTag(sb, "div", map[string]string{"class": "tabview-tab-content"}, func() {
				r.renderElements(sb, tab.Children)
			})
		}
	})
}

func (r *renderer) renderCollapsible(sb *strings.Builder, c tree.Collapsible) {
	id := r.opts.idGen()()
	style := map[string]string{}
	if c.TextAlign != "" {
		style["style"] = "text-align: " + c.TextAlign + ";"
	}
	writeTag(sb, "div", mergeAttrs(map[string]string{"class": "collapsible-block", "id": id}, style), func() {
		writeTag(sb, "a", map[string]string{"class": "collapsible-block-link", "href": "#"}, func() {
			label := c.ShowText
			if c.StartOpen {
				label = c.HideText
			}
			sb.WriteString(escape(label))
		})
		display := "none"
		if c.StartOpen {
			display = "block"
		}
		writeTag(sb, "div", map[string]string{"class": "collapsible-block-content", "style": "display: " + display + ";"}, func() {
			if c.Title != "" {
				writeTag(sb, "div", map[string]string{"class": "collapsible-block-title"}, func() { sb.WriteString(escape(c.Title)) })
			}
			r.renderElements(sb, c.Children)
		})
	})
}

func mergeAttrs(a, b map[string]string) map[string]string {
	out := make(map[string]string, len(a)+len(b))
	for k, v := range a {
		out[k] = v
	}
	for k, v := range b {
		if v != "" {
			out[k] = v
		}
	}
	return out
}

func (r *renderer) renderTOC(sb *strings.Builder) {
	if len(r.tree.TableOfContents) == 0 {
		return
	}
	writeTag(sb, "div", map[string]string{"class": "table-of-contents"}, func() {
		writeTag(sb, "div", map[string]string{"class": "table-of-contents-title"}, func() {
			sb.WriteString(escape(r.cb.GetI18nMessage("table-of-contents")))
		})
		r.renderTOCEntries(sb, r.tree.TableOfContents)
	})
}

func (r *renderer) renderTOCEntries(sb *strings.Builder, entries []tree.TOCEntry) {
	writeTag(sb, "ul", nil, func() {
		for _, e := range entries {
			writeTag(sb, "li", nil, func() {
				writeTag(sb, "a", map[string]string{"href": "#toc-" + escape(e.RenderedName)}, func() {
					sb.WriteString(escape(e.RenderedName))
				})
				if len(e.Children) > 0 {
					r.renderTOCEntries(sb, e.Children)
				}
			})
		}
	})
}

func (r *renderer) renderFootnoteBlock(sb *strings.Builder, fb tree.FootnoteBlock) {
	if fb.Hide || len(r.tree.Footnotes) == 0 {
		return
	}
	title := r.cb.GetI18nMessage("footnote-block-title")
	if fb.Title != nil {
		title = *fb.Title
	}
	writeTag(sb, "div", map[string]string{"class": "footnotes-footer"}, func() {
		writeTag(sb, "div", map[string]string{"class": "footnotes-footer-title"}, func() { sb.WriteString(escape(title)) })
		writeTag(sb, "ol", nil, func() {
			for i, content := range r.tree.Footnotes {
				idx := i + 1
				writeTag(sb, "li", map[string]string{"id": fmt.Sprintf("footnote-%d", idx)}, func() {
					r.renderElements(sb, content)
				})
			}
		})
	})
}

func (r *renderer) renderUser(sb *strings.Builder, u tree.User) {
	out, err := r.cb.RenderUser(u.Name, u.ShowAvatar)
	if err == nil && out != "" {
		sb.WriteString(out)
		return
	}
	writeTag(sb, "a", map[string]string{"href": "/user:" + u.Name, "class": "user-link"}, func() {
		sb.WriteString(escape(u.Name))
	})
}

func (r *renderer) renderDate(sb *strings.Builder, d tree.Date) {
	class := "odate"
	if d.Fuzzy {
		class += " odate-fuzzy"
	}
	attrs := map[string]string{"class": class, "data-unix": strconv.FormatInt(d.Unix, 10)}
	if d.Format != "" {
		attrs["data-format"] = d.Format
	}
	writeTag(sb, "span", attrs, func() {
		sb.WriteString(strconv.FormatInt(d.Unix, 10))
	})
}
