package html

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dpotapov/ftml-go/tree"
)

func render(t *testing.T, elements []tree.Element) string {
	t.Helper()
	st := &tree.SyntaxTree{Elements: elements}
	out, err := Render(st, PageInfo{}, nil, Options{})
	require.NoError(t, err)
	return out.Body
}

func TestRenderText(t *testing.T) {
	body := render(t, []tree.Element{tree.Text{Content: "hello <world>"}})
	assert.Equal(t, "hello &lt;world&gt;", body)
}

func TestRenderContainerBold(t *testing.T) {
	body := render(t, []tree.Element{tree.Container{
		Type:     tree.ContainerBold,
		Children: []tree.Element{tree.Text{Content: "hi"}},
	}})
	assert.Equal(t, "<strong>hi</strong>", body)
}

func TestRenderHeader(t *testing.T) {
	body := render(t, []tree.Element{tree.Container{
		Type:     tree.ContainerHeader,
		Level:    2,
		Children: []tree.Element{tree.Text{Content: "Title"}},
	}})
	assert.Equal(t, "<h2>Title</h2>", body)
}

func TestRenderLinkExternal(t *testing.T) {
	body := render(t, []tree.Element{tree.Link{
		URL:      "https://example.com",
		Children: []tree.Element{tree.Text{Content: "label"}},
	}})
	assert.Equal(t, `<a href="https://example.com">label</a>`, body)
}

func TestRenderLinkNewTab(t *testing.T) {
	body := render(t, []tree.Element{tree.Link{
		URL:      "https://example.com",
		NewTab:   true,
		Children: []tree.Element{tree.Text{Content: "x"}},
	}})
	assert.Contains(t, body, `target="_blank"`)
	assert.Contains(t, body, `rel="noopener"`)
}

func TestRenderImage(t *testing.T) {
	body := render(t, []tree.Element{tree.Image{Source: "a.jpg", Attributes: tree.NewAttributeMap()}})
	assert.Contains(t, body, `<img`)
	assert.Contains(t, body, `src="a.jpg"`)
	assert.Contains(t, body, `/>`)
}

func TestRenderListUnordered(t *testing.T) {
	body := render(t, []tree.Element{tree.List{
		Ordered: false,
		Items:   [][]tree.Element{{tree.Text{Content: "one"}}, {tree.Text{Content: "two"}}},
	}})
	assert.Equal(t, "<ul><li>one</li><li>two</li></ul>", body)
}

func TestRenderListOrdered(t *testing.T) {
	body := render(t, []tree.Element{tree.List{
		Ordered: true,
		Items:   [][]tree.Element{{tree.Text{Content: "one"}}},
	}})
	assert.Equal(t, "<ol><li>one</li></ol>", body)
}

func TestRenderTable(t *testing.T) {
	body := render(t, []tree.Element{tree.Table{
		Attributes: tree.NewAttributeMap(),
		Rows: []tree.TableRow{
			{Cells: []tree.TableCell{
				{Header: true, Children: []tree.Element{tree.Text{Content: "H"}}},
			}},
			{Cells: []tree.TableCell{
				{Children: []tree.Element{tree.Text{Content: "d"}}},
			}},
		},
	}})
	assert.Contains(t, body, "<th>H</th>")
	assert.Contains(t, body, "<td>d</td>")
}

func TestRenderFootnoteAndBlock(t *testing.T) {
	st := &tree.SyntaxTree{
		Elements:  []tree.Element{tree.Footnote{Index: 1}, tree.FootnoteBlock{}},
		Footnotes: [][]tree.Element{{tree.Text{Content: "note"}}},
	}
	out, err := Render(st, PageInfo{}, nil, Options{})
	require.NoError(t, err)
	assert.Contains(t, out.Body, `href="#footnote-1"`)
	assert.Contains(t, out.Body, `id="footnote-1"`)
	assert.Contains(t, out.Body, "note")
}

func TestRenderTOCEmpty(t *testing.T) {
	st := &tree.SyntaxTree{Elements: []tree.Element{tree.TableOfContents{}}}
	out, err := Render(st, PageInfo{}, nil, Options{})
	require.NoError(t, err)
	assert.Equal(t, "", out.Body)
}

func TestRenderTOCWithEntries(t *testing.T) {
	st := &tree.SyntaxTree{
		Elements: []tree.Element{tree.TableOfContents{}},
		TableOfContents: []tree.TOCEntry{
			{Level: 1, RenderedName: "Intro"},
		},
	}
	out, err := Render(st, PageInfo{}, nil, Options{})
	require.NoError(t, err)
	assert.Contains(t, out.Body, "table-of-contents")
	assert.Contains(t, out.Body, "Intro")
}

func TestRenderCollapsibleUsesIDGenerator(t *testing.T) {
	st := &tree.SyntaxTree{Elements: []tree.Element{tree.Collapsible{
		ShowText: "show", HideText: "hide",
		Children: []tree.Element{tree.Text{Content: "body"}},
	}}}
	out, err := Render(st, PageInfo{}, nil, Options{IDGenerator: func() string { return "fixed-id" }})
	require.NoError(t, err)
	assert.Contains(t, out.Body, `id="fixed-id"`)
	assert.Contains(t, out.Body, "show")
	assert.Contains(t, out.Body, `display: none;`)
}

func TestRenderVoidTagsSelfClose(t *testing.T) {
	body := render(t, []tree.Element{tree.HorizontalRule{}})
	assert.Equal(t, "<hr />", body)
}

func TestRenderPartialProducesNothing(t *testing.T) {
	body := render(t, []tree.Element{tree.Partial{Kind: tree.PartialElse}})
	assert.Equal(t, "", body)
}

func TestRenderHiddenContainerStyle(t *testing.T) {
	body := render(t, []tree.Element{tree.Container{
		Type:       tree.ContainerHidden,
		Attributes: tree.NewAttributeMap(),
	}})
	assert.Contains(t, body, "display: none;")
}
