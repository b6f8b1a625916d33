package text

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dpotapov/ftml-go/tree"
)

func TestRenderPlainText(t *testing.T) {
	st := &tree.SyntaxTree{Elements: []tree.Element{tree.Text{Content: "hello"}}}
	assert.Equal(t, "hello", Render(st))
}

func TestRenderParagraphAddsNewline(t *testing.T) {
	st := &tree.SyntaxTree{Elements: []tree.Element{
		tree.Container{Type: tree.ContainerParagraph, Children: []tree.Element{tree.Text{Content: "one"}}},
		tree.Text{Content: "two"},
	}}
	assert.Equal(t, "one\ntwo", Render(st))
}

func TestRenderListPlainText(t *testing.T) {
	st := &tree.SyntaxTree{Elements: []tree.Element{tree.List{
		Ordered: false,
		Items:   [][]tree.Element{{tree.Text{Content: "a"}}, {tree.Text{Content: "b"}}},
	}}}
	assert.Equal(t, "- a\n- b", Render(st))
}

func TestRenderOrderedListPlainText(t *testing.T) {
	st := &tree.SyntaxTree{Elements: []tree.Element{tree.List{
		Ordered: true,
		Items:   [][]tree.Element{{tree.Text{Content: "a"}}},
	}}}
	assert.Equal(t, "1. a", Render(st))
}

func TestRenderLinkPlainTextUsesLabel(t *testing.T) {
	st := &tree.SyntaxTree{Elements: []tree.Element{tree.Link{
		URL:      "https://example.com",
		Children: []tree.Element{tree.Text{Content: "label"}},
	}}}
	assert.Equal(t, "label", Render(st))
}

func TestRenderFootnoteMarkerOnly(t *testing.T) {
	st := &tree.SyntaxTree{Elements: []tree.Element{tree.Footnote{Index: 3}}}
	assert.Equal(t, "[3]", Render(st))
}

func TestRenderHTMLOmitted(t *testing.T) {
	st := &tree.SyntaxTree{Elements: []tree.Element{tree.HTML{Content: "<b>x</b>"}}}
	assert.Equal(t, "", Render(st))
}

func TestRenderImageUsesAlt(t *testing.T) {
	attrs := tree.NewAttributeMap()
	attrs.Set("alt", "a photo")
	st := &tree.SyntaxTree{Elements: []tree.Element{tree.Image{Source: "x.jpg", Attributes: attrs}}}
	assert.Equal(t, "a photo", Render(st))
}

func TestRenderTableTabSeparated(t *testing.T) {
	st := &tree.SyntaxTree{Elements: []tree.Element{tree.Table{
		Rows: []tree.TableRow{
			{Cells: []tree.TableCell{
				{Children: []tree.Element{tree.Text{Content: "a"}}},
				{Children: []tree.Element{tree.Text{Content: "b"}}},
			}},
		},
	}}}
	assert.Equal(t, "a\tb", Render(st))
}

func TestRenderTOCIndentsByDepth(t *testing.T) {
	entries := []tree.TOCEntry{
		{RenderedName: "Top", Children: []tree.TOCEntry{{RenderedName: "Child"}}},
	}
	st := &tree.SyntaxTree{Elements: []tree.Element{tree.TableOfContents{Entries: entries}}}
	assert.Equal(t, "Top\n  Child", Render(st))
}
