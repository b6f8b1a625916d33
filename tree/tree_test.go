package tree

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAssembleList_NestedDepths(t *testing.T) {
	lines := []ListLine{
		{Depth: 0, Ordered: false, Content: []Element{Text{Content: "a"}}},
		{Depth: 1, Ordered: false, Content: []Element{Text{Content: "a1"}}},
		{Depth: 0, Ordered: false, Content: []Element{Text{Content: "b"}}},
	}
	lists := AssembleList(lines)
	if assert.Len(t, lists, 1) {
		l := lists[0]
		assert.False(t, l.Ordered)
		assert.Len(t, l.Items, 2)
		assert.Equal(t, []Element{Text{Content: "a"}}, l.Items[0][:1])
		// nested list appended after the leaf content
		nested, ok := l.Items[0][1].(List)
		if assert.True(t, ok) {
			assert.Len(t, nested.Items, 1)
		}
	}
}

func TestAssembleList_KindChangeSplitsLists(t *testing.T) {
	lines := []ListLine{
		{Depth: 0, Ordered: false, Content: []Element{Text{Content: "a"}}},
		{Depth: 0, Ordered: true, Content: []Element{Text{Content: "b"}}},
	}
	lists := AssembleList(lines)
	if assert.Len(t, lists, 2) {
		assert.False(t, lists[0].Ordered)
		assert.True(t, lists[1].Ordered)
	}
}

func TestAssemble_DefaultFootnoteBlock(t *testing.T) {
	st := Assemble(AssemblyInput{
		Elements:       []Element{Footnote{Index: 1}},
		Footnotes:      [][]Element{{Text{Content: "note"}}},
		HasFootnoteBlk: false,
	})
	last := st.Elements[len(st.Elements)-1]
	_, ok := last.(FootnoteBlock)
	assert.True(t, ok)
}

func TestAssemble_NoDefaultFootnoteBlockWhenExplicit(t *testing.T) {
	st := Assemble(AssemblyInput{
		Elements:       []Element{Footnote{Index: 1}, FootnoteBlock{}},
		Footnotes:      [][]Element{{Text{Content: "note"}}},
		HasFootnoteBlk: true,
	})
	count := 0
	for _, el := range st.Elements {
		if _, ok := el.(FootnoteBlock); ok {
			count++
		}
	}
	assert.Equal(t, 1, count)
}

func TestAssemble_CollapsesLineBreaks(t *testing.T) {
	// A run of 2+ LineBreaks collapses into LineBreaks(n), which
	// assembleParagraphs then treats as a blank-line paragraph boundary:
	// "a" and "b" end up as two separate paragraphs, not one run with the
	// break preserved in the middle.
	st := Assemble(AssemblyInput{
		Elements: []Element{
			Text{Content: "a"},
			LineBreak{}, LineBreak{}, LineBreak{},
			Text{Content: "b"},
		},
	})
	assert.Equal(t, []Element{
		Container{Type: ContainerParagraph, Attributes: NewAttributeMap(), Children: []Element{Text{Content: "a"}}},
		Container{Type: ContainerParagraph, Attributes: NewAttributeMap(), Children: []Element{Text{Content: "b"}}},
	}, st.Elements)
}

func TestAssemble_EmptyInput(t *testing.T) {
	st := Assemble(AssemblyInput{})
	assert.Empty(t, st.Elements)
}

func TestAttributeMap_CaseInsensitive(t *testing.T) {
	m := NewAttributeMap()
	m.Set("Style", "color:red")
	v, ok := m.Get("style")
	assert.True(t, ok)
	assert.Equal(t, "color:red", v)
	assert.Equal(t, []string{"Style"}, m.Keys())
}
