package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dpotapov/ftml-go/callbacks"
	"github.com/dpotapov/ftml-go/internal/testutil"
	"github.com/dpotapov/ftml-go/tree"
)

func TestBlockDiv(t *testing.T) {
	st := mustParse(t, "[[div class=\"note\"]]hello[[/div]]")
	require.Len(t, st.Elements, 1)
	c, ok := st.Elements[0].(tree.Container)
	require.True(t, ok)
	assert.Equal(t, tree.ContainerDiv, c.Type)
	v, _ := c.Attributes.Get("class")
	assert.Equal(t, "note", v)
}

func TestBlockSpanStructuralDiff(t *testing.T) {
	st := mustParse(t, "[[span class=\"hl\"]]hi[[/span]]")
	attrs := tree.NewAttributeMap()
	attrs.Set("class", "hl")
	want := []tree.Element{tree.Container{
		Type:       tree.ContainerParagraph,
		Attributes: tree.NewAttributeMap(),
		Children: []tree.Element{tree.Container{
			Type:       tree.ContainerSpan,
			Attributes: attrs,
			Children:   []tree.Element{tree.Text{Content: "hi"}},
		}},
	}}
	testutil.AssertElementsEqual(t, want, st.Elements)
}

func TestBlockUnknownNameWarns(t *testing.T) {
	_, warnings, err := ParseFromSource("[[nonexistent]]", PageInfo{}, Settings{}, nil)
	require.NoError(t, err)
	require.Len(t, warnings, 1)
	assert.Equal(t, NoSuchBlock, warnings[0].Kind)
}

func TestBlockIfexprTruthy(t *testing.T) {
	cb := testutil.NewFakeCallbacks()
	cb.ExprResults["cond"] = callbacks.Value{Kind: callbacks.ValueBool, Bool: true}
	st, warnings, err := ParseFromSource("[[ifexpr cond]]yes[[else]]no[[/ifexpr]]", PageInfo{}, Settings{}, cb)
	require.NoError(t, err)
	assert.Empty(t, warnings)
	require.Len(t, st.Elements, 1)
	p, ok := st.Elements[0].(tree.Container)
	require.True(t, ok)
	assert.Equal(t, tree.ContainerParagraph, p.Type)
	assert.Equal(t, []tree.Element{tree.Text{Content: "yes"}}, p.Children)
}

func TestBlockIfexprFalsey(t *testing.T) {
	cb := testutil.NewFakeCallbacks()
	cb.ExprResults["cond"] = callbacks.Value{Kind: callbacks.ValueBool, Bool: false}
	st, _, err := ParseFromSource("[[ifexpr cond]]yes[[else]]no[[/ifexpr]]", PageInfo{}, Settings{}, cb)
	require.NoError(t, err)
	require.Len(t, st.Elements, 1)
	p, ok := st.Elements[0].(tree.Container)
	require.True(t, ok)
	assert.Equal(t, tree.ContainerParagraph, p.Type)
	assert.Equal(t, []tree.Element{tree.Text{Content: "no"}}, p.Children)
}

func TestBlockIfPlainTruthiness(t *testing.T) {
	st, warnings, err := ParseFromSource("[[if false]]yes[[else]]no[[/if]]", PageInfo{}, Settings{}, nil)
	require.NoError(t, err)
	assert.Empty(t, warnings)
	require.Len(t, st.Elements, 1)
	p, ok := st.Elements[0].(tree.Container)
	require.True(t, ok)
	assert.Equal(t, []tree.Element{tree.Text{Content: "no"}}, p.Children)

	st, _, err = ParseFromSource("[[if somevar]]yes[[else]]no[[/if]]", PageInfo{}, Settings{}, nil)
	require.NoError(t, err)
	p, ok = st.Elements[0].(tree.Container)
	require.True(t, ok)
	assert.Equal(t, []tree.Element{tree.Text{Content: "yes"}}, p.Children)
}

func TestBlockIfRollsBackUntakenBranchSideEffects(t *testing.T) {
	src := "[[if false]]\n[[footnote]]A[[/footnote]]\n[[else]]\nignored\n[[/if]]\n[[footnote]]B[[/footnote]]"
	st, warnings, err := ParseFromSource(src, PageInfo{}, Settings{}, nil)
	require.NoError(t, err)
	assert.Empty(t, warnings)

	require.Len(t, st.Footnotes, 1)
	assert.Equal(t, []tree.Element{tree.Text{Content: "B"}}, st.Footnotes[0])

	var refs []int
	var walk func(els []tree.Element)
	walk = func(els []tree.Element) {
		for _, el := range els {
			switch v := el.(type) {
			case tree.Footnote:
				refs = append(refs, v.Index)
			case tree.Container:
				walk(v.Children)
			case tree.Fragment:
				walk(v.Children)
			}
		}
	}
	walk(st.Elements)
	require.Len(t, refs, 1)
	assert.Equal(t, 1, refs[0])
}

func TestInlineIfexpr(t *testing.T) {
	cb := testutil.NewFakeCallbacks()
	cb.ExprResults["cond"] = callbacks.Value{Kind: callbacks.ValueBool, Bool: true}
	st, _, err := ParseFromSource("[[#ifexpr cond|yes|no]]", PageInfo{}, Settings{}, cb)
	require.NoError(t, err)
	require.Len(t, st.Elements, 1)
	p, ok := st.Elements[0].(tree.Container)
	require.True(t, ok)
	assert.Equal(t, []tree.Element{tree.Text{Content: "yes"}}, p.Children)
}

func TestInlineIfPlainTruthiness(t *testing.T) {
	st, _, err := ParseFromSource("[[#if false|yes|no]]", PageInfo{}, Settings{}, nil)
	require.NoError(t, err)
	require.Len(t, st.Elements, 1)
	p, ok := st.Elements[0].(tree.Container)
	require.True(t, ok)
	assert.Equal(t, []tree.Element{tree.Text{Content: "no"}}, p.Children)
}

func TestElseOutsideIfWarns(t *testing.T) {
	_, warnings, err := ParseFromSource("[[else]]", PageInfo{}, Settings{}, nil)
	require.NoError(t, err)
	require.Len(t, warnings, 1)
	assert.Equal(t, RuleFailed, warnings[0].Kind)
}

func TestTabViewAndTab(t *testing.T) {
	st := mustParse(t, "[[tabview]][[tab First]]one[[/tab]][[tab Second]]two[[/tab]][[/tabview]]")
	require.Len(t, st.Elements, 1)
	tv, ok := st.Elements[0].(tree.TabView)
	require.True(t, ok)
	require.Len(t, tv.Tabs, 2)
	assert.Equal(t, "First", tv.Tabs[0].Label)
	assert.Equal(t, []tree.Element{tree.Text{Content: "one"}}, tv.Tabs[0].Children)
}

func TestTabOutsideTabViewWarns(t *testing.T) {
	_, warnings, err := ParseFromSource("[[tab x]]body[[/tab]]", PageInfo{}, Settings{}, nil)
	require.NoError(t, err)
	require.Len(t, warnings, 1)
	assert.Equal(t, TabOutsideTabView, warnings[0].Kind)
}

func TestEmptyTabViewWarns(t *testing.T) {
	_, warnings, err := ParseFromSource("[[tabview]][[/tabview]]", PageInfo{}, Settings{}, nil)
	require.NoError(t, err)
	require.Len(t, warnings, 1)
	assert.Equal(t, TabViewEmpty, warnings[0].Kind)
}

func TestModuleWithoutBody(t *testing.T) {
	cb := testutil.NewFakeCallbacks()
	st := mustParseWith(t, "[[module ListPages category=\"blog\"]]", cb)
	require.Len(t, st.Elements, 1)
	m, ok := st.Elements[0].(tree.Module)
	require.True(t, ok)
	assert.Equal(t, "ListPages", m.Name)
	v, _ := m.Params.Get("category")
	assert.Equal(t, "blog", v)
	assert.Nil(t, m.Body)
}

func TestModuleWithBody(t *testing.T) {
	cb := testutil.NewFakeCallbacks()
	cb.ModuleBodies["CSS"] = true
	st := mustParseWith(t, "[[module CSS]]body { color: red; }[[/module]]", cb)
	require.Len(t, st.Elements, 1)
	m, ok := st.Elements[0].(tree.Module)
	require.True(t, ok)
	require.Len(t, m.Body, 1)
	raw, ok := m.Body[0].(tree.Raw)
	require.True(t, ok)
	assert.Equal(t, "body { color: red; }", raw.Content)
}

func TestFootnoteAndBlock(t *testing.T) {
	st := mustParse(t, "text[[footnote]]note body[[/footnote]][[footnoteblock]]")
	require.Len(t, st.Footnotes, 1)
	assert.Equal(t, []tree.Element{tree.Text{Content: "note body"}}, st.Footnotes[0])

	require.Len(t, st.Elements, 2)
	p, ok := st.Elements[0].(tree.Container)
	require.True(t, ok)
	assert.Equal(t, tree.ContainerParagraph, p.Type)
	var sawRef bool
	for _, el := range p.Children {
		if _, ok := el.(tree.Footnote); ok {
			sawRef = true
		}
	}
	assert.True(t, sawRef)
	_, sawBlock := st.Elements[1].(tree.FootnoteBlock)
	assert.True(t, sawBlock)
}

func TestTOCBlockPlaceholder(t *testing.T) {
	st := mustParse(t, "[[toc]]\n\n+ Heading")
	assert.True(t, st.HasTOCBlock)
	var sawTOC bool
	for _, el := range st.Elements {
		if _, ok := el.(tree.TableOfContents); ok {
			sawTOC = true
		}
	}
	assert.True(t, sawTOC)
}

func TestScopeDeclareSet(t *testing.T) {
	st := mustParse(t, "[[declare x 1]][[set x 2]]{@x}")
	require.Len(t, st.Elements, 1)
	p, ok := st.Elements[0].(tree.Container)
	require.True(t, ok)
	assert.Equal(t, tree.ContainerParagraph, p.Type)
	var got string
	for _, el := range p.Children {
		if txt, ok := el.(tree.Text); ok && txt.Content != "" {
			got = txt.Content
		}
	}
	assert.Equal(t, "2", got)
}

func TestClearFloat(t *testing.T) {
	st := mustParse(t, "[[clearfloat]]")
	require.Len(t, st.Elements, 1)
	cf, ok := st.Elements[0].(tree.ClearFloat)
	require.True(t, ok)
	assert.Equal(t, "", cf.Direction)
}

func TestBlockCollapsibleDefaultLabels(t *testing.T) {
	st := mustParse(t, "[[collapsible]]hidden text[[/collapsible]]")
	require.Len(t, st.Elements, 1)
	c, ok := st.Elements[0].(tree.Collapsible)
	require.True(t, ok)
	assert.Equal(t, "+ open block", c.ShowText)
	assert.Equal(t, "- hide block", c.HideText)
	assert.False(t, c.StartOpen)
}

func TestBlockCollapsibleStartOpenFlag(t *testing.T) {
	st := mustParse(t, "[[collapsible_]]shown text[[/collapsible]]")
	require.Len(t, st.Elements, 1)
	c, ok := st.Elements[0].(tree.Collapsible)
	require.True(t, ok)
	assert.True(t, c.StartOpen)
}

func TestImageVariants(t *testing.T) {
	st := mustParse(t, "[[>image photo.jpg]]")
	require.Len(t, st.Elements, 1)
	img, ok := st.Elements[0].(tree.Image)
	require.True(t, ok)
	assert.Equal(t, "photo.jpg", img.Source)
	assert.Equal(t, "right", img.Align)
}

func mustParseWith(t *testing.T, src string, cb callbacks.PageCallbacks) *tree.SyntaxTree {
	t.Helper()
	st, warnings, err := ParseFromSource(src, PageInfo{}, Settings{}, cb)
	require.NoError(t, err)
	assert.Empty(t, warnings)
	return st
}
