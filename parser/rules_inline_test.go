package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dpotapov/ftml-go/callbacks"
	"github.com/dpotapov/ftml-go/tree"
)

func mustParse(t *testing.T, src string) *tree.SyntaxTree {
	t.Helper()
	st, warnings, err := ParseFromSource(src, PageInfo{}, Settings{}, callbacks.Null{})
	require.NoError(t, err)
	assert.Empty(t, warnings)
	return st
}

// paragraphChildren asserts st has exactly one top-level paragraph and
// returns its children, since an inline-only document is always wrapped
// in a single Container{Type: ContainerParagraph}.
func paragraphChildren(t *testing.T, st *tree.SyntaxTree) []tree.Element {
	t.Helper()
	require.Len(t, st.Elements, 1)
	p, ok := st.Elements[0].(tree.Container)
	require.True(t, ok)
	assert.Equal(t, tree.ContainerParagraph, p.Type)
	return p.Children
}

func TestBold(t *testing.T) {
	st := mustParse(t, "**hi**")
	children := paragraphChildren(t, st)
	require.Len(t, children, 1)
	c, ok := children[0].(tree.Container)
	require.True(t, ok)
	assert.Equal(t, tree.ContainerBold, c.Type)
	assert.Equal(t, []tree.Element{tree.Text{Content: "hi"}}, c.Children)
}

func TestNestedInlineStyles(t *testing.T) {
	st := mustParse(t, "**bold //italic// bold**")
	children := paragraphChildren(t, st)
	require.Len(t, children, 1)
	outer, ok := children[0].(tree.Container)
	require.True(t, ok)
	assert.Equal(t, tree.ContainerBold, outer.Type)

	var sawItalics bool
	for _, el := range outer.Children {
		if c, ok := el.(tree.Container); ok && c.Type == tree.ContainerItalics {
			sawItalics = true
		}
	}
	assert.True(t, sawItalics)
}

func TestMonospace(t *testing.T) {
	st := mustParse(t, "{{code}}")
	children := paragraphChildren(t, st)
	require.Len(t, children, 1)
	c, ok := children[0].(tree.Container)
	require.True(t, ok)
	assert.Equal(t, tree.ContainerMonospace, c.Type)
}

func TestColor(t *testing.T) {
	st := mustParse(t, "##red|text##")
	children := paragraphChildren(t, st)
	require.Len(t, children, 1)
	c, ok := children[0].(tree.Color)
	require.True(t, ok)
	assert.Equal(t, "red", c.Name)
	assert.Equal(t, []tree.Element{tree.Text{Content: "text"}}, c.Children)
}

func TestRaw(t *testing.T) {
	st := mustParse(t, "@@**not bold**@@")
	children := paragraphChildren(t, st)
	require.Len(t, children, 1)
	r, ok := children[0].(tree.Raw)
	require.True(t, ok)
	assert.Equal(t, "**not bold**", r.Content)
}

func TestRawCompactEmpty(t *testing.T) {
	st := mustParse(t, "@@@@")
	children := paragraphChildren(t, st)
	require.Len(t, children, 1)
	r, ok := children[0].(tree.Raw)
	require.True(t, ok)
	assert.Equal(t, "", r.Content)
}

func TestRawCompactLiteralAt(t *testing.T) {
	st := mustParse(t, "@@@@@@")
	children := paragraphChildren(t, st)
	require.Len(t, children, 1)
	r, ok := children[0].(tree.Raw)
	require.True(t, ok)
	assert.Equal(t, "@@", r.Content)
}

func TestHTMLRaw(t *testing.T) {
	st := mustParse(t, "@<<b>hi</b>>@")
	require.Len(t, st.Elements, 1)
	h, ok := st.Elements[0].(tree.HTML)
	require.True(t, ok)
	assert.Equal(t, "<b>hi</b>", h.Content)
}

func TestVariableResolvesAgainstScope(t *testing.T) {
	st := mustParse(t, "[[declare name Alice]]{@name}")
	children := paragraphChildren(t, st)
	var texts []string
	for _, el := range children {
		if txt, ok := el.(tree.Text); ok && txt.Content != "" {
			texts = append(texts, txt.Content)
		}
	}
	assert.Contains(t, texts, "Alice")
}

func TestVariableUnboundWarns(t *testing.T) {
	_, warnings, err := ParseFromSource("{@missing}", PageInfo{}, Settings{}, callbacks.Null{})
	require.NoError(t, err)
	require.Len(t, warnings, 1)
	assert.Equal(t, NoSuchVariable, warnings[0].Kind)
}
