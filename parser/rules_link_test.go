package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dpotapov/ftml-go/tree"
)

func TestBracketLinkExternal(t *testing.T) {
	st := mustParse(t, "[https://example.com label]")
	children := paragraphChildren(t, st)
	require.Len(t, children, 1)
	l, ok := children[0].(tree.Link)
	require.True(t, ok)
	assert.Equal(t, "https://example.com", l.URL)
	assert.Equal(t, []tree.Element{tree.Text{Content: "label"}}, l.Children)
}

func TestBracketLinkNewTab(t *testing.T) {
	st := mustParse(t, "[*https://example.com label]")
	children := paragraphChildren(t, st)
	require.Len(t, children, 1)
	l, ok := children[0].(tree.Link)
	require.True(t, ok)
	assert.True(t, l.NewTab)
}

func TestBracketAnchorJump(t *testing.T) {
	st := mustParse(t, "[#section jump]")
	children := paragraphChildren(t, st)
	require.Len(t, children, 1)
	a, ok := children[0].(tree.Anchor)
	require.True(t, ok)
	assert.Equal(t, "section", a.Name)
}

func TestTripleLinkBare(t *testing.T) {
	st := mustParse(t, "[[[some-page]]]")
	children := paragraphChildren(t, st)
	require.Len(t, children, 1)
	l, ok := children[0].(tree.Link)
	require.True(t, ok)
	require.NotNil(t, l.PageRef)
	assert.Equal(t, "some-page", l.PageRef.Name)
	assert.Equal(t, []tree.Element{tree.Text{Content: "some-page"}}, l.Children)
}

func TestTripleLinkWithLabel(t *testing.T) {
	st := mustParse(t, "[[[some-page|Some Page]]]")
	children := paragraphChildren(t, st)
	require.Len(t, children, 1)
	l, ok := children[0].(tree.Link)
	require.True(t, ok)
	require.NotNil(t, l.PageRef)
	assert.Equal(t, "some-page", l.PageRef.Name)
}

func TestTripleLinkCrossSiteRejectedByDefault(t *testing.T) {
	_, warnings, err := ParseFromSource("[[[:other-site:page]]]", PageInfo{}, Settings{}, nil)
	require.NoError(t, err)
	var kinds []WarningKind
	for _, w := range warnings {
		kinds = append(kinds, w.Kind)
	}
	assert.Contains(t, kinds, CrossSiteRef)
}

func TestTripleLinkCrossSiteAllowedWhenInternal(t *testing.T) {
	settings := Settings{IsInternalSite: func(site string) bool { return site == "other-site" }}
	st, warnings, err := ParseFromSource("[[[:other-site:page]]]", PageInfo{}, settings, nil)
	require.NoError(t, err)
	assert.Empty(t, warnings)
	children := paragraphChildren(t, st)
	require.Len(t, children, 1)
	l, ok := children[0].(tree.Link)
	require.True(t, ok)
	require.NotNil(t, l.PageRef)
	assert.Equal(t, "other-site", l.PageRef.Site)
}
