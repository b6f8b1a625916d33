package ftml

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dpotapov/ftml-go/internal/testutil"
	"github.com/dpotapov/ftml-go/render/html"
)

func TestParseAndRenderHTML(t *testing.T) {
	cb := testutil.NewFakeCallbacks()
	result, err := Parse(context.Background(), "**bold** and //italic//", PageInfo{}, Settings{}, nil, cb)
	require.NoError(t, err)
	assert.Empty(t, result.Warnings)

	out, err := RenderHTML(result.Tree, PageInfo{}, cb, html.Options{})
	require.NoError(t, err)
	assert.Equal(t, "<p><strong>bold</strong> and <em>italic</em></p>", out.Body)
}

func TestParseResolvesIncludesFirst(t *testing.T) {
	includer := testutil.NewFakeIncluder()
	includer.Bodies["shared"] = "**included**"

	result, err := Parse(context.Background(), "before [[include shared]] after", PageInfo{}, Settings{}, includer, nil)
	require.NoError(t, err)
	require.Len(t, result.IncludedPages, 1)
	assert.Equal(t, "shared", result.IncludedPages[0].Name)

	out := RenderText(result.Tree)
	assert.Contains(t, out, "included")
}

func TestParseMissingIncludeUsesFallback(t *testing.T) {
	includer := testutil.NewFakeIncluder()
	result, err := Parse(context.Background(), "[[include nope]]", PageInfo{}, Settings{}, includer, nil)
	require.NoError(t, err)
	out := RenderText(result.Tree)
	assert.Contains(t, out, "include-missing")
}

func TestRenderTextRoundTrip(t *testing.T) {
	result, err := Parse(context.Background(), "# one\n# two", PageInfo{}, Settings{}, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, "1. one\n2. two", RenderText(result.Tree))
}
