package token

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenize_SentinelsAndCoverage(t *testing.T) {
	cases := []string{
		"",
		"hello world",
		"**bold** //italic//",
		"[[div]]\n= centered\n[[/div]]",
		"* a\n* b\n\n* c\n* d",
		"{@name} and {$other}",
	}
	for _, src := range cases {
		toks := Tokenize(src)
		require.GreaterOrEqual(t, len(toks), 2)
		assert.Equal(t, InputStart, toks[0].Kind)
		assert.True(t, toks[0].Span.IsZero())
		last := toks[len(toks)-1]
		assert.Equal(t, InputEnd, last.Kind)
		assert.Equal(t, len(src), last.Span.Start)
		assert.Equal(t, len(src), last.Span.End)

		var sb strings.Builder
		for i, tok := range toks {
			if i > 0 {
				require.Equal(t, toks[i-1].Span.End, tok.Span.Start, "spans must be contiguous")
			}
			sb.WriteString(tok.Slice)
		}
		assert.Equal(t, src, sb.String())
	}
}

func TestTokenize_Deterministic(t *testing.T) {
	src := "[[[page|label]]] **18+** -- a--"
	a := Tokenize(src)
	b := Tokenize(src)
	require.Equal(t, len(a), len(b))
	for i := range a {
		assert.Equal(t, a[i], b[i])
	}
}

func TestTokenize_StructuralDelimiters(t *testing.T) {
	toks := Tokenize("[[[a]]] [[b]] [c]")
	var kinds []Kind
	for _, tok := range toks {
		if tok.Kind != Whitespace {
			kinds = append(kinds, tok.Kind)
		}
	}
	assert.Contains(t, kinds, LeftLink)
	assert.Contains(t, kinds, RightLink)
	assert.Contains(t, kinds, LeftBlock)
	assert.Contains(t, kinds, RightBlock)
	assert.Contains(t, kinds, LeftBracket)
	assert.Contains(t, kinds, RightBracket)
}
