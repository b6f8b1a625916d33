package pageref

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_Forms(t *testing.T) {
	r, err := Parse("page")
	require.NoError(t, err)
	assert.Equal(t, PageRef{Category: DefaultCategory, Name: "page"}, r)

	r, err = Parse("component:page")
	require.NoError(t, err)
	assert.Equal(t, PageRef{Category: "component", Name: "page"}, r)

	r, err = Parse(":scp-wiki:deleted:secret:fragment:page")
	require.NoError(t, err)
	assert.Equal(t, PageRef{
		Site: "scp-wiki", HasSite: true,
		Category: "deleted", Name: "secret:fragment:page",
	}, r)
}

func TestParse_EmptySiteIsError(t *testing.T) {
	_, err := Parse(":page")
	assert.ErrorIs(t, err, ErrEmptySite)

	_, err = Parse("::page")
	assert.ErrorIs(t, err, ErrEmptySite)
}

func TestRoundTrip(t *testing.T) {
	inputs := []string{
		"page",
		"component:page",
		":scp-wiki:deleted:secret:fragment:page",
		":site:page",
	}
	for _, in := range inputs {
		r, err := Parse(in)
		require.NoError(t, err, in)
		assert.Equal(t, in, r.String(), "round trip for %q", in)
	}
}
