package include

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dpotapov/ftml-go/pageref"
)

// fakeIncluder serves canned bodies by page name; a canned body may itself
// contain an include, which exercises the fixed-point loop.
type fakeIncluder struct {
	bodies map[string]string
}

func (f *fakeIncluder) IncludePages(_ context.Context, refs []pageref.PageRef) ([]FetchedPage, error) {
	out := make([]FetchedPage, len(refs))
	for i, r := range refs {
		if b, ok := f.bodies[r.Name]; ok {
			body := b
			out[i] = FetchedPage{PageRef: r, Body: &body}
		} else {
			out[i] = FetchedPage{PageRef: r, Body: nil}
		}
	}
	return out, nil
}

func (f *fakeIncluder) NoSuchInclude(ref pageref.PageRef) string {
	return "[missing:" + ref.Name + "]"
}

func TestResolve_FixedPoint(t *testing.T) {
	inc := &fakeIncluder{bodies: map[string]string{
		"a": "X",
		"b": "[[include c]]",
		"c": "Y",
	}}

	out, refs, err := Resolve(context.Background(), "[[include a]] [[include b]]", inc, Settings{})
	require.NoError(t, err)
	assert.Equal(t, "X Y", out)
	assert.Len(t, refs, 3) // a, b (pass 1), c (pass 2)
	assert.Equal(t, "a", refs[0].Name)
	assert.Equal(t, "b", refs[1].Name)
	assert.Equal(t, "c", refs[2].Name)

	// Re-running resolve on its own output is a no-op: the fixed point.
	out2, refs2, err := Resolve(context.Background(), out, inc, Settings{})
	require.NoError(t, err)
	assert.Equal(t, out, out2)
	assert.Empty(t, refs2)
}

func TestResolve_VariableSubstitution(t *testing.T) {
	inc := &fakeIncluder{bodies: map[string]string{
		"tmpl": "Hello {$name}, you have {$count} messages. {$unset} stays.",
	}}
	out, _, err := Resolve(context.Background(), "[[include tmpl | name=Alice | count=3]]", inc, Settings{})
	require.NoError(t, err)
	assert.Equal(t, "Hello Alice, you have 3 messages. {$unset} stays.", out)
}

func TestResolve_NotFound(t *testing.T) {
	inc := &fakeIncluder{bodies: map[string]string{}}
	out, _, err := Resolve(context.Background(), "[[include nope]]", inc, Settings{})
	require.NoError(t, err)
	assert.Equal(t, "[missing:nope]", out)
}

func TestResolve_MessyEmptyBody(t *testing.T) {
	inc := &fakeIncluder{bodies: map[string]string{"page": ""}}
	out, _, err := Resolve(context.Background(), "[[include-messy page]]", inc, Settings{})
	require.NoError(t, err)
	assert.Equal(t, "", out)
}
