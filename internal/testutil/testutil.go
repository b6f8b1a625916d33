// Package testutil provides canned test doubles shared across parser,
// render, and include tests, grounded on the teacher's builtinImporter
// pattern in chtml/importer.go (a small map-backed stand-in for a real
// host integration, used so individual tests don't hand-roll the same
// stub repeatedly).
package testutil

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/dpotapov/ftml-go/callbacks"
	"github.com/dpotapov/ftml-go/include"
	"github.com/dpotapov/ftml-go/pageref"
	"github.com/dpotapov/ftml-go/tree"
)

// attrMapComparer lets go-cmp see into tree.AttributeMap's unexported
// fields: its ordered keys/lookup pair has no exported accessor pair that
// round-trips equality, so a plain cmp.Diff would otherwise panic on the
// unexported fields rather than compare them.
var attrMapComparer = cmp.AllowUnexported(tree.AttributeMap{})

// AssertElementsEqual does a structural diff of two Element slices, the way
// the teacher's own test helpers lean on go-cmp (component_test.go,
// render_test.go) instead of a bespoke deep-equal, and prints a readable
// diff on mismatch rather than testify's flat "expected/actual" dump.
func AssertElementsEqual(t *testing.T, want, got []tree.Element) {
	t.Helper()
	if diff := cmp.Diff(want, got, attrMapComparer); diff != "" {
		t.Errorf("elements mismatch (-want +got):\n%s", diff)
	}
}

// FakeIncluder serves canned page bodies by PageRef.Name, for include
// resolver and end-to-end pipeline tests.
type FakeIncluder struct {
	Bodies map[string]string
}

func NewFakeIncluder() *FakeIncluder {
	return &FakeIncluder{Bodies: make(map[string]string)}
}

func (f *FakeIncluder) IncludePages(_ context.Context, refs []pageref.PageRef) ([]include.FetchedPage, error) {
	out := make([]include.FetchedPage, len(refs))
	for i, r := range refs {
		if b, ok := f.Bodies[r.Name]; ok {
			body := b
			out[i] = include.FetchedPage{PageRef: r, Body: &body}
		} else {
			out[i] = include.FetchedPage{PageRef: r, Body: nil}
		}
	}
	return out, nil
}

func (f *FakeIncluder) NoSuchInclude(ref pageref.PageRef) string {
	return "[[include-missing " + ref.String() + "]]"
}

// FakeCallbacks extends callbacks.Null with a map-backed module renderer and
// a fixed expression result table, for tests that need to observe what the
// parser/renderer asked the host to do.
type FakeCallbacks struct {
	callbacks.Null

	// ModuleBodies marks which module names expect a body.
	ModuleBodies map[string]bool
	// ModuleOutputs returns canned module render output by name.
	ModuleOutputs map[string]string
	// ExprResults returns a canned Value by expression source.
	ExprResults map[string]callbacks.Value
	// Pages marks which PageRefs exist, for GetPageInfo.
	Pages map[string]string // name -> title
}

func NewFakeCallbacks() *FakeCallbacks {
	return &FakeCallbacks{
		ModuleBodies:  make(map[string]bool),
		ModuleOutputs: make(map[string]string),
		ExprResults:   make(map[string]callbacks.Value),
		Pages:         make(map[string]string),
	}
}

func (f *FakeCallbacks) ModuleHasBody(name string) bool {
	return f.ModuleBodies[name]
}

func (f *FakeCallbacks) RenderModule(name string, params map[string]string, body string) (string, error) {
	if out, ok := f.ModuleOutputs[name]; ok {
		return out, nil
	}
	return fmt.Sprintf("<module %s>", name), nil
}

func (f *FakeCallbacks) EvaluateExpression(src string, vars map[string]string) (callbacks.Value, error) {
	if v, ok := f.ExprResults[src]; ok {
		return v, nil
	}
	return callbacks.Null{}.EvaluateExpression(src, vars)
}

func (f *FakeCallbacks) GetPageInfo(refs []pageref.PageRef) ([]callbacks.PartialPageInfo, error) {
	out := make([]callbacks.PartialPageInfo, len(refs))
	for i, r := range refs {
		title, exists := f.Pages[r.Name]
		out[i] = callbacks.PartialPageInfo{PageRef: r, Exists: exists}
		if exists {
			t := title
			out[i].Title = &t
		}
	}
	return out, nil
}
