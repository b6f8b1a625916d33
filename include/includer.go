// Package include implements the fixed-point include resolver: the
// pre-parse pass that expands "[[include pageref | k=v ...]]" constructs by
// delegating page bodies to a host-supplied Includer.
package include

import (
	"context"

	"github.com/dpotapov/ftml-go/pageref"
	"github.com/dpotapov/ftml-go/varmap"
)

// IncludeRef describes one "[[include ...]]" occurrence found in the source.
type IncludeRef struct {
	PageRef   pageref.PageRef
	Variables *varmap.Map
}

// FetchedPage is the Includer's answer for one IncludeRef, in the same
// order the refs were requested.
type FetchedPage struct {
	PageRef pageref.PageRef
	Body    *string // nil means "not found"
}

// Includer is the host capability used to fetch include bodies.
type Includer interface {
	// IncludePages fetches the bodies for refs, in order, one-to-one.
	IncludePages(ctx context.Context, refs []pageref.PageRef) ([]FetchedPage, error)

	// NoSuchInclude returns the fallback snippet for a page that could not
	// be found.
	NoSuchInclude(ref pageref.PageRef) string
}

// NullIncluder never finds anything; useful for parsing standalone wikitext
// with no host-backed page store, and for tests.
type NullIncluder struct{}

func (NullIncluder) IncludePages(_ context.Context, refs []pageref.PageRef) ([]FetchedPage, error) {
	out := make([]FetchedPage, len(refs))
	for i, r := range refs {
		out[i] = FetchedPage{PageRef: r, Body: nil}
	}
	return out, nil
}

func (NullIncluder) NoSuchInclude(ref pageref.PageRef) string {
	return "[[include-missing " + ref.String() + "]]"
}
