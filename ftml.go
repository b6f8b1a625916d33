// Package ftml is the top-level facade over the wikitext pipeline: include
// resolution, preprocessing, tokenizing, parsing, and rendering. It mirrors
// the teacher's pages.Handler facade in spirit (one entry point wiring
// several independently testable stages) but is a plain library call rather
// than an http.Handler, since ftml has no transport concerns of its own.
package ftml

import (
	"context"

	"github.com/dpotapov/ftml-go/callbacks"
	"github.com/dpotapov/ftml-go/include"
	"github.com/dpotapov/ftml-go/pageref"
	"github.com/dpotapov/ftml-go/parser"
	"github.com/dpotapov/ftml-go/preproc"
	"github.com/dpotapov/ftml-go/render/html"
	"github.com/dpotapov/ftml-go/render/text"
	"github.com/dpotapov/ftml-go/token"
	"github.com/dpotapov/ftml-go/tree"
)

// Settings bundles the tunables of every pipeline stage. Zero-value
// Settings gets each stage's own defaults.
type Settings struct {
	Include include.Settings
	Parser  parser.Settings
}

// PageInfo is re-exported so callers don't need to import parser directly
// for the common case.
type PageInfo = parser.PageInfo

// Result is what a full Parse returns: the syntax tree, every page ref the
// include resolver processed, found or not (in encounter order, used by the host
// for backlink/dependency bookkeeping in place of a tree-level Include
// marker), and any recoverable warnings collected across the whole
// pipeline.
type Result struct {
	Tree          *tree.SyntaxTree
	IncludedPages []pageref.PageRef
	Warnings      []*parser.ParseWarning
}

// Parse runs the full pipeline described in spec.md §4.3: include
// resolution over the raw source, then preprocessing, tokenizing, and
// parsing of the expanded text.
//
// includer may be nil, in which case include.NullIncluder{} is used (no
// "[[include ...]]" construct will ever resolve, matching standalone
// wikitext with no host-backed page store).
func Parse(ctx context.Context, rawSource string, pageInfo PageInfo, settings Settings, includer include.Includer, cb callbacks.PageCallbacks) (*Result, error) {
	if includer == nil {
		includer = include.NullIncluder{}
	}

	expanded, includedPages, err := include.Resolve(ctx, rawSource, includer, settings.Include)
	if err != nil {
		return nil, err
	}

	full := preproc.Process(expanded)
	toks := token.Tokenize(full)

	st, warnings, err := parser.Parse(full, toks, pageInfo, settings.Parser, cb)
	if err != nil {
		return nil, err
	}

	return &Result{Tree: st, IncludedPages: includedPages, Warnings: warnings}, nil
}

// RenderHTML renders a previously-parsed tree to HTML, per spec.md §6.
func RenderHTML(st *tree.SyntaxTree, pageInfo PageInfo, cb callbacks.PageCallbacks, opts html.Options) (html.Output, error) {
	return html.Render(st, html.PageInfo(pageInfo), cb, opts)
}

// RenderText renders a previously-parsed tree to plain text, per spec.md
// §6's "Non-goals: ... text rendering is out of scope for the distilled
// spec but is carried here as an ambient rendering target the way the
// teacher carries both chtml and plain-text asset rendering side by side.
func RenderText(st *tree.SyntaxTree) string {
	return text.Render(st)
}
