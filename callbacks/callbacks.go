// Package callbacks defines the PageCallbacks interface the parser and
// renderers use to reach back into the host application, plus a Null
// implementation for standalone use and tests.
package callbacks

import (
	"strings"

	"github.com/fatih/camelcase"

	"github.com/dpotapov/ftml-go/pageref"
)

// PartialPageInfo is the bulk-lookup answer for one PageRef.
type PartialPageInfo struct {
	PageRef pageref.PageRef
	Title   *string
	Exists  bool
}

// Value is the tagged result of evaluating a WikiScript/#ifexpr expression.
type Value struct {
	Kind ValueKind
	Bool bool
	Int  int64
	Flt  float64
	Str  string
}

type ValueKind int

const (
	ValueNone ValueKind = iota
	ValueBool
	ValueInt
	ValueFloat
	ValueString
)

// Truthy mirrors the #if/#ifexpr truthiness rule: ValueNone, a false Bool,
// and an empty String are all falsey.
func (v Value) Truthy() bool {
	switch v.Kind {
	case ValueNone:
		return false
	case ValueBool:
		return v.Bool
	case ValueString:
		return v.Str != "" && v.Str != "false" && v.Str != "null"
	default:
		return true
	}
}

// PageCallbacks is the set of host hooks required by the parser and
// renderers.
type PageCallbacks interface {
	ModuleHasBody(name string) bool
	RenderModule(name string, params map[string]string, body string) (string, error)
	RenderUser(name string, avatar bool) (string, error)
	GetI18nMessage(id string) string
	GetPageInfo(refs []pageref.PageRef) ([]PartialPageInfo, error)
	EvaluateExpression(src string, vars map[string]string) (Value, error)
	Normalize(name string) string
}

// i18nDefaults are the messages the Null implementation must know about,
// per spec.md §6.1.
var i18nDefaults = map[string]string{
	"collapsible-open":      "+ open block",
	"collapsible-hide":      "- hide block",
	"table-of-contents":     "Table of Contents",
	"footnote":              "Footnote",
	"footnote-block-title":  "Footnotes",
	"button-copy-clipboard": "Copy to clipboard",
	"image-context-bad":     "Image cannot be displayed",
}

// Null is the default PageCallbacks: returns defaults, never errors.
type Null struct{}

var _ PageCallbacks = Null{}

func (Null) ModuleHasBody(string) bool { return false }

func (Null) RenderModule(string, map[string]string, string) (string, error) {
	return "", nil
}

func (Null) RenderUser(string, bool) (string, error) { return "", nil }

func (Null) GetI18nMessage(id string) string {
	if msg, ok := i18nDefaults[id]; ok {
		return msg
	}
	return "?"
}

func (Null) GetPageInfo(refs []pageref.PageRef) ([]PartialPageInfo, error) {
	out := make([]PartialPageInfo, len(refs))
	for i, r := range refs {
		out[i] = PartialPageInfo{PageRef: r, Exists: false}
	}
	return out, nil
}

func (Null) EvaluateExpression(string, map[string]string) (Value, error) {
	return Value{Kind: ValueNone}, nil
}

func (Null) Normalize(name string) string {
	return strings.ToLower(strings.ReplaceAll(strings.TrimSpace(name), " ", "-"))
}

// NormalizeAttributeName canonicalizes a block argument key so that
// differently-styled author input ("text-align", "textAlign", "Text_Align")
// lands on the same AttributeMap slot. Grounded on the teacher's use of
// fatih/camelcase to split Go-ish identifiers into words before rejoining
// them in a canonical form.
func NormalizeAttributeName(key string) string {
	key = strings.ReplaceAll(key, "_", "-")
	words := camelcase.Split(key)
	for i, w := range words {
		words[i] = strings.ToLower(w)
	}
	joined := strings.Join(words, "-")
	// camelcase.Split treats existing hyphens as ordinary runes, so
	// "text-align" comes back as "text", "-", "align" fragments; collapse
	// the doubled separators that joining them produces.
	for strings.Contains(joined, "--") {
		joined = strings.ReplaceAll(joined, "--", "-")
	}
	return strings.Trim(joined, "-")
}
