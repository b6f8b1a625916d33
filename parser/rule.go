package parser

import "github.com/dpotapov/ftml-go/token"

// RulePosition constrains where a Rule may fire.
type RulePosition int

const (
	// PositionAny means the rule may try at any point in the stream.
	PositionAny RulePosition = iota
	// PositionStartOfLine restricts the rule to positions where
	// Parser.startOfLine is true.
	PositionStartOfLine
)

// Rule is one named, ordered entry in the registry for a given TokenKind.
// The first Rule whose TryConsume returns a nil error wins; ties are
// broken by registration order, so rules are deliberately non-ambiguous.
type Rule struct {
	Name       string
	Position   RulePosition
	TryConsume func(p *Parser) (ParseSuccess, error)
}

// registry maps a triggering TokenKind to its ordered list of candidate
// Rules. Built once at package init by the init functions in rules_*.go.
var registry = map[token.Kind][]Rule{}

func register(kind token.Kind, rules ...Rule) {
	registry[kind] = append(registry[kind], rules...)
}

// rulesFor returns the rules eligible to fire for the current token,
// filtered by the start-of-line requirement. At start of line, the
// line-restricted rules are offered first (in registration order), ahead
// of the any-position rules registered for the same Kind: a line rule
// like horizontal rule is more specific than a same-token any-position
// rule like strikethrough, and must get first refusal at line start.
func rulesFor(kind token.Kind, startOfLine bool) []Rule {
	all := registry[kind]
	if !startOfLine {
		out := make([]Rule, 0, len(all))
		for _, r := range all {
			if r.Position != PositionStartOfLine {
				out = append(out, r)
			}
		}
		return out
	}
	out := make([]Rule, 0, len(all))
	for _, r := range all {
		if r.Position == PositionStartOfLine {
			out = append(out, r)
		}
	}
	for _, r := range all {
		if r.Position != PositionStartOfLine {
			out = append(out, r)
		}
	}
	return out
}
