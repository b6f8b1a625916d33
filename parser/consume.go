package parser

import (
	"errors"

	"github.com/dpotapov/ftml-go/token"
	"github.com/dpotapov/ftml-go/tree"
)

// consume is the top-level scheduling procedure of spec.md §4.4: consult
// the memoization cache, otherwise try each registered rule for the
// current token in order, and fall back to a single-token Text element
// when nothing matches. Either a rule advances the token pointer or the
// fallback is forced to step by exactly one token, so consume can never
// loop without making progress.
func consume(p *Parser) (ParseSuccess, error) {
	if err := p.depthIncrement(); err != nil {
		return ParseSuccess{}, err
	}
	defer p.depthDecrement()

	// InputStart is a zero-width sentinel: step past it without producing
	// an element or a warning.
	if p.current().Kind == token.InputStart {
		p.step()
		return ParseSuccess{}, nil
	}

	pos := p.pos
	cur := p.current()

	if entry, ok := p.cache.get(pos); ok {
		p.advanceBy(entry.tokensConsumed)
		return entry.success, nil
	}

	var allWarnings []*ParseWarning
	for _, rule := range rulesFor(cur.Kind, p.startOfLine) {
		mark := p.mark()
		p.rule = rule.Name

		success, err := rule.TryConsume(p)
		if err == nil {
			if p.mark() == mark {
				p.step()
			}
			success.Warnings = append(allWarnings, success.Warnings...)
			maybeCache(p, pos, success)
			return success, nil
		}

		var pw *ParseWarning
		if errors.As(err, &pw) {
			if pw.Kind == RecursionDepthExceeded {
				return ParseSuccess{}, err
			}
			allWarnings = append(allWarnings, pw)
		}
		p.reset(mark)
	}

	// Fallback: the text rule always matches and consumes exactly one
	// token.
	tok := cur
	p.step()
	allWarnings = append(allWarnings, newWarning(NoRulesMatch, "text-fallback", tok))
	success := ParseSuccess{
		Elements: []tree.Element{tree.Text{Content: tok.Slice}},
		Warnings: allWarnings,
	}
	maybeCache(p, pos, success)
	return success, nil
}

// advanceBy steps the parser forward n tokens, recomputing start_of_line
// from the last token consumed.
func (p *Parser) advanceBy(n int) {
	for i := 0; i < n; i++ {
		p.step()
	}
}

// maybeCache stores success at pos unless it's ineligible: a null-span
// sentinel position, a result carrying a transient Partial element (which
// depends on its enclosing AcceptsPartial context), or a result whose
// warnings include a position-sensitive "partial out of parent context"
// kind.
func maybeCache(p *Parser, pos int, success ParseSuccess) {
	tok := p.tokens[pos]
	if tok.Kind == token.InputStart || tok.Kind == token.InputEnd {
		return
	}
	for _, el := range success.Elements {
		if _, ok := el.(tree.Partial); ok {
			return
		}
	}
	for _, w := range success.Warnings {
		if w.Kind.partialOutOfContext() {
			return
		}
	}
	p.cache.set(pos, p.pos-pos, success)
}
