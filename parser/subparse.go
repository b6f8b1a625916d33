package parser

import (
	"errors"

	"github.com/dpotapov/ftml-go/token"
	"github.com/dpotapov/ftml-go/tree"
)

// subParse drives a nested parse over tokens (an already-extracted,
// non-sentinel slice) using the same shared parserState — so side
// channels like table_of_contents/footnotes/scopes keep accumulating —
// but its own cache and position, the way blockquote and table cell
// content are parsed as if they were their own independent token stream.
// Recursion depth is inherited from the caller so a deeply nested chain
// of sub-parses still trips the recursion cap.
func (p *Parser) subParse(tokens []token.Extracted) ([]tree.Element, []*ParseWarning, error) {
	full := make([]token.Extracted, 0, len(tokens)+2)
	full = append(full, token.Extracted{Kind: token.InputStart})
	full = append(full, tokens...)
	full = append(full, token.Extracted{Kind: token.InputEnd})

	sub := &Parser{
		PageInfo:    p.PageInfo,
		Settings:    p.Settings,
		Callbacks:   p.Callbacks,
		tokens:      full,
		fullText:    p.fullText,
		startOfLine: true,
		depth:       p.depth,
		cache:       newMemoCache(),
		state:       p.state,
	}

	var elements []tree.Element
	var warnings []*ParseWarning
	for sub.current().Kind != token.InputEnd {
		success, err := consume(sub)
		if err != nil {
			var pw *ParseWarning
			if errors.As(err, &pw) {
				warnings = append(warnings, pw)
			}
			return elements, warnings, err
		}
		elements = append(elements, success.Elements...)
		warnings = append(warnings, success.Warnings...)
	}
	return elements, warnings, nil
}
