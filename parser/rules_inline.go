package parser

import (
	"strings"

	"github.com/dpotapov/ftml-go/token"
	"github.com/dpotapov/ftml-go/tree"
)

// symmetricDelimiter registers a rule that matches a pair of same-Kind
// delimiter tokens wrapping a sub-parse, the pattern shared by bold,
// italics, underline, strikethrough, superscript, and subscript. The
// closing delimiter is searched for at the same token Kind; everything
// between is recursively consumed via consume() the same as a nested
// block, so nested inline styles (e.g. "**bold //italic// bold**") fall
// out for free.
func symmetricDelimiter(kind token.Kind, ctype tree.ContainerType, name string) Rule {
	return Rule{
		Name:     name,
		Position: PositionAny,
		TryConsume: func(p *Parser) (ParseSuccess, error) {
			open := p.current()
			p.step() // consume opening delimiter

			var children []tree.Element
			var warnings []*ParseWarning
			for {
				cur := p.current()
				if cur.Kind == token.InputEnd {
					return ParseSuccess{}, newWarning(RuleFailed, name, open)
				}
				if cur.Kind == kind {
					p.step() // consume closing delimiter
					return ParseSuccess{
						Elements: []tree.Element{tree.Container{
							Type:       ctype,
							Attributes: tree.NewAttributeMap(),
							Children:   children,
						}},
						Warnings: warnings,
					}, nil
				}
				if cur.Kind == token.ParagraphBreak {
					// Inline styles never span a paragraph break.
					return ParseSuccess{}, newWarning(RuleFailed, name, open)
				}
				success, err := consume(p)
				if err != nil {
					return ParseSuccess{}, err
				}
				children = append(children, success.Elements...)
				warnings = append(warnings, success.Warnings...)
			}
		},
	}
}

func init() {
	register(token.Bold, symmetricDelimiter(token.Bold, tree.ContainerBold, "bold"))
	register(token.Italics, symmetricDelimiter(token.Italics, tree.ContainerItalics, "italics"))
	register(token.Underline, symmetricDelimiter(token.Underline, tree.ContainerUnderline, "underline"))
	register(token.Strikethrough, symmetricDelimiter(token.Strikethrough, tree.ContainerStrikethrough, "strikethrough"))
	register(token.Superscript, symmetricDelimiter(token.Superscript, tree.ContainerSuperscript, "superscript"))
	register(token.Subscript, symmetricDelimiter(token.Subscript, tree.ContainerSubscript, "subscript"))

	register(token.Monospace, Rule{Name: "monospace", Position: PositionAny, TryConsume: tryMonospace})
	register(token.Color, Rule{Name: "color", Position: PositionAny, TryConsume: tryColor})
	register(token.LeftRaw, Rule{Name: "raw", Position: PositionAny, TryConsume: tryRaw})
	register(token.LeftHTML, Rule{Name: "html-raw", Position: PositionAny, TryConsume: tryHTMLRaw})
	register(token.Variable, Rule{Name: "variable", Position: PositionAny, TryConsume: tryVariable})
}

// tryMonospace handles "{{...}}". Monospace and "}}" share the Monospace
// token kind (both alternatives in the lexer map to it), so the opening
// use is distinguished from the closing one by its literal slice value
// rather than by a distinct Kind.
func tryMonospace(p *Parser) (ParseSuccess, error) {
	open := p.current()
	if open.Slice != "{{" {
		return ParseSuccess{}, newWarning(RuleFailed, "monospace", open)
	}
	p.step()

	var children []tree.Element
	var warnings []*ParseWarning
	for {
		cur := p.current()
		if cur.Kind == token.InputEnd {
			return ParseSuccess{}, newWarning(RuleFailed, "monospace", open)
		}
		if cur.Kind == token.Monospace && cur.Slice == "}}" {
			p.step()
			return ParseSuccess{
				Elements: []tree.Element{tree.Container{
					Type:       tree.ContainerMonospace,
					Attributes: tree.NewAttributeMap(),
					Children:   children,
				}},
				Warnings: warnings,
			}, nil
		}
		if cur.Kind == token.ParagraphBreak {
			return ParseSuccess{}, newWarning(RuleFailed, "monospace", open)
		}
		success, err := consume(p)
		if err != nil {
			return ParseSuccess{}, err
		}
		children = append(children, success.Elements...)
		warnings = append(warnings, success.Warnings...)
	}
}

// tryColor handles "##name|text##": a color name, a pipe, the wrapped
// content, and the closing "##".
func tryColor(p *Parser) (ParseSuccess, error) {
	open := p.current()
	mark := p.mark()
	p.step() // consume opening "##"

	var name strings.Builder
	for p.current().Kind != token.Pipe {
		cur := p.current()
		if cur.Kind == token.InputEnd || cur.Kind == token.LineBreak || cur.Kind == token.ParagraphBreak {
			p.reset(mark)
			return ParseSuccess{}, newWarning(RuleFailed, "color", open)
		}
		name.WriteString(cur.Slice)
		p.step()
	}
	p.step() // consume "|"

	var children []tree.Element
	var warnings []*ParseWarning
	for {
		cur := p.current()
		if cur.Kind == token.InputEnd || cur.Kind == token.ParagraphBreak {
			p.reset(mark)
			return ParseSuccess{}, newWarning(RuleFailed, "color", open)
		}
		if cur.Kind == token.Color {
			p.step()
			return ParseSuccess{
				Elements: []tree.Element{tree.Color{
					Name:     strings.TrimSpace(name.String()),
					Children: children,
				}},
				Warnings: warnings,
			}, nil
		}
		success, err := consume(p)
		if err != nil {
			return ParseSuccess{}, err
		}
		children = append(children, success.Elements...)
		warnings = append(warnings, success.Warnings...)
	}
}

// tryRaw handles "@@text@@" per spec.md §6.3, including the three
// compact special cases and the newline-aborts rule. Raw content is
// never itself parsed: everything between the delimiters (or, for the
// compact forms, derived from the run length) passes through verbatim.
func tryRaw(p *Parser) (ParseSuccess, error) {
	open := p.current()

	// Since LeftRaw and RightRaw share one Kind (both are "@@"), the
	// compact forms are decided by counting consecutive "@@" tokens
	// rather than by Kind.
	run := 0
	for p.peek(run).Kind == token.LeftRaw {
		run++
	}
	switch run {
	case 3: // "@@@@@@" -> "@@"
		p.advanceBy(3)
		return ParseSuccess{Elements: []tree.Element{tree.Raw{Content: "@@"}}}, nil
	case 2:
		// "@@@@@" -> "@": the fifth "@" leads the following Other token,
		// whose remainder stays plain text. Otherwise an exactly-2 run is
		// "@@@@": empty raw content, i.e. "@@" + "@@" with nothing between.
		if nxt := p.peek(2); nxt.Kind == token.Other && strings.HasPrefix(nxt.Slice, "@") {
			p.advanceBy(3)
			els := []tree.Element{tree.Raw{Content: "@"}}
			if rest := nxt.Slice[1:]; rest != "" {
				els = append(els, tree.Text{Content: rest})
			}
			return ParseSuccess{Elements: els}, nil
		}
		p.advanceBy(2)
		return ParseSuccess{Elements: []tree.Element{tree.Raw{Content: ""}}}, nil
	}

	p.step() // consume opening "@@"

	start := p.pos
	for {
		cur := p.current()
		if cur.Kind == token.InputEnd {
			p.pos = start
			return ParseSuccess{}, newWarning(RuleFailed, "raw", open)
		}
		if cur.Kind == token.ParagraphBreak || cur.Kind == token.LineBreak {
			// "@@...\n" aborts: the raw span may not cross a line break.
			p.pos = start
			return ParseSuccess{}, newWarning(RuleFailed, "raw", open)
		}
		if cur.Kind == token.LeftRaw { // shares Kind with RightRaw
			break
		}
		p.step()
	}

	var content strings.Builder
	for i := start; i < p.pos; i++ {
		content.WriteString(p.tokens[i].Slice)
	}
	p.step() // consume closing "@@"

	return ParseSuccess{Elements: []tree.Element{tree.Raw{Content: content.String()}}}, nil
}

// tryHTMLRaw handles "@<text>@": raw HTML passed through to the renderer
// verbatim as one HTML element. HtmlEntity tokens inside it are copied
// into that content unchanged, like every other token.
func tryHTMLRaw(p *Parser) (ParseSuccess, error) {
	open := p.current()
	p.step() // consume "@<"

	var sb strings.Builder
	for {
		cur := p.current()
		if cur.Kind == token.InputEnd {
			return ParseSuccess{}, newWarning(RuleFailed, "html-raw", open)
		}
		if cur.Kind == token.RightHTML {
			p.step()
			return ParseSuccess{Elements: []tree.Element{tree.HTML{Content: sb.String()}}}, nil
		}
		sb.WriteString(cur.Slice)
		p.step()
	}
}

// tryVariable handles "{@name}" eager scope-variable substitution per
// spec.md §4.4: a missing name resolves to the empty string and also
// records a NoSuchVariable warning.
func tryVariable(p *Parser) (ParseSuccess, error) {
	tok := p.current()
	name := strings.TrimSuffix(strings.TrimPrefix(tok.Slice, "{@"), "}")
	p.step()

	val, ok := p.state.scopes.Get(name)
	if !ok {
		return ParseSuccess{
			Elements: []tree.Element{tree.Text{Content: ""}},
			Warnings: []*ParseWarning{newWarning(NoSuchVariable, "variable", tok)},
		}, nil
	}
	return ParseSuccess{Elements: []tree.Element{tree.Text{Content: val}}}, nil
}
