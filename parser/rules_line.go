package parser

import (
	"strings"

	"github.com/dpotapov/ftml-go/token"
	"github.com/dpotapov/ftml-go/tree"
)

func init() {
	register(token.BulletItem, Rule{Name: "list", Position: PositionStartOfLine, TryConsume: tryList})
	register(token.NumberedItem, Rule{Name: "list", Position: PositionStartOfLine, TryConsume: tryList})
	register(token.Quote, Rule{Name: "blockquote", Position: PositionStartOfLine, TryConsume: tryBlockquote})
	register(token.Strikethrough, Rule{Name: "horizontal-rule", Position: PositionStartOfLine, TryConsume: tryHorizontalRule})
	register(token.Other, Rule{Name: "heading", Position: PositionStartOfLine, TryConsume: tryHeading})
	register(token.Pipe, Rule{Name: "table", Position: PositionStartOfLine, TryConsume: tryTable})
	register(token.Colon, Rule{Name: "definition-list", Position: PositionStartOfLine, TryConsume: tryDefinitionList})
	register(token.Equals, Rule{Name: "align-marker", Position: PositionStartOfLine, TryConsume: tryAlignMarker})
	register(token.LineBreak, Rule{Name: "line-break", Position: PositionAny, TryConsume: tryLineBreak})
	register(token.ParagraphBreak, Rule{Name: "paragraph-break", Position: PositionAny, TryConsume: tryParagraphBreak})
}

// tryLineBreak turns a single manual line break into a LineBreak element.
// consume()'s wrapper steps the token forward automatically since this
// rule doesn't move the position itself.
func tryLineBreak(p *Parser) (ParseSuccess, error) {
	return ParseSuccess{Elements: []tree.Element{tree.LineBreak{}}}, nil
}

// tryParagraphBreak turns a blank-line break into two LineBreak elements,
// so tree.collapseLineBreaks folds it into a LineBreaks(2+) run that
// assembleParagraphs then recognizes as a paragraph boundary rather than a
// rendered <br>.
func tryParagraphBreak(p *Parser) (ParseSuccess, error) {
	return ParseSuccess{Elements: []tree.Element{tree.LineBreak{}, tree.LineBreak{}}}, nil
}

// tryAlignMarker matches a line starting with "=" (spec.md §6.3/§8
// scenario 2: "= some centered text"), producing a centered AlignMarker.
// The inner loop stops short of any "[[/...]]" closing tag so content
// sharing a line with e.g. "[[/div]]" doesn't swallow the enclosing
// block's close.
func tryAlignMarker(p *Parser) (ParseSuccess, error) {
	p.step() // "="
	if p.current().Kind == token.Whitespace {
		p.step()
	}

	var children []tree.Element
	var warnings []*ParseWarning
	for {
		c := p.current()
		if c.Kind == token.LineBreak || c.Kind == token.ParagraphBreak || c.Kind == token.InputEnd {
			break
		}
		if startsClosingTag(p) {
			break
		}
		success, err := consume(p)
		if err != nil {
			return ParseSuccess{}, err
		}
		children = append(children, success.Elements...)
		warnings = append(warnings, success.Warnings...)
	}

	return ParseSuccess{
		Elements: []tree.Element{tree.AlignMarker{Align: tree.AlignCenter, Children: children}},
		Warnings: warnings,
	}, nil
}

// startsClosingTag reports whether the parser is positioned at the start
// of a "[[/...]]" tag, without consuming anything.
func startsClosingTag(p *Parser) bool {
	if p.current().Kind != token.LeftBlock {
		return false
	}
	nxt := p.peek(1)
	return nxt.Kind == token.Other && strings.HasPrefix(nxt.Slice, "/")
}

// tryList collects consecutive bullet/numbered lines into tree.ListLine
// entries and hands them to tree.AssembleList for depth assembly, per
// spec.md's "indent = byte-count of leading whitespace, capped at 20"
// list rule.
func tryList(p *Parser) (ParseSuccess, error) {
	var lines []tree.ListLine
	var warnings []*ParseWarning
	maxDepth := p.Settings.maxListDepth()

	for {
		cur := p.current()
		if cur.Kind != token.BulletItem && cur.Kind != token.NumberedItem {
			break
		}
		ordered := cur.Kind == token.NumberedItem
		depth := leadingWhitespaceCount(cur.Slice)
		if depth > maxDepth {
			warnings = append(warnings, newWarning(ListDepthExceeded, "list", cur))
			depth = maxDepth
		}
		p.step()

		var content []tree.Element
		for {
			c := p.current()
			if c.Kind == token.LineBreak {
				p.step()
				break
			}
			if c.Kind == token.ParagraphBreak || c.Kind == token.InputEnd {
				break
			}
			success, err := consume(p)
			if err != nil {
				return ParseSuccess{}, err
			}
			content = append(content, success.Elements...)
			warnings = append(warnings, success.Warnings...)
		}
		lines = append(lines, tree.ListLine{Depth: depth, Ordered: ordered, Content: content})
	}

	if len(lines) == 0 {
		return ParseSuccess{}, newWarning(RuleFailed, "list", p.current())
	}

	lists := tree.AssembleList(lines)
	elements := make([]tree.Element, len(lists))
	for i, l := range lists {
		elements[i] = l
	}
	return ParseSuccess{Elements: elements, Warnings: warnings}, nil
}

func leadingWhitespaceCount(slice string) int {
	n := 0
	for _, r := range slice {
		if r == ' ' || r == '\t' {
			n++
			continue
		}
		break
	}
	return n
}

// tryBlockquote collects one or more consecutive "> ..." lines (each its
// own Quote token, which already swallows a single following space) and
// sub-parses their concatenated body as an independent token stream, the
// way nested ">>" lines recurse back into this same rule. Grounded on
// the teacher's pattern of sub-parsing a collected token run (see
// subParse) rather than re-lexing stripped text.
func tryBlockquote(p *Parser) (ParseSuccess, error) {
	open := p.current()
	var collected []token.Extracted

	for p.current().Kind == token.Quote {
		p.step()
		for {
			c := p.current()
			if c.Kind == token.InputEnd {
				break
			}
			collected = append(collected, c)
			if c.Kind == token.LineBreak || c.Kind == token.ParagraphBreak {
				p.step()
				break
			}
			p.step()
		}
	}

	if len(collected) == 0 {
		return ParseSuccess{}, newWarning(RuleFailed, "blockquote", open)
	}

	elements, warnings, err := p.subParse(collected)
	if err != nil {
		return ParseSuccess{}, err
	}

	return ParseSuccess{
		Elements: []tree.Element{tree.Container{
			Type:       tree.ContainerBlockquote,
			Attributes: tree.NewAttributeMap(),
			Children:   elements,
		}},
		Warnings: warnings,
	}, nil
}

// tryHorizontalRule matches a line consisting of nothing but 4 or more
// dashes (tokenized as a run of Strikethrough tokens, since "--" is the
// Strikethrough delimiter). The preprocessor's em-dash substitution
// already special-cases such lines so the literal dashes survive to the
// tokenizer; this rule is what actually consumes them.
func tryHorizontalRule(p *Parser) (ParseSuccess, error) {
	open := p.current()
	mark := p.mark()

	dashes := 0
	for p.current().Kind == token.Strikethrough {
		dashes += len(p.current().Slice)
		p.step()
	}

	cur := p.current()
	atLineEnd := cur.Kind == token.LineBreak || cur.Kind == token.ParagraphBreak || cur.Kind == token.InputEnd
	if dashes < 4 || !atLineEnd {
		p.reset(mark)
		return ParseSuccess{}, newWarning(RuleFailed, "horizontal-rule", open)
	}
	if cur.Kind == token.LineBreak || cur.Kind == token.ParagraphBreak {
		p.step()
	}
	return ParseSuccess{Elements: []tree.Element{tree.HorizontalRule{}}}, nil
}

// tryHeading matches a line starting with a run of 1-6 '+' characters
// (coalesced by the lexer into one Other token, since '+' has no
// dedicated alternative) followed by whitespace and the heading text.
// The resulting Container also registers a TOC entry at the matching
// depth.
func tryHeading(p *Parser) (ParseSuccess, error) {
	open := p.current()
	mark := p.mark()

	if open.Kind != token.Other || !isAllPlus(open.Slice) {
		return ParseSuccess{}, newWarning(RuleFailed, "heading", open)
	}
	level := len(open.Slice)
	if level < 1 || level > 6 {
		return ParseSuccess{}, newWarning(RuleFailed, "heading", open)
	}
	p.step()

	if p.current().Kind != token.Whitespace {
		p.reset(mark)
		return ParseSuccess{}, newWarning(RuleFailed, "heading", open)
	}
	p.step()

	var children []tree.Element
	var warnings []*ParseWarning
	var rendered strings.Builder
	for {
		c := p.current()
		if c.Kind == token.LineBreak || c.Kind == token.ParagraphBreak || c.Kind == token.InputEnd {
			if c.Kind == token.LineBreak || c.Kind == token.ParagraphBreak {
				p.step()
			}
			break
		}
		success, err := consume(p)
		if err != nil {
			return ParseSuccess{}, err
		}
		children = append(children, success.Elements...)
		warnings = append(warnings, success.Warnings...)
		rendered.WriteString(c.Slice)
	}

	p.addTOCHeading(level, strings.TrimSpace(rendered.String()))

	return ParseSuccess{
		Elements: []tree.Element{tree.Container{
			Type:       tree.ContainerHeader,
			Level:      level,
			Attributes: tree.NewAttributeMap(),
			Children:   children,
		}},
		Warnings: warnings,
	}, nil
}

func isAllPlus(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r != '+' {
			return false
		}
	}
	return true
}

// tryTable collects consecutive "||cell||cell||" rows into a tree.Table.
// A cell starting with "~" is a header cell.
func tryTable(p *Parser) (ParseSuccess, error) {
	open := p.current()
	var rows []tree.TableRow
	var warnings []*ParseWarning

	for p.current().Kind == token.Pipe {
		row, rowWarnings, ok := parseTableRow(p)
		if !ok {
			break
		}
		rows = append(rows, row)
		warnings = append(warnings, rowWarnings...)
	}

	if len(rows) == 0 {
		return ParseSuccess{}, newWarning(RuleFailed, "table", open)
	}

	return ParseSuccess{
		Elements: []tree.Element{tree.Table{Attributes: tree.NewAttributeMap(), Rows: rows}},
		Warnings: warnings,
	}, nil
}

// parseTableRow parses one "||cell||cell||...||" row: every delimiter,
// including the one that closes the row, is a "||" pair, so the end of
// a row is distinguished not by delimiter shape but by what follows it
// (a line break/end-of-input rather than more cell content).
func parseTableRow(p *Parser) (tree.TableRow, []*ParseWarning, bool) {
	mark := p.mark()
	if !consumeDoublePipe(p) {
		return tree.TableRow{}, nil, false
	}

	var cells []tree.TableCell
	var warnings []*ParseWarning
	for {
		header := false
		if p.current().Kind == token.Other && strings.HasPrefix(p.current().Slice, "~") {
			header = true
			p.advanceOtherPrefix("~")
		}

		var children []tree.Element
		for {
			c := p.current()
			if c.Kind == token.Pipe {
				break
			}
			if c.Kind == token.LineBreak || c.Kind == token.ParagraphBreak || c.Kind == token.InputEnd {
				p.reset(mark)
				return tree.TableRow{}, nil, false
			}
			success, err := consume(p)
			if err != nil {
				break
			}
			children = append(children, success.Elements...)
			warnings = append(warnings, success.Warnings...)
		}
		cells = append(cells, tree.TableCell{Header: header, Children: children})

		if !consumeDoublePipe(p) {
			p.reset(mark)
			return tree.TableRow{}, nil, false
		}

		c := p.current()
		if c.Kind == token.LineBreak || c.Kind == token.ParagraphBreak || c.Kind == token.InputEnd {
			if c.Kind == token.LineBreak || c.Kind == token.ParagraphBreak {
				p.step()
			}
			break
		}
	}

	return tree.TableRow{Cells: cells}, warnings, true
}

// consumeDoublePipe consumes exactly two consecutive Pipe tokens, or
// consumes nothing and reports false if only one is present.
func consumeDoublePipe(p *Parser) bool {
	if p.current().Kind != token.Pipe {
		return false
	}
	mark := p.mark()
	p.step()
	if p.current().Kind != token.Pipe {
		p.reset(mark)
		return false
	}
	p.step()
	return true
}

// advanceOtherPrefix steps past a literal prefix of the current Other
// token, re-slicing it in place if characters remain, or consuming it
// wholesale otherwise.
func (p *Parser) advanceOtherPrefix(prefix string) {
	cur := p.tokens[p.pos]
	if cur.Slice == prefix {
		p.step()
		return
	}
	rest := strings.TrimPrefix(cur.Slice, prefix)
	p.tokens[p.pos] = token.Extracted{
		Kind:  cur.Kind,
		Slice: rest,
		Span:  token.Span{Start: cur.Span.End - len(rest), End: cur.Span.End},
	}
}

// tryDefinitionList pairs consecutive ":"-prefixed lines as alternating
// term/definition entries.
func tryDefinitionList(p *Parser) (ParseSuccess, error) {
	open := p.current()
	var items []tree.DefinitionItem
	var warnings []*ParseWarning

	for p.current().Kind == token.Colon {
		p.step()
		skipWhitespace(p)

		var content []tree.Element
		for {
			c := p.current()
			if c.Kind == token.LineBreak || c.Kind == token.ParagraphBreak || c.Kind == token.InputEnd {
				if c.Kind == token.LineBreak || c.Kind == token.ParagraphBreak {
					p.step()
				}
				break
			}
			success, err := consume(p)
			if err != nil {
				return ParseSuccess{}, err
			}
			content = append(content, success.Elements...)
			warnings = append(warnings, success.Warnings...)
		}

		if len(items) > 0 && items[len(items)-1].Definition == nil {
			items[len(items)-1].Definition = content
		} else {
			items = append(items, tree.DefinitionItem{Term: content})
		}
	}

	if len(items) == 0 {
		return ParseSuccess{}, newWarning(RuleFailed, "definition-list", open)
	}

	return ParseSuccess{
		Elements: []tree.Element{tree.DefinitionList{Items: items}},
		Warnings: warnings,
	}, nil
}
