package parser

import (
	"strings"

	"github.com/dpotapov/ftml-go/pageref"
	"github.com/dpotapov/ftml-go/token"
	"github.com/dpotapov/ftml-go/tree"
)

func init() {
	register(token.LeftBracket, Rule{Name: "bracket-link", Position: PositionAny, TryConsume: tryBracketLink})
	register(token.LeftLink, Rule{Name: "triple-link", Position: PositionAny, TryConsume: tryTripleLink})
}

// tryBracketLink handles "[URL label]", its "#anchor"/new-tab prefixed
// variants, and the bare-anchor "[#name label]" jump-link form, per
// spec.md §6.3. The target is the first whitespace-delimited run after
// "["; everything else up to the closing "]" is the (inline-parsed)
// label.
func tryBracketLink(p *Parser) (ParseSuccess, error) {
	open := p.current()
	p.step() // consume "["

	target, ok := readBareWord(p)
	if !ok {
		return ParseSuccess{}, newWarning(RuleFailed, "bracket-link", open)
	}

	// readBareWord already consumed the Whitespace token that ended the
	// target; skip any further separating whitespace before the label.
	skipWhitespace(p)

	var children []tree.Element
	var warnings []*ParseWarning
	for {
		cur := p.current()
		if cur.Kind == token.InputEnd || cur.Kind == token.ParagraphBreak || cur.Kind == token.LineBreak {
			return ParseSuccess{}, newWarning(RuleFailed, "bracket-link", open)
		}
		if cur.Kind == token.RightBracket {
			p.step()
			break
		}
		success, err := consume(p)
		if err != nil {
			return ParseSuccess{}, err
		}
		children = append(children, success.Elements...)
		warnings = append(warnings, success.Warnings...)
	}

	newTab := false
	if strings.HasPrefix(target, "*") {
		newTab = true
		target = target[1:]
	}

	if strings.HasPrefix(target, "#") {
		name := target[1:]
		if name == "" {
			return ParseSuccess{
				Elements: []tree.Element{tree.Link{URL: "javascript:;", NewTab: newTab, Children: children}},
				Warnings: warnings,
			}, nil
		}
		return ParseSuccess{
			Elements: []tree.Element{tree.Anchor{Name: name, Children: children}},
			Warnings: warnings,
		}, nil
	}

	if target == "" {
		return ParseSuccess{}, newWarning(InvalidURL, "bracket-link", open)
	}

	return ParseSuccess{
		Elements: []tree.Element{tree.Link{URL: target, NewTab: newTab, Children: children}},
		Warnings: warnings,
	}, nil
}

// tryTripleLink handles "[[[page]]]" and "[[[page|label]]]".
func tryTripleLink(p *Parser) (ParseSuccess, error) {
	open := p.current()
	mark := p.mark()
	p.step() // consume "[[["

	var raw strings.Builder
	for {
		cur := p.current()
		if cur.Kind == token.InputEnd || cur.Kind == token.ParagraphBreak {
			p.reset(mark)
			return ParseSuccess{}, newWarning(RuleFailed, "triple-link", open)
		}
		if cur.Kind == token.RightLink {
			p.step()
			break
		}
		if cur.Kind == token.Pipe {
			p.step()
			return finishTripleLinkWithLabel(p, open, mark, raw.String())
		}
		raw.WriteString(cur.Slice)
		p.step()
	}

	name := strings.TrimSpace(raw.String())
	ref, err := pageref.Parse(name)
	if err != nil {
		p.reset(mark)
		return ParseSuccess{}, newWarning(InvalidURL, "triple-link", open)
	}

	fragment := ""
	if idx := strings.IndexByte(ref.Name, '#'); idx >= 0 {
		fragment = ref.Name[idx+1:]
		ref.Name = ref.Name[:idx]
	}

	if !p.isInternalSite(ref) {
		p.reset(mark)
		return ParseSuccess{}, newWarning(CrossSiteRef, "triple-link", open)
	}

	p.addInternalLink(ref)
	label := ref.Name
	return ParseSuccess{
		Elements: []tree.Element{tree.Link{
			PageRef:  &ref,
			Fragment: fragment,
			Children: []tree.Element{tree.Text{Content: label}},
		}},
	}, nil
}

func finishTripleLinkWithLabel(p *Parser, open token.Extracted, mark int, rawName string) (ParseSuccess, error) {
	name := strings.TrimSpace(rawName)
	ref, err := pageref.Parse(name)
	if err != nil {
		p.reset(mark)
		return ParseSuccess{}, newWarning(InvalidURL, "triple-link", open)
	}

	fragment := ""
	if idx := strings.IndexByte(ref.Name, '#'); idx >= 0 {
		fragment = ref.Name[idx+1:]
		ref.Name = ref.Name[:idx]
	}

	var children []tree.Element
	var warnings []*ParseWarning
	for {
		cur := p.current()
		if cur.Kind == token.InputEnd || cur.Kind == token.ParagraphBreak {
			p.reset(mark)
			return ParseSuccess{}, newWarning(RuleFailed, "triple-link", open)
		}
		if cur.Kind == token.RightLink {
			p.step()
			break
		}
		success, err := consume(p)
		if err != nil {
			return ParseSuccess{}, err
		}
		children = append(children, success.Elements...)
		warnings = append(warnings, success.Warnings...)
	}

	if !p.isInternalSite(ref) {
		p.reset(mark)
		return ParseSuccess{}, newWarning(CrossSiteRef, "triple-link", open)
	}

	p.addInternalLink(ref)
	return ParseSuccess{
		Elements: []tree.Element{tree.Link{PageRef: &ref, Fragment: fragment, Children: children}},
		Warnings: warnings,
	}, nil
}

// isInternalSite reports whether ref may be linked to directly, per the
// Settings.IsInternalSite hook; an absent site is always internal.
func (p *Parser) isInternalSite(ref pageref.PageRef) bool {
	if !ref.HasSite {
		return true
	}
	if p.Settings.IsInternalSite == nil {
		return false
	}
	return p.Settings.IsInternalSite(ref.Site)
}

// readBareWord consumes tokens up to the next Whitespace/closing bracket
// and returns their concatenated slice, used for a link target that must
// not itself be inline-parsed.
func readBareWord(p *Parser) (string, bool) {
	var sb strings.Builder
	for {
		cur := p.current()
		switch cur.Kind {
		case token.InputEnd, token.ParagraphBreak, token.LineBreak:
			return "", false
		case token.Whitespace:
			p.step()
			return sb.String(), true
		case token.RightBracket:
			return sb.String(), true
		}
		sb.WriteString(cur.Slice)
		p.step()
	}
}

func skipWhitespace(p *Parser) {
	for p.current().Kind == token.Whitespace {
		p.step()
	}
}
