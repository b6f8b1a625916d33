package parser

import (
	"strconv"
	"strings"

	"github.com/dpotapov/ftml-go/callbacks"
	"github.com/dpotapov/ftml-go/token"
	"github.com/dpotapov/ftml-go/tree"
)

func init() {
	register(token.LeftBlock, Rule{Name: "block", Position: PositionAny, TryConsume: tryBlock})
}

// blockHead is the parsed "[[*name_ args]]" opening tag, before the
// named handler interprets its argument head.
type blockHead struct {
	Name    string // lowercased, flags stripped
	Star    bool
	Score   bool
	ArgHead string
	Open    token.Extracted
}

// blockHandler implements one named block's body (or self-closing)
// parse, given the already-consumed opening tag.
type blockHandler func(p *Parser, head blockHead) (ParseSuccess, error)

var blockHandlers map[string]blockHandler

func init() {
	blockHandlers = map[string]blockHandler{
		"div":           blockContainer(tree.ContainerDiv),
		"span":          blockContainer(tree.ContainerSpan),
		"mark":          blockContainer(tree.ContainerMark),
		"ins":           blockContainer(tree.ContainerInsertion),
		"del":           blockContainer(tree.ContainerDeletion),
		"hidden":        blockContainer(tree.ContainerHidden),
		"size":          blockContainer(tree.ContainerSize),
		"if":            blockIf(false),
		"ifexpr":        blockIf(true),
		"#if":           blockInlineIf(false),
		"#ifexpr":       blockInlineIf(true),
		"else":          blockElse,
		"collapsible":   blockCollapsible,
		"tabview":       blockTabView,
		"tab":           blockTab,
		"module":        blockModule,
		"code":          blockCode,
		"html":          blockHTML,
		"iframe":        blockIframe,
		"image":         blockImage("", ""),
		"=image":        blockImage("", "center"),
		"<image":        blockImage("", "left"),
		">image":        blockImage("", "right"),
		"f<image":       blockImage("left", ""),
		"f>image":       blockImage("right", ""),
		"footnote":      blockFootnote,
		"footnoteblock": blockFootnoteBlock,
		"toc":           blockTOC,
		"user":          blockUser,
		"date":          blockDate,
		"char":          blockChar,
		"scope":         blockScope,
		"declare":       blockDeclareSet(false),
		"set":           blockDeclareSet(true),
		"form":          blockContainer(tree.ContainerDiv),
		"input":         blockInput,
		"ruby":          blockRuby,
		"rt":            blockRubyText,
		"clearfloat":    blockClearFloat,
		"math":          blockMath,
		"eqref":         blockEquationRef,
	}
}

// tryBlock is the block dispatcher of spec.md §4.4: parse the opening
// "[[...]]" tag, look up the named handler, and let it consume whatever
// body or self-closing form it needs.
func tryBlock(p *Parser) (ParseSuccess, error) {
	open := p.current()
	mark := p.mark()

	head, ok := parseBlockOpen(p)
	if !ok {
		p.reset(mark)
		return ParseSuccess{}, newWarning(BlockMalformedArguments, "block", open)
	}

	handler, found := blockHandlers[head.Name]
	if !found {
		p.reset(mark)
		return ParseSuccess{}, newWarning(NoSuchBlock, "block", open)
	}

	return handler(p, head)
}

// parseBlockOpen consumes "[[" through the matching "]]", extracting the
// (possibly star/score-flagged) name and the raw argument head text.
func parseBlockOpen(p *Parser) (blockHead, bool) {
	open := p.current()
	p.step() // "[["

	star := false
	if cur := p.current(); cur.Kind == token.Other && strings.HasPrefix(cur.Slice, "*") {
		star = true
		p.advanceOtherPrefix("*")
	}

	var name strings.Builder
	for {
		cur := p.current()
		if cur.Kind == token.Whitespace || cur.Kind == token.RightBlock {
			break
		}
		if cur.Kind == token.InputEnd || cur.Kind == token.ParagraphBreak || cur.Kind == token.LineBreak {
			return blockHead{}, false
		}
		name.WriteString(cur.Slice)
		p.step()
	}

	nameStr := name.String()
	score := strings.HasSuffix(nameStr, "_")
	if score {
		nameStr = strings.TrimSuffix(nameStr, "_")
	}

	if p.current().Kind == token.Whitespace {
		p.step()
	}

	var argHead strings.Builder
	for p.current().Kind != token.RightBlock {
		cur := p.current()
		if cur.Kind == token.InputEnd || cur.Kind == token.ParagraphBreak {
			return blockHead{}, false
		}
		argHead.WriteString(cur.Slice)
		p.step()
	}
	p.step() // "]]"

	return blockHead{
		Name:    strings.ToLower(nameStr),
		Star:    star,
		Score:   score,
		ArgHead: strings.TrimSpace(argHead.String()),
		Open:    open,
	}, true
}

// tryConsumeClosingTag consumes a "[[/name]]" tag (case-insensitive) if
// the current position starts one, reporting whether it matched.
func (p *Parser) tryConsumeClosingTag(name string) bool {
	if p.current().Kind != token.LeftBlock {
		return false
	}
	nxt := p.peek(1)
	if nxt.Kind != token.Other || !strings.HasPrefix(nxt.Slice, "/") {
		return false
	}
	if !strings.EqualFold(strings.TrimSpace(nxt.Slice[1:]), name) {
		return false
	}
	if p.peek(2).Kind != token.RightBlock {
		return false
	}
	p.advanceBy(3)
	return true
}

// parseBlockBody drives consume() until the matching closing tag (or
// end of input, leniently treated as an implicit close).
func parseBlockBody(p *Parser, name string) ([]tree.Element, []*ParseWarning, error) {
	var children []tree.Element
	var warnings []*ParseWarning
	for {
		if p.current().Kind == token.InputEnd {
			return children, warnings, nil
		}
		if p.tryConsumeClosingTag(name) {
			return children, warnings, nil
		}
		success, err := consume(p)
		if err != nil {
			return nil, warnings, err
		}
		children = append(children, success.Elements...)
		warnings = append(warnings, success.Warnings...)
	}
}

// parseArgs splits a block's raw argument head into an ordered attribute
// map ("k=v k2=v2 ...") plus any leading bare positional value (a token
// with no "=" before the first k=v pair).
func parseArgs(argHead string) (*tree.AttributeMap, string) {
	attrs := tree.NewAttributeMap()
	if argHead == "" {
		return attrs, ""
	}

	fields := splitArgFields(argHead)
	positional := ""
	for i, f := range fields {
		eq := strings.IndexByte(f, '=')
		if eq < 0 {
			if i == 0 {
				positional = strings.Trim(f, `"'`)
			}
			continue
		}
		key := callbacks.NormalizeAttributeName(strings.TrimSpace(f[:eq]))
		val := strings.Trim(strings.TrimSpace(f[eq+1:]), `"'`)
		if key != "" {
			attrs.Set(key, val)
		}
	}
	return attrs, positional
}

// splitArgFields splits on whitespace outside of a quoted value, so
// `alt="hello world"` stays one field.
func splitArgFields(s string) []string {
	var fields []string
	var cur strings.Builder
	inQuote := byte(0)
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case inQuote != 0:
			cur.WriteByte(c)
			if c == inQuote {
				inQuote = 0
			}
		case c == '"' || c == '\'':
			inQuote = c
			cur.WriteByte(c)
		case c == ' ' || c == '\t':
			if cur.Len() > 0 {
				fields = append(fields, cur.String())
				cur.Reset()
			}
		default:
			cur.WriteByte(c)
		}
	}
	if cur.Len() > 0 {
		fields = append(fields, cur.String())
	}
	return fields
}

// blockContainer builds a handler for the simple "wrap children in a
// Container of the given type" family: div, span, mark, ins, del,
// hidden, size, form.
func blockContainer(ctype tree.ContainerType) blockHandler {
	return func(p *Parser, head blockHead) (ParseSuccess, error) {
		attrs, positional := parseArgs(head.ArgHead)
		if positional != "" {
			switch ctype {
			case tree.ContainerSize:
				attrs.Set("size", positional)
			}
		}
		children, warnings, err := parseBlockBody(p, head.Name)
		if err != nil {
			return ParseSuccess{}, err
		}
		return ParseSuccess{
			Elements: []tree.Element{tree.Container{Type: ctype, Attributes: attrs, Children: children}},
			Warnings: warnings,
		}, nil
	}
}

// scopeVars flattens the current WikiScript scope stack into a
// string-keyed map for EvaluateExpression calls.
func (p *Parser) scopeVars() map[string]string {
	return p.state.scopes.All()
}

// blockIf builds the body-form "[[if cond]] truthy [[else]] falsey [[/if]]"
// handler; useExpr selects "ifexpr"'s callback-based truthiness over
// plain "if"'s string-literal check (evaluateIf vs evaluateIfexpr).
// Each branch is parsed inside its own transaction so the branch not
// taken -- footnotes, TOC headings, code/html/internal-link registration
// -- never reaches the final ParserState, per spec.md's effectful-rule
// transaction scheme.
func blockIf(useExpr bool) blockHandler {
	return func(p *Parser, head blockHead) (ParseSuccess, error) {
		var truthy bool
		if useExpr {
			truthy = evaluateIfexpr(p, head.ArgHead)
		} else {
			truthy = evaluateIf(head.ArgHead)
		}

		var truthyEls, falseyEls []tree.Element
		var hasElse bool
		var warnings []*ParseWarning
		var err error

		p.WithTransaction(TxAll, func() bool {
			truthyEls, hasElse, warnings, err = parseIfBranch(p, head.Name)
			return err == nil && truthy
		})
		if err != nil {
			return ParseSuccess{}, err
		}

		if hasElse {
			var falseyWarnings []*ParseWarning
			p.WithTransaction(TxAll, func() bool {
				var again bool
				falseyEls, again, falseyWarnings, err = parseIfBranch(p, head.Name)
				for again && err == nil {
					falseyWarnings = append(falseyWarnings, newWarning(SecondElse, head.Name, head.Open))
					var more []tree.Element
					var moreWarnings []*ParseWarning
					more, again, moreWarnings, err = parseIfBranch(p, head.Name)
					falseyEls = append(falseyEls, more...)
					falseyWarnings = append(falseyWarnings, moreWarnings...)
				}
				return err == nil && !truthy
			})
			if err != nil {
				return ParseSuccess{}, err
			}
			warnings = append(warnings, falseyWarnings...)
		}

		if truthy {
			return ParseSuccess{Elements: []tree.Element{tree.Fragment{Children: truthyEls}}, Warnings: warnings}, nil
		}
		return ParseSuccess{Elements: []tree.Element{tree.Fragment{Children: falseyEls}}, Warnings: warnings}, nil
	}
}

// parseIfBranch drives consume() accumulating elements until it hits the
// block's closing tag (branch ends, no else) or a bare "[[else]]" marker
// (branch ends, a falsey branch follows), reporting which one stopped it.
func parseIfBranch(p *Parser, name string) ([]tree.Element, bool, []*ParseWarning, error) {
	var children []tree.Element
	var warnings []*ParseWarning
	for {
		if p.current().Kind == token.InputEnd {
			return children, false, warnings, nil
		}
		if p.tryConsumeClosingTag(name) {
			return children, false, warnings, nil
		}
		if p.tryConsumeElseTag() {
			return children, true, warnings, nil
		}
		success, err := consume(p)
		if err != nil {
			return nil, false, warnings, err
		}
		children = append(children, success.Elements...)
		warnings = append(warnings, success.Warnings...)
	}
}

// tryConsumeElseTag consumes a bare "[[else]]" opening tag (not a closing
// tag) if the current position starts one.
func (p *Parser) tryConsumeElseTag() bool {
	if p.current().Kind != token.LeftBlock {
		return false
	}
	nxt := p.peek(1)
	if nxt.Kind != token.Other || !strings.EqualFold(strings.TrimSpace(nxt.Slice), "else") {
		return false
	}
	if p.peek(2).Kind != token.RightBlock {
		return false
	}
	p.advanceBy(3)
	return true
}

// evaluateIf implements the plain "if"/"#if" truthiness rule: false iff
// the trimmed, lowercased condition is the literal "false"/"null", or an
// unresolved "{$...}" or "%%...%%" placeholder. It never calls the host
// callback. Grounded on the original implementation's evaluate_if
// (parsing/rule/impls/block/blocks/expression.rs).
func evaluateIf(expr string) bool {
	e := strings.ToLower(strings.TrimSpace(expr))
	if e == "false" || e == "null" {
		return false
	}
	if strings.HasPrefix(e, "{$") && strings.HasSuffix(e, "}") {
		return false
	}
	if strings.HasPrefix(e, "%%") && strings.HasSuffix(e, "%%") {
		return false
	}
	return true
}

// evaluateIfexpr implements "ifexpr"/"#ifexpr": delegate to the host
// callback and use the returned Value's own truthiness, per the original
// implementation's evaluate_ifexpr.
func evaluateIfexpr(p *Parser, expr string) bool {
	val, err := p.Callbacks.EvaluateExpression(expr, p.scopeVars())
	if err != nil {
		return false
	}
	return val.Truthy()
}

// blockElse handles the "[[else]]" self-closing marker reached outside a
// blockIf body (a legitimate else is always intercepted by
// parseIfBranch/tryConsumeElseTag before consume() ever sees it).
func blockElse(p *Parser, head blockHead) (ParseSuccess, error) {
	if !p.acceptsPartial(tree.PartialElse) {
		return ParseSuccess{}, newWarning(RuleFailed, "else", head.Open)
	}
	return ParseSuccess{Elements: []tree.Element{tree.Partial{Kind: tree.PartialElse}}}, nil
}

// blockInlineIf builds the self-closing "[[#if cond | truthy | falsey]]"
// handler; useExpr selects "#ifexpr"'s callback-based truthiness over
// "#if"'s plain string-literal check. Both branches are plain text,
// supplied directly in the argument head rather than as a sub-parsed
// body.
func blockInlineIf(useExpr bool) blockHandler {
	return func(p *Parser, head blockHead) (ParseSuccess, error) {
		parts := strings.SplitN(head.ArgHead, "|", 3)
		cond := strings.TrimSpace(parts[0])
		truthyText, falseyText := "", ""
		if len(parts) > 1 {
			truthyText = strings.TrimSpace(parts[1])
		}
		if len(parts) > 2 {
			falseyText = strings.TrimSpace(parts[2])
		}

		var truthy bool
		if useExpr {
			truthy = evaluateIfexpr(p, cond)
		} else {
			truthy = evaluateIf(cond)
		}

		if truthy {
			return ParseSuccess{Elements: []tree.Element{tree.Text{Content: truthyText}}}, nil
		}
		return ParseSuccess{Elements: []tree.Element{tree.Text{Content: falseyText}}}, nil
	}
}

// blockCollapsible implements "[[collapsible]]"/"[[collapsible_]]", the
// trailing score flag meaning "start open", per spec.md §9's note that
// collapsible's text_align is an optional contractual attribute.
func blockCollapsible(p *Parser, head blockHead) (ParseSuccess, error) {
	attrs, _ := parseArgs(head.ArgHead)
	title, _ := attrs.Get("title")
	showText, hasShow := attrs.Get("show")
	if !hasShow {
		showText = p.Callbacks.GetI18nMessage("collapsible-open")
	}
	hideText, hasHide := attrs.Get("hide")
	if !hasHide {
		hideText = p.Callbacks.GetI18nMessage("collapsible-hide")
	}
	textAlign, _ := attrs.Get("text-align")

	children, warnings, err := parseBlockBody(p, head.Name)
	if err != nil {
		return ParseSuccess{}, err
	}
	return ParseSuccess{
		Elements: []tree.Element{tree.Collapsible{
			Title:     title,
			ShowText:  showText,
			HideText:  hideText,
			TextAlign: textAlign,
			StartOpen: head.Score,
			Children:  children,
		}},
		Warnings: warnings,
	}, nil
}

// blockTabView implements "[[tabview]]", extracting Partial{Tab}
// children produced by nested "[[tab ...]]" blocks parsed in its body.
func blockTabView(p *Parser, head blockHead) (ParseSuccess, error) {
	prev := p.acceptsPartial(tree.PartialTab)
	p.state.acceptsPartial[tree.PartialTab] = true
	children, warnings, err := parseBlockBody(p, head.Name)
	p.state.acceptsPartial[tree.PartialTab] = prev
	if err != nil {
		return ParseSuccess{}, err
	}

	var tabs []tree.Tab
	for _, el := range children {
		part, ok := el.(tree.Partial)
		if !ok {
			if _, isVoid := el.(tree.Void); isVoid {
				continue
			}
			warnings = append(warnings, newWarning(TabViewContainsNonTab, head.Name, head.Open))
			continue
		}
		if part.Kind != tree.PartialTab {
			continue
		}
		label, _ := part.Extra.(string)
		tabs = append(tabs, tree.Tab{Label: label, Children: part.Children})
	}
	if len(tabs) == 0 {
		warnings = append(warnings, newWarning(TabViewEmpty, head.Name, head.Open))
	}

	return ParseSuccess{Elements: []tree.Element{tree.TabView{Tabs: tabs}}, Warnings: warnings}, nil
}

// blockTab implements "[[tab label]]", legal only inside a tabview body.
func blockTab(p *Parser, head blockHead) (ParseSuccess, error) {
	if !p.acceptsPartial(tree.PartialTab) {
		return ParseSuccess{}, newWarning(TabOutsideTabView, "tab", head.Open)
	}
	_, label := parseArgs(head.ArgHead)
	if label == "" {
		label = head.ArgHead
	}
	children, warnings, err := parseBlockBody(p, head.Name)
	if err != nil {
		return ParseSuccess{}, err
	}
	return ParseSuccess{
		Elements: []tree.Element{tree.Partial{Kind: tree.PartialTab, Children: children, Extra: label}},
		Warnings: warnings,
	}, nil
}

// blockModule resolves which modules take a body via the host callback and
// defers actual rendering to render/html, which holds the RenderModule
// call: the parser only captures the module's name, k=v params, and (when
// ModuleHasBody says so) its raw, unparsed body text.
func blockModule(p *Parser, head blockHead) (ParseSuccess, error) {
	attrs, name := parseArgs(head.ArgHead)

	var body []tree.Element
	if p.Callbacks.ModuleHasBody(name) {
		raw, err := readRawUntilClose(p, head.Name)
		if err != nil {
			return ParseSuccess{}, err
		}
		body = []tree.Element{tree.Raw{Content: raw}}
	}

	return ParseSuccess{Elements: []tree.Element{tree.Module{Name: name, Params: attrs, Body: body}}}, nil
}

// readRawUntilClose concatenates verbatim source text up to (not
// including) the matching "[[/name]]" closing tag, used by blocks whose
// body is opaque to the parser (module, code, html).
func readRawUntilClose(p *Parser, name string) (string, error) {
	var sb strings.Builder
	for {
		if p.current().Kind == token.InputEnd {
			return sb.String(), nil
		}
		if p.tryConsumeClosingTag(name) {
			return sb.String(), nil
		}
		sb.WriteString(p.current().Slice)
		p.step()
	}
}

func blockCode(p *Parser, head blockHead) (ParseSuccess, error) {
	_, lang := parseArgs(head.ArgHead)
	raw, err := readRawUntilClose(p, head.Name)
	if err != nil {
		return ParseSuccess{}, err
	}
	p.state.code = append(p.state.code, raw)
	return ParseSuccess{Elements: []tree.Element{tree.Code{Language: lang, Content: raw}}}, nil
}

func blockHTML(p *Parser, head blockHead) (ParseSuccess, error) {
	raw, err := readRawUntilClose(p, head.Name)
	if err != nil {
		return ParseSuccess{}, err
	}
	p.state.html = append(p.state.html, raw)
	return ParseSuccess{Elements: []tree.Element{tree.HTML{Content: raw}}}, nil
}

func blockIframe(p *Parser, head blockHead) (ParseSuccess, error) {
	attrs, src := parseArgs(head.ArgHead)
	if src == "" {
		return ParseSuccess{}, newWarning(BlockMissingArguments, "iframe", head.Open)
	}
	return ParseSuccess{Elements: []tree.Element{tree.Iframe{Source: src, Attributes: attrs}}}, nil
}

// blockImage builds a self-closing image handler for one of the six
// name-variant forms (plain, "=", "<", ">", "f<", "f>") that select
// float/align per spec.md §6.3.
func blockImage(float, align string) blockHandler {
	return func(p *Parser, head blockHead) (ParseSuccess, error) {
		attrs, src := parseArgs(head.ArgHead)
		if src == "" {
			return ParseSuccess{}, newWarning(BlockMissingArguments, "image", head.Open)
		}
		return ParseSuccess{Elements: []tree.Element{tree.Image{
			Source:     src,
			Float:      float,
			Align:      align,
			Attributes: attrs,
		}}}, nil
	}
}

// blockFootnote implements "[[footnote]] body [[/footnote]]": the body
// is registered on the shared footnotes side channel and replaced in the
// stream by a Footnote reference at its 1-based encounter index.
func blockFootnote(p *Parser, head blockHead) (ParseSuccess, error) {
	prevInFootnote := p.state.inFootnote
	p.state.inFootnote = true
	children, warnings, err := parseBlockBody(p, head.Name)
	p.state.inFootnote = prevInFootnote
	if err != nil {
		return ParseSuccess{}, err
	}
	idx := p.addFootnote(children)
	return ParseSuccess{Elements: []tree.Element{tree.Footnote{Index: idx}}, Warnings: warnings}, nil
}

func blockFootnoteBlock(p *Parser, head blockHead) (ParseSuccess, error) {
	attrs, _ := parseArgs(head.ArgHead)
	p.markFootnoteBlockSeen()
	var title *string
	if t, ok := attrs.Get("title"); ok {
		title = &t
	}
	_, hide := attrs.Get("hide")
	return ParseSuccess{Elements: []tree.Element{tree.FootnoteBlock{Title: title, Hide: hide}}}, nil
}

func blockTOC(p *Parser, head blockHead) (ParseSuccess, error) {
	p.markTOCBlockSeen()
	return ParseSuccess{Elements: []tree.Element{tree.TableOfContents{}}}, nil
}

func blockUser(p *Parser, head blockHead) (ParseSuccess, error) {
	attrs, name := parseArgs(head.ArgHead)
	if name == "" {
		return ParseSuccess{}, newWarning(BlockMissingArguments, "user", head.Open)
	}
	showAvatar := true
	if v, ok := attrs.Get("avatar"); ok && v == "false" {
		showAvatar = false
	}
	return ParseSuccess{Elements: []tree.Element{tree.User{Name: name, ShowAvatar: showAvatar}}}, nil
}

func blockDate(p *Parser, head blockHead) (ParseSuccess, error) {
	attrs, positional := parseArgs(head.ArgHead)
	unix, _ := strconv.ParseInt(positional, 10, 64)
	format, _ := attrs.Get("format")
	_, fuzzy := attrs.Get("fuzzy")
	return ParseSuccess{Elements: []tree.Element{tree.Date{Unix: unix, Format: format, Fuzzy: fuzzy}}}, nil
}

// blockChar resolves a "U+hex" or decimal Unicode codepoint into a single
// literal Text element, grounded on the original implementation's
// character escape block. Character names are not recognized.
func blockChar(p *Parser, head blockHead) (ParseSuccess, error) {
	_, spec := parseArgs(head.ArgHead)
	spec = strings.TrimSpace(spec)

	var code int64
	var err error
	switch {
	case strings.HasPrefix(spec, "U+") || strings.HasPrefix(spec, "u+"):
		code, err = strconv.ParseInt(spec[2:], 16, 32)
	default:
		code, err = strconv.ParseInt(spec, 10, 32)
	}
	if err != nil || code < 0 {
		return ParseSuccess{}, newWarning(BlockMalformedArguments, "char", head.Open)
	}
	return ParseSuccess{Elements: []tree.Element{tree.Text{Content: string(rune(code))}}}, nil
}

// blockScope implements "[[scope]] ... [[/scope]]": pushes a new
// WikiScript variable frame for the body's declare/set rules, popping it
// (and leaking eligible bindings upward) on exit.
func blockScope(p *Parser, head blockHead) (ParseSuccess, error) {
	p.state.scopes.Push()
	children, warnings, err := parseBlockBody(p, head.Name)
	p.state.scopes.Pop()
	if err != nil {
		return ParseSuccess{}, err
	}
	return ParseSuccess{Elements: []tree.Element{tree.Fragment{Children: children}}, Warnings: warnings}, nil
}

// blockDeclareSet builds the self-closing "[[declare name value]]" /
// "[[set name value]]" handler; a Star-flagged directive evaluates value
// as an expression via the host callback instead of taking it literally.
func blockDeclareSet(isSet bool) blockHandler {
	return func(p *Parser, head blockHead) (ParseSuccess, error) {
		fields := strings.Fields(head.ArgHead)
		if len(fields) == 0 {
			return ParseSuccess{}, newWarning(BlockMissingArguments, head.Name, head.Open)
		}
		name := fields[0]
		value := strings.TrimSpace(strings.TrimPrefix(head.ArgHead, name))

		if head.Star {
			val, err := p.Callbacks.EvaluateExpression(value, p.scopeVars())
			if err == nil {
				value = renderValue(val)
			}
		}

		if isSet {
			p.state.scopes.Set(name, value)
		} else {
			p.state.scopes.Declare(name, value)
		}
		return ParseSuccess{Elements: []tree.Element{tree.Void{}}}, nil
	}
}

func renderValue(v callbacks.Value) string {
	switch v.Kind {
	case callbacks.ValueBool:
		return strconv.FormatBool(v.Bool)
	case callbacks.ValueInt:
		return strconv.FormatInt(v.Int, 10)
	case callbacks.ValueFloat:
		return strconv.FormatFloat(v.Flt, 'g', -1, 64)
	case callbacks.ValueString:
		return v.Str
	default:
		return ""
	}
}

func blockInput(p *Parser, head blockHead) (ParseSuccess, error) {
	attrs, kind := parseArgs(head.ArgHead)
	name, _ := attrs.Get("name")
	value, _ := attrs.Get("value")
	placeholder, _ := attrs.Get("placeholder")
	return ParseSuccess{Elements: []tree.Element{tree.FormInput{
		Kind:        kind,
		Name:        name,
		Value:       value,
		Placeholder: placeholder,
		Attributes:  attrs,
	}}}, nil
}

// blockRuby implements "[[ruby]] base [[rt]]reading[[/rt]] [[/ruby]]":
// nested "[[rt]]" blocks are only legal inside a ruby body, communicated
// via the PartialRubyText accepts-partial context.
func blockRuby(p *Parser, head blockHead) (ParseSuccess, error) {
	prev := p.acceptsPartial(tree.PartialRubyText)
	p.state.acceptsPartial[tree.PartialRubyText] = true
	children, warnings, err := parseBlockBody(p, head.Name)
	p.state.acceptsPartial[tree.PartialRubyText] = prev
	if err != nil {
		return ParseSuccess{}, err
	}

	var out []tree.Element
	for _, el := range children {
		if part, ok := el.(tree.Partial); ok && part.Kind == tree.PartialRubyText {
			out = append(out, tree.Container{Type: tree.ContainerRubyText, Attributes: tree.NewAttributeMap(), Children: part.Children})
			continue
		}
		out = append(out, el)
	}
	return ParseSuccess{
		Elements: []tree.Element{tree.Container{Type: tree.ContainerRuby, Attributes: tree.NewAttributeMap(), Children: out}},
		Warnings: warnings,
	}, nil
}

func blockRubyText(p *Parser, head blockHead) (ParseSuccess, error) {
	if !p.acceptsPartial(tree.PartialRubyText) {
		return ParseSuccess{}, newWarning(RubyTextOutsideRuby, "rt", head.Open)
	}
	children, warnings, err := parseBlockBody(p, head.Name)
	if err != nil {
		return ParseSuccess{}, err
	}
	return ParseSuccess{
		Elements: []tree.Element{tree.Partial{Kind: tree.PartialRubyText, Children: children}},
		Warnings: warnings,
	}, nil
}

func blockClearFloat(p *Parser, head blockHead) (ParseSuccess, error) {
	_, direction := parseArgs(head.ArgHead)
	return ParseSuccess{Elements: []tree.Element{tree.ClearFloat{Direction: direction}}}, nil
}

// blockMath implements a named, numbered equation block: "[[math name]] latex [[/math]]".
func blockMath(p *Parser, head blockHead) (ParseSuccess, error) {
	_, name := parseArgs(head.ArgHead)
	latex, err := readRawUntilClose(p, head.Name)
	if err != nil {
		return ParseSuccess{}, err
	}
	return ParseSuccess{Elements: []tree.Element{tree.Math{Name: name, Latex: strings.TrimSpace(latex)}}}, nil
}

func blockEquationRef(p *Parser, head blockHead) (ParseSuccess, error) {
	_, name := parseArgs(head.ArgHead)
	return ParseSuccess{Elements: []tree.Element{tree.EquationReference{Name: name}}}, nil
}
