// Package parser implements the ftml parser engine: a single-threaded,
// recursive-backtracking, rule-based parser over a token stream, with
// per-node memoization, a transaction stack for speculative state, a
// WikiScript variable scope stack, and a recursion-depth cap.
package parser

import (
	"errors"

	"github.com/dpotapov/ftml-go/callbacks"
	"github.com/dpotapov/ftml-go/pageref"
	"github.com/dpotapov/ftml-go/preproc"
	"github.com/dpotapov/ftml-go/token"
	"github.com/dpotapov/ftml-go/tree"
)

// Settings tunes resource caps. A zero cap in Settings falls back to the
// spec-mandated default (100 recursion, 20 list depth) when it is read.
type Settings struct {
	MaxRecursionDepth int
	MaxListDepth      int
	IsInternalSite    func(site string) bool // nil means "every non-empty site is cross-site"
}

func (s Settings) maxRecursionDepth() int {
	if s.MaxRecursionDepth > 0 {
		return s.MaxRecursionDepth
	}
	return 100
}

func (s Settings) maxListDepth() int {
	if s.MaxListDepth > 0 {
		return s.MaxListDepth
	}
	return 20
}

// PageInfo is the read-only page metadata the host supplies for a parse.
type PageInfo struct {
	Site     string
	Category string
	PageName string
	Title    string
}

// ParseSuccess is what a rule, or the top-level consume loop, returns on a
// successful parse of some token span.
type ParseSuccess struct {
	Elements []tree.Element
	Warnings []*ParseWarning
}

// Parser is the single logical parser-state object described in spec.md
// §4.4. It is not safe for concurrent use; sub-parses build their own
// Parser value (see subParse) rather than sharing one across goroutines.
type Parser struct {
	PageInfo  PageInfo
	Settings  Settings
	Callbacks callbacks.PageCallbacks

	tokens   []token.Extracted
	pos      int
	fullText string

	rule        string
	depth       int
	startOfLine bool

	cache *memoCache

	state   *parserState
	txStack []txSnapshot
}

// parserState is the ParserState of spec.md §4.4: the side-channels shared
// across a single parse (or a sub-parse spawned for e.g. blockquote
// contents) plus the flags and scope stack transactions snapshot.
type parserState struct {
	acceptsPartial map[tree.PartialKind]bool

	tocDepths     []tree.TOCDepthEntry
	footnotes     [][]tree.Element
	code          []string
	html          []string
	internalLinks []pageref.PageRef

	hasFootnoteBlock bool
	hasTOCBlock      bool
	inFootnote       bool

	scopes *ScopeStack
}

func newParserState() *parserState {
	return &parserState{
		acceptsPartial: make(map[tree.PartialKind]bool),
		scopes:         NewScopeStack(),
	}
}

// NewParser builds a Parser over already-tokenized, already-preprocessed
// source. Most callers should use Parse instead.
func NewParser(fullText string, tokens []token.Extracted, pageInfo PageInfo, settings Settings, cb callbacks.PageCallbacks) *Parser {
	if cb == nil {
		cb = callbacks.Null{}
	}
	p := &Parser{
		PageInfo:    pageInfo,
		Settings:    settings,
		Callbacks:   cb,
		tokens:      tokens,
		fullText:    fullText,
		startOfLine: true,
		cache:       newMemoCache(),
		state:       newParserState(),
	}
	return p
}

// Parse drives consume() over tokens (already tokenized from the
// preprocessed fullText) until InputEnd, then assembles the tree.
func Parse(fullText string, tokens []token.Extracted, pageInfo PageInfo, settings Settings, cb callbacks.PageCallbacks) (*tree.SyntaxTree, []*ParseWarning, error) {
	p := NewParser(fullText, tokens, pageInfo, settings, cb)

	var elements []tree.Element
	var warnings []*ParseWarning

	for p.current().Kind != token.InputEnd {
		success, err := consume(p)
		if err != nil {
			var pw *ParseWarning
			if errors.As(err, &pw) && pw.Kind == RecursionDepthExceeded {
				tail := p.fullText[p.current().Span.Start:]
				warnings = append(warnings, pw)
				return &tree.SyntaxTree{Elements: []tree.Element{tree.Text{Content: tail}}}, warnings, nil
			}
			return nil, warnings, err
		}
		elements = append(elements, success.Elements...)
		warnings = append(warnings, success.Warnings...)
	}

	st := tree.Assemble(tree.AssemblyInput{
		Elements:        elements,
		TOCDepths:       p.state.tocDepths,
		Footnotes:       p.state.footnotes,
		HasFootnoteBlk:  p.state.hasFootnoteBlock,
		HasTOCBlockSeen: p.state.hasTOCBlock,
		InternalLinks:   p.state.internalLinks,
	})
	return st, warnings, nil
}

// ParseFromSource runs preproc.Process and token.Tokenize before handing
// off to Parse; this is the convenience entry point most embedders use.
func ParseFromSource(src string, pageInfo PageInfo, settings Settings, cb callbacks.PageCallbacks) (*tree.SyntaxTree, []*ParseWarning, error) {
	full := preproc.Process(src)
	toks := token.Tokenize(full)
	return Parse(full, toks, pageInfo, settings, cb)
}

// --- token stream helpers -------------------------------------------------

func (p *Parser) current() token.Extracted {
	return p.tokens[p.pos]
}

// peek returns the token n positions ahead of current (peek(0) == current),
// clamped to the final InputEnd sentinel.
func (p *Parser) peek(n int) token.Extracted {
	idx := p.pos + n
	if idx >= len(p.tokens) {
		idx = len(p.tokens) - 1
	}
	if idx < 0 {
		idx = 0
	}
	return p.tokens[idx]
}

func (p *Parser) remaining() int {
	return len(p.tokens) - p.pos - 1 // excluding InputEnd
}

// step advances one token and recomputes start_of_line from the token just
// consumed.
func (p *Parser) step() {
	if p.pos >= len(p.tokens)-1 {
		return
	}
	justConsumed := p.tokens[p.pos].Kind
	p.pos++
	p.startOfLine = isLineStart(justConsumed)
}

func isLineStart(k token.Kind) bool {
	return k == token.InputStart || k == token.LineBreak || k == token.ParagraphBreak
}

// mark/reset implement the "mark := parser.remaining" rollback idiom used
// by rules that try several sub-parses.
func (p *Parser) mark() int { return p.pos }

func (p *Parser) reset(m int) {
	p.pos = m
	p.startOfLine = m == 0 || isLineStart(p.tokens[m-1].Kind)
}

// --- recursion depth -------------------------------------------------------

func (p *Parser) depthIncrement() error {
	p.depth++
	if p.depth > p.Settings.maxRecursionDepth() {
		return newWarning(RecursionDepthExceeded, p.rule, p.current())
	}
	return nil
}

func (p *Parser) depthDecrement() {
	p.depth--
}

// --- side channels ---------------------------------------------------------

func (p *Parser) addTOCHeading(level int, renderedName string) {
	p.state.tocDepths = append(p.state.tocDepths, tree.TOCDepthEntry{Level: level, Name: renderedName})
}

// addFootnote registers a new footnote's content and returns its 1-based
// index.
func (p *Parser) addFootnote(content []tree.Element) int {
	p.state.footnotes = append(p.state.footnotes, content)
	return len(p.state.footnotes)
}

func (p *Parser) addInternalLink(ref pageref.PageRef) {
	p.state.internalLinks = append(p.state.internalLinks, ref)
}

func (p *Parser) markTOCBlockSeen() { p.state.hasTOCBlock = true }

func (p *Parser) markFootnoteBlockSeen() { p.state.hasFootnoteBlock = true }

func (p *Parser) acceptsPartial(kind tree.PartialKind) bool {
	return p.state.acceptsPartial[kind]
}

func (p *Parser) withAcceptsPartial(kind tree.PartialKind, allowed bool, fn func()) {
	prev, had := p.state.acceptsPartial[kind]
	p.state.acceptsPartial[kind] = allowed
	fn()
	if had {
		p.state.acceptsPartial[kind] = prev
	} else {
		delete(p.state.acceptsPartial, kind)
	}
}
