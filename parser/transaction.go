package parser

import (
	"github.com/dpotapov/ftml-go/pageref"
	"github.com/dpotapov/ftml-go/tree"
)

// TxFlags selects which ParserState slices a transaction snapshots.
// Rules that should not pollute the output unless they succeed protect
// exactly the slices their side effects touch.
type TxFlags uint16

const (
	TxTOC TxFlags = 1 << iota
	TxFootnotes
	TxCode
	TxHTML
	TxInternalLinks
	TxAcceptsPartial
	TxFootnoteFlag
	TxScopes

	TxAll = TxTOC | TxFootnotes | TxCode | TxHTML | TxInternalLinks |
		TxAcceptsPartial | TxFootnoteFlag | TxScopes
)

// txSnapshot holds the pre-transaction values for whichever fields its
// Flags selected.
type txSnapshot struct {
	flags TxFlags

	tocDepths     []tree.TOCDepthEntry
	footnotes     [][]tree.Element
	code          []string
	html          []string
	internalLinks []pageref.PageRef

	acceptsPartial map[tree.PartialKind]bool

	hasFootnoteBlock bool
	hasTOCBlock      bool

	scopes *ScopeStack
}

// Begin pushes a snapshot of the flagged slices of the current state; a
// later Commit or Rollback pops it. WithTransaction wraps the pair so that
// an error path rolls back.
func (p *Parser) Begin(flags TxFlags) {
	s := txSnapshot{flags: flags}
	st := p.state

	if flags&TxTOC != 0 {
		s.tocDepths = append([]tree.TOCDepthEntry(nil), st.tocDepths...)
	}
	if flags&TxFootnotes != 0 {
		s.footnotes = append([][]tree.Element(nil), st.footnotes...)
	}
	if flags&TxCode != 0 {
		s.code = append([]string(nil), st.code...)
	}
	if flags&TxHTML != 0 {
		s.html = append([]string(nil), st.html...)
	}
	if flags&TxInternalLinks != 0 {
		s.internalLinks = append([]pageref.PageRef(nil), st.internalLinks...)
	}
	if flags&TxAcceptsPartial != 0 {
		m := make(map[tree.PartialKind]bool, len(st.acceptsPartial))
		for k, v := range st.acceptsPartial {
			m[k] = v
		}
		s.acceptsPartial = m
	}
	if flags&TxFootnoteFlag != 0 {
		s.hasFootnoteBlock = st.hasFootnoteBlock
		s.hasTOCBlock = st.hasTOCBlock
	}
	if flags&TxScopes != 0 {
		s.scopes = st.scopes.Clone()
	}

	p.txStack = append(p.txStack, s)
}

// Commit keeps the nested state: just pop, discarding the snapshot.
func (p *Parser) Commit() {
	if len(p.txStack) == 0 {
		return
	}
	p.txStack = p.txStack[:len(p.txStack)-1]
}

// Rollback restores the flagged slices from the most recent snapshot.
func (p *Parser) Rollback() {
	if len(p.txStack) == 0 {
		return
	}
	s := p.txStack[len(p.txStack)-1]
	p.txStack = p.txStack[:len(p.txStack)-1]
	st := p.state

	if s.flags&TxTOC != 0 {
		st.tocDepths = s.tocDepths
	}
	if s.flags&TxFootnotes != 0 {
		st.footnotes = s.footnotes
	}
	if s.flags&TxCode != 0 {
		st.code = s.code
	}
	if s.flags&TxHTML != 0 {
		st.html = s.html
	}
	if s.flags&TxInternalLinks != 0 {
		st.internalLinks = s.internalLinks
	}
	if s.flags&TxAcceptsPartial != 0 {
		st.acceptsPartial = s.acceptsPartial
	}
	if s.flags&TxFootnoteFlag != 0 {
		st.hasFootnoteBlock = s.hasFootnoteBlock
		st.hasTOCBlock = s.hasTOCBlock
	}
	if s.flags&TxScopes != 0 {
		st.scopes = s.scopes
	}
}

// WithTransaction runs fn inside a transaction scoped by flags, committing
// on success (fn returns true) and rolling back otherwise. This is the
// idiomatic call site rules use instead of manual Begin/Commit/Rollback
// pairs.
func (p *Parser) WithTransaction(flags TxFlags, fn func() bool) bool {
	p.Begin(flags)
	ok := fn()
	if ok {
		p.Commit()
	} else {
		p.Rollback()
	}
	return ok
}
