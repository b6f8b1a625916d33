package token

import (
	"regexp"
	"unicode/utf8"
)

// Lexer tokenizes ftml wikitext source into an ordered, gapless sequence of
// Extracted tokens. It is implemented as a single composed regular
// expression with named alternations, mirroring the "one regex with named
// alternations" option called out by the grammar: each alternative is
// tried in priority order at the current offset, and the first one that
// matches wins (Go's RE2 engine resolves alternation leftmost-first). It
// is not a longest-match lexer: a later alternative that would match a
// longer span at the same offset loses to an earlier one.
// Anything no alternative claims is accumulated into a single Other token
// per maximal unmatched run, so the stream always covers the full text.
type Lexer struct {
	re    *regexp.Regexp
	names []string
}

// alternative is one named regex alternative together with the Kind it
// produces when it wins.
type alternative struct {
	name string
	kind Kind
	pat  string
}

// order matters: earlier alternatives take priority over later ones that
// could also match at the same offset (e.g. LeftLink "[[[" before
// LeftBlock "[[" before LeftBracket "[").
var alternatives = []alternative{
	{"parabreak", ParagraphBreak, `\n{2,}`},
	{"linebreak", LineBreak, `\n`},
	{"leftlink", LeftLink, `\[\[\[`},
	{"rightlink", RightLink, `\]\]\]`},
	{"leftblock", LeftBlock, `\[\[`},
	{"rightblock", RightBlock, `\]\]`},
	{"leftbracket", LeftBracket, `\[`},
	{"rightbracket", RightBracket, `\]`},
	{"leftraw", LeftRaw, `@@`},
	{"lefthtml", LeftHTML, `@<`},
	{"righthtml", RightHTML, `>@`},
	{"bold", Bold, `\*\*`},
	{"italics", Italics, `//`},
	{"underline", Underline, `__`},
	{"strike", Strikethrough, `--`},
	{"super", Superscript, `\^\^`},
	{"sub", Subscript, `,,`},
	{"mono", Monospace, `\{\{|\}\}`},
	{"color", Color, `##`},
	{"variable", Variable, `\{@[A-Za-z0-9_-]+\}`},
	{"entity", HTMLEntity, `&(?:#[0-9]+|#x[0-9a-fA-F]+|[A-Za-z][A-Za-z0-9]*);`},
	{"bullet", BulletItem, `[ \t]*\*(?:[ \t]+|$)`},
	{"numbered", NumberedItem, `[ \t]*#(?:[ \t]+|$)`},
	{"quote", Quote, `>(?:[ \t])?`},
	{"pipe", Pipe, `\|`},
	{"equals", Equals, `=`},
	{"colon", Colon, `:`},
	{"ws", Whitespace, `[ \t]+`},
}

// NewLexer compiles the composed alternation regex once; callers should
// reuse a single Lexer across many Tokenize calls.
func NewLexer() *Lexer {
	pat := ""
	names := make([]string, 0, len(alternatives))
	for i, a := range alternatives {
		if i > 0 {
			pat += "|"
		}
		pat += "(?P<" + a.name + ">" + a.pat + ")"
		names = append(names, a.name)
	}
	re := regexp.MustCompile("^(?:" + pat + ")")
	return &Lexer{re: re, names: names}
}

var defaultLexer = NewLexer()

// Tokenize runs the default Lexer over fullText.
func Tokenize(fullText string) []Extracted {
	return defaultLexer.Tokenize(fullText)
}

func kindForName(name string) Kind {
	for _, a := range alternatives {
		if a.name == name {
			return a.kind
		}
	}
	return Other
}

// Tokenize produces the full, gapless token stream for fullText.
func (l *Lexer) Tokenize(fullText string) []Extracted {
	n := len(fullText)
	tokens := make([]Extracted, 0, n/4+2)
	tokens = append(tokens, Extracted{Kind: InputStart, Slice: "", Span: Span{0, 0}})

	pos := 0
	otherStart := -1

	flushOther := func(end int) {
		if otherStart >= 0 && end > otherStart {
			tokens = append(tokens, Extracted{
				Kind:  Other,
				Slice: fullText[otherStart:end],
				Span:  Span{otherStart, end},
			})
		}
		otherStart = -1
	}

	for pos < n {
		loc := l.re.FindStringSubmatchIndex(fullText[pos:])
		if loc == nil || loc[0] != 0 {
			if otherStart < 0 {
				otherStart = pos
			}
			_, size := utf8.DecodeRuneInString(fullText[pos:])
			if size == 0 {
				size = 1
			}
			pos += size
			continue
		}
		matchLen := loc[1]
		if matchLen == 0 {
			// Defensive: never let a zero-width alternative stall the lexer.
			if otherStart < 0 {
				otherStart = pos
			}
			_, size := utf8.DecodeRuneInString(fullText[pos:])
			if size == 0 {
				size = 1
			}
			pos += size
			continue
		}
		flushOther(pos)

		kind := Other
		for gi, name := range l.names {
			start := loc[2+2*gi]
			if start != -1 {
				kind = kindForName(name)
				break
			}
		}

		end := pos + matchLen
		tokens = append(tokens, Extracted{
			Kind:  kind,
			Slice: fullText[pos:end],
			Span:  Span{pos, end},
		})
		pos = end
	}
	flushOther(n)

	tokens = append(tokens, Extracted{Kind: InputEnd, Slice: "", Span: Span{n, n}})
	return tokens
}
