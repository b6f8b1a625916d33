// Package token defines the token kinds and extracted tokens produced by the
// ftml lexer.
package token

import "fmt"

// Kind is a closed enumeration of lexical token kinds produced by Tokenize.
type Kind int

const (
	// InputStart and InputEnd are sentinels. Every token stream begins with
	// InputStart (span [0,0)) and ends with InputEnd (span [len,len)).
	InputStart Kind = iota
	InputEnd

	LeftBlock  // [[
	RightBlock // ]]
	LeftLink   // [[[
	RightLink  // ]]]
	LeftRaw    // @@
	RightRaw   // @@
	LeftHTML   // @<
	RightHTML  // >@

	LeftBracket  // [
	RightBracket // ]
	Pipe         // |
	Equals       // =
	Colon        // :

	Whitespace
	LineBreak
	ParagraphBreak

	BulletItem   // "* "
	NumberedItem // "# "
	Quote        // ">"

	Bold          // **
	Italics       // //
	Underline     // __
	Strikethrough // --
	Superscript   // ^^
	Subscript     // ,,
	Monospace     // {{ }}
	Color         // ## (color spec delimiter)

	HTMLEntity // &amp; etc
	Variable   // {@name}

	Other
)

// String implements fmt.Stringer for debugging and warning messages.
func (k Kind) String() string {
	switch k {
	case InputStart:
		return "InputStart"
	case InputEnd:
		return "InputEnd"
	case LeftBlock:
		return "LeftBlock"
	case RightBlock:
		return "RightBlock"
	case LeftLink:
		return "LeftLink"
	case RightLink:
		return "RightLink"
	case LeftRaw:
		return "LeftRaw"
	case RightRaw:
		return "RightRaw"
	case LeftHTML:
		return "LeftHTML"
	case RightHTML:
		return "RightHTML"
	case LeftBracket:
		return "LeftBracket"
	case RightBracket:
		return "RightBracket"
	case Pipe:
		return "Pipe"
	case Equals:
		return "Equals"
	case Colon:
		return "Colon"
	case Whitespace:
		return "Whitespace"
	case LineBreak:
		return "LineBreak"
	case ParagraphBreak:
		return "ParagraphBreak"
	case BulletItem:
		return "BulletItem"
	case NumberedItem:
		return "NumberedItem"
	case Quote:
		return "Quote"
	case Bold:
		return "Bold"
	case Italics:
		return "Italics"
	case Underline:
		return "Underline"
	case Strikethrough:
		return "Strikethrough"
	case Superscript:
		return "Superscript"
	case Subscript:
		return "Subscript"
	case Monospace:
		return "Monospace"
	case Color:
		return "Color"
	case HTMLEntity:
		return "HTMLEntity"
	case Variable:
		return "Variable"
	case Other:
		return "Other"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Span is a byte range [Start, End) into a FullText string.
type Span struct {
	Start int
	End   int
}

// IsZero reports whether the span is a null span, as used by the
// InputStart/InputEnd sentinels.
func (s Span) IsZero() bool {
	return s.Start == s.End
}

// Len returns the byte length of the span.
func (s Span) Len() int {
	return s.End - s.Start
}

// Extracted is a single lexical token: its kind, the borrowed slice of
// FullText it covers, and its span.
type Extracted struct {
	Kind  Kind
	Slice string
	Span  Span
}
