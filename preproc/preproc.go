// Package preproc implements the ftml preprocessor: in-place textual
// normalizations applied to the raw wikitext source before tokenization.
package preproc

import "strings"

// lineContinuation joins a trailing backslash with the following newline.
var lineContinuation = strings.NewReplacer("\\\n", "")

// Process runs every preprocessor pass, in order, over src and returns the
// normalized FullText. Process is total: it never fails.
func Process(src string) string {
	s := normalizeLineEndings(src)
	s = substituteTypography(s)
	s = lineContinuation.Replace(s)
	s = stripTrailingWhitespace(s)
	s = collapseParagraphBreaks(s)
	return s
}

// normalizeLineEndings unifies CRLF and lone CR into LF.
func normalizeLineEndings(s string) string {
	if !strings.ContainsRune(s, '\r') {
		return s
	}
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "\n")
	return s
}

// stripTrailingWhitespace removes trailing spaces/tabs at the end of every
// line, leaving the line terminator itself untouched.
func stripTrailingWhitespace(s string) string {
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimRight(line, " \t")
	}
	return strings.Join(lines, "\n")
}

// collapseParagraphBreaks normalizes runs of 3+ newlines down to exactly
// two, which the tokenizer reads as a single ParagraphBreak token.
func collapseParagraphBreaks(s string) string {
	var sb strings.Builder
	sb.Grow(len(s))
	run := 0
	for _, r := range s {
		if r == '\n' {
			run++
			continue
		}
		if run > 0 {
			if run > 2 {
				run = 2
			}
			for i := 0; i < run; i++ {
				sb.WriteByte('\n')
			}
			run = 0
		}
		sb.WriteRune(r)
	}
	if run > 0 {
		if run > 2 {
			run = 2
		}
		for i := 0; i < run; i++ {
			sb.WriteByte('\n')
		}
	}
	return sb.String()
}
