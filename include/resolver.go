package include

import (
	"context"
	"regexp"
	"strings"

	"github.com/dpotapov/ftml-go/pageref"
	"github.com/dpotapov/ftml-go/varmap"
)

// Settings controls the resolver's fixed-point loop.
type Settings struct {
	// MaxIterations bounds the number of splice-and-rescan passes. The
	// default (0) is treated as 25, matching the parser's own depth-style
	// caps elsewhere in the pipeline.
	MaxIterations int
}

func (s Settings) maxIterations() int {
	if s.MaxIterations > 0 {
		return s.MaxIterations
	}
	return 25
}

// includeRe matches "[[include pageref | k=v ...]]" and "[[include-messy ...]]",
// tolerating whitespace and line breaks inside the block.
var includeRe = regexp.MustCompile(`(?s)\[\[\s*include(?:-messy)?\s+(.*?)\]\]`)

var variableRe = regexp.MustCompile(`\{\$([A-Za-z0-9_-]+)\}`)

type match struct {
	start, end int
	ref        IncludeRef
}

// Resolve runs the fixed-point include-expansion loop described in the
// grammar: find all "[[include ...]]" occurrences, batch-fetch their
// bodies, substitute "{$name}" placeholders, splice right-to-left, and
// repeat until a pass finds nothing new (or the iteration cap is hit).
//
// It returns the expanded source and the PageRef of every include it
// processed, in encounter order, including refs the includer reported as
// not found and repeats of the same page.
func Resolve(ctx context.Context, source string, includer Includer, settings Settings) (string, []pageref.PageRef, error) {
	var allRefs []pageref.PageRef

	for iter := 0; iter < settings.maxIterations(); iter++ {
		matches := findIncludes(source)
		if len(matches) == 0 {
			break
		}

		refs := make([]pageref.PageRef, len(matches))
		for i, m := range matches {
			refs[i] = m.ref.PageRef
			allRefs = append(allRefs, m.ref.PageRef)
		}

		fetched, err := includer.IncludePages(ctx, refs)
		if err != nil {
			return source, allRefs, err
		}

		for i := len(matches) - 1; i >= 0; i-- {
			m := matches[i]
			var repl string
			if i < len(fetched) && fetched[i].Body != nil {
				repl = substituteVariables(*fetched[i].Body, m.ref.Variables)
			} else {
				repl = includer.NoSuchInclude(m.ref.PageRef)
			}
			source = source[:m.start] + repl + source[m.end:]
		}
	}

	return source, allRefs, nil
}

func findIncludes(source string) []match {
	locs := includeRe.FindAllStringSubmatchIndex(source, -1)
	if locs == nil {
		return nil
	}
	matches := make([]match, 0, len(locs))
	for _, loc := range locs {
		start, end := loc[0], loc[1]
		inner := source[loc[2]:loc[3]]
		ref, ok := parseIncludeInner(inner)
		if !ok {
			continue
		}
		matches = append(matches, match{start: start, end: end, ref: ref})
	}
	return matches
}

// parseIncludeInner splits "pageref | k=v | k2=v2" into a PageRef and a
// VariableMap.
func parseIncludeInner(inner string) (IncludeRef, bool) {
	parts := strings.Split(inner, "|")
	if len(parts) == 0 {
		return IncludeRef{}, false
	}
	pageName := strings.TrimSpace(parts[0])
	if pageName == "" {
		return IncludeRef{}, false
	}
	ref, err := pageref.Parse(pageName)
	if err != nil {
		return IncludeRef{}, false
	}

	vars := varmap.New()
	for _, part := range parts[1:] {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		eq := strings.IndexByte(part, '=')
		if eq < 0 {
			continue
		}
		key := strings.TrimSpace(part[:eq])
		val := strings.TrimSpace(part[eq+1:])
		vars.Set(key, val)
	}

	return IncludeRef{PageRef: ref, Variables: vars}, true
}

// substituteVariables replaces "{$name}" placeholders using vars; names not
// present in vars are left verbatim.
func substituteVariables(body string, vars *varmap.Map) string {
	if vars == nil || vars.Len() == 0 {
		return body
	}
	return variableRe.ReplaceAllStringFunc(body, func(m string) string {
		name := variableRe.FindStringSubmatch(m)[1]
		if v, ok := vars.Get(name); ok {
			return v
		}
		return m
	})
}
