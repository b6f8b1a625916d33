// Package pageref implements the PageRef grammar: parsing and the inverse
// display form used throughout includes, links, and page lookups.
package pageref

import (
	"errors"
	"strings"
)

// DefaultCategory is used when a PageRef's grammar omits a category.
const DefaultCategory = "_default"

// PageRef identifies a wiki page, optionally scoped to another site and
// category.
type PageRef struct {
	Site     string // empty means "this site"
	HasSite  bool
	Category string // defaults to DefaultCategory
	Name     string
}

// ErrEmptySite is returned when a leading ":" is present but no site name
// follows it (":page", "::page").
var ErrEmptySite = errors.New("pageref: empty site name")

// Parse parses the grammar ":site:[category:]name" | "category:name" | "name".
func Parse(s string) (PageRef, error) {
	ref := PageRef{Category: DefaultCategory}

	rest := s
	if strings.HasPrefix(rest, ":") {
		rest = rest[1:]
		idx := strings.IndexByte(rest, ':')
		if idx <= 0 {
			return PageRef{}, ErrEmptySite
		}
		ref.Site = rest[:idx]
		ref.HasSite = true
		rest = rest[idx+1:]
	}

	// Remaining grammar: "category:name" | "name", where name itself may
	// contain colons (e.g. fragment paths), so only the *first* colon
	// separates category from name.
	if idx := strings.IndexByte(rest, ':'); idx >= 0 {
		cat := rest[:idx]
		if cat != "" {
			ref.Category = cat
		}
		ref.Name = rest[idx+1:]
	} else {
		ref.Name = rest
	}

	return ref, nil
}

// String renders the inverse display form, including the leading ":" when a
// site is present. Round-trips with Parse modulo internal whitespace.
func (r PageRef) String() string {
	var sb strings.Builder
	if r.HasSite {
		sb.WriteByte(':')
		sb.WriteString(r.Site)
		sb.WriteByte(':')
	}
	if r.Category != "" && r.Category != DefaultCategory {
		sb.WriteString(r.Category)
		sb.WriteByte(':')
	}
	sb.WriteString(r.Name)
	return sb.String()
}

// Equal reports structural equality, ignoring the explicit/default category
// distinction (a PageRef built with Category: DefaultCategory is equal to
// one that defaulted there implicitly).
func (r PageRef) Equal(o PageRef) bool {
	return r.Site == o.Site && r.HasSite == o.HasSite &&
		r.Category == o.Category && r.Name == o.Name
}
