// Package section discovers the addressable sections of a document body and
// describes where an edit should land relative to them.
package section

import (
	"strings"

	"golang.org/x/net/html"

	"github.com/hashicorp-forge/quipdoc/internal/htmlutil"
	"github.com/hashicorp-forge/quipdoc/pkg/docerr"
)

// Section is a markup element that carries an id attribute and can therefore
// be used as an edit anchor.
type Section struct {
	// ID is the element's id attribute; never empty.
	ID string

	// Tag is the element name, e.g. "p", "h1", "table".
	Tag string

	// Text is the element's text content with surrounding whitespace trimmed.
	Text string

	// Index is the position of the section in document order.
	Index int
}

// tableInternals are never sections on their own. Anchoring inside a table
// goes through the table model.
var tableInternals = map[string]bool{
	"thead": true,
	"tbody": true,
	"tfoot": true,
	"tr":    true,
	"td":    true,
	"th":    true,
}

// Parse returns the ordered sections of body. It never fails; a body without
// any id-bearing element yields an empty slice. When an id repeats, only its
// first occurrence is kept.
func Parse(body string) []Section {
	sections := []Section{}
	seen := make(map[string]bool)

	htmlutil.IterNodes(htmlutil.ParseBody(body), func(n *html.Node) bool {
		if n.Type != html.ElementNode {
			return false
		}
		if tableInternals[n.Data] {
			return true
		}

		id := htmlutil.Attr(n, "id")
		if id != "" && !seen[id] {
			seen[id] = true
			sections = append(sections, Section{
				ID:    id,
				Tag:   n.Data,
				Text:  strings.TrimSpace(htmlutil.Text(n)),
				Index: len(sections),
			})
		}

		// Tables are anchors as a whole.
		return n.Data == "table"
	})

	return sections
}

// Resolve finds the section with the given id.
func Resolve(sections []Section, anchorID string) (Section, error) {
	for _, s := range sections {
		if s.ID == anchorID {
			return s, nil
		}
	}
	return Section{}, docerr.SectionNotFound(anchorID)
}

// Index is a lookup table over one parse.
type Index struct {
	sections []Section
	byID     map[string]int
}

// NewIndex builds an Index over sections.
func NewIndex(sections []Section) *Index {
	idx := &Index{
		sections: sections,
		byID:     make(map[string]int, len(sections)),
	}
	for i, s := range sections {
		idx.byID[s.ID] = i
	}
	return idx
}

// ParseIndex parses body and indexes the result.
func ParseIndex(body string) *Index {
	return NewIndex(Parse(body))
}

// Lookup returns the section with the given id.
func (i *Index) Lookup(id string) (Section, bool) {
	pos, ok := i.byID[id]
	if !ok {
		return Section{}, false
	}
	return i.sections[pos], true
}

// Sections returns the indexed sections in document order.
func (i *Index) Sections() []Section {
	return i.sections
}

// IDs returns the section ids in document order.
func (i *Index) IDs() []string {
	ids := make([]string, len(i.sections))
	for n, s := range i.sections {
		ids[n] = s.ID
	}
	return ids
}

// Len returns the number of sections.
func (i *Index) Len() int {
	return len(i.sections)
}

// Between reports whether the section id lies strictly after lo and strictly
// before hi. Empty lo or hi means unbounded on that side.
func (i *Index) Between(id, lo, hi string) bool {
	pos, ok := i.byID[id]
	if !ok {
		return false
	}
	if lo != "" {
		l, ok := i.byID[lo]
		if !ok || pos <= l {
			return false
		}
	}
	if hi != "" {
		h, ok := i.byID[hi]
		if !ok || pos >= h {
			return false
		}
	}
	return true
}
