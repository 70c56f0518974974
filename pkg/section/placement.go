package section

import (
	"fmt"

	"github.com/hashicorp-forge/quipdoc/pkg/docerr"
)

// Placement says where an edit lands. The only implementations are the ones
// returned by the constructors in this package, so a Placement is always a
// valid pairing of Location and anchor.
type Placement interface {
	// Location returns the wire directive.
	Location() Location

	// AnchorID returns the anchor section id, or "" for AtEnd and AtStart.
	AnchorID() string

	// Validate checks that the anchor, if any, exists in sections.
	Validate(sections []Section) error

	fmt.Stringer

	placement()
}

var (
	_ Placement = unanchored{}
	_ Placement = anchored{}
)

type unanchored struct {
	loc Location
}

func (p unanchored) Location() Location {
	return p.loc
}

func (p unanchored) AnchorID() string {
	return ""
}

func (p unanchored) Validate(_ []Section) error {
	return nil
}

func (p unanchored) String() string {
	return p.loc.String()
}

func (unanchored) placement() {}

type anchored struct {
	loc Location
	id  string
}

func (p anchored) Location() Location {
	return p.loc
}

func (p anchored) AnchorID() string {
	return p.id
}

func (anchored) placement() {}

func (p anchored) Validate(sections []Section) error {
	_, err := Resolve(sections, p.id)
	return err
}

func (p anchored) String() string {
	return fmt.Sprintf("%s(%s)", p.loc, p.id)
}

// AtEnd appends content to the end of the document.
func AtEnd() Placement { return unanchored{loc: Append} }

// AtStart prepends content to the start of the document.
func AtStart() Placement { return unanchored{loc: Prepend} }

// After inserts content immediately after section id.
func After(id string) Placement { return anchored{loc: AfterSection, id: id} }

// Before inserts content immediately before section id.
func Before(id string) Placement { return anchored{loc: BeforeSection, id: id} }

// Replacing replaces section id with the content.
func Replacing(id string) Placement { return anchored{loc: ReplaceSection, id: id} }

// Deleting removes section id. Any content sent alongside is ignored.
func Deleting(id string) Placement { return anchored{loc: DeleteSection, id: id} }

// NewPlacement pairs loc with an optional anchor, where "" means no anchor.
// Append and Prepend must not carry an anchor; every other location must.
func NewPlacement(loc Location, anchorID string) (Placement, error) {
	if !loc.Valid() {
		return nil, docerr.Invalid("placement", "location", loc, docerr.ErrInvalidLocationCombination)
	}

	if !loc.RequiresAnchor() {
		if anchorID != "" {
			return nil, docerr.Invalid("placement", "anchor", fmt.Sprintf("%s with %q", loc, anchorID), docerr.ErrInvalidLocationCombination)
		}
		return unanchored{loc: loc}, nil
	}

	if anchorID == "" {
		return nil, docerr.Invalid("placement", "anchor", fmt.Sprintf("%s without anchor", loc), docerr.ErrInvalidLocationCombination)
	}
	return anchored{loc: loc, id: anchorID}, nil
}
