package section

import (
	"fmt"
	"strconv"

	"github.com/iancoleman/strcase"

	"github.com/hashicorp-forge/quipdoc/pkg/docerr"
)

// Location is the edit directive understood by the document service. The
// numeric values are the codes sent over the wire.
type Location int

const (
	Append Location = iota
	Prepend
	AfterSection
	BeforeSection
	ReplaceSection
	DeleteSection
)

var locationNames = [...]string{
	Append:         "APPEND",
	Prepend:        "PREPEND",
	AfterSection:   "AFTER_SECTION",
	BeforeSection:  "BEFORE_SECTION",
	ReplaceSection: "REPLACE_SECTION",
	DeleteSection:  "DELETE_SECTION",
}

// Code returns the wire code for l.
func (l Location) Code() int {
	return int(l)
}

// Valid reports whether l is one of the defined locations.
func (l Location) Valid() bool {
	return l >= Append && l <= DeleteSection
}

// RequiresAnchor reports whether l is relative to an existing section.
func (l Location) RequiresAnchor() bool {
	return l.Valid() && l != Append && l != Prepend
}

func (l Location) String() string {
	if !l.Valid() {
		return fmt.Sprintf("Location(%d)", int(l))
	}
	return locationNames[l]
}

// ParseLocation accepts a location name in any case style ("after_section",
// "AfterSection", "after-section") or its numeric wire code.
func ParseLocation(s string) (Location, error) {
	if n, err := strconv.Atoi(s); err == nil {
		l := Location(n)
		if l.Valid() {
			return l, nil
		}
		return 0, docerr.Invalid("parse location", "location", s, docerr.ErrInvalidLocationCombination)
	}

	name := strcase.ToScreamingSnake(s)
	for i, candidate := range locationNames {
		if candidate == name {
			return Location(i), nil
		}
	}
	return 0, docerr.Invalid("parse location", "location", s, docerr.ErrInvalidLocationCombination)
}
