package docid

import (
	"encoding/base32"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"
)

// Kind identifies what an identifier names.
type Kind byte

const (
	KindThread     Kind = 'T'
	KindSection    Kind = 'S'
	KindMessage    Kind = 'M'
	KindAnnotation Kind = 'A'
	KindUser       Kind = 'U'
)

func (k Kind) String() string {
	switch k {
	case KindThread:
		return "thread"
	case KindSection:
		return "section"
	case KindMessage:
		return "message"
	case KindAnnotation:
		return "annotation"
	case KindUser:
		return "user"
	default:
		return fmt.Sprintf("Kind(%q)", byte(k))
	}
}

func (k Kind) valid() bool {
	switch k {
	case KindThread, KindSection, KindMessage, KindAnnotation, KindUser:
		return true
	}
	return false
}

// bodyLen is the number of characters after the kind prefix.
const bodyLen = 11

const crockford = "0123456789ABCDEFGHJKMNPQRSTVWXYZ"

var encoding = base32.NewEncoding(crockford).WithPadding(base32.NoPadding)

// Generator mints identifiers.
type Generator interface {
	Next(kind Kind) string
}

// Random mints identifiers from random UUIDs.
type Random struct{}

var _ Generator = Random{}

// Next implements Generator.
func (Random) Next(kind Kind) string {
	return New(kind)
}

// New mints a random identifier of the given kind.
func New(kind Kind) string {
	u := uuid.New()
	return string(rune(kind)) + encoding.EncodeToString(u[:])[:bodyLen]
}

// Sequence mints predictable identifiers by counting per kind. It is safe
// for concurrent use.
type Sequence struct {
	mu   sync.Mutex
	next map[Kind]int
}

var _ Generator = (*Sequence)(nil)

// NewSequence returns a Sequence starting at 1 for every kind.
func NewSequence() *Sequence {
	return &Sequence{next: make(map[Kind]int)}
}

// Next implements Generator.
func (s *Sequence) Next(kind Kind) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.next[kind]++
	return fmt.Sprintf("%c%0*d", byte(kind), bodyLen, s.next[kind])
}

// Parse validates id and returns its kind.
func Parse(id string) (Kind, error) {
	if len(id) != bodyLen+1 {
		return 0, fmt.Errorf("invalid id %q: want %d characters, got %d", id, bodyLen+1, len(id))
	}
	kind := Kind(id[0])
	if !kind.valid() {
		return 0, fmt.Errorf("invalid id %q: unknown kind prefix %q", id, id[0])
	}
	for _, r := range id[1:] {
		if !strings.ContainsRune(crockford, r) {
			return 0, fmt.Errorf("invalid id %q: unexpected character %q", id, r)
		}
	}
	return kind, nil
}

// MustParse is Parse that panics on error. Useful for test fixtures.
func MustParse(id string) Kind {
	k, err := Parse(id)
	if err != nil {
		panic(err)
	}
	return k
}
