package guesser

import (
	"fmt"
	"strings"
)

// Slot is one position of a Pattern: either a known letter or unknown.
type Slot struct {
	Letter byte
	Known  bool
}

// Pattern is the fixed-length sequence of confirmed letters of a game state.
type Pattern []Slot

// Unknown is the placeholder used when rendering an unknown slot.
const Unknown = '_'

// NewPattern returns a pattern of n unknown slots.
func NewPattern(n int) Pattern {
	return make(Pattern, n)
}

// ParsePattern parses the textual form of a pattern: one character per slot,
// '_' or '.' for unknown, a letter for a known position.
func ParsePattern(s string) (Pattern, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, fmt.Errorf("%w: empty pattern", ErrInvalidPattern)
	}
	p := make(Pattern, len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c == Unknown || c == '.':
		case isLetter(c):
			p[i] = Slot{Letter: toUpper(c), Known: true}
		default:
			return nil, fmt.Errorf("%w: position %d: unexpected %q", ErrInvalidPattern, i, c)
		}
	}
	return p, nil
}

// MustParsePattern is like ParsePattern but panics on error.
func MustParsePattern(s string) Pattern {
	p, err := ParsePattern(s)
	if err != nil {
		panic(err)
	}
	return p
}

// Confirmed returns the set of letters placed in the pattern.
func (p Pattern) Confirmed() LetterSet {
	var s LetterSet
	for _, slot := range p {
		if slot.Known {
			s = s.Add(slot.Letter)
		}
	}
	return s
}

// String renders the pattern with '_' for unknown slots, e.g. "A___S".
func (p Pattern) String() string {
	var b strings.Builder
	b.Grow(len(p))
	for _, slot := range p {
		if slot.Known {
			b.WriteByte(slot.Letter)
		} else {
			b.WriteByte(Unknown)
		}
	}
	return b.String()
}
