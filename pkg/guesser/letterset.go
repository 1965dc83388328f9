package guesser

import (
	"fmt"
	"math/bits"
	"strings"
)

// Alphabet is the set of letters a guess can be drawn from, in guessing order.
const Alphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"

// LetterSet is a set of upper-case letters stored as a 26-bit mask.
type LetterSet uint32

// NewLetterSet builds a set from the given letters.
// Lower-case letters are folded to upper case; other bytes are ignored.
func NewLetterSet(letters string) LetterSet {
	var s LetterSet
	for i := 0; i < len(letters); i++ {
		s = s.Add(letters[i])
	}
	return s
}

// ParseLetterSet is the strict form of NewLetterSet: anything other than a
// letter (or whitespace/commas between letters) is an error.
func ParseLetterSet(letters string) (LetterSet, error) {
	var s LetterSet
	for i := 0; i < len(letters); i++ {
		c := letters[i]
		switch {
		case c == ' ' || c == ',' || c == '\t':
			continue
		case isLetter(c):
			s = s.Add(c)
		default:
			return 0, fmt.Errorf("%w: %q is not a letter", ErrInvalidPattern, c)
		}
	}
	return s, nil
}

// Add returns s with letter c included.
func (s LetterSet) Add(c byte) LetterSet {
	idx, ok := letterIndex(c)
	if !ok {
		return s
	}
	return s | 1<<idx
}

// Has reports whether c is in the set.
func (s LetterSet) Has(c byte) bool {
	idx, ok := letterIndex(c)
	if !ok {
		return false
	}
	return s&(1<<idx) != 0
}

// Len returns the number of letters in the set.
func (s LetterSet) Len() int {
	return bits.OnesCount32(uint32(s))
}

// Intersects reports whether s and other share any letter.
func (s LetterSet) Intersects(other LetterSet) bool {
	return s&other != 0
}

// String lists the members in alphabetical order, e.g. "AEMNT".
func (s LetterSet) String() string {
	var b strings.Builder
	for i := 0; i < len(Alphabet); i++ {
		if s&(1<<i) != 0 {
			b.WriteByte(Alphabet[i])
		}
	}
	return b.String()
}

// LettersOf returns the set of letters occurring in word.
func LettersOf(word string) LetterSet {
	return NewLetterSet(word)
}

func letterIndex(c byte) (uint, bool) {
	switch {
	case c >= 'A' && c <= 'Z':
		return uint(c - 'A'), true
	case c >= 'a' && c <= 'z':
		return uint(c - 'a'), true
	}
	return 0, false
}

func isLetter(c byte) bool {
	_, ok := letterIndex(c)
	return ok
}

func toUpper(c byte) byte {
	if c >= 'a' && c <= 'z' {
		return c - 'a' + 'A'
	}
	return c
}
