// Package guesser recommends the next Hangman letter from a word list with
// prior probabilities. It filters words against the current game state,
// renormalizes the priors of the survivors into a posterior, and picks the
// letter most likely to appear in the hidden word.
package guesser

import (
	"errors"

	"github.com/japaniel/hangman/pkg/dictionary"
)

var (
	// ErrNoCandidates is returned when no word is consistent with the game state.
	ErrNoCandidates = errors.New("no candidate words remain")
	// ErrInvalidPattern is returned for unparseable patterns or letter sets.
	ErrInvalidPattern = errors.New("invalid pattern")
)

// IsValidWord reports whether word is consistent with the pattern and the
// excluded letters. Words of a different length than the pattern are never
// valid.
func IsValidWord(word string, p Pattern, excluded LetterSet) bool {
	if len(word) != len(p) {
		return false
	}
	// A letter that is both placed and excluded is a contradiction; every word
	// matching the placed slot would contain an excluded letter.
	if excluded.Intersects(p.Confirmed()) {
		return false
	}
	for i, slot := range p {
		c := toUpper(word[i])
		if slot.Known {
			if c != slot.Letter {
				return false
			}
			continue
		}
		if excluded.Has(c) {
			return false
		}
	}
	return true
}

// Posteriors returns, for every entry, its prior renormalized over the words
// valid under the game state, and 0 for invalid words. If no word is valid it
// returns an all-zero vector and ErrNoCandidates.
func Posteriors(entries []dictionary.WordEntry, p Pattern, excluded LetterSet) ([]float64, error) {
	posteriors := make([]float64, len(entries))
	total := 0.0
	for i, e := range entries {
		if IsValidWord(e.Word, p, excluded) {
			posteriors[i] = e.Prior
			total += e.Prior
		}
	}

	if total <= 0 {
		clear(posteriors)
		return posteriors, ErrNoCandidates
	}
	for i := range posteriors {
		posteriors[i] /= total
	}
	return posteriors, nil
}

// LetterMasses sums, for every letter of Alphabet, the posterior mass of the
// words containing it, in one pass over the list.
func LetterMasses(entries []dictionary.WordEntry, posteriors []float64) [len(Alphabet)]float64 {
	var mass [len(Alphabet)]float64
	for i, e := range entries {
		if posteriors[i] == 0 {
			continue
		}
		letters := LettersOf(e.Word)
		for j := range mass {
			if letters&(1<<j) != 0 {
				mass[j] += posteriors[i]
			}
		}
	}
	return mass
}

// PredictiveProbability is the posterior mass of the words containing letter.
// A letter already placed in the pattern reveals nothing new and scores 0.
func PredictiveProbability(letter byte, entries []dictionary.WordEntry, posteriors []float64, p Pattern) float64 {
	idx, ok := letterIndex(letter)
	if !ok || p.Confirmed().Has(letter) {
		return 0
	}
	return LetterMasses(entries, posteriors)[idx]
}

// Recommendation is the outcome of evaluating one game state.
type Recommendation struct {
	// Letter is the suggested guess; 0 when OK is false.
	Letter      byte
	Probability float64
	// OK is false when no untried letter has positive probability.
	OK bool
	// Undefined is set when no word matches the game state at all.
	Undefined bool
	// Candidates counts the consistent words that carry posterior mass.
	Candidates int
}

// BestLetter scans the alphabet for the untried letter with the highest
// predictive probability. Ties go to the alphabetically first letter.
func BestLetter(entries []dictionary.WordEntry, posteriors []float64, p Pattern, excluded LetterSet) Recommendation {
	tried := excluded | p.Confirmed()

	mass := LetterMasses(entries, posteriors)

	var rec Recommendation
	for j := 0; j < len(Alphabet); j++ {
		if tried&(1<<j) != 0 {
			continue
		}
		if mass[j] > rec.Probability {
			rec.Letter = Alphabet[j]
			rec.Probability = mass[j]
			rec.OK = true
		}
	}
	return rec
}

// Recommend filters the entries against the game state and picks the best
// next letter.
func Recommend(entries []dictionary.WordEntry, p Pattern, excluded LetterSet) Recommendation {
	posteriors, err := Posteriors(entries, p, excluded)
	if err != nil {
		return Recommendation{Undefined: true}
	}
	rec := BestLetter(entries, posteriors, p, excluded)
	for _, post := range posteriors {
		if post > 0 {
			rec.Candidates++
		}
	}
	return rec
}
