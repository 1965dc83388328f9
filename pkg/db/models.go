package db

import (
	"database/sql"
	"time"
)

// Word is a word of the list with its count and prior.
type Word struct {
	ID    int64
	Word  string
	Count int64
	Prior float64
}

// Run is one analysis run over a word list.
type Run struct {
	ID         string
	StartedAt  time.Time
	WordsPath  string
	TotalCount int64
	WordCount  int
}

// Recommendation is the stored result for one scenario of a run.
type Recommendation struct {
	ID       int64
	RunID    string
	Position int
	Pattern  string
	Excluded string
	// Letter is empty when no letter was recommended.
	Letter string
	// Probability is invalid when no candidate word remained.
	Probability sql.NullFloat64
	Candidates  int
}
