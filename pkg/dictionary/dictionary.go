package dictionary

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"
)

var (
	// ErrEmptyWordList is returned when a word list contains no usable entries.
	ErrEmptyWordList = errors.New("word list is empty")
	// ErrZeroTotal is returned by ComputePriors when the counts sum to zero.
	ErrZeroTotal = errors.New("total word count is zero")
	// ErrMalformedLine marks a line that is not a "<word> <count>" pair.
	ErrMalformedLine = errors.New("malformed word list line")
)

// WordEntry is a single word of the list with its corpus count and prior.
type WordEntry struct {
	Word  string
	Count int64
	Prior float64
}

// LineError describes a rejected input line.
type LineError struct {
	Line int
	Text string
	Err  error
}

func (e *LineError) Error() string {
	return fmt.Sprintf("line %d %q: %v", e.Line, e.Text, e.Err)
}

func (e *LineError) Unwrap() error { return e.Err }

// LoadReport summarizes what Parse skipped or merged.
type LoadReport struct {
	Skipped    []LineError
	Duplicates []string
}

// Options controls parsing.
type Options struct {
	// Strict makes the first malformed line fail the whole load.
	Strict bool
}

// Load reads a word list file.
// File format: word count (whitespace separated), one pair per line.
func Load(path string, opts Options) ([]WordEntry, *LoadReport, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("open word list: %w", err)
	}
	defer f.Close()

	entries, report, err := Parse(f, opts)
	if err != nil {
		return nil, report, fmt.Errorf("parse %s: %w", path, err)
	}
	return entries, report, nil
}

// Parse reads "<word> <count>" lines from r. Words are upper-cased and
// duplicates are merged by summing their counts, keeping first-seen order.
func Parse(r io.Reader, opts Options) ([]WordEntry, *LoadReport, error) {
	report := &LoadReport{}
	index := make(map[string]int)
	var entries []WordEntry

	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		word, count, err := parseLine(line)
		if err != nil {
			le := LineError{Line: lineNo, Text: line, Err: err}
			if opts.Strict {
				return nil, report, &le
			}
			report.Skipped = append(report.Skipped, le)
			continue
		}

		if i, ok := index[word]; ok {
			entries[i].Count += count
			report.Duplicates = append(report.Duplicates, word)
			continue
		}
		index[word] = len(entries)
		entries = append(entries, WordEntry{Word: word, Count: count})
	}
	if err := scanner.Err(); err != nil {
		return nil, report, err
	}
	if len(entries) == 0 {
		return nil, report, ErrEmptyWordList
	}
	return entries, report, nil
}

func parseLine(line string) (string, int64, error) {
	fields := strings.Fields(line)
	switch {
	case len(fields) < 2:
		return "", 0, fmt.Errorf("%w: missing count", ErrMalformedLine)
	case len(fields) > 2:
		return "", 0, fmt.Errorf("%w: expected 2 fields, got %d", ErrMalformedLine, len(fields))
	}

	count, err := strconv.ParseInt(fields[1], 10, 64)
	if err != nil {
		return "", 0, fmt.Errorf("%w: parse count: %v", ErrMalformedLine, err)
	}
	if count < 0 {
		return "", 0, fmt.Errorf("%w: negative count %d", ErrMalformedLine, count)
	}
	return strings.ToUpper(fields[0]), count, nil
}

// Total returns the sum of all counts.
func Total(entries []WordEntry) int64 {
	var total int64
	for _, e := range entries {
		total += e.Count
	}
	return total
}

// ComputePriors sets Prior = Count / total on every entry.
func ComputePriors(entries []WordEntry) error {
	total := Total(entries)
	if total == 0 {
		return ErrZeroTotal
	}
	for i := range entries {
		entries[i].Prior = float64(entries[i].Count) / float64(total)
	}
	return nil
}

// Rank sorts entries by descending prior. Equal priors are ordered by word so
// the result does not depend on input order.
func Rank(entries []WordEntry) {
	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].Prior != entries[j].Prior {
			return entries[i].Prior > entries[j].Prior
		}
		return entries[i].Word < entries[j].Word
	})
}

// Extremes is the diagnostic view of a ranked list.
type Extremes struct {
	Most  []WordEntry
	Least []WordEntry // least probable first
	// Middle is the entry right after the top n, if the list is longer than n.
	Middle *WordEntry
}

// TopBottom returns the n most and n least probable entries of an already
// ranked list.
func TopBottom(ranked []WordEntry, n int) Extremes {
	if n > len(ranked) {
		n = len(ranked)
	}
	if n < 0 {
		n = 0
	}
	ex := Extremes{
		Most:  make([]WordEntry, 0, n),
		Least: make([]WordEntry, 0, n),
	}
	for i := 0; i < n; i++ {
		ex.Most = append(ex.Most, ranked[i])
		ex.Least = append(ex.Least, ranked[len(ranked)-1-i])
	}
	if len(ranked) > n {
		m := ranked[n]
		ex.Middle = &m
	}
	return ex
}
