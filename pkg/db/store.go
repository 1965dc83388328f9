package db

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// DBExecutor is an interface that allows methods to accept either *sql.DB or *sql.Tx
type DBExecutor interface {
	Exec(query string, args ...interface{}) (sql.Result, error)
	Query(query string, args ...interface{}) (*sql.Rows, error)
	QueryRow(query string, args ...interface{}) *sql.Row
}

// UpsertWord inserts the word or updates its count and prior, returning its id.
func UpsertWord(db DBExecutor, word string, count int64, prior float64) (int64, error) {
	trimmed := strings.TrimSpace(word)
	if trimmed == "" {
		return 0, fmt.Errorf("word must be non-empty")
	}
	if count < 0 {
		return 0, fmt.Errorf("count must not be negative, got %d", count)
	}

	var id int64
	err := db.QueryRow(`INSERT INTO words (word, count, prior) VALUES (?, ?, ?)
		ON CONFLICT(word) DO UPDATE SET
		  count = excluded.count,
		  prior = excluded.prior
		RETURNING id`, trimmed, count, prior).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("upsert word: %w", err)
	}
	return id, nil
}

// GetWords returns the stored words, most frequent first.
func GetWords(db DBExecutor) ([]Word, error) {
	rows, err := db.Query(`SELECT id, word, count, prior FROM words ORDER BY count DESC, word ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Word
	for rows.Next() {
		var w Word
		if err := rows.Scan(&w.ID, &w.Word, &w.Count, &w.Prior); err != nil {
			return nil, err
		}
		out = append(out, w)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// CreateRun stores a run and returns its id. A new UUID is assigned when
// run.ID is empty and StartedAt defaults to now.
func CreateRun(db DBExecutor, run Run) (string, error) {
	if run.ID == "" {
		run.ID = uuid.NewString()
	}
	if run.StartedAt.IsZero() {
		run.StartedAt = time.Now()
	}
	_, err := db.Exec(`INSERT INTO runs (id, started_at, words_path, total_count, word_count) VALUES (?, ?, ?, ?, ?)`,
		run.ID, run.StartedAt.UTC(), run.WordsPath, run.TotalCount, run.WordCount)
	if err != nil {
		return "", fmt.Errorf("insert run: %w", err)
	}
	return run.ID, nil
}

// InsertRecommendation stores one scenario result of a run.
func InsertRecommendation(db DBExecutor, rec Recommendation) error {
	if rec.RunID == "" {
		return fmt.Errorf("runID must be non-empty")
	}
	if rec.Position < 0 {
		return fmt.Errorf("position must not be negative, got %d", rec.Position)
	}
	_, err := db.Exec(`INSERT INTO recommendations (run_id, position, pattern, excluded, letter, probability, candidates)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		rec.RunID, rec.Position, rec.Pattern, rec.Excluded, rec.Letter, rec.Probability, rec.Candidates)
	if err != nil {
		return fmt.Errorf("insert recommendation %d: %w", rec.Position, err)
	}
	return nil
}

// ListRuns returns the most recent runs first. limit <= 0 returns all runs.
func ListRuns(db DBExecutor, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := db.Query(`SELECT id, started_at, words_path, total_count, word_count
		FROM runs ORDER BY started_at DESC, id ASC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Run
	for rows.Next() {
		var r Run
		if err := rows.Scan(&r.ID, &r.StartedAt, &r.WordsPath, &r.TotalCount, &r.WordCount); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// GetRecommendations returns the results of a run in scenario order.
func GetRecommendations(db DBExecutor, runID string) ([]Recommendation, error) {
	rows, err := db.Query(`SELECT id, run_id, position, pattern, excluded, letter, probability, candidates
		FROM recommendations WHERE run_id = ? ORDER BY position`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Recommendation
	for rows.Next() {
		var r Recommendation
		if err := rows.Scan(&r.ID, &r.RunID, &r.Position, &r.Pattern, &r.Excluded, &r.Letter, &r.Probability, &r.Candidates); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
