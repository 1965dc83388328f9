// Package ingest writes word lists and analysis runs to the sqlite run log.
package ingest

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/japaniel/hangman/pkg/db"
	"github.com/japaniel/hangman/pkg/dictionary"
	"github.com/japaniel/hangman/pkg/scenario"
)

// Ingester writes word lists and run results to the database.
type Ingester struct {
	DB        *sql.DB
	BatchSize int
	// FlushInterval bounds how long a partial batch waits before it is committed.
	FlushInterval time.Duration
	// Logger is used for informational messages. nil means slog.Default().
	Logger *slog.Logger
	// OnProgress is called as batches commit with the number of stored words and total words.
	OnProgress func(current, total int)

	// WriterFactory allows tests to inject custom writer implementations.
	// The writer must call onCommit with the size of every committed batch.
	WriterFactory func(conn *sql.DB, batchSize int, flushInterval time.Duration, onCommit func(n int)) Writer
}

// NewIngester creates a new Ingester.
func NewIngester(conn *sql.DB) *Ingester {
	return &Ingester{
		DB:            conn,
		BatchSize:     500,
		FlushInterval: 100 * time.Millisecond,
	}
}

func (ig *Ingester) logger() *slog.Logger {
	if ig.Logger != nil {
		return ig.Logger
	}
	return slog.Default()
}

func (ig *Ingester) newWriter(onCommit func(n int)) Writer {
	if ig.WriterFactory != nil {
		return ig.WriterFactory(ig.DB, ig.BatchSize, ig.FlushInterval, onCommit)
	}
	bw := NewBatchWriter(ig.DB, ig.BatchSize, ig.FlushInterval)
	bw.OnCommit = onCommit
	return bw
}

// ImportWords upserts every entry (word, count, prior) in batched transactions
// and returns the number of words in committed batches. On cancellation the
// batches already queued are still committed and ctx.Err() is returned.
func (ig *Ingester) ImportWords(ctx context.Context, entries []dictionary.WordEntry) (int, error) {
	total := len(entries)
	if total == 0 {
		return 0, nil
	}

	var written atomic.Int64
	w := ig.newWriter(func(n int) {
		done := written.Add(int64(n))
		if ig.OnProgress != nil {
			ig.OnProgress(int(done), total)
		}
	})

	var submitErr error
	for _, e := range entries {
		if err := ctx.Err(); err != nil {
			submitErr = err
			break
		}
		entry := e
		err := w.Submit(func(ctx context.Context, tx *sql.Tx) error {
			if _, err := db.UpsertWord(tx, entry.Word, entry.Count, entry.Prior); err != nil {
				return fmt.Errorf("persist word %q: %w", entry.Word, err)
			}
			return nil
		})
		if err != nil {
			submitErr = fmt.Errorf("submit word %s: %w", entry.Word, err)
			break
		}
	}

	closeErr := w.Close()
	n := int(written.Load())
	if submitErr != nil {
		return n, submitErr
	}
	if closeErr != nil {
		return n, closeErr
	}
	ig.logger().Debug("imported words", slog.Int("count", n))
	return n, nil
}

// RunInfo describes the word list an analysis run was made on.
type RunInfo struct {
	WordsPath  string
	TotalCount int64
	WordCount  int
	StartedAt  time.Time
}

// RecordRun stores a run and all of its scenario results in one transaction
// and returns the new run id.
func (ig *Ingester) RecordRun(ctx context.Context, info RunInfo, results []scenario.Result) (string, error) {
	tx, err := ig.DB.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("begin run tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback() // ignored if committed
	}()

	runID, err := db.CreateRun(tx, db.Run{
		StartedAt:  info.StartedAt,
		WordsPath:  info.WordsPath,
		TotalCount: info.TotalCount,
		WordCount:  info.WordCount,
	})
	if err != nil {
		return "", err
	}

	for _, r := range results {
		rec := db.Recommendation{
			RunID:      runID,
			Position:   r.Index,
			Pattern:    r.Scenario.Pattern.String(),
			Excluded:   r.Scenario.Excluded.String(),
			Candidates: r.Candidates,
		}
		if !r.Undefined {
			rec.Probability = sql.NullFloat64{Float64: r.Probability, Valid: true}
		}
		if r.OK {
			rec.Letter = string(r.Letter)
		}
		if err := db.InsertRecommendation(tx, rec); err != nil {
			return "", err
		}
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("commit run: %w", err)
	}
	ig.logger().Info("recorded run", slog.String("run", runID), slog.Int("scenarios", len(results)))
	return runID, nil
}
