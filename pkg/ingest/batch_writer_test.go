package ingest

import (
	"context"
	"database/sql"
	"fmt"
	"slices"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/japaniel/hangman/pkg/db"
)

func upsert(word string, count int64) WriteFunc {
	return func(ctx context.Context, tx *sql.Tx) error {
		_, err := db.UpsertWord(tx, word, count, 0)
		return err
	}
}

func storedWords(t *testing.T, conn *sql.DB) []string {
	t.Helper()
	words, err := db.GetWords(conn)
	if err != nil {
		t.Fatalf("get words: %v", err)
	}
	out := make([]string, len(words))
	for i, w := range words {
		out[i] = fmt.Sprintf("%s %d", w.Word, w.Count)
	}
	return out
}

func closeWithin(t *testing.T, bw *BatchWriter, d time.Duration) error {
	t.Helper()
	done := make(chan error, 1)
	go func() { done <- bw.Close() }()
	select {
	case err := <-done:
		return err
	case <-time.After(d):
		t.Fatal("timeout waiting for batch writer to close")
		return nil
	}
}

func TestBatchWriterCommitsWords(t *testing.T) {
	conn := setupDB(t)
	defer conn.Close()

	bw := NewBatchWriter(conn, 2, 0)
	for _, w := range []WriteFunc{upsert("TABLE", 3), upsert("APPLE", 10), upsert("ARISE", 5)} {
		if err := bw.Submit(w); err != nil {
			t.Fatalf("submit: %v", err)
		}
	}
	if err := closeWithin(t, bw, time.Second); err != nil {
		t.Fatalf("close: %v", err)
	}

	want := []string{"APPLE 10", "ARISE 5", "TABLE 3"}
	if got := storedWords(t, conn); !slices.Equal(got, want) {
		t.Fatalf("stored %v, want %v", got, want)
	}
}

func TestBatchWriterRollsBackFailedBatch(t *testing.T) {
	conn := setupDB(t)
	defer conn.Close()

	bw := NewBatchWriter(conn, 2, 0)
	var mu sync.Mutex
	var failures []error
	var commits []int
	bw.OnError = func(err error) {
		mu.Lock()
		failures = append(failures, err)
		mu.Unlock()
	}
	bw.OnCommit = func(n int) {
		mu.Lock()
		commits = append(commits, n)
		mu.Unlock()
	}

	// The empty word fails the first batch, taking APPLE down with it.
	for _, w := range []WriteFunc{upsert("APPLE", 10), upsert("", 1), upsert("TABLE", 3), upsert("ARISE", 5)} {
		if err := bw.Submit(w); err != nil {
			t.Fatalf("submit: %v", err)
		}
	}
	err := closeWithin(t, bw, time.Second)
	if err == nil || !strings.Contains(err.Error(), "non-empty") {
		t.Fatalf("expected empty word error from Close, got %v", err)
	}

	want := []string{"ARISE 5", "TABLE 3"}
	if got := storedWords(t, conn); !slices.Equal(got, want) {
		t.Fatalf("stored %v, want %v", got, want)
	}
	if len(failures) != 1 {
		t.Errorf("expected one failed batch, got %v", failures)
	}
	if !slices.Equal(commits, []int{2}) {
		t.Errorf("expected one committed batch of 2, got %v", commits)
	}
}

func TestBatchWriterFlushesOnInterval(t *testing.T) {
	conn := setupDB(t)
	defer conn.Close()

	bw := NewBatchWriter(conn, 100, 20*time.Millisecond)
	if err := bw.Submit(upsert("APPLE", 10)); err != nil {
		t.Fatalf("submit: %v", err)
	}

	// Nothing fills the batch, so only the ticker can commit APPLE.
	deadline := time.Now().Add(time.Second)
	for len(storedWords(t, conn)) == 0 {
		if time.Now().After(deadline) {
			t.Fatal("word not committed by the flush interval")
		}
		time.Sleep(10 * time.Millisecond)
	}
	if err := closeWithin(t, bw, time.Second); err != nil {
		t.Fatalf("close: %v", err)
	}
}

func TestBatchWriterReportsCommits(t *testing.T) {
	conn := setupDB(t)
	defer conn.Close()

	bw := NewBatchWriter(conn, 3, 0)
	var mu sync.Mutex
	var sizes []int
	bw.OnCommit = func(n int) {
		mu.Lock()
		sizes = append(sizes, n)
		mu.Unlock()
	}
	for i := 0; i < 7; i++ {
		if err := bw.Submit(upsert(fmt.Sprintf("W%02d", i), int64(i))); err != nil {
			t.Fatalf("submit: %v", err)
		}
	}
	if err := closeWithin(t, bw, time.Second); err != nil {
		t.Fatalf("close: %v", err)
	}
	if !slices.Equal(sizes, []int{3, 3, 1}) {
		t.Fatalf("expected batches of 3, 3, 1, got %v", sizes)
	}
	if n := len(storedWords(t, conn)); n != 7 {
		t.Fatalf("expected 7 stored words, got %d", n)
	}

	if err := bw.Submit(upsert("LATE", 1)); err != ErrBatchWriterClosed {
		t.Fatalf("expected ErrBatchWriterClosed after close, got %v", err)
	}
	if err := bw.Close(); err != ErrBatchWriterClosed {
		t.Fatalf("expected ErrBatchWriterClosed on second close, got %v", err)
	}
}

func TestBatchWriterDropsBatchAfterShutdown(t *testing.T) {
	conn := setupDB(t)
	defer conn.Close()

	bw := NewBatchWriter(conn, 1, 0)
	errCh := make(chan error, 2)
	bw.OnError = func(err error) { errCh <- err }

	// Hold the committer inside the first transaction.
	release := make(chan struct{})
	if err := bw.Submit(func(ctx context.Context, tx *sql.Tx) error {
		<-release
		return upsert("APPLE", 10)(ctx, tx)
	}); err != nil {
		t.Fatalf("submit: %v", err)
	}
	if err := bw.Submit(upsert("ARISE", 5)); err != nil {
		t.Fatalf("submit: %v", err)
	}

	bw.stop()

	// The committer and its queue hold at most three batches, so one of these
	// hand-offs has nowhere to go.
	for _, word := range []string{"TABLE", "DRAIN"} {
		if err := bw.Submit(upsert(word, 1)); err != nil {
			t.Fatalf("submit: %v", err)
		}
	}
	close(release)

	select {
	case err := <-errCh:
		if !strings.Contains(err.Error(), "dropping batch") {
			t.Fatalf("unexpected error: %v", err)
		}
	case <-time.After(500 * time.Millisecond):
		t.Fatal("expected a dropped batch to be reported")
	}

	err := closeWithin(t, bw, time.Second)
	if err == nil || !strings.Contains(err.Error(), "dropping batch") {
		t.Fatalf("expected Close to report the dropped batch, got %v", err)
	}
	stored := storedWords(t, conn)
	if !slices.Contains(stored, "APPLE 10") || !slices.Contains(stored, "ARISE 5") {
		t.Errorf("expected batches handed off before shutdown to commit, got %v", stored)
	}
}

func TestBatchWriterCloseReturnsFirstError(t *testing.T) {
	conn := setupDB(t)
	defer conn.Close()

	bw := NewBatchWriter(conn, 1, 0)
	_ = bw.Submit(upsert("APPLE", -1))
	_ = bw.Submit(upsert("", 1))
	err := closeWithin(t, bw, time.Second)
	if err == nil || !strings.Contains(err.Error(), "negative") {
		t.Fatalf("expected the negative count error from Close, got %v", err)
	}
	if err != bw.Err() {
		t.Errorf("Err() = %v, want %v", bw.Err(), err)
	}
}
