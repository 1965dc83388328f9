package ingest

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"
)

// WriteFunc performs one write inside the transaction of its batch.
type WriteFunc func(ctx context.Context, tx *sql.Tx) error

// Writer is the write side used by the Ingester; BatchWriter implements it.
type Writer interface {
	Submit(WriteFunc) error
	Close() error
}

// ErrBatchWriterClosed is returned by Submit and Close once Close has run.
var ErrBatchWriterClosed = errors.New("ingest: batch writer closed")

// BatchWriter groups submitted writes into transactions of up to size writes,
// committed in submission order by a single goroutine. A write that fails
// rolls back every write of its batch.
type BatchWriter struct {
	conn *sql.DB
	size int
	tick *time.Ticker

	mu      sync.Mutex
	pending []WriteFunc
	closed  bool

	batches  chan []WriteFunc
	shutdown context.Context
	stop     context.CancelFunc
	loops    sync.WaitGroup

	// OnError is called for every batch that fails or is dropped.
	OnError func(error)
	// OnCommit is called with the number of writes in every committed batch.
	OnCommit func(n int)

	failure atomic.Pointer[error]
}

// NewBatchWriter starts a writer on conn that commits every size writes and,
// when interval > 0, whatever is pending once per interval.
func NewBatchWriter(conn *sql.DB, size int, interval time.Duration) *BatchWriter {
	if size <= 0 {
		size = 10
	}
	shutdown, stop := context.WithCancel(context.Background())
	bw := &BatchWriter{
		conn:     conn,
		size:     size,
		pending:  make([]WriteFunc, 0, size),
		batches:  make(chan []WriteFunc, 2),
		shutdown: shutdown,
		stop:     stop,
	}

	bw.loops.Add(1)
	go bw.commitLoop()
	if interval > 0 {
		bw.tick = time.NewTicker(interval)
		bw.loops.Add(1)
		go bw.tickLoop()
	}
	return bw
}

// Submit queues w. It blocks while the committer is behind by more than two
// batches.
func (bw *BatchWriter) Submit(w WriteFunc) error {
	bw.mu.Lock()
	defer bw.mu.Unlock()
	if bw.closed {
		return ErrBatchWriterClosed
	}
	bw.pending = append(bw.pending, w)
	if len(bw.pending) >= bw.size {
		bw.handOff()
	}
	return nil
}

// Err returns the first batch failure seen so far.
func (bw *BatchWriter) Err() error {
	if p := bw.failure.Load(); p != nil {
		return *p
	}
	return nil
}

func (bw *BatchWriter) fail(err error) {
	bw.failure.CompareAndSwap(nil, &err)
	if bw.OnError != nil {
		bw.OnError(err)
	}
}

// handOff moves the pending writes to the committer. bw.mu must be held.
func (bw *BatchWriter) handOff() {
	if len(bw.pending) == 0 {
		return
	}
	batch := bw.pending
	bw.pending = make([]WriteFunc, 0, bw.size)

	select {
	case bw.batches <- batch:
	case <-bw.shutdown.Done():
		bw.fail(fmt.Errorf("batch writer: dropping batch of %d writes after shutdown", len(batch)))
	}
}

func (bw *BatchWriter) commitLoop() {
	defer bw.loops.Done()
	for batch := range bw.batches {
		if err := bw.commit(batch); err != nil {
			bw.fail(err)
			continue
		}
		if bw.OnCommit != nil {
			bw.OnCommit(len(batch))
		}
	}
}

// commit runs batch in one transaction. It ignores the shutdown context so
// that batches handed off before Close are still written.
func (bw *BatchWriter) commit(batch []WriteFunc) (err error) {
	ctx := context.Background()
	tx, err := bw.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin batch tx: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	for _, w := range batch {
		if err = w(ctx, tx); err != nil {
			return err
		}
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit batch of %d writes: %w", len(batch), err)
	}
	return nil
}

func (bw *BatchWriter) tickLoop() {
	defer bw.loops.Done()
	for {
		select {
		case <-bw.shutdown.Done():
			return
		case <-bw.tick.C:
			bw.mu.Lock()
			bw.handOff()
			bw.mu.Unlock()
		}
	}
}

// Close commits what is pending, waits for the committer and returns the
// first batch failure.
func (bw *BatchWriter) Close() error {
	bw.mu.Lock()
	if bw.closed {
		bw.mu.Unlock()
		return ErrBatchWriterClosed
	}
	bw.closed = true
	if bw.tick != nil {
		bw.tick.Stop()
	}
	bw.handOff()
	bw.mu.Unlock()

	bw.stop()
	close(bw.batches)
	bw.loops.Wait()
	return bw.Err()
}
