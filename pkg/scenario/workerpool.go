package scenario

import (
	"context"
	"errors"
	"sync"
)

// ErrPoolClosed is returned by Submit once Close has been called.
var ErrPoolClosed = errors.New("scenario: worker pool closed")

// Job evaluates one unit of work. Results travel on the caller's own channel.
type Job func(ctx context.Context)

// WorkerPool runs jobs on a fixed set of goroutines fed from a bounded queue.
type WorkerPool struct {
	size    int
	queue   chan Job
	running sync.WaitGroup

	mu       sync.Mutex
	shutdown bool
	closing  chan struct{}
	// inflight counts Submit calls past the shutdown check; queue is closed
	// only after they return.
	inflight sync.WaitGroup
}

// NewWorkerPool creates a pool of size workers with room for queueLen jobs.
func NewWorkerPool(size, queueLen int) *WorkerPool {
	size = max(size, 1)
	if queueLen <= 0 {
		queueLen = 2 * size
	}
	return &WorkerPool{
		size:    size,
		queue:   make(chan Job, queueLen),
		closing: make(chan struct{}),
	}
}

// Start launches the workers. They stop when ctx is done or the queue is
// drained after Close.
func (p *WorkerPool) Start(ctx context.Context) {
	p.running.Add(p.size)
	for range p.size {
		go p.work(ctx)
	}
}

func (p *WorkerPool) work(ctx context.Context) {
	defer p.running.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case job, ok := <-p.queue:
			if !ok {
				return
			}
			job(ctx)
		}
	}
}

// Submit queues job, blocking while the queue is full.
func (p *WorkerPool) Submit(job Job) error {
	return p.SubmitCtx(context.Background(), job)
}

// SubmitCtx is Submit that gives up with ctx.Err() when ctx is done. A Submit
// blocked when Close is called returns ErrPoolClosed.
func (p *WorkerPool) SubmitCtx(ctx context.Context, job Job) error {
	if !p.enter() {
		return ErrPoolClosed
	}
	defer p.inflight.Done()

	select {
	case p.queue <- job:
		return nil
	case <-p.closing:
		return ErrPoolClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (p *WorkerPool) enter() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.shutdown {
		return false
	}
	p.inflight.Add(1)
	return true
}

// Close rejects new jobs, lets the workers drain the queue and waits for
// them. Queued jobs are abandoned if the Start context is canceled.
func (p *WorkerPool) Close() {
	p.mu.Lock()
	if p.shutdown {
		p.mu.Unlock()
		return
	}
	p.shutdown = true
	close(p.closing)
	p.mu.Unlock()

	p.inflight.Wait()
	close(p.queue)
	p.running.Wait()
}
