package scenario

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"

	"github.com/japaniel/hangman/pkg/dictionary"
	"github.com/japaniel/hangman/pkg/guesser"
)

// Result is the recommendation for one scenario of the table.
type Result struct {
	// Index is the 0-based position of the scenario in the table.
	Index    int
	Scenario Scenario
	guesser.Recommendation
}

// Line renders the result as "<pattern> <excluded> <letter> <probability>".
// A scenario with no recommendation prints "-" as the letter; one with no
// candidate words prints "- n/a".
func (r Result) Line() string {
	prefix := r.Scenario.Pattern.String() + " " + r.Scenario.Excluded.String()
	switch {
	case r.Undefined:
		return prefix + " - n/a"
	case !r.OK:
		return fmt.Sprintf("%s - %.4f", prefix, 0.0)
	}
	return fmt.Sprintf("%s %c %.4f", prefix, r.Letter, r.Probability)
}

// Driver evaluates scenario tables on a worker pool.
type Driver struct {
	// Workers is the pool size; <= 0 means runtime.NumCPU().
	Workers int
	Logger  *slog.Logger
	// OnProgress is called after each result is emitted with the number of
	// emitted results and the table size.
	OnProgress func(current, total int)
}

// NewDriver creates a Driver with the given pool size.
func NewDriver(workers int, logger *slog.Logger) *Driver {
	if logger == nil {
		logger = slog.Default()
	}
	return &Driver{Workers: workers, Logger: logger}
}

// Run evaluates every scenario against entries and calls emit with the
// results in table order. entries are only read. Run stops at the first emit
// error or when ctx is canceled.
func (d *Driver) Run(ctx context.Context, entries []dictionary.WordEntry, scenarios []Scenario, emit func(Result) error) error {
	if len(scenarios) == 0 {
		return ErrNoScenarios
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	logger := d.Logger
	if logger == nil {
		logger = slog.Default()
	}
	workers := d.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if workers > len(scenarios) {
		workers = len(scenarios)
	}

	ctx, cancel := context.WithCancel(ctx)
	wp := NewWorkerPool(workers, workers*2)
	wp.Start(ctx)
	// Cancel before Close so workers blocked on resultCh can exit.
	defer func() {
		cancel()
		wp.Close()
	}()

	resultCh := make(chan Result, workers*2)

	// Producer: one job per scenario.
	go func() {
		for i, sc := range scenarios {
			idx, sc := i, sc
			job := func(ctx context.Context) {
				rec := guesser.Recommend(entries, sc.Pattern, sc.Excluded)
				if rec.Undefined {
					logger.Debug("no candidate words", slog.Int("scenario", idx+1), slog.String("state", sc.String()))
				}
				select {
				case resultCh <- Result{Index: idx, Scenario: sc, Recommendation: rec}:
				case <-ctx.Done():
				}
			}
			if err := wp.SubmitCtx(ctx, job); err != nil {
				return
			}
		}
	}()

	// Consumer: emit contiguous results, buffering the ones that finish early.
	buffer := make(map[int]Result)
	nextIdx := 0
	for nextIdx < len(scenarios) {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case res := <-resultCh:
			buffer[res.Index] = res
		}

		for {
			item, ok := buffer[nextIdx]
			if !ok {
				break
			}
			delete(buffer, nextIdx)
			if err := emit(item); err != nil {
				return err
			}
			nextIdx++
			if d.OnProgress != nil {
				d.OnProgress(nextIdx, len(scenarios))
			}
		}
	}
	return nil
}

// Evaluate runs the table and collects all results in order.
func (d *Driver) Evaluate(ctx context.Context, entries []dictionary.WordEntry, scenarios []Scenario) ([]Result, error) {
	results := make([]Result, 0, len(scenarios))
	err := d.Run(ctx, entries, scenarios, func(r Result) error {
		results = append(results, r)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return results, nil
}
