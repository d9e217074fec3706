package workflows

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/tailored-agentic-units/contract-review/observability"
	"github.com/tailored-agentic-units/contract-review/orchestrate/config"
)

// TaskProcessor processes a single item and returns a result.
//
// Each item is processed independently and concurrently; a processor
// receives no accumulated state and must not depend on other items.
//
// Example:
//
//	processor := func(ctx context.Context, r agent.Reviewer) (contract.ReviewResult, error) {
//	    return r.Review(ctx, c)
//	}
type TaskProcessor[TItem, TResult any] func(
	ctx context.Context,
	item TItem,
) (TResult, error)

// ProcessParallel executes concurrent processing with result aggregation.
// The observer is resolved from cfg.Observer; see ProcessParallelWithDeps.
func ProcessParallel[TItem, TResult any](
	ctx context.Context,
	cfg config.ParallelConfig,
	items []TItem,
	processor TaskProcessor[TItem, TResult],
	progress ProgressFunc[TResult],
) (ParallelResult[TItem, TResult], error) {
	observer, err := observability.GetObserver(cfg.Observer)
	if err != nil {
		return ParallelResult[TItem, TResult]{}, fmt.Errorf("failed to resolve observer: %w", err)
	}
	return ProcessParallelWithDeps(ctx, cfg, observer, items, processor, progress)
}

// ProcessParallelWithDeps distributes items over a bounded pool of goroutines
// and returns results in original item order regardless of completion order.
//
// Worker count follows cfg.Workers: an explicit MaxWorkers, or
// min(NumCPU*2, WorkerCap, len(items)).
//
// FailFast=true (default):
//   - The first error cancels the context shared by every task
//   - Tasks not yet started are skipped
//   - Returns ParallelError with partial results
//
// FailFast=false:
//   - Every item is processed
//   - Returns an error only if every item failed
//   - Check result.Errors for partial failures
//
// Cancellation of ctx is reported as an error wrapping ctx.Err().
//
// Emits EventParallelStart, EventWorkerStart, EventWorkerComplete and
// EventParallelComplete. If observer is nil, NoOpObserver is used.
func ProcessParallelWithDeps[TItem, TResult any](
	ctx context.Context,
	cfg config.ParallelConfig,
	observer observability.Observer,
	items []TItem,
	processor TaskProcessor[TItem, TResult],
	progress ProgressFunc[TResult],
) (ParallelResult[TItem, TResult], error) {
	if observer == nil {
		observer = observability.NoOpObserver{}
	}

	workerCount := cfg.Workers(len(items))

	observer.OnEvent(ctx, observability.Event{
		Type:      EventParallelStart,
		Level:     observability.LevelInfo,
		Timestamp: time.Now(),
		Source:    "workflows.ProcessParallel",
		Data: map[string]any{
			"item_count":            len(items),
			"worker_count":          workerCount,
			"fail_fast":             cfg.FailFast(),
			"has_progress_callback": progress != nil,
		},
	})

	if len(items) == 0 {
		complete(ctx, observer, 0, 0, false)
		return ParallelResult[TItem, TResult]{
			Results: []TResult{},
			Errors:  []TaskError[TItem]{},
		}, nil
	}

	var (
		group    *errgroup.Group
		groupCtx = ctx
	)
	if cfg.FailFast() {
		group, groupCtx = errgroup.WithContext(ctx)
	} else {
		group = new(errgroup.Group)
	}
	group.SetLimit(workerCount)

	outcomes := make([]outcome[TResult], len(items))
	var mu sync.Mutex
	var completed atomic.Int32

	for i, item := range items {
		group.Go(func() error {
			if groupCtx.Err() != nil {
				return nil
			}

			observer.OnEvent(groupCtx, observability.Event{
				Type:      EventWorkerStart,
				Level:     observability.LevelVerbose,
				Timestamp: time.Now(),
				Source:    "workflows.ProcessParallel",
				Data: map[string]any{
					"item_index":  i,
					"total_items": len(items),
				},
			})

			result, err := processor(groupCtx, item)

			observer.OnEvent(groupCtx, observability.Event{
				Type:      EventWorkerComplete,
				Level:     observability.LevelVerbose,
				Timestamp: time.Now(),
				Source:    "workflows.ProcessParallel",
				Data: map[string]any{
					"item_index":  i,
					"total_items": len(items),
					"error":       err != nil,
				},
			})

			mu.Lock()
			outcomes[i] = outcome[TResult]{done: true, result: result, err: err}
			mu.Unlock()

			if err != nil {
				if cfg.FailFast() {
					return err
				}
				return nil
			}

			if progress != nil {
				progress(int(completed.Add(1)), len(items), result)
			}
			return nil
		})
	}

	_ = group.Wait()

	results, taskErrors := collect(outcomes, items)
	out := ParallelResult[TItem, TResult]{Results: results, Errors: taskErrors}

	if err := ctx.Err(); err != nil {
		complete(ctx, observer, len(results), len(taskErrors), true)
		return out, fmt.Errorf("parallel execution cancelled: %w", err)
	}

	if len(taskErrors) > 0 && (cfg.FailFast() || len(results) == 0) {
		complete(ctx, observer, len(results), len(taskErrors), true)
		return out, &ParallelError[TItem]{Errors: taskErrors}
	}

	complete(ctx, observer, len(results), len(taskErrors), false)
	return out, nil
}

type outcome[TResult any] struct {
	done   bool
	result TResult
	err    error
}

// collect builds dense, index-ordered result and error slices. Tasks skipped
// after a fail-fast cancellation appear in neither. A task that failed only
// because fail-fast cancelled it is dropped when another task holds the
// originating error.
func collect[TItem, TResult any](outcomes []outcome[TResult], items []TItem) ([]TResult, []TaskError[TItem]) {
	results := make([]TResult, 0, len(outcomes))
	taskErrors := make([]TaskError[TItem], 0)

	original := false
	for _, o := range outcomes {
		if o.done && o.err != nil && !errors.Is(o.err, context.Canceled) {
			original = true
			break
		}
	}

	for i, o := range outcomes {
		switch {
		case !o.done:
		case o.err == nil:
			results = append(results, o.result)
		case original && errors.Is(o.err, context.Canceled):
		default:
			taskErrors = append(taskErrors, TaskError[TItem]{Index: i, Item: items[i], Err: o.err})
		}
	}

	return results, taskErrors
}

func complete(ctx context.Context, observer observability.Observer, processed, failed int, failure bool) {
	observer.OnEvent(ctx, observability.Event{
		Type:      EventParallelComplete,
		Level:     observability.LevelInfo,
		Timestamp: time.Now(),
		Source:    "workflows.ProcessParallel",
		Data: map[string]any{
			"items_processed": processed,
			"items_failed":    failed,
			"error":           failure,
		},
	})
}
