// Package workflows provides the generic parallel processing primitive used
// for fan-out groups.
//
// ProcessParallel runs a processor over a slice of items on a bounded pool of
// goroutines (golang.org/x/sync/errgroup) and returns results in original
// item order despite concurrent execution:
//
//	cfg := config.DefaultParallelConfig() // FailFast() returns true
//	result, err := workflows.ProcessParallel(ctx, cfg, reviewers, processor, nil)
//	if err != nil {
//	    return err // first error cancelled the remaining tasks
//	}
//
// With fail-fast disabled every item is processed and an error is returned
// only when all of them failed; partial failures are listed in
// result.Errors:
//
//	failFast := false
//	cfg := config.ParallelConfig{FailFastNil: &failFast, Observer: "slog"}
//	result, err := workflows.ProcessParallel(ctx, cfg, items, processor, nil)
//
// # Error Types
//
// TaskError records the index, item and error of a single failure.
// ParallelError aggregates them and unwraps to every underlying error.
//
// # Observability
//
// Execution emits EventParallelStart and EventParallelComplete at LevelInfo,
// and EventWorkerStart and EventWorkerComplete per item at LevelVerbose.
// ProcessParallelWithDeps accepts an observer instance instead of resolving
// cfg.Observer from the registry.
package workflows
