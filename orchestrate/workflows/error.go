package workflows

import (
	"fmt"
	"slices"
	"strings"
)

// TaskError records a single failed item.
type TaskError[TItem any] struct {
	Index int // position in the input slice
	Item  TItem
	Err   error
}

// ParallelResult holds the outcome of ProcessParallel.
type ParallelResult[TItem, TResult any] struct {
	// Results contains all successfully processed items (dense slice, no gaps)
	Results []TResult

	// Errors contains all failed items with context (index, item, error)
	Errors []TaskError[TItem]
}

// ParallelError aggregates task failures. Unwrap exposes every underlying
// error to errors.Is and errors.As.
type ParallelError[TItem any] struct {
	Errors []TaskError[TItem]
}

// Error names the failed item when there is one. Otherwise it groups
// failures by message, most frequent first.
func (e *ParallelError[TItem]) Error() string {
	switch len(e.Errors) {
	case 0:
		return "parallel execution failed"
	case 1:
		return fmt.Sprintf("parallel execution failed: item %d: %v", e.Errors[0].Index, e.Errors[0].Err)
	}

	var groups []failureGroup
	for _, taskErr := range e.Errors {
		msg := taskErr.Err.Error()
		i := slices.IndexFunc(groups, func(g failureGroup) bool { return g.msg == msg })
		if i < 0 {
			groups = append(groups, failureGroup{msg: msg})
			i = len(groups) - 1
		}
		groups[i].indices = append(groups[i].indices, taskErr.Index)
	}
	slices.SortStableFunc(groups, func(a, b failureGroup) int {
		return len(b.indices) - len(a.indices)
	})

	parts := make([]string, len(groups))
	for i, g := range groups {
		parts[i] = fmt.Sprintf("'%s' (items %v)", g.msg, g.indices)
	}

	return fmt.Sprintf("parallel execution failed: %d items failed with %d error types: %s",
		len(e.Errors), len(groups), strings.Join(parts, ", "))
}

type failureGroup struct {
	msg     string
	indices []int
}

func (e *ParallelError[TItem]) Unwrap() []error {
	errs := make([]error, len(e.Errors))
	for i, taskErr := range e.Errors {
		errs[i] = taskErr.Err
	}
	return errs
}
