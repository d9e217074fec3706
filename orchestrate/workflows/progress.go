package workflows

// ProgressFunc reports parallel progress after each successful item.
// completed is 1-indexed; result is the item's result. Calls may come from
// several goroutines concurrently.
//
// Example:
//
//	progress := func(completed, total int, r contract.ReviewResult) {
//	    fmt.Printf("reviews: %d/%d (%s)\n", completed, total, r.Reviewer)
//	}
type ProgressFunc[TResult any] func(
	completed int,
	total int,
	result TResult,
)
