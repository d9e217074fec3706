package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/tailored-agentic-units/contract-review/observability"
	"github.com/tailored-agentic-units/contract-review/orchestrate/state"
)

// runtime implements graph.Runtime for a single run.
type runtime struct {
	store    *state.Store
	sink     OutputSink
	runID    string
	source   string
	observer observability.Observer
}

func (r *runtime) Read(scope, key string) (any, bool) {
	return r.store.Read(scope, key)
}

func (r *runtime) Write(scope, key string, value any) {
	r.store.Write(scope, key, value)
}

func (r *runtime) Emit(ctx context.Context, value any) {
	r.sink.Emit(ctx, value)
	r.observer.OnEvent(ctx, observability.Event{
		Type:      EventOutputEmit,
		Level:     observability.LevelVerbose,
		Timestamp: time.Now(),
		Source:    r.source,
		Data: map[string]any{
			"run_id":   r.runID,
			"terminal": false,
			"type":     fmt.Sprintf("%T", value),
		},
	})
}

func (r *runtime) RunID() string {
	return r.runID
}

func (r *runtime) Observer() observability.Observer {
	return r.observer
}
