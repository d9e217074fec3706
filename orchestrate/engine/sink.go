package engine

import (
	"context"
	"slices"
	"sync"
)

// OutputSink receives intermediate-visible values emitted by stages and the
// terminal output of a run. Emit may be called from concurrent fan-out
// branches.
type OutputSink interface {
	Emit(ctx context.Context, value any)
}

// SinkFunc adapts a function to OutputSink.
type SinkFunc func(ctx context.Context, value any)

func (f SinkFunc) Emit(ctx context.Context, value any) {
	f(ctx, value)
}

// MultiSink forwards every value to each sink in order.
type MultiSink []OutputSink

func (m MultiSink) Emit(ctx context.Context, value any) {
	for _, s := range m {
		if s != nil {
			s.Emit(ctx, value)
		}
	}
}

// Collector keeps every emitted value. It is safe for concurrent use.
type Collector struct {
	mu     sync.Mutex
	values []any
}

func (c *Collector) Emit(_ context.Context, value any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.values = append(c.values, value)
}

// Values returns the emitted values in arrival order.
func (c *Collector) Values() []any {
	c.mu.Lock()
	defer c.mu.Unlock()
	return slices.Clone(c.values)
}

// Last returns the most recently emitted value.
func (c *Collector) Last() (any, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.values) == 0 {
		return nil, false
	}
	return c.values[len(c.values)-1], true
}

type discard struct{}

func (discard) Emit(context.Context, any) {}
