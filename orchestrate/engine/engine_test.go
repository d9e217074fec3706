package engine_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tailored-agentic-units/contract-review/observability"
	"github.com/tailored-agentic-units/contract-review/orchestrate/config"
	"github.com/tailored-agentic-units/contract-review/orchestrate/engine"
	"github.com/tailored-agentic-units/contract-review/orchestrate/graph"
	"github.com/tailored-agentic-units/contract-review/orchestrate/state"
)

func testConfig() config.GraphConfig {
	cfg := config.DefaultGraphConfig("test")
	cfg.Observer = "noop"
	cfg.Parallel.Observer = "noop"
	return cfg
}

func lenient() config.GraphConfig {
	cfg := testConfig()
	strict := false
	cfg.StrictConditionsNil = &strict
	return cfg
}

func intStage(name string, fn func(int) int) graph.Node {
	return graph.NewStage(name, func(_ context.Context, _ graph.Runtime, n int) (int, error) {
		return fn(n), nil
	})
}

func must(t *testing.T, errs ...error) {
	t.Helper()
	require.NoError(t, errors.Join(errs...))
}

func newEngine(t *testing.T, g *graph.Graph, cfg config.GraphConfig, opts ...engine.Option) *engine.Engine {
	t.Helper()
	eng, err := engine.New(g, cfg, opts...)
	require.NoError(t, err)
	return eng
}

func TestRun_Linear(t *testing.T) {
	g := graph.New("linear")
	must(t,
		g.AddNode(intStage("inc", func(n int) int { return n + 1 })),
		g.AddNode(intStage("double", func(n int) int { return n * 2 })),
		g.SetEntryPoint("inc"),
		g.AddEdge("inc", "double"),
		g.SetTerminal("double"),
	)

	collector := &engine.Collector{}
	result, err := newEngine(t, g, testConfig()).Run(context.Background(), 4, collector)
	require.NoError(t, err)

	assert.Equal(t, 10, result.Output)
	assert.Equal(t, "double", result.Terminal)
	assert.Equal(t, []string{"inc", "double"}, result.Path)
	assert.Equal(t, 2, result.Steps)
	assert.NotEmpty(t, result.RunID)
	assert.Equal(t, []any{10}, collector.Values())
}

func TestRun_RunIDsAreTimeOrdered(t *testing.T) {
	g := graph.New("ids")
	must(t,
		g.AddNode(intStage("inc", func(n int) int { return n + 1 })),
		g.AddNode(intStage("double", func(n int) int { return n * 2 })),
		g.SetEntryPoint("inc"),
		g.AddEdge("inc", "double"),
		g.SetTerminal("double"),
	)
	eng := newEngine(t, g, testConfig())

	first, err := eng.Run(context.Background(), 1, nil)
	require.NoError(t, err)
	time.Sleep(2 * time.Millisecond)
	second, err := eng.Run(context.Background(), 1, nil)
	require.NoError(t, err)

	for _, id := range []string{first.RunID, second.RunID} {
		parsed, err := uuid.Parse(id)
		require.NoError(t, err)
		assert.Equal(t, uuid.Version(7), parsed.Version())
	}
	assert.Less(t, first.RunID, second.RunID)
}

func TestNew_RejectsInvalidGraph(t *testing.T) {
	g := graph.New("invalid")
	must(t, g.AddNode(intStage("a", func(n int) int { return n })))

	_, err := engine.New(g, testConfig())
	assert.True(t, errors.Is(err, graph.ErrInvalidGraph), "error = %v", err)

	_, err = engine.New(nil, testConfig())
	assert.Error(t, err)
}

func TestNew_UnknownObserver(t *testing.T) {
	g := graph.New("g")
	must(t,
		g.AddNode(intStage("a", func(n int) int { return n })),
		g.SetEntryPoint("a"),
		g.SetTerminal("a"),
	)

	cfg := testConfig()
	cfg.Observer = "missing"
	_, err := engine.New(g, cfg)
	assert.True(t, errors.Is(err, observability.ErrUnknownObserver))
}

func TestRun_FanInPreservesDeclaredOrder(t *testing.T) {
	delayed := func(name string, delay time.Duration) graph.Node {
		return graph.NewStage(name, func(ctx context.Context, _ graph.Runtime, _ string) (string, error) {
			time.Sleep(delay)
			return name, nil
		})
	}

	g := graph.New("fan")
	must(t,
		g.AddNode(graph.NewStage("start", func(_ context.Context, _ graph.Runtime, s string) (string, error) { return s, nil })),
		g.AddNode(delayed("legal", 40*time.Millisecond)),
		g.AddNode(delayed("finance", 0)),
		g.AddNode(delayed("procurement", 20*time.Millisecond)),
		g.AddNode(graph.NewJoinStage("join", func(_ context.Context, _ graph.Runtime, in []string) ([]string, error) {
			return in, nil
		})),
		g.SetEntryPoint("start"),
		g.AddFanOutEdge("start", "legal", "finance", "procurement"),
		g.AddFanInEdge([]string{"legal", "finance", "procurement"}, "join"),
		g.SetTerminal("join"),
	)

	rec := &observability.Recorder{}
	result, err := newEngine(t, g, testConfig(), engine.WithObserver(rec)).Run(context.Background(), "c", nil)
	require.NoError(t, err)

	assert.Equal(t, []string{"legal", "finance", "procurement"}, result.Output)
	assert.Equal(t, 3, result.Steps, "fan-out group executes as a single step")
	assert.Len(t, rec.OfType(engine.EventFanOutDispatch), 1)
	assert.Len(t, rec.OfType(engine.EventJoinWait), 2)
	assert.Len(t, rec.OfType(engine.EventJoinReady), 1)
}

func TestRun_FanOutFailureIsFatal(t *testing.T) {
	boom := errors.New("finance unavailable")

	g := graph.New("fan")
	must(t,
		g.AddNode(intStage("start", func(n int) int { return n })),
		g.AddNode(intStage("a", func(n int) int { return n })),
		g.AddNode(graph.NewStage("b", func(context.Context, graph.Runtime, int) (int, error) { return 0, boom })),
		g.AddNode(graph.NewJoinStage("join", func(_ context.Context, _ graph.Runtime, in []int) (int, error) { return len(in), nil })),
		g.SetEntryPoint("start"),
		g.AddFanOutEdge("start", "a", "b"),
		g.AddFanInEdge([]string{"a", "b"}, "join"),
		g.SetTerminal("join"),
	)

	_, err := newEngine(t, g, testConfig()).Run(context.Background(), 1, nil)

	var execErr *engine.ExecutionError
	require.True(t, errors.As(err, &execErr), "error = %v", err)
	assert.Equal(t, "b", execErr.Node)
	assert.True(t, errors.Is(err, boom))
	assert.Equal(t, []string{"start"}, execErr.Path)
}

func branching(t *testing.T, low, high graph.Predicate) *graph.Graph {
	t.Helper()
	g := graph.New("branch")
	must(t,
		g.AddNode(intStage("score", func(n int) int { return n })),
		g.AddNode(intStage("low", func(n int) int { return -n })),
		g.AddNode(intStage("high", func(n int) int { return n * 10 })),
		g.SetEntryPoint("score"),
		g.AddConditionalEdge("score", "low", "low", low),
		g.AddConditionalEdge("score", "high", "high", high),
		g.SetTerminal("low"),
		g.SetTerminal("high"),
	)
	return g
}

func TestRun_ConditionalRouting(t *testing.T) {
	g := branching(t,
		graph.When(func(n int) bool { return n <= 30 }),
		graph.When(func(n int) bool { return n > 30 }),
	)
	eng := newEngine(t, g, testConfig())

	tests := []struct {
		input        int
		wantTerminal string
		wantOutput   int
	}{
		{input: 30, wantTerminal: "low", wantOutput: -30},
		{input: 31, wantTerminal: "high", wantOutput: 310},
	}

	for _, tt := range tests {
		result, err := eng.Run(context.Background(), tt.input, nil)
		require.NoError(t, err)
		assert.Equal(t, tt.wantTerminal, result.Terminal)
		assert.Equal(t, tt.wantOutput, result.Output)
	}
}

func TestRun_ConflictingEdges(t *testing.T) {
	overlap := func() *graph.Graph {
		return branching(t,
			graph.When(func(n int) bool { return n <= 50 }),
			graph.When(func(n int) bool { return n >= 50 }),
		)
	}

	_, err := newEngine(t, overlap(), testConfig()).Run(context.Background(), 50, nil)
	assert.True(t, errors.Is(err, engine.ErrConflictingEdges), "strict mode error = %v", err)

	rec := &observability.Recorder{}
	result, err := newEngine(t, overlap(), lenient(), engine.WithObserver(rec)).Run(context.Background(), 50, nil)
	require.NoError(t, err)
	assert.Equal(t, "low", result.Terminal, "first declared edge wins")
	assert.Len(t, rec.OfType(engine.EventEdgeConflict), 1)
}

func TestRun_ExpressionEdges(t *testing.T) {
	type scored struct {
		Score int `json:"score"`
	}

	g := graph.New("expr")
	must(t,
		g.AddNode(graph.NewStage("score", func(_ context.Context, _ graph.Runtime, n int) (scored, error) { return scored{Score: n}, nil })),
		g.AddNode(graph.NewStage("approve", func(_ context.Context, _ graph.Runtime, s scored) (string, error) { return "approve", nil })),
		g.AddNode(graph.NewStage("reject", func(_ context.Context, _ graph.Runtime, s scored) (string, error) { return "reject", nil })),
		g.SetEntryPoint("score"),
		g.AddExpressionEdge("score", "approve", "output.score <= 30.0"),
		g.AddExpressionEdge("score", "reject", "output.score > 30.0"),
		g.SetTerminal("approve"),
		g.SetTerminal("reject"),
	)

	eng := newEngine(t, g, testConfig())

	result, err := eng.Run(context.Background(), 12, nil)
	require.NoError(t, err)
	assert.Equal(t, "approve", result.Output)

	result, err = eng.Run(context.Background(), 75, nil)
	require.NoError(t, err)
	assert.Equal(t, "reject", result.Output)
}

func loopGraph(t *testing.T, limit int) *graph.Graph {
	t.Helper()

	counter := graph.NewStage("count", func(_ context.Context, rt graph.Runtime, _ int) (int, error) {
		n, err := state.Lookup[int](rt, "loop", "n")
		if errors.Is(err, state.ErrNotFound) {
			n = 0
		}
		n++
		rt.Write("loop", "n", n)
		return n, nil
	})

	g := graph.New("loop")
	must(t,
		g.AddNode(intStage("setup", func(n int) int { return n })),
		g.AddNode(counter),
		g.AddNode(intStage("check", func(n int) int { return n })),
		g.AddNode(intStage("done", func(n int) int { return n })),
		g.SetEntryPoint("setup"),
		g.AddEdge("setup", "count"),
		g.AddEdge("count", "check"),
		g.AddLoopRegion("counting", "count", "check"),
		g.AddLoopBackEdge("check", "count", "again", graph.When(func(n int) bool { return n < limit })),
		g.AddConditionalEdge("check", "done", "enough", graph.When(func(n int) bool { return n >= limit })),
		g.SetTerminal("done"),
	)
	return g
}

func TestRun_LoopBack(t *testing.T) {
	rec := &observability.Recorder{}
	result, err := newEngine(t, loopGraph(t, 3), testConfig(), engine.WithObserver(rec)).Run(context.Background(), 0, nil)
	require.NoError(t, err)

	assert.Equal(t, 3, result.Output)
	assert.Equal(t, 3, result.Passes["counting"])
	assert.Len(t, rec.OfType(engine.EventLoopBack), 2)
	assert.Equal(t, []string{"setup", "count", "check", "count", "check", "count", "check", "done"}, result.Path)
}

func TestRun_MaxSteps(t *testing.T) {
	cfg := testConfig()
	cfg.MaxSteps = 5

	_, err := newEngine(t, loopGraph(t, 1000), cfg).Run(context.Background(), 0, nil)
	assert.True(t, errors.Is(err, engine.ErrMaxSteps), "error = %v", err)
}

func TestRun_NoTerminalOutput(t *testing.T) {
	never := graph.When(func(int) bool { return false })
	g := branching(t, never, never)

	collector := &engine.Collector{}
	_, err := newEngine(t, g, testConfig()).Run(context.Background(), 1, collector)

	assert.True(t, errors.Is(err, engine.ErrNoTerminalOutput), "error = %v", err)
	assert.Empty(t, collector.Values())
}

func TestRun_Cancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	g := graph.New("cancel")
	must(t,
		g.AddNode(graph.NewStage("wait", func(ctx context.Context, _ graph.Runtime, n int) (int, error) {
			cancel()
			<-ctx.Done()
			return n, nil
		})),
		g.AddNode(intStage("out", func(n int) int { return n })),
		g.SetEntryPoint("wait"),
		g.AddEdge("wait", "out"),
		g.SetTerminal("out"),
	)

	collector := &engine.Collector{}
	_, err := newEngine(t, g, testConfig()).Run(ctx, 1, collector)

	assert.True(t, errors.Is(err, engine.ErrCancelled), "error = %v", err)
	assert.True(t, errors.Is(err, context.Canceled))
	assert.Empty(t, collector.Values(), "no output after cancellation")
}

func TestRun_CancelledBeforeStart(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	g := graph.New("g")
	must(t,
		g.AddNode(intStage("a", func(n int) int { return n })),
		g.SetEntryPoint("a"),
		g.SetTerminal("a"),
	)

	_, err := newEngine(t, g, testConfig()).Run(ctx, 1, nil)
	assert.True(t, errors.Is(err, engine.ErrCancelled))
}

func TestRun_StageErrorDiscardsWrites(t *testing.T) {
	boom := errors.New("stage failed")

	var store *state.Store
	var once sync.Once
	factory := func(o observability.Observer) *state.Store {
		once.Do(func() { store = state.New(o) })
		return store
	}

	g := graph.New("fail")
	must(t,
		g.AddNode(graph.NewStage("write", func(_ context.Context, rt graph.Runtime, n int) (int, error) {
			rt.Write("s", "committed", true)
			return n, nil
		})),
		g.AddNode(graph.NewStage("fail", func(_ context.Context, rt graph.Runtime, n int) (int, error) {
			rt.Write("s", "discarded", true)
			return 0, boom
		})),
		g.SetEntryPoint("write"),
		g.AddEdge("write", "fail"),
		g.SetTerminal("fail"),
	)

	_, err := newEngine(t, g, testConfig(), engine.WithStore(factory)).Run(context.Background(), 1, nil)

	var execErr *engine.ExecutionError
	require.True(t, errors.As(err, &execErr))
	assert.Equal(t, "fail", execErr.Node)
	assert.Equal(t, 2, execErr.Step)
	assert.True(t, errors.Is(err, boom))

	_, committed := store.Read("s", "committed")
	_, discarded := store.Read("s", "discarded")
	assert.True(t, committed)
	assert.False(t, discarded)
}

func TestRun_InputTypeMismatch(t *testing.T) {
	g := graph.New("types")
	must(t,
		g.AddNode(graph.NewStage("text", func(_ context.Context, _ graph.Runtime, s string) (string, error) { return s, nil })),
		g.SetEntryPoint("text"),
		g.SetTerminal("text"),
	)

	_, err := newEngine(t, g, testConfig()).Run(context.Background(), 42, nil)
	assert.True(t, errors.Is(err, graph.ErrInputType), "error = %v", err)
}

func TestRun_WritesVisibleNextStep(t *testing.T) {
	g := graph.New("visibility")
	must(t,
		g.AddNode(graph.NewStage("write", func(_ context.Context, rt graph.Runtime, n int) (bool, error) {
			rt.Write("s", "k", n)
			_, visible := rt.Read("s", "k")
			return visible, nil
		})),
		g.AddNode(graph.NewStage("read", func(_ context.Context, rt graph.Runtime, sameStep bool) ([]bool, error) {
			_, visible := rt.Read("s", "k")
			return []bool{sameStep, visible}, nil
		})),
		g.SetEntryPoint("write"),
		g.AddEdge("write", "read"),
		g.SetTerminal("read"),
	)

	result, err := newEngine(t, g, testConfig()).Run(context.Background(), 7, nil)
	require.NoError(t, err)
	assert.Equal(t, []bool{false, true}, result.Output)
}

func TestRun_IntermediateEmit(t *testing.T) {
	g := graph.New("emit")
	must(t,
		g.AddNode(graph.NewStage("a", func(ctx context.Context, rt graph.Runtime, n int) (int, error) {
			rt.Emit(ctx, "progress")
			return n, nil
		})),
		g.AddNode(intStage("b", func(n int) int { return n + 1 })),
		g.SetEntryPoint("a"),
		g.AddEdge("a", "b"),
		g.SetTerminal("b"),
	)

	var first, second engine.Collector
	_, err := newEngine(t, g, testConfig()).Run(context.Background(), 1, engine.MultiSink{&first, &second})
	require.NoError(t, err)

	assert.Equal(t, []any{"progress", 2}, first.Values())
	assert.Equal(t, first.Values(), second.Values())

	last, ok := first.Last()
	assert.True(t, ok)
	assert.Equal(t, 2, last)
}
