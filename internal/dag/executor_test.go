package dag

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/taskflow/internal/ctxlog"
	"github.com/vk/taskflow/internal/payload"
)

// total adds up an int or an arbitrarily nested []any of ints.
func total(in any) int {
	switch v := in.(type) {
	case int:
		return v
	case []any:
		sum := 0
		for _, e := range v {
			sum += total(e)
		}
		return sum
	default:
		panic("unexpected input")
	}
}

func adder(n int) TaskFunc {
	return func(_ context.Context, in any) (any, error) {
		return total(in) + n, nil
	}
}

// recorder remembers the input every task received.
type recorder struct {
	mu     sync.Mutex
	calls  []string
	inputs map[string]any
}

func newRecorder() *recorder {
	return &recorder{inputs: make(map[string]any)}
}

func (r *recorder) task(name string, out any) TaskFunc {
	return func(_ context.Context, in any) (any, error) {
		r.mu.Lock()
		defer r.mu.Unlock()
		r.calls = append(r.calls, name)
		r.inputs[name] = in
		return out, nil
	}
}

func (r *recorder) decision(name string, next string) TaskFunc {
	return func(_ context.Context, in any) (any, error) {
		r.mu.Lock()
		defer r.mu.Unlock()
		r.calls = append(r.calls, name)
		r.inputs[name] = in
		return Decision{Value: in, Next: next}, nil
	}
}

func TestRun_EndToEndArithmetic(t *testing.T) {
	g := New()
	increment := g.AddTask("increment", adder(1))
	addTwo := g.AddTask("add_two", adder(2))
	addThree := g.AddTask("add_three", adder(3))
	sumAddFour := g.AddTask("sum_add_four", adder(4))
	addFive := g.AddTask("add_five", adder(5))

	increment.Then(addTwo).Then(sumAddFour).Then(addFive)
	increment.Then(addThree).Then(sumAddFour)

	results, err := g.Run(context.Background(), 1)
	require.NoError(t, err)

	assert.Equal(t, []string{"add_five"}, results.Names())
	v, ok := results.Get("add_five")
	require.True(t, ok)
	assert.Equal(t, 18, v)
}

func TestRun_ZeroEdgesInvokesOnlyStart(t *testing.T) {
	rec := newRecorder()
	g := New()
	g.AddTask("a", rec.task("a", "A"))
	g.AddTask("b", rec.task("b", "B"))
	g.AddTask("c", rec.task("c", "C"))

	results, err := g.Run(context.Background(), 7)
	require.NoError(t, err)

	assert.Equal(t, []string{"a"}, rec.calls)
	assert.Equal(t, Results{{Task: "a", Value: "A"}}, results)
	assert.Equal(t, []any{7}, rec.inputs["a"], "atomic input is wrapped for the start task")
}

func TestRun_StructuredInputPassesThrough(t *testing.T) {
	rec := newRecorder()
	g := New()
	g.AddTask("extract", rec.task("extract", "done"))

	input := map[string]any{"numbers": []any{1, 2, 3}}
	_, err := g.Run(context.Background(), input)
	require.NoError(t, err)

	if diff := cmp.Diff(input, rec.inputs["extract"]); diff != "" {
		t.Errorf("start input mismatch (-want +got):\n%s", diff)
	}
}

func TestRun_JoinReceivesParentsInOrder(t *testing.T) {
	rec := newRecorder()
	g := New()
	start := g.AddTask("start", rec.task("start", "s"))
	p1 := g.AddTask("p1", rec.task("p1", "from p1"))
	p2 := g.AddTask("p2", rec.task("p2", "from p2"))
	join := g.AddTask("join", rec.task("join", "joined"))

	start.Then(p1).Then(join)
	start.Then(p2).Then(join)

	results, err := g.Run(context.Background(), 1)
	require.NoError(t, err)

	assert.Equal(t, []string{"start", "p1", "p2", "join"}, rec.calls)
	assert.Equal(t, []any{"from p1", "from p2"}, rec.inputs["join"])
	assert.Equal(t, "s", rec.inputs["p1"], "single parent result is passed directly")
	assert.Equal(t, Results{{Task: "join", Value: "joined"}}, results)
}

func TestRun_BestEffortJoinWithMissingParent(t *testing.T) {
	rec := newRecorder()
	g := New()
	start := g.AddTask("start", rec.task("start", "s"))
	fast := g.AddTask("fast", rec.task("fast", "from fast"))
	slow := g.AddTask("slow", rec.task("slow", "from slow"))
	mid := g.AddTask("mid", rec.task("mid", "from mid"))
	join := g.AddTask("join", rec.task("join", "joined"))

	start.Then(fast).Then(join)
	start.Then(slow).Then(mid).Then(join)

	results, err := g.Run(context.Background(), 1)
	require.NoError(t, err)

	// join is dequeued before mid has run, so it only sees fast's result.
	assert.Equal(t, []string{"start", "fast", "slow", "join", "mid"}, rec.calls)
	assert.Equal(t, "from fast", rec.inputs["join"])
	assert.Equal(t, []string{"join"}, results.Names())
}

func TestRun_DecisionRoutingOverridesEdges(t *testing.T) {
	rec := newRecorder()
	g := New()
	start := g.AddTask("start", rec.task("start", "s"))
	route := g.AddDecision("route", rec.decision("route", "branchB"))
	branchA := g.AddTask("branchA", rec.task("branchA", "A"))
	branchB := g.AddTask("branchB", rec.task("branchB", "B"))

	start.Then(route)
	route.Then(branchA)
	route.Then(branchB)
	require.NoError(t, g.BindBranches("route", "branchA", "branchB"))

	results, err := g.Run(context.Background(), 1)
	require.NoError(t, err)

	assert.Equal(t, []string{"start", "route", "branchB"}, rec.calls)
	assert.NotContains(t, rec.calls, "branchA")
	assert.Equal(t, "s", rec.inputs["route"])
	assert.Equal(t, "s", rec.inputs["branchB"], "routed task reads the decision value")
	assert.Equal(t, Results{{Task: "branchB", Value: "B"}}, results)
}

func TestRun_DecisionSkipsScheduledTarget(t *testing.T) {
	rec := newRecorder()
	g := New()
	start := g.AddTask("start", rec.task("start", "s"))
	route := g.AddDecision("route", rec.decision("route", "detour"))
	declared := g.AddTask("declared", rec.task("declared", "d"))
	g.AddTask("detour", rec.task("detour", "x"))

	start.Then(route).Then(declared)
	require.NoError(t, g.AddEdge("start", "detour"))

	// detour is queued by start's edges already; the decision does not run it twice.
	results, err := g.Run(context.Background(), 1)
	require.NoError(t, err)

	assert.Equal(t, []string{"start", "route", "detour"}, rec.calls)
	assert.Equal(t, []string{"detour"}, results.Names())
}

func TestRun_DecisionUsesFirstDeclaredParentOnly(t *testing.T) {
	t.Run("later parents are ignored", func(t *testing.T) {
		rec := newRecorder()
		g := New()
		start := g.AddTask("start", rec.task("start", "s"))
		a := g.AddTask("a", rec.task("a", "from a"))
		b := g.AddTask("b", rec.task("b", "from b"))
		route := g.AddDecision("route", rec.decision("route", "end"))
		end := g.AddTask("end", rec.task("end", "done"))

		start.Then(a).Then(route)
		start.Then(b).Then(route)
		route.Then(end)

		_, err := g.Run(context.Background(), 1)
		require.NoError(t, err)
		assert.Equal(t, "from a", rec.inputs["route"])
	})

	t.Run("first parent that never ran is an error", func(t *testing.T) {
		rec := newRecorder()
		g := New()
		start := g.AddTask("start", rec.task("start", "s"))
		pick := g.AddDecision("pick", rec.decision("pick", "younger"))
		older := g.AddTask("older", rec.task("older", "o"))
		younger := g.AddTask("younger", rec.task("younger", "y"))
		job := g.AddDecision("job", rec.decision("job", "final"))
		final := g.AddTask("final", rec.task("final", "f"))

		start.Then(pick)
		pick.Then(older).Then(job)
		pick.Then(younger).Then(job)
		job.Then(final)

		_, err := g.Run(context.Background(), 1)
		require.ErrorIs(t, err, ErrMissingInput)
		assert.ErrorContains(t, err, `parent "older" has not run`)
	})
}

func TestRun_DecisionAcceptsPointer(t *testing.T) {
	g := New()
	start := g.AddTask("start", identity)
	route := g.AddDecision("route", func(_ context.Context, in any) (any, error) {
		return &Decision{Value: "v", Next: "end"}, nil
	})
	end := g.AddTask("end", identity)
	start.Then(route).Then(end)

	results, err := g.Run(context.Background(), 1)
	require.NoError(t, err)
	v, _ := results.Get("end")
	assert.Equal(t, "v", v)
}

func TestRun_Errors(t *testing.T) {
	ctx := context.Background()

	t.Run("empty graph", func(t *testing.T) {
		_, err := New().Run(ctx, 1)
		assert.ErrorIs(t, err, ErrEmptyGraph)
	})

	t.Run("cyclic graph fails before any task runs", func(t *testing.T) {
		rec := newRecorder()
		g := New()
		g.AddTask("a", rec.task("a", 1))
		g.AddTask("b", rec.task("b", 1))
		g.AddTask("c", rec.task("c", 1))
		require.NoError(t, g.AddEdge("a", "b"))
		require.NoError(t, g.AddEdge("b", "c"))
		require.NoError(t, g.AddEdge("c", "a"))

		_, err := g.Run(ctx, 1)
		assert.ErrorIs(t, err, ErrCyclicGraph)
		assert.Empty(t, rec.calls)
	})

	t.Run("recorded build errors fail the run", func(t *testing.T) {
		g := New()
		a := g.AddTask("a", identity)
		a.Then(nil)
		_, err := g.Run(ctx, 1)
		assert.ErrorIs(t, err, ErrUnknownTask)
		assert.ErrorContains(t, err, "graph build failed")
	})

	t.Run("unsupported input", func(t *testing.T) {
		g := New()
		g.AddTask("a", identity)
		_, err := g.Run(ctx, nil)
		assert.ErrorIs(t, err, payload.ErrUnsupported)
	})

	t.Run("decision routes to unknown task", func(t *testing.T) {
		g := New()
		start := g.AddTask("start", identity)
		route := g.AddDecision("route", func(context.Context, any) (any, error) {
			return Decision{Value: 1, Next: "nowhere"}, nil
		})
		start.Then(route)

		_, err := g.Run(ctx, 1)
		assert.ErrorIs(t, err, ErrUnknownTask)
		assert.ErrorContains(t, err, `"nowhere"`)
	})

	t.Run("decision returns a plain value", func(t *testing.T) {
		g := New()
		start := g.AddTask("start", identity)
		route := g.AddDecision("route", identity)
		start.Then(route)

		_, err := g.Run(ctx, 1)
		assert.ErrorIs(t, err, ErrInvalidDecision)
		assert.ErrorContains(t, err, "[]interface {}")
	})

	t.Run("task error propagates unmodified", func(t *testing.T) {
		boom := errors.New("boom")
		rec := newRecorder()
		g := New()
		start := g.AddTask("start", identity)
		fail := g.AddTask("fail", func(context.Context, any) (any, error) { return nil, boom })
		after := g.AddTask("after", rec.task("after", 1))
		start.Then(fail).Then(after)

		_, err := g.Run(ctx, 1)
		assert.Same(t, boom, err)
		assert.Empty(t, rec.calls, "the run aborts at the failing task")
	})

	t.Run("no terminal reached", func(t *testing.T) {
		g := New()
		start := g.AddTask("start", identity)
		route := g.AddDecision("route", func(_ context.Context, in any) (any, error) {
			return Decision{Value: in, Next: "start"}, nil
		})
		end := g.AddTask("end", identity)
		start.Then(route).Then(end)

		_, err := g.Run(ctx, 1)
		assert.ErrorIs(t, err, ErrNoTerminalReached)
	})

	t.Run("task reached without any computed parent", func(t *testing.T) {
		g := New()
		start := g.AddTask("start", identity)
		route := g.AddDecision("route", func(_ context.Context, in any) (any, error) {
			return Decision{Value: in, Next: "orphan"}, nil
		})
		start.Then(route)
		g.AddTask("orphan", identity)

		_, err := g.Run(ctx, 1)
		assert.ErrorIs(t, err, ErrMissingInput)
		assert.ErrorContains(t, err, `task "orphan"`)
	})
}

func TestRun_TraceLogsEveryResult(t *testing.T) {
	buf := &bytes.Buffer{}
	logger := slog.New(slog.NewTextHandler(buf, &slog.HandlerOptions{Level: slog.LevelInfo}))
	ctx := ctxlog.WithLogger(context.Background(), logger)

	g := New()
	a := g.AddTask("a", adder(1))
	b := g.AddTask("b", adder(2))
	a.Then(b)

	_, err := g.Run(ctx, 1, WithTrace(true))
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, `msg="Task result." run_id=`)
	assert.Contains(t, out, "task=a result=2")
	assert.Contains(t, out, "task=b result=4")

	buf.Reset()
	_, err = g.Run(ctx, 1)
	require.NoError(t, err)
	assert.NotContains(t, buf.String(), "Task result.")
}

func TestRun_GraphIsReusableAcrossRuns(t *testing.T) {
	g := New()
	a := g.AddTask("a", adder(1))
	b := g.AddTask("b", adder(10))
	a.Then(b)

	for i := 0; i < 3; i++ {
		results, err := g.Run(context.Background(), i)
		require.NoError(t, err)
		v, _ := results.Get("b")
		assert.Equal(t, i+11, v)
	}
}

func TestResults(t *testing.T) {
	r := Results{{Task: "x", Value: 1}, {Task: "y", Value: "two"}}

	assert.Equal(t, []string{"x", "y"}, r.Names())
	assert.Equal(t, map[string]any{"x": 1, "y": "two"}, r.Map())
	_, ok := r.Get("z")
	assert.False(t, ok)
}
