package dag

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/vk/taskflow/internal/ctxlog"
	"github.com/vk/taskflow/internal/payload"
)

// Executor runs a Graph against input values.
type Executor struct {
	graph *Graph
	trace bool
}

// ExecutorOption configures an Executor.
type ExecutorOption func(*Executor)

// WithTrace logs every task result at INFO level while a run progresses.
func WithTrace(enabled bool) ExecutorOption {
	return func(e *Executor) {
		e.trace = enabled
	}
}

// NewExecutor creates an executor for g.
func NewExecutor(g *Graph, opts ...ExecutorOption) *Executor {
	e := &Executor{graph: g}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Run is a shorthand for NewExecutor(g, opts...).Run(ctx, input).
func (g *Graph) Run(ctx context.Context, input any, opts ...ExecutorOption) (Results, error) {
	return NewExecutor(g, opts...).Run(ctx, input)
}

// Run executes the graph breadth-first starting at the start task and returns
// the results of every terminal task that was visited, in terminal order.
//
// An atomic input (number, string, bool) reaches the start task wrapped in a
// one-element []any; a structured input is passed unchanged. Every other task
// receives the results of its already computed parents: the value itself for a
// single parent, or an []any in parent registration order. A decision task
// receives its first declared parent's result and routes to the task named by
// the Decision it returns, ignoring its declared edges.
//
// An error returned by a task function aborts the run and is returned as is.
func (e *Executor) Run(ctx context.Context, input any) (Results, error) {
	if err := e.graph.Err(); err != nil {
		return nil, fmt.Errorf("graph build failed: %w", err)
	}

	topo := e.graph.snapshot()
	if topo.start == "" {
		return nil, ErrEmptyGraph
	}
	if cycle := findCycle(topo); cycle != nil {
		return nil, fmt.Errorf("%w: %s", ErrCyclicGraph, strings.Join(cycle, " -> "))
	}

	startInput, err := payload.Prepare(input)
	if err != nil {
		return nil, fmt.Errorf("start task %q: %w", topo.start, err)
	}

	ctx = ctxlog.With(ctx, "run_id", uuid.NewString())
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Executor starting run.", "start", topo.start, "task_count", len(topo.order), "input_shape", payload.Classify(input).String())

	var (
		queue   = []string{topo.start}
		queued  = map[string]bool{topo.start: true}
		visited = make(map[string]bool, len(topo.order))
		memory  = make(map[string]any, len(topo.order))
	)

	enqueue := func(name string) bool {
		if visited[name] || queued[name] {
			return false
		}
		queue = append(queue, name)
		queued[name] = true
		return true
	}

	for len(queue) > 0 {
		name := queue[0]
		queue = queue[1:]
		delete(queued, name)
		visited[name] = true

		tk := topo.tasks[name]
		taskCtx := ctxlog.With(ctx, "task", name)
		taskLogger := ctxlog.FromContext(taskCtx)
		taskLogger.Debug("Task dequeued.", "decision", tk.decision)

		switch {
		case name == topo.start:
			out, err := tk.fn(taskCtx, startInput)
			if err != nil {
				taskLogger.Debug("Task failed.", "error", err)
				return nil, err
			}
			memory[name] = out

		case tk.decision:
			in, err := decisionInput(topo, memory, name)
			if err != nil {
				return nil, err
			}
			out, err := tk.fn(taskCtx, in)
			if err != nil {
				taskLogger.Debug("Task failed.", "error", err)
				return nil, err
			}
			d, err := asDecision(name, out)
			if err != nil {
				return nil, err
			}
			memory[name] = d.Value
			e.traceResult(taskLogger, d.Value)

			if _, ok := topo.tasks[d.Next]; !ok {
				return nil, fmt.Errorf("decision task %q routed to %q: %w", name, d.Next, ErrUnknownTask)
			}
			if enqueue(d.Next) {
				taskLogger.Debug("Decision routed.", "next", d.Next)
			} else {
				taskLogger.Debug("Decision target already scheduled, skipping.", "next", d.Next)
			}
			continue

		default:
			in, err := joinInput(topo, memory, name)
			if err != nil {
				return nil, err
			}
			out, err := tk.fn(taskCtx, in)
			if err != nil {
				taskLogger.Debug("Task failed.", "error", err)
				return nil, err
			}
			memory[name] = out
		}

		e.traceResult(taskLogger, memory[name])

		for _, next := range topo.edges[name] {
			enqueue(next)
		}
	}

	var results Results
	for _, name := range topo.terminals {
		if visited[name] {
			results = append(results, Result{Task: name, Value: memory[name]})
		}
	}
	if len(results) == 0 {
		return nil, fmt.Errorf("%w: visited %d of %d tasks", ErrNoTerminalReached, len(visited), len(topo.order))
	}

	logger.Debug("Executor finished run.", "visited", len(visited), "terminals_reached", len(results))
	return results, nil
}

func (e *Executor) traceResult(logger *slog.Logger, value any) {
	if e.trace {
		logger.Info("Task result.", "result", value)
	}
}

// decisionInput returns the result of the first declared parent of a decision
// task. Other parents are never consulted.
func decisionInput(topo *topology, memory map[string]any, name string) (any, error) {
	parents := topo.parents(name)
	if len(parents) == 0 {
		return nil, fmt.Errorf("decision task %q has no parent: %w", name, ErrMissingInput)
	}
	in, ok := memory[parents[0]]
	if !ok {
		return nil, fmt.Errorf("decision task %q: parent %q has not run: %w", name, parents[0], ErrMissingInput)
	}
	return in, nil
}

// joinInput gathers the results of the parents that have already run. It
// never waits for the others.
func joinInput(topo *topology, memory map[string]any, name string) (any, error) {
	var values []any
	for _, parent := range topo.parents(name) {
		if v, ok := memory[parent]; ok {
			values = append(values, v)
		}
	}
	switch len(values) {
	case 0:
		return nil, fmt.Errorf("task %q: no parent has run: %w", name, ErrMissingInput)
	case 1:
		return values[0], nil
	default:
		return values, nil
	}
}

func asDecision(name string, out any) (Decision, error) {
	switch d := out.(type) {
	case Decision:
		return d, nil
	case *Decision:
		if d != nil {
			return *d, nil
		}
	}
	return Decision{}, fmt.Errorf("decision task %q returned %T: %w", name, out, ErrInvalidDecision)
}
