package dag

import (
	"context"
	"sync"
)

// TaskFunc is the body of a task. It receives the start input, a single
// parent result, or an ordered []any of parent results, and returns one value
// of any shape. A decision task returns a Decision.
type TaskFunc func(ctx context.Context, in any) (any, error)

// Decision is the value a decision task returns: the value stored as the
// task's result and the name of the task to execute next.
type Decision struct {
	Value any
	Next  string
}

// Branches is the advisory true/false binding of a decision task. It is kept
// for documentation and rendering only and never affects routing.
type Branches struct {
	True  string
	False string
}

// Edge is a directed edge between two registered tasks.
type Edge struct {
	From string
	To   string
}

// Graph is the task registry: tasks, their ordered successor edges, the start
// task and the terminal set. All methods are safe for concurrent use.
type Graph struct {
	// mutex guards every field below.
	mutex sync.RWMutex
	// tasks stores all registered tasks keyed by name.
	tasks map[string]*task
	// order is the registration order of task names.
	order []string
	// edges maps a source name to its successors in insertion order.
	edges map[string][]string
	// start is the first task registered.
	start string
	// terminals holds tasks without outgoing edges, in the order they became terminal.
	terminals []string
	// branches holds advisory decision bindings.
	branches map[string]Branches
	// strict rejects re-registration of an existing name.
	strict bool
	// errs collects failures from chained builder calls that cannot return an error.
	errs []error
}

// task is a single vertex in the graph. It is un-exported to enforce
// interaction with the graph via task names and TaskRef handles.
type task struct {
	name     string
	fn       TaskFunc
	decision bool
}

// TaskRef is a handle to a registered task, used to chain edge declarations.
type TaskRef struct {
	graph *Graph
	name  string
}

// Name returns the name of the referenced task.
func (r *TaskRef) Name() string {
	return r.name
}

// Then declares an edge from r to next and returns next, so declarations read
// left to right: a.Then(b).Then(c).
func (r *TaskRef) Then(next *TaskRef) *TaskRef {
	if r == nil {
		if next != nil && next.graph != nil {
			next.graph.recordErr(errNilRef)
		}
		return next
	}
	return r.graph.Connect(r, next)
}

// Option configures a Graph at construction time.
type Option func(*Graph)

// WithStrictNames makes a second registration of an existing task name a
// build error (ErrDuplicateName) instead of an overwrite.
func WithStrictNames() Option {
	return func(g *Graph) {
		g.strict = true
	}
}
