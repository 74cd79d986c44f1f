package dag

import (
	"errors"
	"fmt"
	"slices"
)

var errNilRef = fmt.Errorf("%w: nil task reference", ErrUnknownTask)

// New creates and returns an initialized, empty Graph.
func New(opts ...Option) *Graph {
	g := &Graph{
		tasks:    make(map[string]*task),
		edges:    make(map[string][]string),
		branches: make(map[string]Branches),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// AddTask registers fn under name and returns a handle to it. The first task
// ever registered becomes the start task. A fresh task has no outgoing edges,
// so it joins the terminal set.
//
// Registering an existing name replaces its function (and clears its decision
// flag) but keeps its edges. With WithStrictNames the registration is rejected
// and ErrDuplicateName is reported by Err and Run.
func (g *Graph) AddTask(name string, fn TaskFunc) *TaskRef {
	g.mutex.Lock()
	defer g.mutex.Unlock()

	ref := &TaskRef{graph: g, name: name}
	if name == "" {
		g.errs = append(g.errs, fmt.Errorf("%w: empty task name", ErrInvalidTask))
		return ref
	}
	if fn == nil {
		g.errs = append(g.errs, fmt.Errorf("%w: task %q has no function", ErrInvalidTask, name))
		return ref
	}

	if _, exists := g.tasks[name]; exists {
		if g.strict {
			g.errs = append(g.errs, fmt.Errorf("task %q: %w", name, ErrDuplicateName))
			return ref
		}
		g.tasks[name] = &task{name: name, fn: fn}
		if len(g.edges[name]) == 0 {
			g.addTerminal(name)
		}
		return ref
	}

	g.tasks[name] = &task{name: name, fn: fn}
	g.order = append(g.order, name)
	if g.start == "" {
		g.start = name
	}
	g.addTerminal(name)
	return ref
}

// AddDecision registers fn as a decision task. fn must return a Decision.
func (g *Graph) AddDecision(name string, fn TaskFunc) *TaskRef {
	ref := g.AddTask(name, fn)
	if err := g.MarkDecision(name); err != nil {
		g.recordErr(err)
	}
	return ref
}

// MarkDecision flags a registered task as a decision task. Its function must
// return a Decision naming the next task, which overrides its declared edges.
func (g *Graph) MarkDecision(name string) error {
	g.mutex.Lock()
	defer g.mutex.Unlock()

	t, ok := g.tasks[name]
	if !ok {
		return fmt.Errorf("mark decision %q: %w", name, ErrUnknownTask)
	}
	t.decision = true
	return nil
}

// AddEdge creates a directed edge from source to dest. Both tasks must be
// registered. Adding the same edge twice has no further effect.
func (g *Graph) AddEdge(source, dest string) error {
	g.mutex.Lock()
	defer g.mutex.Unlock()

	if _, ok := g.tasks[source]; !ok {
		return fmt.Errorf("edge %s -> %s: source: %w", source, dest, ErrUnknownTask)
	}
	if _, ok := g.tasks[dest]; !ok {
		return fmt.Errorf("edge %s -> %s: destination: %w", source, dest, ErrUnknownTask)
	}

	if !slices.Contains(g.edges[source], dest) {
		g.edges[source] = append(g.edges[source], dest)
	}
	g.removeTerminal(source)
	if len(g.edges[dest]) == 0 {
		g.addTerminal(dest)
	}
	return nil
}

// Connect declares an edge from src to dst and returns dst for chaining.
// Failures are recorded on the graph and surface through Err and Run.
func (g *Graph) Connect(src, dst *TaskRef) *TaskRef {
	if src == nil || dst == nil {
		g.recordErr(errNilRef)
		return dst
	}
	if src.graph != g || dst.graph != g {
		g.recordErr(fmt.Errorf("edge %s -> %s: task belongs to another graph: %w", src.name, dst.name, ErrUnknownTask))
		return dst
	}
	if err := g.AddEdge(src.name, dst.name); err != nil {
		g.recordErr(err)
	}
	return dst
}

// BindBranches records the true and false branches of a decision task. The
// binding is informational: routing always follows the name the decision
// function returns.
func (g *Graph) BindBranches(decision, trueBranch, falseBranch string) error {
	g.mutex.Lock()
	defer g.mutex.Unlock()

	if _, ok := g.tasks[decision]; !ok {
		return fmt.Errorf("bind branches of %q: %w", decision, ErrUnknownTask)
	}
	g.branches[decision] = Branches{True: trueBranch, False: falseBranch}
	return nil
}

// Err returns every failure recorded by builder calls that could not return
// one themselves, or nil.
func (g *Graph) Err() error {
	g.mutex.RLock()
	defer g.mutex.RUnlock()
	return errors.Join(g.errs...)
}

func (g *Graph) recordErr(err error) {
	g.mutex.Lock()
	defer g.mutex.Unlock()
	g.errs = append(g.errs, err)
}

func (g *Graph) addTerminal(name string) {
	if !slices.Contains(g.terminals, name) {
		g.terminals = append(g.terminals, name)
	}
}

func (g *Graph) removeTerminal(name string) {
	if i := slices.Index(g.terminals, name); i >= 0 {
		g.terminals = slices.Delete(g.terminals, i, i+1)
	}
}

// Start returns the name of the start task, or "" for an empty graph.
func (g *Graph) Start() string {
	g.mutex.RLock()
	defer g.mutex.RUnlock()
	return g.start
}

// Tasks returns all task names in registration order.
func (g *Graph) Tasks() []string {
	g.mutex.RLock()
	defer g.mutex.RUnlock()
	return slices.Clone(g.order)
}

// Terminals returns the tasks without outgoing edges.
func (g *Graph) Terminals() []string {
	g.mutex.RLock()
	defer g.mutex.RUnlock()
	return slices.Clone(g.terminals)
}

// Successors returns the declared successors of name in insertion order.
func (g *Graph) Successors(name string) []string {
	g.mutex.RLock()
	defer g.mutex.RUnlock()
	return slices.Clone(g.edges[name])
}

// Parents returns every task with an edge to name, in registration order.
func (g *Graph) Parents(name string) []string {
	g.mutex.RLock()
	defer g.mutex.RUnlock()
	return parentsOf(g.order, g.edges, name)
}

// Edges returns all edges, grouped by source in registration order.
func (g *Graph) Edges() []Edge {
	g.mutex.RLock()
	defer g.mutex.RUnlock()

	var out []Edge
	for _, src := range g.order {
		for _, dst := range g.edges[src] {
			out = append(out, Edge{From: src, To: dst})
		}
	}
	return out
}

// IsDecision reports whether name is a registered decision task.
func (g *Graph) IsDecision(name string) bool {
	g.mutex.RLock()
	defer g.mutex.RUnlock()
	t, ok := g.tasks[name]
	return ok && t.decision
}

// Branches returns the advisory binding of a decision task.
func (g *Graph) Branches(decision string) (Branches, bool) {
	g.mutex.RLock()
	defer g.mutex.RUnlock()
	b, ok := g.branches[decision]
	return b, ok
}

func parentsOf(order []string, edges map[string][]string, name string) []string {
	var parents []string
	for _, src := range order {
		if slices.Contains(edges[src], name) {
			parents = append(parents, src)
		}
	}
	return parents
}

// topology is an immutable copy of the graph structure taken at the start of
// a validation or run, so the traversal never holds the graph lock while task
// functions execute.
type topology struct {
	tasks     map[string]task
	order     []string
	edges     map[string][]string
	start     string
	terminals []string
}

func (g *Graph) snapshot() *topology {
	g.mutex.RLock()
	defer g.mutex.RUnlock()

	t := &topology{
		tasks:     make(map[string]task, len(g.tasks)),
		order:     slices.Clone(g.order),
		edges:     make(map[string][]string, len(g.edges)),
		start:     g.start,
		terminals: slices.Clone(g.terminals),
	}
	for name, tk := range g.tasks {
		t.tasks[name] = *tk
	}
	for src, dsts := range g.edges {
		t.edges[src] = slices.Clone(dsts)
	}
	return t
}

func (t *topology) parents(name string) []string {
	return parentsOf(t.order, t.edges, name)
}
