// Package dag is the execution engine of the application. It owns the task
// graph (tasks, ordered successor edges, the start task and the running set
// of terminal tasks), validates that the graph is acyclic, and executes it
// breadth-first against a single input value.
//
// A graph is built with the builder methods on Graph:
//
//	g := dag.New()
//	inc := g.AddTask("increment", increment)
//	two := g.AddTask("add_two", addTwo)
//	three := g.AddTask("add_three", addThree)
//	sum := g.AddTask("sum_and_add_four", sumAddFour)
//	inc.Then(two).Then(sum)
//	inc.Then(three).Then(sum)
//	results, err := g.Run(ctx, 1)
//
// Registration order matters: the first task registered is the start task,
// and parent lookups scan tasks in registration order.
//
// Runs never mutate the graph. Each run keeps its own execution memory, so a
// fully built graph may be shared by concurrent runs (see Executor.RunBatch).
package dag
