/*
Package builder turns a format-agnostic config.Model into a validated,
ready-to-run *dag.Graph. It acts as the bridge between the static definition
(the 'config' package) and the execution engine (the 'dag' package).

The construction is a multi-phase process:

 1. Task Creation: every task and decision definition is registered in
    declaration order, so the first definition becomes the start task. Each
    gets a TaskFunc: a Go handler looked up by name, or a closure that
    evaluates the block's HCL expressions with the task input bound to
    `input`.

 2. Linking: the edges of every flow are added, then the advisory branch
    bindings of decisions are recorded.

 3. Validation: expressions are checked for unknown variables and functions,
    recorded build errors are collected, and the graph is checked for cycles.
*/
package builder
