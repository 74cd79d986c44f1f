package dag

import "errors"

// Sentinel errors returned by the engine. Callers match them with errors.Is;
// the returned errors wrap them with the task or edge involved.
var (
	ErrDuplicateName     = errors.New("duplicate task name")
	ErrUnknownTask       = errors.New("unknown task")
	ErrCyclicGraph       = errors.New("graph contains a cycle")
	ErrEmptyGraph        = errors.New("graph has no start task")
	ErrNoTerminalReached = errors.New("no terminal task was reached")
	ErrMissingInput      = errors.New("task has no computed input")
	ErrInvalidDecision   = errors.New("decision task did not return a Decision")
	ErrInvalidTask       = errors.New("invalid task definition")
)
