package builder

import "errors"

var (
	// ErrInvalidRoute is returned when a decision's next expression does not
	// produce a task name.
	ErrInvalidRoute = errors.New("decision next is not a task name")

	errNullValue = errors.New("cannot sum a null value")
)
