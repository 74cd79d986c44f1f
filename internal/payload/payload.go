// Package payload classifies the values flowing through a task graph by
// shape and converts them to and from cty values for HCL expressions and
// JSON input/output. It never looks at what a payload means.
package payload

import (
	"errors"
	"fmt"
	"reflect"

	"github.com/zclconf/go-cty/cty"
)

// ErrUnsupported is returned for values that are neither atomic nor structured.
var ErrUnsupported = errors.New("unsupported payload shape")

// Shape is the closed set of payload shapes the engine distinguishes.
type Shape int

const (
	// Unsupported covers nil, functions, channels and other values a graph
	// cannot start from.
	Unsupported Shape = iota
	// Atomic is a single scalar: a number, string or bool.
	Atomic
	// Structured is a record, mapping, sequence or table.
	Structured
)

func (s Shape) String() string {
	switch s {
	case Atomic:
		return "atomic"
	case Structured:
		return "structured"
	default:
		return "unsupported"
	}
}

// Classify returns the shape of v.
func Classify(v any) Shape {
	if cv, ok := v.(cty.Value); ok {
		return classifyCty(cv)
	}
	if v == nil {
		return Unsupported
	}

	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return Unsupported
		}
		rv = rv.Elem()
	}

	switch rv.Kind() {
	case reflect.Bool, reflect.String,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return Atomic
	case reflect.Map, reflect.Struct, reflect.Slice, reflect.Array:
		return Structured
	default:
		return Unsupported
	}
}

func classifyCty(v cty.Value) Shape {
	v, _ = v.Unmark()
	if v.IsNull() || !v.IsKnown() {
		return Unsupported
	}
	ty := v.Type()
	switch {
	case ty.IsPrimitiveType():
		return Atomic
	case ty.IsObjectType(), ty.IsMapType(), ty.IsListType(), ty.IsTupleType(), ty.IsSetType():
		return Structured
	default:
		return Unsupported
	}
}

// Prepare turns a graph input into the value handed to the start task: atomic
// values are wrapped in a one-element []any, structured values pass through.
func Prepare(v any) (any, error) {
	switch shape := Classify(v); shape {
	case Atomic:
		return []any{v}, nil
	case Structured:
		return v, nil
	default:
		return nil, fmt.Errorf("%w: %T", ErrUnsupported, v)
	}
}
