package builder

import (
	"fmt"

	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/function"
	"github.com/zclconf/go-cty/cty/function/stdlib"
)

// SumFunc adds up a number or any nesting of lists, sets and tuples of
// numbers. It is the natural reducer for the []any a join task receives.
var SumFunc = function.New(&function.Spec{
	Description: "Returns the sum of a number or of all numbers in a nested collection.",
	Params: []function.Parameter{
		{Name: "numbers", Type: cty.DynamicPseudoType},
	},
	Type: function.StaticReturnType(cty.Number),
	Impl: func(args []cty.Value, _ cty.Type) (cty.Value, error) {
		total, err := sum(args[0])
		if err != nil {
			return cty.UnknownVal(cty.Number), function.NewArgError(0, err)
		}
		return total, nil
	},
})

func sum(v cty.Value) (cty.Value, error) {
	ty := v.Type()
	switch {
	case !v.IsKnown():
		return cty.UnknownVal(cty.Number), nil
	case v.IsNull():
		return cty.NilVal, errNullValue
	case ty.Equals(cty.Number):
		return v, nil
	case ty.IsListType() || ty.IsSetType() || ty.IsTupleType():
		total := cty.Zero
		for it := v.ElementIterator(); it.Next(); {
			_, elem := it.Element()
			s, err := sum(elem)
			if err != nil {
				return cty.NilVal, err
			}
			total = total.Add(s)
		}
		return total, nil
	default:
		return cty.NilVal, fmt.Errorf("cannot sum a value of type %s", ty.FriendlyName())
	}
}

// Functions returns the function table available to task expressions.
func Functions() map[string]function.Function {
	return map[string]function.Function{
		"abs":      stdlib.AbsoluteFunc,
		"ceil":     stdlib.CeilFunc,
		"floor":    stdlib.FloorFunc,
		"max":      stdlib.MaxFunc,
		"min":      stdlib.MinFunc,
		"sum":      SumFunc,
		"upper":    stdlib.UpperFunc,
		"lower":    stdlib.LowerFunc,
		"join":     stdlib.JoinFunc,
		"format":   stdlib.FormatFunc,
		"length":   stdlib.LengthFunc,
		"concat":   stdlib.ConcatFunc,
		"merge":    stdlib.MergeFunc,
		"keys":     stdlib.KeysFunc,
		"values":   stdlib.ValuesFunc,
		"coalesce": stdlib.CoalesceFunc,
		"flatten":  stdlib.FlattenFunc,
		"reverse":  stdlib.ReverseListFunc,
		"contains": stdlib.ContainsFunc,
	}
}
