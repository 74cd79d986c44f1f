package builder

import (
	"context"
	"fmt"

	"github.com/hashicorp/hcl/v2"
	"github.com/vk/taskflow/internal/config"
	"github.com/vk/taskflow/internal/ctxlog"
	"github.com/vk/taskflow/internal/dag"
	"github.com/vk/taskflow/internal/payload"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"
	"github.com/zclconf/go-cty/cty/function"
)

// expressionTask returns a TaskFunc evaluating the definition's run
// expression against its input.
func expressionTask(def *config.TaskDefinition, funcs map[string]function.Function) dag.TaskFunc {
	return func(ctx context.Context, in any) (any, error) {
		val, err := evaluate(ctx, def.Run, in, funcs)
		if err != nil {
			return nil, fmt.Errorf("task %q: %w", def.Name, err)
		}
		out, err := payload.FromCty(val)
		if err != nil {
			return nil, fmt.Errorf("task %q: %w", def.Name, err)
		}
		return out, nil
	}
}

// decisionTask returns a TaskFunc evaluating a decision's value and next
// expressions. next must produce a string naming the task to route to.
func decisionTask(def *config.TaskDefinition, funcs map[string]function.Function) dag.TaskFunc {
	return func(ctx context.Context, in any) (any, error) {
		val, err := evaluate(ctx, def.Value, in, funcs)
		if err != nil {
			return nil, fmt.Errorf("decision %q value: %w", def.Name, err)
		}
		value, err := payload.FromCty(val)
		if err != nil {
			return nil, fmt.Errorf("decision %q value: %w", def.Name, err)
		}

		nextVal, err := evaluate(ctx, def.Next, in, funcs)
		if err != nil {
			return nil, fmt.Errorf("decision %q next: %w", def.Name, err)
		}
		nextVal, err = convert.Convert(nextVal, cty.String)
		if err != nil {
			return nil, fmt.Errorf("decision %q: %w: %w", def.Name, ErrInvalidRoute, err)
		}
		if nextVal.IsNull() || !nextVal.IsKnown() {
			return nil, fmt.Errorf("decision %q: %w", def.Name, ErrInvalidRoute)
		}

		return dag.Decision{Value: value, Next: nextVal.AsString()}, nil
	}
}

func evaluate(ctx context.Context, expr hcl.Expression, in any, funcs map[string]function.Function) (cty.Value, error) {
	input, err := payload.ToCty(in)
	if err != nil {
		return cty.NilVal, fmt.Errorf("converting input: %w", err)
	}

	evalCtx := &hcl.EvalContext{
		Variables: map[string]cty.Value{inputVar: input},
		Functions: funcs,
	}
	val, diags := expr.Value(evalCtx)
	if diags.HasErrors() {
		return cty.NilVal, diags
	}
	ctxlog.FromContext(ctx).Debug("Expression evaluated.", "range", expr.Range().String(), "type", val.Type().FriendlyName())
	return val, nil
}
