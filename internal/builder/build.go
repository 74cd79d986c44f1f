package builder

import (
	"context"
	"fmt"
	"slices"

	"github.com/hashicorp/hcl/v2"
	"github.com/vk/taskflow/internal/config"
	"github.com/vk/taskflow/internal/ctxlog"
	"github.com/vk/taskflow/internal/dag"
	"github.com/vk/taskflow/internal/handlers"
	"github.com/vk/taskflow/internal/hclexpr"
)

// inputVar is the only variable task expressions may reference.
const inputVar = "input"

// Build constructs a complete, validated graph from a config model.
func Build(ctx context.Context, model *config.Model, h *handlers.Handlers) (*dag.Graph, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Build: Starting graph construction.", "tasks", len(model.Tasks), "flows", len(model.Flows))

	if h == nil {
		h = handlers.New()
	}
	funcs := Functions()
	known := make(map[string]bool, len(funcs))
	for name := range funcs {
		known[name] = true
	}
	vars := map[string]bool{inputVar: true}

	g := dag.New(dag.WithStrictNames())
	var diags hcl.Diagnostics

	// First pass: register every task in declaration order.
	for _, def := range model.Tasks {
		exprs := hclexpr.NewContainer(def.Run, def.Value, def.Next)
		diags = append(diags, exprs.Check(vars, known)...)

		switch {
		case def.Decision:
			g.AddDecision(def.Name, decisionTask(def, funcs))
		case def.Handler != "":
			fn, ok := h.Lookup(def.Handler)
			if !ok {
				diags = append(diags, &hcl.Diagnostic{
					Severity: hcl.DiagError,
					Summary:  "Unknown handler",
					Detail:   fmt.Sprintf("Task %q uses handler %q, which is not registered. Available handlers: %v.", def.Name, def.Handler, h.Names()),
					Subject:  def.DeclRange.Ptr(),
				})
				continue
			}
			g.AddTask(def.Name, fn)
		default:
			g.AddTask(def.Name, expressionTask(def, funcs))
		}
	}
	if diags.HasErrors() {
		return nil, fmt.Errorf("error building graph: %w", diags)
	}
	logger.Debug("Build: Task registration complete.", "task_count", len(g.Tasks()))

	// Second pass: link flows and record branch bindings.
	for _, flow := range model.Flows {
		for i := 0; i+1 < len(flow.Steps); i++ {
			if err := g.AddEdge(flow.Steps[i], flow.Steps[i+1]); err != nil {
				return nil, fmt.Errorf("flow at %s: %w", flow.DeclRange, err)
			}
		}
	}
	for _, def := range model.Tasks {
		if !def.Decision || len(def.Branches) != 2 {
			continue
		}
		if err := g.BindBranches(def.Name, def.Branches[0], def.Branches[1]); err != nil {
			return nil, err
		}
		for _, branch := range def.Branches {
			if !slices.Contains(g.Tasks(), branch) {
				logger.Warn("Decision branch names an unknown task.", "decision", def.Name, "branch", branch)
			}
		}
	}
	logger.Debug("Build: Linking complete.", "edge_count", len(g.Edges()))

	// Final validation: recorded errors and cycle detection.
	if err := g.Err(); err != nil {
		return nil, fmt.Errorf("error building graph: %w", err)
	}
	if err := g.Validate(); err != nil {
		return nil, fmt.Errorf("error validating graph: %w", err)
	}
	logger.Debug("Build: Cycle detection passed.")

	logger.Info("Build: Graph construction successful.", "start", g.Start(), "terminals", g.Terminals())
	return g, nil
}
