package app

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/vk/taskflow/internal/builder"
	"github.com/vk/taskflow/internal/ctxlog"
	"github.com/vk/taskflow/internal/dag"
	"github.com/vk/taskflow/internal/payload"
	"github.com/vk/taskflow/internal/render"
)

// Run builds the graph, renders it when requested, and runs it once per
// configured input. Without inputs the graph is only built and validated.
func (a *App) Run(ctx context.Context) error {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	a.logger.Debug("App.Run method started.")

	a.startHealthCheckServer()
	defer a.closeHealthCheckServer()

	g, err := builder.Build(ctx, a.model, a.handlers)
	if err != nil {
		return fmt.Errorf("failed to build graph: %w", err)
	}

	if err := render.Write(a.outW, g, render.Format(a.config.Render)); err != nil {
		return fmt.Errorf("failed to render graph: %w", err)
	}

	if len(a.config.Inputs) == 0 {
		a.logger.Info("No inputs given, graph validated only.", "tasks", len(g.Tasks()))
		return nil
	}

	inputs, err := decodeInputs(a.config.Inputs)
	if err != nil {
		return err
	}

	a.logger.Info("Starting execution.", "inputs", len(inputs), "workers", a.config.Workers)
	exec := dag.NewExecutor(g, dag.WithTrace(a.config.Trace))
	batch, err := exec.RunBatch(ctx, inputs, a.config.Workers)
	if err != nil {
		return fmt.Errorf("execution failed: %w", err)
	}
	a.logger.Info("Execution finished.")

	return a.printResults(batch)
}

// decodeInputs parses every input as JSON. An input of the form @path is
// read from the named file.
func decodeInputs(raw []string) ([]any, error) {
	inputs := make([]any, len(raw))
	for i, doc := range raw {
		data := []byte(doc)
		if path, ok := strings.CutPrefix(doc, "@"); ok {
			var err error
			if data, err = os.ReadFile(path); err != nil {
				return nil, fmt.Errorf("invalid input %d: %w", i, err)
			}
		}
		v, err := payload.DecodeJSON(data)
		if err != nil {
			return nil, fmt.Errorf("invalid input %d: %w", i, err)
		}
		inputs[i] = v
	}
	return inputs, nil
}

// printResults writes one `task = <json>` line per terminal result. Several
// inputs get a `# input N` header each.
func (a *App) printResults(batch []dag.Results) error {
	for i, results := range batch {
		if len(batch) > 1 {
			if _, err := fmt.Fprintf(a.outW, "# input %d\n", i); err != nil {
				return err
			}
		}
		for _, res := range results {
			encoded, err := payload.EncodeJSON(res.Value)
			if err != nil {
				return fmt.Errorf("encoding result of %q: %w", res.Task, err)
			}
			if _, err := fmt.Fprintf(a.outW, "%s = %s\n", res.Task, encoded); err != nil {
				return err
			}
		}
	}
	return nil
}
