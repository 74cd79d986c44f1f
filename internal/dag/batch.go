package dag

import (
	"context"
	"fmt"

	"github.com/vk/taskflow/internal/ctxlog"
	"golang.org/x/sync/errgroup"
)

// RunBatch runs the graph once per input, with at most workers runs in flight
// (unbounded when workers <= 0). Results are returned in input order. The
// first failing run cancels the context handed to the remaining ones and its
// error is returned.
func (e *Executor) RunBatch(ctx context.Context, inputs []any, workers int) ([]Results, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Starting batch run.", "inputs", len(inputs), "workers", workers)

	out := make([]Results, len(inputs))
	group, groupCtx := errgroup.WithContext(ctx)
	if workers > 0 {
		group.SetLimit(workers)
	}

	for i, input := range inputs {
		group.Go(func() error {
			if err := groupCtx.Err(); err != nil {
				return err
			}
			res, err := e.Run(ctxlog.With(groupCtx, "input_index", i), input)
			if err != nil {
				return fmt.Errorf("input %d: %w", i, err)
			}
			out[i] = res
			return nil
		})
	}

	if err := group.Wait(); err != nil {
		return nil, err
	}
	logger.Debug("Batch run finished.", "inputs", len(inputs))
	return out, nil
}
