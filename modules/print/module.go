package print

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/vk/taskflow/internal/ctxlog"
	"github.com/vk/taskflow/internal/handlers"
	"github.com/vk/taskflow/internal/payload"
)

// Module implements the handlers.Module interface for this package.
type Module struct {
	// Out receives the printed values. Defaults to os.Stdout.
	Out io.Writer

	mu sync.Mutex
}

// OnRunPrint writes its input as one line of JSON, prefixed by the task name,
// and returns the input unchanged.
func (m *Module) OnRunPrint(ctx context.Context, in any) (any, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Printing input.")

	encoded, err := payload.EncodeJSON(in)
	if err != nil {
		return nil, fmt.Errorf("print: %w", err)
	}

	out := m.Out
	if out == nil {
		out = os.Stdout
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if _, err := fmt.Fprintf(out, "      %s\n", encoded); err != nil {
		return nil, fmt.Errorf("print: %w", err)
	}
	return in, nil
}

// Register registers the handler with the engine.
func (m *Module) Register(h *handlers.Handlers) {
	h.Register("print", m.OnRunPrint)
}
