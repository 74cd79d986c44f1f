// Package identity provides a handler that returns its input unchanged. It is
// useful as an explicit join or fan-out point in a graph file.
package identity

import (
	"context"

	"github.com/vk/taskflow/internal/handlers"
)

// Module implements the handlers.Module interface for this package.
type Module struct{}

// OnRunIdentity returns in.
func OnRunIdentity(_ context.Context, in any) (any, error) {
	return in, nil
}

// Register registers the handler with the engine.
func (m *Module) Register(h *handlers.Handlers) {
	h.Register("identity", OnRunIdentity)
}
