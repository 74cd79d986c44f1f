// Package env provides a handler exposing the process environment to a graph.
package env

import (
	"context"
	"os"
	"strings"

	"github.com/vk/taskflow/internal/handlers"
)

// Module implements the handlers.Module interface for this package.
type Module struct{}

// OnRunEnv returns the process environment as an object. When the input
// carries a `prefix` field, only variables starting with it are returned.
func OnRunEnv(_ context.Context, in any) (any, error) {
	prefix := ""
	if args, err := handlers.ArgsOf(in); err == nil {
		if prefix, err = args.String("prefix", ""); err != nil {
			return nil, err
		}
	}

	envMap := make(map[string]any)
	for _, e := range os.Environ() {
		pair := strings.SplitN(e, "=", 2)
		if len(pair) == 2 && strings.HasPrefix(pair[0], prefix) {
			envMap[pair[0]] = pair[1]
		}
	}
	return envMap, nil
}

// Register registers the handler with the engine.
func (m *Module) Register(h *handlers.Handlers) {
	h.Register("env", OnRunEnv)
}
