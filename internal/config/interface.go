package config

import (
	"context"
)

// Loader is the interface for a format-specific graph definition loader.
type Loader interface {
	// Load reads every definition file reachable from paths and translates
	// them into the format-agnostic model.
	Load(ctx context.Context, paths ...string) (*Model, error)
}
