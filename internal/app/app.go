package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/vk/taskflow/internal/config"
	"github.com/vk/taskflow/internal/ctxlog"
	"github.com/vk/taskflow/internal/handlers"
)

// App encapsulates the application's dependencies, configuration, and lifecycle.
type App struct {
	outW       io.Writer
	ctx        context.Context
	logger     *slog.Logger
	config     *Config
	model      *config.Model
	handlers   *handlers.Handlers
	httpServer *http.Server
}

// NewApp is the constructor for the main application. Results are written to
// outW and logs to logW. Without explicit modules the core handler modules
// are registered. A graph that fails to load is a fatal startup error and
// panics.
func NewApp(outW, logW io.Writer, cfg *Config, loader config.Loader, modules ...handlers.Module) *App {
	logger := newLogger(cfg.LogLevel, cfg.LogFormat, logW)
	ctx := ctxlog.WithLogger(context.Background(), logger)
	logger.Debug("Logger configured successfully.")

	model, err := loader.Load(ctx, cfg.GraphPath)
	if err != nil {
		panic(fmt.Errorf("failed to load graph definition: %w", err))
	}
	logger.Debug("Graph definition loaded.", "tasks", len(model.Tasks), "flows", len(model.Flows))

	if len(modules) == 0 {
		modules = coreModules(outW)
	}
	h := handlers.New(modules...)
	logger.Debug("All Go modules registered.", "count", len(modules), "handlers", h.Names())

	return &App{
		outW:     outW,
		ctx:      ctx,
		logger:   logger,
		config:   cfg,
		model:    model,
		handlers: h,
	}
}

// Model returns the loaded graph definition. This is primarily for testing.
func (a *App) Model() *config.Model {
	return a.model
}

// Handlers returns the handler registry. This is primarily for testing.
func (a *App) Handlers() *handlers.Handlers {
	return a.handlers
}
