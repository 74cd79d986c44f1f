// Package handlers holds the Go task bodies that graph files reference by name
// through a task's `handler` attribute.
package handlers

import (
	"fmt"
	"log/slog"
	"slices"

	"github.com/vk/taskflow/internal/dag"
)

// Handlers holds all the registered handlers
type Handlers struct {
	all map[string]dag.TaskFunc
}

// Module is implemented by packages that contribute handlers.
type Module interface {
	Register(h *Handlers)
}

// New creates an empty registry and registers every module into it.
func New(modules ...Module) *Handlers {
	h := &Handlers{
		all: make(map[string]dag.TaskFunc),
	}
	for _, m := range modules {
		m.Register(h)
	}
	return h
}

// Register stores fn under name. Registering a name twice is a programming
// error and panics.
func (h *Handlers) Register(name string, fn dag.TaskFunc) {
	if name == "" || fn == nil {
		panic("handler registration requires a name and a function")
	}
	if _, exists := h.all[name]; exists {
		panic(fmt.Sprintf("handler with name '%s' already registered", name))
	}
	slog.Debug("Registering handler.", "name", name)
	h.all[name] = fn
}

// Lookup returns the handler registered under name.
func (h *Handlers) Lookup(name string) (dag.TaskFunc, bool) {
	fn, ok := h.all[name]
	return fn, ok
}

// Names returns the registered handler names, sorted.
func (h *Handlers) Names() []string {
	names := make([]string, 0, len(h.all))
	for name := range h.all {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}
