// Package http_request provides a handler that performs an HTTP request
// described by its input and returns the response.
package http_request

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/vk/taskflow/internal/ctxlog"
	"github.com/vk/taskflow/internal/handlers"
)

// Module implements the handlers.Module interface for this package.
type Module struct {
	// Client performs the requests. Defaults to http.DefaultClient.
	Client *http.Client
}

// Input fields: `url` (required), `method` (default GET) and `body`.
func (m *Module) OnRunHttpRequest(ctx context.Context, in any) (any, error) {
	args, err := handlers.ArgsOf(in)
	if err != nil {
		return nil, fmt.Errorf("http_request: %w", err)
	}
	url, err := args.RequiredString("url")
	if err != nil {
		return nil, fmt.Errorf("http_request: %w", err)
	}
	method, err := args.String("method", http.MethodGet)
	if err != nil {
		return nil, fmt.Errorf("http_request: %w", err)
	}
	body, err := args.String("body", "")
	if err != nil {
		return nil, fmt.Errorf("http_request: %w", err)
	}

	logger := ctxlog.FromContext(ctx).With("method", method, "url", url)
	logger.Info("Making HTTP request.")

	var reqBody io.Reader
	if body != "" {
		reqBody = strings.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, strings.ToUpper(method), url, reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	client := m.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	logger.Info("Received HTTP response.", "status", resp.Status)

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	return map[string]any{
		"status_code": int64(resp.StatusCode),
		"body":        string(bodyBytes),
	}, nil
}

// Register registers the handler with the engine.
func (m *Module) Register(h *handlers.Handlers) {
	h.Register("http_request", m.OnRunHttpRequest)
}
