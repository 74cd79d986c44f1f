// Package testutil provides harnesses shared by the integration tests: graph
// files written to a temporary directory and run through the full app.
package testutil

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/vk/taskflow/internal/app"
	"github.com/vk/taskflow/internal/handlers"
	"github.com/vk/taskflow/internal/hcl_adapter"
)

// SafeBuffer is a thread-safe buffer for capturing log output in tests.
type SafeBuffer struct {
	b  bytes.Buffer
	mu sync.Mutex
}

// Write implements the io.Writer interface for SafeBuffer.
func (b *SafeBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.b.Write(p)
}

// String implements the fmt.Stringer interface for SafeBuffer.
func (b *SafeBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.b.String()
}

// HarnessResult holds the outcomes of an integration test run.
type HarnessResult struct {
	Output    string
	LogOutput string
	Err       error
	App       *app.App
}

// WriteFiles writes files, keyed by relative path, under a fresh temporary
// directory and returns the directory.
func WriteFiles(t *testing.T, files map[string]string) string {
	t.Helper()
	root := t.TempDir()
	for name, content := range files {
		filePath := filepath.Join(root, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(filePath), 0755))
		require.NoError(t, os.WriteFile(filePath, []byte(content), 0644))
	}
	return root
}

// RunIntegrationTest writes files to a temporary graph directory and runs the
// app over it with cfg. GraphPath is set by the harness and debug logging is
// forced. With no modules the core handler modules are used.
func RunIntegrationTest(t *testing.T, files map[string]string, cfg app.Config, modules ...handlers.Module) *HarnessResult {
	t.Helper()

	cfg.GraphPath = WriteFiles(t, files)
	cfg.LogLevel = "debug"
	appConfig, err := app.NewConfig(cfg)
	require.NoError(t, err)

	out := &SafeBuffer{}
	logBuffer := &SafeBuffer{}

	var testApp *app.App
	var panicErr any
	func() {
		defer func() {
			if r := recover(); r != nil {
				panicErr = r
			}
		}()
		testApp = app.NewApp(out, logBuffer, appConfig, hcl_adapter.NewLoader(), modules...)
	}()

	if os.Getenv("TASKFLOW_TEST_LOGS") == "true" {
		t.Cleanup(func() {
			t.Logf("--- Full Log Output for %s ---\n%s", t.Name(), logBuffer.String())
		})
	}

	if panicErr != nil {
		return &HarnessResult{
			LogOutput: logBuffer.String(),
			Err:       fmt.Errorf("application startup panicked | %v", panicErr),
		}
	}

	runErr := testApp.Run(context.Background())
	return &HarnessResult{
		Output:    out.String(),
		LogOutput: logBuffer.String(),
		Err:       runErr,
		App:       testApp,
	}
}

// RunGraph is RunIntegrationTest for a single graph file and JSON inputs.
func RunGraph(t *testing.T, graphHCL string, inputs ...string) *HarnessResult {
	t.Helper()
	return RunIntegrationTest(t, map[string]string{"main.hcl": graphHCL}, app.Config{Inputs: inputs})
}
