package integration_tests

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/taskflow/internal/app"
	"github.com/vk/taskflow/internal/handlers"
	"github.com/vk/taskflow/internal/testutil"
)

// sleeperModule records how many handler calls overlap.
type sleeperModule struct {
	sleep   time.Duration
	running atomic.Int32
	peak    atomic.Int32
	mu      sync.Mutex
	calls   int
}

func (m *sleeperModule) Register(h *handlers.Handlers) {
	h.Register("sleeper", func(_ context.Context, in any) (any, error) {
		n := m.running.Add(1)
		defer m.running.Add(-1)
		for {
			peak := m.peak.Load()
			if n <= peak || m.peak.CompareAndSwap(peak, n) {
				break
			}
		}
		time.Sleep(m.sleep)

		m.mu.Lock()
		m.calls++
		m.mu.Unlock()
		return in, nil
	})
}

// Test for: a batch runs independent inputs concurrently, bounded by workers,
// and reports results in input order.
func TestDagConcurrency_BatchRespectsWorkerLimit(t *testing.T) {
	mod := &sleeperModule{sleep: 30 * time.Millisecond}
	files := map[string]string{"main.hcl": `
		task "unwrap" { run = input[0] }
		task "sleep" { handler = "sleeper" }
		flow { steps = ["unwrap", "sleep"] }
	`}

	var inputs []string
	for i := 0; i < 6; i++ {
		inputs = append(inputs, fmt.Sprint(i))
	}

	result := testutil.RunIntegrationTest(t, files, app.Config{Inputs: inputs, Workers: 2}, mod)
	require.NoError(t, result.Err)

	assert.Equal(t, 6, mod.calls)
	assert.LessOrEqual(t, mod.peak.Load(), int32(2))

	var want strings.Builder
	for i := range inputs {
		fmt.Fprintf(&want, "# input %d\nsleep = %d\n", i, i)
	}
	assert.Equal(t, want.String(), result.Output)
}

// Test for: fan-in joins see the parents that ran, in declaration order.
func TestDagConcurrency_FanIn(t *testing.T) {
	result := testutil.RunGraph(t, `
		task "source" { run = input[0] }
		task "left" { run = "L${input}" }
		task "right" { run = "R${input}" }
		task "join" { run = join(",", input) }
		flow { steps = ["source", "left", "join"] }
		flow { steps = ["source", "right", "join"] }
	`, "7")

	require.NoError(t, result.Err)
	assert.Equal(t, "join = \"L7,R7\"\n", result.Output)
}
