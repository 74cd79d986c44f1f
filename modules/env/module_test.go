package env

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOnRunEnv(t *testing.T) {
	t.Setenv("TASKFLOW_TEST_A", "alpha")
	t.Setenv("TASKFLOW_TEST_B", "beta")

	out, err := OnRunEnv(context.Background(), map[string]any{"prefix": "TASKFLOW_TEST_"})
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"TASKFLOW_TEST_A": "alpha", "TASKFLOW_TEST_B": "beta"}, out)

	out, err = OnRunEnv(context.Background(), []any{int64(1)})
	require.NoError(t, err)
	assert.Contains(t, out, "TASKFLOW_TEST_A", "non-object input returns the full environment")

	_, err = OnRunEnv(context.Background(), map[string]any{"prefix": true})
	assert.Error(t, err)
}
