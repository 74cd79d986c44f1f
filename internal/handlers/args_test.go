package handlers

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestArgs(t *testing.T) {
	_, err := ArgsOf([]any{1})
	require.Error(t, err)

	args, err := ArgsOf(map[string]any{
		"url":     "http://example.com",
		"secure":  true,
		"timeout": "250ms",
		"count":   int64(3),
	})
	require.NoError(t, err)

	s, err := args.String("url", "")
	require.NoError(t, err)
	assert.Equal(t, "http://example.com", s)

	s, err = args.String("method", "GET")
	require.NoError(t, err)
	assert.Equal(t, "GET", s)

	_, err = args.String("count", "")
	assert.ErrorContains(t, err, `field "count" must be a string`)

	_, err = args.RequiredString("missing")
	assert.ErrorContains(t, err, "is required")

	b, err := args.Bool("secure", false)
	require.NoError(t, err)
	assert.True(t, b)

	d, err := args.Duration("timeout", time.Second)
	require.NoError(t, err)
	assert.Equal(t, 250*time.Millisecond, d)

	d, err = args.Duration("other", time.Second)
	require.NoError(t, err)
	assert.Equal(t, time.Second, d)
}
