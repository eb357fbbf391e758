package main

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v3"
)

func TestCountDistinctSmallStream(t *testing.T) {
	var out bytes.Buffer
	cmd := setupCommand(WithAction(func(ctx context.Context, c *cli.Command) error {
		return countDistinct(c, strings.NewReader("a\nb\na\nc\n"), &out)
	}))

	// Below capacity nothing thins, so the estimate matches the exact count.
	err := cmd.Run(context.Background(), []string{"distinct", "--capacity", "100", "--exact"})
	require.NoError(t, err)

	assert.Contains(t, out.String(), "Estimated distinct: 3")
	assert.Contains(t, out.String(), "Exact distinct: 3")
	assert.Contains(t, out.String(), "Lines processed: 4")
	assert.Contains(t, out.String(), "Retention probability: 1")
}

func TestCountDistinctRejectsBadTargets(t *testing.T) {
	var out bytes.Buffer
	cmd := setupCommand(WithAction(func(ctx context.Context, c *cli.Command) error {
		return countDistinct(c, strings.NewReader(""), &out)
	}))

	err := cmd.Run(context.Background(), []string{"distinct", "--eps", "2"})
	assert.Error(t, err)
}

func TestNewEstimatorPrefersExplicitCapacity(t *testing.T) {
	cmd := setupCommand(WithAction(func(ctx context.Context, c *cli.Command) error {
		est, err := newEstimator(c)
		require.NoError(t, err)
		assert.Equal(t, 42, est.Capacity())
		return nil
	}))

	err := cmd.Run(context.Background(), []string{"distinct", "--capacity", "42", "--eps", "0.5"})
	require.NoError(t, err)
}
