package cmd

import (
	"context"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parseSweepFlags(t *testing.T, args ...string) *sweepFlags {
	t.Helper()
	fs := pflag.NewFlagSet("sweep", pflag.ContinueOnError)
	f := registerSweepFlags(fs)
	require.NoError(t, fs.Parse(args))
	return f
}

func TestSweep_OneRowPerPoolSize(t *testing.T) {
	// GIVEN a sweep over three pool sizes
	f := parseSweepFlags(t, "--servers", "1,2,4", "--runtime", "400", "--seed", "11")

	// WHEN run
	rows, err := f.runSweep(context.Background())
	require.NoError(t, err)

	// THEN each row reflects its own pool and conserves requests
	require.Len(t, rows, 3)
	for i, n := range []int{1, 2, 4} {
		m := rows[i].Metrics
		assert.Equal(t, n, rows[i].Servers)
		assert.Equal(t, n, m.Workers)
		assert.Equal(t, 5*n, m.QueueCapacity)
		assert.Equal(t, m.Submitted, m.Processed+m.InFlight+m.Queued+m.Rejected)
	}
	assert.Greater(t, rows[2].Metrics.Processed, rows[0].Metrics.Processed, "a larger pool processes more")
}

func TestSweep_InvalidPoolSize_ReturnsError(t *testing.T) {
	f := parseSweepFlags(t, "--servers", "2,0")

	_, err := f.runSweep(context.Background())

	assert.Error(t, err)
}

func TestSweep_NoPoolSizes_ReturnsError(t *testing.T) {
	f := parseSweepFlags(t)
	f.servers = nil

	_, err := f.runSweep(context.Background())

	assert.Error(t, err)
}
