package sim

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/inference-sim/dispatch-sim/sim/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDistribution_Empty_ReturnsZero(t *testing.T) {
	assert.Equal(t, Distribution{}, NewDistribution(nil))
}

func TestNewDistribution_SingleValue(t *testing.T) {
	d := NewDistribution([]float64{7})

	assert.Equal(t, 7.0, d.Mean)
	assert.Equal(t, 0.0, d.StdDev)
	assert.Equal(t, 7.0, d.P50)
	assert.Equal(t, 7.0, d.P99)
	assert.Equal(t, 1, d.Count)
}

func TestNewDistribution_UnsortedInput(t *testing.T) {
	// GIVEN ten values in reverse order
	values := []float64{10, 9, 8, 7, 6, 5, 4, 3, 2, 1}

	d := NewDistribution(values)

	// THEN the summary matches the sorted data and the input is untouched
	testutil.AssertFloat64Equal(t, "mean", 5.5, d.Mean, 1e-9)
	testutil.AssertFloat64Equal(t, "stddev", 3.0276503540974917, d.StdDev, 1e-9)
	assert.Equal(t, 5.0, d.P50)
	assert.Equal(t, 9.0, d.P90)
	assert.Equal(t, 10.0, d.P99)
	assert.Equal(t, 1.0, d.Min)
	assert.Equal(t, 10.0, d.Max)
	assert.Equal(t, 10.0, values[0])
}

func TestCollectMetrics_CountsAndUtilization(t *testing.T) {
	// GIVEN 2 workers, capacity 3, three duration-2 requests and one overflow
	s := newTestSimulator(2, 3, 4, nil, idlePolicy())
	_, err := s.SubmitBatch([]Request{req("a", 2), req("b", 2), req("c", 2), req("d", 2)})
	require.NoError(t, err)

	// WHEN the run finishes
	require.NoError(t, s.Run(context.Background()))
	m := CollectMetrics(s)

	// THEN a and b finish at tick 2, c at tick 4; d was rejected
	assert.Equal(t, 4, m.Submitted)
	assert.Equal(t, 3, m.Admitted)
	assert.Equal(t, 1, m.Rejected)
	assert.Equal(t, 3, m.Processed)
	assert.Equal(t, 0, m.InFlight)
	assert.Equal(t, 0, m.Queued)
	assert.Equal(t, 3, m.PeakQueue)
	assert.Equal(t, int64(4), m.EndTick)
	assert.Equal(t, "horizon", m.StopReason)
	// 6 busy ticks over 2 workers x 4 ticks
	testutil.AssertFloat64Equal(t, "utilization", 0.75, m.Utilization, 1e-9)
	require.Len(t, m.PerWorker, 2)
	assert.Equal(t, 2, m.PerWorker[0].Completed)
	assert.Equal(t, 1, m.PerWorker[1].Completed)
	testutil.AssertFloat64Equal(t, "server_0 utilization", 1.0, m.PerWorker[0].Utilization, 1e-9)
	// waits: a=0, b=0, c=2
	assert.Equal(t, 3, m.WaitTicks.Count)
	assert.Equal(t, 2.0, m.WaitTicks.Max)
	assert.Equal(t, 2.0, m.ServiceTicks.Mean)
}

func TestCollectMetrics_BeforeAnyCycle(t *testing.T) {
	s := newTestSimulator(3, 5, 10, nil, idlePolicy())

	m := CollectMetrics(s)

	assert.Equal(t, 0.0, m.Utilization)
	assert.Equal(t, 0, m.WaitTicks.Count)
	assert.Len(t, m.PerWorker, 3)
}

func TestMetrics_Print_IncludesHeaderAndWorkers(t *testing.T) {
	s := newTestSimulator(2, 5, 3, nil, idlePolicy())
	_, err := s.Submit(req("a", 1))
	require.NoError(t, err)
	require.NoError(t, s.Run(context.Background()))
	m := CollectMetrics(s)
	m.SetWallTime(3 * time.Second)

	var buf bytes.Buffer
	m.Print(&buf)

	out := buf.String()
	assert.Contains(t, out, "=== Simulation Metrics ===")
	assert.Contains(t, out, "Processed Requests   : 1")
	assert.Contains(t, out, "server_0")
	assert.Contains(t, out, "server_1")
	assert.Contains(t, out, "Wall Time            : 3 seconds")
}

func TestMetrics_SaveResults_WritesJSON(t *testing.T) {
	// GIVEN metrics from a short run
	s := newTestSimulator(1, 5, 5, nil, idlePolicy())
	_, err := s.Submit(req("a", 2))
	require.NoError(t, err)
	require.NoError(t, s.Run(context.Background()))
	m := CollectMetrics(s)

	// WHEN saved
	path := filepath.Join(t.TempDir(), "results.json")
	require.NoError(t, m.SaveResults(path))

	// THEN the file round-trips the counters
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var got Metrics
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, 1, got.Processed)
	assert.Equal(t, 1, got.Workers)
	assert.Equal(t, "server_0", got.PerWorker[0].Name)
	assert.Contains(t, string(data), `"wait_ticks"`)
}

func TestMetrics_SaveResults_BadPath(t *testing.T) {
	m := &Metrics{}
	assert.Error(t, m.SaveResults(filepath.Join(t.TempDir(), "missing", "results.json")))
}
