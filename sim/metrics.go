// Tracks run-wide and per-worker dispatch metrics such as:
// throughput, rejection, utilization, and queueing delay.

package sim

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"time"

	"github.com/docker/go-units"
	"github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/stat"
)

// Distribution captures statistical summary of a metric.
type Distribution struct {
	Mean   float64 `json:"mean"`
	StdDev float64 `json:"stddev"`
	P50    float64 `json:"p50"`
	P90    float64 `json:"p90"`
	P99    float64 `json:"p99"`
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
	Count  int     `json:"count"`
}

// NewDistribution computes a Distribution from raw values.
// Returns zero-value Distribution for empty input.
func NewDistribution(values []float64) Distribution {
	if len(values) == 0 {
		return Distribution{}
	}
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	d := Distribution{
		P50:   stat.Quantile(0.50, stat.Empirical, sorted, nil),
		P90:   stat.Quantile(0.90, stat.Empirical, sorted, nil),
		P99:   stat.Quantile(0.99, stat.Empirical, sorted, nil),
		Min:   sorted[0],
		Max:   sorted[len(sorted)-1],
		Count: len(sorted),
	}
	if len(sorted) == 1 {
		d.Mean = sorted[0]
		return d
	}
	d.Mean, d.StdDev = stat.MeanStdDev(sorted, nil)
	return d
}

// WorkerMetrics summarizes one worker's share of the run.
type WorkerMetrics struct {
	Name        string  `json:"name"`
	Completed   int     `json:"completed"`
	BusyTicks   int64   `json:"busy_ticks"`
	Utilization float64 `json:"utilization"`
	FinalState  string  `json:"final_state"`
}

// Metrics aggregates statistics about a finished (or cancelled) run
// for final reporting.
type Metrics struct {
	Workers       int    `json:"workers"`
	QueueCapacity int    `json:"queue_capacity"`
	Horizon       int64  `json:"horizon"`
	EndTick       int64  `json:"end_tick"`
	Seed          int64  `json:"seed"`
	StopReason    string `json:"stop_reason"`

	Submitted int `json:"submitted"`
	Admitted  int `json:"admitted"`
	Rejected  int `json:"rejected"`
	Processed int `json:"processed"`
	InFlight  int `json:"in_flight"`
	Queued    int `json:"queued"`
	PeakQueue int `json:"peak_queue"`

	// Utilization is busy worker-ticks over available worker-ticks.
	Utilization float64 `json:"utilization"`
	// WaitTicks is the delay between arrival and start of service, per completed request.
	WaitTicks Distribution `json:"wait_ticks"`
	// ServiceTicks is the duration distribution of completed requests.
	ServiceTicks Distribution `json:"service_ticks"`

	PerWorker []WorkerMetrics `json:"per_worker"`

	WallTime string `json:"wall_time,omitempty"`
}

// CollectMetrics builds Metrics from the Simulator's current state.
func CollectMetrics(sim *Simulator) *Metrics {
	m := &Metrics{
		Workers:       len(sim.Workers),
		QueueCapacity: sim.Queue.Capacity(),
		Horizon:       sim.Horizon,
		EndTick:       sim.Clock,
		Seed:          sim.Config.Seed,
		StopReason:    string(sim.StopReason()),
		Submitted:     sim.Submitted(),
		Admitted:      sim.Admitted(),
		Rejected:      sim.Log.Rejected(),
		Processed:     sim.Log.Processed(),
		InFlight:      sim.InFlight(),
		Queued:        sim.Queue.Len(),
		PeakQueue:     sim.Queue.Peak(),
		PerWorker:     make([]WorkerMetrics, len(sim.Workers)),
	}

	var busy int64
	for i, w := range sim.Workers {
		busy += w.BusyTicks()
		m.PerWorker[i] = WorkerMetrics{
			Name:        w.Name,
			Completed:   w.Completed(),
			BusyTicks:   w.BusyTicks(),
			Utilization: ratio(w.BusyTicks(), sim.Clock),
			FinalState:  string(w.State()),
		}
	}
	m.Utilization = ratio(busy, sim.Clock*int64(len(sim.Workers)))

	entries := sim.Log.Entries()
	waits := make([]float64, len(entries))
	service := make([]float64, len(entries))
	for i, c := range entries {
		waits[i] = float64(c.StartTime - c.Request.ArrivalTime)
		service[i] = float64(c.Request.Duration)
	}
	m.WaitTicks = NewDistribution(waits)
	m.ServiceTicks = NewDistribution(service)
	return m
}

func ratio(num, den int64) float64 {
	if den <= 0 {
		return 0
	}
	return float64(num) / float64(den)
}

// SetWallTime records how long the run took in real time.
func (m *Metrics) SetWallTime(d time.Duration) {
	m.WallTime = units.HumanDuration(d)
}

// Print writes the human-readable summary to w.
func (m *Metrics) Print(w io.Writer) {
	_, _ = fmt.Fprintln(w, "=== Simulation Metrics ===")
	_, _ = fmt.Fprintf(w, "Servers              : %d\n", m.Workers)
	_, _ = fmt.Fprintf(w, "Queue Capacity       : %d\n", m.QueueCapacity)
	_, _ = fmt.Fprintf(w, "Ticks Simulated      : %d of %d (%s)\n", m.EndTick, m.Horizon, m.StopReason)
	_, _ = fmt.Fprintf(w, "Submitted Requests   : %d\n", m.Submitted)
	_, _ = fmt.Fprintf(w, "Processed Requests   : %d\n", m.Processed)
	_, _ = fmt.Fprintf(w, "Rejected Requests    : %d\n", m.Rejected)
	_, _ = fmt.Fprintf(w, "In Flight / Queued   : %d / %d\n", m.InFlight, m.Queued)
	_, _ = fmt.Fprintf(w, "Peak Queue Length    : %d\n", m.PeakQueue)
	_, _ = fmt.Fprintf(w, "Utilization          : %.2f%%\n", m.Utilization*100)
	if m.WaitTicks.Count > 0 {
		_, _ = fmt.Fprintf(w, "Average Wait         : %.2f ticks (stddev %.2f)\n", m.WaitTicks.Mean, m.WaitTicks.StdDev)
		_, _ = fmt.Fprintf(w, "Wait p50/p90/p99     : %.0f / %.0f / %.0f ticks\n", m.WaitTicks.P50, m.WaitTicks.P90, m.WaitTicks.P99)
		_, _ = fmt.Fprintf(w, "Average Service      : %.2f ticks\n", m.ServiceTicks.Mean)
	}
	for _, wm := range m.PerWorker {
		_, _ = fmt.Fprintf(w, "  %-18s : %d processed, %.2f%% busy, %s\n", wm.Name, wm.Completed, wm.Utilization*100, wm.FinalState)
	}
	if m.WallTime != "" {
		_, _ = fmt.Fprintf(w, "Wall Time            : %s\n", m.WallTime)
	}
}

// SaveResults writes the metrics as indented JSON to path.
func (m *Metrics) SaveResults(path string) error {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding results: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing results to %s: %w", path, err)
	}
	logrus.Infof("Results written to %s", path)
	return nil
}
