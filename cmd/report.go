package cmd

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/inference-sim/dispatch-sim/sim"
	"github.com/inference-sim/dispatch-sim/sim/workload"
)

const rule = "-------------------------------------------------------"

// printBanner writes the run header shown before the first tick.
func printBanner(w io.Writer, cfg sim.SimConfig, spec *workload.WorkloadSpec) {
	_, _ = fmt.Fprintln(w, rule)
	_, _ = fmt.Fprintf(w, "Starting queue size: %d\n", *spec.InitialRequests)
	_, _ = fmt.Fprintf(w, "Queue capacity: %d\n", cfg.Capacity)
	_, _ = fmt.Fprintf(w, "Clock cycles: %d\n", cfg.Horizon)
	_, _ = fmt.Fprintf(w, "Request time: %s\n", describeDist(spec.Duration))
	_, _ = fmt.Fprintln(w, rule)
	_, _ = fmt.Fprintln(w, "Starting load balancer...")
}

// describeDist renders a duration distribution for the banner.
func describeDist(d workload.DistSpec) string {
	switch d.Type {
	case "uniform":
		return fmt.Sprintf("%g-%g clock cycles", d.Params["min"], d.Params["max"])
	case "constant":
		return fmt.Sprintf("%g clock cycles", d.Params["value"])
	default:
		return d.Type + " distribution"
	}
}

// printLog writes one line per completed request in completion order.
func printLog(w io.Writer, entries []sim.Completion) {
	for _, c := range entries {
		_, _ = fmt.Fprintf(w, "At %d Server{name=%s} processed request %s\n", c.CompletionTime, c.WorkerName, c.Request)
	}
}

// sweepRow is one pool size's outcome in a sweep.
type sweepRow struct {
	Servers int
	Metrics *sim.Metrics
}

// printSweep writes a table comparing pool sizes.
func printSweep(w io.Writer, rows []sweepRow) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)
	_, _ = fmt.Fprintln(tw, "servers\tsubmitted\tprocessed\trejected\tutilization\tmean wait\tp99 wait\t")
	for _, r := range rows {
		m := r.Metrics
		_, _ = fmt.Fprintf(tw, "%d\t%d\t%d\t%d\t%.1f%%\t%.2f\t%.0f\t\n",
			r.Servers, m.Submitted, m.Processed, m.Rejected, m.Utilization*100, m.WaitTicks.Mean, m.WaitTicks.P99)
	}
	_ = tw.Flush()
}
