package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/inference-sim/dispatch-sim/sim"
	"github.com/inference-sim/dispatch-sim/sim/trace"
	"github.com/inference-sim/dispatch-sim/sim/workload"
)

// sweepFlags holds the values bound to the sweep command's flags.
type sweepFlags struct {
	servers          []int
	runtime          int64
	seed             int64
	admission        string
	idlePolicy       string
	workloadSpecPath string
	logLevel         string
}

func registerSweepFlags(fs *pflag.FlagSet) *sweepFlags {
	f := &sweepFlags{}
	fs.IntSliceVar(&f.servers, "servers", []int{1, 2, 4, 8}, "Comma-separated pool sizes to compare")
	fs.Int64Var(&f.runtime, "runtime", 10000, "Number of clock cycles per run")
	fs.Int64Var(&f.seed, "seed", 0, "Seed shared by every run")
	fs.StringVar(&f.admission, "admission", string(sim.AdmissionTailReject), "Burst admission mode (tail-reject, all-or-nothing)")
	fs.StringVar(&f.idlePolicy, "idle-policy", string(sim.IdleWait), "Idle worker policy (idle, deactivate)")
	fs.StringVar(&f.workloadSpecPath, "workload-spec", "", "Path to YAML workload specification")
	fs.StringVar(&f.logLevel, "log", "warn", "Log level (trace, debug, info, warn, error, fatal, panic)")
	return f
}

// settingsFor builds run settings for one pool size of the sweep. The queue
// capacity and the default workload scale with the pool size.
func (f *sweepFlags) settingsFor(servers int, spec *workload.WorkloadSpec) (*runSettings, error) {
	cfg := sim.SimConfig{
		Horizon:      f.runtime,
		Seed:         f.seed,
		PoolConfig:   sim.NewPoolConfig(servers),
		QueueConfig:  sim.NewQueueConfig(sim.DefaultQueueCapacity(servers), sim.AdmissionMode(f.admission)),
		PolicyConfig: sim.NewPolicyConfig(sim.IdlePolicy(f.idlePolicy), false),
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("servers=%d: %w", servers, err)
	}
	return &runSettings{
		Sim:      cfg,
		Workload: spec.WithDefaults(servers),
		Trace:    trace.TraceConfig{Level: trace.TraceLevelNone},
	}, nil
}

// runSweep runs one simulation per pool size, in order.
func (f *sweepFlags) runSweep(ctx context.Context) ([]sweepRow, error) {
	if len(f.servers) == 0 {
		return nil, fmt.Errorf("--servers needs at least one pool size")
	}
	spec := &workload.WorkloadSpec{}
	if f.workloadSpecPath != "" {
		loaded, err := workload.LoadWorkloadSpec(f.workloadSpecPath)
		if err != nil {
			return nil, err
		}
		if err := loaded.Validate(); err != nil {
			return nil, fmt.Errorf("workload spec: %w", err)
		}
		spec = loaded
	}
	rows := make([]sweepRow, 0, len(f.servers))
	for _, n := range f.servers {
		s, err := f.settingsFor(n, spec)
		if err != nil {
			return nil, err
		}
		res, err := simulate(ctx, s)
		if err != nil {
			return rows, err
		}
		logrus.Infof("sweep: servers=%d processed=%d rejected=%d", n, res.Metrics.Processed, res.Metrics.Rejected)
		rows = append(rows, sweepRow{Servers: n, Metrics: res.Metrics})
	}
	return rows, nil
}

var sweepOpts *sweepFlags

// sweepCmd compares pool sizes on the same seeded workload
var sweepCmd = &cobra.Command{
	Use:   "sweep",
	Short: "Run the same seeded workload across several pool sizes",
	Run: func(cmd *cobra.Command, args []string) {
		level, err := logrus.ParseLevel(sweepOpts.logLevel)
		if err != nil {
			logrus.Fatalf("Invalid log level: %s", sweepOpts.logLevel)
		}
		logrus.SetLevel(level)

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		rows, err := sweepOpts.runSweep(ctx)
		if err != nil {
			logrus.Errorf("Sweep stopped: %v", err)
		}
		printSweep(os.Stdout, rows)
	},
}
