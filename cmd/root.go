package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/inference-sim/dispatch-sim/sim"
	"github.com/inference-sim/dispatch-sim/sim/trace"
	"github.com/inference-sim/dispatch-sim/sim/workload"
)

// runFlags holds the values bound to the run command's flags.
type runFlags struct {
	fs *pflag.FlagSet

	seed             int64   // Seed for request generation and bursts
	servers          int     // Pool size
	runtime          int64   // Number of clock cycles to simulate
	queueCapacity    int     // Admission queue capacity (0 = servers × 5)
	admission        string  // Batch admission mode
	idlePolicy       string  // What a worker does when no work is queued
	stopWhenIdle     bool    // End early once all work is done
	burstProbability float64 // Per-tick burst probability override
	logLevel         string  // Log verbosity level
	configPath       string  // YAML run config
	policyConfigPath string  // YAML policy bundle
	workloadSpecPath string  // YAML workload spec
	resultsPath      string  // JSON metrics output
	traceOutput      string  // YAML decision trace output
	traceLevel       string  // Decision trace verbosity
	interactive      bool    // Ask for servers and runtime on stdin
	quiet            bool    // Do not print the completion log
}

func registerRunFlags(fs *pflag.FlagSet) *runFlags {
	f := &runFlags{fs: fs}
	fs.Int64Var(&f.seed, "seed", 0, "Seed for random request generation")
	fs.IntVar(&f.servers, "servers", 10, "Number of servers in the pool")
	fs.Int64Var(&f.runtime, "runtime", 10000, "Number of clock cycles to run")
	fs.IntVar(&f.queueCapacity, "queue-capacity", 0, "Admission queue capacity (0 = 5 per server)")
	fs.StringVar(&f.admission, "admission", string(sim.AdmissionTailReject), "Burst admission mode (tail-reject, all-or-nothing)")
	fs.StringVar(&f.idlePolicy, "idle-policy", string(sim.IdleWait), "Idle worker policy (idle, deactivate)")
	fs.BoolVar(&f.stopWhenIdle, "stop-when-idle", false, "Stop as soon as no server is busy and the queue is empty")
	fs.Float64Var(&f.burstProbability, "burst-probability", workload.DefaultBurstProbability, "Probability of a request burst on each cycle")
	fs.StringVar(&f.logLevel, "log", "warn", "Log level (trace, debug, info, warn, error, fatal, panic)")
	fs.StringVar(&f.configPath, "config", "", "Path to YAML run configuration")
	fs.StringVar(&f.policyConfigPath, "policy-config", "", "Path to YAML policy bundle (admission, idle, termination)")
	fs.StringVar(&f.workloadSpecPath, "workload-spec", "", "Path to YAML workload specification")
	fs.StringVar(&f.resultsPath, "results-path", "", "Write metrics as JSON to this file")
	fs.StringVar(&f.traceOutput, "trace-output", "", "Write the decision trace as YAML to this file")
	fs.StringVar(&f.traceLevel, "trace-level", string(trace.TraceLevelNone), "Decision trace level (none, decisions)")
	fs.BoolVar(&f.interactive, "interactive", false, "Prompt for the number of servers and the runtime")
	fs.BoolVar(&f.quiet, "quiet", false, "Do not print the per-request completion log")
	return f
}

func (f *runFlags) changed(name string) bool {
	return f.fs.Changed(name)
}

// runSettings is the fully resolved input of one simulation run.
type runSettings struct {
	Sim              sim.SimConfig
	Workload         *workload.WorkloadSpec
	Trace            trace.TraceConfig
	TraceOutput      string
	ResultsPath      string
	LogLevel         logrus.Level
	PrintCompletions bool
}

// resolve merges defaults, the YAML run config, the policy bundle, the
// workload spec and explicitly set flags, in increasing order of precedence.
// in and out are used only for the interactive prompt.
func (f *runFlags) resolve(in io.Reader, out io.Writer) (*runSettings, error) {
	rc := &RunConfig{}
	if f.configPath != "" {
		loaded, err := LoadRunConfig(f.configPath)
		if err != nil {
			return nil, err
		}
		rc = loaded
	}

	servers := pickInt(f, "servers", f.servers, rc.Servers)
	runtime := pickInt64(f, "runtime", f.runtime, rc.Runtime)
	capacity := pickInt(f, "queue-capacity", f.queueCapacity, rc.QueueCapacity)
	seed := pickInt64(f, "seed", f.seed, rc.Seed)
	admission := pickString(f, "admission", f.admission, rc.Admission)
	idle := pickString(f, "idle-policy", f.idlePolicy, rc.IdlePolicy)
	stop := pickBool(f, "stop-when-idle", f.stopWhenIdle, rc.StopWhenIdle)
	logLevel := pickString(f, "log", f.logLevel, rc.Log)
	policyPath := pickString(f, "policy-config", f.policyConfigPath, rc.PolicyConfig)
	workloadPath := pickString(f, "workload-spec", f.workloadSpecPath, rc.WorkloadSpec)
	traceLevel := pickString(f, "trace-level", f.traceLevel, rc.TraceLevel)

	level, err := logrus.ParseLevel(logLevel)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", logLevel, err)
	}

	if f.interactive {
		servers, runtime, err = promptPoolAndRuntime(in, out)
		if err != nil {
			return nil, err
		}
	}
	if capacity == 0 {
		capacity = sim.DefaultQueueCapacity(servers)
	}

	cfg := sim.SimConfig{
		Horizon:      runtime,
		Seed:         seed,
		PoolConfig:   sim.NewPoolConfig(servers),
		QueueConfig:  sim.NewQueueConfig(capacity, sim.AdmissionMode(admission)),
		PolicyConfig: sim.NewPolicyConfig(sim.IdlePolicy(idle), stop),
	}

	if policyPath != "" {
		bundle, err := sim.LoadPolicyBundle(policyPath)
		if err != nil {
			return nil, err
		}
		if err := bundle.Validate(); err != nil {
			return nil, fmt.Errorf("policy config %s: %w", policyPath, err)
		}
		bundle.ApplyTo(&cfg)
		// explicit flags win over the bundle
		if f.changed("admission") {
			cfg.Mode = sim.AdmissionMode(f.admission)
		}
		if f.changed("queue-capacity") && f.queueCapacity > 0 {
			cfg.Capacity = f.queueCapacity
		}
		if f.changed("idle-policy") {
			cfg.Idle = sim.IdlePolicy(f.idlePolicy)
		}
		if f.changed("stop-when-idle") {
			cfg.StopWhenQuiescent = f.stopWhenIdle
		}
	}

	spec := &workload.WorkloadSpec{}
	if workloadPath != "" {
		spec, err = workload.LoadWorkloadSpec(workloadPath)
		if err != nil {
			return nil, err
		}
		// the spec's seed applies unless a seed was given on the command line or in the run config
		if spec.Seed != nil && !f.changed("seed") && rc.Seed == nil {
			cfg.Seed = *spec.Seed
		}
	}
	if f.changed("burst-probability") {
		p := f.burstProbability
		spec.Burst.Probability = &p
	} else if rc.BurstProbability != nil {
		p := *rc.BurstProbability
		spec.Burst.Probability = &p
	}
	if err := spec.Validate(); err != nil {
		return nil, fmt.Errorf("workload spec: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if !trace.IsValidTraceLevel(traceLevel) {
		return nil, fmt.Errorf("unknown trace level %q; valid: none, decisions", traceLevel)
	}
	traceOutput := pickString(f, "trace-output", f.traceOutput, rc.TraceOutput)
	if traceOutput != "" && traceLevel != string(trace.TraceLevelDecisions) {
		logrus.Warnf("--trace-output set without --trace-level=decisions; enabling decision tracing")
		traceLevel = string(trace.TraceLevelDecisions)
	}

	return &runSettings{
		Sim:              cfg,
		Workload:         spec.WithDefaults(cfg.Workers),
		Trace:            trace.TraceConfig{Level: trace.TraceLevel(traceLevel)},
		TraceOutput:      traceOutput,
		ResultsPath:      pickString(f, "results-path", f.resultsPath, rc.ResultsPath),
		LogLevel:         level,
		PrintCompletions: !f.quiet,
	}, nil
}

func pickInt(f *runFlags, name string, flagVal int, fileVal *int) int {
	if fileVal != nil && !f.changed(name) {
		return *fileVal
	}
	return flagVal
}

func pickInt64(f *runFlags, name string, flagVal int64, fileVal *int64) int64 {
	if fileVal != nil && !f.changed(name) {
		return *fileVal
	}
	return flagVal
}

func pickBool(f *runFlags, name string, flagVal bool, fileVal *bool) bool {
	if fileVal != nil && !f.changed(name) {
		return *fileVal
	}
	return flagVal
}

func pickString(f *runFlags, name, flagVal, fileVal string) string {
	if fileVal != "" && !f.changed(name) {
		return fileVal
	}
	return flagVal
}

// runResult is what one simulation run produced.
type runResult struct {
	Sim     *sim.Simulator
	Metrics *sim.Metrics
	Trace   *trace.SimulationTrace // nil unless tracing was enabled
}

// simulate builds the generator and engine for s, queues the initial requests
// and runs to completion or cancellation. On cancellation the partial result
// is returned together with ctx's error.
func simulate(ctx context.Context, s *runSettings) (*runResult, error) {
	rng := sim.NewPartitionedRNG(sim.NewSimulationKey(s.Sim.Seed))
	gen, err := workload.NewGenerator(s.Workload, s.Sim.Workers, rng)
	if err != nil {
		return nil, fmt.Errorf("building workload: %w", err)
	}
	engine, err := sim.NewSimulator(s.Sim, gen)
	if err != nil {
		return nil, err
	}
	engine.AddObserver(newEventLogger(logrus.StandardLogger()))

	res := &runResult{Sim: engine}
	if s.Trace.Enabled() {
		res.Trace = trace.NewSimulationTrace(s.Trace)
		engine.AddObserver(newTraceRecorder(res.Trace))
	}

	// the initial fill is not a burst: it is admitted request by request, so a
	// short queue keeps its head under either admission mode
	for _, req := range gen.Take(gen.InitialRequests()) {
		if _, err := engine.Submit(req); err != nil {
			return nil, fmt.Errorf("queueing initial requests: %w", err)
		}
	}

	start := time.Now()
	runErr := engine.Run(ctx)
	res.Metrics = sim.CollectMetrics(engine)
	res.Metrics.SetWallTime(time.Since(start))
	return res, runErr
}

// rootCmd is the base command for the CLI
var rootCmd = &cobra.Command{
	Use:   "dispatch-sim",
	Short: "Discrete-time simulator for a request dispatcher with a bounded queue",
}

var runOpts *runFlags

// runCmd executes the simulation using parameters from CLI flags
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the dispatch simulation",
	Run: func(cmd *cobra.Command, args []string) {
		settings, err := runOpts.resolve(os.Stdin, os.Stdout)
		if err != nil {
			logrus.Fatalf("%v", err)
		}
		logrus.SetLevel(settings.LogLevel)

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		printBanner(os.Stdout, settings.Sim, settings.Workload)
		res, err := simulate(ctx, settings)
		if err != nil && !errors.Is(err, context.Canceled) {
			logrus.Fatalf("Simulation failed: %v", err)
		}
		_, _ = fmt.Fprintf(os.Stdout, "Done\n\n")
		if settings.PrintCompletions {
			printLog(os.Stdout, res.Sim.Log.Entries())
		}
		res.Metrics.Print(os.Stdout)

		if settings.ResultsPath != "" {
			if err := res.Metrics.SaveResults(settings.ResultsPath); err != nil {
				logrus.Fatalf("%v", err)
			}
		}
		if res.Trace != nil && settings.TraceOutput != "" {
			if err := res.Trace.WriteYAML(settings.TraceOutput); err != nil {
				logrus.Fatalf("%v", err)
			}
			logrus.Infof("Decision trace written to %s", settings.TraceOutput)
		}
		logrus.Info("Simulation complete.")
	},
}

// Execute runs the CLI root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// init sets up CLI flags and subcommands
func init() {
	runOpts = registerRunFlags(runCmd.Flags())
	sweepOpts = registerSweepFlags(sweepCmd.Flags())

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(sweepCmd)
}
