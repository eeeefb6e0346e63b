package trace

// TraceSummary aggregates statistics from a SimulationTrace.
type TraceSummary struct {
	TotalDecisions     int            `yaml:"total_decisions"`
	AdmittedCount      int            `yaml:"admitted"`
	RejectedCount      int            `yaml:"rejected"`
	AssignedCount      int            `yaml:"assigned"`
	CompletedCount     int            `yaml:"completed"`
	Reactivations      int            `yaml:"reactivations"`
	MeanWait           float64        `yaml:"mean_wait_ticks"`
	MaxWait            int64          `yaml:"max_wait_ticks"`
	UniqueWorkers      int            `yaml:"unique_workers"`
	WorkerDistribution map[string]int `yaml:"worker_distribution"` // worker name → requests assigned
}

// Summarize computes aggregate statistics from a SimulationTrace.
// Safe for nil or empty traces (returns zero-value fields).
func Summarize(st *SimulationTrace) *TraceSummary {
	summary := &TraceSummary{
		WorkerDistribution: make(map[string]int),
	}
	if st == nil {
		return summary
	}

	summary.TotalDecisions = len(st.Admissions)
	for _, a := range st.Admissions {
		if a.Admitted {
			summary.AdmittedCount++
		} else {
			summary.RejectedCount++
		}
	}

	summary.AssignedCount = len(st.Assignments)
	if len(st.Assignments) > 0 {
		var totalWait int64
		for _, a := range st.Assignments {
			summary.WorkerDistribution[a.Worker]++
			totalWait += a.WaitTicks
			if a.WaitTicks > summary.MaxWait {
				summary.MaxWait = a.WaitTicks
			}
			if a.Reactivated {
				summary.Reactivations++
			}
		}
		summary.MeanWait = float64(totalWait) / float64(len(st.Assignments))
	}

	summary.CompletedCount = len(st.Completions)
	summary.UniqueWorkers = len(summary.WorkerDistribution)

	return summary
}
