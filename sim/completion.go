package sim

// Completion records one finished request.
// The request was served during the ticks (StartTime, CompletionTime], so
// CompletionTime - StartTime == Request.Duration.
type Completion struct {
	Request        Request
	WorkerIndex    int
	WorkerName     string
	StartTime      int64
	CompletionTime int64
}

// CompletionLog is the append-only record of finished requests plus the run's
// aggregate counters. Only the Simulator writes to it.
type CompletionLog struct {
	entries  []Completion
	rejected int
}

// NewCompletionLog creates an empty log.
func NewCompletionLog() *CompletionLog {
	return &CompletionLog{entries: make([]Completion, 0)}
}

func (cl *CompletionLog) append(c Completion) {
	if n := len(cl.entries); n > 0 && cl.entries[n-1].CompletionTime > c.CompletionTime {
		panic("CompletionLog: completion ticks must be non-decreasing")
	}
	cl.entries = append(cl.entries, c)
}

func (cl *CompletionLog) addRejected(n int) {
	cl.rejected += n
}

// Entries returns a copy of the log in append order.
func (cl *CompletionLog) Entries() []Completion {
	out := make([]Completion, len(cl.entries))
	copy(out, cl.entries)
	return out
}

// Processed returns the number of completed requests.
func (cl *CompletionLog) Processed() int {
	return len(cl.entries)
}

// Rejected returns the number of requests turned away at admission.
func (cl *CompletionLog) Rejected() int {
	return cl.rejected
}
