// Package trace provides decision-trace recording for dispatch policy analysis.
// This package has no dependencies on sim/; it stores pure data types.
package trace

// AdmissionRecord captures a single admission decision.
type AdmissionRecord struct {
	RequestID string `yaml:"request_id"`
	Clock     int64  `yaml:"clock"`
	Admitted  bool   `yaml:"admitted"`
	QueueLen  int    `yaml:"queue_len"`
	Reason    string `yaml:"reason,omitempty"`
}

// AssignmentRecord captures a request handed from the queue to a worker.
type AssignmentRecord struct {
	RequestID   string `yaml:"request_id"`
	Clock       int64  `yaml:"clock"`
	Worker      string `yaml:"worker"`
	WaitTicks   int64  `yaml:"wait_ticks"` // service start tick - arrival clock
	Reactivated bool   `yaml:"reactivated,omitempty"`
}

// CompletionRecord captures a finished request.
type CompletionRecord struct {
	RequestID string `yaml:"request_id"`
	Clock     int64  `yaml:"clock"`
	Worker    string `yaml:"worker"`
	StartTime int64  `yaml:"start_time"`
	Duration  int64  `yaml:"duration"`
}
