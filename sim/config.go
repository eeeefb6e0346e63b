package sim

import "fmt"

// PoolConfig groups worker pool parameters.
type PoolConfig struct {
	Workers int // number of workers (must be >= 1)
}

// QueueConfig groups admission queue parameters.
type QueueConfig struct {
	Capacity int           // maximum pending requests (must be >= 1)
	Mode     AdmissionMode // batch admission policy ("" = tail-reject)
}

// PolicyConfig groups the dispatch policies on which reference behaviours diverge.
type PolicyConfig struct {
	Idle              IdlePolicy // "idle" (default) or "deactivate"
	StopWhenQuiescent bool       // end the run early once no worker is busy and the queue is empty
}

// SimConfig is the full configuration of a Simulator.
type SimConfig struct {
	Horizon int64 // run length in ticks (must be >= 0)
	Seed    int64 // master seed; recorded for reporting, consumed by the workload generator
	PoolConfig
	QueueConfig
	PolicyConfig
}

// NewPoolConfig creates a PoolConfig with all fields explicitly set.
func NewPoolConfig(workers int) PoolConfig {
	return PoolConfig{Workers: workers}
}

// NewQueueConfig creates a QueueConfig with all fields explicitly set.
func NewQueueConfig(capacity int, mode AdmissionMode) QueueConfig {
	return QueueConfig{Capacity: capacity, Mode: mode}
}

// NewPolicyConfig creates a PolicyConfig with all fields explicitly set.
func NewPolicyConfig(idle IdlePolicy, stopWhenQuiescent bool) PolicyConfig {
	return PolicyConfig{Idle: idle, StopWhenQuiescent: stopWhenQuiescent}
}

// DefaultQueueCapacity returns the capacity used when none is configured:
// five pending slots per worker.
func DefaultQueueCapacity(workers int) int {
	return workers * 5
}

// Validate checks that all fields are within range.
func (c SimConfig) Validate() error {
	if c.Workers < 1 {
		return fmt.Errorf("pool size must be at least 1, got %d", c.Workers)
	}
	if c.Horizon < 0 {
		return fmt.Errorf("run length must be non-negative, got %d", c.Horizon)
	}
	if c.Capacity < 1 {
		return fmt.Errorf("queue capacity must be at least 1, got %d", c.Capacity)
	}
	if !IsValidAdmissionMode(string(c.Mode)) {
		return fmt.Errorf("unknown admission mode %q; valid: tail-reject, all-or-nothing", c.Mode)
	}
	if !IsValidIdlePolicy(string(c.Idle)) {
		return fmt.Errorf("unknown idle policy %q; valid: idle, deactivate", c.Idle)
	}
	return nil
}
