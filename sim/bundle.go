package sim

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// PolicyBundle holds dispatch policy configuration, loadable from a YAML file.
// Nil pointer fields mean "not set in YAML" and do not override the SimConfig.
// String fields use empty string for "not set".
type PolicyBundle struct {
	Admission   AdmissionConfig   `yaml:"admission"`
	Idle        IdleConfig        `yaml:"idle"`
	Termination TerminationConfig `yaml:"termination"`
}

// AdmissionConfig holds admission policy configuration.
type AdmissionConfig struct {
	Mode          string `yaml:"mode"`
	QueueCapacity *int   `yaml:"queue_capacity"`
}

// IdleConfig holds the idle-worker policy.
type IdleConfig struct {
	Policy string `yaml:"policy"`
}

// TerminationConfig holds run termination policy.
type TerminationConfig struct {
	StopWhenQuiescent *bool `yaml:"stop_when_quiescent"`
}

// LoadPolicyBundle reads and parses a YAML policy configuration file.
// Uses strict parsing: unrecognized keys (typos) are rejected.
func LoadPolicyBundle(path string) (*PolicyBundle, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading policy config: %w", err)
	}
	var bundle PolicyBundle
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&bundle); err != nil {
		return nil, fmt.Errorf("parsing policy config: %w", err)
	}
	return &bundle, nil
}

// Validate checks that all policy names and parameter ranges in the bundle are valid.
func (b *PolicyBundle) Validate() error {
	if !IsValidAdmissionMode(b.Admission.Mode) {
		return fmt.Errorf("unknown admission mode %q", b.Admission.Mode)
	}
	if !IsValidIdlePolicy(b.Idle.Policy) {
		return fmt.Errorf("unknown idle policy %q", b.Idle.Policy)
	}
	if b.Admission.QueueCapacity != nil && *b.Admission.QueueCapacity < 1 {
		return fmt.Errorf("queue_capacity must be at least 1, got %d", *b.Admission.QueueCapacity)
	}
	return nil
}

// ApplyTo overwrites the fields of cfg that are set in the bundle.
func (b *PolicyBundle) ApplyTo(cfg *SimConfig) {
	if b.Admission.Mode != "" {
		cfg.Mode = AdmissionMode(b.Admission.Mode)
	}
	if b.Admission.QueueCapacity != nil {
		cfg.Capacity = *b.Admission.QueueCapacity
	}
	if b.Idle.Policy != "" {
		cfg.Idle = IdlePolicy(b.Idle.Policy)
	}
	if b.Termination.StopWhenQuiescent != nil {
		cfg.StopWhenQuiescent = *b.Termination.StopWhenQuiescent
	}
}
