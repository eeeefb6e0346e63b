package cmd

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// RunConfig is the optional YAML run configuration passed with --config.
// Nil pointers and empty strings mean "not set"; a CLI flag given explicitly
// always wins over the file.
type RunConfig struct {
	Servers          *int     `yaml:"servers"`
	Runtime          *int64   `yaml:"runtime"`
	QueueCapacity    *int     `yaml:"queue_capacity"`
	Seed             *int64   `yaml:"seed"`
	Admission        string   `yaml:"admission"`
	IdlePolicy       string   `yaml:"idle_policy"`
	StopWhenIdle     *bool    `yaml:"stop_when_idle"`
	BurstProbability *float64 `yaml:"burst_probability"`
	Log              string   `yaml:"log"`
	PolicyConfig     string   `yaml:"policy_config"`
	WorkloadSpec     string   `yaml:"workload_spec"`
	ResultsPath      string   `yaml:"results_path"`
	TraceOutput      string   `yaml:"trace_output"`
	TraceLevel       string   `yaml:"trace_level"`
}

// LoadRunConfig reads a YAML run configuration.
// Parsing is strict: unknown keys are errors so that typos do not silently
// fall back to defaults.
func LoadRunConfig(path string) (*RunConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading run config: %w", err)
	}
	var rc RunConfig
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&rc); err != nil {
		return nil, fmt.Errorf("parsing run config %s: %w", path, err)
	}
	return &rc, nil
}
