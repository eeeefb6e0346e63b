package workload

import (
	"bytes"
	"fmt"
	"math"
	"net/netip"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Defaults applied when a WorkloadSpec leaves a field unset.
const (
	DefaultMinDuration      = 3
	DefaultMaxDuration      = 16
	DefaultBurstProbability = 0.1
	// initial requests and the largest default burst scale with the pool size
	DefaultInitialPerWorker = 5
	DefaultBurstPerWorker   = 2

	// MaxBurstSize bounds the number of requests a single burst may carry.
	MaxBurstSize = 100_000
)

// WorkloadSpec is the top-level workload configuration.
// Loaded from YAML via LoadWorkloadSpec(path).
type WorkloadSpec struct {
	Version         string      `yaml:"version"`
	Seed            *int64      `yaml:"seed,omitempty"`
	InitialRequests *int        `yaml:"initial_requests,omitempty"` // nil = workers × 5
	Duration        DistSpec    `yaml:"duration"`
	Burst           BurstSpec   `yaml:"burst"`
	Addresses       AddressSpec `yaml:"addresses"`
}

// BurstSpec configures the per-tick burst trigger.
type BurstSpec struct {
	Probability *float64 `yaml:"probability,omitempty"` // nil = 0.1
	Size        DistSpec `yaml:"size"`                  // empty = uniform 1..workers×2
}

// AddressSpec restricts generated origin and destination addresses to IPv4 prefixes.
// Empty means the whole IPv4 space.
type AddressSpec struct {
	Origin      string `yaml:"origin,omitempty"`
	Destination string `yaml:"destination,omitempty"`
}

// DistSpec parameterizes a positive integer distribution.
type DistSpec struct {
	Type   string             `yaml:"type"`
	Params map[string]float64 `yaml:"params,omitempty"`
}

var validDistTypes = map[string]bool{
	"": true, "uniform": true, "gaussian": true, "exponential": true, "constant": true, "empirical": true,
}

// LoadWorkloadSpec reads and parses a YAML workload specification file.
// Uses strict parsing: unrecognized keys (typos) are rejected.
func LoadWorkloadSpec(path string) (*WorkloadSpec, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading workload spec: %w", err)
	}
	var spec WorkloadSpec
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&spec); err != nil {
		return nil, fmt.Errorf("parsing workload spec: %w", err)
	}
	return &spec, nil
}

// DefaultSpec returns the workload of the original dispatch program for a pool
// of the given size: durations uniform in [3, 16], a burst with probability 0.1
// each tick of uniform size in [1, workers×2], and workers×5 initial requests.
func DefaultSpec(workers int) *WorkloadSpec {
	return (&WorkloadSpec{}).WithDefaults(workers)
}

// WithDefaults returns a copy of s with every unset field filled in for a pool
// of the given size.
func (s *WorkloadSpec) WithDefaults(workers int) *WorkloadSpec {
	out := *s
	if out.InitialRequests == nil {
		n := workers * DefaultInitialPerWorker
		out.InitialRequests = &n
	}
	if out.Duration.Type == "" {
		out.Duration = DistSpec{Type: "uniform", Params: map[string]float64{"min": DefaultMinDuration, "max": DefaultMaxDuration}}
	}
	if out.Burst.Probability == nil {
		p := DefaultBurstProbability
		out.Burst.Probability = &p
	}
	if out.Burst.Size.Type == "" {
		out.Burst.Size = DistSpec{Type: "uniform", Params: map[string]float64{"min": 1, "max": float64(max(1, workers*DefaultBurstPerWorker))}}
	}
	return &out
}

// Validate checks that all fields in the spec are valid.
// Unset fields are valid; they take defaults.
func (s *WorkloadSpec) Validate() error {
	if s.InitialRequests != nil && *s.InitialRequests < 0 {
		return fmt.Errorf("initial_requests must be non-negative, got %d", *s.InitialRequests)
	}
	if p := s.Burst.Probability; p != nil {
		if math.IsNaN(*p) || *p < 0 || *p > 1 {
			return fmt.Errorf("burst.probability must be in [0, 1], got %f", *p)
		}
	}
	if err := validateDistSpec("duration", &s.Duration); err != nil {
		return err
	}
	if err := validateDistSpec("burst.size", &s.Burst.Size); err != nil {
		return err
	}
	if b := distUpperBound(s.Burst.Size); b > MaxBurstSize {
		return fmt.Errorf("burst.size may reach %.0f requests; the maximum is %d", b, MaxBurstSize)
	}
	for name, prefix := range map[string]string{"addresses.origin": s.Addresses.Origin, "addresses.destination": s.Addresses.Destination} {
		if _, err := parseIPv4Prefix(prefix); err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
	}
	return nil
}

func validateDistSpec(prefix string, d *DistSpec) error {
	if !validDistTypes[d.Type] {
		return fmt.Errorf("%s: unknown distribution type %q; valid: uniform, gaussian, exponential, constant, empirical", prefix, d.Type)
	}
	for name, val := range d.Params {
		if math.IsNaN(val) || math.IsInf(val, 0) {
			return fmt.Errorf("%s.params.%s must be a finite number, got %f", prefix, name, val)
		}
	}
	if d.Type == "" {
		return nil
	}
	if _, err := NewSampler(*d); err != nil {
		return fmt.Errorf("%s: %w", prefix, err)
	}
	return nil
}

// distUpperBound returns the largest value a validated DistSpec is configured
// to produce. For exponential it returns the mean, since the tail is unbounded.
func distUpperBound(d DistSpec) float64 {
	switch d.Type {
	case "uniform", "gaussian":
		return d.Params["max"]
	case "exponential":
		return d.Params["mean"]
	case "constant":
		return d.Params["value"]
	case "empirical":
		hi := 0.0
		for k := range d.Params {
			if v, err := strconv.ParseFloat(k, 64); err == nil && v > hi {
				hi = v
			}
		}
		return hi
	}
	return 0
}

// parseIPv4Prefix parses an IPv4 CIDR; the empty string means 0.0.0.0/0.
func parseIPv4Prefix(s string) (netip.Prefix, error) {
	if s == "" {
		return netip.PrefixFrom(netip.IPv4Unspecified(), 0), nil
	}
	p, err := netip.ParsePrefix(s)
	if err != nil {
		return netip.Prefix{}, err
	}
	if !p.Addr().Is4() {
		return netip.Prefix{}, fmt.Errorf("%q is not an IPv4 prefix", s)
	}
	return p.Masked(), nil
}
