package workload

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeSpec(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "workload.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadWorkloadSpec_ValidYAML_LoadsCorrectly(t *testing.T) {
	path := writeSpec(t, `
version: "1"
seed: 7
initial_requests: 12
duration:
  type: gaussian
  params:
    mean: 9
    std_dev: 2
    min: 3
    max: 16
burst:
  probability: 0.25
  size:
    type: constant
    params:
      value: 4
addresses:
  origin: 10.0.0.0/8
  destination: 192.168.1.0/24
`)
	spec, err := LoadWorkloadSpec(path)
	if err != nil {
		t.Fatalf("LoadWorkloadSpec: %v", err)
	}
	if spec.Seed == nil || *spec.Seed != 7 {
		t.Errorf("seed = %v, want 7", spec.Seed)
	}
	if spec.InitialRequests == nil || *spec.InitialRequests != 12 {
		t.Errorf("initial_requests = %v, want 12", spec.InitialRequests)
	}
	if spec.Duration.Type != "gaussian" || spec.Duration.Params["std_dev"] != 2 {
		t.Errorf("unexpected duration: %+v", spec.Duration)
	}
	if spec.Burst.Probability == nil || *spec.Burst.Probability != 0.25 {
		t.Errorf("burst.probability = %v, want 0.25", spec.Burst.Probability)
	}
	if spec.Addresses.Destination != "192.168.1.0/24" {
		t.Errorf("destination = %q", spec.Addresses.Destination)
	}
	if err := spec.Validate(); err != nil {
		t.Errorf("Validate: %v", err)
	}
}

func TestLoadWorkloadSpec_UnknownKey_ReturnsError(t *testing.T) {
	path := writeSpec(t, `
burst:
  probabilty: 0.2
`)
	_, err := LoadWorkloadSpec(path)
	if err == nil {
		t.Fatal("expected error for misspelled key")
	}
	if !strings.Contains(err.Error(), "probabilty") {
		t.Errorf("error should name the unknown key: %v", err)
	}
}

func TestLoadWorkloadSpec_MissingFile(t *testing.T) {
	if _, err := LoadWorkloadSpec("/nonexistent/workload.yaml"); err == nil {
		t.Fatal("expected error")
	}
}

func TestWorkloadSpec_WithDefaults_MatchesOriginalProgram(t *testing.T) {
	// GIVEN an empty spec and a pool of 4
	spec := DefaultSpec(4)

	// THEN durations are uniform 3..16, bursts uniform 1..8 with p=0.1, 20 initial requests
	if spec.Duration.Type != "uniform" || spec.Duration.Params["min"] != 3 || spec.Duration.Params["max"] != 16 {
		t.Errorf("unexpected default duration: %+v", spec.Duration)
	}
	if spec.Burst.Size.Type != "uniform" || spec.Burst.Size.Params["max"] != 8 {
		t.Errorf("unexpected default burst size: %+v", spec.Burst.Size)
	}
	if *spec.Burst.Probability != 0.1 {
		t.Errorf("burst probability = %f, want 0.1", *spec.Burst.Probability)
	}
	if *spec.InitialRequests != 20 {
		t.Errorf("initial requests = %d, want 20", *spec.InitialRequests)
	}
}

func TestWorkloadSpec_WithDefaults_KeepsSetFields(t *testing.T) {
	zero := 0
	p := 0.0
	spec := &WorkloadSpec{
		InitialRequests: &zero,
		Burst:           BurstSpec{Probability: &p},
		Duration:        DistSpec{Type: "constant", Params: map[string]float64{"value": 5}},
	}

	resolved := spec.WithDefaults(3)

	if *resolved.InitialRequests != 0 || *resolved.Burst.Probability != 0 {
		t.Error("explicit zero values must survive defaulting")
	}
	if resolved.Duration.Type != "constant" {
		t.Errorf("duration type = %q, want constant", resolved.Duration.Type)
	}
	if spec.Burst.Size.Type != "" {
		t.Error("WithDefaults must not modify the receiver")
	}
}

func TestWorkloadSpec_Validate_BurstAtMaximum(t *testing.T) {
	spec := WorkloadSpec{Burst: BurstSpec{Size: DistSpec{Type: "constant", Params: map[string]float64{"value": MaxBurstSize}}}}
	if err := spec.Validate(); err != nil {
		t.Errorf("burst of exactly %d should be valid: %v", MaxBurstSize, err)
	}
	// durations are not bounded by the burst maximum
	spec = WorkloadSpec{Duration: DistSpec{Type: "constant", Params: map[string]float64{"value": 1e9}}}
	if err := spec.Validate(); err != nil {
		t.Errorf("long duration should be valid: %v", err)
	}
}

func TestWorkloadSpec_Validate_Errors(t *testing.T) {
	neg := -1
	badP := 1.5
	tests := []struct {
		name string
		spec WorkloadSpec
	}{
		{"negative initial requests", WorkloadSpec{InitialRequests: &neg}},
		{"probability above one", WorkloadSpec{Burst: BurstSpec{Probability: &badP}}},
		{"unknown duration type", WorkloadSpec{Duration: DistSpec{Type: "pareto"}}},
		{"bad burst size", WorkloadSpec{Burst: BurstSpec{Size: DistSpec{Type: "uniform", Params: map[string]float64{"min": 0, "max": 2}}}}},
		{"constant burst above maximum", WorkloadSpec{Burst: BurstSpec{Size: DistSpec{Type: "constant", Params: map[string]float64{"value": 1e12}}}}},
		{"uniform burst above maximum", WorkloadSpec{Burst: BurstSpec{Size: DistSpec{Type: "uniform", Params: map[string]float64{"min": 1, "max": MaxBurstSize + 1}}}}},
		{"empirical burst above maximum", WorkloadSpec{Burst: BurstSpec{Size: DistSpec{Type: "empirical", Params: map[string]float64{"2": 1, "1000000": 1}}}}},
		{"bad origin", WorkloadSpec{Addresses: AddressSpec{Origin: "10.0.0.0/33"}}},
		{"ipv6 destination", WorkloadSpec{Addresses: AddressSpec{Destination: "fd00::/8"}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.spec.Validate(); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}
