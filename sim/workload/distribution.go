package workload

import (
	"fmt"
	"math"
	"math/rand"
	"sort"
	"strconv"
)

// Sampler generates positive integer samples (service durations, burst sizes).
type Sampler interface {
	// Sample returns a value >= 1.
	Sample(rng *rand.Rand) int64
}

// UniformSampler draws uniformly from the closed range [min, max].
type UniformSampler struct {
	min, max int64
}

func (s *UniformSampler) Sample(rng *rand.Rand) int64 {
	if s.max <= s.min {
		return atLeastOne(s.min)
	}
	return atLeastOne(s.min + rng.Int63n(s.max-s.min+1))
}

// GaussianSampler produces clamped Gaussian samples.
type GaussianSampler struct {
	mean, stdDev float64
	min, max     int64
}

func (s *GaussianSampler) Sample(rng *rand.Rand) int64 {
	if s.min == s.max {
		return atLeastOne(s.min)
	}
	val := rng.NormFloat64()*s.stdDev + s.mean
	clamped := math.Min(float64(s.max), math.Max(float64(s.min), val))
	return atLeastOne(int64(math.Round(clamped)))
}

// ExponentialSampler produces exponentially-distributed samples.
type ExponentialSampler struct {
	mean float64
}

func (s *ExponentialSampler) Sample(rng *rand.Rand) int64 {
	val := rng.ExpFloat64() * s.mean
	if math.IsInf(val, 0) || math.IsNaN(val) {
		return 1
	}
	return atLeastOne(int64(math.Round(val)))
}

// ConstantSampler always returns the same fixed value.
type ConstantSampler struct {
	value int64
}

func (s *ConstantSampler) Sample(_ *rand.Rand) int64 {
	return atLeastOne(s.value)
}

// EmpiricalPDFSampler samples from an empirical probability distribution
// using inverse CDF via binary search.
type EmpiricalPDFSampler struct {
	values []int64    // sorted sample values
	cdf    []float64 // cumulative probabilities (same length as values)
}

// NewEmpiricalPDFSampler creates a sampler from a PDF map (value → probability).
// Automatically normalizes probabilities if they don't sum to 1.0.
func NewEmpiricalPDFSampler(pdf map[int64]float64) *EmpiricalPDFSampler {
	keys := make([]int64, 0, len(pdf))
	for k := range pdf {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })

	totalProb := 0.0
	for _, k := range keys {
		if pdf[k] > 0 {
			totalProb += pdf[k]
		}
	}

	values := make([]int64, 0, len(keys))
	cdf := make([]float64, 0, len(keys))
	cumulative := 0.0
	for _, k := range keys {
		p := pdf[k]
		if p <= 0 {
			continue // skip zero or negative probabilities
		}
		cumulative += p / totalProb
		values = append(values, k)
		cdf = append(cdf, cumulative)
	}
	if len(cdf) > 0 {
		cdf[len(cdf)-1] = 1.0
	}

	return &EmpiricalPDFSampler{values: values, cdf: cdf}
}

func (s *EmpiricalPDFSampler) Sample(rng *rand.Rand) int64 {
	if len(s.values) == 0 {
		return 1
	}
	if len(s.values) == 1 {
		return atLeastOne(s.values[0])
	}
	u := rng.Float64()
	idx := sort.SearchFloat64s(s.cdf, u)
	if idx >= len(s.values) {
		idx = len(s.values) - 1
	}
	return atLeastOne(s.values[idx])
}

func atLeastOne(v int64) int64 {
	if v < 1 {
		return 1
	}
	return v
}

// requireParam checks that all required keys exist in a params map.
func requireParam(params map[string]float64, keys ...string) error {
	for _, k := range keys {
		if _, ok := params[k]; !ok {
			return fmt.Errorf("distribution requires parameter %q", k)
		}
	}
	return nil
}

// NewSampler creates a Sampler from a DistSpec.
func NewSampler(spec DistSpec) (Sampler, error) {
	switch spec.Type {
	case "uniform":
		if err := requireParam(spec.Params, "min", "max"); err != nil {
			return nil, err
		}
		lo, hi := int64(spec.Params["min"]), int64(spec.Params["max"])
		if lo < 1 || hi < lo {
			return nil, fmt.Errorf("uniform distribution needs 1 <= min <= max, got [%d, %d]", lo, hi)
		}
		return &UniformSampler{min: lo, max: hi}, nil

	case "gaussian":
		if err := requireParam(spec.Params, "mean", "std_dev", "min", "max"); err != nil {
			return nil, err
		}
		lo, hi := int64(spec.Params["min"]), int64(spec.Params["max"])
		if hi < lo {
			return nil, fmt.Errorf("gaussian distribution needs min <= max, got [%d, %d]", lo, hi)
		}
		return &GaussianSampler{
			mean:   spec.Params["mean"],
			stdDev: spec.Params["std_dev"],
			min:    lo,
			max:    hi,
		}, nil

	case "exponential":
		if err := requireParam(spec.Params, "mean"); err != nil {
			return nil, err
		}
		if spec.Params["mean"] <= 0 {
			return nil, fmt.Errorf("exponential mean must be positive, got %f", spec.Params["mean"])
		}
		return &ExponentialSampler{mean: spec.Params["mean"]}, nil

	case "constant":
		if err := requireParam(spec.Params, "value"); err != nil {
			return nil, err
		}
		return &ConstantSampler{value: int64(spec.Params["value"])}, nil

	case "empirical":
		if len(spec.Params) == 0 {
			return nil, fmt.Errorf("empirical distribution requires inline params")
		}
		// Inline params used as PDF (value → probability)
		pdf := make(map[int64]float64, len(spec.Params))
		for k, v := range spec.Params {
			value, err := strconv.ParseInt(k, 10, 64)
			if err != nil {
				return nil, fmt.Errorf("empirical PDF key %q is not an integer: %w", k, err)
			}
			if _, dup := pdf[value]; dup {
				return nil, fmt.Errorf("empirical PDF key %q duplicates value %d", k, value)
			}
			pdf[value] = v
		}
		sampler := NewEmpiricalPDFSampler(pdf)
		if len(sampler.values) == 0 {
			return nil, fmt.Errorf("empirical distribution has no bins with positive probability")
		}
		return sampler, nil

	default:
		return nil, fmt.Errorf("unknown distribution type %q", spec.Type)
	}
}
