// Package testutil provides shared test assertions for the dispatch simulator.
// It has no dependency on sim/ so that both sim/ and its sub-packages can use it.
package testutil

import (
	"math"
	"testing"
)

// AssertNonDecreasing fails the test if seq ever decreases.
func AssertNonDecreasing(t *testing.T, name string, seq []int64) {
	t.Helper()
	for i := 1; i < len(seq); i++ {
		if seq[i] < seq[i-1] {
			t.Errorf("%s: element %d (%d) is less than element %d (%d)", name, i, seq[i], i-1, seq[i-1])
			return
		}
	}
}

// AssertConservation fails the test if submitted != processed + inFlight + queued + rejected.
func AssertConservation(t *testing.T, submitted, processed, inFlight, queued, rejected int) {
	t.Helper()
	if got := processed + inFlight + queued + rejected; got != submitted {
		t.Errorf("conservation violated: processed(%d) + in-flight(%d) + queued(%d) + rejected(%d) = %d, submitted = %d",
			processed, inFlight, queued, rejected, got, submitted)
	}
}

// AssertFloat64Equal compares two float64 values with relative tolerance.
func AssertFloat64Equal(t *testing.T, name string, want, got, relTol float64) {
	t.Helper()
	if want == 0 && got == 0 {
		return
	}
	diff := math.Abs(want - got)
	maxVal := math.Max(math.Abs(want), math.Abs(got))
	if diff/maxVal > relTol {
		t.Errorf("%s: got %v, want %v (diff=%v, relDiff=%v)", name, got, want, diff, diff/maxVal)
	}
}
