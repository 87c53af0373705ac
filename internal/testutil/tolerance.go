package testutil

import (
	"fmt"
	"math"
	"testing"
)

func finite(v float64) bool { return !math.IsNaN(v) && !math.IsInf(v, 0) }

// RequireSliceNearlyEqual fails t at the first index where got and want
// differ by more than eps, or if their lengths differ.
func RequireSliceNearlyEqual(t *testing.T, got, want []float64, eps float64) {
	t.Helper()

	d, i, err := maxDiff(got, want)
	if err != nil {
		t.Fatal(err)
	}

	if d > eps {
		t.Fatalf("index %d: got %v, want %v (|diff| %g > %g)", i, got[i], want[i], d, eps)
	}
}

// RequireFinite fails t on the first NaN or infinity in data.
func RequireFinite(t *testing.T, data []float64) {
	t.Helper()

	for i, v := range data {
		if !finite(v) {
			t.Fatalf("index %d: %v is not finite", i, v)
		}
	}
}

// RequireBounded fails t unless every sample is finite and |v| <= limit.
func RequireBounded(t *testing.T, data []float64, limit float64) {
	t.Helper()

	for i, v := range data {
		if !finite(v) || math.Abs(v) > limit {
			t.Fatalf("index %d: %v outside ±%v", i, v, limit)
		}
	}
}

// MaxAbsDiff returns max |a[i]-b[i]|. Slices of unequal length are an error.
func MaxAbsDiff(a, b []float64) (float64, error) {
	d, _, err := maxDiff(a, b)
	return d, err
}

// maxDiff also reports the index of the largest difference. NaN pairs
// count as infinitely far apart.
func maxDiff(a, b []float64) (float64, int, error) {
	if len(a) != len(b) {
		return 0, 0, fmt.Errorf("length mismatch: %d vs %d", len(a), len(b))
	}

	worst, at := 0.0, 0

	for i := range a {
		d := math.Abs(a[i] - b[i])
		if math.IsNaN(d) {
			d = math.Inf(1)
		}

		if d > worst {
			worst, at = d, i
		}
	}

	return worst, at, nil
}
