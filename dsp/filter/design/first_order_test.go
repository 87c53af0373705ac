package design

import (
	"math"
	"testing"
)

func TestFirstOrderLowpassResponse(t *testing.T) {
	const fs = 48000.0
	for _, fc := range []float64{800, 2000, 10000, 20000} {
		c := FirstOrderLowpass(fc, fs)

		if dc := c.MagnitudeDB(0, fs); math.Abs(dc) > 1e-9 {
			t.Fatalf("fc=%v: DC gain %v dB, want 0", fc, dc)
		}
		if cut := c.MagnitudeDB(fc, fs); math.Abs(cut+10*math.Log10(2)) > 1e-6 {
			t.Fatalf("fc=%v: gain at cutoff %v dB, want -3.01", fc, cut)
		}
		if c.B2 != 0 || c.A2 != 0 {
			t.Fatalf("fc=%v: not first order: %+v", fc, c)
		}
	}
}

func TestFirstOrderHighpassResponse(t *testing.T) {
	const fs = 44100.0
	for _, fc := range []float64{20, 200, 1000} {
		c := FirstOrderHighpass(fc, fs)

		if ny := c.MagnitudeDB(fs/2-1e-6, fs); math.Abs(ny) > 1e-6 {
			t.Fatalf("fc=%v: Nyquist gain %v dB, want 0", fc, ny)
		}
		if cut := c.MagnitudeDB(fc, fs); math.Abs(cut+10*math.Log10(2)) > 1e-6 {
			t.Fatalf("fc=%v: gain at cutoff %v dB, want -3.01", fc, cut)
		}
		if dc := c.MagnitudeSquared(0, fs); dc > 1e-20 {
			t.Fatalf("fc=%v: DC power %v, want 0", fc, dc)
		}
	}
}

func TestCutoffAboveNyquistIsClamped(t *testing.T) {
	c := FirstOrderLowpass(20000, 32000)
	for _, v := range []float64{c.B0, c.B1, c.A1} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			t.Fatalf("non-finite coefficients %+v", c)
		}
	}
	if math.Abs(c.A1) >= 1 {
		t.Fatalf("unstable pole %v", c.A1)
	}
}

func TestInvalidSampleRateIsPassthrough(t *testing.T) {
	c := FirstOrderHighpass(100, 0)
	if c.B0 != 1 || c.B1 != 0 || c.A1 != 0 {
		t.Fatalf("got %+v, want passthrough", c)
	}
}
