package biquad

import (
	"math"
	"testing"
)

func TestSectionImpulse(t *testing.T) {
	// y[n] = 0.5 x[n] + 0.5 x[n-1] + 0.5 y[n-1]
	s := Section{Coefficients: Coefficients{B0: 0.5, B1: 0.5, A1: -0.5}}

	want := []float64{0.5, 0.75, 0.375, 0.1875}
	for n, w := range want {
		x := 0.0
		if n == 0 {
			x = 1
		}

		if y := s.ProcessSample(x); math.Abs(y-w) > 1e-15 {
			t.Fatalf("n=%d: got %v, want %v", n, y, w)
		}
	}
}

func TestSectionSecondOrderImpulse(t *testing.T) {
	s := Section{Coefficients: Coefficients{B0: 1, A1: -1, A2: 0.5}}

	// y[n] = x[n] + y[n-1] - 0.5 y[n-2]
	want := []float64{1, 1, 0.5, 0, -0.25}
	for n, w := range want {
		x := 0.0
		if n == 0 {
			x = 1
		}

		if y := s.ProcessSample(x); math.Abs(y-w) > 1e-15 {
			t.Fatalf("n=%d: got %v, want %v", n, y, w)
		}
	}
}

func TestSectionBlockMatchesSample(t *testing.T) {
	c := Coefficients{B0: 0.2, B1: 0.3, B2: 0.1, A1: -0.5, A2: 0.1}
	ref := Section{Coefficients: c}
	blk := Section{Coefficients: c}

	buf := make([]float64, 64)
	want := make([]float64, len(buf))

	for i := range buf {
		buf[i] = math.Sin(float64(i) * 0.3)
		want[i] = ref.ProcessSample(buf[i])
	}

	// Two calls to exercise state carry between blocks.
	blk.ProcessBlock(buf[:20])
	blk.ProcessBlock(buf[20:])

	for i := range buf {
		if math.Abs(buf[i]-want[i]) > 1e-12 {
			t.Fatalf("sample %d: block=%v sample=%v", i, buf[i], want[i])
		}
	}
}

func TestSectionReset(t *testing.T) {
	s := Section{Coefficients: Coefficients{B0: 0.5, B1: 0.5, A1: -0.3}}
	first := s.ProcessSample(1)

	s.ProcessSample(0.7)
	s.Reset()

	if got := s.ProcessSample(1); got != first {
		t.Fatalf("after Reset got %v, want %v", got, first)
	}
}

func TestBankCopiesCoefficientsPerChannel(t *testing.T) {
	var b Bank
	b.Prepare(2)

	c := Coefficients{B0: 0.5, B1: 0.5}
	b.SetCoefficients(c)

	if b.Coefficients() != c {
		t.Fatalf("Coefficients() = %v, want %v", b.Coefficients(), c)
	}

	if b.Updates() != 1 {
		t.Fatalf("Updates() = %d, want 1", b.Updates())
	}

	// Channels keep independent state.
	b.ProcessSample(0, 1)

	if got := b.ProcessSample(1, 0); got != 0 {
		t.Fatalf("channel 1 output %v, want 0", got)
	}

	if got := b.ProcessSample(0, 0); got != 0.5 {
		t.Fatalf("channel 0 output %v, want 0.5", got)
	}
}

func TestBankPrepareKeepsCoefficients(t *testing.T) {
	var b Bank

	b.SetCoefficients(Coefficients{B0: 0.25})
	b.Prepare(3)

	if b.Channels() != 3 {
		t.Fatalf("Channels() = %d, want 3", b.Channels())
	}

	buf := []float64{4}
	b.ProcessBlock(2, buf)

	if buf[0] != 1 {
		t.Fatalf("got %v, want coefficients applied after Prepare", buf[0])
	}
}
