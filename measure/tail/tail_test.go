package tail

import (
	"errors"
	"math"
	"testing"

	"github.com/cwbudde/tapdancer/dsp/buffer"
)

// exponentialDecay has h(t) = exp(-ln(1000) * t / rt60), so it is 60 dB
// down after rt60 seconds.
func exponentialDecay(sampleRate, rt60, seconds float64, start int) []float64 {
	n := int(sampleRate * seconds)
	x := make([]float64, n)
	rate := math.Log(1000) / rt60

	for i := start; i < n; i++ {
		x[i] = math.Exp(-rate * float64(i-start) / sampleRate)
	}

	return x
}

// sampleDelay delays every channel by a fixed number of samples.
type sampleDelay struct {
	hist [][]float64
}

func newSampleDelay(channels, delay int) *sampleDelay {
	d := &sampleDelay{hist: make([][]float64, channels)}
	for ch := range d.hist {
		d.hist[ch] = make([]float64, delay)
	}

	return d
}

func (d *sampleDelay) Process(block *buffer.Block) {
	for ch := range block.Channels() {
		h := d.hist[ch]
		for i, x := range block.Channel(ch) {
			block.Channel(ch)[i] = h[0]
			copy(h, h[1:])
			h[len(h)-1] = x
		}
	}
}

func TestAnalyzeExponentialDecay(t *testing.T) {
	const sampleRate = 48000.0

	x := exponentialDecay(sampleRate, 1.2, 3, 960)

	m, err := NewAnalyzer(sampleRate).Analyze(x)
	if err != nil {
		t.Fatal(err)
	}

	if m.Onset != 960 || m.OnsetMs != 20 {
		t.Errorf("onset = %d (%.2f ms), want 960 (20 ms)", m.Onset, m.OnsetMs)
	}

	if m.PeakIndex != 960 || m.Peak != 1 {
		t.Errorf("peak = %v at %d, want 1 at 960", m.Peak, m.PeakIndex)
	}

	if math.Abs(m.RT60-1.2) > 0.05*1.2 {
		t.Errorf("RT60 = %.3f, want 1.2 (±5%%)", m.RT60)
	}

	if math.Abs(m.EDT-1.2) > 0.05*1.2 {
		t.Errorf("EDT = %.3f, want 1.2 (±5%%)", m.EDT)
	}

	// The energy decays at the same rate as the amplitude in dB.
	if math.Abs(m.TailMs-1200) > 60 {
		t.Errorf("TailMs = %.1f, want ~1200", m.TailMs)
	}
}

func TestAnalyzeSilence(t *testing.T) {
	m, err := NewAnalyzer(48000).Analyze(make([]float64, 100))
	if err != nil {
		t.Fatal(err)
	}

	if m.Onset != -1 || m.Energy != 0 || m.RT60 != 0 {
		t.Errorf("silence metrics = %+v", m)
	}
}

func TestAnalyzeErrors(t *testing.T) {
	if _, err := NewAnalyzer(48000).Analyze(nil); !errors.Is(err, ErrEmptyResponse) {
		t.Errorf("err = %v, want ErrEmptyResponse", err)
	}

	if _, err := NewAnalyzer(0).Analyze([]float64{1}); !errors.Is(err, ErrInvalidSampleRate) {
		t.Errorf("err = %v, want ErrInvalidSampleRate", err)
	}

	if _, err := NewAnalyzer(48000).RT60([]float64{1, 0, 0}); !errors.Is(err, ErrNoDecay) {
		t.Errorf("err = %v, want ErrNoDecay", err)
	}
}

func TestSchroederIsMonotonic(t *testing.T) {
	x := exponentialDecay(8000, 0.5, 1, 0)
	s := Schroeder(x)

	if s[0] != 0 {
		t.Fatalf("s[0] = %v, want 0 dB", s[0])
	}

	for i := 1; i < len(s); i++ {
		if s[i] > s[i-1] {
			t.Fatalf("Schroeder curve rises at %d: %v > %v", i, s[i], s[i-1])
		}
	}
}

func TestOnset(t *testing.T) {
	x := []float64{0, 1e-9, -0.5, 1}
	if got := Onset(x, 1e-6); got != 2 {
		t.Errorf("Onset = %d, want 2", got)
	}

	if got := Onset(x, 2); got != -1 {
		t.Errorf("Onset = %d, want -1", got)
	}
}

func TestCaptureRunsInBlocks(t *testing.T) {
	resp := Capture(newSampleDelay(2, 37), 2, 300, 64)

	for ch := range 2 {
		if got := Onset(resp[ch], DefaultOnsetThreshold); got != 37 {
			t.Errorf("channel %d onset = %d, want 37", ch, got)
		}

		if resp[ch][37] != 1 {
			t.Errorf("channel %d echo = %v, want 1", ch, resp[ch][37])
		}
	}
}
