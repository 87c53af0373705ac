package diffusion

import (
	"math"
	"testing"

	"github.com/cwbudde/tapdancer/dsp/buffer"
	"github.com/cwbudde/tapdancer/dsp/core"
	"github.com/cwbudde/tapdancer/internal/testutil"
)

func newPrepared(t testing.TB, blockSize int) *Stage {
	t.Helper()
	s := New()
	spec := core.NewProcessSpec(core.WithBlockSize(blockSize))
	if err := s.Prepare(spec); err != nil {
		t.Fatalf("Prepare: %v", err)
	}
	return s
}

func TestFeedbackFollowsDecay(t *testing.T) {
	s := New()
	for _, decay := range []float64{600, 1200, 1800} {
		s.UpdateParams(decay, 20000, 0, 0)
		if got, want := s.Feedback(), decay/4000; math.Abs(got-want) > 1e-15 {
			t.Fatalf("decay=%v feedback=%v want %v", decay, got, want)
		}
	}
}

func TestDelayRatios(t *testing.T) {
	s := New()
	s.UpdateParams(1000, 20000, 0, 0)

	tests := []struct {
		name string
		got  float64
		want float64
	}{
		{"first", s.first.Delay(), 1000},
		{"second", s.second.Delay(), 1390},
		{"modulated", s.modulated.Delay(), 1930},
		{"loop", s.loop.Delay(), 2000},
		{"loop feedback", s.loop.Feedback(), 0.6},
	}
	for _, tt := range tests {
		if math.Abs(tt.got-tt.want) > 1e-9 {
			t.Errorf("%s = %v, want %v", tt.name, tt.got, tt.want)
		}
	}
}

func TestFullScaleNoiseKeepsLoopBounded(t *testing.T) {
	const blockSize = 512
	s := newPrepared(t, blockSize)
	s.UpdateParams(1800, 20000, 1.4, 40)

	for i := range 500 {
		noise := testutil.NoiseChannels(int64(i), 1, 2, blockSize)
		block := buffer.FromChannels(noise)
		s.Process(block)

		for ch := range 2 {
			testutil.RequireBounded(t, s.Carry(ch), 1)
			testutil.RequireFinite(t, block.Channel(ch))
			testutil.RequireBounded(t, block.Channel(ch), 14)
		}
	}
}

func TestTailDecaysAfterImpulse(t *testing.T) {
	const blockSize = 1024
	s := newPrepared(t, blockSize)
	s.UpdateParams(1200, 8000, 0, 0)

	energies := make([]float64, 40)
	for i := range energies {
		var in [][]float64
		if i == 0 {
			in = [][]float64{testutil.Impulse(blockSize, 0), testutil.Impulse(blockSize, 0)}
		} else {
			in = [][]float64{make([]float64, blockSize), make([]float64, blockSize)}
		}
		block := buffer.FromChannels(in)
		s.Process(block)
		energies[i] = testutil.Energy(block.Channel(0))
	}

	if energies[2] == 0 {
		t.Fatal("expected diffused energy after the impulse block")
	}
	if energies[39] >= energies[2] {
		t.Fatalf("tail did not decay: e[2]=%g e[39]=%g", energies[2], energies[39])
	}
}

func TestUpdateParamsMemoizesFilters(t *testing.T) {
	s := newPrepared(t, 64)
	before := s.FilterUpdates()

	s.UpdateParams(s.Decay(), defaultDamp, 0.5, 10)
	s.UpdateParams(900, defaultDamp, 0.5, 10)
	if s.FilterUpdates() != before {
		t.Fatalf("filter updates=%d want %d", s.FilterUpdates(), before)
	}

	s.UpdateParams(900, 5000, 0.5, 10)
	if s.FilterUpdates() != before+1 {
		t.Fatalf("filter updates=%d want %d", s.FilterUpdates(), before+1)
	}
}

func TestVariableBlockLengths(t *testing.T) {
	s := newPrepared(t, 512)
	s.UpdateParams(1500, 12000, 0.7, 20)

	for i, n := range []int{256, 512, 1, 128, 512, 0, 333} {
		block := buffer.FromChannels(testutil.NoiseChannels(int64(i), 0.8, 2, n))
		s.Process(block)
		if s.carry.Len() != n {
			t.Fatalf("carry len=%d want %d", s.carry.Len(), n)
		}
		testutil.RequireFinite(t, block.Channel(0))
		testutil.RequireFinite(t, block.Channel(1))
	}
}

func TestPrepareTwiceIsBitIdentical(t *testing.T) {
	s := New()
	s.UpdateParams(1300, 9000, 1, 30)
	spec := core.NewProcessSpec(core.WithBlockSize(256))

	run := func() [][]float64 {
		if err := s.Prepare(spec); err != nil {
			t.Fatalf("Prepare: %v", err)
		}
		var out [][]float64
		for i := range 8 {
			block := buffer.FromChannels(testutil.NoiseChannels(int64(i), 0.5, 2, 256))
			s.Process(block)
			out = append(out, block.Channel(0), block.Channel(1))
		}
		return out
	}

	first := run()
	second := run()
	for i := range first {
		testutil.RequireSliceNearlyEqual(t, first[i], second[i], 0)
	}
}

func TestResetSilences(t *testing.T) {
	s := newPrepared(t, 256)
	s.Process(buffer.FromChannels(testutil.NoiseChannels(1, 1, 2, 256)))
	s.Reset()

	block := buffer.New(2, 256)
	s.Process(block)
	for ch := range 2 {
		if p := testutil.PeakAbs(block.Channel(ch)); p != 0 {
			t.Fatalf("channel %d peak after Reset=%v want 0", ch, p)
		}
	}
}

func BenchmarkProcess(b *testing.B) {
	s := newPrepared(b, 512)
	s.UpdateParams(1200, 12000, 0.7, 28)
	block := buffer.FromChannels(testutil.NoiseChannels(1, 0.5, 2, 512))

	b.ReportAllocs()
	for b.Loop() {
		s.Process(block)
	}
}
