package multitap

import (
	"fmt"
	"math"

	"github.com/cwbudde/tapdancer/dsp/buffer"
	"github.com/cwbudde/tapdancer/dsp/core"
	"github.com/cwbudde/tapdancer/dsp/delay"
	"github.com/cwbudde/tapdancer/dsp/filter/biquad"
	"github.com/cwbudde/tapdancer/dsp/filter/design"
	"github.com/cwbudde/tapdancer/dsp/mix"
	"github.com/cwbudde/tapdancer/dsp/oscillator"
	"github.com/cwbudde/tapdancer/internal/assert"
)

const (
	// DefaultTaps is the tap count used by the effect chain.
	DefaultTaps = 3

	// MaxTimeMs is the longest tap delay, spread included.
	MaxTimeMs = 3500.0

	// MaxModAmount is the deepest supported modulation in samples.
	MaxModAmount = 100.0

	defaultTimeMs  = 250.0
	defaultDamping = 20000.0
)

type tap struct {
	line    delay.Line
	osc     []oscillator.Sine
	damp    biquad.Bank
	scratch *buffer.Block

	delay      float64
	gain       float64
	applied    float64
	feedbackOn bool
	pan        float64
}

// Delay is a multi-tap delay with per-tap feedback, panning and damping.
type Delay struct {
	taps []tap

	spec     core.ProcessSpec
	prepared bool

	control   float64
	feedback  float64
	width     float64
	timeMs    float64
	spreadMs  float64
	modRate   float64
	modAmount float64
	damping   float64
}

// NewDelay returns a delay with n taps. n < 1 is treated as 1.
func NewDelay(n int) *Delay {
	n = max(n, 1)
	return &Delay{
		taps:    make([]tap, n),
		timeMs:  defaultTimeMs,
		damping: defaultDamping,
	}
}

// Prepare allocates the tap lines and scratch blocks for spec and resets all
// state. Settings are kept; taps after the first fade in from silence on the
// next block.
func (d *Delay) Prepare(spec core.ProcessSpec) error {
	if err := spec.Validate(); err != nil {
		return err
	}

	maxLength := int(math.Ceil(core.MsToSamples(MaxTimeMs, spec.SampleRate)+MaxModAmount)) + 2
	for i := range d.taps {
		tp := &d.taps[i]
		if err := tp.line.Prepare(maxLength, spec.Channels, spec.SampleRate); err != nil {
			return fmt.Errorf("multitap: tap %d: %w", i, err)
		}
		tp.osc = make([]oscillator.Sine, spec.Channels)
		for ch := range tp.osc {
			tp.osc[ch].SetFrequency(d.modRate)
			tp.osc[ch].Prepare(spec.SampleRate)
		}
		tp.damp.Prepare(spec.Channels)
		tp.scratch = buffer.New(spec.Channels, spec.MaxBlockSize)
		tp.applied = 0
	}

	d.spec = spec
	d.prepared = true
	d.updateDelays()
	d.updateDamping()
	d.updatePans()
	d.updateGains()
	return nil
}

// Taps returns the tap count.
func (d *Delay) Taps() int { return len(d.taps) }

// SetTaps sets the taps control in [0, Taps()].
func (d *Delay) SetTaps(t float64) {
	t = core.Clamp(t, 0, float64(len(d.taps)))
	if t == d.control {
		return
	}
	d.control = t
	d.updateGains()
}

// TapGains returns the current gain of every tap.
func (d *Delay) TapGains() []float64 {
	out := make([]float64, len(d.taps))
	for i := range d.taps {
		out[i] = d.taps[i].gain
	}
	return out
}

// SetFeedback sets the feedback coefficient shared by taps with feedback on.
func (d *Delay) SetFeedback(f float64) { d.feedback = f }

// SetTapFeedback turns the feedback loop of tap i on or off.
func (d *Delay) SetTapFeedback(i int, on bool) {
	if i < 0 || i >= len(d.taps) {
		return
	}
	d.taps[i].feedbackOn = on
}

// SetWidth sets the stereo pan width in [0, 1].
func (d *Delay) SetWidth(w float64) {
	w = core.Clamp(w, 0, 1)
	if w == d.width {
		return
	}
	d.width = w
	d.updatePans()
}

// SetTime sets the base delay time in milliseconds.
func (d *Delay) SetTime(ms float64) {
	if ms == d.timeMs {
		return
	}
	d.timeMs = ms
	d.updateDelays()
}

// SetSpread sets the time added per tap index in milliseconds.
func (d *Delay) SetSpread(ms float64) {
	if ms == d.spreadMs {
		return
	}
	d.spreadMs = ms
	d.updateDelays()
}

// SetModulation sets the LFO rate in Hz and the depth in samples.
func (d *Delay) SetModulation(rateHz, amount float64) {
	d.modAmount = core.Clamp(amount, 0, MaxModAmount)
	if rateHz == d.modRate {
		return
	}
	d.modRate = rateHz
	for i := range d.taps {
		for ch := range d.taps[i].osc {
			d.taps[i].osc[ch].SetFrequency(rateHz)
		}
	}
}

// SetDamping sets the cutoff of the feedback-path low-pass in Hz.
func (d *Delay) SetDamping(hz float64) {
	if hz == d.damping {
		return
	}
	d.damping = hz
	d.updateDamping()
}

// TapDelay returns the base delay of tap i in samples.
func (d *Delay) TapDelay(i int) float64 { return d.taps[i].delay }

// DampingUpdates returns the number of damping coefficient recomputes of
// tap 0 since Prepare.
func (d *Delay) DampingUpdates() int { return d.taps[0].damp.Updates() }

// Process replaces block with the sum of the active taps.
func (d *Delay) Process(block *buffer.Block) {
	assert.That(d.prepared, "multitap: Process before Prepare")
	if !d.prepared {
		return
	}
	n := block.Len()
	assert.That(n <= d.spec.MaxBlockSize, "multitap: block length %d exceeds prepared %d", n, d.spec.MaxBlockSize)
	n = min(n, d.spec.MaxBlockSize)
	channels := min(block.Channels(), d.spec.Channels)

	for i := range d.taps {
		tp := &d.taps[i]
		if tp.gain <= 0 {
			continue
		}
		tp.scratch.CopyFrom(block)
		tp.scratch.SetLen(n)

		fb := 0.0
		if tp.feedbackOn {
			fb = d.feedback
		}
		for ch := 0; ch < channels; ch++ {
			d.processTap(tp, ch, tp.scratch.Channel(ch), fb)
		}
		if d.width != 0 && channels == 2 {
			mix.Pan(tp.scratch, tp.pan)
		}
	}

	first := &d.taps[0]
	if first.gain <= 0 {
		block.Zero()
	} else {
		for ch := 0; ch < channels; ch++ {
			copy(block.Channel(ch)[:n], first.scratch.Channel(ch))
		}
		block.ApplyGain(first.gain)
	}
	first.applied = first.gain

	for i := 1; i < len(d.taps); i++ {
		tp := &d.taps[i]
		if tp.gain <= 0 {
			tp.applied = 0
			continue
		}
		for ch := 0; ch < channels; ch++ {
			block.AddFromWithRamp(ch, tp.scratch.Channel(ch), tp.applied, tp.gain)
		}
		tp.applied = tp.gain
	}
}

func (d *Delay) processTap(tp *tap, ch int, buf []float64, fb float64) {
	osc := &tp.osc[ch]
	for i, x := range buf {
		m := osc.Next() * d.modAmount
		if ch == 1 {
			m = -m
		}
		delayed := tp.line.Pop(ch, max(tp.delay+m, 1))
		damped := tp.damp.ProcessSample(ch, delayed)
		tp.line.Push(ch, core.FlushDenormals(x+fb*damped))
		buf[i] = delayed
	}
}

// Reset clears every tap's history and restarts the LFOs.
func (d *Delay) Reset() {
	for i := range d.taps {
		tp := &d.taps[i]
		tp.line.Reset()
		tp.damp.Reset()
		for ch := range tp.osc {
			tp.osc[ch].Reset()
		}
		tp.applied = 0
	}
}

func (d *Delay) updateGains() {
	for i := range d.taps {
		d.taps[i].gain = core.Clamp(d.control-float64(i), 0, 1)
	}
}

func (d *Delay) updatePans() {
	for i := range d.taps {
		switch i % 3 {
		case 0:
			d.taps[i].pan = d.width
		case 1:
			d.taps[i].pan = -d.width
		default:
			d.taps[i].pan = 0
		}
	}
}

func (d *Delay) updateDelays() {
	if !d.prepared {
		return
	}
	for i := range d.taps {
		ms := core.Clamp(d.timeMs+float64(i)*d.spreadMs, 0, MaxTimeMs)
		d.taps[i].delay = max(core.MsToSamples(ms, d.spec.SampleRate), 1)
	}
}

func (d *Delay) updateDamping() {
	if !d.prepared {
		return
	}
	c := design.FirstOrderLowpass(d.damping, d.spec.SampleRate)
	for i := range d.taps {
		d.taps[i].damp.SetCoefficients(c)
	}
}
