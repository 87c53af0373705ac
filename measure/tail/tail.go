package tail

import (
	"errors"
	"math"

	"github.com/cwbudde/tapdancer/dsp/buffer"
)

// Errors returned by the analyzer.
var (
	ErrEmptyResponse     = errors.New("tail: response is empty")
	ErrInvalidSampleRate = errors.New("tail: sample rate must be positive")
	ErrNoDecay           = errors.New("tail: insufficient decay for a decay-time estimate")
)

// DefaultOnsetThreshold is the absolute level that counts as signal.
const DefaultOnsetThreshold = 1e-6

const floorDB = -200.0

// Metrics summarizes one channel of an impulse response.
type Metrics struct {
	Onset      int     // first sample whose magnitude exceeds the onset threshold, -1 if none
	OnsetMs    float64 // Onset in milliseconds
	PeakIndex  int     // index of the largest magnitude
	Peak       float64 // largest magnitude
	Energy     float64 // sum of squares
	EDT        float64 // early decay time in seconds, 0 to -10 dB
	RT60       float64 // decay time in seconds from -5 to -35 dB, else -5 to -25 dB
	TailMs     float64 // time after onset until the integrated energy is 60 dB down
	CenterTime float64 // energy centroid in seconds
}

// Analyzer computes Metrics at a fixed sample rate.
type Analyzer struct {
	SampleRate     float64
	OnsetThreshold float64
}

// NewAnalyzer returns an analyzer with DefaultOnsetThreshold.
func NewAnalyzer(sampleRate float64) *Analyzer {
	return &Analyzer{SampleRate: sampleRate, OnsetThreshold: DefaultOnsetThreshold}
}

// Analyze measures x. RT60 and EDT are 0 when the response does not decay
// far enough; that is not an error.
func (a *Analyzer) Analyze(x []float64) (Metrics, error) {
	if len(x) == 0 {
		return Metrics{}, ErrEmptyResponse
	}

	if a.SampleRate <= 0 {
		return Metrics{}, ErrInvalidSampleRate
	}

	m := Metrics{Onset: Onset(x, a.OnsetThreshold)}
	for i, v := range x {
		av := math.Abs(v)
		if av > m.Peak {
			m.Peak = av
			m.PeakIndex = i
		}

		m.Energy += v * v
	}

	if m.Onset < 0 {
		return m, nil
	}

	m.OnsetMs = a.ms(m.Onset)

	decay := Schroeder(x[m.Onset:])
	m.EDT = a.decayTime(decay, 0, -10)

	m.RT60 = a.decayTime(decay, -5, -35)
	if m.RT60 == 0 {
		m.RT60 = a.decayTime(decay, -5, -25)
	}

	for i, db := range decay {
		if db <= -60 {
			m.TailMs = a.ms(i)
			break
		}
	}

	var weighted float64
	for i, v := range x {
		weighted += float64(i) * v * v
	}

	if m.Energy > 0 {
		m.CenterTime = weighted / m.Energy / a.SampleRate
	}

	return m, nil
}

// RT60 returns the decay time of x in seconds, or ErrNoDecay.
func (a *Analyzer) RT60(x []float64) (float64, error) {
	m, err := a.Analyze(x)
	if err != nil {
		return 0, err
	}

	if m.RT60 == 0 {
		return 0, ErrNoDecay
	}

	return m.RT60, nil
}

// Onset returns the index of the first sample with |x| > threshold, or -1.
func Onset(x []float64, threshold float64) int {
	for i, v := range x {
		if math.Abs(v) > threshold {
			return i
		}
	}

	return -1
}

// Schroeder returns the backward-integrated energy of x in dB relative to
// the total, floored at -200 dB. An all-zero x yields all floor values.
func Schroeder(x []float64) []float64 {
	out := make([]float64, len(x))

	var sum float64
	for i := len(x) - 1; i >= 0; i-- {
		sum += x[i] * x[i]
		out[i] = sum
	}

	total := 0.0
	if len(out) > 0 {
		total = out[0]
	}

	for i, e := range out {
		if total <= 0 || e <= 0 {
			out[i] = floorDB
			continue
		}

		out[i] = 10 * math.Log10(e/total)
	}

	return out
}

// decayTime fits a line to decay between startDB and endDB and returns the
// time it needs to fall 60 dB, or 0.
func (a *Analyzer) decayTime(decay []float64, startDB, endDB float64) float64 {
	start, end := -1, -1

	for i, v := range decay {
		if start < 0 && v <= startDB {
			start = i
		}

		if start >= 0 && v <= endDB {
			end = i
			break
		}
	}

	if start < 0 || end <= start {
		return 0
	}

	var sx, sy, sxx, sxy float64

	n := float64(end - start + 1)
	for i := start; i <= end; i++ {
		x := float64(i - start)
		sx += x
		sy += decay[i]
		sxx += x * x
		sxy += x * decay[i]
	}

	den := n*sxx - sx*sx
	if den == 0 {
		return 0
	}

	slope := (n*sxy - sx*sy) / den // dB per sample
	if slope >= 0 {
		return 0
	}

	return -60 / (slope * a.SampleRate)
}

func (a *Analyzer) ms(samples int) float64 {
	return float64(samples) * 1000 / a.SampleRate
}

// Processor is anything that processes blocks in place.
type Processor interface {
	Process(block *buffer.Block)
}

// Capture feeds a unit impulse on every channel through p and returns
// length samples of output per channel, processed in blocks of blockSize.
func Capture(p Processor, channels, length, blockSize int) [][]float64 {
	out := make([][]float64, channels)
	for ch := range out {
		out[ch] = make([]float64, length)
		if length > 0 {
			out[ch][0] = 1
		}
	}

	if blockSize <= 0 {
		return out
	}

	view := buffer.New(channels, 0)
	whole := buffer.FromChannels(out)

	for start := 0; start < length; start += blockSize {
		whole.View(view, start, min(start+blockSize, length))
		p.Process(view)
	}

	return out
}
