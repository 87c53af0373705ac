package effectchain

import "math"

const (
	diffuserDecayBase   = 600.0
	diffuserDecayRange  = 1200.0
	diffuserWetCurve    = 1.5
	diffuserModRate     = 1.4
	diffuserModDepth    = 40.0
	tapModRate          = 1.5
	tapModDepth         = 100.0
	defaultCrossfeed    = 0.6
	tapFeedbackControls = 3
)

// Settings is an immutable view of every control taken at one instant.
type Settings struct {
	Saturate    float64
	Tone        float64
	Gain        float64
	Taps        float64
	Feedback    float64
	TapFeedback [tapFeedbackControls]bool
	Width       float64
	DelayTime   float64
	DelaySpread float64
	Diffuser    float64
	Modulation  float64
	Damping     float64
	LowCut      float64
	DryWet      float64
	OutputGain  float64
}

// DefaultSettings returns the settings of a fresh parameter store.
func DefaultSettings() Settings {
	var raw [paramCount]float64
	for i := range raw {
		raw[i] = paramInfos[i].Default
	}

	return settingsFrom(raw)
}

func settingsFrom(raw [paramCount]float64) Settings {
	return Settings{
		Saturate:    raw[Saturate],
		Tone:        raw[Tone],
		Gain:        raw[Gain],
		Taps:        raw[Taps],
		Feedback:    raw[Feedback],
		TapFeedback: [tapFeedbackControls]bool{raw[Tap1Feedback] >= 0.5, raw[Tap2Feedback] >= 0.5, raw[Tap3Feedback] >= 0.5},
		Width:       raw[Width],
		DelayTime:   raw[DelayTime],
		DelaySpread: raw[DelaySpread],
		Diffuser:    raw[Diffuser],
		Modulation:  raw[Modulation],
		Damping:     raw[Damping],
		LowCut:      raw[LowCut],
		DryWet:      raw[DryWet],
		OutputGain:  raw[OutputGain],
	}
}

// DiffuserDecay returns the diffusion decay in samples.
func (s Settings) DiffuserDecay() float64 {
	return s.Diffuser*diffuserDecayRange + diffuserDecayBase
}

// DiffuserWet returns the wet proportion of the diffusion sub-mix.
func (s Settings) DiffuserWet() float64 {
	return math.Tanh(diffuserWetCurve * s.Diffuser)
}

// DiffuserModulation returns the diffusion LFO rate in Hz and its depth in
// samples. The second diffuser runs with the negated depth.
func (s Settings) DiffuserModulation() (rateHz, depth float64) {
	return s.Modulation * diffuserModRate, s.Modulation * diffuserModDepth
}

// TapModulation returns the tap LFO rate in Hz and its depth in samples.
func (s Settings) TapModulation() (rateHz, depth float64) {
	return s.Modulation * tapModRate, s.Modulation * tapModDepth
}
