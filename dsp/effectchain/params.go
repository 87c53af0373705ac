package effectchain

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"sync/atomic"
)

// ErrUnknownParam is returned when a parameter ID or name is not in the table.
var ErrUnknownParam = errors.New("unknown parameter")

// ParamID identifies one host-facing control.
type ParamID int

// Control identifiers, in table order.
const (
	Saturate ParamID = iota
	Tone
	Gain
	Taps
	Feedback
	Tap1Feedback
	Tap2Feedback
	Tap3Feedback
	Width
	DelayTime
	DelaySpread
	Diffuser
	Modulation
	Damping
	LowCut
	DryWet
	OutputGain

	paramCount
)

// ParamInfo describes the domain of one control.
type ParamInfo struct {
	ID      ParamID
	Name    string
	Alias   string
	Unit    string
	Min     float64
	Max     float64
	Default float64
	Toggle  bool
}

var paramInfos = [paramCount]ParamInfo{
	{ID: Saturate, Name: "Saturate", Min: 0, Max: 2, Default: 1},
	{ID: Tone, Name: "Tone", Unit: "Hz", Min: 800, Max: 20000, Default: 20000},
	{ID: Gain, Name: "Gain", Min: 0, Max: 2, Default: 1},
	{ID: Taps, Name: "Taps", Min: 0, Max: 3, Default: 0},
	{ID: Feedback, Name: "Feedback", Min: 0, Max: 0.9, Default: 0},
	{ID: Tap1Feedback, Name: "Tap 1 Feedback", Max: 1, Toggle: true},
	{ID: Tap2Feedback, Name: "Tap 2 Feedback", Max: 1, Toggle: true},
	{ID: Tap3Feedback, Name: "Tap 3 Feedback", Max: 1, Toggle: true},
	{ID: Width, Name: "Taps Width", Alias: "Width", Min: 0, Max: 1, Default: 0},
	{ID: DelayTime, Name: "Delay Time", Alias: "Time", Unit: "ms", Min: 50, Max: 1000, Default: 250},
	{ID: DelaySpread, Name: "Delay Spread", Alias: "Spread", Unit: "ms", Min: 0, Max: 1000, Default: 0},
	{ID: Diffuser, Name: "Diffuser", Min: 0, Max: 1, Default: 0},
	{ID: Modulation, Name: "Modulation", Min: 0, Max: 1, Default: 0},
	{ID: Damping, Name: "Damping", Unit: "Hz", Min: 2000, Max: 20000, Default: 20000},
	{ID: LowCut, Name: "Low Cut", Unit: "Hz", Min: 20, Max: 1000, Default: 20},
	{ID: DryWet, Name: "Dry/Wet", Alias: "Mix", Min: 0, Max: 1, Default: 0.5},
	{ID: OutputGain, Name: "Output Gain", Min: 0, Max: 2, Default: 1},
}

// String returns the display name of id.
func (id ParamID) String() string {
	if !id.valid() {
		return fmt.Sprintf("ParamID(%d)", int(id))
	}

	return paramInfos[id].Name
}

func (id ParamID) valid() bool { return id >= 0 && id < paramCount }

// Infos returns the parameter table in ID order.
func Infos() []ParamInfo {
	out := make([]ParamInfo, paramCount)
	copy(out, paramInfos[:])

	return out
}

// Info returns the table entry for id.
func Info(id ParamID) (ParamInfo, error) {
	if !id.valid() {
		return ParamInfo{}, fmt.Errorf("%w: %d", ErrUnknownParam, int(id))
	}

	return paramInfos[id], nil
}

// Lookup resolves a parameter by its display name or alias. Case and any
// character other than letters and digits are ignored, so "dry-wet",
// "Dry/Wet" and "drywet" all name the same control.
func Lookup(name string) (ParamID, error) {
	key := nameKey(name)
	if key != "" {
		for _, info := range paramInfos {
			if key == nameKey(info.Name) || (info.Alias != "" && key == nameKey(info.Alias)) {
				return info.ID, nil
			}
		}
	}

	return 0, fmt.Errorf("%w: %q", ErrUnknownParam, name)
}

func nameKey(name string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			return r
		case r >= 'A' && r <= 'Z':
			return r + 'a' - 'A'
		default:
			return -1
		}
	}, name)
}

// Clamp maps v into the domain of info. NaN and infinities map to the
// default; toggles snap to 0 or 1.
func (info ParamInfo) Clamp(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return info.Default
	}

	if info.Toggle {
		if v >= 0.5 {
			return 1
		}

		return 0
	}

	return min(max(v, info.Min), info.Max)
}

// Params is the shared control store. Control goroutines call Set; the audio
// goroutine calls Snapshot once per block. Each value is stored as atomic
// float64 bits, so a reader never sees a torn value.
type Params struct {
	values [paramCount]atomic.Uint64
}

// NewParams returns a store holding every default.
func NewParams() *Params {
	p := &Params{}
	p.ResetDefaults()

	return p
}

// ResetDefaults stores the default of every parameter.
func (p *Params) ResetDefaults() {
	for i := range p.values {
		p.values[i].Store(math.Float64bits(paramInfos[i].Default))
	}
}

// Set stores v for id after clamping it to the parameter domain.
func (p *Params) Set(id ParamID, v float64) error {
	if !id.valid() {
		return fmt.Errorf("%w: %d", ErrUnknownParam, int(id))
	}

	p.values[id].Store(math.Float64bits(paramInfos[id].Clamp(v)))

	return nil
}

// SetByName is Set with a Lookup.
func (p *Params) SetByName(name string, v float64) error {
	id, err := Lookup(name)
	if err != nil {
		return err
	}

	return p.Set(id, v)
}

// Get returns the stored value of id, or 0 for an unknown id.
func (p *Params) Get(id ParamID) float64 {
	if !id.valid() {
		return 0
	}

	return math.Float64frombits(p.values[id].Load())
}

// Snapshot reads every parameter exactly once.
func (p *Params) Snapshot() Settings {
	var raw [paramCount]float64
	for i := range raw {
		raw[i] = math.Float64frombits(p.values[i].Load())
	}

	return settingsFrom(raw)
}

// ErrAssignment is returned for arguments that are not of the form name=value.
var ErrAssignment = errors.New("expected name=value")

// Apply parses an assignment such as "delay-time=300" and stores it. Names
// are matched like Lookup.
func (p *Params) Apply(assignment string) error {
	name, raw, ok := strings.Cut(assignment, "=")
	if !ok {
		return fmt.Errorf("%w: %q", ErrAssignment, assignment)
	}

	value, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return fmt.Errorf("parameter %q: %w", name, err)
	}

	return p.SetByName(name, value)
}

