// Package multitap implements a modulated multi-tap delay.
//
// A single taps control in [0, N] fades the taps in one after another: tap i
// plays at gain clamp(taps-i, 0, 1). Tap i sits at time + i*spread
// milliseconds. Each tap owns its delay line, modulation LFOs, a damping
// low-pass in its feedback path and an optional feedback loop.
//
// A tap whose gain is zero is not processed at all. Its line and LFOs keep
// their state until the tap is faded back in.
package multitap
