// Package tail measures the impulse response of a block processor: where the
// first echo lands, how much energy the tail carries and how fast it decays.
//
// Decay times are estimated from the Schroeder backward integral of the
// squared response, by linear regression over a dB window extrapolated to
// -60 dB.
//
//	resp := tail.Capture(chain, 2, 4*48000, 512)
//	m, err := tail.NewAnalyzer(48000).Analyze(resp[0])
package tail
