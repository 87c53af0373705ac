// Package spectrum computes frequency-domain views of impulse responses.
//
// Transform zero-pads a real response to a power-of-two FFT size and returns
// the one-sided complex bins; Magnitude, Power and MagnitudeDB reduce them.
package spectrum
