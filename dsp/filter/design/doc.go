// Package design provides the first-order IIR coefficient designers used by
// the tone, damping and low-cut filters.
//
// Designs use the bilinear transform with frequency pre-warping and return
// [biquad.Coefficients] with B2 = A2 = 0. Cutoffs are clamped into
// (0, Nyquist) so a control range that exceeds Nyquist at low sample rates
// degrades to the nearest valid filter instead of silence.
package design
