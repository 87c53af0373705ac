// Package biquad provides the IIR filter runtime used for tone, damping and
// low-cut filtering.
//
// A [Section] implements Direct Form II Transposed processing for a single
// second-order section defined by [Coefficients]. First-order designs are
// sections with B2 = A2 = 0. A [Bank] holds one Section per channel sharing
// one value-owned coefficient set; coefficient changes are copied into every
// channel, never aliased.
//
// Coefficient design lives in dsp/filter/design.
package biquad
