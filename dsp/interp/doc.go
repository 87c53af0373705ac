// Package interp provides the fractional-delay interpolator used by the
// delay line.
//
// [Thiran] is a first-order all-pass interpolator: unity magnitude at every
// frequency and a maximally flat group delay at DC. Its output is continuous
// as the delay varies smoothly, which keeps modulated delays free of clicks.
package interp
