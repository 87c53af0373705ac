// Package effects groups the processing stages of the delay/diffusion chain.
//
// Subpackages:
//   - github.com/cwbudde/tapdancer/dsp/effects/preamp
//   - github.com/cwbudde/tapdancer/dsp/effects/allpass
//   - github.com/cwbudde/tapdancer/dsp/effects/multitap
//   - github.com/cwbudde/tapdancer/dsp/effects/diffusion
//
// Stages allocate in Prepare and process a buffer.Block in place without
// allocating. Preparing twice with the same core.ProcessSpec leaves a stage
// bit-identical to a fresh one.
package effects
