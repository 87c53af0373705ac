// Package buffer provides the multichannel sample block processed by every
// stage of the effect.
//
// A Block is sized once for a maximum length and channel count; per-call
// lengths are set with SetLen, which only reslices. None of the methods used
// on the audio path allocate.
package buffer
