package core

// Clamp limits v to [lo, hi]. Swapped bounds are accepted.
func Clamp(v, lo, hi float64) float64 {
	if lo > hi {
		lo, hi = hi, lo
	}

	return min(max(v, lo), hi)
}

// FlushDenormals returns 0 for |x| < 1e-30. Feedback paths call it on the
// value they store so a decaying loop settles to exact silence.
func FlushDenormals(x float64) float64 {
	const floor = 1e-30
	if x > -floor && x < floor {
		return 0
	}

	return x
}

// MsToSamples converts milliseconds to a fractional sample count.
func MsToSamples(ms, sampleRate float64) float64 {
	return ms * sampleRate / 1000
}

// SamplesToMs converts a sample count to milliseconds. A non-positive rate
// yields 0.
func SamplesToMs(samples, sampleRate float64) float64 {
	if sampleRate <= 0 {
		return 0
	}

	return samples * 1000 / sampleRate
}
