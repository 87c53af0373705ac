package biquad

// Bank runs one Section per channel with a shared coefficient set.
type Bank struct {
	coeffs   Coefficients
	sections []Section
	updates  int
}

// Prepare sizes the bank for channels and clears all state.
// The current coefficients are kept.
func (b *Bank) Prepare(channels int) {
	b.sections = make([]Section, channels)
	for i := range b.sections {
		b.sections[i].Coefficients = b.coeffs
	}
}

// Channels returns the prepared channel count.
func (b *Bank) Channels() int { return len(b.sections) }

// Coefficients returns a copy of the current coefficients.
func (b *Bank) Coefficients() Coefficients { return b.coeffs }

// SetCoefficients copies c into every channel. Filter state is preserved.
func (b *Bank) SetCoefficients(c Coefficients) {
	b.coeffs = c
	b.updates++
	for i := range b.sections {
		b.sections[i].Coefficients = c
	}
}

// Updates returns how many times SetCoefficients has been called.
func (b *Bank) Updates() int { return b.updates }

// ProcessSample filters one sample of channel ch.
func (b *Bank) ProcessSample(ch int, x float64) float64 {
	return b.sections[ch].ProcessSample(x)
}

// ProcessBlock filters buf in place with channel ch's state.
func (b *Bank) ProcessBlock(ch int, buf []float64) {
	b.sections[ch].ProcessBlock(buf)
}

// Reset clears the state of every channel.
func (b *Bank) Reset() {
	for i := range b.sections {
		b.sections[i].Reset()
	}
}
