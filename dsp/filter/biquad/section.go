package biquad

// Coefficients of one normalised second-order section (a0 = 1).
//
//	H(z) = (B0 + B1 z^-1 + B2 z^-2) / (1 + A1 z^-1 + A2 z^-2)
//
// First-order filters leave B2 and A2 at zero.
type Coefficients struct {
	B0, B1, B2 float64
	A1, A2     float64
}

// Section is one filter channel in transposed direct form II.
type Section struct {
	Coefficients

	s1, s2 float64
}

// ProcessSample runs x through the section.
func (s *Section) ProcessSample(x float64) float64 {
	y := s.B0*x + s.s1
	s.s1 = s.B1*x - s.A1*y + s.s2
	s.s2 = s.B2*x - s.A2*y

	return y
}

// ProcessBlock filters buf in place, keeping the state in registers.
func (s *Section) ProcessBlock(buf []float64) {
	c := s.Coefficients
	s1, s2 := s.s1, s.s2

	for i, x := range buf {
		y := c.B0*x + s1
		s1 = c.B1*x - c.A1*y + s2
		s2 = c.B2*x - c.A2*y
		buf[i] = y
	}

	s.s1, s.s2 = s1, s2
}

// Reset zeroes the state; coefficients are untouched.
func (s *Section) Reset() {
	s.s1, s.s2 = 0, 0
}
