package markers

// LinearScale maps a numeric domain onto a range.
type LinearScale struct {
	d0, d1 float64
	r0, r1 float64
}

// NewLinearScale creates a scale from [d0, d1] to [r0, r1].
func NewLinearScale(d0, d1, r0, r1 float64) LinearScale {
	return LinearScale{d0: d0, d1: d1, r0: r0, r1: r1}
}

// SizeScale builds the size scale for a batch of markers. The domain is the
// batch's own value range, so sizes compare only within one batch.
func SizeScale(batch []Marker, radius float64, rangeScale [2]float64) LinearScale {
	var lo, hi float64
	for i, m := range batch {
		if i == 0 || m.Value < lo {
			lo = m.Value
		}
		if i == 0 || m.Value > hi {
			hi = m.Value
		}
	}
	return NewLinearScale(lo, hi, radius*rangeScale[0], radius*rangeScale[1])
}

// Map returns the scaled value. A degenerate domain maps everything to the
// middle of the range.
func (s LinearScale) Map(v float64) float64 {
	if s.d1 == s.d0 {
		return (s.r0 + s.r1) / 2
	}
	t := (v - s.d0) / (s.d1 - s.d0)
	return s.r0 + t*(s.r1-s.r0)
}
