// Package projection turns a validated profile into drawable geometry: a
// flat 2D layout in pixel space and an extruded 3D ribbon in world units.
package projection

// LinearScale maps a continuous domain onto a continuous range
type LinearScale struct {
	Domain [2]float64 `json:"domain"`
	Range  [2]float64 `json:"range"`
}

// NewLinearScale creates a scale from [d0, d1] to [r0, r1]
func NewLinearScale(d0, d1, r0, r1 float64) LinearScale {
	return LinearScale{Domain: [2]float64{d0, d1}, Range: [2]float64{r0, r1}}
}

// Degenerate reports whether the domain has zero width
func (s LinearScale) Degenerate() bool {
	return s.Domain[1] == s.Domain[0]
}

// Apply maps a domain value into the range. A zero-width domain maps every
// value to the middle of the range.
func (s LinearScale) Apply(v float64) float64 {
	if s.Degenerate() {
		return (s.Range[0] + s.Range[1]) / 2
	}
	t := (v - s.Domain[0]) / (s.Domain[1] - s.Domain[0])
	return s.Range[0] + t*(s.Range[1]-s.Range[0])
}

// Invert maps a range value back into the domain. A zero-width range or
// domain returns the domain start.
func (s LinearScale) Invert(v float64) float64 {
	if s.Degenerate() || s.Range[1] == s.Range[0] {
		return s.Domain[0]
	}
	t := (v - s.Range[0]) / (s.Range[1] - s.Range[0])
	return s.Domain[0] + t*(s.Domain[1]-s.Domain[0])
}
