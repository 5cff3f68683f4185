// Package climb finds the categorised ascents in a route profile.
//
// Detection is a single forward pass over the samples with one open climb at a
// time; categorisation scores a finished climb by gain and length the way race
// organisers label cols (HC down to 4).
package climb

import "fmt"

// Segment is a contiguous ascent that survived the length and gain filters
type Segment struct {
	StartDistanceKM float64 `json:"start_distance"`
	EndDistanceKM   float64 `json:"end_distance"`
	StartElevationM float64 `json:"start_elevation"`
	EndElevationM   float64 `json:"end_elevation"`
	MaxElevationM   float64 `json:"max_elevation"`

	// Derived when the climb is closed
	LengthKM       float64 `json:"length_km"`
	ElevationGainM float64 `json:"elevation_gain"`
	AvgGradientPct float64 `json:"avg_gradient"`
}

// MidDistanceKM is where climb markers are anchored
func (s Segment) MidDistanceKM() float64 {
	return s.StartDistanceKM + (s.EndDistanceKM-s.StartDistanceKM)/2
}

// Category scores the climb
func (s Segment) Category() Category {
	return Categorize(s.ElevationGainM, s.LengthKM)
}

// Summary is the short label drawn under a climb marker, e.g. "3.0km at 5.0%"
func (s Segment) Summary() string {
	return fmt.Sprintf("%.1fkm at %.1f%%", s.LengthKM, s.AvgGradientPct)
}

// Rated pairs a segment with its category for output
type Rated struct {
	Segment
	Category Category `json:"category"`
	Summary  string   `json:"summary"`
}

// Rate attaches categories and summaries to detected segments
func Rate(segments []Segment) []Rated {
	out := make([]Rated, len(segments))
	for i, s := range segments {
		out[i] = Rated{Segment: s, Category: s.Category(), Summary: s.Summary()}
	}
	return out
}
