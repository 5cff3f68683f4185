package climb

import "github.com/chrissnell/tourprofile/internal/profile"

// Detector implements the climb state machine. The zero value is not useful;
// use NewDetector.
type Detector struct {
	startGradient    float64 // signed gradient that opens a climb (exclusive)
	continueGradient float64 // signed gradient that keeps it open (exclusive)
	minLengthKM      float64
	minGainM         float64
}

// NewDetector creates a detector with the standard thresholds
func NewDetector() *Detector {
	return &Detector{
		startGradient:    3.0,
		continueGradient: 1.0,
		minLengthKM:      0.5,
		minGainM:         30.0,
	}
}

// openClimb is the in-progress cursor
type openClimb struct {
	startDistance  float64
	startElevation float64
	endDistance    float64
	endElevation   float64
	maxElevation   float64
}

// Detect scans the samples once and returns the retained climbs ordered by
// start distance. A climb still open at the last sample is dropped without
// being finalized: only a drop to or below the continue threshold closes one.
func (d *Detector) Detect(samples []profile.Sample) []Segment {
	climbs := []Segment{}
	var cur *openClimb

	for i := 1; i < len(samples); i++ {
		g := samples[i].GradientPct

		switch {
		case cur == nil && g > d.startGradient:
			cur = &openClimb{
				startDistance:  samples[i-1].DistanceKM,
				startElevation: samples[i-1].ElevationM,
				maxElevation:   samples[i].ElevationM,
				endDistance:    samples[i].DistanceKM,
				endElevation:   samples[i].ElevationM,
			}
		case cur != nil && g > d.continueGradient:
			cur.endDistance = samples[i].DistanceKM
			cur.endElevation = samples[i].ElevationM
			if samples[i].ElevationM > cur.maxElevation {
				cur.maxElevation = samples[i].ElevationM
			}
		case cur != nil:
			if seg, ok := d.finalize(cur); ok {
				climbs = append(climbs, seg)
			}
			cur = nil
		}
	}

	return climbs
}

// finalize fills the derived fields and applies the retention filter
func (d *Detector) finalize(c *openClimb) (Segment, bool) {
	seg := Segment{
		StartDistanceKM: c.startDistance,
		EndDistanceKM:   c.endDistance,
		StartElevationM: c.startElevation,
		EndElevationM:   c.endElevation,
		MaxElevationM:   c.maxElevation,
		LengthKM:        c.endDistance - c.startDistance,
		ElevationGainM:  c.maxElevation - c.startElevation,
	}

	if !(seg.LengthKM > d.minLengthKM && seg.ElevationGainM > d.minGainM) {
		return Segment{}, false
	}

	seg.AvgGradientPct = seg.ElevationGainM / (seg.LengthKM * 1000) * 100
	return seg, true
}

// Detect runs the standard detector over the samples
func Detect(samples []profile.Sample) []Segment {
	return NewDetector().Detect(samples)
}
