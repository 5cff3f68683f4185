package profile

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Extent is a closed [Min, Max] interval
type Extent struct {
	Min float64
	Max float64
}

// Width returns Max - Min
func (e Extent) Width() float64 {
	return e.Max - e.Min
}

// DistanceExtent returns the distance range of the sequence. The zero Extent
// is returned for an empty sequence.
func DistanceExtent(samples []Sample) Extent {
	if len(samples) == 0 {
		return Extent{}
	}
	d := Distances(samples)
	return Extent{Min: floats.Min(d), Max: floats.Max(d)}
}

// ElevationExtent returns the elevation range of the sequence
func ElevationExtent(samples []Sample) Extent {
	if len(samples) == 0 {
		return Extent{}
	}
	e := Elevations(samples)
	return Extent{Min: floats.Min(e), Max: floats.Max(e)}
}

// ComputeStatistics derives the aggregate figures from the samples for
// payloads that arrive without a statistics block. Values are rounded the
// same way the elevation service rounds them.
func ComputeStatistics(samples []Sample) Statistics {
	if len(samples) == 0 {
		return Statistics{}
	}

	var gain, loss float64
	for i := 1; i < len(samples); i++ {
		delta := samples[i].ElevationM - samples[i-1].ElevationM
		if delta > 0 {
			gain += delta
		} else {
			loss -= delta
		}
	}

	elev := ElevationExtent(samples)
	grads := Gradients(samples)

	return Statistics{
		TotalDistanceKM:    round1(samples[len(samples)-1].DistanceKM - samples[0].DistanceKM),
		TotalElevationGain: math.Round(gain),
		TotalElevationLoss: math.Round(loss),
		MaxElevation:       math.Round(elev.Max),
		MinElevation:       math.Round(elev.Min),
		SteepestClimb:      round1(floats.Max(grads)),
		SteepestDescent:    round1(floats.Min(grads)),
		AverageGradient:    round1(stat.Mean(grads, nil)),
	}
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
