// Package locate resolves a continuous query distance to the nearest sample,
// which is what hover and raycast tooltips need on every pointer event.
package locate

import (
	"math"
	"sort"

	"github.com/chrissnell/tourprofile/internal/profile"
)

// Tooltip is the payload shown for a located sample. X and Y carry the
// position of the hit on whatever surface issued the query.
type Tooltip struct {
	DistanceKM  float64 `json:"distance"`
	ElevationM  float64 `json:"elevation"`
	GradientPct float64 `json:"gradient"`
	X           float64 `json:"x"`
	Y           float64 `json:"y"`
}

// Locator answers nearest-sample queries over a non-decreasing distance sequence
type Locator struct {
	samples []profile.Sample
}

// NewLocator wraps an already validated sample sequence. The slice is not copied.
func NewLocator(samples []profile.Sample) *Locator {
	return &Locator{samples: samples}
}

// Len returns the number of samples
func (l *Locator) Len() int {
	return len(l.samples)
}

// Nearest returns the sample closest to distanceKM. The lower-bound index idx
// is found by bisection and samples idx-1 and idx compete; a missing left
// neighbour counts as distance 0 and a missing right neighbour as +Inf. The
// right sample wins only when strictly closer, so ties go left.
func (l *Locator) Nearest(distanceKM float64) (profile.Sample, bool) {
	n := len(l.samples)
	if n == 0 || math.IsNaN(distanceKM) {
		return profile.Sample{}, false
	}

	idx := sort.Search(n, func(i int) bool {
		return l.samples[i].DistanceKM >= distanceKM
	})

	if idx == 0 {
		return l.samples[0], true
	}

	left := l.samples[idx-1]
	rightDistance := math.Inf(1)
	if idx < n {
		rightDistance = l.samples[idx].DistanceKM
	}

	if distanceKM-left.DistanceKM > rightDistance-distanceKM {
		return l.samples[idx], true
	}
	return left, true
}
