package engine

import (
	"sync"

	"github.com/chrissnell/tourprofile/internal/climb"
	"github.com/chrissnell/tourprofile/internal/gradient"
	"github.com/chrissnell/tourprofile/internal/locate"
	"github.com/chrissnell/tourprofile/internal/profile"
	"github.com/chrissnell/tourprofile/internal/projection"
	lru "github.com/hashicorp/golang-lru/v2"
)

// ViewLimit bounds how many projections of each kind an analysis keeps
const ViewLimit = 16

// Analysis is everything derived from one sample sequence. The exported
// fields are immutable once Analyze returns; projections are built on first
// use and the most recent ViewLimit option sets of each kind are kept.
type Analysis struct {
	Digest            string             `json:"digest"`
	RouteName         string             `json:"route_name"`
	RouteType         string             `json:"route_type,omitempty"`
	Samples           []profile.Sample   `json:"profile_data"`
	Statistics        profile.Statistics `json:"statistics"`
	StatisticsDerived bool               `json:"statistics_derived"`
	Climbs            []climb.Rated      `json:"climbs"`
	Bands             []gradient.Band    `json:"bands"`

	locator *locate.Locator

	mu      sync.Mutex
	views2D *lru.Cache[projection.Options2D, *projection.Profile2D]
	views3D *lru.Cache[projection.Options3D, *projection.Mesh]
}

func newAnalysis(digest string, data *profile.ElevationData) *Analysis {
	a := &Analysis{
		Digest:    digest,
		RouteName: data.RouteName,
		RouteType: data.RouteType,
		Samples:   data.Samples,
		locator:   locate.NewLocator(data.Samples),
	}
	a.views2D, _ = lru.New[projection.Options2D, *projection.Profile2D](ViewLimit)
	a.views3D, _ = lru.New[projection.Options3D, *projection.Mesh](ViewLimit)

	if data.Statistics != nil {
		a.Statistics = *data.Statistics
	} else {
		a.Statistics = profile.ComputeStatistics(data.Samples)
		a.StatisticsDerived = true
	}

	a.Climbs = climb.Rate(climb.Detect(data.Samples))

	if n := len(data.Samples); n > 1 {
		a.Bands = make([]gradient.Band, n-1)
		for i := range a.Bands {
			a.Bands[i] = gradient.Classify(data.Samples[i].GradientPct)
		}
	}

	return a
}

// Profile2D returns the flat layout for opts, building it on first request
func (a *Analysis) Profile2D(opts projection.Options2D) *projection.Profile2D {
	opts = opts.Normalize()

	a.mu.Lock()
	defer a.mu.Unlock()

	if p, ok := a.views2D.Get(opts); ok {
		return p
	}
	p := projection.Build2D(a.Samples, a.Climbs, a.Statistics, opts)
	a.views2D.Add(opts, &p)
	return &p
}

// Mesh returns the 3D ribbon for opts, building it on first request
func (a *Analysis) Mesh(opts projection.Options3D) *projection.Mesh {
	opts = opts.Normalize()

	a.mu.Lock()
	defer a.mu.Unlock()

	if m, ok := a.views3D.Get(opts); ok {
		return m
	}
	m := projection.Build3D(a.Samples, a.Climbs, opts)
	a.views3D.Add(opts, &m)
	return &m
}

// LocateDistance returns the tooltip for the sample nearest a route distance.
// The tooltip position is left at zero.
func (a *Analysis) LocateDistance(distanceKM float64) (locate.Tooltip, bool) {
	s, ok := a.locator.Nearest(distanceKM)
	if !ok {
		return locate.Tooltip{}, false
	}
	return locate.Tooltip{DistanceKM: s.DistanceKM, ElevationM: s.ElevationM, GradientPct: s.GradientPct}, true
}

// Locate2D resolves a horizontal pointer position in plot pixels. The
// tooltip keeps the pointer x and the y of the located sample.
func (a *Analysis) Locate2D(px float64, opts projection.Options2D) (locate.Tooltip, bool) {
	p := a.Profile2D(opts)
	if p.Empty {
		return locate.Tooltip{}, false
	}

	t, ok := a.LocateDistance(p.DistanceAt(px))
	if !ok {
		return t, false
	}
	t.X = px
	t.Y = p.Y.Apply(t.ElevationM)
	return t, true
}

// Locate3D resolves a raycast hit at world x on the ribbon
func (a *Analysis) Locate3D(worldX float64, opts projection.Options3D) (locate.Tooltip, bool) {
	m := a.Mesh(opts)
	if m.Empty {
		return locate.Tooltip{}, false
	}

	t, ok := a.LocateDistance(m.WorldToDistance(worldX))
	if !ok {
		return t, false
	}
	t.X = worldX
	t.Y = m.WorldY(t.ElevationM)
	return t, true
}
