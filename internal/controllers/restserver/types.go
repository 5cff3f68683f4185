package restserver

import (
	"github.com/chrissnell/tourprofile/internal/climb"
	"github.com/chrissnell/tourprofile/internal/engine"
	"github.com/chrissnell/tourprofile/internal/gradient"
	"github.com/chrissnell/tourprofile/internal/locate"
	"github.com/chrissnell/tourprofile/internal/profile"
	"github.com/chrissnell/tourprofile/internal/projection"
)

// ProfileSummary is returned when a profile is created or fetched
type ProfileSummary struct {
	ID                string                 `json:"id,omitempty"`
	RouteName         string                 `json:"route_name"`
	RouteType         string                 `json:"route_type,omitempty"`
	SampleCount       int                    `json:"sample_count"`
	Statistics        profile.Statistics     `json:"statistics"`
	StatisticsDerived bool                   `json:"statistics_derived"`
	Climbs            []climb.Rated          `json:"climbs"`
	Legend            []gradient.LegendEntry `json:"legend"`
}

// AnalyzeResponse is the one-shot analysis payload
type AnalyzeResponse struct {
	ProfileSummary
	Projection *projection.Profile2D `json:"projection_2d"`
}

// NoDataResponse is the placeholder sent in place of a chart when the
// upstream had no elevation data
type NoDataResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// LocateResponse wraps an optional tooltip
type LocateResponse struct {
	Found   bool            `json:"found"`
	Tooltip *locate.Tooltip `json:"tooltip,omitempty"`
}

// HealthResponse reports liveness and cache occupancy
type HealthResponse struct {
	Status   string `json:"status"`
	Analyses int    `json:"analyses"`
	Handles  int    `json:"handles"`
	Version  string `json:"version"`
}

func summarize(id string, a *engine.Analysis) ProfileSummary {
	return ProfileSummary{
		ID:                id,
		RouteName:         a.RouteName,
		RouteType:         a.RouteType,
		SampleCount:       len(a.Samples),
		Statistics:        a.Statistics,
		StatisticsDerived: a.StatisticsDerived,
		Climbs:            a.Climbs,
		Legend:            gradient.Legend(),
	}
}
