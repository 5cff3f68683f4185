// Package profile holds the canonical route sample sequence and its upstream
// JSON contract. Everything downstream (gradient bands, climbs, projections)
// is derived from a validated []Sample.
package profile

// Sample is one measured point along the route
type Sample struct {
	DistanceKM  float64 `json:"distance"`
	ElevationM  float64 `json:"elevation"`
	GradientPct float64 `json:"gradient"`
}

// Statistics are the aggregate figures supplied by the elevation provider
type Statistics struct {
	TotalDistanceKM    float64 `json:"total_distance"`
	TotalElevationGain float64 `json:"total_elevation_gain"`
	TotalElevationLoss float64 `json:"total_elevation_loss"`
	MaxElevation       float64 `json:"max_elevation"`
	MinElevation       float64 `json:"min_elevation"`
	SteepestClimb      float64 `json:"steepest_climb"`
	SteepestDescent    float64 `json:"steepest_descent"`
	AverageGradient    float64 `json:"average_gradient"`
}

// ElevationData is the full payload returned by the upstream elevation service
type ElevationData struct {
	RouteName  string      `json:"route_name"`
	RouteType  string      `json:"route_type,omitempty"`
	APIStatus  string      `json:"api_status,omitempty"`
	Samples    []Sample    `json:"profile_data"`
	Statistics *Statistics `json:"statistics,omitempty"`
}

// Distances returns the distance column of the sequence
func Distances(samples []Sample) []float64 {
	out := make([]float64, len(samples))
	for i, s := range samples {
		out[i] = s.DistanceKM
	}
	return out
}

// Elevations returns the elevation column of the sequence
func Elevations(samples []Sample) []float64 {
	out := make([]float64, len(samples))
	for i, s := range samples {
		out[i] = s.ElevationM
	}
	return out
}

// Gradients returns the gradient column of the sequence
func Gradients(samples []Sample) []float64 {
	out := make([]float64, len(samples))
	for i, s := range samples {
		out[i] = s.GradientPct
	}
	return out
}
