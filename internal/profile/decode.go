package profile

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
)

var (
	// ErrMissingData means the input was absent, empty or not a sequence
	ErrMissingData = errors.New("no elevation data available")

	// ErrIncompleteSample means a sample lacked a required numeric field
	ErrIncompleteSample = errors.New("incomplete sample")

	// ErrUnordered means distances were negative or decreased along the sequence
	ErrUnordered = errors.New("sample distances must be non-negative and non-decreasing")
)

// wireSample mirrors one profile_data entry. Pointers distinguish a missing
// field from an explicit zero.
type wireSample struct {
	Distance  *float64 `json:"distance"`
	Elevation *float64 `json:"elevation"`
	Gradient  *float64 `json:"gradient"`
}

type wireElevationData struct {
	RouteName   string          `json:"route_name"`
	RouteType   string          `json:"route_type"`
	APIStatus   string          `json:"api_status"`
	ProfileData json.RawMessage `json:"profile_data"`
	Statistics  *Statistics     `json:"statistics"`
}

// Decode reads an upstream elevation payload. A missing, null, empty or
// non-array profile_data yields ErrMissingData. A sample without a distance or
// elevation yields ErrIncompleteSample; a missing gradient defaults to 0.
func Decode(r io.Reader) (*ElevationData, error) {
	var wire wireElevationData
	if err := json.NewDecoder(r).Decode(&wire); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, ErrMissingData
		}
		return nil, fmt.Errorf("decoding elevation data: %w", err)
	}

	raw := bytes.TrimSpace(wire.ProfileData)
	if len(raw) == 0 || raw[0] != '[' {
		return nil, ErrMissingData
	}

	var entries []wireSample
	if err := json.Unmarshal(raw, &entries); err != nil {
		return nil, fmt.Errorf("decoding profile_data: %w", err)
	}

	samples := make([]Sample, len(entries))
	for i, e := range entries {
		if e.Distance == nil || e.Elevation == nil {
			return nil, fmt.Errorf("profile_data[%d]: %w: distance and elevation are required", i, ErrIncompleteSample)
		}
		samples[i] = Sample{
			DistanceKM: *e.Distance,
			ElevationM: *e.Elevation,
		}
		if e.Gradient != nil {
			samples[i].GradientPct = *e.Gradient
		}
	}

	data := &ElevationData{
		RouteName:  wire.RouteName,
		RouteType:  wire.RouteType,
		APIStatus:  wire.APIStatus,
		Samples:    samples,
		Statistics: wire.Statistics,
	}

	if err := Validate(data.Samples); err != nil {
		return nil, err
	}

	return data, nil
}

// Validate checks the sequence invariants: at least one sample, finite
// values, and non-negative, non-decreasing distances.
func Validate(samples []Sample) error {
	if len(samples) == 0 {
		return ErrMissingData
	}

	prev := 0.0
	for i, s := range samples {
		if !finite(s.DistanceKM) || !finite(s.ElevationM) || !finite(s.GradientPct) {
			return fmt.Errorf("profile_data[%d]: %w: non-finite value", i, ErrIncompleteSample)
		}
		if s.DistanceKM < 0 || s.DistanceKM < prev {
			return fmt.Errorf("profile_data[%d] at %.3fkm: %w", i, s.DistanceKM, ErrUnordered)
		}
		prev = s.DistanceKM
	}

	return nil
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
