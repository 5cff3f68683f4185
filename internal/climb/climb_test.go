package climb

import (
	"math"
	"testing"

	"github.com/chrissnell/tourprofile/internal/profile"
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

func samples(distances, elevations, gradients []float64) []profile.Sample {
	out := make([]profile.Sample, len(distances))
	for i := range distances {
		out[i] = profile.Sample{DistanceKM: distances[i], ElevationM: elevations[i], GradientPct: gradients[i]}
	}
	return out
}

func TestDetectSingleClimb(t *testing.T) {
	s := samples(
		[]float64{0, 1, 2, 3, 4},
		[]float64{0, 40, 90, 150, 150},
		[]float64{0, 4, 4, 4, 0},
	)

	got := Detect(s)
	want := []Segment{{
		StartDistanceKM: 0,
		EndDistanceKM:   3,
		StartElevationM: 0,
		EndElevationM:   150,
		MaxElevationM:   150,
		LengthKM:        3,
		ElevationGainM:  150,
		AvgGradientPct:  5,
	}}

	if diff := cmp.Diff(want, got, cmpopts.EquateApprox(0, 1e-9)); diff != "" {
		t.Errorf("Detect mismatch (-want +got):\n%s", diff)
	}
}

func TestDetectShortClimbDropped(t *testing.T) {
	// 0.4 km long with 200 m of gain: too short regardless of gain
	s := samples(
		[]float64{0, 0.2, 0.4, 0.6},
		[]float64{0, 100, 200, 200},
		[]float64{0, 50, 50, 0},
	)
	if got := Detect(s); len(got) != 0 {
		t.Errorf("expected no climbs, got %+v", got)
	}
}

func TestDetectLowGainDropped(t *testing.T) {
	s := samples(
		[]float64{0, 1, 2, 3},
		[]float64{0, 15, 30, 30},
		[]float64{0, 4, 4, 0},
	)
	if got := Detect(s); len(got) != 0 {
		t.Errorf("30 m of gain is not enough, got %+v", got)
	}
}

func TestDetectUnterminatedClimbDropped(t *testing.T) {
	s := samples(
		[]float64{0, 1, 2, 3},
		[]float64{0, 50, 100, 150},
		[]float64{0, 5, 5, 5},
	)
	if got := Detect(s); len(got) != 0 {
		t.Errorf("a climb still open at the last sample is dropped, got %+v", got)
	}
}

func TestDetectContinueThreshold(t *testing.T) {
	// Gradient 2 keeps the climb open even though it would not start one
	s := samples(
		[]float64{0, 1, 2, 3, 4},
		[]float64{0, 50, 70, 60, 60},
		[]float64{0, 5, 2, 1, 0},
	)

	got := Detect(s)
	if len(got) != 1 {
		t.Fatalf("expected one climb, got %d", len(got))
	}
	c := got[0]
	if c.EndDistanceKM != 2 || c.MaxElevationM != 70 || c.ElevationGainM != 70 {
		t.Errorf("unexpected climb %+v", c)
	}
}

func TestDetectDescentDoesNotOpen(t *testing.T) {
	s := samples(
		[]float64{0, 1, 2, 3},
		[]float64{300, 200, 100, 100},
		[]float64{0, -10, -10, 0},
	)
	if got := Detect(s); len(got) != 0 {
		t.Errorf("descents never open a climb, got %+v", got)
	}
}

func TestDetectMultipleClimbsOrdered(t *testing.T) {
	s := samples(
		[]float64{0, 1, 2, 3, 4, 5, 6, 7},
		[]float64{0, 50, 100, 100, 100, 160, 220, 220},
		[]float64{0, 5, 5, 0, 0, 6, 6, 0},
	)

	got := Detect(s)
	if len(got) != 2 {
		t.Fatalf("expected 2 climbs, got %d: %+v", len(got), got)
	}
	if got[0].StartDistanceKM != 0 || got[0].EndDistanceKM != 2 {
		t.Errorf("first climb = %+v", got[0])
	}
	if got[1].StartDistanceKM != 4 || got[1].EndDistanceKM != 6 {
		t.Errorf("second climb = %+v", got[1])
	}
	if got[0].EndDistanceKM > got[1].StartDistanceKM {
		t.Error("climbs overlap")
	}
}

func TestDetectEmpty(t *testing.T) {
	if got := Detect(nil); got == nil || len(got) != 0 {
		t.Errorf("Detect(nil) = %#v, want empty non-nil slice", got)
	}
	if got := Detect([]profile.Sample{{DistanceKM: 0, ElevationM: 10, GradientPct: 20}}); len(got) != 0 {
		t.Errorf("single sample cannot form a climb, got %+v", got)
	}
}

func TestDetectConstantElevation(t *testing.T) {
	s := samples(
		[]float64{0, 1, 2, 3},
		[]float64{500, 500, 500, 500},
		[]float64{0, 0, 0, 0},
	)
	if got := Detect(s); len(got) != 0 {
		t.Errorf("flat route has no climbs, got %+v", got)
	}
}

func TestCategorize(t *testing.T) {
	tests := []struct {
		gain, length float64
		want         Category
	}{
		{500, 20, Category3},
		{1000, 15, Category3},
		{2000, 20, Category1},
		{2000, 45, CategoryHC},
		{1000, 20, Category2},
		{100, 5, Category4},
		{400, 20, Category4}, // exactly 8000 stays in the lower category
		{800, 40, Category2}, // exactly 32000
	}

	for _, tt := range tests {
		if got := Categorize(tt.gain, tt.length); got != tt.want {
			t.Errorf("Categorize(%v, %v) = %s, want %s", tt.gain, tt.length, got, tt.want)
		}
	}
}

func TestSegmentHelpers(t *testing.T) {
	s := Segment{
		StartDistanceKM: 2,
		EndDistanceKM:   5,
		LengthKM:        3,
		ElevationGainM:  150,
		AvgGradientPct:  5,
	}

	if mid := s.MidDistanceKM(); math.Abs(mid-3.5) > 1e-12 {
		t.Errorf("MidDistanceKM = %v", mid)
	}
	if s.Summary() != "3.0km at 5.0%" {
		t.Errorf("Summary = %q", s.Summary())
	}

	rated := Rate([]Segment{s})
	if len(rated) != 1 || rated[0].Category != Category4 || rated[0].Summary != "3.0km at 5.0%" {
		t.Errorf("Rate = %+v", rated)
	}
}
