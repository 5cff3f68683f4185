package locate

import (
	"math"
	"math/rand"
	"sort"
	"testing"

	"github.com/chrissnell/tourprofile/internal/profile"
)

func seq(distances ...float64) []profile.Sample {
	out := make([]profile.Sample, len(distances))
	for i, d := range distances {
		out[i] = profile.Sample{DistanceKM: d, ElevationM: float64(i * 10), GradientPct: float64(i)}
	}
	return out
}

func TestNearest(t *testing.T) {
	l := NewLocator(seq(0, 1, 2, 4))

	tests := []struct {
		name  string
		query float64
		want  float64
	}{
		{"before first", -5, 0},
		{"exact first", 0, 0},
		{"closer to left", 1.2, 1},
		{"closer to right", 1.8, 2},
		{"tie goes left", 3, 2},
		{"exact interior", 2, 2},
		{"exact last", 4, 4},
		{"after last", 100, 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, ok := l.Nearest(tt.query)
			if !ok {
				t.Fatal("expected a sample")
			}
			if s.DistanceKM != tt.want {
				t.Errorf("Nearest(%v) = %v, want %v", tt.query, s.DistanceKM, tt.want)
			}
		})
	}
}

func TestNearestEmpty(t *testing.T) {
	l := NewLocator(nil)
	if _, ok := l.Nearest(1); ok {
		t.Error("empty locator should not find anything")
	}
	if l.Len() != 0 {
		t.Errorf("Len = %d", l.Len())
	}
}

func TestNearestNaN(t *testing.T) {
	l := NewLocator(seq(0, 1))
	if _, ok := l.Nearest(math.NaN()); ok {
		t.Error("NaN query should not find anything")
	}
}

func TestNearestRepeatedDistances(t *testing.T) {
	samples := seq(0, 1, 1, 2)
	l := NewLocator(samples)

	s, ok := l.Nearest(1)
	if !ok {
		t.Fatal("expected a sample")
	}
	if s.DistanceKM != 1 {
		t.Errorf("Nearest(1) = %v", s.DistanceKM)
	}
}

// bruteNearest scans linearly and keeps the first sample at the minimum distance
func bruteNearest(samples []profile.Sample, q float64) profile.Sample {
	best := samples[0]
	bestDelta := math.Abs(q - best.DistanceKM)
	for _, s := range samples[1:] {
		if d := math.Abs(q - s.DistanceKM); d < bestDelta {
			best, bestDelta = s, d
		}
	}
	return best
}

func TestNearestMatchesLinearScan(t *testing.T) {
	rng := rand.New(rand.NewSource(7))

	for round := 0; round < 50; round++ {
		n := 1 + rng.Intn(40)
		distances := make([]float64, n)
		for i := range distances {
			distances[i] = rng.Float64() * 100
		}
		sort.Float64s(distances)

		samples := seq(distances...)
		l := NewLocator(samples)

		for q := 0; q < 100; q++ {
			query := rng.Float64()*120 - 10
			got, _ := l.Nearest(query)
			want := bruteNearest(samples, query)
			if math.Abs(query-got.DistanceKM) != math.Abs(query-want.DistanceKM) {
				t.Fatalf("round %d: Nearest(%v) = %v, linear scan found %v", round, query, got.DistanceKM, want.DistanceKM)
			}
		}
	}
}
