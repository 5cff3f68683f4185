package projection

import (
	"math"
	"strconv"
)

// DefaultTickIntervalKM is the spacing of the countdown distance markers
const DefaultTickIntervalKM = 5.0

// CountdownTick is one distance marker. Markers are positioned from the start
// but labelled with the distance remaining to the finish.
type CountdownTick struct {
	KM    float64 `json:"km"`
	Label string  `json:"label"`
}

// roundHalfUp rounds like the JavaScript client does (x.5 goes up)
func roundHalfUp(v float64) float64 {
	return math.Floor(v + 0.5)
}

func formatRounded(v float64) string {
	return strconv.FormatFloat(roundHalfUp(v), 'f', 0, 64)
}

// CountdownTicks returns markers at km = 0, interval, 2*interval ... up to
// and including maxKM, each labelled round(maxKM - km).
func CountdownTicks(maxKM, interval float64) []CountdownTick {
	if interval <= 0 || maxKM < 0 || math.IsNaN(maxKM) || math.IsInf(maxKM, 0) {
		return nil
	}
	var ticks []CountdownTick
	for i := 0; float64(i)*interval <= maxKM; i++ {
		km := float64(i) * interval
		ticks = append(ticks, CountdownTick{KM: km, Label: formatRounded(maxKM - km)})
	}
	return ticks
}

// countdownTicksExclusive is the 3D variant: ceil(maxKM/interval) markers,
// so a route whose length is an exact multiple of the interval gets no "0"
// marker at the finish.
func countdownTicksExclusive(maxKM, interval float64) []CountdownTick {
	if interval <= 0 || maxKM <= 0 || math.IsInf(maxKM, 0) {
		return nil
	}
	count := int(math.Ceil(maxKM / interval))
	ticks := make([]CountdownTick, 0, count)
	for i := 0; i < count; i++ {
		km := float64(i) * interval
		ticks = append(ticks, CountdownTick{KM: km, Label: formatRounded(maxKM - km)})
	}
	return ticks
}

// NiceTicks returns roughly count evenly spaced round values covering
// [start, stop], stepping by 1, 2 or 5 times a power of ten.
func NiceTicks(start, stop float64, count int) []float64 {
	if count <= 0 || math.IsNaN(start) || math.IsNaN(stop) {
		return nil
	}
	if start == stop {
		return []float64{start}
	}
	if start > stop {
		start, stop = stop, start
	}

	step := (stop - start) / float64(count)
	power := math.Floor(math.Log10(step))
	errRatio := step / math.Pow(10, power)

	factor := 1.0
	switch {
	case errRatio >= math.Sqrt(50):
		factor = 10
	case errRatio >= math.Sqrt(10):
		factor = 5
	case errRatio >= math.Sqrt(2):
		factor = 2
	}
	inc := factor * math.Pow(10, power)

	lo := math.Ceil(start / inc)
	hi := math.Floor(stop / inc)

	var ticks []float64
	for i := lo; i <= hi; i++ {
		// Round away float noise such as 0.30000000000000004
		ticks = append(ticks, math.Round(i*inc*1e9)/1e9)
	}
	return ticks
}
