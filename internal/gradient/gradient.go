// Package gradient classifies slope steepness into the four display bands
// used on the profile and in the legend.
package gradient

import (
	"fmt"
	"math"

	"github.com/lucasb-eyer/go-colorful"
)

// Band is a severity class for the absolute value of a gradient
type Band int

const (
	Gentle Band = iota
	Moderate
	Steep
	VerySteep
)

// Upper bounds (inclusive) of the lower three bands, in percent
const (
	GentleMaxPct   = 3.0
	ModerateMaxPct = 5.0
	SteepMaxPct    = 8.0
)

var bandColors = [...]string{
	Gentle:    "#44AA44",
	Moderate:  "#FFAA44",
	Steep:     "#FF8844",
	VerySteep: "#FF4444",
}

var bandNames = [...]string{
	Gentle:    "gentle",
	Moderate:  "moderate",
	Steep:     "steep",
	VerySteep: "very_steep",
}

var bandLabels = [...]string{
	Gentle:    "Gentle (0-3%)",
	Moderate:  "Moderate (3-5%)",
	Steep:     "Steep (5-8%)",
	VerySteep: "Very Steep (>8%)",
}

// Classify maps a gradient of either sign to its band. Boundary values belong
// to the lower band. NaN compares false everywhere and lands in Gentle.
func Classify(pct float64) Band {
	g := math.Abs(pct)
	switch {
	case g > SteepMaxPct:
		return VerySteep
	case g > ModerateMaxPct:
		return Steep
	case g > GentleMaxPct:
		return Moderate
	default:
		return Gentle
	}
}

// Color returns the band's display colour as #RRGGBB
func (b Band) Color() string {
	if b < Gentle || b > VerySteep {
		return bandColors[Gentle]
	}
	return bandColors[b]
}

// RGB returns the band colour as normalised [0,1] components, the form a
// vertex colour buffer expects.
func (b Band) RGB() (r, g, bl float64) {
	c, err := colorful.Hex(b.Color())
	if err != nil {
		return 0, 0, 0
	}
	return c.R, c.G, c.B
}

// String returns the machine-readable band name
func (b Band) String() string {
	if b < Gentle || b > VerySteep {
		return "unknown"
	}
	return bandNames[b]
}

// Label returns the legend text for the band
func (b Band) Label() string {
	if b < Gentle || b > VerySteep {
		return ""
	}
	return bandLabels[b]
}

// MarshalText lets bands appear by name in JSON and MessagePack payloads
func (b Band) MarshalText() ([]byte, error) {
	return []byte(b.String()), nil
}

// UnmarshalText accepts the names produced by MarshalText
func (b *Band) UnmarshalText(text []byte) error {
	for i, name := range bandNames {
		if name == string(text) {
			*b = Band(i)
			return nil
		}
	}
	return fmt.Errorf("unknown gradient band %q", text)
}

// LegendEntry is one row of the colour legend
type LegendEntry struct {
	Band  Band   `json:"band"`
	Label string `json:"label"`
	Color string `json:"color"`
}

// Legend returns the four bands from gentlest to steepest
func Legend() []LegendEntry {
	out := make([]LegendEntry, 0, 4)
	for b := Gentle; b <= VerySteep; b++ {
		out = append(out, LegendEntry{Band: b, Label: b.Label(), Color: b.Color()})
	}
	return out
}
