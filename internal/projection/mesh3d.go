package projection

import (
	"math"

	"github.com/chrissnell/tourprofile/internal/climb"
	"github.com/chrissnell/tourprofile/internal/gradient"
	"github.com/chrissnell/tourprofile/internal/profile"
)

// Options3D controls the size of the extruded ribbon in world units
type Options3D struct {
	WidthScale     float64 `json:"width_scale"`
	HeightScale    float64 `json:"height_scale"`
	Depth          float64 `json:"depth"`
	TickIntervalKM float64 `json:"tick_interval_km"`
}

// DefaultOptions3D is a 40x10 ribbon, 2 units deep, centred on x = 0
func DefaultOptions3D() Options3D {
	return Options3D{
		WidthScale:     40,
		HeightScale:    10,
		Depth:          2,
		TickIntervalKM: DefaultTickIntervalKM,
	}
}

// Normalize fills zero or non-finite fields from the defaults
func (o Options3D) Normalize() Options3D {
	def := DefaultOptions3D()
	if !positiveFinite(o.WidthScale) {
		o.WidthScale = def.WidthScale
	}
	if !positiveFinite(o.HeightScale) {
		o.HeightScale = def.HeightScale
	}
	if !positiveFinite(o.Depth) {
		o.Depth = def.Depth
	}
	if !positiveFinite(o.TickIntervalKM) {
		o.TickIntervalKM = def.TickIntervalKM
	}
	return o
}

// Vec3 is a world-space position
type Vec3 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// Label3D is billboard text
type Label3D struct {
	Text     string  `json:"text"`
	Position Vec3    `json:"position"`
	FontSize float64 `json:"font_size"`
	Color    string  `json:"color"`
}

// DistanceMarker3D is a small box under the ribbon with its countdown label
type DistanceMarker3D struct {
	CountdownTick
	Position Vec3    `json:"position"`
	Size     Vec3    `json:"size"`
	Color    string  `json:"color"`
	Label    Label3D `json:"label"`
}

// Cone is the climb symbol; Segments is the radial segment count
type Cone struct {
	Position Vec3    `json:"position"`
	Radius   float64 `json:"radius"`
	Height   float64 `json:"height"`
	Segments int     `json:"segments"`
	Color    string  `json:"color"`
}

// ClimbMarker3D is the cone and its two labels above a climb
type ClimbMarker3D struct {
	Climb    climb.Rated `json:"climb"`
	Cone     Cone        `json:"cone"`
	Category Label3D     `json:"category_label"`
	Summary  Label3D     `json:"summary_label"`
}

// Mesh is the extruded ribbon plus its scene decorations. Positions and
// Colors are flat xyz / rgb buffers with four vertices per sample: top-front,
// top-back, bottom-front, bottom-back.
type Mesh struct {
	Empty         bool      `json:"empty"`
	Options       Options3D `json:"options"`
	MaxDistanceKM float64   `json:"max_distance"`
	MaxElevationM float64   `json:"max_elevation"`

	Positions []float32 `json:"positions"`
	Colors    []float32 `json:"colors"`
	Indices   []uint32  `json:"indices"`

	DistanceMarkers []DistanceMarker3D `json:"distance_markers"`
	ElevationLabels []Label3D          `json:"elevation_labels"`
	Climbs          []ClimbMarker3D    `json:"climbs"`
}

// VertexCount returns the number of vertices in the position buffer
func (m *Mesh) VertexCount() int {
	return len(m.Positions) / 3
}

// TriangleCount returns the number of indexed triangles
func (m *Mesh) TriangleCount() int {
	return len(m.Indices) / 3
}

// segmentFaces are the twelve triangles joining sample i (base b) to sample
// i+1 (base b+4): top, bottom, front, back, then the start and end caps.
var segmentFaces = [12][3]uint32{
	{0, 1, 4}, {1, 5, 4},
	{2, 6, 3}, {3, 6, 7},
	{0, 4, 2}, {4, 6, 2},
	{1, 3, 5}, {3, 7, 5},
	{0, 2, 1}, {1, 2, 3},
	{4, 5, 6}, {5, 7, 6},
}

// Build3D extrudes the samples into an indexed ribbon. Fewer than two samples,
// a zero-width distance domain or a zero maximum distance give an Empty mesh;
// a zero maximum elevation lays the ribbon flat at y = 0.
func Build3D(samples []profile.Sample, climbs []climb.Rated, opts Options3D) Mesh {
	opts = opts.Normalize()
	m := Mesh{Options: opts}

	if len(samples) < 2 {
		m.Empty = true
		return m
	}

	dist := profile.DistanceExtent(samples)
	maxD := dist.Max
	maxE := profile.ElevationExtent(samples).Max
	m.MaxDistanceKM, m.MaxElevationM = maxD, maxE

	if dist.Width() <= 0 || maxD <= 0 {
		m.Empty = true
		return m
	}

	n := len(samples)
	m.Positions = make([]float32, 0, n*4*3)
	m.Colors = make([]float32, 0, n*4*3)
	m.Indices = make([]uint32, 0, (n-1)*len(segmentFaces)*3)

	half := opts.Depth / 2
	for _, s := range samples {
		x := m.WorldX(s.DistanceKM)
		y := m.WorldY(s.ElevationM)

		m.Positions = append(m.Positions,
			f32(x), f32(y), f32(half),
			f32(x), f32(y), f32(-half),
			f32(x), 0, f32(half),
			f32(x), 0, f32(-half),
		)

		r, g, b := gradient.Classify(s.GradientPct).RGB()
		for v := 0; v < 4; v++ {
			m.Colors = append(m.Colors, f32(r), f32(g), f32(b))
		}
	}

	for i := 0; i < n-1; i++ {
		base := uint32(i * 4)
		for _, f := range segmentFaces {
			m.Indices = append(m.Indices, base+f[0], base+f[1], base+f[2])
		}
	}

	m.DistanceMarkers = m.distanceMarkers()
	m.ElevationLabels = m.elevationLabels()
	m.Climbs = m.climbMarkers(climbs)

	return m
}

func f32(v float64) float32 {
	return float32(v)
}

// WorldX maps a route distance to the ribbon x coordinate
func (m *Mesh) WorldX(distanceKM float64) float64 {
	return distanceKM/m.MaxDistanceKM*m.Options.WidthScale - m.Options.WidthScale/2
}

// WorldY maps an elevation to the ribbon height; flat when the maximum is zero.
// Heights are relative to the maximum, not the extent, so a route lying
// entirely below sea level (negative maximum) renders upside down.
func (m *Mesh) WorldY(elevationM float64) float64 {
	if m.MaxElevationM == 0 {
		return 0
	}
	return elevationM / m.MaxElevationM * m.Options.HeightScale
}

func (m *Mesh) distanceMarkers() []DistanceMarker3D {
	ticks := countdownTicksExclusive(m.MaxDistanceKM, m.Options.TickIntervalKM)
	out := make([]DistanceMarker3D, 0, len(ticks))
	for _, t := range ticks {
		x := m.WorldX(t.KM)
		out = append(out, DistanceMarker3D{
			CountdownTick: t,
			Position:      Vec3{X: x, Y: -0.5},
			Size:          Vec3{X: 0.6, Y: 0.4, Z: 0.2},
			Color:         "#333333",
			Label: Label3D{
				Text:     t.Label,
				Position: Vec3{X: x, Y: -0.8},
				FontSize: 0.3,
				Color:    "#ffffff",
			},
		})
	}
	return out
}

// elevationLabels places six labels up the left edge. A route whose highest
// point is at or below zero gets none.
func (m *Mesh) elevationLabels() []Label3D {
	if m.MaxElevationM <= 0 {
		return nil
	}
	x := -(m.Options.WidthScale/2 + 2)
	out := make([]Label3D, 0, 6)
	for i := 0; i <= 5; i++ {
		e := m.MaxElevationM / 5 * float64(i)
		out = append(out, Label3D{
			Text:     formatRounded(e) + "m",
			Position: Vec3{X: x, Y: m.WorldY(e)},
			FontSize: 0.25,
			Color:    "#666666",
		})
	}
	return out
}

func (m *Mesh) climbMarkers(climbs []climb.Rated) []ClimbMarker3D {
	out := make([]ClimbMarker3D, 0, len(climbs))
	for _, c := range climbs {
		x := m.WorldX((c.StartDistanceKM + c.EndDistanceKM) / 2)
		y := m.WorldY(c.MaxElevationM) + 1

		out = append(out, ClimbMarker3D{
			Climb: c,
			Cone:  Cone{Position: Vec3{X: x, Y: y}, Radius: 0.3, Height: 0.6, Segments: 3, Color: "#8B4513"},
			Category: Label3D{
				Text:     string(c.Category),
				Position: Vec3{X: x, Y: y + 0.5},
				FontSize: 0.2,
				Color:    "#8B4513",
			},
			Summary: Label3D{
				Text:     c.Summary,
				Position: Vec3{X: x, Y: y - 0.8},
				FontSize: 0.15,
				Color:    "#333333",
			},
		})
	}
	return out
}

// WorldToDistance inverts a world x coordinate on the ribbon to a route
// distance. An empty mesh returns NaN.
func (m *Mesh) WorldToDistance(x float64) float64 {
	if m.Empty || m.MaxDistanceKM == 0 {
		return math.NaN()
	}
	return (x + m.Options.WidthScale/2) / m.Options.WidthScale * m.MaxDistanceKM
}
