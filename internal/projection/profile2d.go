package projection

import (
	"math"
	"strconv"

	"github.com/chrissnell/tourprofile/internal/climb"
	"github.com/chrissnell/tourprofile/internal/gradient"
	"github.com/chrissnell/tourprofile/internal/profile"
)

// Margin is the space reserved around the plot area
type Margin struct {
	Top    float64 `json:"top"`
	Right  float64 `json:"right"`
	Bottom float64 `json:"bottom"`
	Left   float64 `json:"left"`
}

// Options2D controls the flat profile layout. Width and Height are the outer
// canvas; the plot area is what is left after the margins.
type Options2D struct {
	Width          float64 `json:"width"`
	Height         float64 `json:"height"`
	Margin         Margin  `json:"margin"`
	TickIntervalKM float64 `json:"tick_interval_km"`
	AxisTicks      int     `json:"axis_ticks"`
}

// DefaultOptions2D is the 1200x500 canvas the web client draws, leaving a
// 1000x360 plot inside the margins
func DefaultOptions2D() Options2D {
	return Options2D{
		Width:          1200,
		Height:         500,
		Margin:         Margin{Top: 60, Right: 120, Bottom: 80, Left: 80},
		TickIntervalKM: DefaultTickIntervalKM,
		AxisTicks:      10,
	}
}

// Normalize fills zero or non-finite sizes from the defaults
func (o Options2D) Normalize() Options2D {
	def := DefaultOptions2D()
	if !positiveFinite(o.Width) {
		o.Width = def.Width
	}
	if !positiveFinite(o.Height) {
		o.Height = def.Height
	}
	if o.Margin == (Margin{}) {
		o.Margin = def.Margin
	}
	if !positiveFinite(o.TickIntervalKM) {
		o.TickIntervalKM = def.TickIntervalKM
	}
	if o.AxisTicks <= 0 {
		o.AxisTicks = def.AxisTicks
	}
	return o
}

func positiveFinite(v float64) bool {
	return v > 0 && !math.IsInf(v, 1)
}

// PlotWidth is the inner drawing width
func (o Options2D) PlotWidth() float64 {
	return o.Width - o.Margin.Left - o.Margin.Right
}

// PlotHeight is the inner drawing height
func (o Options2D) PlotHeight() float64 {
	return o.Height - o.Margin.Top - o.Margin.Bottom
}

// Label is a positioned piece of text in plot coordinates
type Label struct {
	Text     string  `json:"text"`
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
	Anchor   string  `json:"anchor"`
	FontSize float64 `json:"font_size"`
	Color    string  `json:"color"`
	Bold     bool    `json:"bold,omitempty"`
}

// Box is an axis-aligned rectangle
type Box struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
	Radius float64 `json:"radius,omitempty"`
	Fill   string  `json:"fill"`
	Stroke string  `json:"stroke,omitempty"`
}

// Rule is a straight line between two points
type Rule struct {
	From  Point  `json:"from"`
	To    Point  `json:"to"`
	Color string `json:"color"`
	Dash  string `json:"dash,omitempty"`
}

// GradientStop is one stop of a vertical fill gradient
type GradientStop struct {
	Offset  float64 `json:"offset"`
	Color   string  `json:"color"`
	Opacity float64 `json:"opacity"`
}

// Shape is a filled or stroked path
type Shape struct {
	Path        Path           `json:"commands"`
	D           string         `json:"d"`
	Fill        string         `json:"fill,omitempty"`
	FillOpacity float64        `json:"fill_opacity,omitempty"`
	Stops       []GradientStop `json:"stops,omitempty"`
	Stroke      string         `json:"stroke,omitempty"`
	StrokeWidth float64        `json:"stroke_width,omitempty"`
	Opacity     float64        `json:"opacity,omitempty"`
	Offset      Point          `json:"offset"`
	Band        *gradient.Band `json:"band,omitempty"`
}

func newShape(p Path) Shape {
	return Shape{Path: p, D: p.SVG()}
}

// DistanceMarker is a countdown box under the plot
type DistanceMarker struct {
	CountdownTick
	X     float64 `json:"x"`
	Box   Box     `json:"box"`
	Label Label   `json:"label"`
}

// ClimbMarker2D is the triangle and its two labels above a climb
type ClimbMarker2D struct {
	Climb    climb.Rated `json:"climb"`
	Symbol   Shape       `json:"symbol"`
	Category Label       `json:"category_label"`
	Summary  Label       `json:"summary_label"`
}

// InfoBox is the elevation summary panel in the top right corner
type InfoBox struct {
	Box      Box     `json:"box"`
	Headline Label   `json:"headline"`
	Caption  Label   `json:"caption"`
	Rules    []Rule  `json:"rules"`
	Scale    []Label `json:"scale"`
}

// Profile2D is the complete flat-view geometry. All coordinates are relative
// to the plot area origin (top-left after margins).
type Profile2D struct {
	Empty   bool        `json:"empty"`
	Options Options2D   `json:"options"`
	X       LinearScale `json:"x_scale"`
	Y       LinearScale `json:"y_scale"`

	Sections []Shape `json:"sections"`
	Area     Shape   `json:"area"`
	Shadow   Shape   `json:"shadow"`
	Line     Shape   `json:"line"`

	Grid            []Rule           `json:"grid"`
	XTicks          []Label          `json:"x_ticks"`
	YTicks          []Label          `json:"y_ticks"`
	DistanceMarkers []DistanceMarker `json:"distance_markers"`
	Climbs          []ClimbMarker2D  `json:"climbs"`
	InfoBox         InfoBox          `json:"info_box"`
}

var areaStops = []GradientStop{
	{Offset: 0, Color: "#FFD700", Opacity: 1},
	{Offset: 0.7, Color: "#FFED4E", Opacity: 0.8},
	{Offset: 1, Color: "#FFFACD", Opacity: 0.6},
}

// Build2D lays out the flat profile. Fewer than two samples or a zero-width
// distance domain give an Empty profile; a zero-width elevation domain draws
// the line at mid height.
func Build2D(samples []profile.Sample, climbs []climb.Rated, stats profile.Statistics, opts Options2D) Profile2D {
	opts = opts.Normalize()
	out := Profile2D{Options: opts}

	dist := profile.DistanceExtent(samples)
	if len(samples) < 2 || dist.Width() <= 0 {
		out.Empty = true
		return out
	}

	w, h := opts.PlotWidth(), opts.PlotHeight()
	elev := profile.ElevationExtent(samples)

	out.X = NewLinearScale(dist.Min, dist.Max, 0, w)
	out.Y = NewLinearScale(elev.Min, elev.Max, h, 0)

	pts := make([]Point, len(samples))
	for i, s := range samples {
		pts[i] = Point{X: out.X.Apply(s.DistanceKM), Y: out.Y.Apply(s.ElevationM)}
	}

	out.Sections = sections(samples, pts, h)

	out.Area = newShape(area(pts, h))
	out.Area.Fill = "#FFD700"
	out.Area.Stops = areaStops

	line := cardinal(pts)
	out.Shadow = newShape(line)
	out.Shadow.Stroke = "#8B7355"
	out.Shadow.StrokeWidth = 2
	out.Shadow.Opacity = 0.5
	out.Shadow.Offset = Point{X: 2, Y: 2}

	out.Line = newShape(line)
	out.Line.Stroke = "#B8860B"
	out.Line.StrokeWidth = 3

	out.Grid, out.XTicks, out.YTicks = axes(out.X, out.Y, dist, elev, w, h, opts.AxisTicks)
	out.DistanceMarkers = distanceMarkers(out.X, dist.Max, h, opts.TickIntervalKM)
	out.Climbs = climbMarkers2D(out.X, out.Y, climbs)
	out.InfoBox = infoBox(stats.MaxElevation, w)

	return out
}

// sections fills the band under each consecutive pair in the colour of the
// pair's first gradient
func sections(samples []profile.Sample, pts []Point, baseline float64) []Shape {
	out := make([]Shape, 0, len(pts)-1)
	for i := 0; i < len(pts)-1; i++ {
		a, b := pts[i], pts[i+1]
		p := Path{}.
			moveTo(a).
			lineTo(b).
			lineTo(Point{X: b.X, Y: baseline}).
			lineTo(Point{X: a.X, Y: baseline}).
			close()

		band := gradient.Classify(samples[i].GradientPct)
		s := newShape(p)
		s.Fill = band.Color()
		s.FillOpacity = 0.7
		s.Band = &band
		out = append(out, s)
	}
	return out
}

func axes(x, y LinearScale, dist, elev profile.Extent, w, h float64, count int) ([]Rule, []Label, []Label) {
	var grid []Rule
	var xt, yt []Label

	for _, v := range NiceTicks(dist.Min, dist.Max, count) {
		px := x.Apply(v)
		grid = append(grid, Rule{From: Point{X: px, Y: 0}, To: Point{X: px, Y: h}, Color: "#dddddd", Dash: "2,2"})
		xt = append(xt, Label{
			Text:     strconv.FormatFloat(v, 'f', -1, 64) + "km",
			X:        px,
			Y:        h + 12,
			Anchor:   "middle",
			FontSize: 10,
			Color:    "#666666",
		})
	}

	for _, v := range NiceTicks(elev.Min, elev.Max, count) {
		py := y.Apply(v)
		grid = append(grid, Rule{From: Point{X: 0, Y: py}, To: Point{X: w, Y: py}, Color: "#dddddd", Dash: "2,2"})
		yt = append(yt, Label{
			Text:     strconv.FormatFloat(v, 'f', -1, 64) + "m",
			X:        -9,
			Y:        py,
			Anchor:   "end",
			FontSize: 10,
			Color:    "#666666",
		})
	}

	return grid, xt, yt
}

func distanceMarkers(x LinearScale, maxKM, h, interval float64) []DistanceMarker {
	ticks := CountdownTicks(maxKM, interval)
	out := make([]DistanceMarker, 0, len(ticks))
	for _, t := range ticks {
		px := x.Apply(t.KM)
		out = append(out, DistanceMarker{
			CountdownTick: t,
			X:             px,
			Box:           Box{X: px - 15, Y: h + 10, Width: 30, Height: 20, Radius: 3, Fill: "#333333"},
			Label: Label{
				Text:     t.Label,
				X:        px,
				Y:        h + 25,
				Anchor:   "middle",
				FontSize: 12,
				Color:    "#ffffff",
				Bold:     true,
			},
		})
	}
	return out
}

func climbMarkers2D(x, y LinearScale, climbs []climb.Rated) []ClimbMarker2D {
	out := make([]ClimbMarker2D, 0, len(climbs))
	for _, c := range climbs {
		px := x.Apply(c.MidDistanceKM())
		py := y.Apply(c.MaxElevationM) - 30

		sym := newShape(triangle(px, py))
		sym.Fill = "#8B4513"
		sym.Stroke = "#654321"
		sym.StrokeWidth = 1

		out = append(out, ClimbMarker2D{
			Climb:  c,
			Symbol: sym,
			Category: Label{
				Text:     string(c.Category),
				X:        px,
				Y:        py - 5,
				Anchor:   "middle",
				FontSize: 10,
				Color:    "#8B4513",
				Bold:     true,
			},
			Summary: Label{
				Text:     c.Summary,
				X:        px,
				Y:        py + 30,
				Anchor:   "middle",
				FontSize: 9,
				Color:    "#333333",
			},
		})
	}
	return out
}

func infoBox(maxElevation, w float64) InfoBox {
	ox, oy := w-100, 10.0
	ib := InfoBox{
		Box: Box{X: ox, Y: oy, Width: 90, Height: 80, Radius: 5, Fill: "rgba(255,255,255,0.9)", Stroke: "#cccccc"},
		Headline: Label{
			Text:     strconv.FormatFloat(maxElevation, 'f', -1, 64) + "m",
			X:        ox + 45,
			Y:        oy + 15,
			Anchor:   "middle",
			FontSize: 12,
			Color:    "#333333",
			Bold:     true,
		},
		Caption: Label{
			Text:     "ELEVATION",
			X:        ox + 45,
			Y:        oy + 30,
			Anchor:   "middle",
			FontSize: 8,
			Color:    "#666666",
		},
	}

	for i := 0; i <= 5; i++ {
		ry := oy + 35 + float64(i)*50/5
		v := maxElevation * (1 - float64(i)/5)
		ib.Rules = append(ib.Rules, Rule{
			From:  Point{X: ox + 10, Y: ry},
			To:    Point{X: ox + 80, Y: ry},
			Color: "#eeeeee",
		})
		ib.Scale = append(ib.Scale, Label{
			Text:     formatRounded(v) + "m",
			X:        ox + 5,
			Y:        ry + 3,
			Anchor:   "end",
			FontSize: 7,
			Color:    "#999999",
		})
	}
	return ib
}

// DistanceAt inverts a horizontal plot coordinate back to a route distance
func (p Profile2D) DistanceAt(px float64) float64 {
	if p.Empty {
		return math.NaN()
	}
	return p.X.Invert(px)
}
