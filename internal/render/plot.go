// Package render paints profile projections into files: static PNG/SVG charts
// through gonum/plot and an interactive HTML page through go-echarts.
package render

import (
	"errors"
	"fmt"
	"image/color"
	"io"

	"github.com/chrissnell/tourprofile/internal/projection"
	"github.com/lucasb-eyer/go-colorful"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
)

// ErrEmptyProfile is returned when there is nothing to draw
var ErrEmptyProfile = errors.New("profile has no drawable geometry")

// Supported static formats
const (
	FormatPNG = "png"
	FormatSVG = "svg"
)

// curveSteps is the number of line segments used per spline segment
const curveSteps = 6

// PlotOptions sizes the static chart
type PlotOptions struct {
	Title    string
	WidthIn  float64
	HeightIn float64
}

func (o PlotOptions) size() (vg.Length, vg.Length) {
	w, h := o.WidthIn, o.HeightIn
	if w <= 0 {
		w = 10
	}
	if h <= 0 {
		h = 3.6
	}
	return vg.Length(w) * vg.Inch, vg.Length(h) * vg.Inch
}

// WritePlot paints a flat profile in data coordinates: one polygon per
// gradient band section, the smoothed profile line, countdown distance ticks
// and climb markers.
func WritePlot(w io.Writer, p *projection.Profile2D, format string, po PlotOptions) error {
	if p == nil || p.Empty {
		return ErrEmptyProfile
	}
	if format != FormatPNG && format != FormatSVG {
		return fmt.Errorf("unsupported plot format %q", format)
	}

	pl := plot.New()
	pl.Title.Text = po.Title
	pl.X.Label.Text = "Distance to finish (km)"
	pl.Y.Label.Text = "Elevation (m)"
	pl.Y.Min = p.Y.Domain[0]
	pl.Y.Max = p.Y.Domain[1]

	toData := func(pt projection.Point) plotter.XY {
		return plotter.XY{X: p.X.Invert(pt.X), Y: p.Y.Invert(pt.Y)}
	}

	for _, s := range p.Sections {
		pts := s.Path.Flatten(1)
		xys := make(plotter.XYs, len(pts))
		for i, pt := range pts {
			xys[i] = toData(pt)
		}
		poly, err := plotter.NewPolygon(xys)
		if err != nil {
			return fmt.Errorf("building section polygon: %w", err)
		}
		poly.Color = hexColor(s.Fill, s.FillOpacity)
		poly.LineStyle.Width = 0
		pl.Add(poly)
	}

	linePts := p.Line.Path.Flatten(curveSteps)
	lineXYs := make(plotter.XYs, len(linePts))
	for i, pt := range linePts {
		lineXYs[i] = toData(pt)
	}
	line, err := plotter.NewLine(lineXYs)
	if err != nil {
		return fmt.Errorf("building profile line: %w", err)
	}
	line.Color = hexColor(p.Line.Stroke, 1)
	line.Width = vg.Points(p.Line.StrokeWidth / 1.5)
	pl.Add(line)

	ticks := make([]plot.Tick, 0, len(p.DistanceMarkers))
	for _, m := range p.DistanceMarkers {
		ticks = append(ticks, plot.Tick{Value: m.KM, Label: m.Label.Text})
	}
	pl.X.Tick.Marker = plot.ConstantTicks(ticks)

	if len(p.Climbs) > 0 {
		if err := addClimbs(pl, p); err != nil {
			return err
		}
	}

	pl.Add(plotter.NewGrid())

	width, height := po.size()
	wt, err := pl.WriterTo(width, height, format)
	if err != nil {
		return fmt.Errorf("creating %s canvas: %w", format, err)
	}
	if _, err := wt.WriteTo(w); err != nil {
		return fmt.Errorf("writing %s: %w", format, err)
	}
	return nil
}

func addClimbs(pl *plot.Plot, p *projection.Profile2D) error {
	marks := make(plotter.XYs, len(p.Climbs))
	labels := plotter.XYLabels{
		XYs:    make([]plotter.XY, len(p.Climbs)),
		Labels: make([]string, len(p.Climbs)),
	}

	for i, c := range p.Climbs {
		marks[i] = plotter.XY{X: c.Climb.MidDistanceKM(), Y: c.Climb.MaxElevationM}
		labels.XYs[i] = marks[i]
		labels.Labels[i] = fmt.Sprintf("%s  %s", c.Category.Text, c.Summary.Text)
	}

	sc, err := plotter.NewScatter(marks)
	if err != nil {
		return fmt.Errorf("building climb markers: %w", err)
	}
	sc.GlyphStyle.Shape = draw.TriangleGlyph{}
	sc.GlyphStyle.Color = hexColor("#8B4513", 1)
	sc.GlyphStyle.Radius = vg.Points(5)
	pl.Add(sc)

	lb, err := plotter.NewLabels(labels)
	if err != nil {
		return fmt.Errorf("building climb labels: %w", err)
	}
	for i := range lb.TextStyle {
		lb.TextStyle[i].Color = hexColor("#333333", 1)
		lb.TextStyle[i].XAlign = draw.XCenter
	}
	lb.Offset = vg.Point{Y: vg.Points(8)}
	pl.Add(lb)

	return nil
}

// hexColor converts #RRGGBB into a colour with the given opacity. Unparseable
// input falls back to grey.
func hexColor(hex string, opacity float64) color.Color {
	c, err := colorful.Hex(hex)
	if err != nil {
		return color.NRGBA{R: 0x99, G: 0x99, B: 0x99, A: 0xff}
	}
	if opacity <= 0 || opacity > 1 {
		opacity = 1
	}
	r, g, b := c.RGB255()
	return color.NRGBA{R: r, G: g, B: b, A: uint8(opacity*255 + 0.5)}
}
