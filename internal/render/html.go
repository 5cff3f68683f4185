package render

import (
	"fmt"
	"io"

	"github.com/chrissnell/tourprofile/internal/climb"
	"github.com/chrissnell/tourprofile/internal/gradient"
	"github.com/chrissnell/tourprofile/internal/profile"
	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
)

// HTMLOptions sizes the interactive chart. AssetsHost overrides where the
// echarts script is loaded from.
type HTMLOptions struct {
	Width      string
	Height     string
	AssetsHost string
}

// WriteHTML renders an interactive elevation chart: a smoothed area line over
// distance with one series per gradient band and the climbs overlaid as
// labelled markers.
func WriteHTML(w io.Writer, routeName string, samples []profile.Sample, climbs []climb.Rated, ho HTMLOptions) error {
	if len(samples) < 2 {
		return ErrEmptyProfile
	}
	if ho.Width == "" {
		ho.Width = "1000px"
	}
	if ho.Height == "" {
		ho.Height = "420px"
	}

	title := routeName
	if title == "" {
		title = "Elevation profile"
	}

	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: title, Width: ho.Width, Height: ho.Height, AssetsHost: ho.AssetsHost}),
		charts.WithTitleOpts(opts.Title{Title: title, Subtitle: subtitle(samples, climbs)}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{Type: "value", Name: "km", NameLocation: "middle", NameGap: 25}),
		charts.WithYAxisOpts(opts.YAxis{Type: "value", Name: "m"}),
	)

	profileData := make([]opts.LineData, len(samples))
	for i, s := range samples {
		profileData[i] = opts.LineData{Value: []interface{}{s.DistanceKM, s.ElevationM}}
	}
	line.AddSeries("elevation", profileData,
		charts.WithLineChartOpts(opts.LineChart{Smooth: opts.Bool(true), ShowSymbol: opts.Bool(false)}),
		charts.WithAreaStyleOpts(opts.AreaStyle{Color: "#FFD700"}),
		charts.WithItemStyleOpts(opts.ItemStyle{Color: "#B8860B"}),
	)

	// Each band series carries only the pairs in that band so the colours line
	// up with the flat profile sections.
	for _, entry := range gradient.Legend() {
		data := bandSeries(samples, entry.Band)
		line.AddSeries(entry.Label, data,
			charts.WithLineChartOpts(opts.LineChart{ShowSymbol: opts.Bool(false)}),
			charts.WithItemStyleOpts(opts.ItemStyle{Color: entry.Color}),
		)
	}

	if len(climbs) > 0 {
		marks := make([]opts.ScatterData, len(climbs))
		for i, c := range climbs {
			marks[i] = opts.ScatterData{
				Name:  fmt.Sprintf("Cat %s: %s", c.Category, c.Summary),
				Value: []interface{}{c.MidDistanceKM(), c.MaxElevationM},
			}
		}
		sc := charts.NewScatter()
		sc.AddSeries("climbs", marks,
			charts.WithScatterChartOpts(opts.ScatterChart{SymbolSize: 14}),
			charts.WithItemStyleOpts(opts.ItemStyle{Color: "#8B4513"}),
			charts.WithLabelOpts(opts.Label{Show: opts.Bool(true), Position: "top", Formatter: "{b}"}),
		)
		line.Overlap(sc)
	}

	if err := line.Render(w); err != nil {
		return fmt.Errorf("rendering html chart: %w", err)
	}
	return nil
}

// bandSeries emits the points of every pair whose first sample falls in
// band, with a gap (nil) between runs
func bandSeries(samples []profile.Sample, band gradient.Band) []opts.LineData {
	out := make([]opts.LineData, 0, len(samples))
	inRun := false
	for i := 0; i < len(samples)-1; i++ {
		if gradient.Classify(samples[i].GradientPct) != band {
			if inRun {
				out = append(out, opts.LineData{Value: nil})
				inRun = false
			}
			continue
		}
		if !inRun {
			out = append(out, opts.LineData{Value: []interface{}{samples[i].DistanceKM, samples[i].ElevationM}})
			inRun = true
		}
		out = append(out, opts.LineData{Value: []interface{}{samples[i+1].DistanceKM, samples[i+1].ElevationM}})
	}
	return out
}

func subtitle(samples []profile.Sample, climbs []climb.Rated) string {
	d := profile.DistanceExtent(samples)
	return fmt.Sprintf("%.1f km, %d climbs", d.Width(), len(climbs))
}
