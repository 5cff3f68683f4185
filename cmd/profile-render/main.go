package main

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/chrissnell/tourprofile/internal/constants"
	"github.com/chrissnell/tourprofile/internal/engine"
	"github.com/chrissnell/tourprofile/internal/log"
	"github.com/chrissnell/tourprofile/internal/profile"
	"github.com/chrissnell/tourprofile/internal/projection"
	"github.com/chrissnell/tourprofile/internal/render"
)

func main() {
	var (
		inFile   = flag.String("in", "-", "Elevation JSON payload to read ('-' for stdin)")
		outFile  = flag.String("out", "-", "Output file ('-' for stdout)")
		format   = flag.String("format", "png", "Output format: png, svg, html, 2d (JSON), 3d (JSON), climbs (JSON)")
		width    = flag.Float64("width", 1200, "2D canvas width in pixels")
		height   = flag.Float64("height", 500, "2D canvas height in pixels")
		widthIn  = flag.Float64("plot-width", 10, "PNG/SVG width in inches")
		heightIn = flag.Float64("plot-height", 3.6, "PNG/SVG height in inches")
		debug    = flag.Bool("debug", false, "Turn on debugging output")
		version  = flag.Bool("version", false, "Show version and exit")
	)
	flag.Parse()

	if *version {
		fmt.Printf("profile-render %s\n", constants.Version)
		os.Exit(0)
	}

	if err := log.Init(*debug); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	in, err := openInput(*inFile)
	if err != nil {
		log.Fatalf("Error opening input: %v", err)
	}
	defer in.Close()

	data, err := profile.Decode(in)
	if errors.Is(err, profile.ErrMissingData) {
		fmt.Fprintln(os.Stderr, "No elevation data available")
		os.Exit(2)
	}
	if err != nil {
		log.Fatalf("Error decoding elevation data: %v", err)
	}

	eng := engine.New(engine.Config{AnalysisCacheSize: 1, HandleLimit: 1}, log.Named("engine"))
	a, err := eng.Analyze(data)
	if err != nil {
		log.Fatalf("Error analysing route: %v", err)
	}

	out, err := openOutput(*outFile)
	if err != nil {
		log.Fatalf("Error opening output: %v", err)
	}
	defer out.Close()

	opts := projection.DefaultOptions2D()
	opts.Width, opts.Height = *width, *height

	switch strings.ToLower(*format) {
	case render.FormatPNG, render.FormatSVG:
		err = render.WritePlot(out, a.Profile2D(opts), strings.ToLower(*format), render.PlotOptions{
			Title:    a.RouteName,
			WidthIn:  *widthIn,
			HeightIn: *heightIn,
		})
	case "html":
		err = render.WriteHTML(out, a.RouteName, a.Samples, a.Climbs, render.HTMLOptions{})
	case "2d":
		err = writeJSON(out, a.Profile2D(opts))
	case "3d":
		err = writeJSON(out, a.Mesh(projection.DefaultOptions3D()))
	case "climbs":
		err = writeJSON(out, a.Climbs)
	default:
		log.Fatalf("Unsupported format: %s", *format)
	}
	if err != nil {
		log.Fatalf("Error writing %s: %v", *format, err)
	}

	log.Infow("rendered route", "route", a.RouteName, "format", *format, "climbs", len(a.Climbs))
}

func openInput(name string) (io.ReadCloser, error) {
	if name == "-" {
		return io.NopCloser(os.Stdin), nil
	}
	return os.Open(name)
}

type nopWriteCloser struct{ io.Writer }

func (nopWriteCloser) Close() error { return nil }

func openOutput(name string) (io.WriteCloser, error) {
	if name == "-" {
		return nopWriteCloser{os.Stdout}, nil
	}
	return os.Create(name)
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
