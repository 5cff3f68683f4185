package restserver

import (
	"bytes"
	"errors"
	"fmt"
	"math"
	"net/http"
	"strconv"

	"github.com/chrissnell/tourprofile/internal/constants"
	"github.com/chrissnell/tourprofile/internal/engine"
	"github.com/chrissnell/tourprofile/internal/gradient"
	"github.com/chrissnell/tourprofile/internal/locate"
	"github.com/chrissnell/tourprofile/internal/profile"
	"github.com/chrissnell/tourprofile/internal/projection"
	"github.com/chrissnell/tourprofile/internal/render"
	"github.com/chrissnell/tourprofile/pkg/responseformat"
	"github.com/gorilla/mux"
)

// Handlers contains all HTTP handlers for the REST server
type Handlers struct {
	controller *Controller
	formatter  *responseformat.Formatter
}

// NewHandlers creates a new handlers instance
func NewHandlers(ctrl *Controller) *Handlers {
	return &Handlers{
		controller: ctrl,
		formatter:  responseformat.NewFormatter(),
	}
}

var noData = NoDataResponse{Status: "no_data", Message: "No elevation data available"}

// maxCanvasPx caps the width and height a client may ask for
const maxCanvasPx = 8000

func (h *Handlers) respond(w http.ResponseWriter, req *http.Request, data any) {
	h.respondStatus(w, req, http.StatusOK, data)
}

func (h *Handlers) respondStatus(w http.ResponseWriter, req *http.Request, status int, data any) {
	if err := h.formatter.WriteStatus(w, req, status, data); err != nil {
		h.controller.logger.Errorw("response write failed", "path", req.URL.Path, "error", err)
	}
}

func (h *Handlers) fail(w http.ResponseWriter, req *http.Request, status int, code, message string) {
	if err := h.formatter.WriteError(w, req, status, code, message); err != nil {
		h.controller.logger.Errorw("error response write failed", "path", req.URL.Path, "error", err)
	}
}

// decodeAndAnalyze reads an upstream payload from the request body. When it
// returns a nil analysis the response has already been written.
func (h *Handlers) decodeAndAnalyze(w http.ResponseWriter, req *http.Request) *engine.Analysis {
	body := http.MaxBytesReader(w, req.Body, h.controller.restConfig.MaxBodyBytes)
	defer body.Close()

	data, err := profile.Decode(body)
	if err == nil {
		var a *engine.Analysis
		a, err = h.controller.engine.Analyze(data)
		if err == nil {
			return a
		}
	}

	var maxErr *http.MaxBytesError
	switch {
	case errors.Is(err, profile.ErrMissingData):
		h.respond(w, req, noData)
	case errors.As(err, &maxErr):
		h.fail(w, req, http.StatusRequestEntityTooLarge, "too_large", err.Error())
	case errors.Is(err, profile.ErrIncompleteSample), errors.Is(err, profile.ErrUnordered):
		h.fail(w, req, http.StatusBadRequest, "invalid_profile", err.Error())
	default:
		h.fail(w, req, http.StatusBadRequest, "bad_request", err.Error())
	}
	h.controller.logger.Debugw("rejected profile payload", "error", err)
	return nil
}

// lookup resolves the {id} route variable, writing a 404 when unknown
func (h *Handlers) lookup(w http.ResponseWriter, req *http.Request) (string, *engine.Analysis) {
	id := mux.Vars(req)["id"]
	a, ok := h.controller.engine.Get(id)
	if !ok {
		h.fail(w, req, http.StatusNotFound, "not_found", fmt.Sprintf("no profile with id %q", id))
		return id, nil
	}
	return id, a
}

// CreateProfile analyses an upstream payload and registers it under a new id
func (h *Handlers) CreateProfile(w http.ResponseWriter, req *http.Request) {
	a := h.decodeAndAnalyze(w, req)
	if a == nil {
		return
	}

	id := h.controller.engine.Register(a)
	h.respondStatus(w, req, http.StatusCreated, summarize(id, a))
}

// GetProfile returns the summary of a registered profile
func (h *Handlers) GetProfile(w http.ResponseWriter, req *http.Request) {
	id, a := h.lookup(w, req)
	if a == nil {
		return
	}
	h.respond(w, req, summarize(id, a))
}

// GetProjection2D returns the flat layout. width and height override the
// configured canvas.
func (h *Handlers) GetProjection2D(w http.ResponseWriter, req *http.Request) {
	_, a := h.lookup(w, req)
	if a == nil {
		return
	}

	opts, err := h.options2D(req)
	if err != nil {
		h.fail(w, req, http.StatusBadRequest, "bad_request", err.Error())
		return
	}

	h.respond(w, req, a.Profile2D(opts))
}

// GetProjection3D returns the extruded ribbon mesh
func (h *Handlers) GetProjection3D(w http.ResponseWriter, req *http.Request) {
	_, a := h.lookup(w, req)
	if a == nil {
		return
	}
	h.respond(w, req, a.Mesh(h.options3D()))
}

// Locate resolves a pointer position to the nearest sample. Exactly one of
// x (2D plot pixels), world_x (3D world units) or distance (km) is read, in
// that order of preference.
func (h *Handlers) Locate(w http.ResponseWriter, req *http.Request) {
	_, a := h.lookup(w, req)
	if a == nil {
		return
	}

	q := req.URL.Query()

	var (
		t  locate.Tooltip
		ok bool
	)

	switch {
	case q.Has("x"):
		px, err := parseFloat(q.Get("x"))
		if err != nil {
			h.fail(w, req, http.StatusBadRequest, "bad_request", "x: "+err.Error())
			return
		}
		opts, err := h.options2D(req)
		if err != nil {
			h.fail(w, req, http.StatusBadRequest, "bad_request", err.Error())
			return
		}
		t, ok = a.Locate2D(px, opts)
	case q.Has("world_x"):
		wx, err := parseFloat(q.Get("world_x"))
		if err != nil {
			h.fail(w, req, http.StatusBadRequest, "bad_request", "world_x: "+err.Error())
			return
		}
		t, ok = a.Locate3D(wx, h.options3D())
	case q.Has("distance"):
		d, err := parseFloat(q.Get("distance"))
		if err != nil {
			h.fail(w, req, http.StatusBadRequest, "bad_request", "distance: "+err.Error())
			return
		}
		t, ok = a.LocateDistance(d)
	default:
		h.fail(w, req, http.StatusBadRequest, "bad_request", "one of x, world_x or distance is required")
		return
	}

	resp := LocateResponse{Found: ok}
	if ok {
		resp.Tooltip = &t
	}
	h.respond(w, req, resp)
}

// GetChart renders the profile as png, svg or html
func (h *Handlers) GetChart(w http.ResponseWriter, req *http.Request) {
	_, a := h.lookup(w, req)
	if a == nil {
		return
	}

	format := mux.Vars(req)["format"]
	rc := h.controller.render

	var (
		buf         bytes.Buffer
		err         error
		contentType string
	)

	switch format {
	case render.FormatPNG, render.FormatSVG:
		opts, optErr := h.options2D(req)
		if optErr != nil {
			h.fail(w, req, http.StatusBadRequest, "bad_request", optErr.Error())
			return
		}
		err = render.WritePlot(&buf, a.Profile2D(opts), format, render.PlotOptions{
			Title:    a.RouteName,
			WidthIn:  rc.PlotWidthIn,
			HeightIn: rc.PlotHeightIn,
		})
		contentType = "image/png"
		if format == render.FormatSVG {
			contentType = "image/svg+xml"
		}
	default:
		err = render.WriteHTML(&buf, a.RouteName, a.Samples, a.Climbs, render.HTMLOptions{AssetsHost: rc.AssetsHost})
		contentType = "text/html; charset=utf-8"
	}

	if errors.Is(err, render.ErrEmptyProfile) {
		h.fail(w, req, http.StatusUnprocessableEntity, "empty_profile", err.Error())
		return
	}
	if err != nil {
		h.controller.logger.Errorw("chart render failed", "format", format, "error", err)
		h.fail(w, req, http.StatusInternalServerError, "render_failed", err.Error())
		return
	}

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	if n, err := w.Write(buf.Bytes()); err != nil {
		h.controller.logger.Errorw("chart write failed", "format", format, "written", n, "size", buf.Len(), "error", err)
	}
}

// Analyze runs the pipeline without registering the result and returns the
// summary with the default flat layout
func (h *Handlers) Analyze(w http.ResponseWriter, req *http.Request) {
	a := h.decodeAndAnalyze(w, req)
	if a == nil {
		return
	}

	opts, err := h.options2D(req)
	if err != nil {
		h.fail(w, req, http.StatusBadRequest, "bad_request", err.Error())
		return
	}

	h.respond(w, req, AnalyzeResponse{
		ProfileSummary: summarize("", a),
		Projection:     a.Profile2D(opts),
	})
}

// GetLegend returns the gradient colour legend
func (h *Handlers) GetLegend(w http.ResponseWriter, req *http.Request) {
	h.respond(w, req, gradient.Legend())
}

// Healthz reports liveness
func (h *Handlers) Healthz(w http.ResponseWriter, req *http.Request) {
	analyses, handles := h.controller.engine.Len()
	h.respond(w, req, HealthResponse{
		Status:   "ok",
		Analyses: analyses,
		Handles:  handles,
		Version:  constants.Version,
	})
}

// NotFound answers unknown routes with a JSON error
func (h *Handlers) NotFound(w http.ResponseWriter, req *http.Request) {
	h.fail(w, req, http.StatusNotFound, "not_found", "no route for "+req.URL.Path)
}

func (h *Handlers) options2D(req *http.Request) (projection.Options2D, error) {
	rc := h.controller.render
	opts := projection.DefaultOptions2D()
	if rc.CanvasWidth > 0 {
		opts.Width = rc.CanvasWidth
	}
	if rc.CanvasHeight > 0 {
		opts.Height = rc.CanvasHeight
	}
	if rc.TickIntervalKM > 0 {
		opts.TickIntervalKM = rc.TickIntervalKM
	}

	q := req.URL.Query()
	if v := q.Get("width"); v != "" {
		f, err := canvasSize(v, opts.Margin.Left+opts.Margin.Right)
		if err != nil {
			return opts, fmt.Errorf("width %w", err)
		}
		opts.Width = f
	}
	if v := q.Get("height"); v != "" {
		f, err := canvasSize(v, opts.Margin.Top+opts.Margin.Bottom)
		if err != nil {
			return opts, fmt.Errorf("height %w", err)
		}
		opts.Height = f
	}
	return opts, nil
}

// canvasSize parses a finite pixel size in (margins, maxCanvasPx]
func canvasSize(v string, margins float64) (float64, error) {
	f, err := strconv.ParseFloat(v, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) || f <= margins || f > maxCanvasPx {
		return 0, fmt.Errorf("must be a number greater than %g and at most %d", margins, maxCanvasPx)
	}
	return f, nil
}

func (h *Handlers) options3D() projection.Options3D {
	opts := projection.DefaultOptions3D()
	if ti := h.controller.render.TickIntervalKM; ti > 0 {
		opts.TickIntervalKM = ti
	}
	return opts
}

func parseFloat(s string) (float64, error) {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("invalid number %q", s)
	}
	return f, nil
}
