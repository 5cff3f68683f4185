package restserver

import (
	"bytes"
	"compress/gzip"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/chrissnell/tourprofile/internal/constants"
	"github.com/chrissnell/tourprofile/internal/engine"
	"github.com/chrissnell/tourprofile/internal/projection"
	"github.com/chrissnell/tourprofile/pkg/config"
	"github.com/chrissnell/tourprofile/pkg/responseformat"
	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vmihailenco/msgpack/v5"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

const colPayload = `{
	"route_name": "Col de Test",
	"route_type": "road",
	"profile_data": [
		{"distance": 0, "elevation": 0, "gradient": 0},
		{"distance": 1, "elevation": 40, "gradient": 4},
		{"distance": 2, "elevation": 90, "gradient": 4},
		{"distance": 3, "elevation": 150, "gradient": 4},
		{"distance": 4, "elevation": 150, "gradient": 0}
	]
}`

func newTestController(t *testing.T, rc config.RESTServerData) *Controller {
	t.Helper()

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	eng := engine.New(engine.Config{}, nil)
	ctrl, err := NewController(ctx, &sync.WaitGroup{}, eng, rc, config.RenderData{}, zap.NewNop().Sugar())
	require.NoError(t, err)
	return ctrl
}

func do(ctrl *Controller, method, target, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	rec := httptest.NewRecorder()
	ctrl.Server.Handler.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), v), rec.Body.String())
}

func createProfile(t *testing.T, ctrl *Controller) ProfileSummary {
	t.Helper()
	rec := do(ctrl, http.MethodPost, "/api/profiles", colPayload)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var summary ProfileSummary
	decode(t, rec, &summary)
	require.NotEmpty(t, summary.ID)
	return summary
}

func TestNewControllerRequiresEngine(t *testing.T) {
	_, err := NewController(context.Background(), &sync.WaitGroup{}, nil, config.RESTServerData{}, config.RenderData{}, zap.NewNop().Sugar())
	assert.Error(t, err)
}

func TestNewControllerDefaults(t *testing.T) {
	ctrl := newTestController(t, config.RESTServerData{})
	assert.Equal(t, "0.0.0.0:8080", ctrl.Server.Addr)
	assert.Equal(t, int64(config.DefaultMaxBodyBytes), ctrl.restConfig.MaxBodyBytes)
}

func TestCreateAndGetProfile(t *testing.T) {
	ctrl := newTestController(t, config.RESTServerData{})
	created := createProfile(t, ctrl)

	assert.Equal(t, "Col de Test", created.RouteName)
	assert.Equal(t, "road", created.RouteType)
	assert.Equal(t, 5, created.SampleCount)
	assert.True(t, created.StatisticsDerived)
	assert.Len(t, created.Legend, 4)
	require.Len(t, created.Climbs, 1)
	assert.Equal(t, 150.0, created.Climbs[0].ElevationGainM)
	assert.Equal(t, "3.0km at 5.0%", created.Climbs[0].Summary)

	rec := do(ctrl, http.MethodGet, "/api/profiles/"+created.ID, "")
	require.Equal(t, http.StatusOK, rec.Code)

	var fetched ProfileSummary
	decode(t, rec, &fetched)
	assert.Equal(t, created, fetched)
}

func TestGetProfileMsgPack(t *testing.T) {
	ctrl := newTestController(t, config.RESTServerData{})
	created := createProfile(t, ctrl)

	rec := do(ctrl, http.MethodGet, "/api/profiles/"+created.ID+"?format=msgpack", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, responseformat.ContentTypeMsgPack, rec.Header().Get("Content-Type"))

	var decoded map[string]interface{}
	require.NoError(t, msgpack.Unmarshal(rec.Body.Bytes(), &decoded))
	assert.Equal(t, created.ID, decoded["id"])
	assert.Equal(t, "Col de Test", decoded["route_name"])
}

func TestRejectedPayloads(t *testing.T) {
	tests := []struct {
		name   string
		body   string
		status int
		code   string
	}{
		{"unordered distances", `{"profile_data":[{"distance":2,"elevation":1},{"distance":1,"elevation":1}]}`, http.StatusBadRequest, "invalid_profile"},
		{"missing elevation", `{"profile_data":[{"distance":0}]}`, http.StatusBadRequest, "invalid_profile"},
		{"malformed json", `{"profile_data":[`, http.StatusBadRequest, "bad_request"},
	}

	ctrl := newTestController(t, config.RESTServerData{})
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(ctrl, http.MethodPost, "/api/profiles", tt.body)
			assert.Equal(t, tt.status, rec.Code)

			var body responseformat.ErrorBody
			decode(t, rec, &body)
			assert.Equal(t, tt.code, body.Error)
		})
	}

	_, handles := ctrl.engine.Len()
	assert.Zero(t, handles)
}

func TestNoData(t *testing.T) {
	ctrl := newTestController(t, config.RESTServerData{})

	for _, body := range []string{`{}`, `{"profile_data": null}`, `{"profile_data": []}`} {
		rec := do(ctrl, http.MethodPost, "/api/profiles", body)
		assert.Equal(t, http.StatusOK, rec.Code, body)

		var resp NoDataResponse
		decode(t, rec, &resp)
		assert.Equal(t, "no_data", resp.Status)
		assert.Equal(t, "No elevation data available", resp.Message)
	}
}

func TestPayloadTooLarge(t *testing.T) {
	ctrl := newTestController(t, config.RESTServerData{MaxBodyBytes: 32})

	rec := do(ctrl, http.MethodPost, "/api/profiles", colPayload)
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
}

func TestUnknownProfile(t *testing.T) {
	ctrl := newTestController(t, config.RESTServerData{})

	for _, target := range []string{
		"/api/profiles/nope",
		"/api/profiles/nope/projection/2d",
		"/api/profiles/nope/locate?distance=1",
		"/api/profiles/nope/chart.png",
	} {
		rec := do(ctrl, http.MethodGet, target, "")
		assert.Equal(t, http.StatusNotFound, rec.Code, target)
	}

	rec := do(ctrl, http.MethodGet, "/no/such/route", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	var body responseformat.ErrorBody
	decode(t, rec, &body)
	assert.Equal(t, "not_found", body.Error)
}

func TestLocate(t *testing.T) {
	ctrl := newTestController(t, config.RESTServerData{})
	id := createProfile(t, ctrl).ID

	tests := []struct {
		query    string
		distance float64
	}{
		{"distance=2.4", 2},
		{"distance=-1", 0},
		{"x=760", 3},
		{"x=610", 2},
		{"world_x=0", 2},
	}

	for _, tt := range tests {
		rec := do(ctrl, http.MethodGet, "/api/profiles/"+id+"/locate?"+tt.query, "")
		require.Equal(t, http.StatusOK, rec.Code, tt.query)

		var resp LocateResponse
		decode(t, rec, &resp)
		require.True(t, resp.Found, tt.query)
		require.NotNil(t, resp.Tooltip)
		assert.Equal(t, tt.distance, resp.Tooltip.DistanceKM, tt.query)
	}

	for _, bad := range []string{"", "x=abc", "width=10&x=5", "x=NaN", "distance=Inf", "world_x=-Inf"} {
		rec := do(ctrl, http.MethodGet, "/api/profiles/"+id+"/locate?"+bad, "")
		assert.Equal(t, http.StatusBadRequest, rec.Code, bad)
	}
}

func TestProjections(t *testing.T) {
	ctrl := newTestController(t, config.RESTServerData{})
	id := createProfile(t, ctrl).ID

	rec := do(ctrl, http.MethodGet, "/api/profiles/"+id+"/projection/2d", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var p projection.Profile2D
	decode(t, rec, &p)
	assert.False(t, p.Empty)
	assert.Len(t, p.Sections, 4)
	assert.Len(t, p.Climbs, 1)

	rec = do(ctrl, http.MethodGet, "/api/profiles/"+id+"/projection/2d?width=1600&height=500", "")
	require.Equal(t, http.StatusOK, rec.Code)
	decode(t, rec, &p)
	assert.Equal(t, 1600.0, p.Options.Width)

	for _, query := range []string{"width=150", "width=NaN", "width=Inf", "height=-Inf", "height=nan", "width=8001", "width=abc"} {
		rec = do(ctrl, http.MethodGet, "/api/profiles/"+id+"/projection/2d?"+query, "")
		require.Equal(t, http.StatusBadRequest, rec.Code, query)
		var body responseformat.ErrorBody
		decode(t, rec, &body)
		assert.Equal(t, "bad_request", body.Error, query)
	}

	rec = do(ctrl, http.MethodGet, "/api/profiles/"+id+"/projection/2d?width=8000", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = do(ctrl, http.MethodGet, "/api/profiles/"+id+"/projection/3d", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var m projection.Mesh
	decode(t, rec, &m)
	assert.Equal(t, 20, m.VertexCount())
	assert.Equal(t, 48, m.TriangleCount())
}

func TestCharts(t *testing.T) {
	ctrl := newTestController(t, config.RESTServerData{})
	id := createProfile(t, ctrl).ID

	rec := do(ctrl, http.MethodGet, "/api/profiles/"+id+"/chart.png", "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "image/png", rec.Header().Get("Content-Type"))
	assert.True(t, bytes.HasPrefix(rec.Body.Bytes(), []byte("\x89PNG")))

	rec = do(ctrl, http.MethodGet, "/api/profiles/"+id+"/chart.svg", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/svg+xml", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Body.String(), "<svg")

	rec = do(ctrl, http.MethodGet, "/api/profiles/"+id+"/chart.html", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/html")
	assert.Contains(t, rec.Body.String(), "echarts")

	rec = do(ctrl, http.MethodGet, "/api/profiles/"+id+"/chart.gif", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestChartOfEmptyProfile(t *testing.T) {
	ctrl := newTestController(t, config.RESTServerData{})

	rec := do(ctrl, http.MethodPost, "/api/profiles", `{"route_name":"dot","profile_data":[{"distance":0,"elevation":5}]}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var summary ProfileSummary
	decode(t, rec, &summary)

	rec = do(ctrl, http.MethodGet, "/api/profiles/"+summary.ID+"/chart.png", "")
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec = do(ctrl, http.MethodGet, "/api/profiles/"+summary.ID+"/locate?x=100", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var resp LocateResponse
	decode(t, rec, &resp)
	assert.False(t, resp.Found)
	assert.Nil(t, resp.Tooltip)
}

func TestAnalyze(t *testing.T) {
	ctrl := newTestController(t, config.RESTServerData{})

	rec := do(ctrl, http.MethodPost, "/api/analyze", colPayload)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp AnalyzeResponse
	decode(t, rec, &resp)
	assert.Empty(t, resp.ID)
	assert.Equal(t, "Col de Test", resp.RouteName)
	require.NotNil(t, resp.Projection)
	assert.False(t, resp.Projection.Empty)

	_, handles := ctrl.engine.Len()
	assert.Zero(t, handles, "analyze does not register a handle")
}

func TestLegendAndHealth(t *testing.T) {
	ctrl := newTestController(t, config.RESTServerData{})

	rec := do(ctrl, http.MethodGet, "/api/legend", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var legend []map[string]interface{}
	decode(t, rec, &legend)
	require.Len(t, legend, 4)
	assert.Equal(t, "very_steep", legend[3]["band"])
	assert.Equal(t, "#FF4444", legend[3]["color"])

	createProfile(t, ctrl)

	rec = do(ctrl, http.MethodGet, "/healthz", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var health HealthResponse
	decode(t, rec, &health)
	assert.Equal(t, HealthResponse{Status: "ok", Analyses: 1, Handles: 1, Version: constants.Version}, health)
}

func TestGzipResponses(t *testing.T) {
	ctrl := newTestController(t, config.RESTServerData{})

	req := httptest.NewRequest(http.MethodGet, "/api/legend", nil)
	req.Header.Set("Accept-Encoding", "gzip")
	rec := httptest.NewRecorder()
	ctrl.Server.Handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "gzip", rec.Header().Get("Content-Encoding"))

	zr, err := gzip.NewReader(rec.Body)
	require.NoError(t, err)
	body, err := io.ReadAll(zr)
	require.NoError(t, err)
	assert.Contains(t, string(body), "very_steep")
}

type brokenWriter struct {
	header http.Header
}

func (b *brokenWriter) Header() http.Header       { return b.header }
func (b *brokenWriter) WriteHeader(int)           {}
func (b *brokenWriter) Write([]byte) (int, error) { return 0, errors.New("connection reset") }

func TestChartWriteFailureIsLogged(t *testing.T) {
	core, logs := observer.New(zap.ErrorLevel)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	ctrl, err := NewController(ctx, &sync.WaitGroup{}, engine.New(engine.Config{}, nil), config.RESTServerData{}, config.RenderData{}, zap.New(core).Sugar())
	require.NoError(t, err)
	id := createProfile(t, ctrl).ID

	req := httptest.NewRequest(http.MethodGet, "/api/profiles/"+id+"/chart.svg", nil)
	req = mux.SetURLVars(req, map[string]string{"id": id, "format": "svg"})
	ctrl.handlers.GetChart(&brokenWriter{header: http.Header{}}, req)

	entries := logs.FilterMessage("chart write failed").All()
	require.Len(t, entries, 1)
	assert.Equal(t, "svg", entries[0].ContextMap()["format"])
	assert.Equal(t, int64(0), entries[0].ContextMap()["written"])
}
