package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleYAML = `
controllers:
  - type: rest
    rest:
      port: 9090
      listen-addr: 127.0.0.1
      max-body-bytes: 1024
  - type: grpc
    grpc:
      listen-addr: 127.0.0.1
render:
  canvas-width: 1400
  tick-interval-km: 10
  assets-host: https://cdn.example.com/echarts/
cache:
  handle-limit: 32
`

func TestParseYAML(t *testing.T) {
	cfg, err := ParseYAML([]byte(sampleYAML))
	require.NoError(t, err)

	want := &ConfigData{
		Controllers: []ControllerData{
			{Type: "rest", RESTServer: &RESTServerData{Port: 9090, ListenAddr: "127.0.0.1", MaxBodyBytes: 1024}},
			{Type: "grpc", GRPC: &GRPCData{Port: DefaultGRPCPort, ListenAddr: "127.0.0.1"}},
		},
		Render: RenderData{
			CanvasWidth:    1400,
			CanvasHeight:   DefaultCanvasHeight,
			PlotWidthIn:    DefaultPlotWidthIn,
			PlotHeightIn:   DefaultPlotHeightIn,
			TickIntervalKM: 10,
			AssetsHost:     "https://cdn.example.com/echarts/",
		},
		Cache: CacheData{AnalysisCacheSize: DefaultAnalysisCacheSize, HandleLimit: 32},
	}

	if diff := cmp.Diff(want, cfg); diff != "" {
		t.Errorf("ParseYAML mismatch (-want +got):\n%s", diff)
	}
}

func TestParseYAMLEmpty(t *testing.T) {
	cfg, err := ParseYAML([]byte(""))
	require.NoError(t, err)
	assert.Empty(t, cfg.Controllers)
	assert.Equal(t, float64(DefaultCanvasWidth), cfg.Render.CanvasWidth)
	assert.Equal(t, DefaultHandleLimit, cfg.Cache.HandleLimit)
}

func TestParseYAMLInvalid(t *testing.T) {
	_, err := ParseYAML([]byte("controllers: [unterminated"))
	assert.Error(t, err)
}

func TestYAMLProvider(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(sampleYAML), 0o600))

	p := NewYAMLProvider(path)
	defer p.Close()
	assert.True(t, p.IsReadOnly())

	// sections load lazily without an explicit LoadConfig
	controllers, err := p.GetControllers()
	require.NoError(t, err)
	require.Len(t, controllers, 2)
	assert.Equal(t, 9090, controllers[0].RESTServer.Port)

	render, err := p.GetRenderConfig()
	require.NoError(t, err)
	assert.Equal(t, 1400.0, render.CanvasWidth)

	cache, err := p.GetCacheConfig()
	require.NoError(t, err)
	assert.Equal(t, 32, cache.HandleLimit)
}

func TestYAMLProviderMissingFile(t *testing.T) {
	p := NewYAMLProvider(filepath.Join(t.TempDir(), "nope.yaml"))
	_, err := p.LoadConfig()
	assert.Error(t, err)
	_, err = p.GetControllers()
	assert.Error(t, err)
}

func TestSQLiteProviderFreshDatabase(t *testing.T) {
	p, err := NewSQLiteProvider(filepath.Join(t.TempDir(), "config.db"))
	require.NoError(t, err)
	defer p.Close()

	assert.False(t, p.IsReadOnly())

	cfg, err := p.LoadConfig()
	require.NoError(t, err)
	assert.Empty(t, cfg.Controllers)
	assert.Equal(t, float64(DefaultCanvasWidth), cfg.Render.CanvasWidth)
	assert.Equal(t, DefaultAnalysisCacheSize, cfg.Cache.AnalysisCacheSize)
}

func TestSQLiteProviderRoundTrip(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "config.db")

	in, err := ParseYAML([]byte(sampleYAML))
	require.NoError(t, err)

	p, err := NewSQLiteProvider(dbPath)
	require.NoError(t, err)
	require.NoError(t, p.SaveConfig(in))

	// saving twice replaces rather than duplicates
	require.NoError(t, p.SaveConfig(in))
	require.NoError(t, p.Close())

	// reopening runs the migrations again as a no-op
	p, err = NewSQLiteProvider(dbPath)
	require.NoError(t, err)
	defer p.Close()

	out, err := p.LoadConfig()
	require.NoError(t, err)

	// controllers come back ordered by type
	want := *in
	want.Controllers = []ControllerData{in.Controllers[1], in.Controllers[0]}

	if diff := cmp.Diff(&want, out); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestSQLiteProviderRejectsEmptyController(t *testing.T) {
	p, err := NewSQLiteProvider(filepath.Join(t.TempDir(), "config.db"))
	require.NoError(t, err)
	defer p.Close()

	err = p.SaveConfig(&ConfigData{Controllers: []ControllerData{{Type: "rest"}}})
	assert.Error(t, err)

	controllers, err := p.GetControllers()
	require.NoError(t, err)
	assert.Empty(t, controllers, "failed save must roll back")
}
