// Package engine runs the profile pipeline (validation, statistics, climb
// detection, band classification) once per distinct input and keeps the
// results around for the API controllers.
package engine

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"math"
	"sync"

	"github.com/chrissnell/tourprofile/internal/profile"
	"github.com/google/uuid"
	lru "github.com/hashicorp/golang-lru/v2"
	"go.uber.org/zap"
)

// Default cache bounds
const (
	DefaultAnalysisCacheSize = 64
	DefaultHandleLimit       = 256
)

// Config bounds the engine's caches
type Config struct {
	AnalysisCacheSize int
	HandleLimit       int
}

// Engine memoises analyses by content digest and hands out handles for them.
// It is safe for concurrent use.
type Engine struct {
	logger *zap.SugaredLogger

	// mu makes the lookup-then-insert in Analyze atomic; the caches lock
	// themselves for everything else
	mu       sync.Mutex
	byDigest *lru.Cache[string, *Analysis]
	byHandle *lru.Cache[string, *Analysis]
}

// New creates an engine. Zero config values fall back to the defaults.
func New(cfg Config, logger *zap.SugaredLogger) *Engine {
	if cfg.AnalysisCacheSize <= 0 {
		cfg.AnalysisCacheSize = DefaultAnalysisCacheSize
	}
	if cfg.HandleLimit <= 0 {
		cfg.HandleLimit = DefaultHandleLimit
	}
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}

	e := &Engine{logger: logger}

	// NewWithEvict only fails on a non-positive size, ruled out above
	e.byDigest, _ = lru.NewWithEvict(cfg.AnalysisCacheSize, func(digest string, _ *Analysis) {
		logger.Debugw("analysis evicted", "digest", digest[:12])
	})
	e.byHandle, _ = lru.NewWithEvict(cfg.HandleLimit, func(id string, _ *Analysis) {
		logger.Debugw("handle evicted", "id", id)
	})

	return e
}

// Analyze validates data and returns its analysis. Identical content returns
// the same *Analysis without re-running detection. Empty input yields
// profile.ErrMissingData.
func (e *Engine) Analyze(data *profile.ElevationData) (*Analysis, error) {
	if data == nil {
		return nil, profile.ErrMissingData
	}
	if err := profile.Validate(data.Samples); err != nil {
		return nil, err
	}

	digest := Digest(data)

	e.mu.Lock()
	defer e.mu.Unlock()

	if a, ok := e.byDigest.Get(digest); ok {
		e.logger.Debugw("analysis cache hit", "digest", digest[:12], "route", a.RouteName)
		return a, nil
	}

	a := newAnalysis(digest, data)
	e.byDigest.Add(digest, a)

	e.logger.Infow("route analysed",
		"route", a.RouteName,
		"samples", len(a.Samples),
		"climbs", len(a.Climbs),
		"statistics_derived", a.StatisticsDerived,
	)

	return a, nil
}

// Register assigns a new handle to a, evicting the least recently used
// handle when the table is full
func (e *Engine) Register(a *Analysis) string {
	id := uuid.NewString()
	e.byHandle.Add(id, a)
	return id
}

// Get looks up a registered analysis
func (e *Engine) Get(id string) (*Analysis, bool) {
	return e.byHandle.Get(id)
}

// Len returns the number of cached analyses and registered handles
func (e *Engine) Len() (analyses, handles int) {
	return e.byDigest.Len(), e.byHandle.Len()
}

// Digest hashes the route name, the sample sequence and any supplied
// statistics. Two payloads with the same digest produce identical analyses.
func Digest(data *profile.ElevationData) string {
	h := sha256.New()
	fmt.Fprintf(h, "%s\x00%s\x00%d\x00", data.RouteName, data.RouteType, len(data.Samples))

	var buf [8]byte
	put := func(v float64) {
		binary.LittleEndian.PutUint64(buf[:], math.Float64bits(v))
		h.Write(buf[:])
	}

	for _, s := range data.Samples {
		put(s.DistanceKM)
		put(s.ElevationM)
		put(s.GradientPct)
	}

	if st := data.Statistics; st != nil {
		h.Write([]byte{1})
		for _, v := range []float64{
			st.TotalDistanceKM, st.TotalElevationGain, st.TotalElevationLoss,
			st.MaxElevation, st.MinElevation, st.SteepestClimb, st.SteepestDescent,
			st.AverageGradient,
		} {
			put(v)
		}
	}

	return hex.EncodeToString(h.Sum(nil))
}
