package config

// ConfigProvider defines the interface for configuration data sources
type ConfigProvider interface {
	// Load complete configuration
	LoadConfig() (*ConfigData, error)

	// Get specific configuration sections
	GetControllers() ([]ControllerData, error)
	GetRenderConfig() (*RenderData, error)
	GetCacheConfig() (*CacheData, error)

	IsReadOnly() bool
	Close() error
}

// ConfigData represents the complete configuration structure
type ConfigData struct {
	Controllers []ControllerData `json:"controllers,omitempty"`
	Render      RenderData       `json:"render"`
	Cache       CacheData        `json:"cache"`
}

// ControllerData holds the configuration for the API controllers
type ControllerData struct {
	Type       string          `json:"type,omitempty"`
	RESTServer *RESTServerData `json:"rest,omitempty"`
	GRPC       *GRPCData       `json:"grpc,omitempty"`
}

type RESTServerData struct {
	Cert         string `json:"cert,omitempty"`
	Key          string `json:"key,omitempty"`
	Port         int    `json:"port,omitempty"`
	ListenAddr   string `json:"listen_addr,omitempty"`
	MaxBodyBytes int64  `json:"max_body_bytes,omitempty"`
}

type GRPCData struct {
	Cert       string `json:"cert,omitempty"`
	Key        string `json:"key,omitempty"`
	Port       int    `json:"port,omitempty"`
	ListenAddr string `json:"listen_addr,omitempty"`
}

// RenderData sets the default canvas sizes for projections and charts
type RenderData struct {
	CanvasWidth    float64 `json:"canvas_width,omitempty"`
	CanvasHeight   float64 `json:"canvas_height,omitempty"`
	PlotWidthIn    float64 `json:"plot_width_in,omitempty"`
	PlotHeightIn   float64 `json:"plot_height_in,omitempty"`
	TickIntervalKM float64 `json:"tick_interval_km,omitempty"`
	AssetsHost     string  `json:"assets_host,omitempty"`
}

// CacheData bounds the analysis engine's memory
type CacheData struct {
	AnalysisCacheSize int `json:"analysis_cache_size,omitempty"`
	HandleLimit       int `json:"handle_limit,omitempty"`
}

// Defaults used when a value is missing or non-positive
const (
	DefaultRESTPort          = 8080
	DefaultGRPCPort          = 50051
	DefaultMaxBodyBytes      = 8 << 20
	DefaultCanvasWidth       = 1200
	DefaultCanvasHeight      = 500
	DefaultPlotWidthIn       = 10
	DefaultPlotHeightIn      = 3.6
	DefaultTickIntervalKM    = 5
	DefaultAnalysisCacheSize = 64
	DefaultHandleLimit       = 256
)

// ApplyDefaults fills zero values in place
func (c *ConfigData) ApplyDefaults() {
	for i := range c.Controllers {
		if rs := c.Controllers[i].RESTServer; rs != nil {
			if rs.Port <= 0 {
				rs.Port = DefaultRESTPort
			}
			if rs.MaxBodyBytes <= 0 {
				rs.MaxBodyBytes = DefaultMaxBodyBytes
			}
		}
		if g := c.Controllers[i].GRPC; g != nil && g.Port <= 0 {
			g.Port = DefaultGRPCPort
		}
	}

	r := &c.Render
	if r.CanvasWidth <= 0 {
		r.CanvasWidth = DefaultCanvasWidth
	}
	if r.CanvasHeight <= 0 {
		r.CanvasHeight = DefaultCanvasHeight
	}
	if r.PlotWidthIn <= 0 {
		r.PlotWidthIn = DefaultPlotWidthIn
	}
	if r.PlotHeightIn <= 0 {
		r.PlotHeightIn = DefaultPlotHeightIn
	}
	if r.TickIntervalKM <= 0 {
		r.TickIntervalKM = DefaultTickIntervalKM
	}

	if c.Cache.AnalysisCacheSize <= 0 {
		c.Cache.AnalysisCacheSize = DefaultAnalysisCacheSize
	}
	if c.Cache.HandleLimit <= 0 {
		c.Cache.HandleLimit = DefaultHandleLimit
	}
}
