package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// YAMLProvider implements ConfigProvider for YAML configuration files
type YAMLProvider struct {
	filename string
	config   *ConfigData
}

// NewYAMLProvider creates a new YAML configuration provider
func NewYAMLProvider(filename string) *YAMLProvider {
	return &YAMLProvider{
		filename: filename,
	}
}

// LoadConfig loads the complete configuration from YAML file
func (y *YAMLProvider) LoadConfig() (*ConfigData, error) {
	cfgFile, err := os.ReadFile(y.filename)
	if err != nil {
		return nil, err
	}

	config, err := ParseYAML(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", y.filename, err)
	}

	y.config = config
	return config, nil
}

// ParseYAML converts a YAML document into ConfigData with defaults applied
func ParseYAML(doc []byte) (*ConfigData, error) {
	var yamlConfig struct {
		Controllers []ControllerYAML `yaml:"controllers,omitempty"`
		Render      RenderYAML       `yaml:"render,omitempty"`
		Cache       CacheYAML        `yaml:"cache,omitempty"`
	}

	if err := yaml.Unmarshal(doc, &yamlConfig); err != nil {
		return nil, err
	}

	config := &ConfigData{
		Controllers: make([]ControllerData, len(yamlConfig.Controllers)),
		Render: RenderData{
			CanvasWidth:    yamlConfig.Render.CanvasWidth,
			CanvasHeight:   yamlConfig.Render.CanvasHeight,
			PlotWidthIn:    yamlConfig.Render.PlotWidthIn,
			PlotHeightIn:   yamlConfig.Render.PlotHeightIn,
			TickIntervalKM: yamlConfig.Render.TickIntervalKM,
			AssetsHost:     yamlConfig.Render.AssetsHost,
		},
		Cache: CacheData{
			AnalysisCacheSize: yamlConfig.Cache.AnalysisCacheSize,
			HandleLimit:       yamlConfig.Cache.HandleLimit,
		},
	}

	for i, controller := range yamlConfig.Controllers {
		config.Controllers[i] = ControllerData{
			Type: controller.Type,
		}

		if controller.RESTServer != nil {
			config.Controllers[i].RESTServer = &RESTServerData{
				Cert:         controller.RESTServer.Cert,
				Key:          controller.RESTServer.Key,
				Port:         controller.RESTServer.Port,
				ListenAddr:   controller.RESTServer.ListenAddr,
				MaxBodyBytes: controller.RESTServer.MaxBodyBytes,
			}
		}

		if controller.GRPC != nil {
			config.Controllers[i].GRPC = &GRPCData{
				Cert:       controller.GRPC.Cert,
				Key:        controller.GRPC.Key,
				Port:       controller.GRPC.Port,
				ListenAddr: controller.GRPC.ListenAddr,
			}
		}
	}

	config.ApplyDefaults()
	return config, nil
}

func (y *YAMLProvider) loaded() (*ConfigData, error) {
	if y.config == nil {
		if _, err := y.LoadConfig(); err != nil {
			return nil, err
		}
	}
	return y.config, nil
}

// GetControllers returns controller configurations
func (y *YAMLProvider) GetControllers() ([]ControllerData, error) {
	c, err := y.loaded()
	if err != nil {
		return nil, err
	}
	return c.Controllers, nil
}

// GetRenderConfig returns the render defaults
func (y *YAMLProvider) GetRenderConfig() (*RenderData, error) {
	c, err := y.loaded()
	if err != nil {
		return nil, err
	}
	return &c.Render, nil
}

// GetCacheConfig returns the cache bounds
func (y *YAMLProvider) GetCacheConfig() (*CacheData, error) {
	c, err := y.loaded()
	if err != nil {
		return nil, err
	}
	return &c.Cache, nil
}

// IsReadOnly returns true since YAML files are read-only through this interface
func (y *YAMLProvider) IsReadOnly() bool {
	return true
}

// Close is a no-op for YAML provider
func (y *YAMLProvider) Close() error {
	return nil
}

// YAML-specific structs with proper YAML tags
type ControllerYAML struct {
	Type       string          `yaml:"type,omitempty"`
	RESTServer *RESTServerYAML `yaml:"rest,omitempty"`
	GRPC       *GRPCYAML       `yaml:"grpc,omitempty"`
}

type RESTServerYAML struct {
	Cert         string `yaml:"cert,omitempty"`
	Key          string `yaml:"key,omitempty"`
	Port         int    `yaml:"port,omitempty"`
	ListenAddr   string `yaml:"listen-addr,omitempty"`
	MaxBodyBytes int64  `yaml:"max-body-bytes,omitempty"`
}

type GRPCYAML struct {
	Cert       string `yaml:"cert,omitempty"`
	Key        string `yaml:"key,omitempty"`
	Port       int    `yaml:"port,omitempty"`
	ListenAddr string `yaml:"listen-addr,omitempty"`
}

type RenderYAML struct {
	CanvasWidth    float64 `yaml:"canvas-width,omitempty"`
	CanvasHeight   float64 `yaml:"canvas-height,omitempty"`
	PlotWidthIn    float64 `yaml:"plot-width-in,omitempty"`
	PlotHeightIn   float64 `yaml:"plot-height-in,omitempty"`
	TickIntervalKM float64 `yaml:"tick-interval-km,omitempty"`
	AssetsHost     string  `yaml:"assets-host,omitempty"`
}

type CacheYAML struct {
	AnalysisCacheSize int `yaml:"analysis-cache-size,omitempty"`
	HandleLimit       int `yaml:"handle-limit,omitempty"`
}
