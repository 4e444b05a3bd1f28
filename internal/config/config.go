package config

import (
	"fmt"
	"os"
	"time"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"
)

// EnvPrefix namespaces every environment variable read by Load
const EnvPrefix = "MALNUTRITION"

// Config represents the complete application configuration
type Config struct {
	Server    ServerConfig    `yaml:"server" envconfig:"SERVER"`
	Security  SecurityConfig  `yaml:"security" envconfig:"SECURITY"`
	Logging   LoggingConfig   `yaml:"logging" envconfig:"LOGGING"`
	Telemetry TelemetryConfig `yaml:"telemetry" envconfig:"TELEMETRY"`
	Data      DataConfig      `yaml:"data" envconfig:"DATA"`
	Geo       GeoConfig       `yaml:"geo" envconfig:"GEO"`
	Dashboard DashboardConfig `yaml:"dashboard" envconfig:"DASHBOARD"`
}

// ServerConfig contains HTTP server configuration
type ServerConfig struct {
	Port            int           `yaml:"port" envconfig:"PORT"`
	ReadTimeout     time.Duration `yaml:"read_timeout" envconfig:"READ_TIMEOUT"`
	WriteTimeout    time.Duration `yaml:"write_timeout" envconfig:"WRITE_TIMEOUT"`
	IdleTimeout     time.Duration `yaml:"idle_timeout" envconfig:"IDLE_TIMEOUT"`
	MaxHeaderBytes  int           `yaml:"max_header_bytes" envconfig:"MAX_HEADER_BYTES"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" envconfig:"SHUTDOWN_TIMEOUT"`
	RequestTimeout  time.Duration `yaml:"request_timeout" envconfig:"REQUEST_TIMEOUT"`
}

// SecurityConfig contains security-related configuration
type SecurityConfig struct {
	AllowedOrigins []string        `yaml:"allowed_origins" envconfig:"ALLOWED_ORIGINS"`
	EnableCORS     bool            `yaml:"enable_cors" envconfig:"ENABLE_CORS"`
	RateLimit      RateLimitConfig `yaml:"rate_limit" envconfig:"RATE_LIMIT"`
}

// RateLimitConfig contains rate limiting configuration
type RateLimitConfig struct {
	Enabled bool    `yaml:"enabled" envconfig:"ENABLED"`
	RPS     float64 `yaml:"rps" envconfig:"RPS"`
	Burst   int     `yaml:"burst" envconfig:"BURST"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level       string `yaml:"level" envconfig:"LEVEL"`
	Format      string `yaml:"format" envconfig:"FORMAT"`
	Output      string `yaml:"output" envconfig:"OUTPUT"`
	FilePath    string `yaml:"file_path" envconfig:"FILE_PATH"`
	Development bool   `yaml:"development" envconfig:"DEVELOPMENT"`
}

// TelemetryConfig controls the OpenTelemetry providers
type TelemetryConfig struct {
	ServiceName   string `yaml:"service_name" envconfig:"SERVICE_NAME"`
	EnableMetrics bool   `yaml:"enable_metrics" envconfig:"ENABLE_METRICS"`
	EnableTracing bool   `yaml:"enable_tracing" envconfig:"ENABLE_TRACING"`
}

// DataConfig points at the survey extract
type DataConfig struct {
	CSVPath string `yaml:"csv_path" envconfig:"CSV_PATH"`
}

// BoundaryConfig describes one boundary document and the manual name
// overrides of its level
type BoundaryConfig struct {
	URL          string            `yaml:"url" envconfig:"URL"`
	NameProperty string            `yaml:"name_property" envconfig:"NAME_PROPERTY"`
	Overrides    map[string]string `yaml:"overrides" envconfig:"OVERRIDES"`
}

// GeoConfig contains boundary sources and name reconciliation settings
type GeoConfig struct {
	State               BoundaryConfig `yaml:"state" envconfig:"STATE"`
	District            BoundaryConfig `yaml:"district" envconfig:"DISTRICT"`
	FetchTimeout        time.Duration  `yaml:"fetch_timeout" envconfig:"FETCH_TIMEOUT"`
	SimilarityThreshold float64        `yaml:"similarity_threshold" envconfig:"SIMILARITY_THRESHOLD"`
}

// DashboardConfig holds presentation constants
type DashboardConfig struct {
	TopN               int     `yaml:"top_n" envconfig:"TOP_N"`
	HighlightThreshold float64 `yaml:"highlight_threshold" envconfig:"HIGHLIGHT_THRESHOLD"`
	HistogramBins      int     `yaml:"histogram_bins" envconfig:"HISTOGRAM_BINS"`
	ChartWidth         int     `yaml:"chart_width" envconfig:"CHART_WIDTH"`
	ChartHeight        int     `yaml:"chart_height" envconfig:"CHART_HEIGHT"`
}

// Load builds the configuration from defaults, an optional YAML file and
// environment variables, in increasing order of precedence.
func Load() (*Config, error) {
	cfg := Default()

	if configFile := getConfigFilePath(); configFile != "" {
		if err := loadFromFile(configFile, cfg); err != nil {
			return nil, fmt.Errorf("failed to load config from file: %w", err)
		}
	}

	// Only variables that are actually set override the file and defaults
	if err := envconfig.Process(EnvPrefix, cfg); err != nil {
		return nil, fmt.Errorf("failed to load config from env: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// loadFromFile overlays YAML values onto cfg. Keys absent from the file keep
// their current value.
func loadFromFile(filePath string, cfg *Config) error {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, cfg)
}

// validate validates the configuration
func (c *Config) validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}

	if c.Server.ReadTimeout <= 0 {
		return fmt.Errorf("server read timeout must be positive")
	}

	if c.Server.WriteTimeout <= 0 {
		return fmt.Errorf("server write timeout must be positive")
	}

	if c.Security.EnableCORS && len(c.Security.AllowedOrigins) == 0 {
		return fmt.Errorf("at least one allowed origin must be specified")
	}

	if c.Data.CSVPath == "" {
		return fmt.Errorf("data csv path is required")
	}

	for name, src := range map[string]BoundaryConfig{"state": c.Geo.State, "district": c.Geo.District} {
		if src.URL == "" {
			return fmt.Errorf("geo %s url is required", name)
		}
		if src.NameProperty == "" {
			return fmt.Errorf("geo %s name property is required", name)
		}
	}

	if c.Geo.SimilarityThreshold <= 0 || c.Geo.SimilarityThreshold > 1 {
		return fmt.Errorf("similarity threshold must be in (0, 1]: %v", c.Geo.SimilarityThreshold)
	}

	if c.Geo.FetchTimeout <= 0 {
		return fmt.Errorf("geo fetch timeout must be positive")
	}

	if c.Dashboard.TopN <= 0 {
		return fmt.Errorf("dashboard top_n must be positive: %d", c.Dashboard.TopN)
	}

	if c.Dashboard.HistogramBins <= 0 {
		return fmt.Errorf("dashboard histogram_bins must be positive: %d", c.Dashboard.HistogramBins)
	}

	if c.Dashboard.HighlightThreshold < 0 || c.Dashboard.HighlightThreshold > 100 {
		return fmt.Errorf("dashboard highlight_threshold must be a percentage: %v", c.Dashboard.HighlightThreshold)
	}

	if c.Logging.Format != "json" {
		c.Logging.Format = "json"
	}

	if c.Logging.Output != "both" && c.Logging.Output != "file" && c.Logging.Output != "console" {
		c.Logging.Output = "both"
	}

	if c.Logging.FilePath == "" {
		c.Logging.FilePath = DefaultLogFile
	}

	return nil
}

// getConfigFilePath returns the path to the config file, or "" when none exists
func getConfigFilePath() string {
	if explicit := os.Getenv(EnvPrefix + "_CONFIG"); explicit != "" {
		return explicit
	}

	locations := []string{
		"config.yaml",
		"configs/config.yaml",
		"../configs/config.yaml",
	}

	for _, location := range locations {
		if _, err := os.Stat(location); err == nil {
			return location
		}
	}

	return ""
}

// Default returns default configuration
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            8080,
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    30 * time.Second,
			IdleTimeout:     60 * time.Second,
			MaxHeaderBytes:  1 << 20, // 1MB
			ShutdownTimeout: 30 * time.Second,
			RequestTimeout:  DefaultRequestTimeout,
		},
		Security: SecurityConfig{
			AllowedOrigins: []string{"http://localhost:8080"},
			EnableCORS:     true,
			RateLimit: RateLimitConfig{
				Enabled: true,
				RPS:     DefaultRateLimitRPS,
				Burst:   DefaultBurstSize,
			},
		},
		Logging: LoggingConfig{
			Level:       "info",
			Format:      "json",
			Output:      "both",
			FilePath:    DefaultLogFile,
			Development: false,
		},
		Telemetry: TelemetryConfig{
			ServiceName:   AppName,
			EnableMetrics: true,
			EnableTracing: false,
		},
		Data: DataConfig{
			CSVPath: DefaultCSVPath,
		},
		Geo: GeoConfig{
			State: BoundaryConfig{
				URL:          DefaultStateGeoJSONURL,
				NameProperty: "NAME_1",
				Overrides:    map[string]string{"Odisha": "Orissa"},
			},
			District: BoundaryConfig{
				URL:          DefaultDistrictGeoJSONURL,
				NameProperty: "NAME_2",
			},
			FetchTimeout:        DefaultGeoFetchTimeout,
			SimilarityThreshold: DefaultSimilarityThreshold,
		},
		Dashboard: DashboardConfig{
			TopN:               DefaultTopN,
			HighlightThreshold: DefaultHighlightThreshold,
			HistogramBins:      DefaultHistogramBins,
			ChartWidth:         900,
			ChartHeight:        480,
		},
	}
}
