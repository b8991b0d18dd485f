package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig
	Compiler  CompilerConfig
	Placement PlacementConfig
	Logging   LogConfig
	RateLimit RateLimitConfig
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port string `envconfig:"PORT" default:"8000"`
	Host string `envconfig:"HOST" default:"0.0.0.0"`
}

// CompilerConfig holds blueprint compiler configuration.
type CompilerConfig struct {
	OutputDir     string  `envconfig:"OUTPUT_DIR" default:"output"`
	ResourcesDir  string  `envconfig:"ESMINI_RESOURCES" default:"resources"`
	StopTime      float64 `envconfig:"STOP_TIME" default:"60"`
	DensityFactor float64 `envconfig:"TRAFFIC_DENSITY_FACTOR" default:"2.0"`
	// KnowledgeFile optionally overlays map contexts and rules (YAML or TOML).
	KnowledgeFile string `envconfig:"KNOWLEDGE_FILE"`
}

// PlacementConfig selects the background traffic source. URL takes
// precedence over Catalog; with neither, high density yields no traffic.
type PlacementConfig struct {
	URL     string        `envconfig:"PLACEMENT_URL"`
	Catalog string        `envconfig:"PLACEMENT_CATALOG"`
	Timeout time.Duration `envconfig:"PLACEMENT_TIMEOUT" default:"10s"`
	Retries int           `envconfig:"PLACEMENT_RETRIES" default:"3"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level       string `envconfig:"LOG_LEVEL" default:"info"`
	Development bool   `envconfig:"LOG_DEV" default:"false"`
}

// RateLimitConfig holds rate limiting configuration.
type RateLimitConfig struct {
	RequestsPerSecond int  `envconfig:"RATE_LIMIT_RPS" default:"20"`
	Burst             int  `envconfig:"RATE_LIMIT_BURST" default:"40"`
	Enabled           bool `envconfig:"RATE_LIMIT_ENABLED" default:"true"`
}

// Load loads configuration from environment variables.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadOrDefault loads configuration from environment or returns default.
func LoadOrDefault() *Config {
	cfg, err := Load()
	if err != nil {
		return Default()
	}
	return cfg
}

// Validate rejects values the compiler cannot run with.
func (c *Config) Validate() error {
	if c.Compiler.StopTime <= 0 {
		return fmt.Errorf("STOP_TIME must be positive, got %g", c.Compiler.StopTime)
	}
	if c.Compiler.DensityFactor <= 0 {
		return fmt.Errorf("TRAFFIC_DENSITY_FACTOR must be positive, got %g", c.Compiler.DensityFactor)
	}
	if c.Placement.Retries < 0 {
		return fmt.Errorf("PLACEMENT_RETRIES must not be negative, got %d", c.Placement.Retries)
	}
	if c.RateLimit.Enabled && c.RateLimit.RequestsPerSecond <= 0 {
		return fmt.Errorf("RATE_LIMIT_RPS must be positive when rate limiting is enabled")
	}
	return nil
}

// Default returns default configuration.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port: "8000",
			Host: "0.0.0.0",
		},
		Compiler: CompilerConfig{
			OutputDir:     "output",
			ResourcesDir:  "resources",
			StopTime:      60,
			DensityFactor: 2.0,
		},
		Placement: PlacementConfig{
			Timeout: 10 * time.Second,
			Retries: 3,
		},
		Logging: LogConfig{
			Level:       "info",
			Development: false,
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: 20,
			Burst:             40,
			Enabled:           true,
		},
	}
}
