package config

import (
	"fmt"
	"os"
	"time"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"
)

// Config represents the complete application configuration
type Config struct {
	Server   ServerConfig   `yaml:"server" envconfig:"SERVER"`
	Logging  LoggingConfig  `yaml:"logging" envconfig:"LOGGING"`
	Data     DataConfig     `yaml:"data" envconfig:"DATA"`
	Forecast ForecastConfig `yaml:"forecast" envconfig:"FORECAST"`
}

// ServerConfig contains HTTP server configuration
type ServerConfig struct {
	Port            int           `yaml:"port" envconfig:"PORT"`
	ReadTimeout     time.Duration `yaml:"read_timeout" envconfig:"READ_TIMEOUT"`
	WriteTimeout    time.Duration `yaml:"write_timeout" envconfig:"WRITE_TIMEOUT"`
	IdleTimeout     time.Duration `yaml:"idle_timeout" envconfig:"IDLE_TIMEOUT"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" envconfig:"SHUTDOWN_TIMEOUT"`
	MaxUploadBytes  int64         `yaml:"max_upload_bytes" envconfig:"MAX_UPLOAD_BYTES"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level    string `yaml:"level" envconfig:"LEVEL"`
	Format   string `yaml:"format" envconfig:"FORMAT"`
	Output   string `yaml:"output" envconfig:"OUTPUT"`
	FilePath string `yaml:"file_path" envconfig:"FILE_PATH"`
}

// DataConfig controls dataset loading and the synthetic demo fallback
type DataConfig struct {
	DemoDays int   `yaml:"demo_days" envconfig:"DEMO_DAYS"`
	DemoSeed int64 `yaml:"demo_seed" envconfig:"DEMO_SEED"`
}

// ForecastConfig controls the forecast engine defaults
type ForecastConfig struct {
	HorizonDays  int           `yaml:"horizon_days" envconfig:"HORIZON_DAYS"`
	FitTimeout   time.Duration `yaml:"fit_timeout" envconfig:"FIT_TIMEOUT"`
	FourierOrder int           `yaml:"fourier_order" envconfig:"FOURIER_ORDER"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            8080,
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    60 * time.Second,
			IdleTimeout:     60 * time.Second,
			ShutdownTimeout: 30 * time.Second,
			MaxUploadBytes:  32 << 20,
		},
		Logging: LoggingConfig{
			Level:    "info",
			Format:   "json",
			Output:   "console",
			FilePath: "logs/app.log",
		},
		Data: DataConfig{
			DemoDays: 180,
			DemoSeed: 42,
		},
		Forecast: ForecastConfig{
			HorizonDays:  90,
			FitTimeout:   30 * time.Second,
			FourierOrder: 3,
		},
	}
}

// Load layers configuration sources: built-in defaults, then an optional
// YAML file, then FSQ_-prefixed environment variables. Environment always
// wins.
func Load() (*Config, error) {
	cfg := Default()

	configFile := configFilePath()
	if _, err := os.Stat(configFile); err == nil {
		data, err := os.ReadFile(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	if err := envconfig.Process("FSQ", cfg); err != nil {
		return nil, fmt.Errorf("failed to load config from env: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// configFilePath returns the config file location, overridable via FSQ_CONFIG_FILE.
func configFilePath() string {
	if path := os.Getenv("FSQ_CONFIG_FILE"); path != "" {
		return path
	}
	return "config.yaml"
}

// validate checks configuration values
func (c *Config) validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}
	if c.Data.DemoDays <= 0 {
		return fmt.Errorf("demo_days must be positive, got %d", c.Data.DemoDays)
	}
	if c.Forecast.HorizonDays <= 0 {
		return fmt.Errorf("forecast horizon_days must be positive, got %d", c.Forecast.HorizonDays)
	}
	if c.Forecast.FourierOrder < 1 {
		return fmt.Errorf("forecast fourier_order must be at least 1, got %d", c.Forecast.FourierOrder)
	}
	switch c.Logging.Output {
	case "console", "file", "both":
	default:
		return fmt.Errorf("invalid logging output mode: %s", c.Logging.Output)
	}
	return nil
}
