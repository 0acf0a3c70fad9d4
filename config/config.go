// Package config loads the service configuration from file and TEMPCAST_ prefixed environment
// variables.
package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/aouyang1/go-tempcast/arima"
)

var ErrInvalidConfig = errors.New("invalid config")

// Config represents the complete application configuration
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Data     DataConfig     `mapstructure:"data"`
	Forecast ForecastConfig `mapstructure:"forecast"`
	Cache    CacheConfig    `mapstructure:"cache"`
	Logging  LoggingConfig  `mapstructure:"logging"`
}

// ServerConfig represents http server configuration
type ServerConfig struct {
	Host            string        `mapstructure:"host"`
	HTTPPort        int           `mapstructure:"http_port"`
	ForecastTimeout time.Duration `mapstructure:"forecast_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// DataConfig locates the temperature csv and names its columns
type DataConfig struct {
	Path          string   `mapstructure:"path"`
	DateColumn    string   `mapstructure:"date_column"`
	ValueColumn   string   `mapstructure:"value_column"`
	CountryColumn string   `mapstructure:"country_column"`
	DateFormats   []string `mapstructure:"date_formats"`
}

// ForecastConfig configures the two forecasting models
type ForecastConfig struct {
	TargetYear         int     `mapstructure:"target_year"`
	Method             string  `mapstructure:"method"` // exact, css
	MaxIterations      int     `mapstructure:"max_iterations"`
	Tolerance          float64 `mapstructure:"tolerance"`
	SeasonalPeriod     int     `mapstructure:"seasonal_period"`
	StartAfterLastDate bool    `mapstructure:"start_after_last_date"`
	// Fallback is a "p,d,q" order substituted for a failing model. Empty disables it.
	Fallback string `mapstructure:"fallback"`
}

// CacheConfig selects where forecast results are kept between requests
type CacheConfig struct {
	Enabled  bool          `mapstructure:"enabled"`
	Backend  string        `mapstructure:"backend"` // memory, redis
	TTL      time.Duration `mapstructure:"ttl"`
	RedisURL string        `mapstructure:"redis_url"`
	Prefix   string        `mapstructure:"prefix"`
}

// LoggingConfig represents logging configuration
type LoggingConfig struct {
	Level      string `mapstructure:"level"`       // trace, debug, info, warn, error
	Format     string `mapstructure:"format"`      // json, console
	OutputPath string `mapstructure:"output_path"` // stdout, stderr, file path
	TimeFormat string `mapstructure:"time_format"` // RFC3339, Unix, Kitchen
}

// DefaultConfig returns default configuration
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:            "0.0.0.0",
			HTTPPort:        8040,
			ForecastTimeout: 2 * time.Minute,
			ShutdownTimeout: 10 * time.Second,
		},
		Data: DataConfig{
			Path:          "GlobalLandTemperaturesByCountry.csv",
			DateColumn:    "dt",
			ValueColumn:   "AverageTemperature",
			CountryColumn: "Country",
			DateFormats:   []string{"2006-01-02", "2006-01"},
		},
		Forecast: ForecastConfig{
			TargetYear:     2040,
			Method:         string(arima.MethodExact),
			MaxIterations:  arima.DefaultMaxIterations,
			Tolerance:      arima.DefaultTolerance,
			SeasonalPeriod: 12,
		},
		Cache: CacheConfig{
			Enabled: true,
			Backend: "memory",
			TTL:     24 * time.Hour,
			Prefix:  "tempcast",
		},
		Logging: LoggingConfig{
			Level:      "info",
			Format:     "json",
			OutputPath: "stdout",
			TimeFormat: "RFC3339",
		},
	}
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if err := c.Server.Validate(); err != nil {
		return fmt.Errorf("server config: %w", err)
	}
	if err := c.Data.Validate(); err != nil {
		return fmt.Errorf("data config: %w", err)
	}
	if err := c.Forecast.Validate(); err != nil {
		return fmt.Errorf("forecast config: %w", err)
	}
	if err := c.Cache.Validate(); err != nil {
		return fmt.Errorf("cache config: %w", err)
	}
	if err := c.Logging.Validate(); err != nil {
		return fmt.Errorf("logging config: %w", err)
	}
	return nil
}

// Validate validates server configuration
func (c *ServerConfig) Validate() error {
	if c.HTTPPort < 1 || c.HTTPPort > 65535 {
		return fmt.Errorf("invalid http_port: %d, %w", c.HTTPPort, ErrInvalidConfig)
	}
	if c.ForecastTimeout < 0 {
		return fmt.Errorf("forecast_timeout must not be negative, %w", ErrInvalidConfig)
	}
	return nil
}

// Validate validates data configuration
func (c *DataConfig) Validate() error {
	if c.DateColumn == "" || c.ValueColumn == "" || c.CountryColumn == "" {
		return fmt.Errorf("date_column, value_column and country_column are required, %w", ErrInvalidConfig)
	}
	if len(c.DateFormats) == 0 {
		return fmt.Errorf("at least one date format is required, %w", ErrInvalidConfig)
	}
	return nil
}

// Validate validates forecast configuration
func (c *ForecastConfig) Validate() error {
	if c.TargetYear < 1 {
		return fmt.Errorf("invalid target_year: %d, %w", c.TargetYear, ErrInvalidConfig)
	}
	switch arima.Method(c.Method) {
	case arima.MethodExact, arima.MethodCSS:
	default:
		return fmt.Errorf("method must be one of: exact, css, got %q, %w", c.Method, ErrInvalidConfig)
	}
	if c.MaxIterations < 1 {
		return fmt.Errorf("invalid max_iterations: %d, %w", c.MaxIterations, ErrInvalidConfig)
	}
	if c.SeasonalPeriod < 2 {
		return fmt.Errorf("invalid seasonal_period: %d, %w", c.SeasonalPeriod, ErrInvalidConfig)
	}
	if _, err := c.FallbackOrder(); err != nil {
		return err
	}
	return nil
}

// FallbackOrder parses Fallback, returning nil when it is unset
func (c *ForecastConfig) FallbackOrder() (*arima.Order, error) {
	if c.Fallback == "" {
		return nil, nil
	}
	var p, d, q int
	if _, err := fmt.Sscanf(c.Fallback, "%d,%d,%d", &p, &d, &q); err != nil {
		return nil, fmt.Errorf("fallback %q must look like p,d,q, %w", c.Fallback, ErrInvalidConfig)
	}
	order := arima.NewOrder(p, d, q)
	if err := order.Validate(); err != nil {
		return nil, fmt.Errorf("fallback %q, %w", c.Fallback, errors.Join(err, ErrInvalidConfig))
	}
	return &order, nil
}

// Validate validates cache configuration
func (c *CacheConfig) Validate() error {
	if !c.Enabled {
		return nil
	}
	switch c.Backend {
	case "memory":
	case "redis":
		if c.RedisURL == "" {
			return fmt.Errorf("redis_url is required for the redis backend, %w", ErrInvalidConfig)
		}
	default:
		return fmt.Errorf("backend must be one of: memory, redis, got %q, %w", c.Backend, ErrInvalidConfig)
	}
	if c.TTL < 0 {
		return fmt.Errorf("ttl must not be negative, %w", ErrInvalidConfig)
	}
	return nil
}

// Validate validates logging configuration
func (c *LoggingConfig) Validate() error {
	validLevels := map[string]bool{
		"trace": true,
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLevels[c.Level] {
		return fmt.Errorf("logging.level must be one of: trace, debug, info, warn, error, %w", ErrInvalidConfig)
	}

	validFormats := map[string]bool{
		"json":    true,
		"console": true,
	}
	if !validFormats[c.Format] {
		return fmt.Errorf("logging.format must be one of: json, console, %w", ErrInvalidConfig)
	}
	return nil
}
