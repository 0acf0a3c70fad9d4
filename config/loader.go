package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Load loads configuration from file. An empty path searches the default locations and falls
// back to defaults when no file is found.
func Load(configPath string) (*Config, error) {
	v := viper.New()

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("tempcast")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./configs")
		v.AddConfigPath("/etc/tempcast")
	}

	setDefaults(v)

	v.SetEnvPrefix("TEMPCAST")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	return parseConfig(v)
}

// setDefaults registers every key so environment overrides apply without a config file
func setDefaults(v *viper.Viper) {
	d := DefaultConfig()

	v.SetDefault("server.host", d.Server.Host)
	v.SetDefault("server.http_port", d.Server.HTTPPort)
	v.SetDefault("server.forecast_timeout", d.Server.ForecastTimeout)
	v.SetDefault("server.shutdown_timeout", d.Server.ShutdownTimeout)

	v.SetDefault("data.path", d.Data.Path)
	v.SetDefault("data.date_column", d.Data.DateColumn)
	v.SetDefault("data.value_column", d.Data.ValueColumn)
	v.SetDefault("data.country_column", d.Data.CountryColumn)
	v.SetDefault("data.date_formats", d.Data.DateFormats)

	v.SetDefault("forecast.target_year", d.Forecast.TargetYear)
	v.SetDefault("forecast.method", d.Forecast.Method)
	v.SetDefault("forecast.max_iterations", d.Forecast.MaxIterations)
	v.SetDefault("forecast.tolerance", d.Forecast.Tolerance)
	v.SetDefault("forecast.seasonal_period", d.Forecast.SeasonalPeriod)
	v.SetDefault("forecast.start_after_last_date", d.Forecast.StartAfterLastDate)
	v.SetDefault("forecast.fallback", d.Forecast.Fallback)

	v.SetDefault("cache.enabled", d.Cache.Enabled)
	v.SetDefault("cache.backend", d.Cache.Backend)
	v.SetDefault("cache.ttl", d.Cache.TTL)
	v.SetDefault("cache.redis_url", d.Cache.RedisURL)
	v.SetDefault("cache.prefix", d.Cache.Prefix)

	v.SetDefault("logging.level", d.Logging.Level)
	v.SetDefault("logging.format", d.Logging.Format)
	v.SetDefault("logging.output_path", d.Logging.OutputPath)
	v.SetDefault("logging.time_format", d.Logging.TimeFormat)
}

// parseConfig parses viper config into Config struct
func parseConfig(v *viper.Viper) (*Config, error) {
	var cfg Config

	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}
