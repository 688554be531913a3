package config

import "github.com/dtemkin/nhlapi-go/internal/logging"

// Config holds runtime configuration for the CLI.
type Config struct {
	StatsAPI StatsAPIConfig
	Metrics  MetricsConfig
	Log      logging.Config
}

// Load reads configuration from environment variables with sensible defaults.
func Load() Config {
	return Config{
		StatsAPI: loadStatsAPI(),
		Metrics:  loadMetrics(),
		Log: logging.Config{
			Level:   envOrDefault(envLogLevel, defaultLogLevel),
			Format:  envOrDefault(envLogFormat, defaultLogFormat),
			Service: defaultServiceName,
		},
	}
}
