package config

import (
	"fmt"
	"log/slog"

	"github.com/dtemkin/nhlapi-go/internal/timeutil"
	"github.com/dtemkin/nhlapi-go/nhlapi"
)

// StatsAPIConfig controls how we talk to the NHL stats API.
type StatsAPIConfig struct {
	BaseURL        string
	Version        int
	Timeout        Duration
	Workers        int
	RPS            float64
	SeasonsFile    string
	StrictGameType bool
	Timezone       string
}

func loadStatsAPI() StatsAPIConfig {
	return StatsAPIConfig{
		BaseURL:        envOrDefault(envBaseURL, defaultBaseURL),
		Version:        intEnvOrDefault(envVersion, defaultVersion),
		Timeout:        durationEnvOrDefault(envTimeout, defaultTimeout),
		Workers:        intEnvOrDefault(envWorkers, defaultWorkers),
		RPS:            floatEnvOrDefault(envRPS, 0),
		SeasonsFile:    envOrDefault(envSeasonsFile, ""),
		StrictGameType: boolEnvOrDefault(envStrictGameType, false),
		Timezone:       envOrDefault(envTimezone, ""),
	}
}

// ClientConfig maps the settings onto an nhlapi.Config, loading the season
// table from SeasonsFile when one is set.
func (c StatsAPIConfig) ClientConfig(logger *slog.Logger, rec nhlapi.Recorder) (nhlapi.Config, error) {
	cfg := nhlapi.Config{
		BaseURL:           c.BaseURL,
		Version:           c.Version,
		Timeout:           c.Timeout,
		Workers:           c.Workers,
		RequestsPerSecond: c.RPS,
		StrictGameType:    c.StrictGameType,
		Logger:            logger,
		Metrics:           rec,
	}
	if c.Timezone != "" {
		loc := timeutil.ResolveTimezone(c.Timezone)
		if loc == nil {
			return nhlapi.Config{}, fmt.Errorf("unknown timezone %q", c.Timezone)
		}
		cfg.Location = loc
	}
	if c.SeasonsFile != "" {
		table, err := nhlapi.LoadSeasonTableFile(c.SeasonsFile)
		if err != nil {
			return nhlapi.Config{}, fmt.Errorf("load seasons file %s: %w", c.SeasonsFile, err)
		}
		cfg.Seasons = table
	}
	return cfg, nil
}
