package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()

	if cfg.StatsAPI.BaseURL != defaultBaseURL {
		t.Fatalf("expected default base url %s, got %s", defaultBaseURL, cfg.StatsAPI.BaseURL)
	}
	if cfg.StatsAPI.Version != defaultVersion {
		t.Fatalf("expected default version %d, got %d", defaultVersion, cfg.StatsAPI.Version)
	}
	if cfg.StatsAPI.Timeout != defaultTimeout {
		t.Fatalf("expected default timeout %s, got %s", defaultTimeout, cfg.StatsAPI.Timeout)
	}
	if cfg.StatsAPI.Workers != defaultWorkers {
		t.Fatalf("expected default workers %d, got %d", defaultWorkers, cfg.StatsAPI.Workers)
	}
	if cfg.StatsAPI.RPS != 0 || cfg.StatsAPI.SeasonsFile != "" || cfg.StatsAPI.StrictGameType {
		t.Fatalf("unexpected stats api defaults %+v", cfg.StatsAPI)
	}
	if cfg.Metrics.Enabled {
		t.Fatalf("expected metrics disabled by default")
	}
	if cfg.Metrics.Port != defaultMetricsPort || cfg.Metrics.ServiceName != defaultServiceName {
		t.Fatalf("unexpected metrics defaults %+v", cfg.Metrics)
	}
	if cfg.Log.Level != defaultLogLevel || cfg.Log.Format != defaultLogFormat {
		t.Fatalf("unexpected log defaults %+v", cfg.Log)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv(envBaseURL, "http://example.com/api")
	t.Setenv(envVersion, "2")
	t.Setenv(envTimeout, "3s")
	t.Setenv(envWorkers, "12")
	t.Setenv(envRPS, "4.5")
	t.Setenv(envSeasonsFile, "/tmp/seasons.csv")
	t.Setenv(envStrictGameType, "true")
	t.Setenv(envMetricsOn, "1")
	t.Setenv(envMetricsPort, "9191")
	t.Setenv(envOtelEndpoint, "collector:4318")
	t.Setenv(envLogLevel, "debug")
	t.Setenv(envLogFormat, "json")

	cfg := Load()

	api := cfg.StatsAPI
	if api.BaseURL != "http://example.com/api" || api.Version != 2 || api.Timeout != 3*time.Second {
		t.Fatalf("unexpected stats api overrides %+v", api)
	}
	if api.Workers != 12 || api.RPS != 4.5 || api.SeasonsFile != "/tmp/seasons.csv" || !api.StrictGameType {
		t.Fatalf("unexpected stats api overrides %+v", api)
	}
	if !cfg.Metrics.Enabled || cfg.Metrics.Port != "9191" || cfg.Metrics.OtlpEndpoint != "collector:4318" {
		t.Fatalf("unexpected metrics overrides %+v", cfg.Metrics)
	}
	if cfg.Log.Level != "debug" || cfg.Log.Format != "json" {
		t.Fatalf("unexpected log overrides %+v", cfg.Log)
	}
}

func TestLoadInvalidDurationFallsBack(t *testing.T) {
	t.Setenv(envTimeout, "not-a-duration")

	cfg := Load()

	if cfg.StatsAPI.Timeout != defaultTimeout {
		t.Fatalf("expected default timeout on invalid value, got %s", cfg.StatsAPI.Timeout)
	}
}

func TestLoadNonPositiveDurationFallsBack(t *testing.T) {
	t.Setenv(envTimeout, "0s")

	cfg := Load()

	if cfg.StatsAPI.Timeout != defaultTimeout {
		t.Fatalf("expected default timeout on non-positive value, got %s", cfg.StatsAPI.Timeout)
	}
}

func TestClientConfigMapsFields(t *testing.T) {
	api := StatsAPIConfig{BaseURL: "http://x", Version: 1, Timeout: time.Second, Workers: 2, RPS: 3, StrictGameType: true}

	cfg, err := api.ClientConfig(nil, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.BaseURL != "http://x" || cfg.Workers != 2 || cfg.RequestsPerSecond != 3 || !cfg.StrictGameType {
		t.Fatalf("unexpected client config %+v", cfg)
	}
	if cfg.Seasons != nil {
		t.Fatalf("expected bundled season table when no file set")
	}
}

func TestClientConfigLoadsSeasonsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "seasons.csv")
	if err := os.WriteFile(path, []byte("1,2017-2018,31,82,1271\n"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}

	cfg, err := StatsAPIConfig{SeasonsFile: path}.ClientConfig(nil, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Seasons == nil || cfg.Seasons.Len() != 1 {
		t.Fatalf("expected one season loaded, got %+v", cfg.Seasons)
	}
}

func TestClientConfigMissingSeasonsFile(t *testing.T) {
	_, err := StatsAPIConfig{SeasonsFile: filepath.Join(t.TempDir(), "missing.csv")}.ClientConfig(nil, nil)
	if err == nil {
		t.Fatal("expected error for missing seasons file")
	}
}

func TestClientConfigTimezone(t *testing.T) {
	cfg, err := StatsAPIConfig{Timezone: "America/Toronto"}.ClientConfig(nil, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Location == nil || cfg.Location.String() != "America/Toronto" {
		t.Fatalf("unexpected location %v", cfg.Location)
	}

	if _, err := (StatsAPIConfig{Timezone: "Mars/Base"}).ClientConfig(nil, nil); err == nil {
		t.Fatal("expected error for unknown timezone")
	}
}

func TestMetricsTelemetry(t *testing.T) {
	m := MetricsConfig{Enabled: true, Port: "1", ServiceName: "svc", OtlpEndpoint: "e", OtlpInsecure: true}
	tc := m.Telemetry()
	if !tc.Enabled || tc.Port != "1" || tc.ServiceName != "svc" || tc.OtlpEndpoint != "e" || !tc.OtlpInsecure {
		t.Fatalf("unexpected telemetry config %+v", tc)
	}
}
