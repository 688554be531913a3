package config

import "time"

const (
	envBaseURL        = "NHLAPI_BASE_URL"
	envVersion        = "NHLAPI_VERSION"
	envTimeout        = "NHLAPI_TIMEOUT"
	envWorkers        = "NHLAPI_WORKERS"
	envRPS            = "NHLAPI_RPS"
	envSeasonsFile    = "NHLAPI_SEASONS_FILE"
	envStrictGameType = "NHLAPI_STRICT_GAME_TYPE"
	envTimezone       = "NHLAPI_TIMEZONE"
	envMetricsPort    = "METRICS_PORT"
	envMetricsOn      = "METRICS_ENABLED"
	envOtelEndpoint   = "OTEL_EXPORTER_OTLP_ENDPOINT"
	envOtelService    = "OTEL_SERVICE_NAME"
	envOtelInsecure   = "OTEL_EXPORTER_OTLP_INSECURE"
	envLogLevel       = "LOG_LEVEL"
	envLogFormat      = "LOG_FORMAT"

	defaultBaseURL     = "https://statsapi.web.nhl.com/api"
	defaultVersion     = 1
	defaultTimeout     = 10 * Duration(time.Second)
	defaultWorkers     = 5
	defaultMetricsPort = "9090"
	defaultServiceName = "nhlapi"
	defaultLogLevel    = "info"
	defaultLogFormat   = "text"
)
