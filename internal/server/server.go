package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/dtemkin/nhlapi-go/internal/config"
	"github.com/dtemkin/nhlapi-go/internal/logging"
	"github.com/dtemkin/nhlapi-go/internal/metrics"
	"github.com/dtemkin/nhlapi-go/nhlapi"
)

var metricsSetup = metrics.Setup

// Poller defines the minimal poller behavior needed by the server.
type Poller interface {
	Start(ctx context.Context)
	Stop(ctx context.Context) error
	Status() nhlapi.PollStatus
}

// Telemetry bundles the recorder handed to the client with the exporter
// handler and shutdown hook that the server owns.
type Telemetry struct {
	Recorder *metrics.Recorder
	Handler  http.Handler
	Shutdown func(context.Context) error
}

// SetupTelemetry configures metrics export. A setup failure is logged and
// replaced by an in-memory recorder.
func SetupTelemetry(ctx context.Context, cfg config.MetricsConfig, logger *slog.Logger) Telemetry {
	rec, handler, shutdown, err := metricsSetup(ctx, cfg.Telemetry())
	if err != nil {
		logging.Warn(logger, "metrics setup failed, continuing without telemetry", slog.Any(logging.FieldError, err))
		return Telemetry{Recorder: metrics.NewRecorder()}
	}
	return Telemetry{Recorder: rec, Handler: handler, Shutdown: shutdown}
}

// Server runs an update poller alongside a metrics and health listener.
type Server struct {
	logger        *slog.Logger
	metrics       *metrics.Recorder
	metricsServer httpServer
	metricsStop   func(context.Context) error
	poller        Poller
}

// New wires the poller and telemetry into a server. The listener is only
// created when metrics are enabled.
func New(cfg config.MetricsConfig, logger *slog.Logger, telemetry Telemetry, plr Poller) *Server {
	s := &Server{
		logger:      logger,
		metrics:     telemetry.Recorder,
		metricsStop: telemetry.Shutdown,
		poller:      plr,
	}
	if cfg.Enabled {
		var statusFn func() nhlapi.PollStatus
		if plr != nil {
			statusFn = plr.Status
		}
		s.metricsServer = newHTTPServer(":"+cfg.Port, NewRouter(telemetry.Handler, statusFn, telemetry.Recorder, logger))
	}
	return s
}

// NewRouter mounts /healthz and, when a handler is given, /metrics.
func NewRouter(metricsHandler http.Handler, statusFn func() nhlapi.PollStatus, recorder *metrics.Recorder, logger *slog.Logger) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(requestLogger(logger, recorder))

	r.Get("/healthz", healthHandler(statusFn, logger))
	if metricsHandler != nil {
		r.Method(http.MethodGet, "/metrics", metricsHandler)
	}
	return r
}

// Run starts the poller and listener, then waits for context cancellation to shut down gracefully.
func (s *Server) Run(ctx context.Context, stop context.CancelFunc) {
	s.startMetrics(stop)
	if s.poller != nil {
		s.poller.Start(ctx)
	}

	<-ctx.Done()
	logging.Info(s.logger, "shutdown signal received")

	s.gracefulShutdown()
}

func (s *Server) startMetrics(stop context.CancelFunc) {
	if s.metricsServer == nil {
		return
	}
	launchServer("metrics", s.metricsServer, s.logger, func(error) {
		if stop != nil {
			stop()
		}
	})
}

func (s *Server) gracefulShutdown() {
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if s.poller != nil {
		if err := s.poller.Stop(shutdownCtx); err != nil {
			logging.Error(s.logger, "failed to stop poller", err)
		}
	}

	if s.metricsServer != nil {
		if err := s.metricsServer.Shutdown(shutdownCtx); err != nil {
			logging.Warn(s.logger, "metrics server shutdown failed", slog.Any(logging.FieldError, err))
		}
	}

	if s.metricsStop != nil {
		if err := s.metricsStop(shutdownCtx); err != nil {
			logging.Warn(s.logger, "metrics shutdown failed", slog.Any(logging.FieldError, err))
		}
	}

	logging.Info(s.logger, "shutdown complete")
}

func launchServer(name string, srv httpServer, logger *slog.Logger, onError func(error)) {
	go func() {
		logging.Info(logger, "starting "+name+" server", slog.String("addr", srv.Addr()))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logging.Warn(logger, name+" server failed", slog.Any(logging.FieldError, err))
			if onError != nil {
				onError(err)
			}
		}
	}()
}

// Handler exposes the listener's HTTP handler (nil when metrics are disabled).
func (s *Server) Handler() http.Handler {
	if s.metricsServer == nil {
		return nil
	}
	return s.metricsServer.Handler()
}
