package nhlapi

import (
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/dtemkin/nhlapi-go/internal/logging"
)

type httpDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// resolveHTTPClient leaves the default client without its own Timeout; each
// request's context deadline bounds it instead.
func resolveHTTPClient(client *http.Client) httpDoer {
	if client != nil {
		return client
	}
	return &http.Client{}
}

func normalizeBaseURL(raw string, version int) string {
	if raw == "" {
		raw = DefaultBaseURL
	}
	if version <= 0 {
		version = DefaultVersion
	}
	return strings.TrimSuffix(raw, "/") + "/v" + strconv.Itoa(version)
}

func resolveTimeout(timeout time.Duration) time.Duration {
	if timeout <= 0 {
		return defaultHTTPTimeout
	}
	return timeout
}

func resolveWorkers(workers int) int {
	if workers <= 0 {
		return defaultWorkers
	}
	return workers
}

func resolveCollection(name string) string {
	if name == "" {
		return defaultCollection
	}
	return strings.Trim(name, "/")
}

// loggingDoer tags every upstream request with a request id and logs its outcome.
type loggingDoer struct {
	next   httpDoer
	logger *slog.Logger
	newID  func() string
}

func newLoggingDoer(next httpDoer, logger *slog.Logger) loggingDoer {
	return loggingDoer{next: next, logger: logger, newID: func() string { return uuid.New().String() }}
}

func (d loggingDoer) Do(req *http.Request) (*http.Response, error) {
	start := time.Now()
	reqID := req.Header.Get(requestIDHeader)
	if reqID == "" {
		reqID = d.newID()
		req.Header.Set(requestIDHeader, reqID)
	}

	resp, err := d.next.Do(req)

	logger := logging.FromContext(req.Context(), d.logger)
	if logger == nil {
		return resp, err
	}
	attrs := []any{
		slog.String(logging.FieldRequestID, reqID),
		slog.String(logging.FieldMethod, req.Method),
		slog.String(logging.FieldPath, req.URL.Path),
		slog.Int64(logging.FieldDurationMS, time.Since(start).Milliseconds()),
	}
	if err != nil {
		logger.Warn("upstream request failed", append(attrs, slog.Any(logging.FieldError, err))...)
		return resp, err
	}
	logger.Debug("upstream request complete", append(attrs, slog.Int(logging.FieldStatusCode, resp.StatusCode))...)
	return resp, err
}
