package server

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/dtemkin/nhlapi-go/internal/logging"
	"github.com/dtemkin/nhlapi-go/nhlapi"
)

type healthResponse struct {
	Status              string     `json:"status"`
	Passes              int        `json:"passes"`
	Games               int        `json:"games"`
	ConsecutiveFailures int        `json:"consecutiveFailures"`
	LastSuccess         *time.Time `json:"lastSuccess,omitempty"`
	Error               string     `json:"error,omitempty"`
}

// healthHandler answers 200 while the poller is healthy and 503 otherwise.
// Without a status source it always reports ok.
func healthHandler(statusFn func() nhlapi.PollStatus, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.Context().Err(); err != nil {
			writeJSON(w, r, http.StatusServiceUnavailable, healthResponse{Status: "shutting down"}, logger)
			return
		}
		if statusFn == nil {
			writeJSON(w, r, http.StatusOK, healthResponse{Status: "ok"}, logger)
			return
		}

		status := statusFn()
		resp := healthResponse{
			Passes:              status.Passes,
			Games:               status.Games,
			ConsecutiveFailures: status.ConsecutiveFailures,
			Error:               status.LastError,
		}
		if !status.LastSuccess.IsZero() {
			last := status.LastSuccess
			resp.LastSuccess = &last
		}
		if status.IsReady() {
			resp.Status = "ready"
			writeJSON(w, r, http.StatusOK, resp, logger)
			return
		}
		resp.Status = "not ready"
		writeJSON(w, r, http.StatusServiceUnavailable, resp, logger)
	}
}

func writeJSON(w http.ResponseWriter, r *http.Request, status int, payload any, logger *slog.Logger) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		logging.Error(logging.FromContext(r.Context(), logger), "failed to encode response", err)
	}
}
