package testutil

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
)

// Copyright is the notice the fake stats API attaches to every response.
const Copyright = "NHL and the NHL Shield are registered trademarks of the National Hockey League."

// StatsAPI is an httptest server that answers like the NHL stats API. Every
// JSON object response carries a copyright field, and all requests are counted.
type StatsAPI struct {
	Server *httptest.Server

	mu       sync.Mutex
	requests []*http.Request
	routes   map[string]http.HandlerFunc
	fallback http.HandlerFunc
}

// NewStatsAPI starts a fake API. By default any /v1/game/{id}/... path echoes
// the game id back; other paths return 404.
func NewStatsAPI(t *testing.T) *StatsAPI {
	t.Helper()
	api := &StatsAPI{routes: make(map[string]http.HandlerFunc)}
	api.fallback = api.echoGame
	api.Server = httptest.NewServer(http.HandlerFunc(api.serve))
	t.Cleanup(api.Server.Close)
	return api
}

// URL is the base URL without a version segment.
func (a *StatsAPI) URL() string {
	return a.Server.URL
}

// Handle registers a handler for an exact request path, e.g. "/v1/teams".
func (a *StatsAPI) Handle(path string, h http.HandlerFunc) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.routes[path] = h
}

// HandleJSON registers a path that answers with body plus a copyright field.
func (a *StatsAPI) HandleJSON(path string, body map[string]any) {
	a.Handle(path, func(w http.ResponseWriter, r *http.Request) {
		WriteStatsJSON(w, http.StatusOK, body)
	})
}

// Requests returns a copy of the requests received so far.
func (a *StatsAPI) Requests() []*http.Request {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]*http.Request(nil), a.requests...)
}

// Count returns how many requests have been received.
func (a *StatsAPI) Count() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.requests)
}

func (a *StatsAPI) serve(w http.ResponseWriter, r *http.Request) {
	a.mu.Lock()
	a.requests = append(a.requests, r.Clone(r.Context()))
	h, ok := a.routes[r.URL.Path]
	a.mu.Unlock()

	if ok {
		h(w, r)
		return
	}
	a.fallback(w, r)
}

func (a *StatsAPI) echoGame(w http.ResponseWriter, r *http.Request) {
	parts := strings.Split(strings.Trim(r.URL.Path, "/"), "/")
	if len(parts) < 4 || parts[1] != "game" {
		WriteStatsJSON(w, http.StatusNotFound, map[string]any{"message": "Object not found"})
		return
	}
	WriteStatsJSON(w, http.StatusOK, map[string]any{
		"gamePk":        parts[2],
		"detail":        strings.Join(parts[3:], "/"),
		"startTimecode": r.URL.Query().Get("startTimecode"),
	})
}

// GameIDFromPath extracts the game id from a /v1/game/{id}/... path.
func GameIDFromPath(path string) string {
	parts := strings.Split(strings.Trim(path, "/"), "/")
	if len(parts) < 3 {
		return ""
	}
	return parts[2]
}

// WriteStatsJSON writes body with the copyright notice added.
func WriteStatsJSON(w http.ResponseWriter, status int, body map[string]any) {
	out := make(map[string]any, len(body)+1)
	for k, v := range body {
		out[k] = v
	}
	out["copyright"] = Copyright
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(out)
}

// RoundTripperFunc adapts a function to http.RoundTripper.
type RoundTripperFunc func(*http.Request) (*http.Response, error)

func (f RoundTripperFunc) RoundTrip(r *http.Request) (*http.Response, error) {
	return f(r)
}
