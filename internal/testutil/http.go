package testutil

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

// Get serves a GET for path against h.
func Get(h http.Handler, path string) *httptest.ResponseRecorder {
	return Do(h, httptest.NewRequest(http.MethodGet, path, nil))
}

// Do serves req against h.
func Do(h http.Handler, req *http.Request) *httptest.ResponseRecorder {
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

// ExpectJSON fails the test unless the response has the wanted status, then
// decodes the body into dest when dest is non-nil.
func ExpectJSON(t *testing.T, rr *httptest.ResponseRecorder, status int, dest any) {
	t.Helper()
	if rr.Code != status {
		t.Fatalf("expected status %d, got %d: %s", status, rr.Code, rr.Body.String())
	}
	if dest == nil {
		return
	}
	if ct := rr.Header().Get("Content-Type"); ct != "application/json" {
		t.Fatalf("expected JSON content type, got %q", ct)
	}
	if err := json.NewDecoder(rr.Body).Decode(dest); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
}
