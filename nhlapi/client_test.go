package nhlapi

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/url"
	"strings"
	"testing"
	"time"

	"golang.org/x/time/rate"

	"github.com/dtemkin/nhlapi-go/internal/metrics"
	"github.com/dtemkin/nhlapi-go/internal/testutil"
)

func newTestClient(t *testing.T, baseURL string, mutate ...func(*Config)) *Client {
	t.Helper()
	cfg := Config{
		BaseURL: baseURL,
		Seasons: mustSeasonTable(t, testSeasonsCSV),
		Workers: 2,
		Timeout: 2 * time.Second,
	}
	for _, m := range mutate {
		m(&cfg)
	}
	c, err := NewClient(cfg)
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	return c
}

func TestNewClientDefaults(t *testing.T) {
	c, err := NewClient(Config{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c.baseURL != "https://statsapi.web.nhl.com/api/v1" {
		t.Fatalf("unexpected base url %q", c.baseURL)
	}
	if c.collection != "game" || c.timeout != defaultHTTPTimeout || c.workers != defaultWorkers {
		t.Fatalf("unexpected defaults: collection=%q timeout=%s workers=%d", c.collection, c.timeout, c.workers)
	}
	if c.Seasons().Len() != 82 {
		t.Fatalf("expected bundled season table, got %d seasons", c.Seasons().Len())
	}
	if c.limiter.Limit() != rate.Inf {
		t.Fatalf("expected unlimited rate by default, got %v", c.limiter.Limit())
	}
}

func TestNewClientOptions(t *testing.T) {
	c := newTestClient(t, "http://example.test/api/", func(cfg *Config) {
		cfg.Version = 2
		cfg.GameCollection = "/games/"
		cfg.RequestsPerSecond = 5
	})
	if c.baseURL != "http://example.test/api/v2" {
		t.Fatalf("unexpected base url %q", c.baseURL)
	}
	if c.collection != "games" {
		t.Fatalf("unexpected collection %q", c.collection)
	}
	if c.limiter.Limit() != rate.Limit(5) {
		t.Fatalf("expected 5 rps limit, got %v", c.limiter.Limit())
	}
	if got := c.gamePath("2017020001", DetailBoxscore); got != "games/2017020001/boxscore" {
		t.Fatalf("unexpected game path %q", got)
	}
}

func TestNewClientLocation(t *testing.T) {
	loc := time.FixedZone("EST", -5*60*60)
	c := newTestClient(t, "http://example.test/api", func(cfg *Config) {
		cfg.Location = loc
	})
	if got := c.now().Location(); got != loc {
		t.Fatalf("expected clock in %v, got %v", loc, got)
	}
}

func TestGetStripsCopyright(t *testing.T) {
	api := testutil.NewStatsAPI(t)
	api.HandleJSON("/v1/teams/1/roster", map[string]any{"roster": []any{map[string]any{"id": 8471675}}})
	c := newTestClient(t, api.URL())

	payload, err := c.TeamRoster(context.Background(), 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := payload["copyright"]; ok {
		t.Fatalf("expected copyright removed, got %v", payload)
	}
	var roster []map[string]int
	if err := payload.Decode("roster", &roster); err != nil || roster[0]["id"] != 8471675 {
		t.Fatalf("unexpected roster %v %v", roster, err)
	}
	if err := payload.Decode("missing", &roster); err == nil {
		t.Fatalf("expected error for missing key")
	}
}

func TestGetNonSuccessStatusIsFetchError(t *testing.T) {
	api := testutil.NewStatsAPI(t)
	api.Handle("/v1/teams/99/stats", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(strings.Repeat("z", 2000)))
	})
	c := newTestClient(t, api.URL())

	_, err := c.TeamStats(context.Background(), 99)
	fErr, ok := AsFetchError(err)
	if !ok {
		t.Fatalf("expected FetchError, got %v", err)
	}
	if fErr.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", fErr.StatusCode)
	}
	if !strings.HasSuffix(fErr.URL, "/v1/teams/99/stats") {
		t.Fatalf("unexpected url %q", fErr.URL)
	}
	if n := strings.Count(err.Error(), "z"); n != maxErrorBody {
		t.Fatalf("expected body truncated to %d bytes, got %d", maxErrorBody, n)
	}
}

func TestGetUndecodableBodies(t *testing.T) {
	api := testutil.NewStatsAPI(t)
	api.Handle("/v1/bad", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("{not json"))
	})
	api.Handle("/v1/array", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("[1,2,3]"))
	})
	api.Handle("/v1/null", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("null"))
	})
	c := newTestClient(t, api.URL())

	for _, path := range []string{"bad", "array", "null"} {
		_, err := c.Get(context.Background(), path, nil)
		fErr, ok := AsFetchError(err)
		if !ok {
			t.Fatalf("%s: expected FetchError, got %v", path, err)
		}
		if fErr.StatusCode != http.StatusOK {
			t.Fatalf("%s: expected status recorded, got %d", path, fErr.StatusCode)
		}
	}
}

func TestGetTimeoutIsFetchError(t *testing.T) {
	api := testutil.NewStatsAPI(t)
	api.Handle("/v1/slow", func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	})
	c := newTestClient(t, api.URL(), func(cfg *Config) { cfg.Timeout = 20 * time.Millisecond })

	_, err := c.Get(context.Background(), "slow", nil)
	if _, ok := AsFetchError(err); !ok {
		t.Fatalf("expected FetchError, got %v", err)
	}
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline exceeded, got %v", err)
	}
}

func TestTimeoutAboveDefaultIsHonoured(t *testing.T) {
	c := newTestClient(t, "http://example.test/api", func(cfg *Config) { cfg.Timeout = 30 * time.Second })
	doer, ok := c.httpClient.(loggingDoer)
	if !ok {
		t.Fatalf("expected logging doer, got %T", c.httpClient)
	}
	if hc, ok := doer.next.(*http.Client); !ok || hc.Timeout != 0 {
		t.Fatalf("expected default http client without a fixed timeout, got %+v", doer.next)
	}

	var remaining time.Duration
	rt := testutil.RoundTripperFunc(func(r *http.Request) (*http.Response, error) {
		deadline, ok := r.Context().Deadline()
		if !ok {
			t.Fatal("expected request deadline")
		}
		remaining = time.Until(deadline)
		return &http.Response{StatusCode: http.StatusOK, Body: io.NopCloser(strings.NewReader(`{"teams":[]}`))}, nil
	})
	c = newTestClient(t, "http://example.test/api", func(cfg *Config) {
		cfg.Timeout = 30 * time.Second
		cfg.HTTPClient = &http.Client{Transport: rt}
	})
	if _, err := c.Get(context.Background(), "teams", nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if remaining <= defaultHTTPTimeout || remaining > 30*time.Second {
		t.Fatalf("expected a deadline near 30s, got %s", remaining)
	}
}

func TestGetCancelledContextSkipsRequest(t *testing.T) {
	api := testutil.NewStatsAPI(t)
	c := newTestClient(t, api.URL(), func(cfg *Config) { cfg.RequestsPerSecond = 1 })

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := c.Get(ctx, "teams", nil)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context canceled, got %v", err)
	}
	if api.Count() != 0 {
		t.Fatalf("expected no requests, got %d", api.Count())
	}
}

func TestRequestCarriesHeadersAndParams(t *testing.T) {
	api := testutil.NewStatsAPI(t)
	api.HandleJSON("/v1/schedule", map[string]any{"dates": []any{}})
	c := newTestClient(t, api.URL(), func(cfg *Config) {
		cfg.Headers = http.Header{"X-Api-Key": []string{"secret"}}
		cfg.Params = url.Values{"site": []string{"en_nhl"}, "date": []string{"2017-10-04"}}
	})

	_, err := c.Get(context.Background(), "/schedule", url.Values{"date": []string{"2017-10-05"}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	reqs := api.Requests()
	if len(reqs) != 1 {
		t.Fatalf("expected 1 request, got %d", len(reqs))
	}
	req := reqs[0]
	if req.Header.Get("X-Api-Key") != "secret" || req.Header.Get("Accept") != "application/json" {
		t.Fatalf("unexpected headers %v", req.Header)
	}
	if req.Header.Get(requestIDHeader) == "" {
		t.Fatalf("expected request id header")
	}
	q := req.URL.Query()
	if q.Get("site") != "en_nhl" || q.Get("date") != "2017-10-05" {
		t.Fatalf("expected client params merged with per-call override, got %v", q)
	}
}

func TestClientRecordsFetchMetrics(t *testing.T) {
	api := testutil.NewStatsAPI(t)
	api.HandleJSON("/v1/teams/1/stats", map[string]any{"stats": []any{}})
	rec := metrics.NewRecorder()
	c := newTestClient(t, api.URL(), func(cfg *Config) { cfg.Metrics = rec })

	if _, err := c.TeamStats(context.Background(), 1); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := c.TeamStats(context.Background(), 2); err == nil {
		t.Fatalf("expected 404 for unknown team")
	}

	snap := rec.Snapshot("teams")
	if snap.Fetches != 2 || snap.FetchErrors != 1 {
		t.Fatalf("unexpected snapshot %+v", snap)
	}
}

func TestClientLogsUpstreamRequests(t *testing.T) {
	api := testutil.NewStatsAPI(t)
	api.HandleJSON("/v1/divisions", map[string]any{"divisions": []any{}})
	logger, buf := testutil.NewBufferLogger()
	c := newTestClient(t, api.URL(), func(cfg *Config) { cfg.Logger = logger })

	if _, err := c.Divisions(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "upstream request complete") || !strings.Contains(out, "status_code=200") || !strings.Contains(out, "request_id=") {
		t.Fatalf("expected upstream request log, got %q", out)
	}
}

func TestDecodePayload(t *testing.T) {
	payload, err := decodePayload(strings.NewReader(`{"copyright":"c","gamePk":1}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(payload) != 1 || string(payload["gamePk"]) != "1" {
		t.Fatalf("unexpected payload %v", payload)
	}
}

func TestPathHelpers(t *testing.T) {
	if got := joinPath("/game/", "", "2017020001", "feed/live"); got != "game/2017020001/feed/live" {
		t.Fatalf("unexpected join %q", got)
	}
	if got := firstSegment("/teams/1/roster"); got != "teams" {
		t.Fatalf("unexpected segment %q", got)
	}
	if got := firstSegment("schedule"); got != "schedule" {
		t.Fatalf("unexpected segment %q", got)
	}
	if got := cloneValues(nil); got == nil || len(got) != 0 {
		t.Fatalf("expected empty values, got %v", got)
	}
}
