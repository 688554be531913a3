package nhlapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

// Recorder receives per-request, per-batch and per-poll-cycle measurements.
type Recorder interface {
	RecordFetch(detail string, duration time.Duration, err error)
	RecordBatch(detail string, size int, duration time.Duration, err error)
	RecordPollCycle(duration time.Duration, err error)
}

type noopRecorder struct{}

func (noopRecorder) RecordFetch(string, time.Duration, error)      {}
func (noopRecorder) RecordBatch(string, int, time.Duration, error) {}
func (noopRecorder) RecordPollCycle(time.Duration, error)          {}

// Config controls how the client reaches the stats API.
type Config struct {
	BaseURL        string
	Version        int
	GameCollection string
	HTTPClient     *http.Client
	// Timeout bounds every individual request.
	Timeout time.Duration
	// Workers is the fan-out width for multi-game fetches.
	Workers int
	// RequestsPerSecond throttles outgoing requests; zero disables throttling.
	RequestsPerSecond float64
	Headers           http.Header
	Params            url.Values
	// Seasons supplies game counts; the bundled dataset is used when nil.
	Seasons        *SeasonTable
	StrictGameType bool
	// Location is the zone rolling poll timecodes are expressed in; local time when nil.
	Location *time.Location
	Logger   *slog.Logger
	Metrics  Recorder
}

// Client maps method calls onto GET requests against the stats API.
type Client struct {
	baseURL    string
	collection string
	httpClient httpDoer
	timeout    time.Duration
	workers    int
	limiter    *rate.Limiter
	headers    http.Header
	params     url.Values
	seasons    *SeasonTable
	gameType   func(any) (string, error)
	logger     *slog.Logger
	metrics    Recorder
	now        func() time.Time
	after      func(time.Duration) <-chan time.Time
}

// NewClient constructs a client with the provided configuration.
func NewClient(cfg Config) (*Client, error) {
	seasons := cfg.Seasons
	if seasons == nil {
		table, err := DefaultSeasonTable()
		if err != nil {
			return nil, fmt.Errorf("load default season table: %w", err)
		}
		seasons = table
	}

	limit := rate.Inf
	if cfg.RequestsPerSecond > 0 {
		limit = rate.Limit(cfg.RequestsPerSecond)
	}

	gameType := NormalizeGameType
	if cfg.StrictGameType {
		gameType = NormalizeGameTypeStrict
	}

	now := time.Now
	if loc := cfg.Location; loc != nil {
		now = func() time.Time { return time.Now().In(loc) }
	}

	var recorder Recorder = noopRecorder{}
	if cfg.Metrics != nil {
		recorder = cfg.Metrics
	}

	return &Client{
		baseURL:    normalizeBaseURL(cfg.BaseURL, cfg.Version),
		collection: resolveCollection(cfg.GameCollection),
		httpClient: newLoggingDoer(resolveHTTPClient(cfg.HTTPClient), cfg.Logger),
		timeout:    resolveTimeout(cfg.Timeout),
		workers:    resolveWorkers(cfg.Workers),
		limiter:    rate.NewLimiter(limit, 1),
		headers:    cfg.Headers.Clone(),
		params:     cloneValues(cfg.Params),
		seasons:    seasons,
		gameType:   gameType,
		logger:     cfg.Logger,
		metrics:    recorder,
		now:        now,
		after:      time.After,
	}, nil
}

// Seasons exposes the season table the client validates game numbers against.
func (c *Client) Seasons() *SeasonTable {
	return c.seasons
}

// Payload is a decoded top-level JSON object with the copyright field removed.
type Payload map[string]json.RawMessage

// Decode unmarshals the named top-level field into dest.
func (p Payload) Decode(key string, dest any) error {
	raw, ok := p[key]
	if !ok {
		return fmt.Errorf("response has no %q field", key)
	}
	return json.Unmarshal(raw, dest)
}

// Get issues a GET for a path relative to the versioned base URL.
func (c *Client) Get(ctx context.Context, path string, params url.Values) (Payload, error) {
	return c.fetch(ctx, request{label: firstSegment(path), path: path, params: params})
}

type request struct {
	gameID string
	label  string
	path   string
	params url.Values
}

func (c *Client) fetch(ctx context.Context, r request) (Payload, error) {
	start := time.Now()
	payload, err := c.do(ctx, r)
	c.metrics.RecordFetch(r.label, time.Since(start), err)
	return payload, err
}

func (c *Client) do(ctx context.Context, r request) (Payload, error) {
	target := c.resourceURL(r.path)
	fail := func(status int, err error) (Payload, error) {
		return nil, &FetchError{GameID: r.gameID, URL: target, StatusCode: status, Err: err}
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return fail(0, fmt.Errorf("rate limit wait: %w", err))
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := c.buildRequest(ctx, target, r.params)
	if err != nil {
		return fail(0, err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fail(0, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return fail(resp.StatusCode, fmt.Errorf("unexpected status %d: %s", resp.StatusCode, strings.TrimSpace(string(body))))
	}

	payload, err := decodePayload(resp.Body)
	if err != nil {
		return fail(resp.StatusCode, err)
	}
	return payload, nil
}

func (c *Client) buildRequest(ctx context.Context, target string, params url.Values) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, err
	}

	q := req.URL.Query()
	for key, vals := range c.params {
		q[key] = append([]string(nil), vals...)
	}
	for key, vals := range params {
		q[key] = append([]string(nil), vals...)
	}
	req.URL.RawQuery = q.Encode()

	for key, vals := range c.headers {
		for _, v := range vals {
			req.Header.Add(key, v)
		}
	}
	req.Header.Set("Accept", "application/json")
	return req, nil
}

func (c *Client) resourceURL(path string) string {
	return c.baseURL + "/" + strings.TrimPrefix(path, "/")
}

func (c *Client) gamePath(gameID, detail string) string {
	return joinPath(c.collection, gameID, detail)
}

// decodePayload parses a JSON object body and drops the copyright notice.
func decodePayload(r io.Reader) (Payload, error) {
	var payload Payload
	if err := json.NewDecoder(r).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	if payload == nil {
		return nil, errors.New("decode response: expected a JSON object")
	}
	delete(payload, copyrightField)
	return payload, nil
}

func joinPath(segments ...string) string {
	parts := make([]string, 0, len(segments))
	for _, s := range segments {
		if s = strings.Trim(s, "/"); s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, "/")
}

func firstSegment(path string) string {
	path = strings.Trim(path, "/")
	if idx := strings.Index(path, "/"); idx >= 0 {
		return path[:idx]
	}
	return path
}

func cloneValues(v url.Values) url.Values {
	if v == nil {
		return url.Values{}
	}
	out := make(url.Values, len(v))
	for key, vals := range v {
		out[key] = append([]string(nil), vals...)
	}
	return out
}
