package metrics

import (
	"sync"
	"time"
)

type detailStats struct {
	fetches          int
	fetchErrors      int
	batches          int
	batchErrors      int
	lastBatchSize    int
	lastFetchLatency time.Duration
}

type pollStats struct {
	cycles      int
	errors      int
	lastLatency time.Duration
}

// Recorder captures lightweight, in-memory metrics about stats API calls and
// mirrors them to OpenTelemetry instruments when configured.
type Recorder struct {
	mu    sync.Mutex
	stats map[string]*detailStats
	poll  pollStats
	otel  *otelInstruments
}

func NewRecorder() *Recorder {
	return newRecorder(nil)
}

func newRecorder(otel *otelInstruments) *Recorder {
	return &Recorder{
		stats: make(map[string]*detailStats),
		otel:  otel,
	}
}

// RecordFetch counts a single upstream request for a detail and stores its latency.
func (r *Recorder) RecordFetch(detail string, duration time.Duration, err error) {
	if r == nil {
		return
	}

	r.mu.Lock()
	stats := r.ensureStats(detail)
	stats.fetches++
	stats.lastFetchLatency = duration
	if err != nil {
		stats.fetchErrors++
	}
	r.mu.Unlock()

	if r.otel != nil {
		r.otel.recordFetch(detail, duration, err)
	}
}

// RecordBatch counts a fan-out of size requests for a detail.
func (r *Recorder) RecordBatch(detail string, size int, duration time.Duration, err error) {
	if r == nil {
		return
	}

	r.mu.Lock()
	stats := r.ensureStats(detail)
	stats.batches++
	stats.lastBatchSize = size
	if err != nil {
		stats.batchErrors++
	}
	r.mu.Unlock()

	if r.otel != nil {
		r.otel.recordBatch(detail, size, duration, err)
	}
}

// RecordPollCycle tracks update polling passes and their failures.
func (r *Recorder) RecordPollCycle(duration time.Duration, err error) {
	if r == nil {
		return
	}

	r.mu.Lock()
	r.poll.cycles++
	r.poll.lastLatency = duration
	if err != nil {
		r.poll.errors++
	}
	r.mu.Unlock()

	if r.otel != nil {
		r.otel.recordPoll(duration, err)
	}
}

// RecordHTTPRequest tracks requests served by the metrics/health listener.
func (r *Recorder) RecordHTTPRequest(method, path string, status int, duration time.Duration) {
	if r == nil || r.otel == nil {
		return
	}
	r.otel.recordHTTPRequest(method, path, status, duration)
}

// Snapshot is a copy of the current stats for one detail.
type Snapshot struct {
	Fetches          int
	FetchErrors      int
	Batches          int
	BatchErrors      int
	LastBatchSize    int
	LastFetchLatency time.Duration
}

// Snapshot returns the stats recorded for a detail.
func (r *Recorder) Snapshot(detail string) Snapshot {
	if r == nil {
		return Snapshot{}
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	stats, ok := r.stats[detail]
	if !ok || stats == nil {
		return Snapshot{}
	}
	return Snapshot{
		Fetches:          stats.fetches,
		FetchErrors:      stats.fetchErrors,
		Batches:          stats.batches,
		BatchErrors:      stats.batchErrors,
		LastBatchSize:    stats.lastBatchSize,
		LastFetchLatency: stats.lastFetchLatency,
	}
}

// PollSnapshot is a copy of the poll-cycle stats.
type PollSnapshot struct {
	Cycles      int
	Errors      int
	LastLatency time.Duration
}

// Polls returns the poll-cycle stats recorded so far.
func (r *Recorder) Polls() PollSnapshot {
	if r == nil {
		return PollSnapshot{}
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return PollSnapshot{
		Cycles:      r.poll.cycles,
		Errors:      r.poll.errors,
		LastLatency: r.poll.lastLatency,
	}
}

// ensureStats must be called with r.mu held.
func (r *Recorder) ensureStats(detail string) *detailStats {
	stats, ok := r.stats[detail]
	if !ok {
		stats = &detailStats{}
		r.stats[detail] = stats
	}
	return stats
}
