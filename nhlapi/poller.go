package nhlapi

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/dtemkin/nhlapi-go/internal/logging"
)

// UpdatePoller runs diff-patch polling in the background. Unlike Updates it
// keeps going after a failed pass and reports health through Status.
type UpdatePoller struct {
	client   *Client
	plan     updatePlan
	sink     func([]Game)
	logger   *slog.Logger
	interval time.Duration

	ticker   *time.Ticker
	done     chan struct{}
	stopOnce sync.Once
	startMu  sync.Mutex
	started  bool
	cancel   context.CancelFunc
	loop     sync.WaitGroup

	statusMu sync.RWMutex
	status   PollStatus
}

// PollStatus describes the recent health of the poll loop.
type PollStatus struct {
	ConsecutiveFailures int
	LastError           string
	LastAttempt         time.Time
	LastSuccess         time.Time
	Passes              int
	Games               int
}

// IsReady reports whether the poller has had a recent success and is not failing repeatedly.
func (s PollStatus) IsReady() bool {
	if s.LastSuccess.IsZero() {
		return false
	}
	return s.ConsecutiveFailures < 3
}

// NewUpdatePoller validates req and builds a poller for it. req must set
// NMinutes; FromTime requests are one-shot and belong to Updates.
func (c *Client) NewUpdatePoller(req UpdatesRequest) (*UpdatePoller, error) {
	plan, err := c.planUpdates(req)
	if err != nil {
		return nil, err
	}
	if plan.fromTime != "" {
		return nil, &ValidationError{Field: "from_time", Value: req.FromTime, Reason: "background polling requires NMinutes"}
	}
	return &UpdatePoller{
		client:   c,
		plan:     plan,
		sink:     req.OnBatch,
		logger:   c.logger,
		interval: plan.interval(),
		done:     make(chan struct{}),
	}, nil
}

// Start begins polling until the context is cancelled or Stop is called.
func (p *UpdatePoller) Start(ctx context.Context) {
	p.startMu.Lock()
	defer p.startMu.Unlock()
	if p.started {
		return
	}
	select {
	case <-p.done:
		return
	default:
	}
	p.started = true

	ctx, p.cancel = context.WithCancel(ctx)
	p.ticker = time.NewTicker(p.interval)
	p.loop.Add(1)

	go func() {
		defer p.loop.Done()
		defer p.stopTicker()
		p.logInfo("update poller started", slog.Int64(logging.FieldDurationMS, p.interval.Milliseconds()))
		p.pollOnce(ctx)

		for {
			select {
			case <-ctx.Done():
				p.logInfo("update poller stopped")
				return
			case <-p.done:
				p.logInfo("update poller stopped")
				return
			case <-p.ticker.C:
				p.pollOnce(ctx)
			}
		}
	}()
}

// Stop halts the polling loop, aborting any in-flight pass, and waits for the
// loop to exit or ctx to end. No batch is delivered after Stop returns nil.
func (p *UpdatePoller) Stop(ctx context.Context) error {
	p.stopOnce.Do(func() {
		close(p.done)
		p.startMu.Lock()
		if p.cancel != nil {
			p.cancel()
		}
		p.startMu.Unlock()
	})

	exited := make(chan struct{})
	go func() {
		p.loop.Wait()
		close(exited)
	}()
	select {
	case <-exited:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (p *UpdatePoller) pollOnce(ctx context.Context) {
	start := time.Now()
	p.recordAttempt(start)
	timecode := p.client.rollingTimecode(p.plan)
	batch, err := p.client.updatesSince(ctx, p.plan, timecode)
	p.client.metrics.RecordPollCycle(time.Since(start), err)
	if err != nil && ctx.Err() != nil {
		return
	}
	if err != nil {
		p.logError("update poll failed", err,
			slog.String(logging.FieldTimecode, timecode),
			slog.Int64(logging.FieldDurationMS, time.Since(start).Milliseconds()),
		)
		p.recordFailure(err, start)
		return
	}

	if ctx.Err() != nil {
		return
	}
	if p.sink != nil {
		p.sink(batch)
	}
	p.recordSuccess(start, len(batch))
	p.logInfo("update poll complete",
		slog.String(logging.FieldTimecode, timecode),
		slog.Int(logging.FieldCount, len(batch)),
		slog.Int64(logging.FieldDurationMS, time.Since(start).Milliseconds()),
	)
}

func (p *UpdatePoller) stopTicker() {
	if p.ticker != nil {
		p.ticker.Stop()
	}
}

func (p *UpdatePoller) logInfo(msg string, args ...any) {
	logging.Info(p.logger, msg, args...)
}

func (p *UpdatePoller) logError(msg string, err error, args ...any) {
	logging.Error(p.logger, msg, err, args...)
}

func (p *UpdatePoller) recordAttempt(at time.Time) {
	p.statusMu.Lock()
	defer p.statusMu.Unlock()
	p.status.LastAttempt = at
}

func (p *UpdatePoller) recordSuccess(at time.Time, games int) {
	p.statusMu.Lock()
	defer p.statusMu.Unlock()
	p.status.ConsecutiveFailures = 0
	p.status.LastError = ""
	p.status.LastSuccess = at
	p.status.Passes++
	p.status.Games += games
}

func (p *UpdatePoller) recordFailure(err error, at time.Time) {
	p.statusMu.Lock()
	defer p.statusMu.Unlock()
	p.status.ConsecutiveFailures++
	if err != nil {
		p.status.LastError = err.Error()
	}
	p.status.LastAttempt = at
}

// Status returns a snapshot of the poller's recent health.
func (p *UpdatePoller) Status() PollStatus {
	p.statusMu.RLock()
	defer p.statusMu.RUnlock()
	return p.status
}
