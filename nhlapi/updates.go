package nhlapi

import (
	"context"
	"log/slog"
	"net/url"
	"time"

	"github.com/dtemkin/nhlapi-go/internal/logging"
	"github.com/dtemkin/nhlapi-go/internal/timeutil"
)

// UpdatesRequest selects games and the starting point for diff-patch updates.
// Exactly one of FromTime and NMinutes must be set.
type UpdatesRequest struct {
	Season     any
	GameType   any
	GameDate   any
	GameNumber any
	// FromTime is an HHMMSS string; updates since GameDate_FromTime are fetched once.
	FromTime any
	// NMinutes switches to continuous polling: each pass asks for updates since
	// now minus NMinutes, then waits NMinutes/2 before the next pass.
	NMinutes int
	// OnBatch, when set, receives each pass's results as they arrive.
	OnBatch func([]Game)
}

type updatePlan struct {
	selection gameSelection
	date      string
	fromTime  string
	window    time.Duration
}

func (p updatePlan) interval() time.Duration {
	return p.window / 2
}

// Updates fetches diff-patch updates. With FromTime it performs a single pass.
// With NMinutes it polls until ctx is cancelled and returns everything collected
// along with ctx.Err(); a failed pass ends the loop with that error.
func (c *Client) Updates(ctx context.Context, req UpdatesRequest) ([]Game, error) {
	plan, err := c.planUpdates(req)
	if err != nil {
		return nil, err
	}
	if plan.fromTime != "" {
		return c.updatesSince(ctx, plan, Timecode(plan.date, plan.fromTime))
	}
	return c.pollUpdates(ctx, plan, req.OnBatch)
}

func (c *Client) planUpdates(req UpdatesRequest) (updatePlan, error) {
	hasFrom := req.FromTime != nil && req.FromTime != ""
	hasWindow := req.NMinutes != 0
	if hasFrom == hasWindow {
		return updatePlan{}, &ValidationError{Reason: "exactly one of FromTime or NMinutes must be specified"}
	}
	if req.NMinutes < 0 {
		return updatePlan{}, invalid("n_minutes", req.NMinutes, "must be positive")
	}

	date, err := NormalizeDate(req.GameDate)
	if err != nil {
		return updatePlan{}, err
	}
	sel, err := c.selectGames(req.Season, req.GameType, req.GameNumber)
	if err != nil {
		return updatePlan{}, err
	}

	plan := updatePlan{selection: sel, date: date}
	if hasFrom {
		clock, err := NormalizeTime(req.FromTime)
		if err != nil {
			return updatePlan{}, err
		}
		plan.fromTime = clock
		return plan, nil
	}
	plan.window = time.Duration(req.NMinutes) * time.Minute
	return plan, nil
}

func (c *Client) updatesSince(ctx context.Context, plan updatePlan, timecode string) ([]Game, error) {
	params := url.Values{"startTimecode": []string{timecode}}
	return c.fetchSelection(ctx, DetailDiffPatch, plan.selection, params)
}

// rollingTimecode is the game date joined with the clock time NMinutes ago.
func (c *Client) rollingTimecode(plan updatePlan) string {
	return Timecode(plan.date, timeutil.FormatClock(c.now().Add(-plan.window)))
}

func (c *Client) pollUpdates(ctx context.Context, plan updatePlan, onBatch func([]Game)) ([]Game, error) {
	logger := logging.FromContext(ctx, c.logger)
	collected := make([]Game, 0)

	for {
		if err := ctx.Err(); err != nil {
			return collected, err
		}

		timecode := c.rollingTimecode(plan)
		start := time.Now()
		batch, err := c.updatesSince(ctx, plan, timecode)
		c.metrics.RecordPollCycle(time.Since(start), err)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return collected, ctxErr
			}
			return collected, err
		}

		collected = append(collected, batch...)
		if onBatch != nil {
			onBatch(batch)
		}
		logging.Info(logger, "update poll complete",
			slog.String(logging.FieldTimecode, timecode),
			slog.Int(logging.FieldCount, len(batch)),
		)

		if err := ctx.Err(); err != nil {
			return collected, err
		}
		select {
		case <-ctx.Done():
			return collected, ctx.Err()
		case <-c.after(plan.interval()):
		}
	}
}
