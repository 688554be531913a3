package nhlapi

import (
	"context"
	"log/slog"
	"net/url"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/dtemkin/nhlapi-go/internal/logging"
)

type fetchTask struct {
	gameID string
	path   string
}

// fanOut fetches every task with at most c.workers requests in flight. Each
// task writes only its own result slot; the first failure cancels the rest and
// is returned without partial results.
func (c *Client) fanOut(ctx context.Context, label string, tasks []fetchTask, params url.Values) ([]Payload, error) {
	start := time.Now()
	captured := cloneValues(params)
	results := make([]Payload, len(tasks))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.workers)
	for i, task := range tasks {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return &FetchError{GameID: task.gameID, URL: c.resourceURL(task.path), Err: err}
			}
			payload, err := c.fetch(gctx, request{
				gameID: task.gameID,
				label:  label,
				path:   task.path,
				params: captured,
			})
			if err != nil {
				return err
			}
			results[i] = payload
			return nil
		})
	}
	err := g.Wait()

	duration := time.Since(start)
	c.metrics.RecordBatch(label, len(tasks), duration, err)
	logger := logging.FromContext(ctx, c.logger)
	if err != nil {
		logging.Error(logger, "batch fetch failed", err,
			slog.String(logging.FieldDetail, label),
			slog.Int(logging.FieldCount, len(tasks)),
		)
		return nil, err
	}
	logging.Debug(logger, "batch fetch complete",
		slog.String(logging.FieldDetail, label),
		slog.Int(logging.FieldCount, len(tasks)),
		slog.Int64(logging.FieldDurationMS, duration.Milliseconds()),
	)
	return results, nil
}
