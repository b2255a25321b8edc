package app

import (
	"context"
	"time"

	"stock-sentry/logger"
	"stock-sentry/trace"
)

// RunCleanup archives and prunes yesterday's rows across the managed
// tables.
func (a *App) RunCleanup(ctx context.Context) error {
	_, span := trace.StartSpan(ctx, "cleanup")
	defer span.End()

	res, err := a.retention.Run(time.Now().UTC())
	for table, n := range res.Archived {
		logger.Infow("table archived", "table", table, "archived", n, "deleted", res.Deleted[table])
	}
	if err != nil {
		return err
	}
	logger.Infow("cleanup complete", "tables", len(res.Archived))
	return nil
}
