package app

import (
	"context"
	"time"

	"stock-sentry/logger"
	"stock-sentry/trace"
)

// RunScrape captures the current most-active table as a snapshot batch.
func (a *App) RunScrape(ctx context.Context) error {
	_, span := trace.StartSpan(ctx, "scrape")
	defer span.End()

	rows, err := a.scraper.Scrape(time.Now().UTC())
	if err != nil {
		return err
	}
	if len(rows) == 0 {
		logger.Warnw("scrape returned no rows")
		return nil
	}
	if err := a.snapshots.UpsertSnapshots(rows); err != nil {
		return err
	}
	logger.Infow("snapshot stored", "rows", len(rows))
	return nil
}
