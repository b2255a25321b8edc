package app

import (
	"context"
	"time"

	models "stock-sentry/database/models_pkg"
	"stock-sentry/logger"
	"stock-sentry/marketdata"
	"stock-sentry/trace"
)

// seriesFetcher and barSink are the slices of the market client and the
// bars repository the backfill needs.
type seriesFetcher interface {
	TimeSeriesBatch(ctx context.Context, symbols []string, interval string, outputSize int) (map[string][]marketdata.Bar, error)
}

type barSink interface {
	UpsertBars(bars []models.PriceBar) error
}

// RunBackfill loads the configured span of daily history for the whole
// watchlist, in provider-sized batches with the credit-window pause
// between them. Safe to re-run: bars upsert in place.
func (a *App) RunBackfill(ctx context.Context) error {
	ctx, span := trace.StartSpan(ctx, "backfill")
	defer span.End()

	wait := time.Duration(a.cfg.Signals.BatchWaitSeconds) * time.Second
	return backfillDaily(ctx, a.market, a.bars, a.cfg.Watchlist,
		a.cfg.Signals.BatchSize, a.cfg.Signals.HistoryDays, wait)
}

func backfillDaily(ctx context.Context, fetcher seriesFetcher, sink barSink, watchlist []string, batchSize, historyDays int, wait time.Duration) error {
	if historyDays < 1 {
		logger.Infow("history span disabled, skipping backfill", "days", historyDays)
		return nil
	}

	filled := 0
	chunks := marketdata.Chunk(watchlist, batchSize)
	for i, chunk := range chunks {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if i > 0 && wait > 0 {
			logger.Debugw("waiting out provider credit window", "wait", wait, "batch", i+1, "of", len(chunks))
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(wait):
			}
		}

		batch, err := fetcher.TimeSeriesBatch(ctx, chunk, models.IntervalDaily, historyDays)
		if err != nil {
			// a failed batch must not sink the rest of the backfill
			logger.Errorw("batch fetch failed", "symbols", chunk, "error", err)
			continue
		}
		for symbol, series := range batch {
			if err := sink.UpsertBars(toPriceBars(symbol, models.IntervalDaily, series)); err != nil {
				logger.Errorw("bar persist failed", "symbol", symbol, "error", err)
				continue
			}
			filled++
			logger.Debugw("history backfilled", "symbol", symbol, "bars", len(series))
		}
	}

	logger.Infow("backfill complete", "symbols", len(watchlist), "filled", filled)
	return nil
}
