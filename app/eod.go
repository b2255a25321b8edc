package app

import (
	"context"
	"time"

	models "stock-sentry/database/models_pkg"
	"stock-sentry/logger"
	"stock-sentry/trace"
)

// RunEOD captures the daily bar for every watchlist symbol. Run after the
// close; the stored open seeds the next session's move-from-open rule
// until the provider publishes today's daily bar.
func (a *App) RunEOD(ctx context.Context) error {
	ctx, span := trace.StartSpan(ctx, "eod")
	defer span.End()

	stored := 0
	for i, symbol := range a.cfg.Watchlist {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if i > 0 {
			time.Sleep(courtesyPause)
		}

		series, err := a.market.TimeSeries(ctx, symbol, models.IntervalDaily, 2)
		if err != nil {
			logger.Errorw("daily bar fetch failed", "symbol", symbol, "error", err)
			continue
		}
		if err := a.bars.UpsertBars(toPriceBars(symbol, models.IntervalDaily, series)); err != nil {
			logger.Errorw("daily bar persist failed", "symbol", symbol, "error", err)
			continue
		}
		stored++
	}

	logger.Infow("eod capture complete", "symbols", len(a.cfg.Watchlist), "stored", stored)
	return nil
}
