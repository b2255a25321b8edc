package app

import (
	"context"
	"errors"

	"stock-sentry/logger"
	"stock-sentry/marketdata"
)

// RunStream subscribes to live quotes for the watchlist and refreshes the
// latest snapshot price per tick. Runs until the context is cancelled.
func (a *App) RunStream(ctx context.Context) error {
	logger.Infow("starting quote stream", "symbols", len(a.cfg.Watchlist))
	err := a.streamer.Run(ctx, a.cfg.Watchlist, func(q marketdata.Quote) {
		if err := a.snapshots.UpdateLatestPrice(q.Symbol, q.Price); err != nil {
			logger.Warnw("price refresh failed", "symbol", q.Symbol, "error", err)
			return
		}
		logger.Debugw("price refreshed", "symbol", q.Symbol, "price", q.Price)
	})
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
