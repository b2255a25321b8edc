package app

import (
	"context"
	"time"

	models "stock-sentry/database/models_pkg"
	"stock-sentry/logger"
	"stock-sentry/trace"
)

// RunTrade consumes the latest trend pass and executes the position state
// machine for every labeled symbol. The decision price is the observation's
// latest price; symbols without one are skipped.
func (a *App) RunTrade(ctx context.Context) error {
	_, span := trace.StartSpan(ctx, "trade")
	defer span.End()

	observations, err := a.snapshots.LatestObservations()
	if err != nil {
		return err
	}
	if len(observations) == 0 {
		logger.Infow("no trend observations, run trend first")
		return nil
	}

	now := time.Now().UTC()
	decided := 0
	for _, obs := range observations {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if obs.LatestPrice == nil || *obs.LatestPrice <= 0 {
			logger.Warnw("observation without a price, skipping", "symbol", obs.Symbol)
			continue
		}

		record, err := a.trades.ExecuteDecision(obs.Symbol, obs.Label, *obs.LatestPrice, now)
		if err != nil {
			logger.Errorw("trade decision failed", "symbol", obs.Symbol, "error", err)
			continue
		}
		decided++

		switch record.Action {
		case models.ActionBuy:
			logger.Infow("position opened",
				"symbol", obs.Symbol, "price", record.Price, "trend", obs.Label)
		case models.ActionSell:
			pnl := 0.0
			if record.Pnl != nil {
				pnl = *record.Pnl
			}
			logger.Infow("position closed",
				"symbol", obs.Symbol, "price", record.Price, "pnl", pnl)
		default:
			logger.Debugw("no position change",
				"symbol", obs.Symbol, "action", record.Action, "trend", obs.Label)
		}
	}

	logger.Infow("trade pass complete", "observations", len(observations), "decided", decided)
	return nil
}
