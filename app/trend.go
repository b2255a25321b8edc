package app

import (
	"context"
	"time"

	models "stock-sentry/database/models_pkg"
	"stock-sentry/logger"
	"stock-sentry/marketdata"
	"stock-sentry/scraper"
	"stock-sentry/trace"
	"stock-sentry/trend"
)

// RunTrend labels every symbol from the latest most-active snapshot. Bars
// are fetched in provider-sized batches with a credit-window pause between
// batches; every observation in the pass shares one computed_at so the
// trade pipeline can consume the pass as a unit.
func (a *App) RunTrend(ctx context.Context) error {
	ctx, span := trace.StartSpan(ctx, "trend")
	defer span.End()

	rows, err := a.snapshots.LatestSnapshots(25)
	if err != nil {
		return err
	}
	if len(rows) == 0 {
		logger.Infow("no snapshot to analyze, run scrape first")
		return nil
	}

	symbols := make([]string, len(rows))
	snapshotBySymbol := make(map[string]models.MostActiveSnapshot, len(rows))
	for i, r := range rows {
		symbols[i] = r.Symbol
		snapshotBySymbol[r.Symbol] = r
	}

	series, err := a.fetchTrendSeries(ctx, symbols)
	if err != nil {
		return err
	}

	params := trend.Params{
		Bars:              a.cfg.Signals.TrendBars,
		MinSlopePctPerBar: a.cfg.Signals.MinSlopePctPerBar,
		MinR2:             a.cfg.Signals.MinR2,
	}
	computedAt := time.Now().UTC()

	labeled := 0
	for _, symbol := range symbols {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		snap := snapshotBySymbol[symbol]

		buyPrice, err := a.trades.OpenBuyPrice(symbol)
		if err != nil {
			logger.Errorw("open position lookup failed", "symbol", symbol, "error", err)
			continue
		}

		latest := snap.Price
		obs := trend.Analyze(trend.Input{
			Symbol:       symbol,
			Closes:       closesOf(series[symbol]),
			StartPrice:   scraper.StartPrice(snap),
			LatestPrice:  &latest,
			OpenBuyPrice: buyPrice,
		}, params, computedAt)

		if err := a.snapshots.SaveObservation(&obs); err != nil {
			logger.Errorw("observation save failed", "symbol", symbol, "error", err)
			continue
		}
		labeled++
		logger.Debugw("trend labeled",
			"symbol", symbol, "label", obs.Label, "method", obs.MethodUsed)
	}

	logger.Infow("trend pass complete", "symbols", len(symbols), "labeled", labeled)
	return nil
}

// fetchTrendSeries pulls intraday bars for the candidate set in batches,
// persisting each batch as it lands. Missing symbols simply have no closes
// and fall through to the analyzer's weaker methods.
func (a *App) fetchTrendSeries(ctx context.Context, symbols []string) (map[string][]marketdata.Bar, error) {
	out := make(map[string][]marketdata.Bar, len(symbols))
	wait := time.Duration(a.cfg.Signals.BatchWaitSeconds) * time.Second

	chunks := marketdata.Chunk(symbols, a.cfg.Signals.BatchSize)
	for i, chunk := range chunks {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		if i > 0 && wait > 0 {
			logger.Debugw("waiting out provider credit window", "wait", wait, "batch", i+1, "of", len(chunks))
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(wait):
			}
		}

		batch, err := a.market.TimeSeriesBatch(ctx, chunk, models.IntervalIntraday, a.cfg.Signals.TrendBars+5)
		if err != nil {
			logger.Errorw("batch fetch failed", "symbols", chunk, "error", err)
			continue
		}
		for symbol, series := range batch {
			out[symbol] = series
			if err := a.bars.UpsertBars(toPriceBars(symbol, models.IntervalIntraday, series)); err != nil {
				logger.Errorw("bar persist failed", "symbol", symbol, "error", err)
			}
		}
	}
	return out, nil
}

func closesOf(series []marketdata.Bar) []float64 {
	closes := make([]float64, len(series))
	for i, b := range series {
		closes[i] = b.Close
	}
	return closes
}
