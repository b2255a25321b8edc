package app

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	models "stock-sentry/database/models_pkg"
	"stock-sentry/database/signals"
	"stock-sentry/detector"
	"stock-sentry/helpers"
	"stock-sentry/logger"
	"stock-sentry/marketdata"
	"stock-sentry/notifications"
	"stock-sentry/throttle"
	"stock-sentry/trace"
)

// courtesyPause spaces per-symbol provider requests inside one pass.
const courtesyPause = 500 * time.Millisecond

// RunMonitor executes one watchlist pass: fetch intraday bars, detect
// signals, throttle, and deliver the approved batch. Outside market hours
// the pass is a no-op.
func (a *App) RunMonitor(ctx context.Context) error {
	ctx, span := trace.StartSpan(ctx, "monitor")
	defer span.End()

	now := helpers.MarketNow()
	if !helpers.IsMarketOpen(now, a.cfg.Signals.MarketOpenHour, a.cfg.Signals.MarketCloseHour) {
		logger.Infow("market closed, skipping monitor pass", "now", now)
		return nil
	}

	var approved []notifications.Alert
	for i, symbol := range a.cfg.Watchlist {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if i > 0 {
			time.Sleep(courtesyPause)
		}

		alerts, err := a.monitorSymbol(ctx, symbol, now)
		if err != nil {
			// one symbol must not sink the pass
			logger.Errorw("symbol monitor failed", "symbol", symbol, "error", err)
			continue
		}
		approved = append(approved, alerts...)
	}

	if len(approved) == 0 {
		logger.Infow("monitor pass complete, nothing to alert", "symbols", len(a.cfg.Watchlist))
		return nil
	}

	summary := a.summarizeBatch(ctx, approved)
	if err := a.email.SendDigest(approved, summary); err != nil {
		logger.Errorw("email delivery failed", "error", err)
	}
	a.webhooks.SendAlerts(approved, summary)
	a.collectNews(ctx, approved)

	logger.Infow("monitor pass complete", "symbols", len(a.cfg.Watchlist), "alerts", len(approved))
	return nil
}

func (a *App) monitorSymbol(ctx context.Context, symbol string, now time.Time) ([]notifications.Alert, error) {
	ctx, span := trace.StartSpan(ctx, "monitor.symbol")
	defer span.End()

	raw, err := a.market.TimeSeries(ctx, symbol, models.IntervalIntraday, 50)
	if err != nil {
		return nil, fmt.Errorf("fetch intraday: %w", err)
	}
	if err := a.bars.UpsertBars(toPriceBars(symbol, models.IntervalIntraday, raw)); err != nil {
		return nil, err
	}

	dayOpen, err := a.resolveDayOpen(symbol, raw, now)
	if err != nil {
		return nil, err
	}

	// Detect over the stored series rather than the raw fetch: earlier
	// passes may have persisted bars the provider no longer returns, and
	// the volume baseline and breakout band want that depth.
	stored, err := a.bars.IntradayBars(symbol, 50)
	if err != nil {
		return nil, err
	}

	candidates := detector.Detect(symbol, storedToDetectorBars(stored), dayOpen, detector.Thresholds{
		MovePct:          a.cfg.Signals.MovePct,
		VolumeSpikeMult:  a.cfg.Signals.VolumeSpikeMult,
		BreakoutLookback: a.cfg.Signals.BreakoutLookback,
	})
	if len(candidates) == 0 {
		return nil, nil
	}

	policy := throttle.Policy{
		MinGap:         time.Duration(a.cfg.Signals.MinAlertGapMin) * time.Minute,
		ReAlertStepPct: a.cfg.Signals.ReAlertStepPct,
	}

	var alerts []notifications.Alert
	for _, c := range candidates {
		var alert *notifications.Alert
		// Insert and throttle inside one transaction per candidate: only a
		// newly stored signal can alert, and the alert state update commits
		// with the decision that caused it.
		err = a.signals.WithTx(func(r *signals.Repository) error {
			var txErr error
			alert, txErr = processCandidate(r, symbol, c, now, policy)
			return txErr
		})
		if err != nil {
			return nil, err
		}
		if alert != nil {
			alerts = append(alerts, *alert)
		}
	}
	return alerts, nil
}

// signalStore is the slice of the signals repository the per-candidate flow
// needs. monitorSymbol binds it to a transaction-scoped repository.
type signalStore interface {
	InsertSignal(sig *models.Signal) (bool, error)
	GetAlertState(symbol string) (*models.AlertState, error)
	UpsertAlertState(state *models.AlertState) error
}

// processCandidate stores one candidate and runs it through the throttle.
// A duplicate bar never reaches the throttle: the unique signal index
// already recorded the event, so the alert state stays untouched. Nil alert
// with nil error means duplicate or suppressed.
func processCandidate(store signalStore, symbol string, c detector.Candidate, now time.Time, policy throttle.Policy) (*notifications.Alert, error) {
	metricsJSON, err := json.Marshal(c.Metrics)
	if err != nil {
		return nil, fmt.Errorf("marshal metrics: %w", err)
	}
	sig := models.Signal{
		Symbol:      symbol,
		Timestamp:   c.BarTime,
		SignalType:  c.Type,
		BarID:       c.BarID,
		MetricsJSON: string(metricsJSON),
		Severity:    c.Severity,
	}

	inserted, err := store.InsertSignal(&sig)
	if err != nil {
		return nil, err
	}
	if !inserted {
		logger.Debugw("signal already recorded", "symbol", symbol, "type", c.Type, "bar", c.BarID)
		return nil, nil
	}

	prev, err := store.GetAlertState(symbol)
	if err != nil {
		return nil, err
	}
	decision := throttle.Decide(prev, c, c.Price, now, policy)
	if !decision.Approve {
		logger.Debugw("alert suppressed", "symbol", symbol, "type", c.Type, "reason", decision.Reason)
		return nil, nil
	}

	state := throttle.NextState(symbol, c, c.Price, now)
	if err := store.UpsertAlertState(&state); err != nil {
		return nil, err
	}
	logger.Infow("alert approved",
		"symbol", symbol, "type", c.Type, "severity", c.Severity, "reason", decision.Reason)
	return &notifications.Alert{
		SignalID:   sig.ID,
		Symbol:     symbol,
		SignalType: c.Type,
		Severity:   c.Severity,
		Direction:  c.Direction,
		Price:      c.Price,
		BarID:      c.BarID,
		Reason:     decision.Reason,
		Metrics:    c.Metrics,
		DetectedAt: now,
	}, nil
}

// resolveDayOpen finds the session open: today's daily bar open if stored,
// else the open of today's first intraday bar. Zero means unknown, which
// disables only the move-from-open rule.
func (a *App) resolveDayOpen(symbol string, raw []marketdata.Bar, now time.Time) (float64, error) {
	daily, err := a.bars.DailyBar(symbol, now)
	if err != nil {
		return 0, err
	}
	if daily != nil {
		return daily.Open, nil
	}

	today := helpers.TodayDate(now)
	for _, b := range raw {
		if !b.Timestamp.Before(today) {
			return b.Open, nil
		}
	}
	logger.Warnw("no session open found", "symbol", symbol)
	return 0, nil
}

func (a *App) summarizeBatch(ctx context.Context, alerts []notifications.Alert) string {
	if a.summarizer == nil {
		return ""
	}
	hash := cacheHash(alerts)
	if summary, ok := a.summaryCache.GetSummary(ctx, hash); ok {
		logger.Debugw("summary cache hit", "hash", hash)
		return summary
	}

	// A batch made entirely of cooled-down symbols is not worth a fresh
	// API call; the alerts still go out, just without analysis.
	fresh := false
	for _, alert := range alerts {
		if !a.summaryCache.IsInCooldown(ctx, alert.Symbol) {
			fresh = true
			break
		}
	}
	if !fresh {
		logger.Debugw("all symbols in summary cooldown, skipping analysis")
		return ""
	}

	summary, err := a.summarizer.Summarize(ctx, alerts)
	if err != nil {
		logger.Warnw("summarizer failed, sending without analysis", "error", err)
		return ""
	}
	if err := a.summaryCache.SetSummary(ctx, hash, summary, time.Hour); err != nil {
		logger.Debugw("summary cache write failed", "error", err)
	}
	for _, alert := range alerts {
		if err := a.summaryCache.SetCooldown(ctx, alert.Symbol, 30*time.Minute); err != nil {
			logger.Debugw("cooldown write failed", "symbol", alert.Symbol, "error", err)
		}
	}
	return summary
}
