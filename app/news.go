package app

import (
	"context"
	"time"

	"stock-sentry/logger"
	"stock-sentry/notifications"
)

// collectNews fetches headlines for every symbol that just alerted and
// stores the new ones, linked to the signal that triggered the fetch.
// Failures are logged and never fail the monitor pass.
func (a *App) collectNews(ctx context.Context, alerts []notifications.Alert) {
	symbols, signalBySymbol := alertSignalIndex(alerts)
	fetchedAt := time.Now().UTC()

	for _, symbol := range symbols {
		if ctx.Err() != nil {
			return
		}
		items, err := a.headlines.Fetch(symbol, fetchedAt)
		if err != nil {
			logger.Warnw("news fetch failed", "symbol", symbol, "error", err)
			continue
		}
		if sigID := signalBySymbol[symbol]; sigID != 0 {
			for i := range items {
				id := sigID
				items[i].SignalID = &id
			}
		}
		inserted, err := a.news.InsertItems(items)
		if err != nil {
			logger.Errorw("news store failed", "symbol", symbol, "error", err)
			continue
		}
		logger.Infow("headlines stored", "symbol", symbol, "fetched", len(items), "new", inserted)
	}
}

// alertSignalIndex returns the alerted symbols in first-seen order, each
// mapped to the signal id of its first alert in the batch.
func alertSignalIndex(alerts []notifications.Alert) ([]string, map[string]int64) {
	var symbols []string
	bySymbol := make(map[string]int64, len(alerts))
	for _, alert := range alerts {
		if _, ok := bySymbol[alert.Symbol]; ok {
			continue
		}
		bySymbol[alert.Symbol] = alert.SignalID
		symbols = append(symbols, alert.Symbol)
	}
	return symbols, bySymbol
}
