package app

import (
	"stock-sentry/cache"
	models "stock-sentry/database/models_pkg"
	"stock-sentry/detector"
	"stock-sentry/marketdata"
	"stock-sentry/notifications"
)

func toPriceBars(symbol, interval string, raw []marketdata.Bar) []models.PriceBar {
	out := make([]models.PriceBar, len(raw))
	for i, b := range raw {
		out[i] = models.PriceBar{
			Symbol:    symbol,
			Interval:  interval,
			Timestamp: b.Timestamp,
			Open:      b.Open,
			High:      b.High,
			Low:       b.Low,
			Close:     b.Close,
			Volume:    float64(b.Volume),
		}
	}
	return out
}

func storedToDetectorBars(rows []models.PriceBar) []detector.Bar {
	out := make([]detector.Bar, len(rows))
	for i, b := range rows {
		out[i] = detector.Bar{
			Timestamp: b.Timestamp,
			Open:      b.Open,
			High:      b.High,
			Low:       b.Low,
			Close:     b.Close,
			Volume:    int64(b.Volume),
		}
	}
	return out
}

func cacheHash(alerts []notifications.Alert) string {
	return cache.GenerateDataHash(alerts)
}
