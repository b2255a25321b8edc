package app

import (
	"context"
	"testing"
	"time"

	models "stock-sentry/database/models_pkg"
	"stock-sentry/marketdata"
)

type fetchCall struct {
	symbols    []string
	interval   string
	outputSize int
}

type fakeFetcher struct {
	calls []fetchCall
}

func (f *fakeFetcher) TimeSeriesBatch(_ context.Context, symbols []string, interval string, outputSize int) (map[string][]marketdata.Bar, error) {
	f.calls = append(f.calls, fetchCall{symbols: symbols, interval: interval, outputSize: outputSize})
	out := make(map[string][]marketdata.Bar, len(symbols))
	for _, s := range symbols {
		out[s] = []marketdata.Bar{
			{Timestamp: time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC), Open: 100, High: 101, Low: 99, Close: 100.5, Volume: 1000},
		}
	}
	return out, nil
}

type fakeBarSink struct {
	upserts []models.PriceBar
}

func (f *fakeBarSink) UpsertBars(bars []models.PriceBar) error {
	f.upserts = append(f.upserts, bars...)
	return nil
}

func TestBackfillDailyBatchesWatchlist(t *testing.T) {
	fetcher := &fakeFetcher{}
	sink := &fakeBarSink{}
	watchlist := []string{"AAPL", "MSFT", "NVDA"}

	err := backfillDaily(context.Background(), fetcher, sink, watchlist, 2, 365, 0)
	if err != nil {
		t.Fatalf("backfillDaily: %v", err)
	}

	if len(fetcher.calls) != 2 {
		t.Fatalf("fetch calls = %d, want 2 (3 symbols in batches of 2)", len(fetcher.calls))
	}
	for _, call := range fetcher.calls {
		if call.interval != models.IntervalDaily {
			t.Errorf("interval = %q, want %q", call.interval, models.IntervalDaily)
		}
		if call.outputSize != 365 {
			t.Errorf("outputSize = %d, want the configured history span 365", call.outputSize)
		}
	}

	if len(sink.upserts) != len(watchlist) {
		t.Fatalf("upserted bars = %d, want %d", len(sink.upserts), len(watchlist))
	}
	seen := map[string]bool{}
	for _, bar := range sink.upserts {
		seen[bar.Symbol] = true
		if bar.Interval != models.IntervalDaily {
			t.Errorf("stored interval = %q, want %q", bar.Interval, models.IntervalDaily)
		}
	}
	for _, symbol := range watchlist {
		if !seen[symbol] {
			t.Errorf("symbol %s never backfilled", symbol)
		}
	}
}

func TestBackfillDailyDisabledSpan(t *testing.T) {
	fetcher := &fakeFetcher{}
	sink := &fakeBarSink{}

	if err := backfillDaily(context.Background(), fetcher, sink, []string{"AAPL"}, 5, 0, 0); err != nil {
		t.Fatalf("backfillDaily: %v", err)
	}
	if len(fetcher.calls) != 0 {
		t.Errorf("fetch calls = %d, want 0 when the history span is disabled", len(fetcher.calls))
	}
}
