package app

import (
	"testing"

	models "stock-sentry/database/models_pkg"
	"stock-sentry/notifications"
)

func TestAlertSignalIndex(t *testing.T) {
	alerts := []notifications.Alert{
		{Symbol: "AAPL", SignalID: 11, SignalType: models.SignalMoveFromOpen},
		{Symbol: "NVDA", SignalID: 12, SignalType: models.SignalVolumeSpike},
		{Symbol: "AAPL", SignalID: 13, SignalType: models.SignalBreakout},
	}

	symbols, bySymbol := alertSignalIndex(alerts)
	if len(symbols) != 2 {
		t.Fatalf("symbols = %v, want one entry per symbol", symbols)
	}
	if symbols[0] != "AAPL" || symbols[1] != "NVDA" {
		t.Errorf("symbols = %v, want first-seen order [AAPL NVDA]", symbols)
	}
	if bySymbol["AAPL"] != 11 {
		t.Errorf("AAPL signal id = %d, want the first alert's id 11", bySymbol["AAPL"])
	}
	if bySymbol["NVDA"] != 12 {
		t.Errorf("NVDA signal id = %d, want 12", bySymbol["NVDA"])
	}
}

func TestAlertSignalIndexEmpty(t *testing.T) {
	symbols, bySymbol := alertSignalIndex(nil)
	if len(symbols) != 0 || len(bySymbol) != 0 {
		t.Errorf("expected empty index, got %v / %v", symbols, bySymbol)
	}
}
