package trading

import (
	"math"
	"testing"

	models "stock-sentry/database/models_pkg"
)

func TestDecide(t *testing.T) {
	tests := []struct {
		name   string
		status string
		label  string
		want   string
	}{
		{"flat up buys", models.PositionFlat, models.TrendUp, models.ActionBuy},
		{"open up holds", models.PositionOpen, models.TrendUp, models.ActionHold},
		{"open down sells", models.PositionOpen, models.TrendDown, models.ActionSell},
		{"flat down does nothing", models.PositionFlat, models.TrendDown, models.ActionNoAction},
		{"unknown label treated as down when flat", models.PositionFlat, "", models.ActionNoAction},
		{"unknown label treated as down when open", models.PositionOpen, "", models.ActionSell},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Decide(tt.status, tt.label); got != tt.want {
				t.Errorf("Decide(%q, %q) = %q, want %q", tt.status, tt.label, got, tt.want)
			}
		})
	}
}

// The full lifecycle: a BUY at P, a SELL with pnl relative to P, then a
// fresh BUY must be allowed again.
func TestDecideLifecycle(t *testing.T) {
	status := models.PositionFlat
	buyPrice := 0.0

	if got := Decide(status, models.TrendUp); got != models.ActionBuy {
		t.Fatalf("cycle 1: expected BUY, got %s", got)
	}
	status = models.PositionOpen
	buyPrice = 100.0

	if got := Decide(status, models.TrendDown); got != models.ActionSell {
		t.Fatalf("cycle 2: expected SELL, got %s", got)
	}
	pnl := RealizedPnl(buyPrice, 103.0)
	if math.Abs(pnl-0.03) > 1e-9 {
		t.Errorf("expected pnl 0.03, got %v", pnl)
	}
	status = models.PositionFlat

	if got := Decide(status, models.TrendUp); got != models.ActionBuy {
		t.Fatalf("cycle 3: expected fresh BUY after close, got %s", got)
	}
}

func TestRealizedPnlNegative(t *testing.T) {
	pnl := RealizedPnl(200.0, 150.0)
	if math.Abs(pnl-(-0.25)) > 1e-9 {
		t.Errorf("expected pnl -0.25, got %v", pnl)
	}
}
