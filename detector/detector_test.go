package detector

import (
	"testing"
	"time"

	models "stock-sentry/database/models_pkg"
)

var defaultThresholds = Thresholds{
	MovePct:          1.5,
	VolumeSpikeMult:  2.0,
	BreakoutLookback: 20,
}

func barAt(min int, close float64, volume int64) Bar {
	ts := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC).Add(time.Duration(min) * time.Minute)
	return Bar{Timestamp: ts, Open: close, High: close, Low: close, Close: close, Volume: volume}
}

// flatSeries builds n bars at the same price and volume, ending at the
// given close. Useful for isolating a single rule.
func flatSeries(n int, price float64, volume int64, lastClose float64) []Bar {
	bars := make([]Bar, n)
	for i := range bars {
		bars[i] = barAt(30*i, price, volume)
	}
	bars[n-1].Close = lastClose
	return bars
}

func findCandidate(cands []Candidate, signalType string) *Candidate {
	for i := range cands {
		if cands[i].Type == signalType {
			return &cands[i]
		}
	}
	return nil
}

func TestDetectMoveFromOpen(t *testing.T) {
	tests := []struct {
		name         string
		dayOpen      float64
		lastClose    float64
		wantFire     bool
		wantDir      string
		wantSeverity string
		wantPct      float64
	}{
		{"rise past threshold", 150.0, 153.0, true, models.DirectionUp, models.SeverityMedium, 2.0},
		{"drop past threshold", 150.0, 147.0, true, models.DirectionDown, models.SeverityMedium, -2.0},
		{"double threshold escalates", 150.0, 154.8, true, models.DirectionUp, models.SeverityHigh, 3.2},
		{"small move is quiet", 150.0, 151.0, false, "", "", 0},
		{"just past threshold fires", 150.0, 152.4, true, models.DirectionUp, models.SeverityMedium, 1.6},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bars := flatSeries(2, tt.dayOpen, 1000, tt.lastClose)
			cands := Detect("AAPL", bars, tt.dayOpen, defaultThresholds)
			c := findCandidate(cands, models.SignalMoveFromOpen)
			if !tt.wantFire {
				if c != nil {
					t.Fatalf("unexpected move signal: %+v", *c)
				}
				return
			}
			if c == nil {
				t.Fatal("expected a move signal, got none")
			}
			if c.Direction != tt.wantDir {
				t.Errorf("direction = %q, want %q", c.Direction, tt.wantDir)
			}
			if c.Severity != tt.wantSeverity {
				t.Errorf("severity = %q, want %q", c.Severity, tt.wantSeverity)
			}
			if got := c.Metrics["pct_change"].(float64); got != tt.wantPct {
				t.Errorf("pct_change = %v, want %v", got, tt.wantPct)
			}
			if got := c.Metrics["threshold"].(float64); got != defaultThresholds.MovePct {
				t.Errorf("threshold metric = %v, want %v", got, defaultThresholds.MovePct)
			}
		})
	}
}

func TestDetectSkipsMoveWithoutDayOpen(t *testing.T) {
	// A missing session open disables the move rule but nothing else: the
	// volume spike below must still fire.
	bars := flatSeries(10, 100.0, 1000, 100.0)
	bars[len(bars)-1].Volume = 5000

	cands := Detect("TSLA", bars, 0, defaultThresholds)
	if c := findCandidate(cands, models.SignalMoveFromOpen); c != nil {
		t.Errorf("move signal fired without a day open: %+v", *c)
	}
	if c := findCandidate(cands, models.SignalVolumeSpike); c == nil {
		t.Error("volume spike should fire independently of the day open")
	}
}

func TestDetectVolumeSpike(t *testing.T) {
	bars := flatSeries(25, 100.0, 1000, 100.0)
	bars[len(bars)-1].Volume = 2500 // 2.5x the trailing average

	cands := Detect("NVDA", bars, 100.0, defaultThresholds)
	c := findCandidate(cands, models.SignalVolumeSpike)
	if c == nil {
		t.Fatal("expected a volume spike signal")
	}
	if c.Severity != models.SeverityMedium {
		t.Errorf("severity = %q, want %q", c.Severity, models.SeverityMedium)
	}
	if got := c.Metrics["window_bars"].(int); got != volumeWindow {
		t.Errorf("window_bars = %d, want %d (current bar must be excluded)", got, volumeWindow)
	}
	if got := c.Metrics["ratio"].(float64); got != 2.5 {
		t.Errorf("ratio = %v, want 2.5", got)
	}
}

func TestDetectVolumeSpikeHighSeverity(t *testing.T) {
	bars := flatSeries(25, 100.0, 1000, 100.0)
	bars[len(bars)-1].Volume = 4000 // 4x average, twice the 2x multiple

	cands := Detect("NVDA", bars, 100.0, defaultThresholds)
	c := findCandidate(cands, models.SignalVolumeSpike)
	if c == nil {
		t.Fatal("expected a volume spike signal")
	}
	if c.Severity != models.SeverityHigh {
		t.Errorf("severity = %q, want %q", c.Severity, models.SeverityHigh)
	}
}

func TestDetectVolumeSpikeNeedsBaseline(t *testing.T) {
	// All-zero trailing volume leaves no baseline; the rule stays quiet
	// instead of dividing by zero.
	bars := flatSeries(10, 100.0, 0, 100.0)
	bars[len(bars)-1].Volume = 9999

	cands := Detect("AMC", bars, 100.0, defaultThresholds)
	if c := findCandidate(cands, models.SignalVolumeSpike); c != nil {
		t.Errorf("volume spike fired with a zero baseline: %+v", *c)
	}
}

func TestDetectBreakout(t *testing.T) {
	bars := flatSeries(21, 100.0, 1000, 100.0)
	for i := 0; i < 20; i++ {
		bars[i].High = 105.0
		bars[i].Low = 95.0
	}
	bars[20].Close = 106.0

	cands := Detect("MSFT", bars, 100.0, defaultThresholds)
	c := findCandidate(cands, models.SignalBreakout)
	if c == nil {
		t.Fatal("expected a breakout signal")
	}
	if c.Severity != models.SeverityHigh {
		t.Errorf("breakout severity = %q, want %q", c.Severity, models.SeverityHigh)
	}
	if c.Direction != models.DirectionUp {
		t.Errorf("breakout direction = %q, want %q", c.Direction, models.DirectionUp)
	}
	if got := c.Metrics["prior_high"].(float64); got != 105.0 {
		t.Errorf("prior_high = %v, want 105.0", got)
	}
	if findCandidate(cands, models.SignalBreakdown) != nil {
		t.Error("breakdown must not fire on a close above the band")
	}
}

func TestDetectBreakdown(t *testing.T) {
	bars := flatSeries(21, 100.0, 1000, 100.0)
	for i := 0; i < 20; i++ {
		bars[i].High = 105.0
		bars[i].Low = 95.0
	}
	bars[20].Close = 94.0

	cands := Detect("MSFT", bars, 100.0, defaultThresholds)
	c := findCandidate(cands, models.SignalBreakdown)
	if c == nil {
		t.Fatal("expected a breakdown signal")
	}
	if c.Direction != models.DirectionDown {
		t.Errorf("breakdown direction = %q, want %q", c.Direction, models.DirectionDown)
	}
}

func TestDetectBreakoutNeedsFullLookback(t *testing.T) {
	// 20 bars total means only 19 prior bars, short of the 20 the band
	// needs; a fresh listing must not fire spurious breakouts.
	bars := flatSeries(20, 100.0, 1000, 200.0)

	cands := Detect("IPO", bars, 0, defaultThresholds)
	if c := findCandidate(cands, models.SignalBreakout); c != nil {
		t.Errorf("breakout fired with insufficient history: %+v", *c)
	}
}

func TestDetectBreakoutDisabledLookback(t *testing.T) {
	// A zero or negative lookback disables the band rules outright rather
	// than slicing out of range.
	bars := flatSeries(25, 100.0, 1000, 200.0)

	for _, lookback := range []int{0, -1} {
		th := defaultThresholds
		th.BreakoutLookback = lookback
		cands := Detect("AAPL", bars, 0, th)
		if c := findCandidate(cands, models.SignalBreakout); c != nil {
			t.Errorf("lookback %d: breakout fired: %+v", lookback, *c)
		}
		if c := findCandidate(cands, models.SignalBreakdown); c != nil {
			t.Errorf("lookback %d: breakdown fired: %+v", lookback, *c)
		}
	}
}

func TestDetectBarIdentity(t *testing.T) {
	bars := flatSeries(2, 150.0, 1000, 153.0)
	cands := Detect("AAPL", bars, 150.0, defaultThresholds)
	c := findCandidate(cands, models.SignalMoveFromOpen)
	if c == nil {
		t.Fatal("expected a move signal")
	}
	want := bars[1].Timestamp.Format("2006-01-02 15:04:05")
	if c.BarID != want {
		t.Errorf("BarID = %q, want %q", c.BarID, want)
	}
	if !c.BarTime.Equal(bars[1].Timestamp) {
		t.Errorf("BarTime = %v, want %v", c.BarTime, bars[1].Timestamp)
	}
}

func TestDetectEmptySeries(t *testing.T) {
	if cands := Detect("AAPL", nil, 100.0, defaultThresholds); cands != nil {
		t.Errorf("expected no candidates for an empty series, got %v", cands)
	}
}
