// Package detector evaluates a symbol's intraday bars against a set of
// signal rules. It is pure: callers feed it bars and thresholds and get
// back candidate signals, with persistence and alert throttling handled
// elsewhere.
package detector

import (
	"math"
	"time"

	models "stock-sentry/database/models_pkg"
)

// volumeWindow is the number of trailing bars (excluding the current one)
// averaged for the volume spike baseline.
const volumeWindow = 20

// Bar is the minimal OHLCV view the detector needs.
type Bar struct {
	Timestamp time.Time
	Open      float64
	High      float64
	Low       float64
	Close     float64
	Volume    int64
}

// Thresholds tunes the detection rules.
type Thresholds struct {
	MovePct          float64 // move-from-open trigger, in percent
	VolumeSpikeMult  float64 // current volume vs trailing average multiple
	BreakoutLookback int     // prior bars scanned for the high/low band
}

// Candidate is one detected signal before throttling.
type Candidate struct {
	Type      string
	Severity  string
	Direction string
	BarID     string
	BarTime   time.Time
	Price     float64
	Metrics   map[string]any
}

// Detect runs every rule over the bar series and returns the candidates
// that fired. bars must be in chronological order; the last bar is the
// current one. dayOpen of zero means the session open could not be
// resolved, which skips only the move-from-open rule.
func Detect(symbol string, bars []Bar, dayOpen float64, th Thresholds) []Candidate {
	if len(bars) == 0 {
		return nil
	}
	latest := bars[len(bars)-1]
	barID := latest.Timestamp.Format("2006-01-02 15:04:05")

	var out []Candidate
	if c := detectMove(latest, barID, dayOpen, th.MovePct); c != nil {
		out = append(out, *c)
	}
	if c := detectVolumeSpike(bars, barID, th.VolumeSpikeMult); c != nil {
		out = append(out, *c)
	}
	out = append(out, detectBreakouts(bars, barID, th.BreakoutLookback)...)

	for i := range out {
		out[i].BarTime = latest.Timestamp
	}
	return out
}

func detectMove(latest Bar, barID string, dayOpen, threshold float64) *Candidate {
	if dayOpen == 0 {
		return nil
	}
	pct := (latest.Close - dayOpen) / dayOpen * 100
	if math.Abs(pct) < threshold {
		return nil
	}

	direction := models.DirectionUp
	if pct < 0 {
		direction = models.DirectionDown
	}
	return &Candidate{
		Type:      models.SignalMoveFromOpen,
		Severity:  severityFromRatio(math.Abs(pct) / threshold),
		Direction: direction,
		BarID:     barID,
		Price:     latest.Close,
		Metrics: map[string]any{
			"day_open":     dayOpen,
			"latest_close": latest.Close,
			"pct_change":   roundPct(pct),
			"threshold":    threshold,
			"direction":    direction,
		},
	}
}

func detectVolumeSpike(bars []Bar, barID string, mult float64) *Candidate {
	if len(bars) < 2 {
		return nil
	}
	latest := bars[len(bars)-1]

	window := bars[:len(bars)-1]
	if len(window) > volumeWindow {
		window = window[len(window)-volumeWindow:]
	}
	var sum int64
	for _, b := range window {
		sum += b.Volume
	}
	avg := float64(sum) / float64(len(window))
	if avg <= 0 {
		return nil // thin or missing volume data, no baseline to compare
	}

	ratio := float64(latest.Volume) / avg
	if ratio < mult {
		return nil
	}
	return &Candidate{
		Type:      models.SignalVolumeSpike,
		Severity:  severityFromRatio(ratio / mult),
		Direction: barDirection(latest),
		BarID:     barID,
		Price:     latest.Close,
		Metrics: map[string]any{
			"latest_volume": latest.Volume,
			"avg_volume":    math.Round(avg),
			"ratio":         roundPct(ratio),
			"multiple":      mult,
			"window_bars":   len(window),
		},
	}
}

func detectBreakouts(bars []Bar, barID string, lookback int) []Candidate {
	if lookback < 1 || len(bars) < lookback+1 {
		return nil
	}
	latest := bars[len(bars)-1]
	prior := bars[len(bars)-1-lookback : len(bars)-1]

	priorHigh := prior[0].High
	priorLow := prior[0].Low
	for _, b := range prior[1:] {
		if b.High > priorHigh {
			priorHigh = b.High
		}
		if b.Low < priorLow {
			priorLow = b.Low
		}
	}

	var out []Candidate
	if latest.Close > priorHigh {
		out = append(out, Candidate{
			Type:      models.SignalBreakout,
			Severity:  models.SeverityHigh,
			Direction: models.DirectionUp,
			BarID:     barID,
			Price:     latest.Close,
			Metrics: map[string]any{
				"latest_close": latest.Close,
				"prior_high":   priorHigh,
				"lookback":     lookback,
			},
		})
	}
	if latest.Close < priorLow {
		out = append(out, Candidate{
			Type:      models.SignalBreakdown,
			Severity:  models.SeverityHigh,
			Direction: models.DirectionDown,
			BarID:     barID,
			Price:     latest.Close,
			Metrics: map[string]any{
				"latest_close": latest.Close,
				"prior_low":    priorLow,
				"lookback":     lookback,
			},
		})
	}
	return out
}

// severityFromRatio grades how far past its threshold a rule fired: at or
// beyond twice the threshold is high, at least the threshold is medium.
func severityFromRatio(ratio float64) string {
	switch {
	case ratio >= 2:
		return models.SeverityHigh
	case ratio >= 1:
		return models.SeverityMedium
	default:
		return models.SeverityLow
	}
}

func barDirection(b Bar) string {
	if b.Close < b.Open {
		return models.DirectionDown
	}
	return models.DirectionUp
}

func roundPct(v float64) float64 {
	return math.Round(v*100) / 100
}
