// Package throttle decides whether a freshly detected signal is worth an
// alert given what was last sent for the symbol. The rules suppress
// repeats of the same story while letting genuinely new developments
// through immediately.
package throttle

import (
	"time"

	models "stock-sentry/database/models_pkg"
	"stock-sentry/detector"
)

// Reasons an alert was approved, recorded for audit and tests.
const (
	ReasonFirstAlert         = "first_alert"
	ReasonGapElapsed         = "gap_elapsed"
	ReasonDirectionFlip      = "direction_flip"
	ReasonPriceStep          = "price_step"
	ReasonSeverityEscalation = "severity_escalation"
	ReasonSuppressed         = "suppressed"
)

// Policy tunes the throttling rules.
type Policy struct {
	MinGap         time.Duration // quiet period after an alert
	ReAlertStepPct float64       // price move past the last alerted price that re-arms
}

// Decision is the throttle verdict for one candidate.
type Decision struct {
	Approve bool
	Reason  string
}

// Decide checks a candidate against the symbol's last alert state. prev is
// nil when the symbol has never alerted. Within the quiet period an alert
// still goes out when the direction flips, the price steps far enough past
// the last alerted price in the same direction, or the severity escalates.
func Decide(prev *models.AlertState, c detector.Candidate, price float64, now time.Time, p Policy) Decision {
	if prev == nil {
		return Decision{Approve: true, Reason: ReasonFirstAlert}
	}
	if now.Sub(prev.LastAlertAt) >= p.MinGap {
		return Decision{Approve: true, Reason: ReasonGapElapsed}
	}
	if c.Direction != prev.LastAlertDirection {
		return Decision{Approve: true, Reason: ReasonDirectionFlip}
	}
	if prev.LastAlertPrice > 0 && p.ReAlertStepPct > 0 {
		stepPct := (price - prev.LastAlertPrice) / prev.LastAlertPrice * 100
		if c.Direction == models.DirectionDown {
			stepPct = -stepPct
		}
		if stepPct >= p.ReAlertStepPct {
			return Decision{Approve: true, Reason: ReasonPriceStep}
		}
	}
	if models.SeverityRank(c.Severity) > models.SeverityRank(prev.LastAlertSeverity) {
		return Decision{Approve: true, Reason: ReasonSeverityEscalation}
	}
	return Decision{Approve: false, Reason: ReasonSuppressed}
}

// NextState is the alert state to persist after an approved alert.
func NextState(symbol string, c detector.Candidate, price float64, now time.Time) models.AlertState {
	return models.AlertState{
		Symbol:             symbol,
		LastAlertAt:        now,
		LastAlertPrice:     price,
		LastAlertDirection: c.Direction,
		LastAlertSeverity:  c.Severity,
	}
}
