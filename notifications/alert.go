// Package notifications delivers approved signal alerts over email and
// webhooks.
package notifications

import (
	"fmt"
	"strings"
	"time"

	"stock-sentry/helpers"
)

// Alert is one approved signal ready for delivery. SignalID links back to
// the stored signal row.
type Alert struct {
	SignalID   int64          `json:"signal_id,omitempty"`
	Symbol     string         `json:"symbol"`
	SignalType string         `json:"signal_type"`
	Severity   string         `json:"severity"`
	Direction  string         `json:"direction"`
	Price      float64        `json:"price"`
	BarID      string         `json:"bar_id"`
	Reason     string         `json:"reason"`
	Metrics    map[string]any `json:"metrics,omitempty"`
	DetectedAt time.Time      `json:"detected_at"`
}

// Line renders the alert as one human-readable line for email bodies and
// webhook messages.
func (a Alert) Line() string {
	parts := []string{
		fmt.Sprintf("%s %s [%s]", a.Symbol, a.SignalType, strings.ToUpper(a.Severity)),
		fmt.Sprintf("%s @ %s", a.Direction, helpers.FormatPrice(a.Price)),
	}
	if pct, ok := a.Metrics["pct_change"].(float64); ok {
		parts = append(parts, helpers.FormatPct(pct)+" from open")
	}
	return strings.Join(parts, " | ")
}

// Digest renders a batch of alerts plus an optional summary into one
// message body.
func Digest(alerts []Alert, summary string) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%d signal(s) detected\n\n", len(alerts)))
	for _, a := range alerts {
		sb.WriteString("  - " + a.Line() + "\n")
	}
	if summary != "" {
		sb.WriteString("\nAnalysis:\n" + summary + "\n")
	}
	return sb.String()
}
