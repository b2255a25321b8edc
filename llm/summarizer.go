package llm

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"stock-sentry/helpers"
	"stock-sentry/notifications"
)

// BuildContext renders the alert batch as a deterministic plain-text block:
// alerts sorted by symbol then signal type, metrics sorted by key. The same
// batch always produces the same block, which makes the summary cacheable
// by content hash.
func BuildContext(alerts []notifications.Alert) string {
	sorted := make([]notifications.Alert, len(alerts))
	copy(sorted, alerts)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].Symbol != sorted[j].Symbol {
			return sorted[i].Symbol < sorted[j].Symbol
		}
		return sorted[i].SignalType < sorted[j].SignalType
	})

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("SIGNAL BATCH (%d alerts)\n", len(sorted)))
	for _, a := range sorted {
		sb.WriteString(fmt.Sprintf("\n%s | %s | severity=%s direction=%s price=%s bar=%s\n",
			a.Symbol, a.SignalType, a.Severity, a.Direction, helpers.FormatPrice(a.Price), a.BarID))

		keys := make([]string, 0, len(a.Metrics))
		for k := range a.Metrics {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			sb.WriteString(fmt.Sprintf("  %s=%v\n", k, a.Metrics[k]))
		}
	}
	return sb.String()
}

// Summarizer turns an alert batch into a short analyst note.
type Summarizer struct {
	client *Client
}

// NewSummarizer creates a summarizer over an LLM client.
func NewSummarizer(client *Client) *Summarizer {
	return &Summarizer{client: client}
}

// Summarize produces the analyst note for a batch. An empty batch yields
// an empty summary without calling the API.
func (s *Summarizer) Summarize(ctx context.Context, alerts []notifications.Alert) (string, error) {
	if len(alerts) == 0 {
		return "", nil
	}
	return s.client.Analyze(ctx, BuildContext(alerts))
}
