package app

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	models "stock-sentry/database/models_pkg"
	"stock-sentry/helpers"
	"stock-sentry/logger"
)

// RunReport prints a plain-text status report: the last day's signals,
// and per watchlist symbol the latest daily bar, current position, and
// recent trade decisions.
func (a *App) RunReport(ctx context.Context) error {
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	defer w.Flush()

	since := time.Now().Add(-24 * time.Hour)
	recent, err := a.signals.RecentSignals(since, 50)
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "SIGNALS (last 24h: %d)\n", len(recent))
	for _, s := range recent {
		fmt.Fprintf(w, "  %s\t%s\t%s\t%s\n",
			s.CreatedAt.Format("01-02 15:04"), s.Symbol, s.SignalType, s.Severity)
	}

	fmt.Fprintln(w, "\nSYMBOL\tLAST CLOSE\tPOSITION\tRECENT DECISIONS")
	for _, symbol := range a.cfg.Watchlist {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		lastClose := "-"
		if bar, err := a.bars.LatestDailyBar(symbol); err != nil {
			logger.Warnw("daily bar lookup failed", "symbol", symbol, "error", err)
		} else if bar != nil {
			lastClose = helpers.FormatPrice(bar.Close)
		}

		position := models.PositionFlat
		if pos, err := a.trades.GetPosition(symbol); err != nil {
			logger.Warnw("position lookup failed", "symbol", symbol, "error", err)
		} else if pos != nil {
			position = pos.Status
			if pos.BuyPrice != nil && pos.Status == models.PositionOpen {
				position = fmt.Sprintf("Open @ %s", helpers.FormatPrice(*pos.BuyPrice))
			}
		}

		decisions := ""
		if history, err := a.trades.TradeHistory(symbol, 0); err != nil {
			logger.Warnw("trade history lookup failed", "symbol", symbol, "error", err)
		} else {
			start := len(history) - 5
			if start < 0 {
				start = 0
			}
			for _, rec := range history[start:] {
				if decisions != "" {
					decisions += " "
				}
				decisions += rec.Action
			}
		}

		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", symbol, lastClose, position, decisions)
	}
	return nil
}
