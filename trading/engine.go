// Package trading holds the position state machine: the pure mapping from
// (position state, trend label) to a trade action. Persistence of the
// resulting decision lives in database/trades so the transition and its
// audit record commit together.
package trading

import (
	models "stock-sentry/database/models_pkg"
)

// Decide maps the current position state and the latest trend label to an
// action:
//
//	Flat + Up   => BUY
//	Open + Up   => HOLD
//	Open + Down => SELL
//	Flat + Down => NO_ACTION
//
// An unknown label is treated as Down: with no usable trend evidence the
// engine never opens a position and closes any open one.
func Decide(status, label string) string {
	up := label == models.TrendUp
	open := status == models.PositionOpen

	switch {
	case !open && up:
		return models.ActionBuy
	case open && up:
		return models.ActionHold
	case open && !up:
		return models.ActionSell
	default:
		return models.ActionNoAction
	}
}

// RealizedPnl is the fractional return of a closed position.
func RealizedPnl(buyPrice, sellPrice float64) float64 {
	return (sellPrice - buyPrice) / buyPrice
}
