// Package trend labels each symbol Up or Down from its recent closes. The
// method degrades with the available history: a least-squares fit over the
// full window, a first-vs-last comparison when closes are scarce, and a
// snapshot start-vs-latest fallback when there is no usable series at all.
package trend

import (
	"time"

	models "stock-sentry/database/models_pkg"
)

// minRegressionCloses is the series length at which the least-squares fit
// takes over from the simple comparison.
const minRegressionCloses = 4

// openPositionGracePct: with an open position, a latest price that has not
// cleared the buy price by this fraction reads as Down so the trade engine
// exits rather than drifts.
const openPositionGracePct = 0.005

// Input carries everything the analyzer needs for one symbol.
type Input struct {
	Symbol       string
	Closes       []float64 // chronological closes for the trend window
	StartPrice   *float64  // session start price from the snapshot, if known
	LatestPrice  *float64  // most recent price from the snapshot, if known
	OpenBuyPrice *float64  // buy price of an open position, nil when flat
}

// Params tunes the trend decision.
type Params struct {
	Bars              int     // closes considered by the regression window
	MinSlopePctPerBar float64 // slope, as percent of the mean close per bar, required for Up
	MinR2             float64 // minimum fit quality required for Up
}

// Analyze labels one symbol's trend and returns the observation row to
// persist. The label is always Up or Down; when the evidence is missing or
// ambiguous the answer is Down, the side on which the trade engine does
// nothing or exits.
func Analyze(in Input, p Params, now time.Time) models.TrendObservation {
	obs := models.TrendObservation{
		Symbol:      in.Symbol,
		ComputedAt:  now,
		StartPrice:  in.StartPrice,
		LatestPrice: in.LatestPrice,
	}

	closes := in.Closes
	if p.Bars > 0 && len(closes) > p.Bars {
		closes = closes[len(closes)-p.Bars:]
	}

	switch {
	case len(closes) >= minRegressionCloses:
		slope, r2 := olsSlopeR2(closes)
		obs.MethodUsed = models.MethodRegression
		obs.Slope = &slope
		obs.Label = regressionLabel(closes, slope, r2, p)
	case len(closes) >= 2:
		obs.MethodUsed = models.MethodSimpleComparison
		obs.Label = models.TrendDown
		if closes[len(closes)-1] > closes[0] {
			obs.Label = models.TrendUp
		}
	default:
		obs.MethodUsed = models.MethodFallbackSnapshot
		obs.Label = models.TrendDown
		if in.StartPrice != nil && in.LatestPrice != nil && *in.LatestPrice > *in.StartPrice {
			obs.Label = models.TrendUp
		}
	}

	// With an open position, an underwater latest price overrides any Up
	// verdict so the engine sells instead of holding a loser.
	if in.OpenBuyPrice != nil && in.LatestPrice != nil {
		if *in.LatestPrice < *in.OpenBuyPrice*(1+openPositionGracePct) {
			obs.Label = models.TrendDown
		}
	}
	return obs
}

func regressionLabel(closes []float64, slope, r2 float64, p Params) string {
	var mean float64
	for _, c := range closes {
		mean += c
	}
	mean /= float64(len(closes))
	if mean == 0 {
		return models.TrendDown
	}

	slopePct := slope / mean * 100
	if slopePct > p.MinSlopePctPerBar && r2 >= p.MinR2 {
		return models.TrendUp
	}
	// A dead-flat fit (slope exactly zero) is not an uptrend.
	return models.TrendDown
}
