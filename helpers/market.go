package helpers

import (
	"time"
)

var londonLoc = mustLoadLocation("Europe/London")

func mustLoadLocation(name string) *time.Location {
	loc, err := time.LoadLocation(name)
	if err != nil {
		return time.UTC
	}
	return loc
}

// MarketNow is the current time in the exchange's timezone.
func MarketNow() time.Time {
	return time.Now().In(londonLoc)
}

// IsMarketOpen reports whether t falls inside the trading session:
// weekdays from openHour (inclusive) to closeHour (exclusive), exchange
// local time.
func IsMarketOpen(t time.Time, openHour, closeHour int) bool {
	local := t.In(londonLoc)
	switch local.Weekday() {
	case time.Saturday, time.Sunday:
		return false
	}
	h := local.Hour()
	return h >= openHour && h < closeHour
}

// TodayDate truncates t to its date in the exchange's timezone.
func TodayDate(t time.Time) time.Time {
	local := t.In(londonLoc)
	return time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, londonLoc)
}
