package pricing

import (
	"math"
	"time"
)

// DepositDayMultiplier is the fixed business rule for deposits: the deposit
// equals the daily rate times this multiplier, independent of stay length.
const DepositDayMultiplier = 5

// Quote is the price breakdown for a prospective stay.
type Quote struct {
	Days    int     `json:"days"`
	Total   float64 `json:"total"`
	Deposit float64 `json:"deposit"`
}

// ComputeStay derives the billable day count, total price and deposit for a
// date range at the given daily rate. It is pure: no I/O, no state, safe to
// re-evaluate on every input change.
//
// Days is the number of whole days between start and end, rounded up, and
// never less than 1: a same-day rental bills as one day, and missing or
// inverted dates fall back to one day rather than failing (the caller is
// expected to validate dates before checkout).
func ComputeStay(dailyRate float64, start, end time.Time) Quote {
	days := 1
	if !start.IsZero() && !end.IsZero() && end.After(start) {
		days = int(math.Ceil(end.Sub(start).Hours() / 24))
		if days < 1 {
			days = 1
		}
	}
	return Quote{
		Days:    days,
		Total:   dailyRate * float64(days),
		Deposit: dailyRate * DepositDayMultiplier,
	}
}
