// Package format turns amounts, month keys and contract dates into display strings
package format

import (
	"math"
	"time"

	"github.com/Rhymond/go-money"
	"github.com/jdlms/fpa-forecast/internal/types"
)

// whole-dollar USD: no fraction digits, comma grouping
var usd = money.NewFormatter(0, ".", ",", "$", "$1")

// Currency formats amount as whole US dollars, e.g. "$1,235" or "-$12"
func Currency(amount float64) string {
	if math.IsNaN(amount) || math.IsInf(amount, 0) {
		return usd.Format(0)
	}
	return usd.Format(int64(math.Round(amount)))
}

// MonthAmount formats a monthly cell, "-" when the month has no amount
func MonthAmount(monthly types.Monthly, month string) string {
	amount, ok := monthly[month]
	if !ok || amount == 0 {
		return "-"
	}
	return Currency(amount)
}

// MonthName turns "2024-01" into "Jan 2024". Keys that do not parse are
// returned unchanged.
func MonthName(key string) string {
	t, err := time.Parse("2006-01", key)
	if err != nil {
		return key
	}
	return t.Format("Jan 2006")
}

// Status is where today falls relative to a contract window
type Status string

const (
	StatusUpcoming Status = "Upcoming"
	StatusActive   Status = "Active"
	StatusExpired  Status = "Expired"
	StatusUnknown  Status = "-"
)

// ContractStatus places now relative to the inclusive [start, end] window.
// A missing start or end leaves that side open; both missing is unknown.
func ContractStatus(start, end types.Date, now time.Time) Status {
	if start.IsZero() && end.IsZero() {
		return StatusUnknown
	}
	today := types.NewDate(now.Year(), now.Month(), now.Day())
	if !start.IsZero() && today.Before(start.Time) {
		return StatusUpcoming
	}
	if !end.IsZero() && today.After(end.Time) {
		return StatusExpired
	}
	return StatusActive
}
