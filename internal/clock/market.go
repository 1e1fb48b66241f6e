// Package clock decides whether the US equity session is open.
package clock

import "time"

// Status labels the market state.
type Status string

const (
	StatusOpen       Status = "Open"
	StatusWeekend    Status = "Weekend"
	StatusPreMarket  Status = "Pre-Market"
	StatusAfterHours Status = "After Hours"
)

const (
	openMinute  = 9*60 + 30
	closeMinute = 16 * 60
)

// Eastern is the exchange timezone. Falls back to a fixed UTC-5 zone when the
// tz database is missing from the host.
var Eastern = loadEastern()

func loadEastern() *time.Location {
	loc, err := time.LoadLocation("America/New_York")
	if err != nil {
		return time.FixedZone("EST", -5*60*60)
	}
	return loc
}

// IsOpen reports whether the session is open at now. The session covers
// Monday to Friday, 09:30:00 through 16:00:00 Eastern, both ends inclusive.
func IsOpen(now time.Time) (bool, Status) {
	local := now.In(Eastern)
	switch local.Weekday() {
	case time.Saturday, time.Sunday:
		return false, StatusWeekend
	}

	sec := local.Hour()*3600 + local.Minute()*60 + local.Second()
	switch {
	case sec < openMinute*60:
		return false, StatusPreMarket
	case sec > closeMinute*60 || (sec == closeMinute*60 && local.Nanosecond() > 0):
		return false, StatusAfterHours
	default:
		return true, StatusOpen
	}
}

// Now is IsOpen for the current wall-clock time.
func Now() (bool, Status) {
	return IsOpen(time.Now())
}

// NextOpen returns the next session open strictly after now, or now itself
// when the market is open.
func NextOpen(now time.Time) time.Time {
	if open, _ := IsOpen(now); open {
		return now
	}
	local := now.In(Eastern)
	day := time.Date(local.Year(), local.Month(), local.Day(), 9, 30, 0, 0, Eastern)
	if !local.Before(day) {
		day = day.AddDate(0, 0, 1)
	}
	for day.Weekday() == time.Saturday || day.Weekday() == time.Sunday {
		day = day.AddDate(0, 0, 1)
	}
	return day
}
