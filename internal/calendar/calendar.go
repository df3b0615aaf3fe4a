// Package calendar enumerates the dates of a calendar month.
package calendar

import (
	"fmt"
	"time"
)

// DateLayout is the ISO date format used for schedule dates.
const DateLayout = "2006-01-02"

// DaysInMonth returns every date of the month from the 1st to the last day,
// ascending, at UTC midnight.
func DaysInMonth(year int, month time.Month) ([]time.Time, error) {
	if month < time.January || month > time.December {
		return nil, fmt.Errorf("invalid month %d", int(month))
	}
	first := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	// day 0 of the next month normalizes to the last day of this one
	last := time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()

	days := make([]time.Time, 0, last)
	for d := 0; d < last; d++ {
		days = append(days, first.AddDate(0, 0, d))
	}
	return days, nil
}

// Normalize strips the clock and zone from t, keeping its calendar date.
func Normalize(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// Key formats a date as a map key.
func Key(t time.Time) string {
	return t.Format(DateLayout)
}

// ParseMonth parses either YYYY-MM-DD or YYYY-MM and returns the first of that month.
func ParseMonth(value string) (time.Time, error) {
	if t, err := time.Parse(DateLayout, value); err == nil {
		return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC), nil
	}
	t, err := time.Parse("2006-01", value)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid month %q: expected YYYY-MM-DD or YYYY-MM", value)
	}
	return t, nil
}
