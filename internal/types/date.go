package types

import (
	"fmt"
	"strings"
	"time"
)

// DateLayout is the layout of a calendar date.
const DateLayout = "2006-01-02"

// Date is a calendar day without a time of day, formatted as YYYY-MM-DD.
//
// Dates are compared as strings. The format sorts lexicographically in
// chronological order, so no time zone is ever involved in a comparison.
type Date string

// DateOf returns the calendar date of t in t's location.
func DateOf(t time.Time) Date {
	return Date(t.Format(DateLayout))
}

// ParseDate validates s as a calendar date. RFC3339 timestamps are
// accepted and truncated to their date part.
func ParseDate(s string) (Date, error) {
	s = strings.TrimSpace(s)

	if _, err := time.Parse(DateLayout, s); err == nil {
		return Date(s), nil
	}

	// The date part is kept in the offset the timestamp was sent with
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return DateOf(t), nil
	}

	return "", fmt.Errorf("%q is not a valid date, use the YYYY-MM-DD format", s)
}

// String returns the date as YYYY-MM-DD.
func (d Date) String() string {
	return string(d)
}

// IsZero reports if the date is unset.
func (d Date) IsZero() bool {
	return d == ""
}

// Month returns the month the date lies in.
func (d Date) Month() Month {
	t, err := time.Parse(DateLayout, string(d))
	if err != nil {
		return Month{}
	}

	return MonthOf(t)
}

// Between reports whether d lies in the closed interval [from, until].
// An empty bound is open.
func (d Date) Between(from, until Date) bool {
	if !from.IsZero() && d < from {
		return false
	}

	if !until.IsZero() && d > until {
		return false
	}

	return true
}
