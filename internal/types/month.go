// Package types implements value types shared by the duo backend.
package types

import (
	"database/sql"
	"database/sql/driver"
	"fmt"
	"strings"
	"time"
)

// Month is a calendar month in a specific year.
//
// It is always stored as the first day of the month at midnight UTC.
type Month time.Time

// NewMonth returns a new Month.
func NewMonth(year int, month time.Month) Month {
	return Month(time.Date(year, month, 1, 0, 0, 0, 0, time.UTC))
}

// MonthOf returns the Month in which a time occurs in that time's location.
func MonthOf(t time.Time) Month {
	year, month, _ := t.Date()
	return NewMonth(year, month)
}

// ParseMonth parses a month in one of the formats "2006-01", "2006-01-02"
// or RFC3339. Everything except the year and month is ignored.
func ParseMonth(s string) (Month, error) {
	s = strings.TrimSpace(s)

	for _, layout := range []string{"2006-01", DateLayout, time.RFC3339} {
		t, err := time.Parse(layout, s)
		if err == nil {
			return MonthOf(t), nil
		}
	}

	return Month{}, fmt.Errorf("%q is not a valid month, use the YYYY-MM format", s)
}

// String returns the month formatted as YYYY-MM.
func (m Month) String() string {
	return fmt.Sprintf("%04d-%02d", time.Time(m).Year(), time.Time(m).Month())
}

// Key returns the first day of the month formatted as YYYY-MM-DD.
func (m Month) Key() string {
	return m.FirstDay().String()
}

// FirstDay returns the first calendar day of the month.
func (m Month) FirstDay() Date {
	return DateOf(time.Time(m))
}

// LastDay returns the last calendar day of the month.
func (m Month) LastDay() Date {
	return DateOf(time.Time(m).AddDate(0, 1, -1))
}

// Contains reports whether the calendar date lies in the month.
func (m Month) Contains(d Date) bool {
	return d >= m.FirstDay() && d <= m.LastDay()
}

// MarshalJSON encodes the month as its first day, e.g. "2024-05-01".
func (m Month) MarshalJSON() ([]byte, error) {
	return []byte(`"` + m.Key() + `"`), nil
}

// UnmarshalJSON accepts every format ParseMonth accepts.
func (m *Month) UnmarshalJSON(data []byte) error {
	value := strings.Trim(string(data), `"`)
	if value == "" || value == "null" {
		return nil
	}

	month, err := ParseMonth(value)
	if err != nil {
		return err
	}

	*m = month
	return nil
}

// UnmarshalParam implements gin's BindUnmarshaler for query and URI binding.
func (m *Month) UnmarshalParam(p string) error {
	if p == "" {
		*m = Month{}
		return nil
	}

	month, err := ParseMonth(p)
	if err != nil {
		return err
	}

	*m = month
	return nil
}

// Scan writes the value from the database.
func (m *Month) Scan(value interface{}) (err error) {
	nullTime := &sql.NullTime{}
	err = nullTime.Scan(value)
	*m = Month(nullTime.Time)
	return err
}

// Value returns the value for the SQL driver to write to the database.
func (m Month) Value() (driver.Value, error) {
	year, month, _ := time.Time(m).Date()
	return time.Date(year, month, 1, 0, 0, 0, 0, time.UTC), nil
}

// GormDataType defines the data type used by gorm for the type.
func (Month) GormDataType() string {
	return "date"
}

// IsZero reports if the month is the zero value.
func (m Month) IsZero() bool {
	return time.Time(m).IsZero()
}

// AddDate adds a specified amount of years and months.
func (m Month) AddDate(years, months int) Month {
	return Month(time.Time(m).AddDate(years, months, 0))
}

// Before reports whether the month m is before n.
func (m Month) Before(n Month) bool {
	return time.Time(m).Before(time.Time(n))
}

// After reports whether the month m is after n.
func (m Month) After(n Month) bool {
	return time.Time(m).After(time.Time(n))
}

// Equal reports whether m and n represent the same month.
func (m Month) Equal(n Month) bool {
	return time.Time(m).Equal(time.Time(n))
}
