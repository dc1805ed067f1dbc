package models

import (
	"fmt"
	"time"
)

// DateLayout is the ISO 8601 calendar date layout used for input and output.
const DateLayout = "2006-01-02"

// Date is a calendar date without a time of day. The wrapped time is always
// midnight UTC so two equal dates compare equal with ==.
type Date struct {
	t time.Time
}

// NewDate returns the calendar date y-m-d. Out of range values are normalized
// the same way time.Date normalizes them.
func NewDate(year int, month time.Month, day int) Date {
	return Date{t: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// DateOf returns the calendar date of t in t's location.
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return NewDate(y, m, d)
}

// ParseDate parses a YYYY-MM-DD string.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return Date{}, fmt.Errorf("invalid date %q: expected YYYY-MM-DD", s)
	}
	return DateOf(t), nil
}

// AddDays adds n calendar days, rolling over months and years.
func (d Date) AddDays(n int) Date {
	return Date{t: d.t.AddDate(0, 0, n)}
}

// Time returns the date as midnight UTC.
func (d Date) Time() time.Time {
	return d.t
}

// IsZero reports whether d is the zero Date.
func (d Date) IsZero() bool {
	return d.t.IsZero()
}

// Before reports whether d is strictly before other.
func (d Date) Before(other Date) bool {
	return d.t.Before(other.t)
}

// String returns the date in YYYY-MM-DD form.
func (d Date) String() string {
	return d.t.Format(DateLayout)
}

// Compact returns the date as YYYYMMDD, as used in file names.
func (d Date) Compact() string {
	return d.t.Format("20060102")
}

// Format formats the date with a time layout.
func (d Date) Format(layout string) string {
	return d.t.Format(layout)
}

// MarshalText implements encoding.TextMarshaler.
func (d Date) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Date) UnmarshalText(text []byte) error {
	parsed, err := ParseDate(string(text))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}
