// Package date provides a calendar date with day-level granularity.
// Dates are persisted as ISO-8601 strings so lexical ordering matches
// chronological ordering.
package date

import (
	"fmt"
	"time"
)

// Format is the canonical on-disk representation of a date.
const Format = "2006-01-02"

// Date represents a calendar date with no time component.
type Date struct {
	y int
	m time.Month
	d int
}

// New returns a normalized Date for the given year, month, and day.
func New(year int, month time.Month, day int) Date {
	d := Date{year, month, day}
	d.y, d.m, d.d = d.time().Date()
	return d
}

// Today returns the current date.
func Today() Date { return New(time.Now().Date()) }

// FromTime truncates a time.Time to its calendar date.
func FromTime(t time.Time) Date { return New(t.Date()) }

// Parse parses a Date from its ISO-8601 representation.
func Parse(str string) (Date, error) {
	on, err := time.Parse(Format, str)
	if err != nil {
		return Date{}, fmt.Errorf("invalid date %q want format %q: %w", str, Format, err)
	}
	return New(on.Date()), nil
}

// MustParse is like Parse but panics on error. Intended for tests and constants.
func MustParse(str string) Date {
	d, err := Parse(str)
	if err != nil {
		panic(err.Error())
	}
	return d
}

// time returns a time.Time that is a canonical representation of that day (at midnight UTC).
func (d Date) time() time.Time { return time.Date(d.y, d.m, d.d, 0, 0, 0, 0, time.UTC) }

// Year returns the year of the date.
func (d Date) Year() int { return d.y }

// Month returns the month of the date.
func (d Date) Month() time.Month { return d.m }

// Day returns the day of the month.
func (d Date) Day() int { return d.d }

// IsZero reports whether d is the zero date.
func (d Date) IsZero() bool { return d == Date{} }

// Before reports whether the day d is before x.
func (d Date) Before(x Date) bool { return d.time().Before(x.time()) }

// After reports whether the day d is after x.
func (d Date) After(x Date) bool { return d.time().After(x.time()) }

// Add returns a new Date with the given number of days added.
func (d Date) Add(i int) Date { return New(d.y, d.m, d.d+i) }

// String formats the date in its standard format.
func (d Date) String() string { return d.time().Format(Format) }
