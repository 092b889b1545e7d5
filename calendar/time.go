/*
Package calendar provides the date and time-of-day arithmetic the earnings
engine is built on.

PURPOSE:
  Earnings depend on two independent clocks: which calendar day it is (is
  this a paid day?) and how far into the day we are (how many paid seconds
  have elapsed?). This package keeps the two apart so that neither leaks
  into the other.

KEY CONCEPTS IN THIS FILE (time.go):
  - Date: A civil calendar day, compared without any time-of-day
  - TimeOfDay: An hour/minute clock reading with no date attached
  - SecondsOfDay: Wall-clock seconds since midnight for an instant

DESIGN PRINCIPLES:
  1. Dates are values: comparable with ==, usable as map keys
  2. Arithmetic goes through time.Date so month/year rollover is normalized
  3. Location is only consulted when an instant is mapped to a day

USAGE:
  day := calendar.DateOf(time.Now())
  start := day.At(calendar.MustParseTimeOfDay("09:00"), time.Local)

SEE ALSO:
  - period.go: Inclusive day ranges
  - holiday.go: Holiday and compensated-workday lookup
*/
package calendar

import (
	"fmt"
	"time"
)

// =============================================================================
// DATE - A calendar day without time-of-day
// =============================================================================

// Date is a civil calendar day. The zero value is not a valid date.
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

const dateLayout = "2006-01-02"

// NewDate returns the normalized date, so NewDate(2024, 2, 30) is March 1st.
func NewDate(year int, month time.Month, day int) Date {
	return DateOf(time.Date(year, month, day, 0, 0, 0, 0, time.UTC))
}

// DateOf returns the calendar day of t in t's own location.
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return Date{Year: y, Month: m, Day: d}
}

// Today returns the current calendar day in loc.
func Today(loc *time.Location) Date {
	return DateOf(time.Now().In(loc))
}

// ParseDate parses a YYYY-MM-DD string.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return Date{}, fmt.Errorf("invalid date %q (use YYYY-MM-DD): %w", s, err)
	}
	return DateOf(t), nil
}

var localInstantLayouts = []string{"2006-01-02T15:04:05", "2006-01-02T15:04", "2006-01-02 15:04", dateLayout}

// ParseInstant parses an RFC 3339 timestamp, or a local date-time or date
// interpreted in loc. The result is always expressed in loc.
func ParseInstant(s string, loc *time.Location) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.In(loc), nil
	}
	for _, layout := range localInstantLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid time %q (use RFC 3339, YYYY-MM-DDTHH:MM or YYYY-MM-DD)", s)
}

// Time returns midnight of d in loc.
func (d Date) Time(loc *time.Location) time.Time {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, loc)
}

// At places a time-of-day onto d in loc.
func (d Date) At(tod TimeOfDay, loc *time.Location) time.Time {
	return time.Date(d.Year, d.Month, d.Day, tod.Hour, tod.Minute, 0, 0, loc)
}

func (d Date) utc() time.Time { return d.Time(time.UTC) }

// Comparison
func (d Date) Before(other Date) bool        { return d.utc().Before(other.utc()) }
func (d Date) After(other Date) bool         { return d.utc().After(other.utc()) }
func (d Date) Equal(other Date) bool         { return d == other }
func (d Date) BeforeOrEqual(other Date) bool { return !d.After(other) }
func (d Date) AfterOrEqual(other Date) bool  { return !d.Before(other) }

// Arithmetic
func (d Date) AddDays(n int) Date   { return DateOf(d.utc().AddDate(0, 0, n)) }
func (d Date) AddMonths(n int) Date { return DateOf(d.utc().AddDate(0, n, 0)) }

// Properties
func (d Date) Weekday() time.Weekday { return d.utc().Weekday() }
func (d Date) IsZero() bool          { return d == Date{} }
func (d Date) String() string        { return d.utc().Format(dateLayout) }

// MarshalText encodes the date as YYYY-MM-DD.
func (d Date) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// UnmarshalText accepts YYYY-MM-DD or a full RFC 3339 timestamp, in which
// case only the calendar day is kept.
func (d *Date) UnmarshalText(b []byte) error {
	s := string(b)
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		*d = DateOf(t)
		return nil
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// =============================================================================
// TIME OF DAY - Clock reading with no date
// =============================================================================

// TimeOfDay is an hour/minute clock reading. Seconds are not configurable.
type TimeOfDay struct {
	Hour   int
	Minute int
}

const secondsPerDay = 24 * 60 * 60

// NewTimeOfDay builds a TimeOfDay, rejecting out-of-range components.
func NewTimeOfDay(hour, minute int) (TimeOfDay, error) {
	if hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return TimeOfDay{}, fmt.Errorf("invalid time of day %02d:%02d", hour, minute)
	}
	return TimeOfDay{Hour: hour, Minute: minute}, nil
}

// ParseTimeOfDay parses "HH:MM".
func ParseTimeOfDay(s string) (TimeOfDay, error) {
	var h, m int
	if _, err := fmt.Sscanf(s, "%d:%d", &h, &m); err != nil {
		return TimeOfDay{}, fmt.Errorf("invalid time of day %q (use HH:MM): %w", s, err)
	}
	return NewTimeOfDay(h, m)
}

// MustParseTimeOfDay is ParseTimeOfDay for literals. It panics on bad input.
func MustParseTimeOfDay(s string) TimeOfDay {
	tod, err := ParseTimeOfDay(s)
	if err != nil {
		panic(err)
	}
	return tod
}

// ClockOf extracts the hour and minute of t.
func ClockOf(t time.Time) TimeOfDay {
	return TimeOfDay{Hour: t.Hour(), Minute: t.Minute()}
}

// Seconds returns seconds since midnight.
func (t TimeOfDay) Seconds() int64 {
	return int64(t.Hour*3600 + t.Minute*60)
}

func (t TimeOfDay) Before(other TimeOfDay) bool { return t.Seconds() < other.Seconds() }
func (t TimeOfDay) After(other TimeOfDay) bool  { return t.Seconds() > other.Seconds() }

func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", t.Hour, t.Minute)
}

func (t TimeOfDay) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

func (t *TimeOfDay) UnmarshalText(b []byte) error {
	parsed, err := ParseTimeOfDay(string(b))
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// =============================================================================
// TIME UTILITIES
// =============================================================================

// SecondsOfDay returns the wall-clock seconds elapsed since midnight for t,
// read from the clock face so DST transitions do not skew it.
func SecondsOfDay(t time.Time) int64 {
	return int64(t.Hour()*3600 + t.Minute()*60 + t.Second())
}

// EndOfDaySeconds is the SecondsOfDay value of the instant a day ends.
const EndOfDaySeconds int64 = secondsPerDay

// StartOfDay returns 00:00:00 of t's day in t's location.
func StartOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// DaysInMonth returns the number of days in the given month.
func DaysInMonth(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// DaysBetween returns the number of calendar days from a to b (negative if b
// is before a).
func DaysBetween(from, to Date) int {
	return int(to.utc().Sub(from.utc()).Hours() / 24)
}

func StartOfMonth(year int, month time.Month) Date { return NewDate(year, month, 1) }
func EndOfMonth(year int, month time.Month) Date {
	return NewDate(year, month, DaysInMonth(year, month))
}
