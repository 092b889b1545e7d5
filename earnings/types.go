/*
Package earnings provides the workday and earnings calculation engine.

PURPOSE:
  Converts a salary configuration plus a holiday calendar into money earned:
  so far today, this month, this year, or between two instants. Everything
  here is pure computation over caller-supplied snapshots; persistence and
  presentation live elsewhere.

KEY CONCEPTS IN THIS FILE (types.go):
  - SalaryConfig: Monthly salary, work window, optional lunch and overtime
  - Window: A [Start, End) time-of-day range
  - WeekdaySet: Which weekdays are worked by default
  - Overtime: Optional rate plus window, present or absent as a unit

DESIGN PRINCIPLES:
  1. Precision: Money is decimal.Decimal, never float64
  2. Paired options are single values: a lunch break is a *Window, so "start
     without end" cannot be represented
  3. Validate before compute: an Engine is never built from a config that
     fails Validate

USAGE:
  cfg := earnings.DefaultSalaryConfig(time.Now())
  engine, err := earnings.NewEngine(cfg, calendar.NewHolidayCalendar(records))
  today := engine.TodayEarnings(time.Now())

SEE ALSO:
  - workday.go: WorkdayPolicy (day classification, work status)
  - engine.go: Engine (per-second pay and aggregation)
  - errors.go: ConfigurationError, DivisionDegenerateError
*/
package earnings

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/warp/earnings-engine/calendar"
)

// =============================================================================
// WINDOW - Time-of-day range
// =============================================================================

// Window is the time-of-day range [Start, End).
type Window struct {
	Start calendar.TimeOfDay
	End   calendar.TimeOfDay
}

// NewWindow parses two "HH:MM" strings.
func NewWindow(start, end string) (Window, error) {
	s, err := calendar.ParseTimeOfDay(start)
	if err != nil {
		return Window{}, err
	}
	e, err := calendar.ParseTimeOfDay(end)
	if err != nil {
		return Window{}, err
	}
	return Window{Start: s, End: e}, nil
}

// MustWindow is NewWindow for literals.
func MustWindow(start, end string) Window {
	w, err := NewWindow(start, end)
	if err != nil {
		panic(err)
	}
	return w
}

// Seconds returns the window length in seconds.
func (w Window) Seconds() int64 { return w.End.Seconds() - w.Start.Seconds() }

// Within reports whether w lies inside outer (bounds inclusive).
func (w Window) Within(outer Window) bool {
	return !w.Start.Before(outer.Start) && !w.End.After(outer.End)
}

func (w Window) String() string { return w.Start.String() + "-" + w.End.String() }

// =============================================================================
// WEEKDAY SET
// =============================================================================

// WeekdaySet is a bitmask of time.Weekday values (bit 0 = Sunday).
type WeekdaySet uint8

// DefaultWorkDays is Monday through Friday.
const DefaultWorkDays = WeekdaySet(1<<time.Monday | 1<<time.Tuesday | 1<<time.Wednesday | 1<<time.Thursday | 1<<time.Friday)

// NewWeekdaySet builds a set from weekday numbers 0..6. Out-of-range values
// produce an error rather than being dropped.
func NewWeekdaySet(days ...int) (WeekdaySet, error) {
	var s WeekdaySet
	for _, d := range days {
		if d < 0 || d > 6 {
			return 0, &ConfigurationError{Field: "work_days", Reason: fmt.Sprintf("weekday %d out of range 0..6", d)}
		}
		s |= 1 << uint(d)
	}
	return s, nil
}

func (s WeekdaySet) Has(d time.Weekday) bool { return s&(1<<uint(d)) != 0 }
func (s WeekdaySet) Len() int {
	n := 0
	for d := time.Sunday; d <= time.Saturday; d++ {
		if s.Has(d) {
			n++
		}
	}
	return n
}

// Ints returns the weekday numbers in ascending order.
func (s WeekdaySet) Ints() []int {
	out := []int{}
	for d := time.Sunday; d <= time.Saturday; d++ {
		if s.Has(d) {
			out = append(out, int(d))
		}
	}
	return out
}

func (s WeekdaySet) String() string {
	var names []string
	for _, d := range s.Ints() {
		names = append(names, time.Weekday(d).String()[:3])
	}
	return strings.Join(names, ",")
}

// =============================================================================
// SALARY CONFIG
// =============================================================================

// Overtime configures paid hours after the regular work window.
type Overtime struct {
	Rate   decimal.Decimal // multiplier on base per-second pay, >= 1
	Window Window
}

// SalaryConfig is the single long-lived configuration of a worker.
type SalaryConfig struct {
	ID            string
	MonthlySalary decimal.Decimal
	Work          Window
	Lunch         *Window
	WorkDays      WeekdaySet

	Overtime            *Overtime
	HolidayOvertimeRate *decimal.Decimal

	CreatedAt time.Time
	UpdatedAt time.Time
}

// DefaultSalaryConfig is 3000 per month, 09:00-18:00 with lunch 12:00-13:00,
// Monday to Friday.
func DefaultSalaryConfig(now time.Time) SalaryConfig {
	lunch := MustWindow("12:00", "13:00")
	return SalaryConfig{
		MonthlySalary: decimal.NewFromInt(3000),
		Work:          MustWindow("09:00", "18:00"),
		Lunch:         &lunch,
		WorkDays:      DefaultWorkDays,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

var one = decimal.NewFromInt(1)

// Validate checks every structural invariant and returns the first violation
// as a *ConfigurationError.
func (c SalaryConfig) Validate() error {
	if c.MonthlySalary.IsNegative() {
		return &ConfigurationError{Field: "monthly_salary", Reason: "must not be negative"}
	}
	if !c.Work.Start.Before(c.Work.End) {
		return &ConfigurationError{Field: "work", Reason: fmt.Sprintf("start %s must be before end %s", c.Work.Start, c.Work.End)}
	}
	if c.WorkDays == 0 {
		return &ConfigurationError{Field: "work_days", Reason: "at least one weekday is required"}
	}
	if c.WorkDays&0x80 != 0 {
		return &ConfigurationError{Field: "work_days", Reason: "weekday out of range 0..6"}
	}
	if c.Lunch != nil {
		if !c.Lunch.Start.Before(c.Lunch.End) {
			return &ConfigurationError{Field: "lunch", Reason: fmt.Sprintf("start %s must be before end %s", c.Lunch.Start, c.Lunch.End)}
		}
		if !c.Lunch.Within(c.Work) {
			return &ConfigurationError{Field: "lunch", Reason: fmt.Sprintf("%s must lie within work hours %s", c.Lunch, c.Work)}
		}
		if c.DailyWorkSeconds() <= 0 {
			return &ConfigurationError{Field: "lunch", Reason: fmt.Sprintf("%s leaves no paid time in work hours %s", c.Lunch, c.Work)}
		}
	}
	if c.Overtime != nil {
		if c.Overtime.Rate.LessThan(one) {
			return &ConfigurationError{Field: "overtime.rate", Reason: "must be at least 1.0"}
		}
		if !c.Overtime.Window.Start.Before(c.Overtime.Window.End) {
			return &ConfigurationError{Field: "overtime.window", Reason: fmt.Sprintf("start %s must be before end %s", c.Overtime.Window.Start, c.Overtime.Window.End)}
		}
		if c.Overtime.Window.Start.Before(c.Work.End) {
			return &ConfigurationError{Field: "overtime.window", Reason: fmt.Sprintf("must start at or after work end %s", c.Work.End)}
		}
	}
	if c.HolidayOvertimeRate != nil && c.HolidayOvertimeRate.LessThan(one) {
		return &ConfigurationError{Field: "holiday_overtime_rate", Reason: "must be at least 1.0"}
	}
	return nil
}

// DailyWorkSeconds is the paid length of a full workday: the work window
// minus lunch. Date-independent.
func (c SalaryConfig) DailyWorkSeconds() int64 {
	total := c.Work.Seconds()
	if c.Lunch != nil {
		total -= c.Lunch.Seconds()
	}
	return total
}

// =============================================================================
// CONFIG UPDATE - Partial mutation
// =============================================================================

// ConfigUpdate carries the fields to change; nil fields are left alone.
// ClearLunch / ClearOvertime / ClearHolidayOvertime disable the feature.
type ConfigUpdate struct {
	MonthlySalary        *decimal.Decimal
	Work                 *Window
	Lunch                *Window
	ClearLunch           bool
	WorkDays             *WeekdaySet
	Overtime             *Overtime
	ClearOvertime        bool
	HolidayOvertimeRate  *decimal.Decimal
	ClearHolidayOvertime bool
}

// Apply returns c with u applied and UpdatedAt set to now. The result is
// validated; on error c is returned unchanged.
func (c SalaryConfig) Apply(u ConfigUpdate, now time.Time) (SalaryConfig, error) {
	next := c
	if u.MonthlySalary != nil {
		next.MonthlySalary = *u.MonthlySalary
	}
	if u.Work != nil {
		next.Work = *u.Work
	}
	switch {
	case u.ClearLunch:
		next.Lunch = nil
	case u.Lunch != nil:
		lunch := *u.Lunch
		next.Lunch = &lunch
	}
	if u.WorkDays != nil {
		next.WorkDays = *u.WorkDays
	}
	switch {
	case u.ClearOvertime:
		next.Overtime = nil
	case u.Overtime != nil:
		ot := *u.Overtime
		next.Overtime = &ot
	}
	switch {
	case u.ClearHolidayOvertime:
		next.HolidayOvertimeRate = nil
	case u.HolidayOvertimeRate != nil:
		rate := *u.HolidayOvertimeRate
		next.HolidayOvertimeRate = &rate
	}
	if err := next.Validate(); err != nil {
		return c, err
	}
	next.UpdatedAt = now
	return next, nil
}
