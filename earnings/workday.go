package earnings

import (
	"time"

	"github.com/warp/earnings-engine/calendar"
)

// =============================================================================
// WORK STATUS
// =============================================================================

// WorkStatus classifies a time of day against the configured work window.
type WorkStatus string

const (
	BeforeWork WorkStatus = "before_work"
	Working    WorkStatus = "working"
	LunchBreak WorkStatus = "lunch_break"
	AfterWork  WorkStatus = "after_work"
)

// MaxWorkdayScan bounds NextWorkday and PreviousWorkday.
const MaxWorkdayScan = 3650

// =============================================================================
// WORKDAY POLICY
// =============================================================================

// WorkdayPolicy decides which days are paid and where an instant falls
// within the working day.
type WorkdayPolicy struct {
	cfg      SalaryConfig
	holidays *calendar.HolidayCalendar
}

// NewWorkdayPolicy builds a policy. A nil calendar has no special days.
func NewWorkdayPolicy(cfg SalaryConfig, holidays *calendar.HolidayCalendar) *WorkdayPolicy {
	if holidays == nil {
		holidays = calendar.EmptyCalendar()
	}
	return &WorkdayPolicy{cfg: cfg, holidays: holidays}
}

// IsWorkday applies weekday membership, then holiday overrides, then
// compensated workdays. A day carrying both kinds of record is a workday.
func (p *WorkdayPolicy) IsWorkday(d calendar.Date) bool {
	if p.cfg.WorkDays.Has(d.Weekday()) && !p.holidays.IsHoliday(d) {
		return true
	}
	return p.holidays.IsCompensatedWorkday(d)
}

// WorkStatus compares the clock reading of instant with the work and lunch
// windows. Every boundary belongs to the state that starts there.
func (p *WorkdayPolicy) WorkStatus(instant time.Time) WorkStatus {
	sec := calendar.SecondsOfDay(instant)
	switch {
	case sec < p.cfg.Work.Start.Seconds():
		return BeforeWork
	case sec >= p.cfg.Work.End.Seconds():
		return AfterWork
	case p.cfg.Lunch != nil && sec >= p.cfg.Lunch.Start.Seconds() && sec < p.cfg.Lunch.End.Seconds():
		return LunchBreak
	default:
		return Working
	}
}

// NextWorkday returns the first workday after from. It gives up after
// MaxWorkdayScan days.
func (p *WorkdayPolicy) NextWorkday(from calendar.Date) (calendar.Date, bool) {
	return p.scan(from, 1)
}

// PreviousWorkday returns the last workday before from.
func (p *WorkdayPolicy) PreviousWorkday(from calendar.Date) (calendar.Date, bool) {
	return p.scan(from, -1)
}

func (p *WorkdayPolicy) scan(from calendar.Date, step int) (calendar.Date, bool) {
	current := from
	for i := 0; i < MaxWorkdayScan; i++ {
		current = current.AddDays(step)
		if p.IsWorkday(current) {
			return current, true
		}
	}
	return calendar.Date{}, false
}

// WorkdaysIn counts the workdays of an inclusive period.
func (p *WorkdayPolicy) WorkdaysIn(period calendar.Period) int {
	n := 0
	for _, d := range period.Days() {
		if p.IsWorkday(d) {
			n++
		}
	}
	return n
}

// Holidays returns the calendar the policy classifies against.
func (p *WorkdayPolicy) Holidays() *calendar.HolidayCalendar {
	return p.holidays
}
