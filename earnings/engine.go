/*
engine.go - Earnings aggregation

PURPOSE:
  Turns paid seconds into money. Every figure is built from one primitive:

    earnings(day) = paidSeconds(day) * salaryPerSecond(day's month)

  so a day in March is always paid at March's rate, whichever range or
  aggregate it is counted in.

RATES:
  dailySalary     = monthlySalary / workDaysInMonth
  salaryPerSecond = dailySalary / dailyWorkSeconds

  Both are undefined for a month with no workdays, and the per-second rate
  is undefined when the working day has no paid seconds. Those cases return
  *DivisionDegenerateError instead of zero.

AGGREGATES:
  today = elapsedPaidSeconds(now) * salaryPerSecond, 0 on non-workdays
  month = dailySalary * workdays(1st .. yesterday) + today
  year  = monthlySalary * completed months + month
  range = sum over days of the paid seconds inside [start, end]

SEE ALSO:
  - workday.go: IsWorkday and WorkStatus
  - cache.go: MonthCache for workday counts
*/
package earnings

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/warp/earnings-engine/calendar"
)

// Engine computes earnings for one salary configuration against one holiday
// calendar. It holds no mutable state and is safe for concurrent use.
type Engine struct {
	cfg    SalaryConfig
	policy *WorkdayPolicy
	cache  *MonthCache
}

// Option configures an Engine.
type Option func(*Engine)

// WithMonthCache shares memoized workday counts between engines.
func WithMonthCache(c *MonthCache) Option {
	return func(e *Engine) { e.cache = c }
}

// NewEngine validates cfg and builds an engine. A nil calendar has no
// special days.
func NewEngine(cfg SalaryConfig, holidays *calendar.HolidayCalendar, opts ...Option) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	e := &Engine{cfg: cfg, policy: NewWorkdayPolicy(cfg, holidays)}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// Config returns the validated configuration the engine was built with.
func (e *Engine) Config() SalaryConfig { return e.cfg }

// Policy returns the workday policy over the engine's holiday calendar.
func (e *Engine) Policy() *WorkdayPolicy { return e.policy }

// DailyWorkSeconds is the paid length of a full workday.
func (e *Engine) DailyWorkSeconds() int64 { return e.cfg.DailyWorkSeconds() }

// IsWorkday reports whether d is paid under the configured week and holidays.
func (e *Engine) IsWorkday(d calendar.Date) bool { return e.policy.IsWorkday(d) }

// =============================================================================
// WORKDAY COUNTS
// =============================================================================

// WorkDaysInMonth counts the workdays of a month.
func (e *Engine) WorkDaysInMonth(year int, month time.Month) int {
	compute := func() int { return e.policy.WorkdaysIn(calendar.MonthPeriod(year, month)) }
	if e.cache == nil {
		return compute()
	}
	return e.cache.workdays(year, month, e.policy, compute)
}

// WorkDaysInYear sums WorkDaysInMonth over the twelve months.
func (e *Engine) WorkDaysInYear(year int) int {
	total := 0
	for m := time.January; m <= time.December; m++ {
		total += e.WorkDaysInMonth(year, m)
	}
	return total
}

// =============================================================================
// RATES
// =============================================================================

// DailySalary is the monthly salary split evenly over the month's workdays.
func (e *Engine) DailySalary(year int, month time.Month) (decimal.Decimal, error) {
	days := e.WorkDaysInMonth(year, month)
	if days == 0 {
		return decimal.Zero, &DivisionDegenerateError{Year: year, Month: month, DailySeconds: e.cfg.DailyWorkSeconds()}
	}
	return e.cfg.MonthlySalary.Div(decimal.NewFromInt(int64(days))), nil
}

// SalaryPerSecond is the base pay for one paid second in the given month.
func (e *Engine) SalaryPerSecond(year int, month time.Month) (decimal.Decimal, error) {
	days := e.WorkDaysInMonth(year, month)
	secs := e.cfg.DailyWorkSeconds()
	if days == 0 || secs <= 0 {
		return decimal.Zero, &DivisionDegenerateError{Year: year, Month: month, WorkDays: days, DailySeconds: secs}
	}
	return e.cfg.MonthlySalary.
		Div(decimal.NewFromInt(int64(days))).
		Div(decimal.NewFromInt(secs)), nil
}

// =============================================================================
// PAID SECONDS
// =============================================================================

// ElapsedPaidSeconds is the paid time since work start on instant's day,
// net of lunch and capped at DailyWorkSeconds. The day's workday status is
// not consulted.
func (e *Engine) ElapsedPaidSeconds(instant time.Time) int64 {
	return e.elapsedAt(calendar.SecondsOfDay(instant))
}

// elapsedAt maps a clock reading in seconds (0..EndOfDaySeconds) to paid
// seconds. It is non-decreasing in sec.
func (e *Engine) elapsedAt(sec int64) int64 {
	start, end := e.cfg.Work.Start.Seconds(), e.cfg.Work.End.Seconds()
	switch {
	case sec <= start:
		return 0
	case sec >= end:
		return e.cfg.DailyWorkSeconds()
	}
	raw := sec - start
	if e.cfg.Lunch == nil {
		return raw
	}
	ls, le := e.cfg.Lunch.Start.Seconds(), e.cfg.Lunch.End.Seconds()
	switch {
	case sec < ls:
		return raw
	case sec < le:
		return ls - start
	default:
		return raw - (le - ls)
	}
}

// =============================================================================
// AGGREGATES
// =============================================================================

// TodayEarnings is the pay accrued so far on instant's day.
func (e *Engine) TodayEarnings(instant time.Time) (decimal.Decimal, error) {
	day := calendar.DateOf(instant)
	if !e.policy.IsWorkday(day) {
		return decimal.Zero, nil
	}
	rate, err := e.SalaryPerSecond(day.Year, day.Month)
	if err != nil {
		return decimal.Zero, err
	}
	return rate.Mul(decimal.NewFromInt(e.ElapsedPaidSeconds(instant))), nil
}

// MonthEarnings is a daily salary for every workday of the month before
// today plus TodayEarnings.
func (e *Engine) MonthEarnings(instant time.Time) (decimal.Decimal, error) {
	day := calendar.DateOf(instant)
	today, err := e.TodayEarnings(instant)
	if err != nil {
		return decimal.Zero, err
	}

	before := calendar.Period{Start: calendar.StartOfMonth(day.Year, day.Month), End: day.AddDays(-1)}
	worked := e.policy.WorkdaysIn(before)
	if worked == 0 {
		return today, nil
	}
	daily, err := e.DailySalary(day.Year, day.Month)
	if err != nil {
		return decimal.Zero, err
	}
	return daily.Mul(decimal.NewFromInt(int64(worked))).Add(today), nil
}

// YearEarnings is a full salary for each month before instant's month plus
// MonthEarnings.
func (e *Engine) YearEarnings(instant time.Time) (decimal.Decimal, error) {
	month, err := e.MonthEarnings(instant)
	if err != nil {
		return decimal.Zero, err
	}
	completed := int64(calendar.DateOf(instant).Month - time.January)
	return e.cfg.MonthlySalary.Mul(decimal.NewFromInt(completed)).Add(month), nil
}

// RangeEarnings sums the pay for every paid second in [start, end]. Days
// strictly inside the range count in full; the two boundary days count only
// the part inside the range. Each day uses its own month's rate.
//
// end is read in start's location.
func (e *Engine) RangeEarnings(start, end time.Time) (decimal.Decimal, error) {
	if end.Before(start) {
		return decimal.Zero, fmt.Errorf("%w: %s > %s", ErrInvalidPeriod,
			start.Format(time.RFC3339), end.Format(time.RFC3339))
	}
	end = end.In(start.Location())
	first, last := calendar.DateOf(start), calendar.DateOf(end)

	type yearMonth struct {
		year  int
		month time.Month
	}
	rates := make(map[yearMonth]decimal.Decimal)
	total := decimal.Zero
	for day := first; day.BeforeOrEqual(last); day = day.AddDays(1) {
		if !e.policy.IsWorkday(day) {
			continue
		}
		from, to := int64(0), calendar.EndOfDaySeconds
		if day == first {
			from = calendar.SecondsOfDay(start)
		}
		if day == last {
			to = calendar.SecondsOfDay(end)
		}
		paid := e.elapsedAt(to) - e.elapsedAt(from)
		if paid <= 0 {
			continue
		}

		key := yearMonth{day.Year, day.Month}
		rate, ok := rates[key]
		if !ok {
			var err error
			rate, err = e.SalaryPerSecond(day.Year, day.Month)
			if err != nil {
				return decimal.Zero, err
			}
			rates[key] = rate
		}
		total = total.Add(rate.Mul(decimal.NewFromInt(paid)))
	}
	return total, nil
}

// =============================================================================
// OVERTIME
// =============================================================================

// OvertimeSeconds is the overlap of the overtime window with [workEnd,
// instant]. It is 0 when overtime is not configured or instant precedes the
// window. The day's workday status is not consulted.
func (e *Engine) OvertimeSeconds(instant time.Time) int64 {
	if e.cfg.Overtime == nil {
		return 0
	}
	sec := calendar.SecondsOfDay(instant)
	win := e.cfg.Overtime.Window
	if sec < win.Start.Seconds() {
		return 0
	}
	from := max(win.Start.Seconds(), e.cfg.Work.End.Seconds())
	to := min(sec, win.End.Seconds())
	if to <= from {
		return 0
	}
	return to - from
}

// OvertimeEarnings pays OvertimeSeconds at the base rate times the overtime
// multiplier.
func (e *Engine) OvertimeEarnings(instant time.Time) (decimal.Decimal, error) {
	secs := e.OvertimeSeconds(instant)
	if secs == 0 {
		return decimal.Zero, nil
	}
	day := calendar.DateOf(instant)
	rate, err := e.SalaryPerSecond(day.Year, day.Month)
	if err != nil {
		return decimal.Zero, err
	}
	return rate.Mul(decimal.NewFromInt(secs)).Mul(e.cfg.Overtime.Rate), nil
}

// HolidayOvertimeSeconds is a full working day on any non-workday and 0 on
// a workday. It models a flat bonus for working a day off.
func (e *Engine) HolidayOvertimeSeconds(d calendar.Date) int64 {
	if e.policy.IsWorkday(d) {
		return 0
	}
	return e.cfg.DailyWorkSeconds()
}

// HolidayOvertimeEarnings pays HolidayOvertimeSeconds at the base rate times
// the holiday multiplier. 0 when no holiday rate is configured.
func (e *Engine) HolidayOvertimeEarnings(d calendar.Date) (decimal.Decimal, error) {
	if e.cfg.HolidayOvertimeRate == nil {
		return decimal.Zero, nil
	}
	secs := e.HolidayOvertimeSeconds(d)
	if secs == 0 {
		return decimal.Zero, nil
	}
	rate, err := e.SalaryPerSecond(d.Year, d.Month)
	if err != nil {
		return decimal.Zero, err
	}
	return rate.Mul(decimal.NewFromInt(secs)).Mul(*e.cfg.HolidayOvertimeRate), nil
}
