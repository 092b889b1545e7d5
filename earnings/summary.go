package earnings

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"github.com/warp/earnings-engine/calendar"
)

// Summary is the dashboard view of one instant.
type Summary struct {
	At             time.Time
	Date           calendar.Date
	IsWorkday      bool
	Status         WorkStatus
	ElapsedSeconds int64
	DailySeconds   int64

	// RatePerSecond is nil when the month has no defined rate.
	RatePerSecond *decimal.Decimal

	Today           decimal.Decimal
	Month           decimal.Decimal
	Year            decimal.Decimal
	Overtime        decimal.Decimal
	HolidayOvertime decimal.Decimal

	NextWorkday      *calendar.Date
	NextHoliday      *calendar.HolidayConfig
	DaysUntilHoliday *int
}

// Summary gathers every figure for instant in one call.
func (e *Engine) Summary(instant time.Time) (Summary, error) {
	day := calendar.DateOf(instant)
	s := Summary{
		At:             instant,
		Date:           day,
		IsWorkday:      e.policy.IsWorkday(day),
		Status:         e.policy.WorkStatus(instant),
		ElapsedSeconds: e.ElapsedPaidSeconds(instant),
		DailySeconds:   e.cfg.DailyWorkSeconds(),
	}

	rate, err := e.SalaryPerSecond(day.Year, day.Month)
	switch {
	case err == nil:
		s.RatePerSecond = &rate
	case !errors.Is(err, ErrDegenerateDivision):
		return Summary{}, err
	}

	if s.Today, err = e.TodayEarnings(instant); err != nil {
		return Summary{}, err
	}
	if s.Month, err = e.MonthEarnings(instant); err != nil {
		return Summary{}, err
	}
	if s.Year, err = e.YearEarnings(instant); err != nil {
		return Summary{}, err
	}
	// Without a rate there is nothing to multiply overtime by.
	if s.RatePerSecond != nil {
		if s.Overtime, err = e.OvertimeEarnings(instant); err != nil {
			return Summary{}, err
		}
		if s.HolidayOvertime, err = e.HolidayOvertimeEarnings(day); err != nil {
			return Summary{}, err
		}
	}

	if next, ok := e.policy.NextWorkday(day); ok {
		s.NextWorkday = &next
	}
	holidays := e.policy.Holidays()
	if h, ok := holidays.NextHoliday(day); ok {
		s.NextHoliday = &h
	}
	if n, ok := holidays.DaysUntilNextHoliday(day); ok {
		s.DaysUntilHoliday = &n
	}
	return s, nil
}
