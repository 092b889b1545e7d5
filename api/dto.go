/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. Salary and holiday
  records reuse the factory JSON shapes so the API, the CLI and snapshot
  files all speak the same format. Money is always a decimal string.

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Response: Wrappers around lists or status messages

TYPES:
  Earnings:
    SummaryDTO, RangeDTO

  Calendar:
    WorkdaysDTO, NextWorkdayDTO, NextHolidayDTO, HolidaysResponse, SyncResponse

  Errors:
    ErrorResponse

SEE ALSO:
  - handlers.go: Uses these types
  - factory/config.go: ConfigJSON, HolidayJSON, UpdateJSON
*/
package api

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/warp/earnings-engine/calendar"
	"github.com/warp/earnings-engine/earnings"
	"github.com/warp/earnings-engine/factory"
)

// =============================================================================
// EARNINGS
// =============================================================================

// SummaryDTO is the dashboard view returned by GET /api/earnings.
type SummaryDTO struct {
	At               string               `json:"at"`
	Date             calendar.Date        `json:"date"`
	IsWorkday        bool                 `json:"is_workday"`
	Status           earnings.WorkStatus  `json:"status"`
	ElapsedSeconds   int64                `json:"elapsed_seconds"`
	DailySeconds     int64                `json:"daily_seconds"`
	RatePerSecond    *decimal.Decimal     `json:"rate_per_second"`
	Today            decimal.Decimal      `json:"today"`
	Month            decimal.Decimal      `json:"month"`
	Year             decimal.Decimal      `json:"year"`
	Overtime         decimal.Decimal      `json:"overtime"`
	HolidayOvertime  decimal.Decimal      `json:"holiday_overtime"`
	NextWorkday      *calendar.Date       `json:"next_workday"`
	NextHoliday      *factory.HolidayJSON `json:"next_holiday"`
	DaysUntilHoliday *int                 `json:"days_until_holiday"`
}

// RangeDTO is returned by GET /api/earnings/range.
type RangeDTO struct {
	Start    string          `json:"start"`
	End      string          `json:"end"`
	Earnings decimal.Decimal `json:"earnings"`
}

// =============================================================================
// CALENDAR
// =============================================================================

// WorkdaysDTO describes one month.
type WorkdaysDTO struct {
	Year          int              `json:"year"`
	Month         int              `json:"month"`
	WorkDays      int              `json:"work_days"`
	DailySeconds  int64            `json:"daily_seconds"`
	DailySalary   *decimal.Decimal `json:"daily_salary"`
	RatePerSecond *decimal.Decimal `json:"rate_per_second"`
}

// NextWorkdayDTO is returned by GET /api/workdays/next. Absent days are null.
type NextWorkdayDTO struct {
	From     calendar.Date  `json:"from"`
	Next     *calendar.Date `json:"next"`
	Previous *calendar.Date `json:"previous"`
}

// NextHolidayDTO is returned by GET /api/holidays/next.
type NextHolidayDTO struct {
	From      calendar.Date        `json:"from"`
	Next      *factory.HolidayJSON `json:"next"`
	DaysUntil *int                 `json:"days_until"`
	Previous  *factory.HolidayJSON `json:"previous"`
	DaysSince *int                 `json:"days_since"`
}

type HolidaysResponse struct {
	Holidays []factory.HolidayJSON `json:"holidays"`
}

type SyncResponse struct {
	Year    int `json:"year"`
	Records int `json:"records"`
}

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// =============================================================================
// CONVERSIONS
// =============================================================================

func toSummaryDTO(s earnings.Summary, f *factory.ConfigFactory) SummaryDTO {
	dto := SummaryDTO{
		At:               s.At.Format(time.RFC3339),
		Date:             s.Date,
		IsWorkday:        s.IsWorkday,
		Status:           s.Status,
		ElapsedSeconds:   s.ElapsedSeconds,
		DailySeconds:     s.DailySeconds,
		RatePerSecond:    s.RatePerSecond,
		Today:            s.Today,
		Month:            s.Month,
		Year:             s.Year,
		Overtime:         s.Overtime,
		HolidayOvertime:  s.HolidayOvertime,
		NextWorkday:      s.NextWorkday,
		DaysUntilHoliday: s.DaysUntilHoliday,
	}
	if s.NextHoliday != nil {
		hj := f.HolidayToJSON(*s.NextHoliday)
		dto.NextHoliday = &hj
	}
	return dto
}

func intPtr(n int, ok bool) *int {
	if !ok {
		return nil
	}
	return &n
}

func datePtr(d calendar.Date, ok bool) *calendar.Date {
	if !ok {
		return nil
	}
	return &d
}
