/*
Package factory provides JSON to Go conversion for salary and holiday
configuration.

PURPOSE:
  Converts the JSON documents exchanged with the API, the CLI, snapshot
  files and holiday feeds into earnings.SalaryConfig and
  calendar.HolidayConfig values, and back. All parsing and defaulting of
  wire fields happens here so the engine only ever sees validated structs.

JSON SCHEMA (salary):
  {
    "id": "8c1f...",
    "monthly_salary": "3000",
    "work_start": "09:00",
    "work_end": "18:00",
    "lunch": {"start": "12:00", "end": "13:00"},
    "work_days": [1, 2, 3, 4, 5],
    "overtime": {"rate": "1.5", "start": "18:00", "end": "21:00"},
    "holiday_overtime_rate": "2",
    "created_at": "2024-03-01T08:00:00Z",
    "updated_at": "2024-03-01T08:00:00Z"
  }

JSON SCHEMA (holiday):
  {"id": "...", "date": "2024-10-01", "name": "National Day", "is_workday": false}

KEY FEATURES:
  - Money is carried as decimal strings (numbers are accepted on input)
  - Lunch and overtime are objects, present or absent as a unit
  - Field-level parse errors surface as *earnings.ConfigurationError
  - Partial updates (UpdateJSON) for PUT /api/config and "config set"

USAGE:
  f := factory.NewConfigFactory()
  cfg, err := f.ParseConfig(body)
  out := f.ToJSON(cfg)

SEE ALSO:
  - earnings/types.go: SalaryConfig
  - calendar/holiday.go: HolidayConfig
  - store/snapshot.go: Snapshot document built from these types
*/
package factory

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/warp/earnings-engine/calendar"
	"github.com/warp/earnings-engine/earnings"
)

// =============================================================================
// JSON SCHEMA TYPES
// =============================================================================

// ConfigJSON is the JSON representation of a salary configuration.
type ConfigJSON struct {
	ID                  string           `json:"id,omitempty"`
	MonthlySalary       decimal.Decimal  `json:"monthly_salary"`
	WorkStart           string           `json:"work_start"`
	WorkEnd             string           `json:"work_end"`
	Lunch               *WindowJSON      `json:"lunch,omitempty"`
	WorkDays            []int            `json:"work_days,omitempty"` // 0 = Sunday; defaults to Mon-Fri
	Overtime            *OvertimeJSON    `json:"overtime,omitempty"`
	HolidayOvertimeRate *decimal.Decimal `json:"holiday_overtime_rate,omitempty"`
	CreatedAt           time.Time        `json:"created_at"`
	UpdatedAt           time.Time        `json:"updated_at"`
}

// WindowJSON is an "HH:MM" time-of-day range.
type WindowJSON struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

// OvertimeJSON represents an overtime multiplier and its window.
type OvertimeJSON struct {
	Rate  decimal.Decimal `json:"rate"`
	Start string          `json:"start"`
	End   string          `json:"end"`
}

// HolidayJSON is the JSON representation of a holiday or compensated workday.
type HolidayJSON struct {
	ID        string        `json:"id,omitempty"`
	Date      calendar.Date `json:"date"`
	Name      string        `json:"name"`
	IsWorkday bool          `json:"is_workday"`
	CreatedAt time.Time     `json:"created_at"`
}

// UpdateJSON is a partial salary configuration. Absent fields are kept.
type UpdateJSON struct {
	MonthlySalary        *decimal.Decimal `json:"monthly_salary,omitempty"`
	WorkStart            *string          `json:"work_start,omitempty"`
	WorkEnd              *string          `json:"work_end,omitempty"`
	Lunch                *WindowJSON      `json:"lunch,omitempty"`
	ClearLunch           bool             `json:"clear_lunch,omitempty"`
	WorkDays             []int            `json:"work_days,omitempty"`
	Overtime             *OvertimeJSON    `json:"overtime,omitempty"`
	ClearOvertime        bool             `json:"clear_overtime,omitempty"`
	HolidayOvertimeRate  *decimal.Decimal `json:"holiday_overtime_rate,omitempty"`
	ClearHolidayOvertime bool             `json:"clear_holiday_overtime,omitempty"`
}

// =============================================================================
// CONFIG FACTORY
// =============================================================================

// ConfigFactory converts between JSON documents and configuration structs.
type ConfigFactory struct{}

// NewConfigFactory creates a new config factory.
func NewConfigFactory() *ConfigFactory {
	return &ConfigFactory{}
}

// ParseConfig parses and validates a JSON salary configuration.
func (f *ConfigFactory) ParseConfig(data []byte) (earnings.SalaryConfig, error) {
	var cj ConfigJSON
	if err := json.Unmarshal(data, &cj); err != nil {
		return earnings.SalaryConfig{}, fmt.Errorf("failed to parse salary config JSON: %w", err)
	}
	return f.FromJSON(cj)
}

// FromJSON converts ConfigJSON to a validated SalaryConfig.
func (f *ConfigFactory) FromJSON(cj ConfigJSON) (earnings.SalaryConfig, error) {
	work, err := parseWindow("work", cj.WorkStart, cj.WorkEnd)
	if err != nil {
		return earnings.SalaryConfig{}, err
	}

	cfg := earnings.SalaryConfig{
		ID:            cj.ID,
		MonthlySalary: cj.MonthlySalary,
		Work:          work,
		WorkDays:      earnings.DefaultWorkDays,
		CreatedAt:     cj.CreatedAt,
		UpdatedAt:     cj.UpdatedAt,
	}

	if cj.Lunch != nil {
		lunch, err := parseWindow("lunch", cj.Lunch.Start, cj.Lunch.End)
		if err != nil {
			return earnings.SalaryConfig{}, err
		}
		cfg.Lunch = &lunch
	}

	if len(cj.WorkDays) > 0 {
		if cfg.WorkDays, err = earnings.NewWeekdaySet(cj.WorkDays...); err != nil {
			return earnings.SalaryConfig{}, err
		}
	}

	if cj.Overtime != nil {
		ot, err := parseOvertime(*cj.Overtime)
		if err != nil {
			return earnings.SalaryConfig{}, err
		}
		cfg.Overtime = &ot
	}

	if cj.HolidayOvertimeRate != nil {
		rate := *cj.HolidayOvertimeRate
		cfg.HolidayOvertimeRate = &rate
	}

	if err := cfg.Validate(); err != nil {
		return earnings.SalaryConfig{}, err
	}
	return cfg, nil
}

// ToJSON converts a SalaryConfig to ConfigJSON.
func (f *ConfigFactory) ToJSON(cfg earnings.SalaryConfig) ConfigJSON {
	cj := ConfigJSON{
		ID:            cfg.ID,
		MonthlySalary: cfg.MonthlySalary,
		WorkStart:     cfg.Work.Start.String(),
		WorkEnd:       cfg.Work.End.String(),
		WorkDays:      cfg.WorkDays.Ints(),
		CreatedAt:     cfg.CreatedAt,
		UpdatedAt:     cfg.UpdatedAt,
	}
	if cfg.Lunch != nil {
		cj.Lunch = &WindowJSON{Start: cfg.Lunch.Start.String(), End: cfg.Lunch.End.String()}
	}
	if cfg.Overtime != nil {
		cj.Overtime = &OvertimeJSON{
			Rate:  cfg.Overtime.Rate,
			Start: cfg.Overtime.Window.Start.String(),
			End:   cfg.Overtime.Window.End.String(),
		}
	}
	if cfg.HolidayOvertimeRate != nil {
		rate := *cfg.HolidayOvertimeRate
		cj.HolidayOvertimeRate = &rate
	}
	return cj
}

// ToUpdate converts a partial document into a ConfigUpdate against current.
// A lone work_start or work_end is paired with the other current bound.
func (f *ConfigFactory) ToUpdate(uj UpdateJSON, current earnings.SalaryConfig) (earnings.ConfigUpdate, error) {
	u := earnings.ConfigUpdate{
		MonthlySalary:        uj.MonthlySalary,
		HolidayOvertimeRate:  uj.HolidayOvertimeRate,
		ClearLunch:           uj.ClearLunch,
		ClearOvertime:        uj.ClearOvertime,
		ClearHolidayOvertime: uj.ClearHolidayOvertime,
	}

	if uj.WorkStart != nil || uj.WorkEnd != nil {
		start, end := current.Work.Start.String(), current.Work.End.String()
		if uj.WorkStart != nil {
			start = *uj.WorkStart
		}
		if uj.WorkEnd != nil {
			end = *uj.WorkEnd
		}
		work, err := parseWindow("work", start, end)
		if err != nil {
			return earnings.ConfigUpdate{}, err
		}
		u.Work = &work
	}

	if uj.Lunch != nil {
		lunch, err := parseWindow("lunch", uj.Lunch.Start, uj.Lunch.End)
		if err != nil {
			return earnings.ConfigUpdate{}, err
		}
		u.Lunch = &lunch
	}

	if len(uj.WorkDays) > 0 {
		set, err := earnings.NewWeekdaySet(uj.WorkDays...)
		if err != nil {
			return earnings.ConfigUpdate{}, err
		}
		u.WorkDays = &set
	}

	if uj.Overtime != nil {
		ot, err := parseOvertime(*uj.Overtime)
		if err != nil {
			return earnings.ConfigUpdate{}, err
		}
		u.Overtime = &ot
	}
	return u, nil
}

// =============================================================================
// HOLIDAYS
// =============================================================================

// ParseHolidays parses a JSON array of holiday records.
func (f *ConfigFactory) ParseHolidays(data []byte) ([]calendar.HolidayConfig, error) {
	var hjs []HolidayJSON
	if err := json.Unmarshal(data, &hjs); err != nil {
		return nil, fmt.Errorf("failed to parse holidays JSON: %w", err)
	}
	out := make([]calendar.HolidayConfig, 0, len(hjs))
	for i, hj := range hjs {
		h, err := f.HolidayFromJSON(hj)
		if err != nil {
			return nil, fmt.Errorf("holiday %d: %w", i, err)
		}
		out = append(out, h)
	}
	return out, nil
}

// HolidayFromJSON converts HolidayJSON to a HolidayConfig.
func (f *ConfigFactory) HolidayFromJSON(hj HolidayJSON) (calendar.HolidayConfig, error) {
	if hj.Date.IsZero() {
		return calendar.HolidayConfig{}, &earnings.ConfigurationError{Field: "date", Reason: "is required"}
	}
	return calendar.HolidayConfig{
		ID:        hj.ID,
		Date:      hj.Date,
		Name:      hj.Name,
		IsWorkday: hj.IsWorkday,
		CreatedAt: hj.CreatedAt,
	}, nil
}

// HolidayToJSON converts a HolidayConfig to HolidayJSON.
func (f *ConfigFactory) HolidayToJSON(h calendar.HolidayConfig) HolidayJSON {
	return HolidayJSON{
		ID:        h.ID,
		Date:      h.Date,
		Name:      h.Name,
		IsWorkday: h.IsWorkday,
		CreatedAt: h.CreatedAt,
	}
}

// HolidaysToJSON converts a list of holidays, never returning nil.
func (f *ConfigFactory) HolidaysToJSON(hs []calendar.HolidayConfig) []HolidayJSON {
	out := make([]HolidayJSON, 0, len(hs))
	for _, h := range hs {
		out = append(out, f.HolidayToJSON(h))
	}
	return out
}

// =============================================================================
// PARSING HELPERS
// =============================================================================

func parseWindow(field, start, end string) (earnings.Window, error) {
	w, err := earnings.NewWindow(start, end)
	if err != nil {
		return earnings.Window{}, &earnings.ConfigurationError{Field: field, Reason: err.Error()}
	}
	return w, nil
}

func parseOvertime(oj OvertimeJSON) (earnings.Overtime, error) {
	w, err := parseWindow("overtime.window", oj.Start, oj.End)
	if err != nil {
		return earnings.Overtime{}, err
	}
	return earnings.Overtime{Rate: oj.Rate, Window: w}, nil
}
