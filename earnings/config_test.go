package earnings_test

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/earnings-engine/earnings"
)

var now = time.Date(2024, time.March, 1, 8, 0, 0, 0, time.UTC)

func window(start, end string) *earnings.Window {
	w := earnings.MustWindow(start, end)
	return &w
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func decPtr(s string) *decimal.Decimal {
	d := dec(s)
	return &d
}

func TestDefaultSalaryConfig_IsValid(t *testing.T) {
	cfg := earnings.DefaultSalaryConfig(now)

	require.NoError(t, cfg.Validate())
	assert.True(t, cfg.MonthlySalary.Equal(dec("3000")))
	assert.Equal(t, []int{1, 2, 3, 4, 5}, cfg.WorkDays.Ints())
	assert.Equal(t, "Mon,Tue,Wed,Thu,Fri", cfg.WorkDays.String())
	assert.Equal(t, now, cfg.CreatedAt)
}

func TestDailyWorkSeconds(t *testing.T) {
	cfg := earnings.DefaultSalaryConfig(now)
	assert.Equal(t, int64(8*3600), cfg.DailyWorkSeconds())

	cfg.Lunch = nil
	assert.Equal(t, int64(9*3600), cfg.DailyWorkSeconds())
}

func TestValidate_RejectsBrokenInvariants(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*earnings.SalaryConfig)
		field  string
	}{
		{"negative salary", func(c *earnings.SalaryConfig) { c.MonthlySalary = dec("-1") }, "monthly_salary"},
		{"start equals end", func(c *earnings.SalaryConfig) { c.Work = *window("09:00", "09:00") }, "work"},
		{"start after end", func(c *earnings.SalaryConfig) { c.Work = *window("18:00", "09:00") }, "work"},
		{"no workdays", func(c *earnings.SalaryConfig) { c.WorkDays = 0 }, "work_days"},
		{"weekday bit out of range", func(c *earnings.SalaryConfig) { c.WorkDays |= 0x80 }, "work_days"},
		{"lunch inverted", func(c *earnings.SalaryConfig) { c.Lunch = window("13:00", "12:00") }, "lunch"},
		{"lunch outside work", func(c *earnings.SalaryConfig) { c.Lunch = window("08:00", "09:30") }, "lunch"},
		{"lunch covers the whole day", func(c *earnings.SalaryConfig) { c.Lunch = window("09:00", "18:00") }, "lunch"},
		{"overtime rate below 1", func(c *earnings.SalaryConfig) {
			c.Overtime = &earnings.Overtime{Rate: dec("0.5"), Window: *window("18:00", "20:00")}
		}, "overtime.rate"},
		{"overtime before work end", func(c *earnings.SalaryConfig) {
			c.Overtime = &earnings.Overtime{Rate: dec("1.5"), Window: *window("17:00", "20:00")}
		}, "overtime.window"},
		{"overtime window empty", func(c *earnings.SalaryConfig) {
			c.Overtime = &earnings.Overtime{Rate: dec("1.5"), Window: *window("20:00", "20:00")}
		}, "overtime.window"},
		{"holiday rate below 1", func(c *earnings.SalaryConfig) { c.HolidayOvertimeRate = decPtr("0.99") }, "holiday_overtime_rate"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := earnings.DefaultSalaryConfig(now)
			tt.mutate(&cfg)

			err := cfg.Validate()
			require.Error(t, err)
			assert.True(t, errors.Is(err, earnings.ErrInvalidConfig))
			assert.True(t, earnings.IsClientError(err))

			var cfgErr *earnings.ConfigurationError
			require.ErrorAs(t, err, &cfgErr)
			assert.Equal(t, tt.field, cfgErr.Field)

			_, err = earnings.NewEngine(cfg, nil)
			assert.ErrorIs(t, err, earnings.ErrInvalidConfig)
		})
	}
}

func TestValidate_AcceptsBoundaryWindows(t *testing.T) {
	cfg := earnings.DefaultSalaryConfig(now)
	cfg.Lunch = window("09:00", "10:00")
	cfg.Overtime = &earnings.Overtime{Rate: dec("1"), Window: *window("18:00", "23:59")}
	cfg.HolidayOvertimeRate = decPtr("1")

	assert.NoError(t, cfg.Validate())
}

func TestNewWeekdaySet(t *testing.T) {
	set, err := earnings.NewWeekdaySet(0, 6, 6)
	require.NoError(t, err)
	assert.Equal(t, 2, set.Len())
	assert.True(t, set.Has(time.Sunday))
	assert.True(t, set.Has(time.Saturday))
	assert.False(t, set.Has(time.Monday))

	_, err = earnings.NewWeekdaySet(1, 7)
	assert.ErrorIs(t, err, earnings.ErrInvalidConfig)
}

func TestApply_UpdatesAndValidates(t *testing.T) {
	cfg := earnings.DefaultSalaryConfig(now)
	later := now.Add(time.Hour)

	// GIVEN: A raise plus removal of the lunch break
	salary := dec("4200")
	next, err := cfg.Apply(earnings.ConfigUpdate{MonthlySalary: &salary, ClearLunch: true}, later)

	// THEN: Only the named fields change and UpdatedAt moves
	require.NoError(t, err)
	assert.True(t, next.MonthlySalary.Equal(salary))
	assert.Nil(t, next.Lunch)
	assert.Equal(t, cfg.Work, next.Work)
	assert.Equal(t, later, next.UpdatedAt)
	assert.Equal(t, now, next.CreatedAt)

	// Receiver untouched
	assert.NotNil(t, cfg.Lunch)
	assert.Equal(t, now, cfg.UpdatedAt)
}

func TestApply_InvalidUpdateLeavesConfig(t *testing.T) {
	cfg := earnings.DefaultSalaryConfig(now)

	bad := earnings.MustWindow("19:00", "08:00")
	got, err := cfg.Apply(earnings.ConfigUpdate{Work: &bad}, now.Add(time.Hour))

	assert.ErrorIs(t, err, earnings.ErrInvalidConfig)
	assert.Equal(t, cfg, got)
}

func TestApply_OvertimeToggle(t *testing.T) {
	cfg := earnings.DefaultSalaryConfig(now)

	ot := earnings.Overtime{Rate: dec("1.5"), Window: earnings.MustWindow("18:30", "21:00")}
	withOT, err := cfg.Apply(earnings.ConfigUpdate{Overtime: &ot, HolidayOvertimeRate: decPtr("2")}, now)
	require.NoError(t, err)
	require.NotNil(t, withOT.Overtime)
	assert.Equal(t, "18:30-21:00", withOT.Overtime.Window.String())
	require.NotNil(t, withOT.HolidayOvertimeRate)

	cleared, err := withOT.Apply(earnings.ConfigUpdate{ClearOvertime: true, ClearHolidayOvertime: true}, now)
	require.NoError(t, err)
	assert.Nil(t, cleared.Overtime)
	assert.Nil(t, cleared.HolidayOvertimeRate)
}
