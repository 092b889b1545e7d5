package factory_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/earnings-engine/calendar"
	"github.com/warp/earnings-engine/earnings"
	"github.com/warp/earnings-engine/factory"
)

const fullConfig = `{
  "id": "cfg-1",
  "monthly_salary": "8000.50",
  "work_start": "08:30",
  "work_end": "17:30",
  "lunch": {"start": "12:00", "end": "12:45"},
  "work_days": [1, 2, 3, 4, 5, 6],
  "overtime": {"rate": 1.5, "start": "18:00", "end": "21:00"},
  "holiday_overtime_rate": "3",
  "created_at": "2024-03-01T08:00:00Z",
  "updated_at": "2024-03-02T09:00:00Z"
}`

func TestParseConfig_Full(t *testing.T) {
	f := factory.NewConfigFactory()

	cfg, err := f.ParseConfig([]byte(fullConfig))
	require.NoError(t, err)

	assert.Equal(t, "cfg-1", cfg.ID)
	assert.Equal(t, "8000.5", cfg.MonthlySalary.String())
	assert.Equal(t, "08:30-17:30", cfg.Work.String())
	require.NotNil(t, cfg.Lunch)
	assert.Equal(t, "12:00-12:45", cfg.Lunch.String())
	assert.Equal(t, 6, cfg.WorkDays.Len())
	assert.True(t, cfg.WorkDays.Has(time.Saturday))
	require.NotNil(t, cfg.Overtime)
	assert.Equal(t, "1.5", cfg.Overtime.Rate.String())
	require.NotNil(t, cfg.HolidayOvertimeRate)
	assert.Equal(t, "3", cfg.HolidayOvertimeRate.String())
	assert.Equal(t, time.Date(2024, time.March, 2, 9, 0, 0, 0, time.UTC), cfg.UpdatedAt.UTC())
	assert.Equal(t, int64(8*3600+15*60), cfg.DailyWorkSeconds())
}

func TestParseConfig_DefaultsWorkDays(t *testing.T) {
	f := factory.NewConfigFactory()

	cfg, err := f.ParseConfig([]byte(`{"monthly_salary": 3000, "work_start": "09:00", "work_end": "18:00"}`))
	require.NoError(t, err)
	assert.Equal(t, earnings.DefaultWorkDays, cfg.WorkDays)
	assert.Nil(t, cfg.Lunch)
	assert.Nil(t, cfg.Overtime)
}

func TestParseConfig_Errors(t *testing.T) {
	f := factory.NewConfigFactory()

	tests := []struct {
		name  string
		json  string
		field string
	}{
		{"bad work time", `{"monthly_salary": "1", "work_start": "9am", "work_end": "18:00"}`, "work"},
		{"inverted work", `{"monthly_salary": "1", "work_start": "18:00", "work_end": "09:00"}`, "work"},
		{"bad weekday", `{"monthly_salary": "1", "work_start": "09:00", "work_end": "18:00", "work_days": [7]}`, "work_days"},
		{"lunch outside", `{"monthly_salary": "1", "work_start": "09:00", "work_end": "18:00", "lunch": {"start": "18:00", "end": "19:00"}}`, "lunch"},
		{"bad overtime", `{"monthly_salary": "1", "work_start": "09:00", "work_end": "18:00", "overtime": {"rate": "2", "start": "x", "end": "20:00"}}`, "overtime.window"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.ParseConfig([]byte(tt.json))
			var cfgErr *earnings.ConfigurationError
			require.ErrorAs(t, err, &cfgErr)
			assert.Equal(t, tt.field, cfgErr.Field)
		})
	}

	_, err := f.ParseConfig([]byte(`{not json`))
	assert.Error(t, err)
	assert.False(t, earnings.IsClientError(err))
}

func TestToJSON_RoundTrip(t *testing.T) {
	f := factory.NewConfigFactory()

	cfg, err := f.ParseConfig([]byte(fullConfig))
	require.NoError(t, err)

	data, err := json.Marshal(f.ToJSON(cfg))
	require.NoError(t, err)
	back, err := f.ParseConfig(data)
	require.NoError(t, err)

	again, err := json.Marshal(f.ToJSON(back))
	require.NoError(t, err)
	assert.JSONEq(t, string(data), string(again))
	assert.True(t, cfg.MonthlySalary.Equal(back.MonthlySalary))
}

func TestToUpdate_PairsLoneWorkBound(t *testing.T) {
	f := factory.NewConfigFactory()
	current := earnings.DefaultSalaryConfig(time.Now())

	end := "19:00"
	u, err := f.ToUpdate(factory.UpdateJSON{WorkEnd: &end, ClearLunch: true}, current)
	require.NoError(t, err)

	require.NotNil(t, u.Work)
	assert.Equal(t, "09:00-19:00", u.Work.String())
	assert.True(t, u.ClearLunch)

	next, err := current.Apply(u, time.Now())
	require.NoError(t, err)
	assert.Equal(t, int64(10*3600), next.DailyWorkSeconds())
}

func TestToUpdate_RejectsBadWeekday(t *testing.T) {
	f := factory.NewConfigFactory()

	_, err := f.ToUpdate(factory.UpdateJSON{WorkDays: []int{-1}}, earnings.DefaultSalaryConfig(time.Now()))
	assert.ErrorIs(t, err, earnings.ErrInvalidConfig)
}

func TestParseHolidays(t *testing.T) {
	f := factory.NewConfigFactory()

	hs, err := f.ParseHolidays([]byte(`[
	  {"date": "2024-10-01", "name": "National Day"},
	  {"date": "2024-10-12T00:00:00+08:00", "name": "Make-up day", "is_workday": true}
	]`))
	require.NoError(t, err)
	require.Len(t, hs, 2)
	assert.Equal(t, calendar.NewDate(2024, time.October, 1), hs[0].Date)
	assert.False(t, hs[0].IsWorkday)
	assert.Equal(t, calendar.NewDate(2024, time.October, 12), hs[1].Date)
	assert.True(t, hs[1].IsWorkday)

	_, err = f.ParseHolidays([]byte(`[{"name": "no date"}]`))
	assert.ErrorIs(t, err, earnings.ErrInvalidConfig)

	_, err = f.ParseHolidays([]byte(`[{"date": "tomorrow"}]`))
	assert.Error(t, err)
}
