package store_test

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/earnings-engine/calendar"
	"github.com/warp/earnings-engine/earnings"
	"github.com/warp/earnings-engine/store"
)

var now = time.Date(2024, time.March, 1, 8, 0, 0, 0, time.UTC)

func TestEncodeDecodeSnapshot(t *testing.T) {
	cfg := earnings.DefaultSalaryConfig(now)
	cfg.ID = "cfg-1"
	holidays := []calendar.HolidayConfig{
		{ID: "h1", Date: calendar.NewDate(2024, time.March, 8), Name: "Day off", CreatedAt: now},
		{ID: "h2", Date: calendar.NewDate(2024, time.March, 9), Name: "Make-up day", IsWorkday: true, CreatedAt: now},
	}

	data, err := store.EncodeSnapshot(&cfg, holidays)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"salaryConfigs"`)
	assert.Contains(t, string(data), `"holidayConfigs"`)
	assert.Contains(t, string(data), `"2024-03-01T08:00:00Z"`)

	contents, err := store.DecodeSnapshot(data, now.Add(time.Hour))
	require.NoError(t, err)
	require.NotNil(t, contents.Config)
	assert.Equal(t, "cfg-1", contents.Config.ID)
	assert.True(t, cfg.MonthlySalary.Equal(contents.Config.MonthlySalary))
	assert.Equal(t, cfg.Work, contents.Config.Work)
	assert.Equal(t, cfg.WorkDays, contents.Config.WorkDays)
	assert.Equal(t, holidays, contents.Holidays)
}

func TestEncodeSnapshot_Empty(t *testing.T) {
	data, err := store.EncodeSnapshot(nil, nil)
	require.NoError(t, err)
	assert.JSONEq(t, `{"salaryConfigs": [], "holidayConfigs": []}`, string(data))

	contents, err := store.DecodeSnapshot(data, now)
	require.NoError(t, err)
	assert.Nil(t, contents.Config)
	assert.Empty(t, contents.Holidays)
}

func TestDecodeSnapshot_AssignsMissingIDs(t *testing.T) {
	contents, err := store.DecodeSnapshot([]byte(`{
	  "salaryConfigs": [{"monthly_salary": "5000", "work_start": "09:00", "work_end": "17:00"}],
	  "holidayConfigs": [{"date": "2024-05-01", "name": "Labour Day"}]
	}`), now)
	require.NoError(t, err)

	require.NotNil(t, contents.Config)
	assert.NotEmpty(t, contents.Config.ID)
	assert.Equal(t, now, contents.Config.CreatedAt)
	require.Len(t, contents.Holidays, 1)
	assert.NotEmpty(t, contents.Holidays[0].ID)
	assert.Equal(t, now, contents.Holidays[0].CreatedAt)
}

func TestDecodeSnapshot_Failures(t *testing.T) {
	tests := []struct {
		name  string
		data  string
		stage string
	}{
		{"not json", `{"salaryConfigs": [`, "decode"},
		{"wrong shape", `{"salaryConfigs": "nope"}`, "decode"},
		{"unrelated document", `{"foo": 1}`, "decode"},
		{"two configs", `{"salaryConfigs": [
			{"monthly_salary": "1", "work_start": "09:00", "work_end": "17:00"},
			{"monthly_salary": "2", "work_start": "09:00", "work_end": "17:00"}]}`, "salary"},
		{"invalid config", `{"salaryConfigs": [{"monthly_salary": "1", "work_start": "17:00", "work_end": "09:00"}]}`, "salary"},
		{"holiday without date", `{"holidayConfigs": [{"name": "?"}]}`, "holiday"},
		{"duplicate holiday id", `{"holidayConfigs": [
			{"id": "x", "date": "2024-01-01"},
			{"id": "x", "date": "2024-01-02"}]}`, "holiday"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			contents, err := store.DecodeSnapshot([]byte(tt.data), now)

			require.Error(t, err)
			assert.True(t, errors.Is(err, store.ErrDataImport))
			var importErr *store.ImportError
			require.ErrorAs(t, err, &importErr)
			assert.Equal(t, tt.stage, importErr.Stage)
			assert.Nil(t, contents.Config)
			assert.Nil(t, contents.Holidays)
		})
	}
}

func TestImportError_UnwrapsCause(t *testing.T) {
	_, err := store.DecodeSnapshot([]byte(`{"salaryConfigs": [{"monthly_salary": "-5", "work_start": "09:00", "work_end": "17:00"}]}`), now)

	assert.ErrorIs(t, err, store.ErrDataImport)
	assert.ErrorIs(t, err, earnings.ErrInvalidConfig)
}

func TestPrepareYear_RejectsOtherYears(t *testing.T) {
	_, err := store.PrepareYear(2024, []calendar.HolidayConfig{
		{Date: calendar.NewDate(2024, time.December, 31)},
		{Date: calendar.NewDate(2025, time.January, 1)},
	}, now)
	assert.ErrorIs(t, err, earnings.ErrInvalidConfig)

	hs, err := store.PrepareYear(2024, []calendar.HolidayConfig{{Date: calendar.NewDate(2024, time.January, 1)}}, now)
	require.NoError(t, err)
	assert.NotEmpty(t, hs[0].ID)
}
