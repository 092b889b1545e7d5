package sqlite_test

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/earnings-engine/calendar"
	"github.com/warp/earnings-engine/earnings"
	"github.com/warp/earnings-engine/store"
	"github.com/warp/earnings-engine/store/sqlite"
)

// =============================================================================
// TEST SETUP
// =============================================================================

func newTestStore(t *testing.T) *sqlite.Store {
	st, err := sqlite.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })
	return st
}

func march2024Holidays() []calendar.HolidayConfig {
	return []calendar.HolidayConfig{
		{Date: calendar.NewDate(2024, time.March, 8), Name: "Day off"},
		{Date: calendar.NewDate(2024, time.March, 9), Name: "Make-up day", IsWorkday: true},
	}
}

// =============================================================================
// SALARY CONFIG
// =============================================================================

func TestStore_LoadEmpty(t *testing.T) {
	st := newTestStore(t)

	cfg, err := st.Load(context.Background())
	require.NoError(t, err)
	assert.Nil(t, cfg)
}

func TestStore_SaveReplacesConfig(t *testing.T) {
	// GIVEN: A saved configuration
	st := newTestStore(t)
	ctx := context.Background()

	cfg := earnings.DefaultSalaryConfig(time.Now())
	require.NoError(t, st.Save(ctx, cfg))

	// WHEN: A second configuration with overtime is saved
	next := earnings.DefaultSalaryConfig(time.Now())
	next.MonthlySalary = decimal.NewFromInt(4500)
	next.Overtime = &earnings.Overtime{Rate: decimal.RequireFromString("1.5"), Window: earnings.MustWindow("18:00", "21:00")}
	require.NoError(t, st.Save(ctx, next))

	// THEN: Only the latest is loaded, with every field intact
	loaded, err := st.Load(ctx)
	require.NoError(t, err)
	require.NotNil(t, loaded)
	assert.NotEmpty(t, loaded.ID)
	assert.True(t, loaded.MonthlySalary.Equal(decimal.NewFromInt(4500)))
	require.NotNil(t, loaded.Overtime)
	assert.Equal(t, "18:00-21:00", loaded.Overtime.Window.String())
	require.NotNil(t, loaded.Lunch)
	assert.Equal(t, earnings.DefaultWorkDays, loaded.WorkDays)
}

func TestStore_SaveRejectsInvalidConfig(t *testing.T) {
	st := newTestStore(t)

	cfg := earnings.DefaultSalaryConfig(time.Now())
	cfg.Lunch = &earnings.Window{Start: calendar.MustParseTimeOfDay("13:00"), End: calendar.MustParseTimeOfDay("12:00")}

	err := st.Save(context.Background(), cfg)
	var cfgErr *earnings.ConfigurationError
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, "lunch", cfgErr.Field)
}

// =============================================================================
// HOLIDAYS
// =============================================================================

func TestStore_HolidayCRUD(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	saved, err := st.SaveHoliday(ctx, calendar.HolidayConfig{Date: calendar.NewDate(2024, time.October, 1), Name: "National Day"})
	require.NoError(t, err)
	assert.NotEmpty(t, saved.ID)
	assert.False(t, saved.CreatedAt.IsZero())

	_, err = st.SaveHoliday(ctx, calendar.HolidayConfig{Date: calendar.NewDate(2024, time.January, 1), Name: "New Year"})
	require.NoError(t, err)

	hs, err := st.ListHolidays(ctx)
	require.NoError(t, err)
	require.Len(t, hs, 2)
	assert.Equal(t, calendar.NewDate(2024, time.January, 1), hs[0].Date)
	assert.Equal(t, saved.ID, hs[1].ID)

	// Reclassify in place
	saved.IsWorkday = true
	saved.Name = "Make-up day"
	updated, err := st.SaveHoliday(ctx, saved)
	require.NoError(t, err)
	assert.True(t, updated.IsWorkday)

	hs, err = st.ListHolidays(ctx)
	require.NoError(t, err)
	require.Len(t, hs, 2)
	assert.Equal(t, "Make-up day", hs[1].Name)
	assert.True(t, hs[1].IsWorkday)

	// Date is immutable
	saved.Date = saved.Date.AddDays(1)
	_, err = st.SaveHoliday(ctx, saved)
	assert.ErrorIs(t, err, earnings.ErrInvalidConfig)

	require.NoError(t, st.DeleteHoliday(ctx, saved.ID))
	assert.ErrorIs(t, st.DeleteHoliday(ctx, saved.ID), store.ErrNotFound)
}

func TestStore_CorruptHolidayTimestampIsReported(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "earnings.db")
	st, err := sqlite.New(path)
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	saved, err := st.SaveHoliday(ctx, calendar.HolidayConfig{Date: calendar.NewDate(2024, time.May, 1), Name: "Labour Day"})
	require.NoError(t, err)

	// GIVEN a row whose created_at was damaged outside the store
	raw, err := sql.Open("sqlite3", path)
	require.NoError(t, err)
	defer raw.Close()
	_, err = raw.ExecContext(ctx, "UPDATE holidays SET created_at = 'yesterday' WHERE id = ?", saved.ID)
	require.NoError(t, err)

	// THEN listing fails and names the record
	_, err = st.ListHolidays(ctx)
	require.Error(t, err)
	assert.Contains(t, err.Error(), saved.ID)
}

func TestStore_SaveHolidayWithNewExplicitID(t *testing.T) {
	st := newTestStore(t)

	saved, err := st.SaveHoliday(context.Background(), calendar.HolidayConfig{
		ID: "fixed-id", Date: calendar.NewDate(2024, time.May, 1), Name: "Labour Day",
	})
	require.NoError(t, err)
	assert.Equal(t, "fixed-id", saved.ID)
}

func TestStore_ReplaceHolidays(t *testing.T) {
	// GIVEN: Records in 2023 and 2024
	st := newTestStore(t)
	ctx := context.Background()
	_, err := st.SaveHoliday(ctx, calendar.HolidayConfig{Date: calendar.NewDate(2023, time.December, 25), Name: "Kept"})
	require.NoError(t, err)
	_, err = st.SaveHoliday(ctx, calendar.HolidayConfig{Date: calendar.NewDate(2024, time.January, 1), Name: "Replaced"})
	require.NoError(t, err)

	// WHEN: 2024 is replaced
	require.NoError(t, st.ReplaceHolidays(ctx, 2024, march2024Holidays()))

	// THEN: 2023 survives, 2024 is exactly the new list
	hs, err := st.ListHolidays(ctx)
	require.NoError(t, err)
	require.Len(t, hs, 3)
	assert.Equal(t, "Kept", hs[0].Name)
	assert.Equal(t, "Day off", hs[1].Name)
	assert.Equal(t, "Make-up day", hs[2].Name)

	// Records outside the year abort the whole replacement
	err = st.ReplaceHolidays(ctx, 2024, []calendar.HolidayConfig{
		{Date: calendar.NewDate(2024, time.May, 1), Name: "ok"},
		{Date: calendar.NewDate(2025, time.May, 1), Name: "wrong year"},
	})
	assert.ErrorIs(t, err, earnings.ErrInvalidConfig)
	hs, err = st.ListHolidays(ctx)
	require.NoError(t, err)
	assert.Len(t, hs, 3)
}

// =============================================================================
// SNAPSHOTS
// =============================================================================

func TestStore_SnapshotRoundTrip(t *testing.T) {
	// GIVEN: A populated store
	ctx := context.Background()
	src := newTestStore(t)
	cfg := earnings.DefaultSalaryConfig(time.Date(2024, time.February, 1, 9, 0, 0, 0, time.UTC))
	rate := decimal.NewFromInt(2)
	cfg.HolidayOvertimeRate = &rate
	require.NoError(t, src.Save(ctx, cfg))
	require.NoError(t, src.ReplaceHolidays(ctx, 2024, march2024Holidays()))

	// WHEN: Exported and imported into an empty store
	data, err := src.ExportSnapshot(ctx)
	require.NoError(t, err)

	dst := newTestStore(t)
	require.NoError(t, dst.ImportSnapshot(ctx, data))

	// THEN: The destination exports the same document
	again, err := dst.ExportSnapshot(ctx)
	require.NoError(t, err)
	assert.JSONEq(t, string(data), string(again))

	loaded, err := dst.Load(ctx)
	require.NoError(t, err)
	require.NotNil(t, loaded.HolidayOvertimeRate)
	assert.True(t, loaded.HolidayOvertimeRate.Equal(rate))
}

func TestStore_ImportFailureLeavesDataUntouched(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	require.NoError(t, st.Save(ctx, earnings.DefaultSalaryConfig(time.Now())))
	require.NoError(t, st.ReplaceHolidays(ctx, 2024, march2024Holidays()))
	before, err := st.ExportSnapshot(ctx)
	require.NoError(t, err)

	for _, bad := range []string{
		`not json`,
		`{"salaryConfigs": [{"monthly_salary": "1", "work_start": "09:00", "work_end": "08:00"}]}`,
		`{"salaryConfigs": [], "holidayConfigs": [{"date": "2024-01-01"}, {"date": "01/02/2024"}]}`,
	} {
		err := st.ImportSnapshot(ctx, []byte(bad))
		assert.ErrorIs(t, err, store.ErrDataImport, bad)

		after, err := st.ExportSnapshot(ctx)
		require.NoError(t, err)
		assert.JSONEq(t, string(before), string(after), bad)
	}
}

func TestStore_ImportReplacesEverything(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	require.NoError(t, st.Save(ctx, earnings.DefaultSalaryConfig(time.Now())))
	require.NoError(t, st.ReplaceHolidays(ctx, 2024, march2024Holidays()))

	require.NoError(t, st.ImportSnapshot(ctx, []byte(`{"salaryConfigs": [], "holidayConfigs": [
	  {"date": "2025-01-01", "name": "New Year"}
	]}`)))

	cfg, err := st.Load(ctx)
	require.NoError(t, err)
	assert.Nil(t, cfg)
	hs, err := st.ListHolidays(ctx)
	require.NoError(t, err)
	require.Len(t, hs, 1)
	assert.Equal(t, "New Year", hs[0].Name)

	require.NoError(t, st.Reset(ctx))
	hs, err = st.ListHolidays(ctx)
	require.NoError(t, err)
	assert.Empty(t, hs)
}
