package store_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/earnings-engine/calendar"
	"github.com/warp/earnings-engine/earnings"
	"github.com/warp/earnings-engine/store"
	"github.com/warp/earnings-engine/store/memory"
)

func TestCurrentConfig(t *testing.T) {
	ctx := context.Background()
	st := memory.New()

	// GIVEN nothing saved, the defaults are used
	cfg, err := store.CurrentConfig(ctx, st, now)
	require.NoError(t, err)
	assert.True(t, cfg.MonthlySalary.Equal(decimal.NewFromInt(3000)))
	assert.Equal(t, "", cfg.ID)

	// GIVEN a saved config, it is returned
	saved := earnings.DefaultSalaryConfig(now)
	saved.MonthlySalary = decimal.NewFromInt(4200)
	require.NoError(t, st.Save(ctx, saved))

	cfg, err = store.CurrentConfig(ctx, st, now)
	require.NoError(t, err)
	assert.True(t, cfg.MonthlySalary.Equal(decimal.NewFromInt(4200)))
	assert.NotEmpty(t, cfg.ID)
}

func TestLoadEngine(t *testing.T) {
	ctx := context.Background()
	st := memory.New()

	friday := calendar.NewDate(2024, time.March, 8)
	saturday := calendar.NewDate(2024, time.March, 9)
	_, err := st.SaveHoliday(ctx, calendar.HolidayConfig{Date: friday, Name: "Closed"})
	require.NoError(t, err)
	_, err = st.SaveHoliday(ctx, calendar.HolidayConfig{Date: saturday, Name: "Make-up", IsWorkday: true})
	require.NoError(t, err)

	cal, err := store.LoadCalendar(ctx, st)
	require.NoError(t, err)
	assert.Equal(t, 2, cal.Len())

	// WHEN building the engine from the store
	engine, err := store.LoadEngine(ctx, st, now, earnings.WithMonthCache(earnings.NewMonthCache(0)))
	require.NoError(t, err)

	// THEN the stored records drive workday classification
	assert.False(t, engine.IsWorkday(friday))
	assert.True(t, engine.IsWorkday(saturday))
	// 21 weekdays, minus the holiday, plus the make-up Saturday
	assert.Equal(t, 21, engine.WorkDaysInMonth(2024, time.March))
}
