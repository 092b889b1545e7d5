/*
scenarios_test.go - Tests for demo scenarios

PURPOSE:
	Tests that each scenario leaves the store in a usable state:
	- A valid salary config is saved
	- Holiday records exist for the surrounding years
	- The summary endpoint works against it
*/
package api

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/earnings-engine/calendar"
)

func TestScenarios_AllLoad(t *testing.T) {
	for _, s := range scenarios {
		t.Run(s.ID, func(t *testing.T) {
			h, router := setupTestRouter(t)

			rec := do(t, router, http.MethodPost, "/api/scenarios/load", map[string]string{"scenario_id": s.ID})
			require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

			cfg, err := h.Store.Load(context.Background())
			require.NoError(t, err)
			require.NotNil(t, cfg)
			require.NoError(t, cfg.Validate())

			hs, err := h.Store.ListHolidays(context.Background())
			require.NoError(t, err)
			assert.Equal(t, 2023, hs[0].Date.Year)
			assert.Equal(t, 2025, hs[len(hs)-1].Date.Year)

			rec = do(t, router, http.MethodGet, "/api/earnings", nil)
			assert.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

			rec = do(t, router, http.MethodGet, "/api/scenarios/current", nil)
			assert.Equal(t, s.ID, decode[ScenarioDTO](t, rec).ID)
		})
	}
}

func TestScenario_Overtime(t *testing.T) {
	h, router := setupTestRouter(t)
	require.Equal(t, http.StatusOK,
		do(t, router, http.MethodPost, "/api/scenarios/load", `{"scenario_id": "overtime"}`).Code)

	cfg, err := h.Store.Load(context.Background())
	require.NoError(t, err)
	require.NotNil(t, cfg.Overtime)
	require.NotNil(t, cfg.HolidayOvertimeRate)

	// Friday 19:30 is 1.5 hours into the overtime window
	rec := do(t, router, http.MethodGet, "/api/earnings?at=2024-03-08T19:30", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	s := decode[SummaryDTO](t, rec)
	assert.Equal(t, "after_work", string(s.Status))
	assert.True(t, s.Overtime.IsPositive())
}

func TestScenario_MakeUpWeekend(t *testing.T) {
	h, router := setupTestRouter(t)
	require.Equal(t, http.StatusOK,
		do(t, router, http.MethodPost, "/api/scenarios/load", `{"scenario_id": "make-up-weekend"}`).Code)

	engine, err := h.loadEngine(context.Background())
	require.NoError(t, err)

	// 2024: Oct 4 is a Friday, Sep 28 the Saturday before National Day
	assert.False(t, engine.IsWorkday(calendar.NewDate(2024, time.October, 4)))
	assert.True(t, engine.IsWorkday(calendar.NewDate(2024, time.September, 28)))
}

func TestScenario_Unknown(t *testing.T) {
	_, router := setupTestRouter(t)

	rec := do(t, router, http.MethodPost, "/api/scenarios/load", `{"scenario_id": "nope"}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(t, router, http.MethodGet, "/api/scenarios/current", nil)
	assert.Equal(t, "null\n", rec.Body.String())

	rec = do(t, router, http.MethodGet, "/api/scenarios", nil)
	assert.Len(t, decode[[]ScenarioDTO](t, rec), len(scenarios))
}
