/*
scenarios.go - Demo scenario loaders for testing and demonstrations

PURPOSE:

	Provides pre-built salary setups that populate the store with realistic
	data for demos. Each scenario resets the store, saves one salary
	configuration and a year of holiday records around the current date.

AVAILABLE SCENARIOS:

	office-worker:   Defaults: 09:00-18:00, lunch hour, Monday to Friday
	six-day-week:    Monday to Saturday, no lunch break
	overtime:        Evening overtime at 1.5x and holidays at 2x
	make-up-weekend: A bridged Friday paid back by a compensated Saturday

USAGE VIA API:

	POST /api/scenarios/load
	{"scenario_id": "overtime"}

NOTE:

	Scenarios reset the store. Only use in development/demo environments.

SEE ALSO:
  - handlers.go: Handler, ResetDatabase
  - holidays/provider.go: StaticProvider, the base holiday list
*/
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/shopspring/decimal"
	"github.com/warp/earnings-engine/calendar"
	"github.com/warp/earnings-engine/earnings"
	"github.com/warp/earnings-engine/holidays"
)

// ScenarioDTO describes a loadable demo data set.
type ScenarioDTO struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// =============================================================================
// SCENARIO DEFINITIONS
// =============================================================================

type scenario struct {
	ScenarioDTO
	config   func(now time.Time) earnings.SalaryConfig
	holidays func(year int) []calendar.HolidayConfig
}

var scenarios = []scenario{
	{
		ScenarioDTO: ScenarioDTO{
			ID:          "office-worker",
			Name:        "Office Worker",
			Description: "3000/month, 09:00-18:00 with a lunch hour, Monday to Friday",
		},
		config:   earnings.DefaultSalaryConfig,
		holidays: staticHolidays,
	},
	{
		ScenarioDTO: ScenarioDTO{
			ID:          "six-day-week",
			Name:        "Six-Day Week",
			Description: "4200/month, 08:00-16:00 without lunch, Monday to Saturday",
		},
		config: func(now time.Time) earnings.SalaryConfig {
			cfg := earnings.DefaultSalaryConfig(now)
			cfg.MonthlySalary = decimal.NewFromInt(4200)
			cfg.Work = earnings.MustWindow("08:00", "16:00")
			cfg.Lunch = nil
			cfg.WorkDays, _ = earnings.NewWeekdaySet(1, 2, 3, 4, 5, 6)
			return cfg
		},
		holidays: staticHolidays,
	},
	{
		ScenarioDTO: ScenarioDTO{
			ID:          "overtime",
			Name:        "Overtime",
			Description: "Evening overtime 18:00-21:00 at 1.5x, holiday work at 2x",
		},
		config: func(now time.Time) earnings.SalaryConfig {
			cfg := earnings.DefaultSalaryConfig(now)
			cfg.Overtime = &earnings.Overtime{
				Rate:   decimal.RequireFromString("1.5"),
				Window: earnings.MustWindow("18:00", "21:00"),
			}
			rate := decimal.NewFromInt(2)
			cfg.HolidayOvertimeRate = &rate
			return cfg
		},
		holidays: staticHolidays,
	},
	{
		ScenarioDTO: ScenarioDTO{
			ID:          "make-up-weekend",
			Name:        "Make-Up Weekend",
			Description: "National Day bridged to the Friday, paid back by working a Saturday",
		},
		config: earnings.DefaultSalaryConfig,
		holidays: func(year int) []calendar.HolidayConfig {
			hs := staticHolidays(year)
			// Bridge to the first Friday on or after Oct 4 and compensate
			// with the Saturday before National Day.
			bridge := calendar.NewDate(year, time.October, 4)
			for bridge.Weekday() != time.Friday {
				bridge = bridge.AddDays(1)
			}
			makeUp := calendar.NewDate(year, time.September, 30)
			for makeUp.Weekday() != time.Saturday {
				makeUp = makeUp.AddDays(-1)
			}
			return append(hs,
				calendar.HolidayConfig{Date: bridge, Name: "National Day bridge"},
				calendar.HolidayConfig{Date: makeUp, Name: "National Day make-up", IsWorkday: true},
			)
		},
	},
}

func staticHolidays(year int) []calendar.HolidayConfig {
	hs, _ := holidays.StaticProvider{}.FetchHolidays(context.Background(), year)
	return hs
}

func findScenario(id string) (scenario, bool) {
	for _, s := range scenarios {
		if s.ID == id {
			return s, true
		}
	}
	return scenario{}, false
}

// =============================================================================
// SCENARIO HANDLERS
// =============================================================================

// ListScenarios returns available scenarios.
// GET /api/scenarios
func (h *Handler) ListScenarios(w http.ResponseWriter, r *http.Request) {
	dtos := make([]ScenarioDTO, 0, len(scenarios))
	for _, s := range scenarios {
		dtos = append(dtos, s.ScenarioDTO)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// GetCurrentScenario returns the currently loaded scenario, if any.
// GET /api/scenarios/current
func (h *Handler) GetCurrentScenario(w http.ResponseWriter, r *http.Request) {
	s, ok := findScenario(h.scenario())
	if !ok {
		writeJSON(w, http.StatusOK, nil)
		return
	}
	writeJSON(w, http.StatusOK, s.ScenarioDTO)
}

// LoadScenario resets the store and loads a predefined scenario.
// POST /api/scenarios/load
func (h *Handler) LoadScenario(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ScenarioID string `json:"scenario_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	s, ok := findScenario(req.ScenarioID)
	if !ok {
		writeError(w, http.StatusNotFound, "Unknown scenario", fmt.Errorf("scenario %q", req.ScenarioID))
		return
	}
	if err := h.loadScenario(r.Context(), s); err != nil {
		writeDomainError(w, "Failed to load scenario", err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"status":   "loaded",
		"scenario": s.ScenarioDTO,
	})
}

func (h *Handler) loadScenario(ctx context.Context, s scenario) error {
	if err := h.Store.Reset(ctx); err != nil {
		return fmt.Errorf("failed to reset store: %w", err)
	}
	now := h.currentTime()
	if err := h.Store.Save(ctx, s.config(now)); err != nil {
		return err
	}
	for _, year := range []int{now.Year() - 1, now.Year(), now.Year() + 1} {
		if err := h.Store.ReplaceHolidays(ctx, year, s.holidays(year)); err != nil {
			return err
		}
	}
	h.setScenario(s.ID)
	return nil
}

func (h *Handler) scenario() string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.currentScenario
}

func (h *Handler) setScenario(id string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.currentScenario = id
}
