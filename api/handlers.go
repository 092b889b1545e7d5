/*
handlers.go - HTTP API handlers for the earnings engine

PURPOSE:
  Exposes the earnings engine via REST API. Handles HTTP request/response,
  JSON serialization, and delegates to the engine and the config store.

ENDPOINTS:
  Config:
    GET    /api/config                 Current salary config (defaults if unset)
    PUT    /api/config                 Partial update, validated then saved

  Earnings:
    GET    /api/earnings?at=           Summary for an instant (default now)
    GET    /api/earnings/range?start=&end=  Earnings between two instants

  Calendar:
    GET    /api/workdays?year=&month=  Workday count and rates of a month
    GET    /api/workdays/next?from=    Next and previous workday
    GET    /api/holidays?year=         Holiday records
    POST   /api/holidays               Create or update a record
    PUT    /api/holidays/{id}          Rename or reclassify a record
    DELETE /api/holidays/{id}          Delete a record
    GET    /api/holidays/next?from=    Next and previous holiday
    POST   /api/holidays/sync?year=    Pull a year from the holiday provider

  Data:
    GET    /api/export                 Snapshot document
    POST   /api/import                 Replace everything from a snapshot
    POST   /api/reset                  Delete everything

ARCHITECTURE:
  Handler holds the store and a MonthCache shared across requests. An
  Engine is built per request from whatever the store holds at that
  moment, so edits are visible immediately; the cache key includes the
  holiday fingerprint, so it never serves stale counts.

TIME PARAMETERS:
  Instants accept RFC 3339, YYYY-MM-DDTHH:MM or YYYY-MM-DD. Local forms
  are read in the handler's Location, and every result is computed there.

ERROR HANDLING:
  Errors are returned as JSON with appropriate HTTP status:
  - 400: Invalid input, invalid config, failed import
  - 404: Record not found
  - 422: Rate undefined (no workdays or no paid seconds)
  - 500: Internal errors

SEE ALSO:
  - dto.go: Request/response data structures
  - server.go: Router setup and middleware
*/
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/warp/earnings-engine/calendar"
	"github.com/warp/earnings-engine/earnings"
	"github.com/warp/earnings-engine/factory"
	"github.com/warp/earnings-engine/holidays"
	"github.com/warp/earnings-engine/store"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Store         store.ConfigStore
	ConfigFactory *factory.ConfigFactory
	Cache         *earnings.MonthCache
	Refresher     *holidays.Refresher
	Location      *time.Location

	now func() time.Time

	// Track currently loaded scenario
	mu              sync.Mutex
	currentScenario string
}

// NewHandler creates a handler using the built-in holiday calendar, the
// local time zone and a one hour month cache.
func NewHandler(st store.ConfigStore) *Handler {
	return &Handler{
		Store:         st,
		ConfigFactory: factory.NewConfigFactory(),
		Cache:         earnings.NewMonthCache(time.Hour),
		Refresher:     holidays.NewRefresher(st, holidays.StaticProvider{}),
		Location:      time.Local,
		now:           time.Now,
	}
}

// SetClock overrides the time used when a request omits one.
func (h *Handler) SetClock(now func() time.Time) {
	h.now = now
}

func (h *Handler) currentTime() time.Time {
	return h.now().In(h.Location)
}

func (h *Handler) currentConfig(ctx context.Context) (earnings.SalaryConfig, error) {
	return store.CurrentConfig(ctx, h.Store, h.now())
}

func (h *Handler) holidayCalendar(ctx context.Context) (*calendar.HolidayCalendar, error) {
	return store.LoadCalendar(ctx, h.Store)
}

func (h *Handler) loadEngine(ctx context.Context) (*earnings.Engine, error) {
	return store.LoadEngine(ctx, h.Store, h.now(), earnings.WithMonthCache(h.Cache))
}

// =============================================================================
// CONFIG HANDLERS
// =============================================================================

// GetConfig returns the salary configuration.
// GET /api/config
func (h *Handler) GetConfig(w http.ResponseWriter, r *http.Request) {
	cfg, err := h.currentConfig(r.Context())
	if err != nil {
		writeDomainError(w, "Failed to load config", err)
		return
	}
	writeJSON(w, http.StatusOK, h.ConfigFactory.ToJSON(cfg))
}

// UpdateConfig applies a partial update to the salary configuration.
// PUT /api/config
func (h *Handler) UpdateConfig(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req factory.UpdateJSON
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	current, err := h.currentConfig(ctx)
	if err != nil {
		writeDomainError(w, "Failed to load config", err)
		return
	}
	update, err := h.ConfigFactory.ToUpdate(req, current)
	if err != nil {
		writeDomainError(w, "Invalid config update", err)
		return
	}
	next, err := current.Apply(update, h.now())
	if err != nil {
		writeDomainError(w, "Invalid config update", err)
		return
	}
	if err := h.Store.Save(ctx, next); err != nil {
		writeDomainError(w, "Failed to save config", err)
		return
	}

	saved, err := h.currentConfig(ctx)
	if err != nil {
		writeDomainError(w, "Failed to load config", err)
		return
	}
	writeJSON(w, http.StatusOK, h.ConfigFactory.ToJSON(saved))
}

// =============================================================================
// EARNINGS HANDLERS
// =============================================================================

// GetEarnings returns the summary for an instant.
// GET /api/earnings?at=2024-03-08T15:00
func (h *Handler) GetEarnings(w http.ResponseWriter, r *http.Request) {
	at, err := h.instantParam(r, "at")
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid at parameter", err)
		return
	}

	engine, err := h.loadEngine(r.Context())
	if err != nil {
		writeDomainError(w, "Failed to build engine", err)
		return
	}
	summary, err := engine.Summary(at)
	if err != nil {
		writeDomainError(w, "Failed to compute earnings", err)
		return
	}
	writeJSON(w, http.StatusOK, toSummaryDTO(summary, h.ConfigFactory))
}

// GetRangeEarnings returns earnings between start and end.
// GET /api/earnings/range?start=2024-03-01&end=2024-04-01
func (h *Handler) GetRangeEarnings(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	if q.Get("start") == "" || q.Get("end") == "" {
		writeError(w, http.StatusBadRequest, "start and end are required", nil)
		return
	}
	start, err := h.instantParam(r, "start")
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid start parameter", err)
		return
	}
	end, err := h.instantParam(r, "end")
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid end parameter", err)
		return
	}

	engine, err := h.loadEngine(r.Context())
	if err != nil {
		writeDomainError(w, "Failed to build engine", err)
		return
	}
	total, err := engine.RangeEarnings(start, end)
	if err != nil {
		writeDomainError(w, "Failed to compute range earnings", err)
		return
	}
	writeJSON(w, http.StatusOK, RangeDTO{
		Start:    start.Format(time.RFC3339),
		End:      end.Format(time.RFC3339),
		Earnings: total,
	})
}

// =============================================================================
// WORKDAY HANDLERS
// =============================================================================

// GetWorkdays returns the workday count and rates of a month.
// GET /api/workdays?year=2024&month=3
func (h *Handler) GetWorkdays(w http.ResponseWriter, r *http.Request) {
	now := h.currentTime()
	year, err := intParam(r, "year", now.Year())
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid year parameter", err)
		return
	}
	month, err := intParam(r, "month", int(now.Month()))
	if err != nil || month < 1 || month > 12 {
		writeError(w, http.StatusBadRequest, "month must be 1-12", err)
		return
	}

	engine, err := h.loadEngine(r.Context())
	if err != nil {
		writeDomainError(w, "Failed to build engine", err)
		return
	}

	m := time.Month(month)
	dto := WorkdaysDTO{
		Year:         year,
		Month:        month,
		WorkDays:     engine.WorkDaysInMonth(year, m),
		DailySeconds: engine.DailyWorkSeconds(),
	}
	if daily, err := engine.DailySalary(year, m); err == nil {
		dto.DailySalary = &daily
	}
	if rate, err := engine.SalaryPerSecond(year, m); err == nil {
		dto.RatePerSecond = &rate
	}
	writeJSON(w, http.StatusOK, dto)
}

// GetNextWorkday returns the workdays around a date.
// GET /api/workdays/next?from=2024-03-08
func (h *Handler) GetNextWorkday(w http.ResponseWriter, r *http.Request) {
	from, err := h.dateParam(r, "from")
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid from parameter", err)
		return
	}

	engine, err := h.loadEngine(r.Context())
	if err != nil {
		writeDomainError(w, "Failed to build engine", err)
		return
	}

	policy := engine.Policy()
	dto := NextWorkdayDTO{From: from}
	dto.Next = datePtr(policy.NextWorkday(from))
	dto.Previous = datePtr(policy.PreviousWorkday(from))
	writeJSON(w, http.StatusOK, dto)
}

// =============================================================================
// HOLIDAY HANDLERS
// =============================================================================

// ListHolidays returns holiday records, optionally for one year.
// GET /api/holidays?year=2024
func (h *Handler) ListHolidays(w http.ResponseWriter, r *http.Request) {
	cal, err := h.holidayCalendar(r.Context())
	if err != nil {
		writeDomainError(w, "Failed to get holidays", err)
		return
	}

	records := cal.Records()
	if r.URL.Query().Get("year") != "" {
		year, err := intParam(r, "year", 0)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid year parameter", err)
			return
		}
		records = cal.RecordsIn(calendar.YearPeriod(year))
	}
	writeJSON(w, http.StatusOK, HolidaysResponse{Holidays: h.ConfigFactory.HolidaysToJSON(records)})
}

// CreateHoliday creates a holiday or compensated workday. A body carrying
// the ID of an existing record updates it instead.
// POST /api/holidays
func (h *Handler) CreateHoliday(w http.ResponseWriter, r *http.Request) {
	var req factory.HolidayJSON
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	h.saveHoliday(w, r, req, http.StatusCreated)
}

// UpdateHoliday renames or reclassifies a record. The date cannot change.
// PUT /api/holidays/{id}
func (h *Handler) UpdateHoliday(w http.ResponseWriter, r *http.Request) {
	var req factory.HolidayJSON
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	req.ID = chi.URLParam(r, "id")

	cal, err := h.holidayCalendar(r.Context())
	if err != nil {
		writeDomainError(w, "Failed to get holidays", err)
		return
	}
	found := false
	for _, rec := range cal.Records() {
		if rec.ID == req.ID {
			found = true
			if req.Date.IsZero() {
				req.Date = rec.Date
			}
			break
		}
	}
	if !found {
		writeError(w, http.StatusNotFound, "Holiday not found", store.ErrNotFound)
		return
	}
	h.saveHoliday(w, r, req, http.StatusOK)
}

func (h *Handler) saveHoliday(w http.ResponseWriter, r *http.Request, req factory.HolidayJSON, status int) {
	holiday, err := h.ConfigFactory.HolidayFromJSON(req)
	if err != nil {
		writeDomainError(w, "Invalid holiday", err)
		return
	}
	saved, err := h.Store.SaveHoliday(r.Context(), holiday)
	if err != nil {
		writeDomainError(w, "Failed to save holiday", err)
		return
	}
	writeJSON(w, status, h.ConfigFactory.HolidayToJSON(saved))
}

// DeleteHoliday deletes a holiday.
// DELETE /api/holidays/{id}
func (h *Handler) DeleteHoliday(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := h.Store.DeleteHoliday(r.Context(), id); err != nil {
		writeDomainError(w, "Failed to delete holiday", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"status": "deleted"})
}

// GetNextHoliday returns the holidays around a date.
// GET /api/holidays/next?from=2024-03-01
func (h *Handler) GetNextHoliday(w http.ResponseWriter, r *http.Request) {
	from, err := h.dateParam(r, "from")
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid from parameter", err)
		return
	}
	cal, err := h.holidayCalendar(r.Context())
	if err != nil {
		writeDomainError(w, "Failed to get holidays", err)
		return
	}

	dto := NextHolidayDTO{From: from}
	if next, ok := cal.NextHoliday(from); ok {
		hj := h.ConfigFactory.HolidayToJSON(next)
		dto.Next = &hj
	}
	if prev, ok := cal.PreviousHoliday(from); ok {
		hj := h.ConfigFactory.HolidayToJSON(prev)
		dto.Previous = &hj
	}
	dto.DaysUntil = intPtr(cal.DaysUntilNextHoliday(from))
	dto.DaysSince = intPtr(cal.DaysSinceLastHoliday(from))
	writeJSON(w, http.StatusOK, dto)
}

// SyncHolidays replaces one year of records with the provider's calendar.
// POST /api/holidays/sync?year=2025
func (h *Handler) SyncHolidays(w http.ResponseWriter, r *http.Request) {
	if h.Refresher == nil {
		writeError(w, http.StatusServiceUnavailable, "No holiday provider configured", nil)
		return
	}
	year, err := intParam(r, "year", h.currentTime().Year())
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid year parameter", err)
		return
	}

	n, err := h.Refresher.SyncYear(r.Context(), year)
	if err != nil {
		if earnings.IsClientError(err) {
			writeDomainError(w, "Holiday provider returned invalid records", err)
			return
		}
		writeError(w, http.StatusBadGateway, "Failed to sync holidays", err)
		return
	}
	writeJSON(w, http.StatusOK, SyncResponse{Year: year, Records: n})
}

// =============================================================================
// DATA HANDLERS
// =============================================================================

// Export returns the whole store as a snapshot document.
// GET /api/export
func (h *Handler) Export(w http.ResponseWriter, r *http.Request) {
	data, err := h.Store.ExportSnapshot(r.Context())
	if err != nil {
		writeDomainError(w, "Failed to export data", err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", `attachment; filename="earnings-snapshot.json"`)
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

// Import replaces the store contents with a snapshot document.
// POST /api/import
func (h *Handler) Import(w http.ResponseWriter, r *http.Request) {
	data, err := io.ReadAll(r.Body)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Failed to read request body", err)
		return
	}
	if err := h.Store.ImportSnapshot(r.Context(), data); err != nil {
		writeDomainError(w, "Failed to import data", err)
		return
	}
	h.setScenario("")
	writeJSON(w, http.StatusOK, map[string]any{"status": "imported"})
}

// ResetDatabase clears all data.
// POST /api/reset
func (h *Handler) ResetDatabase(w http.ResponseWriter, r *http.Request) {
	if err := h.Store.Reset(r.Context()); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to reset database", err)
		return
	}
	h.setScenario("")
	h.Cache.Flush()
	writeJSON(w, http.StatusOK, map[string]any{"status": "reset"})
}

// =============================================================================
// HELPERS
// =============================================================================

func (h *Handler) instantParam(r *http.Request, name string) (time.Time, error) {
	s := r.URL.Query().Get(name)
	if s == "" {
		return h.currentTime(), nil
	}
	return calendar.ParseInstant(s, h.Location)
}

func (h *Handler) dateParam(r *http.Request, name string) (calendar.Date, error) {
	s := r.URL.Query().Get(name)
	if s == "" {
		return calendar.DateOf(h.currentTime()), nil
	}
	return calendar.ParseDate(s)
}

func intParam(r *http.Request, name string, def int) (int, error) {
	s := r.URL.Query().Get(name)
	if s == "" {
		return def, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer: %w", name, err)
	}
	return n, nil
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}

// writeDomainError picks the status code from the error's kind.
func writeDomainError(w http.ResponseWriter, message string, err error) {
	writeError(w, statusFor(err), message, err)
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, store.ErrDataImport):
		return http.StatusBadRequest
	case errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, earnings.ErrDegenerateDivision):
		return http.StatusUnprocessableEntity
	case earnings.IsClientError(err):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
