/*
server.go - HTTP router and middleware configuration

PURPOSE:
  Configures the HTTP router (chi), middleware stack, and route definitions.
  This is the wiring layer that connects URLs to handlers.

MIDDLEWARE STACK:
  1. Logger:     Request logging
  2. Recoverer:  Panic recovery (500 instead of crash)
  3. RequestID:  Unique ID per request for tracing
  4. CORS:       Cross-origin requests for a dashboard frontend

ROUTE GROUPS:
  /api/config           Salary configuration
  /api/earnings/*       Summary and range earnings
  /api/workdays/*       Month workday counts, next/previous workday
  /api/holidays/*       Holiday records, lookups, provider sync
  /api/scenarios/*      Demo scenarios
  /api/export, /api/import, /api/reset   Snapshot and maintenance
  /                     Plain index page

SECURITY NOTE:
  No authentication middleware. The server is meant for a single user on
  localhost.

SEE ALSO:
  - handlers.go: Handler implementations
  - cmd/server/main.go: Server startup
*/
package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// NewRouter creates a new router with all routes configured.
func NewRouter(h *Handler) *chi.Mux {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:5173", "http://localhost:8080"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type"},
		AllowCredentials: true,
	}))

	// API routes
	r.Route("/api", func(r chi.Router) {
		r.Get("/config", h.GetConfig)
		r.Put("/config", h.UpdateConfig)

		r.Route("/earnings", func(r chi.Router) {
			r.Get("/", h.GetEarnings)
			r.Get("/range", h.GetRangeEarnings)
		})

		r.Route("/workdays", func(r chi.Router) {
			r.Get("/", h.GetWorkdays)
			r.Get("/next", h.GetNextWorkday)
		})

		r.Route("/holidays", func(r chi.Router) {
			r.Get("/", h.ListHolidays)
			r.Post("/", h.CreateHoliday)
			r.Get("/next", h.GetNextHoliday)
			r.Post("/sync", h.SyncHolidays)
			r.Put("/{id}", h.UpdateHoliday)
			r.Delete("/{id}", h.DeleteHoliday)
		})

		r.Route("/scenarios", func(r chi.Router) {
			r.Get("/", h.ListScenarios)
			r.Get("/current", h.GetCurrentScenario)
			r.Post("/load", h.LoadScenario)
		})

		r.Get("/export", h.Export)
		r.Post("/import", h.Import)
		r.Post("/reset", h.ResetDatabase)
	})

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte(`<!DOCTYPE html>
<html>
<head><title>Earnings Engine</title></head>
<body style="font-family: system-ui; max-width: 800px; margin: 50px auto; padding: 20px;">
<h1>Earnings Engine API</h1>
<h2>API Endpoints</h2>
<ul>
<li><a href="/api/earnings">/api/earnings</a> - Earnings right now</li>
<li><a href="/api/config">/api/config</a> - Salary configuration</li>
<li><a href="/api/holidays">/api/holidays</a> - Holiday records</li>
<li><a href="/api/workdays">/api/workdays</a> - Workdays this month</li>
<li><a href="/api/scenarios">/api/scenarios</a> - Demo scenarios</li>
</ul>
</body>
</html>`))
	})

	return r
}
