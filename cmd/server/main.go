/*
main.go - Application entry point

PURPOSE:
  Initializes and starts the earnings engine server. Handles
  configuration, dependency injection, and graceful shutdown.

STARTUP SEQUENCE:
  1. Load environment config, then apply command-line flags
  2. Initialize SQLite store
  3. Start the holiday refresher
  4. Create API handler and router
  5. Start server with graceful shutdown

COMMAND-LINE FLAGS:
  -port    HTTP server port (default: EARNINGS_PORT or 8080)
  -db      SQLite database path (default: EARNINGS_DB or earnings.db)
           Use ":memory:" for in-memory database
  -tz      IANA time zone for all calendar arithmetic (default: Local)
  -holidays  Base URL of a holiday feed; empty uses the built-in calendar
  -refresh   Holiday refresh interval, 0 disables the refresher

GRACEFUL SHUTDOWN:
  On SIGINT/SIGTERM:
  1. Stop the refresher
  2. Stop accepting new connections
  3. Wait for active requests to complete (30s timeout)
  4. Close database connection

ENVIRONMENT:
  EARNINGS_DB, EARNINGS_PORT, EARNINGS_TZ, EARNINGS_HOLIDAY_URL,
  EARNINGS_REFRESH_INTERVAL, EARNINGS_CACHE_TTL. Flags win over env.

SEE ALSO:
  - config/config.go: Environment settings
  - api/server.go: Router configuration
  - holidays/refresher.go: Background holiday sync
*/
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/warp/earnings-engine/api"
	"github.com/warp/earnings-engine/config"
	"github.com/warp/earnings-engine/earnings"
	"github.com/warp/earnings-engine/holidays"
	"github.com/warp/earnings-engine/store/sqlite"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	// Flags
	flag.IntVar(&cfg.ServerPort, "port", cfg.ServerPort, "HTTP server port")
	flag.StringVar(&cfg.DatabasePath, "db", cfg.DatabasePath, "SQLite database path")
	flag.StringVar(&cfg.TimeZone, "tz", cfg.TimeZone, "IANA time zone")
	flag.StringVar(&cfg.HolidaySource, "holidays", cfg.HolidaySource, "holiday feed base URL")
	flag.DurationVar(&cfg.RefreshInterval, "refresh", cfg.RefreshInterval, "holiday refresh interval (0 disables)")
	flag.Parse()

	loc, err := cfg.Location()
	if err != nil {
		log.Fatalf("Invalid time zone: %v", err)
	}

	// Initialize store
	store, err := sqlite.New(cfg.DatabasePath)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer store.Close()

	// Holiday refresher
	var provider holidays.Provider = holidays.StaticProvider{}
	if cfg.HolidaySource != "" {
		provider = holidays.NewHTTPProvider(cfg.HolidaySource)
	}
	refresher := holidays.NewRefresher(store, provider)
	refresher.Location = loc
	refresher.Enabled = cfg.RefreshInterval > 0
	if refresher.Enabled {
		refresher.Interval = cfg.RefreshInterval
	}
	refresher.Start()

	// Initialize handler
	handler := api.NewHandler(store)
	handler.Location = loc
	handler.Cache = earnings.NewMonthCache(cfg.CacheTTL)
	handler.Refresher = refresher

	// Create router
	router := api.NewRouter(handler)

	// Create server
	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.Printf("Server starting on http://localhost:%d (tz %s)", cfg.ServerPort, loc)
		log.Printf("API available at http://localhost:%d/api", cfg.ServerPort)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")
	refresher.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server stopped")
}
