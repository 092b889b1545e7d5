// Package config holds process settings shared by the server and the CLI.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

type Config struct {
	DatabasePath    string
	ServerPort      int
	TimeZone        string
	HolidaySource   string // base URL; empty uses the built-in calendar
	RefreshInterval time.Duration
	CacheTTL        time.Duration
}

// Load reads settings from the environment. Flags may override the result.
func Load() (*Config, error) {
	port, err := strconv.Atoi(getEnv("EARNINGS_PORT", "8080"))
	if err != nil {
		return nil, fmt.Errorf("EARNINGS_PORT: %w", err)
	}
	refresh, err := time.ParseDuration(getEnv("EARNINGS_REFRESH_INTERVAL", "24h"))
	if err != nil {
		return nil, fmt.Errorf("EARNINGS_REFRESH_INTERVAL: %w", err)
	}
	ttl, err := time.ParseDuration(getEnv("EARNINGS_CACHE_TTL", "1h"))
	if err != nil {
		return nil, fmt.Errorf("EARNINGS_CACHE_TTL: %w", err)
	}

	cfg := &Config{
		DatabasePath:    getEnv("EARNINGS_DB", "earnings.db"),
		ServerPort:      port,
		TimeZone:        getEnv("EARNINGS_TZ", "Local"),
		HolidaySource:   getEnv("EARNINGS_HOLIDAY_URL", ""),
		RefreshInterval: refresh,
		CacheTTL:        ttl,
	}
	if _, err := cfg.Location(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Location resolves TimeZone. All calendar arithmetic happens in it.
func (c *Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.TimeZone)
	if err != nil {
		return nil, fmt.Errorf("EARNINGS_TZ %q: %w", c.TimeZone, err)
	}
	return loc, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
