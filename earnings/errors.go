/*
errors.go - Error types for the earnings engine

ERROR CATEGORIES:
  1. Configuration errors - A SalaryConfig violates an invariant
  2. Degenerate division - Per-second pay cannot be computed (zero workdays
     in the month, or zero paid seconds per day)
  3. Period errors - A range whose end precedes its start

Lookups that can legitimately find nothing (next holiday, next workday) do
not return errors; they return (value, false).

USAGE:
  if errors.Is(err, earnings.ErrDegenerateDivision) {
      // no workdays this month, show "-" instead of a rate
  }
*/
package earnings

import (
	"errors"
	"fmt"
	"time"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrInvalidConfig is returned when a SalaryConfig fails validation.
	ErrInvalidConfig = errors.New("invalid salary configuration")

	// ErrDegenerateDivision is returned when a pay rate would divide by zero.
	ErrDegenerateDivision = errors.New("degenerate pay rate division")

	// ErrInvalidPeriod is returned when a range ends before it starts.
	ErrInvalidPeriod = errors.New("invalid period: end before start")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// ConfigurationError names the offending field.
type ConfigurationError struct {
	Field  string
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("invalid salary configuration: %s: %s", e.Field, e.Reason)
}

func (e *ConfigurationError) Unwrap() error {
	return ErrInvalidConfig
}

// DivisionDegenerateError reports which month could not produce a rate.
type DivisionDegenerateError struct {
	Year         int
	Month        time.Month
	WorkDays     int
	DailySeconds int64
}

func (e *DivisionDegenerateError) Error() string {
	return fmt.Sprintf("cannot compute pay rate for %d-%02d: %d workdays, %d paid seconds per day",
		e.Year, e.Month, e.WorkDays, e.DailySeconds)
}

func (e *DivisionDegenerateError) Unwrap() error {
	return ErrDegenerateDivision
}

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsClientError returns true if the error is due to invalid caller input.
func IsClientError(err error) bool {
	return errors.Is(err, ErrInvalidConfig) ||
		errors.Is(err, ErrInvalidPeriod)
}
