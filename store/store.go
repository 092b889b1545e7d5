/*
Package store defines persistence for salary and holiday configuration.

PURPOSE:
  The engine is pure: it is handed a SalaryConfig and a set of
  HolidayConfig records and never reads them itself. ConfigStore is the
  boundary that loads and saves those records for the API, the CLI and the
  holiday refresher. There is one store instance per process, constructed
  explicitly and passed to whoever needs it.

KEY INTERFACES:
  ConfigStore: Salary config (at most one), holiday records, snapshots

SNAPSHOTS:
  ExportSnapshot writes the whole store as one JSON document:

    {"salaryConfigs": [...], "holidayConfigs": [...]}

  ImportSnapshot is all-or-nothing. The document is decoded and validated
  completely before any existing record is touched, and the replacement
  itself happens atomically. Any failure is an *ImportError and leaves the
  store as it was.

IMPLEMENTATIONS:
  - store/memory: In-memory for testing and one-shot CLI use
  - store/sqlite: SQLite, the default for the server

SEE ALSO:
  - snapshot.go: Snapshot encoding and decoding
  - factory/config.go: JSON shapes of the records
*/
package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/warp/earnings-engine/calendar"
	"github.com/warp/earnings-engine/earnings"
)

// =============================================================================
// CONFIG STORE
// =============================================================================

// ConfigStore persists the salary configuration and the holiday calendar.
type ConfigStore interface {
	// Load returns the salary configuration, or nil if none was saved yet.
	Load(ctx context.Context) (*earnings.SalaryConfig, error)

	// Save validates and stores cfg, replacing any previous configuration.
	Save(ctx context.Context, cfg earnings.SalaryConfig) error

	// ListHolidays returns every holiday record ordered by date.
	ListHolidays(ctx context.Context) ([]calendar.HolidayConfig, error)

	// SaveHoliday inserts a record, or updates name and kind of an existing
	// one with the same ID. The date of an existing record cannot change.
	SaveHoliday(ctx context.Context, h calendar.HolidayConfig) (calendar.HolidayConfig, error)

	// DeleteHoliday removes a record. Returns ErrNotFound if it does not exist.
	DeleteHoliday(ctx context.Context, id string) error

	// ReplaceHolidays atomically swaps every record dated in year for hs.
	ReplaceHolidays(ctx context.Context, year int, hs []calendar.HolidayConfig) error

	ExportSnapshot(ctx context.Context) ([]byte, error)
	ImportSnapshot(ctx context.Context, data []byte) error

	// Reset deletes everything.
	Reset(ctx context.Context) error

	Close() error
}

// =============================================================================
// ERRORS
// =============================================================================

var (
	// ErrNotFound is returned when a referenced record doesn't exist.
	ErrNotFound = errors.New("not found")

	// ErrDataImport is returned when a snapshot cannot be imported.
	ErrDataImport = errors.New("data import failed")
)

// ImportError reports the stage at which a snapshot import failed.
type ImportError struct {
	Stage string // decode, salary, holiday, write
	Err   error
}

func (e *ImportError) Error() string {
	return fmt.Sprintf("data import failed at %s: %v", e.Stage, e.Err)
}

func (e *ImportError) Unwrap() error { return e.Err }

func (e *ImportError) Is(target error) bool { return target == ErrDataImport }

// =============================================================================
// RECORD PREPARATION - Shared by every implementation
// =============================================================================

// NewID returns a fresh record identifier.
func NewID() string {
	return uuid.NewString()
}

// PrepareConfig validates cfg and fills in ID and timestamps.
func PrepareConfig(cfg earnings.SalaryConfig, now time.Time) (earnings.SalaryConfig, error) {
	if err := cfg.Validate(); err != nil {
		return earnings.SalaryConfig{}, err
	}
	if cfg.ID == "" {
		cfg.ID = NewID()
	}
	if cfg.CreatedAt.IsZero() {
		cfg.CreatedAt = now
	}
	if cfg.UpdatedAt.IsZero() {
		cfg.UpdatedAt = cfg.CreatedAt
	}
	return cfg, nil
}

// PrepareHoliday checks h and fills in ID and CreatedAt.
func PrepareHoliday(h calendar.HolidayConfig, now time.Time) (calendar.HolidayConfig, error) {
	if h.Date.IsZero() {
		return calendar.HolidayConfig{}, &earnings.ConfigurationError{Field: "date", Reason: "is required"}
	}
	if h.ID == "" {
		h.ID = NewID()
	}
	if h.CreatedAt.IsZero() {
		h.CreatedAt = now
	}
	return h, nil
}

// PrepareYear prepares hs for ReplaceHolidays, rejecting records outside year.
func PrepareYear(year int, hs []calendar.HolidayConfig, now time.Time) ([]calendar.HolidayConfig, error) {
	out := make([]calendar.HolidayConfig, 0, len(hs))
	for _, h := range hs {
		p, err := PrepareHoliday(h, now)
		if err != nil {
			return nil, err
		}
		if p.Date.Year != year {
			return nil, &earnings.ConfigurationError{
				Field:  "date",
				Reason: fmt.Sprintf("%s is outside %d", p.Date, year),
			}
		}
		out = append(out, p)
	}
	return out, nil
}

// DateChangeError is returned by SaveHoliday when an update would move a
// record to another day.
func DateChangeError(existing, requested calendar.Date) error {
	return &earnings.ConfigurationError{
		Field:  "date",
		Reason: fmt.Sprintf("cannot move holiday from %s to %s", existing, requested),
	}
}

// =============================================================================
// ENGINE LOADING
// =============================================================================

// CurrentConfig returns the stored configuration, or the defaults if none
// was saved yet.
func CurrentConfig(ctx context.Context, st ConfigStore, now time.Time) (earnings.SalaryConfig, error) {
	cfg, err := st.Load(ctx)
	if err != nil {
		return earnings.SalaryConfig{}, err
	}
	if cfg == nil {
		return earnings.DefaultSalaryConfig(now), nil
	}
	return *cfg, nil
}

// LoadCalendar builds a HolidayCalendar from every stored record.
func LoadCalendar(ctx context.Context, st ConfigStore) (*calendar.HolidayCalendar, error) {
	records, err := st.ListHolidays(ctx)
	if err != nil {
		return nil, err
	}
	return calendar.NewHolidayCalendar(records), nil
}

// LoadEngine builds an engine from the current contents of st.
func LoadEngine(ctx context.Context, st ConfigStore, now time.Time, opts ...earnings.Option) (*earnings.Engine, error) {
	cfg, err := CurrentConfig(ctx, st, now)
	if err != nil {
		return nil, err
	}
	cal, err := LoadCalendar(ctx, st)
	if err != nil {
		return nil, err
	}
	return earnings.NewEngine(cfg, cal, opts...)
}
