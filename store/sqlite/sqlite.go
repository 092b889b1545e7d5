/*
Package sqlite provides a SQLite-backed ConfigStore.

PURPOSE:
  Persists the salary configuration and the holiday calendar between runs
  of the server and the CLI.

KEY TABLES:
  salary_configs: At most one row. The configuration is stored as the
                  factory JSON document, so adding a field never needs a
                  schema change.
  holidays:       One row per holiday or compensated workday, dated
                  YYYY-MM-DD.

ATOMICITY:
  Save, ReplaceHolidays and ImportSnapshot each run in one SQL
  transaction. ImportSnapshot decodes and validates the whole document
  before the transaction starts.

CONCURRENCY:
  Uses sync.RWMutex for thread-safety on top of SQLite's own locking.

USAGE:
  st, err := sqlite.New("./data/earnings.db")
  if err != nil {
      log.Fatal(err)
  }
  defer st.Close()

SEE ALSO:
  - store/store.go: ConfigStore interface
  - store/memory: In-memory implementation for testing
*/
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/warp/earnings-engine/calendar"
	"github.com/warp/earnings-engine/earnings"
	"github.com/warp/earnings-engine/factory"
	"github.com/warp/earnings-engine/store"
)

const dateLayout = "2006-01-02"

// Store implements store.ConfigStore using SQLite.
type Store struct {
	db  *sql.DB
	mu  sync.RWMutex
	now func() time.Time
}

var _ store.ConfigStore = (*Store)(nil)

// New creates a new SQLite store with the given database path.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if dbPath == ":memory:" {
		// every connection to :memory: is a separate database
		db.SetMaxOpenConns(1)
	}

	s := &Store{db: db, now: time.Now}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS salary_configs (
		id TEXT PRIMARY KEY,
		config_json TEXT NOT NULL,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS holidays (
		id TEXT PRIMARY KEY,
		date TEXT NOT NULL,
		name TEXT NOT NULL,
		is_workday BOOLEAN NOT NULL DEFAULT FALSE,
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_holidays_date
		ON holidays(date);
	`

	_, err := s.db.Exec(schema)
	return err
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// =============================================================================
// SALARY CONFIG
// =============================================================================

// Load returns the stored configuration, or nil if there is none.
func (s *Store) Load(ctx context.Context) (*earnings.SalaryConfig, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var configJSON string
	err := s.db.QueryRowContext(ctx,
		"SELECT config_json FROM salary_configs ORDER BY updated_at DESC LIMIT 1",
	).Scan(&configJSON)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load salary config: %w", err)
	}

	cfg, err := factory.NewConfigFactory().ParseConfig([]byte(configJSON))
	if err != nil {
		return nil, fmt.Errorf("stored salary config is invalid: %w", err)
	}
	return &cfg, nil
}

// Save replaces the stored configuration.
func (s *Store) Save(ctx context.Context, cfg earnings.SalaryConfig) error {
	prepared, err := store.PrepareConfig(cfg, s.now())
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := saveConfigTx(ctx, tx, prepared); err != nil {
		return err
	}
	return tx.Commit()
}

func saveConfigTx(ctx context.Context, db execer, cfg earnings.SalaryConfig) error {
	configJSON, err := json.Marshal(factory.NewConfigFactory().ToJSON(cfg))
	if err != nil {
		return fmt.Errorf("failed to encode salary config: %w", err)
	}
	if _, err := db.ExecContext(ctx, "DELETE FROM salary_configs"); err != nil {
		return fmt.Errorf("failed to clear salary config: %w", err)
	}
	_, err = db.ExecContext(ctx, `
		INSERT INTO salary_configs (id, config_json, created_at, updated_at)
		VALUES (?, ?, ?, ?)
	`,
		cfg.ID,
		string(configJSON),
		cfg.CreatedAt.UTC().Format(time.RFC3339),
		cfg.UpdatedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("failed to save salary config: %w", err)
	}
	return nil
}

// =============================================================================
// HOLIDAYS
// =============================================================================

// ListHolidays returns every record ordered by date.
func (s *Store) ListHolidays(ctx context.Context) ([]calendar.HolidayConfig, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.listHolidays(ctx)
}

func (s *Store) listHolidays(ctx context.Context) ([]calendar.HolidayConfig, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, date, name, is_workday, created_at
		FROM holidays
		ORDER BY date ASC, id ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query holidays: %w", err)
	}
	defer rows.Close()

	holidays := []calendar.HolidayConfig{}
	for rows.Next() {
		h, err := scanHoliday(rows)
		if err != nil {
			return nil, err
		}
		holidays = append(holidays, h)
	}
	return holidays, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanHoliday(row scanner) (calendar.HolidayConfig, error) {
	var h calendar.HolidayConfig
	var dateStr, createdStr string
	if err := row.Scan(&h.ID, &dateStr, &h.Name, &h.IsWorkday, &createdStr); err != nil {
		return calendar.HolidayConfig{}, err
	}
	d, err := calendar.ParseDate(dateStr)
	if err != nil {
		return calendar.HolidayConfig{}, fmt.Errorf("holiday %s: %w", h.ID, err)
	}
	h.Date = d
	if h.CreatedAt, err = time.Parse(time.RFC3339, createdStr); err != nil {
		return calendar.HolidayConfig{}, fmt.Errorf("holiday %s created_at: %w", h.ID, err)
	}
	return h, nil
}

// SaveHoliday inserts a record or renames/reclassifies an existing one.
func (s *Store) SaveHoliday(ctx context.Context, h calendar.HolidayConfig) (calendar.HolidayConfig, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return calendar.HolidayConfig{}, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if h.ID != "" {
		existing, err := scanHoliday(tx.QueryRowContext(ctx,
			"SELECT id, date, name, is_workday, created_at FROM holidays WHERE id = ?", h.ID))
		switch {
		case err == nil:
			if existing.Date != h.Date {
				return calendar.HolidayConfig{}, store.DateChangeError(existing.Date, h.Date)
			}
			existing.Name = h.Name
			existing.IsWorkday = h.IsWorkday
			if _, err := tx.ExecContext(ctx,
				"UPDATE holidays SET name = ?, is_workday = ? WHERE id = ?",
				existing.Name, existing.IsWorkday, existing.ID,
			); err != nil {
				return calendar.HolidayConfig{}, fmt.Errorf("failed to update holiday: %w", err)
			}
			return existing, tx.Commit()
		case !errors.Is(err, sql.ErrNoRows):
			return calendar.HolidayConfig{}, fmt.Errorf("failed to read holiday: %w", err)
		}
	}

	prepared, err := store.PrepareHoliday(h, s.now())
	if err != nil {
		return calendar.HolidayConfig{}, err
	}
	if err := insertHoliday(ctx, tx, prepared); err != nil {
		return calendar.HolidayConfig{}, err
	}
	return prepared, tx.Commit()
}

func insertHoliday(ctx context.Context, db execer, h calendar.HolidayConfig) error {
	_, err := db.ExecContext(ctx, `
		INSERT INTO holidays (id, date, name, is_workday, created_at)
		VALUES (?, ?, ?, ?, ?)
	`,
		h.ID,
		h.Date.String(),
		h.Name,
		h.IsWorkday,
		h.CreatedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("failed to insert holiday %s: %w", h.Date, err)
	}
	return nil
}

// DeleteHoliday deletes a holiday by ID.
func (s *Store) DeleteHoliday(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, "DELETE FROM holidays WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete holiday: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return store.ErrNotFound
	}
	return nil
}

// ReplaceHolidays swaps all records of one year in a single transaction.
func (s *Store) ReplaceHolidays(ctx context.Context, year int, hs []calendar.HolidayConfig) error {
	prepared, err := store.PrepareYear(year, hs, s.now())
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		"DELETE FROM holidays WHERE strftime('%Y', date) = ?", fmt.Sprintf("%04d", year),
	); err != nil {
		return fmt.Errorf("failed to clear holidays for %d: %w", year, err)
	}
	for _, h := range prepared {
		if err := insertHoliday(ctx, tx, h); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// =============================================================================
// SNAPSHOTS
// =============================================================================

// ExportSnapshot renders the whole store as a snapshot document.
func (s *Store) ExportSnapshot(ctx context.Context) ([]byte, error) {
	cfg, err := s.Load(ctx)
	if err != nil {
		return nil, err
	}
	holidays, err := s.ListHolidays(ctx)
	if err != nil {
		return nil, err
	}
	return store.EncodeSnapshot(cfg, holidays)
}

// ImportSnapshot replaces everything with the contents of data, or nothing
// at all if any part of it fails.
func (s *Store) ImportSnapshot(ctx context.Context, data []byte) error {
	contents, err := store.DecodeSnapshot(data, s.now())
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.replaceAll(ctx, contents); err != nil {
		return &store.ImportError{Stage: "write", Err: err}
	}
	return nil
}

func (s *Store) replaceAll(ctx context.Context, c store.Contents) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	for _, table := range []string{"salary_configs", "holidays"} {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return err
		}
	}
	if c.Config != nil {
		if err := saveConfigTx(ctx, tx, *c.Config); err != nil {
			return err
		}
	}
	for _, h := range c.Holidays {
		if err := insertHoliday(ctx, tx, h); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// =============================================================================
// UTILITIES
// =============================================================================

// Reset clears all data.
func (s *Store) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tables := []string{"salary_configs", "holidays"}
	for _, table := range tables {
		if _, err := s.db.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return err
		}
	}
	return nil
}
