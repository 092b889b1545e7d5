// Package memory provides an in-memory ConfigStore.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/warp/earnings-engine/calendar"
	"github.com/warp/earnings-engine/earnings"
	"github.com/warp/earnings-engine/store"
)

// =============================================================================
// MEMORY STORE - In-memory implementation (for testing/dev)
// =============================================================================

type Memory struct {
	mu       sync.RWMutex
	cfg      *earnings.SalaryConfig
	holidays map[string]calendar.HolidayConfig
	now      func() time.Time
}

var _ store.ConfigStore = (*Memory)(nil)

func New() *Memory {
	return &Memory{
		holidays: make(map[string]calendar.HolidayConfig),
		now:      time.Now,
	}
}

func (m *Memory) Load(_ context.Context) (*earnings.SalaryConfig, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.cfg == nil {
		return nil, nil
	}
	cfg := *m.cfg
	return &cfg, nil
}

func (m *Memory) Save(_ context.Context, cfg earnings.SalaryConfig) error {
	prepared, err := store.PrepareConfig(cfg, m.now())
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.cfg = &prepared
	return nil
}

func (m *Memory) ListHolidays(_ context.Context) ([]calendar.HolidayConfig, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.sortedLocked(), nil
}

func (m *Memory) sortedLocked() []calendar.HolidayConfig {
	out := make([]calendar.HolidayConfig, 0, len(m.holidays))
	for _, h := range m.holidays {
		out = append(out, h)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Date != out[j].Date {
			return out[i].Date.Before(out[j].Date)
		}
		return out[i].ID < out[j].ID
	})
	return out
}

func (m *Memory) SaveHoliday(_ context.Context, h calendar.HolidayConfig) (calendar.HolidayConfig, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if existing, ok := m.holidays[h.ID]; ok && h.ID != "" {
		if existing.Date != h.Date {
			return calendar.HolidayConfig{}, store.DateChangeError(existing.Date, h.Date)
		}
		existing.Name = h.Name
		existing.IsWorkday = h.IsWorkday
		m.holidays[h.ID] = existing
		return existing, nil
	}

	prepared, err := store.PrepareHoliday(h, m.now())
	if err != nil {
		return calendar.HolidayConfig{}, err
	}
	m.holidays[prepared.ID] = prepared
	return prepared, nil
}

func (m *Memory) DeleteHoliday(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.holidays[id]; !ok {
		return store.ErrNotFound
	}
	delete(m.holidays, id)
	return nil
}

func (m *Memory) ReplaceHolidays(_ context.Context, year int, hs []calendar.HolidayConfig) error {
	prepared, err := store.PrepareYear(year, hs, m.now())
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	for id, h := range m.holidays {
		if h.Date.Year == year {
			delete(m.holidays, id)
		}
	}
	for _, h := range prepared {
		m.holidays[h.ID] = h
	}
	return nil
}

func (m *Memory) ExportSnapshot(_ context.Context) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return store.EncodeSnapshot(m.cfg, m.sortedLocked())
}

// ImportSnapshot decodes data completely before taking the write lock, so
// a bad document never touches the current state.
func (m *Memory) ImportSnapshot(_ context.Context, data []byte) error {
	contents, err := store.DecodeSnapshot(data, m.now())
	if err != nil {
		return err
	}

	holidays := make(map[string]calendar.HolidayConfig, len(contents.Holidays))
	for _, h := range contents.Holidays {
		holidays[h.ID] = h
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.cfg = contents.Config
	m.holidays = holidays
	return nil
}

func (m *Memory) Reset(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cfg = nil
	m.holidays = make(map[string]calendar.HolidayConfig)
	return nil
}

func (m *Memory) Close() error { return nil }
