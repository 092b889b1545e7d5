package store

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/warp/earnings-engine/calendar"
	"github.com/warp/earnings-engine/earnings"
	"github.com/warp/earnings-engine/factory"
)

// Snapshot is the export document.
type Snapshot struct {
	SalaryConfigs  []factory.ConfigJSON  `json:"salaryConfigs"`
	HolidayConfigs []factory.HolidayJSON `json:"holidayConfigs"`
}

// Contents is a decoded, validated snapshot ready to be written.
type Contents struct {
	Config   *earnings.SalaryConfig
	Holidays []calendar.HolidayConfig
}

// EncodeSnapshot renders the store contents as a Snapshot document.
func EncodeSnapshot(cfg *earnings.SalaryConfig, holidays []calendar.HolidayConfig) ([]byte, error) {
	f := factory.NewConfigFactory()
	snap := Snapshot{
		SalaryConfigs:  []factory.ConfigJSON{},
		HolidayConfigs: f.HolidaysToJSON(holidays),
	}
	if cfg != nil {
		snap.SalaryConfigs = append(snap.SalaryConfigs, f.ToJSON(*cfg))
	}
	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode snapshot: %w", err)
	}
	return data, nil
}

// DecodeSnapshot parses and validates a Snapshot document completely. It
// never returns partial contents: on error, Contents is empty.
func DecodeSnapshot(data []byte, now time.Time) (Contents, error) {
	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return Contents{}, &ImportError{Stage: "decode", Err: err}
	}
	if snap.SalaryConfigs == nil && snap.HolidayConfigs == nil {
		return Contents{}, &ImportError{Stage: "decode", Err: fmt.Errorf("document has neither salaryConfigs nor holidayConfigs")}
	}
	if len(snap.SalaryConfigs) > 1 {
		return Contents{}, &ImportError{Stage: "salary", Err: fmt.Errorf("expected at most one salary config, got %d", len(snap.SalaryConfigs))}
	}

	f := factory.NewConfigFactory()
	var out Contents
	for _, cj := range snap.SalaryConfigs {
		cfg, err := f.FromJSON(cj)
		if err != nil {
			return Contents{}, &ImportError{Stage: "salary", Err: err}
		}
		if cfg, err = PrepareConfig(cfg, now); err != nil {
			return Contents{}, &ImportError{Stage: "salary", Err: err}
		}
		out.Config = &cfg
	}

	seen := make(map[string]bool)
	for i, hj := range snap.HolidayConfigs {
		h, err := f.HolidayFromJSON(hj)
		if err == nil {
			h, err = PrepareHoliday(h, now)
		}
		if err != nil {
			return Contents{}, &ImportError{Stage: "holiday", Err: fmt.Errorf("record %d: %w", i, err)}
		}
		if seen[h.ID] {
			return Contents{}, &ImportError{Stage: "holiday", Err: fmt.Errorf("record %d: duplicate id %s", i, h.ID)}
		}
		seen[h.ID] = true
		out.Holidays = append(out.Holidays, h)
	}
	return out, nil
}
