package calendar

import (
	"fmt"
	"hash/fnv"
	"sort"
	"time"
)

// =============================================================================
// HOLIDAY CONFIG - One record per special calendar day
// =============================================================================

// HolidayConfig marks a single calendar day as special.
//
// IsWorkday=false is a holiday override: the day is unpaid even if its
// weekday is normally worked. IsWorkday=true is a compensated workday: the
// day is paid even if its weekday is normally off.
type HolidayConfig struct {
	ID        string
	Date      Date
	Name      string
	IsWorkday bool
	CreatedAt time.Time
}

// Kind returns "holiday" or "workday" for display.
func (h HolidayConfig) Kind() string {
	if h.IsWorkday {
		return "workday"
	}
	return "holiday"
}

// =============================================================================
// HOLIDAY CALENDAR - Lookup over a fixed set of records
// =============================================================================

// HolidayCalendar answers day-classification questions over an immutable
// snapshot of HolidayConfig records. Safe for concurrent use.
type HolidayCalendar struct {
	records     []HolidayConfig // sorted by date
	holidays    []HolidayConfig // IsWorkday=false only, sorted by date
	holidayDays map[Date]bool
	workDays    map[Date]bool
	fingerprint string
}

// NewHolidayCalendar builds a calendar. Input order does not matter and the
// slice is not retained.
func NewHolidayCalendar(records []HolidayConfig) *HolidayCalendar {
	sorted := make([]HolidayConfig, len(records))
	copy(sorted, records)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Date.Before(sorted[j].Date)
	})

	c := &HolidayCalendar{
		records:     sorted,
		holidayDays: make(map[Date]bool),
		workDays:    make(map[Date]bool),
	}

	h := fnv.New64a()
	for _, r := range sorted {
		if r.IsWorkday {
			c.workDays[r.Date] = true
		} else {
			c.holidayDays[r.Date] = true
			c.holidays = append(c.holidays, r)
		}
		fmt.Fprintf(h, "%s:%t;", r.Date, r.IsWorkday)
	}
	c.fingerprint = fmt.Sprintf("%d-%x", len(sorted), h.Sum64())
	return c
}

// EmptyCalendar has no special days.
func EmptyCalendar() *HolidayCalendar {
	return NewHolidayCalendar(nil)
}

// IsHoliday reports whether some record marks d as a holiday override.
func (c *HolidayCalendar) IsHoliday(d Date) bool {
	return c.holidayDays[d]
}

// IsCompensatedWorkday reports whether some record marks d as a worked day.
func (c *HolidayCalendar) IsCompensatedWorkday(d Date) bool {
	return c.workDays[d]
}

// NextHoliday returns the earliest holiday strictly after from.
func (c *HolidayCalendar) NextHoliday(from Date) (HolidayConfig, bool) {
	i := sort.Search(len(c.holidays), func(i int) bool {
		return c.holidays[i].Date.After(from)
	})
	if i == len(c.holidays) {
		return HolidayConfig{}, false
	}
	return c.holidays[i], true
}

// PreviousHoliday returns the latest holiday strictly before from.
func (c *HolidayCalendar) PreviousHoliday(from Date) (HolidayConfig, bool) {
	i := sort.Search(len(c.holidays), func(i int) bool {
		return c.holidays[i].Date.AfterOrEqual(from)
	})
	if i == 0 {
		return HolidayConfig{}, false
	}
	return c.holidays[i-1], true
}

// DaysUntilNextHoliday returns 0 when from is itself a holiday, otherwise the
// number of days until NextHoliday.
func (c *HolidayCalendar) DaysUntilNextHoliday(from Date) (int, bool) {
	if c.IsHoliday(from) {
		return 0, true
	}
	next, ok := c.NextHoliday(from)
	if !ok {
		return 0, false
	}
	return DaysBetween(from, next.Date), true
}

// DaysSinceLastHoliday returns the number of days since PreviousHoliday.
// Unlike DaysUntilNextHoliday, from being a holiday is not special-cased.
func (c *HolidayCalendar) DaysSinceLastHoliday(from Date) (int, bool) {
	prev, ok := c.PreviousHoliday(from)
	if !ok {
		return 0, false
	}
	return DaysBetween(prev.Date, from), true
}

// Records returns all records ordered by date.
func (c *HolidayCalendar) Records() []HolidayConfig {
	out := make([]HolidayConfig, len(c.records))
	copy(out, c.records)
	return out
}

// RecordsIn returns the records whose date falls in p.
func (c *HolidayCalendar) RecordsIn(p Period) []HolidayConfig {
	var out []HolidayConfig
	for _, r := range c.records {
		if p.Contains(r.Date) {
			out = append(out, r)
		}
	}
	return out
}

// Fingerprint identifies the calendar's classification content. Two
// calendars with the same dates and kinds share a fingerprint regardless of
// names or IDs.
func (c *HolidayCalendar) Fingerprint() string {
	return c.fingerprint
}

func (c *HolidayCalendar) Len() int { return len(c.records) }
