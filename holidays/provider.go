/*
Package holidays supplies holiday calendars from outside the store.

PURPOSE:
  The engine only ever sees the records in the ConfigStore. Providers are
  where those records come from: a built-in sample calendar, or a JSON list
  served over HTTP. The Refresher copies a provider's records into the store
  on a schedule.

KEY TYPES:
  Provider:       FetchHolidays(ctx, year)
  StaticProvider: Fixed-date sample calendar, no I/O
  HTTPProvider:   GET {BaseURL}/{year}.json, a JSON array of holiday records
  Refresher:      Periodic Provider -> ConfigStore.ReplaceHolidays

SEE ALSO:
  - factory/config.go: HolidayJSON, the wire shape of one record
  - store/store.go: ReplaceHolidays
*/
package holidays

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/warp/earnings-engine/calendar"
	"github.com/warp/earnings-engine/factory"
)

// Provider fetches the holiday and compensated-workday records of a year.
type Provider interface {
	FetchHolidays(ctx context.Context, year int) ([]calendar.HolidayConfig, error)
}

// =============================================================================
// STATIC PROVIDER
// =============================================================================

type staticEntry struct {
	month time.Month
	day   int
	name  string
}

// The same month/day in every year; movable feasts are approximated.
var sampleCalendar = []staticEntry{
	{time.January, 1, "New Year's Day"},
	{time.February, 10, "Spring Festival"},
	{time.February, 11, "Spring Festival"},
	{time.February, 12, "Spring Festival"},
	{time.February, 13, "Spring Festival"},
	{time.February, 14, "Spring Festival"},
	{time.February, 15, "Spring Festival"},
	{time.April, 4, "Qingming Festival"},
	{time.May, 1, "Labour Day"},
	{time.June, 10, "Dragon Boat Festival"},
	{time.September, 15, "Mid-Autumn Festival"},
	{time.October, 1, "National Day"},
	{time.October, 2, "National Day"},
	{time.October, 3, "National Day"},
}

// StaticProvider returns the built-in sample calendar for any year.
type StaticProvider struct{}

func (StaticProvider) FetchHolidays(_ context.Context, year int) ([]calendar.HolidayConfig, error) {
	out := make([]calendar.HolidayConfig, 0, len(sampleCalendar))
	for _, e := range sampleCalendar {
		out = append(out, calendar.HolidayConfig{
			Date: calendar.NewDate(year, e.month, e.day),
			Name: e.name,
		})
	}
	return out, nil
}

// =============================================================================
// HTTP PROVIDER
// =============================================================================

// HTTPProvider reads {BaseURL}/{year}.json. The body is a JSON array of
// factory.HolidayJSON records.
type HTTPProvider struct {
	BaseURL string
	Client  *http.Client
}

// NewHTTPProvider creates a provider with a 10 second request timeout.
func NewHTTPProvider(baseURL string) *HTTPProvider {
	return &HTTPProvider{
		BaseURL: strings.TrimRight(baseURL, "/"),
		Client:  &http.Client{Timeout: 10 * time.Second},
	}
}

func (p *HTTPProvider) FetchHolidays(ctx context.Context, year int) ([]calendar.HolidayConfig, error) {
	endpoint := fmt.Sprintf("%s/%d.json", p.BaseURL, year)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	client := p.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("holiday request failed: %w", err)
	}
	body, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	if err != nil {
		return nil, fmt.Errorf("reading response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("holiday source error %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	records, err := factory.NewConfigFactory().ParseHolidays(body)
	if err != nil {
		return nil, fmt.Errorf("decoding holidays for %d: %w", year, err)
	}
	for _, h := range records {
		if h.Date.Year != year {
			return nil, fmt.Errorf("holiday source returned %s for year %d", h.Date, year)
		}
	}
	return records, nil
}
