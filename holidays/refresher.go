package holidays

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/warp/earnings-engine/store"
)

// Refresher periodically copies a Provider's calendar into a ConfigStore.
//
// Each run fetches the current year, and also the next year once December
// starts, and replaces that year's records atomically. A failed fetch
// leaves the stored year untouched.
type Refresher struct {
	Store    store.ConfigStore
	Provider Provider
	Interval time.Duration
	Enabled  bool
	Location *time.Location

	now    func() time.Time
	ticker *time.Ticker
	stop   chan struct{}
	cancel context.CancelFunc
	wg     sync.WaitGroup
	mu     sync.Mutex
}

// NewRefresher creates a refresher that runs every 24 hours.
func NewRefresher(st store.ConfigStore, p Provider) *Refresher {
	return &Refresher{
		Store:    st,
		Provider: p,
		Interval: 24 * time.Hour,
		Enabled:  true,
		Location: time.Local,
		now:      time.Now,
	}
}

// Start begins refreshing in the background. The first run happens
// immediately.
func (r *Refresher) Start() {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.Enabled {
		log.Println("[Refresher] Disabled, not starting")
		return
	}
	if r.ticker != nil {
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	r.cancel = cancel
	r.stop = make(chan struct{})
	r.ticker = time.NewTicker(r.Interval)
	r.wg.Add(1)

	go r.run(ctx)

	log.Printf("[Refresher] Started with interval: %v", r.Interval)
}

// Stop stops the refresher and waits for an in-flight run to finish.
func (r *Refresher) Stop() {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.ticker == nil {
		return
	}
	r.ticker.Stop()
	r.cancel()
	close(r.stop)
	r.wg.Wait()
	r.ticker = nil
	log.Println("[Refresher] Stopped")
}

func (r *Refresher) run(ctx context.Context) {
	defer r.wg.Done()

	r.refresh(ctx)

	for {
		select {
		case <-r.ticker.C:
			r.refresh(ctx)
		case <-r.stop:
			return
		}
	}
}

func (r *Refresher) refresh(ctx context.Context) {
	if _, err := r.RunOnce(ctx); err != nil {
		log.Printf("[Refresher] Error: %v", err)
	}
}

// RunOnce refreshes the years due now and returns how many records were
// written. Years are processed independently; the first error is returned
// after every year was attempted.
func (r *Refresher) RunOnce(ctx context.Context) (int, error) {
	years := r.yearsDue()

	total := 0
	var firstErr error
	for _, year := range years {
		n, err := r.SyncYear(ctx, year)
		if err != nil {
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		total += n
	}
	return total, firstErr
}

// SyncYear replaces the stored records of year with the provider's.
func (r *Refresher) SyncYear(ctx context.Context, year int) (int, error) {
	records, err := r.Provider.FetchHolidays(ctx, year)
	if err != nil {
		return 0, fmt.Errorf("fetching holidays for %d: %w", year, err)
	}
	if err := r.Store.ReplaceHolidays(ctx, year, records); err != nil {
		return 0, fmt.Errorf("storing holidays for %d: %w", year, err)
	}
	log.Printf("[Refresher] Synced %d records for %d", len(records), year)
	return len(records), nil
}

func (r *Refresher) yearsDue() []int {
	loc := r.Location
	if loc == nil {
		loc = time.Local
	}
	now := time.Now
	if r.now != nil {
		now = r.now
	}
	t := now().In(loc)

	years := []int{t.Year()}
	if t.Month() == time.December {
		years = append(years, t.Year()+1)
	}
	return years
}

// SetClock overrides the refresher's notion of now.
func (r *Refresher) SetClock(now func() time.Time) {
	r.now = now
}
