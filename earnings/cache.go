package earnings

import (
	"fmt"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// MonthCache memoizes workday counts per month. Keys include the weekday
// mask and the holiday calendar fingerprint, so editing either produces new
// keys and the old entries simply age out.
type MonthCache struct {
	c *gocache.Cache
}

// NewMonthCache creates a cache whose entries live for ttl. A ttl of zero
// keeps entries until Flush.
func NewMonthCache(ttl time.Duration) *MonthCache {
	expiration := ttl
	cleanup := 2 * ttl
	if ttl <= 0 {
		expiration = gocache.NoExpiration
		cleanup = 0
	}
	return &MonthCache{c: gocache.New(expiration, cleanup)}
}

func monthKey(year int, month time.Month, mask WeekdaySet, fingerprint string) string {
	return fmt.Sprintf("%d-%02d-%d-%s", year, month, mask, fingerprint)
}

// workdays returns the cached count, computing and storing it on a miss.
func (m *MonthCache) workdays(year int, month time.Month, policy *WorkdayPolicy, compute func() int) int {
	key := monthKey(year, month, policy.cfg.WorkDays, policy.holidays.Fingerprint())
	if v, ok := m.c.Get(key); ok {
		return v.(int)
	}
	n := compute()
	m.c.SetDefault(key, n)
	return n
}

// Len reports the number of cached months, including expired entries not
// yet cleaned up.
func (m *MonthCache) Len() int { return m.c.ItemCount() }

// Flush drops every entry.
func (m *MonthCache) Flush() { m.c.Flush() }
