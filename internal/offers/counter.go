package offers

import (
	"context"
	"fmt"
	"time"

	"social-calling/internal/store"
)

const dateLayout = "20060102"

// DayKey is the composite (name, local date) key of a day-scoped counter.
type DayKey struct {
	Name string
	Date string // YYYYMMDD in the caller's location
}

func NewDayKey(name string, now time.Time) DayKey {
	return DayKey{Name: name, Date: now.Format(dateLayout)}
}

func (k DayKey) String() string { return k.Name + "_" + k.Date }

// DailyCounter counts events per local calendar day. A new day starts at
// zero because it reads a different key; yesterday's row is never consulted.
type DailyCounter struct {
	store store.Store
	name  string
	// ttl is housekeeping only. Correctness never depends on expiry.
	ttl time.Duration
}

func NewDailyCounter(s store.Store, name string, ttl time.Duration) *DailyCounter {
	return &DailyCounter{store: s, name: name, ttl: ttl}
}

func (c *DailyCounter) Key(now time.Time) DayKey { return NewDayKey(c.name, now) }

func (c *DailyCounter) Count(ctx context.Context, now time.Time) (int64, error) {
	k := c.Key(now)
	n, _, err := store.GetInt(ctx, c.store, k.String())
	if err != nil {
		return 0, fmt.Errorf("offers: read %s: %w", k, err)
	}
	if n < 0 {
		n = 0
	}
	return n, nil
}

func (c *DailyCounter) Increment(ctx context.Context, now time.Time) (int64, error) {
	k := c.Key(now)
	n, err := c.store.Incr(ctx, k.String(), c.ttl)
	if err != nil {
		return 0, fmt.Errorf("offers: incr %s: %w", k, err)
	}
	return n, nil
}
