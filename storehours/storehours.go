/*
Package storehours holds the store's opening hours per weekday.

CACHING:
  Opening hours are read by every schedule view but change rarely. Cache is
  an explicit read-through cache over a Store: the first Get loads from the
  store, Save writes through and then drops the cached copy so the next Get
  reloads what was actually persisted. There is no package-level state; the
  server builds one Cache and passes it to whoever needs it.
*/
package storehours

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/schedulehq/schedule-engine/generic"
)

// Day is the opening window for one weekday. Open and Close are "HH:MM".
type Day struct {
	Weekday time.Weekday
	Open    string
	Close   string
	Closed  bool
}

// Hours is indexed by time.Weekday (Sunday = 0).
type Hours [7]Day

const (
	DefaultOpen  = "09:00"
	DefaultClose = "21:00"
)

// Default opens every day from DefaultOpen to DefaultClose.
func Default() Hours {
	var h Hours
	for i := range h {
		h[i] = Day{Weekday: time.Weekday(i), Open: DefaultOpen, Close: DefaultClose}
	}
	return h
}

// Uniform applies one window to every weekday. Used when converting the
// legacy single open/close pair.
func Uniform(open, close string) Hours {
	h := Default()
	for i := range h {
		h[i].Open = open
		h[i].Close = close
	}
	return h
}

// For returns the window for weekday.
func (h Hours) For(weekday time.Weekday) Day {
	return h[weekday]
}

// OpenMinutes returns how long the store is open on weekday.
func (h Hours) OpenMinutes(weekday time.Weekday) int {
	d := h[weekday]
	if d.Closed {
		return 0
	}
	open, err := generic.ParseClock(d.Open)
	if err != nil {
		return 0
	}
	closing, err := generic.ParseClock(d.Close)
	if err != nil {
		return 0
	}
	return closing - open
}

func (h Hours) Validate() error {
	for i, d := range h {
		if d.Weekday != time.Weekday(i) {
			return fmt.Errorf("%w: slot %d holds %s", generic.ErrInvalidRequest, i, d.Weekday)
		}
		if d.Closed {
			continue
		}
		open, err := generic.ParseClock(d.Open)
		if err != nil {
			return fmt.Errorf("%w: %s open: %v", generic.ErrInvalidRequest, d.Weekday, err)
		}
		closing, err := generic.ParseClock(d.Close)
		if err != nil {
			return fmt.Errorf("%w: %s close: %v", generic.ErrInvalidRequest, d.Weekday, err)
		}
		if closing <= open {
			return fmt.Errorf("%w: %s closes before it opens", generic.ErrInvalidRequest, d.Weekday)
		}
	}
	return nil
}

// =============================================================================
// STORE + CACHE
// =============================================================================

// Store persists opening hours. LoadStoreHours returns Default() when nothing
// has been saved.
type Store interface {
	LoadStoreHours(ctx context.Context) (Hours, error)
	SaveStoreHours(ctx context.Context, h Hours) error
}

type Cache struct {
	store  Store
	logger logrus.FieldLogger

	mu     sync.Mutex
	hours  Hours
	loaded bool
}

func NewCache(store Store, logger logrus.FieldLogger) *Cache {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Cache{store: store, logger: logger}
}

// Get returns the cached hours, loading them on first use or after a Save.
func (c *Cache) Get(ctx context.Context) (Hours, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.loaded {
		return c.hours, nil
	}
	h, err := c.store.LoadStoreHours(ctx)
	if err != nil {
		return Hours{}, fmt.Errorf("load store hours: %w", err)
	}
	c.hours = h
	c.loaded = true
	c.logger.Debug("store hours loaded")
	return h, nil
}

// Save validates and persists h, then invalidates the cache.
func (c *Cache) Save(ctx context.Context, h Hours) error {
	if err := h.Validate(); err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.store.SaveStoreHours(ctx, h); err != nil {
		return fmt.Errorf("save store hours: %w", err)
	}
	c.loaded = false
	return nil
}

// Invalidate forces the next Get to reload.
func (c *Cache) Invalidate() {
	c.mu.Lock()
	c.loaded = false
	c.mu.Unlock()
}
