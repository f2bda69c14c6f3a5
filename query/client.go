package query

import (
	"context"
	"errors"
	"sort"
	"sync/atomic"
	"time"

	evbus "github.com/asaskevich/EventBus"
	"github.com/puzpuzpuz/xsync/v3"
	"github.com/sirupsen/logrus"

	"github.com/goliatone/go-storefront/cache"
	"github.com/goliatone/go-storefront/querykey"
)

// ErrQueryDisabled is returned when a read is attempted while its guard is off.
var ErrQueryDisabled = errors.New("query: disabled")

// Client is the shared query cache. Values live in the CacheService, which
// coalesces concurrent fetches per key; the client tracks the observable
// Entry for every key it has seen.
type Client struct {
	cache     cache.CacheService
	entries   *xsync.MapOf[string, Entry]
	observers *xsync.MapOf[string, *xsync.MapOf[uint64, *Observer]]
	nextID    atomic.Uint64
	bus       evbus.Bus
	log       logrus.FieldLogger
	now       func() time.Time
}

// Option configures a Client.
type Option func(*Client)

// WithLogger sets the logger used for cache diagnostics.
func WithLogger(log logrus.FieldLogger) Option {
	return func(c *Client) {
		if log != nil {
			c.log = log
		}
	}
}

// WithBus publishes lifecycle events on bus instead of a private one.
func WithBus(bus evbus.Bus) Option {
	return func(c *Client) {
		if bus != nil {
			c.bus = bus
		}
	}
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(c *Client) {
		if now != nil {
			c.now = now
		}
	}
}

// NewClient creates a Client over service.
func NewClient(service cache.CacheService, opts ...Option) *Client {
	c := &Client{
		cache:     service,
		entries:   xsync.NewMapOf[string, Entry](),
		observers: xsync.NewMapOf[string, *xsync.MapOf[uint64, *Observer]](),
		bus:       evbus.New(),
		log:       logrus.StandardLogger(),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Bus returns the lifecycle event bus.
func (c *Client) Bus() evbus.Bus {
	return c.bus
}

// Entry returns the current state of key. Unknown keys are idle.
func (c *Client) Entry(key string) Entry {
	if e, ok := c.entries.Load(key); ok {
		return e
	}
	return Entry{Key: key, Status: StatusIdle}
}

// Entries returns every tracked entry sorted by key.
func (c *Client) Entries() []Entry {
	var out []Entry
	c.entries.Range(func(_ string, e Entry) bool {
		out = append(out, e)
		return true
	})
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out
}

func (c *Client) dispatch(key string, ev event) Entry {
	// notify runs under the entry lock so observers see transitions in order
	next, _ := c.entries.Compute(key, func(old Entry, _ bool) (Entry, bool) {
		old.Key = key
		e := reduce(old, ev)
		c.notify(key, e)
		return e, false
	})
	return next
}

// Invalidate marks every entry matching one of prefixes stale and drops its
// cached value. Nothing is refetched until the next read.
func (c *Client) Invalidate(ctx context.Context, prefixes ...string) error {
	var errs []error
	for _, prefix := range prefixes {
		if prefix == "" {
			continue
		}
		if err := c.cache.DeleteByPrefix(ctx, prefix); err != nil {
			errs = append(errs, err)
		}

		var keys []string
		c.entries.Range(func(key string, _ Entry) bool {
			if querykey.Matches(key, prefix) {
				keys = append(keys, key)
			}
			return true
		})
		sort.Strings(keys)
		for _, key := range keys {
			c.dispatch(key, event{kind: invalidated, at: c.now()})
		}

		c.log.WithFields(logrus.Fields{"prefix": prefix, "keys": len(keys)}).Debug("query invalidated")
		c.bus.Publish(TopicInvalidated, InvalidateEvent{Prefix: prefix, Keys: keys})
	}
	return errors.Join(errs...)
}

// Reset drops every entry and cached value.
func (c *Client) Reset(ctx context.Context) error {
	keys := c.cache.Keys(ctx)
	c.entries.Range(func(key string, _ Entry) bool {
		keys = append(keys, key)
		return true
	})
	c.entries.Clear()
	return c.cache.InvalidateKeys(ctx, keys)
}
