package query

import (
	"context"
	"errors"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/goliatone/go-storefront/cache"
	"github.com/goliatone/go-storefront/querykey"
)

type fetchOptions struct {
	enabled bool
}

// FetchOption tunes a single read.
type FetchOption func(*fetchOptions)

// Enabled guards a read. A disabled read never fetches.
func Enabled(enabled bool) FetchOption {
	return func(o *fetchOptions) { o.enabled = enabled }
}

func buildFetchOptions(opts []FetchOption) fetchOptions {
	o := fetchOptions{enabled: true}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// Fetch returns the value for key, calling fn only when no cached value is
// present. Concurrent callers for one key share a single call to fn. The
// shared call is detached from ctx: a cancelled caller gets ctx.Err() while
// the result is still recorded for everyone else.
func Fetch[T any](ctx context.Context, c *Client, key string, fn cache.FetchFn[T], opts ...FetchOption) (T, error) {
	var zero T
	if !buildFetchOptions(opts).enabled {
		return zero, ErrQueryDisabled
	}

	detached := context.WithoutCancel(ctx)
	run := func() (T, error) {
		v, err := cache.GetOrFetch(detached, c.cache, key, track(c, key, fn))
		if err == nil && c.Entry(key).Stale {
			// invalidated while in flight
			_ = c.cache.Delete(detached, key)
		}
		return v, err
	}

	if ctx.Done() == nil {
		return run()
	}
	if err := ctx.Err(); err != nil {
		return zero, err
	}

	type result struct {
		v   T
		err error
	}
	done := make(chan result, 1)
	go func() {
		v, err := run()
		done <- result{v, err}
	}()

	select {
	case <-ctx.Done():
		return zero, ctx.Err()
	case r := <-done:
		return r.v, r.err
	}
}

// track wraps fn so the entry follows the fetch it runs. The cache only calls
// the wrapper for the single leader of a coalesced miss.
func track[T any](c *Client, key string, fn cache.FetchFn[T]) cache.FetchFn[T] {
	return func(ctx context.Context) (T, error) {
		started := c.now()
		gen := c.dispatch(key, event{kind: fetchStarted, at: started}).gen
		resource := querykey.Resource(key)
		c.bus.Publish(TopicFetchStarted, FetchEvent{Key: key, Resource: resource})

		v, err := fn(ctx)
		elapsed := time.Since(started)

		if err != nil {
			c.dispatch(key, event{kind: fetchFailed, err: err, at: c.now(), gen: gen})
			c.log.WithFields(logrus.Fields{"key": key, "duration_ms": elapsed.Milliseconds()}).
				WithError(err).Debug("query fetch failed")
			c.bus.Publish(TopicFetchFailed, FetchEvent{Key: key, Resource: resource, Duration: elapsed, Err: err})
			return v, err
		}

		c.dispatch(key, event{kind: fetchSucceeded, data: v, at: c.now(), gen: gen})
		c.log.WithFields(logrus.Fields{"key": key, "duration_ms": elapsed.Milliseconds()}).Debug("query fetched")
		c.bus.Publish(TopicFetchSucceeded, FetchEvent{Key: key, Resource: resource, Duration: elapsed})
		return v, nil
	}
}

// Result is what a read hook exposes to its consumer.
type Result[T any] struct {
	Data      T
	Status    Status
	Err       error
	Stale     bool
	UpdatedAt time.Time
}

// Use runs Fetch and reports the resulting entry. A disabled read reports the
// current entry without fetching.
func Use[T any](ctx context.Context, c *Client, key string, fn cache.FetchFn[T], opts ...FetchOption) Result[T] {
	_, err := Fetch(ctx, c, key, fn, opts...)
	res := resultOf[T](c.Entry(key))

	if err != nil && !errors.Is(err, ErrQueryDisabled) {
		res.Err = err
	}
	return res
}

func resultOf[T any](e Entry) Result[T] {
	res := Result[T]{
		Status:    e.Status,
		Err:       e.Err,
		Stale:     e.Stale,
		UpdatedAt: e.UpdatedAt,
	}
	if v, ok := e.Data.(T); ok {
		res.Data = v
	}
	return res
}

// Snapshot returns the last successful value stored for key, even after the
// key was invalidated.
func Snapshot[T any](c *Client, key string) (T, bool) {
	var zero T
	e := c.Entry(key)
	if !e.HasData() {
		return zero, false
	}
	v, ok := e.Data.(T)
	if !ok {
		return zero, false
	}
	return v, true
}
