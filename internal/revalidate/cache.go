// Package revalidate caches adapter results per selection key, deduplicates
// concurrent fetches and refreshes entries on an interval or on reconnect.
package revalidate

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/i474232898/weather-dashboard/internal/forecast"
	"github.com/i474232898/weather-dashboard/internal/metrics"
	"github.com/i474232898/weather-dashboard/internal/store"
)

// Policy is the revalidation parameter set.
type Policy struct {
	RevalidateOnFocus     bool
	RevalidateOnReconnect bool
	// RefreshInterval is both the freshness window and the background
	// refresh period. Zero disables both.
	RefreshInterval time.Duration
}

// DefaultPolicy: no refetch on focus, refetch on reconnect, refresh every 30 minutes.
func DefaultPolicy() Policy {
	return Policy{
		RevalidateOnFocus:     false,
		RevalidateOnReconnect: true,
		RefreshInterval:       30 * time.Minute,
	}
}

// Fetcher produces a series for a selection. *forecast.Adapter satisfies it.
type Fetcher interface {
	FetchSeries(ctx context.Context, sel forecast.Selection) ([]forecast.Point, error)
}

// Result is a cache read.
type Result struct {
	Points    []forecast.Point
	FetchedAt time.Time
	// Cached is true when no fetch was needed.
	Cached bool
}

// Cache is a keyed series cache in front of a Fetcher.
type Cache struct {
	fetcher Fetcher
	store   *store.MemoryStore
	policy  Policy
	group   singleflight.Group
	now     func() time.Time
}

// Option configures a Cache.
type Option func(*Cache)

// WithClock overrides the clock used for freshness.
func WithClock(now func() time.Time) Option {
	return func(c *Cache) { c.now = now }
}

// New creates a new Cache.
func New(fetcher Fetcher, st *store.MemoryStore, policy Policy, opts ...Option) *Cache {
	c := &Cache{
		fetcher: fetcher,
		store:   st,
		policy:  policy,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Policy returns the configured policy.
func (c *Cache) Policy() Policy {
	return c.policy
}

// Get returns the series for sel, fetching it when nothing fresh is cached.
// Only one fetch per key is in flight at a time; callers that arrive while it
// runs share its result. The fetch is not cancelled when ctx is; it completes
// and fills the cache for the next reader.
func (c *Cache) Get(ctx context.Context, sel forecast.Selection) (Result, error) {
	key := sel.Key()
	now := c.now()

	if e, err := c.store.Get(key, now); err == nil && c.fresh(e, now) {
		metrics.CacheLookups.WithLabelValues("hit").Inc()
		return Result{Points: e.Points, FetchedAt: e.FetchedAt, Cached: true}, nil
	}

	res, err := c.revalidate(ctx, sel, false)
	if err != nil {
		metrics.CacheLookups.WithLabelValues("error").Inc()
		return Result{}, err
	}
	if res.Cached {
		metrics.CacheLookups.WithLabelValues("hit").Inc()
	} else {
		metrics.CacheLookups.WithLabelValues("miss").Inc()
	}
	c.store.Touch(key, c.now())
	return res, nil
}

// OnFocus handles a client regaining focus. It reports whether the policy
// caused entries to be marked for revalidation.
func (c *Cache) OnFocus() bool {
	if !c.policy.RevalidateOnFocus {
		return false
	}
	metrics.Revalidations.WithLabelValues("focus").Inc()
	c.store.MarkAllStale()
	return true
}

// OnReconnect handles a client coming back online. When the policy allows it
// every active key is refetched.
func (c *Cache) OnReconnect(ctx context.Context) (bool, error) {
	if !c.policy.RevalidateOnReconnect {
		return false, nil
	}
	return true, c.revalidateActive(ctx, "reconnect")
}

// RevalidateActive refetches every key read within the idle window. It is
// driven by the scheduler every RefreshInterval.
func (c *Cache) RevalidateActive(ctx context.Context) error {
	return c.revalidateActive(ctx, "interval")
}

func (c *Cache) revalidateActive(ctx context.Context, trigger string) error {
	active := c.store.Active(c.now())
	if len(active) == 0 {
		return nil
	}
	log.Printf("revalidate: %s refresh of %d keys", trigger, len(active))
	metrics.Revalidations.WithLabelValues(trigger).Inc()

	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		errs []error
	)
	for _, sel := range active {
		wg.Add(1)
		go func(sel forecast.Selection) {
			defer wg.Done()
			if _, err := c.revalidate(ctx, sel, true); err != nil {
				log.Printf("revalidate: %s failed: %v", sel.Key(), err)
				mu.Lock()
				errs = append(errs, fmt.Errorf("%s: %w", sel.Key(), err))
				mu.Unlock()
			}
		}(sel)
	}
	wg.Wait()
	return errors.Join(errs...)
}

func (c *Cache) fresh(e store.SeriesEntry, now time.Time) bool {
	if e.Stale {
		return false
	}
	return c.policy.RefreshInterval <= 0 || now.Sub(e.FetchedAt) < c.policy.RefreshInterval
}

// revalidate runs at most one fetch per key. Unless force is set, a caller
// that lost the race to a flight which has just finished is served from the
// store instead of starting another fetch.
func (c *Cache) revalidate(ctx context.Context, sel forecast.Selection, force bool) (Result, error) {
	ch := c.group.DoChan(sel.Key(), func() (interface{}, error) {
		if !force {
			now := c.now()
			if e, err := c.store.Get(sel.Key(), now); err == nil && c.fresh(e, now) {
				return Result{Points: e.Points, FetchedAt: e.FetchedAt, Cached: true}, nil
			}
		}
		points, err := c.fetcher.FetchSeries(context.WithoutCancel(ctx), sel)
		if err != nil {
			return nil, err
		}
		fetched := c.now()
		c.store.Save(store.SeriesEntry{Selection: sel, Points: points, FetchedAt: fetched})
		return Result{Points: points, FetchedAt: fetched}, nil
	})

	select {
	case <-ctx.Done():
		return Result{}, ctx.Err()
	case r := <-ch:
		if r.Err != nil {
			return Result{}, r.Err
		}
		res := r.Val.(Result)
		res.Points = append([]forecast.Point(nil), res.Points...)
		return res, nil
	}
}
