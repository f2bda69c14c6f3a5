package storefront

import (
	"context"
	"errors"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/goliatone/go-storefront/api"
	"github.com/goliatone/go-storefront/query"
)

// Prefetch is one query to warm before a response is written.
type Prefetch struct {
	Key     string
	Enabled bool
	Run     func(ctx context.Context) error
}

// Prefetch runs every enabled item with bounded parallelism and returns once
// all of them settled. Failures stay recorded in the cache entries and never
// fail the caller.
func (s *Service) Prefetch(ctx context.Context, items ...Prefetch) []string {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.prefetchLimit)

	var keys []string
	started := time.Now()
	for _, item := range items {
		if !item.Enabled || item.Run == nil {
			continue
		}
		keys = append(keys, item.Key)
		g.Go(func() error {
			if err := item.Run(gctx); err != nil && !errors.Is(err, query.ErrQueryDisabled) {
				s.log.WithField("key", item.Key).WithError(err).Debug("prefetch failed")
			}
			return nil
		})
	}
	_ = g.Wait()

	s.log.WithFields(logrus.Fields{
		"queries":     len(keys),
		"duration_ms": time.Since(started).Milliseconds(),
	}).Debug("prefetch settled")
	return keys
}

func (s *Service) PrefetchProducts(f api.ProductFilter) Prefetch { return s.productsRead(f).prefetch(s) }
func (s *Service) PrefetchProduct(id string) Prefetch            { return s.productRead(id).prefetch(s) }
func (s *Service) PrefetchFundings(f api.FundingFilter) Prefetch { return s.fundingsRead(f).prefetch(s) }
func (s *Service) PrefetchFunding(id string) Prefetch            { return s.fundingRead(id).prefetch(s) }
func (s *Service) PrefetchMember(v Viewer) Prefetch              { return s.memberRead(v).prefetch(s) }
func (s *Service) PrefetchCart(v Viewer) Prefetch                { return s.cartRead(v).prefetch(s) }
func (s *Service) PrefetchWallet(v Viewer) Prefetch              { return s.walletRead(v).prefetch(s) }

func (s *Service) PrefetchNotifications(v Viewer, p api.PageParams) Prefetch {
	return s.notificationsRead(v, p).prefetch(s)
}

// QueryState is the serializable view of one entry.
type QueryState struct {
	Status    query.Status `json:"status"`
	Data      any          `json:"data,omitempty"`
	Error     string       `json:"error,omitempty"`
	Stale     bool         `json:"stale,omitempty"`
	UpdatedAt *time.Time   `json:"updatedAt,omitempty"`
}

// Snapshot is a dehydrated set of entries keyed by cache key.
type Snapshot struct {
	Queries map[string]QueryState `json:"queries"`
}

// Dehydrate captures the entries for keys.
func (s *Service) Dehydrate(keys ...string) Snapshot {
	snap := Snapshot{Queries: make(map[string]QueryState, len(keys))}
	for _, key := range keys {
		e := s.queries.Entry(key)
		state := QueryState{Status: e.Status, Data: e.Data, Stale: e.Stale}
		if e.Err != nil {
			state.Error = e.Err.Error()
		}
		if e.HasData() {
			at := e.UpdatedAt
			state.UpdatedAt = &at
		}
		snap.Queries[key] = state
	}
	return snap
}

// BootstrapQueries is the fixed prefetch set for the first page load: the
// public catalog plus, for a signed-in viewer, their profile, cart, wallet
// and first notification page.
func (s *Service) BootstrapQueries(v Viewer) []Prefetch {
	return []Prefetch{
		s.PrefetchProducts(api.ProductFilter{}),
		s.PrefetchFundings(api.FundingFilter{Status: api.FundingStatusOpen}),
		s.PrefetchMember(v),
		s.PrefetchCart(v),
		s.PrefetchWallet(v),
		s.PrefetchNotifications(v, api.PageParams{}),
	}
}

// Bootstrap prefetches BootstrapQueries and dehydrates the result.
func (s *Service) Bootstrap(ctx context.Context, v Viewer) Snapshot {
	return s.Dehydrate(s.Prefetch(ctx, s.BootstrapQueries(v)...)...)
}
