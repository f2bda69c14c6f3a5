// Package cache provides the read-through cache interface behind the
// storefront query layer.
//
// # Overview
//
// CacheService is a small, untyped contract: fetch-through reads, deletes and
// segment-aware prefix deletes. The generic GetOrFetch helper restores type
// safety at call sites:
//
//	svc, err := cache.NewCacheService(cache.DefaultConfig())
//	if err != nil {
//		return err
//	}
//	cart, err := cache.GetOrFetch(ctx, svc, key, func(ctx context.Context) (api.Cart, error) {
//		return client.GetCart(ctx)
//	})
//
// The default implementation is backed by sturdyc. Concurrent GetOrFetch calls
// for one key share a single in-flight fetch; a failed fetch is not stored, so
// the next read tries again.
//
// # Invalidation
//
// Deleting a key is how the query layer marks an entry stale: nothing is
// refetched until the next read. DeleteByPrefix uses querykey.Matches, so a
// prefix only matches on whole key segments.
//
// # Error Handling
//
// ErrInvalidResultType is returned by GetOrFetch when a stored value does not
// have the requested type.
package cache
