// Package query is the shared query cache behind the storefront read and
// write hooks.
//
// A Client keeps one Entry per key (idle, loading, error or success, plus a
// stale flag) next to the values held by a cache.CacheService. Reads go
// through Fetch or Use; concurrent reads of one key share a single upstream
// call. Writes go through Mutation, which invalidates its declared key
// prefixes after a successful call. Invalidation marks entries stale and
// drops their values; the next read refetches.
//
//	client := query.NewClient(svc)
//	cart, err := query.Fetch(ctx, client, querykey.Default.Cart(user), func(ctx context.Context) (api.Cart, error) {
//		return upstream.GetCart(ctx)
//	})
//
// Lifecycle events are published on the client's EventBus under the Topic
// constants.
package query
