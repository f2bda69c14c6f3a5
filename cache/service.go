package cache

import (
	"context"
	"errors"
)

// ErrInvalidResultType is returned when a cached value cannot be converted to
// the type requested by the caller.
var ErrInvalidResultType = errors.New("cache: cached value has unexpected type")

// FetchFn is the function signature CacheService expects when fetching from the source of truth.
type FetchFn[T any] func(ctx context.Context) (T, error)

// CacheService exposes the read-through operations the query layer needs.
// Implementations must coalesce concurrent GetOrFetch calls for the same key
// into a single in-flight fetch.
type CacheService interface {
	GetOrFetch(ctx context.Context, key string, fetchFn any) (any, error)
	Delete(ctx context.Context, key string) error
	// DeleteByPrefix removes every key matching prefix on segment boundaries.
	DeleteByPrefix(ctx context.Context, prefix string) error
	InvalidateKeys(ctx context.Context, keys []string) error
	Keys(ctx context.Context) []string
}

// GetOrFetch is a type-safe wrapper function that provides generic support for CacheService.
func GetOrFetch[T any](ctx context.Context, service CacheService, key string, fetchFn FetchFn[T]) (T, error) {
	var zero T

	result, err := service.GetOrFetch(ctx, key, fetchFn)
	if err != nil {
		return zero, err
	}
	if result == nil {
		return zero, nil
	}

	typed, ok := result.(T)
	if !ok {
		return zero, ErrInvalidResultType
	}
	return typed, nil
}
