package assetcache

import "context"

// MediaProvider is the external media backend the cache fetches from. It is
// expected to be slow and rate-limited; all methods must honor ctx
// cancellation.
type MediaProvider interface {
	// FetchImage starts an asynchronous fetch for the requested asset, tier
	// and target size. See FetchUpdate for the stream protocol. The returned
	// channel is owned by the provider; the caller stops reading when ctx is
	// cancelled.
	FetchImage(ctx context.Context, req ImageRequest) (<-chan FetchUpdate, error)

	// FetchMetadata returns provider-side metadata for an asset. Used only
	// for the best-effort post-load prefetch; failures are ignored by the
	// cache.
	FetchMetadata(ctx context.Context, ref AssetRef) (AssetMetadata, error)
}

// Notifier surfaces non-fatal, user-visible messages. Implementations must be
// fire-and-forget: calls never block and never return errors to the cache.
type Notifier interface {
	Warn(message string)
	Info(message string)
}

// ProgressStore persists the last-viewed index per collection. It is a thin
// external collaborator: the cache reads it once on construction and writes
// it best-effort as the current index advances.
type ProgressStore interface {
	LoadLastIndex(ctx context.Context, collectionID string) (int, error)
	SaveLastIndex(ctx context.Context, collectionID string, index int) error
}

// KeySerializer builds a cache key from a method name + arbitrary args.
// It is responsible for producing stable keys across calls.
type KeySerializer interface {
	SerializeKey(method string, args ...any) string
}

// FetchFn is the function signature CacheService expects when fetching from
// the source of truth.
type FetchFn[T any] func(ctx context.Context) (T, error)

// CacheService exposes the read-through caching operations backing the
// metadata prefetch path. It is exported so callers can supply alternate
// cache backends through the DI container.
type CacheService interface {
	GetOrFetch(ctx context.Context, key string, fetchFn func(ctx context.Context) (any, error)) (any, error)
	Delete(ctx context.Context, key string) error
}

// GetOrFetch is a type-safe wrapper that provides generic support for
// CacheService.
func GetOrFetch[T any](ctx context.Context, service CacheService, key string, fetchFn FetchFn[T]) (T, error) {
	result, err := service.GetOrFetch(ctx, key, func(ctx context.Context) (any, error) {
		return fetchFn(ctx)
	})
	if err != nil {
		var zero T
		return zero, err
	}
	typed, ok := result.(T)
	if !ok {
		// Cached value from an earlier, differently-typed fetch for the same
		// key. Treat as a miss rather than panicking.
		var zero T
		return zero, &TypeMismatchError{Key: key}
	}
	return typed, nil
}
