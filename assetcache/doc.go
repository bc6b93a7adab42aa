// Package assetcache defines the domain types, collaborator ports and
// configuration for the swipe-session asset cache.
//
// # Overview
//
// A browsing session shows one large, ordered collection of media items
// one-at-a-time while images arrive asynchronously from a slow, rate-limited
// provider in two quality tiers. This package is the public surface shared by
// the engine (package swipecache) and by integrators:
//
//   - AssetSequence: immutable ordered collection of AssetRefs
//   - MediaProvider: the consumed media backend (progressive delivery aware)
//   - Notifier: fire-and-forget user-visible warnings
//   - ProgressStore: thin persistence of the last-viewed index
//   - CacheService / KeySerializer: read-through metadata cache port
//   - Config: window, retry, timeout and concurrency tuning
//
// # Quality tiers
//
// Every image resolves at a QualityTier. Tiers only move forward for a slot:
// none → thumbnail → high quality. A completed thumbnail never overwrites a
// resident high-quality image.
//
// # Progressive delivery
//
// MediaProvider.FetchImage returns a stream of FetchUpdate values. Providers
// that render progressively may emit degraded previews before the final
// image; the terminal update is either a final image or an error, after which
// the channel closes. The engine distinguishes final from intermediate via
// FetchUpdate.Degraded.
//
// # Key serialization
//
// The default KeySerializer namespaces metadata cache keys by snake_cased
// method name joined with KeySeparator, producing deterministic keys that are
// safe for remote cache backends.
//
// # Error handling
//
// The taxonomy is small and nothing is fatal: ErrOutOfRange guards the API
// boundary as a no-op, FetchError wraps recoverable provider failures,
// ErrFetchTimeout drives the fallback path, and cancellation is silently
// discarded. See the swipecache package for how failures propagate.
//
// # See also
//
// Package swipecache implements the session cache on top of these ports.
// Package progressrepo adapts a go-repository-bun repository to the
// ProgressStore port. Package pkg/di wires everything together.
package assetcache
