// Package swipecache implements the asset prefetch and adaptive-quality
// cache that backs a swipe-card browsing session.
//
// # Overview
//
// A SessionCache serves one ordered collection. Advancing the current index
// is the dominant event: it recomputes a sliding window around the new
// position, evicts and cancels everything outside it, then drives a two-pass
// loading strategy through the request coordinator: a fast thumbnail pass
// across the whole window followed by a high-quality pass over the lookahead,
// with every high-quality attempt guarded by a deadline and a bounded retry
// budget.
//
// # Slot state machine
//
// Each tracked index owns one slot:
//
//	Empty → ThumbnailPending → ThumbnailReady → HighQualityPending → HighQualityReady
//
// with a parallel FallbackReady terminal reachable only from retry
// exhaustion on the current index, and any state → Evicted on window exit,
// which recycles back to Empty if the index re-enters later. Quality only
// moves forward: a completed thumbnail never overwrites a resident
// high-quality image.
//
// # Concurrency model
//
// All slot mutation happens under a single mutex. Fetch I/O runs on
// per-request goroutines, bounded by a semaphore so a rate-limited provider
// is not saturated, and every outcome is marshalled back through the mutex
// before touching a slot. Per-slot generation counters replace the manual
// "already resumed" flags found in ad hoc implementations of this pattern: a
// completion, timeout, cancellation or eviction that lost the race observes a
// stale generation and discards its result, so exactly one terminal action
// fires per (index, generation).
//
// # Timeout, retry, fallback
//
// High-quality fetches carry a deadline (default 5s) and a grace sub-timeout
// (default 1.5s) that commits a degraded provider preview early instead of
// waiting the full deadline. Expiries increment a per-slot retry counter
// (default cap 3). For the current index a failed attempt on an empty slot
// issues a thumbnail first and starts the next high-quality attempt from the
// thumbnail's resolution, with the deadline kept armed throughout, so the
// item the user is looking at shows the cheap tier quickly and still becomes
// interactable within MaxRetries deadline cycles even against a provider
// that never succeeds. At exhaustion the slot is forced fallback-ready with
// whatever image it holds, or a placeholder, and a single notifier warning.
// Failures on non-current indices are swallowed; prefetching is best-effort.
//
// # Readiness
//
// IsReady answers "can the user act on this item right now" purely from slot
// state; the gesture layer must treat false as "wait", never as an error.
//
// # See also
//
// Package assetcache defines the domain types and collaborator ports.
// Package pkg/di wires a SessionCache with its metadata cache and progress
// store.
package swipecache
