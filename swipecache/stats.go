package swipecache

import "sync/atomic"

// sessionStats holds the internal atomic counters. Counters are incremented
// off the mutex where possible; they are observability data, not cache state.
type sessionStats struct {
	fetchesIssued       atomic.Uint64
	fetchesCompleted    atomic.Uint64
	fetchesFailed       atomic.Uint64
	fetchesTimedOut     atomic.Uint64
	staleResultsDropped atomic.Uint64
	fallbacks           atomic.Uint64
}

// Stats is a snapshot of session counters.
type Stats struct {
	// FetchesIssued counts provider fetches started, including ones later
	// cancelled by eviction or tier upgrades.
	FetchesIssued uint64

	// FetchesCompleted counts final images committed to a slot.
	FetchesCompleted uint64

	// FetchesFailed counts terminal provider errors (timeouts excluded).
	FetchesFailed uint64

	// FetchesTimedOut counts high-quality deadline expiries.
	FetchesTimedOut uint64

	// StaleResultsDropped counts outcomes discarded because a newer fetch,
	// an eviction or a timeout took ownership of the slot first.
	StaleResultsDropped uint64

	// Fallbacks counts slots forced into the fallback-ready terminal state.
	Fallbacks uint64
}

// Stats returns a point-in-time snapshot of the session counters.
func (s *SessionCache) Stats() Stats {
	return Stats{
		FetchesIssued:       s.stats.fetchesIssued.Load(),
		FetchesCompleted:    s.stats.fetchesCompleted.Load(),
		FetchesFailed:       s.stats.fetchesFailed.Load(),
		FetchesTimedOut:     s.stats.fetchesTimedOut.Load(),
		StaleResultsDropped: s.stats.staleResultsDropped.Load(),
		Fallbacks:           s.stats.fallbacks.Load(),
	}
}
