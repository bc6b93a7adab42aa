package swipecache

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/goliatone/go-asset-cache/assetcache"
)

// armDeadlineLocked starts the deadline timer for the slot's in-flight fetch,
// capturing the current (index, generation) pair. Caller holds s.mu and has
// already issued the fetch.
func (s *SessionCache) armDeadlineLocked(sl *slot) {
	index := sl.index
	gen := sl.gen
	sl.timeout = time.AfterFunc(s.cfg.HighQualityTimeout, func() {
		s.onFetchTimeout(index, gen)
	})
}

// onFetchTimeout fires when a deadline-guarded fetch misses its deadline. The
// generation check under the mutex guarantees exactly one terminal action per
// (index, generation): a completion and a timeout racing for the same request
// cannot both mutate state.
func (s *SessionCache) onFetchTimeout(index int, gen uint64) {
	s.mu.Lock()
	sl, ok := s.slots[index]
	if !ok || sl.gen != gen || sl.activeTier == assetcache.TierNone {
		s.mu.Unlock()
		return
	}
	tier := sl.activeTier

	s.clearActiveLocked(sl) // cancels the in-flight fetch
	s.stats.fetchesTimedOut.Add(1)

	fetchErr := &assetcache.FetchError{Ref: sl.ref, Tier: tier, Err: assetcache.ErrFetchTimeout}
	s.resolveFailedAttemptLocked(sl, fetchErr)
	retries := sl.retryCount
	s.mu.Unlock()

	s.log.Debug("fetch timed out",
		slog.Int("index", index),
		slog.String("tier", tier.String()),
		slog.Int("retry_count", retries))
}

// resolveFailedAttemptLocked advances the retry bookkeeping after a failed or
// timed-out attempt. Caller holds s.mu and has already cleared the slot's
// active work.
//
// With budget remaining, a slot holding no image gets a thumbnail fetch first
// (cheap fallback). For the current index that thumbnail runs to resolution
// before the next high-quality attempt is issued, so the item the user is
// looking at shows something as soon as the cheap tier can deliver it; the
// deadline stays armed around the thumbnail, keeping the total wait bounded
// by MaxRetries deadline cycles even against a provider that never succeeds.
// A slot that already holds an image re-arms high quality directly.
// Non-current slots wait for a later upgrade pass. On exhaustion, only the
// current index is forced into the fallback-ready terminal state; others stay
// unresolved and are retried if they re-enter the window near the current
// position.
func (s *SessionCache) resolveFailedAttemptLocked(sl *slot, err *assetcache.FetchError) {
	if sl.retryCount < s.cfg.MaxRetries {
		sl.retryCount++
	}
	isCurrent := sl.index == s.current

	if sl.retryCount >= s.cfg.MaxRetries {
		if isCurrent {
			s.forceFallbackLocked(sl, err)
		}
		return
	}

	if sl.image == nil {
		s.requestImageLocked(sl, assetcache.TierThumbnail)
		if isCurrent && sl.activeTier == assetcache.TierThumbnail {
			sl.rearmHighQuality = true
			s.armDeadlineLocked(sl)
			return
		}
	}
	if isCurrent {
		s.requestImageLocked(sl, assetcache.TierHighQuality)
	}
}

// forceFallbackLocked moves the slot into the fallback-ready terminal state:
// a placeholder is synthesized if nothing is resident, the quality is marked
// high so the readiness gate stops blocking, and exactly one non-fatal
// warning is surfaced through the notifier. Caller holds s.mu.
func (s *SessionCache) forceFallbackLocked(sl *slot, err *assetcache.FetchError) {
	if sl.fallback {
		return
	}
	if sl.image == nil {
		sl.image = placeholderImage(s.cfg.HighQualitySize)
	}
	sl.quality = assetcache.TierHighQuality
	sl.fallback = true
	sl.rearmHighQuality = false
	s.stats.fallbacks.Add(1)

	// Notifier contract: fire-and-forget, never blocks.
	s.notifier.Warn(fmt.Sprintf("Image %d is taking longer than expected; a preview is shown instead.", sl.index+1))

	s.log.Warn("slot forced fallback-ready",
		slog.Int("index", sl.index),
		slog.Int("retry_count", sl.retryCount),
		slog.Any("error", err))
}
