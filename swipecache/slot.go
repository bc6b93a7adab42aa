package swipecache

import (
	"context"
	"image"
	"time"

	"github.com/goliatone/go-asset-cache/assetcache"
)

// slot is the per-index cache record. It exists only while its index is
// inside the window and is owned exclusively by the SessionCache mutex; no
// other component holds a mutable reference to it.
type slot struct {
	index int
	ref   assetcache.AssetRef

	image      image.Image
	quality    assetcache.QualityTier
	retryCount int
	fallback   bool

	// rearmHighQuality marks a slot whose next high-quality attempt is
	// issued from the resolution of the in-flight fallback thumbnail, so
	// the cheap image lands before the expensive retry starts.
	rearmHighQuality bool

	// gen is reassigned from the session-wide counter on every ownership
	// change: new fetch, commit, timeout resolution, eviction, shutdown.
	// Asynchronous callbacks capture the generation they were issued under
	// and discard themselves when the slot has moved on. Drawing from one
	// monotonic counter keeps generations unique even across slot
	// recreation, so a callback from a prior slot instance can never match
	// a new one.
	gen uint64

	// At most one in-flight fetch per slot. activeTier is TierNone when the
	// slot is idle; cancel stops the fetch goroutine; timeout is the armed
	// high-quality deadline, nil for thumbnail fetches.
	activeTier assetcache.QualityTier
	cancel     context.CancelFunc
	timeout    *time.Timer
}

// state derives the lifecycle state from the slot fields.
func (sl *slot) state() assetcache.SlotState {
	switch {
	case sl.fallback:
		return assetcache.SlotFallbackReady
	case sl.quality == assetcache.TierHighQuality:
		return assetcache.SlotHighQualityReady
	case sl.activeTier == assetcache.TierHighQuality:
		return assetcache.SlotHighQualityPending
	case sl.quality == assetcache.TierThumbnail:
		return assetcache.SlotThumbnailReady
	case sl.activeTier == assetcache.TierThumbnail:
		return assetcache.SlotThumbnailPending
	default:
		return assetcache.SlotEmpty
	}
}

// ensureSlotLocked returns the tracked slot for index, creating it lazily the
// first time the index enters the window. Caller holds s.mu and guarantees
// index is inside the sequence.
func (s *SessionCache) ensureSlotLocked(index int) *slot {
	if sl, ok := s.slots[index]; ok {
		return sl
	}
	ref, _ := s.seq.At(index)
	sl := &slot{index: index, ref: ref, gen: s.nextGenLocked()}
	s.slots[index] = sl
	return sl
}

// clearActiveLocked cancels any in-flight fetch and deadline for the slot and
// advances the generation, invalidating every callback issued for the
// previous ownership. Caller holds s.mu.
func (s *SessionCache) clearActiveLocked(sl *slot) {
	if sl.cancel != nil {
		sl.cancel()
		sl.cancel = nil
	}
	if sl.timeout != nil {
		sl.timeout.Stop()
		sl.timeout = nil
	}
	sl.activeTier = assetcache.TierNone
	sl.gen = s.nextGenLocked()
}
