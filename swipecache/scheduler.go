package swipecache

import "github.com/goliatone/go-asset-cache/assetcache"

// scheduleWindowLocked (re)populates the window with the two-pass loading
// strategy. Both passes are idempotent: re-invoking them when nothing has
// changed issues no redundant provider calls thanks to requestImageLocked's
// cache-hit and in-flight short-circuits. Caller holds s.mu.
func (s *SessionCache) scheduleWindowLocked(win window) {
	// Pass 1 (breadth): thumbnails for every slot in the window that lacks
	// an image, ascending, so the whole window becomes minimally renderable
	// quickly.
	for index := win.lo; index <= win.hi; index++ {
		sl := s.ensureSlotLocked(index)
		if sl.image == nil {
			s.requestImageLocked(sl, assetcache.TierThumbnail)
		}
	}

	// Pass 2 (depth): high quality for the lookahead starting at the
	// current position, ascending, each attempt guarded by the deadline and
	// retry policy.
	hi := min(win.hi, s.current+s.cfg.HighQualityLookahead-1)
	for index := s.current; index <= hi; index++ {
		s.requestImageLocked(s.ensureSlotLocked(index), assetcache.TierHighQuality)
	}
}
