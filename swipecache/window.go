package swipecache

import "log/slog"

// window is the contiguous index range retained around the current position.
// Bounds are inclusive.
type window struct {
	lo, hi int
}

// computeWindow clamps [current-radius, current+radius] to the sequence.
func computeWindow(current, radius, count int) window {
	lo := current - radius
	if lo < 0 {
		lo = 0
	}
	hi := current + radius
	if hi > count-1 {
		hi = count - 1
	}
	return window{lo: lo, hi: hi}
}

func (w window) contains(index int) bool {
	return index >= w.lo && index <= w.hi
}

// evictOutsideLocked deletes every tracked slot outside the window: its
// in-flight fetch and deadline are cancelled, its image discarded and its
// bookkeeping removed. This is the sole place memory is bounded: resident
// decoded images stay O(window), never O(sequence). Caller holds s.mu.
func (s *SessionCache) evictOutsideLocked(win window) {
	for index, sl := range s.slots {
		if win.contains(index) {
			continue
		}
		s.clearActiveLocked(sl)
		delete(s.slots, index)
		s.log.Debug("slot evicted", slog.Int("index", index))
	}
}
