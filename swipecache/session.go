package swipecache

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/goliatone/go-asset-cache/assetcache"
)

const (
	// progressTimeout bounds the blocking read of stored progress during
	// construction; a slow store must not delay the first window load.
	progressTimeout = 2 * time.Second

	// progressSaveTimeout bounds the asynchronous best-effort save of the
	// current index.
	progressSaveTimeout = 2 * time.Second

	// metadataPrefetchTimeout bounds the out-of-band metadata fetch issued
	// after a successful image load.
	metadataPrefetchTimeout = 10 * time.Second
)

// Dependencies carries the optional collaborators of a SessionCache. Any
// field may be left nil: notifications become no-ops, progress is not
// persisted, metadata prefetches go straight to the provider, and logging
// falls back to slog.Default().
type Dependencies struct {
	Notifier assetcache.Notifier
	Progress assetcache.ProgressStore
	Metadata assetcache.CacheService
	Keys     assetcache.KeySerializer
	Logger   *slog.Logger
}

// SessionCache is the asset prefetch and adaptive-quality cache backing one
// browsing session over one ordered collection.
//
// All slot state is guarded by a single mutex; fetch I/O runs on per-request
// goroutines and results are marshalled back through that mutex before any
// mutation. Per-slot generation counters make commits one-shot: a completion,
// timeout or cancellation that lost the race for a slot observes a stale
// generation and discards its result without mutating state.
type SessionCache struct {
	cfg      assetcache.Config
	seq      *assetcache.AssetSequence
	provider assetcache.MediaProvider
	notifier assetcache.Notifier
	progress assetcache.ProgressStore
	metadata assetcache.CacheService
	keys     assetcache.KeySerializer
	log      *slog.Logger

	ctx    context.Context
	cancel context.CancelFunc
	sem    chan struct{} // bounds concurrent in-flight provider fetches
	wg     sync.WaitGroup

	mu      sync.Mutex
	slots   map[int]*slot
	current int
	closed  bool
	genSeq  uint64

	stats sessionStats
}

// New builds a SessionCache for the given sequence and provider, restores the
// last-viewed index through Dependencies.Progress (clamped to the sequence)
// and populates the initial window.
func New(cfg assetcache.Config, seq *assetcache.AssetSequence, provider assetcache.MediaProvider, deps Dependencies) (*SessionCache, error) {
	if seq == nil {
		return nil, errors.New("swipecache: asset sequence is required")
	}
	if provider == nil {
		return nil, errors.New("swipecache: media provider is required")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	notifier := deps.Notifier
	if notifier == nil {
		notifier = noopNotifier{}
	}
	keys := deps.Keys
	if keys == nil {
		keys = assetcache.NewDefaultKeySerializer()
	}
	log := deps.Logger
	if log == nil {
		log = slog.Default()
	}

	ctx, cancel := context.WithCancel(context.Background())
	s := &SessionCache{
		cfg:      cfg,
		seq:      seq,
		provider: provider,
		notifier: notifier,
		progress: deps.Progress,
		metadata: deps.Metadata,
		keys:     keys,
		log:      log.With(slog.String("collection", seq.CollectionID())),
		ctx:      ctx,
		cancel:   cancel,
		sem:      make(chan struct{}, cfg.MaxConcurrentFetches),
		slots:    make(map[int]*slot),
	}

	if seq.Count() > 0 {
		// Restoring does not write the index back; only user-driven
		// SetCurrent calls persist.
		if err := s.advance(s.restoreProgress()); err != nil {
			cancel()
			return nil, err
		}
	}

	return s, nil
}

// SetCurrent moves the session to index: the window is recomputed, slots
// outside it are evicted (their in-flight work cancelled), and thumbnail and
// high-quality passes are issued for the new window. The new position is
// persisted best-effort. Returns assetcache.ErrOutOfRange for indices outside
// the sequence (no state changes) and assetcache.ErrCacheClosed after
// Shutdown.
func (s *SessionCache) SetCurrent(index int) error {
	if err := s.advance(index); err != nil {
		return err
	}
	s.persistProgress(index)
	return nil
}

// advance performs the window-change event. Eviction of outgoing indices
// completes before any fetch for incoming indices is issued; both happen
// under one lock hold so a stale in-flight window computation can never evict
// a newly-entering index.
func (s *SessionCache) advance(index int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return assetcache.ErrCacheClosed
	}
	if index < 0 || index >= s.seq.Count() {
		return assetcache.ErrOutOfRange
	}

	s.current = index
	win := computeWindow(index, s.cfg.WindowRadius, s.seq.Count())
	s.evictOutsideLocked(win)
	s.scheduleWindowLocked(win)

	s.log.Debug("current index changed",
		slog.Int("index", index),
		slog.Int("window_lo", win.lo),
		slog.Int("window_hi", win.hi))
	return nil
}

// Current returns the index the user is viewing.
func (s *SessionCache) Current() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

// Query returns a point-in-time snapshot of the slot at index. Untracked
// indices (outside the window, or any index after Shutdown) report an empty
// snapshot.
func (s *SessionCache) Query(index int) assetcache.SlotSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	sl, ok := s.slots[index]
	if !ok {
		return assetcache.SlotSnapshot{Index: index}
	}
	return assetcache.SlotSnapshot{
		Index:      index,
		Image:      sl.image,
		Quality:    sl.quality,
		RetryCount: sl.retryCount,
		State:      sl.state(),
		Fetching:   sl.activeTier != assetcache.TierNone,
	}
}

// IsReady reports whether the user can act on the item at index right now.
// An item is ready once an image is resident at high quality, or when an
// image is resident with no fidelity bookkeeping at all (a permissive
// fallback that avoids spurious UI lockups for slots cached before tier
// tracking existed). Callers must treat false as "wait", never as an error.
func (s *SessionCache) IsReady(index int) bool {
	snap := s.Query(index)
	if snap.Image == nil {
		return false
	}
	return snap.Quality == assetcache.TierHighQuality || snap.Quality == assetcache.TierNone
}

// Shutdown cancels all in-flight work, drops every slot and waits for fetch
// goroutines to drain. Safe to call more than once; operations after
// Shutdown return assetcache.ErrCacheClosed or empty snapshots.
func (s *SessionCache) Shutdown() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	for index, sl := range s.slots {
		s.clearActiveLocked(sl)
		delete(s.slots, index)
	}
	s.mu.Unlock()

	s.cancel()
	s.wg.Wait()
	s.log.Debug("session cache shut down")
}

// restoreProgress loads the last-viewed index for this collection, clamped to
// the sequence. Any store error means "start from the beginning".
func (s *SessionCache) restoreProgress() int {
	if s.progress == nil {
		return 0
	}
	ctx, cancel := context.WithTimeout(s.ctx, progressTimeout)
	defer cancel()

	index, err := s.progress.LoadLastIndex(ctx, s.seq.CollectionID())
	if err != nil {
		s.log.Debug("no stored browsing progress", slog.Any("error", err))
		return 0
	}
	if index < 0 {
		return 0
	}
	if last := s.seq.Count() - 1; index > last {
		return last
	}
	return index
}

// persistProgress writes the current index asynchronously. Failures are
// logged and otherwise ignored; persistence is not part of cache state.
func (s *SessionCache) persistProgress(index int) {
	s.mu.Lock()
	if s.closed || s.progress == nil {
		s.mu.Unlock()
		return
	}
	s.wg.Add(1)
	s.mu.Unlock()

	go func() {
		defer s.wg.Done()
		ctx, cancel := context.WithTimeout(s.ctx, progressSaveTimeout)
		defer cancel()
		if err := s.progress.SaveLastIndex(ctx, s.seq.CollectionID(), index); err != nil {
			s.log.Debug("failed to persist last index",
				slog.Int("index", index), slog.Any("error", err))
		}
	}()
}

// nextGenLocked returns the next slot ownership generation. One counter
// serves the whole session so a generation value is never reused, even when
// an evicted index re-enters the window and its slot is recreated. Caller
// holds s.mu.
func (s *SessionCache) nextGenLocked() uint64 {
	s.genSeq++
	return s.genSeq
}

// noopNotifier is installed when no Notifier dependency is provided.
type noopNotifier struct{}

func (noopNotifier) Warn(string) {}
func (noopNotifier) Info(string) {}
