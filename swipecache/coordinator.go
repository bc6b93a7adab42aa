package swipecache

import (
	"context"
	"errors"
	"image"
	"image/color"
	"image/draw"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/goliatone/go-asset-cache/assetcache"
)

// requestImageLocked is the single entry point for issuing fetches. Caller
// holds s.mu.
//
// Short-circuits, in order:
//   - the slot already holds an image at or above the requested tier
//   - a fetch at the same or a strictly higher tier is already in flight
//     (a tier upgrade never cancels a higher in-flight tier)
//
// Otherwise any lower-tier in-flight fetch is cancelled first, so at most one
// task and one deadline exist per slot at any instant.
func (s *SessionCache) requestImageLocked(sl *slot, tier assetcache.QualityTier) {
	if sl.quality >= tier {
		return
	}
	if sl.activeTier >= tier {
		return
	}

	s.clearActiveLocked(sl)
	gen := sl.gen

	fctx, cancel := context.WithCancel(s.ctx)
	sl.cancel = cancel
	sl.activeTier = tier

	if tier == assetcache.TierHighQuality {
		s.armDeadlineLocked(sl)
	}

	req := assetcache.ImageRequest{
		RequestID:  uuid.NewString(),
		Ref:        sl.ref,
		Tier:       tier,
		TargetSize: s.targetSize(tier),
	}

	s.stats.fetchesIssued.Add(1)
	s.wg.Add(1)
	go s.runFetch(fctx, req, gen)

	s.log.Debug("fetch issued",
		slog.String("request_id", req.RequestID),
		slog.Int("index", sl.index),
		slog.String("tier", tier.String()))
}

// runFetch drives one provider fetch off the serialization point. It blocks
// on the concurrency semaphore, consumes the provider's update stream and
// marshals exactly one terminal outcome back through the mutex. A cancelled
// fetch returns without mutating anything.
func (s *SessionCache) runFetch(fctx context.Context, req assetcache.ImageRequest, gen uint64) {
	defer s.wg.Done()

	select {
	case s.sem <- struct{}{}:
	case <-fctx.Done():
		return
	}
	defer func() { <-s.sem }()

	updates, err := s.provider.FetchImage(fctx, req)
	if err != nil {
		s.onFetchFailed(req, gen, err)
		return
	}
	if updates == nil {
		s.onFetchFailed(req, gen, assetcache.ErrFetchClosed)
		return
	}

	// The grace sub-timeout lets a degraded preview become visible well
	// before the full deadline. Thumbnail fetches skip it: degraded frames
	// commit immediately.
	var grace <-chan time.Time
	if req.Tier == assetcache.TierHighQuality {
		t := time.NewTimer(s.cfg.GraceInterval)
		defer t.Stop()
		grace = t.C
	}

	var pending image.Image
	for {
		select {
		case <-fctx.Done():
			return

		case <-grace:
			grace = nil
			if pending != nil {
				s.commitPreview(req, gen, pending)
				pending = nil
			}

		case u, ok := <-updates:
			if !ok {
				s.onFetchFailed(req, gen, assetcache.ErrFetchClosed)
				return
			}
			if u.Err != nil {
				s.onFetchFailed(req, gen, u.Err)
				return
			}
			if u.Degraded {
				if grace == nil {
					s.commitPreview(req, gen, u.Image)
				} else {
					pending = u.Image
				}
				continue
			}
			s.commitImage(req, gen, u.Image)
			return
		}
	}
}

// commitImage applies a final provider result. The generation check under the
// mutex makes this one-shot: a completion that raced a timeout, cancellation
// or eviction for the same request observes a stale generation and is
// discarded unconditionally.
func (s *SessionCache) commitImage(req assetcache.ImageRequest, gen uint64, img image.Image) {
	s.mu.Lock()
	sl, ok := s.slots[req.Ref.Index]
	if !ok || sl.gen != gen {
		s.mu.Unlock()
		s.stats.staleResultsDropped.Add(1)
		return
	}

	s.clearActiveLocked(sl)

	img = normalizeImage(img)
	if req.Tier >= sl.quality {
		sl.image = img
		sl.quality = req.Tier
	} else if sl.image == nil {
		sl.image = img
	}
	rearm := sl.rearmHighQuality
	sl.rearmHighQuality = false
	if req.Tier == assetcache.TierHighQuality {
		sl.retryCount = 0
		sl.fallback = false
		rearm = false
	}
	if rearm && sl.index == s.current {
		// The fallback thumbnail has landed; now start the next
		// high-quality attempt.
		s.requestImageLocked(sl, assetcache.TierHighQuality)
	}
	ref := sl.ref
	s.mu.Unlock()

	s.stats.fetchesCompleted.Add(1)
	s.log.Debug("fetch completed",
		slog.String("request_id", req.RequestID),
		slog.Int("index", req.Ref.Index),
		slog.String("tier", req.Tier.String()))

	s.prefetchMetadata(ref)
}

// commitPreview applies a degraded intermediate result. The generation is
// validated but not consumed: the fetch stays in flight and its deadline
// stays armed. A degraded frame is thumbnail-grade regardless of the
// requested tier and never counts against the retry budget.
func (s *SessionCache) commitPreview(req assetcache.ImageRequest, gen uint64, img image.Image) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sl, ok := s.slots[req.Ref.Index]
	if !ok || sl.gen != gen {
		return
	}
	if sl.quality >= assetcache.TierThumbnail && sl.image != nil {
		return
	}
	sl.image = normalizeImage(img)
	if sl.quality < assetcache.TierThumbnail {
		sl.quality = assetcache.TierThumbnail
	}
}

// onFetchFailed resolves a provider failure. Cancellation is not an error:
// stale results are dropped silently. Thumbnail failures are swallowed
// (best-effort prefetch); high-quality failures drive the same retry and
// fallback path as a timeout so a fast-failing provider cannot leave the
// current item permanently blocked.
func (s *SessionCache) onFetchFailed(req assetcache.ImageRequest, gen uint64, err error) {
	if errors.Is(err, context.Canceled) {
		return
	}

	s.mu.Lock()
	sl, ok := s.slots[req.Ref.Index]
	if !ok || sl.gen != gen {
		s.mu.Unlock()
		s.stats.staleResultsDropped.Add(1)
		return
	}

	s.clearActiveLocked(sl)
	s.stats.fetchesFailed.Add(1)

	if req.Tier != assetcache.TierHighQuality {
		rearm := sl.rearmHighQuality
		sl.rearmHighQuality = false
		if rearm && sl.index == s.current {
			// The fallback thumbnail failed fast; move straight on to the
			// next high-quality attempt.
			s.requestImageLocked(sl, assetcache.TierHighQuality)
		}
		s.mu.Unlock()
		s.log.Debug("thumbnail fetch failed",
			slog.Int("index", req.Ref.Index), slog.Any("error", err))
		return
	}

	fetchErr := &assetcache.FetchError{Ref: req.Ref, Tier: req.Tier, Err: err}
	s.resolveFailedAttemptLocked(sl, fetchErr)
	retries := sl.retryCount
	s.mu.Unlock()

	s.log.Debug("high quality fetch failed",
		slog.Int("index", req.Ref.Index),
		slog.Int("retry_count", retries),
		slog.Any("error", err))
}

// prefetchMetadata issues the best-effort, out-of-band metadata fetch that
// follows every successful image load. It goes through the read-through
// metadata cache when one is configured and never blocks or fails the image
// result.
func (s *SessionCache) prefetchMetadata(ref assetcache.AssetRef) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.wg.Add(1)
	s.mu.Unlock()

	go func() {
		defer s.wg.Done()
		ctx, cancel := context.WithTimeout(s.ctx, metadataPrefetchTimeout)
		defer cancel()

		var err error
		if s.metadata != nil {
			key := s.keys.SerializeKey("FetchMetadata", s.seq.CollectionID(), ref.ID)
			_, err = assetcache.GetOrFetch(ctx, s.metadata, key, func(ctx context.Context) (assetcache.AssetMetadata, error) {
				return s.provider.FetchMetadata(ctx, ref)
			})
		} else {
			_, err = s.provider.FetchMetadata(ctx, ref)
		}
		if err != nil {
			s.log.Debug("metadata prefetch failed",
				slog.String("asset", ref.ID), slog.Any("error", err))
		}
	}()
}

// targetSize maps a tier to its configured pixel size.
func (s *SessionCache) targetSize(tier assetcache.QualityTier) assetcache.Size {
	if tier == assetcache.TierHighQuality {
		return s.cfg.HighQualitySize
	}
	return s.cfg.ThumbnailSize
}

// normalizeImage converts provider results to the RGBA color space, the one
// transform this cache performs.
func normalizeImage(img image.Image) image.Image {
	if img == nil {
		return nil
	}
	if rgba, ok := img.(*image.RGBA); ok {
		return rgba
	}
	b := img.Bounds()
	rgba := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(rgba, rgba.Bounds(), img, b.Min, draw.Src)
	return rgba
}

// placeholderImage synthesizes the neutral image used when a slot is forced
// fallback-ready with nothing resident.
func placeholderImage(size assetcache.Size) image.Image {
	rgba := image.NewRGBA(image.Rect(0, 0, size.Width, size.Height))
	draw.Draw(rgba, rgba.Bounds(), image.NewUniform(color.RGBA{R: 0xE0, G: 0xE0, B: 0xE0, A: 0xFF}), image.Point{}, draw.Src)
	return rgba
}
