package swipecache

import (
	"context"
	"errors"
	"image"
	"testing"
	"time"

	"github.com/goliatone/go-asset-cache/assetcache"
	"github.com/goliatone/go-asset-cache/pkg/testsupport"
)

func smallConfig() assetcache.Config {
	cfg := testConfig()
	cfg.WindowRadius = 1
	cfg.HighQualityLookahead = 1
	return cfg
}

func TestSingleFlightPerSlot(t *testing.T) {
	provider := newFakeProvider()
	provider.onImage = neverDelivers()

	s, err := New(smallConfig(), newSequence(t, 3), provider, Dependencies{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer s.Shutdown()

	// Construction issues thumbnails for [0,1] and high quality for 0; the
	// high quality request supersedes the thumbnail for the same slot.
	issued := s.Stats().FetchesIssued
	if issued != 3 {
		t.Fatalf("FetchesIssued = %d, want 3", issued)
	}

	snap := s.Query(0)
	if !snap.Fetching || snap.State != assetcache.SlotHighQualityPending {
		t.Errorf("slot 0 should have one high quality fetch in flight, got %+v", snap)
	}

	// Re-entering the same window joins the in-flight fetches: the thumbnail
	// pass finds a higher tier in flight, the high quality pass finds itself.
	for i := 0; i < 3; i++ {
		if err := s.SetCurrent(0); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	testsupport.Never(t, 50*time.Millisecond, func() bool {
		return s.Stats().FetchesIssued != issued
	}, "re-scheduling must join in-flight fetches, not duplicate them")
}

func TestProgressiveDelivery(t *testing.T) {
	cfg := smallConfig()
	cfg.GraceInterval = 200 * time.Millisecond

	provider := newFakeProvider()
	provider.onImage = func(ctx context.Context, req assetcache.ImageRequest) (<-chan assetcache.FetchUpdate, error) {
		if req.Tier != assetcache.TierHighQuality {
			return instantSuccess(req), nil
		}
		ch := make(chan assetcache.FetchUpdate, 2)
		go func() {
			defer close(ch)
			ch <- assetcache.FetchUpdate{
				Image:    testsupport.NewTestImage(64, 64, image.White),
				Degraded: true,
			}
			select {
			case <-ctx.Done():
			case <-time.After(600 * time.Millisecond):
				ch <- assetcache.FetchUpdate{Image: testsupport.NewTestImage(256, 256, image.Black)}
			}
		}()
		return ch, nil
	}

	s, err := New(cfg, newSequence(t, 1), provider, Dependencies{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer s.Shutdown()

	// The degraded frame arrives immediately but stays buffered until the
	// grace interval elapses.
	testsupport.Never(t, 100*time.Millisecond, func() bool {
		return s.Query(0).Image != nil
	}, "degraded frame must not surface before the grace interval")

	testsupport.Eventually(t, 2*time.Second, func() bool {
		snap := s.Query(0)
		return snap.Image != nil && snap.Quality == assetcache.TierThumbnail && snap.Fetching
	}, "degraded preview should surface after the grace interval with the fetch still in flight")

	testsupport.Eventually(t, 2*time.Second, func() bool { return s.IsReady(0) },
		"final image should upgrade the slot to high quality")

	stats := s.Stats()
	if stats.FetchesCompleted != 1 {
		t.Errorf("FetchesCompleted = %d, want 1 (previews are not completions)", stats.FetchesCompleted)
	}
}

func TestQualityNeverDowngrades(t *testing.T) {
	provider := newFakeProvider()
	provider.onImage = func(ctx context.Context, req assetcache.ImageRequest) (<-chan assetcache.FetchUpdate, error) {
		if req.Tier == assetcache.TierHighQuality {
			return instantSuccess(req), nil
		}
		return successAfter(50 * time.Millisecond)(ctx, req)
	}

	s, err := New(smallConfig(), newSequence(t, 2), provider, Dependencies{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer s.Shutdown()

	testsupport.Eventually(t, 2*time.Second, func() bool { return s.IsReady(0) },
		"current index should become ready")

	// The slow thumbnail was cancelled when high quality superseded it; no
	// late result may pull the slot back down.
	testsupport.Never(t, 150*time.Millisecond, func() bool {
		return s.Query(0).Quality != assetcache.TierHighQuality
	}, "slot quality must never drop below high quality once reached")
}

func TestNormalizesResultsToRGBA(t *testing.T) {
	provider := newFakeProvider()
	provider.onImage = func(ctx context.Context, req assetcache.ImageRequest) (<-chan assetcache.FetchUpdate, error) {
		ch := make(chan assetcache.FetchUpdate, 1)
		ch <- assetcache.FetchUpdate{Image: testsupport.NewGrayImage(32, 32)}
		close(ch)
		return ch, nil
	}

	s, err := New(smallConfig(), newSequence(t, 1), provider, Dependencies{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer s.Shutdown()

	testsupport.Eventually(t, 2*time.Second, func() bool { return s.IsReady(0) },
		"slot should become ready")

	if _, ok := s.Query(0).Image.(*image.RGBA); !ok {
		t.Errorf("expected *image.RGBA after normalization, got %T", s.Query(0).Image)
	}
}

func TestMetadataPrefetchThroughCache(t *testing.T) {
	provider := newFakeProvider()
	metadata := newFakeCacheService()

	s, err := New(smallConfig(), newSequence(t, 1), provider, Dependencies{Metadata: metadata})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer s.Shutdown()

	testsupport.Eventually(t, 2*time.Second, func() bool { return s.IsReady(0) },
		"slot should become ready")
	testsupport.Eventually(t, 2*time.Second, func() bool { return provider.metadataCount() >= 1 },
		"a successful image load should trigger a metadata prefetch")

	metadata.mu.Lock()
	defer metadata.mu.Unlock()
	want := "fetch_metadata::col-test::asset-0"
	found := false
	for _, key := range metadata.keys {
		if key == want {
			found = true
		}
	}
	if !found {
		t.Errorf("metadata cache keys %v missing %q", metadata.keys, want)
	}
}

func TestMetadataPrefetchWithoutCacheGoesDirect(t *testing.T) {
	provider := newFakeProvider()

	s, err := New(smallConfig(), newSequence(t, 1), provider, Dependencies{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer s.Shutdown()

	testsupport.Eventually(t, 2*time.Second, func() bool { return provider.metadataCount() >= 1 },
		"metadata should be fetched from the provider when no cache is configured")
}

func TestMetadataFailureDoesNotAffectImages(t *testing.T) {
	provider := newFakeProvider()
	provider.metadataErr = errors.New("metadata backend down")

	s, err := New(smallConfig(), newSequence(t, 1), provider, Dependencies{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer s.Shutdown()

	testsupport.Eventually(t, 2*time.Second, func() bool { return s.IsReady(0) },
		"image readiness must not depend on metadata")
}

func TestThumbnailFailureIsSwallowed(t *testing.T) {
	provider := newFakeProvider()
	provider.onImage = func(ctx context.Context, req assetcache.ImageRequest) (<-chan assetcache.FetchUpdate, error) {
		if req.Tier == assetcache.TierHighQuality {
			return instantSuccess(req), nil
		}
		ch := make(chan assetcache.FetchUpdate, 1)
		ch <- assetcache.FetchUpdate{Err: errors.New("thumbnail backend down")}
		close(ch)
		return ch, nil
	}
	notifier := &testsupport.RecordingNotifier{}

	s, err := New(smallConfig(), newSequence(t, 2), provider, Dependencies{Notifier: notifier})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer s.Shutdown()

	// Index 1 is window-only: its thumbnail fails and nothing retries it.
	testsupport.Eventually(t, 2*time.Second, func() bool {
		return s.Stats().FetchesFailed >= 1
	}, "thumbnail failure should be recorded")
	testsupport.Never(t, 100*time.Millisecond, func() bool {
		return provider.requestCountFor(1, assetcache.TierThumbnail) > 1
	}, "failed thumbnails are not retried")

	snap := s.Query(1)
	if snap.State != assetcache.SlotEmpty || snap.RetryCount != 0 {
		t.Errorf("failed thumbnail slot should stay empty with no retry debt, got %+v", snap)
	}
	if warns := notifier.Warnings(); len(warns) != 0 {
		t.Errorf("thumbnail failures must not surface to the user, got %v", warns)
	}

	// The current index still becomes ready through its high quality fetch.
	testsupport.Eventually(t, 2*time.Second, func() bool { return s.IsReady(0) },
		"current index readiness is unaffected")
}
