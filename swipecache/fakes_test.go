package swipecache

import (
	"context"
	"image/color"
	"strconv"
	"sync"
	"time"

	"github.com/goliatone/go-asset-cache/assetcache"
	"github.com/goliatone/go-asset-cache/pkg/testsupport"
)

// fakeProvider is a scriptable MediaProvider. The default behavior delivers a
// final image immediately; tests override per-tier behavior through the hook
// fields. All bookkeeping is mutex-guarded because fetches run concurrently.
type fakeProvider struct {
	mu       sync.Mutex
	requests []assetcache.ImageRequest
	metaRefs []assetcache.AssetRef

	// onImage, when set, replaces the default instant-success behavior.
	onImage func(ctx context.Context, req assetcache.ImageRequest) (<-chan assetcache.FetchUpdate, error)

	// metadataErr, when set, fails every FetchMetadata call.
	metadataErr error
}

func newFakeProvider() *fakeProvider {
	return &fakeProvider{}
}

func (p *fakeProvider) FetchImage(ctx context.Context, req assetcache.ImageRequest) (<-chan assetcache.FetchUpdate, error) {
	p.mu.Lock()
	p.requests = append(p.requests, req)
	hook := p.onImage
	p.mu.Unlock()

	if hook != nil {
		return hook(ctx, req)
	}
	return instantSuccess(req), nil
}

func (p *fakeProvider) FetchMetadata(ctx context.Context, ref assetcache.AssetRef) (assetcache.AssetMetadata, error) {
	p.mu.Lock()
	p.metaRefs = append(p.metaRefs, ref)
	err := p.metadataErr
	p.mu.Unlock()

	if err != nil {
		return assetcache.AssetMetadata{}, err
	}
	return assetcache.AssetMetadata{ID: ref.ID, MimeType: "image/png"}, nil
}

// requestCount returns how many image fetches were issued, optionally filtered
// by tier. Pass assetcache.TierNone for all tiers.
func (p *fakeProvider) requestCount(tier assetcache.QualityTier) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	n := 0
	for _, req := range p.requests {
		if tier == assetcache.TierNone || req.Tier == tier {
			n++
		}
	}
	return n
}

// requestCountFor counts image fetches issued for one index at one tier.
func (p *fakeProvider) requestCountFor(index int, tier assetcache.QualityTier) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	n := 0
	for _, req := range p.requests {
		if req.Ref.Index == index && req.Tier == tier {
			n++
		}
	}
	return n
}

func (p *fakeProvider) metadataCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.metaRefs)
}

// instantSuccess delivers a final solid-color image and closes the stream.
func instantSuccess(req assetcache.ImageRequest) <-chan assetcache.FetchUpdate {
	ch := make(chan assetcache.FetchUpdate, 1)
	ch <- assetcache.FetchUpdate{Image: testsupport.NewTestImage(req.TargetSize.Width, req.TargetSize.Height, color.RGBA{R: 0x10, A: 0xFF})}
	close(ch)
	return ch
}

// successAfter delivers a final image after the given delay, honoring ctx.
func successAfter(delay time.Duration) func(ctx context.Context, req assetcache.ImageRequest) (<-chan assetcache.FetchUpdate, error) {
	return func(ctx context.Context, req assetcache.ImageRequest) (<-chan assetcache.FetchUpdate, error) {
		ch := make(chan assetcache.FetchUpdate, 1)
		go func() {
			defer close(ch)
			select {
			case <-ctx.Done():
			case <-time.After(delay):
				ch <- assetcache.FetchUpdate{Image: testsupport.NewTestImage(req.TargetSize.Width, req.TargetSize.Height, color.RGBA{G: 0x80, A: 0xFF})}
			}
		}()
		return ch, nil
	}
}

// neverDelivers blocks until ctx is cancelled and then closes the stream
// without a result.
func neverDelivers() func(ctx context.Context, req assetcache.ImageRequest) (<-chan assetcache.FetchUpdate, error) {
	return func(ctx context.Context, req assetcache.ImageRequest) (<-chan assetcache.FetchUpdate, error) {
		ch := make(chan assetcache.FetchUpdate)
		go func() {
			<-ctx.Done()
			close(ch)
		}()
		return ch, nil
	}
}

// fakeProgressStore is an in-memory ProgressStore with scriptable load results.
type fakeProgressStore struct {
	mu        sync.Mutex
	loadIndex int
	loadErr   error
	saved     []int
	saveErr   error
}

func (f *fakeProgressStore) LoadLastIndex(ctx context.Context, collectionID string) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.loadErr != nil {
		return 0, f.loadErr
	}
	return f.loadIndex, nil
}

func (f *fakeProgressStore) SaveLastIndex(ctx context.Context, collectionID string, index int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.saveErr != nil {
		return f.saveErr
	}
	f.saved = append(f.saved, index)
	return nil
}

func (f *fakeProgressStore) lastSaved() (int, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.saved) == 0 {
		return 0, false
	}
	return f.saved[len(f.saved)-1], true
}

// fakeCacheService records keys and delegates to the fetch function once per
// key, mirroring read-through semantics.
type fakeCacheService struct {
	mu     sync.Mutex
	values map[string]any
	keys   []string
}

func newFakeCacheService() *fakeCacheService {
	return &fakeCacheService{values: make(map[string]any)}
}

func (f *fakeCacheService) GetOrFetch(ctx context.Context, key string, fetchFn func(ctx context.Context) (any, error)) (any, error) {
	f.mu.Lock()
	f.keys = append(f.keys, key)
	if v, ok := f.values[key]; ok {
		f.mu.Unlock()
		return v, nil
	}
	f.mu.Unlock()

	v, err := fetchFn(ctx)
	if err != nil {
		return nil, err
	}

	f.mu.Lock()
	f.values[key] = v
	f.mu.Unlock()
	return v, nil
}

func (f *fakeCacheService) Delete(ctx context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.values, key)
	return nil
}

func (f *fakeCacheService) keyCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.keys)
}

// testConfig keeps the default geometry but disables metadata caching and
// leaves deadlines generous so unrelated tests never trip the retry machinery.
func testConfig() assetcache.Config {
	cfg := assetcache.DefaultConfig()
	cfg.HighQualityTimeout = 5 * time.Second
	cfg.GraceInterval = 50 * time.Millisecond
	cfg.Metadata = nil
	return cfg
}

// fastTimeoutConfig shrinks the deadline and grace interval so timeout and
// retry behavior runs in real time without slow tests.
func fastTimeoutConfig() assetcache.Config {
	cfg := testConfig()
	cfg.HighQualityTimeout = 40 * time.Millisecond
	cfg.GraceInterval = 10 * time.Millisecond
	return cfg
}

func newSequence(tb interface{ Fatalf(string, ...any) }, n int) *assetcache.AssetSequence {
	ids := make([]string, n)
	for i := range ids {
		ids[i] = "asset-" + strconv.Itoa(i)
	}
	seq, err := assetcache.NewAssetSequence("col-test", ids)
	if err != nil {
		tb.Fatalf("building sequence: %v", err)
	}
	return seq
}
