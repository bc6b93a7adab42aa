package assetcache

import (
	"errors"
	"time"

	"github.com/goliatone/go-asset-cache/internal/cacheinfra"
)

// Config exposes the tuning knobs of a browsing session cache.
type Config struct {
	// WindowRadius is the number of indices retained on each side of the
	// current position. Resident decoded images are O(window), never
	// O(sequence).
	WindowRadius int

	// HighQualityLookahead is how many slots starting at the current index
	// are upgraded to high quality (clamped to window and sequence bounds).
	HighQualityLookahead int

	// MaxRetries caps timeout-driven retry cycles per slot before the
	// current index is forced into the fallback-ready terminal state.
	MaxRetries int

	// HighQualityTimeout is the deadline armed around every high-quality
	// fetch.
	HighQualityTimeout time.Duration

	// GraceInterval is the secondary sub-timeout after which a degraded
	// intermediate result from the provider is committed instead of waiting
	// for the full deadline.
	GraceInterval time.Duration

	// MaxConcurrentFetches bounds simultaneous in-flight provider fetches so
	// the cache does not saturate a rate-limited backend.
	MaxConcurrentFetches int

	// ThumbnailSize and HighQualitySize are the target pixel sizes per tier.
	ThumbnailSize   Size
	HighQualitySize Size

	// Metadata configures the read-through cache backing the best-effort
	// metadata prefetch. Nil disables metadata caching (prefetches go
	// straight to the provider).
	Metadata *MetadataConfig
}

// MetadataConfig mirrors the underlying metadata cache options.
type MetadataConfig struct {
	Capacity             int
	NumShards            int
	TTL                  time.Duration
	EvictionPercentage   int
	EarlyRefresh         *EarlyRefreshConfig
	MissingRecordStorage bool
	EvictionInterval     time.Duration
}

// EarlyRefreshConfig mirrors the underlying sturdyc early refresh options.
type EarlyRefreshConfig struct {
	MinAsyncRefreshTime time.Duration
	MaxAsyncRefreshTime time.Duration
	SyncRefreshTime     time.Duration
	RetryBaseDelay      time.Duration
}

// DefaultConfig returns a Config populated with sensible defaults: a window
// radius of 5, a lookahead of 5, 3 retries around a 5s deadline with a 1.5s
// grace interval, and at most 4 concurrent fetches.
func DefaultConfig() Config {
	return Config{
		WindowRadius:         5,
		HighQualityLookahead: 5,
		MaxRetries:           3,
		HighQualityTimeout:   5 * time.Second,
		GraceInterval:        1500 * time.Millisecond,
		MaxConcurrentFetches: 4,
		ThumbnailSize:        Size{Width: 320, Height: 320},
		HighQualitySize:      Size{Width: 1600, Height: 1600},
		Metadata:             metadataFromInternal(cacheinfra.DefaultConfig()),
	}
}

// Validate checks whether the configuration values are valid.
func (c Config) Validate() error {
	if c.WindowRadius <= 0 {
		return &ConfigError{Field: "WindowRadius", Message: "must be greater than 0"}
	}
	if c.HighQualityLookahead <= 0 {
		return &ConfigError{Field: "HighQualityLookahead", Message: "must be greater than 0"}
	}
	if c.MaxRetries <= 0 {
		return &ConfigError{Field: "MaxRetries", Message: "must be greater than 0"}
	}
	if c.HighQualityTimeout <= 0 {
		return &ConfigError{Field: "HighQualityTimeout", Message: "must be greater than 0"}
	}
	if c.GraceInterval <= 0 || c.GraceInterval >= c.HighQualityTimeout {
		return &ConfigError{Field: "GraceInterval", Message: "must be greater than 0 and below HighQualityTimeout"}
	}
	if c.MaxConcurrentFetches <= 0 {
		return &ConfigError{Field: "MaxConcurrentFetches", Message: "must be greater than 0"}
	}
	if c.ThumbnailSize.Width <= 0 || c.ThumbnailSize.Height <= 0 {
		return &ConfigError{Field: "ThumbnailSize", Message: "dimensions must be greater than 0"}
	}
	if c.HighQualitySize.Width <= 0 || c.HighQualitySize.Height <= 0 {
		return &ConfigError{Field: "HighQualitySize", Message: "dimensions must be greater than 0"}
	}
	if c.Metadata != nil {
		if err := c.Metadata.toInternal().Validate(); err != nil {
			// Re-wrap so callers match on this package's ConfigError; the
			// underlying type lives in an internal package they cannot name.
			var infraErr *cacheinfra.ConfigError
			if errors.As(err, &infraErr) {
				return &ConfigError{Field: "Metadata." + infraErr.Field, Message: infraErr.Message}
			}
			return err
		}
	}
	return nil
}

// NewMetadataCacheService constructs the default metadata cache backend for
// this configuration, or nil when metadata caching is disabled.
func NewMetadataCacheService(cfg Config) (CacheService, error) {
	if cfg.Metadata == nil {
		return nil, nil
	}
	return cacheinfra.NewSturdycService(cfg.Metadata.toInternal())
}

func (m *MetadataConfig) toInternal() cacheinfra.Config {
	var early *cacheinfra.EarlyRefreshConfig
	if m.EarlyRefresh != nil {
		early = &cacheinfra.EarlyRefreshConfig{
			MinAsyncRefreshTime: m.EarlyRefresh.MinAsyncRefreshTime,
			MaxAsyncRefreshTime: m.EarlyRefresh.MaxAsyncRefreshTime,
			SyncRefreshTime:     m.EarlyRefresh.SyncRefreshTime,
			RetryBaseDelay:      m.EarlyRefresh.RetryBaseDelay,
		}
	}

	return cacheinfra.Config{
		Capacity:             m.Capacity,
		NumShards:            m.NumShards,
		TTL:                  m.TTL,
		EvictionPercentage:   m.EvictionPercentage,
		EarlyRefresh:         early,
		MissingRecordStorage: m.MissingRecordStorage,
		EvictionInterval:     m.EvictionInterval,
	}
}

func metadataFromInternal(cfg cacheinfra.Config) *MetadataConfig {
	var early *EarlyRefreshConfig
	if cfg.EarlyRefresh != nil {
		early = &EarlyRefreshConfig{
			MinAsyncRefreshTime: cfg.EarlyRefresh.MinAsyncRefreshTime,
			MaxAsyncRefreshTime: cfg.EarlyRefresh.MaxAsyncRefreshTime,
			SyncRefreshTime:     cfg.EarlyRefresh.SyncRefreshTime,
			RetryBaseDelay:      cfg.EarlyRefresh.RetryBaseDelay,
		}
	}

	return &MetadataConfig{
		Capacity:             cfg.Capacity,
		NumShards:            cfg.NumShards,
		TTL:                  cfg.TTL,
		EvictionPercentage:   cfg.EvictionPercentage,
		EarlyRefresh:         early,
		MissingRecordStorage: cfg.MissingRecordStorage,
		EvictionInterval:     cfg.EvictionInterval,
	}
}
