package di

import (
	"github.com/goliatone/go-asset-cache/assetcache"
	"github.com/goliatone/go-asset-cache/swipecache"
)

// Container provides dependency injection for the asset cache components.
// It manages singleton instances of the metadata cache service and key
// serializer, and provides a factory method for creating browsing sessions.
type Container struct {
	metadataCache assetcache.CacheService
	keySerializer assetcache.KeySerializer
	config        assetcache.Config
}

// NewContainer creates a new DI container with the provided configuration.
// It initializes the metadata cache service using the sturdyc adapter (when
// metadata caching is enabled) and sets up the default key serializer for
// consistent key generation.
func NewContainer(config assetcache.Config) (*Container, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	metadataCache, err := assetcache.NewMetadataCacheService(config)
	if err != nil {
		return nil, err
	}

	return &Container{
		metadataCache: metadataCache,
		keySerializer: assetcache.NewDefaultKeySerializer(),
		config:        config,
	}, nil
}

// NewContainerWithDefaults creates a new DI container using default
// configuration. This is a convenience constructor for typical use cases
// where custom configuration is not required.
func NewContainerWithDefaults() (*Container, error) {
	return NewContainer(assetcache.DefaultConfig())
}

// MetadataCache returns the singleton metadata cache service instance, or
// nil when metadata caching is disabled by configuration.
func (c *Container) MetadataCache() assetcache.CacheService {
	return c.metadataCache
}

// KeySerializer returns the singleton key serializer instance.
func (c *Container) KeySerializer() assetcache.KeySerializer {
	return c.keySerializer
}

// Config returns a copy of the configuration used by this container.
func (c *Container) Config() assetcache.Config {
	return c.config
}

// NewSessionCache creates a browsing session for the given sequence and
// provider, wiring in the container's metadata cache and key serializer
// unless the dependencies already carry their own.
func NewSessionCache(c *Container, seq *assetcache.AssetSequence, provider assetcache.MediaProvider, deps swipecache.Dependencies) (*swipecache.SessionCache, error) {
	if deps.Metadata == nil {
		deps.Metadata = c.metadataCache
	}
	if deps.Keys == nil {
		deps.Keys = c.keySerializer
	}
	return swipecache.New(c.config, seq, provider, deps)
}
