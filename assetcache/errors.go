package assetcache

import (
	"errors"
	"fmt"
)

// Sentinel errors guarded at the cache API boundary. Nothing in this module
// is fatal: provider failures are recoverable and cancellations are silent.
var (
	// ErrOutOfRange is returned when an index falls outside the asset
	// sequence. The operation is a no-op.
	ErrOutOfRange = errors.New("assetcache: index out of range")

	// ErrCacheClosed is returned by operations invoked after Shutdown.
	ErrCacheClosed = errors.New("assetcache: session cache closed")

	// ErrFetchTimeout marks a high-quality fetch that missed its deadline.
	// It drives the fallback tier and the retry counter.
	ErrFetchTimeout = errors.New("assetcache: image fetch timed out")

	// ErrFetchClosed marks a provider stream that closed without delivering
	// a terminal update.
	ErrFetchClosed = errors.New("assetcache: provider stream closed without result")
)

// FetchError wraps a provider failure with the request that produced it.
type FetchError struct {
	Ref  AssetRef
	Tier QualityTier
	Err  error
}

// Error implements the error interface.
func (e *FetchError) Error() string {
	return fmt.Sprintf("assetcache: fetch %s for asset %q (index %d): %v", e.Tier, e.Ref.ID, e.Ref.Index, e.Err)
}

// Unwrap exposes the underlying provider error for errors.Is/As.
func (e *FetchError) Unwrap() error {
	return e.Err
}

// ConfigError represents a configuration validation error.
type ConfigError struct {
	Field   string
	Message string
}

// Error implements the error interface.
func (e *ConfigError) Error() string {
	return "assetcache: config error in field " + e.Field + ": " + e.Message
}

// TypeMismatchError is returned by GetOrFetch when a cached value does not
// have the requested type.
type TypeMismatchError struct {
	Key string
}

// Error implements the error interface.
func (e *TypeMismatchError) Error() string {
	return fmt.Sprintf("assetcache: cached value for key %q has unexpected type", e.Key)
}
