package assetcache

import "image"

// AssetRef is a stable, opaque reference to one media item in a sequence.
// It is immutable; Index is the item's position within its AssetSequence.
type AssetRef struct {
	ID    string
	Index int
}

// QualityTier identifies the fidelity of a fetched image. The zero value
// means no image has been resolved for a slot yet. Tiers are ordered:
// TierHighQuality strictly dominates TierThumbnail.
type QualityTier int

const (
	// TierNone is the zero tier: no image resolved.
	TierNone QualityTier = iota

	// TierThumbnail is the fast, low-fidelity tier used to make a window
	// minimally renderable.
	TierThumbnail

	// TierHighQuality is the full-fidelity tier required for interaction
	// readiness.
	TierHighQuality
)

// String implements fmt.Stringer for logging and cache keys.
func (t QualityTier) String() string {
	switch t {
	case TierThumbnail:
		return "thumbnail"
	case TierHighQuality:
		return "high_quality"
	default:
		return "none"
	}
}

// Size is a target pixel size for a fetch request.
type Size struct {
	Width  int
	Height int
}

// SlotState is the lifecycle state of a cache slot, derived from its fields.
type SlotState int

const (
	// SlotEmpty: no image and no in-flight work (also reported for
	// untracked indices outside the window).
	SlotEmpty SlotState = iota

	// SlotThumbnailPending: a thumbnail fetch is in flight and no image has
	// resolved yet.
	SlotThumbnailPending

	// SlotThumbnailReady: a thumbnail image is resident, no fetch in flight.
	SlotThumbnailReady

	// SlotHighQualityPending: a high-quality fetch is in flight (a thumbnail
	// may already be resident).
	SlotHighQualityPending

	// SlotHighQualityReady: a high-quality image is resident. Terminal while
	// the slot stays inside the window.
	SlotHighQualityReady

	// SlotFallbackReady: retry budget exhausted on the current index; the
	// slot was forced usable with whatever image it had (or a synthesized
	// placeholder). Terminal while resident.
	SlotFallbackReady
)

// String implements fmt.Stringer.
func (s SlotState) String() string {
	switch s {
	case SlotThumbnailPending:
		return "thumbnail_pending"
	case SlotThumbnailReady:
		return "thumbnail_ready"
	case SlotHighQualityPending:
		return "high_quality_pending"
	case SlotHighQualityReady:
		return "high_quality_ready"
	case SlotFallbackReady:
		return "fallback_ready"
	default:
		return "empty"
	}
}

// SlotSnapshot is a point-in-time copy of one slot's observable state.
// Snapshots are values; mutating one has no effect on the cache.
type SlotSnapshot struct {
	Index      int
	Image      image.Image
	Quality    QualityTier
	RetryCount int
	State      SlotState
	Fetching   bool
}

// AssetMetadata carries provider-side metadata for one asset. It is fetched
// out-of-band after a successful image load and cached read-through; it never
// blocks or fails an image result.
type AssetMetadata struct {
	ID       string `json:"id"`
	Title    string `json:"title,omitempty"`
	MimeType string `json:"mime_type,omitempty"`
	Bytes    int64  `json:"bytes,omitempty"`
	Width    int    `json:"width,omitempty"`
	Height   int    `json:"height,omitempty"`
}

// ImageRequest describes one fetch issued to the MediaProvider.
type ImageRequest struct {
	// RequestID uniquely identifies this fetch attempt, for provider-side
	// logging and deduplication.
	RequestID string

	Ref        AssetRef
	Tier       QualityTier
	TargetSize Size
}

// FetchUpdate is one message on a provider fetch stream.
//
// Protocol: zero or more updates with Degraded=true (progressively better
// previews) may precede exactly one terminal update, which carries either a
// final Image (Degraded=false) or a non-nil Err. The provider closes the
// channel after the terminal update. A channel closed without a terminal
// update is treated as a failed fetch.
type FetchUpdate struct {
	Image    image.Image
	Degraded bool
	Err      error
}
