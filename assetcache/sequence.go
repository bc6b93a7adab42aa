package assetcache

import "errors"

// AssetSequence is an immutable, ordered list of asset references for one
// collection. A SessionCache serves exactly one sequence at a time.
type AssetSequence struct {
	collectionID string
	refs         []AssetRef
}

// NewAssetSequence builds a sequence from ordered asset IDs. The slice is
// copied; indices are assigned from position. An empty collection ID is
// rejected, an empty ID list is allowed (a zero-count sequence).
func NewAssetSequence(collectionID string, assetIDs []string) (*AssetSequence, error) {
	if collectionID == "" {
		return nil, errors.New("assetcache: collection ID must not be empty")
	}
	refs := make([]AssetRef, len(assetIDs))
	for i, id := range assetIDs {
		if id == "" {
			return nil, errors.New("assetcache: asset ID must not be empty")
		}
		refs[i] = AssetRef{ID: id, Index: i}
	}
	return &AssetSequence{collectionID: collectionID, refs: refs}, nil
}

// CollectionID returns the identifier of the collection this sequence belongs to.
func (s *AssetSequence) CollectionID() string {
	return s.collectionID
}

// Count returns the number of assets in the sequence.
func (s *AssetSequence) Count() int {
	return len(s.refs)
}

// At returns the reference at index i, or false when i is out of range.
func (s *AssetSequence) At(i int) (AssetRef, bool) {
	if i < 0 || i >= len(s.refs) {
		return AssetRef{}, false
	}
	return s.refs[i], true
}
