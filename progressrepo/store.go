package progressrepo

import (
	"context"
	"fmt"
	"time"

	repository "github.com/goliatone/go-repository-bun"

	"github.com/goliatone/go-asset-cache/assetcache"
)

// Interface assertion to ensure Store implements the persistence port.
var _ assetcache.ProgressStore = (*Store)(nil)

// BrowseProgress is the persisted last-viewed position for one collection.
type BrowseProgress struct {
	ID           string `json:"id" bun:"id,pk"`
	CollectionID string `json:"collection_id" bun:"collection_id"`
	LastIndex    int    `json:"last_index" bun:"last_index"`
	UpdatedTs    int64  `json:"updated_ts" bun:"updated_ts"`
}

// Store adapts a go-repository-bun repository to the assetcache.ProgressStore
// port. One row per collection, keyed by collection ID, upserted on every
// save.
type Store struct {
	repo repository.Repository[BrowseProgress]
	now  func() time.Time
}

// New creates a Store over the provided repository.
func New(repo repository.Repository[BrowseProgress]) *Store {
	return &Store{repo: repo, now: time.Now}
}

// LoadLastIndex returns the stored index for the collection. A missing row
// surfaces as an error; callers treat any error as "start from the
// beginning".
func (s *Store) LoadLastIndex(ctx context.Context, collectionID string) (int, error) {
	rec, err := s.repo.GetByID(ctx, collectionID)
	if err != nil {
		return 0, fmt.Errorf("progressrepo: load last index for %q: %w", collectionID, err)
	}
	return rec.LastIndex, nil
}

// SaveLastIndex upserts the stored index for the collection.
func (s *Store) SaveLastIndex(ctx context.Context, collectionID string, index int) error {
	_, err := s.repo.Upsert(ctx, BrowseProgress{
		ID:           collectionID,
		CollectionID: collectionID,
		LastIndex:    index,
		UpdatedTs:    s.now().Unix(),
	})
	if err != nil {
		return fmt.Errorf("progressrepo: save last index for %q: %w", collectionID, err)
	}
	return nil
}
