// Package repository defines the rating store interface and errors.
//
// The store is the engine's persistence boundary: callers upsert rating
// snapshots here and sync them to whatever durable storage the
// surrounding system uses.
package repository

import (
	"context"

	"github.com/bodi/pairrank/internal/domain/model"
)

// Entry is a ranked rating row.
type Entry struct {
	Rank   int // 1 = best; 0 for unranked (uncompared) items
	Rating model.Rating
}

// Store provides read/write access to the current rating state.
type Store interface {
	// Upsert inserts or replaces the ratings for the given items.
	Upsert(ctx context.Context, ratings ...model.Rating) error

	// Get returns the stored rating for an item.
	// Returns ErrNotFound if the item is unknown.
	Get(ctx context.Context, itemID string) (model.Rating, error)

	// Rank returns the entry for an item including its rank position.
	// Uncompared items are stored but carry rank 0.
	Rank(ctx context.Context, itemID string) (Entry, error)

	// TopN returns the best n compared entries ordered by score desc.
	TopN(ctx context.Context, n int) ([]Entry, error)

	// Snapshot returns every stored rating keyed by item id.
	Snapshot(ctx context.Context) map[string]model.Rating

	// Count returns the number of items tracked.
	Count(ctx context.Context) int
}
