package repository

import (
	"context"
	"hash/fnv"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/bodi/pairrank/internal/domain/model"
	"github.com/bodi/pairrank/pkg/metrics"
)

// In-memory, sharded Store implementation.
//
// Writes land in per-shard maps; reads that need ordering go through a
// lazily rebuilt sorted snapshot. Ordering: score DESC, then item id ASC
// so equal scores rank deterministically.

const defaultShardCount = 8

type shard struct {
	mu      sync.RWMutex
	ratings map[string]model.Rating
}

// rankSnapshot is an immutable ranking view shared by readers.
type rankSnapshot struct {
	entries []Entry        // compared items, best first
	rankOf  map[string]int // item id -> 1-based rank
}

// MemStore implements Store with sharded maps and an atomic snapshot.
type MemStore struct {
	shards     []*shard
	shardCount int

	snap  atomic.Pointer[rankSnapshot]
	dirty atomic.Bool

	// rebuildMu serializes snapshot rebuilds so concurrent readers do
	// not duplicate the sorting work.
	rebuildMu sync.Mutex
}

// NewMemStore creates an in-memory rating store.
func NewMemStore(opts ...MemStoreOption) *MemStore {
	s := &MemStore{
		shardCount: defaultShardCount,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.shards = make([]*shard, s.shardCount)
	for i := range s.shards {
		s.shards[i] = &shard{ratings: make(map[string]model.Rating)}
	}
	s.snap.Store(&rankSnapshot{rankOf: map[string]int{}})
	return s
}

func (s *MemStore) shardFor(itemID string) *shard {
	h := fnv.New32a()
	_, _ = h.Write([]byte(itemID))
	return s.shards[h.Sum32()%uint32(s.shardCount)]
}

// Upsert inserts or replaces ratings.
func (s *MemStore) Upsert(ctx context.Context, ratings ...model.Rating) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	for _, r := range ratings {
		sh := s.shardFor(r.ItemID)
		sh.mu.Lock()
		sh.ratings[r.ItemID] = r
		sh.mu.Unlock()
	}
	if len(ratings) > 0 {
		s.dirty.Store(true)
	}
	return nil
}

// Get returns the stored rating for an item.
func (s *MemStore) Get(_ context.Context, itemID string) (model.Rating, error) {
	sh := s.shardFor(itemID)
	sh.mu.RLock()
	defer sh.mu.RUnlock()
	r, ok := sh.ratings[itemID]
	if !ok {
		return model.Rating{}, ErrNotFound
	}
	return r, nil
}

// Rank returns the ranked entry for an item. Items without comparisons
// are returned with rank 0.
func (s *MemStore) Rank(ctx context.Context, itemID string) (Entry, error) {
	r, err := s.Get(ctx, itemID)
	if err != nil {
		return Entry{}, err
	}
	snap := s.currentSnapshot()
	return Entry{Rank: snap.rankOf[itemID], Rating: r}, nil
}

// TopN returns the best n compared entries.
func (s *MemStore) TopN(_ context.Context, n int) ([]Entry, error) {
	if n <= 0 {
		return nil, ErrInvalidLimit
	}
	snap := s.currentSnapshot()
	if n > len(snap.entries) {
		n = len(snap.entries)
	}
	out := make([]Entry, n)
	copy(out, snap.entries[:n])
	return out, nil
}

// Snapshot returns every stored rating keyed by item id.
func (s *MemStore) Snapshot(_ context.Context) map[string]model.Rating {
	out := make(map[string]model.Rating, s.Count(context.Background()))
	for _, sh := range s.shards {
		sh.mu.RLock()
		for id, r := range sh.ratings {
			out[id] = r
		}
		sh.mu.RUnlock()
	}
	return out
}

// Count returns the number of items tracked.
func (s *MemStore) Count(_ context.Context) int {
	total := 0
	for _, sh := range s.shards {
		sh.mu.RLock()
		total += len(sh.ratings)
		sh.mu.RUnlock()
	}
	return total
}

// currentSnapshot returns the ranking view, rebuilding it if writes have
// landed since the last rebuild.
func (s *MemStore) currentSnapshot() *rankSnapshot {
	if !s.dirty.Load() {
		return s.snap.Load()
	}

	s.rebuildMu.Lock()
	defer s.rebuildMu.Unlock()
	// Re-check: another reader may have rebuilt while we waited.
	if !s.dirty.Load() {
		return s.snap.Load()
	}

	start := time.Now()
	s.dirty.Store(false)

	entries := make([]Entry, 0, s.Count(context.Background()))
	for _, sh := range s.shards {
		sh.mu.RLock()
		for _, r := range sh.ratings {
			if r.TotalComparisons > 0 {
				entries = append(entries, Entry{Rating: r})
			}
		}
		sh.mu.RUnlock()
	}

	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Rating.Score != entries[j].Rating.Score {
			return entries[i].Rating.Score > entries[j].Rating.Score
		}
		return entries[i].Rating.ItemID < entries[j].Rating.ItemID
	})

	rankOf := make(map[string]int, len(entries))
	for i := range entries {
		entries[i].Rank = i + 1
		rankOf[entries[i].Rating.ItemID] = i + 1
	}

	snap := &rankSnapshot{entries: entries, rankOf: rankOf}
	s.snap.Store(snap)

	metrics.RecordSnapshotRebuild(float64(time.Since(start).Milliseconds()))
	metrics.UpdateItemsTracked(s.Count(context.Background()))
	return snap
}
