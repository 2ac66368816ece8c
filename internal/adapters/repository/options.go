// Package repository defines the rating store interface and errors.
package repository

// MemStoreOption applies a configuration option to the MemStore.
type MemStoreOption func(*MemStore)

// WithShardCount sets the number of shards the ratings are spread over.
func WithShardCount(count int) MemStoreOption {
	return func(s *MemStore) {
		if count > 0 {
			s.shardCount = count
		}
	}
}
