package alerts

import (
	"context"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

// DefaultTTL keeps alert state a little longer than the longest month.
const DefaultTTL = 35 * 24 * time.Hour

const memoryStoreSize = 4096

// MemoryStore is a Store that keeps alert state in memory. Entries expire
// after the TTL and are lost on restart.
type MemoryStore struct {
	cache *expirable.LRU[string, int]
}

// NewMemoryStore creates a MemoryStore. A ttl of zero uses DefaultTTL.
func NewMemoryStore(ttl time.Duration) *MemoryStore {
	if ttl <= 0 {
		ttl = DefaultTTL
	}

	return &MemoryStore{
		cache: expirable.NewLRU[string, int](memoryStoreSize, nil, ttl),
	}
}

func (s *MemoryStore) LastPercentage(_ context.Context, key Key) (int, error) {
	pct, _ := s.cache.Get(key.String())
	return pct, nil
}

func (s *MemoryStore) Record(_ context.Context, key Key, percentage int) error {
	s.cache.Add(key.String(), percentage)
	return nil
}

// Len returns the number of unexpired entries.
func (s *MemoryStore) Len() int {
	return s.cache.Len()
}
