package memory

import (
	"context"
	"sync"

	"solana-pool-crawler/internal/domain"
	"solana-pool-crawler/internal/storage"
)

// PoolStore is an in-memory implementation of storage.PoolStore.
type PoolStore struct {
	mu    sync.RWMutex
	data  map[string][]*domain.Pool
	known map[string]map[string]struct{}
}

// NewPoolStore creates a new in-memory pool store.
func NewPoolStore() *PoolStore {
	return &PoolStore{
		data:  make(map[string][]*domain.Pool),
		known: make(map[string]map[string]struct{}),
	}
}

// Insert adds a new pool. Returns ErrDuplicateKey if the pool ID exists.
func (s *PoolStore) Insert(_ context.Context, pool *domain.Pool) error {
	if pool == nil || pool.PoolID == "" || pool.SymbolA == "" || pool.SymbolB == "" {
		return storage.ErrInvalidInput
	}

	pair := pool.PairKey()

	s.mu.Lock()
	defer s.mu.Unlock()

	set, ok := s.known[pair]
	if !ok {
		set = make(map[string]struct{})
		s.known[pair] = set
	}
	if _, exists := set[pool.PoolID]; exists {
		return storage.ErrDuplicateKey
	}

	copy := *pool
	s.data[pair] = append(s.data[pair], &copy)
	set[pool.PoolID] = struct{}{}
	return nil
}

// List retrieves all pools of a destination in insertion order.
func (s *PoolStore) List(_ context.Context, pair string) ([]*domain.Pool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	pools := make([]*domain.Pool, 0, len(s.data[pair]))
	for _, pool := range s.data[pair] {
		copy := *pool
		pools = append(pools, &copy)
	}
	return pools, nil
}

var _ storage.PoolStore = (*PoolStore)(nil)
