package memory

import (
	"context"
	"sync"

	"solana-pool-crawler/internal/domain"
	"solana-pool-crawler/internal/storage"
)

// BalanceDeltaStore is an in-memory implementation of storage.BalanceDeltaStore.
type BalanceDeltaStore struct {
	mu    sync.RWMutex
	data  map[string][]*domain.BalanceDelta
	known map[string]map[string]struct{}
}

// NewBalanceDeltaStore creates a new in-memory balance-delta store.
func NewBalanceDeltaStore() *BalanceDeltaStore {
	return &BalanceDeltaStore{
		data:  make(map[string][]*domain.BalanceDelta),
		known: make(map[string]map[string]struct{}),
	}
}

// Insert adds a new record. Returns ErrDuplicateKey if the signature exists.
func (s *BalanceDeltaStore) Insert(_ context.Context, pair string, rec *domain.BalanceDelta) error {
	if rec == nil || rec.Signature == "" || pair == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	set, ok := s.known[pair]
	if !ok {
		set = make(map[string]struct{})
		s.known[pair] = set
	}
	if _, exists := set[rec.Signature]; exists {
		return storage.ErrDuplicateKey
	}

	copy := *rec
	s.data[pair] = append(s.data[pair], &copy)
	set[rec.Signature] = struct{}{}
	return nil
}

// Exists reports whether the signature is already present in the destination.
func (s *BalanceDeltaStore) Exists(_ context.Context, pair, signature string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, exists := s.known[pair][signature]
	return exists, nil
}

// List retrieves all records of a destination in insertion order.
func (s *BalanceDeltaStore) List(_ context.Context, pair string) ([]*domain.BalanceDelta, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	records := make([]*domain.BalanceDelta, 0, len(s.data[pair]))
	for _, rec := range s.data[pair] {
		copy := *rec
		records = append(records, &copy)
	}
	return records, nil
}

var _ storage.BalanceDeltaStore = (*BalanceDeltaStore)(nil)
