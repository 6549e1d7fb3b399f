package memory

import (
	"context"
	"sync"

	"solana-pool-crawler/internal/domain"
	"solana-pool-crawler/internal/storage"
)

// SignatureStore is an in-memory implementation of storage.SignatureStore.
type SignatureStore struct {
	mu    sync.RWMutex
	data  map[string][]*domain.SignatureRecord // destination -> insertion order
	known map[string]map[string]struct{}       // destination -> signature set
}

// NewSignatureStore creates a new in-memory signature store.
func NewSignatureStore() *SignatureStore {
	return &SignatureStore{
		data:  make(map[string][]*domain.SignatureRecord),
		known: make(map[string]map[string]struct{}),
	}
}

// Insert adds a new record. Returns ErrDuplicateKey if the signature exists.
func (s *SignatureStore) Insert(_ context.Context, pair string, rec *domain.SignatureRecord) error {
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
func (s *SignatureStore) Exists(_ context.Context, pair, signature string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, exists := s.known[pair][signature]
	return exists, nil
}

// List retrieves all records of a destination in insertion order.
func (s *SignatureStore) List(_ context.Context, pair string) ([]*domain.SignatureRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	records := make([]*domain.SignatureRecord, 0, len(s.data[pair]))
	for _, rec := range s.data[pair] {
		copy := *rec
		records = append(records, &copy)
	}
	return records, nil
}

var _ storage.SignatureStore = (*SignatureStore)(nil)
