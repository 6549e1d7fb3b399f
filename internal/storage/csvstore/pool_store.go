package csvstore

import (
	"context"
	"path/filepath"

	"solana-pool-crawler/internal/domain"
	"solana-pool-crawler/internal/storage"
)

var poolHeader = []string{"PoolId", "MintA", "SymbolA", "MintB", "SymbolB"}

// PoolStore implements storage.PoolStore over CSV files under <root>/POOL/.
type PoolStore struct {
	dir   string
	dests *destinations
}

// NewPoolStore creates a CSV-backed pool store under root.
func NewPoolStore(root string) *PoolStore {
	return &PoolStore{
		dir:   filepath.Join(root, "POOL"),
		dests: newDestinations(),
	}
}

func (s *PoolStore) dest(pair string) *destination {
	return s.dests.get(filepath.Join(s.dir, "POOL_"+pair+".csv"), poolHeader)
}

// Insert adds a new pool. Returns ErrDuplicateKey if the pool ID exists.
func (s *PoolStore) Insert(_ context.Context, pool *domain.Pool) error {
	if pool == nil || pool.PoolID == "" || pool.SymbolA == "" || pool.SymbolB == "" {
		return storage.ErrInvalidInput
	}
	return s.dest(pool.PairKey()).append([]string{
		pool.PoolID,
		pool.MintA,
		pool.SymbolA,
		pool.MintB,
		pool.SymbolB,
	})
}

// List retrieves all pools of a destination in file order.
func (s *PoolStore) List(_ context.Context, pair string) ([]*domain.Pool, error) {
	rows, err := s.dest(pair).rows()
	if err != nil {
		return nil, err
	}

	pools := make([]*domain.Pool, 0, len(rows))
	for _, row := range rows {
		if len(row) < 5 {
			continue
		}
		pools = append(pools, &domain.Pool{
			PoolID:  row[0],
			MintA:   row[1],
			SymbolA: row[2],
			MintB:   row[3],
			SymbolB: row[4],
		})
	}
	return pools, nil
}

var _ storage.PoolStore = (*PoolStore)(nil)
