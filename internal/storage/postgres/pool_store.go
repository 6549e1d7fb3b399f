package postgres

import (
	"context"
	"fmt"

	"solana-pool-crawler/internal/domain"
	"solana-pool-crawler/internal/storage"
)

// PoolStore implements storage.PoolStore using PostgreSQL.
type PoolStore struct {
	pool *Pool
}

// NewPoolStore creates a new PoolStore.
func NewPoolStore(pool *Pool) *PoolStore {
	return &PoolStore{pool: pool}
}

// Compile-time interface check.
var _ storage.PoolStore = (*PoolStore)(nil)

// Insert adds a new pool. Returns ErrDuplicateKey if (pair, pool_id) exists.
func (s *PoolStore) Insert(ctx context.Context, p *domain.Pool) error {
	if p == nil || p.PoolID == "" || p.SymbolA == "" || p.SymbolB == "" {
		return storage.ErrInvalidInput
	}

	query := `
		INSERT INTO pools (pair, pool_id, mint_a, symbol_a, mint_b, symbol_b)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := s.pool.Exec(ctx, query, p.PairKey(), p.PoolID, p.MintA, p.SymbolA, p.MintB, p.SymbolB)
	if err != nil {
		if isDuplicateKeyError(err) {
			return storage.ErrDuplicateKey
		}
		return fmt.Errorf("insert pool: %w", err)
	}
	return nil
}

// List retrieves all pools of a destination in insertion order.
func (s *PoolStore) List(ctx context.Context, pair string) ([]*domain.Pool, error) {
	query := `
		SELECT pool_id, mint_a, symbol_a, mint_b, symbol_b
		FROM pools
		WHERE pair = $1
		ORDER BY id ASC
	`

	rows, err := s.pool.Query(ctx, query, pair)
	if err != nil {
		return nil, fmt.Errorf("list pools: %w", err)
	}
	defer rows.Close()

	var pools []*domain.Pool
	for rows.Next() {
		var p domain.Pool
		if err := rows.Scan(&p.PoolID, &p.MintA, &p.SymbolA, &p.MintB, &p.SymbolB); err != nil {
			return nil, fmt.Errorf("scan pool row: %w", err)
		}
		pools = append(pools, &p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate pool rows: %w", err)
	}
	return pools, nil
}
