package postgres

import (
	"context"
	"fmt"

	"solana-pool-crawler/internal/domain"
	"solana-pool-crawler/internal/storage"
)

// BalanceDeltaStore implements storage.BalanceDeltaStore using PostgreSQL.
type BalanceDeltaStore struct {
	pool *Pool
}

// NewBalanceDeltaStore creates a new BalanceDeltaStore.
func NewBalanceDeltaStore(pool *Pool) *BalanceDeltaStore {
	return &BalanceDeltaStore{pool: pool}
}

// Compile-time interface check.
var _ storage.BalanceDeltaStore = (*BalanceDeltaStore)(nil)

// Insert adds a new record. Returns ErrDuplicateKey if (pair, signature) exists.
func (s *BalanceDeltaStore) Insert(ctx context.Context, pair string, rec *domain.BalanceDelta) error {
	if pair == "" || rec == nil || rec.Signature == "" {
		return storage.ErrInvalidInput
	}

	query := `
		INSERT INTO balance_deltas (pair, signature, token_a, token_a_delta, token_b, token_b_delta, block_time)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := s.pool.Exec(ctx, query,
		pair,
		rec.Signature,
		rec.TokenA,
		rec.TokenADelta,
		rec.TokenB,
		rec.TokenBDelta,
		rec.BlockTime,
	)
	if err != nil {
		if isDuplicateKeyError(err) {
			return storage.ErrDuplicateKey
		}
		return fmt.Errorf("insert balance delta: %w", err)
	}
	return nil
}

// Exists reports whether the signature is already present in the destination.
func (s *BalanceDeltaStore) Exists(ctx context.Context, pair, signature string) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM balance_deltas WHERE pair = $1 AND signature = $2)`

	var exists bool
	if err := s.pool.QueryRow(ctx, query, pair, signature).Scan(&exists); err != nil {
		return false, fmt.Errorf("check balance delta existence: %w", err)
	}
	return exists, nil
}

// List retrieves all records of a destination in insertion order.
func (s *BalanceDeltaStore) List(ctx context.Context, pair string) ([]*domain.BalanceDelta, error) {
	query := `
		SELECT signature, token_a, token_a_delta, token_b, token_b_delta, block_time
		FROM balance_deltas
		WHERE pair = $1
		ORDER BY id ASC
	`

	rows, err := s.pool.Query(ctx, query, pair)
	if err != nil {
		return nil, fmt.Errorf("list balance deltas: %w", err)
	}
	defer rows.Close()

	var records []*domain.BalanceDelta
	for rows.Next() {
		var rec domain.BalanceDelta
		err := rows.Scan(
			&rec.Signature,
			&rec.TokenA,
			&rec.TokenADelta,
			&rec.TokenB,
			&rec.TokenBDelta,
			&rec.BlockTime,
		)
		if err != nil {
			return nil, fmt.Errorf("scan balance delta row: %w", err)
		}
		records = append(records, &rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate balance delta rows: %w", err)
	}
	return records, nil
}
