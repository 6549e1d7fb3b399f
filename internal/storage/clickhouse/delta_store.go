package clickhouse

import (
	"context"
	"fmt"
	"sync"

	"solana-pool-crawler/internal/domain"
	"solana-pool-crawler/internal/storage"
)

// BalanceDeltaStore implements storage.BalanceDeltaStore using ClickHouse.
// MergeTree does not enforce uniqueness at insert time, so the append-only
// dedup contract is kept by checking existence before every insert, the same
// read-before-append sequence the CSV backend uses. A per-destination mutex
// makes the check and the batch send mutually exclusive within the process;
// concurrent processes writing the same table need external coordination.
type BalanceDeltaStore struct {
	conn *Conn

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewBalanceDeltaStore creates a new BalanceDeltaStore.
func NewBalanceDeltaStore(conn *Conn) *BalanceDeltaStore {
	return &BalanceDeltaStore{
		conn:  conn,
		locks: make(map[string]*sync.Mutex),
	}
}

// pairLock returns the mutex serializing writes to one destination.
func (s *BalanceDeltaStore) pairLock(pair string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()

	l, ok := s.locks[pair]
	if !ok {
		l = &sync.Mutex{}
		s.locks[pair] = l
	}
	return l
}

// Compile-time interface check.
var _ storage.BalanceDeltaStore = (*BalanceDeltaStore)(nil)

// Insert adds a new record. Returns ErrDuplicateKey if (pair, signature) exists.
func (s *BalanceDeltaStore) Insert(ctx context.Context, pair string, rec *domain.BalanceDelta) error {
	if pair == "" || rec == nil || rec.Signature == "" {
		return storage.ErrInvalidInput
	}

	lock := s.pairLock(pair)
	lock.Lock()
	defer lock.Unlock()

	exists, err := s.Exists(ctx, pair, rec.Signature)
	if err != nil {
		return fmt.Errorf("check exists: %w", err)
	}
	if exists {
		return storage.ErrDuplicateKey
	}

	batch, err := s.conn.PrepareBatch(ctx, `
		INSERT INTO balance_deltas (
			pair, signature, token_a, token_a_delta, token_b, token_b_delta, block_time
		)
	`)
	if err != nil {
		return fmt.Errorf("prepare batch: %w", err)
	}

	// Pass nil directly for the Nullable block_time column.
	err = batch.Append(
		pair, rec.Signature,
		rec.TokenA, rec.TokenADelta,
		rec.TokenB, rec.TokenBDelta,
		rec.BlockTime,
	)
	if err != nil {
		return fmt.Errorf("append to batch: %w", err)
	}

	if err := batch.Send(); err != nil {
		return fmt.Errorf("send batch: %w", err)
	}
	return nil
}

// Exists reports whether the signature is already present in the destination.
func (s *BalanceDeltaStore) Exists(ctx context.Context, pair, signature string) (bool, error) {
	query := `
		SELECT count(*) FROM balance_deltas
		WHERE pair = ? AND signature = ?
	`

	var count uint64
	if err := s.conn.QueryRow(ctx, query, pair, signature).Scan(&count); err != nil {
		return false, fmt.Errorf("check balance delta existence: %w", err)
	}
	return count > 0, nil
}

// List retrieves all records of a destination, ordered by insertion time.
func (s *BalanceDeltaStore) List(ctx context.Context, pair string) ([]*domain.BalanceDelta, error) {
	query := `
		SELECT signature, token_a, token_a_delta, token_b, token_b_delta, block_time
		FROM balance_deltas
		WHERE pair = ?
		ORDER BY inserted_at ASC, signature ASC
	`

	rows, err := s.conn.Query(ctx, query, pair)
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
