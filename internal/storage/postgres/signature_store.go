package postgres

import (
	"context"
	"fmt"

	"solana-pool-crawler/internal/domain"
	"solana-pool-crawler/internal/storage"
)

// SignatureStore implements storage.SignatureStore using PostgreSQL. The
// unique constraint on (pair, signature) enforces the append-only dedup
// contract at the database level.
type SignatureStore struct {
	pool *Pool
}

// NewSignatureStore creates a new SignatureStore.
func NewSignatureStore(pool *Pool) *SignatureStore {
	return &SignatureStore{pool: pool}
}

// Compile-time interface check.
var _ storage.SignatureStore = (*SignatureStore)(nil)

// Insert adds a new record. Returns ErrDuplicateKey if (pair, signature) exists.
func (s *SignatureStore) Insert(ctx context.Context, pair string, rec *domain.SignatureRecord) error {
	if pair == "" || rec == nil || rec.Signature == "" {
		return storage.ErrInvalidInput
	}

	query := `
		INSERT INTO signatures (pair, signature, slot, account)
		VALUES ($1, $2, $3, $4)
	`

	_, err := s.pool.Exec(ctx, query, pair, rec.Signature, rec.Slot, rec.Account)
	if err != nil {
		if isDuplicateKeyError(err) {
			return storage.ErrDuplicateKey
		}
		return fmt.Errorf("insert signature: %w", err)
	}
	return nil
}

// Exists reports whether the signature is already present in the destination.
func (s *SignatureStore) Exists(ctx context.Context, pair, signature string) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM signatures WHERE pair = $1 AND signature = $2)`

	var exists bool
	if err := s.pool.QueryRow(ctx, query, pair, signature).Scan(&exists); err != nil {
		return false, fmt.Errorf("check signature existence: %w", err)
	}
	return exists, nil
}

// List retrieves all records of a destination in insertion order.
func (s *SignatureStore) List(ctx context.Context, pair string) ([]*domain.SignatureRecord, error) {
	query := `
		SELECT signature, slot, account
		FROM signatures
		WHERE pair = $1
		ORDER BY id ASC
	`

	rows, err := s.pool.Query(ctx, query, pair)
	if err != nil {
		return nil, fmt.Errorf("list signatures: %w", err)
	}
	defer rows.Close()

	var records []*domain.SignatureRecord
	for rows.Next() {
		var rec domain.SignatureRecord
		if err := rows.Scan(&rec.Signature, &rec.Slot, &rec.Account); err != nil {
			return nil, fmt.Errorf("scan signature row: %w", err)
		}
		records = append(records, &rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate signature rows: %w", err)
	}
	return records, nil
}
