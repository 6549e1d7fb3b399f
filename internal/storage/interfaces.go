package storage

import (
	"context"

	"solana-pool-crawler/internal/domain"
)

// Stores are append-only and deduplicated by signature (or pool ID) within
// one destination. A destination is a direction-sensitive token symbol pair
// such as "SOL_USDC". Implementations must make the existence-check-then-
// append sequence atomic per destination so concurrent writers cannot
// produce duplicate rows.

// SignatureStore provides access to the signature index destinations.
type SignatureStore interface {
	// Insert adds a new record. Returns ErrDuplicateKey if the signature
	// already exists in the destination.
	Insert(ctx context.Context, pair string, rec *domain.SignatureRecord) error

	// Exists reports whether the signature is already present in the destination.
	Exists(ctx context.Context, pair, signature string) (bool, error)

	// List retrieves all records of a destination in insertion order.
	List(ctx context.Context, pair string) ([]*domain.SignatureRecord, error)
}

// BalanceDeltaStore provides access to the balance-delta destinations.
type BalanceDeltaStore interface {
	// Insert adds a new record. Returns ErrDuplicateKey if the signature
	// already exists in the destination.
	Insert(ctx context.Context, pair string, rec *domain.BalanceDelta) error

	// Exists reports whether the signature is already present in the destination.
	Exists(ctx context.Context, pair, signature string) (bool, error)

	// List retrieves all records of a destination in insertion order.
	List(ctx context.Context, pair string) ([]*domain.BalanceDelta, error)
}

// PoolStore provides access to the pool index destinations.
type PoolStore interface {
	// Insert adds a new pool. Returns ErrDuplicateKey if the pool ID
	// already exists in the destination.
	Insert(ctx context.Context, pool *domain.Pool) error

	// List retrieves all pools of a destination in insertion order.
	List(ctx context.Context, pair string) ([]*domain.Pool, error)
}
