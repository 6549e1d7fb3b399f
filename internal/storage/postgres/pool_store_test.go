package postgres

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"solana-pool-crawler/internal/domain"
	"solana-pool-crawler/internal/storage"
)

func TestPoolStore_InsertAndList(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	store := NewPoolStore(pool)

	p := &domain.Pool{
		PoolID:  "pool-1",
		MintA:   "mint-sol",
		SymbolA: "SOL",
		MintB:   "mint-usdc",
		SymbolB: "USDC",
	}
	require.NoError(t, store.Insert(ctx, p))

	pools, err := store.List(ctx, "SOL_USDC")
	require.NoError(t, err)
	require.Len(t, pools, 1)
	assert.Equal(t, p, pools[0])
}

func TestPoolStore_DuplicateKey(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	store := NewPoolStore(pool)

	p := &domain.Pool{PoolID: "pool-1", MintA: "a", SymbolA: "SOL", MintB: "b", SymbolB: "USDC"}
	require.NoError(t, store.Insert(ctx, p))

	err := store.Insert(ctx, p)
	assert.ErrorIs(t, err, storage.ErrDuplicateKey)
}

func TestPoolStore_InvalidInput(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	store := NewPoolStore(pool)

	assert.ErrorIs(t, store.Insert(ctx, nil), storage.ErrInvalidInput)
	assert.ErrorIs(t, store.Insert(ctx, &domain.Pool{PoolID: "pool-1"}), storage.ErrInvalidInput)
}
