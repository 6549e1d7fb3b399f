package postgres

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"solana-pool-crawler/internal/domain"
	"solana-pool-crawler/internal/storage"
)

func TestBalanceDeltaStore_InsertAndList(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	store := NewBalanceDeltaStore(pool)

	rec := &domain.BalanceDelta{
		Signature:   "sig-1",
		TokenA:      "USDC",
		TokenADelta: 150.5,
		TokenB:      "SOL",
		TokenBDelta: 1.25,
		BlockTime:   ptr(int64(1700000000)),
	}
	require.NoError(t, store.Insert(ctx, "SOL_USDC", rec))

	records, err := store.List(ctx, "SOL_USDC")
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, rec, records[0])
}

func TestBalanceDeltaStore_DuplicateKey(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	store := NewBalanceDeltaStore(pool)

	rec := &domain.BalanceDelta{Signature: "sig-1", TokenA: "USDC", TokenB: "SOL"}
	require.NoError(t, store.Insert(ctx, "SOL_USDC", rec))

	err := store.Insert(ctx, "SOL_USDC", rec)
	assert.ErrorIs(t, err, storage.ErrDuplicateKey)
}

func TestBalanceDeltaStore_NullableBlockTime(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	store := NewBalanceDeltaStore(pool)

	rec := &domain.BalanceDelta{Signature: "sig-1", TokenA: "USDC", TokenB: "SOL"}
	require.NoError(t, store.Insert(ctx, "SOL_USDC", rec))

	records, err := store.List(ctx, "SOL_USDC")
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Nil(t, records[0].BlockTime)
}

func TestBalanceDeltaStore_Exists(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	store := NewBalanceDeltaStore(pool)

	exists, err := store.Exists(ctx, "SOL_USDC", "sig-1")
	require.NoError(t, err)
	assert.False(t, exists)

	require.NoError(t, store.Insert(ctx, "SOL_USDC", &domain.BalanceDelta{Signature: "sig-1", TokenA: "USDC", TokenB: "SOL"}))

	exists, err = store.Exists(ctx, "SOL_USDC", "sig-1")
	require.NoError(t, err)
	assert.True(t, exists)
}
