package postgres

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"solana-pool-crawler/internal/domain"
	"solana-pool-crawler/internal/storage"
)

func TestSignatureStore_InsertAndList(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	store := NewSignatureStore(pool)

	records := []*domain.SignatureRecord{
		{Signature: "sig-1", Slot: 100, Account: "pool-a"},
		{Signature: "sig-2", Slot: 101, Account: "pool-a"},
		{Signature: "sig-3", Slot: 102, Account: "pool-b"},
	}
	for _, rec := range records {
		require.NoError(t, store.Insert(ctx, "SOL_USDC", rec))
	}

	got, err := store.List(ctx, "SOL_USDC")
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, records, got)
}

func TestSignatureStore_DuplicateKey(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	store := NewSignatureStore(pool)

	rec := &domain.SignatureRecord{Signature: "sig-1", Slot: 100, Account: "pool-a"}
	require.NoError(t, store.Insert(ctx, "SOL_USDC", rec))

	err := store.Insert(ctx, "SOL_USDC", rec)
	assert.ErrorIs(t, err, storage.ErrDuplicateKey)

	// Destinations are independent: the opposite direction accepts the same
	// signature.
	require.NoError(t, store.Insert(ctx, "USDC_SOL", rec))
}

func TestSignatureStore_Exists(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	store := NewSignatureStore(pool)

	exists, err := store.Exists(ctx, "SOL_USDC", "sig-1")
	require.NoError(t, err)
	assert.False(t, exists)

	require.NoError(t, store.Insert(ctx, "SOL_USDC", &domain.SignatureRecord{Signature: "sig-1", Slot: 1, Account: "a"}))

	exists, err = store.Exists(ctx, "SOL_USDC", "sig-1")
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestSignatureStore_InvalidInput(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	store := NewSignatureStore(pool)

	assert.ErrorIs(t, store.Insert(ctx, "", &domain.SignatureRecord{Signature: "sig"}), storage.ErrInvalidInput)
	assert.ErrorIs(t, store.Insert(ctx, "SOL_USDC", nil), storage.ErrInvalidInput)
	assert.ErrorIs(t, store.Insert(ctx, "SOL_USDC", &domain.SignatureRecord{}), storage.ErrInvalidInput)
}
