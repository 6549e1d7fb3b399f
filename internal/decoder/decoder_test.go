package decoder

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"solana-pool-crawler/internal/domain"
	"solana-pool-crawler/internal/solana"
)

const watched = "pool-account"

type txRPC struct {
	txs map[string]*solana.Transaction
}

func (r *txRPC) GetSlot(ctx context.Context) (int64, error)                 { return 0, nil }
func (r *txRPC) GetBlockTime(ctx context.Context, slot int64) (int64, error) { return 0, nil }
func (r *txRPC) GetBlock(ctx context.Context, slot int64) (*solana.Block, error) {
	return nil, solana.ErrSlotSkipped
}
func (r *txRPC) GetSignaturesForAddress(ctx context.Context, account string, opts *solana.SignaturesOpts) ([]solana.SignatureInfo, error) {
	return nil, nil
}

func (r *txRPC) GetTransaction(ctx context.Context, signature string) (*solana.Transaction, error) {
	tx, ok := r.txs[signature]
	if !ok {
		return nil, solana.ErrNotFound
	}
	return tx, nil
}

func fptr(v float64) *float64 { return &v }

func iptr(v int64) *int64 { return &v }

// swapTx builds a transaction whose watched-account balances move from pre
// to post, keyed by mint.
func swapTx(pre, post map[string]float64, blockTime *int64) *solana.Transaction {
	meta := &solana.TransactionMeta{}
	for mint, amount := range pre {
		meta.PreTokenBalances = append(meta.PreTokenBalances, solana.TokenBalance{
			Mint: mint, Owner: watched, UIAmount: fptr(amount),
		})
	}
	for mint, amount := range post {
		meta.PostTokenBalances = append(meta.PostTokenBalances, solana.TokenBalance{
			Mint: mint, Owner: watched, UIAmount: fptr(amount),
		})
	}
	return &solana.Transaction{BlockTime: blockTime, Meta: meta}
}

func testPool() *domain.Pool {
	return &domain.Pool{
		PoolID:  watched,
		MintA:   "mintX",
		SymbolA: "SOL",
		MintB:   "mintY",
		SymbolB: "USDC",
	}
}

func TestChangesComputesPerMintDeltas(t *testing.T) {
	rpc := &txRPC{txs: map[string]*solana.Transaction{
		"sig": swapTx(
			map[string]float64{"mintX": 10, "mintY": 5},
			map[string]float64{"mintX": 7, "mintY": 6},
			iptr(1700000000),
		),
	}}
	d := New(Options{RPC: rpc})

	changes, blockTime, err := d.Changes(context.Background(), "sig", watched)
	require.NoError(t, err)
	require.NotNil(t, blockTime)
	assert.Equal(t, int64(1700000000), *blockTime)

	byMint := map[string]domain.TokenChange{}
	for _, c := range changes {
		byMint[c.Mint] = c
	}
	assert.Equal(t, float64(-3), byMint["mintX"].Change)
	assert.Equal(t, float64(1), byMint["mintY"].Change)
}

func TestDecodeTwoLegSwap(t *testing.T) {
	rpc := &txRPC{txs: map[string]*solana.Transaction{
		"sig": swapTx(
			map[string]float64{"mintX": 10, "mintY": 5},
			map[string]float64{"mintX": 7, "mintY": 6},
			iptr(1700000000),
		),
	}}
	d := New(Options{RPC: rpc})

	record, err := d.Decode(context.Background(), "sig", watched, testPool())
	require.NoError(t, err)
	require.NotNil(t, record)

	// The gained leg comes first, both magnitudes unsigned.
	assert.Equal(t, "sig", record.Signature)
	assert.Equal(t, "USDC", record.TokenA)
	assert.Equal(t, float64(1), record.TokenADelta)
	assert.Equal(t, "SOL", record.TokenB)
	assert.Equal(t, float64(3), record.TokenBDelta)
	require.NotNil(t, record.BlockTime)
	assert.Equal(t, int64(1700000000), *record.BlockTime)
}

func TestDecodeRejectsNonSwaps(t *testing.T) {
	cases := []struct {
		name string
		pre  map[string]float64
		post map[string]float64
	}{
		{
			name: "three mints changed",
			pre:  map[string]float64{"mintX": 10, "mintY": 5, "mintZ": 2},
			post: map[string]float64{"mintX": 7, "mintY": 6, "mintZ": 3},
		},
		{
			name: "single mint changed",
			pre:  map[string]float64{"mintX": 10},
			post: map[string]float64{"mintX": 7},
		},
		{
			name: "both legs gained",
			pre:  map[string]float64{"mintX": 10, "mintY": 5},
			post: map[string]float64{"mintX": 11, "mintY": 6},
		},
		{
			name: "no change at all",
			pre:  map[string]float64{"mintX": 10, "mintY": 5},
			post: map[string]float64{"mintX": 10, "mintY": 5},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rpc := &txRPC{txs: map[string]*solana.Transaction{
				"sig": swapTx(tc.pre, tc.post, nil),
			}}
			d := New(Options{RPC: rpc})

			record, err := d.Decode(context.Background(), "sig", watched, testPool())
			require.NoError(t, err)
			assert.Nil(t, record)
		})
	}
}

func TestDecodeIgnoresUnchangedThirdMint(t *testing.T) {
	rpc := &txRPC{txs: map[string]*solana.Transaction{
		"sig": swapTx(
			map[string]float64{"mintX": 10, "mintY": 5, "mintZ": 4},
			map[string]float64{"mintX": 7, "mintY": 6, "mintZ": 4},
			nil,
		),
	}}
	d := New(Options{RPC: rpc})

	record, err := d.Decode(context.Background(), "sig", watched, testPool())
	require.NoError(t, err)
	require.NotNil(t, record)
	assert.Nil(t, record.BlockTime)
}

func TestDecodeFiltersOtherOwners(t *testing.T) {
	tx := swapTx(
		map[string]float64{"mintX": 10, "mintY": 5},
		map[string]float64{"mintX": 7, "mintY": 6},
		nil,
	)
	// A counterparty's balances move too; they must not affect the watched
	// account's classification.
	tx.Meta.PreTokenBalances = append(tx.Meta.PreTokenBalances,
		solana.TokenBalance{Mint: "mintZ", Owner: "someone-else", UIAmount: fptr(100)})
	tx.Meta.PostTokenBalances = append(tx.Meta.PostTokenBalances,
		solana.TokenBalance{Mint: "mintZ", Owner: "someone-else", UIAmount: fptr(50)})

	rpc := &txRPC{txs: map[string]*solana.Transaction{"sig": tx}}
	d := New(Options{RPC: rpc})

	record, err := d.Decode(context.Background(), "sig", watched, testPool())
	require.NoError(t, err)
	require.NotNil(t, record)
}

func TestDecodeTreatsAbsentSideAsZero(t *testing.T) {
	rpc := &txRPC{txs: map[string]*solana.Transaction{
		"sig": swapTx(
			map[string]float64{"mintX": 10},
			map[string]float64{"mintX": 7, "mintY": 6},
			nil,
		),
	}}
	d := New(Options{RPC: rpc})

	record, err := d.Decode(context.Background(), "sig", watched, testPool())
	require.NoError(t, err)
	require.NotNil(t, record)
	assert.Equal(t, "USDC", record.TokenA)
	assert.Equal(t, float64(6), record.TokenADelta)
}

func TestDecodeSymbolFallbacks(t *testing.T) {
	usdcMint := "EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v"
	rpc := &txRPC{txs: map[string]*solana.Transaction{
		"sig": swapTx(
			map[string]float64{"unknown-mint": 10, usdcMint: 5},
			map[string]float64{"unknown-mint": 7, usdcMint: 6},
			nil,
		),
	}}
	d := New(Options{RPC: rpc})

	// No pool metadata: the stablecoin table resolves USDC, the other leg
	// falls back to its mint address.
	record, err := d.Decode(context.Background(), "sig", watched, nil)
	require.NoError(t, err)
	require.NotNil(t, record)
	assert.Equal(t, "USDC", record.TokenA)
	assert.Equal(t, "unknown-mint", record.TokenB)
}

func TestDecodeNotFound(t *testing.T) {
	d := New(Options{RPC: &txRPC{}})

	_, err := d.Decode(context.Background(), "missing", watched, testPool())
	require.ErrorIs(t, err, solana.ErrNotFound)
}

func TestDecodeNilMeta(t *testing.T) {
	rpc := &txRPC{txs: map[string]*solana.Transaction{
		"sig": {BlockTime: iptr(1)},
	}}
	d := New(Options{RPC: rpc})

	record, err := d.Decode(context.Background(), "sig", watched, testPool())
	require.NoError(t, err)
	assert.Nil(t, record)
}
