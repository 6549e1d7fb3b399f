package solana

import "context"

// RPCClient defines the Solana RPC HTTP interface consumed by the crawler.
type RPCClient interface {
	// GetSlot retrieves the latest slot.
	GetSlot(ctx context.Context) (int64, error)

	// GetBlockTime retrieves the estimated production time of a slot.
	// Returns ErrSlotSkipped for slots without a block.
	GetBlockTime(ctx context.Context, slot int64) (int64, error)

	// GetBlock retrieves a block by slot number.
	GetBlock(ctx context.Context, slot int64) (*Block, error)

	// GetSignaturesForAddress retrieves signatures for an address,
	// newest first, with before-cursor pagination.
	GetSignaturesForAddress(ctx context.Context, address string, opts *SignaturesOpts) ([]SignatureInfo, error)

	// GetTransaction retrieves a transaction by signature, including its
	// pre/post token balances. Returns ErrNotFound if the node has not
	// indexed or confirmed it yet.
	GetTransaction(ctx context.Context, signature string) (*Transaction, error)
}

// Transaction represents a Solana transaction.
type Transaction struct {
	Slot      int64
	Signature string
	BlockTime *int64 // Unix timestamp (seconds), nil if unavailable
	Meta      *TransactionMeta
}

// TransactionMeta contains transaction metadata.
type TransactionMeta struct {
	Err               interface{}
	PreTokenBalances  []TokenBalance
	PostTokenBalances []TokenBalance
}

// TokenBalance is one entry of a transaction's pre/post token balance arrays.
type TokenBalance struct {
	Mint     string
	Owner    string
	UIAmount *float64 // decimal-adjusted amount, nil for zero-initialized accounts
}
