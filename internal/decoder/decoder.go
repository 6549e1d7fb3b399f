// Package decoder classifies a transaction's token balance changes for one
// watched pool account into two-leg swap records.
package decoder

import (
	"context"
	"fmt"
	"log"
	"math"
	"sort"

	"solana-pool-crawler/internal/domain"
	"solana-pool-crawler/internal/solana"
)

// Decoder fetches transaction detail and computes per-mint balance deltas
// for a single account.
type Decoder struct {
	rpc    solana.RPCClient
	logger *log.Logger
}

// Options contains configuration for creating a Decoder.
type Options struct {
	RPC    solana.RPCClient
	Logger *log.Logger
}

// New creates a Decoder.
func New(opts Options) *Decoder {
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}
	return &Decoder{rpc: opts.RPC, logger: logger}
}

// Changes fetches the transaction and returns the account's per-mint balance
// changes, one entry per mint seen on either side of execution. Mints absent
// from one side count as zero on that side.
func (d *Decoder) Changes(ctx context.Context, signature, account string) ([]domain.TokenChange, *int64, error) {
	tx, err := d.rpc.GetTransaction(ctx, signature)
	if err != nil {
		return nil, nil, fmt.Errorf("fetch transaction %s: %w", signature, err)
	}
	if tx.Meta == nil {
		return nil, tx.BlockTime, nil
	}

	pre := balancesByMint(tx.Meta.PreTokenBalances, account)
	post := balancesByMint(tx.Meta.PostTokenBalances, account)

	mints := make([]string, 0, len(pre)+len(post))
	for mint := range pre {
		mints = append(mints, mint)
	}
	for mint := range post {
		if _, ok := pre[mint]; !ok {
			mints = append(mints, mint)
		}
	}
	sort.Strings(mints)

	changes := make([]domain.TokenChange, 0, len(mints))
	for _, mint := range mints {
		changes = append(changes, domain.TokenChange{
			Mint:   mint,
			Pre:    pre[mint],
			Post:   post[mint],
			Change: post[mint] - pre[mint],
		})
	}
	return changes, tx.BlockTime, nil
}

// Decode fetches the transaction and, when the account shows exactly one
// token gained and one token lost, returns the swap record with both legs as
// absolute magnitudes. The gained token occupies the first leg. Transactions
// with any other change pattern return nil without an error.
func (d *Decoder) Decode(ctx context.Context, signature, account string, pool *domain.Pool) (*domain.BalanceDelta, error) {
	changes, blockTime, err := d.Changes(ctx, signature, account)
	if err != nil {
		return nil, err
	}

	var gained, lost *domain.TokenChange
	for i := range changes {
		c := &changes[i]
		switch {
		case c.Change > 0:
			if gained != nil {
				return nil, nil
			}
			gained = c
		case c.Change < 0:
			if lost != nil {
				return nil, nil
			}
			lost = c
		}
	}
	if gained == nil || lost == nil {
		return nil, nil
	}

	return &domain.BalanceDelta{
		Signature:   signature,
		TokenA:      d.symbol(pool, gained.Mint),
		TokenADelta: gained.Change,
		TokenB:      d.symbol(pool, lost.Mint),
		TokenBDelta: math.Abs(lost.Change),
		BlockTime:   blockTime,
	}, nil
}

// symbol resolves a mint to a display symbol, preferring the pool's own pair
// metadata, then the well-known stablecoin mints, then the raw mint address.
func (d *Decoder) symbol(pool *domain.Pool, mint string) string {
	if pool != nil {
		if sym, ok := pool.SymbolByMint()[mint]; ok {
			return sym
		}
	}
	if sym, ok := domain.StablecoinMints[mint]; ok {
		return sym
	}
	return mint
}

func balancesByMint(balances []solana.TokenBalance, account string) map[string]float64 {
	byMint := make(map[string]float64)
	for _, b := range balances {
		if b.Owner != account {
			continue
		}
		amount := 0.0
		if b.UIAmount != nil {
			amount = *b.UIAmount
		}
		byMint[b.Mint] = amount
	}
	return byMint
}
