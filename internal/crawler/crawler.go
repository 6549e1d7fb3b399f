// Package crawler walks a pool account's transaction history backward and
// persists the signatures falling inside a slot range.
package crawler

import (
	"context"
	"errors"
	"fmt"
	"log"

	"solana-pool-crawler/internal/domain"
	"solana-pool-crawler/internal/observability"
	"solana-pool-crawler/internal/solana"
	"solana-pool-crawler/internal/storage"
)

// DefaultPageLimit is the per-request signature count, the RPC maximum.
const DefaultPageLimit = 1000

// Crawler paginates an account's signature history into a signature store.
type Crawler struct {
	rpc       solana.RPCClient
	store     storage.SignatureStore
	pageLimit int
	logger    *log.Logger
}

// Options contains configuration for creating a Crawler.
type Options struct {
	RPC       solana.RPCClient
	Store     storage.SignatureStore
	PageLimit int
	Logger    *log.Logger
}

// New creates a Crawler.
func New(opts Options) *Crawler {
	pageLimit := opts.PageLimit
	if pageLimit == 0 {
		pageLimit = DefaultPageLimit
	}

	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}

	return &Crawler{
		rpc:       opts.RPC,
		store:     opts.Store,
		pageLimit: pageLimit,
		logger:    logger,
	}
}

// Result contains statistics from one crawl.
type Result struct {
	Pages      int // signature pages fetched
	Stored     int // new records persisted
	Duplicates int // records already present in the destination
	Errored    int // transactions skipped for a set error flag
	OutOfRange int // transactions outside [startSlot, endSlot]
}

// Crawl walks account's history backward from endSlot until transactions
// fall below startSlot, persisting every successful in-range signature into
// the pair destination. Running it again over an overlapping range only
// adds records not seen before.
func (c *Crawler) Crawl(ctx context.Context, pair, account string, startSlot, endSlot int64) (*Result, error) {
	result := &Result{}

	if startSlot > endSlot {
		return result, fmt.Errorf("%w: start slot %d after end slot %d", storage.ErrInvalidInput, startSlot, endSlot)
	}

	// Seed the backward walk with a reference signature at the end of the
	// range. The slot finder only returns slots that carry a block, so a
	// skipped end slot means the caller passed a raw slot range.
	block, err := c.rpc.GetBlock(ctx, endSlot)
	if err != nil {
		return result, fmt.Errorf("seed crawl at slot %d: %w", endSlot, err)
	}
	if len(block.Signatures) == 0 {
		return result, fmt.Errorf("seed crawl at slot %d: block has no transactions", endSlot)
	}
	cursor := block.Signatures[0]

	for {
		select {
		case <-ctx.Done():
			return result, ctx.Err()
		default:
		}

		page, err := c.rpc.GetSignaturesForAddress(ctx, account, &solana.SignaturesOpts{
			Before: cursor,
			Limit:  c.pageLimit,
		})
		if err != nil {
			return result, fmt.Errorf("list signatures before %s: %w", cursor, err)
		}

		if len(page) == 0 {
			c.logger.Printf("History exhausted for %s after %d pages", account, result.Pages)
			break
		}
		result.Pages++
		observability.DefaultMetrics.SignaturePagesFetched.Inc()

		for _, info := range page {
			if info.Err != nil {
				result.Errored++
				observability.RecordSignatureSkipped("errored")
				continue
			}
			if info.Slot < startSlot || info.Slot > endSlot {
				result.OutOfRange++
				observability.RecordSignatureSkipped("out_of_range")
				continue
			}

			err := c.store.Insert(ctx, pair, &domain.SignatureRecord{
				Signature: info.Signature,
				Slot:      info.Slot,
				Account:   account,
			})
			switch {
			case err == nil:
				result.Stored++
				observability.RecordSignatureStored()
			case errors.Is(err, storage.ErrDuplicateKey):
				result.Duplicates++
				observability.DefaultMetrics.SignaturesDuplicate.Inc()
			default:
				// Destination broken; further appends would fail the same way.
				return result, fmt.Errorf("persist signature %s: %w", info.Signature, err)
			}
		}

		oldest := page[len(page)-1]
		if oldest.Slot < startSlot {
			break
		}
		if oldest.Signature == cursor {
			return result, fmt.Errorf("pagination stalled at cursor %s", cursor)
		}
		cursor = oldest.Signature
	}

	c.logger.Printf("Crawl %s [%d, %d]: %d pages, %d stored, %d duplicate, %d errored, %d out of range",
		account, startSlot, endSlot, result.Pages, result.Stored, result.Duplicates,
		result.Errored, result.OutOfRange)
	return result, nil
}
