// Package scheduler fans decode work out across a fixed pool of workers,
// each bound to one RPC endpoint.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"sync/atomic"

	"solana-pool-crawler/internal/decoder"
	"solana-pool-crawler/internal/domain"
	"solana-pool-crawler/internal/observability"
	"solana-pool-crawler/internal/solana"
	"solana-pool-crawler/internal/storage"
)

// DefaultWorkersPerEndpoint controls how many workers share one endpoint.
const DefaultWorkersPerEndpoint = 2

// WorkItem is one signature to decode for an account.
type WorkItem struct {
	Signature string
	Account   string
}

// Scheduler partitions work items into contiguous batches and processes them
// in parallel. The worker count is a multiple of the endpoint count so each
// decoder serves the same number of batches.
type Scheduler struct {
	decoders           []*decoder.Decoder
	store              storage.BalanceDeltaStore
	workersPerEndpoint int
	logger             *log.Logger
	onProgress         func(completed, total int64)
}

// Options contains configuration for creating a Scheduler.
type Options struct {
	Decoders           []*decoder.Decoder
	Store              storage.BalanceDeltaStore
	WorkersPerEndpoint int
	Logger             *log.Logger

	// OnProgress, when set, is called after every completed item with the
	// running completion count.
	OnProgress func(completed, total int64)
}

// New creates a Scheduler. At least one decoder is required since every
// worker must be bound to an endpoint.
func New(opts Options) (*Scheduler, error) {
	if len(opts.Decoders) == 0 {
		return nil, errors.New("scheduler: no decoders configured")
	}

	workersPerEndpoint := opts.WorkersPerEndpoint
	if workersPerEndpoint <= 0 {
		workersPerEndpoint = DefaultWorkersPerEndpoint
	}

	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}

	return &Scheduler{
		decoders:           opts.Decoders,
		store:              opts.Store,
		workersPerEndpoint: workersPerEndpoint,
		logger:             logger,
		onProgress:         opts.OnProgress,
	}, nil
}

// Result contains statistics from one ProcessAll call.
type Result struct {
	Total      int64
	Decoded    int64 // swaps persisted
	NonSwap    int64 // transactions without a two-leg change pattern
	NotFound   int64 // transactions the ledger no longer returns
	Failed     int64 // transport or storage failures, skipped
	Duplicates int64 // records already present in the destination
}

type counters struct {
	completed  atomic.Int64
	decoded    atomic.Int64
	nonSwap    atomic.Int64
	notFound   atomic.Int64
	failed     atomic.Int64
	duplicates atomic.Int64
}

// ProcessAll decodes every work item and persists swap records into the pair
// destination. Individual item failures are counted and skipped; the call
// returns early only when the context is cancelled.
func (s *Scheduler) ProcessAll(ctx context.Context, pair string, pool *domain.Pool, items []WorkItem) (*Result, error) {
	total := int64(len(items))
	result := &Result{Total: total}
	if total == 0 {
		return result, nil
	}

	workers := s.workersPerEndpoint * len(s.decoders)
	if int64(workers) > total {
		workers = int(total)
	}
	batchSize := (len(items) + workers - 1) / workers

	s.logger.Printf("Decoding %d transactions for %s with %d workers over %d endpoints",
		total, pair, workers, len(s.decoders))

	var (
		wg    sync.WaitGroup
		tally counters
	)
	for i := 0; i < workers; i++ {
		lo := i * batchSize
		hi := lo + batchSize
		if hi > len(items) {
			hi = len(items)
		}
		if lo >= hi {
			continue
		}

		wg.Add(1)
		go func(dec *decoder.Decoder, batch []WorkItem) {
			defer wg.Done()
			observability.DefaultMetrics.WorkersActive.Inc()
			defer observability.DefaultMetrics.WorkersActive.Dec()
			s.runBatch(ctx, dec, pair, pool, batch, total, &tally)
		}(s.decoders[i%len(s.decoders)], items[lo:hi])
	}
	wg.Wait()

	result.Decoded = tally.decoded.Load()
	result.NonSwap = tally.nonSwap.Load()
	result.NotFound = tally.notFound.Load()
	result.Failed = tally.failed.Load()
	result.Duplicates = tally.duplicates.Load()

	if err := ctx.Err(); err != nil {
		return result, err
	}

	s.logger.Printf("Decode %s: %d decoded, %d non-swap, %d not found, %d failed, %d duplicate",
		pair, result.Decoded, result.NonSwap, result.NotFound, result.Failed, result.Duplicates)
	return result, nil
}

func (s *Scheduler) runBatch(ctx context.Context, dec *decoder.Decoder, pair string, pool *domain.Pool, batch []WorkItem, total int64, tally *counters) {
	for _, item := range batch {
		select {
		case <-ctx.Done():
			return
		default:
		}

		s.processItem(ctx, dec, pair, pool, item, tally)

		completed := tally.completed.Add(1)
		if s.onProgress != nil {
			s.onProgress(completed, total)
		}
	}
}

func (s *Scheduler) processItem(ctx context.Context, dec *decoder.Decoder, pair string, pool *domain.Pool, item WorkItem, tally *counters) {
	record, err := dec.Decode(ctx, item.Signature, item.Account, pool)
	switch {
	case errors.Is(err, solana.ErrNotFound):
		tally.notFound.Add(1)
		observability.RecordDecodeSkipped("not_found")
		return
	case err != nil:
		tally.failed.Add(1)
		observability.RecordDecodeSkipped("decode_error")
		s.logger.Printf("Skipping %s: %v", item.Signature, err)
		return
	case record == nil:
		tally.nonSwap.Add(1)
		observability.RecordDecodeSkipped("non_swap")
		return
	}

	err = s.store.Insert(ctx, pair, record)
	switch {
	case err == nil:
		tally.decoded.Add(1)
		observability.RecordSwapDecoded()
		observability.DefaultMetrics.DeltasStored.Inc()
	case errors.Is(err, storage.ErrDuplicateKey):
		tally.duplicates.Add(1)
	default:
		tally.failed.Add(1)
		observability.RecordDecodeSkipped("store_error")
		s.logger.Printf("Skipping %s: %v", item.Signature, fmt.Errorf("persist delta: %w", err))
	}
}
