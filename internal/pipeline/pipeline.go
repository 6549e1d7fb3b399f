// Package pipeline orchestrates one crawl run: pool discovery, signature
// crawling and decode fan-out for every input mint pair.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"solana-pool-crawler/internal/crawler"
	"solana-pool-crawler/internal/decoder"
	"solana-pool-crawler/internal/domain"
	"solana-pool-crawler/internal/observability"
	"solana-pool-crawler/internal/raydium"
	"solana-pool-crawler/internal/scheduler"
	"solana-pool-crawler/internal/slotfinder"
	"solana-pool-crawler/internal/solana"
	"solana-pool-crawler/internal/storage"
)

// Pipeline runs the crawl end to end. Failures are contained per mint pair
// and per pool; only configuration problems abort a run.
type Pipeline struct {
	cfg    Config
	rpcs   []solana.RPCClient
	pools  *raydium.Client
	finder *slotfinder.Finder

	poolStore  storage.PoolStore
	sigStore   storage.SignatureStore
	deltaStore storage.BalanceDeltaStore

	crawl  *crawler.Crawler
	sched  *scheduler.Scheduler
	logger *log.Logger
}

// Options contains the collaborators of a Pipeline. RPCs must carry one
// client per configured endpoint, in endpoint order.
type Options struct {
	RPCs           []solana.RPCClient
	Pools          *raydium.Client
	SignatureStore storage.SignatureStore
	DeltaStore     storage.BalanceDeltaStore
	PoolStore      storage.PoolStore
	Logger         *log.Logger

	// OnProgress is forwarded to the scheduler for decode progress
	// reporting.
	OnProgress func(completed, total int64)
}

// New creates a Pipeline and validates the configuration.
func New(cfg Config, opts Options) (*Pipeline, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if len(opts.RPCs) != len(cfg.Endpoints) {
		return nil, fmt.Errorf("pipeline: %d clients for %d endpoints", len(opts.RPCs), len(cfg.Endpoints))
	}

	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}

	decoders := make([]*decoder.Decoder, len(opts.RPCs))
	for i, rpc := range opts.RPCs {
		decoders[i] = decoder.New(decoder.Options{RPC: rpc, Logger: logger})
	}

	sched, err := scheduler.New(scheduler.Options{
		Decoders:           decoders,
		Store:              opts.DeltaStore,
		WorkersPerEndpoint: cfg.WorkersPerEndpoint,
		Logger:             logger,
		OnProgress:         opts.OnProgress,
	})
	if err != nil {
		return nil, err
	}

	return &Pipeline{
		cfg:    cfg,
		rpcs:   opts.RPCs,
		pools:  opts.Pools,
		finder: slotfinder.New(opts.RPCs[0], slotfinder.Options{Logger: logger}),

		poolStore:  opts.PoolStore,
		sigStore:   opts.SignatureStore,
		deltaStore: opts.DeltaStore,

		crawl: crawler.New(crawler.Options{
			RPC:       opts.RPCs[0],
			Store:     opts.SignatureStore,
			PageLimit: cfg.PageLimit,
			Logger:    logger,
		}),
		sched:  sched,
		logger: logger,
	}, nil
}

// RunResult aggregates statistics over every processed mint pair.
type RunResult struct {
	Pairs       int
	PairsFailed int

	PoolsDiscovered int
	PoolsSkipped    int // invalid pool addresses and failed crawls

	SignaturesStored    int
	SignatureDuplicates int
	SignaturesErrored   int

	Decoded      int64
	NonSwap      int64
	NotFound     int64
	DecodeFailed int64
}

// Run reads the input mint pairs, resolves the slot range once and processes
// every pair. A pair failure is logged and counted, never fatal.
func (p *Pipeline) Run(ctx context.Context) (*RunResult, error) {
	pairs, err := ReadMintPairs(p.cfg.InputFile)
	if err != nil {
		return nil, err
	}
	if len(pairs) == 0 {
		return nil, fmt.Errorf("no mint pairs in %s", p.cfg.InputFile)
	}

	startSlot, endSlot, err := p.resolveRange(ctx)
	if err != nil {
		return nil, fmt.Errorf("resolve slot range: %w", err)
	}
	p.logger.Printf("Crawling slot range [%d, %d] for %d mint pairs", startSlot, endSlot, len(pairs))

	result := &RunResult{Pairs: len(pairs)}
	for _, pair := range pairs {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		started := time.Now()
		if err := p.runPair(ctx, pair, startSlot, endSlot, result); err != nil {
			if errors.Is(err, context.Canceled) {
				return result, err
			}
			result.PairsFailed++
			observability.RecordPairRun("failed", time.Since(started).Seconds())
			p.logger.Printf("Skipping pair %s/%s: %v", pair.Mint1, pair.Mint2, err)
			continue
		}
		observability.RecordPairRun("ok", time.Since(started).Seconds())
	}
	return result, nil
}

// resolveRange returns the configured slot range, resolving the time range
// through binary search when slots were not given directly.
func (p *Pipeline) resolveRange(ctx context.Context) (int64, int64, error) {
	if p.cfg.StartSlot != 0 || p.cfg.EndSlot != 0 {
		return p.cfg.StartSlot, p.cfg.EndSlot, nil
	}
	return p.finder.ResolveRange(ctx, p.cfg.StartTime, p.cfg.EndTime)
}

func (p *Pipeline) runPair(ctx context.Context, pair domain.MintPair, startSlot, endSlot int64, result *RunResult) error {
	pools, err := p.pools.FetchPools(ctx, pair.Mint1, pair.Mint2)
	if err != nil {
		return fmt.Errorf("fetch pools: %w", err)
	}
	if len(pools) == 0 {
		return errors.New("no pools found")
	}
	result.PoolsDiscovered += len(pools)

	pairKey := pools[0].PairKey()
	p.logger.Printf("Pair %s: %d pools", pairKey, len(pools))

	for _, pool := range pools {
		if err := p.poolStore.Insert(ctx, pool); err != nil && !errors.Is(err, storage.ErrDuplicateKey) {
			return fmt.Errorf("persist pool %s: %w", pool.PoolID, err)
		}
	}

	for _, pool := range pools {
		if err := solana.ValidateAddress(pool.PoolID); err != nil {
			result.PoolsSkipped++
			observability.RecordSignatureSkipped("invalid_pool_address")
			p.logger.Printf("Skipping pool %s: %v", pool.PoolID, err)
			continue
		}
		// Pool vaults and AMM authorities are program-derived, so an
		// on-curve pool ID is a wallet address and likely a listing error.
		if onCurve, err := solana.IsOnCurve(pool.PoolID); err == nil && onCurve {
			p.logger.Printf("Pool %s is on-curve (wallet address, not program-derived)", pool.PoolID)
		}

		crawlResult, err := p.crawl.Crawl(ctx, pairKey, pool.PoolID, startSlot, endSlot)
		if crawlResult != nil {
			result.SignaturesStored += crawlResult.Stored
			result.SignatureDuplicates += crawlResult.Duplicates
			result.SignaturesErrored += crawlResult.Errored
		}
		if err != nil {
			if errors.Is(err, context.Canceled) {
				return err
			}
			result.PoolsSkipped++
			p.logger.Printf("Skipping pool %s: %v", pool.PoolID, err)
		}
	}

	items, err := p.pendingWork(ctx, pairKey, startSlot, endSlot)
	if err != nil {
		return err
	}

	decodeResult, err := p.sched.ProcessAll(ctx, pairKey, pools[0], items)
	if decodeResult != nil {
		result.Decoded += decodeResult.Decoded
		result.NonSwap += decodeResult.NonSwap
		result.NotFound += decodeResult.NotFound
		result.DecodeFailed += decodeResult.Failed
	}
	return err
}

// pendingWork loads the pair's crawled signatures, keeps those inside the
// slot range and drops the ones a previous run already decoded.
func (p *Pipeline) pendingWork(ctx context.Context, pairKey string, startSlot, endSlot int64) ([]scheduler.WorkItem, error) {
	records, err := p.sigStore.List(ctx, pairKey)
	if err != nil {
		return nil, fmt.Errorf("load signatures for %s: %w", pairKey, err)
	}

	var items []scheduler.WorkItem
	for _, rec := range records {
		if rec.Slot < startSlot || rec.Slot > endSlot {
			continue
		}
		decoded, err := p.deltaStore.Exists(ctx, pairKey, rec.Signature)
		if err != nil {
			return nil, fmt.Errorf("check decoded state of %s: %w", rec.Signature, err)
		}
		if decoded {
			continue
		}
		items = append(items, scheduler.WorkItem{Signature: rec.Signature, Account: rec.Account})
	}
	return items, nil
}
