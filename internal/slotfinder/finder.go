// Package slotfinder resolves wall-clock timestamps to slot numbers by
// binary search over the cluster's block times.
package slotfinder

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"solana-pool-crawler/internal/observability"
	"solana-pool-crawler/internal/solana"
)

// DefaultProbeDelay is the pause before each block-time probe, keeping the
// search under upstream rate limits.
const DefaultProbeDelay = 20 * time.Millisecond

// ErrNoSlot is returned when every probed slot was skipped and no block
// time could be compared against the target.
var ErrNoSlot = errors.New("no slot with a block time found")

// BlockTimeSource is the slice of the RPC surface the finder needs.
type BlockTimeSource interface {
	GetSlot(ctx context.Context) (int64, error)
	GetBlockTime(ctx context.Context, slot int64) (int64, error)
}

// Finder locates the slot whose block time is closest to a target timestamp.
type Finder struct {
	rpc        BlockTimeSource
	probeDelay time.Duration
	logger     *log.Logger
}

// Options contains configuration for creating a Finder.
type Options struct {
	ProbeDelay time.Duration
	Logger     *log.Logger
}

// New creates a Finder over the given block-time source.
func New(rpc BlockTimeSource, opts Options) *Finder {
	probeDelay := opts.ProbeDelay
	if probeDelay == 0 {
		probeDelay = DefaultProbeDelay
	}

	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}

	return &Finder{
		rpc:        rpc,
		probeDelay: probeDelay,
		logger:     logger,
	}
}

// FindClosestSlot binary-searches [1, latest] for the slot whose block time
// is closest to targetTimestamp (Unix seconds). Skipped slots narrow the
// upper bound below the probe, which biases the result toward earlier slots
// when gaps cluster near the target; the bias is accepted, matching how the
// crawl range is consumed (a slightly wider range only costs extra paging).
// Transport failures that survive the client's retry policy abort the search.
func (f *Finder) FindClosestSlot(ctx context.Context, targetTimestamp int64) (int64, error) {
	latest, err := f.rpc.GetSlot(ctx)
	if err != nil {
		return 0, fmt.Errorf("get latest slot: %w", err)
	}

	lo, hi := int64(1), latest
	best := int64(-1)
	var bestDiff int64

	probes := 0
	for lo <= hi {
		mid := lo + (hi-lo)/2

		select {
		case <-ctx.Done():
			return 0, ctx.Err()
		case <-time.After(f.probeDelay):
		}

		probes++
		observability.DefaultMetrics.SlotProbes.Inc()
		blockTime, err := f.rpc.GetBlockTime(ctx, mid)
		if err != nil {
			if errors.Is(err, solana.ErrSlotSkipped) {
				observability.DefaultMetrics.SkippedSlotProbes.Inc()
				hi = mid - 1
				continue
			}
			return 0, fmt.Errorf("get block time for slot %d: %w", mid, err)
		}

		diff := blockTime - targetTimestamp
		if diff < 0 {
			diff = -diff
		}
		if best == -1 || diff < bestDiff {
			best, bestDiff = mid, diff
		}

		if blockTime < targetTimestamp {
			lo = mid + 1
		} else {
			hi = mid - 1
		}
	}

	if best == -1 {
		return 0, ErrNoSlot
	}

	f.logger.Printf("Resolved timestamp %d to slot %d (%d probes, off by %ds)",
		targetTimestamp, best, probes, bestDiff)
	return best, nil
}

// ResolveRange resolves a [from, to] time range to a slot range.
func (f *Finder) ResolveRange(ctx context.Context, from, to time.Time) (startSlot, endSlot int64, err error) {
	startSlot, err = f.FindClosestSlot(ctx, from.Unix())
	if err != nil {
		return 0, 0, fmt.Errorf("resolve start of range: %w", err)
	}
	endSlot, err = f.FindClosestSlot(ctx, to.Unix())
	if err != nil {
		return 0, 0, fmt.Errorf("resolve end of range: %w", err)
	}
	return startSlot, endSlot, nil
}
