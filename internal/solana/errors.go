package solana

import "errors"

// Terminal RPC outcomes. Callers use errors.Is to distinguish "no data"
// from transport failure after retry exhaustion.
var (
	// ErrNotFound is returned when the node has no record of the requested
	// transaction (not indexed or not yet confirmed).
	ErrNotFound = errors.New("not found")

	// ErrSlotSkipped is returned by GetBlockTime and GetBlock for slots
	// that carry no block (skipped or pruned by the cluster).
	ErrSlotSkipped = errors.New("slot skipped")
)
