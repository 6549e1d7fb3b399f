package pipeline

import (
	"errors"
	"fmt"
	"time"
)

// Config is the full configuration of one crawl run. It is constructed once
// by the caller and passed by value; components never consult ambient state.
type Config struct {
	// Endpoints lists the RPC endpoints to spread decode work across.
	// At least one is required.
	Endpoints []string

	// OutputRoot is the directory holding the SIGNATURE, DATA and POOL
	// tables.
	OutputRoot string

	// InputFile is the CSV of mint pairs to process.
	InputFile string

	// Slot range. When both are zero the time range below is resolved
	// through the slot finder instead.
	StartSlot int64
	EndSlot   int64

	// Time range, used only when the slot range is unset.
	StartTime time.Time
	EndTime   time.Time

	// PageLimit is the signature page size, capped by the RPC at 1000.
	PageLimit int

	// WorkersPerEndpoint scales the decode worker pool; the worker count
	// is WorkersPerEndpoint * len(Endpoints).
	WorkersPerEndpoint int
}

// Validate reports the first fatal configuration problem. An empty endpoint
// list fails fast since no remote work can proceed without one.
func (c *Config) Validate() error {
	if len(c.Endpoints) == 0 {
		return errors.New("config: no RPC endpoints configured")
	}
	if c.OutputRoot == "" {
		return errors.New("config: output root is required")
	}
	if c.InputFile == "" {
		return errors.New("config: input file is required")
	}

	hasSlots := c.StartSlot != 0 || c.EndSlot != 0
	if hasSlots {
		if c.StartSlot <= 0 || c.EndSlot <= 0 || c.StartSlot > c.EndSlot {
			return fmt.Errorf("config: invalid slot range [%d, %d]", c.StartSlot, c.EndSlot)
		}
		return nil
	}

	if c.StartTime.IsZero() || c.EndTime.IsZero() {
		return errors.New("config: either a slot range or a time range is required")
	}
	if !c.StartTime.Before(c.EndTime) {
		return fmt.Errorf("config: start time %s not before end time %s", c.StartTime, c.EndTime)
	}
	return nil
}
