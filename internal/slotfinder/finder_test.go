package slotfinder

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"solana-pool-crawler/internal/solana"
)

// fakeChain serves block times from a fixed ledger: slot i has block time
// genesis + i*slotSeconds, except slots in the skipped set.
type fakeChain struct {
	latest      int64
	genesis     int64
	slotSeconds int64
	skipped     map[int64]bool
	transportAt map[int64]bool
	probes      int
}

func (c *fakeChain) GetSlot(ctx context.Context) (int64, error) {
	return c.latest, nil
}

func (c *fakeChain) GetBlockTime(ctx context.Context, slot int64) (int64, error) {
	c.probes++
	if c.transportAt[slot] {
		return 0, errors.New("max retries exceeded: i/o timeout")
	}
	if c.skipped[slot] {
		return 0, fmt.Errorf("%w: slot %d", solana.ErrSlotSkipped, slot)
	}
	return c.genesis + slot*c.slotSeconds, nil
}

func testFinder(chain *fakeChain) *Finder {
	return New(chain, Options{
		ProbeDelay: time.Microsecond,
		Logger:     log.New(os.Stderr, "[test] ", log.LstdFlags),
	})
}

func TestFindClosestSlot_ExactHit(t *testing.T) {
	chain := &fakeChain{latest: 1000, genesis: 1700000000, slotSeconds: 1}
	finder := testFinder(chain)

	slot, err := finder.FindClosestSlot(context.Background(), 1700000500)
	require.NoError(t, err)
	assert.Equal(t, int64(500), slot)
}

func TestFindClosestSlot_BetweenSlots(t *testing.T) {
	// 10-second slots; target falls between slot 49 and 50, closest is 50.
	chain := &fakeChain{latest: 100, genesis: 1700000000, slotSeconds: 10}
	finder := testFinder(chain)

	slot, err := finder.FindClosestSlot(context.Background(), 1700000496)
	require.NoError(t, err)
	assert.Equal(t, int64(50), slot)
}

func TestFindClosestSlot_Monotonic(t *testing.T) {
	// For T1 < T2 with no skipped slots, findClosestSlot(T1) <= findClosestSlot(T2).
	chain := &fakeChain{latest: 5000, genesis: 1700000000, slotSeconds: 2}
	finder := testFinder(chain)
	ctx := context.Background()

	prev := int64(0)
	for _, target := range []int64{1700000100, 1700001000, 1700003333, 1700007777} {
		slot, err := finder.FindClosestSlot(ctx, target)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, slot, prev, "resolver went backward for target %d", target)
		prev = slot
	}
}

func TestFindClosestSlot_SkippedSlotsNarrowUpperBound(t *testing.T) {
	chain := &fakeChain{
		latest:      1000,
		genesis:     1700000000,
		slotSeconds: 1,
		skipped:     map[int64]bool{500: true, 499: true},
	}
	finder := testFinder(chain)

	slot, err := finder.FindClosestSlot(context.Background(), 1700000500)
	require.NoError(t, err)
	// The probed midpoint 500 is skipped, so the search narrows downward
	// and settles on an earlier slot.
	assert.LessOrEqual(t, slot, int64(500))
	assert.Greater(t, slot, int64(0))
}

func TestFindClosestSlot_AllSkipped(t *testing.T) {
	skipped := make(map[int64]bool)
	for i := int64(1); i <= 31; i++ {
		skipped[i] = true
	}
	chain := &fakeChain{latest: 31, genesis: 1700000000, slotSeconds: 1, skipped: skipped}
	finder := testFinder(chain)

	_, err := finder.FindClosestSlot(context.Background(), 1700000010)
	require.ErrorIs(t, err, ErrNoSlot)
}

func TestFindClosestSlot_TransportErrorAborts(t *testing.T) {
	chain := &fakeChain{
		latest:      1000,
		genesis:     1700000000,
		slotSeconds: 1,
		transportAt: map[int64]bool{500: true},
	}
	finder := testFinder(chain)

	_, err := finder.FindClosestSlot(context.Background(), 1700000500)
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNoSlot)
}

func TestFindClosestSlot_ProbeCount(t *testing.T) {
	// Binary search over n slots takes O(log n) probes.
	chain := &fakeChain{latest: 1 << 20, genesis: 1700000000, slotSeconds: 1}
	finder := testFinder(chain)

	_, err := finder.FindClosestSlot(context.Background(), 1700000000+(1<<19))
	require.NoError(t, err)
	assert.LessOrEqual(t, chain.probes, 25)
}

func TestFindClosestSlot_ContextCancelled(t *testing.T) {
	chain := &fakeChain{latest: 1000, genesis: 1700000000, slotSeconds: 1}
	finder := New(chain, Options{ProbeDelay: time.Hour})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := finder.FindClosestSlot(ctx, 1700000500)
	require.ErrorIs(t, err, context.Canceled)
}

func TestResolveRange(t *testing.T) {
	chain := &fakeChain{latest: 1000, genesis: 1700000000, slotSeconds: 1}
	finder := testFinder(chain)

	start, end, err := finder.ResolveRange(context.Background(),
		time.Unix(1700000100, 0), time.Unix(1700000900, 0))
	require.NoError(t, err)
	assert.Equal(t, int64(100), start)
	assert.Equal(t, int64(900), end)
	assert.Less(t, start, end)
}
