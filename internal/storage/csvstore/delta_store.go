package csvstore

import (
	"context"
	"path/filepath"
	"strconv"

	"solana-pool-crawler/internal/domain"
	"solana-pool-crawler/internal/storage"
)

var deltaHeader = []string{"Signature", "TokenA", "TokenADelta", "TokenB", "TokenBDelta", "BlockTime"}

// BalanceDeltaStore implements storage.BalanceDeltaStore over CSV files
// under <root>/DATA/.
type BalanceDeltaStore struct {
	dir   string
	dests *destinations
}

// NewBalanceDeltaStore creates a CSV-backed balance-delta store under root.
func NewBalanceDeltaStore(root string) *BalanceDeltaStore {
	return &BalanceDeltaStore{
		dir:   filepath.Join(root, "DATA"),
		dests: newDestinations(),
	}
}

func (s *BalanceDeltaStore) dest(pair string) *destination {
	return s.dests.get(filepath.Join(s.dir, pair+".csv"), deltaHeader)
}

// Insert adds a new record. Returns ErrDuplicateKey if the signature exists.
func (s *BalanceDeltaStore) Insert(_ context.Context, pair string, rec *domain.BalanceDelta) error {
	if rec == nil || rec.Signature == "" || pair == "" {
		return storage.ErrInvalidInput
	}

	blockTime := ""
	if rec.BlockTime != nil {
		blockTime = strconv.FormatInt(*rec.BlockTime, 10)
	}

	return s.dest(pair).append([]string{
		rec.Signature,
		rec.TokenA,
		strconv.FormatFloat(rec.TokenADelta, 'f', -1, 64),
		rec.TokenB,
		strconv.FormatFloat(rec.TokenBDelta, 'f', -1, 64),
		blockTime,
	})
}

// Exists reports whether the signature is already present in the destination.
func (s *BalanceDeltaStore) Exists(_ context.Context, pair, signature string) (bool, error) {
	return s.dest(pair).has(signature)
}

// List retrieves all records of a destination in file order.
func (s *BalanceDeltaStore) List(_ context.Context, pair string) ([]*domain.BalanceDelta, error) {
	rows, err := s.dest(pair).rows()
	if err != nil {
		return nil, err
	}

	records := make([]*domain.BalanceDelta, 0, len(rows))
	for _, row := range rows {
		if len(row) < 6 {
			continue
		}
		deltaA, errA := strconv.ParseFloat(row[2], 64)
		deltaB, errB := strconv.ParseFloat(row[4], 64)
		if errA != nil || errB != nil {
			continue
		}

		rec := &domain.BalanceDelta{
			Signature:   row[0],
			TokenA:      row[1],
			TokenADelta: deltaA,
			TokenB:      row[3],
			TokenBDelta: deltaB,
		}
		if row[5] != "" {
			if ts, err := strconv.ParseInt(row[5], 10, 64); err == nil {
				rec.BlockTime = &ts
			}
		}
		records = append(records, rec)
	}
	return records, nil
}

var _ storage.BalanceDeltaStore = (*BalanceDeltaStore)(nil)
