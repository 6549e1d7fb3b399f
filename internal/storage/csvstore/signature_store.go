package csvstore

import (
	"context"
	"path/filepath"
	"strconv"

	"solana-pool-crawler/internal/domain"
	"solana-pool-crawler/internal/storage"
)

var signatureHeader = []string{"Signature", "Slot", "Account"}

// SignatureStore implements storage.SignatureStore over CSV files under
// <root>/SIGNATURE/.
type SignatureStore struct {
	dir   string
	dests *destinations
}

// NewSignatureStore creates a CSV-backed signature store under root.
func NewSignatureStore(root string) *SignatureStore {
	return &SignatureStore{
		dir:   filepath.Join(root, "SIGNATURE"),
		dests: newDestinations(),
	}
}

func (s *SignatureStore) dest(pair string) *destination {
	return s.dests.get(filepath.Join(s.dir, pair+".csv"), signatureHeader)
}

// Insert adds a new record. Returns ErrDuplicateKey if the signature exists.
func (s *SignatureStore) Insert(_ context.Context, pair string, rec *domain.SignatureRecord) error {
	if rec == nil || rec.Signature == "" || pair == "" {
		return storage.ErrInvalidInput
	}
	return s.dest(pair).append([]string{
		rec.Signature,
		strconv.FormatInt(rec.Slot, 10),
		rec.Account,
	})
}

// Exists reports whether the signature is already present in the destination.
func (s *SignatureStore) Exists(_ context.Context, pair, signature string) (bool, error) {
	return s.dest(pair).has(signature)
}

// List retrieves all records of a destination in file order.
func (s *SignatureStore) List(_ context.Context, pair string) ([]*domain.SignatureRecord, error) {
	rows, err := s.dest(pair).rows()
	if err != nil {
		return nil, err
	}

	records := make([]*domain.SignatureRecord, 0, len(rows))
	for _, row := range rows {
		if len(row) < 3 {
			continue
		}
		slot, err := strconv.ParseInt(row[1], 10, 64)
		if err != nil {
			continue
		}
		records = append(records, &domain.SignatureRecord{
			Signature: row[0],
			Slot:      slot,
			Account:   row[2],
		})
	}
	return records, nil
}

var _ storage.SignatureStore = (*SignatureStore)(nil)
