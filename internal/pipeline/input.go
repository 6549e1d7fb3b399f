package pipeline

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"

	"solana-pool-crawler/internal/domain"
)

// ReadMintPairs loads the input CSV of token mint pairs. The first row is
// treated as a header and skipped; rows with fewer than two columns or empty
// mints are ignored.
func ReadMintPairs(path string) ([]domain.MintPair, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open input file: %w", err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1

	var pairs []domain.MintPair
	first := true
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read input file %s: %w", path, err)
		}
		if first {
			first = false
			continue
		}
		if len(row) < 2 {
			continue
		}

		mint1 := strings.TrimSpace(row[0])
		mint2 := strings.TrimSpace(row[1])
		if mint1 == "" || mint2 == "" {
			continue
		}
		pairs = append(pairs, domain.MintPair{Mint1: mint1, Mint2: mint2})
	}
	return pairs, nil
}
