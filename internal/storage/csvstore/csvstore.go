// Package csvstore implements the storage interfaces over delimited files.
// Each destination is one CSV file: header on first write, append-only,
// deduplicated by first column. The layout under the output root mirrors
// the crawl stages:
//
//	SIGNATURE/<pair>.csv   signature index
//	DATA/<pair>.csv        balance-delta output
//	POOL/POOL_<pair>.csv   pool index
package csvstore

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"solana-pool-crawler/internal/storage"
)

// destination is one CSV file plus its known-key set. The mutex guards the
// full check-then-append sequence so concurrent workers cannot write the
// same key twice.
type destination struct {
	mu     sync.Mutex
	path   string
	header []string
	known  map[string]struct{}
	loaded bool
}

// load reads the existing file once and indexes first-column keys.
// Missing file means an empty destination.
func (d *destination) load() error {
	if d.loaded {
		return nil
	}
	d.known = make(map[string]struct{})

	f, err := os.Open(d.path)
	if err != nil {
		if os.IsNotExist(err) {
			d.loaded = true
			return nil
		}
		return fmt.Errorf("open %s: %w", d.path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	first := true
	for {
		row, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("read %s: %w", d.path, err)
		}
		if first {
			first = false
			continue // header
		}
		if len(row) > 0 {
			d.known[row[0]] = struct{}{}
		}
	}

	d.loaded = true
	return nil
}

// append writes one row keyed by its first column. Returns
// storage.ErrDuplicateKey if the key is already present.
func (d *destination) append(row []string) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if err := d.load(); err != nil {
		return err
	}

	key := row[0]
	if _, exists := d.known[key]; exists {
		return storage.ErrDuplicateKey
	}

	if err := os.MkdirAll(filepath.Dir(d.path), 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	f, err := os.OpenFile(d.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open %s: %w", d.path, err)
	}
	defer f.Close()

	stat, err := f.Stat()
	if err != nil {
		return fmt.Errorf("stat %s: %w", d.path, err)
	}

	w := csv.NewWriter(f)
	if stat.Size() == 0 {
		if err := w.Write(d.header); err != nil {
			return fmt.Errorf("write header: %w", err)
		}
	}
	if err := w.Write(row); err != nil {
		return fmt.Errorf("write row: %w", err)
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("flush %s: %w", d.path, err)
	}

	d.known[key] = struct{}{}
	return nil
}

// has reports whether the key is present in the destination.
func (d *destination) has(key string) (bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if err := d.load(); err != nil {
		return false, err
	}
	_, exists := d.known[key]
	return exists, nil
}

// rows returns all data rows of the destination in file order.
func (d *destination) rows() ([][]string, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	f, err := os.Open(d.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("open %s: %w", d.path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	all, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", d.path, err)
	}
	if len(all) <= 1 {
		return nil, nil
	}
	return all[1:], nil
}

// destinations lazily creates one destination per key, so different pairs
// can be written concurrently while each file has a single lock.
type destinations struct {
	mu     sync.Mutex
	byPath map[string]*destination
}

func newDestinations() *destinations {
	return &destinations{byPath: make(map[string]*destination)}
}

func (ds *destinations) get(path string, header []string) *destination {
	ds.mu.Lock()
	defer ds.mu.Unlock()

	d, ok := ds.byPath[path]
	if !ok {
		d = &destination{path: path, header: header}
		ds.byPath[path] = d
	}
	return d
}
