package cache

import (
	"compress/gzip"
	"encoding/gob"
	"fmt"
	"os"
	"time"

	"github.com/covid19trackerph/tracker/pkg/filewriter"
)

// Snapshot is a serialized derived table
type Snapshot[T any] struct {
	// SettingsHash identifies the pipeline settings the rows were derived with
	SettingsHash string
	Sources      []string
	CreatedAt    time.Time
	Rows         []T
}

// Save writes snap to path as gzip-compressed gob. The file is replaced
// atomically, so a failed save keeps the previous cache.
func Save[T any](path string, snap Snapshot[T]) error {
	fw, err := filewriter.New(path)
	if err != nil {
		return err
	}

	zw := gzip.NewWriter(fw)
	if err := gob.NewEncoder(zw).Encode(snap); err != nil {
		fw.Abort()
		return fmt.Errorf("encode %s: %w", path, err)
	}
	if err := zw.Close(); err != nil {
		fw.Abort()
		return fmt.Errorf("compress %s: %w", path, err)
	}
	return fw.Close()
}

// Load reads a snapshot written by Save
func Load[T any](path string) (Snapshot[T], error) {
	var snap Snapshot[T]

	f, err := os.Open(path)
	if err != nil {
		return snap, err
	}
	defer f.Close()

	zr, err := gzip.NewReader(f)
	if err != nil {
		return snap, fmt.Errorf("decompress %s: %w", path, err)
	}
	defer zr.Close()

	if err := gob.NewDecoder(zr).Decode(&snap); err != nil {
		return snap, fmt.Errorf("decode %s: %w", path, err)
	}
	return snap, nil
}
