// Package state persists platform snapshots and drives boot recovery from
// the snapshot plus the journal tail.
package state

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"github.com/yanun0323/errors"

	"gxcoin/internal/platform"
)

// Snapshot is the on-disk snapshot document.
type Snapshot struct {
	Timestamp int64           `json:"timestamp"`
	State     platform.Export `json:"state"`
}

// NewSnapshot wraps an export with the capture time.
func NewSnapshot(export platform.Export) Snapshot {
	return Snapshot{
		Timestamp: time.Now().UTC().UnixNano(),
		State:     export,
	}
}

// WriteSnapshot writes a snapshot to disk as JSON. The write goes through a
// temp file and rename, so a crash never leaves a half-written snapshot.
func WriteSnapshot(path string, snapshot Snapshot) error {
	data, err := json.MarshalIndent(snapshot, "", "  ")
	if err != nil {
		return errors.Wrap(err, "marshal snapshot")
	}
	dir := filepath.Dir(path)
	if dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return errors.Wrap(err, "create snapshot dir")
		}
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return errors.Wrap(err, "write snapshot")
	}
	return errors.Wrap(os.Rename(tmp, path), "replace snapshot")
}

// ReadSnapshot loads a snapshot from disk.
func ReadSnapshot(path string) (Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Snapshot{}, err
	}
	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return Snapshot{}, errors.Wrap(err, "unmarshal snapshot")
	}
	return snap, nil
}
