package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/klauspost/compress/zstd"

	"polyshade/internal/types"
)

// snapshotVersion guards against reading snapshots written by an
// incompatible schema.
const snapshotVersion = 1

// snapshot is the on-disk state schema: exactly the state the browser's
// local storage would hold. The weather cache is intentionally absent.
type snapshot struct {
	Version     int                     `json:"version"`
	Polygons    []*types.Polygon        `json:"polygons"`
	DataSources []*types.DataSource     `json:"data_sources"`
	Selection   types.TimelineSelection `json:"selection"`
}

// saveLocked writes the current state to the snapshot file, zstd-compressed.
// Best effort: failures are logged, never propagated, so a full disk cannot
// break a mutation. Callers hold the write lock.
func (s *Store) saveLocked() {
	if s.snapshotPath == "" {
		return
	}
	if err := s.writeSnapshot(); err != nil {
		s.logger.Error("saving state snapshot failed", "path", s.snapshotPath, "error", err)
	}
}

// writeSnapshot serializes state to a temp file and renames it into place so
// a crash mid-write never leaves a truncated snapshot.
func (s *Store) writeSnapshot() error {
	snap := snapshot{
		Version:   snapshotVersion,
		Selection: s.selection,
	}
	for _, p := range s.polygons {
		snap.Polygons = append(snap.Polygons, p)
	}
	for _, ds := range s.dataSources {
		snap.DataSources = append(snap.DataSources, ds)
	}

	if err := os.MkdirAll(filepath.Dir(s.snapshotPath), 0o755); err != nil {
		return fmt.Errorf("creating snapshot directory: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.snapshotPath), ".polyshade-state-*")
	if err != nil {
		return fmt.Errorf("creating temp snapshot: %w", err)
	}
	defer os.Remove(tmp.Name())

	enc, err := zstd.NewWriter(tmp)
	if err != nil {
		tmp.Close()
		return fmt.Errorf("creating zstd writer: %w", err)
	}
	if err := json.NewEncoder(enc).Encode(snap); err != nil {
		enc.Close()
		tmp.Close()
		return fmt.Errorf("encoding snapshot: %w", err)
	}
	if err := enc.Close(); err != nil {
		tmp.Close()
		return fmt.Errorf("flushing zstd stream: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing temp snapshot: %w", err)
	}

	if err := os.Rename(tmp.Name(), s.snapshotPath); err != nil {
		return fmt.Errorf("replacing snapshot: %w", err)
	}
	return nil
}

// restore loads state from the snapshot file. Called once from New, before
// the store is shared.
func (s *Store) restore() error {
	f, err := os.Open(s.snapshotPath)
	if err != nil {
		return err
	}
	defer f.Close()

	dec, err := zstd.NewReader(f)
	if err != nil {
		return fmt.Errorf("creating zstd reader: %w", err)
	}
	defer dec.Close()

	var snap snapshot
	if err := json.NewDecoder(dec).Decode(&snap); err != nil {
		return fmt.Errorf("decoding snapshot: %w", err)
	}
	if snap.Version != snapshotVersion {
		return fmt.Errorf("snapshot version %d is not supported", snap.Version)
	}

	for _, p := range snap.Polygons {
		s.polygons[p.ID] = p
	}
	for _, ds := range snap.DataSources {
		s.dataSources[ds.ID] = ds
	}
	if err := snap.Selection.Validate(); err == nil {
		s.selection = snap.Selection
	}
	return nil
}
