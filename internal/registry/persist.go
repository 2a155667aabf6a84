package registry

import (
	"os"
	"path/filepath"

	"github.com/fleetcmd/fleet-registry/internal/codec"
	"github.com/fleetcmd/fleet-registry/internal/types"
)

// Save writes the full in-memory state to path as a JSON document. The
// write is atomic: the document is written to a temporary file in the same
// directory and renamed over the target, so a failed save leaves any
// previous file untouched.
func (r *Registry) Save(path string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	snap := codec.Snapshot{
		Boats:  make([]*types.Boat, 0, len(r.order)),
		Events: make([]types.FleetEvent, len(r.events)),
	}
	for _, id := range r.order {
		snap.Boats = append(snap.Boats, r.boats[id])
	}
	copy(snap.Events, r.events)

	data, err := codec.Encode(snap, r.clock.Now())
	if err != nil {
		return &types.PersistenceError{Op: "save", Path: path, Err: err}
	}
	if err := writeFileAtomic(path, data); err != nil {
		return &types.PersistenceError{Op: "save", Path: path, Err: err}
	}
	return nil
}

// Load replaces the in-memory state with the decoded content of path. On
// any failure (missing file, unreadable file, schema violation) the
// registry keeps its prior state. A missing file is reported as a
// PersistenceError wrapping fs.ErrNotExist so callers can start empty.
func (r *Registry) Load(path string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	data, err := os.ReadFile(path)
	if err != nil {
		return &types.PersistenceError{Op: "load", Path: path, Err: err}
	}
	snap, err := codec.Decode(data)
	if err != nil {
		return &types.PersistenceError{Op: "load", Path: path, Err: err}
	}

	boats := make(map[string]*types.Boat, len(snap.Boats))
	order := make([]string, 0, len(snap.Boats))
	for _, boat := range snap.Boats {
		boats[boat.ID] = boat
		order = append(order, boat.ID)
	}

	// Only now that decoding fully succeeded is the prior state replaced.
	r.boats = boats
	r.order = order
	r.events = snap.Events

	return nil
}

// writeFileAtomic writes data to a temporary file next to path and renames
// it into place, closing and removing the temporary file on every failure
// path.
func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".tmp-")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return err
	}
	return nil
}
