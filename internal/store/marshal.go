package store

import (
	"encoding/json"
	"fmt"

	"github.com/roach88/gradebook/internal/model"
)

// marshalSnapshot serializes the snapshot in the persisted layout.
func marshalSnapshot(snap model.Snapshot) ([]byte, error) {
	data, err := json.Marshal(snap)
	if err != nil {
		return nil, fmt.Errorf("marshal snapshot: %w", err)
	}
	return data, nil
}

// unmarshalSnapshot parses a persisted snapshot. Missing collections become
// empty ones; the flat attendanceRecords copy is ignored in favour of the
// attendance embedded in each student.
func unmarshalSnapshot(data []byte) (model.Snapshot, error) {
	var snap model.Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return model.Snapshot{}, fmt.Errorf("unmarshal snapshot: %w", err)
	}
	snap.Normalize()
	return snap, nil
}
