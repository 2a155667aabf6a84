// Package codec translates between the in-memory fleet state and the
// on-disk JSON document.
package codec

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"

	"github.com/fleetcmd/fleet-registry/internal/types"
)

// Version is the current fleet document schema version. Documents without
// a version field are treated as version 1, which predates the field.
const Version = 1

// Snapshot is the full registry state handed to Encode and produced
// by Decode.
type Snapshot struct {
	Boats  []*types.Boat
	Events []types.FleetEvent
}

// document is the on-disk layout of a fleet file
type document struct {
	Version int                `json:"version"`
	SavedAt time.Time          `json:"saved_at"`
	Boats   []*types.Boat      `json:"boats"`
	Events  []types.FleetEvent `json:"events,omitempty"`
}

// Encode serializes a snapshot into an indented JSON document. savedAt is
// stamped into the document for operator reference only; Decode ignores it.
func Encode(snap Snapshot, savedAt time.Time) ([]byte, error) {
	doc := document{
		Version: Version,
		SavedAt: savedAt,
		Boats:   snap.Boats,
		Events:  snap.Events,
	}
	if doc.Boats == nil {
		doc.Boats = []*types.Boat{}
	}
	return json.MarshalIndent(doc, "", "  ")
}

// Decode parses and validates a fleet document. It returns a SchemaError
// when the document is malformed: wrong field types, unparsable timestamps,
// missing boat id or name, duplicate ids, or a version newer than this
// build understands. Unknown fields are ignored for forward compatibility.
func Decode(data []byte) (Snapshot, error) {
	var doc document
	dec := json.NewDecoder(bytes.NewReader(data))
	if err := dec.Decode(&doc); err != nil {
		return Snapshot{}, &types.SchemaError{Detail: "malformed JSON", Err: err}
	}

	if doc.Version > Version {
		return Snapshot{}, &types.SchemaError{
			Detail: "unsupported document version",
		}
	}

	seen := make(map[string]bool, len(doc.Boats))
	for i, boat := range doc.Boats {
		if boat == nil {
			return Snapshot{}, &types.SchemaError{Detail: "null boat entry"}
		}
		if boat.ID == "" {
			return Snapshot{}, &types.SchemaError{Detail: boatField(i, "id")}
		}
		if boat.Name == "" {
			return Snapshot{}, &types.SchemaError{Detail: boatField(i, "name")}
		}
		if seen[boat.ID] {
			return Snapshot{}, &types.SchemaError{
				Detail: "duplicate boat id " + boat.ID,
			}
		}
		seen[boat.ID] = true

		// Boats written before a history entry existed may omit the
		// history arrays entirely.
		if boat.Positions == nil {
			boat.Positions = []types.PositionRecord{}
		}
		if boat.ArrivalLogs == nil {
			boat.ArrivalLogs = []types.ArrivalLogEntry{}
		}
	}

	return Snapshot{Boats: doc.Boats, Events: doc.Events}, nil
}

func boatField(index int, field string) string {
	return fmt.Sprintf("boat entry %d is missing required field %s", index, field)
}
