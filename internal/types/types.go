package types

import (
	"time"
)

// Boat represents a tracked vessel and its recorded history
type Boat struct {
	ID          string            `json:"id"`
	Name        string            `json:"name"`
	HomePort    string            `json:"home_port"`
	Flag        string            `json:"flag"`
	LaunchDate  *time.Time        `json:"launch_date,omitempty"`
	Positions   []PositionRecord  `json:"positions"`
	ArrivalLogs []ArrivalLogEntry `json:"arrival_logs"`
}

// Clone returns a deep copy of the boat, including its position and
// arrival history
func (b *Boat) Clone() *Boat {
	if b == nil {
		return nil
	}
	clone := *b
	if b.LaunchDate != nil {
		launch := *b.LaunchDate
		clone.LaunchDate = &launch
	}
	clone.Positions = make([]PositionRecord, len(b.Positions))
	copy(clone.Positions, b.Positions)
	clone.ArrivalLogs = make([]ArrivalLogEntry, len(b.ArrivalLogs))
	copy(clone.ArrivalLogs, b.ArrivalLogs)
	return &clone
}

// PositionRecord is a timestamped coordinate appended to a boat's history
type PositionRecord struct {
	Latitude  float64   `json:"latitude"`
	Longitude float64   `json:"longitude"`
	Timestamp time.Time `json:"timestamp"`
}

// Equal reports whether two position records carry the same values
func (p PositionRecord) Equal(other PositionRecord) bool {
	return p.Latitude == other.Latitude &&
		p.Longitude == other.Longitude &&
		p.Timestamp.Equal(other.Timestamp)
}

// ArrivalLogEntry is a timestamped arrival event appended to a boat's history
type ArrivalLogEntry struct {
	Port      string    `json:"port"`
	Timestamp time.Time `json:"timestamp"`
	Note      string    `json:"note"`
}

// Equal reports whether two arrival log entries carry the same values
func (a ArrivalLogEntry) Equal(other ArrivalLogEntry) bool {
	return a.Port == other.Port &&
		a.Note == other.Note &&
		a.Timestamp.Equal(other.Timestamp)
}

// FleetEvent is an entry in the registry's mutation journal
type FleetEvent struct {
	ID        string    `json:"id"`
	Timestamp time.Time `json:"timestamp"`
	Message   string    `json:"message"`
}
