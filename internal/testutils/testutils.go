package testutils

import (
	"time"

	"github.com/fleetcmd/fleet-registry/internal/types"
)

// FixedClock is a Clock that always returns the same instant, optionally
// advanced by Tick between operations.
type FixedClock struct {
	Current time.Time
}

// NewFixedClock creates a clock pinned to a stable test instant
func NewFixedClock() *FixedClock {
	return &FixedClock{Current: time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)}
}

// Now returns the clock's current instant
func (c *FixedClock) Now() time.Time {
	return c.Current
}

// Tick advances the clock by d and returns the new instant
func (c *FixedClock) Tick(d time.Duration) time.Time {
	c.Current = c.Current.Add(d)
	return c.Current
}

// MockBoat creates a boat with one position and one arrival for testing
func MockBoat(id, name string) *types.Boat {
	at := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	return &types.Boat{
		ID:       id,
		Name:     name,
		HomePort: "Oslo",
		Flag:     "NO",
		Positions: []types.PositionRecord{
			{Latitude: 59.91, Longitude: 10.75, Timestamp: at},
		},
		ArrivalLogs: []types.ArrivalLogEntry{
			{Port: "Bergen", Timestamp: at.Add(time.Hour), Note: "on schedule"},
		},
	}
}
