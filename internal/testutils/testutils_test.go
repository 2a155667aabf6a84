package testutils

import (
	"testing"
	"time"
)

// TestFixedClock tests that the clock only moves when ticked
func TestFixedClock(t *testing.T) {
	clock := NewFixedClock()

	first := clock.Now()
	if !clock.Now().Equal(first) {
		t.Error("Expected repeated Now() calls to return the same instant")
	}

	advanced := clock.Tick(time.Hour)
	if !advanced.Equal(first.Add(time.Hour)) {
		t.Errorf("Expected tick to advance by an hour, got %v", advanced)
	}
	if !clock.Now().Equal(advanced) {
		t.Error("Expected Now() to reflect the ticked instant")
	}
}

// TestMockBoat tests the shape of the mock boat
func TestMockBoat(t *testing.T) {
	boat := MockBoat("B1", "Orion")

	if boat.ID != "B1" || boat.Name != "Orion" {
		t.Errorf("Unexpected identity %s/%s", boat.ID, boat.Name)
	}
	if len(boat.Positions) != 1 {
		t.Errorf("Expected 1 position, got %d", len(boat.Positions))
	}
	if len(boat.ArrivalLogs) != 1 {
		t.Errorf("Expected 1 arrival log, got %d", len(boat.ArrivalLogs))
	}
}
