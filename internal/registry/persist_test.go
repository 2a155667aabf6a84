package registry

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/fleetcmd/fleet-registry/internal/types"
)

// TestSaveLoadRoundTrip tests that a saved registry is reproduced exactly
func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fleet_data.json")

	reg, clock := newTestRegistry()
	if _, err := reg.AddBoat("B1", "Orion", "Oslo", "NO"); err != nil {
		t.Fatalf("AddBoat failed: %v", err)
	}
	if _, err := reg.AddBoat("B2", "Vega", "Santos", "BR"); err != nil {
		t.Fatalf("AddBoat failed: %v", err)
	}
	if _, err := reg.RecordPosition("B1", 45.0, -122.0, time.Time{}); err != nil {
		t.Fatalf("RecordPosition failed: %v", err)
	}
	clock.Tick(time.Hour)
	if _, err := reg.RecordArrival("B1", "Seattle", time.Time{}, "on schedule"); err != nil {
		t.Fatalf("RecordArrival failed: %v", err)
	}

	if err := reg.Save(path); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	restored, _ := newTestRegistry()
	if err := restored.Load(path); err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	want := reg.ListBoats()
	got := restored.ListBoats()
	if len(got) != len(want) {
		t.Fatalf("Expected %d boats, got %d", len(want), len(got))
	}
	for i := range want {
		if got[i].ID != want[i].ID || got[i].Name != want[i].Name ||
			got[i].HomePort != want[i].HomePort || got[i].Flag != want[i].Flag {
			t.Errorf("Boat %d mismatch: got %+v, want %+v", i, got[i], want[i])
		}
		if len(got[i].Positions) != len(want[i].Positions) {
			t.Fatalf("Boat %s: expected %d positions, got %d", want[i].ID, len(want[i].Positions), len(got[i].Positions))
		}
		for j := range want[i].Positions {
			if !got[i].Positions[j].Equal(want[i].Positions[j]) {
				t.Errorf("Boat %s position %d mismatch: got %+v, want %+v",
					want[i].ID, j, got[i].Positions[j], want[i].Positions[j])
			}
		}
		for j := range want[i].ArrivalLogs {
			if !got[i].ArrivalLogs[j].Equal(want[i].ArrivalLogs[j]) {
				t.Errorf("Boat %s arrival %d mismatch: got %+v, want %+v",
					want[i].ID, j, got[i].ArrivalLogs[j], want[i].ArrivalLogs[j])
			}
		}
	}

	wantEvents := reg.Events()
	gotEvents := restored.Events()
	if len(gotEvents) != len(wantEvents) {
		t.Fatalf("Expected %d events, got %d", len(wantEvents), len(gotEvents))
	}
	for i := range wantEvents {
		if gotEvents[i].Message != wantEvents[i].Message {
			t.Errorf("Event %d mismatch: got %q, want %q", i, gotEvents[i].Message, wantEvents[i].Message)
		}
	}
}

// TestLoadMissingFile tests that a missing file surfaces fs.ErrNotExist
// inside a PersistenceError and leaves the registry untouched
func TestLoadMissingFile(t *testing.T) {
	reg, _ := newTestRegistry()
	if _, err := reg.AddBoat("B1", "Orion", "Oslo", "NO"); err != nil {
		t.Fatalf("AddBoat failed: %v", err)
	}

	err := reg.Load(filepath.Join(t.TempDir(), "nope.json"))
	var persist *types.PersistenceError
	if !errors.As(err, &persist) {
		t.Fatalf("Expected PersistenceError, got %v", err)
	}
	if !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("Expected error to wrap fs.ErrNotExist, got %v", err)
	}
	if reg.Count() != 1 {
		t.Errorf("Expected registry unchanged after failed load, got %d boats", reg.Count())
	}
}

// TestLoadSchemaFailureKeepsState tests that a structurally invalid file
// leaves the previously loaded state fully intact
func TestLoadSchemaFailureKeepsState(t *testing.T) {
	dir := t.TempDir()
	bad := filepath.Join(dir, "bad.json")
	content := `{"version": 1, "boats": [{"name": "NoID", "home_port": "Oslo", "flag": "NO"}]}`
	if err := os.WriteFile(bad, []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	reg, _ := newTestRegistry()
	if _, err := reg.AddBoat("B1", "Orion", "Oslo", "NO"); err != nil {
		t.Fatalf("AddBoat failed: %v", err)
	}

	err := reg.Load(bad)
	var schema *types.SchemaError
	if !errors.As(err, &schema) {
		t.Fatalf("Expected SchemaError, got %v", err)
	}
	var persist *types.PersistenceError
	if !errors.As(err, &persist) {
		t.Errorf("Expected SchemaError to arrive wrapped in PersistenceError, got %v", err)
	}

	boats := reg.ListBoats()
	if len(boats) != 1 || boats[0].ID != "B1" {
		t.Errorf("Expected prior state preserved, got %+v", boats)
	}
}

// TestLoadReplacesState tests that a successful load never merges with
// existing in-memory boats
func TestLoadReplacesState(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fleet_data.json")

	saved, _ := newTestRegistry()
	if _, err := saved.AddBoat("B1", "Orion", "Oslo", "NO"); err != nil {
		t.Fatalf("AddBoat failed: %v", err)
	}
	if err := saved.Save(path); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	reg, _ := newTestRegistry()
	if _, err := reg.AddBoat("B9", "Stray", "Miami", "US"); err != nil {
		t.Fatalf("AddBoat failed: %v", err)
	}
	if err := reg.Load(path); err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	boats := reg.ListBoats()
	if len(boats) != 1 {
		t.Fatalf("Expected load to replace state, got %d boats", len(boats))
	}
	if boats[0].ID != "B1" {
		t.Errorf("Expected boat B1 after load, got %s", boats[0].ID)
	}
}

// TestSaveFailureLeavesFileIntact tests that a failed save never clobbers
// the previous document
func TestSaveFailureLeavesFileIntact(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "fleet_data.json")

	reg, _ := newTestRegistry()
	if _, err := reg.AddBoat("B1", "Orion", "Oslo", "NO"); err != nil {
		t.Fatalf("AddBoat failed: %v", err)
	}
	if err := reg.Save(path); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	before, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}

	// Make the directory unwritable so the temp file cannot be created
	if err := os.Chmod(dir, 0o555); err != nil {
		t.Fatalf("Chmod failed: %v", err)
	}
	defer os.Chmod(dir, 0o755)

	if _, err := reg.AddBoat("B2", "Vega", "Santos", "BR"); err != nil {
		t.Fatalf("AddBoat failed: %v", err)
	}
	saveErr := reg.Save(path)
	if saveErr == nil {
		t.Skip("directory permissions not enforced on this platform")
	}
	var persist *types.PersistenceError
	if !errors.As(saveErr, &persist) {
		t.Fatalf("Expected PersistenceError, got %v", saveErr)
	}

	if err := os.Chmod(dir, 0o755); err != nil {
		t.Fatalf("Chmod failed: %v", err)
	}
	after, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}
	if string(before) != string(after) {
		t.Error("Expected previous file content untouched after failed save")
	}
}

// TestSaveLeavesNoTempFiles tests that the atomic writer cleans up after itself
func TestSaveLeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "fleet_data.json")

	reg, _ := newTestRegistry()
	if _, err := reg.AddBoat("B1", "Orion", "Oslo", "NO"); err != nil {
		t.Fatalf("AddBoat failed: %v", err)
	}
	if err := reg.Save(path); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("ReadDir failed: %v", err)
	}
	if len(entries) != 1 {
		names := make([]string, 0, len(entries))
		for _, e := range entries {
			names = append(names, e.Name())
		}
		t.Errorf("Expected only the data file in %s, got %v", dir, names)
	}
}

// TestEndToEndScenario tests the full add, record, save, reload workflow
func TestEndToEndScenario(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fleet_data.json")

	reg, _ := newTestRegistry()
	if _, err := reg.AddBoat("B1", "Orion", "Oslo", "NO"); err != nil {
		t.Fatalf("AddBoat failed: %v", err)
	}
	t1 := time.Date(2024, 6, 1, 8, 0, 0, 0, time.UTC)
	if _, err := reg.RecordPosition("B1", 45.0, -122.0, t1); err != nil {
		t.Fatalf("RecordPosition failed: %v", err)
	}
	t2 := time.Date(2024, 6, 1, 14, 0, 0, 0, time.UTC)
	if _, err := reg.RecordArrival("B1", "Seattle", t2, "on schedule"); err != nil {
		t.Fatalf("RecordArrival failed: %v", err)
	}
	if err := reg.Save(path); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	// Simulates a fresh process start
	fresh := New(SystemClock())
	if err := fresh.Load(path); err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	boats := fresh.ListBoats()
	if len(boats) != 1 {
		t.Fatalf("Expected 1 boat, got %d", len(boats))
	}
	boat := boats[0]
	if boat.ID != "B1" || boat.Name != "Orion" || boat.HomePort != "Oslo" || boat.Flag != "NO" {
		t.Errorf("Unexpected boat %+v", boat)
	}
	if len(boat.Positions) != 1 || !boat.Positions[0].Equal(types.PositionRecord{Latitude: 45.0, Longitude: -122.0, Timestamp: t1}) {
		t.Errorf("Unexpected positions %+v", boat.Positions)
	}
	if len(boat.ArrivalLogs) != 1 || !boat.ArrivalLogs[0].Equal(types.ArrivalLogEntry{Port: "Seattle", Timestamp: t2, Note: "on schedule"}) {
		t.Errorf("Unexpected arrival logs %+v", boat.ArrivalLogs)
	}
}
