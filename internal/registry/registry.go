// Package registry maintains the in-memory fleet: boats keyed by id, their
// append-only position and arrival histories, and a journal of fleet events.
// The in-memory state is the source of truth; nothing is persisted until
// Save is called explicitly.
package registry

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/fleetcmd/fleet-registry/internal/types"
)

// Clock supplies timestamps for recorded positions, arrivals and journal
// entries. Injecting it keeps tests deterministic.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// SystemClock returns a Clock backed by time.Now
func SystemClock() Clock { return systemClock{} }

// Latitude and longitude bounds for recorded positions, in decimal degrees.
const (
	MinLatitude  = -90.0
	MaxLatitude  = 90.0
	MinLongitude = -180.0
	MaxLongitude = 180.0
)

// Registry owns the full set of boats. All operations are safe for use
// behind a single concurrent front end: every method holds the registry
// lock for its full duration.
type Registry struct {
	mu     sync.Mutex
	clock  Clock
	boats  map[string]*types.Boat
	order  []string // boat ids in insertion order
	events []types.FleetEvent
}

// New creates an empty registry. A nil clock falls back to the system clock.
func New(clock Clock) *Registry {
	if clock == nil {
		clock = systemClock{}
	}
	return &Registry{
		clock: clock,
		boats: make(map[string]*types.Boat),
	}
}

// AddBoat inserts a new boat with empty position and arrival histories.
// It fails with DuplicateIDError when the id is already registered and
// with InvalidInputError when id or name is empty.
func (r *Registry) AddBoat(id, name, homePort, flag string) (*types.Boat, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if strings.TrimSpace(id) == "" {
		return nil, &types.InvalidInputError{Field: "id", Reason: "must not be empty"}
	}
	if strings.TrimSpace(name) == "" {
		return nil, &types.InvalidInputError{Field: "name", Reason: "must not be empty"}
	}
	if _, exists := r.boats[id]; exists {
		return nil, &types.DuplicateIDError{ID: id}
	}

	boat := &types.Boat{
		ID:          id,
		Name:        name,
		HomePort:    homePort,
		Flag:        flag,
		Positions:   []types.PositionRecord{},
		ArrivalLogs: []types.ArrivalLogEntry{},
	}
	r.boats[id] = boat
	r.order = append(r.order, id)
	r.logEvent(fmt.Sprintf("%s joined the fleet", name))

	return boat.Clone(), nil
}

// BoatUpdate carries the mutable boat fields for UpdateBoat. Nil fields
// are left unchanged.
type BoatUpdate struct {
	Name       *string
	HomePort   *string
	Flag       *string
	LaunchDate *time.Time
}

// UpdateBoat applies the supplied fields to an existing boat. A supplied
// but empty name is rejected: every boat keeps a display name.
func (r *Registry) UpdateBoat(id string, update BoatUpdate) (*types.Boat, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	boat, exists := r.boats[id]
	if !exists {
		return nil, &types.NotFoundError{ID: id}
	}
	if update.Name != nil && strings.TrimSpace(*update.Name) == "" {
		return nil, &types.InvalidInputError{Field: "name", Reason: "must not be empty"}
	}

	if update.Name != nil {
		boat.Name = *update.Name
	}
	if update.HomePort != nil {
		boat.HomePort = *update.HomePort
	}
	if update.Flag != nil {
		boat.Flag = *update.Flag
	}
	if update.LaunchDate != nil {
		launch := *update.LaunchDate
		boat.LaunchDate = &launch
	}

	return boat.Clone(), nil
}

// RemoveBoat deletes a boat and discards its entire history
func (r *Registry) RemoveBoat(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	boat, exists := r.boats[id]
	if !exists {
		return &types.NotFoundError{ID: id}
	}

	delete(r.boats, id)
	for i, oid := range r.order {
		if oid == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	r.logEvent(fmt.Sprintf("%s was removed from the fleet", boat.Name))

	return nil
}

// RecordPosition appends a position record to a boat's history. Prior
// records are never touched. A zero timestamp means "now" per the
// registry clock.
func (r *Registry) RecordPosition(id string, lat, lon float64, at time.Time) (types.PositionRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	boat, exists := r.boats[id]
	if !exists {
		return types.PositionRecord{}, &types.NotFoundError{ID: id}
	}
	if lat < MinLatitude || lat > MaxLatitude {
		return types.PositionRecord{}, &types.InvalidInputError{
			Field:  "latitude",
			Reason: fmt.Sprintf("%v is outside [%v, %v]", lat, MinLatitude, MaxLatitude),
		}
	}
	if lon < MinLongitude || lon > MaxLongitude {
		return types.PositionRecord{}, &types.InvalidInputError{
			Field:  "longitude",
			Reason: fmt.Sprintf("%v is outside [%v, %v]", lon, MinLongitude, MaxLongitude),
		}
	}

	if at.IsZero() {
		at = r.clock.Now()
	}
	record := types.PositionRecord{Latitude: lat, Longitude: lon, Timestamp: at}
	boat.Positions = append(boat.Positions, record)

	return record, nil
}

// RecordArrival appends an arrival log entry to a boat's history. A zero
// timestamp means "now" per the registry clock.
func (r *Registry) RecordArrival(id, port string, at time.Time, note string) (types.ArrivalLogEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	boat, exists := r.boats[id]
	if !exists {
		return types.ArrivalLogEntry{}, &types.NotFoundError{ID: id}
	}
	if strings.TrimSpace(port) == "" {
		return types.ArrivalLogEntry{}, &types.InvalidInputError{Field: "port", Reason: "must not be empty"}
	}

	if at.IsZero() {
		at = r.clock.Now()
	}
	entry := types.ArrivalLogEntry{Port: port, Timestamp: at, Note: note}
	boat.ArrivalLogs = append(boat.ArrivalLogs, entry)
	r.logEvent(fmt.Sprintf("%s arrived at %s", boat.Name, port))

	return entry, nil
}

// Transfer moves a boat, with its full history, from this registry to dst.
// It journals the move on both sides.
func (r *Registry) Transfer(dst *Registry, id string) (*types.Boat, error) {
	if dst == r {
		return nil, &types.InvalidInputError{Field: "destination", Reason: "cannot transfer a boat to its own registry"}
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	dst.mu.Lock()
	defer dst.mu.Unlock()

	boat, exists := r.boats[id]
	if !exists {
		return nil, &types.NotFoundError{ID: id}
	}
	if _, taken := dst.boats[id]; taken {
		return nil, &types.DuplicateIDError{ID: id}
	}

	delete(r.boats, id)
	for i, oid := range r.order {
		if oid == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	dst.boats[id] = boat
	dst.order = append(dst.order, id)

	r.logEvent(fmt.Sprintf("%s left this fleet for another", boat.Name))
	dst.logEvent(fmt.Sprintf("%s joined the fleet", boat.Name))

	return boat.Clone(), nil
}

// logEvent appends a journal entry. Callers must hold the registry lock.
func (r *Registry) logEvent(message string) {
	r.events = append(r.events, types.FleetEvent{
		ID:        uuid.NewString(),
		Timestamp: r.clock.Now(),
		Message:   message,
	})
}
