package registry

import (
	"sort"
	"strings"

	"github.com/fleetcmd/fleet-registry/internal/types"
)

// GetBoat returns a copy of the boat with the given id
func (r *Registry) GetBoat(id string) (*types.Boat, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	boat, exists := r.boats[id]
	if !exists {
		return nil, &types.NotFoundError{ID: id}
	}
	return boat.Clone(), nil
}

// ListBoats returns copies of all boats in insertion order
func (r *Registry) ListBoats() []*types.Boat {
	r.mu.Lock()
	defer r.mu.Unlock()

	boats := make([]*types.Boat, 0, len(r.order))
	for _, id := range r.order {
		boats = append(boats, r.boats[id].Clone())
	}
	return boats
}

// Count returns the number of registered boats
func (r *Registry) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.order)
}

// Events returns a copy of the fleet journal in recording order
func (r *Registry) Events() []types.FleetEvent {
	r.mu.Lock()
	defer r.mu.Unlock()

	events := make([]types.FleetEvent, len(r.events))
	copy(events, r.events)
	return events
}

// Filter selects boats by case-insensitive substring match. Empty fields
// are not constrained; all supplied fields must match.
type Filter struct {
	Name     string
	HomePort string
	Flag     string
}

func (f Filter) matches(boat *types.Boat) bool {
	return containsFold(boat.Name, f.Name) &&
		containsFold(boat.HomePort, f.HomePort) &&
		containsFold(boat.Flag, f.Flag)
}

func containsFold(value, substr string) bool {
	if substr == "" {
		return true
	}
	return strings.Contains(strings.ToLower(value), strings.ToLower(substr))
}

// FilterBoats returns copies of the boats matching the filter, in insertion
// order. A zero filter returns every boat.
func (r *Registry) FilterBoats(filter Filter) []*types.Boat {
	r.mu.Lock()
	defer r.mu.Unlock()

	var boats []*types.Boat
	for _, id := range r.order {
		if filter.matches(r.boats[id]) {
			boats = append(boats, r.boats[id].Clone())
		}
	}
	return boats
}

// Sort keys accepted by SortBoats
const (
	SortByName     = "name"
	SortByID       = "id"
	SortByHomePort = "home_port"
	SortByFlag     = "flag"
)

// SortBoats returns a new slice sorted case-insensitively ascending by the
// given key. The sort is stable, so boats with equal keys keep their input
// order. An empty key sorts by name. The input slice is not modified.
func SortBoats(boats []*types.Boat, key string) ([]*types.Boat, error) {
	if key == "" {
		key = SortByName
	}

	var keyFn func(*types.Boat) string
	switch key {
	case SortByName:
		keyFn = func(b *types.Boat) string { return b.Name }
	case SortByID:
		keyFn = func(b *types.Boat) string { return b.ID }
	case SortByHomePort:
		keyFn = func(b *types.Boat) string { return b.HomePort }
	case SortByFlag:
		keyFn = func(b *types.Boat) string { return b.Flag }
	default:
		return nil, &types.InvalidInputError{Field: "key", Reason: "unknown sort key " + key}
	}

	sorted := make([]*types.Boat, len(boats))
	copy(sorted, boats)
	sort.SliceStable(sorted, func(i, j int) bool {
		return strings.ToLower(keyFn(sorted[i])) < strings.ToLower(keyFn(sorted[j]))
	})
	return sorted, nil
}
