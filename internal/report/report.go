// Package report builds fleet status summaries from registry listings
package report

import (
	"fmt"
	"sort"
	"strings"

	"github.com/fleetcmd/fleet-registry/internal/types"
)

// Report summarizes the current fleet composition
type Report struct {
	TotalBoats     int
	TotalPositions int
	TotalArrivals  int
	BoatsByFlag    map[string]int
}

// Build computes a status report over the given boats
func Build(boats []*types.Boat) Report {
	r := Report{BoatsByFlag: make(map[string]int)}
	for _, boat := range boats {
		r.TotalBoats++
		r.TotalPositions += len(boat.Positions)
		r.TotalArrivals += len(boat.ArrivalLogs)
		r.BoatsByFlag[boat.Flag]++
	}
	return r
}

// String renders the report as a multi-line console block. Flags are
// listed alphabetically so the output is deterministic.
func (r Report) String() string {
	var b strings.Builder
	b.WriteString("Fleet Status Report:\n")
	fmt.Fprintf(&b, "  Total Boats: %d\n", r.TotalBoats)
	fmt.Fprintf(&b, "  Recorded Positions: %d\n", r.TotalPositions)
	fmt.Fprintf(&b, "  Recorded Arrivals: %d\n", r.TotalArrivals)

	if len(r.BoatsByFlag) > 0 {
		flags := make([]string, 0, len(r.BoatsByFlag))
		for flag := range r.BoatsByFlag {
			flags = append(flags, flag)
		}
		sort.Strings(flags)

		b.WriteString("  Boats by Flag:\n")
		for _, flag := range flags {
			name := flag
			if name == "" {
				name = "(none)"
			}
			fmt.Fprintf(&b, "    %s: %d\n", name, r.BoatsByFlag[flag])
		}
	}
	return b.String()
}
