package vehiclestatus

import (
	"math"

	"github.com/fleetgrid/evsched/core/model"
)

// SnapshotAndCheckDrift records curr as the latest known state for every
// vehicle at siteID, and reports whether any vehicle's estimated return time
// moved by more than thresholdMinutes relative to the previously recorded
// snapshot. A vehicle with no prior snapshot, or with no ReturnETA in either
// snapshot, does not itself trigger a re-run.
func (s *MemoryStore) SnapshotAndCheckDrift(siteID string, curr []model.VehicleState, thresholdMinutes int) bool {
	prev, _ := s.LatestVehicleStates(siteID)
	prevByID := make(map[string]model.VehicleState, len(prev))
	for _, p := range prev {
		prevByID[p.VehicleID] = p
	}

	drifted := false
	for _, c := range curr {
		p, ok := prevByID[c.VehicleID]
		if ok && p.ReturnETA != nil && c.ReturnETA != nil {
			deltaMinutes := math.Abs(c.ReturnETA.Sub(*p.ReturnETA).Minutes())
			if deltaMinutes > float64(thresholdMinutes) {
				drifted = true
			}
		}
		s.Set(siteID, c)
	}
	return drifted
}
