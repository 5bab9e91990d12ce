// Package vehiclestatus holds an in-memory VehicleStateSource, used by the
// app to keep each site's last telemetry snapshot for reallocation drift
// checks, and by tests. A production deployment would back this
// with telematics ingestion, which is out of scope here.
package vehiclestatus

import (
	"sort"
	"sync"

	"github.com/fleetgrid/evsched/core/model"
)

// MemoryStore implements model.VehicleStateSource over an in-memory map,
// keyed by site then vehicle id.
type MemoryStore struct {
	mu   sync.RWMutex
	data map[string]map[string]model.VehicleState
}

// NewMemoryStore returns an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: map[string]map[string]model.VehicleState{}}
}

// Set records the latest known state for a vehicle at a site.
func (s *MemoryStore) Set(siteID string, st model.VehicleState) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.data[siteID] == nil {
		s.data[siteID] = map[string]model.VehicleState{}
	}
	s.data[siteID][st.VehicleID] = st
}

// LatestVehicleStates implements model.VehicleStateSource.
func (s *MemoryStore) LatestVehicleStates(siteID string) ([]model.VehicleState, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	bySite := s.data[siteID]
	out := make([]model.VehicleState, 0, len(bySite))
	for _, st := range bySite {
		out = append(out, st)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].VehicleID < out[j].VehicleID })
	return out, nil
}
