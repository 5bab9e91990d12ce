package vehiclestatus

import (
	"testing"

	"github.com/fleetgrid/evsched/core/model"
)

func TestMemoryStore_LatestVehicleStatesFiltersBySite(t *testing.T) {
	s := NewMemoryStore()
	s.Set("site-a", model.VehicleState{VehicleID: "v1", Status: model.StatusAtDepot})
	s.Set("site-b", model.VehicleState{VehicleID: "v2", Status: model.StatusOnRoute})

	out, err := s.LatestVehicleStates("site-a")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(out) != 1 || out[0].VehicleID != "v1" {
		t.Fatalf("filter failed: %#v", out)
	}
}

func TestMemoryStore_SetOverwrites(t *testing.T) {
	s := NewMemoryStore()
	s.Set("site-a", model.VehicleState{VehicleID: "v1", Status: model.StatusOnRoute})
	s.Set("site-a", model.VehicleState{VehicleID: "v1", Status: model.StatusCharging})

	out, _ := s.LatestVehicleStates("site-a")
	if len(out) != 1 || out[0].Status != model.StatusCharging {
		t.Fatalf("expected overwritten status, got %#v", out)
	}
}
