package window

import (
	"testing"
	"time"

	"github.com/fleetgrid/evsched/core/model"
	"github.com/stretchr/testify/assert"
)

func TestBuild_FiltersBySiteStatusAndHorizon(t *testing.T) {
	now := time.Date(2026, 1, 1, 8, 0, 0, 0, time.UTC)
	routes := []model.Route{
		{ID: "r1", Site: "s1", Status: model.RouteNew, PlanStart: now.Add(time.Hour), PlanEnd: now.Add(2 * time.Hour), NOrders: 3},
		{ID: "r2", Site: "s2", Status: model.RouteNew, PlanStart: now.Add(time.Hour), PlanEnd: now.Add(2 * time.Hour), NOrders: 3}, // wrong site
		{ID: "r3", Site: "s1", Status: model.RouteComplete, PlanStart: now.Add(time.Hour), PlanEnd: now.Add(2 * time.Hour), NOrders: 3}, // wrong status
		{ID: "r4", Site: "s1", Status: model.RouteNew, PlanStart: now.Add(30 * time.Hour), PlanEnd: now.Add(31 * time.Hour), NOrders: 3}, // outside horizon
	}
	w := Build(now, 18, 1, "s1", routes, nil, nil, nil)
	assert.Len(t, w.Eligible, 1)
	assert.Equal(t, "r1", w.Eligible[0].ID)
}

func TestBuild_DropsUnderMinStops(t *testing.T) {
	now := time.Date(2026, 1, 1, 8, 0, 0, 0, time.UTC)
	routes := []model.Route{
		{ID: "r1", Site: "s1", Status: model.RouteNew, PlanStart: now.Add(time.Hour), PlanEnd: now.Add(2 * time.Hour), NOrders: 0},
	}
	w := Build(now, 18, 2, "s1", routes, nil, nil, nil)
	assert.Empty(t, w.Eligible)
	assert.Len(t, w.Unfeasible, 1)
}

func TestBuild_HorizonClamped(t *testing.T) {
	now := time.Now()
	w := Build(now, 999, 1, "s1", nil, nil, nil, nil)
	assert.Equal(t, MaxHorizonHours, w.HorizonHours)
	w = Build(now, 1, 1, "s1", nil, nil, nil, nil)
	assert.Equal(t, MinHorizonHours, w.HorizonHours)
}

func TestBuild_AvailabilityFromTelemetry(t *testing.T) {
	now := time.Date(2026, 1, 1, 8, 0, 0, 0, time.UTC)
	eta := now.Add(45 * time.Minute)
	returnSoC := 60.0
	vehicles := []model.Vehicle{
		{ID: "v1", Active: true, Enabled: true, BatteryCapacityKWh: 100, EfficiencyKWhPerMile: 0.3},
	}
	states := []model.VehicleState{
		{VehicleID: "v1", Status: model.StatusOnRoute, EstimatedSoCPercent: 50, ReturnETA: &eta, ReturnSoCPercent: &returnSoC},
	}
	w := Build(now, 18, 1, "s1", nil, states, vehicles, nil)
	av := w.Availability["v1"]
	assert.Equal(t, eta, av.AvailableFrom)
	assert.Equal(t, 60.0, av.AvailableEnergyKWh)
}

func TestBuild_ExcludesIneligibleVehicles(t *testing.T) {
	now := time.Now()
	vehicles := []model.Vehicle{
		{ID: "v1", Active: false, Enabled: true, BatteryCapacityKWh: 100, EfficiencyKWhPerMile: 0.3},
	}
	w := Build(now, 18, 1, "s1", nil, nil, vehicles, nil)
	assert.NotContains(t, w.Availability, "v1")
}

func TestBuild_CascadesCommittedRoutes(t *testing.T) {
	now := time.Date(2026, 1, 1, 8, 0, 0, 0, time.UTC)
	vehicles := []model.Vehicle{
		{ID: "v1", Active: true, Enabled: true, BatteryCapacityKWh: 100, EfficiencyKWhPerMile: 1},
	}
	committedRoute := model.Route{
		ID: "c1", Site: "s1", Status: model.RouteActive,
		PlanStart: now.Add(time.Hour), PlanEnd: now.Add(2 * time.Hour),
		MileagePlanned: 10, NOrders: 1,
	}
	states := []model.VehicleState{{VehicleID: "v1", Status: model.StatusAtDepot, EstimatedSoCPercent: 100}}
	w := Build(now, 18, 1, "s1", []model.Route{committedRoute}, states, vehicles,
		[]model.CommittedAllocation{{RouteID: "c1", VehicleID: "v1"}})
	av := w.Availability["v1"]
	assert.Equal(t, committedRoute.PlanEnd, av.AvailableFrom)
	assert.Equal(t, 90.0, av.AvailableEnergyKWh)
}
