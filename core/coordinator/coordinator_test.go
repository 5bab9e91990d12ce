package coordinator

import (
	"context"
	"testing"
	"time"

	"github.com/fleetgrid/evsched/core/charge"
	"github.com/fleetgrid/evsched/core/model"
	"github.com/fleetgrid/evsched/core/sequence"
	"github.com/stretchr/testify/assert"
)

func TestRun_AllocationOnly(t *testing.T) {
	now := time.Date(2026, 1, 1, 8, 0, 0, 0, time.UTC)
	r1 := model.Route{ID: "r1", PlanStart: now.Add(time.Hour), PlanEnd: now.Add(2 * time.Hour), NOrders: 1}
	v1 := model.Vehicle{ID: "v1", BatteryCapacityKWh: 100, EfficiencyKWhPerMile: 0.3}
	candidates := []sequence.Candidate{
		{Vehicle: v1, Sequence: model.Sequence{VehicleID: "v1", Routes: []model.Route{r1}}, Cost: 2},
	}

	res := Run(context.Background(), nil, candidates, 1, nil, nil, func(_ []model.RouteAssignment) []charge.VehicleInput { return nil },
		Options{Mode: AllocationOnly, RunID: "run-1"})

	assert.Equal(t, "run-1", res.AllocationResult.AllocationID)
	assert.Len(t, res.AllocationResult.Assignments, 1)
	assert.Empty(t, res.ChargePlan.Schedules)
}

func TestRun_SchedulingOnly(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	slots := model.BuildSlots(now, time.Hour)
	prices := []model.PricePoint{{SlotIndex: 0, EnergyPrice: 0.1}, {SlotIndex: 1, EnergyPrice: 0.2}}
	inputs := []charge.VehicleInput{{Vehicle: model.Vehicle{ID: "v1", ACChargeRateKW: 10}, TargetSoCKWh: 2, MaxShortfallKWh: 10}}

	res := Run(context.Background(), nil, nil, 0, slots, prices, func(_ []model.RouteAssignment) []charge.VehicleInput { return inputs },
		Options{Mode: SchedulingOnly, ChargeOptions: charge.Options{SiteCapacityKW: 50}})

	assert.NotEmpty(t, res.ChargePlan.Schedules)
	assert.Equal(t, model.AllocationStatus(0), res.AllocationResult.Status)
}

func TestRun_IntegratedGatesChargingOnAllocatedRoutes(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	r1 := model.Route{ID: "r1", PlanStart: now.Add(time.Hour), PlanEnd: now.Add(time.Hour + 30*time.Minute), MileagePlanned: 10, NOrders: 1}
	v1 := model.Vehicle{ID: "v1", BatteryCapacityKWh: 100, EfficiencyKWhPerMile: 0.3, ACChargeRateKW: 10}
	candidates := []sequence.Candidate{
		{Vehicle: v1, Sequence: model.Sequence{VehicleID: "v1", Routes: []model.Route{r1}}, Cost: 2},
	}
	slots := model.BuildSlots(now, 3*time.Hour)
	var calledWith []model.RouteAssignment
	builder := func(allocated []model.RouteAssignment) []charge.VehicleInput {
		calledWith = allocated
		return []charge.VehicleInput{{Vehicle: v1, TargetSoCKWh: 50, MaxShortfallKWh: 10}}
	}

	res := Run(context.Background(), nil, candidates, 1, slots, nil, builder, Options{Mode: Integrated})
	assert.Len(t, calledWith, 1)
	assert.Equal(t, "r1", calledWith[0].RouteID)
	assert.NotNil(t, res.ChargePlan)
}
