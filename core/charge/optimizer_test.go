package charge

import (
	"context"
	"testing"
	"time"

	"github.com/fleetgrid/evsched/core/model"
	"github.com/stretchr/testify/assert"
)

func TestSolve_EmptyInputsReturnEmptyPlan(t *testing.T) {
	plan := Solve(context.Background(), nil, nil, nil, nil, Options{})
	assert.Empty(t, plan.Schedules)
}

func TestSolveGreedy_FillsCheapestSlotsFirst(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	slots := model.BuildSlots(now, 2*time.Hour) // 4 slots
	prices := []model.PricePoint{
		{SlotIndex: 0, EnergyPrice: 0.30},
		{SlotIndex: 1, EnergyPrice: 0.10},
		{SlotIndex: 2, EnergyPrice: 0.20},
		{SlotIndex: 3, EnergyPrice: 0.40},
	}
	vehicles := []VehicleInput{
		{
			Vehicle:         model.Vehicle{ID: "v1", ACChargeRateKW: 10},
			InitialSoCKWh:   0,
			TargetSoCKWh:    5,
			MaxShortfallKWh: 100,
		},
	}
	opts := Options{SiteCapacityKW: 100}
	plan := solveGreedy(slots, prices, vehicles, opts)
	assert.Len(t, plan.Schedules, 1)
	// cheapest slot (index 1) should be used before more expensive ones.
	assert.Greater(t, plan.Schedules[0].Slots[1].PowerKW, 0.0)
}

func TestSolveGreedy_ClipsToSiteCapacity(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	slots := model.BuildSlots(now, 30*time.Minute)
	prices := []model.PricePoint{{SlotIndex: 0, EnergyPrice: 0.1}}
	vehicles := []VehicleInput{
		{Vehicle: model.Vehicle{ID: "v1", ACChargeRateKW: 50}, TargetSoCKWh: 25, MaxShortfallKWh: 100},
		{Vehicle: model.Vehicle{ID: "v2", ACChargeRateKW: 50}, TargetSoCKWh: 25, MaxShortfallKWh: 100},
	}
	opts := Options{SiteCapacityKW: 20}
	plan := solveGreedy(slots, prices, vehicles, opts)
	var total float64
	for _, s := range plan.Schedules {
		total += s.Slots[0].PowerKW
	}
	assert.LessOrEqual(t, total, 20.0+1e-9)
}
