package sequence

import (
	"testing"
	"time"

	"github.com/fleetgrid/evsched/core/constraint"
	"github.com/fleetgrid/evsched/core/model"
	"github.com/fleetgrid/evsched/core/params"
	"github.com/fleetgrid/evsched/core/window"
	"github.com/stretchr/testify/assert"
)

func defaultEngine() *constraint.Engine {
	return constraint.Build(func(name string) params.ConstraintConfig {
		return params.ConstraintConfig{
			Enabled: params.DefaultConstraintEnabled[name],
			Penalty: params.DefaultPenalties[name],
			Params:  map[string]any{},
		}
	})
}

func TestEnumerate_NoEmptySequenceEmitted(t *testing.T) {
	now := time.Date(2026, 1, 1, 8, 0, 0, 0, time.UTC)
	av := map[string]window.Availability{
		"v1": {VehicleID: "v1", AvailableFrom: now, AvailableEnergyKWh: 50,
			Vehicle: model.Vehicle{ID: "v1", BatteryCapacityKWh: 100, EfficiencyKWhPerMile: 0.3}},
	}
	cands := Enumerate(nil, av, defaultEngine(), nil, now, Params{MaxRoutesPerVehicle: 5, Turnaround: 45 * time.Minute})
	assert.Empty(t, cands)
}

func TestEnumerate_ProducesFeasibleChains(t *testing.T) {
	now := time.Date(2026, 1, 1, 8, 0, 0, 0, time.UTC)
	r1 := model.Route{ID: "r1", Status: model.RouteNew, PlanStart: now.Add(2 * time.Hour), PlanEnd: now.Add(2*time.Hour + 30*time.Minute), MileagePlanned: 5, NOrders: 1}
	r2 := model.Route{ID: "r2", Status: model.RouteNew, PlanStart: r1.PlanEnd.Add(90 * time.Minute), PlanEnd: r1.PlanEnd.Add(2 * time.Hour), MileagePlanned: 5, NOrders: 1}
	av := map[string]window.Availability{
		"v1": {VehicleID: "v1", AvailableFrom: now, AvailableEnergyKWh: 90,
			Vehicle: model.Vehicle{ID: "v1", BatteryCapacityKWh: 100, EfficiencyKWhPerMile: 0.3}},
	}
	cands := Enumerate([]model.Route{r1, r2}, av, defaultEngine(), nil, now, Params{MaxRoutesPerVehicle: 5, Turnaround: 45 * time.Minute})

	var sawSingleR1, sawPair bool
	for _, c := range cands {
		if len(c.Sequence.Routes) == 1 && c.Sequence.Routes[0].ID == "r1" {
			sawSingleR1 = true
		}
		if len(c.Sequence.Routes) == 2 {
			sawPair = true
		}
	}
	assert.True(t, sawSingleR1)
	assert.True(t, sawPair)
}

func TestEnumerate_RespectsMaxLength(t *testing.T) {
	now := time.Date(2026, 1, 1, 8, 0, 0, 0, time.UTC)
	var routes []model.Route
	start := now.Add(2 * time.Hour)
	for i := 0; i < 8; i++ {
		routes = append(routes, model.Route{
			ID: "r" + string(rune('a'+i)), Status: model.RouteNew,
			PlanStart: start, PlanEnd: start.Add(20 * time.Minute), MileagePlanned: 1, NOrders: 1,
		})
		start = start.Add(90 * time.Minute)
	}
	av := map[string]window.Availability{
		"v1": {VehicleID: "v1", AvailableFrom: now, AvailableEnergyKWh: 1000,
			Vehicle: model.Vehicle{ID: "v1", BatteryCapacityKWh: 2000, EfficiencyKWhPerMile: 0.1}},
	}
	cands := Enumerate(routes, av, defaultEngine(), nil, now, Params{MaxRoutesPerVehicle: 3, Turnaround: 45 * time.Minute})
	for _, c := range cands {
		assert.LessOrEqual(t, len(c.Sequence.Routes), 3)
	}
}
