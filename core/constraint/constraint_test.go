package constraint

import (
	"testing"
	"time"

	"github.com/fleetgrid/evsched/core/model"
	"github.com/fleetgrid/evsched/core/params"
	"github.com/fleetgrid/evsched/core/window"
	"github.com/stretchr/testify/assert"
)

func defaultConfig(name string) params.ConstraintConfig {
	return params.ConstraintConfig{
		Enabled: params.DefaultConstraintEnabled[name],
		Penalty: params.DefaultPenalties[name],
		Params:  map[string]any{},
	}
}

func TestEngine_HardViolationShortCircuits(t *testing.T) {
	now := time.Date(2026, 1, 1, 8, 0, 0, 0, time.UTC)
	r1 := model.Route{ID: "r1", PlanStart: now.Add(time.Hour), PlanEnd: now.Add(2 * time.Hour), MileagePlanned: 500}
	seq := model.Sequence{VehicleID: "v1", Routes: []model.Route{r1}}
	v := model.Vehicle{ID: "v1", BatteryCapacityKWh: 50, EfficiencyKWhPerMile: 1}

	engine := Build(defaultConfig)
	verdict := engine.Evaluate(v, seq, Context{
		Now:          now,
		Availability: window.Availability{AvailableEnergyKWh: 10},
	})
	assert.False(t, verdict.Feasible)
}

func TestEngine_SoftDeltasSum(t *testing.T) {
	now := time.Date(2026, 1, 1, 8, 0, 0, 0, time.UTC)
	r1 := model.Route{ID: "r1", PlanStart: now.Add(2 * time.Hour), PlanEnd: now.Add(2*time.Hour + 30*time.Minute), MileagePlanned: 5}
	r2 := model.Route{ID: "r2", PlanStart: r1.PlanEnd.Add(50 * time.Minute), PlanEnd: r1.PlanEnd.Add(90 * time.Minute), MileagePlanned: 5}
	seq := model.Sequence{VehicleID: "v1", Routes: []model.Route{r1, r2}}
	v := model.Vehicle{ID: "v1", BatteryCapacityKWh: 100, EfficiencyKWhPerMile: 0.3}

	engine := Build(defaultConfig)
	verdict := engine.Evaluate(v, seq, Context{
		Now:          now,
		Availability: window.Availability{AvailableEnergyKWh: 90},
	})
	assert.True(t, verdict.Feasible)
	assert.Less(t, verdict.Cost, 0.0) // preferred-turnaround penalty applies (50min gap < 75min standard)
}

func TestRouteOverlap_MandatoryEvenWhenConfigDisables(t *testing.T) {
	now := time.Date(2026, 1, 1, 8, 0, 0, 0, time.UTC)
	r1 := model.Route{ID: "r1", PlanStart: now.Add(time.Hour), PlanEnd: now.Add(2 * time.Hour)}
	r2 := model.Route{ID: "r2", PlanStart: now.Add(time.Hour + 30*time.Minute), PlanEnd: now.Add(2*time.Hour + 30*time.Minute)}
	seq := model.Sequence{VehicleID: "v1", Routes: []model.Route{r1, r2}}
	v := model.Vehicle{ID: "v1", BatteryCapacityKWh: 100, EfficiencyKWhPerMile: 0.3}

	get := func(name string) params.ConstraintConfig {
		cfg := defaultConfig(name)
		if name == "route_overlap" {
			cfg.Enabled = false // must be ignored — route_overlap is mandatory
		}
		return cfg
	}
	engine := Build(get)
	verdict := engine.Evaluate(v, seq, Context{Now: now, Availability: window.Availability{AvailableEnergyKWh: 90}})
	assert.False(t, verdict.Feasible)
}

func TestSwapMinimization_BonusWhenPreviouslyAllocated(t *testing.T) {
	now := time.Date(2026, 1, 1, 8, 0, 0, 0, time.UTC)
	r1 := model.Route{ID: "r1", PlanStart: now.Add(2 * time.Hour), PlanEnd: now.Add(2*time.Hour + 30*time.Minute)}
	seq := model.Sequence{VehicleID: "v1", Routes: []model.Route{r1}}
	v := model.Vehicle{ID: "v1", BatteryCapacityKWh: 100, EfficiencyKWhPerMile: 0.3}

	cfg := defaultConfig("swap_minimization")
	cfg.Enabled = true
	c := newSwapMinimization(cfg)
	res := c.Evaluate(v, seq, Context{
		Now: now,
		PreviousAllocated: func(routeID string, since time.Time) (string, bool) {
			return "v1", true
		},
	})
	assert.Equal(t, 0.5, res.ScoreDelta)
}
