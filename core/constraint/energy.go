package constraint

import (
	"fmt"

	"github.com/fleetgrid/evsched/core/model"
	"github.com/fleetgrid/evsched/core/params"
)

type energyFeasibility struct {
	safetyMarginKWh float64
	allowDCCharging bool
	penalty         float64
}

func newEnergyFeasibility(cfg params.ConstraintConfig) Constraint {
	return &energyFeasibility{
		safetyMarginKWh: params.ParamFloat(cfg.Params, "safety_margin_kwh", 5.0),
		allowDCCharging: params.ParamBool(cfg.Params, "allow_dc_charging", true),
		penalty:         cfg.Penalty,
	}
}

func (c *energyFeasibility) Name() string { return "energy_feasibility" }

func (c *energyFeasibility) Evaluate(v model.Vehicle, seq model.Sequence, ctx Context) Result {
	energy := ctx.Availability.AvailableEnergyKWh
	for _, r := range seq.Routes {
		required := v.EnergyRequiredForMiles(r.MileagePlanned)
		if energy-required < c.safetyMarginKWh {
			return Result{Name: c.Name(), HardViolated: true, ScoreDelta: c.penalty,
				Tags: []string{fmt.Sprintf("energy_feasibility: route %s breaches safety margin", r.ID)}}
		}
		energy -= required
	}
	return Result{Name: c.Name()}
}

type energyOptimization struct {
	thresholds []float64
	scores     []float64
}

func newEnergyOptimization(cfg params.ConstraintConfig) Constraint {
	return &energyOptimization{
		thresholds: floatSlice(cfg.Params, "margin_thresholds"),
		scores:     floatSlice(cfg.Params, "scores"),
	}
}

func (c *energyOptimization) Name() string { return "energy_optimization" }

func (c *energyOptimization) Evaluate(v model.Vehicle, seq model.Sequence, ctx Context) Result {
	if v.BatteryCapacityKWh <= 0 || len(c.thresholds) == 0 || len(c.thresholds) != len(c.scores) {
		return Result{Name: c.Name()}
	}
	remaining := ctx.Availability.AvailableEnergyKWh
	for _, r := range seq.Routes {
		remaining -= v.EnergyRequiredForMiles(r.MileagePlanned)
	}
	fraction := remaining / v.BatteryCapacityKWh

	matched := false
	bestThreshold := 0.0
	bestScore := 0.0
	for i, th := range c.thresholds {
		if fraction >= th && (!matched || th > bestThreshold) {
			bestThreshold = th
			bestScore = c.scores[i]
			matched = true
		}
	}
	if !matched {
		return Result{Name: c.Name()}
	}
	return Result{Name: c.Name(), ScoreDelta: bestScore}
}

func floatSlice(m map[string]any, key string) []float64 {
	v, ok := m[key]
	if !ok {
		return nil
	}
	arr, ok := v.([]any)
	if !ok {
		return nil
	}
	out := make([]float64, 0, len(arr))
	for _, e := range arr {
		switch n := e.(type) {
		case float64:
			out = append(out, n)
		case int:
			out = append(out, float64(n))
		}
	}
	return out
}
