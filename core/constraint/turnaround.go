package constraint

import (
	"fmt"
	"time"

	"github.com/fleetgrid/evsched/core/model"
	"github.com/fleetgrid/evsched/core/params"
)

type turnaroundStrict struct {
	minimum time.Duration
	penalty float64
}

func newTurnaroundStrict(cfg params.ConstraintConfig) Constraint {
	return &turnaroundStrict{
		minimum: time.Duration(params.ParamInt(cfg.Params, "minimum_minutes", 45)) * time.Minute,
		penalty: cfg.Penalty,
	}
}

func (c *turnaroundStrict) Name() string { return "turnaround_time_strict" }

func (c *turnaroundStrict) Evaluate(_ model.Vehicle, seq model.Sequence, _ Context) Result {
	for i := 0; i+1 < len(seq.Routes); i++ {
		gap := seq.Routes[i+1].PlanStart.Sub(seq.Routes[i].PlanEnd)
		if gap < c.minimum {
			return Result{Name: c.Name(), HardViolated: true, ScoreDelta: c.penalty,
				Tags: []string{fmt.Sprintf("turnaround_time_strict: gap %s below minimum", gap)}}
		}
	}
	return Result{Name: c.Name()}
}

// MinimumMinutes reports the configured strict minimum in whole minutes.
func (c *turnaroundStrict) MinimumMinutes() int { return int(c.minimum / time.Minute) }

type turnaroundPreferred struct {
	standard      time.Duration
	optimal       time.Duration
	penaltyStd    float64
	penaltyOptimal float64
}

func newTurnaroundPreferred(cfg params.ConstraintConfig) Constraint {
	return &turnaroundPreferred{
		standard:       time.Duration(params.ParamInt(cfg.Params, "standard_minutes", 75)) * time.Minute,
		optimal:        time.Duration(params.ParamInt(cfg.Params, "optimal_minutes", 90)) * time.Minute,
		penaltyStd:     params.ParamFloat(cfg.Params, "penalty_standard", -2),
		penaltyOptimal: params.ParamFloat(cfg.Params, "penalty_optimal", -1),
	}
}

func (c *turnaroundPreferred) Name() string { return "turnaround_time_preferred" }

func (c *turnaroundPreferred) Evaluate(_ model.Vehicle, seq model.Sequence, _ Context) Result {
	var delta float64
	for i := 0; i+1 < len(seq.Routes); i++ {
		gap := seq.Routes[i+1].PlanStart.Sub(seq.Routes[i].PlanEnd)
		switch {
		case gap < c.standard:
			delta += c.penaltyStd
		case gap < c.optimal:
			delta += c.penaltyOptimal
		}
	}
	return Result{Name: c.Name(), ScoreDelta: delta}
}

type minimumSoonness struct {
	hours   float64
	penalty float64
}

func newMinimumSoonness(cfg params.ConstraintConfig) Constraint {
	return &minimumSoonness{
		hours:   params.ParamFloat(cfg.Params, "hours", 0.75),
		penalty: cfg.Penalty,
	}
}

func (c *minimumSoonness) Name() string { return "minimum_soonness" }

func (c *minimumSoonness) Evaluate(_ model.Vehicle, seq model.Sequence, ctx Context) Result {
	if len(seq.Routes) == 0 {
		return Result{Name: c.Name()}
	}
	first := seq.Routes[0]
	if first.PlanStart.Sub(ctx.Now) < time.Duration(c.hours*float64(time.Hour)) {
		return Result{Name: c.Name(), HardViolated: true, ScoreDelta: c.penalty,
			Tags: []string{fmt.Sprintf("minimum_soonness: route %s starts too soon", first.ID)}}
	}
	return Result{Name: c.Name()}
}

type routeOverlap struct {
	penalty float64
}

func newRouteOverlap(cfg params.ConstraintConfig) Constraint {
	return &routeOverlap{penalty: cfg.Penalty}
}

func (c *routeOverlap) Name() string { return "route_overlap" }

func (c *routeOverlap) Evaluate(_ model.Vehicle, seq model.Sequence, _ Context) Result {
	for i := 0; i < len(seq.Routes); i++ {
		for j := i + 1; j < len(seq.Routes); j++ {
			if seq.Routes[i].Overlaps(seq.Routes[j], 0) {
				return Result{Name: c.Name(), HardViolated: true, ScoreDelta: c.penalty,
					Tags: []string{fmt.Sprintf("route_overlap: %s overlaps %s", seq.Routes[i].ID, seq.Routes[j].ID)}}
			}
		}
	}
	return Result{Name: c.Name()}
}
