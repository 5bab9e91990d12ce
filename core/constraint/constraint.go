// Package constraint implements the Constraint Engine: a set of
// pluggable rules evaluated over a (vehicle, sequence) pair, each reporting a
// hard violation and/or a soft score delta. The engine composes the
// configured, enabled subset and short-circuits on the first hard violation.
package constraint

import (
	"time"

	"github.com/fleetgrid/evsched/core/model"
	"github.com/fleetgrid/evsched/core/params"
	"github.com/fleetgrid/evsched/core/window"
)

// Context is the shared read-only state every constraint evaluates against.
type Context struct {
	Now               time.Time
	Availability      window.Availability
	PreviousAllocated func(routeID string, since time.Time) (vehicleID string, ok bool)
}

// Result is one constraint's verdict.
type Result struct {
	Name         string
	HardViolated bool
	ScoreDelta   float64
	Tags         []string
}

// Constraint evaluates a vehicle+sequence pair.
type Constraint interface {
	Name() string
	Evaluate(v model.Vehicle, seq model.Sequence, ctx Context) Result
}

// Engine holds the enabled, configured constraint set in evaluation order
// (hard constraints first, so Evaluate can short-circuit).
type Engine struct {
	constraints []Constraint
}

// Verdict is the engine's aggregate output for one (vehicle, sequence) pair.
type Verdict struct {
	Feasible bool
	Cost     float64
	Tags     []string
}

// Build constructs the engine from decoded site configuration, in the fixed
// order defined by params.StandardConstraintNames. Constraints listed in
// params.MandatoryConstraints are built even when cfg.Enabled is false.
func Build(get func(name string) params.ConstraintConfig) *Engine {
	e := &Engine{}
	for _, name := range params.StandardConstraintNames {
		cfg := get(name)
		if !cfg.Enabled && !params.MandatoryConstraints[name] {
			continue
		}
		if c := newConstraint(name, cfg); c != nil {
			e.constraints = append(e.constraints, c)
		}
	}
	return e
}

func newConstraint(name string, cfg params.ConstraintConfig) Constraint {
	switch name {
	case "energy_feasibility":
		return newEnergyFeasibility(cfg)
	case "turnaround_time_strict":
		return newTurnaroundStrict(cfg)
	case "turnaround_time_preferred":
		return newTurnaroundPreferred(cfg)
	case "shift_hours_strict":
		return newShiftHoursStrict(cfg)
	case "minimum_soonness":
		return newMinimumSoonness(cfg)
	case "route_overlap":
		return newRouteOverlap(cfg)
	case "charger_preference":
		return newChargerPreference(cfg)
	case "swap_minimization":
		return newSwapMinimization(cfg)
	case "energy_optimization":
		return newEnergyOptimization(cfg)
	default:
		return nil
	}
}

// Evaluate runs every enabled constraint in order, short-circuiting on the
// first hard violation.
func (e *Engine) Evaluate(v model.Vehicle, seq model.Sequence, ctx Context) Verdict {
	var cost float64
	var tags []string
	for _, c := range e.constraints {
		r := c.Evaluate(v, seq, ctx)
		tags = append(tags, r.Tags...)
		if r.HardViolated {
			return Verdict{Feasible: false, Cost: cost, Tags: tags}
		}
		cost += r.ScoreDelta
	}
	return Verdict{Feasible: true, Cost: cost, Tags: tags}
}

// Turnaround returns max(strict_minimum_minutes, route_sequence_buffer_minutes)
// given the strict-turnaround constraint's configured minimum.
func Turnaround(strictMinimumMinutes, routeSequenceBufferMinutes int) time.Duration {
	m := strictMinimumMinutes
	if routeSequenceBufferMinutes > m {
		m = routeSequenceBufferMinutes
	}
	return time.Duration(m) * time.Minute
}
