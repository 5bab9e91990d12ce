package params

// StandardConstraintNames lists the constraint variants recognized by the
// Constraint Engine, in the fixed evaluation order (hard
// constraints first, so the engine can short-circuit early).
var StandardConstraintNames = []string{
	"route_overlap",
	"energy_feasibility",
	"turnaround_time_strict",
	"shift_hours_strict",
	"minimum_soonness",
	"turnaround_time_preferred",
	"charger_preference",
	"swap_minimization",
	"energy_optimization",
}

// DefaultPenalties mirrors original_source/src/config.py's DEFAULT_PENALTIES:
// the penalty applied when a constraint's own `penalty` parameter is absent.
var DefaultPenalties = map[string]float64{
	"energy_feasibility":        -20,
	"turnaround_time_strict":    -22,
	"turnaround_time_preferred": -2,
	"shift_hours_strict":        -20,
	"minimum_soonness":          -20,
	"route_overlap":             -20,
	"charger_preference":        0,
	"swap_minimization":         0,
	"energy_optimization":       0,
}

// DefaultConstraintEnabled mirrors DEFAULT_CONSTRAINT_ENABLED: whether a
// constraint is on when the site configuration is silent about it.
// route_overlap is mandatory and cannot be disabled regardless of this map.
var DefaultConstraintEnabled = map[string]bool{
	"energy_feasibility":        true,
	"turnaround_time_strict":    true,
	"turnaround_time_preferred": true,
	"shift_hours_strict":        true,
	"minimum_soonness":          true,
	"route_overlap":             true,
	"charger_preference":        false,
	"swap_minimization":         false,
	"energy_optimization":       false,
}

// MandatoryConstraints can never be disabled by site configuration.
var MandatoryConstraints = map[string]bool{
	"route_overlap": true,
}
