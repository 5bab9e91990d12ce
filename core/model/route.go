package model

import (
	"fmt"
	"time"
)

// RouteStatus is the lifecycle state of a delivery route.
type RouteStatus int

const (
	RouteNew RouteStatus = iota
	RouteActive
	RouteComplete
	RouteCancelled
	RouteError
	RouteUnfeasible
)

func (s RouteStatus) String() string {
	switch s {
	case RouteNew:
		return "New"
	case RouteActive:
		return "Active"
	case RouteComplete:
		return "Complete"
	case RouteCancelled:
		return "Cancelled"
	case RouteError:
		return "Error"
	case RouteUnfeasible:
		return "Unfeasible"
	default:
		return "Unknown"
	}
}

// Route is a delivery route eligible (or not) for allocation.
//
// PreAssignedVehicleID canonicalizes the source system's inconsistent "no
// pre-assignment" sentinels (0, -1, the literal "X", and null all meant the
// same thing upstream) to the empty string. Any adapter that loads Route
// values from an external source must perform that canonicalization before
// constructing the value; nothing downstream re-checks it.
type Route struct {
	ID                    string
	Site                  string
	PlanStart             time.Time
	PlanEnd               time.Time
	MileagePlanned        float64
	NOrders               int
	Status                RouteStatus
	PreAssignedVehicleID  string
}

// DurationMinutes returns the planned route duration in minutes.
func (r Route) DurationMinutes() float64 {
	return r.PlanEnd.Sub(r.PlanStart).Minutes()
}

// Validate reports structural problems that make the route unusable this
// run (a DataError: log, drop, continue).
func (r Route) Validate() error {
	if !r.PlanEnd.After(r.PlanStart) {
		return fmt.Errorf("route %s: plan_end must be after plan_start", r.ID)
	}
	if r.MileagePlanned < 0 {
		return fmt.Errorf("route %s: mileage must be non-negative", r.ID)
	}
	return nil
}

// Overlaps reports whether r and other occupy overlapping time, accounting
// for a required turnaround gap between them.
func (r Route) Overlaps(other Route, turnaround time.Duration) bool {
	if r.PlanEnd.Add(turnaround).Compare(other.PlanStart) <= 0 {
		return false
	}
	if other.PlanEnd.Add(turnaround).Compare(r.PlanStart) <= 0 {
		return false
	}
	return true
}

// CanPrecede reports whether r can be sequenced immediately before next
// given the required turnaround gap.
func (r Route) CanPrecede(next Route, turnaround time.Duration) bool {
	return !r.PlanEnd.Add(turnaround).After(next.PlanStart)
}
