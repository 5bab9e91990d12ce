// Package sequence implements the Sequence Enumerator: for each
// vehicle, it produces every non-empty ordered subsequence of the eligible
// route set, up to a bounded length, pruning any prefix that already
// violates a hard constraint.
package sequence

import (
	"sort"
	"time"

	"github.com/fleetgrid/evsched/core/constraint"
	"github.com/fleetgrid/evsched/core/model"
	"github.com/fleetgrid/evsched/core/window"
)

// Candidate is one (vehicle, sequence, raw_score) triple emitted by the
// enumerator, already validated feasible by the constraint engine.
type Candidate struct {
	Vehicle  model.Vehicle
	Sequence model.Sequence
	Cost     float64
	Tags     []string
}

// Params bounds the enumeration.
type Params struct {
	MaxRoutesPerVehicle int
	Turnaround          time.Duration
	AllowDCCharging     bool
	IdleChargingAllowed bool
}

// Enumerate walks every enabled vehicle's availability record, in ascending
// vehicle-ID order, and emits its feasible candidate sequences.
func Enumerate(
	eligible []model.Route,
	availability map[string]window.Availability,
	engine *constraint.Engine,
	prevAllocated func(routeID string, since time.Time) (string, bool),
	now time.Time,
	p Params,
) []Candidate {
	sorted := make([]model.Route, len(eligible))
	copy(sorted, eligible)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].PlanStart.Before(sorted[j].PlanStart) })

	vehicleIDs := make([]string, 0, len(availability))
	for id := range availability {
		vehicleIDs = append(vehicleIDs, id)
	}
	sort.Strings(vehicleIDs)

	var out []Candidate
	for _, id := range vehicleIDs {
		out = append(out, enumerateForVehicle(sorted, availability[id], engine, prevAllocated, now, p)...)
	}
	return out
}

func enumerateForVehicle(
	sorted []model.Route,
	av window.Availability,
	engine *constraint.Engine,
	prevAllocated func(routeID string, since time.Time) (string, bool),
	now time.Time,
	p Params,
) []Candidate {
	var out []Candidate
	ctx := constraint.Context{Now: now, Availability: av, PreviousAllocated: prevAllocated}

	var dfs func(prefix []model.Route, startIdx int, energy float64)
	dfs = func(prefix []model.Route, startIdx int, energy float64) {
		for i := startIdx; i < len(sorted); i++ {
			r := sorted[i]
			if len(prefix) == 0 {
				if r.PlanStart.Before(av.AvailableFrom) {
					continue
				}
			} else {
				last := prefix[len(prefix)-1]
				if !last.CanPrecede(r, p.Turnaround) {
					continue
				}
			}

			required := av.Vehicle.EnergyRequiredForMiles(r.MileagePlanned)
			nextEnergy := energy - required
			if len(prefix) > 0 && p.IdleChargingAllowed {
				idleGap := r.PlanStart.Sub(prefix[len(prefix)-1].PlanEnd)
				recovery := av.Vehicle.ChargeRateKW(p.AllowDCCharging) * idleGap.Hours()
				nextEnergy += recovery
				if nextEnergy > av.AvailableEnergyKWh {
					nextEnergy = av.AvailableEnergyKWh
				}
			}
			if nextEnergy < 0 {
				continue
			}

			next := append(append([]model.Route{}, prefix...), r)
			if len(next) > p.MaxRoutesPerVehicle {
				continue
			}

			seq := model.Sequence{VehicleID: av.VehicleID, Routes: next}
			verdict := engine.Evaluate(av.Vehicle, seq, ctx)
			if !verdict.Feasible {
				// Prune: a hard violation on this prefix only gets worse by
				// extending it further.
				continue
			}
			out = append(out, Candidate{Vehicle: av.Vehicle, Sequence: seq, Cost: verdict.Cost, Tags: verdict.Tags})

			if len(next) < p.MaxRoutesPerVehicle {
				dfs(next, i+1, nextEnergy)
			}
		}
	}

	dfs(nil, 0, av.AvailableEnergyKWh)
	return out
}
