// Package window implements the Window Builder: it narrows raw
// routes and vehicle telemetry down to the eligible route set and per-vehicle
// availability records the Sequence Enumerator and downstream stages consume.
package window

import (
	"sort"
	"time"

	"github.com/fleetgrid/evsched/core/model"
)

// DefaultMinStops is used when the site configuration is silent about the
// minimum order count a route needs to remain eligible.
const DefaultMinStops = 1

// DefaultHorizonHours is the default planning horizon width.
const DefaultHorizonHours = 18

// MinHorizonHours and MaxHorizonHours bound horizon_hours.
const (
	MinHorizonHours = 4
	MaxHorizonHours = 24
)

// ClampHorizonHours enforces the [4, 24] bound on a configured horizon.
func ClampHorizonHours(h int) int {
	if h < MinHorizonHours {
		return MinHorizonHours
	}
	if h > MaxHorizonHours {
		return MaxHorizonHours
	}
	return h
}

// Availability is the per-vehicle availability record produced by the
// builder: the instant and battery state a vehicle becomes free to take a
// new route, after cascading through any committed routes.
type Availability struct {
	VehicleID        string
	AvailableFrom    time.Time
	AvailableEnergyKWh float64
	Vehicle          model.Vehicle
}

// Window is the builder's output: the eligible route set and the
// availability record for every enabled, in-service vehicle.
type Window struct {
	Now          time.Time
	HorizonHours int
	Eligible     []model.Route
	Unfeasible   []model.Route
	Availability map[string]Availability
}

// Build filters routes to the eligible set,
// derives raw per-vehicle availability from telemetry, then cascades
// committed routes through it in start-time order.
func Build(
	now time.Time,
	horizonHours int,
	minStops int,
	siteID string,
	routes []model.Route,
	states []model.VehicleState,
	vehicles []model.Vehicle,
	committed []model.CommittedAllocation,
) Window {
	horizonHours = ClampHorizonHours(horizonHours)
	if minStops <= 0 {
		minStops = DefaultMinStops
	}
	end := now.Add(time.Duration(horizonHours) * time.Hour)

	w := Window{
		Now:          now,
		HorizonHours: horizonHours,
		Availability: map[string]Availability{},
	}

	for _, r := range routes {
		if r.Site != siteID || r.Status != model.RouteNew {
			continue
		}
		if r.PlanStart.Before(now) || !r.PlanStart.Before(end) {
			continue
		}
		if r.NOrders < minStops {
			w.Unfeasible = append(w.Unfeasible, r)
			continue
		}
		w.Eligible = append(w.Eligible, r)
	}

	stateByVehicle := make(map[string]model.VehicleState, len(states))
	for _, s := range states {
		stateByVehicle[s.VehicleID] = s
	}

	for _, v := range vehicles {
		if !v.AllocationEligible() {
			continue
		}
		st, ok := stateByVehicle[v.ID]
		availableFrom := now
		soc := 0.0
		if ok {
			if st.Status == model.StatusOnRoute && st.ReturnETA != nil {
				availableFrom = *st.ReturnETA
			}
			soc = st.EstimatedSoCPercent
			if st.ReturnSoCPercent != nil && *st.ReturnSoCPercent > soc {
				soc = *st.ReturnSoCPercent
			}
		}
		w.Availability[v.ID] = Availability{
			VehicleID:          v.ID,
			AvailableFrom:      availableFrom,
			AvailableEnergyKWh: soc / 100 * v.BatteryCapacityKWh,
			Vehicle:            v,
		}
	}

	cascadeCommitted(&w, routes, committed, now, end)
	return w
}

// cascadeCommitted deducts each committed route from its assigned vehicle's
// availability, in ascending plan_start order, so a vehicle with two
// committed routes has both applied cumulatively.
func cascadeCommitted(w *Window, allRoutes []model.Route, committed []model.CommittedAllocation, now, end time.Time) {
	if len(committed) == 0 {
		return
	}
	routeByID := make(map[string]model.Route, len(allRoutes))
	for _, r := range allRoutes {
		routeByID[r.ID] = r
	}

	type pair struct {
		route     model.Route
		vehicleID string
	}
	var pairs []pair
	for _, c := range committed {
		r, ok := routeByID[c.RouteID]
		if !ok {
			continue
		}
		if r.PlanStart.Before(now) || !r.PlanStart.Before(end) {
			continue
		}
		pairs = append(pairs, pair{route: r, vehicleID: c.VehicleID})
	}
	sort.Slice(pairs, func(i, j int) bool {
		return pairs[i].route.PlanStart.Before(pairs[j].route.PlanStart)
	})

	for _, p := range pairs {
		av, ok := w.Availability[p.vehicleID]
		if !ok {
			continue
		}
		if p.route.PlanStart.Before(av.AvailableFrom) {
			continue
		}
		av.AvailableFrom = p.route.PlanEnd
		av.AvailableEnergyKWh -= av.Vehicle.EnergyRequiredForMiles(p.route.MileagePlanned)
		if av.AvailableEnergyKWh < 0 {
			av.AvailableEnergyKWh = 0
		}
		w.Availability[p.vehicleID] = av
	}
}
