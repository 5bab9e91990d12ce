// Package charge implements the Charge Optimizer: a
// continuous per-vehicle, per-slot power schedule solved primarily via LP
// and, on solver failure, by a cheapest-slot-first greedy fallback.
package charge

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/fleetgrid/evsched/core/logger"
	"github.com/fleetgrid/evsched/core/model"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/optimize/convex/lp"
)

// ErrInfeasible is returned when the LP relaxation has no feasible solution.
var ErrInfeasible = errors.New("charge: lp infeasible")

// VehicleInput is one vehicle's scheduling inputs.
type VehicleInput struct {
	Vehicle          model.Vehicle
	AvailableFromIdx int // first slot index this vehicle can be charged in
	InitialSoCKWh    float64
	TargetSoCKWh     float64
	MaxShortfallKWh  float64
	AllowDCCharging  bool
	// Checkpoints are cumulative energy floors: by the end of slot Index-1,
	// cumulative charged energy plus InitialSoCKWh must cover
	// CumulativeConsumedKWh for the routes already started.
	Checkpoints []Checkpoint
}

// Checkpoint is one route-start energy floor for a vehicle.
type Checkpoint struct {
	SlotIndex           int
	CumulativeConsumedKWh float64
}

// Options configures one charge-optimizer run.
type Options struct {
	TimeLimit               time.Duration
	SiteCapacityKW          float64
	SyntheticTimePriceFactor float64
	TriadPenaltyFactor      float64
	TargetSoCShortfallPenalty float64
}

// Solve schedules power for every vehicle across slots, falling back to
// greedy on solver failure. The time limit is checked only before the LP
// starts; a solve already in progress is not interrupted.
func Solve(ctx context.Context, log logger.Logger, slots []model.TimeSlot, prices []model.PricePoint, vehicles []VehicleInput, opts Options) model.ChargePlan {
	b := model.NewChargePlanBuilder()
	if len(slots) == 0 || len(vehicles) == 0 {
		return b.Build()
	}
	if opts.TimeLimit <= 0 {
		opts.TimeLimit = 300 * time.Second
	}

	lctx, cancel := context.WithTimeout(ctx, opts.TimeLimit)
	defer cancel()

	plan, err := solveLP(lctx, slots, prices, vehicles, opts)
	if err != nil {
		if log != nil {
			log.Warnf("charge: lp solve failed, falling back to greedy: %v", err)
		}
		plan = solveGreedy(slots, prices, vehicles, opts)
		plan.Fallback = true
		plan.Diagnostics = append(plan.Diagnostics, "charge: greedy fallback used")
	}
	return plan
}

func effectivePrice(pp model.PricePoint, factor, triadFactor float64, t, total int) float64 {
	synthetic := factor * float64(total-t) / float64(total)
	triad := 0.0
	if pp.TriadFlag {
		triad = triadFactor
	}
	return pp.EnergyPrice + synthetic + triad
}

func solveLP(ctx context.Context, slots []model.TimeSlot, prices []model.PricePoint, vehicles []VehicleInput, opts Options) (model.ChargePlan, error) {
	select {
	case <-ctx.Done():
		return model.ChargePlan{}, ctx.Err()
	default:
	}

	T := len(slots)
	V := len(vehicles)
	nP := T * V
	nVars := nP + V // p[t,v] then shortfall[v]
	idx := func(t, v int) int { return v*T + t }

	priceByIdx := make([]model.PricePoint, T)
	for _, pp := range prices {
		if pp.SlotIndex >= 0 && pp.SlotIndex < T {
			priceByIdx[pp.SlotIndex] = pp
		}
	}

	cVec := make([]float64, nVars)
	for v := 0; v < V; v++ {
		for t := 0; t < T; t++ {
			price := effectivePrice(priceByIdx[t], opts.SyntheticTimePriceFactor, opts.TriadPenaltyFactor, t, T)
			cVec[idx(t, v)] = price * model.SlotDuration.Hours()
		}
		cVec[nP+v] = opts.TargetSoCShortfallPenalty
	}

	var rows [][]float64
	var rhs []float64
	addRow := func(row []float64, b float64) {
		rows = append(rows, row)
		rhs = append(rhs, b)
	}

	// Site capacity per slot: sum_v p[t,v] <= max(0, capacity - load_forecast[t])
	for t := 0; t < T; t++ {
		row := make([]float64, nVars)
		for v := 0; v < V; v++ {
			row[idx(t, v)] = 1
		}
		cap := opts.SiteCapacityKW - priceByIdx[t].LoadForecastKW
		if cap < 0 {
			cap = 0
		}
		addRow(row, cap)
	}

	// Route checkpoints: cumulative charged energy through slot k-1 must
	// cover cumulative consumption minus initial SoC.
	for v, vi := range vehicles {
		for _, cp := range vi.Checkpoints {
			row := make([]float64, nVars)
			for t := 0; t < cp.SlotIndex && t < T; t++ {
				row[idx(t, v)] = -model.SlotDuration.Hours()
			}
			required := cp.CumulativeConsumedKWh - vi.InitialSoCKWh
			if required < 0 {
				required = 0
			}
			addRow(row, -required)
		}
	}

	// Shortfall linking: shortfall[v] >= target - initial - sum_t p[t,v]*Δ
	// => -Δ*sum p[t,v] - shortfall[v] <= initial - target
	for v, vi := range vehicles {
		row := make([]float64, nVars)
		for t := 0; t < T; t++ {
			row[idx(t, v)] = -model.SlotDuration.Hours()
		}
		row[nP+v] = -1
		addRow(row, vi.InitialSoCKWh-vi.TargetSoCKWh)
	}

	// Bounds: p[t,v] <= rate (0 before availability), shortfall[v] <= max.
	for v, vi := range vehicles {
		rate := vi.Vehicle.ChargeRateKW(vi.AllowDCCharging)
		for t := 0; t < T; t++ {
			row := make([]float64, nVars)
			row[idx(t, v)] = 1
			limit := rate
			if t < vi.AvailableFromIdx {
				limit = 0
			}
			addRow(row, limit)
		}
		row := make([]float64, nVars)
		row[nP+v] = 1
		addRow(row, vi.MaxShortfallKWh)
	}

	g := mat.NewDense(len(rows), nVars, nil)
	for i, row := range rows {
		for j, val := range row {
			g.Set(i, j, val)
		}
	}

	cStd, aStd, bStd := lp.Convert(cVec, g, rhs, nil, nil)
	_, sol, err := lp.Simplex(cStd, aStd, bStd, 1e-7, nil)
	if err != nil {
		return model.ChargePlan{}, err
	}
	if len(sol) < nVars {
		return model.ChargePlan{}, ErrInfeasible
	}

	return buildPlan(slots, priceByIdx, vehicles, sol, idx, nP), nil
}

func buildPlan(slots []model.TimeSlot, priceByIdx []model.PricePoint, vehicles []VehicleInput, sol []float64, idx func(t, v int) int, nP int) model.ChargePlan {
	b := model.NewChargePlanBuilder()
	var schedules []model.VehicleChargeSchedule
	var totalEnergy, totalCost float64
	for v, vi := range vehicles {
		var powerSlots []model.VehicleSlotPower
		for t := range slots {
			p := sol[idx(t, v)]
			if p < 1e-6 {
				p = 0
			}
			powerSlots = append(powerSlots, model.VehicleSlotPower{SlotIndex: t, PowerKW: p})
			totalEnergy += p * model.SlotDuration.Hours()
			totalCost += p * model.SlotDuration.Hours() * priceByIdx[t].EnergyPrice
		}
		schedules = append(schedules, model.VehicleChargeSchedule{VehicleID: vi.Vehicle.ID, Slots: powerSlots})
		if s := sol[nP+v]; s > 1e-6 {
			b.WithShortfall(vi.Vehicle.ID, s)
		}
	}
	sort.Slice(schedules, func(i, j int) bool { return schedules[i].VehicleID < schedules[j].VehicleID })
	return b.WithSchedules(schedules).WithTotals(totalEnergy, totalCost).Build()
}

// solveGreedy fills each vehicle's cheapest available slots up to its need,
// then clips per-slot totals against site capacity in ascending vehicle-id
// priority order.
func solveGreedy(slots []model.TimeSlot, prices []model.PricePoint, vehicles []VehicleInput, opts Options) model.ChargePlan {
	T := len(slots)
	priceByIdx := make([]model.PricePoint, T)
	for _, pp := range prices {
		if pp.SlotIndex >= 0 && pp.SlotIndex < T {
			priceByIdx[pp.SlotIndex] = pp
		}
	}
	effective := func(t int) float64 {
		pp := priceByIdx[t]
		triad := 0.0
		if pp.TriadFlag {
			triad = opts.TriadPenaltyFactor
		}
		return pp.EnergyPrice + triad
	}

	sortedVehicles := make([]VehicleInput, len(vehicles))
	copy(sortedVehicles, vehicles)
	sort.Slice(sortedVehicles, func(i, j int) bool { return sortedVehicles[i].Vehicle.ID < sortedVehicles[j].Vehicle.ID })

	power := make([][]float64, len(vehicles)) // per vehicle (in sortedVehicles order), per slot
	shortfalls := map[string]float64{}

	for vi, v := range sortedVehicles {
		power[vi] = make([]float64, T)
		need := v.TargetSoCKWh - v.InitialSoCKWh
		if need < 0 {
			need = 0
		}
		for _, cp := range v.Checkpoints {
			consumed := cp.CumulativeConsumedKWh - v.InitialSoCKWh
			if consumed > need {
				need = consumed
			}
		}

		type slotPrice struct {
			idx   int
			price float64
		}
		var order []slotPrice
		for t := v.AvailableFromIdx; t < T; t++ {
			order = append(order, slotPrice{idx: t, price: effective(t)})
		}
		sort.Slice(order, func(a, b int) bool {
			if order[a].price != order[b].price {
				return order[a].price < order[b].price
			}
			return order[a].idx < order[b].idx
		})

		rate := v.Vehicle.ChargeRateKW(v.AllowDCCharging)
		remaining := need
		for _, sp := range order {
			if remaining <= 0 {
				break
			}
			maxEnergy := rate * model.SlotDuration.Hours()
			take := maxEnergy
			if take > remaining {
				take = remaining
			}
			power[vi][sp.idx] = take / model.SlotDuration.Hours()
			remaining -= take
		}
		if remaining > 1e-6 {
			shortfalls[v.Vehicle.ID] = remaining
		}
	}

	// Per-slot capacity clipping in ascending vehicle-id priority.
	for t := 0; t < T; t++ {
		cap := opts.SiteCapacityKW - priceByIdx[t].LoadForecastKW
		if cap < 0 {
			cap = 0
		}
		var used float64
		for vi := range sortedVehicles {
			if used >= cap {
				power[vi][t] = 0
				continue
			}
			p := power[vi][t]
			if used+p > cap {
				p = cap - used
			}
			power[vi][t] = p
			used += p
		}
	}

	b := model.NewChargePlanBuilder()
	var schedules []model.VehicleChargeSchedule
	var totalEnergy, totalCost float64
	for vi, v := range sortedVehicles {
		var powerSlots []model.VehicleSlotPower
		for t := 0; t < T; t++ {
			powerSlots = append(powerSlots, model.VehicleSlotPower{SlotIndex: t, PowerKW: power[vi][t]})
			totalEnergy += power[vi][t] * model.SlotDuration.Hours()
			totalCost += power[vi][t] * model.SlotDuration.Hours() * priceByIdx[t].EnergyPrice
		}
		schedules = append(schedules, model.VehicleChargeSchedule{VehicleID: v.Vehicle.ID, Slots: powerSlots})
	}
	for vehicleID, sf := range shortfalls {
		b.WithShortfall(vehicleID, sf)
	}
	return b.WithSchedules(schedules).WithTotals(totalEnergy, totalCost).Build()
}
