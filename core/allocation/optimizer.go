// Package allocation implements the Allocation Optimizer: a
// set-covering formulation over enumerated (vehicle, sequence) candidates,
// solved primarily via an LP relaxation and, on solver failure or when the
// time limit has already expired before the LP starts, by a greedy fallback.
package allocation

import (
	"context"
	"errors"
	"math"
	"sort"
	"time"

	"github.com/fleetgrid/evsched/core/logger"
	"github.com/fleetgrid/evsched/core/model"
	"github.com/fleetgrid/evsched/core/sequence"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/optimize/convex/lp"
)

// CoverageWeight is W in the objective W·Σy_r + Σc_i·x_i.
const CoverageWeight = 100

// DefaultQualityThreshold is applied to the aggregate score unless a caller
// overrides it.
const DefaultQualityThreshold = -4

// ErrInfeasible is returned by the LP path when no relaxed solution exists.
var ErrInfeasible = errors.New("allocation: lp infeasible")

// Options configures one optimizer run.
type Options struct {
	TimeLimit        time.Duration
	QualityThreshold float64
}

// Result is the outcome of one allocation run, ready to fold into a
// model.AllocationResult via the builder.
type Result struct {
	Assignments []model.RouteAssignment
	Score       float64
	Fallback    bool
	Diagnostics []string
}

// Solve runs the LP relaxation, falling back to greedy on solver failure.
// The time limit is checked only before the LP starts; a solve already in
// progress is not interrupted. An empty candidate set returns an empty
// Result without running either solver.
func Solve(ctx context.Context, log logger.Logger, candidates []sequence.Candidate, eligibleRouteCount int, opts Options) Result {
	if len(candidates) == 0 {
		return Result{Diagnostics: []string{"allocation: no candidates enumerated"}}
	}
	if opts.TimeLimit <= 0 {
		opts.TimeLimit = 30 * time.Second
	}

	lctx, cancel := context.WithTimeout(ctx, opts.TimeLimit)
	defer cancel()

	res, err := solveLP(lctx, candidates)
	if err != nil {
		if log != nil {
			log.Warnf("allocation: lp solve failed, falling back to greedy: %v", err)
		}
		res = solveGreedy(candidates)
		res.Fallback = true
		res.Diagnostics = append(res.Diagnostics, "allocation: greedy fallback used")
	}
	return res
}

// solveLP builds the relaxed set-covering LP and rounds the fractional
// solution, then repairs any rounding-induced constraint violation by
// dropping the lowest-cost conflicting sequence — deterministic given
// deterministic candidate ordering.
func solveLP(ctx context.Context, candidates []sequence.Candidate) (Result, error) {
	select {
	case <-ctx.Done():
		return Result{}, ctx.Err()
	default:
	}

	routeIndex := map[string]int{}
	var routeIDs []string
	for _, c := range candidates {
		for _, r := range c.Sequence.Routes {
			if _, ok := routeIndex[r.ID]; !ok {
				routeIndex[r.ID] = len(routeIDs)
				routeIDs = append(routeIDs, r.ID)
			}
		}
	}
	vehicleIndex := map[string]int{}
	var vehicleIDs []string
	for _, c := range candidates {
		if _, ok := vehicleIndex[c.Vehicle.ID]; !ok {
			vehicleIndex[c.Vehicle.ID] = len(vehicleIDs)
			vehicleIDs = append(vehicleIDs, c.Vehicle.ID)
		}
	}

	n := len(candidates)
	m := len(routeIDs)
	nVars := n + m // x_i then y_r

	// Objective: minimize -(W*sum(y_r) + sum(c_i*x_i))
	cVec := make([]float64, nVars)
	for i, cand := range candidates {
		cVec[i] = -cand.Cost
	}
	for j := 0; j < m; j++ {
		cVec[n+j] = -CoverageWeight
	}

	var rows [][]float64
	var rhs []float64
	addRow := func(row []float64, b float64) {
		rows = append(rows, row)
		rhs = append(rhs, b)
	}

	// Per-vehicle: sum x_i <= 1
	for _, vid := range vehicleIDs {
		row := make([]float64, nVars)
		for i, cand := range candidates {
			if cand.Vehicle.ID == vid {
				row[i] = 1
			}
		}
		addRow(row, 1)
	}
	// Per-route: sum_{i: r in Si} x_i <= 1, and linking constraints.
	coveringCount := make([]float64, m)
	coveringRows := make([][]float64, m)
	for j := range coveringRows {
		coveringRows[j] = make([]float64, nVars)
	}
	for i, cand := range candidates {
		for _, r := range cand.Sequence.Routes {
			j := routeIndex[r.ID]
			coveringRows[j][i] = 1
			coveringCount[j]++
		}
	}
	for j := 0; j < m; j++ {
		row := append([]float64{}, coveringRows[j]...)
		addRow(row, 1)

		// y_r <= sum x_i  =>  -sum x_i + y_r <= 0
		link1 := append([]float64{}, coveringRows[j]...)
		for k := range link1 {
			link1[k] = -link1[k]
		}
		link1[n+j] = 1
		addRow(link1, 0)

		// sum x_i <= count*y_r  => sum x_i - count*y_r <= 0
		link2 := append([]float64{}, coveringRows[j]...)
		link2[n+j] = -coveringCount[j]
		addRow(link2, 0)
	}
	// Upper bounds x_i<=1, y_r<=1 (Simplex only enforces x>=0 natively).
	for v := 0; v < nVars; v++ {
		row := make([]float64, nVars)
		row[v] = 1
		addRow(row, 1)
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
		return Result{}, err
	}
	if len(sol) < n {
		return Result{}, ErrInfeasible
	}

	selected := make([]bool, n)
	for i := 0; i < n; i++ {
		if sol[i] > 0.5 {
			selected[i] = true
		}
	}
	repair(candidates, selected)

	return buildResult(candidates, selected), nil
}

// repair walks the rounded selection in cost-descending order and drops any
// candidate that conflicts (shared vehicle or shared route) with an
// already-kept, higher-cost candidate.
func repair(candidates []sequence.Candidate, selected []bool) {
	order := make([]int, 0, len(candidates))
	for i, sel := range selected {
		if sel {
			order = append(order, i)
		}
	}
	sort.Slice(order, func(a, b int) bool {
		if candidates[order[a]].Cost != candidates[order[b]].Cost {
			return candidates[order[a]].Cost > candidates[order[b]].Cost
		}
		if len(candidates[order[a]].Sequence.Routes) != len(candidates[order[b]].Sequence.Routes) {
			return len(candidates[order[a]].Sequence.Routes) > len(candidates[order[b]].Sequence.Routes)
		}
		return candidates[order[a]].Vehicle.ID < candidates[order[b]].Vehicle.ID
	})

	usedVehicles := map[string]bool{}
	usedRoutes := map[string]bool{}
	for _, i := range order {
		c := candidates[i]
		if usedVehicles[c.Vehicle.ID] {
			selected[i] = false
			continue
		}
		conflict := false
		for _, r := range c.Sequence.Routes {
			if usedRoutes[r.ID] {
				conflict = true
				break
			}
		}
		if conflict {
			selected[i] = false
			continue
		}
		usedVehicles[c.Vehicle.ID] = true
		for _, r := range c.Sequence.Routes {
			usedRoutes[r.ID] = true
		}
	}
}

// solveGreedy sorts candidates by cost descending and greedily selects any
// candidate whose vehicle and routes are still free.
func solveGreedy(candidates []sequence.Candidate) Result {
	ordered := make([]int, len(candidates))
	for i := range ordered {
		ordered[i] = i
	}
	sort.Slice(ordered, func(a, b int) bool {
		ca, cb := candidates[ordered[a]], candidates[ordered[b]]
		if ca.Cost != cb.Cost {
			return ca.Cost > cb.Cost
		}
		if len(ca.Sequence.Routes) != len(cb.Sequence.Routes) {
			return len(ca.Sequence.Routes) > len(cb.Sequence.Routes)
		}
		return ca.Vehicle.ID < cb.Vehicle.ID
	})

	selected := make([]bool, len(candidates))
	usedVehicles := map[string]bool{}
	usedRoutes := map[string]bool{}
	for _, i := range ordered {
		c := candidates[i]
		if usedVehicles[c.Vehicle.ID] {
			continue
		}
		conflict := false
		for _, r := range c.Sequence.Routes {
			if usedRoutes[r.ID] {
				conflict = true
				break
			}
		}
		if conflict {
			continue
		}
		selected[i] = true
		usedVehicles[c.Vehicle.ID] = true
		for _, r := range c.Sequence.Routes {
			usedRoutes[r.ID] = true
		}
	}
	return buildResult(candidates, selected)
}

func buildResult(candidates []sequence.Candidate, selected []bool) Result {
	var res Result
	coveredRoutes := map[string]bool{}
	for i, sel := range selected {
		if !sel {
			continue
		}
		c := candidates[i]
		res.Score += c.Cost
		for _, r := range c.Sequence.Routes {
			coveredRoutes[r.ID] = true
			res.Assignments = append(res.Assignments, model.RouteAssignment{
				RouteID:          r.ID,
				VehicleID:        c.Vehicle.ID,
				EstimatedArrival: r.PlanEnd,
			})
		}
	}
	res.Score += CoverageWeight * float64(len(coveredRoutes))
	sort.Slice(res.Assignments, func(i, j int) bool {
		return res.Assignments[i].RouteID < res.Assignments[j].RouteID
	})
	return res
}

// PassesQualityGate reports whether score clears the configured threshold
//.
func PassesQualityGate(score float64, opts Options) bool {
	threshold := opts.QualityThreshold
	if threshold == 0 {
		threshold = DefaultQualityThreshold
	}
	return !math.IsNaN(score) && score >= threshold
}
