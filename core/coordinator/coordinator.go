// Package coordinator implements the Unified Coordinator: it
// runs the Allocation Optimizer and/or Charge Optimizer according to the
// selected mode and reports a combined objective value.
package coordinator

import (
	"context"
	"sort"

	"github.com/fleetgrid/evsched/core/allocation"
	"github.com/fleetgrid/evsched/core/charge"
	"github.com/fleetgrid/evsched/core/logger"
	"github.com/fleetgrid/evsched/core/model"
	"github.com/fleetgrid/evsched/core/sequence"
)

// Mode selects which optimizer stages run.
type Mode string

const (
	AllocationOnly Mode = "allocation_only"
	SchedulingOnly Mode = "scheduling_only"
	Integrated     Mode = "integrated"
)

// Options configures one coordinator run.
type Options struct {
	Mode              Mode
	RunID             string
	Alpha             float64 // weight on allocation term, default 1.0
	Beta              float64 // weight on scheduling term, default 1.0
	AllocationOptions allocation.Options
	ChargeOptions     charge.Options
}

// Result is the unified outcome of a coordinator run.
type Result struct {
	ObjectiveValue   float64
	AllocationResult model.AllocationResult
	ChargePlan       model.ChargePlan
}

// ChargeInputBuilder derives charge.VehicleInput records for the vehicles
// and routes an allocation run selected, so scheduling only ever considers
// energy requirements gated by the chosen sequences.
type ChargeInputBuilder func(allocated []model.RouteAssignment) []charge.VehicleInput

// Run executes the coordinator per the configured mode.
func Run(
	ctx context.Context,
	log logger.Logger,
	candidates []sequence.Candidate,
	eligibleRouteCount int,
	slots []model.TimeSlot,
	prices []model.PricePoint,
	chargeInputs ChargeInputBuilder,
	opts Options,
) Result {
	if opts.Alpha == 0 {
		opts.Alpha = 1.0
	}
	if opts.Beta == 0 {
		opts.Beta = 1.0
	}

	var res Result

	switch opts.Mode {
	case SchedulingOnly:
		plan := charge.Solve(ctx, log, slots, prices, chargeInputs(nil), opts.ChargeOptions)
		res.ChargePlan = plan
		res.ObjectiveValue = -opts.Beta * (plan.TotalCost + opts.ChargeOptions.TargetSoCShortfallPenalty*sumShortfall(plan))
		return res

	case AllocationOnly:
		allocRes := allocation.Solve(ctx, log, candidates, eligibleRouteCount, opts.AllocationOptions)
		res.AllocationResult = toAllocationResult(allocRes, eligibleRouteCount, opts.RunID, opts.AllocationOptions)
		res.ObjectiveValue = opts.Alpha * allocRes.Score
		return res

	default: // Integrated
		allocRes := allocation.Solve(ctx, log, candidates, eligibleRouteCount, opts.AllocationOptions)
		res.AllocationResult = toAllocationResult(allocRes, eligibleRouteCount, opts.RunID, opts.AllocationOptions)

		plan := charge.Solve(ctx, log, slots, prices, chargeInputs(allocRes.Assignments), opts.ChargeOptions)
		res.ChargePlan = plan

		res.ObjectiveValue = opts.Alpha*allocRes.Score - opts.Beta*(plan.TotalCost+opts.ChargeOptions.TargetSoCShortfallPenalty*sumShortfall(plan))
		return res
	}
}

func sumShortfall(plan model.ChargePlan) float64 {
	var total float64
	for _, s := range plan.ShortfallKWh {
		total += s
	}
	return total
}

func toAllocationResult(res allocation.Result, eligibleRouteCount int, runID string, allocOpts allocation.Options) model.AllocationResult {
	overlapping := 0
	status := model.AllocationAllocated
	belowThreshold := !allocation.PassesQualityGate(res.Score, allocOpts)
	if len(res.Assignments) == 0 || belowThreshold {
		status = model.AllocationFailed
	}
	b := model.NewAllocationResultBuilder(runID).
		WithScore(res.Score).
		WithAssignments(res.Assignments).
		WithWindowStats(eligibleRouteCount, overlapping).
		WithFallback(res.Fallback).
		WithStatus(status)
	for _, d := range res.Diagnostics {
		b.Tag(d)
	}
	if belowThreshold {
		b.Tag("below_threshold")
	}
	return b.Build()
}

// SortedByRouteID returns a copy of assignments ordered by route ID.
func SortedByRouteID(assignments []model.RouteAssignment) []model.RouteAssignment {
	out := append([]model.RouteAssignment{}, assignments...)
	sort.Slice(out, func(i, j int) bool { return out[i].RouteID < out[j].RouteID })
	return out
}
