// Package app wires the optimization core's stages — window building,
// sequence enumeration, constraint evaluation, allocation, charge
// scheduling, and result persistence — into the single entry point the CLI
// commands call.
package app

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/fleetgrid/evsched/config"
	"github.com/fleetgrid/evsched/core/allocation"
	"github.com/fleetgrid/evsched/core/charge"
	"github.com/fleetgrid/evsched/core/constraint"
	"github.com/fleetgrid/evsched/core/coordinator"
	"github.com/fleetgrid/evsched/core/events"
	"github.com/fleetgrid/evsched/core/logger"
	coremetrics "github.com/fleetgrid/evsched/core/metrics"
	"github.com/fleetgrid/evsched/core/model"
	"github.com/fleetgrid/evsched/core/params"
	"github.com/fleetgrid/evsched/core/resultlog"
	"github.com/fleetgrid/evsched/core/sequence"
	"github.com/fleetgrid/evsched/core/vehiclestatus"
	"github.com/fleetgrid/evsched/core/window"
	applog "github.com/fleetgrid/evsched/infra/logger"
	_ "github.com/fleetgrid/evsched/infra/metrics"
	"github.com/fleetgrid/evsched/internal/eventbus"
)

// RunParams is the CLI-level input to one coordinator run.
type RunParams struct {
	SiteID              string
	StartTime           time.Time
	WindowHours         int
	Mode                coordinator.Mode
	AllocationWeight    float64
	SchedulingWeight    float64
	TargetSoCPercent    float64
	SiteCapacityKW      float64
	AllocationTimeLimit time.Duration
	SchedulingTimeLimit time.Duration
}

// App bundles a run's collaborators, built once from Config and reused
// across CLI invocations within a process.
type App struct {
	cfg      *config.Config
	sources  *config.Sources
	log      logger.Logger
	metrics  coremetrics.RunMetricsSink
	results  resultlog.Store
	bus      *eventbus.TypedBus[any]
	vehStore *vehiclestatus.MemoryStore
}

// New loads the scenario fixture and builds the metrics sink and result
// store named by cfg.
func New(cfg *config.Config) (*App, error) {
	fixture, err := config.LoadFixture(cfg.Fixture.Path)
	if err != nil {
		return nil, model.NewRunError(model.KindConfigError, "load fixture: %w", err)
	}
	sink, err := coremetrics.NewSink(cfg.Metrics.Sinks)
	if err != nil {
		return nil, model.NewRunError(model.KindConfigError, "build metrics sink: %w", err)
	}
	store, err := resultlog.NewJSONLStore(cfg.Logging.Path)
	if err != nil {
		return nil, model.NewRunError(model.KindConfigError, "open result log: %w", err)
	}
	return &App{
		cfg:      cfg,
		sources:  config.NewSources(fixture),
		log:      applog.New("app"),
		metrics:  sink,
		results:  store,
		bus:      eventbus.NewTyped[any](),
		vehStore: vehiclestatus.NewMemoryStore(),
	}, nil
}

// Close releases the result store.
func (a *App) Close() error { return a.results.Close() }

// Events exposes the run-event bus (SolverAttempted, SolverFellBack,
// QualityGateFailed, StageCompleted) for observers such as the CLI's own
// logging subscriber.
func (a *App) Events() *eventbus.TypedBus[any] { return a.bus }

// Run executes one coordinator pass end to end: load site parameters, build
// the window, enumerate candidates, run the coordinator, persist and record
// the result.
func (a *App) Run(ctx context.Context, p RunParams) (coordinator.Result, error) {
	runID := uuid.NewString()

	raw, err := a.sources.LoadSiteParameters(p.SiteID)
	if err != nil {
		return coordinator.Result{}, model.NewRunError(model.KindConfigError, "load site parameters: %w", err)
	}
	global := params.DecodeGlobal(raw)
	if p.WindowHours <= 0 {
		p.WindowHours = global.AllocationWindowHours
	}
	if p.TargetSoCPercent <= 0 {
		p.TargetSoCPercent = global.TargetSoCPercent
	}
	if p.SiteCapacityKW <= 0 {
		p.SiteCapacityKW = global.SiteCapacityKW
	}

	vehicles, err := a.sources.ListVehicles(p.SiteID)
	if err != nil {
		return coordinator.Result{}, model.NewRunError(model.KindFatal, "list vehicles: %w", err)
	}
	end := p.StartTime.Add(time.Duration(p.WindowHours) * time.Hour)
	routes, err := a.sources.ListRoutesInWindow(p.SiteID, p.StartTime, end)
	if err != nil {
		return coordinator.Result{}, model.NewRunError(model.KindFatal, "list routes: %w", err)
	}
	states, err := a.sources.LatestVehicleStates(p.SiteID)
	if err != nil {
		return coordinator.Result{}, model.NewRunError(model.KindFatal, "list vehicle states: %w", err)
	}
	committed, err := a.sources.ListCommittedAllocations(p.SiteID, p.StartTime, end)
	if err != nil {
		return coordinator.Result{}, model.NewRunError(model.KindFatal, "list committed allocations: %w", err)
	}

	win := window.Build(p.StartTime, p.WindowHours, window.DefaultMinStops, p.SiteID, routes, states, vehicles, committed)

	triggerType := "initial"
	if global.EnableDynamicReallocation && a.vehStore.SnapshotAndCheckDrift(p.SiteID, states, global.ReallocationTriggerVarianceMinutes) {
		triggerType = "reallocation"
		a.log.Infof("telemetry drift exceeded %dm, run %s classified as a reallocation trigger", global.ReallocationTriggerVarianceMinutes, runID)
	}

	getConstraintCfg := params.Decoder(a.log, raw)
	engine := constraint.Build(getConstraintCfg)

	strictMinimum := 0
	if sc := getConstraintCfg("turnaround_time_strict"); sc.Enabled {
		strictMinimum = params.ParamInt(sc.Params, "minimum_minutes", 45)
	}
	turnaround := constraint.Turnaround(strictMinimum, global.RouteSequenceBufferMinutes)
	seqParams := sequence.Params{
		MaxRoutesPerVehicle: global.MaxRoutesPerVehicle,
		Turnaround:          turnaround,
		AllowDCCharging:     true,
		IdleChargingAllowed: true,
	}
	prevAllocated := func(routeID string, since time.Time) (string, bool) {
		vehicleID, ok, perr := a.sources.PreviousAllocation(routeID, since)
		if perr != nil {
			a.log.Warnf("previous allocation lookup failed for route %s: %v", routeID, perr)
			return "", false
		}
		return vehicleID, ok
	}
	candidates := sequence.Enumerate(win.Eligible, win.Availability, engine, prevAllocated, p.StartTime, seqParams)

	slots := model.BuildSlots(p.StartTime, time.Duration(p.WindowHours)*time.Hour)
	prices, err := a.sources.PricesAndForecast(p.StartTime, end)
	if err != nil {
		return coordinator.Result{}, model.NewRunError(model.KindFatal, "list prices: %w", err)
	}

	routesByID := make(map[string]model.Route, len(win.Eligible))
	for _, r := range win.Eligible {
		routesByID[r.ID] = r
	}
	vehiclesByID := make(map[string]model.Vehicle, len(vehicles))
	for _, v := range vehicles {
		vehiclesByID[v.ID] = v
	}

	chargeBuilder := func(allocated []model.RouteAssignment) []charge.VehicleInput {
		return buildChargeInputs(p.StartTime, slots, win, routesByID, vehiclesByID, allocated, p.TargetSoCPercent)
	}

	opts := coordinator.Options{
		Mode:  p.Mode,
		RunID: runID,
		Alpha: p.AllocationWeight,
		Beta:  p.SchedulingWeight,
		AllocationOptions: allocation.Options{
			TimeLimit: p.AllocationTimeLimit,
		},
		ChargeOptions: charge.Options{
			TimeLimit:                 p.SchedulingTimeLimit,
			SiteCapacityKW:            p.SiteCapacityKW,
			SyntheticTimePriceFactor:  global.SyntheticTimePriceFactor,
			TriadPenaltyFactor:        global.TriadPenaltyFactor,
			TargetSoCShortfallPenalty: global.TargetSoCShortfallPenalty,
		},
	}

	a.publishStage(runID, p.Mode)
	started := time.Now()
	res := coordinator.Run(ctx, a.log, candidates, len(win.Eligible), slots, prices, chargeBuilder, opts)
	if p.Mode != coordinator.SchedulingOnly {
		res.AllocationResult.Diagnostics = append(res.AllocationResult.Diagnostics, "trigger_type:"+triggerType)
	}
	a.observe(runID, p, res, len(win.Eligible), started)

	rec := resultlog.Record{
		Timestamp:      time.Now(),
		RunID:          runID,
		SiteID:         p.SiteID,
		Mode:           string(p.Mode),
		ObjectiveValue: res.ObjectiveValue,
	}
	if p.Mode != coordinator.SchedulingOnly {
		rec.AllocationResult = &res.AllocationResult
	}
	if p.Mode != coordinator.AllocationOnly {
		rec.ChargePlan = &res.ChargePlan
	}
	if err := a.results.Append(ctx, rec); err != nil {
		a.log.Warnf("result log append failed: %v", err)
	}

	return res, nil
}

func (a *App) publishStage(runID string, mode coordinator.Mode) {
	now := time.Now()
	if mode != coordinator.SchedulingOnly {
		a.bus.Publish(events.SolverAttempted{Stage: events.StageAllocation, RunID: runID, Timestamp: now})
	}
	if mode != coordinator.AllocationOnly {
		a.bus.Publish(events.SolverAttempted{Stage: events.StageCharge, RunID: runID, Timestamp: now})
	}
}

func (a *App) observe(runID string, p RunParams, res coordinator.Result, eligible int, started time.Time) {
	duration := time.Since(started).Seconds()
	now := time.Now()

	if p.Mode != coordinator.SchedulingOnly {
		ar := res.AllocationResult
		if ar.Fallback {
			a.bus.Publish(events.SolverFellBack{Stage: events.StageAllocation, RunID: runID, Reason: "lp_unavailable_or_timeout", Timestamp: now})
			_ = a.metrics.RecordSolverFallback(coremetrics.SolverFallbackEvent{RunID: runID, Stage: string(events.StageAllocation), Reason: "lp_unavailable_or_timeout", Time: now})
		}
		threshold := allocation.DefaultQualityThreshold
		passed := allocation.PassesQualityGate(ar.TotalScore, allocation.Options{})
		if !passed {
			a.bus.Publish(events.QualityGateFailed{RunID: runID, Score: ar.TotalScore, Threshold: float64(threshold), Timestamp: now})
		}
		_ = a.metrics.RecordQualityGate(coremetrics.QualityGateEvent{RunID: runID, Score: ar.TotalScore, Threshold: float64(threshold), Passed: passed, Time: now})
		_ = a.metrics.RecordAllocationRun(coremetrics.AllocationRunEvent{
			RunID:           runID,
			SiteID:          p.SiteID,
			RoutesInWindow:  eligible,
			RoutesAllocated: ar.RoutesAllocated,
			Score:           ar.TotalScore,
			Fallback:        ar.Fallback,
			DurationSeconds: duration,
			Time:            now,
		})
		a.bus.Publish(events.StageCompleted{Stage: events.StageAllocation, RunID: runID, DurationSeconds: duration, Fallback: ar.Fallback, Timestamp: now})
	}

	if p.Mode != coordinator.AllocationOnly {
		cp := res.ChargePlan
		if cp.Fallback {
			a.bus.Publish(events.SolverFellBack{Stage: events.StageCharge, RunID: runID, Reason: "lp_unavailable_or_timeout", Timestamp: now})
			_ = a.metrics.RecordSolverFallback(coremetrics.SolverFallbackEvent{RunID: runID, Stage: string(events.StageCharge), Reason: "lp_unavailable_or_timeout", Time: now})
		}
		_ = a.metrics.RecordChargeRun(coremetrics.ChargeRunEvent{
			RunID:           runID,
			SiteID:          p.SiteID,
			VehicleCount:    len(cp.Schedules),
			TotalEnergyKWh:  cp.TotalEnergyKWh,
			TotalCost:       cp.TotalCost,
			ShortfallCount:  countPositive(cp.ShortfallKWh),
			Fallback:        cp.Fallback,
			DurationSeconds: duration,
			Time:            now,
		})
		a.bus.Publish(events.StageCompleted{Stage: events.StageCharge, RunID: runID, DurationSeconds: duration, Fallback: cp.Fallback, Timestamp: now})
	}
}

func countPositive(m map[string]float64) int {
	n := 0
	for _, v := range m {
		if v > 0 {
			n++
		}
	}
	return n
}

// buildChargeInputs derives per-vehicle charge-optimizer inputs from the
// window's availability records and, when present, the routes an allocation
// run selected — gating each vehicle's energy checkpoints on the sequence it
// was actually assigned.
func buildChargeInputs(
	now time.Time,
	slots []model.TimeSlot,
	win window.Window,
	routesByID map[string]model.Route,
	vehiclesByID map[string]model.Vehicle,
	allocated []model.RouteAssignment,
	targetSoCPercent float64,
) []charge.VehicleInput {
	byVehicle := make(map[string][]model.RouteAssignment)
	for _, a := range allocated {
		byVehicle[a.VehicleID] = append(byVehicle[a.VehicleID], a)
	}

	var inputs []charge.VehicleInput
	for vehicleID, avail := range win.Availability {
		v, ok := vehiclesByID[vehicleID]
		if !ok {
			v = avail.Vehicle
		}
		targetKWh := v.BatteryCapacityKWh * targetSoCPercent / 100
		maxShortfall := targetKWh - avail.AvailableEnergyKWh
		if maxShortfall < 0 {
			maxShortfall = 0
		}

		fromIdx := slotIndex(now, avail.AvailableFrom, len(slots))
		var checkpoints []charge.Checkpoint
		var cumulative float64
		for _, ra := range sortByArrival(byVehicle[vehicleID]) {
			r, ok := routesByID[ra.RouteID]
			if !ok {
				continue
			}
			cumulative += v.EnergyRequiredForMiles(r.MileagePlanned)
			checkpoints = append(checkpoints, charge.Checkpoint{
				SlotIndex:             slotIndex(now, r.PlanStart, len(slots)),
				CumulativeConsumedKWh: cumulative,
			})
		}

		inputs = append(inputs, charge.VehicleInput{
			Vehicle:          v,
			AvailableFromIdx: fromIdx,
			InitialSoCKWh:    avail.AvailableEnergyKWh,
			TargetSoCKWh:     targetKWh,
			MaxShortfallKWh:  maxShortfall,
			AllowDCCharging:  true,
			Checkpoints:      checkpoints,
		})
	}
	return inputs
}

func slotIndex(now, t time.Time, numSlots int) int {
	idx := int(t.Sub(now) / model.SlotDuration)
	if idx < 0 {
		idx = 0
	}
	if idx >= numSlots {
		idx = numSlots - 1
	}
	if numSlots == 0 {
		return 0
	}
	return idx
}

func sortByArrival(assignments []model.RouteAssignment) []model.RouteAssignment {
	out := append([]model.RouteAssignment{}, assignments...)
	for i := 1; i < len(out); i++ {
		for j := i; j > 0 && out[j].EstimatedArrival.Before(out[j-1].EstimatedArrival); j-- {
			out[j], out[j-1] = out[j-1], out[j]
		}
	}
	return out
}

// ExitCode maps a run error's classification to the CLI driver-surface
// exit code: 1 invalid arguments, 2 no feasible result, 3 external
// dependency failure. A plain (unclassified) error is treated as 3.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	var re *model.RunError
	kind := model.KindFatal
	if errors.As(err, &re) {
		kind = re.Kind
	}
	switch kind {
	case model.KindConfigError:
		return 1
	case model.KindInfeasible:
		return 2
	default:
		return 3
	}
}
