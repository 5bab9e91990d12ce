package constraint

import (
	"fmt"
	"time"

	"github.com/fleetgrid/evsched/core/model"
	"github.com/fleetgrid/evsched/core/params"
)

type shiftHoursStrict struct {
	maxHours           float64
	calculationMethod  string
	preShiftBufferHrs  float64
	postShiftBufferHrs float64
	penalty            float64
}

func newShiftHoursStrict(cfg params.ConstraintConfig) Constraint {
	method, _ := cfg.Params["calculation_method"].(string)
	if method == "" {
		method = "first_to_last"
	}
	return &shiftHoursStrict{
		maxHours:           params.ParamFloat(cfg.Params, "max_hours", 7.5),
		calculationMethod:  method,
		preShiftBufferHrs:  params.ParamFloat(cfg.Params, "pre_shift_buffer_hours", 0),
		postShiftBufferHrs: params.ParamFloat(cfg.Params, "post_shift_buffer_hours", 0),
		penalty:            cfg.Penalty,
	}
}

func (c *shiftHoursStrict) Name() string { return "shift_hours_strict" }

func (c *shiftHoursStrict) Evaluate(_ model.Vehicle, seq model.Sequence, _ Context) Result {
	if len(seq.Routes) == 0 {
		return Result{Name: c.Name()}
	}
	var totalHours float64
	switch c.calculationMethod {
	case "cumulative":
		for _, r := range seq.Routes {
			totalHours += r.PlanEnd.Sub(r.PlanStart).Hours()
		}
	default: // first_to_last
		first := seq.Routes[0].PlanStart
		last := seq.Routes[len(seq.Routes)-1].PlanEnd
		totalHours = last.Sub(first).Hours()
	}
	totalHours += c.preShiftBufferHrs + c.postShiftBufferHrs

	if totalHours > c.maxHours {
		return Result{Name: c.Name(), HardViolated: true, ScoreDelta: c.penalty,
			Tags: []string{fmt.Sprintf("shift_hours_strict: %.2fh exceeds max %.2fh", totalHours, c.maxHours)}}
	}
	return Result{Name: c.Name()}
}

type chargerPreference struct {
	mapping        map[string]int
	windowStart    int
	windowEnd      int
	applyToPosition string
}

func newChargerPreference(cfg params.ConstraintConfig) Constraint {
	mapping := map[string]int{}
	if raw, ok := cfg.Params["map"].(map[string]any); ok {
		for k, v := range raw {
			switch n := v.(type) {
			case float64:
				mapping[k] = int(n)
			case int:
				mapping[k] = n
			}
		}
	}
	position, _ := cfg.Params["apply_to_position"].(string)
	if position == "" {
		position = "first"
	}
	return &chargerPreference{
		mapping:         mapping,
		windowStart:     params.ParamInt(cfg.Params, "time_window_start", 0),
		windowEnd:       params.ParamInt(cfg.Params, "time_window_end", 24),
		applyToPosition: position,
	}
}

func (c *chargerPreference) Name() string { return "charger_preference" }

func (c *chargerPreference) Evaluate(_ model.Vehicle, seq model.Sequence, _ Context) Result {
	if len(seq.Routes) == 0 || len(c.mapping) == 0 {
		return Result{Name: c.Name()}
	}

	inWindow := func(t time.Time) bool {
		h := t.Hour()
		if c.windowStart <= c.windowEnd {
			return h >= c.windowStart && h < c.windowEnd
		}
		return h >= c.windowStart || h < c.windowEnd
	}

	// charger_id resolution is not part of the domain model (no charger
	// assignment exists before allocation); this constraint only fires when
	// a "DISC" (disconnected) fallback entry exists in the map, applied by
	// position, matching the source's default-no-charger case.
	score, ok := c.mapping["DISC"]
	if !ok {
		return Result{Name: c.Name()}
	}

	var positions []model.Route
	switch c.applyToPosition {
	case "all":
		positions = seq.Routes
	case "longest":
		longest := seq.Routes[0]
		for _, r := range seq.Routes[1:] {
			if r.DurationMinutes() > longest.DurationMinutes() {
				longest = r
			}
		}
		positions = []model.Route{longest}
	default: // first
		positions = []model.Route{seq.Routes[0]}
	}

	var delta float64
	for _, r := range positions {
		if inWindow(r.PlanStart) {
			delta += float64(score)
		}
	}
	return Result{Name: c.Name(), ScoreDelta: delta}
}

type swapMinimization struct {
	bonusWeight   float64
	lookbackHours float64
}

func newSwapMinimization(cfg params.ConstraintConfig) Constraint {
	return &swapMinimization{
		bonusWeight:   params.ParamFloat(cfg.Params, "bonus_weight", 0.5),
		lookbackHours: params.ParamFloat(cfg.Params, "lookback_hours", 24),
	}
}

func (c *swapMinimization) Name() string { return "swap_minimization" }

func (c *swapMinimization) Evaluate(v model.Vehicle, seq model.Sequence, ctx Context) Result {
	if ctx.PreviousAllocated == nil {
		return Result{Name: c.Name()}
	}
	since := ctx.Now.Add(-time.Duration(c.lookbackHours * float64(time.Hour)))
	var delta float64
	for _, r := range seq.Routes {
		if vehicleID, ok := ctx.PreviousAllocated(r.ID, since); ok && vehicleID == v.ID {
			delta += c.bonusWeight
		}
	}
	return Result{Name: c.Name(), ScoreDelta: delta}
}
