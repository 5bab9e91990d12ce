package model

// VehicleSlotPower is the scheduled power for one vehicle in one slot.
type VehicleSlotPower struct {
	SlotIndex int
	PowerKW   float64
}

// VehicleChargeSchedule is the full per-slot power curve for one vehicle,
// plus the cumulative-energy curve it implies.
type VehicleChargeSchedule struct {
	VehicleID string
	Slots     []VehicleSlotPower
}

// CumulativeEnergyKWh reconstructs E[t,v] by integrating power over Δ=0.5h,
// It never mutates the schedule.
func (s VehicleChargeSchedule) CumulativeEnergyKWh() []float64 {
	cum := make([]float64, len(s.Slots))
	var running float64
	for i, sl := range s.Slots {
		running += sl.PowerKW * SlotDuration.Hours()
		cum[i] = running
	}
	return cum
}

// ChargePlan is the immutable output of the Charge Optimizer.
type ChargePlan struct {
	Schedules    []VehicleChargeSchedule
	ShortfallKWh map[string]float64 // vehicle_id -> shortfall
	TotalEnergyKWh float64
	TotalCost      float64
	Fallback       bool
	Diagnostics    []string
}

// ChargePlanBuilder mirrors AllocationResultBuilder: accumulate, then build
// once.
type ChargePlanBuilder struct {
	plan ChargePlan
}

func NewChargePlanBuilder() *ChargePlanBuilder {
	return &ChargePlanBuilder{plan: ChargePlan{ShortfallKWh: map[string]float64{}}}
}

func (b *ChargePlanBuilder) WithSchedules(s []VehicleChargeSchedule) *ChargePlanBuilder {
	b.plan.Schedules = s
	return b
}

func (b *ChargePlanBuilder) WithShortfall(vehicleID string, kwh float64) *ChargePlanBuilder {
	b.plan.ShortfallKWh[vehicleID] = kwh
	return b
}

func (b *ChargePlanBuilder) WithTotals(energyKWh, cost float64) *ChargePlanBuilder {
	b.plan.TotalEnergyKWh = energyKWh
	b.plan.TotalCost = cost
	return b
}

func (b *ChargePlanBuilder) WithFallback(fb bool) *ChargePlanBuilder {
	b.plan.Fallback = fb
	return b
}

func (b *ChargePlanBuilder) Tag(diag string) *ChargePlanBuilder {
	b.plan.Diagnostics = append(b.plan.Diagnostics, diag)
	return b
}

func (b *ChargePlanBuilder) Build() ChargePlan {
	return b.plan
}
