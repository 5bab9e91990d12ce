package model

import "time"

// SlotDuration is the fixed half-hour granularity of the charge schedule
//.
const SlotDuration = 30 * time.Minute

// TimeSlot is one fixed-length interval of the planning horizon, identified
// by its index into the horizon starting at the window's `now`.
type TimeSlot struct {
	Index int
	Start time.Time
	End   time.Time
}

// BuildSlots partitions [start, start+horizon) into TimeSlots of
// SlotDuration, returning them in index order.
func BuildSlots(start time.Time, horizon time.Duration) []TimeSlot {
	n := int(horizon / SlotDuration)
	slots := make([]TimeSlot, n)
	for i := 0; i < n; i++ {
		s := start.Add(time.Duration(i) * SlotDuration)
		slots[i] = TimeSlot{Index: i, Start: s, End: s.Add(SlotDuration)}
	}
	return slots
}

// PricePoint is the per-slot price/forecast context used by the charge
// optimizer.
type PricePoint struct {
	SlotIndex      int
	EnergyPrice    float64
	TriadFlag      bool
	LoadForecastKW float64
}
