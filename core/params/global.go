package params

// Global bundles the site-level configuration keys that are
// not scoped to a single constraint.
type Global struct {
	AllocationWindowHours     int
	MaxRoutesPerVehicle       int
	RouteSequenceBufferMinutes int
	ReserveVehicleCount       int
	EnableDynamicReallocation bool
	ReallocationTriggerVarianceMinutes int
	TargetSoCPercent          float64
	SiteCapacityKW            float64
	SyntheticTimePriceFactor  float64
	TriadPenaltyFactor        float64
	TargetSoCShortfallPenalty float64
}

// DecodeGlobal reads the global keys out of the raw string bag, decoding
// each with Decode and backfilling defaults for anything absent.
func DecodeGlobal(raw map[string]string) Global {
	g := Global{
		AllocationWindowHours:               18,
		MaxRoutesPerVehicle:                 5,
		RouteSequenceBufferMinutes:          15,
		ReserveVehicleCount:                 2,
		EnableDynamicReallocation:           true,
		ReallocationTriggerVarianceMinutes:  30,
		TargetSoCPercent:                    95,
		SiteCapacityKW:                      200,
		SyntheticTimePriceFactor:            0.001,
		TriadPenaltyFactor:                  1000,
		TargetSoCShortfallPenalty:           1000,
	}

	get := func(key string) any {
		v, ok := raw[key]
		if !ok {
			return nil
		}
		return Decode(nil, key, v)
	}
	asInt := func(key string, def int) int {
		switch n := get(key).(type) {
		case int:
			return n
		case float64:
			return int(n)
		}
		return def
	}
	asFloat := func(key string, def float64) float64 {
		switch n := get(key).(type) {
		case float64:
			return n
		case int:
			return float64(n)
		}
		return def
	}
	asBool := func(key string, def bool) bool {
		if b, ok := get(key).(bool); ok {
			return b
		}
		return def
	}

	g.AllocationWindowHours = asInt("allocation_window_hours", g.AllocationWindowHours)
	g.MaxRoutesPerVehicle = asInt("max_routes_per_vehicle_in_window", g.MaxRoutesPerVehicle)
	g.RouteSequenceBufferMinutes = asInt("route_sequence_buffer_minutes", g.RouteSequenceBufferMinutes)
	g.ReserveVehicleCount = asInt("reserve_vehicle_count", g.ReserveVehicleCount)
	g.EnableDynamicReallocation = asBool("enable_dynamic_reallocation", g.EnableDynamicReallocation)
	g.ReallocationTriggerVarianceMinutes = asInt("reallocation_trigger_variance_minutes", g.ReallocationTriggerVarianceMinutes)
	g.TargetSoCPercent = asFloat("target_soc_percent", g.TargetSoCPercent)
	g.SiteCapacityKW = asFloat("site_capacity_kw", g.SiteCapacityKW)
	g.SyntheticTimePriceFactor = asFloat("synthetic_time_price_factor", g.SyntheticTimePriceFactor)
	g.TriadPenaltyFactor = asFloat("triad_penalty_factor", g.TriadPenaltyFactor)
	g.TargetSoCShortfallPenalty = asFloat("target_soc_shortfall_penalty", g.TargetSoCShortfallPenalty)
	return g
}
