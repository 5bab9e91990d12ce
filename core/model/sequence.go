package model

// Sequence is an ordered, non-empty list of distinct routes intended for one
// vehicle. Construction invariants are enforced by
// the sequence enumerator; Sequence itself only offers read helpers.
type Sequence struct {
	VehicleID string
	Routes    []Route
}

// RouteIDs returns the ordered route IDs covered by the sequence.
func (s Sequence) RouteIDs() []string {
	ids := make([]string, len(s.Routes))
	for i, r := range s.Routes {
		ids[i] = r.ID
	}
	return ids
}

// TotalMileage sums the planned mileage across the sequence.
func (s Sequence) TotalMileage() float64 {
	var total float64
	for _, r := range s.Routes {
		total += r.MileagePlanned
	}
	return total
}

// HasDuplicateRoutes reports whether the same route ID appears twice. A true
// result is a programmer-invariant violation (Fatal) — it should
// never happen for sequences produced by the enumerator.
func (s Sequence) HasDuplicateRoutes() bool {
	seen := make(map[string]struct{}, len(s.Routes))
	for _, r := range s.Routes {
		if _, ok := seen[r.ID]; ok {
			return true
		}
		seen[r.ID] = struct{}{}
	}
	return false
}
