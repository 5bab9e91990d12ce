package model

import "time"

// The interfaces below are the domain input collaborators.
// Database persistence, the TMS push API, and telematics ingestion are out
// of scope; this repo only defines the shapes the core consumes
// and provides in-memory/fixture implementations for CLI runs and tests.

// VehicleSource lists a site's fleet.
type VehicleSource interface {
	ListVehicles(siteID string) ([]Vehicle, error)
}

// VehicleStateSource returns the latest telemetry snapshot per vehicle.
type VehicleStateSource interface {
	LatestVehicleStates(siteID string) ([]VehicleState, error)
}

// RouteSource lists routes whose planned window intersects [start, end).
type RouteSource interface {
	ListRoutesInWindow(siteID string, start, end time.Time) ([]Route, error)
}

// CommittedAllocation pairs a route already inside the window with the
// vehicle it is committed to (e.g. an in-progress or previously-allocated
// route), used to deduct availability by cascading.
type CommittedAllocation struct {
	RouteID   string
	VehicleID string
}

// CommittedAllocationSource lists allocations already committed within a
// window.
type CommittedAllocationSource interface {
	ListCommittedAllocations(siteID string, start, end time.Time) ([]CommittedAllocation, error)
}

// PreviousAllocationSource resolves the vehicle a route was most recently
// allocated to, within a lookback window, for swap_minimization.
// Absence is reported by ok=false.
type PreviousAllocationSource interface {
	PreviousAllocation(routeID string, since time.Time) (vehicleID string, ok bool, err error)
}

// PriceSource returns the price/forecast curve covering [start, end).
type PriceSource interface {
	PricesAndForecast(start, end time.Time) ([]PricePoint, error)
}

// SiteParameterSource is the stored-procedure-backed configuration feed
//. All values arrive as strings; typing
// is owned by the Parameter Decoder (core/params).
type SiteParameterSource interface {
	LoadSiteParameters(siteID string) (map[string]string, error)
}
