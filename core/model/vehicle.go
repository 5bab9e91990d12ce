package model

import (
	"fmt"
	"time"
)

// Vehicle is a fleet vehicle eligible for route allocation and charge
// scheduling. It is loaded once at the start of a run and never mutated
// during that run.
type Vehicle struct {
	ID          string
	HomeSite    string
	Active      bool
	OutOfService bool
	Enabled     bool // maintained flag from site configuration (enabled_vehicles)

	BatteryCapacityKWh   float64
	EfficiencyKWhPerMile float64
	ACChargeRateKW       float64
	DCChargeRateKW       float64
}

// AllocationEligible reports whether the vehicle may be assigned a route.
// Mirrors the source's `is_available_for_allocation`.
func (v Vehicle) AllocationEligible() bool {
	return v.Active && v.Enabled && !v.OutOfService
}

// Validate reports structural problems that make the vehicle unusable this
// run. Callers should treat a non-nil error as a DataError: log it, drop the
// vehicle, and continue the run.
func (v Vehicle) Validate() error {
	if v.BatteryCapacityKWh <= 0 {
		return fmt.Errorf("vehicle %s: battery capacity must be positive", v.ID)
	}
	if v.EfficiencyKWhPerMile <= 0 {
		return fmt.Errorf("vehicle %s: efficiency must be positive", v.ID)
	}
	return nil
}

// EnergyRequiredForMiles converts a route's mileage into an energy draw.
func (v Vehicle) EnergyRequiredForMiles(miles float64) float64 {
	return miles * v.EfficiencyKWhPerMile
}

// ChargeRateKW returns the effective charge rate, preferring DC when allowed
// and available.
func (v Vehicle) ChargeRateKW(allowDC bool) float64 {
	if allowDC && v.DCChargeRateKW > 0 {
		return v.DCChargeRateKW
	}
	return v.ACChargeRateKW
}

// VehicleStatus is the latest known operating state of a vehicle, as would be
// reported by telematics ingestion (out of scope here; consumed via
// VehicleStateSource, see core/model/sources.go).
type VehicleStatus int

const (
	StatusUnknown VehicleStatus = iota
	StatusOnRoute
	StatusAtDepot
	StatusCharging
)

func (s VehicleStatus) String() string {
	switch s {
	case StatusOnRoute:
		return "OnRoute"
	case StatusAtDepot:
		return "AtDepot"
	case StatusCharging:
		return "Charging"
	default:
		return "Unknown"
	}
}

// VehicleState is the latest telemetry snapshot for a vehicle.
type VehicleState struct {
	VehicleID           string
	Status              VehicleStatus
	EstimatedSoCPercent float64

	// ReturnETA and ReturnSoCPercent are only meaningful when Status is
	// StatusOnRoute.
	ReturnETA        *time.Time
	ReturnSoCPercent *float64
	CurrentRouteID   string
}
