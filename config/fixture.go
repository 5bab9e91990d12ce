package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/fleetgrid/evsched/core/model"
)

// Fixture is a YAML scenario file that stands in for the database, TMS, and
// telematics sources this repo does not implement. It
// backs an in-memory implementation of every model.*Source interface so the
// CLI can run end to end against a file.
type Fixture struct {
	SiteID            string                    `yaml:"site_id"`
	Parameters        map[string]string         `yaml:"parameters"`
	Vehicles          []fixtureVehicle          `yaml:"vehicles"`
	VehicleStates     []fixtureVehicleState     `yaml:"vehicle_states"`
	Routes            []fixtureRoute            `yaml:"routes"`
	CommittedAllocations []fixtureCommitted     `yaml:"committed_allocations"`
	PreviousAllocations []fixturePrevious       `yaml:"previous_allocations"`
	Prices            []fixturePrice            `yaml:"prices"`
}

type fixtureVehicle struct {
	ID                   string  `yaml:"id"`
	HomeSite             string  `yaml:"home_site"`
	Active               bool    `yaml:"active"`
	OutOfService         bool    `yaml:"out_of_service"`
	Enabled              bool    `yaml:"enabled"`
	BatteryCapacityKWh   float64 `yaml:"battery_capacity_kwh"`
	EfficiencyKWhPerMile float64 `yaml:"efficiency_kwh_per_mile"`
	ACChargeRateKW       float64 `yaml:"ac_charge_rate_kw"`
	DCChargeRateKW       float64 `yaml:"dc_charge_rate_kw"`
}

type fixtureVehicleState struct {
	VehicleID           string     `yaml:"vehicle_id"`
	Status              string     `yaml:"status"`
	EstimatedSoCPercent float64    `yaml:"estimated_soc_percent"`
	ReturnETA           *time.Time `yaml:"return_eta"`
	ReturnSoCPercent    *float64   `yaml:"return_soc_percent"`
	CurrentRouteID      string     `yaml:"current_route_id"`
}

type fixtureRoute struct {
	ID                   string    `yaml:"id"`
	Site                 string    `yaml:"site"`
	PlanStart            time.Time `yaml:"plan_start"`
	PlanEnd              time.Time `yaml:"plan_end"`
	MileagePlanned       float64   `yaml:"mileage_planned"`
	NOrders              int       `yaml:"n_orders"`
	Status               string    `yaml:"status"`
	PreAssignedVehicleID string    `yaml:"pre_assigned_vehicle_id"`
}

type fixtureCommitted struct {
	RouteID   string `yaml:"route_id"`
	VehicleID string `yaml:"vehicle_id"`
}

type fixturePrevious struct {
	RouteID   string    `yaml:"route_id"`
	VehicleID string    `yaml:"vehicle_id"`
	Since     time.Time `yaml:"since"`
}

type fixturePrice struct {
	SlotIndex      int     `yaml:"slot_index"`
	EnergyPrice    float64 `yaml:"energy_price"`
	TriadFlag      bool    `yaml:"triad_flag"`
	LoadForecastKW float64 `yaml:"load_forecast_kw"`
}

// LoadFixture reads and parses a scenario fixture from path.
func LoadFixture(path string) (*Fixture, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read fixture: %w", err)
	}
	var f Fixture
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("parse fixture: %w", err)
	}
	return &f, nil
}

func parseRouteStatus(s string) model.RouteStatus {
	switch s {
	case "Active":
		return model.RouteActive
	case "Complete":
		return model.RouteComplete
	case "Cancelled":
		return model.RouteCancelled
	case "Error":
		return model.RouteError
	case "Unfeasible":
		return model.RouteUnfeasible
	default:
		return model.RouteNew
	}
}

func parseVehicleStatus(s string) model.VehicleStatus {
	switch s {
	case "OnRoute":
		return model.StatusOnRoute
	case "AtDepot":
		return model.StatusAtDepot
	case "Charging":
		return model.StatusCharging
	default:
		return model.StatusUnknown
	}
}

// Sources bundles the in-memory model.*Source implementations backed by a
// Fixture, so app wiring can pass one value where the coordinator expects
// several collaborators.
type Sources struct {
	fixture *Fixture
}

// NewSources adapts a Fixture into the domain source interfaces.
func NewSources(f *Fixture) *Sources { return &Sources{fixture: f} }

func (s *Sources) ListVehicles(siteID string) ([]model.Vehicle, error) {
	var out []model.Vehicle
	for _, v := range s.fixture.Vehicles {
		if v.HomeSite != siteID {
			continue
		}
		out = append(out, model.Vehicle{
			ID:                   v.ID,
			HomeSite:             v.HomeSite,
			Active:               v.Active,
			OutOfService:         v.OutOfService,
			Enabled:              v.Enabled,
			BatteryCapacityKWh:   v.BatteryCapacityKWh,
			EfficiencyKWhPerMile: v.EfficiencyKWhPerMile,
			ACChargeRateKW:       v.ACChargeRateKW,
			DCChargeRateKW:       v.DCChargeRateKW,
		})
	}
	return out, nil
}

func (s *Sources) LatestVehicleStates(siteID string) ([]model.VehicleState, error) {
	bySite := make(map[string]bool)
	for _, v := range s.fixture.Vehicles {
		if v.HomeSite == siteID {
			bySite[v.ID] = true
		}
	}
	var out []model.VehicleState
	for _, st := range s.fixture.VehicleStates {
		if !bySite[st.VehicleID] {
			continue
		}
		out = append(out, model.VehicleState{
			VehicleID:           st.VehicleID,
			Status:              parseVehicleStatus(st.Status),
			EstimatedSoCPercent: st.EstimatedSoCPercent,
			ReturnETA:           st.ReturnETA,
			ReturnSoCPercent:    st.ReturnSoCPercent,
			CurrentRouteID:      st.CurrentRouteID,
		})
	}
	return out, nil
}

func (s *Sources) ListRoutesInWindow(siteID string, start, end time.Time) ([]model.Route, error) {
	var out []model.Route
	for _, r := range s.fixture.Routes {
		if r.Site != siteID {
			continue
		}
		if !r.PlanStart.Before(end) || !r.PlanEnd.After(start) {
			continue
		}
		out = append(out, model.Route{
			ID:                   r.ID,
			Site:                 r.Site,
			PlanStart:            r.PlanStart,
			PlanEnd:              r.PlanEnd,
			MileagePlanned:       r.MileagePlanned,
			NOrders:              r.NOrders,
			Status:               parseRouteStatus(r.Status),
			PreAssignedVehicleID: r.PreAssignedVehicleID,
		})
	}
	return out, nil
}

func (s *Sources) ListCommittedAllocations(siteID string, start, end time.Time) ([]model.CommittedAllocation, error) {
	routesInWindow := make(map[string]bool)
	for _, r := range s.fixture.Routes {
		if r.Site == siteID && !r.PlanStart.After(end) && !r.PlanEnd.Before(start) {
			routesInWindow[r.ID] = true
		}
	}
	var out []model.CommittedAllocation
	for _, c := range s.fixture.CommittedAllocations {
		if !routesInWindow[c.RouteID] {
			continue
		}
		out = append(out, model.CommittedAllocation{RouteID: c.RouteID, VehicleID: c.VehicleID})
	}
	return out, nil
}

func (s *Sources) PreviousAllocation(routeID string, since time.Time) (string, bool, error) {
	found := -1
	for i, p := range s.fixture.PreviousAllocations {
		if p.RouteID != routeID || p.Since.Before(since) {
			continue
		}
		if found < 0 || p.Since.After(s.fixture.PreviousAllocations[found].Since) {
			found = i
		}
	}
	if found < 0 {
		return "", false, nil
	}
	return s.fixture.PreviousAllocations[found].VehicleID, true, nil
}

func (s *Sources) PricesAndForecast(start, end time.Time) ([]model.PricePoint, error) {
	var out []model.PricePoint
	for _, p := range s.fixture.Prices {
		slotStart := start.Add(time.Duration(p.SlotIndex) * model.SlotDuration)
		if slotStart.Before(start) || !slotStart.Before(end) {
			continue
		}
		out = append(out, model.PricePoint{
			SlotIndex:      p.SlotIndex,
			EnergyPrice:    p.EnergyPrice,
			TriadFlag:      p.TriadFlag,
			LoadForecastKW: p.LoadForecastKW,
		})
	}
	return out, nil
}

func (s *Sources) LoadSiteParameters(siteID string) (map[string]string, error) {
	if s.fixture.SiteID != siteID {
		return nil, fmt.Errorf("fixture has no parameters for site %s", siteID)
	}
	return s.fixture.Parameters, nil
}
