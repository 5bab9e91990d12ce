// Package metrics defines interfaces for observing run outcomes: allocation
// and charge-schedule runs, solver fallbacks, and quality-gate results.
// Sinks like PromSink (infra/metrics) record these for observability;
// NewMultiSink combines several.
package metrics

import "time"

// AllocationRunEvent summarizes one Allocation Optimizer run.
type AllocationRunEvent struct {
	RunID           string
	SiteID          string
	RoutesInWindow  int
	RoutesAllocated int
	Score           float64
	Fallback        bool
	DurationSeconds float64
	Time            time.Time
}

// ChargeRunEvent summarizes one Charge Optimizer run.
type ChargeRunEvent struct {
	RunID           string
	SiteID          string
	VehicleCount    int
	TotalEnergyKWh  float64
	TotalCost       float64
	ShortfallCount  int
	Fallback        bool
	DurationSeconds float64
	Time            time.Time
}

// SolverFallbackEvent records a primary-solver failure that forced a greedy
// fallback.
type SolverFallbackEvent struct {
	RunID  string
	Stage  string
	Reason string
	Time   time.Time
}

// QualityGateEvent records the outcome of the allocation quality gate
//.
type QualityGateEvent struct {
	RunID     string
	Score     float64
	Threshold float64
	Passed    bool
	Time      time.Time
}

// RunMetricsSink records run outcomes for observability purposes.
type RunMetricsSink interface {
	RecordAllocationRun(AllocationRunEvent) error
	RecordChargeRun(ChargeRunEvent) error
	RecordSolverFallback(SolverFallbackEvent) error
	RecordQualityGate(QualityGateEvent) error
}

// NopSink implements RunMetricsSink with no-op methods, used when no sink is
// configured.
type NopSink struct{}

func (NopSink) RecordAllocationRun(AllocationRunEvent) error   { return nil }
func (NopSink) RecordChargeRun(ChargeRunEvent) error           { return nil }
func (NopSink) RecordSolverFallback(SolverFallbackEvent) error { return nil }
func (NopSink) RecordQualityGate(QualityGateEvent) error       { return nil }

// MultiSink fans out every record call to all configured sinks, returning
// the first error encountered.
type MultiSink struct {
	Sinks []RunMetricsSink
}

// NewMultiSink creates a MultiSink with the provided sinks.
func NewMultiSink(sinks ...RunMetricsSink) *MultiSink {
	return &MultiSink{Sinks: sinks}
}

func (m *MultiSink) RecordAllocationRun(ev AllocationRunEvent) error {
	for _, s := range m.Sinks {
		if err := s.RecordAllocationRun(ev); err != nil {
			return err
		}
	}
	return nil
}

func (m *MultiSink) RecordChargeRun(ev ChargeRunEvent) error {
	for _, s := range m.Sinks {
		if err := s.RecordChargeRun(ev); err != nil {
			return err
		}
	}
	return nil
}

func (m *MultiSink) RecordSolverFallback(ev SolverFallbackEvent) error {
	for _, s := range m.Sinks {
		if err := s.RecordSolverFallback(ev); err != nil {
			return err
		}
	}
	return nil
}

func (m *MultiSink) RecordQualityGate(ev QualityGateEvent) error {
	for _, s := range m.Sinks {
		if err := s.RecordQualityGate(ev); err != nil {
			return err
		}
	}
	return nil
}
