package metrics

import (
	"strconv"

	coremetrics "github.com/fleetgrid/evsched/core/metrics"
	"github.com/prometheus/client_golang/prometheus"
)

// PromSink records run outcomes as Prometheus metrics.
type PromSink struct {
	allocations     *prometheus.CounterVec
	allocationScore *prometheus.HistogramVec
	chargeEnergy    *prometheus.HistogramVec
	fallbacks       *prometheus.CounterVec
	qualityGate     *prometheus.CounterVec
}

// NewPromSink registers run metrics on the default Prometheus registerer.
func NewPromSink() (coremetrics.RunMetricsSink, error) {
	return NewPromSinkWithRegistry(prometheus.DefaultRegisterer)
}

// NewPromSinkWithRegistry registers metrics on the provided registerer. A
// nil registerer defaults to the global Prometheus registerer.
func NewPromSinkWithRegistry(reg prometheus.Registerer) (coremetrics.RunMetricsSink, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	allocations := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "evsched_allocation_runs_total",
		Help: "Total number of allocation runs, by site and fallback status",
	}, []string{"site_id", "fallback"})
	allocationScore := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "evsched_allocation_score",
		Help:    "Aggregate allocation score per run",
		Buckets: prometheus.LinearBuckets(-50, 10, 12),
	}, []string{"site_id"})
	chargeEnergy := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "evsched_charge_energy_kwh",
		Help:    "Total scheduled energy per charge run",
		Buckets: prometheus.ExponentialBuckets(1, 2, 12),
	}, []string{"site_id"})
	fallbacks := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "evsched_solver_fallbacks_total",
		Help: "Total number of times a stage fell back to its greedy solver",
	}, []string{"stage"})
	qualityGate := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "evsched_quality_gate_total",
		Help: "Total number of quality gate evaluations, by outcome",
	}, []string{"passed"})

	collectors := []prometheus.Collector{allocations, allocationScore, chargeEnergy, fallbacks, qualityGate}
	for _, c := range collectors {
		if err := registerOrReuse(reg, c); err != nil {
			return nil, err
		}
	}

	return &PromSink{
		allocations:     allocations,
		allocationScore: allocationScore,
		chargeEnergy:    chargeEnergy,
		fallbacks:       fallbacks,
		qualityGate:     qualityGate,
	}, nil
}

func registerOrReuse(reg prometheus.Registerer, c prometheus.Collector) error {
	if err := reg.Register(c); err != nil {
		if _, ok := err.(prometheus.AlreadyRegisteredError); ok {
			return nil
		}
		return err
	}
	return nil
}

func (s *PromSink) RecordAllocationRun(ev coremetrics.AllocationRunEvent) error {
	s.allocations.WithLabelValues(ev.SiteID, strconv.FormatBool(ev.Fallback)).Inc()
	s.allocationScore.WithLabelValues(ev.SiteID).Observe(ev.Score)
	return nil
}

func (s *PromSink) RecordChargeRun(ev coremetrics.ChargeRunEvent) error {
	s.chargeEnergy.WithLabelValues(ev.SiteID).Observe(ev.TotalEnergyKWh)
	return nil
}

func (s *PromSink) RecordSolverFallback(ev coremetrics.SolverFallbackEvent) error {
	s.fallbacks.WithLabelValues(ev.Stage).Inc()
	return nil
}

func (s *PromSink) RecordQualityGate(ev coremetrics.QualityGateEvent) error {
	s.qualityGate.WithLabelValues(strconv.FormatBool(ev.Passed)).Inc()
	return nil
}
