package metrics

import (
	coremetrics "github.com/fleetgrid/evsched/core/metrics"
	"github.com/prometheus/client_golang/prometheus"
)

// init registers built-in metrics sinks.
func init() {
	_ = coremetrics.RegisterSink("nop", func(map[string]any) (coremetrics.RunMetricsSink, error) {
		return coremetrics.NopSink{}, nil
	})

	_ = coremetrics.RegisterSink("prometheus", func(map[string]any) (coremetrics.RunMetricsSink, error) {
		return NewPromSinkWithRegistry(prometheus.DefaultRegisterer)
	})
}
