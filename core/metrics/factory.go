package metrics

import "github.com/fleetgrid/evsched/core/factory"

// Config defines settings for the configured metrics sinks.
type Config struct {
	Sinks []factory.ModuleConfig `json:"sinks"`
}

var sinkRegistry = factory.NewRegistry[RunMetricsSink]()

// RegisterSink adds a metrics sink factory identified by name.
func RegisterSink(name string, f factory.Factory[RunMetricsSink]) error {
	return sinkRegistry.Register(name, f)
}

// NewSink builds a RunMetricsSink from configuration: none configured
// yields a NopSink, one yields that sink directly, several are combined
// with MultiSink.
func NewSink(cfgs []factory.ModuleConfig) (RunMetricsSink, error) {
	if len(cfgs) == 0 {
		return NopSink{}, nil
	}
	if len(cfgs) == 1 {
		return sinkRegistry.Create(cfgs[0])
	}
	sinks := make([]RunMetricsSink, len(cfgs))
	for i, c := range cfgs {
		s, err := sinkRegistry.Create(c)
		if err != nil {
			return nil, err
		}
		sinks[i] = s
	}
	return NewMultiSink(sinks...), nil
}
