package metrics

import (
	"testing"

	"github.com/fleetgrid/evsched/core/factory"
)

func TestNewSink_NoneConfiguredReturnsNop(t *testing.T) {
	sink, err := NewSink(nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := sink.(NopSink); !ok {
		t.Fatalf("expected NopSink, got %T", sink)
	}
}

func TestNewSink_MultipleCombinesIntoMultiSink(t *testing.T) {
	_ = RegisterSink("test-a", func(map[string]any) (RunMetricsSink, error) { return NopSink{}, nil })
	_ = RegisterSink("test-b", func(map[string]any) (RunMetricsSink, error) { return NopSink{}, nil })

	sink, err := NewSink([]factory.ModuleConfig{{Type: "test-a"}, {Type: "test-b"}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := sink.(*MultiSink); !ok {
		t.Fatalf("expected MultiSink, got %T", sink)
	}
}
